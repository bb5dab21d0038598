package sui

import (
	"errors"
	"fmt"
)

var (
	// Transaction effects are not queryable yet, polling continues
	ErrEffectsNotReady = errors.New("transaction effects not ready")

	// Effects did not contain the expected created object roles
	ErrUnexpectedEffects = errors.New("unexpected chain output shape")
)

// Error returned by the fullnode in the JSON-RPC envelope
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (self *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", self.Code, self.Message)
}
