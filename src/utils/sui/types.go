package sui

import (
	"encoding/json"
	"fmt"
	"strings"
)

type rpcRequest struct {
	JsonRpc string        `json:"jsonrpc"`
	Id      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JsonRpc string          `json:"jsonrpc"`
	Id      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Response of unsafe_moveCall
type TransactionBytes struct {
	TxBytes string `json:"txBytes"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

type ObjectChange struct {
	Type       string `json:"type"`
	ObjectType string `json:"objectType"`
	ObjectId   string `json:"objectId"`
}

type TransactionBlock struct {
	Digest        string              `json:"digest"`
	Effects       *TransactionEffects `json:"effects"`
	ObjectChanges []ObjectChange      `json:"objectChanges"`
}

type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    string `json:"totalBalance"`
}

// Created object pair of one create_allowlist_entry transaction,
// classified by semantic role instead of positional order
type CreatedObjects struct {
	CapID       string
	AllowlistID string
}

// ExtractCreatedObjects classifies the created objects of the allowlist
// module by their full on-chain type path. Exactly one Cap and one Allowlist
// object are expected, anything else is an unexpected output shape.
func ExtractCreatedObjects(changes []ObjectChange, packageId, module string) (out CreatedObjects, err error) {
	capType := fmt.Sprintf("%s::%s::Cap", packageId, module)
	allowlistType := fmt.Sprintf("%s::%s::Allowlist", packageId, module)

	for _, change := range changes {
		if !strings.EqualFold(change.Type, "created") {
			continue
		}
		switch change.ObjectType {
		case capType:
			if out.CapID != "" {
				err = fmt.Errorf("%w: duplicate Cap object", ErrUnexpectedEffects)
				return
			}
			out.CapID = change.ObjectId
		case allowlistType:
			if out.AllowlistID != "" {
				err = fmt.Errorf("%w: duplicate Allowlist object", ErrUnexpectedEffects)
				return
			}
			out.AllowlistID = change.ObjectId
		}
	}

	if out.CapID == "" || out.AllowlistID == "" {
		err = fmt.Errorf("%w: missing Cap or Allowlist object among %d changes", ErrUnexpectedEffects, len(changes))
		return
	}
	return
}
