package sui

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Fixed 32 byte account/object address
type Address [32]byte

// ParseAddress decodes a 0x-prefixed hex object id, padding short ids on the
// left the way the chain canonicalizes them
func ParseAddress(s string) (out Address, err error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return
	}
	if len(raw) > len(out) {
		err = fmt.Errorf("address too long: %d bytes", len(raw))
		return
	}
	copy(out[len(out)-len(raw):], raw)
	return
}

// Input of a programmable transaction
type callArg struct {
	// Pure BCS encoded value when isObject is false, otherwise a shared
	// object reference by id
	isObject bool
	pure     []byte
	object   Address
}

type moveCall struct {
	pkg      Address
	module   string
	function string
	// Indexes into the input list
	args []uint16
}

// ApprovalTransaction accumulates seal_approve move calls and serializes the
// unsigned transaction kind only. This is what the key servers evaluate, it
// is never submitted on-chain.
type ApprovalTransaction struct {
	inputs []callArg
	calls  []moveCall
}

func NewApprovalTransaction() *ApprovalTransaction {
	return new(ApprovalTransaction)
}

func (self *ApprovalTransaction) pureInput(v []byte) uint16 {
	var enc Encoder
	enc.WriteBytes(v)
	self.inputs = append(self.inputs, callArg{pure: enc.Bytes()})
	return uint16(len(self.inputs) - 1)
}

func (self *ApprovalTransaction) objectInput(id Address) uint16 {
	self.inputs = append(self.inputs, callArg{isObject: true, object: id})
	return uint16(len(self.inputs) - 1)
}

// AddApprove appends a `seal_approve(id, allowlist)` call for one encrypted
// object identity
func (self *ApprovalTransaction) AddApprove(packageId string, module string, identityBytes []byte, allowlistId string) (err error) {
	pkg, err := ParseAddress(packageId)
	if err != nil {
		return fmt.Errorf("invalid package id %s: %w", packageId, err)
	}
	object, err := ParseAddress(allowlistId)
	if err != nil {
		return fmt.Errorf("invalid allowlist id %s: %w", allowlistId, err)
	}

	self.calls = append(self.calls, moveCall{
		pkg:      pkg,
		module:   module,
		function: "seal_approve",
		args:     []uint16{self.pureInput(identityBytes), self.objectInput(object)},
	})
	return
}

// BuildKindBytes serializes the transaction kind: a programmable transaction
// with its inputs and move call commands, no gas data and no sender
func (self *ApprovalTransaction) BuildKindBytes() []byte {
	var enc Encoder

	// TransactionKind::ProgrammableTransaction
	enc.WriteU8(0)

	enc.WriteUleb128(uint64(len(self.inputs)))
	for _, input := range self.inputs {
		if input.isObject {
			// CallArg::Object(ObjectArg::SharedObject)
			enc.WriteU8(1)
			enc.WriteU8(1)
			enc.WriteAddress(input.object)
		} else {
			// CallArg::Pure
			enc.WriteU8(0)
			enc.buf = append(enc.buf, input.pure...)
		}
	}

	enc.WriteUleb128(uint64(len(self.calls)))
	for _, call := range self.calls {
		// Command::MoveCall
		enc.WriteU8(0)
		enc.WriteAddress(call.pkg)
		enc.WriteString(call.module)
		enc.WriteString(call.function)
		// No type arguments
		enc.WriteUleb128(0)
		enc.WriteUleb128(uint64(len(call.args)))
		for _, arg := range call.args {
			// Argument::Input
			enc.WriteU8(1)
			enc.WriteU16(arg)
		}
	}

	return enc.Bytes()
}
