package sui

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestTransactionTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionTestSuite))
}

type TransactionTestSuite struct {
	suite.Suite
}

func (s *TransactionTestSuite) TestParseAddress() {
	out, err := ParseAddress("0x0000000000000000000000000000000000000000000000000000000000000002")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), byte(2), out[31])

	// Short ids are left-padded
	out, err = ParseAddress("0x2")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), byte(2), out[31])
	assert.Equal(s.T(), byte(0), out[0])
}

func (s *TransactionTestSuite) TestParseAddressRejectsGarbage() {
	_, err := ParseAddress("0xzz")
	assert.Error(s.T(), err)

	_, err = ParseAddress("0x" + hex.EncodeToString(make([]byte, 33)))
	assert.Error(s.T(), err)
}

func (s *TransactionTestSuite) TestKindBytesShape() {
	approval := NewApprovalTransaction()
	err := approval.AddApprove(testPackage, "allowlist", []byte{0xde, 0xad}, "0x42")
	assert.NoError(s.T(), err)

	out := approval.BuildKindBytes()

	// TransactionKind::ProgrammableTransaction
	assert.Equal(s.T(), byte(0), out[0])
	// Two inputs: the identity and the allowlist object
	assert.Equal(s.T(), byte(2), out[1])
	// Module and function names are embedded verbatim
	assert.True(s.T(), bytes.Contains(out, []byte("allowlist")))
	assert.True(s.T(), bytes.Contains(out, []byte("seal_approve")))
}

func (s *TransactionTestSuite) TestKindBytesDeterministic() {
	build := func() []byte {
		approval := NewApprovalTransaction()
		err := approval.AddApprove(testPackage, "allowlist", []byte{1, 2, 3}, "0x42")
		assert.NoError(s.T(), err)
		return approval.BuildKindBytes()
	}

	assert.Equal(s.T(), build(), build())
}

func (s *TransactionTestSuite) TestKindBytesMultipleCalls() {
	approval := NewApprovalTransaction()
	assert.NoError(s.T(), approval.AddApprove(testPackage, "allowlist", []byte{1}, "0x42"))
	assert.NoError(s.T(), approval.AddApprove(testPackage, "allowlist", []byte{2}, "0x43"))

	out := approval.BuildKindBytes()
	assert.Equal(s.T(), byte(0), out[0])
	// Four inputs, two per call
	assert.Equal(s.T(), byte(4), out[1])
}

func (s *TransactionTestSuite) TestAddApproveRejectsBadIds() {
	approval := NewApprovalTransaction()
	assert.Error(s.T(), approval.AddApprove("not-hex", "allowlist", []byte{1}, "0x42"))
	assert.Error(s.T(), approval.AddApprove(testPackage, "allowlist", []byte{1}, "boom"))
}
