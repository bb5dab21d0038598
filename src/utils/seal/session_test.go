package seal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

type SessionTestSuite struct {
	suite.Suite
}

const (
	testAddress = "0x5567f72d26a22eaa41eacbcb90393e1e6eed6a0a86ebed1e865a99d82bf3e9cc"
	testPackage = "0x0fd2bef42b3b8ddedf6eb8d1749bbb551dcb2c9b0ed9b337ef79062bb9ff0b77"
)

func (s *SessionTestSuite) TestPersonalMessage() {
	session := NewSessionKey(testAddress, testPackage, 10)

	expected := fmt.Sprintf("Accessing keys of package %s for 10 mins from %s, requested by %s",
		testPackage, session.CreatedAt.Format(time.RFC3339), testAddress)
	assert.Equal(s.T(), expected, string(session.PersonalMessage()))
}

func (s *SessionTestSuite) TestExpiry() {
	session := NewSessionKey(testAddress, testPackage, 10)

	assert.False(s.T(), session.IsExpired(session.CreatedAt.Add(9*time.Minute)))
	assert.True(s.T(), session.IsExpired(session.CreatedAt.Add(11*time.Minute)))
	assert.Equal(s.T(), session.CreatedAt.Add(10*time.Minute), session.ExpiresAt())
}

func (s *SessionTestSuite) TestValidate() {
	session := NewSessionKey(testAddress, testPackage, 10)

	// Unsigned session is unusable
	assert.ErrorIs(s.T(), session.Validate(time.Now()), ErrInvalidSession)

	session.SetPersonalMessageSignature("AAbase64signature")
	assert.NoError(s.T(), session.Validate(time.Now()))

	// Expired session is unusable regardless of the signature
	assert.ErrorIs(s.T(), session.Validate(session.CreatedAt.Add(time.Hour)), ErrInvalidSession)
}
