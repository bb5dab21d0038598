package sui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestTypesTestSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

type TypesTestSuite struct {
	suite.Suite
}

const testPackage = "0x0fd2bef42b3b8ddedf6eb8d1749bbb551dcb2c9b0ed9b337ef79062bb9ff0b77"

func (s *TypesTestSuite) TestExtractCreatedObjects() {
	changes := []ObjectChange{
		{Type: "mutated", ObjectType: "0x2::coin::Coin<0x2::sui::SUI>", ObjectId: "0xgas"},
		{Type: "created", ObjectType: testPackage + "::allowlist::Cap", ObjectId: "0xcap"},
		{Type: "created", ObjectType: testPackage + "::allowlist::Allowlist", ObjectId: "0xallowlist"},
	}

	out, err := ExtractCreatedObjects(changes, testPackage, "allowlist")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "0xcap", out.CapID)
	assert.Equal(s.T(), "0xallowlist", out.AllowlistID)
}

func (s *TypesTestSuite) TestExtractIgnoresOtherModules() {
	changes := []ObjectChange{
		{Type: "created", ObjectType: testPackage + "::other::Cap", ObjectId: "0xother"},
		{Type: "created", ObjectType: testPackage + "::allowlist::Cap", ObjectId: "0xcap"},
		{Type: "created", ObjectType: testPackage + "::allowlist::Allowlist", ObjectId: "0xallowlist"},
	}

	out, err := ExtractCreatedObjects(changes, testPackage, "allowlist")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "0xcap", out.CapID)
}

func (s *TypesTestSuite) TestExtractMissingRole() {
	changes := []ObjectChange{
		{Type: "created", ObjectType: testPackage + "::allowlist::Cap", ObjectId: "0xcap"},
	}

	_, err := ExtractCreatedObjects(changes, testPackage, "allowlist")
	assert.ErrorIs(s.T(), err, ErrUnexpectedEffects)
}

func (s *TypesTestSuite) TestExtractDuplicateRole() {
	changes := []ObjectChange{
		{Type: "created", ObjectType: testPackage + "::allowlist::Cap", ObjectId: "0xcap1"},
		{Type: "created", ObjectType: testPackage + "::allowlist::Cap", ObjectId: "0xcap2"},
		{Type: "created", ObjectType: testPackage + "::allowlist::Allowlist", ObjectId: "0xallowlist"},
	}

	_, err := ExtractCreatedObjects(changes, testPackage, "allowlist")
	assert.ErrorIs(s.T(), err, ErrUnexpectedEffects)
}

func (s *TypesTestSuite) TestExtractEmptyChanges() {
	_, err := ExtractCreatedObjects(nil, testPackage, "allowlist")
	assert.ErrorIs(s.T(), err, ErrUnexpectedEffects)
}
