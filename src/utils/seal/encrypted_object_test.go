package seal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestEncryptedObjectTestSuite(t *testing.T) {
	suite.Run(t, new(EncryptedObjectTestSuite))
}

type EncryptedObjectTestSuite struct {
	suite.Suite
}

func (s *EncryptedObjectTestSuite) sample() *EncryptedObject {
	return &EncryptedObject{
		ID:         "deadbeef",
		PackageID:  "0x1234",
		Threshold:  2,
		Services:   []string{"https://ks1.example", "https://ks2.example"},
		Shares:     [][]byte{{1, 2, 3}, {4, 5, 6, 7}},
		Nonce:      []byte{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9},
		Ciphertext: []byte("sealed bytes"),
	}
}

func (s *EncryptedObjectTestSuite) TestRoundTrip() {
	original := s.sample()

	parsed, err := ParseEncryptedObject(original.Encode())
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), original, parsed)
}

func (s *EncryptedObjectTestSuite) TestBadMagic() {
	_, err := ParseEncryptedObject([]byte("NOPE rest of data"))
	assert.ErrorIs(s.T(), err, ErrInvalidCiphertext)
}

func (s *EncryptedObjectTestSuite) TestUnsupportedVersion() {
	data := s.sample().Encode()
	data[4] = 99
	_, err := ParseEncryptedObject(data)
	assert.ErrorIs(s.T(), err, ErrInvalidCiphertext)
}

func (s *EncryptedObjectTestSuite) TestTruncated() {
	data := s.sample().Encode()
	for _, size := range []int{0, 4, 5, 10, len(data) - 1} {
		_, err := ParseEncryptedObject(data[:size])
		assert.Error(s.T(), err, "size %d", size)
	}
}
