package cipherbox

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/isopod-iot/sealer/src/utils/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestCipherboxTestSuite(t *testing.T) {
	suite.Run(t, new(CipherboxTestSuite))
}

type CipherboxTestSuite struct {
	suite.Suite
	box *Cipherbox
}

func (s *CipherboxTestSuite) SetupSuite() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	assert.NoError(s.T(), err)

	path := filepath.Join(s.T().TempDir(), "encryption.key")
	assert.NoError(s.T(), os.WriteFile(path, key, 0o600))

	s.box = NewCipherbox(&config.Cipherbox{KeyPath: path})
}

func (s *CipherboxTestSuite) TestRoundTrip() {
	plaintext := []byte(`{"temperature":21.5}`)

	data, err := s.box.Encrypt(plaintext)
	assert.NoError(s.T(), err)

	out, err := s.box.Decrypt(data)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), plaintext, out)
}

func (s *CipherboxTestSuite) TestTamperedPayload() {
	data, err := s.box.Encrypt([]byte("reading"))
	assert.NoError(s.T(), err)

	raw, err := base64.StdEncoding.DecodeString(data)
	assert.NoError(s.T(), err)
	raw[len(raw)-1] ^= 0xff

	_, err = s.box.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.Error(s.T(), err)
}

func (s *CipherboxTestSuite) TestRejectsGarbage() {
	_, err := s.box.Decrypt("not base64!!!")
	assert.Error(s.T(), err)

	// Shorter than nonce + tag
	_, err = s.box.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(s.T(), err)
}

func (s *CipherboxTestSuite) TestRejectsBadKeyFile() {
	path := filepath.Join(s.T().TempDir(), "encryption.key")
	assert.NoError(s.T(), os.WriteFile(path, []byte("too short"), 0o600))

	box := NewCipherbox(&config.Cipherbox{KeyPath: path})
	_, err := box.Encrypt([]byte("reading"))
	assert.Error(s.T(), err)

	// Missing file
	box = NewCipherbox(&config.Cipherbox{KeyPath: filepath.Join(s.T().TempDir(), "missing")})
	_, err = box.Encrypt([]byte("reading"))
	assert.Error(s.T(), err)
}
