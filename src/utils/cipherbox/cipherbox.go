// Package cipherbox handles the symmetric staging encryption devices apply
// before telemetry reaches the pipeline. A single AES-256 key shared with the
// device fleet, loaded once from disk.
package cipherbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"sync"

	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/logger"

	"github.com/sirupsen/logrus"
)

const (
	keySize   = 32
	nonceSize = 12
)

type Cipherbox struct {
	config *config.Cipherbox
	log    *logrus.Entry

	mtx sync.Mutex
	key []byte
}

func NewCipherbox(config *config.Cipherbox) (self *Cipherbox) {
	self = new(Cipherbox)
	self.config = config
	self.log = logger.NewSublogger("cipherbox")
	return
}

// loadKey reads the key file on first use and keeps it for the process
// lifetime
func (self *Cipherbox) loadKey() (key []byte, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if self.key != nil {
		key = self.key
		return
	}

	raw, err := os.ReadFile(self.config.KeyPath)
	if err != nil {
		err = fmt.Errorf("failed to read staging key from %s: %w", self.config.KeyPath, err)
		return
	}
	if len(raw) != keySize {
		err = fmt.Errorf("staging key in %s is %d bytes, want %d", self.config.KeyPath, len(raw), keySize)
		return
	}

	self.key = raw
	self.log.WithField("path", self.config.KeyPath).Debug("Staging key loaded")
	key = raw
	return
}

func (self *Cipherbox) aead() (aead cipher.AEAD, err error) {
	key, err := self.loadKey()
	if err != nil {
		return
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return
	}
	return cipher.NewGCM(block)
}

// Decrypt opens a device payload: base64 of nonce (12 bytes) followed by the
// ciphertext and the GCM tag
func (self *Cipherbox) Decrypt(data string) (plaintext []byte, err error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		err = fmt.Errorf("staged payload is not valid base64: %w", err)
		return
	}
	if len(raw) < nonceSize+16 {
		err = fmt.Errorf("staged payload too short: %d bytes", len(raw))
		return
	}

	aead, err := self.aead()
	if err != nil {
		return
	}

	plaintext, err = aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		err = fmt.Errorf("failed to open staged payload: %w", err)
	}
	return
}

// Encrypt seals a payload the way devices do, used by the ingest surface and
// in tests
func (self *Cipherbox) Encrypt(plaintext []byte) (data string, err error) {
	aead, err := self.aead()
	if err != nil {
		return
	}

	nonce := make([]byte, nonceSize)
	_, err = rand.Read(nonce)
	if err != nil {
		return
	}

	raw := aead.Seal(nonce, nonce, plaintext, nil)
	data = base64.StdEncoding.EncodeToString(raw)
	return
}
