package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"os"

	"github.com/lestrrat-go/jwx/jwk"
	"golang.org/x/crypto/blake2b"
)

// Ed25519 key scheme flag, prepended to signatures and hashed into the address
const SignatureSchemeEd25519 = byte(0x00)

// Intent scopes, first byte of the intent message prefix
const (
	IntentScopeTransactionData = byte(0)
	IntentScopePersonalMessage = byte(3)
)

// Wallet signer. Single shared credential, all transaction submissions
// serialize through it.
type Signer struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	Address    string
}

// NewSigner parses an OKP (Ed25519) JWK
func NewSigner(privateKeyJWK string) (self *Signer, err error) {
	self = new(Signer)
	set, err := jwk.Parse([]byte(privateKeyJWK))
	if err != nil {
		return
	}
	if set.Len() != 1 {
		err = errors.New("too many keys in signer's wallet")
		return
	}

	key, ok := set.Get(0)
	if !ok {
		err = errors.New("cannot access key in JWK")
		return
	}

	var rawkey interface{}
	err = key.Raw(&rawkey)
	if err != nil {
		return
	}

	self.PrivateKey, ok = rawkey.(ed25519.PrivateKey)
	if !ok {
		err = errors.New("private key is not Ed25519")
		return
	}

	self.PublicKey = self.PrivateKey.Public().(ed25519.PublicKey)
	self.Address = addressFromPublicKey(self.PublicKey)

	return
}

// NewSignerFromFile reads the JWK from a file
func NewSignerFromFile(path string) (self *Signer, err error) {
	/* #nosec */
	content, err := os.ReadFile(path)
	if err != nil {
		return
	}
	return NewSigner(string(content))
}

func addressFromPublicKey(publicKey ed25519.PublicKey) string {
	buf := make([]byte, 0, 1+ed25519.PublicKeySize)
	buf = append(buf, SignatureSchemeEd25519)
	buf = append(buf, publicKey...)
	digest := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(digest[:])
}

// signIntent hashes the intent-prefixed message and signs the digest.
// Returns the serialized signature: flag || signature || public key, base64.
func (self *Signer) signIntent(scope byte, message []byte) string {
	intent := []byte{scope, 0 /*version*/, 0 /*app id*/}

	buf := make([]byte, 0, len(intent)+len(message))
	buf = append(buf, intent...)
	buf = append(buf, message...)
	digest := blake2b.Sum256(buf)

	signature := ed25519.Sign(self.PrivateKey, digest[:])

	serialized := make([]byte, 0, 1+len(signature)+len(self.PublicKey))
	serialized = append(serialized, SignatureSchemeEd25519)
	serialized = append(serialized, signature...)
	serialized = append(serialized, self.PublicKey...)
	return base64.StdEncoding.EncodeToString(serialized)
}

// SignTransaction signs BCS transaction data bytes
func (self *Signer) SignTransaction(txBytes []byte) string {
	return self.signIntent(IntentScopeTransactionData, txBytes)
}

// SignPersonalMessage signs an arbitrary message, BCS length-prefixed the way
// wallets do for personal messages
func (self *Signer) SignPersonalMessage(message []byte) string {
	var enc Encoder
	enc.WriteBytes(message)
	return self.signIntent(IntentScopePersonalMessage, enc.Bytes())
}
