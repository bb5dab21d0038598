package seal

import (
	"fmt"
	"time"
)

// SessionKey is the short lived credential presented to key servers during
// decryption. The wallet collaborator signs its personal message, the client
// only constructs the message and consumes the signature.
type SessionKey struct {
	Address   string
	PackageID string
	TTLMin    int
	CreatedAt time.Time

	// Serialized wallet signature over PersonalMessage()
	Signature string
}

func NewSessionKey(address, packageId string, ttlMin int) *SessionKey {
	return &SessionKey{
		Address:   address,
		PackageID: packageId,
		TTLMin:    ttlMin,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// PersonalMessage returns the canonical message the wallet has to sign
func (self *SessionKey) PersonalMessage() []byte {
	return []byte(fmt.Sprintf(
		"Accessing keys of package %s for %d mins from %s, requested by %s",
		self.PackageID,
		self.TTLMin,
		self.CreatedAt.Format(time.RFC3339),
		self.Address,
	))
}

func (self *SessionKey) SetPersonalMessageSignature(signature string) {
	self.Signature = signature
}

func (self *SessionKey) ExpiresAt() time.Time {
	return self.CreatedAt.Add(time.Duration(self.TTLMin) * time.Minute)
}

func (self *SessionKey) IsExpired(now time.Time) bool {
	return now.After(self.ExpiresAt())
}

// Validate checks the credential is usable for a key request
func (self *SessionKey) Validate(now time.Time) (err error) {
	if self.Signature == "" {
		return fmt.Errorf("%w: personal message not signed", ErrInvalidSession)
	}
	if self.IsExpired(now) {
		return fmt.Errorf("%w: expired at %s", ErrInvalidSession, self.ExpiresAt().Format(time.RFC3339))
	}
	return
}
