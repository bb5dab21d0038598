package seal

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/isopod-iot/sealer/src/utils/build_info"
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Client orchestrates the threshold encryption scheme tied to an on-chain
// policy object. Plaintext is sealed with a fresh data key, the data key is
// wrapped under keys derived by independent key servers, and decryption
// requires at least Threshold servers to accept the caller's access proof.
type Client struct {
	config *config.Seal
	client *resty.Client
	log    *logrus.Entry
}

type deriveEncryptionKeyRequest struct {
	PackageID string `json:"package_id"`
	Identity  string `json:"identity"`
}

type deriveDecryptionKeyRequest struct {
	PackageID string `json:"package_id"`
	Identity  string `json:"identity"`

	SessionAddress   string `json:"session_address"`
	SessionTTLMin    int    `json:"session_ttl_min"`
	SessionCreatedAt string `json:"session_created_at"`
	SessionSignature string `json:"session_signature"`

	// Unsigned transaction kind bytes with the seal_approve calls
	ApprovalTxBytes string `json:"approval_tx_bytes"`
}

type deriveKeyResponse struct {
	// Derived wrapping key, base64
	Key string `json:"key"`
}

func NewClient(ctx context.Context, config *config.Seal) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("seal-client")

	self.client = resty.New().
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "isopod.cc/sealer/"+build_info.Version)

	return
}

// Identity derives the encryption identity from a policy object id: the raw
// bytes of the id, nothing else mixed in. The same policy always maps to the
// same identity, re-encryptions under one policy are linkable.
func Identity(policyId string) (identity string, err error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(policyId, "0x"))
	if err != nil {
		err = fmt.Errorf("invalid policy object id %s: %w", policyId, err)
		return
	}
	identity = hex.EncodeToString(raw)
	return
}

func (self *Client) deriveEncryptionKey(ctx context.Context, server, packageId, identity string) (key []byte, err error) {
	var out deriveKeyResponse
	resp, err := self.client.R().
		SetContext(ctx).
		SetBody(&deriveEncryptionKeyRequest{
			PackageID: packageId,
			Identity:  identity,
		}).
		SetResult(&out).
		Post(server + "/v1/encryption_key")
	if err != nil {
		return
	}
	if resp.IsError() {
		err = fmt.Errorf("key server %s: unexpected status %s", server, resp.Status())
		return
	}
	return base64.StdEncoding.DecodeString(out.Key)
}

func (self *Client) deriveDecryptionKey(ctx context.Context, server, packageId, identity string, session *SessionKey, approvalTxBytes []byte) (key []byte, err error) {
	var out deriveKeyResponse
	resp, err := self.client.R().
		SetContext(ctx).
		SetBody(&deriveDecryptionKeyRequest{
			PackageID:        packageId,
			Identity:         identity,
			SessionAddress:   session.Address,
			SessionTTLMin:    session.TTLMin,
			SessionCreatedAt: session.CreatedAt.Format(time.RFC3339),
			SessionSignature: session.Signature,
			ApprovalTxBytes:  base64.StdEncoding.EncodeToString(approvalTxBytes),
		}).
		SetResult(&out).
		Post(server + "/v1/decryption_key")
	if err != nil {
		return
	}
	if resp.StatusCode() == http.StatusForbidden || resp.StatusCode() == http.StatusUnauthorized {
		err = fmt.Errorf("%w: key server %s rejected the proof", ErrNoAccess, server)
		return
	}
	if resp.IsError() {
		err = fmt.Errorf("key server %s: unexpected status %s", server, resp.Status())
		return
	}
	return base64.StdEncoding.DecodeString(out.Key)
}

func sealWithKey(key, plaintext []byte) (nonce, ciphertext []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return
	}
	nonce = make([]byte, aead.NonceSize())
	_, err = rand.Read(nonce)
	if err != nil {
		return
	}
	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return
}

func openWithKey(key, nonce, ciphertext []byte) (plaintext []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return
	}
	return aead.Open(nil, nonce, ciphertext, nil)
}

// Encrypt seals plaintext under the policy object. The data key is wrapped
// once per configured key server, decryption later needs Threshold of them.
func (self *Client) Encrypt(ctx context.Context, threshold int, packageId, policyId string, plaintext []byte) (identity string, ciphertext []byte, err error) {
	identity, err = Identity(policyId)
	if err != nil {
		return
	}

	if len(self.config.KeyServerUrls) < threshold {
		err = fmt.Errorf("%w: %d servers configured, threshold %d", ErrTooFewShares, len(self.config.KeyServerUrls), threshold)
		return
	}

	// Fresh data key per call
	dataKey := make([]byte, 32)
	_, err = rand.Read(dataKey)
	if err != nil {
		return
	}

	nonce, sealed, err := sealWithKey(dataKey, plaintext)
	if err != nil {
		return
	}

	object := &EncryptedObject{
		ID:         identity,
		PackageID:  packageId,
		Threshold:  threshold,
		Nonce:      nonce,
		Ciphertext: sealed,
	}

	for _, server := range self.config.KeyServerUrls {
		var wrappingKey []byte
		wrappingKey, err = self.deriveEncryptionKey(ctx, server, packageId, identity)
		if err != nil {
			self.log.WithField("server", server).WithError(err).Error("Failed to derive encryption key")
			return
		}

		var shareNonce, share []byte
		shareNonce, share, err = sealWithKey(wrappingKey, dataKey)
		if err != nil {
			return
		}

		object.Services = append(object.Services, server)
		object.Shares = append(object.Shares, append(shareNonce, share...))
	}

	ciphertext = object.Encode()
	return
}

// Decrypt recovers the plaintext. The session credential and the approval
// transaction bytes are presented to the key servers listed in the envelope,
// at least Threshold of them must accept before the data key is unwrapped.
func (self *Client) Decrypt(ctx context.Context, data []byte, session *SessionKey, approvalTxBytes []byte) (plaintext []byte, err error) {
	err = session.Validate(time.Now())
	if err != nil {
		return
	}

	object, err := ParseEncryptedObject(data)
	if err != nil {
		return
	}

	var dataKey []byte
	granted := 0
	for i, server := range object.Services {
		var wrappingKey []byte
		wrappingKey, err = self.deriveDecryptionKey(ctx, server, object.PackageID, object.ID, session, approvalTxBytes)
		if err != nil {
			if errors.Is(err, ErrNoAccess) {
				// Access denial is authoritative, no point asking the rest
				return nil, err
			}
			self.log.WithField("server", server).WithError(err).Warn("Key server unavailable")
			continue
		}
		granted++

		if dataKey == nil {
			share := object.Shares[i]
			if len(share) <= 12 {
				return nil, fmt.Errorf("%w: truncated share", ErrInvalidCiphertext)
			}
			dataKey, err = openWithKey(wrappingKey, share[:12], share[12:])
			if err != nil {
				return nil, fmt.Errorf("failed to unwrap data key from %s: %w", server, err)
			}
		}

		if granted >= object.Threshold {
			break
		}
	}

	if granted < object.Threshold {
		return nil, fmt.Errorf("%w: %d of %d required", ErrTooFewShares, granted, object.Threshold)
	}

	plaintext, err = openWithKey(dataKey, object.Nonce, object.Ciphertext)
	if err != nil {
		err = fmt.Errorf("failed to open sealed payload for identity %s: %w", object.ID, err)
	}
	return
}
