// Package retrieve resolves published blobs of a transportation, downloads
// them and decrypts them through the key servers.
package retrieve

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	"github.com/isopod-iot/sealer/src/utils/seal"
	"github.com/isopod-iot/sealer/src/utils/sui"
	"github.com/isopod-iot/sealer/src/utils/task"

	cache "github.com/patrickmn/go-cache"
	"github.com/teivah/onecontext"
	"gorm.io/gorm"
)

// BlobReader downloads ciphertext by blob id
type BlobReader interface {
	Read(ctx context.Context, blobId string) (data []byte, err error)
}

// Decrypter opens a sealed blob given a session credential and the approval
// transaction bytes
type Decrypter interface {
	Decrypt(ctx context.Context, data []byte, session *seal.SessionKey, approvalTxBytes []byte) (plaintext []byte, err error)
}

// One decrypted telemetry reading
type Reading struct {
	BlobID string          `json:"blob_id"`
	Data   json.RawMessage `json:"data"`
}

type publishedBlob struct {
	BlobID      string
	AllowlistID string
}

type Service struct {
	*task.Task

	db        *gorm.DB
	reader    BlobReader
	decrypter Decrypter
	signer    *sui.Signer
	monitor   monitoring.Monitor

	// Account transportation walks, cached briefly
	cache *cache.Cache
}

func NewService(config *config.Config) (self *Service) {
	self = new(Service)

	self.cache = cache.New(config.Gateway.AccountCacheTTL, config.Gateway.AccountCacheCleanup)

	self.Task = task.NewTask(config, "retriever")

	return
}

func (self *Service) WithDB(db *gorm.DB) *Service {
	self.db = db
	return self
}

func (self *Service) WithBlobReader(reader BlobReader) *Service {
	self.reader = reader
	return self
}

func (self *Service) WithDecrypter(decrypter Decrypter) *Service {
	self.decrypter = decrypter
	return self
}

func (self *Service) WithSigner(signer *sui.Signer) *Service {
	self.signer = signer
	return self
}

func (self *Service) WithMonitor(monitor monitoring.Monitor) *Service {
	self.monitor = monitor
	return self
}

// RetrieveBundle downloads and decrypts every published blob of the
// transportation, in metadata timestamp order. A single failing blob aborts
// the whole call, a partial bundle would be worse than no bundle.
func (self *Service) RetrieveBundle(requestCtx context.Context, transportationId, address string) (readings []Reading, err error) {
	ctx, cancel := onecontext.Merge(self.Ctx, requestCtx)
	defer cancel()

	err = self.checkAccess(ctx, transportationId, address)
	if err != nil {
		return
	}

	blobs, err := self.publishedBlobs(ctx, transportationId)
	if err != nil {
		self.monitor.GetReport().Gateway.Errors.DbError.Inc()
		return
	}

	readings = make([]Reading, 0, len(blobs))
	if len(blobs) == 0 {
		return
	}

	// One session credential for the whole bundle
	session := seal.NewSessionKey(self.signer.Address, self.Config.Chain.PackageId, self.Config.Seal.SessionTTLMin)
	session.SetPersonalMessageSignature(self.signer.SignPersonalMessage(session.PersonalMessage()))

	for _, blob := range blobs {
		var reading Reading
		reading, err = self.retrieveBlob(ctx, blob, session)
		if err != nil {
			self.monitor.GetReport().Gateway.Errors.RetrievalError.Inc()
			return nil, fmt.Errorf("blob %s: %w", blob.BlobID, err)
		}
		readings = append(readings, reading)
		self.monitor.GetReport().Gateway.State.BlobsDecrypted.Inc()
	}

	self.monitor.GetReport().Gateway.State.BundlesReturned.Inc()
	self.Log.WithField("transportation_id", transportationId).
		WithField("num", len(readings)).
		Debug("Bundle retrieved")
	return
}

func (self *Service) retrieveBlob(ctx context.Context, blob publishedBlob, session *seal.SessionKey) (reading Reading, err error) {
	data, err := self.reader.Read(ctx, blob.BlobID)
	if err != nil {
		return
	}

	// Header carries the full identity the blob was sealed under
	object, err := seal.ParseEncryptedObject(data)
	if err != nil {
		return
	}
	identity, err := hex.DecodeString(object.ID)
	if err != nil {
		err = fmt.Errorf("invalid identity in envelope: %w", err)
		return
	}

	approval := sui.NewApprovalTransaction()
	err = approval.AddApprove(self.Config.Chain.PackageId, self.Config.Chain.AllowlistModule, identity, blob.AllowlistID)
	if err != nil {
		return
	}

	plaintext, err := self.decrypter.Decrypt(ctx, data, session, approval.BuildKindBytes())
	if err != nil {
		return
	}

	if !json.Valid(plaintext) {
		err = ErrMalformedReading
		return
	}

	reading = Reading{BlobID: blob.BlobID, Data: plaintext}
	return
}

// checkAccess verifies the address was granted access to the transportation
func (self *Service) checkAccess(ctx context.Context, transportationId, address string) (err error) {
	var transportation model.Transportation
	err = self.db.WithContext(ctx).
		Where("id = ?", transportationId).
		First(&transportation).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrTransportationNotFound, transportationId)
	}
	if err != nil {
		self.monitor.GetReport().Gateway.Errors.DbError.Inc()
		return
	}

	var linked int64
	err = self.db.WithContext(ctx).
		Table(model.TableAccount).
		Joins("JOIN accounts_transportations ON accounts_transportations.account_id = accounts.id").
		Where("accounts.address = ?", address).
		Where("accounts_transportations.transportation_id = ?", transportationId).
		Count(&linked).
		Error
	if err != nil {
		self.monitor.GetReport().Gateway.Errors.DbError.Inc()
		return
	}
	if linked == 0 {
		return fmt.Errorf("%w: %s", ErrAccessDenied, address)
	}
	return
}

// publishedBlobs resolves blob ids of the transportation in timestamp order,
// skipping payloads that aren't published yet
func (self *Service) publishedBlobs(ctx context.Context, transportationId string) (blobs []publishedBlob, err error) {
	err = self.db.WithContext(ctx).
		Table(model.TableMetadata).
		Select("allowlists.blob_id AS blob_id, allowlists.allowlist_id AS allowlist_id").
		Joins("JOIN payloads ON payloads.id = metadata.payload_id").
		Joins("JOIN allowlists ON allowlists.payload_id = payloads.id").
		Where("metadata.transportation_id = ?", transportationId).
		Where("allowlists.blob_id IS NOT NULL").
		Order("metadata.timestamp ASC").
		Scan(&blobs).
		Error
	return
}

// AccountTransportations walks address -> accounts -> transportations.
// Cached for a short while, the gateway calls this on every bundle listing.
func (self *Service) AccountTransportations(requestCtx context.Context, address string) (transportations []model.Transportation, err error) {
	if cached, ok := self.cache.Get(address); ok {
		transportations = cached.([]model.Transportation)
		return
	}

	ctx, cancel := onecontext.Merge(self.Ctx, requestCtx)
	defer cancel()

	var account model.Account
	err = self.db.WithContext(ctx).
		Preload("Transportations").
		Where("address = ?", address).
		First(&account).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Unknown address simply has no transportations
		return []model.Transportation{}, nil
	}
	if err != nil {
		self.monitor.GetReport().Gateway.Errors.DbError.Inc()
		return
	}

	transportations = account.Transportations
	self.cache.Set(address, transportations, cache.DefaultExpiration)
	return
}
