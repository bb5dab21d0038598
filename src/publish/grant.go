package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	"github.com/isopod-iot/sealer/src/utils/sui"
	"github.com/isopod-iot/sealer/src/utils/task"

	"github.com/rs/xid"
	"github.com/teivah/onecontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Grant adds a wallet address to a payload's on-chain allowlist and mirrors
// the membership in the store: member column, account row, account to
// transportation link, payload status.
type Grant struct {
	*task.Task

	db      *gorm.DB
	client  *sui.Client
	signer  *sui.Signer
	monitor monitoring.Monitor
	journal *Journal
}

func NewGrant(config *config.Config) (self *Grant) {
	self = new(Grant)

	self.Task = task.NewTask(config, "grant")

	return
}

func (self *Grant) WithDB(db *gorm.DB) *Grant {
	self.db = db
	return self
}

func (self *Grant) WithClient(client *sui.Client) *Grant {
	self.client = client
	return self
}

func (self *Grant) WithSigner(signer *sui.Signer) *Grant {
	self.signer = signer
	return self
}

func (self *Grant) WithMonitor(monitor monitoring.Monitor) *Grant {
	self.monitor = monitor
	return self
}

func (self *Grant) WithJournal(journal *Journal) *Grant {
	self.journal = journal
	return self
}

// AddMember grants the address decrypt rights over the payload behind the
// allowlist object id
func (self *Grant) AddMember(requestCtx context.Context, allowlistId, address string) (err error) {
	ctx, cancel := onecontext.Merge(self.Ctx, requestCtx)
	defer cancel()

	allowlist, payload, err := getAllowlistChain(self.db.WithContext(ctx), allowlistId)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		return
	}

	transportation, err := self.getTransportation(ctx, payload.Metadata)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		return
	}

	_, err = self.client.AddMember(ctx, self.signer, allowlist.AllowlistID, allowlist.CapID, address)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.ChainError.Inc()
		return
	}

	var batchAdvanced bool
	err = self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) (err error) {
			err = self.mirrorMember(tx, allowlist.ID, address)
			if err != nil {
				return
			}

			err = self.linkAccount(tx, transportation.ID, address)
			if err != nil {
				return
			}

			_, batchAdvanced, err = advanceAndCascade(tx, payload.ID, payload.BatchID, model.StatusSent)
			return
		})
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		return
	}

	self.journal.Record(model.EntityKindPayload, payload.ID, payload.Status, model.StatusSent)
	if batchAdvanced {
		self.journal.Record(model.EntityKindBatch, payload.BatchID, model.StatusPublished, model.StatusSent)
	}

	self.monitor.GetReport().Publisher.State.MembersGranted.Inc()
	self.Log.WithField("allowlist_id", allowlistId).
		WithField("address", address).
		Info("Member granted access")
	return
}

func (self *Grant) getTransportation(ctx context.Context, metadata *model.Metadata) (transportation *model.Transportation, err error) {
	transportation = new(model.Transportation)

	query := self.db.WithContext(ctx)
	if metadata.TransportationID.Valid {
		query = query.Where("id = ?", metadata.TransportationID.String)
	} else {
		query = query.Where("device_id = ?", metadata.DeviceID)
	}

	err = query.First(transportation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = fmt.Errorf("%w: device %s", ErrTransportationNotFound, metadata.DeviceID)
	}
	return
}

// mirrorMember appends the address to the members column unless it's already
// there. Locked read, grants for one allowlist are rare and short.
func (self *Grant) mirrorMember(tx *gorm.DB, id, address string) (err error) {
	var allowlist model.Allowlist
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&allowlist).
		Error
	if err != nil {
		return
	}

	for _, member := range allowlist.Members {
		if member == address {
			return
		}
	}

	return tx.Model(&model.Allowlist{}).
		Where("id = ?", id).
		Update("members", append(allowlist.Members, address)).
		Error
}

// linkAccount upserts the account row and its m:n link to the transportation,
// both idempotent
func (self *Grant) linkAccount(tx *gorm.DB, transportationId, address string) (err error) {
	account := &model.Account{
		ID:      xid.New().String(),
		Address: address,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoNothing: true,
	}).Create(account).Error
	if err != nil {
		return
	}

	// Re-read, the insert is a no-op when the address already exists
	err = tx.Where("address = ?", address).First(account).Error
	if err != nil {
		return
	}

	return tx.Exec(`INSERT INTO accounts_transportations (account_id, transportation_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING`, account.ID, transportationId).
		Error
}
