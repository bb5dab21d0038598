package publish

import (
	"fmt"
	"time"

	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	"github.com/isopod-iot/sealer/src/utils/sui"
	"github.com/isopod-iot/sealer/src/utils/task"

	"github.com/rs/xid"
	"go.uber.org/atomic"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scheduler claims staged batches and creates one on-chain allowlist per
// payload. One tick at a time, both within the process (atomic flag) and
// across instances (durable lease row).
type Scheduler struct {
	*task.Task

	db      *gorm.DB
	client  *sui.Client
	signer  *sui.Signer
	monitor monitoring.Monitor
	journal *Journal

	// Lease owner id, unique per process
	owner string

	inFlight  *atomic.Bool
	startedAt *atomic.Time
}

func NewScheduler(config *config.Config) (self *Scheduler) {
	self = new(Scheduler)

	self.owner = xid.New().String()
	self.inFlight = atomic.NewBool(false)
	self.startedAt = atomic.NewTime(time.Time{})

	self.Task = task.NewTask(config, "scheduler").
		WithCronSubtaskFunc(config.Publisher.Schedule, self.tick)

	return
}

func (self *Scheduler) WithDB(db *gorm.DB) *Scheduler {
	self.db = db
	return self
}

func (self *Scheduler) WithClient(client *sui.Client) *Scheduler {
	self.client = client
	return self
}

func (self *Scheduler) WithSigner(signer *sui.Signer) *Scheduler {
	self.signer = signer
	return self
}

func (self *Scheduler) WithMonitor(monitor monitoring.Monitor) *Scheduler {
	self.monitor = monitor
	return self
}

func (self *Scheduler) WithJournal(journal *Journal) *Scheduler {
	self.journal = journal
	return self
}

func (self *Scheduler) tick() (err error) {
	if !self.tryLock() {
		return
	}
	defer self.inFlight.Store(false)

	acquired, err := self.acquireLease()
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		self.Log.WithError(err).Error("Failed to acquire the scheduler lease")
		return nil
	}
	if !acquired {
		self.monitor.GetReport().Publisher.State.TicksSkipped.Inc()
		self.Log.Debug("Scheduler lease held by another instance, skipping tick")
		return nil
	}
	defer self.releaseLease()

	batches, err := self.claimBatches()
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		self.Log.WithError(err).Error("Failed to claim batches")
		return nil
	}
	if len(batches) == 0 {
		return
	}

	self.Log.WithField("num", len(batches)).Info("Claimed batches for publication")

	for _, batch := range batches {
		if self.IsStopping.Load() {
			return
		}
		self.processBatch(batch)
	}
	return
}

// tryLock is the process-local fast path. A tick that outlived the lock
// timeout is presumed stuck and its lock is taken over.
func (self *Scheduler) tryLock() bool {
	if self.inFlight.CompareAndSwap(false, true) {
		self.startedAt.Store(time.Now())
		return true
	}

	if time.Since(self.startedAt.Load()) < self.Config.Publisher.LockTimeout {
		self.monitor.GetReport().Publisher.State.TicksSkipped.Inc()
		self.Log.Debug("Previous tick still running, skipping")
		return false
	}

	self.monitor.GetReport().Publisher.State.StaleLockOverrides.Inc()
	self.Log.Warn("Previous tick exceeded the lock timeout, overriding")
	self.startedAt.Store(time.Now())
	return true
}

// acquireLease does a conditional upsert of the lease row. It succeeds when
// the lease is free, expired or already ours.
func (self *Scheduler) acquireLease() (acquired bool, err error) {
	now := time.Now()
	res := self.db.WithContext(self.Ctx).
		Exec(`INSERT INTO job_leases (name, owner, expires_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (name) DO UPDATE
			SET owner = EXCLUDED.owner, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
			WHERE job_leases.owner = EXCLUDED.owner OR job_leases.expires_at < ?`,
			self.Config.Publisher.LeaseName, self.owner, now.Add(self.Config.Publisher.LeaseDuration), now, now)
	if res.Error != nil {
		err = res.Error
		return
	}
	acquired = res.RowsAffected > 0
	return
}

func (self *Scheduler) releaseLease() {
	err := self.db.WithContext(self.Ctx).
		Model(&model.JobLease{}).
		Where("name = ? AND owner = ?", self.Config.Publisher.LeaseName, self.owner).
		Update("expires_at", time.Now()).
		Error
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		self.Log.WithError(err).Error("Failed to release the scheduler lease")
	}
}

// claimBatches picks up to the configured number of PENDING or FAILED batches
// and marks them with their payloads WAITING_FOR_ALLOWLIST, all in one
// transaction. SKIP LOCKED keeps concurrent claimers from blocking on each
// other.
func (self *Scheduler) claimBatches() (batches []*model.Batch, err error) {
	claimedFrom := make(map[string]model.Status)

	err = self.db.WithContext(self.Ctx).
		Transaction(func(tx *gorm.DB) (err error) {
			err = tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
				Where("status IN ?", []model.Status{model.StatusPending, model.StatusFailed}).
				Order("created_at ASC").
				Limit(self.Config.Publisher.MaxBatchesPerTick).
				Find(&batches).
				Error
			if err != nil || len(batches) == 0 {
				return
			}

			ids := make([]string, 0, len(batches))
			for _, batch := range batches {
				claimedFrom[batch.ID] = batch.Status
				ids = append(ids, batch.ID)
			}

			err = tx.Model(&model.Batch{}).
				Where("id IN ?", ids).
				Update("status", model.StatusWaitingForAllowlist).
				Error
			if err != nil {
				return
			}

			err = tx.Model(&model.Payload{}).
				Where("batch_id IN ?", ids).
				Update("status", model.StatusWaitingForAllowlist).
				Error
			if err != nil {
				return
			}

			// Reload with everything the per-payload step needs
			batches = nil
			return tx.Preload("Payloads").
				Preload("Payloads.Metadata").
				Preload("Payloads.Allowlist").
				Where("id IN ?", ids).
				Find(&batches).
				Error
		})
	if err != nil {
		return
	}

	for _, batch := range batches {
		self.monitor.GetReport().Publisher.State.BatchesClaimed.Inc()
		self.journal.Record(model.EntityKindBatch, batch.ID, claimedFrom[batch.ID], model.StatusWaitingForAllowlist)
	}
	return
}

// processBatch runs the per-payload allowlist creation. A payload error marks
// the batch FAILED but doesn't stop the remaining payloads of the batch.
// The push timestamp is stamped once the batch is done, failed or not.
func (self *Scheduler) processBatch(batch *model.Batch) {
	var failed bool
	for i := range batch.Payloads {
		payload := &batch.Payloads[i]

		err := self.preparePayload(payload)
		if err != nil {
			self.monitor.GetReport().Publisher.Errors.PayloadError.Inc()
			self.Log.WithField("payload_id", payload.ID).
				WithError(err).
				Error("Failed to prepare allowlist for payload")
			failed = true
		}
		self.monitor.GetReport().Publisher.State.PayloadsProcessed.Inc()
	}

	updates := map[string]interface{}{"pushed_at": time.Now()}
	if failed {
		updates["status"] = model.StatusFailed
	}

	err := self.db.WithContext(self.Ctx).
		Model(&model.Batch{}).
		Where("id = ?", batch.ID).
		Updates(updates).
		Error
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		self.Log.WithField("batch_id", batch.ID).WithError(err).Error("Failed to finalize batch")
		return
	}

	if !failed {
		return
	}

	self.monitor.GetReport().Publisher.State.BatchesFailed.Inc()
	self.journal.Record(model.EntityKindBatch, batch.ID, model.StatusWaitingForAllowlist, model.StatusFailed)
}

// preparePayload creates the on-chain allowlist for one payload and persists
// the created object ids
func (self *Scheduler) preparePayload(payload *model.Payload) (err error) {
	if payload.Allowlist != nil {
		// A previous run crashed between the chain call and the batch
		// finalization, the allowlist already exists. Don't mint another one.
		self.Log.WithField("payload_id", payload.ID).Debug("Payload already owns an allowlist, skipping")
		return
	}
	if payload.Metadata == nil {
		return fmt.Errorf("%w: payload %s", ErrMetadataNotFound, payload.ID)
	}

	digest, err := self.client.CreateAllowlistEntry(self.Ctx, self.signer, payload.Metadata.DeviceID)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.ChainError.Inc()
		return
	}

	block, err := self.client.WaitForEffects(self.Ctx, digest)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.ChainError.Inc()
		return
	}

	created, err := sui.ExtractCreatedObjects(block.ObjectChanges, self.Config.Chain.PackageId, self.Config.Chain.AllowlistModule)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.ChainError.Inc()
		return
	}

	err = self.db.WithContext(self.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payload_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"cap_id", "allowlist_id", "updated_at"}),
		}).
		Create(&model.Allowlist{
			ID:          xid.New().String(),
			PayloadID:   payload.ID,
			CapID:       created.CapID,
			AllowlistID: created.AllowlistID,
		}).
		Error
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		return
	}

	self.monitor.GetReport().Publisher.State.AllowlistsCreated.Inc()
	self.Log.WithField("payload_id", payload.ID).
		WithField("allowlist_id", created.AllowlistID).
		Debug("Allowlist created")
	return
}
