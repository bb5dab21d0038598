package publish

import (
	"context"
	"testing"
	"time"

	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	monitor_publisher "github.com/isopod-iot/sealer/src/utils/monitoring/publisher"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

// Store invariants, exercised against a real database. The suite skips itself
// when none is reachable.
type StoreTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	db     *gorm.DB
}

func (s *StoreTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()

	db, err := model.NewConnection(s.ctx, s.config, "test")
	if err != nil {
		s.T().Skipf("database not reachable: %v", err)
	}
	s.db = db
}

func (s *StoreTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *StoreTestSuite) SetupTest() {
	err := s.db.Exec(`TRUNCATE TABLE status_events, accounts_transportations, accounts,
		allowlists, metadata, payloads, batches, transportations, job_leases`).Error
	assert.NoError(s.T(), err)
}

func (s *StoreTestSuite) newScheduler() (*Scheduler, *monitor_publisher.Monitor) {
	monitor := monitor_publisher.NewMonitor()
	journal := NewJournal(s.config).WithDB(s.db)
	scheduler := NewScheduler(s.config).
		WithDB(s.db).
		WithMonitor(monitor).
		WithJournal(journal)
	return scheduler, monitor
}

func (s *StoreTestSuite) seedBatch(status model.Status, numPayloads int) *model.Batch {
	batch := &model.Batch{ID: xid.New().String(), Status: status}
	assert.NoError(s.T(), s.db.Create(batch).Error)

	for i := 0; i < numPayloads; i++ {
		payload := &model.Payload{
			ID:            xid.New().String(),
			BatchID:       batch.ID,
			EncryptedData: "c3RhZ2VkIGNpcGhlcnRleHQ=",
			Status:        status,
		}
		assert.NoError(s.T(), s.db.Create(payload).Error)
		assert.NoError(s.T(), s.db.Create(&model.Metadata{
			ID:        xid.New().String(),
			PayloadID: payload.ID,
			DeviceID:  "sensor-7",
			Timestamp: time.Now(),
			DataHash:  "deadbeef",
		}).Error)
	}
	return batch
}

func (s *StoreTestSuite) seedAllowlist(payloadId string) {
	assert.NoError(s.T(), s.db.Create(&model.Allowlist{
		ID:          xid.New().String(),
		PayloadID:   payloadId,
		CapID:       "0xcap",
		AllowlistID: "0x" + xid.New().String(),
	}).Error)
}

func (s *StoreTestSuite) loadBatch(id string) (batch model.Batch) {
	assert.NoError(s.T(), s.db.
		Preload("Payloads").
		Preload("Payloads.Metadata").
		Preload("Payloads.Allowlist").
		Where("id = ?", id).
		First(&batch).
		Error)
	return
}

func (s *StoreTestSuite) TestClaimIsIdempotent() {
	scheduler, monitor := s.newScheduler()
	batch := s.seedBatch(model.StatusPending, 2)

	claimed, err := scheduler.claimBatches()
	assert.NoError(s.T(), err)
	assert.Len(s.T(), claimed, 1)
	assert.Equal(s.T(), batch.ID, claimed[0].ID)
	assert.Len(s.T(), claimed[0].Payloads, 2)

	stored := s.loadBatch(batch.ID)
	assert.Equal(s.T(), model.StatusWaitingForAllowlist, stored.Status)
	for _, payload := range stored.Payloads {
		assert.Equal(s.T(), model.StatusWaitingForAllowlist, payload.Status)
	}

	// The push timestamp belongs to batch finalization, not to the claim
	assert.False(s.T(), stored.PushedAt.Valid)

	// A second claim finds nothing, the batch is already in flight
	claimed, err = scheduler.claimBatches()
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), claimed)
	assert.Equal(s.T(), uint64(1), monitor.Report.Publisher.State.BatchesClaimed.Load())
}

func (s *StoreTestSuite) TestFailedBatchesAreReclaimed() {
	scheduler, _ := s.newScheduler()
	batch := s.seedBatch(model.StatusFailed, 1)

	claimed, err := scheduler.claimBatches()
	assert.NoError(s.T(), err)
	assert.Len(s.T(), claimed, 1)
	assert.Equal(s.T(), batch.ID, claimed[0].ID)

	stored := s.loadBatch(batch.ID)
	assert.Equal(s.T(), model.StatusWaitingForAllowlist, stored.Status)
}

func (s *StoreTestSuite) TestCascadeRequiresAllSiblings() {
	batch := s.seedBatch(model.StatusWaitingForAllowlist, 2)
	stored := s.loadBatch(batch.ID)
	first, second := stored.Payloads[0], stored.Payloads[1]

	// First sibling advances, the batch must not follow yet
	err := s.db.Transaction(func(tx *gorm.DB) (err error) {
		payloadAdvanced, batchAdvanced, err := advanceAndCascade(tx, first.ID, batch.ID, model.StatusPublished)
		assert.True(s.T(), payloadAdvanced)
		assert.False(s.T(), batchAdvanced)
		return
	})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), model.StatusWaitingForAllowlist, s.loadBatch(batch.ID).Status)

	// Advancing the same payload again is a no-op
	err = s.db.Transaction(func(tx *gorm.DB) (err error) {
		payloadAdvanced, batchAdvanced, err := advanceAndCascade(tx, first.ID, batch.ID, model.StatusPublished)
		assert.False(s.T(), payloadAdvanced)
		assert.False(s.T(), batchAdvanced)
		return
	})
	assert.NoError(s.T(), err)

	// The last sibling pulls the batch along
	err = s.db.Transaction(func(tx *gorm.DB) (err error) {
		payloadAdvanced, batchAdvanced, err := advanceAndCascade(tx, second.ID, batch.ID, model.StatusPublished)
		assert.True(s.T(), payloadAdvanced)
		assert.True(s.T(), batchAdvanced)
		return
	})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), model.StatusPublished, s.loadBatch(batch.ID).Status)
}

func (s *StoreTestSuite) TestMissingMetadataFailsBatchButProcessesSiblings() {
	batch := &model.Batch{ID: xid.New().String(), Status: model.StatusWaitingForAllowlist}
	assert.NoError(s.T(), s.db.Create(batch).Error)

	// Broken payload, no metadata row
	broken := &model.Payload{
		ID:            xid.New().String(),
		BatchID:       batch.ID,
		EncryptedData: "c3RhZ2VkIGNpcGhlcnRleHQ=",
		Status:        model.StatusWaitingForAllowlist,
	}
	assert.NoError(s.T(), s.db.Create(broken).Error)

	// Healthy sibling that already owns its allowlist
	healthy := &model.Payload{
		ID:            xid.New().String(),
		BatchID:       batch.ID,
		EncryptedData: "c3RhZ2VkIGNpcGhlcnRleHQ=",
		Status:        model.StatusWaitingForAllowlist,
	}
	assert.NoError(s.T(), s.db.Create(healthy).Error)
	assert.NoError(s.T(), s.db.Create(&model.Metadata{
		ID:        xid.New().String(),
		PayloadID: healthy.ID,
		DeviceID:  "sensor-7",
		Timestamp: time.Now(),
		DataHash:  "deadbeef",
	}).Error)
	s.seedAllowlist(healthy.ID)

	scheduler, monitor := s.newScheduler()
	loaded := s.loadBatch(batch.ID)
	scheduler.processBatch(&loaded)

	// Both payloads were looked at, the broken one didn't stop the sibling
	assert.Equal(s.T(), uint64(2), monitor.Report.Publisher.State.PayloadsProcessed.Load())
	assert.Equal(s.T(), uint64(1), monitor.Report.Publisher.Errors.PayloadError.Load())
	assert.Equal(s.T(), uint64(1), monitor.Report.Publisher.State.BatchesFailed.Load())

	stored := s.loadBatch(batch.ID)
	assert.Equal(s.T(), model.StatusFailed, stored.Status)
	assert.True(s.T(), stored.PushedAt.Valid)
}

func (s *StoreTestSuite) TestBatchFinalizeStampsPushTimestamp() {
	batch := s.seedBatch(model.StatusWaitingForAllowlist, 1)
	stored := s.loadBatch(batch.ID)
	s.seedAllowlist(stored.Payloads[0].ID)

	scheduler, monitor := s.newScheduler()
	loaded := s.loadBatch(batch.ID)
	scheduler.processBatch(&loaded)

	stored = s.loadBatch(batch.ID)
	assert.Equal(s.T(), model.StatusWaitingForAllowlist, stored.Status)
	assert.True(s.T(), stored.PushedAt.Valid)
	assert.WithinDuration(s.T(), time.Now(), stored.PushedAt.Time, time.Minute)
	assert.Equal(s.T(), uint64(0), monitor.Report.Publisher.Errors.PayloadError.Load())
}
