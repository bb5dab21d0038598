package gateway

import (
	"context"
	"database/sql"

	"github.com/isopod-iot/sealer/src/gateway/request"
	"github.com/isopod-iot/sealer/src/publish"
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	"github.com/isopod-iot/sealer/src/utils/task"

	"github.com/rs/xid"
	"github.com/teivah/onecontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ingest stores a batch of staged payloads. Transportations are created
// lazily per device id, never duplicated.
type Ingest struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor
	journal *publish.Journal
}

func NewIngest(config *config.Config) (self *Ingest) {
	self = new(Ingest)

	self.Task = task.NewTask(config, "ingest")

	return
}

func (self *Ingest) WithDB(db *gorm.DB) *Ingest {
	self.db = db
	return self
}

func (self *Ingest) WithMonitor(monitor monitoring.Monitor) *Ingest {
	self.monitor = monitor
	return self
}

func (self *Ingest) WithJournal(journal *publish.Journal) *Ingest {
	self.journal = journal
	return self
}

// IngestBatch persists one PENDING batch with its payloads and metadata, all
// in one transaction
func (self *Ingest) IngestBatch(requestCtx context.Context, in *request.IngestBatch) (batchId string, payloadIds []string, err error) {
	ctx, cancel := onecontext.Merge(self.Ctx, requestCtx)
	defer cancel()

	batchId = xid.New().String()
	payloadIds = make([]string, 0, len(in.Payloads))

	err = self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) (err error) {
			err = tx.Create(&model.Batch{
				ID:     batchId,
				Status: model.StatusPending,
			}).Error
			if err != nil {
				return
			}

			for i := range in.Payloads {
				var payloadId string
				payloadId, err = self.ingestPayload(tx, batchId, &in.Payloads[i])
				if err != nil {
					return
				}
				payloadIds = append(payloadIds, payloadId)
			}
			return
		})
	if err != nil {
		self.monitor.GetReport().Gateway.Errors.DbError.Inc()
		return
	}

	self.journal.Record(model.EntityKindBatch, batchId, "", model.StatusPending)
	self.monitor.GetReport().Gateway.State.BatchesIngested.Inc()
	self.monitor.GetReport().Gateway.State.PayloadsIngested.Add(uint64(len(payloadIds)))

	self.Log.WithField("batch_id", batchId).
		WithField("num", len(payloadIds)).
		Info("Batch ingested")
	return
}

func (self *Ingest) ingestPayload(tx *gorm.DB, batchId string, in *request.IngestPayload) (payloadId string, err error) {
	transportationId, err := self.upsertTransportation(tx, in.DeviceID)
	if err != nil {
		return
	}

	payloadId = xid.New().String()
	err = tx.Create(&model.Payload{
		ID:            payloadId,
		BatchID:       batchId,
		EncryptedData: in.EncryptedData,
		Status:        model.StatusPending,
	}).Error
	if err != nil {
		return
	}

	err = tx.Create(&model.Metadata{
		ID:               xid.New().String(),
		PayloadID:        payloadId,
		DeviceID:         in.DeviceID,
		Timestamp:        in.Timestamp,
		DataHash:         in.DataHash,
		TransportationID: sqlNullString(transportationId),
	}).Error
	return
}

// upsertTransportation returns the transportation owning the device id,
// creating it on first sight
func (self *Ingest) upsertTransportation(tx *gorm.DB, deviceId string) (id string, err error) {
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoNothing: true,
	}).Create(&model.Transportation{
		ID:       xid.New().String(),
		DeviceID: deviceId,
	}).Error
	if err != nil {
		return
	}

	var transportation model.Transportation
	err = tx.Where("device_id = ?", deviceId).
		First(&transportation).
		Error
	if err != nil {
		return
	}
	id = transportation.ID
	return
}

func sqlNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
