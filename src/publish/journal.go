package publish

import (
	"time"

	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/task"

	"gorm.io/gorm"
)

// Journal is an append-only sink for status transitions. Events are buffered
// in memory and written out in batches, a lost event is acceptable, a blocked
// pipeline is not.
type Journal struct {
	*task.Hole[model.StatusEvent]

	db    *gorm.DB
	input chan model.StatusEvent
}

func NewJournal(config *config.Config) (self *Journal) {
	self = new(Journal)

	self.input = make(chan model.StatusEvent, config.Publisher.JournalBatchSize)

	self.Hole = task.NewHole[model.StatusEvent](config, "journal").
		WithBatchSize(config.Publisher.JournalBatchSize).
		WithInputChannel(self.input).
		WithOnFlush(config.Publisher.JournalFlushInterval, self.flush).
		WithBackoff(time.Minute, 15*time.Second)

	// Closing the input drains the queue and ends the flushing subtask
	self.Task = self.Task.WithOnStop(func() {
		close(self.input)
	})

	return
}

func (self *Journal) WithDB(db *gorm.DB) *Journal {
	self.db = db
	return self
}

func (self *Journal) flush(events []model.StatusEvent) (err error) {
	if len(events) == 0 {
		return
	}
	return self.db.WithContext(self.Ctx).
		CreateInBatches(events, len(events)).
		Error
}

// Record enqueues one transition. Never blocks, drops the event when the
// queue is saturated or the journal is stopping.
func (self *Journal) Record(kind, id string, from, to model.Status) {
	if self.IsStopping.Load() {
		return
	}

	event := model.StatusEvent{
		EntityKind: kind,
		EntityID:   id,
		ToStatus:   to,
		RecordedAt: time.Now(),
	}
	// Freshly created entities have no prior status
	if from != "" {
		event.FromStatus = &from
	}

	select {
	case self.input <- event:
	default:
		self.Log.WithField("id", id).Warn("Journal queue full, dropping status event")
	}
}
