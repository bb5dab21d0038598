package publish

import (
	"context"

	"github.com/isopod-iot/sealer/src/utils/cipherbox"
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	"github.com/isopod-iot/sealer/src/utils/seal"
	"github.com/isopod-iot/sealer/src/utils/sui"
	"github.com/isopod-iot/sealer/src/utils/task"
	"github.com/isopod-iot/sealer/src/utils/walrus"

	"github.com/teivah/onecontext"
	"gorm.io/gorm"
)

// Publisher turns a prepared payload into a published blob: staged ciphertext
// is re-encrypted under the allowlist policy, uploaded to the blob store and
// linked back on-chain. A single worker serializes all publications through
// the shared wallet signer.
type Publisher struct {
	*task.Task

	db        *gorm.DB
	client    *sui.Client
	signer    *sui.Signer
	seal      *seal.Client
	walrus    *walrus.Client
	cipherbox *cipherbox.Cipherbox
	monitor   monitoring.Monitor
	journal   *Journal
}

func NewPublisher(config *config.Config) (self *Publisher) {
	self = new(Publisher)

	self.Task = task.NewTask(config, "blob-publisher").
		WithWorkerPool(1, config.Publisher.WorkerQueueSize).
		WithSubtaskFunc(self.run)

	return
}

// run keeps the task alive until it's stopped, work arrives through the
// worker pool
func (self *Publisher) run() (err error) {
	<-self.StopChannel
	return
}

func (self *Publisher) WithDB(db *gorm.DB) *Publisher {
	self.db = db
	return self
}

func (self *Publisher) WithClient(client *sui.Client) *Publisher {
	self.client = client
	return self
}

func (self *Publisher) WithSigner(signer *sui.Signer) *Publisher {
	self.signer = signer
	return self
}

func (self *Publisher) WithSealClient(client *seal.Client) *Publisher {
	self.seal = client
	return self
}

func (self *Publisher) WithWalrusClient(client *walrus.Client) *Publisher {
	self.walrus = client
	return self
}

func (self *Publisher) WithCipherbox(cipherbox *cipherbox.Cipherbox) *Publisher {
	self.cipherbox = cipherbox
	return self
}

func (self *Publisher) WithMonitor(monitor monitoring.Monitor) *Publisher {
	self.monitor = monitor
	return self
}

func (self *Publisher) WithJournal(journal *Journal) *Publisher {
	self.journal = journal
	return self
}

// Publish runs the publication of the payload behind the allowlist object id.
// Synchronous for the caller, serialized through the worker pool.
func (self *Publisher) Publish(ctx context.Context, allowlistId string) (blobId string, err error) {
	// A stopped pool silently discards submissions, don't hand it work
	if self.IsStopping.Load() {
		return "", ErrStopping
	}

	type result struct {
		blobId string
		err    error
	}
	out := make(chan result, 1)

	self.SubmitToWorker(func() {
		blobId, err := self.publish(ctx, allowlistId)
		out <- result{blobId, err}
	})

	select {
	case res := <-out:
		return res.blobId, res.err
	case <-self.CtxRunning.Done():
		// Stopped while waiting. The worker may still have finished the job.
		select {
		case res := <-out:
			return res.blobId, res.err
		default:
			return "", ErrStopping
		}
	}
}

func (self *Publisher) publish(requestCtx context.Context, allowlistId string) (blobId string, err error) {
	ctx, cancel := onecontext.Merge(self.Ctx, requestCtx)
	defer cancel()

	allowlist, payload, err := getAllowlistChain(self.db.WithContext(ctx), allowlistId)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		return
	}

	// Staged ciphertext -> plaintext -> policy-bound ciphertext
	plaintext, err := self.cipherbox.Decrypt(payload.EncryptedData)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.PayloadError.Inc()
		return
	}

	_, sealed, err := self.seal.Encrypt(ctx, self.Config.Seal.Threshold, self.Config.Chain.PackageId, allowlist.AllowlistID, plaintext)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.SealError.Inc()
		return
	}

	blobId, err = self.walrus.Store(ctx, sealed)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.BlobStoreError.Inc()
		return
	}

	err = self.db.WithContext(ctx).
		Model(&model.Allowlist{}).
		Where("id = ?", allowlist.ID).
		Update("blob_id", blobId).
		Error
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		return
	}

	// Link the blob to the access control object
	_, err = self.client.PublishBlob(ctx, self.signer, allowlist.AllowlistID, allowlist.CapID, blobId)
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.ChainError.Inc()
		return
	}

	var batchAdvanced bool
	err = self.db.WithContext(ctx).
		Transaction(func(tx *gorm.DB) (err error) {
			_, batchAdvanced, err = advanceAndCascade(tx, payload.ID, payload.BatchID, model.StatusPublished)
			return
		})
	if err != nil {
		self.monitor.GetReport().Publisher.Errors.DbError.Inc()
		return
	}

	self.journal.Record(model.EntityKindPayload, payload.ID, payload.Status, model.StatusPublished)
	if batchAdvanced {
		self.journal.Record(model.EntityKindBatch, payload.BatchID, model.StatusWaitingForAllowlist, model.StatusPublished)
	}

	self.monitor.GetReport().Publisher.State.BlobsPublished.Inc()
	self.Log.WithField("allowlist_id", allowlistId).
		WithField("blob_id", blobId).
		Info("Blob published")
	return
}
