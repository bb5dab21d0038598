package gateway

import (
	"github.com/isopod-iot/sealer/src/publish"
	"github.com/isopod-iot/sealer/src/retrieve"
	"github.com/isopod-iot/sealer/src/utils/cipherbox"
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	monitor_gateway "github.com/isopod-iot/sealer/src/utils/monitoring/gateway"
	"github.com/isopod-iot/sealer/src/utils/seal"
	"github.com/isopod-iot/sealer/src/utils/sui"
	"github.com/isopod-iot/sealer/src/utils/task"
	"github.com/isopod-iot/sealer/src/utils/walrus"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the REST surface
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "gateway-controller")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "gateway")
	if err != nil {
		return
	}

	// Wallet signer
	var signer *sui.Signer
	if config.Chain.WalletJwk != "" {
		signer, err = sui.NewSigner(config.Chain.WalletJwk)
	} else {
		signer, err = sui.NewSignerFromFile(config.Chain.WalletJwkPath)
	}
	if err != nil {
		return
	}

	// Network clients
	client := sui.NewClient(self.Ctx, &config.Chain)
	sealClient := seal.NewClient(self.Ctx, &config.Seal)
	walrusClient := walrus.NewClient(self.Ctx, &config.Walrus)

	// Staging key
	box := cipherbox.NewCipherbox(&config.Cipherbox)

	// Monitoring
	monitor := monitor_gateway.NewMonitor()

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Status transition journal
	journal := publish.NewJournal(config).
		WithDB(db)

	// Ingests staged batches
	ingest := NewIngest(config).
		WithDB(db).
		WithMonitor(monitor).
		WithJournal(journal)

	// Publishes prepared payloads to the blob store
	publisher := publish.NewPublisher(config).
		WithDB(db).
		WithClient(client).
		WithSigner(signer).
		WithSealClient(sealClient).
		WithWalrusClient(walrusClient).
		WithCipherbox(box).
		WithMonitor(monitor).
		WithJournal(journal)

	// Grants wallet addresses decrypt rights
	grant := publish.NewGrant(config).
		WithDB(db).
		WithClient(client).
		WithSigner(signer).
		WithMonitor(monitor).
		WithJournal(journal)

	// Downloads and decrypts published blobs
	retriever := retrieve.NewService(config).
		WithDB(db).
		WithBlobReader(walrusClient).
		WithDecrypter(sealClient).
		WithSigner(signer).
		WithMonitor(monitor)

	server := NewServer(config).
		WithMonitor(monitor).
		WithClient(client).
		WithSigner(signer).
		WithIngest(ingest).
		WithPublisher(publisher).
		WithGrant(grant).
		WithRetriever(retriever)

	// Setup everything, will start upon calling Controller.Start()
	// Stop signals follow this order: the REST server goes down before the
	// services it calls into, the journal outlives its producers
	self.Task.
		WithSubtask(monitoringServer.Task).
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(ingest.Task).
		WithSubtask(publisher.Task).
		WithSubtask(grant.Task).
		WithSubtask(retriever.Task).
		WithSubtask(journal.Task)
	return
}
