package publish

import (
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/model"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	monitor_publisher "github.com/isopod-iot/sealer/src/utils/monitoring/publisher"
	"github.com/isopod-iot/sealer/src/utils/sui"
	"github.com/isopod-iot/sealer/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the publication pipeline
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "publisher-controller")

	// SQL database
	db, err := model.NewConnection(self.Ctx, config, "publisher")
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

	// Fullnode client
	client := sui.NewClient(self.Ctx, &config.Chain)

	// Monitoring
	monitor := monitor_publisher.NewMonitor()

	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	// Status transition journal
	journal := NewJournal(config).
		WithDB(db)

	// Claims batches and creates allowlists
	scheduler := NewScheduler(config).
		WithDB(db).
		WithClient(client).
		WithSigner(signer).
		WithMonitor(monitor).
		WithJournal(journal)

	// Setup everything, will start upon calling Controller.Start()
	// The journal is wired last so it outlives the scheduler's final records
	self.Task.
		WithSubtask(server.Task).
		WithSubtask(monitor.Task).
		WithSubtask(scheduler.Task).
		WithSubtask(journal.Task)
	return
}
