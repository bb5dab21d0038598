package monitor_publisher

import (
	"net/http"
	"time"

	"github.com/isopod-iot/sealer/src/utils/monitoring/report"
	"github.com/isopod-iot/sealer/src/utils/task"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report    report.Report
	collector *Collector
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:       &report.RunReport{},
		Publisher: &report.PublisherReport{},
	}
	self.Report.Run.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor")
	return
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

// IsOK fails once payload errors dominate the processed count, that means the
// scheduler only spins on broken data
func (self *Monitor) IsOK() bool {
	processed := self.Report.Publisher.State.PayloadsProcessed.Load()
	if processed == 0 {
		return true
	}
	return self.Report.Publisher.Errors.PayloadError.Load() < processed
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.Fill()
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
