package monitor_publisher

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	BatchesClaimed     *prometheus.Desc `json:"batches_claimed"`
	BatchesFailed      *prometheus.Desc `json:"batches_failed"`
	PayloadsProcessed  *prometheus.Desc `json:"payloads_processed"`
	AllowlistsCreated  *prometheus.Desc `json:"allowlists_created"`
	BlobsPublished     *prometheus.Desc `json:"blobs_published"`
	MembersGranted     *prometheus.Desc `json:"members_granted"`
	TicksSkipped       *prometheus.Desc `json:"ticks_skipped"`
	StaleLockOverrides *prometheus.Desc `json:"stale_lock_overrides"`
	DbError            *prometheus.Desc `json:"db_error"`
	ChainError         *prometheus.Desc `json:"chain_error"`
	SealError          *prometheus.Desc `json:"seal_error"`
	BlobStoreError     *prometheus.Desc `json:"blob_store_error"`
	PayloadError       *prometheus.Desc `json:"payload_error"`
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "publisher",
	}

	return &Collector{
		BatchesClaimed:     prometheus.NewDesc("batches_claimed", "", nil, labels),
		BatchesFailed:      prometheus.NewDesc("batches_failed", "", nil, labels),
		PayloadsProcessed:  prometheus.NewDesc("payloads_processed", "", nil, labels),
		AllowlistsCreated:  prometheus.NewDesc("allowlists_created", "", nil, labels),
		BlobsPublished:     prometheus.NewDesc("blobs_published", "", nil, labels),
		MembersGranted:     prometheus.NewDesc("members_granted", "", nil, labels),
		TicksSkipped:       prometheus.NewDesc("ticks_skipped", "", nil, labels),
		StaleLockOverrides: prometheus.NewDesc("stale_lock_overrides", "", nil, labels),
		DbError:            prometheus.NewDesc("db_error", "", nil, labels),
		ChainError:         prometheus.NewDesc("chain_error", "", nil, labels),
		SealError:          prometheus.NewDesc("seal_error", "", nil, labels),
		BlobStoreError:     prometheus.NewDesc("blob_store_error", "", nil, labels),
		PayloadError:       prometheus.NewDesc("payload_error", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.BatchesClaimed
	ch <- self.BatchesFailed
	ch <- self.PayloadsProcessed
	ch <- self.AllowlistsCreated
	ch <- self.BlobsPublished
	ch <- self.MembersGranted
	ch <- self.TicksSkipped
	ch <- self.StaleLockOverrides
	ch <- self.DbError
	ch <- self.ChainError
	ch <- self.SealError
	ch <- self.BlobStoreError
	ch <- self.PayloadError
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.BatchesClaimed, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.BatchesClaimed.Load()))
	ch <- prometheus.MustNewConstMetric(self.BatchesFailed, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.BatchesFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.PayloadsProcessed, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.PayloadsProcessed.Load()))
	ch <- prometheus.MustNewConstMetric(self.AllowlistsCreated, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.AllowlistsCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.BlobsPublished, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.BlobsPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.MembersGranted, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.MembersGranted.Load()))
	ch <- prometheus.MustNewConstMetric(self.TicksSkipped, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.TicksSkipped.Load()))
	ch <- prometheus.MustNewConstMetric(self.StaleLockOverrides, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.StaleLockOverrides.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbError, prometheus.CounterValue, float64(self.monitor.Report.Publisher.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.ChainError, prometheus.CounterValue, float64(self.monitor.Report.Publisher.Errors.ChainError.Load()))
	ch <- prometheus.MustNewConstMetric(self.SealError, prometheus.CounterValue, float64(self.monitor.Report.Publisher.Errors.SealError.Load()))
	ch <- prometheus.MustNewConstMetric(self.BlobStoreError, prometheus.CounterValue, float64(self.monitor.Report.Publisher.Errors.BlobStoreError.Load()))
	ch <- prometheus.MustNewConstMetric(self.PayloadError, prometheus.CounterValue, float64(self.monitor.Report.Publisher.Errors.PayloadError.Load()))
}
