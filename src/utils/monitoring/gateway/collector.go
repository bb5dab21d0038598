package monitor_gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	BatchesIngested  *prometheus.Desc `json:"batches_ingested"`
	PayloadsIngested *prometheus.Desc `json:"payloads_ingested"`
	BundlesReturned  *prometheus.Desc `json:"bundles_returned"`
	BlobsDecrypted   *prometheus.Desc `json:"blobs_decrypted"`
	DbError          *prometheus.Desc `json:"db_error"`
	BadRequest       *prometheus.Desc `json:"bad_request"`
	RetrievalError   *prometheus.Desc `json:"retrieval_error"`
	BlobsPublished   *prometheus.Desc `json:"blobs_published"`
	MembersGranted   *prometheus.Desc `json:"members_granted"`
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "gateway",
	}

	return &Collector{
		BatchesIngested:  prometheus.NewDesc("batches_ingested", "", nil, labels),
		PayloadsIngested: prometheus.NewDesc("payloads_ingested", "", nil, labels),
		BundlesReturned:  prometheus.NewDesc("bundles_returned", "", nil, labels),
		BlobsDecrypted:   prometheus.NewDesc("blobs_decrypted", "", nil, labels),
		DbError:          prometheus.NewDesc("db_error", "", nil, labels),
		BadRequest:       prometheus.NewDesc("bad_request", "", nil, labels),
		RetrievalError:   prometheus.NewDesc("retrieval_error", "", nil, labels),
		BlobsPublished:   prometheus.NewDesc("blobs_published", "", nil, labels),
		MembersGranted:   prometheus.NewDesc("members_granted", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.BatchesIngested
	ch <- self.PayloadsIngested
	ch <- self.BundlesReturned
	ch <- self.BlobsDecrypted
	ch <- self.DbError
	ch <- self.BadRequest
	ch <- self.RetrievalError
	ch <- self.BlobsPublished
	ch <- self.MembersGranted
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.BatchesIngested, prometheus.CounterValue, float64(self.monitor.Report.Gateway.State.BatchesIngested.Load()))
	ch <- prometheus.MustNewConstMetric(self.PayloadsIngested, prometheus.CounterValue, float64(self.monitor.Report.Gateway.State.PayloadsIngested.Load()))
	ch <- prometheus.MustNewConstMetric(self.BundlesReturned, prometheus.CounterValue, float64(self.monitor.Report.Gateway.State.BundlesReturned.Load()))
	ch <- prometheus.MustNewConstMetric(self.BlobsDecrypted, prometheus.CounterValue, float64(self.monitor.Report.Gateway.State.BlobsDecrypted.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbError, prometheus.CounterValue, float64(self.monitor.Report.Gateway.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.BadRequest, prometheus.CounterValue, float64(self.monitor.Report.Gateway.Errors.BadRequest.Load()))
	ch <- prometheus.MustNewConstMetric(self.RetrievalError, prometheus.CounterValue, float64(self.monitor.Report.Gateway.Errors.RetrievalError.Load()))
	ch <- prometheus.MustNewConstMetric(self.BlobsPublished, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.BlobsPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.MembersGranted, prometheus.CounterValue, float64(self.monitor.Report.Publisher.State.MembersGranted.Load()))
}
