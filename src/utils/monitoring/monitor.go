package monitoring

import (
	"github.com/isopod-iot/sealer/src/utils/monitoring/report"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor exposes per-app counters over the REST server and Prometheus
type Monitor interface {
	GetReport() *report.Report
	GetPrometheusCollector() prometheus.Collector
	OnGetState(c *gin.Context)
	OnGetHealth(c *gin.Context)
}
