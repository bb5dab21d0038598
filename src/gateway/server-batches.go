package gateway

import (
	"net/http"

	"github.com/isopod-iot/sealer/src/gateway/request"
	"github.com/isopod-iot/sealer/src/gateway/response"

	"github.com/gin-gonic/gin"
)

func (self *Server) onIngestBatch(c *gin.Context) {
	var in request.IngestBatch
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.monitor.GetReport().Gateway.Errors.BadRequest.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batchId, payloadIds, err := self.ingest.IngestBatch(c.Request.Context(), &in)
	if err != nil {
		self.Log.WithError(err).Error("Failed to ingest batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest batch"})
		return
	}

	c.JSON(http.StatusCreated, response.IngestBatch{
		BatchID:    batchId,
		PayloadIDs: payloadIds,
	})
}
