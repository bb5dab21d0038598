package gateway

import (
	"errors"
	"net/http"

	"github.com/isopod-iot/sealer/src/gateway/request"
	"github.com/isopod-iot/sealer/src/publish"

	"github.com/gin-gonic/gin"
)

func (self *Server) onPublishBlob(c *gin.Context) {
	allowlistId := c.Param("allowlistId")

	blobId, err := self.publisher.Publish(c.Request.Context(), allowlistId)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, publish.ErrAllowlistNotFound) ||
			errors.Is(err, publish.ErrPayloadNotFound) ||
			errors.Is(err, publish.ErrMetadataNotFound) {
			status = http.StatusNotFound
		}
		if errors.Is(err, publish.ErrStopping) {
			status = http.StatusServiceUnavailable
		}
		self.Log.WithField("allowlist_id", allowlistId).WithError(err).Error("Failed to publish blob")
		c.JSON(status, gin.H{"error": "failed to publish blob"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blob_id": blobId})
}

func (self *Server) onGrantMember(c *gin.Context) {
	allowlistId := c.Param("allowlistId")

	var in request.GrantMember
	err := c.ShouldBindJSON(&in)
	if err != nil {
		self.monitor.GetReport().Gateway.Errors.BadRequest.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = self.grant.AddMember(c.Request.Context(), allowlistId, in.Address)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, publish.ErrAllowlistNotFound) ||
			errors.Is(err, publish.ErrPayloadNotFound) ||
			errors.Is(err, publish.ErrMetadataNotFound) ||
			errors.Is(err, publish.ErrTransportationNotFound) {
			status = http.StatusNotFound
		}
		self.Log.WithField("allowlist_id", allowlistId).WithError(err).Error("Failed to grant member")
		c.JSON(status, gin.H{"error": "failed to grant member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
