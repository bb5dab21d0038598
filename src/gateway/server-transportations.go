package gateway

import (
	"errors"
	"net/http"

	"github.com/isopod-iot/sealer/src/gateway/response"
	"github.com/isopod-iot/sealer/src/retrieve"
	"github.com/isopod-iot/sealer/src/utils/seal"

	"github.com/gin-gonic/gin"
)

func (self *Server) onGetBundle(c *gin.Context) {
	transportationId := c.Param("transportationId")

	address := c.Query("address")
	if address == "" {
		self.monitor.GetReport().Gateway.Errors.BadRequest.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})
		return
	}

	readings, err := self.retriever.RetrieveBundle(c.Request.Context(), transportationId, address)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, retrieve.ErrTransportationNotFound):
			status = http.StatusNotFound
		case errors.Is(err, retrieve.ErrAccessDenied), errors.Is(err, seal.ErrNoAccess):
			status = http.StatusForbidden
		}
		self.Log.WithField("transportation_id", transportationId).WithError(err).Error("Failed to retrieve bundle")
		c.JSON(status, gin.H{"error": "failed to retrieve bundle"})
		return
	}

	c.JSON(http.StatusOK, response.Bundle{
		TransportationID: transportationId,
		Readings:         readings,
	})
}

func (self *Server) onGetTransportations(c *gin.Context) {
	address := c.Param("address")

	transportations, err := self.retriever.AccountTransportations(c.Request.Context(), address)
	if err != nil {
		self.Log.WithField("address", address).WithError(err).Error("Failed to list transportations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transportations"})
		return
	}

	c.JSON(http.StatusOK, response.TransportationsToResponse(transportations))
}

func (self *Server) onGetBalance(c *gin.Context) {
	balance, err := self.client.GetBalance(c.Request.Context(), self.signer.Address)
	if err != nil {
		self.Log.WithError(err).Error("Failed to get wallet balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":       self.signer.Address,
		"total_balance": balance,
	})
}
