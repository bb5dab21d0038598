package gateway

import (
	"context"
	"net/http"

	"github.com/isopod-iot/sealer/src/publish"
	"github.com/isopod-iot/sealer/src/retrieve"
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/monitoring"
	"github.com/isopod-iot/sealer/src/utils/sui"
	"github.com/isopod-iot/sealer/src/utils/task"

	"github.com/gin-gonic/gin"
)

// Rest API server, the outer surface of the pipeline. Controllers are thin,
// all logic lives in the services.
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	monitor   monitoring.Monitor
	client    *sui.Client
	signer    *sui.Signer
	ingest    *Ingest
	publisher *publish.Publisher
	grant     *publish.Grant
	retriever *retrieve.Service
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "gateway-server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.httpServer = &http.Server{
		Addr:    config.Gateway.ListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) WithClient(client *sui.Client) *Server {
	self.client = client
	return self
}

func (self *Server) WithSigner(signer *sui.Signer) *Server {
	self.signer = signer
	return self
}

func (self *Server) WithIngest(ingest *Ingest) *Server {
	self.ingest = ingest
	return self
}

func (self *Server) WithPublisher(publisher *publish.Publisher) *Server {
	self.publisher = publisher
	return self
}

func (self *Server) WithGrant(grant *publish.Grant) *Server {
	self.grant = grant
	return self
}

func (self *Server) WithRetriever(retriever *retrieve.Service) *Server {
	self.retriever = retriever
	return self
}

func (self *Server) run() (err error) {
	v1 := self.Router.Group("v1")
	{
		v1.POST("batches", self.onIngestBatch)
		v1.POST("allowlists/:allowlistId/publish", self.onPublishBlob)
		v1.POST("allowlists/:allowlistId/grant", self.onGrantMember)
		v1.GET("transportations/:transportationId/bundle", self.onGetBundle)
		v1.GET("accounts/:address/transportations", self.onGetTransportations)
		v1.GET("balance", self.onGetBalance)
	}

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}
