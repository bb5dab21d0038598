// Package walrus talks to the decentralized blob store over its HTTP
// publisher and aggregator surfaces.
package walrus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/isopod-iot/sealer/src/utils/build_info"
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Client struct {
	config     *config.Walrus
	publisher  *resty.Client
	aggregator *resty.Client
	log        *logrus.Entry
	limiter    *rate.Limiter
}

func NewClient(ctx context.Context, config *config.Walrus) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("walrus-client")
	self.limiter = rate.NewLimiter(rate.Limit(config.LimiterRps), 1)

	self.publisher = resty.New().
		SetBaseURL(config.PublisherUrl).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "isopod.cc/sealer/"+build_info.Version)

	self.aggregator = resty.New().
		SetBaseURL(config.AggregatorUrl).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "isopod.cc/sealer/"+build_info.Version)

	return
}

// Store uploads a blob to the publisher and returns its id. An upload of
// bytes already held by the network certifies the existing blob instead of
// duplicating it, both outcomes carry the same id.
func (self *Client) Store(ctx context.Context, data []byte) (blobId string, err error) {
	err = self.limiter.Wait(ctx)
	if err != nil {
		return
	}

	req := self.publisher.R().
		SetContext(ctx).
		SetQueryParam("epochs", strconv.Itoa(self.config.StoreEpochs)).
		SetBody(data)
	if self.config.Deletable {
		req.SetQueryParam("deletable", "true")
	}

	resp, err := req.Put("/v1/blobs")
	if err != nil {
		return
	}
	if resp.IsError() {
		err = fmt.Errorf("blob upload failed: %s", resp.Status())
		return
	}

	var out storeResponse
	err = json.Unmarshal(resp.Body(), &out)
	if err != nil {
		return
	}

	switch {
	case out.NewlyCreated != nil && out.NewlyCreated.BlobObject.BlobId != "":
		blobId = out.NewlyCreated.BlobObject.BlobId
	case out.AlreadyCertified != nil && out.AlreadyCertified.BlobId != "":
		blobId = out.AlreadyCertified.BlobId
		self.log.WithField("blob_id", blobId).Debug("Blob already certified")
	default:
		err = ErrNoBlobId
	}
	return
}

// Read downloads a blob from the aggregator by id
func (self *Client) Read(ctx context.Context, blobId string) (data []byte, err error) {
	err = self.limiter.Wait(ctx)
	if err != nil {
		return
	}

	resp, err := self.aggregator.R().
		SetContext(ctx).
		Get("/v1/blobs/" + blobId)
	if err != nil {
		return
	}
	if resp.StatusCode() == http.StatusNotFound {
		err = fmt.Errorf("%w: %s", ErrNotFound, blobId)
		return
	}
	if resp.IsError() {
		err = fmt.Errorf("blob download failed for %s: %s", blobId, resp.Status())
		return
	}

	data = resp.Body()
	return
}
