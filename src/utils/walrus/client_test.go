package walrus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isopod-iot/sealer/src/utils/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc

	publisher  *httptest.Server
	aggregator *httptest.Server
	client     *Client

	// Next store response served by the fake publisher
	storeBody interface{}
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.publisher = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(s.T(), http.MethodPut, r.Method)
		assert.Equal(s.T(), "/v1/blobs", r.URL.Path)
		assert.Equal(s.T(), "3", r.URL.Query().Get("epochs"))
		_ = json.NewEncoder(w).Encode(s.storeBody)
	}))

	s.aggregator = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/blobs/known-blob":
			_, _ = w.Write([]byte("ciphertext bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	conf := config.Default()
	conf.Walrus.PublisherUrl = s.publisher.URL
	conf.Walrus.AggregatorUrl = s.aggregator.URL
	s.client = NewClient(s.ctx, &conf.Walrus)
}

func (s *ClientTestSuite) TearDownSuite() {
	s.publisher.Close()
	s.aggregator.Close()
	s.cancel()
}

func (s *ClientTestSuite) TestStoreNewlyCreated() {
	s.storeBody = map[string]interface{}{
		"newlyCreated": map[string]interface{}{
			"blobObject": map[string]string{"id": "0xobj", "blobId": "blob-1"},
		},
	}

	blobId, err := s.client.Store(s.ctx, []byte("data"))
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "blob-1", blobId)
}

func (s *ClientTestSuite) TestStoreAlreadyCertified() {
	s.storeBody = map[string]interface{}{
		"alreadyCertified": map[string]interface{}{"blobId": "blob-2", "endEpoch": 42},
	}

	blobId, err := s.client.Store(s.ctx, []byte("data"))
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "blob-2", blobId)
}

func (s *ClientTestSuite) TestStoreWithoutBlobId() {
	s.storeBody = map[string]interface{}{}

	_, err := s.client.Store(s.ctx, []byte("data"))
	assert.ErrorIs(s.T(), err, ErrNoBlobId)
}

func (s *ClientTestSuite) TestRead() {
	data, err := s.client.Read(s.ctx, "known-blob")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []byte("ciphertext bytes"), data)
}

func (s *ClientTestSuite) TestReadNotFound() {
	_, err := s.client.Read(s.ctx, "unknown-blob")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}
