package sui

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isopod-iot/sealer/src/utils/config"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc

	server *httptest.Server
	client *Client
	signer *Signer

	// Per-method call counters
	effectsCalls  *atomic.Int64
	gasPriceCalls *atomic.Int64
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.effectsCalls = atomic.NewInt64(0)
	s.gasPriceCalls = atomic.NewInt64(0)

	s.server = httptest.NewServer(http.HandlerFunc(s.handleRpc))

	conf := config.Default()
	conf.Chain.RpcUrl = s.server.URL
	conf.Chain.PackageId = testPackage
	s.client = NewClient(s.ctx, &conf.Chain)

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	assert.NoError(s.T(), err)
	key, err := jwk.New(priv)
	assert.NoError(s.T(), err)
	buf, err := json.Marshal(key)
	assert.NoError(s.T(), err)
	s.signer, err = NewSigner(string(buf))
	assert.NoError(s.T(), err)
}

func (s *ClientTestSuite) TearDownSuite() {
	s.server.Close()
	s.cancel()
}

func (s *ClientTestSuite) handleRpc(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	assert.NoError(s.T(), err)

	var result interface{}
	switch req.Method {
	case "unsafe_moveCall":
		result = map[string]string{
			"txBytes": base64.StdEncoding.EncodeToString([]byte("tx data")),
		}
	case "sui_executeTransactionBlock":
		result = map[string]interface{}{
			"digest": "8gT7wrNUXh",
			"effects": map[string]interface{}{
				"status": map[string]string{"status": "success"},
			},
		}
	case "sui_getTransactionBlock":
		// Effects become queryable on the second poll
		if s.effectsCalls.Inc() < 2 {
			result = map[string]interface{}{"digest": "8gT7wrNUXh"}
		} else {
			result = map[string]interface{}{
				"digest": "8gT7wrNUXh",
				"effects": map[string]interface{}{
					"status": map[string]string{"status": "success"},
				},
				"objectChanges": []map[string]string{
					{"type": "created", "objectType": testPackage + "::allowlist::Cap", "objectId": "0xcap"},
					{"type": "created", "objectType": testPackage + "::allowlist::Allowlist", "objectId": "0xallowlist"},
				},
			}
		}
	case "suix_getBalance":
		result = map[string]interface{}{
			"coinType":        "0x2::sui::SUI",
			"coinObjectCount": 1,
			"totalBalance":    "123456789",
		}
	case "suix_getReferenceGasPrice":
		s.gasPriceCalls.Inc()
		result = "750"
	default:
		s.T().Fatalf("unexpected method %s", req.Method)
	}

	raw, err := json.Marshal(result)
	assert.NoError(s.T(), err)

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.Id,
		"result":  json.RawMessage(raw),
	})
	assert.NoError(s.T(), err)
}

func (s *ClientTestSuite) TestCreateAllowlistEntry() {
	digest, err := s.client.CreateAllowlistEntry(s.ctx, s.signer, "sensor-7")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "8gT7wrNUXh", digest)
}

func (s *ClientTestSuite) TestWaitForEffects() {
	s.effectsCalls.Store(0)

	block, err := s.client.WaitForEffects(s.ctx, "8gT7wrNUXh")
	assert.NoError(s.T(), err)
	assert.NotNil(s.T(), block.Effects)
	assert.GreaterOrEqual(s.T(), s.effectsCalls.Load(), int64(2))

	created, err := ExtractCreatedObjects(block.ObjectChanges, testPackage, "allowlist")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "0xcap", created.CapID)
	assert.Equal(s.T(), "0xallowlist", created.AllowlistID)
}

func (s *ClientTestSuite) TestGetBalance() {
	balance, err := s.client.GetBalance(s.ctx, s.signer.Address)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "123456789", balance)
}

func (s *ClientTestSuite) TestReferenceGasPriceIsCached() {
	s.gasPriceCalls.Store(0)

	price, err := s.client.ReferenceGasPrice(s.ctx)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(750), price)

	_, err = s.client.ReferenceGasPrice(s.ctx)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), s.gasPriceCalls.Load())
}
