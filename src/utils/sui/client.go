package sui

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/isopod-iot/sealer/src/utils/build_info"
	"github.com/isopod-iot/sealer/src/utils/config"
	"github.com/isopod-iot/sealer/src/utils/logger"
	"github.com/isopod-iot/sealer/src/utils/task"

	"github.com/go-resty/resty/v2"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const gasPriceCacheKey = "reference-gas-price"

// Fullnode JSON-RPC client. Transactions are built server side
// (unsafe_moveCall), signed locally and submitted for execution.
type Client struct {
	client  *resty.Client
	config  *config.Chain
	log     *logrus.Entry
	limiter *rate.Limiter

	// Caches the reference gas price, it changes once per epoch
	cache *cache.Cache
}

func NewClient(ctx context.Context, config *config.Chain) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("sui-client")
	self.limiter = rate.NewLimiter(rate.Limit(config.LimiterRps), 1)
	self.cache = cache.New(config.GasPriceCacheTTL, 2*config.GasPriceCacheTTL)

	self.client = resty.New().
		SetBaseURL(config.RpcUrl).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "isopod.cc/sealer/"+build_info.Version).
		SetHeader("Content-Type", "application/json")

	return
}

func (self *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) (err error) {
	err = self.limiter.Wait(ctx)
	if err != nil {
		return
	}

	resp, err := self.client.R().
		SetContext(ctx).
		SetBody(&rpcRequest{
			JsonRpc: "2.0",
			Id:      1,
			Method:  method,
			Params:  params,
		}).
		Post("")
	if err != nil {
		return
	}
	if resp.IsError() {
		err = fmt.Errorf("unexpected status: %s", resp.Status())
		return
	}

	var envelope rpcResponse
	err = json.Unmarshal(resp.Body(), &envelope)
	if err != nil {
		return
	}
	if envelope.Error != nil {
		err = envelope.Error
		return
	}
	if out == nil {
		return
	}
	return json.Unmarshal(envelope.Result, out)
}

// target formats the full function path within the configured package
func (self *Client) target(function string) string {
	return fmt.Sprintf("%s::%s::%s", self.config.PackageId, self.config.AllowlistModule, function)
}

// moveCall asks the fullnode to build transaction data for a single move call
func (self *Client) moveCall(ctx context.Context, signer *Signer, function string, args []interface{}) (txBytes []byte, err error) {
	var out TransactionBytes
	err = self.call(ctx, "unsafe_moveCall", []interface{}{
		signer.Address,
		self.config.PackageId,
		self.config.AllowlistModule,
		function,
		[]string{}, // no type arguments
		args,
		nil, // let the node pick a gas object
		strconv.FormatUint(self.config.GasBudget, 10),
	}, &out)
	if err != nil {
		err = fmt.Errorf("failed to build %s transaction: %w", self.target(function), err)
		return
	}

	return base64.StdEncoding.DecodeString(out.TxBytes)
}

// ExecuteTransaction signs and submits transaction data, returns the digest.
// Effects are fetched separately, see WaitForEffects.
func (self *Client) ExecuteTransaction(ctx context.Context, signer *Signer, txBytes []byte) (digest string, err error) {
	var out TransactionBlock
	err = self.call(ctx, "sui_executeTransactionBlock", []interface{}{
		base64.StdEncoding.EncodeToString(txBytes),
		[]string{signer.SignTransaction(txBytes)},
		map[string]bool{"showEffects": true},
		"WaitForEffectsCert",
	}, &out)
	if err != nil {
		return
	}

	if out.Effects != nil && out.Effects.Status.Status == "failure" {
		err = fmt.Errorf("transaction %s failed on-chain: %s", out.Digest, out.Effects.Status.Error)
		return
	}

	digest = out.Digest
	return
}

// WaitForEffects polls the transaction block until its object changes become
// queryable. Exponential backoff with a hard deadline instead of a blind
// settle delay.
func (self *Client) WaitForEffects(ctx context.Context, digest string) (out *TransactionBlock, err error) {
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.config.EffectsMaxElapsedTime).
		WithMaxInterval(self.config.EffectsMaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if !errors.Is(err, ErrEffectsNotReady) {
				self.log.WithField("digest", digest).WithError(err).Debug("Transaction effects fetch failed, retrying")
			}
			return err
		}).
		Run(func() (err error) {
			var block TransactionBlock
			err = self.call(ctx, "sui_getTransactionBlock", []interface{}{
				digest,
				map[string]bool{"showEffects": true, "showObjectChanges": true},
			}, &block)
			if err != nil {
				return
			}
			if block.Effects == nil {
				return ErrEffectsNotReady
			}
			out = &block
			return
		})
	if err != nil {
		err = fmt.Errorf("effects for transaction %s: %w", digest, err)
	}
	return
}

// CreateAllowlistEntry submits `create_allowlist_entry(name)` and returns the
// transaction digest
func (self *Client) CreateAllowlistEntry(ctx context.Context, signer *Signer, name string) (digest string, err error) {
	txBytes, err := self.moveCall(ctx, signer, "create_allowlist_entry", []interface{}{name})
	if err != nil {
		return
	}
	return self.ExecuteTransaction(ctx, signer, txBytes)
}

// AddMember submits `add(allowlist, cap, address)`, granting the address
// decrypt rights
func (self *Client) AddMember(ctx context.Context, signer *Signer, allowlistId, capId, address string) (digest string, err error) {
	txBytes, err := self.moveCall(ctx, signer, "add", []interface{}{allowlistId, capId, address})
	if err != nil {
		return
	}
	return self.ExecuteTransaction(ctx, signer, txBytes)
}

// PublishBlob submits `publish(allowlist, cap, blobId)`, linking the uploaded
// ciphertext to the access control object
func (self *Client) PublishBlob(ctx context.Context, signer *Signer, allowlistId, capId, blobId string) (digest string, err error) {
	txBytes, err := self.moveCall(ctx, signer, "publish", []interface{}{allowlistId, capId, blobId})
	if err != nil {
		return
	}
	return self.ExecuteTransaction(ctx, signer, txBytes)
}

// GetBalance returns the total gas coin balance of the address
func (self *Client) GetBalance(ctx context.Context, address string) (totalBalance string, err error) {
	var out Balance
	err = self.call(ctx, "suix_getBalance", []interface{}{address}, &out)
	if err != nil {
		return
	}
	totalBalance = out.TotalBalance
	return
}

// ReferenceGasPrice returns the current reference gas price, cached briefly
func (self *Client) ReferenceGasPrice(ctx context.Context) (price uint64, err error) {
	if cached, ok := self.cache.Get(gasPriceCacheKey); ok {
		price = cached.(uint64)
		return
	}

	var out string
	err = self.call(ctx, "suix_getReferenceGasPrice", []interface{}{}, &out)
	if err != nil {
		return
	}
	price, err = strconv.ParseUint(out, 10, 64)
	if err != nil {
		return
	}

	self.cache.Set(gasPriceCacheKey, price, cache.DefaultExpiration)
	return
}
