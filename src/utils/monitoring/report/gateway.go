package report

import (
	"go.uber.org/atomic"
)

type GatewayErrors struct {
	DbError        atomic.Uint64 `json:"db_error"`
	BadRequest     atomic.Uint64 `json:"bad_request"`
	RetrievalError atomic.Uint64 `json:"retrieval_error"`
}

type GatewayState struct {
	BatchesIngested  atomic.Uint64 `json:"batches_ingested"`
	PayloadsIngested atomic.Uint64 `json:"payloads_ingested"`
	BundlesReturned  atomic.Uint64 `json:"bundles_returned"`
	BlobsDecrypted   atomic.Uint64 `json:"blobs_decrypted"`
}

type GatewayReport struct {
	State  GatewayState  `json:"state"`
	Errors GatewayErrors `json:"errors"`
}
