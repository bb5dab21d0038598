package report

import (
	"go.uber.org/atomic"
)

type PublisherErrors struct {
	DbError        atomic.Uint64 `json:"db_error"`
	ChainError     atomic.Uint64 `json:"chain_error"`
	SealError      atomic.Uint64 `json:"seal_error"`
	BlobStoreError atomic.Uint64 `json:"blob_store_error"`
	PayloadError   atomic.Uint64 `json:"payload_error"`
}

type PublisherState struct {
	BatchesClaimed     atomic.Uint64 `json:"batches_claimed"`
	BatchesFailed      atomic.Uint64 `json:"batches_failed"`
	PayloadsProcessed  atomic.Uint64 `json:"payloads_processed"`
	AllowlistsCreated  atomic.Uint64 `json:"allowlists_created"`
	BlobsPublished     atomic.Uint64 `json:"blobs_published"`
	MembersGranted     atomic.Uint64 `json:"members_granted"`
	TicksSkipped       atomic.Uint64 `json:"ticks_skipped"`
	StaleLockOverrides atomic.Uint64 `json:"stale_lock_overrides"`
}

type PublisherReport struct {
	State  PublisherState  `json:"state"`
	Errors PublisherErrors `json:"errors"`
}
