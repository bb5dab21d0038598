package publish

import (
	"errors"
)

var (
	// Allowlist id is not known to the store
	ErrAllowlistNotFound = errors.New("allowlist not found")

	// Allowlist points at a payload that doesn't exist
	ErrPayloadNotFound = errors.New("payload not found")

	// Payload has no metadata row, it cannot be published or granted
	ErrMetadataNotFound = errors.New("metadata not found")

	// Metadata resolves to no transportation
	ErrTransportationNotFound = errors.New("transportation not found")

	// The component is shutting down and takes no more work
	ErrStopping = errors.New("stopping, no more work accepted")
)
