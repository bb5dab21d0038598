package retrieve

import (
	"errors"
)

var (
	// Requesting account is not linked to the transportation
	ErrAccessDenied = errors.New("account has no access to the transportation")

	// Transportation id is not known to the store
	ErrTransportationNotFound = errors.New("transportation not found")

	// Decrypted payload is not valid JSON
	ErrMalformedReading = errors.New("decrypted reading is not valid JSON")
)
