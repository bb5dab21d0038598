package walrus

import (
	"errors"
)

var (
	// Blob is not known to the aggregator
	ErrNotFound = errors.New("blob not found")

	// Publisher accepted the upload but the response carried no blob id
	ErrNoBlobId = errors.New("store response carries no blob id")
)
