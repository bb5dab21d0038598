package seal

import (
	"errors"
)

var (
	// Key servers rejected the access proof, surfaced verbatim to the caller
	ErrNoAccess = errors.New("no access to decryption keys")

	// Fewer key servers responded than the threshold requires
	ErrTooFewShares = errors.New("not enough key server shares")

	// Bytes are not a valid encrypted object envelope
	ErrInvalidCiphertext = errors.New("invalid encrypted object")

	// Session credential signature missing or session expired
	ErrInvalidSession = errors.New("invalid session credential")
)
