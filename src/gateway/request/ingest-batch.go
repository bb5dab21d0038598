package request

import (
	"time"
)

type IngestPayload struct {
	// Staged ciphertext: base64( nonce || ciphertext || tag )
	EncryptedData string `json:"encrypted_data" binding:"required"`

	DeviceID  string    `json:"device_id" binding:"required"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
	DataHash  string    `json:"data_hash" binding:"required"`
}

type IngestBatch struct {
	Payloads []IngestPayload `json:"payloads" binding:"required,min=1,dive"`
}
