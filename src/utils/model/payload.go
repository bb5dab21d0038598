package model

import (
	"time"
)

const TablePayload = "payloads"

type Payload struct {
	ID      string `gorm:"primaryKey; comment:Unique payload id"`
	BatchID string `gorm:"not null; index; comment:Owning batch"`

	// Staged ciphertext as produced by the ingesting device:
	// base64( 12 byte nonce || AES-256-GCM ciphertext || 16 byte tag )
	EncryptedData string `gorm:"not null"`

	Status Status `gorm:"not null; type: transaction_status; comment:Publication status of this payload"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Metadata  *Metadata  `gorm:"foreignKey:PayloadID"`
	Allowlist *Allowlist `gorm:"foreignKey:PayloadID"`
}

func (Payload) TableName() string {
	return TablePayload
}
