package model

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

const TableAllowlist = "allowlists"

// On-chain access control binding for one payload
type Allowlist struct {
	ID        string `gorm:"primaryKey"`
	PayloadID string `gorm:"not null; uniqueIndex; comment:One allowlist per payload"`

	// Capability object proving admin rights over the allowlist
	CapID string `gorm:"not null"`

	// Object granting decrypt rights to its members
	AllowlistID string `gorm:"not null; uniqueIndex"`

	// Set once the ciphertext is published to the blob store
	BlobID sql.NullString

	// Mirror of the on-chain member set, kept for fast lookups
	Members pq.StringArray `gorm:"type:text[]"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Allowlist) TableName() string {
	return TableAllowlist
}
