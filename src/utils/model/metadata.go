package model

import (
	"database/sql"
	"time"
)

const TableMetadata = "metadata"

type Metadata struct {
	ID        string `gorm:"primaryKey"`
	PayloadID string `gorm:"not null; uniqueIndex; comment:Payload this metadata describes"`

	// Device that produced the reading, resolves to a transportation
	DeviceID  string    `gorm:"not null; index"`
	Timestamp time.Time `gorm:"not null; comment:When the reading was taken"`
	DataHash  string    `gorm:"not null; comment:Content hash of the plaintext reading"`

	// Filled once the device id is resolved to a transportation
	TransportationID sql.NullString `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Metadata) TableName() string {
	return TableMetadata
}
