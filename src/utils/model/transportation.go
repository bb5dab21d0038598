package model

import (
	"time"
)

const TableTransportation = "transportations"

// One per physical device/shipment stream. Created lazily the first time a
// payload referencing the device id is ingested, never duplicated.
type Transportation struct {
	ID          string `gorm:"primaryKey"`
	DeviceID    string `gorm:"not null; uniqueIndex"`
	Name        string
	Origin      string
	Destination string

	CreatedAt time.Time
	UpdatedAt time.Time

	MetadataList []Metadata `gorm:"foreignKey:TransportationID"`
	Accounts     []Account  `gorm:"many2many:accounts_transportations"`
}

func (Transportation) TableName() string {
	return TableTransportation
}
