package model

import (
	"database/sql"
	"time"
)

const TableBatch = "batches"

type Batch struct {
	ID       string       `gorm:"primaryKey; comment:Unique batch id"`
	Status   Status       `gorm:"not null; type: transaction_status; comment:Aggregate status of the batch"`
	PushedAt sql.NullTime `gorm:"comment:When the scheduler last finished processing this batch"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Payloads []Payload `gorm:"foreignKey:BatchID"`
}

func (Batch) TableName() string {
	return TableBatch
}
