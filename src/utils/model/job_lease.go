package model

import (
	"time"
)

const TableJobLease = "job_leases"

// Durable lease guarding mutually exclusive jobs across process instances.
// Acquired with a conditional update, expires on its own.
type JobLease struct {
	Name      string `gorm:"primaryKey"`
	Owner     string `gorm:"not null"`
	ExpiresAt time.Time
	UpdatedAt time.Time
}

func (JobLease) TableName() string {
	return TableJobLease
}
