package model

import (
	"time"
)

const TableAccount = "accounts"

// Wallet address granted access to one or more transportations
type Account struct {
	ID      string `gorm:"primaryKey"`
	Address string `gorm:"not null; uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Transportations []Transportation `gorm:"many2many:accounts_transportations"`
}

func (Account) TableName() string {
	return TableAccount
}
