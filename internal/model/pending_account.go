package model

import "time"

// PendingAccount is an account request awaiting the admin's decision. It is
// promoted into users on approval and hard-deleted either way.
type PendingAccount struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	TelegramID int64     `gorm:"not null;index" json:"telegram_id"`
	Username   string    `gorm:"size:64;not null" json:"username"`
	Password   string    `gorm:"size:8;not null" json:"password"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PendingAccount) TableName() string { return "pending_accounts" }
