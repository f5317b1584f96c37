package model

import "time"

// User is an approved customer account. The table only ever holds approved
// rows; unapproved applicants live in pending_accounts until the admin
// decides.
type User struct {
	// TelegramID is the stable identity handed out by Telegram, used as the
	// primary key instead of a surrogate id.
	TelegramID int64  `gorm:"primaryKey" json:"telegram_id"`
	Username   string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	// Password is stored in plain text, max 8 characters. The admin panel
	// displays it as-is.
	Password  string    `gorm:"size:8;not null" json:"password"`
	Approved  bool      `gorm:"not null;default:true" json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }
