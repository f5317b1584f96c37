package model

import "time"

// Request type tags, stored verbatim the way the admin sees them.
const (
	HelpTypeBulk      = "Zakup większej ilości"
	HelpTypeComplaint = "Reklamacja"
)

// HelpRequest is a customer inquiry forwarded to the admin. Rows are never
// mutated or deleted.
type HelpRequest struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	TelegramID  int64     `gorm:"not null;index" json:"telegram_id"`
	Username    string    `gorm:"size:64" json:"username"`
	RequestType string    `gorm:"size:32;not null" json:"request_type"`
	Message     string    `gorm:"size:1024" json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

func (HelpRequest) TableName() string { return "help_requests" }
