package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatusPending is the only status orders take on in the current flows.
const OrderStatusPending = "pending"

// Order is an immutable checkout record.
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderNo string `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	// UserID is nil when the buyer has no approved account; purchases do not
	// require registration.
	UserID        *int64  `gorm:"index" json:"user_id"`
	Username      string  `gorm:"size:64;not null" json:"username"`
	ProductName   string  `gorm:"size:128;not null" json:"product_name"`
	Quantity      float64 `gorm:"not null" json:"quantity"` // grams
	UnitPrice     float64 `gorm:"not null" json:"unit_price"`
	TotalPrice    float64 `gorm:"not null" json:"total_price"`
	PaymentMethod string  `gorm:"size:32;not null" json:"payment_method"`
	Status        string  `gorm:"size:16;not null;default:pending" json:"status"`
}

func (Order) TableName() string { return "orders" }
