package model

import "time"

// SpecialOffer is a per-user deal created by the admin. Only active offers
// are surfaced to the owning user in the purchase view.
type SpecialOffer struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	ProductName string    `gorm:"size:128;not null" json:"product_name"`
	Description string    `gorm:"size:255" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SpecialOffer) TableName() string { return "special_offers" }
