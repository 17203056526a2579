package models

import "time"

// BotTemplate is one catalog entry a business owner can configure and
// subscribe to (customer support bot, appointment bot, content bot...).
type BotTemplate struct {
	ID          string `gorm:"primary_key;type:varchar(64)" json:"id" form:"id"`
	Title       string `gorm:"not null" json:"title" form:"title"`
	Description string `gorm:"type:text" json:"description" form:"description"`

	// PriceCents is the monthly subscription price.
	PriceCents int64 `gorm:"not null;default:0" json:"price_cents" form:"price_cents"`

	Currency  string     `gorm:"not null;default:'EUR'" json:"currency" form:"currency"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
