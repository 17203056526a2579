package models

import "time"

/************************************************
/**** MARK: CONFIGURATION STATUS ****/
/************************************************/
const CONFIG_STATUS_PENDING_PAYMENT = "pending_payment"
const CONFIG_STATUS_PROCESSING = "processing"
const CONFIG_STATUS_ACTIVE = "active"
const CONFIG_STATUS_SUSPENDED = "suspended"
const CONFIG_STATUS_ERROR = "error"

// Configuration is one business-bot pairing: the owner's instance of a bot
// template, its business profile and its subscription lifecycle status.
//
// Status is written exclusively by the lifecycle package (payment events) and
// by the checkout flow (pending_payment/processing/error). Profile updates
// must never touch it.
type Configuration struct {
	ID            string `gorm:"primary_key;type:varchar(64)" json:"id"`
	UserID        int64  `gorm:"not null;index" json:"user_id"`
	TemplateID    string `gorm:"not null;index" json:"template_id" form:"template_id"`
	TemplateTitle string `gorm:"not null" json:"template_title" form:"template_title"`

	BusinessName string `gorm:"not null" json:"business_name" form:"business_name"`
	Phone        string `gorm:"default:''" json:"phone" form:"phone"`
	Email        string `gorm:"default:''" json:"email" form:"email"`
	Hours        string `gorm:"default:''" json:"hours" form:"hours"`
	Services     string `gorm:"type:text" json:"services" form:"services"`

	// AutomationEndpoint is the business-configured webhook (Make/n8n) the bot
	// may call mid-conversation. Empty means the bot runs in informative mode.
	AutomationEndpoint string `gorm:"default:''" json:"automation_endpoint" form:"automation_endpoint"`

	// BookingPageURL is offered to the end user when the bot cannot book
	// automatically.
	BookingPageURL string `gorm:"default:''" json:"booking_page_url" form:"booking_page_url"`

	// SystemPrompt is an optional owner-supplied persona override, appended to
	// the generated persona text.
	SystemPrompt string `gorm:"type:text" json:"system_prompt" form:"system_prompt"`

	Status string `gorm:"not null;default:'pending_payment';index" json:"status"`

	// StripeSubscriptionID is filled when checkout completes, for support and
	// reconciliation. Correlation always runs through event metadata, not
	// through this field.
	StripeSubscriptionID string `gorm:"default:''" json:"stripe_subscription_id"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (config Configuration) MissingFields() string {
	if config.TemplateID == "" {
		return "template_id"
	} else if config.BusinessName == "" {
		return "business_name"
	}
	return ""
}
