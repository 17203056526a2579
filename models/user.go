package models

import (
	"time"
)

/************************************************
/**** MARK: USER STATUS ****/
/************************************************/
const USER_STATUS_AVAILABLE = 0
const USER_STATUS_PENDING = 1
const USER_STATUS_BLOCKED = 2

// User is a business owner: the account that configures bots, pays the
// subscriptions and runs them against customers.
type User struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name      string     `gorm:"not null" json:"name" form:"name"`
	Email     string     `gorm:"not null;unique" json:"email" form:"email"`
	Password  string     `gorm:"not null" json:"password" form:"password"`
	Phone     string     `gorm:"default:''" json:"phone" form:"phone"`
	Company   string     `gorm:"default:''" json:"company" form:"company"`
	Status    int        `gorm:"default:0" json:"status" form:"status"`
	Admin     bool       `gorm:"not null; default: false" json:"admin" form:"admin"`
	CreatedAt *time.Time `json:"created_at" form:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" form:"updated_at"`
}

func (user User) MissingFields() string {
	if user.Name == "" {
		return "name"
	} else if user.Email == "" {
		return "email"
	} else if user.Password == "" {
		return "password"
	} else if CheckPassword(user.Password) != "" {
		return CheckPassword(user.Password)
	}
	return ""
}

// CheckPassword returns the name of the failing rule, or "" when valid.
func CheckPassword(password string) string {
	if len(password) < 6 {
		return "password"
	}
	return ""
}
