// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents an account that owns customers.
type User struct {
	ID                    snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                  string       `gorm:"type:text;not null" json:"name"`
	Email                 string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash          string       `gorm:"type:text;not null" json:"-"`
	Address               *string      `gorm:"type:text" json:"address,omitempty"`
	PhoneNumber           *string      `gorm:"type:text" json:"phoneNumber,omitempty"`
	RefreshTokenHash      *string      `gorm:"type:text" json:"-"`
	RefreshTokenExpiresAt *time.Time   `json:"-"`
	CreatedAt             time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt             time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
