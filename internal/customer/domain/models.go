// Package domain contains core types for the customer service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is an invoiced party owned by a user account. DeletedAt is the
// soft-delete tombstone; live queries exclude rows where it is set.
type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"not null;index" json:"userId"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Email       string       `gorm:"type:text;not null" json:"email"`
	Address     *string      `gorm:"type:text" json:"address,omitempty"`
	PhoneNumber *string      `gorm:"type:text" json:"phoneNumber,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	DeletedAt   *time.Time   `gorm:"index" json:"deletedAt,omitempty"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
