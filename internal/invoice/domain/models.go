// Package domain contains persistence models for invoicing.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusCreated   InvoiceStatus = "CREATED"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusReceived  InvoiceStatus = "RECEIVED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
	InvoiceStatusRejected  InvoiceStatus = "REJECTED"
)

// ParseStatus resolves a status name case-insensitively. The second return is
// false for unknown names.
func ParseStatus(value string) (InvoiceStatus, bool) {
	switch InvoiceStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case InvoiceStatusCreated:
		return InvoiceStatusCreated, true
	case InvoiceStatusSent:
		return InvoiceStatusSent, true
	case InvoiceStatusReceived:
		return InvoiceStatusReceived, true
	case InvoiceStatusPaid:
		return InvoiceStatusPaid, true
	case InvoiceStatusCancelled:
		return InvoiceStatusCancelled, true
	case InvoiceStatusRejected:
		return InvoiceStatusRejected, true
	}
	return "", false
}

// Invoice represents a billing period for a customer. TotalSum is the
// denormalized sum of its rows, maintained by delta updates so list and
// detail reads never re-aggregate.
type Invoice struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID    `gorm:"not null;index" json:"customerId"`
	StartDate  time.Time       `gorm:"not null" json:"startDate"`
	EndDate    time.Time       `gorm:"not null" json:"endDate"`
	Comment    *string         `gorm:"type:text" json:"comment,omitempty"`
	Status     InvoiceStatus   `gorm:"type:text;not null;default:'CREATED'" json:"status"`
	TotalSum   decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"totalSum"`
	Rows       []InvoiceRow    `gorm:"foreignKey:InvoiceID" json:"rows,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
	DeletedAt  *time.Time      `gorm:"index" json:"deletedAt,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceRow represents a line on an invoice. Sum is Quantity times Rate,
// computed on write.
type InvoiceRow struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID    `gorm:"not null;index" json:"invoiceId"`
	Service   string          `gorm:"type:text;not null" json:"service"`
	Quantity  decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	Rate      decimal.Decimal `gorm:"type:numeric;not null" json:"rate"`
	Sum       decimal.Decimal `gorm:"type:numeric;not null" json:"sum"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (InvoiceRow) TableName() string { return "invoice_rows" }
