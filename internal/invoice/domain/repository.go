package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Invoice, error)
	FindByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Invoice, error)
	List(ctx context.Context, db *gorm.DB, req ListInvoiceRequest) (pagination.Page[Invoice], error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	AddTotal(ctx context.Context, db *gorm.DB, id snowflake.ID, delta decimal.Decimal) error

	InsertRow(ctx context.Context, db *gorm.DB, row *InvoiceRow) error
	FindRowByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*InvoiceRow, error)
	FindRows(ctx context.Context, db *gorm.DB) ([]InvoiceRow, error)
	FindRowsByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceRow, error)
	UpdateRow(ctx context.Context, db *gorm.DB, row *InvoiceRow) error
	DeleteRow(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
