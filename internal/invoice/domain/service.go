package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateInvoiceRequest struct {
	CustomerID snowflake.ID
	StartDate  time.Time
	EndDate    time.Time
	Comment    *string
}

type UpdateInvoiceRequest struct {
	StartDate time.Time
	EndDate   time.Time
	Comment   *string
}

// ListInvoiceRequest is the paged query. Search matches the comment
// case-insensitively; sortable fields are startdate, enddate, totalsum and
// createdat. Status is ignored when it does not parse; MinSum/MaxSum are
// clamped to zero and swapped when min exceeds max; CustomerID zero means no
// customer filter.
type ListInvoiceRequest struct {
	pagination.Params
	Status     string
	MinSum     *decimal.Decimal
	MaxSum     *decimal.Decimal
	CustomerID snowflake.ID
}

type AddRowRequest struct {
	InvoiceID snowflake.ID
	Service   string
	Quantity  decimal.Decimal
	Rate      decimal.Decimal
}

type UpdateRowRequest struct {
	Service  string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	GetAll(context.Context) ([]Invoice, error)
	GetByID(context.Context, snowflake.ID) (Invoice, error)
	GetByCustomer(context.Context, snowflake.ID) ([]Invoice, error)
	List(context.Context, ListInvoiceRequest) (pagination.Page[Invoice], error)
	Update(context.Context, snowflake.ID, UpdateInvoiceRequest) (Invoice, error)
	ChangeStatus(context.Context, snowflake.ID, string) (Invoice, error)
	SoftDelete(context.Context, snowflake.ID) error
	HardDelete(context.Context, snowflake.ID) error

	AddRow(context.Context, AddRowRequest) (InvoiceRow, error)
	GetRow(context.Context, snowflake.ID) (InvoiceRow, error)
	GetRows(context.Context) ([]InvoiceRow, error)
	GetRowsByInvoice(context.Context, snowflake.ID) ([]InvoiceRow, error)
	UpdateRow(context.Context, snowflake.ID, UpdateRowRequest) (InvoiceRow, error)
	DeleteRow(context.Context, snowflake.ID) error
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrRowNotFound      = errors.New("row_not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrInvalidState     = errors.New("invalid_state")
	ErrInvalidPeriod    = errors.New("invalid_period")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidService   = errors.New("invalid_service")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidRate      = errors.New("invalid_rate")
	ErrInvalidID        = errors.New("invalid_id")
)
