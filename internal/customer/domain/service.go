package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	Name        string
	Email       string
	Address     *string
	PhoneNumber *string
	UserID      snowflake.ID
}

type UpdateCustomerRequest struct {
	Name        string
	Email       string
	Address     *string
	PhoneNumber *string
}

// ListCustomerRequest is the paged query. Search matches name and email
// case-insensitively; sortable fields are name, email and createdat.
type ListCustomerRequest struct {
	pagination.Params
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	GetAll(context.Context) ([]Customer, error)
	GetByID(context.Context, snowflake.ID) (Customer, error)
	List(context.Context, ListCustomerRequest) (pagination.Page[Customer], error)
	Update(context.Context, snowflake.ID, UpdateCustomerRequest) (Customer, error)
	SoftDelete(context.Context, snowflake.ID) error
	HardDelete(context.Context, snowflake.ID) error
}

var (
	ErrNotFound      = errors.New("not_found")
	ErrOwnerNotFound = errors.New("owner_not_found")
	ErrHasInvoices   = errors.New("customer_has_invoices")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidID     = errors.New("invalid_id")
)
