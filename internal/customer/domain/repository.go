package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Customer, error)
	List(ctx context.Context, db *gorm.DB, req ListCustomerRequest) (pagination.Page[Customer], error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountLiveInvoices(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error)
	PurgeInvoices(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error
}
