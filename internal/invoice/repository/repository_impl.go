package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/internal/invoice/domain"
	"github.com/ledgerline/invoicer/pkg/db"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// sortColumns is the allow-list for list ordering, keyed by lowercased field
// name.
var sortColumns = map[string]string{
	"startdate": "start_date",
	"enddate":   "end_date",
	"totalsum":  "total_sum",
	"createdat": "created_at",
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, invoice *domain.Invoice) error {
	return conn.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.Live(conn.WithContext(ctx)).
		Preload("Rows").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindAll(ctx context.Context, conn *gorm.DB) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.Live(conn.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) FindByCustomer(ctx context.Context, conn *gorm.DB, customerID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.Live(conn.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, req domain.ListInvoiceRequest) (pagination.Page[domain.Invoice], error) {
	stmt := db.Live(conn.WithContext(ctx).Model(&domain.Invoice{}))
	if status, ok := domain.ParseStatus(req.Status); ok {
		stmt = stmt.Where("status = ?", status)
	}
	if req.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", req.CustomerID)
	}
	if req.MinSum != nil {
		stmt = stmt.Where("total_sum >= ?", *req.MinSum)
	}
	if req.MaxSum != nil {
		stmt = stmt.Where("total_sum <= ?", *req.MaxSum)
	}
	if req.Search != "" {
		stmt = stmt.Where("LOWER(comment) LIKE ?", "%"+req.Search+"%")
	}
	return pagination.Find[domain.Invoice](stmt, req.Params, req.OrderClause(sortColumns))
}

// Update persists invoice fields from the struct. The denormalized total is
// owned by AddTotal and is never written back from an in-memory snapshot,
// which could be stale by the time it lands.
func (r *repo) Update(ctx context.Context, conn *gorm.DB, invoice *domain.Invoice) error {
	return conn.WithContext(ctx).Omit("Rows", "TotalSum").Save(invoice).Error
}

// Delete removes the invoice and its rows.
func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	err := conn.WithContext(ctx).
		Delete(&domain.InvoiceRow{}, "invoice_id = ?", id).Error
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).Delete(&domain.Invoice{}, "id = ?", id).Error
}

// AddTotal applies a delta to the denormalized total as an atomic SQL
// increment. Concurrent row mutations on the same invoice serialize on the
// store, not on a read-modify-write in process.
func (r *repo) AddTotal(ctx context.Context, conn *gorm.DB, id snowflake.ID, delta decimal.Decimal) error {
	return conn.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"total_sum":  gorm.Expr("total_sum + ?", delta),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) InsertRow(ctx context.Context, conn *gorm.DB, row *domain.InvoiceRow) error {
	return conn.WithContext(ctx).Create(row).Error
}

func (r *repo) FindRowByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.InvoiceRow, error) {
	var row domain.InvoiceRow
	err := conn.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) FindRows(ctx context.Context, conn *gorm.DB) ([]domain.InvoiceRow, error) {
	var rows []domain.InvoiceRow
	err := conn.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindRowsByInvoice(ctx context.Context, conn *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceRow, error) {
	var rows []domain.InvoiceRow
	err := conn.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) UpdateRow(ctx context.Context, conn *gorm.DB, row *domain.InvoiceRow) error {
	return conn.WithContext(ctx).Save(row).Error
}

func (r *repo) DeleteRow(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Delete(&domain.InvoiceRow{}, "id = ?", id).Error
}
