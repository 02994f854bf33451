package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/ledgerline/invoicer/internal/customer/domain"
	"github.com/ledgerline/invoicer/internal/invoice/domain"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Customers customerdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	customers customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	if err := validatePeriod(req.StartDate, req.EndDate); err != nil {
		return domain.Invoice{}, err
	}

	customer, err := s.customers.FindByID(ctx, s.db, req.CustomerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if customer == nil {
		return domain.Invoice{}, domain.ErrCustomerNotFound
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Comment:    req.Comment,
		Status:     domain.InvoiceStatusCreated,
		TotalSum:   decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, err
	}

	return invoice, nil
}

func (s *Service) GetAll(ctx context.Context) ([]domain.Invoice, error) {
	return s.repo.FindAll(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *invoice, nil
}

func (s *Service) GetByCustomer(ctx context.Context, customerID snowflake.ID) ([]domain.Invoice, error) {
	return s.repo.FindByCustomer(ctx, s.db, customerID)
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (pagination.Page[domain.Invoice], error) {
	req.Normalize()

	// Negative bounds are clamped to zero; a min above max means the caller
	// swapped them.
	zero := decimal.Zero
	if req.MinSum != nil && req.MinSum.IsNegative() {
		req.MinSum = &zero
	}
	if req.MaxSum != nil && req.MaxSum.IsNegative() {
		req.MaxSum = &zero
	}
	if req.MinSum != nil && req.MaxSum != nil && req.MinSum.GreaterThan(*req.MaxSum) {
		req.MinSum, req.MaxSum = req.MaxSum, req.MinSum
	}

	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	if err := validatePeriod(req.StartDate, req.EndDate); err != nil {
		return domain.Invoice{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	if invoice.Status != domain.InvoiceStatusCreated {
		return domain.Invoice{}, domain.ErrInvalidState
	}

	invoice.StartDate = req.StartDate
	invoice.EndDate = req.EndDate
	invoice.Comment = req.Comment
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

// ChangeStatus moves an invoice to any of the six states. No transition graph
// is enforced.
func (s *Service) ChangeStatus(ctx context.Context, id snowflake.ID, status string) (domain.Invoice, error) {
	parsed, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	invoice.Status = parsed
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) SoftDelete(ctx context.Context, id snowflake.ID) error {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrNotFound
	}

	now := time.Now().UTC()
	invoice.DeletedAt = &now
	invoice.UpdatedAt = now
	return s.repo.Update(ctx, s.db, invoice)
}

func (s *Service) HardDelete(ctx context.Context, id snowflake.ID) error {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return domain.ErrNotFound
	}
	if invoice.Status != domain.InvoiceStatusCreated {
		return domain.ErrInvalidState
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) AddRow(ctx context.Context, req domain.AddRowRequest) (domain.InvoiceRow, error) {
	if err := validateRow(req.Service, req.Quantity, req.Rate); err != nil {
		return domain.InvoiceRow{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, req.InvoiceID)
	if err != nil {
		return domain.InvoiceRow{}, err
	}
	if invoice == nil {
		return domain.InvoiceRow{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	row := domain.InvoiceRow{
		ID:        s.genID.Generate(),
		InvoiceID: req.InvoiceID,
		Service:   strings.TrimSpace(req.Service),
		Quantity:  req.Quantity,
		Rate:      req.Rate,
		Sum:       req.Quantity.Mul(req.Rate),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The row insert and the total increment are one atomic unit so the
	// denormalized sum can never drift from its rows.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertRow(ctx, tx, &row); err != nil {
			return err
		}
		return s.repo.AddTotal(ctx, tx, req.InvoiceID, row.Sum)
	})
	if err != nil {
		return domain.InvoiceRow{}, err
	}

	return row, nil
}

func (s *Service) GetRow(ctx context.Context, id snowflake.ID) (domain.InvoiceRow, error) {
	row, err := s.repo.FindRowByID(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceRow{}, err
	}
	if row == nil {
		return domain.InvoiceRow{}, domain.ErrRowNotFound
	}
	return *row, nil
}

func (s *Service) GetRows(ctx context.Context) ([]domain.InvoiceRow, error) {
	return s.repo.FindRows(ctx, s.db)
}

func (s *Service) GetRowsByInvoice(ctx context.Context, invoiceID snowflake.ID) ([]domain.InvoiceRow, error) {
	return s.repo.FindRowsByInvoice(ctx, s.db, invoiceID)
}

func (s *Service) UpdateRow(ctx context.Context, id snowflake.ID, req domain.UpdateRowRequest) (domain.InvoiceRow, error) {
	if err := validateRow(req.Service, req.Quantity, req.Rate); err != nil {
		return domain.InvoiceRow{}, err
	}

	row, err := s.repo.FindRowByID(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceRow{}, err
	}
	if row == nil {
		return domain.InvoiceRow{}, domain.ErrRowNotFound
	}

	newSum := req.Quantity.Mul(req.Rate)
	delta := newSum.Sub(row.Sum)

	row.Service = strings.TrimSpace(req.Service)
	row.Quantity = req.Quantity
	row.Rate = req.Rate
	row.Sum = newSum
	row.UpdatedAt = time.Now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateRow(ctx, tx, row); err != nil {
			return err
		}
		return s.repo.AddTotal(ctx, tx, row.InvoiceID, delta)
	})
	if err != nil {
		return domain.InvoiceRow{}, err
	}

	return *row, nil
}

// DeleteRow removes a row and applies the negative delta to the parent total,
// keeping the sum invariant over the remaining rows.
func (s *Service) DeleteRow(ctx context.Context, id snowflake.ID) error {
	row, err := s.repo.FindRowByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if row == nil {
		return domain.ErrRowNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteRow(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.AddTotal(ctx, tx, row.InvoiceID, row.Sum.Neg())
	})
}

func validatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return domain.ErrInvalidPeriod
	}
	if end.After(time.Now().UTC()) {
		return domain.ErrInvalidPeriod
	}
	return nil
}

func validateRow(service string, quantity, rate decimal.Decimal) error {
	if strings.TrimSpace(service) == "" {
		return domain.ErrInvalidService
	}
	if !quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if !rate.IsPositive() {
		return domain.ErrInvalidRate
	}
	return nil
}
