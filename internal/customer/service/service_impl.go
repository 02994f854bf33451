package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/ledgerline/invoicer/internal/customer/domain"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Users authdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	users authdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
		users: p.Users,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name, email, err := validate(req.Name, req.Email)
	if err != nil {
		return domain.Customer{}, err
	}

	if req.UserID == 0 {
		return domain.Customer{}, domain.ErrOwnerNotFound
	}
	exists, err := s.users.ExistsByID(ctx, req.UserID)
	if err != nil {
		return domain.Customer{}, err
	}
	if !exists {
		return domain.Customer{}, domain.ErrOwnerNotFound
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:          s.genID.Generate(),
		UserID:      req.UserID,
		Name:        name,
		Email:       email,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) GetAll(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.FindAll(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (pagination.Page[domain.Customer], error) {
	req.Normalize()
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	name, email, err := validate(req.Name, req.Email)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	customer.Name = name
	customer.Email = email
	customer.Address = req.Address
	customer.PhoneNumber = req.PhoneNumber
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) SoftDelete(ctx context.Context, id snowflake.ID) error {
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}

	now := time.Now().UTC()
	customer.DeletedAt = &now
	customer.UpdatedAt = now
	return s.repo.Update(ctx, s.db, customer)
}

func (s *Service) HardDelete(ctx context.Context, id snowflake.ID) error {
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}

	count, err := s.repo.CountLiveInvoices(ctx, s.db, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrHasInvoices
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.PurgeInvoices(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func validate(rawName, rawEmail string) (string, string, error) {
	name := strings.TrimSpace(rawName)
	if len(name) < 2 {
		return "", "", domain.ErrInvalidName
	}
	email := strings.TrimSpace(rawEmail)
	if email == "" || !strings.Contains(email, "@") {
		return "", "", domain.ErrInvalidEmail
	}
	return name, email, nil
}
