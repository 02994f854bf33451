package auth

import (
	"github.com/ledgerline/invoicer/internal/auth/repository"
	"github.com/ledgerline/invoicer/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(
		repository.New,
		service.New,
	),
)
