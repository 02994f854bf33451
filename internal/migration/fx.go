package migration

import (
	"github.com/bwmarrin/snowflake"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/ledgerline/invoicer/internal/config"
	customerdomain "github.com/ledgerline/invoicer/internal/customer/domain"
	invoicedomain "github.com/ledgerline/invoicer/internal/invoice/domain"
	"github.com/ledgerline/invoicer/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql have no migration driver wired; the schema is
			// derived from the models instead.
			err := conn.AutoMigrate(
				&authdomain.User{},
				&customerdomain.Customer{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceRow{},
			)
			if err != nil {
				return err
			}
		}

		if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
			return seed.EnsureAdminUser(conn, cfg, node)
		}
		return nil
	}),
)
