package migration

import (
	"context"

	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/internal/config"
	journaldomain "github.com/tallybook/ledgerd/internal/journal/domain"
	paymentaccountdomain "github.com/tallybook/ledgerd/internal/paymentaccount/domain"
	tenantdomain "github.com/tallybook/ledgerd/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, tenants tenantdomain.Service) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite is the local/dev path; golang-migrate's embedded files
			// target postgres, so let gorm derive the schema there.
			if err := autoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.DefaultTenantName != "" {
			_, err := tenants.EnsureDefault(context.Background(), cfg.DefaultTenantName)
			return err
		}
		return nil
	}),
)

// autoMigrate derives the schema from the models. The partial unique index
// on system tags is not expressible through gorm tags, so it is created by
// hand to match the postgres migration.
func autoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&tenantdomain.Tenant{},
		&accountdomain.Account{},
		&journaldomain.Journal{},
		&journaldomain.JournalLine{},
		&paymentaccountdomain.PaymentAccount{},
	); err != nil {
		return err
	}
	return conn.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_accounts_tenant_system_tag ON accounts(tenant_id, system_tag) WHERE system_tag IS NOT NULL",
	).Error
}
