package tenant

import (
	"github.com/tallybook/ledgerd/internal/tenant/repository"
	"github.com/tallybook/ledgerd/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
