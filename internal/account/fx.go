package account

import (
	"github.com/tallybook/ledgerd/internal/account/repository"
	"github.com/tallybook/ledgerd/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
