package paymentaccount

import (
	"github.com/tallybook/ledgerd/internal/paymentaccount/repository"
	"github.com/tallybook/ledgerd/internal/paymentaccount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentaccount.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
