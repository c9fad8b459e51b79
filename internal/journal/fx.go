package journal

import (
	"github.com/tallybook/ledgerd/internal/journal/repository"
	"github.com/tallybook/ledgerd/internal/journal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("journal.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
