package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/internal/clock"
	"github.com/tallybook/ledgerd/internal/seed"
	"github.com/tallybook/ledgerd/internal/tenant/domain"
	"github.com/tallybook/ledgerd/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Accounts accountdomain.Service
	Clock    clock.Clock
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	accounts accountdomain.Service
	clock    clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("tenant.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		accounts: p.Accounts,
		clock:    p.Clock,
	}
}

func (s *Service) Provision(ctx context.Context, name string) (*domain.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	tenant := &domain.Tenant{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, tenant); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	if err := seed.EnsureDefaultChart(ctx, s.accounts, tenant.ID); err != nil {
		return nil, err
	}

	s.log.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)
	return tenant, nil
}

// EnsureDefault is the startup bootstrap: provision the named tenant once
// and reconcile its seeded chart on every boot.
func (s *Service) EnsureDefault(ctx context.Context, name string) (*domain.Tenant, error) {
	existing, err := s.repo.FindBySlug(ctx, s.db, slug.Make(name))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := seed.EnsureDefaultChart(ctx, s.accounts, existing.ID); err != nil {
			return nil, err
		}
		return existing, nil
	}
	return s.Provision(ctx, name)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*domain.Tenant, error) {
	tenant, err := s.repo.FindBySlug(ctx, s.db, slugValue)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.repo.List(ctx, s.db)
}
