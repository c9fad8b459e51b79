package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/internal/clock"
	"github.com/tallybook/ledgerd/internal/paymentaccount/domain"
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
		log:      p.Log.Named("paymentaccount.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		accounts: p.Accounts,
		clock:    p.Clock,
	}
}

func (s *Service) Register(ctx context.Context, tenantID snowflake.ID, in domain.RegisterInput) (*domain.PaymentAccount, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.AccountID == 0 {
		return nil, domain.ErrInvalidInput
	}

	account, err := s.accounts.GetByID(ctx, tenantID, in.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsPaymentEligible {
		return nil, domain.ErrAccountNotPaymentEligible
	}

	now := s.clock.Now()
	entry := &domain.PaymentAccount{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		AccountID:   in.AccountID,
		Name:        name,
		Institution: in.Institution,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, s.db, entry); err != nil {
		// The unique index on (tenant_id, account_id) enforces one payment
		// method per account.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, err
	}

	s.log.Info("payment account registered",
		zap.String("tenant_id", tenantID.String()),
		zap.String("account_id", in.AccountID.String()),
	)
	return entry, nil
}

func (s *Service) List(ctx context.Context, tenantID snowflake.ID, status *domain.Status) ([]domain.PaymentAccount, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, tenantID, status)
}

func (s *Service) SetStatus(ctx context.Context, tenantID, id snowflake.ID, status domain.Status) (*domain.PaymentAccount, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	if status != domain.StatusActive && status != domain.StatusInactive {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, tenantID, id, status, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindByID(ctx, s.db, tenantID, id)
}
