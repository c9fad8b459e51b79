package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/internal/clock"
	"github.com/tallybook/ledgerd/internal/journal/domain"
	obsmetrics "github.com/tallybook/ledgerd/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Accounts   accountdomain.Service
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	accounts   accountdomain.Service
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("journal.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		accounts:   p.Accounts,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Post(ctx context.Context, tenantID snowflake.ID, in domain.PostInput) (*domain.Journal, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	if in.Date.IsZero() {
		return nil, domain.ErrInvalidDate
	}
	if len(in.Lines) < 2 {
		return nil, domain.ErrTooFewLines
	}

	var sumDebit, sumCredit int64
	accountIDs := make([]snowflake.ID, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.AccountID == 0 {
			return nil, domain.ErrAccountNotFound
		}
		if line.Debit < 0 || line.Credit < 0 {
			return nil, domain.ErrInvalidLineAmounts
		}
		// Exactly one side of a line carries an amount.
		if (line.Debit == 0) == (line.Credit == 0) {
			return nil, domain.ErrInvalidLineAmounts
		}
		sumDebit += line.Debit
		sumCredit += line.Credit
		accountIDs = append(accountIDs, line.AccountID)
	}
	if sumDebit != sumCredit {
		return nil, domain.ErrUnbalancedJournal
	}

	journal := &domain.Journal{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		Date:        in.Date.UTC(),
		Description: strings.TrimSpace(in.Description),
		Reference:   in.Reference,
		Status:      domain.StatusPosted,
		CreatedAt:   s.clock.Now(),
	}

	lines := make([]domain.JournalLine, 0, len(in.Lines))
	for i, line := range in.Lines {
		lines = append(lines, domain.JournalLine{
			ID:        s.genID.Generate(),
			JournalID: journal.ID,
			TenantID:  tenantID,
			AccountID: line.AccountID,
			Position:  i,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Memo:      line.Memo,
			CreatedAt: journal.CreatedAt,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts, err := s.repo.LockAccounts(ctx, tx, tenantID, accountIDs)
		if err != nil {
			return err
		}
		for _, id := range accountIDs {
			account, ok := accounts[id]
			if !ok {
				return domain.ErrAccountNotFound
			}
			if !account.IsActive {
				return domain.ErrPostingToInactiveAccount
			}
			if !account.AllowDirectPost {
				return domain.ErrPostingToControlAccount
			}
		}
		return s.repo.Create(ctx, tx, journal, lines)
	})
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.JournalPosted()
	}
	s.log.Info("journal posted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("journal_id", journal.ID.String()),
		zap.Int("lines", len(lines)),
		zap.Int64("total", sumDebit),
	)

	journal.Lines = lines
	return journal, nil
}

func (s *Service) PostByTags(ctx context.Context, tenantID snowflake.ID, in domain.TagPostInput) (*domain.Journal, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	resolved := make(map[accountdomain.SystemTag]snowflake.ID, len(in.Lines))
	lines := make([]domain.LineInput, 0, len(in.Lines))
	for _, line := range in.Lines {
		id, ok := resolved[line.Tag]
		if !ok {
			account, err := s.accounts.ResolveTag(ctx, tenantID, line.Tag)
			if err != nil {
				return nil, err
			}
			id = account.ID
			resolved[line.Tag] = id
		}
		lines = append(lines, domain.LineInput{
			AccountID: id,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Memo:      line.Memo,
		})
	}

	return s.Post(ctx, tenantID, domain.PostInput{
		Date:        in.Date,
		Description: in.Description,
		Reference:   in.Reference,
		Lines:       lines,
	})
}

func (s *Service) Void(ctx context.Context, tenantID, journalID snowflake.ID) (*domain.Journal, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	var out *domain.Journal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		journal, err := s.repo.FindByID(ctx, tx, tenantID, journalID)
		if err != nil {
			return err
		}
		if journal == nil {
			return domain.ErrNotFound
		}
		switch journal.Status {
		case domain.StatusVoid:
			return domain.ErrAlreadyVoided
		case domain.StatusPosted:
		default:
			return domain.ErrNotPosted
		}

		voidedAt := s.clock.Now()
		if err := s.repo.MarkVoid(ctx, tx, tenantID, journalID, voidedAt); err != nil {
			return err
		}
		journal.Status = domain.StatusVoid
		journal.VoidedAt = &voidedAt
		out = journal
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.JournalVoided()
	}
	s.log.Info("journal voided",
		zap.String("tenant_id", tenantID.String()),
		zap.String("journal_id", journalID.String()),
	)
	return out, nil
}

func (s *Service) Get(ctx context.Context, tenantID, journalID snowflake.ID) (*domain.Journal, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	journal, err := s.repo.FindByID(ctx, s.db, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := s.repo.FindLines(ctx, s.db, tenantID, journalID)
	if err != nil {
		return nil, err
	}
	journal.Lines = lines
	return journal, nil
}
