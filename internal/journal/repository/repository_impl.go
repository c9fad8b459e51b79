package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/internal/journal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, journal *domain.Journal, lines []domain.JournalLine) error {
	if err := db.WithContext(ctx).Create(journal).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, journalID snowflake.ID) (*domain.Journal, error) {
	var journal domain.Journal
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, journalID).
		First(&journal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &journal, nil
}

func (r *repo) FindLines(ctx context.Context, db *gorm.DB, tenantID, journalID snowflake.ID) ([]domain.JournalLine, error) {
	var lines []domain.JournalLine
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND journal_id = ?", tenantID, journalID).
		Order("position").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) MarkVoid(ctx context.Context, db *gorm.DB, tenantID, journalID snowflake.ID, voidedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Journal{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, journalID, domain.StatusPosted).
		Updates(map[string]any{
			"status":    domain.StatusVoid,
			"voided_at": voidedAt,
		}).Error
}

func (r *repo) LockAccounts(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, accountIDs []snowflake.ID) (map[snowflake.ID]accountdomain.Account, error) {
	query := db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, accountIDs).
		Order("id")
	// Row locks keep two concurrent posts against the same accounts from
	// interleaving. Not supported by sqlite, where the whole-file write lock
	// gives the same guarantee.
	if db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var accounts []accountdomain.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}

	out := make(map[snowflake.ID]accountdomain.Account, len(accounts))
	for _, account := range accounts {
		out[account.ID] = account
	}
	return out, nil
}
