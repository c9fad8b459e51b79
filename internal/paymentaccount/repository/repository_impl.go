package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tallybook/ledgerd/internal/paymentaccount/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, entry *domain.PaymentAccount) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.PaymentAccount, error) {
	var entry domain.PaymentAccount
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status *domain.Status) ([]domain.PaymentAccount, error) {
	query := db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var entries []domain.PaymentAccount
	if err := query.Order("name").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, status domain.Status, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.PaymentAccount{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
