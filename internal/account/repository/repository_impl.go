package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tallybook/ledgerd/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Create(account).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("tenant_id = ? AND id = ?", account.TenantID, account.ID).
		Select("name", "type", "subtype", "system_tag", "is_control", "allow_direct_post",
			"is_payment_eligible", "is_system", "is_contra", "parent_code", "is_active", "updated_at").
		Updates(account).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, accountID snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, accountID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repo) FindByTag(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, tag domain.SystemTag) ([]domain.Account, error) {
	var accounts []domain.Account
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND system_tag = ? AND is_active = ?", tenantID, tag, true).
		Order("code").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Account, error) {
	var accounts []domain.Account
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repo) CountPostedLines(ctx context.Context, db *gorm.DB, tenantID, accountID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM journal_lines l
		 JOIN journals j ON j.id = l.journal_id
		 WHERE l.tenant_id = ? AND l.account_id = ? AND j.status = ?`,
		tenantID, accountID, "POSTED",
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) CountActiveChildren(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("tenant_id = ? AND parent_code = ? AND is_active = ?", tenantID, code, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
