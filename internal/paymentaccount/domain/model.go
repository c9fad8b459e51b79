package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// PaymentAccount exposes a payment-eligible ledger account as a selectable
// payment method without revealing the full chart of accounts.
type PaymentAccount struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID `json:"tenant_id" gorm:"not null;index;uniqueIndex:ux_payment_accounts_tenant_account,priority:1"`
	AccountID   snowflake.ID `json:"account_id" gorm:"not null;uniqueIndex:ux_payment_accounts_tenant_account,priority:2"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Institution *string      `json:"institution,omitempty" gorm:"type:text"`
	Status      Status       `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PaymentAccount) TableName() string { return "payment_accounts" }

type Service interface {
	Register(ctx context.Context, tenantID snowflake.ID, in RegisterInput) (*PaymentAccount, error)
	List(ctx context.Context, tenantID snowflake.ID, status *Status) ([]PaymentAccount, error)
	SetStatus(ctx context.Context, tenantID, id snowflake.ID, status Status) (*PaymentAccount, error)
}

type RegisterInput struct {
	AccountID   snowflake.ID `json:"account_id"`
	Name        string       `json:"name"`
	Institution *string      `json:"institution,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, entry *PaymentAccount) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*PaymentAccount, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status *Status) ([]PaymentAccount, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, status Status, updatedAt time.Time) (bool, error)
}

var (
	ErrInvalidTenant             = errors.New("invalid_tenant")
	ErrInvalidInput              = errors.New("invalid_payment_account_input")
	ErrAccountNotPaymentEligible = errors.New("account_not_payment_eligible")
	ErrAlreadyRegistered         = errors.New("payment_account_already_registered")
	ErrNotFound                  = errors.New("payment_account_not_found")
)
