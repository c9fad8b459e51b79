package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, tenantID snowflake.ID, in CreateInput) (*Account, error)
	// UpsertByCode is the idempotent create-or-update contract seeding relies
	// on: absent accounts are created, existing accounts receive only the
	// fields the spec explicitly sets. Safe to retry.
	UpsertByCode(ctx context.Context, tenantID snowflake.ID, code string, spec UpsertSpec) (*Account, error)
	Get(ctx context.Context, tenantID snowflake.ID, code string) (*Account, error)
	GetByID(ctx context.Context, tenantID, accountID snowflake.ID) (*Account, error)
	List(ctx context.Context, tenantID snowflake.ID) ([]Account, error)
	Deactivate(ctx context.Context, tenantID snowflake.ID, code string) error
	// ResolveTag finds the unique active account carrying a system tag.
	ResolveTag(ctx context.Context, tenantID snowflake.ID, tag SystemTag) (*Account, error)
}

type CreateInput struct {
	Code              string      `json:"code"`
	Name              string      `json:"name"`
	Type              AccountType `json:"type"`
	Subtype           *string     `json:"subtype,omitempty"`
	SystemTag         *SystemTag  `json:"system_tag,omitempty"`
	IsControl         bool        `json:"is_control"`
	AllowDirectPost   *bool       `json:"allow_direct_post,omitempty"`
	IsPaymentEligible bool        `json:"is_payment_eligible"`
	IsSystem          bool        `json:"is_system"`
	IsContra          bool        `json:"is_contra"`
	ParentCode        *string     `json:"parent_code,omitempty"`
}

// UpsertSpec carries only the fields the caller wants reconciled. Nil fields
// are left untouched on an existing account. Name and Type are required when
// the upsert has to create.
type UpsertSpec struct {
	Name              *string      `json:"name,omitempty"`
	Type              *AccountType `json:"type,omitempty"`
	Subtype           *string      `json:"subtype,omitempty"`
	SystemTag         *SystemTag   `json:"system_tag,omitempty"`
	IsControl         *bool        `json:"is_control,omitempty"`
	AllowDirectPost   *bool        `json:"allow_direct_post,omitempty"`
	IsPaymentEligible *bool        `json:"is_payment_eligible,omitempty"`
	IsSystem          *bool        `json:"is_system,omitempty"`
	IsContra          *bool        `json:"is_contra,omitempty"`
	ParentCode        *string      `json:"parent_code,omitempty"`
	IsActive          *bool        `json:"is_active,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, account *Account) error
	Update(ctx context.Context, db *gorm.DB, account *Account) error
	FindByCode(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (*Account, error)
	FindByID(ctx context.Context, db *gorm.DB, tenantID, accountID snowflake.ID) (*Account, error)
	FindByTag(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, tag SystemTag) ([]Account, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Account, error)
	CountPostedLines(ctx context.Context, db *gorm.DB, tenantID, accountID snowflake.ID) (int64, error)
	CountActiveChildren(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, code string) (int64, error)
}

var (
	ErrInvalidInput           = errors.New("invalid_account_input")
	ErrInvalidTenant          = errors.New("invalid_tenant")
	ErrDuplicateCode          = errors.New("duplicate_code")
	ErrDuplicateSystemTag     = errors.New("duplicate_system_tag")
	ErrInvalidParent          = errors.New("invalid_parent")
	ErrInvalidControlFlag     = errors.New("invalid_control_flag")
	ErrNotFound               = errors.New("account_not_found")
	ErrAccountInUse           = errors.New("account_in_use")
	ErrAccountIsSystem        = errors.New("account_is_system")
	ErrSystemTagNotConfigured = errors.New("system_tag_not_configured")
	ErrSystemTagAmbiguous     = errors.New("system_tag_ambiguous")
)
