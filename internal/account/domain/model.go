package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// AccountType is the fundamental accounting classification of an account.
type AccountType string

const (
	TypeAsset     AccountType = "ASSET"
	TypeLiability AccountType = "LIABILITY"
	TypeEquity    AccountType = "EQUITY"
	TypeIncome    AccountType = "INCOME"
	TypeExpense   AccountType = "EXPENSE"
)

func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	default:
		return false
	}
}

// NormalSign is +1 for accounts that grow on the debit side and -1 for
// accounts that grow on the credit side. Balances are reported as
// natural-positive figures: a healthy Cash account and a healthy Sales
// account both report positive.
func (t AccountType) NormalSign() int64 {
	switch t {
	case TypeAsset, TypeExpense:
		return 1
	default:
		return -1
	}
}

// SystemTag is a semantic role label letting automated flows locate an
// account without hardcoding a code.
type SystemTag string

const (
	TagCash       SystemTag = "CASH"
	TagBank       SystemTag = "BANK"
	TagReceivable SystemTag = "AR"
	TagPayable    SystemTag = "AP"
	TagSales      SystemTag = "SALES"
	TagCOGS       SystemTag = "COGS"
	TagTaxPayable SystemTag = "TAX_PAYABLE"
)

// Account is a chart-of-accounts entry scoped to one tenant.
//
// The flag columns carry no gorm default: gorm drops zero-valued fields with
// a default on INSERT, which would store a control account as directly
// postable. The service sets every flag explicitly.
type Account struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	TenantID          snowflake.ID `json:"tenant_id" gorm:"not null;index;uniqueIndex:ux_accounts_tenant_code,priority:1"`
	Code              string       `json:"code" gorm:"type:text;not null;uniqueIndex:ux_accounts_tenant_code,priority:2"`
	Name              string       `json:"name" gorm:"type:text;not null"`
	Type              AccountType  `json:"type" gorm:"type:text;not null"`
	Subtype           *string      `json:"subtype,omitempty" gorm:"type:text"`
	SystemTag         *SystemTag   `json:"system_tag,omitempty" gorm:"type:text"`
	IsControl         bool         `json:"is_control" gorm:"not null"`
	AllowDirectPost   bool         `json:"allow_direct_post" gorm:"not null"`
	IsPaymentEligible bool         `json:"is_payment_eligible" gorm:"not null"`
	IsSystem          bool         `json:"is_system" gorm:"not null"`
	IsContra          bool         `json:"is_contra" gorm:"not null"`
	ParentCode        *string      `json:"parent_code,omitempty" gorm:"type:text"`
	IsActive          bool         `json:"is_active" gorm:"not null"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }

// Postable reports whether the account may receive a direct journal line.
func (a Account) Postable() bool {
	return a.IsActive && a.AllowDirectPost
}

// SignedEffect converts a raw debit/credit pair into the account's reported
// balance contribution, honouring the normal-balance sign and contra flag.
func (a Account) SignedEffect(debit, credit int64) int64 {
	effect := (debit - credit) * a.Type.NormalSign()
	if a.IsContra {
		effect = -effect
	}
	return effect
}
