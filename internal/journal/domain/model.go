package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// JournalStatus is the lifecycle state of a journal. POSTED journals are
// immutable; VOID journals stay retrievable but contribute nothing to
// balances.
type JournalStatus string

const (
	StatusDraft  JournalStatus = "DRAFT"
	StatusPosted JournalStatus = "POSTED"
	StatusVoid   JournalStatus = "VOID"
)

// Journal is a single balanced accounting event.
type Journal struct {
	ID          snowflake.ID  `json:"id" gorm:"primaryKey"`
	TenantID    snowflake.ID  `json:"tenant_id" gorm:"not null;index"`
	Date        time.Time     `json:"date" gorm:"not null;index"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Reference   *string       `json:"reference,omitempty" gorm:"type:text"`
	Status      JournalStatus `json:"status" gorm:"type:text;not null;index"`
	CreatedAt   time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	VoidedAt    *time.Time    `json:"voided_at,omitempty"`

	Lines []JournalLine `json:"lines,omitempty" gorm:"-"`
}

// TableName sets the database table name.
func (Journal) TableName() string { return "journals" }

// JournalLine is one leg of a journal. Exactly one of Debit/Credit is
// non-zero; amounts are integer minor-currency units.
type JournalLine struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	JournalID snowflake.ID `json:"journal_id" gorm:"not null;index"`
	TenantID  snowflake.ID `json:"tenant_id" gorm:"not null;index"`
	AccountID snowflake.ID `json:"account_id" gorm:"not null;index"`
	Position  int          `json:"position" gorm:"not null"`
	Debit     int64        `json:"debit" gorm:"not null"`
	Credit    int64        `json:"credit" gorm:"not null"`
	Memo      *string      `json:"memo,omitempty" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (JournalLine) TableName() string { return "journal_lines" }
