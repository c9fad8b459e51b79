package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"gorm.io/gorm"
)

type Service interface {
	// Post validates and atomically commits a balanced journal. Either the
	// journal and every line exist with status POSTED, or nothing does.
	Post(ctx context.Context, tenantID snowflake.ID, in PostInput) (*Journal, error)
	// PostByTags is the automated-flow entry point: lines name system tags
	// instead of account IDs so callers survive chart reorganizations.
	PostByTags(ctx context.Context, tenantID snowflake.ID, in TagPostInput) (*Journal, error)
	Void(ctx context.Context, tenantID, journalID snowflake.ID) (*Journal, error)
	Get(ctx context.Context, tenantID, journalID snowflake.ID) (*Journal, error)
}

type PostInput struct {
	Date        time.Time   `json:"date"`
	Description string      `json:"description"`
	Reference   *string     `json:"reference,omitempty"`
	Lines       []LineInput `json:"lines"`
}

type LineInput struct {
	AccountID snowflake.ID `json:"account_id"`
	Debit     int64        `json:"debit"`
	Credit    int64        `json:"credit"`
	Memo      *string      `json:"memo,omitempty"`
}

type TagPostInput struct {
	Date        time.Time      `json:"date"`
	Description string         `json:"description"`
	Reference   *string        `json:"reference,omitempty"`
	Lines       []TagLineInput `json:"lines"`
}

type TagLineInput struct {
	Tag    accountdomain.SystemTag `json:"tag"`
	Debit  int64                   `json:"debit"`
	Credit int64                   `json:"credit"`
	Memo   *string                 `json:"memo,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, journal *Journal, lines []JournalLine) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, journalID snowflake.ID) (*Journal, error)
	FindLines(ctx context.Context, db *gorm.DB, tenantID, journalID snowflake.ID) ([]JournalLine, error)
	MarkVoid(ctx context.Context, db *gorm.DB, tenantID, journalID snowflake.ID, voidedAt time.Time) error
	// LockAccounts loads the referenced accounts inside the posting
	// transaction, row-locked where the dialect supports it, so concurrent
	// posts touching the same accounts serialize.
	LockAccounts(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, accountIDs []snowflake.ID) (map[snowflake.ID]accountdomain.Account, error)
}

var (
	ErrInvalidTenant            = errors.New("invalid_tenant")
	ErrInvalidDate              = errors.New("invalid_journal_date")
	ErrTooFewLines              = errors.New("too_few_lines")
	ErrInvalidLineAmounts       = errors.New("invalid_line_amounts")
	ErrUnbalancedJournal        = errors.New("unbalanced_journal")
	ErrAccountNotFound          = errors.New("journal_account_not_found")
	ErrPostingToControlAccount  = errors.New("posting_to_control_account")
	ErrPostingToInactiveAccount = errors.New("posting_to_inactive_account")
	ErrNotFound                 = errors.New("journal_not_found")
	ErrAlreadyVoided            = errors.New("journal_already_voided")
	ErrNotPosted                = errors.New("journal_not_posted")
)
