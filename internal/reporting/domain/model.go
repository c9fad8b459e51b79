package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/pkg/db/pagination"
)

type Service interface {
	// AccountBalance sums the signed effects of POSTED lines dated at or
	// before asOf for a single account.
	AccountBalance(ctx context.Context, tenantID, accountID snowflake.ID, asOf time.Time) (int64, error)
	// RollupBalance adds the recursive balances of every descendant to the
	// account's own balance.
	RollupBalance(ctx context.Context, tenantID snowflake.ID, accountCode string, asOf time.Time) (int64, error)
	// Hierarchy returns the full parent/children forest with per-node own
	// and rolled-up balances.
	Hierarchy(ctx context.Context, tenantID snowflake.ID, asOf time.Time) ([]*HierarchyNode, error)
	// Statement pages through the lines touching an account inside the
	// closed date interval, oldest first.
	Statement(ctx context.Context, tenantID, accountID snowflake.ID, start, end time.Time, page pagination.Pagination) (*Statement, error)
	TrialBalance(ctx context.Context, tenantID snowflake.ID, asOf time.Time) (*TrialBalance, error)
}

type HierarchyNode struct {
	Account  accountdomain.Account `json:"account"`
	Balance  int64                 `json:"balance"`
	Rollup   int64                 `json:"rollup"`
	Children []*HierarchyNode      `json:"children,omitempty"`
}

type StatementRow struct {
	JournalID   snowflake.ID `json:"journal_id"`
	LineID      snowflake.ID `json:"line_id"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description"`
	Reference   *string      `json:"reference,omitempty"`
	Debit       int64        `json:"debit"`
	Credit      int64        `json:"credit"`
	Memo        *string      `json:"memo,omitempty"`
	// Effect is the signed contribution to the account's reported balance.
	Effect int64 `json:"effect"`
}

type Statement struct {
	AccountID snowflake.ID        `json:"account_id"`
	Start     time.Time           `json:"start"`
	End       time.Time           `json:"end"`
	NetChange int64               `json:"net_change"`
	Rows      []StatementRow      `json:"rows"`
	PageInfo  pagination.PageInfo `json:"page_info"`
}

type TrialBalanceRow struct {
	AccountID snowflake.ID              `json:"account_id"`
	Code      string                    `json:"code"`
	Name      string                    `json:"name"`
	Type      accountdomain.AccountType `json:"type"`
	Debit     int64                     `json:"debit"`
	Credit    int64                     `json:"credit"`
}

type TrialBalance struct {
	AsOf        time.Time         `json:"as_of"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  int64             `json:"total_debit"`
	TotalCredit int64             `json:"total_credit"`
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidRange  = errors.New("invalid_statement_range")
	ErrInvalidCursor = errors.New("invalid_page_token")
)
