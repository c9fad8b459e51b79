package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	accountrepo "github.com/tallybook/ledgerd/internal/account/repository"
	accountservice "github.com/tallybook/ledgerd/internal/account/service"
	"github.com/tallybook/ledgerd/internal/clock"
	journaldomain "github.com/tallybook/ledgerd/internal/journal/domain"
	journalrepo "github.com/tallybook/ledgerd/internal/journal/repository"
	journalservice "github.com/tallybook/ledgerd/internal/journal/service"
	"github.com/tallybook/ledgerd/internal/reporting/domain"
	"github.com/tallybook/ledgerd/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	node      *snowflake.Node
	accounts  accountdomain.Service
	journals  journaldomain.Service
	reporting domain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&accountdomain.Account{},
		&journaldomain.Journal{},
		&journaldomain.JournalLine{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	repo := accountrepo.Provide()

	accounts := accountservice.NewService(accountservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  repo,
		Clock: fake,
	})
	journals := journalservice.NewService(journalservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     journalrepo.Provide(),
		Accounts: accounts,
		Clock:    fake,
	})
	reporting := NewService(Params{
		DB:       db,
		Log:      log,
		Accounts: repo,
	})
	return &testEnv{db: db, node: node, accounts: accounts, journals: journals, reporting: reporting}
}

func (e *testEnv) seedAccount(t *testing.T, tenantID snowflake.ID, in accountdomain.CreateInput) *accountdomain.Account {
	t.Helper()
	account, err := e.accounts.Create(context.Background(), tenantID, in)
	require.NoError(t, err)
	return account
}

func (e *testEnv) post(t *testing.T, tenantID snowflake.ID, date time.Time, desc string, lines []journaldomain.LineInput) *journaldomain.Journal {
	t.Helper()
	journal, err := e.journals.Post(context.Background(), tenantID, journaldomain.PostInput{
		Date:        date,
		Description: desc,
		Lines:       lines,
	})
	require.NoError(t, err)
	return journal
}

func strPtr(s string) *string { return &s }

func TestAccountBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantID := env.node.Generate()
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	cash := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "1000", Name: "Cash", Type: accountdomain.TypeAsset})
	sales := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "4000", Name: "Sales", Type: accountdomain.TypeIncome})

	journal := env.post(t, tenantID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "cash sale", []journaldomain.LineInput{
		{AccountID: cash.ID, Debit: 500},
		{AccountID: sales.ID, Credit: 500},
	})

	// Both sides report natural-positive.
	balance, err := env.reporting.AccountBalance(ctx, tenantID, cash.ID, asOf)
	require.NoError(t, err)
	assert.EqualValues(t, 500, balance)

	balance, err = env.reporting.AccountBalance(ctx, tenantID, sales.ID, asOf)
	require.NoError(t, err)
	assert.EqualValues(t, 500, balance)

	// A journal dated after asOf contributes nothing.
	env.post(t, tenantID, time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), "april sale", []journaldomain.LineInput{
		{AccountID: cash.ID, Debit: 200},
		{AccountID: sales.ID, Credit: 200},
	})
	balance, err = env.reporting.AccountBalance(ctx, tenantID, cash.ID, asOf)
	require.NoError(t, err)
	assert.EqualValues(t, 500, balance)

	// Voiding removes the contribution; the journal itself survives.
	_, err = env.journals.Void(ctx, tenantID, journal.ID)
	require.NoError(t, err)
	balance, err = env.reporting.AccountBalance(ctx, tenantID, cash.ID, asOf)
	require.NoError(t, err)
	assert.EqualValues(t, 0, balance)

	_, err = env.reporting.AccountBalance(ctx, tenantID, env.node.Generate(), asOf)
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)
}

func TestRollupBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantID := env.node.Generate()
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	bank := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "1100", Name: "Bank", Type: accountdomain.TypeAsset})
	checking := env.seedAccount(t, tenantID, accountdomain.CreateInput{
		Code: "1110", Name: "Checking", Type: accountdomain.TypeAsset, ParentCode: strPtr("1100"),
	})
	savings := env.seedAccount(t, tenantID, accountdomain.CreateInput{
		Code: "1120", Name: "Savings", Type: accountdomain.TypeAsset, ParentCode: strPtr("1100"),
	})
	equity := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "3000", Name: "Owner's Equity", Type: accountdomain.TypeEquity})

	env.post(t, tenantID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "fund bank", []journaldomain.LineInput{
		{AccountID: bank.ID, Debit: 100},
		{AccountID: equity.ID, Credit: 100},
	})
	env.post(t, tenantID, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), "fund checking", []journaldomain.LineInput{
		{AccountID: checking.ID, Debit: 250},
		{AccountID: equity.ID, Credit: 250},
	})
	env.post(t, tenantID, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), "fund savings", []journaldomain.LineInput{
		{AccountID: savings.ID, Debit: 150},
		{AccountID: equity.ID, Credit: 150},
	})

	rollup, err := env.reporting.RollupBalance(ctx, tenantID, "1100", asOf)
	require.NoError(t, err)
	assert.EqualValues(t, 500, rollup)

	// rollup(parent) == balance(parent) + sum of child rollups.
	parentOnly, err := env.reporting.AccountBalance(ctx, tenantID, bank.ID, asOf)
	require.NoError(t, err)
	childA, err := env.reporting.RollupBalance(ctx, tenantID, "1110", asOf)
	require.NoError(t, err)
	childB, err := env.reporting.RollupBalance(ctx, tenantID, "1120", asOf)
	require.NoError(t, err)
	assert.Equal(t, rollup, parentOnly+childA+childB)

	_, err = env.reporting.RollupBalance(ctx, tenantID, "9999", asOf)
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)
}

func TestHierarchy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantID := env.node.Generate()
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	bank := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "1100", Name: "Bank", Type: accountdomain.TypeAsset})
	checking := env.seedAccount(t, tenantID, accountdomain.CreateInput{
		Code: "1110", Name: "Checking", Type: accountdomain.TypeAsset, ParentCode: strPtr("1100"),
	})
	equity := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "3000", Name: "Owner's Equity", Type: accountdomain.TypeEquity})

	env.post(t, tenantID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "fund checking", []journaldomain.LineInput{
		{AccountID: checking.ID, Debit: 250},
		{AccountID: equity.ID, Credit: 250},
	})

	roots, err := env.reporting.Hierarchy(ctx, tenantID, asOf)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	// Roots come back ordered by code.
	assert.Equal(t, bank.Code, roots[0].Account.Code)
	assert.Equal(t, equity.Code, roots[1].Account.Code)

	assert.EqualValues(t, 0, roots[0].Balance)
	assert.EqualValues(t, 250, roots[0].Rollup)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, checking.Code, roots[0].Children[0].Account.Code)
	assert.EqualValues(t, 250, roots[0].Children[0].Balance)
}

func TestStatement_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantID := env.node.Generate()

	cash := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "1000", Name: "Cash", Type: accountdomain.TypeAsset})
	sales := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "4000", Name: "Sales", Type: accountdomain.TypeIncome})

	for day := 1; day <= 5; day++ {
		env.post(t, tenantID, time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC), "daily sale", []journaldomain.LineInput{
			{AccountID: cash.ID, Debit: int64(day * 100)},
			{AccountID: sales.ID, Credit: int64(day * 100)},
		})
	}

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	var seen []snowflake.ID
	page := pagination.Pagination{PageSize: 2}
	for {
		statement, err := env.reporting.Statement(ctx, tenantID, cash.ID, start, end, page)
		require.NoError(t, err)
		for _, row := range statement.Rows {
			seen = append(seen, row.LineID)
		}
		if !statement.PageInfo.HasMore {
			assert.Empty(t, statement.PageInfo.NextPageToken)
			break
		}
		require.NotEmpty(t, statement.PageInfo.NextPageToken)
		page.PageToken = statement.PageInfo.NextPageToken
	}

	// Every line exactly once, in (date, journal, line) order.
	require.Len(t, seen, 5)
	unique := make(map[snowflake.ID]bool, len(seen))
	for _, id := range seen {
		unique[id] = true
	}
	assert.Len(t, unique, 5)

	full, err := env.reporting.Statement(ctx, tenantID, cash.ID, start, end, pagination.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 1500, full.NetChange)
	require.Len(t, full.Rows, 5)
	assert.EqualValues(t, 100, full.Rows[0].Effect)
	assert.EqualValues(t, 500, full.Rows[4].Effect)

	_, err = env.reporting.Statement(ctx, tenantID, cash.ID, end, start, pagination.Pagination{})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = env.reporting.Statement(ctx, tenantID, cash.ID, start, end, pagination.Pagination{PageToken: "not-a-cursor"})
	assert.ErrorIs(t, err, domain.ErrInvalidCursor)
}

func TestTrialBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tenantID := env.node.Generate()
	asOf := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	cash := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "1000", Name: "Cash", Type: accountdomain.TypeAsset})
	sales := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "4000", Name: "Sales", Type: accountdomain.TypeIncome})
	expenses := env.seedAccount(t, tenantID, accountdomain.CreateInput{Code: "6000", Name: "General Expenses", Type: accountdomain.TypeExpense})

	env.post(t, tenantID, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "cash sale", []journaldomain.LineInput{
		{AccountID: cash.ID, Debit: 500},
		{AccountID: sales.ID, Credit: 500},
	})
	env.post(t, tenantID, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), "rent", []journaldomain.LineInput{
		{AccountID: expenses.ID, Debit: 200},
		{AccountID: cash.ID, Credit: 200},
	})

	tb, err := env.reporting.TrialBalance(ctx, tenantID, asOf)
	require.NoError(t, err)
	require.Len(t, tb.Rows, 3)
	assert.Equal(t, tb.TotalDebit, tb.TotalCredit)

	byCode := make(map[string]domain.TrialBalanceRow, len(tb.Rows))
	for _, row := range tb.Rows {
		byCode[row.Code] = row
	}
	// Net presentation: each account lands in a single column.
	assert.EqualValues(t, 300, byCode["1000"].Debit)
	assert.EqualValues(t, 0, byCode["1000"].Credit)
	assert.EqualValues(t, 500, byCode["4000"].Credit)
	assert.EqualValues(t, 200, byCode["6000"].Debit)
}
