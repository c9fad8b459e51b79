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
	"github.com/tallybook/ledgerd/internal/paymentaccount/domain"
	"github.com/tallybook/ledgerd/internal/paymentaccount/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestEnv(t *testing.T) (domain.Service, accountdomain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&accountdomain.Account{},
		&domain.PaymentAccount{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	accounts := accountservice.NewService(accountservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  accountrepo.Provide(),
		Clock: fake,
	})
	payments := NewService(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     repository.Provide(),
		Accounts: accounts,
		Clock:    fake,
	})
	return payments, accounts, node
}

func TestRegister(t *testing.T) {
	payments, accounts, node := newTestEnv(t)
	ctx := context.Background()
	tenantID := node.Generate()

	bank, err := accounts.Create(ctx, tenantID, accountdomain.CreateInput{
		Code: "1100", Name: "Bank", Type: accountdomain.TypeAsset, IsPaymentEligible: true,
	})
	require.NoError(t, err)
	sales, err := accounts.Create(ctx, tenantID, accountdomain.CreateInput{
		Code: "4000", Name: "Sales", Type: accountdomain.TypeIncome,
	})
	require.NoError(t, err)

	entry, err := payments.Register(ctx, tenantID, domain.RegisterInput{
		AccountID: bank.ID,
		Name:      "Business Checking",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, entry.Status)
	assert.Equal(t, bank.ID, entry.AccountID)

	// One payment method per ledger account.
	_, err = payments.Register(ctx, tenantID, domain.RegisterInput{
		AccountID: bank.ID,
		Name:      "Business Checking Again",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	_, err = payments.Register(ctx, tenantID, domain.RegisterInput{
		AccountID: sales.ID,
		Name:      "Sales As Payment",
	})
	assert.ErrorIs(t, err, domain.ErrAccountNotPaymentEligible)

	_, err = payments.Register(ctx, tenantID, domain.RegisterInput{
		AccountID: node.Generate(),
		Name:      "Ghost",
	})
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)

	_, err = payments.Register(ctx, tenantID, domain.RegisterInput{AccountID: bank.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListAndSetStatus(t *testing.T) {
	payments, accounts, node := newTestEnv(t)
	ctx := context.Background()
	tenantID := node.Generate()

	cash, err := accounts.Create(ctx, tenantID, accountdomain.CreateInput{
		Code: "1000", Name: "Cash", Type: accountdomain.TypeAsset, IsPaymentEligible: true,
	})
	require.NoError(t, err)
	bank, err := accounts.Create(ctx, tenantID, accountdomain.CreateInput{
		Code: "1100", Name: "Bank", Type: accountdomain.TypeAsset, IsPaymentEligible: true,
	})
	require.NoError(t, err)

	first, err := payments.Register(ctx, tenantID, domain.RegisterInput{AccountID: cash.ID, Name: "Till"})
	require.NoError(t, err)
	_, err = payments.Register(ctx, tenantID, domain.RegisterInput{AccountID: bank.ID, Name: "Checking"})
	require.NoError(t, err)

	all, err := payments.List(ctx, tenantID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	updated, err := payments.SetStatus(ctx, tenantID, first.ID, domain.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, updated.Status)

	active := domain.StatusActive
	onlyActive, err := payments.List(ctx, tenantID, &active)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, "Checking", onlyActive[0].Name)

	_, err = payments.SetStatus(ctx, tenantID, node.Generate(), domain.StatusInactive)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = payments.SetStatus(ctx, tenantID, first.ID, domain.Status("frozen"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
