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
	"github.com/tallybook/ledgerd/internal/tenant/domain"
	"github.com/tallybook/ledgerd/internal/tenant/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Tenant{},
		&accountdomain.Account{},
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
	tenants := NewService(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Repo:     repository.Provide(),
		Accounts: accounts,
		Clock:    fake,
	})
	return tenants, db
}

func TestProvision(t *testing.T) {
	tenants, db := newTestService(t)
	ctx := context.Background()

	tenant, err := tenants.Provision(ctx, "Acme Trading Co")
	require.NoError(t, err)
	assert.Equal(t, "acme-trading-co", tenant.Slug)

	// Provisioning seeds the starter chart.
	var count int64
	db.Model(&accountdomain.Account{}).Where("tenant_id = ?", tenant.ID).Count(&count)
	assert.EqualValues(t, 10, count)

	_, err = tenants.Provision(ctx, "Acme Trading Co")
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	_, err = tenants.Provision(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestEnsureDefault(t *testing.T) {
	tenants, db := newTestService(t)
	ctx := context.Background()

	first, err := tenants.EnsureDefault(ctx, "Default Books")
	require.NoError(t, err)

	// Second boot finds the existing tenant instead of provisioning again.
	second, err := tenants.EnsureDefault(ctx, "Default Books")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&domain.Tenant{}).Where("slug = ?", "default-books").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestGetAndList(t *testing.T) {
	tenants, _ := newTestService(t)
	ctx := context.Background()

	created, err := tenants.Provision(ctx, "Lookup Books")
	require.NoError(t, err)

	got, err := tenants.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, got.Slug)

	bySlug, err := tenants.GetBySlug(ctx, "lookup-books")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	_, err = tenants.Get(ctx, node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
