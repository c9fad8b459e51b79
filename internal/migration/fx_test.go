package migration

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/pkg/db"
	"gorm.io/gorm"
)

func TestAutoMigrate_SystemTagUniqueness(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, autoMigrate(conn))
	// Idempotent on restart.
	require.NoError(t, autoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	tenantID := node.Generate()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tag := accountdomain.TagCash
	require.NoError(t, conn.Create(&accountdomain.Account{
		ID: node.Generate(), TenantID: tenantID, Code: "1000", Name: "Cash",
		Type: accountdomain.TypeAsset, SystemTag: &tag,
		AllowDirectPost: true, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}).Error)

	// Second holder of the same tag hits the partial unique index.
	err = conn.Create(&accountdomain.Account{
		ID: node.Generate(), TenantID: tenantID, Code: "1010", Name: "Cash Drawer",
		Type: accountdomain.TypeAsset, SystemTag: &tag,
		AllowDirectPost: true, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}).Error
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))

	// Untagged accounts are outside the index.
	require.NoError(t, conn.Create(&accountdomain.Account{
		ID: node.Generate(), TenantID: tenantID, Code: "6000", Name: "General Expenses",
		Type: accountdomain.TypeExpense,
		AllowDirectPost: true, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, conn.Create(&accountdomain.Account{
		ID: node.Generate(), TenantID: tenantID, Code: "6100", Name: "Office Supplies",
		Type: accountdomain.TypeExpense,
		AllowDirectPost: true, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}).Error)
}
