package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Tenant is the isolation boundary: every ledger entity below it is scoped
// by tenant ID. Tenants are created at signup and never deleted in-band.
type Tenant struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_tenants_slug"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

type Service interface {
	// Provision creates the tenant and seeds its default chart of accounts.
	Provision(ctx context.Context, name string) (*Tenant, error)
	// EnsureDefault provisions the named tenant if absent and reconciles
	// its seeded chart otherwise. Safe to run on every startup.
	EnsureDefault(ctx context.Context, name string) (*Tenant, error)
	Get(ctx context.Context, id snowflake.ID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]Tenant, error)
}

var (
	ErrInvalidName = errors.New("invalid_tenant_name")
	ErrSlugTaken   = errors.New("tenant_slug_taken")
	ErrNotFound    = errors.New("tenant_not_found")
)
