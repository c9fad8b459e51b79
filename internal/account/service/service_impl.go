package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tallybook/ledgerd/internal/account/domain"
	"github.com/tallybook/ledgerd/internal/clock"
	obsmetrics "github.com/tallybook/ledgerd/internal/observability/metrics"
	"github.com/tallybook/ledgerd/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("account.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, tenantID snowflake.ID, in domain.CreateInput) (*domain.Account, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" || !in.Type.Valid() {
		return nil, domain.ErrInvalidInput
	}

	allowDirectPost := true
	if in.AllowDirectPost != nil {
		allowDirectPost = *in.AllowDirectPost
	}
	if in.IsControl {
		// Control accounts aggregate subsidiary postings and never take
		// direct lines.
		if in.AllowDirectPost != nil && *in.AllowDirectPost {
			return nil, domain.ErrInvalidControlFlag
		}
		allowDirectPost = false
	}

	now := s.clock.Now()
	account := &domain.Account{
		ID:                s.genID.Generate(),
		TenantID:          tenantID,
		Code:              code,
		Name:              name,
		Type:              in.Type,
		Subtype:           in.Subtype,
		SystemTag:         in.SystemTag,
		IsControl:         in.IsControl,
		AllowDirectPost:   allowDirectPost,
		IsPaymentEligible: in.IsPaymentEligible,
		IsSystem:          in.IsSystem,
		IsContra:          in.IsContra,
		ParentCode:        in.ParentCode,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkParent(ctx, tx, account); err != nil {
			return err
		}
		if err := s.checkTag(ctx, tx, account); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, tx, account); err != nil {
			return s.classifyWriteErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.AccountCreated()
	}
	s.log.Info("account created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", account.Code),
		zap.String("type", string(account.Type)),
	)
	return account, nil
}

func (s *Service) UpsertByCode(ctx context.Context, tenantID snowflake.ID, code string, spec domain.UpsertSpec) (*domain.Account, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	var out *domain.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByCode(ctx, tx, tenantID, code)
		if err != nil {
			return err
		}

		if existing == nil {
			// Create branch. The unique index on (tenant_id, code) closes
			// the race against a concurrent create of the same code.
			if spec.Name == nil || spec.Type == nil {
				return domain.ErrInvalidInput
			}
			account, err := s.buildFromSpec(tenantID, code, spec)
			if err != nil {
				return err
			}
			if err := s.checkParent(ctx, tx, account); err != nil {
				return err
			}
			if err := s.checkTag(ctx, tx, account); err != nil {
				return err
			}
			if err := s.repo.Create(ctx, tx, account); err != nil {
				return s.classifyWriteErr(err)
			}
			out = account
			return nil
		}

		// Merge branch: only explicitly supplied fields change.
		if err := mergeSpec(existing, spec); err != nil {
			return err
		}
		if existing.IsControl && existing.AllowDirectPost {
			return domain.ErrInvalidControlFlag
		}
		existing.UpdatedAt = s.clock.Now()
		if err := s.checkParent(ctx, tx, existing); err != nil {
			return err
		}
		if err := s.checkTag(ctx, tx, existing); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, existing); err != nil {
			return s.classifyWriteErr(err)
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, tenantID snowflake.ID, code string) (*domain.Account, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	account, err := s.repo.FindByCode(ctx, s.db, tenantID, code)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, accountID snowflake.ID) (*domain.Account, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	account, err := s.repo.FindByID(ctx, s.db, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (s *Service) List(ctx context.Context, tenantID snowflake.ID) ([]domain.Account, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, tenantID)
}

func (s *Service) Deactivate(ctx context.Context, tenantID snowflake.ID, code string) error {
	if tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := s.repo.FindByCode(ctx, tx, tenantID, code)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrNotFound
		}
		if account.IsSystem {
			return domain.ErrAccountIsSystem
		}
		if !account.IsActive {
			return nil
		}

		lines, err := s.repo.CountPostedLines(ctx, tx, tenantID, account.ID)
		if err != nil {
			return err
		}
		if lines > 0 {
			return domain.ErrAccountInUse
		}
		children, err := s.repo.CountActiveChildren(ctx, tx, tenantID, account.Code)
		if err != nil {
			return err
		}
		if children > 0 {
			return domain.ErrAccountInUse
		}

		account.IsActive = false
		account.UpdatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, account)
	})
}

func (s *Service) ResolveTag(ctx context.Context, tenantID snowflake.ID, tag domain.SystemTag) (*domain.Account, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	accounts, err := s.repo.FindByTag(ctx, s.db, tenantID, tag)
	if err != nil {
		return nil, err
	}
	switch len(accounts) {
	case 0:
		return nil, domain.ErrSystemTagNotConfigured
	case 1:
		return &accounts[0], nil
	default:
		// The uniqueness index should make this unreachable. Detect it
		// anyway so a bad seed surfaces as a configuration error instead of
		// an arbitrary account pick.
		s.log.Error("system tag resolves to multiple accounts",
			zap.String("tenant_id", tenantID.String()),
			zap.String("tag", string(tag)),
			zap.Int("count", len(accounts)),
		)
		return nil, domain.ErrSystemTagAmbiguous
	}
}

func (s *Service) buildFromSpec(tenantID snowflake.ID, code string, spec domain.UpsertSpec) (*domain.Account, error) {
	in := domain.CreateInput{
		Code:       code,
		Name:       *spec.Name,
		Type:       *spec.Type,
		Subtype:    spec.Subtype,
		SystemTag:  spec.SystemTag,
		ParentCode: spec.ParentCode,
	}
	if spec.IsControl != nil {
		in.IsControl = *spec.IsControl
	}
	in.AllowDirectPost = spec.AllowDirectPost
	if spec.IsPaymentEligible != nil {
		in.IsPaymentEligible = *spec.IsPaymentEligible
	}
	if spec.IsSystem != nil {
		in.IsSystem = *spec.IsSystem
	}
	if spec.IsContra != nil {
		in.IsContra = *spec.IsContra
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || !in.Type.Valid() {
		return nil, domain.ErrInvalidInput
	}

	allowDirectPost := true
	if in.AllowDirectPost != nil {
		allowDirectPost = *in.AllowDirectPost
	}
	if in.IsControl {
		if in.AllowDirectPost != nil && *in.AllowDirectPost {
			return nil, domain.ErrInvalidControlFlag
		}
		allowDirectPost = false
	}

	now := s.clock.Now()
	return &domain.Account{
		ID:                s.genID.Generate(),
		TenantID:          tenantID,
		Code:              code,
		Name:              name,
		Type:              in.Type,
		Subtype:           in.Subtype,
		SystemTag:         in.SystemTag,
		IsControl:         in.IsControl,
		AllowDirectPost:   allowDirectPost,
		IsPaymentEligible: in.IsPaymentEligible,
		IsSystem:          in.IsSystem,
		IsContra:          in.IsContra,
		ParentCode:        in.ParentCode,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func mergeSpec(account *domain.Account, spec domain.UpsertSpec) error {
	if spec.Type != nil && *spec.Type != account.Type {
		if account.IsSystem {
			// System accounts are protected from retyping.
			return domain.ErrAccountIsSystem
		}
		if !spec.Type.Valid() {
			return domain.ErrInvalidInput
		}
		account.Type = *spec.Type
	}
	if spec.Name != nil {
		name := strings.TrimSpace(*spec.Name)
		if name == "" {
			return domain.ErrInvalidInput
		}
		account.Name = name
	}
	if spec.Subtype != nil {
		account.Subtype = spec.Subtype
	}
	if spec.SystemTag != nil {
		account.SystemTag = spec.SystemTag
	}
	if spec.IsControl != nil {
		account.IsControl = *spec.IsControl
		if account.IsControl {
			account.AllowDirectPost = false
		}
	}
	if spec.AllowDirectPost != nil {
		account.AllowDirectPost = *spec.AllowDirectPost
	}
	if spec.IsPaymentEligible != nil {
		account.IsPaymentEligible = *spec.IsPaymentEligible
	}
	if spec.IsContra != nil {
		account.IsContra = *spec.IsContra
	}
	if spec.IsSystem != nil {
		account.IsSystem = *spec.IsSystem
	}
	if spec.ParentCode != nil {
		account.ParentCode = spec.ParentCode
	}
	if spec.IsActive != nil {
		account.IsActive = *spec.IsActive
	}
	return nil
}

// checkParent validates that the parent exists, shares the account's type
// and that following the parent chain never loops back to the account.
func (s *Service) checkParent(ctx context.Context, tx *gorm.DB, account *domain.Account) error {
	if account.ParentCode == nil {
		return nil
	}
	parentCode := strings.TrimSpace(*account.ParentCode)
	if parentCode == "" || parentCode == account.Code {
		return domain.ErrInvalidParent
	}

	seen := map[string]bool{account.Code: true}
	next := parentCode
	for next != "" {
		if seen[next] {
			return domain.ErrInvalidParent
		}
		seen[next] = true

		parent, err := s.repo.FindByCode(ctx, tx, account.TenantID, next)
		if err != nil {
			return err
		}
		if parent == nil {
			return domain.ErrInvalidParent
		}
		if next == parentCode && parent.Type != account.Type {
			return domain.ErrInvalidParent
		}
		if parent.ParentCode == nil {
			break
		}
		next = *parent.ParentCode
	}
	return nil
}

// checkTag is the read-side guard for system-tag uniqueness; the partial
// unique index on (tenant_id, system_tag) closes the remaining race.
func (s *Service) checkTag(ctx context.Context, tx *gorm.DB, account *domain.Account) error {
	if account.SystemTag == nil {
		return nil
	}
	holders, err := s.repo.FindByTag(ctx, tx, account.TenantID, *account.SystemTag)
	if err != nil {
		return err
	}
	for _, holder := range holders {
		if holder.ID != account.ID {
			return domain.ErrDuplicateSystemTag
		}
	}
	return nil
}

func (s *Service) classifyWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "system_tag") {
		return domain.ErrDuplicateSystemTag
	}
	return domain.ErrDuplicateCode
}
