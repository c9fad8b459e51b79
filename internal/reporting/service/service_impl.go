package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
	journaldomain "github.com/tallybook/ledgerd/internal/journal/domain"
	"github.com/tallybook/ledgerd/internal/reporting/domain"
	"github.com/tallybook/ledgerd/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Accounts accountdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	accounts accountdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("reporting.service"),
		accounts: p.Accounts,
	}
}

type accountSums struct {
	AccountID snowflake.ID
	SumDebit  int64
	SumCredit int64
}

func (s *Service) AccountBalance(ctx context.Context, tenantID, accountID snowflake.ID, asOf time.Time) (int64, error) {
	if tenantID == 0 {
		return 0, domain.ErrInvalidTenant
	}
	account, err := s.accounts.FindByID(ctx, s.db, tenantID, accountID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, accountdomain.ErrNotFound
	}

	var sums accountSums
	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(l.debit), 0) AS sum_debit, COALESCE(SUM(l.credit), 0) AS sum_credit
		 FROM journal_lines l
		 JOIN journals j ON j.id = l.journal_id
		 WHERE l.tenant_id = ? AND l.account_id = ? AND j.status = ? AND j.date <= ?`,
		tenantID, accountID, journaldomain.StatusPosted, asOf.UTC(),
	).Scan(&sums).Error
	if err != nil {
		return 0, err
	}
	return account.SignedEffect(sums.SumDebit, sums.SumCredit), nil
}

func (s *Service) RollupBalance(ctx context.Context, tenantID snowflake.ID, accountCode string, asOf time.Time) (int64, error) {
	if tenantID == 0 {
		return 0, domain.ErrInvalidTenant
	}

	accounts, sums, err := s.loadChart(ctx, tenantID, asOf)
	if err != nil {
		return 0, err
	}

	byCode := make(map[string]*accountdomain.Account, len(accounts))
	children := make(map[string][]string, len(accounts))
	for i := range accounts {
		byCode[accounts[i].Code] = &accounts[i]
		if accounts[i].ParentCode != nil {
			parent := *accounts[i].ParentCode
			children[parent] = append(children[parent], accounts[i].Code)
		}
	}
	root, ok := byCode[accountCode]
	if !ok {
		return 0, accountdomain.ErrNotFound
	}

	visited := make(map[string]bool, len(accounts))
	var walk func(code string) int64
	walk = func(code string) int64 {
		if visited[code] {
			return 0
		}
		visited[code] = true
		account := byCode[code]
		sum := sums[account.ID]
		total := account.SignedEffect(sum.SumDebit, sum.SumCredit)
		for _, child := range children[code] {
			total += walk(child)
		}
		return total
	}
	return walk(root.Code), nil
}

func (s *Service) Hierarchy(ctx context.Context, tenantID snowflake.ID, asOf time.Time) ([]*domain.HierarchyNode, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	accounts, sums, err := s.loadChart(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*domain.HierarchyNode, len(accounts))
	for i := range accounts {
		sum := sums[accounts[i].ID]
		nodes[accounts[i].Code] = &domain.HierarchyNode{
			Account: accounts[i],
			Balance: accounts[i].SignedEffect(sum.SumDebit, sum.SumCredit),
		}
	}

	var roots []*domain.HierarchyNode
	for i := range accounts {
		node := nodes[accounts[i].Code]
		if accounts[i].ParentCode != nil {
			if parent, ok := nodes[*accounts[i].ParentCode]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	// Rollups bottom-up. The visited set keeps a corrupted parent chain from
	// recursing forever.
	visited := make(map[*domain.HierarchyNode]bool, len(nodes))
	var fill func(node *domain.HierarchyNode) int64
	fill = func(node *domain.HierarchyNode) int64 {
		if visited[node] {
			return 0
		}
		visited[node] = true
		total := node.Balance
		for _, child := range node.Children {
			total += fill(child)
		}
		node.Rollup = total
		return total
	}
	for _, root := range roots {
		fill(root)
	}

	sort.Slice(roots, func(i, j int) bool {
		return roots[i].Account.Code < roots[j].Account.Code
	})
	return roots, nil
}

func (s *Service) Statement(ctx context.Context, tenantID, accountID snowflake.ID, start, end time.Time, page pagination.Pagination) (*domain.Statement, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, domain.ErrInvalidRange
	}
	account, err := s.accounts.FindByID(ctx, s.db, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}

	limit := page.Limit()
	query := s.db.WithContext(ctx).
		Table("journal_lines AS l").
		Select("j.id AS journal_id, l.id AS line_id, j.date, j.description, j.reference, l.debit, l.credit, l.memo").
		Joins("JOIN journals j ON j.id = l.journal_id").
		Where("l.tenant_id = ? AND l.account_id = ? AND j.status = ?", tenantID, accountID, journaldomain.StatusPosted).
		Where("j.date >= ? AND j.date <= ?", start.UTC(), end.UTC())

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, domain.ErrInvalidCursor
		}
		after, err := time.Parse(time.RFC3339Nano, cursor.Date)
		if err != nil {
			return nil, domain.ErrInvalidCursor
		}
		journalID, err := snowflake.ParseString(cursor.JournalID)
		if err != nil {
			return nil, domain.ErrInvalidCursor
		}
		lineID, err := snowflake.ParseString(cursor.LineID)
		if err != nil {
			return nil, domain.ErrInvalidCursor
		}
		query = query.Where(
			"(j.date > ?) OR (j.date = ? AND j.id > ?) OR (j.date = ? AND j.id = ? AND l.id > ?)",
			after, after, journalID, after, journalID, lineID,
		)
	}

	var raw []struct {
		JournalID   snowflake.ID
		LineID      snowflake.ID
		Date        time.Time
		Description string
		Reference   *string
		Debit       int64
		Credit      int64
		Memo        *string
	}
	err = query.
		Order("j.date, j.id, l.id").
		Limit(limit + 1).
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	hasMore := len(raw) > limit
	if hasMore {
		raw = raw[:limit]
	}

	rows := make([]domain.StatementRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, domain.StatementRow{
			JournalID:   r.JournalID,
			LineID:      r.LineID,
			Date:        r.Date,
			Description: r.Description,
			Reference:   r.Reference,
			Debit:       r.Debit,
			Credit:      r.Credit,
			Memo:        r.Memo,
			Effect:      account.SignedEffect(r.Debit, r.Credit),
		})
	}

	pageInfo := pagination.PageInfo{HasMore: hasMore}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			Date:      last.Date.UTC().Format(time.RFC3339Nano),
			JournalID: last.JournalID.String(),
			LineID:    last.LineID.String(),
		})
		if err != nil {
			return nil, err
		}
		pageInfo.NextPageToken = token
	}

	var sums accountSums
	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(l.debit), 0) AS sum_debit, COALESCE(SUM(l.credit), 0) AS sum_credit
		 FROM journal_lines l
		 JOIN journals j ON j.id = l.journal_id
		 WHERE l.tenant_id = ? AND l.account_id = ? AND j.status = ? AND j.date >= ? AND j.date <= ?`,
		tenantID, accountID, journaldomain.StatusPosted, start.UTC(), end.UTC(),
	).Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	return &domain.Statement{
		AccountID: accountID,
		Start:     start.UTC(),
		End:       end.UTC(),
		NetChange: account.SignedEffect(sums.SumDebit, sums.SumCredit),
		Rows:      rows,
		PageInfo:  pageInfo,
	}, nil
}

func (s *Service) TrialBalance(ctx context.Context, tenantID snowflake.ID, asOf time.Time) (*domain.TrialBalance, error) {
	if tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	accounts, sums, err := s.loadChart(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	out := &domain.TrialBalance{AsOf: asOf.UTC()}
	for _, account := range accounts {
		sum, ok := sums[account.ID]
		if !ok {
			continue
		}
		net := sum.SumDebit - sum.SumCredit
		row := domain.TrialBalanceRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Type:      account.Type,
		}
		if net >= 0 {
			row.Debit = net
		} else {
			row.Credit = -net
		}
		out.TotalDebit += row.Debit
		out.TotalCredit += row.Credit
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// loadChart fetches the tenant's accounts plus the per-account debit/credit
// sums of POSTED journals dated at or before asOf.
func (s *Service) loadChart(ctx context.Context, tenantID snowflake.ID, asOf time.Time) ([]accountdomain.Account, map[snowflake.ID]accountSums, error) {
	accounts, err := s.accounts.List(ctx, s.db, tenantID)
	if err != nil {
		return nil, nil, err
	}

	var rows []accountSums
	err = s.db.WithContext(ctx).Raw(
		`SELECT l.account_id, COALESCE(SUM(l.debit), 0) AS sum_debit, COALESCE(SUM(l.credit), 0) AS sum_credit
		 FROM journal_lines l
		 JOIN journals j ON j.id = l.journal_id
		 WHERE l.tenant_id = ? AND j.status = ? AND j.date <= ?
		 GROUP BY l.account_id`,
		tenantID, journaldomain.StatusPosted, asOf.UTC(),
	).Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	sums := make(map[snowflake.ID]accountSums, len(rows))
	for _, row := range rows {
		sums[row.AccountID] = row
	}
	return accounts, sums, nil
}
