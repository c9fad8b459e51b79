package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tallybook/ledgerd/internal/account/domain"
)

type chartEntry struct {
	Code              string
	Name              string
	Type              accountdomain.AccountType
	SystemTag         *accountdomain.SystemTag
	IsControl         bool
	IsPaymentEligible bool
	IsContra          bool
}

func tag(t accountdomain.SystemTag) *accountdomain.SystemTag { return &t }

// defaultChart is the starter chart of accounts every tenant gets. Control
// accounts (AR, AP) aggregate subsidiary postings; tagged accounts are the
// targets automated payment and invoice flows resolve against.
var defaultChart = []chartEntry{
	{Code: "1000", Name: "Cash", Type: accountdomain.TypeAsset, SystemTag: tag(accountdomain.TagCash), IsPaymentEligible: true},
	{Code: "1100", Name: "Bank", Type: accountdomain.TypeAsset, SystemTag: tag(accountdomain.TagBank), IsPaymentEligible: true},
	{Code: "1200", Name: "Accounts Receivable", Type: accountdomain.TypeAsset, SystemTag: tag(accountdomain.TagReceivable), IsControl: true},
	{Code: "2000", Name: "Accounts Payable", Type: accountdomain.TypeLiability, SystemTag: tag(accountdomain.TagPayable), IsControl: true},
	{Code: "2100", Name: "Tax Payable", Type: accountdomain.TypeLiability, SystemTag: tag(accountdomain.TagTaxPayable)},
	{Code: "3000", Name: "Owner's Equity", Type: accountdomain.TypeEquity},
	{Code: "3100", Name: "Drawings", Type: accountdomain.TypeEquity, IsContra: true},
	{Code: "4000", Name: "Sales", Type: accountdomain.TypeIncome, SystemTag: tag(accountdomain.TagSales)},
	{Code: "5000", Name: "Cost of Goods Sold", Type: accountdomain.TypeExpense, SystemTag: tag(accountdomain.TagCOGS)},
	{Code: "6000", Name: "General Expenses", Type: accountdomain.TypeExpense},
}

// EnsureDefaultChart seeds the starter chart for a tenant. It runs entirely
// through UpsertByCode, so re-running it reconciles drift without side
// effects.
func EnsureDefaultChart(ctx context.Context, accounts accountdomain.Service, tenantID snowflake.ID) error {
	boolPtr := func(b bool) *bool { return &b }
	strPtr := func(s string) *string { return &s }

	for _, entry := range defaultChart {
		spec := accountdomain.UpsertSpec{
			Name:      strPtr(entry.Name),
			Type:      &entry.Type,
			SystemTag: entry.SystemTag,
			IsSystem:  boolPtr(true),
		}
		if entry.IsControl {
			spec.IsControl = boolPtr(true)
		}
		if entry.IsPaymentEligible {
			spec.IsPaymentEligible = boolPtr(true)
		}
		if entry.IsContra {
			spec.IsContra = boolPtr(true)
		}
		if _, err := accounts.UpsertByCode(ctx, tenantID, entry.Code, spec); err != nil {
			return err
		}
	}
	return nil
}
