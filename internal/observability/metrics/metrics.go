package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics holds the ledger counters exposed on /metrics.
type Metrics struct {
	journalsPosted  prometheus.Counter
	journalsVoided  prometheus.Counter
	accountsCreated prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		journalsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_journals_posted_total",
			Help: "Number of journals committed with status POSTED.",
		}),
		journalsVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_journals_voided_total",
			Help: "Number of posted journals flipped to VOID.",
		}),
		accountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_accounts_created_total",
			Help: "Number of chart-of-accounts entries created.",
		}),
	}
}

func (m *Metrics) JournalPosted()  { m.journalsPosted.Inc() }
func (m *Metrics) JournalVoided()  { m.journalsVoided.Inc() }
func (m *Metrics) AccountCreated() { m.accountsCreated.Inc() }

// Module provides the prometheus counters.
var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
