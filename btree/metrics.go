package btree

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds optional Prometheus counters for tree internals. The nil
// value is valid: every call site guards on Metrics == nil, so a Tree
// opened without Metrics pays no instrumentation cost.
type Metrics struct {
	NodeFetches prometheus.Counter
	NodeWrites  prometheus.Counter
	Splits      prometheus.Counter
	Promotions  prometheus.Counter
}

// NewMetrics builds and registers a Metrics under namespace, e.g. the
// index facade's own name, so multiple indexes can each expose their own
// counters without colliding.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		NodeFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "node_fetches_total", Help: "Nodes read from the node store.",
		}),
		NodeWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "node_writes_total", Help: "Nodes written to the node store.",
		}),
		Splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "splits_total", Help: "Node split_at_median operations performed.",
		}),
		Promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "promotions_total", Help: "Median keys promoted into a parent or new root.",
		}),
	}
	for _, c := range []prometheus.Collector{m.NodeFetches, m.NodeWrites, m.Splits, m.Promotions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
