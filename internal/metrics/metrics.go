package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pasteapi"

// PasteMetrics counts paste lifecycle events. A nil *PasteMetrics is valid
// and records nothing.
type PasteMetrics struct {
	created    prometheus.Counter
	collisions prometheus.Counter
	removed    prometheus.Counter
	expired    prometheus.Counter
}

// NewPasteMetrics creates the paste counters and registers them on reg.
func NewPasteMetrics(reg prometheus.Registerer) (*PasteMetrics, error) {
	m := &PasteMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pastes_created_total",
			Help:      "Total number of pastes stored.",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paste_id_collisions_total",
			Help:      "Total number of inserts rejected because an identifier was already taken.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pastes_removed_total",
			Help:      "Total number of pastes deleted through their removal identifier.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pastes_expired_total",
			Help:      "Total number of expired pastes purged.",
		}),
	}

	for _, c := range []prometheus.Collector{m.created, m.collisions, m.removed, m.expired} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PasteMetrics) Created() {
	if m != nil {
		m.created.Inc()
	}
}

func (m *PasteMetrics) Collision() {
	if m != nil {
		m.collisions.Inc()
	}
}

func (m *PasteMetrics) Removed() {
	if m != nil {
		m.removed.Inc()
	}
}

// Expired adds n purged pastes.
func (m *PasteMetrics) Expired(n int) {
	if m != nil && n > 0 {
		m.expired.Add(float64(n))
	}
}
