package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "matchmaking"

// Metrics records swipe, match, undo and purchase activity.
// A nil *Metrics (or one built with a nil registerer) is a no-op.
type Metrics struct {
	swipes     *prometheus.CounterVec
	matches    *prometheus.CounterVec
	undos      *prometheus.CounterVec
	purchases  *prometheus.CounterVec
	highlights prometheus.Counter
	duration   *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swipes_total",
			Help:      "Swipe attempts by action and outcome reason.",
		}, []string{"action", "outcome"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Matches created by source (swipe, instant).",
		}, []string{"source"}),
		undos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undos_total",
			Help:      "Undo attempts by outcome (ok, partial, or error reason).",
		}, []string{"outcome"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_fulfilled_total",
			Help:      "Fulfilled purchase events by item type.",
		}, []string{"item_type"}),
		highlights: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_highlights_used_total",
			Help:      "Message highlights consumed.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of core operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.swipes, m.matches, m.undos, m.purchases, m.highlights, m.duration)
	return m
}

func (m *Metrics) Swipe(action, outcome string) {
	if m == nil || m.swipes == nil {
		return
	}
	m.swipes.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) MatchCreated(source string) {
	if m == nil || m.matches == nil {
		return
	}
	m.matches.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *Metrics) Undo(outcome string) {
	if m == nil || m.undos == nil {
		return
	}
	m.undos.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) PurchaseFulfilled(itemType string) {
	if m == nil || m.purchases == nil {
		return
	}
	m.purchases.WithLabelValues(normalizeLabel(itemType)).Inc()
}

func (m *Metrics) HighlightUsed() {
	if m == nil || m.highlights == nil {
		return
	}
	m.highlights.Inc()
}

// ObserveDuration records how long op took since start.
func (m *Metrics) ObserveDuration(op string, start time.Time) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(time.Since(start).Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
