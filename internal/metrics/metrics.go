package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Store records order lifecycle and fulfillment activity.
// A nil *Store is valid and records nothing.
type Store struct {
	transitions   *prometheus.CounterVec
	allocations   *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	notifyLatency *prometheus.HistogramVec
	downloads     *prometheus.CounterVec
	sweptTokens   prometheus.Counter
}

// New registers the store collectors on reg.
func New(reg prometheus.Registerer) *Store {
	if reg == nil {
		return &Store{}
	}
	s := &Store{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digistore_order_transitions_total",
			Help: "Order state transitions by target status and actor kind.",
		}, []string{"status", "actor"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digistore_inventory_allocations_total",
			Help: "Inventory allocation attempts by product type and result.",
		}, []string{"type", "result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digistore_deliveries_total",
			Help: "Completed deliveries by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digistore_notifications_total",
			Help: "Outbound notifications by channel and result.",
		}, []string{"channel", "result"}),
		notifyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "digistore_notification_duration_seconds",
			Help:    "Duration of outbound notification calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digistore_download_redemptions_total",
			Help: "Download token redemptions by result.",
		}, []string{"result"}),
		sweptTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "digistore_download_tokens_swept_total",
			Help: "Expired download tokens removed.",
		}),
	}
	reg.MustRegister(s.transitions, s.allocations, s.deliveries, s.notifications, s.notifyLatency, s.downloads, s.sweptTokens)
	return s
}

// NewRegistry returns a registry preloaded with process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func (s *Store) Transition(status, actor string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(label(status), actorKind(actor)).Inc()
}

func (s *Store) Allocation(productType, result string) {
	if s == nil || s.allocations == nil {
		return
	}
	s.allocations.WithLabelValues(label(productType), label(result)).Inc()
}

func (s *Store) Delivery(outcome string) {
	if s == nil || s.deliveries == nil {
		return
	}
	s.deliveries.WithLabelValues(label(outcome)).Inc()
}

// Notification records one outbound call on channel.
func (s *Store) Notification(channel string, err error, took time.Duration) {
	if s == nil || s.notifications == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	s.notifications.WithLabelValues(label(channel), result).Inc()
	s.notifyLatency.WithLabelValues(label(channel)).Observe(took.Seconds())
}

func (s *Store) Download(result string) {
	if s == nil || s.downloads == nil {
		return
	}
	s.downloads.WithLabelValues(label(result)).Inc()
}

func (s *Store) Swept(n int64) {
	if s == nil || s.sweptTokens == nil || n <= 0 {
		return
	}
	s.sweptTokens.Add(float64(n))
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// actorKind strips per-user suffixes so label cardinality stays bounded.
func actorKind(actor string) string {
	for i := 0; i < len(actor); i++ {
		if actor[i] == ':' {
			return actor[:i]
		}
	}
	if len(actor) > 6 && actor[:6] == "buyer_" {
		return "buyer"
	}
	return label(actor)
}
