package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Storefront records cart, payment and backend activity. A nil *Storefront is a no-op.
type Storefront struct {
	cartTransitions      *prometheus.CounterVec
	paymentConfirmations *prometheus.CounterVec
	backendRequests      *prometheus.CounterVec
	backendDuration      *prometheus.HistogramVec
	roleUpdates          *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	m := &Storefront{
		cartTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_transitions_total",
			Help:      "Cart commands reduced, by command.",
		}, []string{"command"}),
		paymentConfirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_confirmations_total",
			Help:      "Payment capture confirmations, by outcome.",
		}, []string{"outcome"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to the shop backend, by operation and status.",
		}, []string{"op", "status"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of shop backend requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		roleUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_role_updates_total",
			Help:      "Optimistic role updates, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.cartTransitions, m.paymentConfirmations, m.backendRequests, m.backendDuration, m.roleUpdates)
	return m
}

// IncCartTransition counts one reduced cart command.
func (m *Storefront) IncCartTransition(command string) {
	if m == nil || m.cartTransitions == nil {
		return
	}
	m.cartTransitions.WithLabelValues(normalizeLabel(command)).Inc()
}

// IncPaymentConfirmation counts one payment confirmation outcome.
func (m *Storefront) IncPaymentConfirmation(outcome string) {
	if m == nil || m.paymentConfirmations == nil {
		return
	}
	m.paymentConfirmations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveBackend records one backend request. status 0 means the request never got a response.
func (m *Storefront) ObserveBackend(op string, status int, duration time.Duration) {
	if m == nil || m.backendRequests == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.backendRequests.WithLabelValues(normalizeLabel(op), label).Inc()
	m.backendDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncRoleUpdate counts one optimistic role update outcome.
func (m *Storefront) IncRoleUpdate(outcome string) {
	if m == nil || m.roleUpdates == nil {
		return
	}
	m.roleUpdates.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
