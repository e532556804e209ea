package worker

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "gift_autobuy"

// Metrics счётчики воркеров. Нулевой *Metrics ничего не считает.
type Metrics struct {
	cycles        *prometheus.CounterVec
	purchases     *prometheus.CounterVec
	spent         *prometheus.CounterVec
	deactivations *prometheus.CounterVec
	state         *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "worker_cycles_total",
			Help:      "Purchase worker cycles by outcome.",
		}, []string{"outcome"}),
		purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "purchase_attempts_total",
			Help:      "Purchase attempts by sender and result.",
		}, []string{"sender", "result"}),
		spent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stars_spent_total",
			Help:      "Stars spent on successful purchases.",
		}, []string{"sender"}),
		deactivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "worker_deactivations_total",
			Help:      "Automatic deactivations by reason.",
		}, []string{"reason"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "worker_state",
			Help:      "Current worker state per user.",
		}, []string{"user_id"}),
	}

	reg.MustRegister(m.cycles, m.purchases, m.spent, m.deactivations, m.state)

	return m
}

func (m *Metrics) observeCycle(outcome CycleOutcome) {
	if m == nil {
		return
	}

	m.cycles.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) observePurchase(sender string, price int64, ok bool) {
	if m == nil {
		return
	}

	result := "failure"
	if ok {
		result = "success"

		m.spent.WithLabelValues(sender).Add(float64(price))
	}

	m.purchases.WithLabelValues(sender, result).Inc()
}

func (m *Metrics) observeDeactivation(outcome CycleOutcome) {
	if m == nil {
		return
	}

	m.deactivations.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) observeState(userID int64, state State) {
	if m == nil {
		return
	}

	m.state.WithLabelValues(strconv.FormatInt(userID, 10)).Set(float64(state))
}
