package filetransfer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics собирает и экспортирует метрики файловых сессий.
// Все операции thread-safe; счетчики регистрируются в глобальном
// Prometheus реестре один раз при инициализации пакета.
type Metrics struct {
	sessionsTotal       prometheus.Counter
	sessionsActive      prometheus.Gauge
	stateTransitions    *prometheus.CounterVec
	terminalEvents      *prometheus.CounterVec
	transferErrors      *prometheus.CounterVec
	progressEvents      prometheus.Counter
	capabilityRefreshes prometheus.Counter
}

// coreMetrics метрики ядра файловых сессий
var coreMetrics = newMetrics("rcs", "filetransfer")

func newMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		sessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Total number of file transfer sessions created",
		}),
		sessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_active",
			Help:      "Number of currently active file transfer sessions",
		}),
		stateTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state_transitions_total",
			Help:      "Total number of session state transitions",
		}, []string{"from_state", "to_state"}),
		terminalEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "terminal_events_total",
			Help:      "Total number of terminal session events by outcome",
		}, []string{"outcome"}),
		transferErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "transfer_errors_total",
			Help:      "Total number of transfer errors by code",
		}, []string{"code"}),
		progressEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "progress_events_total",
			Help:      "Total number of transfer progress events delivered",
		}),
		capabilityRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "capability_refreshes_total",
			Help:      "Total number of capability refresh requests issued",
		}),
	}
}

// SessionCreated учитывает создание новой сессии.
func (m *Metrics) SessionCreated() {
	m.sessionsTotal.Inc()
	m.sessionsActive.Inc()
}

// SessionRemoved учитывает удаление сессии из реестра активных.
func (m *Metrics) SessionRemoved() {
	m.sessionsActive.Dec()
}

// SessionTerminated учитывает терминальное событие сессии.
func (m *Metrics) SessionTerminated(outcome string) {
	m.terminalEvents.WithLabelValues(outcome).Inc()
}

// StateTransition учитывает переход состояния сессии.
func (m *Metrics) StateTransition(from, to string) {
	m.stateTransitions.WithLabelValues(from, to).Inc()
}

// TransferError учитывает ошибку передачи.
func (m *Metrics) TransferError(code string) {
	m.transferErrors.WithLabelValues(code).Inc()
}

// TransferProgress учитывает событие продвижения передачи.
func (m *Metrics) TransferProgress() {
	m.progressEvents.Inc()
}

// CapabilityRefreshRequested учитывает запрос обновления capabilities.
func (m *Metrics) CapabilityRefreshRequested() {
	m.capabilityRefreshes.Inc()
}
