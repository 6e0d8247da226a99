package metrics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/trebuchet-org/v3ops/internal/domain/config"
	"github.com/trebuchet-org/v3ops/internal/domain/models"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// TextfileMetrics counts submitted transactions and writes them in the
// Prometheus text format for the node exporter textfile collector
type TextfileMetrics struct {
	path     string
	registry *prometheus.Registry
	log      *slog.Logger

	mu       sync.Mutex
	observed int

	txTotal *prometheus.CounterVec
	gasUsed *prometheus.HistogramVec
}

// NewTextfileMetrics creates the collectors. Nothing is written unless a metrics file is configured.
func NewTextfileMetrics(cfg *config.RuntimeConfig, log *slog.Logger) *TextfileMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &TextfileMetrics{
		path:     cfg.MetricsFile,
		registry: reg,
		log:      log.With("component", "Metrics"),
		txTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "v3ops_transactions_total",
				Help: "Transactions submitted by operation and status",
			},
			[]string{"operation", "status"},
		),
		gasUsed: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "v3ops_transaction_gas_used",
				Help:    "Gas used by mined transactions",
				Buckets: prometheus.ExponentialBuckets(21000, 2, 10),
			},
			[]string{"operation"},
		),
	}
}

// ObserveTransaction counts one transaction
func (m *TextfileMetrics) ObserveTransaction(operation string, record models.TxRecord) {
	m.mu.Lock()
	m.observed++
	m.mu.Unlock()

	m.txTotal.WithLabelValues(operation, string(record.Status)).Inc()
	if record.GasUsed > 0 {
		m.gasUsed.WithLabelValues(operation).Observe(float64(record.GasUsed))
	}
}

// Flush writes the metrics file, if one is configured and something was observed
func (m *TextfileMetrics) Flush() error {
	m.mu.Lock()
	observed := m.observed
	m.mu.Unlock()

	if m.path == "" || observed == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", m.path, err)
	}
	m.log.Debug("wrote metrics", "path", m.path, "transactions", observed)
	return nil
}

// Registry exposes the collectors, for tests and embedding
func (m *TextfileMetrics) Registry() *prometheus.Registry {
	return m.registry
}

var _ usecase.TxMetrics = (*TextfileMetrics)(nil)
