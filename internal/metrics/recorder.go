// Package metrics records generation counters on a private Prometheus registry.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/civictriage/ticketsynth/internal/synth"
)

const namespace = "ticketsynth"

// Recorder implements the batch observer and can dump itself as a textfile.
type Recorder struct {
	registry  *prometheus.Registry
	generated *prometheus.CounterVec
	escalated *prometheus.CounterVec
	score     prometheus.Histogram
	duration  prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_generated_total",
			Help:      "Synthetic tickets generated, by category.",
		}, []string{"category"}),
		escalated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_escalated_total",
			Help:      "Synthetic tickets labelled for escalation, by ward.",
		}, []string{"ward"}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "priority_score",
			Help:      "Distribution of the priority score label.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of the last generation batch.",
		}),
	}
	r.registry.MustRegister(r.generated, r.escalated, r.score, r.duration)
	return r
}

// Observe counts one generated ticket.
func (r *Recorder) Observe(t *synth.Ticket) {
	r.generated.WithLabelValues(string(t.Category)).Inc()
	if t.WillEscalate {
		r.escalated.WithLabelValues(string(t.Location.Ward)).Inc()
	}
	r.score.Observe(t.PriorityScore)
}

// ObserveBatch records how long the batch took.
func (r *Recorder) ObserveBatch(d time.Duration) { r.duration.Set(d.Seconds()) }

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile dumps all metrics in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
