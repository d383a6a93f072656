package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

const namespace = "historygames"

// Статусы попытки извлечения.
const (
	StatusSuccess       = "success"
	StatusError         = "error"
	StatusEmptyResponse = "error_empty_response"
)

// Metrics хранит коллекторы сервиса. Нулевой указатель допустим и ничего не пишет.
type Metrics struct {
	gamesStarted       *prometheus.CounterVec
	gamesFinished      *prometheus.CounterVec
	extractionAttempts *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	activeSessions     prometheus.Gauge
	historySize        prometheus.Gauge
}

// New регистрирует коллекторы в reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gamesStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_started_total",
				Help:      "Total number of started games.",
			},
			[]string{"game_type"},
		),
		gamesFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_finished_total",
				Help:      "Total number of finished games.",
			},
			[]string{"game_type"},
		),
		extractionAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_attempts_total",
				Help:      "Total number of requests to the extraction model.",
			},
			[]string{"model", "status"},
		),
		extractionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extraction_duration_seconds",
				Help:      "Histogram of extraction request durations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live sessions.",
		}),
		historySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_games",
			Help:      "Number of saved games in history.",
		}),
	}
}

func (m *Metrics) GameStarted(t models.GameType) {
	if m == nil {
		return
	}
	m.gamesStarted.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) GameFinished(t models.GameType) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(string(t)).Inc()
}

// ObserveExtraction учитывает одну попытку обращения к модели.
func (m *Metrics) ObserveExtraction(model, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractionAttempts.WithLabelValues(model, status).Inc()
	m.extractionDuration.WithLabelValues(model).Observe(d.Seconds())
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *Metrics) SetHistorySize(n int) {
	if m == nil {
		return
	}
	m.historySize.Set(float64(n))
}
