package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BattleMetrics 回合结算指标。引擎只依赖 Recorder 接口，nil 时不记录。
type BattleMetrics struct {
	RoundsTotal          prometheus.Counter
	RoundDuration        prometheus.Histogram
	DestroyedCitiesTotal prometheus.Counter
	SpecialEventsTotal   *prometheus.CounterVec
	FatigueTotal         prometheus.Counter
	ReportSaveFailures   *prometheus.CounterVec
}

// Recorder 是引擎侧看到的最小指标接口。
type Recorder interface {
	ObserveRound(elapsed time.Duration, destroyed int, fatigued int)
	IncSpecialEvent(kind string)
	IncSaveFailure(driver string)
}

// RoundBuckets 单回合结算耗时（秒），纯内存计算，预期毫秒级。
var RoundBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

func NewBattleMetrics(namespace string, registerer prometheus.Registerer) *BattleMetrics {
	factory := promauto.With(registerer)
	return &BattleMetrics{
		RoundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "battle",
			Name:      "rounds_total",
			Help:      "Resolved rounds",
		}),
		RoundDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "battle",
			Name:      "round_duration_seconds",
			Help:      "Round resolution latency",
			Buckets:   RoundBuckets,
		}),
		DestroyedCitiesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "battle",
			Name:      "destroyed_cities_total",
			Help:      "Cities destroyed in battle",
		}),
		SpecialEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "battle",
			Name:      "special_events_total",
			Help:      "Pre-battle special events by kind",
		}, []string{"kind"}),
		FatigueTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "battle",
			Name:      "fatigue_applied_total",
			Help:      "Fatigue halvings applied",
		}),
		ReportSaveFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "save_failures_total",
			Help:      "Round report persistence failures by driver",
		}, []string{"driver"}),
	}
}

func (m *BattleMetrics) ObserveRound(elapsed time.Duration, destroyed int, fatigued int) {
	if m == nil {
		return
	}
	m.RoundsTotal.Inc()
	m.RoundDuration.Observe(elapsed.Seconds())
	m.DestroyedCitiesTotal.Add(float64(destroyed))
	m.FatigueTotal.Add(float64(fatigued))
}

func (m *BattleMetrics) IncSpecialEvent(kind string) {
	if m == nil {
		return
	}
	m.SpecialEventsTotal.WithLabelValues(kind).Inc()
}

func (m *BattleMetrics) IncSaveFailure(driver string) {
	if m == nil {
		return
	}
	m.ReportSaveFailures.WithLabelValues(driver).Inc()
}
