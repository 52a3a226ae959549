package asynciter

import "github.com/prometheus/client_golang/prometheus"

// Metrics instrumentation is entirely opt-in: the collectors below are not
// registered anywhere or updated until RegisterMetrics is called, so a program that
// never calls it pays nothing beyond a single bool check per lifecycle
// event.
var metricsEnabled bool

var (
	iteratorsConstructed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "asynciter",
		Name:      "iterators_constructed_total",
		Help:      "Iterators constructed, across all concrete types.",
	})
	iteratorsLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "asynciter",
		Name:      "iterators_live",
		Help:      "Iterators constructed but not yet ended or destroyed.",
	})
	iteratorsTerminated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asynciter",
		Name:      "iterators_terminated_total",
		Help:      "Iterators reaching a terminal state, by cause.",
	}, []string{"cause"})
	itemsPushed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "asynciter",
		Name:      "items_pushed_total",
		Help:      "Items pushed into a buffer, across all iterators.",
	})
)

// RegisterMetrics registers this package's collectors with reg and turns on
// instrumentation; call once at program startup, before constructing any
// iterator whose activity should be counted.
func RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{iteratorsConstructed, iteratorsLive, iteratorsTerminated, itemsPushed}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	metricsEnabled = true
	return nil
}

func recordConstructed() {
	if !metricsEnabled {
		return
	}
	iteratorsConstructed.Inc()
	iteratorsLive.Inc()
}

func recordTerminated(cause string) {
	if !metricsEnabled {
		return
	}
	iteratorsLive.Dec()
	iteratorsTerminated.WithLabelValues(cause).Inc()
}

func recordPushed(n int) {
	if !metricsEnabled || n <= 0 {
		return
	}
	itemsPushed.Add(float64(n))
}
