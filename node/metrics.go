package node

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes search counters. Updates happen on the mining goroutine at
// progress reports and on the solution, never per hash.
type Metrics struct {
	hashes   prometheus.Counter
	hashRate prometheus.Gauge
	nonce    prometheus.Gauge
	found    prometheus.Counter
}

// NewMetrics registers the search collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		hashes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genesis_hashes_total",
			Help: "Header hashes evaluated by the nonce search",
		}),
		hashRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "genesis_hashrate",
			Help: "Hashes per second over the last progress interval",
		}),
		nonce: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "genesis_nonce",
			Help: "Nonce of the most recent progress report or solution",
		}),
		found: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genesis_solutions_total",
			Help: "Genesis headers found below target",
		}),
	}
	for _, c := range []prometheus.Collector{m.hashes, m.hashRate, m.nonce, m.found} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeProgress(p Progress, hashed uint64) {
	m.hashes.Add(float64(hashed))
	m.hashRate.Set(p.HashRate)
	m.nonce.Set(float64(p.Nonce))
}

func (m *Metrics) observeSolution(hashed uint64, nonce uint32) {
	m.hashes.Add(float64(hashed))
	m.nonce.Set(float64(nonce))
	m.found.Inc()
}
