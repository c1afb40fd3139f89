// Copyright (c) 2018-2026 The alloyd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrelay

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "alloyd"
	metricsSubsystem = "txrelay"
)

// Reject reasons that are not rule error codes.
const (
	reasonDecode      = "decode"
	reasonKnownReject = "known_reject"
)

// metrics holds the collectors updated by a Manager.
type metrics struct {
	accepted  prometheus.Counter
	duplicate prometheus.Counter
	rejected  *prometheus.CounterVec
	poolSize  prometheus.Gauge
}

// newMetrics creates the collectors and registers them with reg when it is
// not nil.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "accepted_total",
			Help:      "Transactions accepted into the pool",
		}),
		duplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "duplicate_total",
			Help:      "Transactions that were already in the pool",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "rejected_total",
			Help:      "Transactions rejected by reason",
		}, []string{"reason"}),
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "pool_transactions",
			Help:      "Transactions currently in the pool",
		}),
	}
	if reg == nil {
		return m, nil
	}

	collectors := []prometheus.Collector{
		m.accepted, m.duplicate, m.rejected, m.poolSize,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
