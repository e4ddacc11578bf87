// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package prom exports kernel lifecycle events as Prometheus metrics.
package prom

import (
	"code.hybscloud.com/recoil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector is a [recoil.Observer] backed by Prometheus metrics. All metrics
// carry a constant "kernel" label with the kernel's ID.
type Collector struct {
	started  prometheus.Counter
	finished *prometheus.CounterVec
	live     prometheus.Gauge
	panics   prometheus.Counter
}

var _ recoil.Observer = (*Collector)(nil)

// New creates a collector for kernel id and registers its metrics with reg.
// It panics if registration fails, as prometheus.MustRegister does.
func New(reg prometheus.Registerer, id uuid.UUID) *Collector {
	labels := prometheus.Labels{"kernel": id.String()}
	c := &Collector{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "recoil",
			Subsystem:   "strands",
			Name:        "started_total",
			Help:        "Strands executed on the kernel.",
			ConstLabels: labels,
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "recoil",
			Subsystem:   "strands",
			Name:        "finished_total",
			Help:        "Strands that reached a terminal state, by state.",
			ConstLabels: labels,
		}, []string{"state"}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "recoil",
			Subsystem:   "strands",
			Name:        "live",
			Help:        "Strands executed and not yet terminal.",
			ConstLabels: labels,
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "recoil",
			Subsystem:   "kernel",
			Name:        "panics_total",
			Help:        "Kernel panics raised by unhandled strand failures.",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(c.started, c.finished, c.live, c.panics)
	return c
}

// StrandStarted counts a newly executed strand and adds it to the live gauge.
func (c *Collector) StrandStarted(*recoil.Strand) {
	c.started.Inc()
	c.live.Inc()
}

// StrandFinished counts s under its terminal state and removes it from the
// live gauge.
func (c *Collector) StrandFinished(s *recoil.Strand) {
	c.finished.WithLabelValues(s.State().String()).Inc()
	c.live.Dec()
}

// KernelPanicked counts a kernel panic.
func (c *Collector) KernelPanicked(*recoil.PanicError) {
	c.panics.Inc()
}

// Started returns the strands-started counter.
func (c *Collector) Started() prometheus.Counter { return c.started }

// Finished returns the strands-finished counter for state.
func (c *Collector) Finished(state string) prometheus.Counter {
	return c.finished.WithLabelValues(state)
}

// Live returns the live-strands gauge.
func (c *Collector) Live() prometheus.Gauge { return c.live }

// Panics returns the kernel-panics counter.
func (c *Collector) Panics() prometheus.Counter { return c.panics }
