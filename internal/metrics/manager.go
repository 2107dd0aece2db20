// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Generation outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeBlocked = "blocked"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

type Manager struct {
	registry *prometheus.Registry

	generations        *prometheus.CounterVec
	premiumGrants      prometheus.Counter
	generationDuration prometheus.Histogram
}

func NewManager() *Manager {
	registry := prometheus.NewRegistry()

	m := &Manager{
		registry: registry,
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edutask_generations_total",
				Help: "Worksheet generation requests by outcome",
			},
			[]string{"outcome"},
		),
		premiumGrants: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "edutask_premium_grants_total",
				Help: "Premium grants issued",
			},
		),
		generationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "edutask_generation_duration_seconds",
				Help:    "Wall time of successful generator calls",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	registry.MustRegister(m.generations, m.premiumGrants, m.generationDuration)

	log.Info().Msg("Metrics manager initialized")

	return m
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// RecordGeneration counts one generation request with its outcome.
func (m *Manager) RecordGeneration(outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
}

// RecordPremiumGrant counts one premium grant.
func (m *Manager) RecordPremiumGrant() {
	if m == nil {
		return
	}
	m.premiumGrants.Inc()
}

// ObserveGenerationDuration records the wall time of a generator call.
func (m *Manager) ObserveGenerationDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(d.Seconds())
}
