// Package services – domain metrics
//
// Prometheus collectors for business-level outcomes that HTTP-layer metrics
// cannot see: how often pets are interacted with (by kind), how often an
// interaction bounces off a dead pet, and how often a conditional pet write
// loses the race. All collectors are safe for concurrent use.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// petInteractions counts successfully committed interactions by kind.
	petInteractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pet_interactions_total",
			Help: "Total number of committed pet interactions.",
		},
		[]string{"kind"},
	)

	// deadPetInteractions counts interactions refused by the death gate.
	deadPetInteractions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pet_interactions_dead_total",
			Help: "Interactions that targeted a pet already dead.",
		},
	)

	// updateConflicts counts conditional pet writes that matched zero rows
	// while the pet still existed.
	updateConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pet_update_conflicts_total",
			Help: "Optimistic-lock conflicts detected on pet writes.",
		},
	)
)

func init() {
	prometheus.MustRegister(petInteractions, deadPetInteractions, updateConflicts)
}
