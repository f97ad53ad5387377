package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Nudge actions picked by the agent, labeled by adjustment
	AgentActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fareagent_actions_total",
		Help: "Total number of nudge actions selected by adjustment",
	}, []string{"action"})

	// Completed training batches
	AgentTrainingRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fareagent_training_runs_total",
		Help: "Total number of completed training batches",
	})

	// Number of states in the Q-table
	AgentStates = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fareagent_states",
		Help: "Number of states currently held in the Q-table",
	})

	// Trips contributed to the community history
	TripsContributed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trips_contributed_total",
		Help: "Total number of trips contributed to the history",
	})
)

func Init() {
	prometheus.MustRegister(
		EstimateLatency,
		EstimateRequests,
		RelaxationLevel,
		IsochroneFallbacks,
		ClassifierCalls,
		AgentActions,
		AgentTrainingRuns,
		AgentStates,
		TripsContributed,
	)
}
