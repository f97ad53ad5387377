// business/fareagent/agent.go
package fareagent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"fareRadar/pkg/config"
	"fareRadar/pkg/logger"
	"fareRadar/pkg/metrics"
)

// Actions are the discrete fare adjustments, symmetric around zero. Index
// positions are stable; the Q-table stores one value per index.
var Actions = [5]float64{-0.10, -0.05, 0, 0.05, 0.10}

const numActions = len(Actions)

type ActionValues [numActions]float64

// State keys the Q-table by trip context. Unknown weather/zone use -1.
type State struct {
	TimeBucket  string `json:"time_bucket"`
	WeatherCode int16  `json:"weather_code"`
	ZoneType    int16  `json:"zone_type"`
}

func (s State) Key() string {
	return fmt.Sprintf("%s|%d|%d", s.TimeBucket, s.WeatherCode, s.ZoneType)
}

// QTableRepository persists the full state -> action-value table.
type QTableRepository interface {
	Load(ctx context.Context) (map[string]ActionValues, error)
	Save(ctx context.Context, table map[string]ActionValues) error
}

// Agent is the epsilon-greedy fare nudger. The table is the only shared
// mutable state in the engine: snapshot reads under RLock, serialized writes
// under Lock.
type Agent struct {
	mu    sync.RWMutex
	table map[string]ActionValues

	epsilon float64
	alpha   float64
	repo    QTableRepository
}

func NewAgent(repo QTableRepository, cfg config.AgentConfig) *Agent {
	return &Agent{
		table:   make(map[string]ActionValues),
		epsilon: cfg.Epsilon,
		alpha:   cfg.LearningRate,
		repo:    repo,
	}
}

// LoadTable restores the persisted table. Missing or corrupt storage starts
// empty, never fatal.
func (a *Agent) LoadTable(ctx context.Context) {
	if a.repo == nil {
		return
	}

	table, err := a.repo.Load(ctx)
	if err != nil {
		logger.Warn("Q-table load failed, starting with empty table", "error", err)
		return
	}
	if table == nil {
		table = make(map[string]ActionValues)
	}

	a.mu.Lock()
	a.table = table
	a.mu.Unlock()

	metrics.AgentStates.Set(float64(len(table)))
	logger.Info("Q-table loaded", "states", len(table))
}

// NudgeFactor picks an adjustment for the given context: with probability
// epsilon a uniformly random action, otherwise the highest-valued one. Unseen
// states hold the all-zero vector, so exploitation there picks no adjustment.
func (a *Agent) NudgeFactor(timeBucket string, weatherCode, zoneType int16) float64 {
	state := State{TimeBucket: timeBucket, WeatherCode: weatherCode, ZoneType: zoneType}

	var idx int
	if rand.Float64() < a.Epsilon() {
		idx = rand.Intn(numActions)
	} else {
		a.mu.RLock()
		values := a.table[state.Key()]
		a.mu.RUnlock()
		idx = bestAction(values)
	}

	metrics.AgentActions.WithLabelValues(fmt.Sprintf("%+.0f%%", Actions[idx]*100)).Inc()
	return Actions[idx]
}

// bestAction returns the highest-valued index, ties toward the earlier (more
// negative) action.
func bestAction(values ActionValues) int {
	best := 0
	for i := 1; i < numActions; i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// update moves Q(s,a) toward reward by the learning rate. Single-step bandit
// rule, no discounting.
func (a *Agent) update(state State, action int, reward float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	values := a.table[state.Key()]
	values[action] += a.alpha * (reward - values[action])
	a.table[state.Key()] = values
}

// Snapshot copies the table for inspection.
func (a *Agent) Snapshot() map[string]ActionValues {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[string]ActionValues, len(a.table))
	for k, v := range a.table {
		out[k] = v
	}
	return out
}

func (a *Agent) Epsilon() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.epsilon
}

func (a *Agent) SetEpsilon(epsilon float64) error {
	if epsilon < 0 || epsilon > 1 {
		return errors.New("epsilon must be within [0, 1]")
	}

	a.mu.Lock()
	a.epsilon = epsilon
	a.mu.Unlock()

	logger.Info("Agent epsilon updated", "epsilon", epsilon)
	return nil
}

// persist saves the current table. On failure the in-memory table stays
// authoritative until the next successful save.
func (a *Agent) persist(ctx context.Context) {
	if a.repo == nil {
		return
	}

	snapshot := a.Snapshot()
	if err := a.repo.Save(ctx, snapshot); err != nil {
		logger.Error("Q-table save failed, keeping in-memory table authoritative", "error", err)
		return
	}

	metrics.AgentStates.Set(float64(len(snapshot)))
}
