// business/fareagent/agent_test.go
package fareagent

import (
	"context"
	"errors"
	"testing"

	"fareRadar/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAgentConfig() config.AgentConfig {
	return config.AgentConfig{Epsilon: 0.1, LearningRate: 0.1, BatchSize: 20}
}

type memoryQTableRepo struct {
	table   map[string]ActionValues
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryQTableRepo) Load(_ context.Context) (map[string]ActionValues, error) {
	return m.table, m.loadErr
}

func (m *memoryQTableRepo) Save(_ context.Context, table map[string]ActionValues) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.table = table
	return nil
}

func TestUpdateMovesTowardRewardWithoutOvershoot(t *testing.T) {
	agent := NewAgent(nil, testAgentConfig())
	state := State{TimeBucket: "morning", WeatherCode: 0, ZoneType: 0}

	reward := 1.0
	prev := 0.0
	for i := 0; i < 50; i++ {
		agent.update(state, 2, reward)
		cur := agent.Snapshot()[state.Key()][2]

		assert.Greater(t, cur, prev, "iteration %d must move toward reward", i)
		assert.LessOrEqual(t, cur, reward, "iteration %d must not overshoot", i)
		prev = cur
	}

	// converges close to the reward after enough steps
	assert.InDelta(t, reward, prev, 0.05)
}

func TestUpdateNegativeReward(t *testing.T) {
	agent := NewAgent(nil, testAgentConfig())
	state := State{TimeBucket: "night", WeatherCode: 2, ZoneType: 1}

	agent.update(state, 0, -1)
	assert.InDelta(t, -0.1, agent.Snapshot()[state.Key()][0], 1e-9)
}

func TestNudgeFactorExploitsBestAction(t *testing.T) {
	agent := NewAgent(nil, testAgentConfig())
	require.NoError(t, agent.SetEpsilon(0)) // pure exploitation

	state := State{TimeBucket: "evening", WeatherCode: 1, ZoneType: 0}
	agent.update(state, 4, 1.0) // +10% clearly best

	for i := 0; i < 10; i++ {
		assert.Equal(t, Actions[4], agent.NudgeFactor("evening", 1, 0))
	}
}

func TestNudgeFactorUnseenStateIsNeutral(t *testing.T) {
	agent := NewAgent(nil, testAgentConfig())
	require.NoError(t, agent.SetEpsilon(0))

	// zero vector ties resolve to the first action only if nothing beats it;
	// bestAction keeps index 0 on an all-zero vector
	assert.Equal(t, Actions[0], agent.NudgeFactor("morning", -1, -1))
}

func TestSetEpsilonBounds(t *testing.T) {
	agent := NewAgent(nil, testAgentConfig())

	assert.Error(t, agent.SetEpsilon(-0.1))
	assert.Error(t, agent.SetEpsilon(1.1))
	assert.NoError(t, agent.SetEpsilon(0.5))
	assert.Equal(t, 0.5, agent.Epsilon())
}

func TestSnapshotIsACopy(t *testing.T) {
	agent := NewAgent(nil, testAgentConfig())
	state := State{TimeBucket: "morning", WeatherCode: 0, ZoneType: 0}
	agent.update(state, 1, 0.5)

	snap := agent.Snapshot()
	values := snap[state.Key()]
	values[1] = 99
	snap[state.Key()] = values

	assert.InDelta(t, 0.05, agent.Snapshot()[state.Key()][1], 1e-9)
}

func TestLoadTable(t *testing.T) {
	t.Run("restores persisted values", func(t *testing.T) {
		repo := &memoryQTableRepo{table: map[string]ActionValues{
			"morning|0|0": {0, 0.2, 0, 0, 0},
		}}
		agent := NewAgent(repo, testAgentConfig())
		agent.LoadTable(context.Background())

		assert.InDelta(t, 0.2, agent.Snapshot()["morning|0|0"][1], 1e-9)
	})

	t.Run("load failure starts empty", func(t *testing.T) {
		repo := &memoryQTableRepo{loadErr: errors.New("redis down")}
		agent := NewAgent(repo, testAgentConfig())
		agent.LoadTable(context.Background())

		assert.Empty(t, agent.Snapshot())
	})

	t.Run("missing table starts empty", func(t *testing.T) {
		repo := &memoryQTableRepo{}
		agent := NewAgent(repo, testAgentConfig())
		agent.LoadTable(context.Background())

		assert.Empty(t, agent.Snapshot())
	})
}

func TestPersistKeepsMemoryOnSaveFailure(t *testing.T) {
	repo := &memoryQTableRepo{saveErr: errors.New("redis down")}
	agent := NewAgent(repo, testAgentConfig())
	state := State{TimeBucket: "morning", WeatherCode: 0, ZoneType: 0}
	agent.update(state, 0, 1)

	agent.persist(context.Background())

	assert.Equal(t, 1, repo.saves)
	assert.InDelta(t, 0.1, agent.Snapshot()[state.Key()][0], 1e-9)
}
