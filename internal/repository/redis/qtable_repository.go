package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"fareRadar/business/fareagent"

	"github.com/redis/go-redis/v9"
)

const qtableKey = "fareagent:qtable"

type QTableRepository struct {
	client *redis.Client
}

func NewQTableRepository(client *redis.Client) *QTableRepository {
	return &QTableRepository{client: client}
}

// Load returns nil with nil error when no table has been saved yet; the agent
// treats that as an empty table.
func (r *QTableRepository) Load(ctx context.Context) (map[string]fareagent.ActionValues, error) {
	val, err := r.client.Get(ctx, qtableKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get Q-table from Redis: %w", err)
	}

	var table map[string]fareagent.ActionValues
	if err := json.Unmarshal([]byte(val), &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Q-table: %w", err)
	}

	return table, nil
}

func (r *QTableRepository) Save(ctx context.Context, table map[string]fareagent.ActionValues) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal Q-table: %w", err)
	}

	// no TTL, the table is the durable copy
	if err := r.client.Set(ctx, qtableKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store Q-table in Redis: %w", err)
	}

	return nil
}
