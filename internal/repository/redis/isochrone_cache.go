package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fareRadar/business/estimation"
	"fareRadar/pkg/geo"
	"fareRadar/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// IsochroneCache fronts the routing collaborator with a TTL cache; isochrone
// polygons around a point barely change day to day. Cache failures fall
// through to the inner repository.
type IsochroneCache struct {
	client *redis.Client
	inner  estimation.IsochroneRepository
	ttl    time.Duration
}

func NewIsochroneCache(client *redis.Client, inner estimation.IsochroneRepository, ttl time.Duration) *IsochroneCache {
	return &IsochroneCache{client: client, inner: inner, ttl: ttl}
}

func (c *IsochroneCache) GetIsochrone(ctx context.Context, lon, lat float64, minutes int) (geo.Polygon, error) {
	key := fmt.Sprintf("isochrone:%.5f:%.5f:%d", lon, lat, minutes)

	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var poly geo.Polygon
		if err := json.Unmarshal([]byte(val), &poly); err == nil {
			return poly, nil
		}
		logger.Warn("Corrupt cached isochrone, refetching", "key", key)
	} else if err != redis.Nil {
		logger.Warn("Isochrone cache read failed", "error", err)
	}

	poly, err := c.inner.GetIsochrone(ctx, lon, lat, minutes)
	if err != nil {
		return nil, err
	}

	if raw, merr := json.Marshal(poly); merr == nil {
		if serr := c.client.Set(ctx, key, raw, c.ttl).Err(); serr != nil {
			logger.Warn("Isochrone cache write failed", "error", serr)
		}
	}

	return poly, nil
}
