package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fcecin/betacorn/internal/dice-service/dto"
)

// Cache guarda o snapshot da mesa no Redis pra leitura barata: GETs de
// /v1/table não precisam tomar o lock do engine
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

const tableKey = "dice:table"

func (c *Cache) GetTable(ctx context.Context, dst *dto.TableResponse) (bool, error) {
	b, err := c.R.Get(ctx, tableKey).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetTable(ctx context.Context, v dto.TableResponse) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, tableKey, b, c.TTL).Err()
}
