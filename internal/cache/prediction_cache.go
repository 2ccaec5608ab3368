// internal/cache/prediction_cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"risk-predictor/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// PredictionCache stores formatted prediction records in Redis, keyed by the
// model fingerprint and the submitted feature values.
type PredictionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewPredictionCache(client *redis.Client, prefix string, ttl time.Duration) *PredictionCache {
	if prefix == "" {
		prefix = "prediction"
	}
	return &PredictionCache{client: client, prefix: prefix, ttl: ttl}
}

// Key builds <prefix>:<fingerprint>:<sha256 of the canonical features JSON>.
// encoding/json sorts map keys, so equal feature maps give equal keys.
func (c *PredictionCache) Key(fingerprint string, features map[string]interface{}) (string, error) {
	canonical, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("canonicalize features: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return fmt.Sprintf("%s:%s:%s", c.prefix, fingerprint, hex.EncodeToString(sum[:])), nil
}

// Get returns the stored record. A miss is (nil, false, nil).
func (c *PredictionCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewCacheFailureError("get", err)
	}
	return val, true, nil
}

func (c *PredictionCache) Set(ctx context.Context, key string, record []byte) error {
	if err := c.client.Set(ctx, key, record, c.ttl).Err(); err != nil {
		return errors.NewCacheFailureError("set", err)
	}
	return nil
}
