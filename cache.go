package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ProjectionCache stores the viewer projection of a video's interaction points.
// Cache failures are never fatal; a miss falls back to the database.
//
// Delete bumps the video's generation. A reader takes Generation before
// loading rows and hands it back to Set, which stores nothing if a Delete
// happened in between. A negative generation is never stored.
type ProjectionCache interface {
	Get(ctx context.Context, videoID string) ([]InteractionView, bool)
	Generation(ctx context.Context, videoID string) int64
	Set(ctx context.Context, videoID string, gen int64, views []InteractionView)
	Delete(ctx context.Context, videoID string)
}

type noOpCache struct{}

func NewNoOpCache() ProjectionCache { return noOpCache{} }

func (noOpCache) Get(context.Context, string) ([]InteractionView, bool) { return nil, false }
func (noOpCache) Generation(context.Context, string) int64              { return -1 }
func (noOpCache) Set(context.Context, string, int64, []InteractionView) {}
func (noOpCache) Delete(context.Context, string)                        {}

// generationTTL outlives any projection entry by a wide margin.
const generationTTL = 24 * time.Hour

var errStaleProjection = errors.New("projection generation moved")

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisCache(ctx context.Context, cfg RedisConfig, log zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("connected to redis projection cache")
	return newRedisCache(client, cfg.TTL, log), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func projectionKey(videoID string) string {
	return "iv:projection:" + videoID
}

func generationKey(videoID string) string {
	return "iv:projection-gen:" + videoID
}

func (c *RedisCache) Get(ctx context.Context, videoID string) ([]InteractionView, bool) {
	raw, err := c.client.Get(ctx, projectionKey(videoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("video_id", videoID).Msg("redis get failed")
		cacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	var views []InteractionView
	if err := json.Unmarshal(raw, &views); err != nil {
		c.log.Warn().Err(err).Str("video_id", videoID).Msg("cached projection is corrupt")
		cacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return views, true
}

func (c *RedisCache) Generation(ctx context.Context, videoID string) int64 {
	gen, err := c.client.Get(ctx, generationKey(videoID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		c.log.Warn().Err(err).Str("video_id", videoID).Msg("redis generation read failed")
		return -1
	}
	return gen
}

func (c *RedisCache) Set(ctx context.Context, videoID string, gen int64, views []InteractionView) {
	if gen < 0 {
		return
	}
	raw, err := json.Marshal(views)
	if err != nil {
		c.log.Warn().Err(err).Str("video_id", videoID).Msg("marshal projection failed")
		return
	}
	genKey := generationKey(videoID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleProjection
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, projectionKey(videoID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleProjection), errors.Is(err, redis.TxFailedErr):
		c.log.Debug().Str("video_id", videoID).Msg("projection changed while loading, not cached")
	default:
		c.log.Warn().Err(err).Str("video_id", videoID).Msg("redis set failed")
	}
}

func (c *RedisCache) Delete(ctx context.Context, videoID string) {
	genKey := generationKey(videoID)
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, projectionKey(videoID))
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, generationTTL)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("video_id", videoID).Msg("redis delete failed")
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
