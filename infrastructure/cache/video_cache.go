package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"viewtube/domain/model"
	"viewtube/domain/repository"
	"viewtube/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

const videoKeyPrefix = "viewtube:video:"

// VideoCache is a read-through redis layer in front of a VideoStore.
// Writes go to the store first and then invalidate the cached entry.
// Redis failures never fail a call; the store stays authoritative.
type VideoCache struct {
	store  repository.IVideoStore
	client redis.Cmdable
	ttl    time.Duration
}

// NewVideoCache wraps store. A nil client turns the cache into a passthrough.
func NewVideoCache(store repository.IVideoStore, client redis.Cmdable, ttl time.Duration) repository.IVideoStore {
	return &VideoCache{store: store, client: client, ttl: ttl}
}

func videoKey(id int64) string {
	return fmt.Sprintf("%s%d", videoKeyPrefix, id)
}

func (c *VideoCache) Get(ctx context.Context, id int64) (model.VideoItem, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, videoKey(id)).Bytes()
		switch {
		case err == nil:
			var v model.VideoItem
			if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
				return v, nil
			}
		case !errors.Is(err, redis.Nil):
			logger.GetLogger().WithField("error", err).WithField("video_id", id).Warn("redis get failed, reading store")
		}
	}

	v, err := c.store.Get(ctx, id)
	if err != nil {
		return model.VideoItem{}, err
	}
	c.set(ctx, v)
	return v, nil
}

func (c *VideoCache) Put(ctx context.Context, item model.VideoItem) error {
	if err := c.store.Put(ctx, item); err != nil {
		return err
	}
	c.invalidate(ctx, item.ID)
	return nil
}

func (c *VideoCache) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := c.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	c.invalidate(ctx, id)
	return removed, nil
}

// ListAll always reads the store so ordering comes from one place.
func (c *VideoCache) ListAll(ctx context.Context) ([]model.VideoItem, error) {
	return c.store.ListAll(ctx)
}

func (c *VideoCache) set(ctx context.Context, v model.VideoItem) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, videoKey(v.ID), data, c.ttl).Err(); err != nil {
		logger.GetLogger().WithField("error", err).WithField("video_id", v.ID).Warn("redis set failed")
	}
}

func (c *VideoCache) invalidate(ctx context.Context, id int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, videoKey(id)).Err(); err != nil {
		logger.GetLogger().WithField("error", err).WithField("video_id", id).Warn("redis del failed")
	}
}
