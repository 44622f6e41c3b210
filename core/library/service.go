// Package library wires the identity store, entity store, ownership policy and response cache
// together. Reads go through the cache; writes authorize, mutate, then invalidate.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"musicbox/cache"
	"musicbox/core/audio"
	"musicbox/logger"
	"musicbox/repository"
	"musicbox/storage"

	"golang.org/x/sync/singleflight"
)

// Store is the entity and identity store the service runs against.
type Store interface {
	repository.UserRepository
	repository.SongRepository
	repository.PlaylistRepository
	repository.HistoryRepository
	repository.CommentRepository
}

// Service implements the music library operations.
type Service struct {
	store  Store
	cache  cache.Cache
	media  storage.MediaStore
	prober audio.DurationProber

	// mu 保证“读缓存未命中 → 查询 → 写缓存”与“修改 → 失效”互斥，
	// 否则失效之后可能被基于旧数据的查询结果重新填充。
	mu   sync.RWMutex
	fill singleflight.Group

	now func() time.Time
}

// NewService creates a Service. prober may be nil, in which case uploaded songs get duration 0.
func NewService(store Store, c cache.Cache, media storage.MediaStore, prober audio.DurationProber) *Service {
	return &Service{
		store:  store,
		cache:  c,
		media:  media,
		prober: prober,
		now:    time.Now,
	}
}

// readThrough returns the cached value for key or computes it with load and caches it.
// The bool result reports whether the value came from the cache.
func readThrough[T any](ctx context.Context, s *Service, key cache.Key, load func() T) (T, bool, error) {
	var zero T

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("读取缓存失败，回退到存储", logger.String("key", key.String()), logger.ErrorField(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, true, nil
		}
		logger.Warn("缓存数据无法解码", logger.String("key", key.String()))
	}

	v, err, _ := s.fill.Do(key.String(), func() (interface{}, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		val := load()
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cache value for %s: %w", key, err)
		}
		if err := s.cache.Set(ctx, key, encoded); err != nil {
			logger.Warn("写入缓存失败", logger.String("key", key.String()), logger.ErrorField(err))
		}
		return val, nil
	})
	if err != nil {
		return zero, false, err
	}
	return v.(T), false, nil
}

// invalidate must be called with s.mu held for writing.
func (s *Service) invalidate(ctx context.Context, namespaces ...cache.Namespace) {
	n, err := s.cache.Invalidate(ctx, cache.InNamespace(namespaces...))
	if err != nil {
		logger.Error("清除缓存失败", logger.Any("namespaces", namespaces), logger.ErrorField(err))
		return
	}
	logger.Debug("清除缓存", logger.Any("namespaces", namespaces), logger.Int("removed", n))
}

// invalidateAll must be called with s.mu held for writing.
func (s *Service) invalidateAll(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.Error("清除全部缓存失败", logger.ErrorField(err))
	}
}

// CacheHealth reports whether the cache backend is reachable. The memory backend always is.
func (s *Service) CacheHealth(ctx context.Context) error {
	if p, ok := s.cache.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
