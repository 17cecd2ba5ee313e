package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/health"
	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
)

// PulseService serves per-course aggregate signals with optional caching.
// Derived values are never stored in the entity store; the cache is a pure
// read-through layer invalidated on any mutation.
type PulseService struct {
	store  *store.Store
	cache  *CacheService
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewPulseService constructs a PulseService and hooks cache invalidation
// into the store's change notifications.
func NewPulseService(st *store.Store, cache *CacheService, ttl time.Duration, logger *zap.Logger) *PulseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	s := &PulseService{store: st, cache: cache, logger: logger, ttl: ttl, now: time.Now}
	if cache.Enabled() {
		st.Subscribe(func(store.Kind) {
			if err := cache.Invalidate(context.Background(), "pulse:*"); err != nil {
				logger.Warn("pulse cache invalidation failed", zap.Error(err))
			}
		})
	}
	return s
}

// Pulse returns the derived course aggregate, indicating cache utilisation.
func (s *PulseService) Pulse(ctx context.Context, courseID string) (models.CoursePulse, bool, error) {
	snap := s.store.Snapshot()
	if _, err := snap.CourseByID(courseID); err != nil {
		return models.CoursePulse{}, false, err
	}

	now := s.now()
	cacheKey := fmt.Sprintf("pulse:%s:%s", courseID, now.UTC().Format("2006-01-02"))
	if s.cache.Enabled() {
		var cached models.CoursePulse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	pulse := health.CoursePulse(snap, courseID, now)
	if err := s.cache.Set(ctx, cacheKey, pulse, s.ttl); err != nil {
		s.logger.Warn("pulse cache write failed", zap.String("course_id", courseID), zap.Error(err))
	}
	return pulse, false, nil
}
