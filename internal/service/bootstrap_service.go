package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/store"
)

type datasetFetcher interface {
	FetchAll(ctx context.Context) (store.Dataset, error)
}

// BootstrapService hydrates the store at startup. The remote fetch gets a
// bounded wait; on timeout or failure the deterministic local dataset takes
// over so the dashboard is never empty on first paint. Remote data only
// lands in collections that are still empty.
type BootstrapService struct {
	store   *store.Store
	remote  datasetFetcher
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewBootstrapService constructs a BootstrapService. A nil remote skips
// straight to the local dataset.
func NewBootstrapService(st *store.Store, remote datasetFetcher, timeout time.Duration, logger *zap.Logger) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BootstrapService{store: st, remote: remote, logger: logger, timeout: timeout, now: time.Now}
}

// Load seeds the store. It never returns an error: remote unavailability
// degrades to the local default dataset.
func (s *BootstrapService) Load(ctx context.Context) {
	if s.remote != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		dataset, err := s.remote.FetchAll(fetchCtx)
		cancel()
		if err != nil {
			s.logger.Warn("remote hydration failed, using local dataset", zap.Error(err))
		} else if dataset.Empty() {
			s.logger.Info("remote mirror empty, using local dataset")
		} else {
			s.store.SeedIfEmpty(dataset)
			s.logger.Info("store hydrated from remote mirror")
			return
		}
	}

	s.store.SeedIfEmpty(store.DefaultDataset(s.now()))
	s.logger.Info("store hydrated from local default dataset")
}
