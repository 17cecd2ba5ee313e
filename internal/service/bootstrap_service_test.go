package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
)

type mockFetcher struct {
	dataset store.Dataset
	err     error
	calls   int
}

func (m *mockFetcher) FetchAll(ctx context.Context) (store.Dataset, error) {
	m.calls++
	return m.dataset, m.err
}

func remoteDataset() store.Dataset {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return store.Dataset{
		Courses: []models.Course{{
			ID: "remote-c1", Code: "RM101", Name: "Remote Course",
			ProfessorID: "prof-1", Status: models.CourseStatusActive,
			CreatedAt: now, UpdatedAt: now,
		}},
	}
}

func TestLoadPrefersRemote(t *testing.T) {
	st := store.New()
	fetcher := &mockFetcher{dataset: remoteDataset()}
	NewBootstrapService(st, fetcher, time.Second, zap.NewNop()).Load(context.Background())

	snap := st.Snapshot()
	require.Len(t, snap.Courses, 1)
	assert.Equal(t, "remote-c1", snap.Courses[0].ID)
	assert.Equal(t, 1, fetcher.calls)
}

func TestLoadFallsBackOnRemoteError(t *testing.T) {
	st := store.New()
	fetcher := &mockFetcher{err: errors.New("mirror down")}
	NewBootstrapService(st, fetcher, time.Second, zap.NewNop()).Load(context.Background())

	// The dashboard is never empty on first paint.
	assert.NotEmpty(t, st.Snapshot().Courses)
}

func TestLoadFallsBackOnEmptyRemote(t *testing.T) {
	st := store.New()
	fetcher := &mockFetcher{}
	NewBootstrapService(st, fetcher, time.Second, zap.NewNop()).Load(context.Background())

	assert.NotEmpty(t, st.Snapshot().Courses)
}

func TestLoadWithoutRemote(t *testing.T) {
	st := store.New()
	NewBootstrapService(st, nil, time.Second, zap.NewNop()).Load(context.Background())

	snap := st.Snapshot()
	assert.NotEmpty(t, snap.Courses)
	assert.NotEmpty(t, snap.Students)
}

func TestLoadNeverOverwritesExistingData(t *testing.T) {
	st := store.New()
	own, err := st.CreateCourse(models.Course{Code: "OWN1", Name: "Mine", ProfessorID: "prof-1"})
	require.NoError(t, err)

	fetcher := &mockFetcher{dataset: remoteDataset()}
	NewBootstrapService(st, fetcher, time.Second, zap.NewNop()).Load(context.Background())

	snap := st.Snapshot()
	require.Len(t, snap.Courses, 1)
	assert.Equal(t, own.ID, snap.Courses[0].ID)
}
