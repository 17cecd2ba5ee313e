package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	"github.com/noah-isme/course-pulse-api/pkg/config"
)

type flakyMirror struct {
	mu      sync.Mutex
	err     error
	upserts int
	deletes int
	nudges  int
	courses []models.Course
	deleted []string
}

func (m *flakyMirror) UpsertCourses(_ context.Context, courses []models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.courses = append(m.courses, courses...)
	return m.err
}

func (m *flakyMirror) DeleteCourses(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	m.deleted = append(m.deleted, ids...)
	return m.err
}

func (m *flakyMirror) UpsertStudents(context.Context, []models.Student) error       { return m.err }
func (m *flakyMirror) UpsertEnrollments(context.Context, []models.Enrollment) error { return m.err }
func (m *flakyMirror) UpsertGrades(context.Context, []models.Grade) error           { return m.err }
func (m *flakyMirror) RecordNudge(context.Context, string, []string, time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nudges++
	return m.err
}

func (m *flakyMirror) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

func newSyncFixture(t *testing.T, mirror *flakyMirror) *SyncService {
	t.Helper()
	svc := NewSyncService(mirror, config.SyncConfig{Workers: 1, BufferSize: 8}, time.Second, nil, zap.NewNop())
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestArchiveSurvivesMirrorFailure(t *testing.T) {
	mirror := &flakyMirror{err: errors.New("mirror down")}
	syncSvc := newSyncFixture(t, mirror)

	st := store.New().WithClock(func() time.Time { return bulkTestNow })
	bulk := NewBulkService(st, syncSvc, zap.NewNop())
	courses := createCourses(t, st, "CS101", "CS102", "CS103")
	for _, course := range courses {
		_, err := bulk.Toggle(ScopeCourses, course.ID)
		require.NoError(t, err)
	}

	archived, err := bulk.ArchiveCourses()
	require.NoError(t, err)
	assert.Len(t, archived, 3)

	for _, course := range st.Snapshot().Courses {
		assert.Equal(t, models.CourseStatusArchived, course.Status)
	}
	selected, err := bulk.Selected(ScopeCourses)
	require.NoError(t, err)
	assert.Empty(t, selected)

	assert.Eventually(t, func() bool {
		return mirror.upsertCount() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleCountsMirrorOutcomes(t *testing.T) {
	mirror := &flakyMirror{err: errors.New("mirror down")}
	metrics := NewMetricsService()
	svc := NewSyncService(mirror, config.SyncConfig{Workers: 1, BufferSize: 8}, time.Second, metrics, zap.NewNop())
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)

	svc.SyncCourses([]models.Course{{ID: "c1", Code: "CS101"}})
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.mirrorSyncs.WithLabelValues("failure")) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, testutil.ToFloat64(metrics.mirrorSyncs.WithLabelValues("success")))

	mirror.mu.Lock()
	mirror.err = nil
	mirror.mu.Unlock()
	svc.SyncCourseDeletes([]string{"c1"})
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.mirrorSyncs.WithLabelValues("success")) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncSkipsEmptyBatches(t *testing.T) {
	mirror := &flakyMirror{}
	svc := newSyncFixture(t, mirror)

	svc.SyncCourses(nil)
	svc.SyncCourseDeletes(nil)
	svc.SyncNudge("c1", nil)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, mirror.upsertCount())
}
