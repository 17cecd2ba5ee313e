package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

var bulkTestNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type mockCourseSyncer struct {
	synced  []models.Course
	deleted []string
	nudges  map[string][]string
}

func (m *mockCourseSyncer) SyncCourses(courses []models.Course) {
	m.synced = append(m.synced, courses...)
}

func (m *mockCourseSyncer) SyncCourseDeletes(ids []string) {
	m.deleted = append(m.deleted, ids...)
}

func (m *mockCourseSyncer) SyncNudge(courseID string, studentIDs []string) {
	if m.nudges == nil {
		m.nudges = map[string][]string{}
	}
	m.nudges[courseID] = append(m.nudges[courseID], studentIDs...)
}

func newBulkFixture(t *testing.T) (*store.Store, *BulkService, *mockCourseSyncer) {
	t.Helper()
	st := store.New().WithClock(func() time.Time { return bulkTestNow })
	syncer := &mockCourseSyncer{}
	return st, NewBulkService(st, syncer, zap.NewNop()), syncer
}

func createCourses(t *testing.T, st *store.Store, codes ...string) []models.Course {
	t.Helper()
	out := make([]models.Course, 0, len(codes))
	for _, code := range codes {
		course, err := st.CreateCourse(models.Course{Code: code, Name: "Course " + code, ProfessorID: "prof-1"})
		require.NoError(t, err)
		out = append(out, course)
	}
	return out
}

func TestToggleAndSelectAll(t *testing.T) {
	_, bulk, _ := newBulkFixture(t)

	selected, err := bulk.Toggle(ScopeStudents, "s1")
	require.NoError(t, err)
	assert.True(t, selected)

	selected, err = bulk.Toggle(ScopeStudents, "s1")
	require.NoError(t, err)
	assert.False(t, selected)

	require.NoError(t, bulk.SelectAll(ScopeStudents, []string{"s1", "s2", "s2", "s3"}))
	ids, err := bulk.Selected(ScopeStudents)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)

	// Scopes are independent.
	ids, err = bulk.Selected(ScopeCourses)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = bulk.Toggle(SelectionScope("bogus"), "x")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestArchiveCoursesClearsSelectionAndMirrors(t *testing.T) {
	st, bulk, syncer := newBulkFixture(t)
	courses := createCourses(t, st, "CS101", "CS201", "MA101")

	for _, course := range courses {
		_, err := bulk.Toggle(ScopeCourses, course.ID)
		require.NoError(t, err)
	}

	archived, err := bulk.ArchiveCourses()
	require.NoError(t, err)
	require.Len(t, archived, 3)
	for _, course := range archived {
		assert.Equal(t, models.CourseStatusArchived, course.Status)
	}

	ids, err := bulk.Selected(ScopeCourses)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Len(t, syncer.synced, 3)
}

func TestArchiveCoursesEmptySelection(t *testing.T) {
	_, bulk, _ := newBulkFixture(t)
	_, err := bulk.ArchiveCourses()
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestArchiveCoursesUnknownIDLeavesSelection(t *testing.T) {
	st, bulk, syncer := newBulkFixture(t)
	courses := createCourses(t, st, "CS101")

	_, err := bulk.Toggle(ScopeCourses, courses[0].ID)
	require.NoError(t, err)
	_, err = bulk.Toggle(ScopeCourses, "ghost")
	require.NoError(t, err)

	_, err = bulk.ArchiveCourses()
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	// Failed batch: nothing archived, nothing mirrored, selection intact.
	got, err := st.Snapshot().CourseByID(courses[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusActive, got.Status)
	assert.Empty(t, syncer.synced)
	ids, err := bulk.Selected(ScopeCourses)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestDeleteCoursesClearsSelectionAndMirrors(t *testing.T) {
	st, bulk, syncer := newBulkFixture(t)
	courses := createCourses(t, st, "CS101", "CS201")

	require.NoError(t, bulk.SelectAll(ScopeCourses, []string{courses[0].ID, courses[1].ID}))
	deleted, err := bulk.DeleteCourses()
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = st.Snapshot().CourseByID(courses[0].ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Len(t, syncer.deleted, 2)

	ids, err := bulk.Selected(ScopeCourses)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNudgeStudentsTouchesNoEntityState(t *testing.T) {
	st, bulk, syncer := newBulkFixture(t)
	courses := createCourses(t, st, "CS101")
	var mutations int
	st.Subscribe(func(store.Kind) { mutations++ })

	require.NoError(t, bulk.SelectAll(ScopeStudents, []string{"s1", "s2"}))
	nudged, err := bulk.NudgeStudents(courses[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, nudged)

	assert.Zero(t, mutations)
	assert.Equal(t, []string{"s1", "s2"}, syncer.nudges[courses[0].ID])

	ids, err := bulk.Selected(ScopeStudents)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
