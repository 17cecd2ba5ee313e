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

type mockGradeSyncer struct {
	grades []models.Grade
}

func (m *mockGradeSyncer) SyncGrades(grades []models.Grade) {
	m.grades = append(m.grades, grades...)
}

func newGradeFixture(t *testing.T) (*store.Store, *GradeService, *mockGradeSyncer, models.Assessment, []models.Student) {
	t.Helper()
	st := store.New().WithClock(func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	})
	course, err := st.CreateCourse(models.Course{Code: "CS101", Name: "Intro", ProfessorID: "prof-1"})
	require.NoError(t, err)
	assessment, err := st.CreateAssessment(models.Assessment{
		CourseID: course.ID,
		Name:     "Quiz 1",
		Type:     models.AssessmentTypeQuiz,
		MaxMarks: 10,
	})
	require.NoError(t, err)
	students := make([]models.Student, 0, 2)
	for _, email := range []string{"ada@example.edu", "bob@example.edu"} {
		student, err := st.CreateStudent(models.Student{Name: "S", Email: email, RollNumber: email})
		require.NoError(t, err)
		_, err = st.CreateEnrollment(student.ID, course.ID)
		require.NoError(t, err)
		students = append(students, student)
	}
	syncer := &mockGradeSyncer{}
	return st, NewGradeService(st, syncer, nil, zap.NewNop()), syncer, assessment, students
}

func marks(v float64) *float64 { return &v }

func TestBulkSetGrades(t *testing.T) {
	st, svc, syncer, assessment, students := newGradeFixture(t)

	grades, err := svc.BulkSetGrades(BulkSetGradesRequest{
		AssessmentID: assessment.ID,
		Entries: []GradeEntry{
			{StudentID: students[0].ID, Marks: marks(8)},
			{StudentID: students[1].ID, Marks: nil},
		},
	})
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, 8.0, *grades[0].Marks)
	assert.Nil(t, grades[1].Marks)
	assert.Len(t, syncer.grades, 2)
	assert.Len(t, st.Snapshot().AssessmentGrades(assessment.ID), 2)
}

func TestBulkSetGradesReentryOverwrites(t *testing.T) {
	st, svc, _, assessment, students := newGradeFixture(t)

	_, err := svc.BulkSetGrades(BulkSetGradesRequest{
		AssessmentID: assessment.ID,
		Entries:      []GradeEntry{{StudentID: students[0].ID, Marks: marks(4)}},
	})
	require.NoError(t, err)

	_, err = svc.BulkSetGrades(BulkSetGradesRequest{
		AssessmentID: assessment.ID,
		Entries:      []GradeEntry{{StudentID: students[0].ID, Marks: marks(9)}},
	})
	require.NoError(t, err)

	stored := st.Snapshot().AssessmentGrades(assessment.ID)
	require.Len(t, stored, 1)
	assert.Equal(t, 9.0, *stored[0].Marks)
}

func TestBulkSetGradesValidatesWholeBatchFirst(t *testing.T) {
	st, svc, syncer, assessment, students := newGradeFixture(t)

	_, err := svc.BulkSetGrades(BulkSetGradesRequest{
		AssessmentID: assessment.ID,
		Entries: []GradeEntry{
			{StudentID: students[0].ID, Marks: marks(8)},
			{StudentID: students[1].ID, Marks: marks(11)},
		},
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	// The valid first entry was not written either.
	assert.Empty(t, st.Snapshot().AssessmentGrades(assessment.ID))
	assert.Empty(t, syncer.grades)
}

func TestBulkSetGradesUnknownStudent(t *testing.T) {
	_, svc, _, assessment, students := newGradeFixture(t)

	_, err := svc.BulkSetGrades(BulkSetGradesRequest{
		AssessmentID: assessment.ID,
		Entries: []GradeEntry{
			{StudentID: students[0].ID, Marks: marks(5)},
			{StudentID: "ghost", Marks: marks(5)},
		},
	})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidReference))
}

func TestPublishLifecycle(t *testing.T) {
	_, svc, _, assessment, _ := newGradeFixture(t)

	published, err := svc.Publish(assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentStatusPublished, published.Status)

	draft, err := svc.Unpublish(assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentStatusDraft, draft.Status)
}
