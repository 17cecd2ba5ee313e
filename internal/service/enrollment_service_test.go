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

type mockEnrollmentSyncer struct {
	students    []models.Student
	enrollments []models.Enrollment
}

func (m *mockEnrollmentSyncer) SyncStudents(students []models.Student) {
	m.students = append(m.students, students...)
}

func (m *mockEnrollmentSyncer) SyncEnrollments(enrollments []models.Enrollment) {
	m.enrollments = append(m.enrollments, enrollments...)
}

func newEnrollmentFixture(t *testing.T) (*store.Store, *EnrollmentService, *mockEnrollmentSyncer, models.Course) {
	t.Helper()
	st := store.New().WithClock(func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	})
	course, err := st.CreateCourse(models.Course{Code: "CS101", Name: "Intro", ProfessorID: "prof-1"})
	require.NoError(t, err)
	syncer := &mockEnrollmentSyncer{}
	return st, NewEnrollmentService(st, syncer, nil, zap.NewNop()), syncer, course
}

func TestEnrollValidatesPayload(t *testing.T) {
	_, svc, _, course := newEnrollmentFixture(t)
	_, err := svc.Enroll(EnrollStudentRequest{CourseID: course.ID})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBulkEnrollImportsRoster(t *testing.T) {
	st, svc, syncer, course := newEnrollmentFixture(t)

	result, err := svc.BulkEnroll(BulkEnrollRequest{
		CourseID: course.ID,
		Text: "Ada Lovelace, ada@example.edu, R1\n" +
			"Bob Hope, bob@example.edu, R2\n",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Enrolled)
	assert.Equal(t, 2, result.CreatedStudents)
	assert.Equal(t, 0, result.Skipped)

	assert.Len(t, st.Snapshot().CourseStudents(course.ID), 2)
	assert.Len(t, syncer.students, 2)
	assert.Len(t, syncer.enrollments, 2)
}

func TestBulkEnrollCollapsesDuplicates(t *testing.T) {
	st, svc, _, course := newEnrollmentFixture(t)

	// The same email twice in one paste: one student, one enrollment.
	result, err := svc.BulkEnroll(BulkEnrollRequest{
		CourseID: course.ID,
		Text: "Ada Lovelace, ada@example.edu, R1\n" +
			"Ada L, ADA@example.edu, R1\n",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Enrolled)
	assert.Equal(t, 1, result.CreatedStudents)
	assert.Equal(t, 1, result.Skipped)

	snap := st.Snapshot()
	assert.Len(t, snap.Students, 1)
	assert.Len(t, snap.CourseStudents(course.ID), 1)
}

func TestBulkEnrollSkipsMalformedLines(t *testing.T) {
	_, svc, _, course := newEnrollmentFixture(t)

	result, err := svc.BulkEnroll(BulkEnrollRequest{
		CourseID: course.ID,
		Text: "just-a-name\n" +
			"No Email, not-an-email, R9\n" +
			"\n" +
			"Ada Lovelace, ada@example.edu, R1\n",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Enrolled)
	assert.Equal(t, 2, result.Skipped)
}

func TestBulkEnrollReenrollExistingStudent(t *testing.T) {
	st, svc, syncer, course := newEnrollmentFixture(t)
	other, err := st.CreateCourse(models.Course{Code: "MA101", Name: "Algebra", ProfessorID: "prof-1"})
	require.NoError(t, err)

	_, err = svc.BulkEnroll(BulkEnrollRequest{CourseID: course.ID, Text: "Ada, ada@example.edu, R1"})
	require.NoError(t, err)

	result, err := svc.BulkEnroll(BulkEnrollRequest{CourseID: other.ID, Text: "Ada, ada@example.edu, R1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Enrolled)
	// The student already existed; only a new enrollment was created.
	assert.Equal(t, 0, result.CreatedStudents)
	assert.Len(t, st.Snapshot().Students, 1)
	assert.Len(t, syncer.students, 1)
	assert.Len(t, syncer.enrollments, 2)
}

func TestBulkEnrollUnknownCourse(t *testing.T) {
	_, svc, _, _ := newEnrollmentFixture(t)
	_, err := svc.BulkEnroll(BulkEnrollRequest{CourseID: "ghost", Text: "Ada, ada@example.edu, R1"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUnenrollKeepsStudent(t *testing.T) {
	st, svc, _, course := newEnrollmentFixture(t)
	student, err := st.CreateStudent(models.Student{Name: "Ada", Email: "ada@example.edu", RollNumber: "R1"})
	require.NoError(t, err)
	enrollment, err := svc.Enroll(EnrollStudentRequest{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Unenroll(enrollment.ID))

	snap := st.Snapshot()
	assert.Empty(t, snap.CourseStudents(course.ID))
	_, err = snap.StudentByID(student.ID)
	assert.NoError(t, err)
}
