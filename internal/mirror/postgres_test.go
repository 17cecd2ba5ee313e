package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-pulse-api/internal/models"
)

func newMockMirror(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(sqlx.NewDb(db, "postgres")), mock
}

func TestUpsertCourses(t *testing.T) {
	mirror, mock := newMockMirror(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	course := models.Course{
		ID: "c1", Code: "CS101", Name: "Intro", Department: "CS",
		ProfessorID: "prof-1", Status: models.CourseStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(course.ID, course.Code, course.Name, course.Department, course.Semester,
			course.ProfessorID, course.Status, course.CreatedAt, course.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, mirror.UpsertCourses(context.Background(), []models.Course{course}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCoursesStopsOnError(t *testing.T) {
	mirror, mock := newMockMirror(t)
	courses := []models.Course{{ID: "c1"}, {ID: "c2"}}

	mock.ExpectExec("INSERT INTO courses").WillReturnError(errors.New("connection reset"))

	err := mirror.UpsertCourses(context.Background(), courses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert course c1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCourses(t *testing.T) {
	mirror, mock := newMockMirror(t)

	t.Run("empty slice is a no-op", func(t *testing.T) {
		require.NoError(t, mirror.DeleteCourses(context.Background(), nil))
	})

	t.Run("deletes by id array", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM courses").
			WillReturnResult(sqlmock.NewResult(0, 2))
		require.NoError(t, mirror.DeleteCourses(context.Background(), []string{"c1", "c2"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpsertGrades(t *testing.T) {
	mirror, mock := newMockMirror(t)
	score := 8.5
	grade := models.Grade{ID: "g1", AssessmentID: "a1", StudentID: "s1", Marks: &score}

	mock.ExpectExec("INSERT INTO grades").
		WithArgs(grade.ID, grade.AssessmentID, grade.StudentID, grade.Marks, grade.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, mirror.UpsertGrades(context.Background(), []models.Grade{grade}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordNudge(t *testing.T) {
	mirror, mock := newMockMirror(t)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("no students is a no-op", func(t *testing.T) {
		require.NoError(t, mirror.RecordNudge(context.Background(), "c1", nil, at))
	})

	t.Run("records one row per nudge", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO nudges").
			WillReturnResult(sqlmock.NewResult(1, 1))
		require.NoError(t, mirror.RecordNudge(context.Background(), "c1", []string{"s1", "s2"}, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFetchAll(t *testing.T) {
	mirror, mock := newMockMirror(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM courses").WillReturnRows(
		sqlmock.NewRows([]string{"id", "code", "name", "department", "semester", "professor_id", "status", "created_at", "updated_at"}).
			AddRow("c1", "CS101", "Intro", "CS", "S1", "prof-1", "ACTIVE", now, now))
	mock.ExpectQuery("SELECT (.+) FROM students").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "email", "roll_number", "created_at"}).
			AddRow("s1", "Ada", "ada@example.edu", "R1", now))
	mock.ExpectQuery("SELECT (.+) FROM enrollments").WillReturnRows(
		sqlmock.NewRows([]string{"id", "student_id", "course_id", "enrolled_at"}).
			AddRow("e1", "s1", "c1", now))
	mock.ExpectQuery("SELECT (.+) FROM lectures").WillReturnRows(
		sqlmock.NewRows([]string{"id", "course_id", "date", "status", "attendee_ids", "topics", "created_at"}).
			AddRow("l1", "c1", now, "COMPLETED", "{s1}", "{recursion}", now))
	mock.ExpectQuery("SELECT (.+) FROM feedback_entries").WillReturnRows(
		sqlmock.NewRows([]string{"id", "lecture_id", "student_id", "course_id", "understanding", "difficult_topics", "reason", "created_at"}).
			AddRow("f1", "l1", "s1", "c1", "fully", "{}", "", now))
	mock.ExpectQuery("SELECT (.+) FROM assessments").WillReturnRows(
		sqlmock.NewRows([]string{"id", "course_id", "name", "type", "max_marks", "weight_pct", "due_date", "status", "created_at", "updated_at"}).
			AddRow("a1", "c1", "Quiz 1", "quiz", 10.0, 5.0, now, "DRAFT", now, now))
	mock.ExpectQuery("SELECT (.+) FROM grades").WillReturnRows(
		sqlmock.NewRows([]string{"id", "assessment_id", "student_id", "marks", "updated_at"}).
			AddRow("g1", "a1", "s1", 8.5, now))

	dataset, err := mirror.FetchAll(context.Background())
	require.NoError(t, err)
	assert.False(t, dataset.Empty())
	require.Len(t, dataset.Lectures, 1)
	assert.Equal(t, []string{"s1"}, dataset.Lectures[0].AttendeeIDs)
	require.Len(t, dataset.Grades, 1)
	assert.Equal(t, 8.5, *dataset.Grades[0].Marks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchAllPropagatesQueryErrors(t *testing.T) {
	mirror, mock := newMockMirror(t)
	mock.ExpectQuery("SELECT (.+) FROM courses").WillReturnError(errors.New("relation missing"))

	_, err := mirror.FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch courses")
}
