// Package mirror implements the best-effort remote mirror. The mirror is
// advisory: the in-memory store is authoritative for the running session and
// mirror failures are logged, never surfaced to callers of local mutations.
package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	"github.com/noah-isme/course-pulse-api/pkg/config"
)

// Postgres mirrors store state into a remote Postgres instance.
type Postgres struct {
	db *sqlx.DB
}

// Connect opens the mirror database described by the config.
func Connect(cfg config.MirrorConfig) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect mirror: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection, for tests.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// UpsertCourses writes course records, last-write-wins per id.
func (p *Postgres) UpsertCourses(ctx context.Context, courses []models.Course) error {
	for _, course := range courses {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO courses (id, code, name, department, semester, professor_id, status, created_at, updated_at)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
             ON CONFLICT (id) DO UPDATE SET code = $2, name = $3, department = $4, semester = $5, status = $7, updated_at = $9`,
			course.ID, course.Code, course.Name, course.Department, course.Semester,
			course.ProfessorID, course.Status, course.CreatedAt, course.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert course %s: %w", course.ID, err)
		}
	}
	return nil
}

// DeleteCourses removes course records and relies on the remote schema's
// cascade rules for dependents.
func (p *Postgres) DeleteCourses(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := p.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete courses: %w", err)
	}
	return nil
}

// UpsertStudents writes student records.
func (p *Postgres) UpsertStudents(ctx context.Context, students []models.Student) error {
	for _, student := range students {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO students (id, name, email, roll_number, created_at)
             VALUES ($1, $2, $3, $4, $5)
             ON CONFLICT (id) DO UPDATE SET name = $2, email = $3, roll_number = $4`,
			student.ID, student.Name, student.Email, student.RollNumber, student.CreatedAt)
		if err != nil {
			return fmt.Errorf("upsert student %s: %w", student.ID, err)
		}
	}
	return nil
}

// UpsertEnrollments writes enrollment links.
func (p *Postgres) UpsertEnrollments(ctx context.Context, enrollments []models.Enrollment) error {
	for _, enrollment := range enrollments {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO enrollments (id, student_id, course_id, enrolled_at)
             VALUES ($1, $2, $3, $4)
             ON CONFLICT (student_id, course_id) DO NOTHING`,
			enrollment.ID, enrollment.StudentID, enrollment.CourseID, enrollment.EnrolledAt)
		if err != nil {
			return fmt.Errorf("upsert enrollment %s: %w", enrollment.ID, err)
		}
	}
	return nil
}

// UpsertGrades writes grade entries, one row per (assessment, student).
func (p *Postgres) UpsertGrades(ctx context.Context, grades []models.Grade) error {
	for _, grade := range grades {
		_, err := p.db.ExecContext(ctx,
			`INSERT INTO grades (id, assessment_id, student_id, marks, updated_at)
             VALUES ($1, $2, $3, $4, $5)
             ON CONFLICT (assessment_id, student_id) DO UPDATE SET marks = $4, updated_at = $5`,
			grade.ID, grade.AssessmentID, grade.StudentID, grade.Marks, grade.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert grade %s: %w", grade.ID, err)
		}
	}
	return nil
}

// RecordNudge appends a nudge signal for the selected students. Nudges carry
// no local state; the row exists only so the notification collaborator can
// pick it up.
func (p *Postgres) RecordNudge(ctx context.Context, courseID string, studentIDs []string, at time.Time) error {
	if len(studentIDs) == 0 {
		return nil
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO nudges (course_id, student_ids, created_at) VALUES ($1, $2, $3)`,
		courseID, pq.Array(studentIDs), at)
	if err != nil {
		return fmt.Errorf("record nudge: %w", err)
	}
	return nil
}

// FetchAll pulls every collection for initial hydration.
func (p *Postgres) FetchAll(ctx context.Context) (store.Dataset, error) {
	var dataset store.Dataset

	if err := p.db.SelectContext(ctx, &dataset.Courses,
		`SELECT id, code, name, department, semester, professor_id, status, created_at, updated_at FROM courses ORDER BY created_at`); err != nil {
		return store.Dataset{}, fmt.Errorf("fetch courses: %w", err)
	}
	if err := p.db.SelectContext(ctx, &dataset.Students,
		`SELECT id, name, email, roll_number, created_at FROM students ORDER BY created_at`); err != nil {
		return store.Dataset{}, fmt.Errorf("fetch students: %w", err)
	}
	if err := p.db.SelectContext(ctx, &dataset.Enrollments,
		`SELECT id, student_id, course_id, enrolled_at FROM enrollments ORDER BY enrolled_at`); err != nil {
		return store.Dataset{}, fmt.Errorf("fetch enrollments: %w", err)
	}
	if err := p.fetchLectures(ctx, &dataset); err != nil {
		return store.Dataset{}, err
	}
	if err := p.fetchFeedback(ctx, &dataset); err != nil {
		return store.Dataset{}, err
	}
	if err := p.db.SelectContext(ctx, &dataset.Assessments,
		`SELECT id, course_id, name, type, max_marks, weight_pct, due_date, status, created_at, updated_at FROM assessments ORDER BY created_at`); err != nil {
		return store.Dataset{}, fmt.Errorf("fetch assessments: %w", err)
	}
	if err := p.db.SelectContext(ctx, &dataset.Grades,
		`SELECT id, assessment_id, student_id, marks, updated_at FROM grades ORDER BY updated_at`); err != nil {
		return store.Dataset{}, fmt.Errorf("fetch grades: %w", err)
	}

	return dataset, nil
}

func (p *Postgres) fetchLectures(ctx context.Context, dataset *store.Dataset) error {
	rows, err := p.db.QueryxContext(ctx,
		`SELECT id, course_id, date, status, attendee_ids, topics, created_at FROM lectures ORDER BY date`)
	if err != nil {
		return fmt.Errorf("fetch lectures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lecture models.Lecture
		var attendees, topics pq.StringArray
		if err := rows.Scan(&lecture.ID, &lecture.CourseID, &lecture.Date, &lecture.Status, &attendees, &topics, &lecture.CreatedAt); err != nil {
			return fmt.Errorf("scan lecture: %w", err)
		}
		lecture.AttendeeIDs = attendees
		lecture.Topics = topics
		dataset.Lectures = append(dataset.Lectures, lecture)
	}
	return rows.Err()
}

func (p *Postgres) fetchFeedback(ctx context.Context, dataset *store.Dataset) error {
	rows, err := p.db.QueryxContext(ctx,
		`SELECT id, lecture_id, student_id, course_id, understanding, difficult_topics, reason, created_at FROM feedback_entries ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("fetch feedback: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.FeedbackEntry
		var topics pq.StringArray
		if err := rows.Scan(&entry.ID, &entry.LectureID, &entry.StudentID, &entry.CourseID, &entry.Understanding, &topics, &entry.Reason, &entry.CreatedAt); err != nil {
			return fmt.Errorf("scan feedback: %w", err)
		}
		entry.DifficultTopics = topics
		dataset.Feedback = append(dataset.Feedback, entry)
	}
	return rows.Err()
}
