package models

import "time"

// CourseStatus represents the lifecycle of a course.
type CourseStatus string

// Possible course statuses.
const (
	CourseStatusActive   CourseStatus = "ACTIVE"
	CourseStatusArchived CourseStatus = "ARCHIVED"
)

// Course is a taught unit owned by a professor.
type Course struct {
	ID          string       `db:"id" json:"id"`
	Code        string       `db:"code" json:"code"`
	Name        string       `db:"name" json:"name"`
	Department  string       `db:"department" json:"department"`
	Semester    string       `db:"semester" json:"semester"`
	ProfessorID string       `db:"professor_id" json:"professor_id"`
	Status      CourseStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Enrollment links a student to a course. A (student, course) pair exists at
// most once.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
