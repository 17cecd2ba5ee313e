package models

import "time"

// AssessmentType categorises an assessment.
type AssessmentType string

// Supported assessment types.
const (
	AssessmentTypeQuiz       AssessmentType = "quiz"
	AssessmentTypeAssignment AssessmentType = "assignment"
	AssessmentTypeMidterm    AssessmentType = "midterm"
	AssessmentTypeFinal      AssessmentType = "final"
	AssessmentTypeLab        AssessmentType = "lab"
	AssessmentTypeProject    AssessmentType = "project"
)

// AssessmentStatus is the publication state of an assessment.
type AssessmentStatus string

// Publication states.
const (
	AssessmentStatusDraft     AssessmentStatus = "DRAFT"
	AssessmentStatusPublished AssessmentStatus = "PUBLISHED"
)

// Assessment belongs to one course.
type Assessment struct {
	ID        string           `db:"id" json:"id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	Name      string           `db:"name" json:"name"`
	Type      AssessmentType   `db:"type" json:"type"`
	MaxMarks  float64          `db:"max_marks" json:"max_marks"`
	WeightPct float64          `db:"weight_pct" json:"weight_pct"`
	DueDate   time.Time        `db:"due_date" json:"due_date"`
	Status    AssessmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// Grade holds marks for one (assessment, student) pair; at most one Grade
// exists per pair and marks stay nil until entered.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Marks        *float64  `db:"marks" json:"marks,omitempty"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
