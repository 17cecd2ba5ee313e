package models

import "time"

// Student represents a learner known to the dashboard. Student records are
// created through enrollment and outlive any individual enrollment.
type Student struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	RollNumber string    `db:"roll_number" json:"roll_number"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StudentStatus is the derived engagement classification shown as a badge.
type StudentStatus string

// Classification values in precedence order: inactive wins over silent,
// silent over at-risk, at-risk over active.
const (
	StudentStatusInactive StudentStatus = "inactive"
	StudentStatusSilent   StudentStatus = "silent"
	StudentStatusAtRisk   StudentStatus = "at-risk"
	StudentStatusActive   StudentStatus = "active"
)

// StudentInsight carries a student record with its derived signal fields.
// The derived values are never stored; they are recomputed per read.
type StudentInsight struct {
	Student
	Health         int           `json:"health"`
	SilentDays     int           `json:"silent_days"`
	Status         StudentStatus `json:"status"`
	LastFeedbackAt *time.Time    `json:"last_feedback_at,omitempty"`
}
