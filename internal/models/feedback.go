package models

import "time"

// Understanding is the fixed vocabulary of feedback signal levels.
type Understanding string

// Understanding levels.
const (
	UnderstandingFully    Understanding = "fully"
	UnderstandingPartial  Understanding = "partial"
	UnderstandingConfused Understanding = "confused"
)

// FeedbackEntry is a student's understanding signal for one lecture.
// Entries are immutable once created; the course id is denormalized from the
// lecture for query speed.
type FeedbackEntry struct {
	ID              string        `db:"id" json:"id"`
	LectureID       string        `db:"lecture_id" json:"lecture_id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	CourseID        string        `db:"course_id" json:"course_id"`
	Understanding   Understanding `db:"understanding" json:"understanding"`
	DifficultTopics []string      `json:"difficult_topics,omitempty"`
	Reason          string        `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}
