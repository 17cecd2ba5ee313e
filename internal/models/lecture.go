package models

import "time"

// LectureStatus represents the lifecycle of a lecture.
type LectureStatus string

// Possible lecture statuses.
const (
	LectureStatusScheduled LectureStatus = "SCHEDULED"
	LectureStatusLive      LectureStatus = "LIVE"
	LectureStatusCompleted LectureStatus = "COMPLETED"
)

// Lecture belongs to exactly one course.
type Lecture struct {
	ID          string        `db:"id" json:"id"`
	CourseID    string        `db:"course_id" json:"course_id"`
	Date        time.Time     `db:"date" json:"date"`
	Status      LectureStatus `db:"status" json:"status"`
	AttendeeIDs []string      `json:"attendee_ids"`
	Topics      []string      `json:"topics"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
