// Package health derives engagement metrics from store snapshots. Every
// function here is pure: the same snapshot and clock input always produce
// the same output, so callers recompute freely on every read.
package health

import (
	"math"
	"time"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
)

// Understanding level to score mapping.
const (
	scoreFully    = 100
	scorePartial  = 60
	scoreConfused = 20
	scoreUnknown  = 50
)

// Defaults for students with no feedback signal at all. The health default
// deliberately sits above the at-risk line so new students are not flagged,
// while the silent-day default lands exactly on the silent threshold.
const (
	DefaultHealth     = 75
	DefaultSilentDays = 7
)

// Classification thresholds. The student list filter uses its own looser
// silent threshold (see the query package); the two numbers are independent
// tuning knobs and must not be unified.
const (
	InactiveAfterDays = 10
	SilentAfterDays   = 7
	AtRiskBelow       = 70
)

// ScoreFor maps one understanding level onto the 0-100 scale.
func ScoreFor(level models.Understanding) int {
	switch level {
	case models.UnderstandingFully:
		return scoreFully
	case models.UnderstandingPartial:
		return scorePartial
	case models.UnderstandingConfused:
		return scoreConfused
	default:
		return scoreUnknown
	}
}

// Score averages a student's feedback entries into a health score. No
// feedback yields DefaultHealth.
func Score(entries []models.FeedbackEntry) int {
	if len(entries) == 0 {
		return DefaultHealth
	}
	total := 0
	for _, entry := range entries {
		total += ScoreFor(entry.Understanding)
	}
	return int(math.Round(float64(total) / float64(len(entries))))
}

// SilentDays counts whole days since the most recent feedback entry. No
// feedback yields DefaultSilentDays, a neutral value rather than "forever".
func SilentDays(entries []models.FeedbackEntry, now time.Time) int {
	var latest time.Time
	for _, entry := range entries {
		if entry.CreatedAt.After(latest) {
			latest = entry.CreatedAt
		}
	}
	if latest.IsZero() {
		return DefaultSilentDays
	}
	days := int(now.Sub(latest).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Classify applies the fixed precedence: inactive, then silent, then
// at-risk, then active. First match wins.
func Classify(score, silentDays int) models.StudentStatus {
	switch {
	case silentDays >= InactiveAfterDays:
		return models.StudentStatusInactive
	case silentDays >= SilentAfterDays:
		return models.StudentStatusSilent
	case score < AtRiskBelow:
		return models.StudentStatusAtRisk
	default:
		return models.StudentStatusActive
	}
}

// StudentInsight derives the badge fields for one student, scoped to a
// course when courseID is non-empty.
func StudentInsight(snap *store.Snapshot, student models.Student, courseID string, now time.Time) models.StudentInsight {
	entries := snap.StudentFeedback(student.ID, courseID)
	score := Score(entries)
	silent := SilentDays(entries, now)

	insight := models.StudentInsight{
		Student:    student,
		Health:     score,
		SilentDays: silent,
		Status:     Classify(score, silent),
	}
	for _, entry := range entries {
		if insight.LastFeedbackAt == nil || entry.CreatedAt.After(*insight.LastFeedbackAt) {
			created := entry.CreatedAt
			insight.LastFeedbackAt = &created
		}
	}
	return insight
}

// CourseHealth is the arithmetic mean of per-student health over enrolled
// students. Zero enrollment yields 0, keeping downstream arithmetic total.
func CourseHealth(snap *store.Snapshot, courseID string) float64 {
	students := snap.CourseStudents(courseID)
	if len(students) == 0 {
		return 0
	}
	total := 0
	for _, student := range students {
		total += Score(snap.StudentFeedback(student.ID, courseID))
	}
	return float64(total) / float64(len(students))
}

// CoursePulse bundles the derived course counters for the dashboard cards.
func CoursePulse(snap *store.Snapshot, courseID string, now time.Time) models.CoursePulse {
	students := snap.CourseStudents(courseID)
	pulse := models.CoursePulse{
		CourseID:     courseID,
		LectureCount: len(snap.CourseLectures(courseID)),
		StudentCount: len(students),
	}
	if len(students) == 0 {
		return pulse
	}

	today := now.UTC().Truncate(24 * time.Hour)
	totalHealth := 0
	for _, student := range students {
		entries := snap.StudentFeedback(student.ID, courseID)
		score := Score(entries)
		silent := SilentDays(entries, now)
		totalHealth += score

		if Classify(score, silent) == models.StudentStatusSilent {
			pulse.SilentCount++
		}
		for _, entry := range entries {
			if entry.CreatedAt.UTC().Truncate(24 * time.Hour).Equal(today) {
				pulse.ActiveToday++
				break
			}
		}
	}
	pulse.Health = float64(totalHealth) / float64(len(students))
	pulse.Engagement = pulse.Health
	return pulse
}
