package store

import (
	"fmt"
	"time"

	"github.com/noah-isme/course-pulse-api/internal/models"
)

// Dataset is a flat hydration payload, either fetched from the remote mirror
// or produced by DefaultDataset. Records arrive with their ids.
type Dataset struct {
	Courses     []models.Course
	Students    []models.Student
	Enrollments []models.Enrollment
	Lectures    []models.Lecture
	Feedback    []models.FeedbackEntry
	Assessments []models.Assessment
	Grades      []models.Grade
}

// Empty reports whether the dataset carries no records at all.
func (d Dataset) Empty() bool {
	return len(d.Courses) == 0 && len(d.Students) == 0 && len(d.Enrollments) == 0 &&
		len(d.Lectures) == 0 && len(d.Feedback) == 0 && len(d.Assessments) == 0 && len(d.Grades) == 0
}

// SeedIfEmpty hydrates collections from the dataset, but only collections
// that are still empty. A populated collection is never overwritten: remote
// payloads carry no timestamps, so local writes always win once made.
func (s *Store) SeedIfEmpty(dataset Dataset) {
	s.mu.Lock()
	seeded := false
	if len(s.courses) == 0 && len(dataset.Courses) > 0 {
		s.courses = append([]models.Course(nil), dataset.Courses...)
		seeded = true
	}
	if len(s.students) == 0 && len(dataset.Students) > 0 {
		s.students = append([]models.Student(nil), dataset.Students...)
		seeded = true
	}
	if len(s.enrollments) == 0 && len(dataset.Enrollments) > 0 {
		s.enrollments = append([]models.Enrollment(nil), dataset.Enrollments...)
		seeded = true
	}
	if len(s.lectures) == 0 && len(dataset.Lectures) > 0 {
		s.lectures = append([]models.Lecture(nil), dataset.Lectures...)
		seeded = true
	}
	if len(s.feedback) == 0 && len(dataset.Feedback) > 0 {
		s.feedback = append([]models.FeedbackEntry(nil), dataset.Feedback...)
		seeded = true
	}
	if len(s.assessments) == 0 && len(dataset.Assessments) > 0 {
		s.assessments = append([]models.Assessment(nil), dataset.Assessments...)
		seeded = true
	}
	if len(s.grades) == 0 && len(dataset.Grades) > 0 {
		s.grades = append([]models.Grade(nil), dataset.Grades...)
		seeded = true
	}
	if seeded {
		s.reindex()
	}
	s.mu.Unlock()

	if seeded {
		s.notify(KindCourse, KindStudent, KindEnrollment, KindLecture, KindFeedback, KindAssessment, KindGrade)
	}
}

// DefaultDataset returns the deterministic local fallback so the dashboard is
// never empty on first paint when the mirror is unreachable.
func DefaultDataset(now time.Time) Dataset {
	now = now.UTC()
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	courses := []models.Course{
		{ID: "course-cs101", Code: "CS101", Name: "Introduction to Programming", Department: "Computer Science", Semester: "Fall", ProfessorID: "prof-default", Status: models.CourseStatusActive, CreatedAt: day(-30), UpdatedAt: day(-30)},
		{ID: "course-cs201", Code: "CS201", Name: "Data Structures", Department: "Computer Science", Semester: "Fall", ProfessorID: "prof-default", Status: models.CourseStatusActive, CreatedAt: day(-30), UpdatedAt: day(-30)},
		{ID: "course-ma101", Code: "MA101", Name: "Calculus I", Department: "Mathematics", Semester: "Fall", ProfessorID: "prof-default", Status: models.CourseStatusActive, CreatedAt: day(-30), UpdatedAt: day(-30)},
	}

	names := []string{"Aarav Sharma", "Diya Patel", "Ishaan Gupta", "Meera Nair", "Rohan Iyer", "Sanya Kapoor", "Vikram Rao", "Zara Khan"}
	students := make([]models.Student, 0, len(names))
	enrollments := make([]models.Enrollment, 0, len(names))
	for i, name := range names {
		id := fmt.Sprintf("student-%02d", i+1)
		students = append(students, models.Student{
			ID:         id,
			Name:       name,
			Email:      fmt.Sprintf("student%02d@example.edu", i+1),
			RollNumber: fmt.Sprintf("R%03d", i+1),
			CreatedAt:  day(-28),
		})
		course := courses[i%len(courses)]
		enrollments = append(enrollments, models.Enrollment{
			ID:         fmt.Sprintf("enroll-%02d", i+1),
			StudentID:  id,
			CourseID:   course.ID,
			EnrolledAt: day(-28),
		})
	}

	lectures := []models.Lecture{
		{ID: "lecture-01", CourseID: "course-cs101", Date: day(-7), Status: models.LectureStatusCompleted, Topics: []string{"Variables", "Control Flow"}, CreatedAt: day(-8)},
		{ID: "lecture-02", CourseID: "course-cs101", Date: day(-1), Status: models.LectureStatusCompleted, Topics: []string{"Functions"}, CreatedAt: day(-2)},
		{ID: "lecture-03", CourseID: "course-cs201", Date: day(-3), Status: models.LectureStatusCompleted, Topics: []string{"Linked Lists"}, CreatedAt: day(-4)},
		{ID: "lecture-04", CourseID: "course-ma101", Date: day(1), Status: models.LectureStatusScheduled, Topics: []string{"Limits"}, CreatedAt: day(-1)},
	}

	feedback := []models.FeedbackEntry{
		{ID: "feedback-01", LectureID: "lecture-01", StudentID: "student-01", CourseID: "course-cs101", Understanding: models.UnderstandingFully, CreatedAt: day(-7)},
		{ID: "feedback-02", LectureID: "lecture-01", StudentID: "student-04", CourseID: "course-cs101", Understanding: models.UnderstandingPartial, DifficultTopics: []string{"Control Flow"}, CreatedAt: day(-7)},
		{ID: "feedback-03", LectureID: "lecture-02", StudentID: "student-01", CourseID: "course-cs101", Understanding: models.UnderstandingPartial, CreatedAt: day(-1)},
		{ID: "feedback-04", LectureID: "lecture-02", StudentID: "student-07", CourseID: "course-cs101", Understanding: models.UnderstandingConfused, DifficultTopics: []string{"Recursion"}, Reason: "lost after the second example", CreatedAt: day(-1)},
		{ID: "feedback-05", LectureID: "lecture-03", StudentID: "student-02", CourseID: "course-cs201", Understanding: models.UnderstandingFully, CreatedAt: day(-3)},
	}

	assessments := []models.Assessment{
		{ID: "assessment-01", CourseID: "course-cs101", Name: "Quiz 1", Type: models.AssessmentTypeQuiz, MaxMarks: 20, WeightPct: 10, DueDate: day(-5), Status: models.AssessmentStatusPublished, CreatedAt: day(-10), UpdatedAt: day(-5)},
		{ID: "assessment-02", CourseID: "course-cs101", Name: "Assignment 1", Type: models.AssessmentTypeAssignment, MaxMarks: 50, WeightPct: 20, DueDate: day(3), Status: models.AssessmentStatusDraft, CreatedAt: day(-4), UpdatedAt: day(-4)},
		{ID: "assessment-03", CourseID: "course-cs201", Name: "Midterm", Type: models.AssessmentTypeMidterm, MaxMarks: 100, WeightPct: 30, DueDate: day(7), Status: models.AssessmentStatusDraft, CreatedAt: day(-3), UpdatedAt: day(-3)},
	}

	marks := func(v float64) *float64 { return &v }
	grades := []models.Grade{
		{ID: "grade-01", AssessmentID: "assessment-01", StudentID: "student-01", Marks: marks(18), UpdatedAt: day(-4)},
		{ID: "grade-02", AssessmentID: "assessment-01", StudentID: "student-04", Marks: marks(14), UpdatedAt: day(-4)},
		{ID: "grade-03", AssessmentID: "assessment-01", StudentID: "student-07", Marks: nil, UpdatedAt: day(-4)},
	}

	return Dataset{
		Courses:     courses,
		Students:    students,
		Enrollments: enrollments,
		Lectures:    lectures,
		Feedback:    feedback,
		Assessments: assessments,
		Grades:      grades,
	}
}
