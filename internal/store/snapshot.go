package store

import (
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"

	"github.com/noah-isme/course-pulse-api/internal/models"
)

// Snapshot is a copy-on-read view of the store. It is immutable: a snapshot
// taken before a mutation never reflects it, so derived computations are
// pure functions of the snapshot they receive. Collection order is insertion
// order, which the query engine relies on for sort-tie stability.
type Snapshot struct {
	Courses     []models.Course
	Students    []models.Student
	Enrollments []models.Enrollment
	Lectures    []models.Lecture
	Feedback    []models.FeedbackEntry
	Assessments []models.Assessment
	Grades      []models.Grade
}

// Snapshot returns the current state of every collection.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Snapshot{
		Courses:     append([]models.Course(nil), s.courses...),
		Students:    append([]models.Student(nil), s.students...),
		Enrollments: append([]models.Enrollment(nil), s.enrollments...),
		Lectures:    append([]models.Lecture(nil), s.lectures...),
		Feedback:    append([]models.FeedbackEntry(nil), s.feedback...),
		Assessments: append([]models.Assessment(nil), s.assessments...),
		Grades:      append([]models.Grade(nil), s.grades...),
	}
}

// CourseByID resolves a course.
func (snap *Snapshot) CourseByID(id string) (models.Course, error) {
	for _, c := range snap.Courses {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Course{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

// StudentByID resolves a student.
func (snap *Snapshot) StudentByID(id string) (models.Student, error) {
	for _, st := range snap.Students {
		if st.ID == id {
			return st, nil
		}
	}
	return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

// LectureByID resolves a lecture.
func (snap *Snapshot) LectureByID(id string) (models.Lecture, error) {
	for _, l := range snap.Lectures {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Lecture{}, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
}

// AssessmentByID resolves an assessment.
func (snap *Snapshot) AssessmentByID(id string) (models.Assessment, error) {
	for _, a := range snap.Assessments {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Assessment{}, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
}

// StudentByEmail resolves a student by email, the bulk importer's natural key.
func (snap *Snapshot) StudentByEmail(email string) (models.Student, bool) {
	for _, st := range snap.Students {
		if st.Email == email {
			return st, true
		}
	}
	return models.Student{}, false
}

// ProfessorCourses lists courses owned by a professor, in insertion order.
func (snap *Snapshot) ProfessorCourses(professorID string) []models.Course {
	var out []models.Course
	for _, c := range snap.Courses {
		if c.ProfessorID == professorID {
			out = append(out, c)
		}
	}
	return out
}

// CourseStudents lists students linked to a course via enrollment.
func (snap *Snapshot) CourseStudents(courseID string) []models.Student {
	enrolled := map[string]struct{}{}
	for _, e := range snap.Enrollments {
		if e.CourseID == courseID {
			enrolled[e.StudentID] = struct{}{}
		}
	}
	var out []models.Student
	for _, st := range snap.Students {
		if _, ok := enrolled[st.ID]; ok {
			out = append(out, st)
		}
	}
	return out
}

// CourseLectures lists lectures belonging to a course.
func (snap *Snapshot) CourseLectures(courseID string) []models.Lecture {
	var out []models.Lecture
	for _, l := range snap.Lectures {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	return out
}

// CourseAssessments lists assessments belonging to a course.
func (snap *Snapshot) CourseAssessments(courseID string) []models.Assessment {
	var out []models.Assessment
	for _, a := range snap.Assessments {
		if a.CourseID == courseID {
			out = append(out, a)
		}
	}
	return out
}

// AssessmentGrades lists grades recorded for an assessment.
func (snap *Snapshot) AssessmentGrades(assessmentID string) []models.Grade {
	var out []models.Grade
	for _, g := range snap.Grades {
		if g.AssessmentID == assessmentID {
			out = append(out, g)
		}
	}
	return out
}

// LectureFeedback lists feedback entries for a lecture.
func (snap *Snapshot) LectureFeedback(lectureID string) []models.FeedbackEntry {
	var out []models.FeedbackEntry
	for _, f := range snap.Feedback {
		if f.LectureID == lectureID {
			out = append(out, f)
		}
	}
	return out
}

// StudentFeedback lists a student's feedback entries, optionally scoped to a
// course. An empty courseID means all courses.
func (snap *Snapshot) StudentFeedback(studentID, courseID string) []models.FeedbackEntry {
	var out []models.FeedbackEntry
	for _, f := range snap.Feedback {
		if f.StudentID != studentID {
			continue
		}
		if courseID != "" && f.CourseID != courseID {
			continue
		}
		out = append(out, f)
	}
	return out
}
