// Package store holds the normalized in-memory entity collections that back
// the dashboard. The store is the single owner of all entity records; derived
// metrics and query views are computed from read-only snapshots of it.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/course-pulse-api/internal/models"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

// Kind identifies an entity collection in change notifications.
type Kind string

// Entity kinds.
const (
	KindCourse     Kind = "course"
	KindStudent    Kind = "student"
	KindEnrollment Kind = "enrollment"
	KindLecture    Kind = "lecture"
	KindFeedback   Kind = "feedback"
	KindAssessment Kind = "assessment"
	KindGrade      Kind = "grade"
)

// Subscriber is invoked after every successful mutation so readers can
// recompute on next access. There is no polling.
type Subscriber func(Kind)

// Store is constructed once per process and passed by reference to all
// consumers. Mutations validate first and apply second, so a failing call
// leaves every collection untouched. The mutex is a transparent guard for
// the HTTP runtime; the observable contract stays single-writer with readers
// seeing only fully applied states.
type Store struct {
	mu sync.RWMutex

	courses     []models.Course
	students    []models.Student
	enrollments []models.Enrollment
	lectures    []models.Lecture
	feedback    []models.FeedbackEntry
	assessments []models.Assessment
	grades      []models.Grade

	courseIdx     map[string]int
	studentIdx    map[string]int
	enrollmentIdx map[string]int
	lectureIdx    map[string]int
	assessmentIdx map[string]int

	subs []Subscriber

	now   func() time.Time
	newID func() string
}

// New constructs an empty store.
func New() *Store {
	return &Store{
		courseIdx:     map[string]int{},
		studentIdx:    map[string]int{},
		enrollmentIdx: map[string]int{},
		lectureIdx:    map[string]int{},
		assessmentIdx: map[string]int{},
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

// WithClock overrides the store clock, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Subscribe registers a change listener. Listeners run synchronously after
// the mutation commits and must not mutate the store re-entrantly.
func (s *Store) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
}

func (s *Store) notify(kinds ...Kind) {
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, sub := range subs {
		for _, kind := range kinds {
			sub(kind)
		}
	}
}

// CreateCourse registers a new course owned by a professor.
func (s *Store) CreateCourse(course models.Course) (models.Course, error) {
	s.mu.Lock()
	if course.Code != "" {
		for _, existing := range s.courses {
			if existing.Code == course.Code && existing.ProfessorID == course.ProfessorID {
				s.mu.Unlock()
				return models.Course{}, appErrors.Clone(appErrors.ErrDuplicateKey, fmt.Sprintf("course code %s already exists", course.Code))
			}
		}
	}
	course.ID = s.newID()
	course.Status = models.CourseStatusActive
	course.CreatedAt = s.now().UTC()
	course.UpdatedAt = course.CreatedAt
	s.courses = append(s.courses, course)
	s.courseIdx[course.ID] = len(s.courses) - 1
	s.mu.Unlock()

	s.notify(KindCourse)
	return course, nil
}

// CourseUpdate carries optional course field changes.
type CourseUpdate struct {
	Code       *string
	Name       *string
	Department *string
	Semester   *string
}

// UpdateCourse applies a partial update.
func (s *Store) UpdateCourse(id string, update CourseUpdate) (models.Course, error) {
	s.mu.Lock()
	idx, ok := s.courseIdx[id]
	if !ok {
		s.mu.Unlock()
		return models.Course{}, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	course := s.courses[idx]
	if update.Code != nil {
		course.Code = *update.Code
	}
	if update.Name != nil {
		course.Name = *update.Name
	}
	if update.Department != nil {
		course.Department = *update.Department
	}
	if update.Semester != nil {
		course.Semester = *update.Semester
	}
	course.UpdatedAt = s.now().UTC()
	s.courses[idx] = course
	s.mu.Unlock()

	s.notify(KindCourse)
	return course, nil
}

// ArchiveCourses flips the status flag on every listed course. The call is
// all-or-nothing: one unknown id fails the whole batch with no change.
func (s *Store) ArchiveCourses(ids []string) ([]models.Course, error) {
	s.mu.Lock()
	for _, id := range ids {
		if _, ok := s.courseIdx[id]; !ok {
			s.mu.Unlock()
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
		}
	}
	archived := make([]models.Course, 0, len(ids))
	stamp := s.now().UTC()
	for _, id := range ids {
		idx := s.courseIdx[id]
		s.courses[idx].Status = models.CourseStatusArchived
		s.courses[idx].UpdatedAt = stamp
		archived = append(archived, s.courses[idx])
	}
	s.mu.Unlock()

	s.notify(KindCourse)
	return archived, nil
}

// DeleteCourses physically removes courses and everything hanging off them:
// enrollments, lectures, feedback, assessments and grades. Student records
// survive. All-or-nothing on unknown ids.
func (s *Store) DeleteCourses(ids []string) error {
	s.mu.Lock()
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.courseIdx[id]; !ok {
			s.mu.Unlock()
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
		}
		doomed[id] = struct{}{}
	}

	doomedAssessments := map[string]struct{}{}
	for _, a := range s.assessments {
		if _, gone := doomed[a.CourseID]; gone {
			doomedAssessments[a.ID] = struct{}{}
		}
	}

	s.courses = filterCourses(s.courses, func(c models.Course) bool { _, gone := doomed[c.ID]; return !gone })
	s.enrollments = filterEnrollments(s.enrollments, func(e models.Enrollment) bool { _, gone := doomed[e.CourseID]; return !gone })
	s.lectures = filterLectures(s.lectures, func(l models.Lecture) bool { _, gone := doomed[l.CourseID]; return !gone })
	s.feedback = filterFeedback(s.feedback, func(f models.FeedbackEntry) bool { _, gone := doomed[f.CourseID]; return !gone })
	s.assessments = filterAssessments(s.assessments, func(a models.Assessment) bool { _, gone := doomed[a.CourseID]; return !gone })
	s.grades = filterGrades(s.grades, func(g models.Grade) bool { _, gone := doomedAssessments[g.AssessmentID]; return !gone })
	s.reindex()
	s.mu.Unlock()

	s.notify(KindCourse, KindEnrollment, KindLecture, KindFeedback, KindAssessment, KindGrade)
	return nil
}

// CreateStudent registers a student record.
func (s *Store) CreateStudent(student models.Student) (models.Student, error) {
	s.mu.Lock()
	for _, existing := range s.students {
		if existing.Email == student.Email {
			s.mu.Unlock()
			return models.Student{}, appErrors.Clone(appErrors.ErrDuplicateKey, fmt.Sprintf("student with email %s already exists", student.Email))
		}
	}
	student.ID = s.newID()
	student.CreatedAt = s.now().UTC()
	s.students = append(s.students, student)
	s.studentIdx[student.ID] = len(s.students) - 1
	s.mu.Unlock()

	s.notify(KindStudent)
	return student, nil
}

// CreateEnrollment links a student to a course. Duplicate (student, course)
// pairs are rejected.
func (s *Store) CreateEnrollment(studentID, courseID string) (models.Enrollment, error) {
	s.mu.Lock()
	if _, ok := s.studentIdx[studentID]; !ok {
		s.mu.Unlock()
		return models.Enrollment{}, appErrors.Clone(appErrors.ErrInvalidReference, "student does not exist")
	}
	if _, ok := s.courseIdx[courseID]; !ok {
		s.mu.Unlock()
		return models.Enrollment{}, appErrors.Clone(appErrors.ErrInvalidReference, "course does not exist")
	}
	for _, existing := range s.enrollments {
		if existing.StudentID == studentID && existing.CourseID == courseID {
			s.mu.Unlock()
			return models.Enrollment{}, appErrors.Clone(appErrors.ErrDuplicateKey, "student already enrolled in course")
		}
	}
	enrollment := models.Enrollment{
		ID:         s.newID(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: s.now().UTC(),
	}
	s.enrollments = append(s.enrollments, enrollment)
	s.enrollmentIdx[enrollment.ID] = len(s.enrollments) - 1
	s.mu.Unlock()

	s.notify(KindEnrollment)
	return enrollment, nil
}

// DeleteEnrollment unlinks a student from a course. The student record stays.
func (s *Store) DeleteEnrollment(id string) error {
	s.mu.Lock()
	if _, ok := s.enrollmentIdx[id]; !ok {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	s.enrollments = filterEnrollments(s.enrollments, func(e models.Enrollment) bool { return e.ID != id })
	s.reindex()
	s.mu.Unlock()

	s.notify(KindEnrollment)
	return nil
}

// CreateLecture schedules a lecture for a course.
func (s *Store) CreateLecture(lecture models.Lecture) (models.Lecture, error) {
	s.mu.Lock()
	if _, ok := s.courseIdx[lecture.CourseID]; !ok {
		s.mu.Unlock()
		return models.Lecture{}, appErrors.Clone(appErrors.ErrInvalidReference, "course does not exist")
	}
	lecture.ID = s.newID()
	if lecture.Status == "" {
		lecture.Status = models.LectureStatusScheduled
	}
	lecture.CreatedAt = s.now().UTC()
	s.lectures = append(s.lectures, lecture)
	s.lectureIdx[lecture.ID] = len(s.lectures) - 1
	s.mu.Unlock()

	s.notify(KindLecture)
	return lecture, nil
}

// UpdateLectureStatus moves a lecture through its lifecycle and records
// attendees when provided.
func (s *Store) UpdateLectureStatus(id string, status models.LectureStatus, attendeeIDs []string) (models.Lecture, error) {
	switch status {
	case models.LectureStatusScheduled, models.LectureStatusLive, models.LectureStatusCompleted:
	default:
		return models.Lecture{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown lecture status %q", status))
	}

	s.mu.Lock()
	idx, ok := s.lectureIdx[id]
	if !ok {
		s.mu.Unlock()
		return models.Lecture{}, appErrors.Clone(appErrors.ErrNotFound, "lecture not found")
	}
	lecture := s.lectures[idx]
	lecture.Status = status
	if attendeeIDs != nil {
		lecture.AttendeeIDs = append([]string(nil), attendeeIDs...)
	}
	s.lectures[idx] = lecture
	s.mu.Unlock()

	s.notify(KindLecture)
	return lecture, nil
}

// CreateFeedback appends an immutable feedback entry. The lecture, student
// and course references must all resolve, and the course must match the
// lecture's course (the course id is denormalized).
func (s *Store) CreateFeedback(entry models.FeedbackEntry) (models.FeedbackEntry, error) {
	switch entry.Understanding {
	case models.UnderstandingFully, models.UnderstandingPartial, models.UnderstandingConfused:
	default:
		return models.FeedbackEntry{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown understanding level %q", entry.Understanding))
	}

	s.mu.Lock()
	lectureIdx, ok := s.lectureIdx[entry.LectureID]
	if !ok {
		s.mu.Unlock()
		return models.FeedbackEntry{}, appErrors.Clone(appErrors.ErrInvalidReference, "lecture does not exist")
	}
	if _, ok := s.studentIdx[entry.StudentID]; !ok {
		s.mu.Unlock()
		return models.FeedbackEntry{}, appErrors.Clone(appErrors.ErrInvalidReference, "student does not exist")
	}
	if entry.CourseID == "" {
		entry.CourseID = s.lectures[lectureIdx].CourseID
	}
	if _, ok := s.courseIdx[entry.CourseID]; !ok {
		s.mu.Unlock()
		return models.FeedbackEntry{}, appErrors.Clone(appErrors.ErrInvalidReference, "course does not exist")
	}
	if s.lectures[lectureIdx].CourseID != entry.CourseID {
		s.mu.Unlock()
		return models.FeedbackEntry{}, appErrors.Clone(appErrors.ErrInvalidReference, "lecture does not belong to course")
	}
	entry.ID = s.newID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	s.feedback = append(s.feedback, entry)
	s.mu.Unlock()

	s.notify(KindFeedback)
	return entry, nil
}

// CreateAssessment registers an assessment on a course.
func (s *Store) CreateAssessment(assessment models.Assessment) (models.Assessment, error) {
	s.mu.Lock()
	if _, ok := s.courseIdx[assessment.CourseID]; !ok {
		s.mu.Unlock()
		return models.Assessment{}, appErrors.Clone(appErrors.ErrInvalidReference, "course does not exist")
	}
	assessment.ID = s.newID()
	if assessment.Status == "" {
		assessment.Status = models.AssessmentStatusDraft
	}
	assessment.CreatedAt = s.now().UTC()
	assessment.UpdatedAt = assessment.CreatedAt
	s.assessments = append(s.assessments, assessment)
	s.assessmentIdx[assessment.ID] = len(s.assessments) - 1
	s.mu.Unlock()

	s.notify(KindAssessment)
	return assessment, nil
}

// AssessmentUpdate carries optional assessment field changes.
type AssessmentUpdate struct {
	Name      *string
	Type      *models.AssessmentType
	MaxMarks  *float64
	WeightPct *float64
	DueDate   *time.Time
}

// UpdateAssessment applies a partial update.
func (s *Store) UpdateAssessment(id string, update AssessmentUpdate) (models.Assessment, error) {
	s.mu.Lock()
	idx, ok := s.assessmentIdx[id]
	if !ok {
		s.mu.Unlock()
		return models.Assessment{}, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	assessment := s.assessments[idx]
	if update.Name != nil {
		assessment.Name = *update.Name
	}
	if update.Type != nil {
		assessment.Type = *update.Type
	}
	if update.MaxMarks != nil {
		assessment.MaxMarks = *update.MaxMarks
	}
	if update.WeightPct != nil {
		assessment.WeightPct = *update.WeightPct
	}
	if update.DueDate != nil {
		assessment.DueDate = *update.DueDate
	}
	assessment.UpdatedAt = s.now().UTC()
	s.assessments[idx] = assessment
	s.mu.Unlock()

	s.notify(KindAssessment)
	return assessment, nil
}

// SetAssessmentStatus publishes or unpublishes an assessment.
func (s *Store) SetAssessmentStatus(id string, status models.AssessmentStatus) (models.Assessment, error) {
	switch status {
	case models.AssessmentStatusDraft, models.AssessmentStatusPublished:
	default:
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown assessment status %q", status))
	}

	s.mu.Lock()
	idx, ok := s.assessmentIdx[id]
	if !ok {
		s.mu.Unlock()
		return models.Assessment{}, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	s.assessments[idx].Status = status
	s.assessments[idx].UpdatedAt = s.now().UTC()
	assessment := s.assessments[idx]
	s.mu.Unlock()

	s.notify(KindAssessment)
	return assessment, nil
}

// DeleteAssessment removes an assessment and its grades.
func (s *Store) DeleteAssessment(id string) error {
	s.mu.Lock()
	if _, ok := s.assessmentIdx[id]; !ok {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	s.assessments = filterAssessments(s.assessments, func(a models.Assessment) bool { return a.ID != id })
	s.grades = filterGrades(s.grades, func(g models.Grade) bool { return g.AssessmentID != id })
	s.reindex()
	s.mu.Unlock()

	s.notify(KindAssessment, KindGrade)
	return nil
}

// UpsertGrade records marks for an (assessment, student) pair. Re-entering
// overwrites the existing grade; a pair never holds two grades.
func (s *Store) UpsertGrade(assessmentID, studentID string, marks *float64) (models.Grade, error) {
	s.mu.Lock()
	if _, ok := s.assessmentIdx[assessmentID]; !ok {
		s.mu.Unlock()
		return models.Grade{}, appErrors.Clone(appErrors.ErrInvalidReference, "assessment does not exist")
	}
	if _, ok := s.studentIdx[studentID]; !ok {
		s.mu.Unlock()
		return models.Grade{}, appErrors.Clone(appErrors.ErrInvalidReference, "student does not exist")
	}
	stamp := s.now().UTC()
	for i, existing := range s.grades {
		if existing.AssessmentID == assessmentID && existing.StudentID == studentID {
			s.grades[i].Marks = marks
			s.grades[i].UpdatedAt = stamp
			grade := s.grades[i]
			s.mu.Unlock()
			s.notify(KindGrade)
			return grade, nil
		}
	}
	grade := models.Grade{
		ID:           s.newID(),
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Marks:        marks,
		UpdatedAt:    stamp,
	}
	s.grades = append(s.grades, grade)
	s.mu.Unlock()

	s.notify(KindGrade)
	return grade, nil
}

func (s *Store) reindex() {
	s.courseIdx = make(map[string]int, len(s.courses))
	for i, c := range s.courses {
		s.courseIdx[c.ID] = i
	}
	s.studentIdx = make(map[string]int, len(s.students))
	for i, st := range s.students {
		s.studentIdx[st.ID] = i
	}
	s.enrollmentIdx = make(map[string]int, len(s.enrollments))
	for i, e := range s.enrollments {
		s.enrollmentIdx[e.ID] = i
	}
	s.lectureIdx = make(map[string]int, len(s.lectures))
	for i, l := range s.lectures {
		s.lectureIdx[l.ID] = i
	}
	s.assessmentIdx = make(map[string]int, len(s.assessments))
	for i, a := range s.assessments {
		s.assessmentIdx[a.ID] = i
	}
}

func filterCourses(in []models.Course, keep func(models.Course) bool) []models.Course {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterEnrollments(in []models.Enrollment, keep func(models.Enrollment) bool) []models.Enrollment {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterLectures(in []models.Lecture, keep func(models.Lecture) bool) []models.Lecture {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterFeedback(in []models.FeedbackEntry, keep func(models.FeedbackEntry) bool) []models.FeedbackEntry {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterAssessments(in []models.Assessment, keep func(models.Assessment) bool) []models.Assessment {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterGrades(in []models.Grade, keep func(models.Grade) bool) []models.Grade {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
