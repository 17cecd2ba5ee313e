package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

type enrollmentSyncer interface {
	SyncStudents(students []models.Student)
	SyncEnrollments(enrollments []models.Enrollment)
}

// EnrollStudentRequest enrolls one existing student into a course.
type EnrollStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

// BulkEnrollRequest imports line-delimited "name, email, rollNumber" triples.
type BulkEnrollRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

// BulkEnrollResult reports what the importer did with each line.
type BulkEnrollResult struct {
	Enrolled        int `json:"enrolled"`
	CreatedStudents int `json:"created_students"`
	Skipped         int `json:"skipped"`
}

// EnrollmentService manages student-course links, including the bulk text
// importer used by the roster paste flow.
type EnrollmentService struct {
	store     *store.Store
	sync      enrollmentSyncer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(st *store.Store, sync enrollmentSyncer, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: st, sync: sync, validator: validate, logger: logger}
}

// Enroll links an existing student to a course.
func (s *EnrollmentService) Enroll(req EnrollStudentRequest) (models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Enrollment{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrollment, err := s.store.CreateEnrollment(req.StudentID, req.CourseID)
	if err != nil {
		return models.Enrollment{}, err
	}
	if s.sync != nil {
		s.sync.SyncEnrollments([]models.Enrollment{enrollment})
	}
	return enrollment, nil
}

// Unenroll removes an enrollment; the student record survives.
func (s *EnrollmentService) Unenroll(enrollmentID string) error {
	return s.store.DeleteEnrollment(enrollmentID)
}

// BulkEnroll parses the pasted roster text. Malformed lines are skipped, not
// fatal; a duplicate (student, course) pair collapses to one enrollment and
// never duplicates the student record either.
func (s *EnrollmentService) BulkEnroll(req BulkEnrollRequest) (BulkEnrollResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return BulkEnrollResult{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk enrollment payload")
	}
	if _, err := s.store.Snapshot().CourseByID(req.CourseID); err != nil {
		return BulkEnrollResult{}, err
	}

	var result BulkEnrollResult
	var newStudents []models.Student
	var newEnrollments []models.Enrollment

	for _, line := range strings.Split(req.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, email, roll, ok := parseRosterLine(line)
		if !ok {
			result.Skipped++
			continue
		}

		student, found := s.store.Snapshot().StudentByEmail(email)
		if !found {
			created, err := s.store.CreateStudent(models.Student{Name: name, Email: email, RollNumber: roll})
			if err != nil {
				// Lost a race with another line carrying the same email.
				if existing, ok := s.store.Snapshot().StudentByEmail(email); ok {
					student = existing
				} else {
					result.Skipped++
					continue
				}
			} else {
				student = created
				newStudents = append(newStudents, created)
				result.CreatedStudents++
			}
		}

		enrollment, err := s.store.CreateEnrollment(student.ID, req.CourseID)
		if err != nil {
			// Re-enrollment attempts are expected in pasted rosters.
			if !errors.Is(err, appErrors.ErrDuplicateKey) {
				s.logger.Warn("bulk enroll line rejected", zap.String("email", email), zap.Error(err))
			}
			result.Skipped++
			continue
		}
		newEnrollments = append(newEnrollments, enrollment)
		result.Enrolled++
	}

	if s.sync != nil {
		s.sync.SyncStudents(newStudents)
		s.sync.SyncEnrollments(newEnrollments)
	}
	s.logger.Info("bulk enroll finished",
		zap.String("course_id", req.CourseID),
		zap.Int("enrolled", result.Enrolled),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// parseRosterLine splits one "name, email, rollNumber" triple. Lines with a
// missing field or an implausible email are malformed.
func parseRosterLine(line string) (name, email, roll string, ok bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return "", "", "", false
	}
	name = strings.TrimSpace(parts[0])
	email = strings.ToLower(strings.TrimSpace(parts[1]))
	roll = strings.TrimSpace(parts[2])
	if name == "" || roll == "" || !strings.Contains(email, "@") {
		return "", "", "", false
	}
	return name, email, roll, true
}
