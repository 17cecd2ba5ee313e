package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

type gradeSyncer interface {
	SyncGrades(grades []models.Grade)
}

// GradeEntry is one (student, marks) pair of a bulk grade submission. Nil
// marks clears the cell back to "not entered".
type GradeEntry struct {
	StudentID string   `json:"student_id" validate:"required"`
	Marks     *float64 `json:"marks"`
}

// BulkSetGradesRequest records marks for one assessment.
type BulkSetGradesRequest struct {
	AssessmentID string       `json:"assessment_id" validate:"required"`
	Entries      []GradeEntry `json:"entries" validate:"required,min=1,dive"`
}

// GradeService manages grade entry and assessment publication.
type GradeService struct {
	store     *store.Store
	sync      gradeSyncer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(st *store.Store, sync gradeSyncer, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{store: st, sync: sync, validator: validate, logger: logger}
}

// BulkSetGrades upserts one grade per entry. Marks out of the assessment's
// range fail the whole batch before anything is written; re-entered marks
// overwrite rather than duplicate.
func (s *GradeService) BulkSetGrades(req BulkSetGradesRequest) ([]models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grades payload")
	}
	snap := s.store.Snapshot()
	assessment, err := snap.AssessmentByID(req.AssessmentID)
	if err != nil {
		return nil, err
	}
	for _, entry := range req.Entries {
		if entry.Marks != nil && (*entry.Marks < 0 || *entry.Marks > assessment.MaxMarks) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "marks outside assessment range")
		}
		if _, err := snap.StudentByID(entry.StudentID); err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidReference, "student does not exist")
		}
	}

	grades := make([]models.Grade, 0, len(req.Entries))
	for _, entry := range req.Entries {
		grade, err := s.store.UpsertGrade(req.AssessmentID, entry.StudentID, entry.Marks)
		if err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}

	if s.sync != nil {
		s.sync.SyncGrades(grades)
	}
	s.logger.Info("grades recorded", zap.String("assessment_id", req.AssessmentID), zap.Int("count", len(grades)))
	return grades, nil
}

// Publish makes an assessment visible to students.
func (s *GradeService) Publish(assessmentID string) (models.Assessment, error) {
	return s.store.SetAssessmentStatus(assessmentID, models.AssessmentStatusPublished)
}

// Unpublish returns an assessment to draft.
func (s *GradeService) Unpublish(assessmentID string) (models.Assessment, error) {
	return s.store.SetAssessmentStatus(assessmentID, models.AssessmentStatusDraft)
}
