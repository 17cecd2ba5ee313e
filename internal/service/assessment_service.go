package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

// CreateAssessmentRequest carries the fields for a new assessment.
type CreateAssessmentRequest struct {
	CourseID  string                `json:"course_id" binding:"required"`
	Name      string                `json:"name" binding:"required"`
	Type      models.AssessmentType `json:"type" binding:"required"`
	MaxMarks  float64               `json:"max_marks" binding:"required"`
	WeightPct float64               `json:"weight_pct"`
	DueDate   time.Time             `json:"due_date"`
}

// UpdateAssessmentRequest carries optional assessment field changes.
type UpdateAssessmentRequest struct {
	Name      *string                `json:"name"`
	Type      *models.AssessmentType `json:"type"`
	MaxMarks  *float64               `json:"max_marks"`
	WeightPct *float64               `json:"weight_pct"`
	DueDate   *time.Time             `json:"due_date"`
}

// AssessmentService manages assessments; grade entry lives in GradeService.
type AssessmentService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(st *store.Store, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{store: st, logger: logger}
}

// Create registers a draft assessment under an existing course.
func (s *AssessmentService) Create(req CreateAssessmentRequest) (models.Assessment, error) {
	if !validAssessmentType(req.Type) {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "unknown assessment type "+string(req.Type))
	}
	if req.MaxMarks <= 0 {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "max marks must be positive")
	}
	return s.store.CreateAssessment(models.Assessment{
		CourseID:  req.CourseID,
		Name:      req.Name,
		Type:      req.Type,
		MaxMarks:  req.MaxMarks,
		WeightPct: req.WeightPct,
		DueDate:   req.DueDate,
	})
}

// Update applies a partial assessment update.
func (s *AssessmentService) Update(id string, req UpdateAssessmentRequest) (models.Assessment, error) {
	if req.Type != nil && !validAssessmentType(*req.Type) {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "unknown assessment type "+string(*req.Type))
	}
	if req.MaxMarks != nil && *req.MaxMarks <= 0 {
		return models.Assessment{}, appErrors.Clone(appErrors.ErrValidation, "max marks must be positive")
	}
	return s.store.UpdateAssessment(id, store.AssessmentUpdate{
		Name:      req.Name,
		Type:      req.Type,
		MaxMarks:  req.MaxMarks,
		WeightPct: req.WeightPct,
		DueDate:   req.DueDate,
	})
}

// Get returns a single assessment.
func (s *AssessmentService) Get(id string) (models.Assessment, error) {
	return s.store.Snapshot().AssessmentByID(id)
}

// ListByCourse returns the assessments of one course in creation order.
func (s *AssessmentService) ListByCourse(courseID string) ([]models.Assessment, error) {
	snap := s.store.Snapshot()
	if _, err := snap.CourseByID(courseID); err != nil {
		return nil, err
	}
	return snap.CourseAssessments(courseID), nil
}

// Delete removes an assessment and every grade under it.
func (s *AssessmentService) Delete(id string) error {
	return s.store.DeleteAssessment(id)
}

// Grades returns the entered grades for one assessment.
func (s *AssessmentService) Grades(assessmentID string) ([]models.Grade, error) {
	snap := s.store.Snapshot()
	if _, err := snap.AssessmentByID(assessmentID); err != nil {
		return nil, err
	}
	return snap.AssessmentGrades(assessmentID), nil
}

func validAssessmentType(t models.AssessmentType) bool {
	switch t {
	case models.AssessmentTypeQuiz, models.AssessmentTypeAssignment,
		models.AssessmentTypeMidterm, models.AssessmentTypeFinal,
		models.AssessmentTypeLab, models.AssessmentTypeProject:
		return true
	}
	return false
}
