package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

// SelectionScope names the two selectable row sets.
type SelectionScope string

// Selection scopes.
const (
	ScopeCourses  SelectionScope = "courses"
	ScopeStudents SelectionScope = "students"
)

type courseSyncer interface {
	SyncCourses(courses []models.Course)
	SyncCourseDeletes(ids []string)
	SyncNudge(courseID string, studentIDs []string)
}

// BulkService owns the selection sets and applies grouped mutations with
// optimistic local-first semantics: the store changes synchronously and the
// mirror call runs detached. A failing mirror never rolls anything back.
type BulkService struct {
	store      *store.Store
	sync       courseSyncer
	logger     *zap.Logger
	courseSel  *Selection
	studentSel *Selection
}

// NewBulkService constructs a BulkService.
func NewBulkService(st *store.Store, sync courseSyncer, logger *zap.Logger) *BulkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkService{
		store:      st,
		sync:       sync,
		logger:     logger,
		courseSel:  NewSelection(),
		studentSel: NewSelection(),
	}
}

func (s *BulkService) selection(scope SelectionScope) (*Selection, error) {
	switch scope {
	case ScopeCourses:
		return s.courseSel, nil
	case ScopeStudents:
		return s.studentSel, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown selection scope")
	}
}

// Toggle flips one id in the scoped selection and reports whether it is now
// selected.
func (s *BulkService) Toggle(scope SelectionScope, id string) (bool, error) {
	sel, err := s.selection(scope)
	if err != nil {
		return false, err
	}
	return sel.Toggle(id), nil
}

// SelectAll replaces the scoped selection with the current page's ids.
func (s *BulkService) SelectAll(scope SelectionScope, ids []string) error {
	sel, err := s.selection(scope)
	if err != nil {
		return err
	}
	sel.SelectAll(ids)
	return nil
}

// Clear empties the scoped selection.
func (s *BulkService) Clear(scope SelectionScope) error {
	sel, err := s.selection(scope)
	if err != nil {
		return err
	}
	sel.Clear()
	return nil
}

// Selected returns the scoped selection in selection order.
func (s *BulkService) Selected(scope SelectionScope) ([]string, error) {
	sel, err := s.selection(scope)
	if err != nil {
		return nil, err
	}
	return sel.IDs(), nil
}

// ArchiveCourses archives every selected course, clears the selection and
// mirrors the change best-effort.
func (s *BulkService) ArchiveCourses() ([]models.Course, error) {
	ids := s.courseSel.IDs()
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selection is empty")
	}
	archived, err := s.store.ArchiveCourses(ids)
	if err != nil {
		return nil, err
	}
	s.courseSel.Clear()
	if s.sync != nil {
		s.sync.SyncCourses(archived)
	}
	s.logger.Info("bulk archive applied", zap.Int("courses", len(archived)))
	return archived, nil
}

// DeleteCourses deletes every selected course, clears the selection and
// mirrors the deletion best-effort.
func (s *BulkService) DeleteCourses() (int, error) {
	ids := s.courseSel.IDs()
	if len(ids) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "selection is empty")
	}
	if err := s.store.DeleteCourses(ids); err != nil {
		return 0, err
	}
	s.courseSel.Clear()
	if s.sync != nil {
		s.sync.SyncCourseDeletes(ids)
	}
	s.logger.Info("bulk delete applied", zap.Int("courses", len(ids)))
	return len(ids), nil
}

// NudgeStudents records a nudge signal for the selected students. No entity
// state changes; the signal itself is owned by the notification collaborator,
// so running the same nudge twice is harmless.
func (s *BulkService) NudgeStudents(courseID string) (int, error) {
	ids := s.studentSel.IDs()
	if len(ids) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "selection is empty")
	}
	s.studentSel.Clear()
	if s.sync != nil {
		s.sync.SyncNudge(courseID, ids)
	}
	s.logger.Info("bulk nudge recorded", zap.String("course_id", courseID), zap.Int("students", len(ids)))
	return len(ids), nil
}
