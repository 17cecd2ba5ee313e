package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/query"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

// CreateCourseRequest carries the fields for a new course.
type CreateCourseRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Department  string `json:"department"`
	Semester    string `json:"semester"`
	ProfessorID string `json:"professor_id" binding:"required"`
}

// UpdateCourseRequest carries optional course field changes.
type UpdateCourseRequest struct {
	Code       *string `json:"code"`
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Semester   *string `json:"semester"`
}

// CourseService exposes course catalog operations. Lists come from the query
// engine so search, filter, sort and paging always apply in the same order.
type CourseService struct {
	store           *store.Store
	sync            *SyncService
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// CourseServiceParams bundles CourseService dependencies.
type CourseServiceParams struct {
	Store           *store.Store
	Sync            *SyncService
	Logger          *zap.Logger
	DefaultPageSize int
	MaxPageSize     int
}

// NewCourseService constructs a CourseService.
func NewCourseService(p CourseServiceParams) *CourseService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.DefaultPageSize <= 0 {
		p.DefaultPageSize = 20
	}
	if p.MaxPageSize <= 0 {
		p.MaxPageSize = 100
	}
	return &CourseService{
		store:           p.Store,
		sync:            p.Sync,
		logger:          p.Logger,
		defaultPageSize: p.DefaultPageSize,
		maxPageSize:     p.MaxPageSize,
		now:             time.Now,
	}
}

// Create registers a course locally, then mirrors it in the background.
func (s *CourseService) Create(req CreateCourseRequest) (models.Course, error) {
	course, err := s.store.CreateCourse(models.Course{
		Code:        req.Code,
		Name:        req.Name,
		Department:  req.Department,
		Semester:    req.Semester,
		ProfessorID: req.ProfessorID,
	})
	if err != nil {
		return models.Course{}, err
	}
	s.sync.SyncCourses([]models.Course{course})
	return course, nil
}

// Update applies a partial course update and mirrors the result.
func (s *CourseService) Update(id string, req UpdateCourseRequest) (models.Course, error) {
	course, err := s.store.UpdateCourse(id, store.CourseUpdate{
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
		Semester:   req.Semester,
	})
	if err != nil {
		return models.Course{}, err
	}
	s.sync.SyncCourses([]models.Course{course})
	return course, nil
}

// Get returns a single course.
func (s *CourseService) Get(id string) (models.Course, error) {
	return s.store.Snapshot().CourseByID(id)
}

// List evaluates a course query. Invalid enum values are rejected here so
// the engine's closed-set guarantee holds.
func (s *CourseService) List(req models.CourseQuery) (query.CourseResult, error) {
	req.PageSize = s.clampPageSize(req.PageSize)
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Filter == "" {
		req.Filter = models.CourseFilterAll
	}
	if req.Sort == "" {
		req.Sort = models.SortNameAsc
	}
	if !validCourseFilter(req.Filter) {
		return query.CourseResult{}, appErrors.Clone(appErrors.ErrValidation, "unknown course filter "+string(req.Filter))
	}
	if !validCourseSortKey(req.Sort) {
		return query.CourseResult{}, appErrors.Clone(appErrors.ErrValidation, "unknown sort key "+string(req.Sort))
	}
	return query.Courses(s.store.Snapshot(), req, s.now()), nil
}

func (s *CourseService) clampPageSize(size int) int {
	if size <= 0 {
		return s.defaultPageSize
	}
	if size > s.maxPageSize {
		return s.maxPageSize
	}
	return size
}

func validCourseFilter(f models.CourseFilter) bool {
	switch f {
	case models.CourseFilterAll, models.CourseFilterActive, models.CourseFilterSilent,
		models.CourseFilterLowHealth, models.CourseFilterArchived:
		return true
	}
	return false
}

func validStudentFilter(f models.StudentFilter) bool {
	switch f {
	case models.StudentFilterAll, models.StudentFilterActive, models.StudentFilterSilent,
		models.StudentFilterAtRisk, models.StudentFilterInactive,
		models.StudentFilterLowHealth, models.StudentFilterHighPerformers:
		return true
	}
	return false
}

func validStudentSortKey(k models.SortKey) bool {
	switch k {
	case models.SortNameAsc, models.SortNameDesc,
		models.SortHealthAsc, models.SortHealthDesc,
		models.SortActivityAsc, models.SortActivityDesc,
		models.SortRollAsc, models.SortRollDesc:
		return true
	}
	return false
}

func validCourseSortKey(k models.SortKey) bool {
	switch k {
	case models.SortNameAsc, models.SortNameDesc,
		models.SortCourseCodeAsc, models.SortCourseCodeDsc,
		models.SortHealthAsc, models.SortHealthDesc:
		return true
	}
	return false
}
