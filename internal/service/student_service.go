package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/health"
	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/query"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

// StudentService answers student list queries and per-student insight reads.
type StudentService struct {
	store           *store.Store
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(st *store.Store, defaultPageSize, maxPageSize int, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &StudentService{
		store:           st,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		now:             time.Now,
	}
}

// List evaluates a student query over the whole roster or one course.
func (s *StudentService) List(req models.StudentQuery) (query.StudentResult, error) {
	if req.PageSize <= 0 {
		req.PageSize = s.defaultPageSize
	}
	if req.PageSize > s.maxPageSize {
		req.PageSize = s.maxPageSize
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Filter == "" {
		req.Filter = models.StudentFilterAll
	}
	if req.Sort == "" {
		req.Sort = models.SortNameAsc
	}
	if !validStudentFilter(req.Filter) {
		return query.StudentResult{}, appErrors.Clone(appErrors.ErrValidation, "unknown student filter "+string(req.Filter))
	}
	if !validStudentSortKey(req.Sort) {
		return query.StudentResult{}, appErrors.Clone(appErrors.ErrValidation, "unknown sort key "+string(req.Sort))
	}

	snap := s.store.Snapshot()
	if req.CourseID != "" {
		if _, err := snap.CourseByID(req.CourseID); err != nil {
			return query.StudentResult{}, err
		}
	}
	return query.Students(snap, req, s.now()), nil
}

// Insight recomputes one student's derived signals, optionally scoped to a
// single course.
func (s *StudentService) Insight(studentID, courseID string) (models.StudentInsight, error) {
	snap := s.store.Snapshot()
	student, err := snap.StudentByID(studentID)
	if err != nil {
		return models.StudentInsight{}, err
	}
	if courseID != "" {
		if _, err := snap.CourseByID(courseID); err != nil {
			return models.StudentInsight{}, err
		}
	}
	return health.StudentInsight(snap, student, courseID, s.now()), nil
}
