package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

// CreateLectureRequest carries the fields for a new lecture.
type CreateLectureRequest struct {
	CourseID string    `json:"course_id" binding:"required"`
	Date     time.Time `json:"date"`
	Topics   []string  `json:"topics"`
}

// LectureService manages the lecture lifecycle for a course.
type LectureService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewLectureService constructs a LectureService.
func NewLectureService(st *store.Store, logger *zap.Logger) *LectureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LectureService{store: st, logger: logger}
}

// Create schedules a lecture under an existing course.
func (s *LectureService) Create(req CreateLectureRequest) (models.Lecture, error) {
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}
	return s.store.CreateLecture(models.Lecture{
		CourseID: req.CourseID,
		Date:     req.Date,
		Status:   models.LectureStatusScheduled,
		Topics:   req.Topics,
	})
}

var lectureStatusRank = map[models.LectureStatus]int{
	models.LectureStatusScheduled: 0,
	models.LectureStatusLive:      1,
	models.LectureStatusCompleted: 2,
}

// SetStatus moves a lecture forward through scheduled, live, completed.
// Backward moves are rejected; re-setting the current status is allowed so
// a completed lecture can amend its attendees. Attendees are only recorded
// when the lecture completes.
func (s *LectureService) SetStatus(id string, status models.LectureStatus, attendeeIDs []string) (models.Lecture, error) {
	rank, ok := lectureStatusRank[status]
	if !ok {
		return models.Lecture{}, appErrors.Clone(appErrors.ErrValidation, "unknown lecture status "+string(status))
	}
	current, err := s.store.Snapshot().LectureByID(id)
	if err != nil {
		return models.Lecture{}, err
	}
	if rank < lectureStatusRank[current.Status] {
		return models.Lecture{}, appErrors.Clone(appErrors.ErrValidation, "lecture cannot move from "+string(current.Status)+" back to "+string(status))
	}
	if status != models.LectureStatusCompleted {
		attendeeIDs = nil
	}
	return s.store.UpdateLectureStatus(id, status, attendeeIDs)
}

// Get returns a single lecture.
func (s *LectureService) Get(id string) (models.Lecture, error) {
	return s.store.Snapshot().LectureByID(id)
}

// ListByCourse returns the lectures of one course in creation order.
func (s *LectureService) ListByCourse(courseID string) ([]models.Lecture, error) {
	snap := s.store.Snapshot()
	if _, err := snap.CourseByID(courseID); err != nil {
		return nil, err
	}
	return snap.CourseLectures(courseID), nil
}
