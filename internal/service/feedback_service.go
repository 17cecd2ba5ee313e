package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
)

// SubmitFeedbackRequest carries one understanding signal for a lecture.
type SubmitFeedbackRequest struct {
	LectureID       string               `json:"lecture_id" binding:"required"`
	StudentID       string               `json:"student_id" binding:"required"`
	Understanding   models.Understanding `json:"understanding" binding:"required"`
	DifficultTopics []string             `json:"difficult_topics"`
	Reason          string               `json:"reason"`
}

// FeedbackService records immutable understanding signals.
type FeedbackService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewFeedbackService constructs a FeedbackService.
func NewFeedbackService(st *store.Store, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{store: st, logger: logger}
}

// Submit validates and stores a feedback entry. The course id is resolved
// from the lecture; entries cannot be edited or deleted afterwards.
func (s *FeedbackService) Submit(req SubmitFeedbackRequest) (models.FeedbackEntry, error) {
	switch req.Understanding {
	case models.UnderstandingFully, models.UnderstandingPartial, models.UnderstandingConfused:
	default:
		return models.FeedbackEntry{}, appErrors.Clone(appErrors.ErrValidation, "unknown understanding level "+string(req.Understanding))
	}
	return s.store.CreateFeedback(models.FeedbackEntry{
		LectureID:       req.LectureID,
		StudentID:       req.StudentID,
		Understanding:   req.Understanding,
		DifficultTopics: req.DifficultTopics,
		Reason:          req.Reason,
	})
}

// ListByLecture returns all feedback for one lecture in submission order.
func (s *FeedbackService) ListByLecture(lectureID string) ([]models.FeedbackEntry, error) {
	snap := s.store.Snapshot()
	if _, err := snap.LectureByID(lectureID); err != nil {
		return nil, err
	}
	return snap.LectureFeedback(lectureID), nil
}
