package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/service"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
	"github.com/noah-isme/course-pulse-api/pkg/response"
)

// LectureHandler exposes the lecture lifecycle endpoints.
type LectureHandler struct {
	lectures *service.LectureService
	feedback *service.FeedbackService
}

// NewLectureHandler constructs LectureHandler.
func NewLectureHandler(lectures *service.LectureService, feedback *service.FeedbackService) *LectureHandler {
	return &LectureHandler{lectures: lectures, feedback: feedback}
}

type setLectureStatusRequest struct {
	Status      models.LectureStatus `json:"status" binding:"required"`
	AttendeeIDs []string             `json:"attendee_ids"`
}

// Create godoc
// @Summary Schedule a lecture
// @Tags Lectures
// @Accept json
// @Produce json
// @Param payload body service.CreateLectureRequest true "Lecture payload"
// @Success 201 {object} response.Envelope
// @Router /lectures [post]
func (h *LectureHandler) Create(c *gin.Context) {
	var req service.CreateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lecture, err := h.lectures.Create(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lecture)
}

// Get godoc
// @Summary Get lecture detail
// @Tags Lectures
// @Produce json
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Router /lectures/{id} [get]
func (h *LectureHandler) Get(c *gin.Context) {
	lecture, err := h.lectures.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecture, nil)
}

// SetStatus godoc
// @Summary Move a lecture through its lifecycle
// @Tags Lectures
// @Accept json
// @Produce json
// @Param id path string true "Lecture ID"
// @Param payload body setLectureStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /lectures/{id}/status [patch]
func (h *LectureHandler) SetStatus(c *gin.Context) {
	var req setLectureStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lecture, err := h.lectures.SetStatus(c.Param("id"), req.Status, req.AttendeeIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lecture, nil)
}

// ListByCourse godoc
// @Summary List lectures of a course
// @Tags Lectures
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/lectures [get]
func (h *LectureHandler) ListByCourse(c *gin.Context) {
	lectures, err := h.lectures.ListByCourse(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures, nil)
}

// SubmitFeedback godoc
// @Summary Submit an understanding signal for a lecture
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body service.SubmitFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Router /feedback [post]
func (h *LectureHandler) SubmitFeedback(c *gin.Context) {
	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.feedback.Submit(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// ListFeedback godoc
// @Summary List feedback of a lecture
// @Tags Feedback
// @Produce json
// @Param id path string true "Lecture ID"
// @Success 200 {object} response.Envelope
// @Router /lectures/{id}/feedback [get]
func (h *LectureHandler) ListFeedback(c *gin.Context) {
	entries, err := h.feedback.ListByLecture(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
