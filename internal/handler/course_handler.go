package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/service"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
	"github.com/noah-isme/course-pulse-api/pkg/response"
)

// CourseHandler exposes course catalog and pulse endpoints.
type CourseHandler struct {
	courses *service.CourseService
	pulse   *service.PulseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService, pulse *service.PulseService) *CourseHandler {
	return &CourseHandler{courses: courses, pulse: pulse}
}

// List godoc
// @Summary List courses with derived pulse fields
// @Tags Courses
// @Produce json
// @Param professorId query string false "Scope to one professor"
// @Param search query string false "Search by code, name or department"
// @Param filter query string false "all|active|silent|low-health|archived"
// @Param sort query string false "Sort key"
// @Param page query int false "Cumulative page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	req := models.CourseQuery{
		ProfessorID: c.Query("professorId"),
		Search:      strings.TrimSpace(c.Query("search")),
		Filter:      models.CourseFilter(c.DefaultQuery("filter", string(models.CourseFilterAll))),
		Sort:        models.SortKey(c.DefaultQuery("sort", string(models.SortNameAsc))),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "0")); err == nil {
		req.PageSize = size
	}

	result, err := h.courses.List(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &response.PageInfo{
		Page:          req.Page,
		PageSize:      req.PageSize,
		Returned:      len(result.Items),
		TotalFiltered: result.TotalFiltered,
		HasMore:       result.HasMore,
	})
}

// Get godoc
// @Summary Get course detail
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Create(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Update(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Pulse godoc
// @Summary Get derived course pulse
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/pulse [get]
func (h *CourseHandler) Pulse(c *gin.Context) {
	pulse, cached, err := h.pulse.Pulse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pulse, nil, map[string]interface{}{"cached": cached})
}
