package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/service"
	"github.com/noah-isme/course-pulse-api/pkg/response"
)

// StudentHandler exposes student list and insight endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students with derived signals
// @Tags Students
// @Produce json
// @Param courseId query string false "Scope to one course roster"
// @Param search query string false "Search by name, email or roll number"
// @Param filter query string false "all|active|silent|at-risk|inactive|low-health|high-performers"
// @Param sort query string false "Sort key"
// @Param page query int false "Cumulative page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	req := models.StudentQuery{
		CourseID: c.Query("courseId"),
		Search:   strings.TrimSpace(c.Query("search")),
		Filter:   models.StudentFilter(c.DefaultQuery("filter", string(models.StudentFilterAll))),
		Sort:     models.SortKey(c.DefaultQuery("sort", string(models.SortNameAsc))),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "0")); err == nil {
		req.PageSize = size
	}

	result, err := h.students.List(req)
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

// Insight godoc
// @Summary Get a student's derived engagement signals
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param courseId query string false "Scope signals to one course"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/insight [get]
func (h *StudentHandler) Insight(c *gin.Context) {
	insight, err := h.students.Insight(c.Param("id"), c.Query("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, insight, nil)
}
