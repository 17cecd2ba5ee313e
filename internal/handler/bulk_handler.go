package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/service"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
	"github.com/noah-isme/course-pulse-api/pkg/export"
	"github.com/noah-isme/course-pulse-api/pkg/response"
)

// BulkHandler exposes selection state, grouped mutations and export
// downloads.
type BulkHandler struct {
	bulk     *service.BulkService
	students *service.StudentService
	courses  *service.CourseService
	exporter *service.ExportService
}

// NewBulkHandler constructs BulkHandler.
func NewBulkHandler(bulk *service.BulkService, students *service.StudentService, courses *service.CourseService, exporter *service.ExportService) *BulkHandler {
	return &BulkHandler{bulk: bulk, students: students, courses: courses, exporter: exporter}
}

type toggleSelectionRequest struct {
	ID string `json:"id" binding:"required"`
}

type selectAllRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type nudgeRequest struct {
	CourseID string `json:"course_id" binding:"required"`
}

// Toggle godoc
// @Summary Toggle one row in the scoped selection
// @Tags Selection
// @Accept json
// @Produce json
// @Param scope path string true "courses or students"
// @Param payload body toggleSelectionRequest true "Row id"
// @Success 200 {object} response.Envelope
// @Router /selection/{scope}/toggle [post]
func (h *BulkHandler) Toggle(c *gin.Context) {
	var req toggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	selected, err := h.bulk.Toggle(service.SelectionScope(c.Param("scope")), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": req.ID, "selected": selected}, nil)
}

// SelectAll godoc
// @Summary Replace the scoped selection with the current page's ids
// @Tags Selection
// @Accept json
// @Produce json
// @Param scope path string true "courses or students"
// @Param payload body selectAllRequest true "Page row ids"
// @Success 200 {object} response.Envelope
// @Router /selection/{scope}/all [post]
func (h *BulkHandler) SelectAll(c *gin.Context) {
	var req selectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.bulk.SelectAll(service.SelectionScope(c.Param("scope")), req.IDs); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"selected": len(req.IDs)}, nil)
}

// Clear godoc
// @Summary Empty the scoped selection
// @Tags Selection
// @Param scope path string true "courses or students"
// @Success 204
// @Router /selection/{scope} [delete]
func (h *BulkHandler) Clear(c *gin.Context) {
	if err := h.bulk.Clear(service.SelectionScope(c.Param("scope"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Selected godoc
// @Summary List the scoped selection in selection order
// @Tags Selection
// @Produce json
// @Param scope path string true "courses or students"
// @Success 200 {object} response.Envelope
// @Router /selection/{scope} [get]
func (h *BulkHandler) Selected(c *gin.Context) {
	ids, err := h.bulk.Selected(service.SelectionScope(c.Param("scope")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, nil)
}

// ArchiveCourses godoc
// @Summary Archive every selected course
// @Tags Bulk
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bulk/courses/archive [post]
func (h *BulkHandler) ArchiveCourses(c *gin.Context) {
	archived, err := h.bulk.ArchiveCourses()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, archived, nil)
}

// DeleteCourses godoc
// @Summary Delete every selected course and its dependent records
// @Tags Bulk
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bulk/courses [delete]
func (h *BulkHandler) DeleteCourses(c *gin.Context) {
	deleted, err := h.bulk.DeleteCourses()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// NudgeStudents godoc
// @Summary Send a nudge to every selected student
// @Tags Bulk
// @Accept json
// @Produce json
// @Param payload body nudgeRequest true "Course context"
// @Success 200 {object} response.Envelope
// @Router /bulk/students/nudge [post]
func (h *BulkHandler) NudgeStudents(c *gin.Context) {
	var req nudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	nudged, err := h.bulk.NudgeStudents(req.CourseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"nudged": nudged}, nil)
}

// ExportStudents godoc
// @Summary Download the current student page as CSV or PDF
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param courseId query string false "Scope to one course roster"
// @Param search query string false "Search term"
// @Param filter query string false "Filter category"
// @Param sort query string false "Sort key"
// @Param page query int false "Cumulative page"
// @Param pageSize query int false "Page size"
// @Success 200 {file} binary
// @Router /export/students [get]
func (h *BulkHandler) ExportStudents(c *gin.Context) {
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
	selected, err := h.bulk.Selected(service.ScopeStudents)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.download(c, h.exporter.StudentsDataset(result.Items, selected), "Students")
}

// ExportCourses godoc
// @Summary Download the current course page as CSV or PDF
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param professorId query string false "Scope to one professor"
// @Param search query string false "Search term"
// @Param filter query string false "Filter category"
// @Param sort query string false "Sort key"
// @Param page query int false "Cumulative page"
// @Param pageSize query int false "Page size"
// @Success 200 {file} binary
// @Router /export/courses [get]
func (h *BulkHandler) ExportCourses(c *gin.Context) {
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
	selected, err := h.bulk.Selected(service.ScopeCourses)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.download(c, h.exporter.CoursesDataset(result.Items, selected), "Courses")
}

// download renders the dataset in the requested format and streams it. The
// selection is left untouched so a follow-up bulk action still applies.
func (h *BulkHandler) download(c *gin.Context, dataset export.Dataset, title string) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	rendering, err := h.exporter.Render(dataset, format, title)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendering.Filename))
	c.Data(http.StatusOK, rendering.ContentType, rendering.Payload)
}
