package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/service"
	"github.com/noah-isme/course-pulse-api/internal/store"
	"github.com/noah-isme/course-pulse-api/pkg/export"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct{ Code string } `json:"error"`
	Page  *struct {
		Returned      int  `json:"returned"`
		TotalFiltered int  `json:"total_filtered"`
		HasMore       bool `json:"has_more"`
	} `json:"page"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.New().WithClock(func() time.Time { return testNow })
	logr := zap.NewNop()

	courseSvc := service.NewCourseService(service.CourseServiceParams{
		Store: st, Logger: logr, DefaultPageSize: 20, MaxPageSize: 100,
	})
	studentSvc := service.NewStudentService(st, 20, 100, logr)
	pulseSvc := service.NewPulseService(st, nil, time.Minute, logr)
	lectureSvc := service.NewLectureService(st, logr)
	feedbackSvc := service.NewFeedbackService(st, logr)
	assessmentSvc := service.NewAssessmentService(st, logr)
	gradeSvc := service.NewGradeService(st, nil, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(st, nil, nil, logr)
	bulkSvc := service.NewBulkService(st, nil, logr)
	exportSvc := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)

	r := gin.New()
	reg := Registry{
		Courses:     NewCourseHandler(courseSvc, pulseSvc),
		Students:    NewStudentHandler(studentSvc),
		Lectures:    NewLectureHandler(lectureSvc, feedbackSvc),
		Assessments: NewAssessmentHandler(assessmentSvc, gradeSvc),
		Enrollments: NewEnrollmentHandler(enrollmentSvc),
		Bulk:        NewBulkHandler(bulkSvc, studentSvc, courseSvc, exportSvc),
	}
	reg.Register(r.Group("/api/v1"))
	return r, st
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestCreateAndListCourses(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/courses",
		`{"code":"CS101","name":"Intro to CS","department":"CS","professor_id":"prof-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Course
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "CS101", created.Code)
	assert.Equal(t, models.CourseStatusActive, created.Status)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/courses?professorId=prof-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Page)
	assert.Equal(t, 1, env.Page.Returned)
	assert.Equal(t, 1, env.Page.TotalFiltered)
	assert.False(t, env.Page.HasMore)
}

func TestCreateCourseValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/courses", `{"name":"No Code"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestListCoursesRejectsUnknownFilter(t *testing.T) {
	r, _ := newTestRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/courses?filter=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestCoursePulseEndpoint(t *testing.T) {
	r, st := newTestRouter(t)
	course, err := st.CreateCourse(models.Course{Code: "CS101", Name: "Intro", ProfessorID: "prof-1"})
	require.NoError(t, err)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/courses/"+course.ID+"/pulse", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pulse models.CoursePulse
	require.NoError(t, json.Unmarshal(env.Data, &pulse))
	assert.Equal(t, course.ID, pulse.CourseID)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/courses/ghost/pulse", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestSelectionRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/selection/students/toggle", `{"id":"s1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/selection/students", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ids []string
	require.NoError(t, json.Unmarshal(env.Data, &ids))
	assert.Equal(t, []string{"s1"}, ids)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/v1/selection/students", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExportStudentsCSV(t *testing.T) {
	r, st := newTestRouter(t)
	course, err := st.CreateCourse(models.Course{Code: "CS101", Name: "Intro", ProfessorID: "prof-1"})
	require.NoError(t, err)
	student, err := st.CreateStudent(models.Student{Name: "Ada", Email: "ada@example.edu", RollNumber: "R1"})
	require.NoError(t, err)
	_, err = st.CreateEnrollment(student.ID, course.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/students?courseId="+course.ID+"&format=csv", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "students_")
	assert.Contains(t, w.Body.String(), "Ada")
}
