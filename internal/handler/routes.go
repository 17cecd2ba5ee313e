package handler

import "github.com/gin-gonic/gin"

// Registry bundles every handler for route registration.
type Registry struct {
	Courses     *CourseHandler
	Students    *StudentHandler
	Lectures    *LectureHandler
	Assessments *AssessmentHandler
	Enrollments *EnrollmentHandler
	Bulk        *BulkHandler
}

// Register mounts all API routes under the prefix group.
func (reg *Registry) Register(api *gin.RouterGroup) {
	courses := api.Group("/courses")
	{
		courses.GET("", reg.Courses.List)
		courses.POST("", reg.Courses.Create)
		courses.GET("/:id", reg.Courses.Get)
		courses.PUT("/:id", reg.Courses.Update)
		courses.GET("/:id/pulse", reg.Courses.Pulse)
		courses.GET("/:id/lectures", reg.Lectures.ListByCourse)
		courses.GET("/:id/assessments", reg.Assessments.ListByCourse)
	}

	students := api.Group("/students")
	{
		students.GET("", reg.Students.List)
		students.GET("/:id/insight", reg.Students.Insight)
	}

	lectures := api.Group("/lectures")
	{
		lectures.POST("", reg.Lectures.Create)
		lectures.GET("/:id", reg.Lectures.Get)
		lectures.PATCH("/:id/status", reg.Lectures.SetStatus)
		lectures.GET("/:id/feedback", reg.Lectures.ListFeedback)
	}
	api.POST("/feedback", reg.Lectures.SubmitFeedback)

	assessments := api.Group("/assessments")
	{
		assessments.POST("", reg.Assessments.Create)
		assessments.GET("/:id", reg.Assessments.Get)
		assessments.PUT("/:id", reg.Assessments.Update)
		assessments.DELETE("/:id", reg.Assessments.Delete)
		assessments.POST("/:id/publish", reg.Assessments.Publish)
		assessments.POST("/:id/unpublish", reg.Assessments.Unpublish)
		assessments.GET("/:id/grades", reg.Assessments.ListGrades)
		assessments.POST("/:id/grades", reg.Assessments.SetGrades)
	}

	enrollments := api.Group("/enrollments")
	{
		enrollments.POST("", reg.Enrollments.Enroll)
		enrollments.DELETE("/:id", reg.Enrollments.Unenroll)
		enrollments.POST("/bulk", reg.Enrollments.BulkEnroll)
	}

	selection := api.Group("/selection/:scope")
	{
		selection.GET("", reg.Bulk.Selected)
		selection.DELETE("", reg.Bulk.Clear)
		selection.POST("/toggle", reg.Bulk.Toggle)
		selection.POST("/all", reg.Bulk.SelectAll)
	}

	bulk := api.Group("/bulk")
	{
		bulk.POST("/courses/archive", reg.Bulk.ArchiveCourses)
		bulk.DELETE("/courses", reg.Bulk.DeleteCourses)
		bulk.POST("/students/nudge", reg.Bulk.NudgeStudents)
	}

	export := api.Group("/export")
	{
		export.GET("/students", reg.Bulk.ExportStudents)
		export.GET("/courses", reg.Bulk.ExportCourses)
	}
}
