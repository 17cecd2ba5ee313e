package models

// StudentFilter enumerates the student list filter categories. The set is
// closed: values come from the dashboard UI, never from free-form input.
type StudentFilter string

// Student filter categories.
const (
	StudentFilterAll            StudentFilter = "all"
	StudentFilterActive         StudentFilter = "active"
	StudentFilterSilent         StudentFilter = "silent"
	StudentFilterAtRisk         StudentFilter = "at-risk"
	StudentFilterInactive       StudentFilter = "inactive"
	StudentFilterLowHealth      StudentFilter = "low-health"
	StudentFilterHighPerformers StudentFilter = "high-performers"
)

// CourseFilter enumerates the course list filter categories.
type CourseFilter string

// Course filter categories.
const (
	CourseFilterAll       CourseFilter = "all"
	CourseFilterActive    CourseFilter = "active"
	CourseFilterSilent    CourseFilter = "silent"
	CourseFilterLowHealth CourseFilter = "low-health"
	CourseFilterArchived  CourseFilter = "archived"
)

// SortKey selects the comparator for a query. Each key has an ascending and
// a descending variant.
type SortKey string

// Sort keys.
const (
	SortNameAsc       SortKey = "name_asc"
	SortNameDesc      SortKey = "name_desc"
	SortHealthAsc     SortKey = "health_asc"
	SortHealthDesc    SortKey = "health_desc"
	SortActivityAsc   SortKey = "activity_asc"
	SortActivityDesc  SortKey = "activity_desc"
	SortCourseCodeAsc SortKey = "code_asc"
	SortCourseCodeDsc SortKey = "code_desc"
	SortRollAsc       SortKey = "roll_asc"
	SortRollDesc      SortKey = "roll_desc"
)

// StudentQuery describes a student list request. Page counts cumulatively:
// page N returns the first N×PageSize rows of the filtered, sorted sequence.
type StudentQuery struct {
	CourseID string
	Search   string
	Filter   StudentFilter
	Sort     SortKey
	Page     int
	PageSize int
}

// CourseQuery describes a course list request for one professor.
type CourseQuery struct {
	ProfessorID string
	Search      string
	Filter      CourseFilter
	Sort        SortKey
	Page        int
	PageSize    int
}

// CoursePulse aggregates derived course signals. Values are recomputed from
// feedback and lecture data on every read, never stored.
type CoursePulse struct {
	CourseID     string  `json:"course_id"`
	Health       float64 `json:"health"`
	Engagement   float64 `json:"engagement"`
	ActiveToday  int     `json:"active_today"`
	SilentCount  int     `json:"silent_count"`
	LectureCount int     `json:"lecture_count"`
	StudentCount int     `json:"student_count"`
}

// CourseRow is a course list row with its derived pulse fields.
type CourseRow struct {
	Course
	Pulse CoursePulse `json:"pulse"`
}
