// Package query turns entity collections plus a request descriptor into a
// displayable page. The pipeline order is fixed: search, then filter, then
// sort, then page. Filtering before sorting before paging keeps counts and
// row positions consistent with what the user sees across "load more" calls.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/course-pulse-api/internal/health"
	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
)

// FilterSilentAfterDays is the student "silent" filter net. It is looser
// than the classification threshold on purpose: the filter catches students
// approaching silence while the badge flips later. Keep the two constants
// separate.
const FilterSilentAfterDays = 5

// Low-health and high-performer filter cutoffs.
const (
	filterLowHealthBelow      = 50
	filterHighPerformersAbove = 85
)

// StudentResult is a cumulative page of student rows.
type StudentResult struct {
	Items         []models.StudentInsight
	TotalFiltered int
	HasMore       bool
}

// CourseResult is a cumulative page of course rows.
type CourseResult struct {
	Items         []models.CourseRow
	TotalFiltered int
	HasMore       bool
}

// Students evaluates a student query against a snapshot. Derived fields are
// recomputed per call; an unknown filter or sort key panics, since those
// enumerations are closed and owned by the callers.
func Students(snap *store.Snapshot, req models.StudentQuery, now time.Time) StudentResult {
	roster := snap.Students
	if req.CourseID != "" {
		roster = snap.CourseStudents(req.CourseID)
	}

	rows := make([]models.StudentInsight, 0, len(roster))
	for _, student := range roster {
		if !matchStudent(student, req.Search) {
			continue
		}
		rows = append(rows, health.StudentInsight(snap, student, req.CourseID, now))
	}

	rows = filterStudents(rows, req.Filter)
	sortStudents(rows, req.Sort)

	total := len(rows)
	window := pageWindow(req.Page, req.PageSize, total)
	return StudentResult{
		Items:         rows[:window],
		TotalFiltered: total,
		HasMore:       window < total,
	}
}

// Courses evaluates a course query against a snapshot for one professor.
func Courses(snap *store.Snapshot, req models.CourseQuery, now time.Time) CourseResult {
	catalog := snap.Courses
	if req.ProfessorID != "" {
		catalog = snap.ProfessorCourses(req.ProfessorID)
	}

	rows := make([]models.CourseRow, 0, len(catalog))
	for _, course := range catalog {
		if !matchCourse(course, req.Search) {
			continue
		}
		rows = append(rows, models.CourseRow{
			Course: course,
			Pulse:  health.CoursePulse(snap, course.ID, now),
		})
	}

	rows = filterCourses(rows, req.Filter)
	sortCourses(rows, req.Sort)

	total := len(rows)
	window := pageWindow(req.Page, req.PageSize, total)
	return CourseResult{
		Items:         rows[:window],
		TotalFiltered: total,
		HasMore:       window < total,
	}
}

// pageWindow returns the cumulative window size: page N covers the first
// N×pageSize rows. Each "load more" extends the window rather than paging
// by offset, so rows never drop or duplicate across loads.
func pageWindow(page, pageSize, total int) int {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return total
	}
	window := page * pageSize
	if window > total {
		return total
	}
	return window
}

func matchStudent(student models.Student, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(student.Name), needle) ||
		strings.Contains(strings.ToLower(student.Email), needle) ||
		strings.Contains(strings.ToLower(student.RollNumber), needle)
}

func matchCourse(course models.Course, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(course.Code), needle) ||
		strings.Contains(strings.ToLower(course.Name), needle) ||
		strings.Contains(strings.ToLower(course.Department), needle)
}

func filterStudents(rows []models.StudentInsight, filter models.StudentFilter) []models.StudentInsight {
	if filter == "" || filter == models.StudentFilterAll {
		return rows
	}
	keep := studentPredicate(filter)
	out := rows[:0]
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func studentPredicate(filter models.StudentFilter) func(models.StudentInsight) bool {
	switch filter {
	case models.StudentFilterActive:
		return func(r models.StudentInsight) bool { return r.Status == models.StudentStatusActive }
	case models.StudentFilterSilent:
		// Wider net than the badge: status silent OR approaching silence.
		return func(r models.StudentInsight) bool {
			return r.Status == models.StudentStatusSilent || r.SilentDays >= FilterSilentAfterDays
		}
	case models.StudentFilterAtRisk:
		return func(r models.StudentInsight) bool { return r.Status == models.StudentStatusAtRisk }
	case models.StudentFilterInactive:
		return func(r models.StudentInsight) bool { return r.Status == models.StudentStatusInactive }
	case models.StudentFilterLowHealth:
		return func(r models.StudentInsight) bool { return r.Health < filterLowHealthBelow }
	case models.StudentFilterHighPerformers:
		return func(r models.StudentInsight) bool { return r.Health >= filterHighPerformersAbove }
	default:
		panic(fmt.Sprintf("query: unknown student filter %q", filter))
	}
}

func filterCourses(rows []models.CourseRow, filter models.CourseFilter) []models.CourseRow {
	if filter == "" || filter == models.CourseFilterAll {
		return rows
	}
	keep := coursePredicate(filter)
	out := rows[:0]
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func coursePredicate(filter models.CourseFilter) func(models.CourseRow) bool {
	switch filter {
	case models.CourseFilterActive:
		return func(r models.CourseRow) bool { return r.Status == models.CourseStatusActive }
	case models.CourseFilterSilent:
		return func(r models.CourseRow) bool { return r.Pulse.SilentCount > 0 }
	case models.CourseFilterLowHealth:
		return func(r models.CourseRow) bool { return r.Pulse.StudentCount > 0 && r.Pulse.Health < filterLowHealthBelow }
	case models.CourseFilterArchived:
		return func(r models.CourseRow) bool { return r.Status == models.CourseStatusArchived }
	default:
		panic(fmt.Sprintf("query: unknown course filter %q", filter))
	}
}

// sortStudents applies a stable comparator; ties keep insertion order so
// repeated queries against an unchanged snapshot return identical sequences.
func sortStudents(rows []models.StudentInsight, key models.SortKey) {
	if key == "" {
		return
	}
	var less func(a, b models.StudentInsight) bool
	switch key {
	case models.SortNameAsc:
		less = func(a, b models.StudentInsight) bool { return a.Name < b.Name }
	case models.SortNameDesc:
		less = func(a, b models.StudentInsight) bool { return a.Name > b.Name }
	case models.SortHealthAsc:
		less = func(a, b models.StudentInsight) bool { return a.Health < b.Health }
	case models.SortHealthDesc:
		less = func(a, b models.StudentInsight) bool { return a.Health > b.Health }
	case models.SortActivityAsc:
		less = func(a, b models.StudentInsight) bool { return a.SilentDays < b.SilentDays }
	case models.SortActivityDesc:
		less = func(a, b models.StudentInsight) bool { return a.SilentDays > b.SilentDays }
	case models.SortRollAsc:
		less = func(a, b models.StudentInsight) bool { return a.RollNumber < b.RollNumber }
	case models.SortRollDesc:
		less = func(a, b models.StudentInsight) bool { return a.RollNumber > b.RollNumber }
	default:
		panic(fmt.Sprintf("query: unknown student sort key %q", key))
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func sortCourses(rows []models.CourseRow, key models.SortKey) {
	if key == "" {
		return
	}
	var less func(a, b models.CourseRow) bool
	switch key {
	case models.SortNameAsc:
		less = func(a, b models.CourseRow) bool { return a.Name < b.Name }
	case models.SortNameDesc:
		less = func(a, b models.CourseRow) bool { return a.Name > b.Name }
	case models.SortCourseCodeAsc:
		less = func(a, b models.CourseRow) bool { return a.Code < b.Code }
	case models.SortCourseCodeDsc:
		less = func(a, b models.CourseRow) bool { return a.Code > b.Code }
	case models.SortHealthAsc:
		less = func(a, b models.CourseRow) bool { return a.Pulse.Health < b.Pulse.Health }
	case models.SortHealthDesc:
		less = func(a, b models.CourseRow) bool { return a.Pulse.Health > b.Pulse.Health }
	default:
		panic(fmt.Sprintf("query: unknown course sort key %q", key))
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
