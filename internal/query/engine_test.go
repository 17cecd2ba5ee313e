package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-pulse-api/internal/models"
	"github.com/noah-isme/course-pulse-api/internal/store"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *store.Store
	course  models.Course
	lecture models.Lecture
}

// newFixture builds one course with a roster of students whose latest
// feedback is the given number of days old; -1 means no feedback at all.
func newFixture(t *testing.T, silentDaysByStudent []int) fixture {
	t.Helper()
	st := store.New().WithClock(func() time.Time { return testNow })
	course, err := st.CreateCourse(models.Course{Code: "CS101", Name: "Intro to CS", Department: "CS", ProfessorID: "prof-1"})
	require.NoError(t, err)
	lecture, err := st.CreateLecture(models.Lecture{CourseID: course.ID, Date: testNow})
	require.NoError(t, err)

	for i, silentDays := range silentDaysByStudent {
		student, err := st.CreateStudent(models.Student{
			Name:       fmt.Sprintf("Student %02d", i),
			Email:      fmt.Sprintf("s%02d@example.edu", i),
			RollNumber: fmt.Sprintf("R%02d", i),
		})
		require.NoError(t, err)
		_, err = st.CreateEnrollment(student.ID, course.ID)
		require.NoError(t, err)
		if silentDays >= 0 {
			_, err = st.CreateFeedback(models.FeedbackEntry{
				LectureID:     lecture.ID,
				StudentID:     student.ID,
				Understanding: models.UnderstandingFully,
				CreatedAt:     testNow.AddDate(0, 0, -silentDays),
			})
			require.NoError(t, err)
		}
	}
	return fixture{store: st, course: course, lecture: lecture}
}

func baseQuery() models.StudentQuery {
	return models.StudentQuery{
		Filter:   models.StudentFilterAll,
		Sort:     models.SortNameAsc,
		Page:     1,
		PageSize: 50,
	}
}

func TestStudentsSearchNarrows(t *testing.T) {
	fx := newFixture(t, []int{0, 0, 0})
	req := baseQuery()
	req.Search = "s01@"

	result := Students(fx.store.Snapshot(), req, testNow)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Student 01", result.Items[0].Name)
	assert.Equal(t, 1, result.TotalFiltered)
}

func TestStudentsSilentFilterUsesListThreshold(t *testing.T) {
	// The list filter flags students at 5+ silent days, looser than the
	// badge threshold of 7. Both views are intentional.
	fx := newFixture(t, []int{4, 5, 6, 8})
	req := baseQuery()
	req.Filter = models.StudentFilterSilent

	result := Students(fx.store.Snapshot(), req, testNow)
	require.Len(t, result.Items, 3)
	for _, row := range result.Items {
		assert.GreaterOrEqual(t, row.SilentDays, FilterSilentAfterDays)
	}
}

func TestStudentsSortIsStableOnTies(t *testing.T) {
	// Every student has an identical health score, so a health sort must
	// preserve insertion order.
	fx := newFixture(t, []int{0, 0, 0, 0})
	req := baseQuery()
	req.Sort = models.SortHealthDesc

	result := Students(fx.store.Snapshot(), req, testNow)
	require.Len(t, result.Items, 4)
	for i, row := range result.Items {
		assert.Equal(t, fmt.Sprintf("Student %02d", i), row.Name)
	}
}

func TestStudentsQueryIsIdempotent(t *testing.T) {
	fx := newFixture(t, []int{3, 0, 8, 1})
	req := baseQuery()
	req.Sort = models.SortActivityDesc

	first := Students(fx.store.Snapshot(), req, testNow)
	second := Students(fx.store.Snapshot(), req, testNow)
	assert.Equal(t, first, second)
}

func TestStudentsCumulativePaging(t *testing.T) {
	fx := newFixture(t, []int{0, 0, 0, 0, 0})
	req := baseQuery()
	req.PageSize = 2

	req.Page = 1
	page1 := Students(fx.store.Snapshot(), req, testNow)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	assert.Equal(t, 5, page1.TotalFiltered)

	req.Page = 2
	page2 := Students(fx.store.Snapshot(), req, testNow)
	require.Len(t, page2.Items, 4)
	// Page 2 extends page 1: the earlier rows reappear in place.
	assert.Equal(t, page1.Items, page2.Items[:2])

	req.Page = 3
	page3 := Students(fx.store.Snapshot(), req, testNow)
	require.Len(t, page3.Items, 5)
	assert.False(t, page3.HasMore)

	// No duplicates across the full window.
	seen := map[string]bool{}
	for _, row := range page3.Items {
		assert.False(t, seen[row.ID])
		seen[row.ID] = true
	}
}

func TestStudentsUnknownEnumsPanic(t *testing.T) {
	fx := newFixture(t, []int{0})
	snap := fx.store.Snapshot()

	req := baseQuery()
	req.Filter = models.StudentFilter("bogus")
	assert.Panics(t, func() { Students(snap, req, testNow) })

	req = baseQuery()
	req.Sort = models.SortKey("bogus")
	assert.Panics(t, func() { Students(snap, req, testNow) })
}

func TestCoursesSearchAndFilter(t *testing.T) {
	st := store.New().WithClock(func() time.Time { return testNow })
	cs, err := st.CreateCourse(models.Course{Code: "CS101", Name: "Intro to CS", Department: "CS", ProfessorID: "prof-1"})
	require.NoError(t, err)
	_, err = st.CreateCourse(models.Course{Code: "MA201", Name: "Linear Algebra", Department: "Math", ProfessorID: "prof-1"})
	require.NoError(t, err)
	_, err = st.ArchiveCourses([]string{cs.ID})
	require.NoError(t, err)

	req := models.CourseQuery{
		ProfessorID: "prof-1",
		Search:      "cs1",
		Filter:      models.CourseFilterAll,
		Sort:        models.SortCourseCodeAsc,
		Page:        1,
		PageSize:    50,
	}
	result := Courses(st.Snapshot(), req, testNow)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "CS101", result.Items[0].Code)

	req.Search = ""
	req.Filter = models.CourseFilterArchived
	result = Courses(st.Snapshot(), req, testNow)
	require.Len(t, result.Items, 1)
	assert.Equal(t, models.CourseStatusArchived, result.Items[0].Status)

	req.Filter = models.CourseFilterActive
	result = Courses(st.Snapshot(), req, testNow)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "MA201", result.Items[0].Code)
}

func TestCoursesForeignProfessorSeesNothing(t *testing.T) {
	st := store.New().WithClock(func() time.Time { return testNow })
	_, err := st.CreateCourse(models.Course{Code: "CS101", Name: "Intro to CS", ProfessorID: "prof-1"})
	require.NoError(t, err)

	req := models.CourseQuery{
		ProfessorID: "prof-2",
		Filter:      models.CourseFilterAll,
		Sort:        models.SortNameAsc,
		Page:        1,
		PageSize:    50,
	}
	result := Courses(st.Snapshot(), req, testNow)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalFiltered)
}
