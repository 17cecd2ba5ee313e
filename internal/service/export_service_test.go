package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
)

func insightRow(id, name string, healthScore int) models.StudentInsight {
	return models.StudentInsight{
		Student: models.Student{ID: id, Name: name, Email: name + "@example.edu", RollNumber: "R-" + id},
		Health:  healthScore,
		Status:  models.StudentStatusActive,
	}
}

func TestStudentsDatasetSelectionSubset(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())
	rows := []models.StudentInsight{
		insightRow("s1", "Ada", 90),
		insightRow("s2", "Bob", 70),
		insightRow("s3", "Cleo", 50),
	}

	t.Run("empty selection exports the whole page", func(t *testing.T) {
		dataset := svc.StudentsDataset(rows, nil)
		assert.Len(t, dataset.Rows, 3)
	})

	t.Run("non-empty selection narrows to selected rows", func(t *testing.T) {
		dataset := svc.StudentsDataset(rows, []string{"s3", "s1"})
		require.Len(t, dataset.Rows, 2)
		assert.Equal(t, "Ada", dataset.Rows[0]["Name"])
		assert.Equal(t, "Cleo", dataset.Rows[1]["Name"])
	})

	t.Run("selected ids outside the page are ignored", func(t *testing.T) {
		dataset := svc.StudentsDataset(rows, []string{"s2", "ghost"})
		require.Len(t, dataset.Rows, 1)
		assert.Equal(t, "Bob", dataset.Rows[0]["Name"])
	})
}

func TestRenderCSV(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())
	dataset := svc.StudentsDataset([]models.StudentInsight{insightRow("s1", "Ada", 90)}, nil)

	rendering, err := svc.Render(dataset, ExportFormatCSV, "Students")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", rendering.ContentType)
	assert.True(t, strings.HasPrefix(rendering.Filename, "students_"))
	assert.True(t, strings.HasSuffix(rendering.Filename, ".csv"))

	body := string(rendering.Payload)
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	assert.Contains(t, body, "Name,Email,Roll Number,Health,Silent Days,Status")
	assert.Contains(t, body, "Ada")
}

func TestRenderPDF(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())
	dataset := svc.CoursesDataset([]models.CourseRow{{
		Course: models.Course{ID: "c1", Code: "CS101", Name: "Intro", Status: models.CourseStatusActive},
		Pulse:  models.CoursePulse{CourseID: "c1", Health: 80},
	}}, nil)

	rendering, err := svc.Render(dataset, ExportFormatPDF, "Courses")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", rendering.ContentType)
	assert.True(t, strings.HasSuffix(rendering.Filename, ".pdf"))
	assert.NotEmpty(t, rendering.Payload)
}

func TestRenderUnknownFormat(t *testing.T) {
	svc := NewExportService(nil, nil, zap.NewNop())
	_, err := svc.Render(svc.StudentsDataset(nil, nil), ExportFormat("xlsx"), "Students")
	assert.Error(t, err)
}
