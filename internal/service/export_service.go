package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-pulse-api/internal/models"
	appErrors "github.com/noah-isme/course-pulse-api/pkg/errors"
	"github.com/noah-isme/course-pulse-api/pkg/export"
)

// ExportFormat selects the rendered output.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportRendering is a rendered export ready for download.
type ExportRendering struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// ExportService turns selected rows into a flat tabular snapshot. The export
// is a pure projection of the rows it is handed: no store state changes and
// the selection survives.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// StudentsDataset builds the tabular snapshot for student rows. When the
// selection is non-empty only selected rows are kept; an empty selection
// exports the whole page.
func (s *ExportService) StudentsDataset(rows []models.StudentInsight, selected []string) export.Dataset {
	rows = selectStudentRows(rows, selected)
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Name":        row.Name,
			"Email":       row.Email,
			"Roll Number": row.RollNumber,
			"Health":      fmt.Sprintf("%d", row.Health),
			"Silent Days": fmt.Sprintf("%d", row.SilentDays),
			"Status":      string(row.Status),
		})
	}
	return export.Dataset{
		Headers: []string{"Name", "Email", "Roll Number", "Health", "Silent Days", "Status"},
		Rows:    dataRows,
	}
}

// CoursesDataset builds the tabular snapshot for course rows.
func (s *ExportService) CoursesDataset(rows []models.CourseRow, selected []string) export.Dataset {
	rows = selectCourseRows(rows, selected)
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Code":       row.Code,
			"Name":       row.Name,
			"Department": row.Department,
			"Status":     string(row.Status),
			"Health":     fmt.Sprintf("%.1f", row.Pulse.Health),
			"Students":   fmt.Sprintf("%d", row.Pulse.StudentCount),
			"Lectures":   fmt.Sprintf("%d", row.Pulse.LectureCount),
		})
	}
	return export.Dataset{
		Headers: []string{"Code", "Name", "Department", "Status", "Health", "Students", "Lectures"},
		Rows:    dataRows,
	}
}

// Render produces the downloadable bytes for a dataset.
func (s *ExportService) Render(dataset export.Dataset, format ExportFormat, title string) (*ExportRendering, error) {
	stamp := s.now().UTC().Format("20060102_150405")
	name := strings.ToLower(strings.ReplaceAll(title, " ", "_"))

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv export")
		}
		return &ExportRendering{
			Payload:     payload,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("%s_%s.csv", name, stamp),
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf export")
		}
		return &ExportRendering{
			Payload:     payload,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("%s_%s.pdf", name, stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func selectStudentRows(rows []models.StudentInsight, selected []string) []models.StudentInsight {
	if len(selected) == 0 {
		return rows
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		wanted[id] = struct{}{}
	}
	out := make([]models.StudentInsight, 0, len(selected))
	for _, row := range rows {
		if _, ok := wanted[row.ID]; ok {
			out = append(out, row)
		}
	}
	return out
}

func selectCourseRows(rows []models.CourseRow, selected []string) []models.CourseRow {
	if len(selected) == 0 {
		return rows
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		wanted[id] = struct{}{}
	}
	out := make([]models.CourseRow, 0, len(selected))
	for _, row := range rows {
		if _, ok := wanted[row.ID]; ok {
			out = append(out, row)
		}
	}
	return out
}
