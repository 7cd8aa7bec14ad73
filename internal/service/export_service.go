package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
	"github.com/campuskit/academy-api/pkg/export"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

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

// ExportResult carries a rendered roster export.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders scope-filtered rosters as CSV or PDF.
type ExportService struct {
	students studentRepository
	teachers teacherRepository
	scopes   scopeResolver
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(students studentRepository, teachers teacherRepository, scopes scopeResolver, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		students: students,
		teachers: teachers,
		scopes:   scopes,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
	}
}

// StudentRoster renders the student roster visible to the principal.
func (s *ExportService) StudentRoster(ctx context.Context, p models.Principal, filter models.StudentFilter, format ExportFormat) (*ExportResult, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	filter.Page = 0
	filter.PageSize = 0
	students, _, err := s.students.List(ctx, scope, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for export")
	}

	dataset := export.Dataset{
		Headers: []string{"Code", "Last Name", "First Name", "Status", "Site", "Registered"},
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Code":       st.Code,
			"Last Name":  st.LastName,
			"First Name": st.FirstName,
			"Status":     string(st.Status),
			"Site":       st.SiteID,
			"Registered": st.RegistrationDate.Format("2006-01-02"),
		})
	}
	return s.render(dataset, "Student Roster", "students", format)
}

// TeacherRoster renders the teacher roster visible to the principal.
func (s *ExportService) TeacherRoster(ctx context.Context, p models.Principal, filter models.TeacherFilter, format ExportFormat) (*ExportResult, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	filter.Page = 0
	filter.PageSize = 0
	teachers, _, err := s.teachers.List(ctx, scope, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers for export")
	}

	dataset := export.Dataset{
		Headers: []string{"Code", "Name", "Email", "Specialization", "Experience", "Active"},
	}
	for _, t := range teachers {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Code":           t.Code,
			"Name":           t.UserFullName,
			"Email":          t.UserEmail,
			"Specialization": t.Specialization,
			"Experience":     strconv.Itoa(t.ExperienceYears),
			"Active":         strconv.FormatBool(t.Active),
		})
	}
	return s.render(dataset, "Teacher Roster", "teachers", format)
}

func (s *ExportService) render(dataset export.Dataset, title, prefix string, format ExportFormat) (*ExportResult, error) {
	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.csv", prefix, stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.pdf", prefix, stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
