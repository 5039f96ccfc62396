package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/models"
	appErrors "github.com/noah-isme/cams/pkg/errors"
	"github.com/noah-isme/cams/pkg/export"
)

// ReportFormat is the output format of a camp report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportOptions selects the format and optionally restricts the participant role.
type ReportOptions struct {
	Format ReportFormat    `validate:"required,oneof=csv pdf"`
	Role   models.CampRole `validate:"omitempty,oneof=ATTENDEE COMMITTEE"`
}

// ReportResult describes a stored report.
type ReportResult struct {
	RelativePath string
	Path         string
	Format       ReportFormat
	Participants int
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

var reportHeaders = []string{"Camp ID", "Camp Name", "Student ID", "Name", "Faculty", "Role"}

// ReportService renders participant lists of camps and stores them as files.
type ReportService struct {
	camps     campStore
	students  userStore
	storage   reportStorage
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService. Nil renderers fall back to the pkg/export ones.
func NewReportService(camps campStore, students userStore, storage reportStorage, csv csvRenderer, pdf pdfRenderer, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		camps:     camps,
		students:  students,
		storage:   storage,
		csv:       csv,
		pdf:       pdf,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateCampReport writes the participant list of a camp the staff member owns.
func (s *ReportService) GenerateCampReport(ctx context.Context, staff models.User, campID string, opts ReportOptions) (*ReportResult, error) {
	if err := s.validator.Struct(opts); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid report options")
	}
	camp, err := s.camps.Read(ctx, campID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(staff, camp); err != nil {
		return nil, err
	}

	dataset := s.buildDataset(ctx, camp, opts.Role)
	var payload []byte
	switch opts.Format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Camp Report %s", camp.Name))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render report")
	}

	relPath, err := s.storage.Save(s.buildFilename(camp, opts.Format), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, "failed to store report")
	}
	s.logger.Info("camp report generated", zap.String("camp_id", campID), zap.String("path", relPath), zap.Int("participants", len(dataset.Rows)))
	return &ReportResult{
		RelativePath: relPath,
		Path:         s.storage.Path(relPath),
		Format:       opts.Format,
		Participants: len(dataset.Rows),
	}, nil
}

func (s *ReportService) buildDataset(ctx context.Context, camp models.Camp, role models.CampRole) export.Dataset {
	rows := make([]map[string]string, 0, camp.RegistrationCount())
	add := func(ids []string, label models.CampRole) {
		if role != "" && role != label {
			return
		}
		for _, id := range ids {
			row := map[string]string{
				"Camp ID":    camp.ID,
				"Camp Name":  camp.Name,
				"Student ID": id,
				"Role":       string(label),
			}
			if student, err := s.students.Read(ctx, id); err == nil {
				row["Name"] = student.Name
				row["Faculty"] = string(student.Faculty)
			} else {
				s.logger.Warn("participant missing from student records", zap.String("camp_id", camp.ID), zap.String("student_id", id))
			}
			rows = append(rows, row)
		}
	}
	add(camp.CommitteeIDs, models.CampRoleCommittee)
	add(camp.AttendeeIDs, models.CampRoleAttendee)

	return export.Dataset{
		Headers: reportHeaders,
		Rows:    rows,
		Notes:   strings.Split(strings.TrimRight(camp.DisplayString(), "\n"), "\n"),
	}
}

func (s *ReportService) buildFilename(camp models.Camp, format ReportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(camp.ID), timestamp, uuid.NewString()[:8], format)
}
