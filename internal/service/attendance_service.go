package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
	"github.com/noah-isme/campus-attend-api/pkg/export"
)

type attendanceStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.AttendanceRecord, error)
	Get(ctx context.Context, userID, classID, date string) (*models.AttendanceRecord, error)
	Upsert(ctx context.Context, mark models.AttendanceMark) (*models.AttendanceRecord, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects an attendance export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered attendance history download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttendanceService exposes the attendance history: listing, manual
// correction and export. Automated marking goes through the inference
// engine, not here.
type AttendanceService struct {
	repo      attendanceStore
	stats     statsInvalidator
	metrics   *MetricsService
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// AttendanceServiceParams groups constructor dependencies.
type AttendanceServiceParams struct {
	Repo      attendanceStore
	Stats     statsInvalidator
	Metrics   *MetricsService
	CSV       csvRenderer
	PDF       pdfRenderer
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	svc := &AttendanceService{
		repo:      params.Repo,
		stats:     params.Stats,
		metrics:   params.Metrics,
		csv:       csv,
		pdf:       pdf,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	svc.validator.RegisterValidation("attendancestatus", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// List returns a user's attendance history, newest date first.
func (s *AttendanceService) List(ctx context.Context, userID string) ([]models.AttendanceRecord, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list attendance")
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date == records[j].Date {
			return records[i].ClassID < records[j].ClassID
		}
		return records[i].Date > records[j].Date
	})
	return records, nil
}

// ManualMarkRequest describes a user-issued attendance correction.
type ManualMarkRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	ClassName string `json:"className"`
	ClassCode string `json:"classCode"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,attendancestatus"`
}

// ManualMark records a manual attendance value. Manual writes always win
// over the automated engine, including later passes for the same day.
func (s *AttendanceService) ManualMark(ctx context.Context, userID string, req ManualMarkRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	rec, err := s.repo.Upsert(ctx, models.AttendanceMark{
		UserID:    userID,
		ClassID:   req.ClassID,
		ClassName: req.ClassName,
		ClassCode: req.ClassCode,
		Date:      req.Date,
		Status:    models.AttendanceStatus(req.Status),
		Manual:    true,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to record attendance")
	}
	s.metrics.ObserveMark(string(rec.Status))
	if s.stats != nil {
		s.stats.Invalidate(ctx, userID)
	}
	s.logger.Sugar().Infow("manual attendance recorded",
		"user_id", userID, "class_id", req.ClassID, "date", req.Date, "status", req.Status)
	return rec, nil
}

// Export renders the user's attendance history as a downloadable file.
func (s *AttendanceService) Export(ctx context.Context, userID string, format ExportFormat) (*ExportFile, error) {
	records, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	dataset := buildAttendanceDataset(records)
	stamp := s.now().UTC().Format("2006-01-02")

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("attendance-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, "Attendance Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("attendance-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+string(format))
	}
}

func buildAttendanceDataset(records []models.AttendanceRecord) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Date", "Class", "Code", "Status", "Recorded"},
	}
	for _, rec := range records {
		name := rec.ClassName
		if name == "" {
			name = rec.ClassID
		}
		recorded := "auto"
		if rec.ManuallyRecorded {
			recorded = "manual"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     rec.Date,
			"Class":    name,
			"Code":     rec.ClassCode,
			"Status":   string(rec.Status),
			"Recorded": recorded,
		})
	}
	return dataset
}
