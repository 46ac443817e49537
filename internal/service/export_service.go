package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/classtrack-api/internal/models"
	appErrors "github.com/campusops/classtrack-api/pkg/errors"
	"github.com/campusops/classtrack-api/pkg/export"
)

type exportReservationLister interface {
	ListAll(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, error)
}

type exportScheduleLister interface {
	ListForRoomDay(ctx context.Context, roomID, day string) ([]models.TimetableEntryDetail, error)
}

type exportRoomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportArchiver interface {
	Save(filename string, data []byte) (string, error)
}

// ExportFile is a rendered document ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders reservation and schedule data as downloadable files.
type ExportService struct {
	reservations exportReservationLister
	timetable    exportScheduleLister
	rooms        exportRoomFinder
	csv          csvRenderer
	pdf          pdfRenderer
	archive      exportArchiver
	logger       *zap.Logger
	now          func() time.Time
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Reservations exportReservationLister
	Timetable    exportScheduleLister
	Rooms        exportRoomFinder
	CSV          csvRenderer
	PDF          pdfRenderer
	Archive      exportArchiver
	Logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
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
	return &ExportService{
		reservations: params.Reservations,
		timetable:    params.Timetable,
		rooms:        params.Rooms,
		csv:          csv,
		pdf:          pdf,
		archive:      params.Archive,
		logger:       logger,
		now:          time.Now,
	}
}

// keepCopy writes the file to the archive when one is configured. Archive
// failures do not fail the download.
func (s *ExportService) keepCopy(file *ExportFile) {
	if s.archive == nil {
		return
	}
	rel, err := s.archive.Save(file.Filename, file.Payload)
	if err != nil {
		s.logger.Warn("failed to archive export", zap.String("filename", file.Filename), zap.Error(err))
		return
	}
	s.logger.Debug("export archived", zap.String("path", rel))
}

// ReservationsCSV renders reservations matching the filter as a CSV file.
func (s *ExportService) ReservationsCSV(ctx context.Context, filter models.ReservationFilter) (*ExportFile, error) {
	// Export the full match, not a page.
	filter.Page = 0
	filter.PageSize = 0
	rows, err := s.reservations.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations for export: %w", err)
	}

	dataRows := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		dataRows = append(dataRows, map[string]string{
			"Room":      r.RoomID,
			"Date":      r.Date,
			"Slot":      fmt.Sprintf("%s (%s-%s)", r.SlotLabel, r.StartTime, r.EndTime),
			"Purpose":   r.Purpose,
			"Booked By": r.BookedBy,
			"Booked At": r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Room", "Date", "Slot", "Purpose", "Booked By", "Booked At"},
		Rows:    dataRows,
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render reservations csv: %w", err)
	}

	s.logger.Info("reservations exported", zap.Int("rows", len(rows)))
	file := &ExportFile{
		Filename:    s.buildFilename("reservations", filter.RoomID, "csv"),
		ContentType: "text/csv",
		Payload:     payload,
	}
	s.keepCopy(file)
	return file, nil
}

// RoomSchedulePDF renders a room's weekly timetable for one day as a PDF.
func (s *ExportService) RoomSchedulePDF(ctx context.Context, roomID, day string) (*ExportFile, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, fmt.Errorf("load classroom %s: %w", roomID, err)
	}

	entries, err := s.timetable.ListForRoomDay(ctx, roomID, day)
	if err != nil {
		return nil, fmt.Errorf("list schedule for export: %w", err)
	}

	dataRows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		dataRows = append(dataRows, map[string]string{
			"Period":  e.SlotLabel,
			"Time":    fmt.Sprintf("%s - %s", e.StartTime, e.EndTime),
			"Subject": e.Subject,
			"Faculty": e.Faculty,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Period", "Time", "Subject", "Faculty"},
		Rows:    dataRows,
	}

	title := fmt.Sprintf("%s schedule for %s (Block %s, Floor %d)", room.ID, day, room.Block, room.Floor)
	payload, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, fmt.Errorf("render schedule pdf: %w", err)
	}

	s.logger.Info("room schedule exported", zap.String("room_id", roomID), zap.String("day", day))
	file := &ExportFile{
		Filename:    s.buildFilename("schedule", fmt.Sprintf("%s_%s", roomID, day), "pdf"),
		ContentType: "application/pdf",
		Payload:     payload,
	}
	s.keepCopy(file)
	return file, nil
}

func (s *ExportService) buildFilename(kind, scope, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	if scope == "" {
		scope = "all"
	}
	scope = strings.ToLower(strings.ReplaceAll(scope, " ", "_"))
	return fmt.Sprintf("%s_%s_%s.%s", kind, scope, timestamp, ext)
}
