// Package export renders booking agendas as Excel workbooks.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"nateiva/internal/config"
	"nateiva/internal/domain"
	"nateiva/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Agenda"

type Agenda struct {
	bookings domain.BookingService
	users    domain.UserRepository
	cfg      config.ExportConfig
	logger   *zerolog.Logger
}

func NewAgenda(bookings domain.BookingService, users domain.UserRepository, cfg config.ExportConfig, logger *zerolog.Logger) *Agenda {
	return &Agenda{
		bookings: bookings,
		users:    users,
		cfg:      cfg,
		logger:   logger,
	}
}

// Export writes the bookings between start and end into an xlsx file, one
// row per booking, grouped by date. Returns the file path.
func (a *Agenda) Export(ctx context.Context, start, end time.Time) (string, error) {
	if err := os.MkdirAll(a.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	daily, err := a.bookings.DailyBookings(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	a.writeTitle(f, start, end)
	a.writeHeaders(f)

	row := 3
	for _, dateKey := range sortedDates(daily) {
		for _, booking := range daily[dateKey] {
			a.writeBookingRow(ctx, f, row, dateKey, booking)
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 12)
	_ = f.SetColWidth(sheetName, "C", "E", 20)
	_ = f.SetColWidth(sheetName, "F", "G", 12)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("agenda_%s_to_%s.xlsx",
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	filePath := filepath.Join(a.cfg.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	a.logger.Info().Str("file_path", filePath).Msg("agenda exported")
	return filePath, nil
}

func (a *Agenda) writeTitle(f *excelize.File, start, end time.Time) {
	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Agenda %s - %s",
		start.Format(models.DateLayout), end.Format(models.DateLayout)))
	_ = f.MergeCell(sheetName, "A1", "G1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)
}

func (a *Agenda) writeHeaders(f *excelize.File) {
	headers := []string{"Date", "Time", "Learner", "Tutor", "Subject", "Status", "Price"}
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func (a *Agenda) writeBookingRow(ctx context.Context, f *excelize.File, row int, dateKey string, booking *models.Booking) {
	timeRange := fmt.Sprintf("%s-%s",
		booking.StartTime.Format("15:04"), booking.EndTime.Format("15:04"))

	values := []interface{}{
		dateKey,
		timeRange,
		a.userName(ctx, booking.LearnerID),
		a.userName(ctx, booking.TutorID),
		booking.Subject,
		booking.Status,
		booking.Price,
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}

	if styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{statusColor(booking.Status)}, Pattern: 1},
	}); err == nil {
		statusCell, _ := excelize.CoordinatesToCellName(6, row)
		_ = f.SetCellStyle(sheetName, statusCell, statusCell, styleID)
	}
}

// userName resolves a display name, falling back to the raw id.
func (a *Agenda) userName(ctx context.Context, id string) string {
	user, err := a.users.GetUser(ctx, id)
	if err != nil {
		return id
	}
	return user.Name
}

func statusColor(status string) string {
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		return "#C6EFCE"
	case models.StatusPending:
		return "#FFEB9C"
	default:
		return "#FFC7CE"
	}
}

func sortedDates(daily map[string][]*models.Booking) []string {
	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
