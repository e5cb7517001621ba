package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// ApplicationsCSV renders staff application listings into CSV bytes.
type ApplicationsCSV struct{}

// NewApplicationsCSV builds the exporter.
func NewApplicationsCSV() *ApplicationsCSV {
	return &ApplicationsCSV{}
}

// Render produces one CSV row per application.
func (e *ApplicationsCSV) Render(apps []models.ApplicationDetail) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	header := []string{"control_number", "full_name", "career", "semester", "scholarship", "status", "release_folio", "created_at"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, app := range apps {
		folio := ""
		if app.ReleaseFolio != nil {
			folio = *app.ReleaseFolio
		}
		record := []string{
			app.ControlNumber,
			app.FullName,
			app.Career,
			app.Semester,
			app.ScholarshipName,
			string(app.Status),
			folio,
			app.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
