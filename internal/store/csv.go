package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"strikewatch/internal/model"
)

// csvColumns is the published dataset schema. Column order is part of the
// contract; downstream notebooks index by position.
var csvColumns = []string{
	"Date", "City", "Region", "Facility Name", "Target Type",
	"Damage Summary", "Latitude", "Longitude", "Source Channel",
	"Confidence", "Maritime",
	"First Message Date", "Last Message Date", "Last Event Date",
	"Review Note",
}

// WriteCSV writes the canonical incidents as comma-separated rows with the
// fixed header.
func WriteCSV(w io.Writer, incidents []model.CanonicalIncident) error {
	return writeTable(w, incidents, ',')
}

// ExportCSV writes the dataset to a file, creating parent directories.
func ExportCSV(path string, incidents []model.CanonicalIncident) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, incidents); err != nil {
		return err
	}
	return file.Close()
}

// RenderPipeDelimited renders the dataset with '|' separators. The review
// prompt uses this form; free-text summaries are full of commas.
func RenderPipeDelimited(incidents []model.CanonicalIncident) (string, error) {
	var sb strings.Builder
	if err := writeTable(&sb, incidents, '|'); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ParsePipeDelimited reads a pipe-delimited table back into canonical
// incidents. Columns are matched by header name, unknown columns are
// ignored, and ragged rows are skipped; the review model does not always
// return a perfectly shaped table.
func ParsePipeDelimited(r io.Reader) ([]model.CanonicalIncident, error) {
	reader := csv.NewReader(r)
	reader.Comma = '|'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index["Date"]; !ok {
		return nil, fmt.Errorf("table has no Date column")
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	incidents := make([]model.CanonicalIncident, 0, len(rows)-1)
	for _, row := range rows[1:] {
		date := field(row, "Date")
		if date == "" {
			continue
		}
		incident := model.CanonicalIncident{
			Incident: model.Incident{
				Date:          date,
				City:          model.StringPtr(field(row, "City")),
				Region:        model.StringPtr(field(row, "Region")),
				FacilityName:  model.StringPtr(field(row, "Facility Name")),
				TargetType:    model.NormalizeTargetType(field(row, "Target Type")),
				DamageSummary: field(row, "Damage Summary"),
				Latitude:      parseCoord(field(row, "Latitude")),
				Longitude:     parseCoord(field(row, "Longitude")),
				SourceChannel: field(row, "Source Channel"),
				Confidence:    field(row, "Confidence"),
				Maritime:      strings.EqualFold(field(row, "Maritime"), "true"),
			},
			FirstMessageDate: field(row, "First Message Date"),
			LastMessageDate:  field(row, "Last Message Date"),
			LastEventDate:    field(row, "Last Event Date"),
			ReviewNote:       field(row, "Review Note"),
		}
		incidents = append(incidents, incident)
	}
	return incidents, nil
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return model.FloatPtr(v)
}

func writeTable(w io.Writer, incidents []model.CanonicalIncident, comma rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = comma

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, incident := range incidents {
		if err := writer.Write(csvRow(incident)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvRow(c model.CanonicalIncident) []string {
	return []string{
		c.Date,
		model.Deref(c.City),
		model.Deref(c.Region),
		model.Deref(c.FacilityName),
		c.TargetType,
		c.DamageSummary,
		formatCoord(c.Latitude),
		formatCoord(c.Longitude),
		c.SourceChannel,
		c.Confidence,
		strconv.FormatBool(c.Maritime),
		c.FirstMessageDate,
		c.LastMessageDate,
		c.LastEventDate,
		c.ReviewNote,
	}
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
