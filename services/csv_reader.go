package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"catalog-service/models"
)

var (
	ErrMissingHeader = errors.New("CSV must include a header row")
	ErrCSVParse      = errors.New("CSV parsing failed")
)

// ParseCSV reads a header row followed by data lines. Blank lines are skipped.
// Any malformed line fails the whole parse and no rows are returned.
func ParseCSV(r io.Reader) ([]models.RawRow, error) {
	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCSVParse, err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if seen[h] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrCSVParse, h)
		}
		seen[h] = true
	}

	var rows []models.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCSVParse, err)
		}
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			values[h] = record[i]
		}
		rows = append(rows, models.RawRow{Columns: headers, Values: values})
	}
	return rows, nil
}

// Columns returns the header of a parsed file, or nil when it has no data rows.
func Columns(rows []models.RawRow) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Columns
}
