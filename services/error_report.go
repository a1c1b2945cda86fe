package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"catalog-service/models"
)

// GenerateErrorCSV renders failed rows for download: the row number, the
// errors joined by "; ", then the original cells in header order.
func GenerateErrorCSV(failed []models.ValidationResult, original []models.RawRow) (string, error) {
	columns := Columns(original)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append([]string{"Row", "Errors"}, columns...)); err != nil {
		return "", fmt.Errorf("write error csv header: %w", err)
	}
	for _, res := range failed {
		record := make([]string, 0, len(columns)+2)
		record = append(record, strconv.Itoa(res.RowNumber), strings.Join(res.Errors, "; "))
		var row models.RawRow
		if idx := res.RowNumber - 1; idx >= 0 && idx < len(original) {
			row = original[idx]
		}
		for _, c := range columns {
			v, _ := row.Get(c)
			record = append(record, v)
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write error csv row %d: %w", res.RowNumber, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush error csv: %w", err)
	}
	return buf.String(), nil
}
