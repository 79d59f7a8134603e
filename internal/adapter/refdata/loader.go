// Package refdata loads the hand-curated reference datasets: the colony and
// outbreak-site CSVs and the country boundary collection.
package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/fennwick/carrionwatch/internal/domain"
)

// LoadTable reads a delimited reference file into the shared tabular shape.
// The first row is the header; column order is preserved for export. Lines
// starting with '#' and blank lines are skipped. A missing or unreadable
// file wraps domain.ErrMissingReferenceFile.
func LoadTable(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %s: %v", domain.ErrMissingReferenceFile, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: %s: %v", domain.ErrMissingReferenceFile, path, err)
	}
	if len(records) == 0 {
		return domain.Table{}, fmt.Errorf("%w: %s: empty file", domain.ErrMissingReferenceFile, path)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := domain.Table{Columns: header, Rows: make([]domain.Row, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make(domain.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
