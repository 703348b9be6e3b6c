/*
sheet.go - Tabular sheet parsing

PURPOSE:
  Decodes an uploaded file into headers + string rows. The engine mandates
  only "tabular, header + data rows"; this implementation reads CSV. When
  the caller indicates the first row is data rather than headers, positional
  labels ("Column 1", "Column 2", ...) are synthesized and every row is
  kept as data.

FAILURE MODEL:
  Parse failures are surfaced as errors and nothing is created; the import
  flow stays open for retry. Nothing touches the ledger until the caller
  explicitly commits the mapped rows.
*/
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptySheet is returned when the file holds no rows at all.
	ErrEmptySheet = errors.New("sheet has no rows")

	// ErrNoHeaders is returned when no header row can be derived.
	ErrNoHeaders = errors.New("no headers found in the sheet")
)

// =============================================================================
// PARSED SHEET
// =============================================================================

// ParsedSheet is the decoded tabular content of an uploaded file.
type ParsedSheet struct {
	Headers  []string
	Rows     [][]string
	FileName string
}

// ParseSheet reads CSV data from r. With firstRowIsData the first row is
// treated as data and headers are synthesized positionally; otherwise the
// first row becomes the (trimmed) header row and the rest are data.
func ParseSheet(r io.Reader, fileName string, firstRowIsData bool) (*ParsedSheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are fine; mapping tolerates short rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}

	if firstRowIsData {
		headers := make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("Column %d", i+1)
		}
		if len(headers) == 0 {
			return nil, ErrNoHeaders
		}
		return &ParsedSheet{Headers: headers, Rows: records, FileName: fileName}, nil
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	if len(headers) == 0 {
		return nil, ErrNoHeaders
	}
	return &ParsedSheet{Headers: headers, Rows: records[1:], FileName: fileName}, nil
}
