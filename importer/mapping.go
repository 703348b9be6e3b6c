/*
Package importer turns tabular sheet data into candidate lead rows.

PURPOSE:
  Bulk import works in two independent steps:
  1. Column auto-detection: guess which sheet column holds which lead field
     (name, phone, address, age, gender) from the header row.
  2. Row mapping: extract trimmed string values per mapped column.

  The mapper performs no validation and never touches the ledger. The caller
  filters rows (a usable row needs a non-empty name AND phone) and feeds the
  survivors into lead creation one by one.

DETECTION RULES:
  - Headers are normalized: trim, lowercase, collapse internal whitespace.
  - Fields are checked in a fixed order (name, phone, address, age, gender),
    so a header matching several fields is claimed by the earliest-checked
    field only.
  - Per field, the first matching not-yet-claimed header index wins. A later
    header that matches an already-filled field stays unmapped; it is NOT
    reassigned to some other field it doesn't match.

SEE ALSO:
  - sheet.go: CSV parsing and header synthesis
*/
package importer

import "strings"

// NoColumn marks an undetected field in a ColumnMapping.
const NoColumn = -1

// ColumnMapping holds the column index per lead field, or NoColumn.
type ColumnMapping struct {
	Name    int `json:"name"`
	Phone   int `json:"phone"`
	Address int `json:"address"`
	Age     int `json:"age"`
	Gender  int `json:"gender"`
}

// MappedRow is a candidate lead extracted from one sheet row.
type MappedRow struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Age     string `json:"age"`
	Gender  string `json:"gender"`
}

// Valid reports whether the row can become a lead: non-empty name and phone.
func (r MappedRow) Valid() bool {
	return strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.Phone) != ""
}

// Synonym patterns per field. A normalized header matches when it equals or
// contains one of these.
var (
	namePatterns    = []string{"name", "full name", "customer name", "lead name", "contact name", "client name"}
	phonePatterns   = []string{"phone", "mobile", "contact", "number", "phone number", "mobile number", "telephone", "contact no"}
	addressPatterns = []string{"address", "location", "city", "street", "address line"}
	agePatterns     = []string{"age", "dob", "date of birth", "years"}
	genderPatterns  = []string{"gender", "sex", "male/female"}
)

// normalizeHeader lowercases, trims, and collapses internal whitespace.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

func matchesAny(header string, patterns []string) bool {
	for _, p := range patterns {
		if header == p || strings.Contains(header, p) {
			return true
		}
	}
	return false
}

// AutoDetectMapping scans headers left-to-right and assigns each to the
// first field (in fixed field order) whose patterns it matches and whose
// slot is still open. Unmatched fields stay NoColumn.
func AutoDetectMapping(headers []string) ColumnMapping {
	mapping := ColumnMapping{
		Name:    NoColumn,
		Phone:   NoColumn,
		Address: NoColumn,
		Age:     NoColumn,
		Gender:  NoColumn,
	}

	for index, header := range headers {
		n := normalizeHeader(header)
		if n == "" {
			continue
		}
		switch {
		case matchesAny(n, namePatterns) && mapping.Name == NoColumn:
			mapping.Name = index
		case matchesAny(n, phonePatterns) && mapping.Phone == NoColumn:
			mapping.Phone = index
		case matchesAny(n, addressPatterns) && mapping.Address == NoColumn:
			mapping.Address = index
		case matchesAny(n, agePatterns) && mapping.Age == NoColumn:
			mapping.Age = index
		case matchesAny(n, genderPatterns) && mapping.Gender == NoColumn:
			mapping.Gender = index
		}
	}

	return mapping
}

// cell extracts the trimmed value at colIndex, or "" when the index is
// NoColumn or out of range.
func cell(row []string, colIndex int) string {
	if colIndex < 0 || colIndex >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[colIndex])
}

// MapRows applies a column mapping to every row. No validation; empty
// fields come out as empty strings.
func MapRows(rows [][]string, mapping ColumnMapping) []MappedRow {
	mapped := make([]MappedRow, len(rows))
	for i, row := range rows {
		mapped[i] = MappedRow{
			Name:    cell(row, mapping.Name),
			Phone:   cell(row, mapping.Phone),
			Address: cell(row, mapping.Address),
			Age:     cell(row, mapping.Age),
			Gender:  cell(row, mapping.Gender),
		}
	}
	return mapped
}
