package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/google/uuid"
)

// ErrNoData is returned when the input has no header or no data rows.
var ErrNoData = errors.New("no data found in CSV file")

// RowError rejects one data row. Rows are numbered as in a spreadsheet:
// the header is row 1 and the first data row is row 2.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// ImportReport is the outcome of one import batch.
type ImportReport struct {
	BatchID  string       `json:"batchId"`
	Imported []cases.Case `json:"imported"`
	Errors   []RowError   `json:"errors"`
}

// Summary is the notification text shown after an import.
func (r *ImportReport) Summary() string {
	switch {
	case len(r.Imported) > 0 && len(r.Errors) > 0:
		return fmt.Sprintf("Successfully imported %d cases, %d rows had errors", len(r.Imported), len(r.Errors))
	case len(r.Imported) > 0:
		return fmt.Sprintf("Successfully imported %d cases", len(r.Imported))
	case len(r.Errors) > 0:
		return fmt.Sprintf("Import failed with %d errors", len(r.Errors))
	default:
		return "No valid cases found in the CSV file"
	}
}

// column keys, normalised from the header names
const (
	colTitle        = "title"
	colDescription  = "description"
	colType         = "type"
	colStatus       = "status"
	colComplainant  = "complainant"
	colRespondent   = "respondent"
	colFiledDate    = "fileddate"
	colResolvedDate = "resolveddate"
	colUpdatedAt    = "updatedat"
)

var requiredColumns = []struct {
	key  string
	name string
}{
	{colTitle, "Title"},
	{colComplainant, "Complainant"},
	{colRespondent, "Respondent"},
}

var dateLayouts = []string{cases.DateLayout, "2006/01/02", "1/2/2006", "Jan 2, 2006", "January 2, 2006"}

// Import parses CSV text with a header row into new cases. Columns are found
// by name in any order. Rows missing a title, complainant or respondent are
// rejected without stopping the batch; unknown types and statuses default to
// other and pending. Each accepted row gets a fresh identifier computed from
// existing plus the rows accepted before it. Input identifiers are ignored.
// Text fields are stored as parsed; only the required checks, type, status
// and dates see trimmed values.
func Import(r io.Reader, existing []cases.Case, now time.Time) (*ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	columns := indexHeader(header)

	today := cases.Today(now)
	report := &ImportReport{BatchID: uuid.NewString(), Imported: []cases.Case{}, Errors: []RowError{}}
	ids := cases.NewIDAllocator(existing, now)

	dataRows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing CSV: %w", err)
		}
		if blank(record) {
			continue
		}
		dataRows++
		rowNumber := dataRows + 1

		// raw keeps free text exactly as written; get trims for checks and parsing.
		raw := func(key string) string {
			i, ok := columns[key]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		get := func(key string) string {
			return strings.TrimSpace(raw(key))
		}

		if rowErr := checkRequired(rowNumber, get); rowErr != nil {
			report.Errors = append(report.Errors, *rowErr)
			continue
		}

		caseType := cases.ParseType(get(colType))
		status := cases.ParseStatus(get(colStatus))

		c := cases.Case{
			ID:           ids.Next(caseType),
			Title:        raw(colTitle),
			Description:  raw(colDescription),
			Complainant:  raw(colComplainant),
			Respondent:   raw(colRespondent),
			Type:         caseType,
			Status:       status,
			FiledDate:    normalizeDate(get(colFiledDate), today),
			ResolvedDate: normalizeDate(get(colResolvedDate), ""),
			UpdatedAt:    normalizeDate(get(colUpdatedAt), today),
			Tags:         []string{string(caseType)},
		}
		if status == cases.StatusResolved && c.ResolvedDate == "" {
			c.ResolvedDate = today
		}

		report.Imported = append(report.Imported, c)
	}

	if dataRows == 0 {
		return nil, ErrNoData
	}
	return report, nil
}

func checkRequired(row int, get func(string) string) *RowError {
	for _, col := range requiredColumns {
		if get(col.key) == "" {
			return &RowError{
				Row:     row,
				Field:   col.name,
				Message: fmt.Sprintf("Missing required field '%s'", col.name),
			}
		}
	}
	return nil
}

func indexHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := normalizeHeader(name)
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	return columns
}

// normalizeHeader lets "Filed Date", "FiledDate" and "filed_date" match.
func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

// normalizeDate returns value as YYYY-MM-DD, or def when it is empty or unreadable.
func normalizeDate(value, def string) string {
	if value == "" {
		return def
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(cases.DateLayout)
		}
	}
	return def
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
