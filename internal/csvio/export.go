package csvio

import (
	"bufio"
	"io"
	"strings"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
)

// ExportHeader is the header row written by Export.
var ExportHeader = []string{
	"Case ID",
	"Title",
	"Description",
	"Type",
	"Status",
	"Complainant",
	"Respondent",
	"Filed Date",
	"Resolved Date",
	"Updated At",
}

// Export writes all as comma separated text. Free text fields are always
// wrapped in double quotes with embedded quotes doubled; rows are separated
// by a single newline with none after the last row.
func Export(w io.Writer, all []cases.Case) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(ExportHeader, ",")); err != nil {
		return err
	}

	for _, c := range all {
		row := []string{
			c.ID,
			quote(c.Title),
			quote(c.Description),
			string(c.Type),
			string(c.Status),
			quote(c.Complainant),
			quote(c.Respondent),
			c.FiledDate,
			c.ResolvedDate,
			c.UpdatedAt,
		}
		if _, err := bw.WriteString("\n" + strings.Join(row, ",")); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
