package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/JustJay7/barangay-case-dashboard/internal/cases"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importNow = time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

func TestExportFormat(t *testing.T) {
	all := []cases.Case{{
		ID:          "NO-2025-001",
		Title:       `Loud "videoke" nights`,
		Description: "Every Friday, until 2am",
		Type:        cases.TypeNoise,
		Status:      cases.StatusOngoing,
		Complainant: "Ricardo Dalisay",
		Respondent:  "James Reyes",
		FiledDate:   "2025-05-01",
		UpdatedAt:   "2025-05-03",
	}}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, all))

	want := "Case ID,Title,Description,Type,Status,Complainant,Respondent,Filed Date,Resolved Date,Updated At\n" +
		`NO-2025-001,"Loud ""videoke"" nights","Every Friday, until 2am",noise,ongoing,"Ricardo Dalisay","James Reyes",2025-05-01,,2025-05-03`
	assert.Equal(t, want, buf.String())
}

func TestExportImportRoundTrip(t *testing.T) {
	original := []cases.Case{
		{
			ID: "PR-2024-007", Title: `Fence "moved" again`, Description: "Line one\nline two, with comma",
			Type: cases.TypeProperty, Status: cases.StatusResolved, Complainant: "Juan Dela Cruz", Respondent: "Maria Santos",
			FiledDate: "2024-06-12", ResolvedDate: "2024-07-20", UpdatedAt: "2024-07-20", Tags: []string{"property", "boundary"},
		},
		{
			ID: "HR-2024-002", Title: "Verbal harassment", Description: "",
			Type: cases.TypeHarassment, Status: cases.StatusPending, Complainant: "Anna Lim", Respondent: "Pedro Tan",
			FiledDate: "2024-08-01", UpdatedAt: "2024-08-15", Tags: []string{"harassment"},
		},
		{
			ID: "DS-2024-011", Title: "Shared well", Description: "  indented\n",
			Type: cases.TypeDispute, Status: cases.StatusDismissed, Complainant: "Elena Cruz", Respondent: "Roberto Diaz",
			FiledDate: "2024-09-03", UpdatedAt: "2024-09-10", Tags: []string{"dispute"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, original))

	report, err := Import(&buf, nil, importNow)
	require.NoError(t, err)
	require.Empty(t, report.Errors)
	require.Len(t, report.Imported, len(original))

	for i, got := range report.Imported {
		want := original[i]
		want.Tags = []string{string(want.Type)}
		diff := cmp.Diff(want, got, cmpopts.IgnoreFields(cases.Case{}, "ID"))
		assert.Empty(t, diff, "row %d mismatch (-want +got)", i)
	}
	assert.Equal(t, "PR-2025-001", report.Imported[0].ID)
	assert.Equal(t, "HR-2025-001", report.Imported[1].ID)
	assert.Equal(t, "  indented\n", report.Imported[2].Description)
}

func TestImportKeepsFreeTextWhitespace(t *testing.T) {
	input := "Title,Description,Complainant,Respondent,Type\n" +
		`"Noise ","  line one` + "\n" + `line two  ",Anna,Pedro, noise ` + "\n" +
		`Leak,"   ",Ben,Carl,property` + "\n"

	report, err := Import(strings.NewReader(input), nil, importNow)
	require.NoError(t, err)
	require.Len(t, report.Imported, 2)

	first := report.Imported[0]
	assert.Equal(t, "Noise ", first.Title)
	assert.Equal(t, "  line one\nline two  ", first.Description)
	assert.Equal(t, cases.TypeNoise, first.Type, "type is parsed from the trimmed value")

	assert.Equal(t, "   ", report.Imported[1].Description)
}

func TestImportRejectsRowsMissingRequiredFields(t *testing.T) {
	input := strings.Join([]string{
		"Title,Complainant,Respondent,Type,Status",
		"Water leak,Anna,Pedro,property,pending",
		"Stolen bike,,Unknown,theft,pending",
		"Karaoke,Ricardo,James,noise,ongoing",
		",Elena,Roberto,domestic,pending",
		"Graffiti,Barangay Tanod,,vandalism,pending",
	}, "\n")

	report, err := Import(strings.NewReader(input), nil, importNow)
	require.NoError(t, err)

	require.Len(t, report.Imported, 2)
	assert.Equal(t, "Water leak", report.Imported[0].Title)
	assert.Equal(t, "Karaoke", report.Imported[1].Title)

	require.Len(t, report.Errors, 3)
	assert.Equal(t, RowError{Row: 3, Field: "Complainant", Message: "Missing required field 'Complainant'"}, report.Errors[0])
	assert.Equal(t, 5, report.Errors[1].Row)
	assert.Equal(t, "Title", report.Errors[1].Field)
	assert.Equal(t, "Row 6: Missing required field 'Respondent'", report.Errors[2].Error())
	assert.Equal(t, "Successfully imported 2 cases, 3 rows had errors", report.Summary())
}

func TestImportDefaultsAndNormalisation(t *testing.T) {
	input := "status, TYPE ,Title,Complainant,Respondent,FiledDate\n" +
		"RESOLVED,Arson,Burnt hut,Lito,Unknown,\n" +
		"closed,Noise,Rooster,Ana,Ben,05/20/2025\n"

	report, err := Import(strings.NewReader(input), nil, importNow)
	require.NoError(t, err)
	require.Len(t, report.Imported, 2)

	first := report.Imported[0]
	assert.Equal(t, cases.TypeOther, first.Type)
	assert.Equal(t, cases.StatusResolved, first.Status)
	assert.Equal(t, "2025-06-02", first.FiledDate)
	assert.Equal(t, "2025-06-02", first.ResolvedDate)
	assert.Equal(t, "2025-06-02", first.UpdatedAt)
	assert.Equal(t, []string{"other"}, first.Tags)
	assert.Equal(t, "OT-2025-001", first.ID)

	second := report.Imported[1]
	assert.Equal(t, cases.TypeNoise, second.Type)
	assert.Equal(t, cases.StatusPending, second.Status)
	assert.Equal(t, "2025-05-20", second.FiledDate)
	assert.Empty(t, second.ResolvedDate)
}

func TestImportSequencesAreMonotonicWithinBatch(t *testing.T) {
	existing := []cases.Case{{ID: "DS-2025-001"}, {ID: "DS-2025-004"}}
	input := "Title,Complainant,Respondent,Type\n" +
		"a,x,y,dispute\n" +
		"b,x,y,theft\n" +
		"c,x,y,dispute\n"

	report, err := Import(strings.NewReader(input), existing, importNow)
	require.NoError(t, err)

	var ids []string
	for _, c := range report.Imported {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"DS-2025-005", "TH-2025-001", "DS-2025-006"}, ids)
}

func TestImportQuotedFieldsAndBlankLines(t *testing.T) {
	input := "\ufeffTitle,Description,Complainant,Respondent\n" +
		"\n" +
		`"Boundary, north side","He said ""move it""","Dela Cruz, Juan",Santos` + "\n" +
		"   \n"

	report, err := Import(strings.NewReader(input), nil, importNow)
	require.NoError(t, err)
	require.Len(t, report.Imported, 1)

	c := report.Imported[0]
	assert.Equal(t, "Boundary, north side", c.Title)
	assert.Equal(t, `He said "move it"`, c.Description)
	assert.Equal(t, "Dela Cruz, Juan", c.Complainant)
	assert.NotEmpty(t, report.BatchID)
}

func TestImportNoData(t *testing.T) {
	for name, input := range map[string]string{
		"empty":       "",
		"header only": "Title,Complainant,Respondent\n",
		"blank rows":  "Title,Complainant,Respondent\n\n  ,  ,\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Import(strings.NewReader(input), nil, importNow)
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestImportReportSummary(t *testing.T) {
	assert.Equal(t, "Successfully imported 1 cases", (&ImportReport{Imported: make([]cases.Case, 1)}).Summary())
	assert.Equal(t, "Import failed with 2 errors", (&ImportReport{Errors: make([]RowError, 2)}).Summary())
	assert.Equal(t, "No valid cases found in the CSV file", (&ImportReport{}).Summary())
}
