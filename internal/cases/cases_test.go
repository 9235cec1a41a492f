package cases

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func TestNextID(t *testing.T) {
	tests := []struct {
		name     string
		caseType Type
		existing []string
		want     string
	}{
		{"empty store", TypeDispute, nil, "DS-2025-001"},
		{"max plus one, not first gap", TypeProperty, []string{"PR-2025-001", "PR-2025-003"}, "PR-2025-004"},
		{"other years ignored", TypeNoise, []string{"NO-2024-050", "NO-2025-002"}, "NO-2025-003"},
		{"other prefixes ignored", TypeTheft, []string{"DS-2025-009", "CASE-2025-010"}, "TH-2025-001"},
		{"non three digit sequences ignored", TypeOther, []string{"OT-2025-12", "OT-2025-0007"}, "OT-2025-001"},
		{"unknown type uses other prefix", Type("custom"), []string{"OT-2025-004"}, "OT-2025-005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var existing []Case
			for _, id := range tt.existing {
				existing = append(existing, Case{ID: id})
			}
			assert.Equal(t, tt.want, NextID(tt.caseType, existing, fixedNow))
		})
	}
}

func TestNextIDPastNineHundredNinetyNine(t *testing.T) {
	got := NextID(TypeDispute, []Case{{ID: "DS-2025-999"}}, fixedNow)
	assert.Equal(t, "DS-2025-1000", got)
}

func TestIDAllocatorBatch(t *testing.T) {
	existing := []Case{{ID: "DS-2025-004"}, {ID: "NO-2025-010"}, {ID: "DS-2024-090"}}
	a := NewIDAllocator(existing, fixedNow)

	assert.Equal(t, "DS-2025-005", a.Next(TypeDispute))
	assert.Equal(t, "NO-2025-011", a.Next(TypeNoise))
	assert.Equal(t, "DS-2025-006", a.Next(TypeDispute))
	assert.Equal(t, "TH-2025-001", a.Next(TypeTheft))
	assert.Equal(t, "OT-2025-001", a.Next(Type("custom")))
	assert.Len(t, existing, 3)
}

func TestIDAllocatorLargeBatchStaysUnique(t *testing.T) {
	a := NewIDAllocator(nil, fixedNow)
	seen := make(map[string]struct{})
	var last string
	for i := 0; i < 5000; i++ {
		last = a.Next(TypeProperty)
		_, dup := seen[last]
		require.False(t, dup, "duplicate id %s", last)
		seen[last] = struct{}{}
	}
	assert.Equal(t, "PR-2025-5000", last)
}

func TestParseTypeAndStatus(t *testing.T) {
	assert.Equal(t, TypeTheft, ParseType(" THEFT "))
	assert.Equal(t, TypeOther, ParseType("burglary"))
	assert.Equal(t, TypeOther, ParseType(""))

	assert.Equal(t, StatusResolved, ParseStatus("Resolved"))
	assert.Equal(t, StatusPending, ParseStatus("closed"))
	assert.Equal(t, StatusPending, ParseStatus(""))
}

func TestApplyStatus(t *testing.T) {
	today := "2025-03-14"

	t.Run("resolving sets resolved date", func(t *testing.T) {
		c := ApplyStatus(Case{ID: "DS-2025-001", Status: StatusPending, UpdatedAt: "2025-01-01"}, StatusResolved, today)
		assert.Equal(t, StatusResolved, c.Status)
		assert.Equal(t, today, c.ResolvedDate)
		assert.Equal(t, today, c.UpdatedAt)
	})

	t.Run("existing resolved date is kept", func(t *testing.T) {
		c := ApplyStatus(Case{ResolvedDate: "2025-02-02"}, StatusResolved, today)
		assert.Equal(t, "2025-02-02", c.ResolvedDate)
	})

	t.Run("other statuses leave resolved date alone", func(t *testing.T) {
		c := ApplyStatus(Case{ResolvedDate: "2025-02-02"}, StatusOngoing, today)
		assert.Equal(t, StatusOngoing, c.Status)
		assert.Equal(t, "2025-02-02", c.ResolvedDate)

		c = ApplyStatus(Case{}, StatusDismissed, today)
		assert.Empty(t, c.ResolvedDate)
	})
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{Title: "Fence line", Complainant: "Juan Dela Cruz"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		draft Draft
		field string
	}{
		{"missing title", Draft{Complainant: "Juan"}, "title"},
		{"blank complainant", Draft{Title: "Noise", Complainant: "  "}, "complainant"},
		{"bad type", Draft{Title: "x", Complainant: "y", Type: "arson"}, "type"},
		{"bad status", Draft{Title: "x", Complainant: "y", Status: "closed"}, "status"},
		{"bad filed date", Draft{Title: "x", Complainant: "y", FiledDate: "14/03/2025"}, "filedDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDraftBuildDefaults(t *testing.T) {
	c := Draft{Title: " Loud karaoke ", Complainant: "Ricardo", Type: TypeNoise}.Build("NO-2025-001", "2025-03-14")

	assert.Equal(t, "NO-2025-001", c.ID)
	assert.Equal(t, "Loud karaoke", c.Title)
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, "2025-03-14", c.FiledDate)
	assert.Equal(t, "2025-03-14", c.UpdatedAt)
	assert.Equal(t, []string{"noise"}, c.Tags)
	assert.Empty(t, c.ResolvedDate)

	resolved := Draft{Title: "x", Complainant: "y", Status: StatusResolved}.Build("OT-2025-001", "2025-03-14")
	assert.Equal(t, TypeOther, resolved.Type)
	assert.Equal(t, "2025-03-14", resolved.ResolvedDate)
}

func TestPatchApply(t *testing.T) {
	orig := Case{
		ID: "PR-2025-001", Title: "Boundary", Complainant: "Juan", Type: TypeProperty,
		Status: StatusPending, FiledDate: "2025-01-10", UpdatedAt: "2025-01-10", Tags: []string{"property"},
	}

	title := "Boundary fence"
	status := StatusResolved
	tags := []string{"property", "fence"}
	got, err := Patch{Title: &title, Status: &status, Tags: &tags}.Apply(orig, "2025-03-14")
	require.NoError(t, err)

	assert.Equal(t, "PR-2025-001", got.ID)
	assert.Equal(t, "Boundary fence", got.Title)
	assert.Equal(t, "2025-03-14", got.ResolvedDate)
	assert.Equal(t, "2025-03-14", got.UpdatedAt)
	assert.Equal(t, []string{"property", "fence"}, got.Tags)

	tags[0] = "mutated"
	assert.Equal(t, "property", got.Tags[0])
	assert.Equal(t, "Boundary", orig.Title)

	empty := ""
	_, err = Patch{Complainant: &empty}.Apply(orig, "2025-03-14")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "complainant", verr.Field)

	badType := Type("arson")
	_, err = Patch{Type: &badType}.Apply(orig, "2025-03-14")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)
}

func TestPatchApplyRejectsClearedFiledDate(t *testing.T) {
	orig := Case{ID: "DS-2025-001", Title: "Water rights", Complainant: "Anna", FiledDate: "2025-01-10"}

	for _, value := range []string{"", "   "} {
		filed := value
		_, err := Patch{FiledDate: &filed}.Apply(orig, "2025-03-14")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "filed date %q", value)
		assert.Equal(t, "filedDate", verr.Field)
	}

	resolved := ""
	got, err := Patch{ResolvedDate: &resolved}.Apply(orig, "2025-03-14")
	require.NoError(t, err, "resolved date may be cleared")
	assert.Empty(t, got.ResolvedDate)
	assert.Equal(t, "2025-01-10", got.FiledDate)
}

func TestFilter(t *testing.T) {
	all := []Case{
		{ID: "DS-2025-001", Title: "Water rights", Complainant: "Anna Lim", Type: TypeDispute, Status: StatusPending},
		{ID: "NO-2025-001", Title: "Karaoke", Complainant: "Pedro Tan", Type: TypeNoise, Status: StatusOngoing},
		{ID: "NO-2025-002", Title: "Rooster", Respondent: "Anna Lim", Type: TypeNoise, Status: StatusPending},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"DS-2025-001", "NO-2025-001", "NO-2025-002"}},
		{"all keyword", Filter{Status: "all", Type: "all"}, []string{"DS-2025-001", "NO-2025-001", "NO-2025-002"}},
		{"by status", Filter{Status: "pending"}, []string{"DS-2025-001", "NO-2025-002"}},
		{"by type and status", Filter{Status: "pending", Type: "noise"}, []string{"NO-2025-002"}},
		{"query matches parties", Filter{Query: "anna"}, []string{"DS-2025-001", "NO-2025-002"}},
		{"query matches id", Filter{Query: "no-2025-001"}, []string{"NO-2025-001"}},
		{"nothing", Filter{Type: "theft"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, c := range tt.filter.Apply(all) {
				got = append(got, c.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecent(t *testing.T) {
	all := []Case{
		{ID: "a", FiledDate: "2025-01-01"},
		{ID: "b", FiledDate: "2025-03-01"},
		{ID: "c", FiledDate: "2025-02-01"},
	}

	got := Recent(all, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, "a", all[0].ID)

	assert.Len(t, Recent(all, 10), 3)
	assert.Equal(t, 1, IndexOf(all, "b"))
	assert.Equal(t, -1, IndexOf(all, "z"))
}
