package cases

import (
	"sort"
	"strings"
)

// Filter narrows a case listing. Empty fields and "all" match everything.
type Filter struct {
	Status string `form:"status"`
	Type   string `form:"type"`
	Query  string `form:"q"`
}

func (f Filter) Match(c Case) bool {
	if f.Status != "" && f.Status != "all" && string(c.Status) != f.Status {
		return false
	}
	if f.Type != "" && f.Type != "all" && string(c.Type) != f.Type {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{c.ID, c.Title, c.Complainant, c.Respondent} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply returns the matching cases in their stored order.
func (f Filter) Apply(all []Case) []Case {
	out := make([]Case, 0, len(all))
	for _, c := range all {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Recent returns up to n cases, most recently filed first.
func Recent(all []Case, n int) []Case {
	out := make([]Case, len(all))
	copy(out, all)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FiledDate > out[j].FiledDate
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// IndexOf returns the position of the case with the given id, or -1.
func IndexOf(all []Case, id string) int {
	for i, c := range all {
		if c.ID == id {
			return i
		}
	}
	return -1
}
