package cases

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// idPattern matches PREFIX-YEAR-NNN. Only three digit sequences count.
var idPattern = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d{3})$`)

// NextID returns the next identifier for t in the year of now, of the form
// PREFIX-YEAR-NNN. The sequence is one past the highest existing sequence
// for the same prefix and year, so gaps are never reused.
//
// Only three digit sequences are recognised; past 999 callers must check
// uniqueness themselves.
func NextID(t Type, existing []Case, now time.Time) string {
	return NewIDAllocator(existing, now).Next(t)
}

// IDAllocator hands out identifiers for a batch of new cases. It reads the
// existing set once and then counts up per prefix, so allocating n ids is
// linear in the size of the set rather than quadratic.
type IDAllocator struct {
	year    int
	highest map[string]int
}

// NewIDAllocator records the highest sequence per prefix for the year of now.
func NewIDAllocator(existing []Case, now time.Time) *IDAllocator {
	a := &IDAllocator{year: now.Year(), highest: make(map[string]int)}
	year := strconv.Itoa(a.year)
	for _, c := range existing {
		m := idPattern.FindStringSubmatch(c.ID)
		if m == nil || m[2] != year {
			continue
		}
		n, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		if n > a.highest[m[1]] {
			a.highest[m[1]] = n
		}
	}
	return a
}

// Next returns the next identifier for t and reserves it.
func (a *IDAllocator) Next(t Type) string {
	prefix := t.Prefix()
	a.highest[prefix]++
	return fmt.Sprintf("%s-%d-%03d", prefix, a.year, a.highest[prefix])
}
