package cases

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for every date field.
const DateLayout = "2006-01-02"

// Type classifies the complaint behind a case.
type Type string

const (
	TypeDispute    Type = "dispute"
	TypeDomestic   Type = "domestic"
	TypeProperty   Type = "property"
	TypeNoise      Type = "noise"
	TypeTheft      Type = "theft"
	TypeVandalism  Type = "vandalism"
	TypeHarassment Type = "harassment"
	TypeOther      Type = "other"
)

// Types lists every case type in display order.
var Types = []Type{
	TypeDispute, TypeDomestic, TypeProperty, TypeNoise,
	TypeTheft, TypeVandalism, TypeHarassment, TypeOther,
}

var typePrefixes = map[Type]string{
	TypeDispute:    "DS",
	TypeDomestic:   "DM",
	TypeProperty:   "PR",
	TypeNoise:      "NO",
	TypeTheft:      "TH",
	TypeVandalism:  "VD",
	TypeHarassment: "HR",
	TypeOther:      "OT",
}

func (t Type) IsValid() bool {
	_, ok := typePrefixes[t]
	return ok
}

// Prefix returns the two letter identifier prefix for the type.
// Unknown types share the prefix of TypeOther.
func (t Type) Prefix() string {
	if p, ok := typePrefixes[t]; ok {
		return p
	}
	return typePrefixes[TypeOther]
}

// ParseType lower-cases s and falls back to TypeOther when it is not a known type.
func ParseType(s string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t.IsValid() {
		return t
	}
	return TypeOther
}

// Status is the lifecycle state of a case. Transitions are unconstrained.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOngoing   Status = "ongoing"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusOngoing, StatusResolved, StatusDismissed}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusOngoing, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// ParseStatus lower-cases s and falls back to StatusPending when it is not a known status.
func ParseStatus(s string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st.IsValid() {
		return st
	}
	return StatusPending
}

// Case is a single complaint filed with the office.
type Case struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Complainant  string   `json:"complainant"`
	Respondent   string   `json:"respondent"`
	Type         Type     `json:"type"`
	Status       Status   `json:"status"`
	FiledDate    string   `json:"filedDate"`
	ResolvedDate string   `json:"resolvedDate,omitempty"`
	UpdatedAt    string   `json:"updatedAt"`
	Tags         []string `json:"tags"`
}

// Clone returns a copy that shares no slices with c.
func (c Case) Clone() Case {
	c.Tags = append([]string(nil), c.Tags...)
	return c
}

// ApplyStatus moves c to status. Resolving a case without a resolved date
// stamps it with today; an existing resolved date is kept.
func ApplyStatus(c Case, status Status, today string) Case {
	c.Status = status
	c.UpdatedAt = today
	if status == StatusResolved && c.ResolvedDate == "" {
		c.ResolvedDate = today
	}
	return c
}

// Today formats now as a calendar date.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// Draft is the input for a new case.
type Draft struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Complainant  string   `json:"complainant"`
	Respondent   string   `json:"respondent"`
	Type         Type     `json:"type"`
	Status       Status   `json:"status"`
	FiledDate    string   `json:"filedDate"`
	ResolvedDate string   `json:"resolvedDate"`
	Tags         []string `json:"tags"`
}

// Validate checks the fields a new case cannot do without.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if strings.TrimSpace(d.Complainant) == "" {
		return &ValidationError{Field: "complainant", Message: "is required"}
	}
	if d.Type != "" && !d.Type.IsValid() {
		return &ValidationError{Field: "type", Message: "must be one of the known case types"}
	}
	if d.Status != "" && !d.Status.IsValid() {
		return &ValidationError{Field: "status", Message: "must be pending, ongoing, resolved or dismissed"}
	}
	if err := validateDate("filedDate", d.FiledDate); err != nil {
		return err
	}
	return validateDate("resolvedDate", d.ResolvedDate)
}

// Build turns a validated draft into a case with the given identifier.
func (d Draft) Build(id, today string) Case {
	c := Case{
		ID:           id,
		Title:        strings.TrimSpace(d.Title),
		Description:  d.Description,
		Complainant:  strings.TrimSpace(d.Complainant),
		Respondent:   strings.TrimSpace(d.Respondent),
		Type:         d.Type,
		Status:       d.Status,
		FiledDate:    d.FiledDate,
		ResolvedDate: d.ResolvedDate,
		UpdatedAt:    today,
		Tags:         append([]string(nil), d.Tags...),
	}
	if c.Type == "" {
		c.Type = TypeOther
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.FiledDate == "" {
		c.FiledDate = today
	}
	if len(c.Tags) == 0 {
		c.Tags = []string{string(c.Type)}
	}
	if c.Status == StatusResolved && c.ResolvedDate == "" {
		c.ResolvedDate = today
	}
	return c
}

// Patch carries an edit; nil fields are left untouched.
type Patch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Complainant  *string   `json:"complainant"`
	Respondent   *string   `json:"respondent"`
	Type         *Type     `json:"type"`
	Status       *Status   `json:"status"`
	FiledDate    *string   `json:"filedDate"`
	ResolvedDate *string   `json:"resolvedDate"`
	Tags         *[]string `json:"tags"`
}

// Apply returns c with the patch applied. The identifier never changes.
func (p Patch) Apply(c Case, today string) (Case, error) {
	out := c.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Complainant != nil {
		out.Complainant = strings.TrimSpace(*p.Complainant)
	}
	if p.Respondent != nil {
		out.Respondent = strings.TrimSpace(*p.Respondent)
	}
	if p.Type != nil {
		if !p.Type.IsValid() {
			return c, &ValidationError{Field: "type", Message: "must be one of the known case types"}
		}
		out.Type = *p.Type
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return c, &ValidationError{Field: "status", Message: "must be pending, ongoing, resolved or dismissed"}
		}
		out.Status = *p.Status
	}
	if p.FiledDate != nil {
		if strings.TrimSpace(*p.FiledDate) == "" {
			return c, &ValidationError{Field: "filedDate", Message: "is required"}
		}
		out.FiledDate = *p.FiledDate
	}
	if p.ResolvedDate != nil {
		out.ResolvedDate = *p.ResolvedDate
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), (*p.Tags)...)
	}

	if out.Title == "" {
		return c, &ValidationError{Field: "title", Message: "is required"}
	}
	if out.Complainant == "" {
		return c, &ValidationError{Field: "complainant", Message: "is required"}
	}
	if err := validateDate("filedDate", out.FiledDate); err != nil {
		return c, err
	}
	if err := validateDate("resolvedDate", out.ResolvedDate); err != nil {
		return c, err
	}

	out.ID = c.ID
	out.UpdatedAt = today
	if out.Status == StatusResolved && out.ResolvedDate == "" {
		out.ResolvedDate = today
	}
	return out, nil
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return &ValidationError{Field: field, Message: "must be a YYYY-MM-DD date"}
	}
	return nil
}
