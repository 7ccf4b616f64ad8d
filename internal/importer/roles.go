package importer

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCategory is used when no category column is mapped or the cell is empty.
const DefaultCategory = "Uncategorized"

// ErrInvalidRoles reports a column-role configuration that cannot be applied
// to the input. It is raised before any row is processed.
var ErrInvalidRoles = errors.New("invalid column roles")

// DatePolicy decides what happens to a date cell that cannot be parsed.
type DatePolicy int

const (
	// DateFallbackRaw stores the cell text verbatim and records a warning.
	DateFallbackRaw DatePolicy = iota
	// DateStrict turns an unparseable date into a row failure.
	DateStrict
)

func (p DatePolicy) String() string {
	switch p {
	case DateStrict:
		return "strict"
	default:
		return "fallback_raw"
	}
}

// Roles maps semantic roles to column names of the input. Description and
// Category are optional; empty means not mapped.
type Roles struct {
	Date            string
	Amount          string
	Description     string
	Category        string
	DefaultCategory string
	DatePolicy      DatePolicy
	// DayFirst reads ambiguous numeric dates as DD/MM. The default is MM/DD.
	DayFirst bool
}

// Validate checks the roles against the header row. It returns a copy with
// defaults applied.
func (r Roles) Validate(header []string) (Roles, error) {
	r.Date = strings.TrimSpace(r.Date)
	r.Amount = strings.TrimSpace(r.Amount)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.DefaultCategory = strings.TrimSpace(r.DefaultCategory)
	if r.DefaultCategory == "" {
		r.DefaultCategory = DefaultCategory
	}

	var problems []string
	if r.Date == "" {
		problems = append(problems, "date column is required")
	}
	if r.Amount == "" {
		problems = append(problems, "amount column is required")
	}

	cols := make(map[string]struct{}, len(header))
	for _, h := range header {
		cols[strings.TrimSpace(h)] = struct{}{}
	}
	check := func(role, col string) {
		if col == "" {
			return
		}
		if _, ok := cols[col]; !ok {
			problems = append(problems, fmt.Sprintf("%s column %q not found in header", role, col))
		}
	}
	check("date", r.Date)
	check("amount", r.Amount)
	check("description", r.Description)
	check("category", r.Category)

	if len(problems) > 0 {
		return r, fmt.Errorf("%w: %s", ErrInvalidRoles, strings.Join(problems, "; "))
	}
	return r, nil
}
