package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"finance/internal/core"
	"finance/internal/importer"
)

const (
	maxJSONBody   = 1 << 20
	maxImportBody = 10 << 20
)

// Open bounds for date range queries. Raw, non-ISO dates sort outside them.
const (
	rangeMin = "0000-01-01"
	rangeMax = "9999-12-31"
)

type createRequest struct {
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
}

// patchRequest fields are pointers so absent keys leave columns untouched.
type patchRequest struct {
	Date        *string      `json:"date"`
	Category    *string      `json:"category"`
	Amount      *json.Number `json:"amount"`
	Description *string      `json:"description"`
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadRequest)
	}
	return nil
}

// parseAmount reads a positive decimal amount. Negative values parse and are
// rejected by store validation.
func parseAmount(n json.Number) (core.Money, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return core.Money{}, core.ErrInvalidAmount
	}
	m, err := core.ParseSignedAmount(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: amount %q is not a number", core.ErrValidation, s)
	}
	return m, nil
}

func (c createRequest) toNewTransaction() (core.NewTransaction, error) {
	typ, err := core.ParseType(c.Type)
	if err != nil {
		return core.NewTransaction{}, err
	}
	date, err := core.NormalizeDate(c.Date)
	if err != nil {
		return core.NewTransaction{}, err
	}
	amount, err := parseAmount(c.Amount)
	if err != nil {
		return core.NewTransaction{}, err
	}
	return core.NewTransaction{
		Date:        date,
		Category:    sanitizeInput(c.Category),
		Amount:      amount,
		Description: sanitizeInput(c.Description),
		Type:        typ,
	}, nil
}

func (p patchRequest) toPatch() (core.Patch, error) {
	var patch core.Patch
	if p.Date != nil {
		date, err := core.NormalizeDate(*p.Date)
		if err != nil {
			return core.Patch{}, err
		}
		patch.Date = &date
	}
	if p.Category != nil {
		cat := sanitizeInput(*p.Category)
		patch.Category = &cat
	}
	if p.Amount != nil {
		amount, err := parseAmount(*p.Amount)
		if err != nil {
			return core.Patch{}, err
		}
		patch.Amount = &amount
	}
	if p.Description != nil {
		desc := sanitizeInput(*p.Description)
		patch.Description = &desc
	}
	return patch, nil
}

// parseRange reads optional start and end bounds. Supplied bounds are
// normalized to ISO dates so the comparison is lexicographic on YYYY-MM-DD.
func parseRange(q url.Values) (start, end string, err error) {
	start, end = rangeMin, rangeMax
	if v := strings.TrimSpace(q.Get("start")); v != "" {
		if start, err = core.NormalizeDate(v); err != nil {
			return "", "", fmt.Errorf("%w: start: %v", errBadRequest, err)
		}
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		if end, err = core.NormalizeDate(v); err != nil {
			return "", "", fmt.Errorf("%w: end: %v", errBadRequest, err)
		}
	}
	return start, end, nil
}

func hasRange(q url.Values) bool {
	return strings.TrimSpace(q.Get("start")) != "" || strings.TrimSpace(q.Get("end")) != ""
}

// parseType reads the type filter, defaulting to expense.
func parseType(q url.Values) (core.Type, error) {
	v := strings.TrimSpace(q.Get("type"))
	if v == "" {
		return core.Expense, nil
	}
	return core.ParseType(v)
}

// rolesFrom builds importer roles from form or query values. When neither date
// nor amount is named, the template layout is assumed.
func rolesFrom(values url.Values, opts Options) importer.Roles {
	roles := importer.Roles{
		Date:            sanitizeInput(values.Get("date")),
		Amount:          sanitizeInput(values.Get("amount")),
		Description:     sanitizeInput(values.Get("description")),
		Category:        sanitizeInput(values.Get("category")),
		DefaultCategory: sanitizeInput(values.Get("default_category")),
	}
	if roles.Date == "" && roles.Amount == "" {
		tmpl := importer.TemplateRoles()
		tmpl.DefaultCategory = roles.DefaultCategory
		roles = tmpl
	}
	if roles.DefaultCategory == "" {
		roles.DefaultCategory = opts.DefaultCategory
	}
	roles.DayFirst = parseBool(values.Get("day_first"), opts.DayFirst)
	if parseBool(values.Get("strict_dates"), opts.StrictDates) {
		roles.DatePolicy = importer.DateStrict
	} else {
		roles.DatePolicy = importer.DateFallbackRaw
	}
	return roles
}
