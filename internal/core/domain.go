package core

import (
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

type (
	// Type carries the direction of a transaction. Amounts are never signed.
	Type string

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64
		Date        string // ISO YYYY-MM-DD when parseable, verbatim text otherwise
		Category    string
		Amount      Money
		Description string
		Type        Type
		CreatedAt   time.Time
	}

	// NewTransaction holds the fields supplied on insert. ID and CreatedAt
	// are assigned by the store.
	NewTransaction struct {
		Date        string
		Category    string
		Amount      Money
		Description string
		Type        Type
	}

	// Patch lists the fields an update may overwrite. Nil means untouched.
	// Type and ID are not mutable after creation.
	Patch struct {
		Date        *string
		Category    *string
		Amount      *Money
		Description *string
	}
)

// Valid reports whether t is one of the closed set of types.
func (t Type) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	return string(t)
}

// ParseType accepts the type names case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (n NewTransaction) Validate() error {
	if strings.TrimSpace(n.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(n.Category) == "" {
		return ErrEmptyCategory
	}
	if err := n.Amount.Validate(); err != nil {
		return err
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Validate checks only the fields present in the patch.
func (p Patch) Validate() error {
	if p.Date != nil && strings.TrimSpace(*p.Date) == "" {
		return ErrEmptyDate
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return ErrEmptyCategory
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p Patch) IsEmpty() bool {
	return p.Date == nil && p.Category == nil && p.Amount == nil && p.Description == nil
}

// Apply returns t with the patch fields overwritten.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	return t
}

// Fields returns the insert form of an existing transaction.
func (t Transaction) Fields() NewTransaction {
	return NewTransaction{
		Date:        t.Date,
		Category:    t.Category,
		Amount:      t.Amount,
		Description: t.Description,
		Type:        t.Type,
	}
}

// Signed returns the amount with expenses negative, as used in the import format.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}
