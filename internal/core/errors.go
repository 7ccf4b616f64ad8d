package core

import (
	"errors"
	"fmt"
)

// Error categories. Concrete errors wrap one of these so callers can branch
// with errors.Is without knowing the exact cause.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("transaction not found")
	ErrParse              = errors.New("parse error")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidType     = fmt.Errorf("%w: type must be income or expense", ErrValidation)
	ErrEmptyCategory   = fmt.Errorf("%w: empty category", ErrValidation)
	ErrEmptyDate       = fmt.Errorf("%w: empty date", ErrValidation)
	ErrUnparseableDate = fmt.Errorf("%w: unparseable date", ErrValidation)

	ErrInvalidAmountCell = fmt.Errorf("%w: invalid amount", ErrParse)
)
