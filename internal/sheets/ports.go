package sheets

import (
	"context"

	"finance/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// RowReader returns the raw cell matrix of an import range, header first.
	RowReader interface {
		ReadValues(ctx context.Context) ([][]string, error)
	}

	// TransactionMirror keeps a spreadsheet copy of the store keyed by id.
	TransactionMirror interface {
		Upsert(ctx context.Context, t core.Transaction) error
		Remove(ctx context.Context, id int64) error
		// Rewrite replaces the whole mirror with txs.
		Rewrite(ctx context.Context, txs []core.Transaction) error
	}
)

// MirrorHeader is the first row of the mirror sheet.
var MirrorHeader = []string{"ID", "Date", "Type", "Category", "Amount", "Description"}
