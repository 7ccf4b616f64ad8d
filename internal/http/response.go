package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"finance/internal/core"
	"finance/internal/importer"
	applog "finance/internal/log"
)

// errBadRequest marks malformed requests: bad JSON, bad ids, bad query values.
var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrValidation), errors.Is(err, importer.ErrInvalidRoles):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrParse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the mapped error. Internal failures are logged and their
// details kept out of the response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.LogError(r.Context(), "Request failed", err, op)
		writeError(w, status, "internal error")
		return
	}
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Request rejected",
		applog.FieldOperation, op,
		applog.FieldError, err.Error(),
		applog.FieldStatusCode, status)
	writeError(w, status, err.Error())
}

type transactionJSON struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	Category    string    `json:"category"`
	Amount      string    `json:"amount"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	Type        core.Type `json:"type"`
	CreatedAt   string    `json:"created_at,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:          t.ID,
		Date:        t.Date,
		Category:    t.Category,
		Amount:      t.Amount.String(),
		AmountCents: t.Amount.Cents,
		Description: t.Description,
		Type:        t.Type,
	}
	if !t.CreatedAt.IsZero() {
		out.CreatedAt = t.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = toTransactionJSON(t)
	}
	return out
}

type categoryTotalJSON struct {
	Category   string `json:"category"`
	Total      string `json:"total"`
	TotalCents int64  `json:"total_cents"`
}

func toCategoryTotalsJSON(totals []core.CategoryTotal) []categoryTotalJSON {
	out := make([]categoryTotalJSON, len(totals))
	for i, t := range totals {
		out[i] = categoryTotalJSON{Category: t.Category, Total: t.Total.String(), TotalCents: t.Total.Cents}
	}
	return out
}

type monthSummaryJSON struct {
	Month        string `json:"month"`
	Income       string `json:"income"`
	IncomeCents  int64  `json:"income_cents"`
	Expense      string `json:"expense"`
	ExpenseCents int64  `json:"expense_cents"`
	Savings      string `json:"savings"`
	SavingsCents int64  `json:"savings_cents"`
}

func toMonthlyJSON(rows []core.MonthSummary) []monthSummaryJSON {
	out := make([]monthSummaryJSON, len(rows))
	for i, m := range rows {
		out[i] = monthSummaryJSON{
			Month:        m.Month,
			Income:       m.Income.String(),
			IncomeCents:  m.Income.Cents,
			Expense:      m.Expense.String(),
			ExpenseCents: m.Expense.Cents,
			Savings:      m.Savings.String(),
			SavingsCents: m.Savings.Cents,
		}
	}
	return out
}

type trendPointJSON struct {
	Month      string    `json:"month"`
	Type       core.Type `json:"type"`
	Total      string    `json:"total"`
	TotalCents int64     `json:"total_cents"`
}

func toTrendJSON(points []core.TrendPoint) []trendPointJSON {
	out := make([]trendPointJSON, len(points))
	for i, p := range points {
		out[i] = trendPointJSON{Month: p.Month, Type: p.Type, Total: p.Total.String(), TotalCents: p.Total.Cents}
	}
	return out
}

type rowFailureJSON struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type rowWarningJSON struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type failuresPreviewJSON struct {
	Lines []string `json:"lines"`
	More  int      `json:"more"`
}

type importResultJSON struct {
	BatchID         string              `json:"batch_id"`
	Imported        int                 `json:"imported"`
	Failed          int                 `json:"failed"`
	IDs             []int64             `json:"ids"`
	Failures        []rowFailureJSON    `json:"failures"`
	FailuresPreview failuresPreviewJSON `json:"failures_preview"`
	Warnings        []rowWarningJSON    `json:"warnings"`
}

func toImportResultJSON(res importer.Result, previewLimit int) importResultJSON {
	out := importResultJSON{
		BatchID:  res.BatchID,
		Imported: res.Imported,
		Failed:   res.Failed,
		IDs:      res.IDs,
		Failures: make([]rowFailureJSON, len(res.Failures)),
		Warnings: make([]rowWarningJSON, len(res.Warnings)),
	}
	if out.IDs == nil {
		out.IDs = []int64{}
	}
	for i, f := range res.Failures {
		out.Failures[i] = rowFailureJSON{Row: f.Row, Error: f.Err.Error()}
	}
	for i, wn := range res.Warnings {
		out.Warnings[i] = rowWarningJSON{Row: wn.Row, Message: wn.Message}
	}
	lines, more := res.Summary(previewLimit)
	if lines == nil {
		lines = []string{}
	}
	out.FailuresPreview = failuresPreviewJSON{Lines: lines, More: more}
	return out
}
