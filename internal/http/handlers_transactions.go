package http

import (
	"net/http"
	"strconv"

	applog "finance/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !hasRange(q) {
		txs, err := s.svc.GetAll(r.Context())
		if err != nil {
			s.fail(w, r, err, applog.OpList)
			return
		}
		writeJSON(w, http.StatusOK, toTransactionsJSON(txs))
		return
	}

	start, end, err := parseRange(q)
	if err != nil {
		s.fail(w, r, err, applog.OpList)
		return
	}
	txs, err := s.svc.GetByDateRange(r.Context(), start, end)
	if err != nil {
		s.fail(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionsJSON(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req createRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err, applog.OpCreate)
		return
	}
	n, err := req.toNewTransaction()
	if err != nil {
		s.fail(w, r, err, applog.OpCreate)
		return
	}

	id, err := s.svc.Add(r.Context(), n)
	if err != nil {
		s.fail(w, r, err, applog.OpCreate)
		return
	}
	s.logger.LogTransactionCreated(r.Context(), id, n.Category, n.Amount.Cents, n.Type.String())

	tx, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, applog.OpRead)
		return
	}
	w.Header().Set("Location", "/api/transactions/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, applog.OpRead)
	if !ok {
		return
	}
	tx, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, applog.OpUpdate)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req patchRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, err, applog.OpUpdate)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.fail(w, r, err, applog.OpUpdate)
		return
	}
	if err := s.svc.UpdateFields(r.Context(), id, patch); err != nil {
		s.fail(w, r, err, applog.OpUpdate)
		return
	}

	tx, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, applog.OpDelete)
	if !ok {
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, applog.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		s.fail(w, r, err, applog.OpList)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, op)
		return 0, false
	}
	return id, true
}
