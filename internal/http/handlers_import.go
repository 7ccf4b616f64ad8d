package http

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"finance/internal/core"
	"finance/internal/importer"
	applog "finance/internal/log"
)

// handleImport accepts either a multipart form with a "file" part or a raw CSV
// body. Column roles come from form fields or query parameters.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)

	var (
		src    io.Reader
		values = r.URL.Query()
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImportBody); err != nil {
			s.fail(w, r, badRequest("invalid multipart form: %w", err), applog.OpImport)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			s.fail(w, r, badRequest("missing file part: %w", err), applog.OpImport)
			return
		}
		defer file.Close()
		src = file
		values = r.Form
	} else {
		src = r.Body
	}

	roles := rolesFrom(values, s.opts)
	res, err := s.svc.ImportCSV(r.Context(), src, roles)
	if err != nil {
		s.fail(w, r, err, applog.OpImport)
		return
	}
	s.logger.LogImportCompleted(r.Context(), res.BatchID, res.Imported, res.Failed)

	writeJSON(w, http.StatusOK, toImportResultJSON(res, s.opts.PreviewLimit))
}

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := importer.WriteTemplate(&buf); err != nil {
		s.fail(w, r, err, applog.OpExport)
		return
	}
	writeCSV(w, "import_template.csv", buf.Bytes())
}

// handleExport writes the transactions as CSV in the template layout, so the
// file can be imported again unchanged.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		txs []core.Transaction
		err error
	)
	if hasRange(q) {
		var start, end string
		if start, end, err = parseRange(q); err != nil {
			s.fail(w, r, err, applog.OpExport)
			return
		}
		txs, err = s.svc.GetByDateRange(r.Context(), start, end)
	} else {
		txs, err = s.svc.GetAll(r.Context())
	}
	if err != nil {
		s.fail(w, r, err, applog.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := importer.ExportCSV(&buf, txs); err != nil {
		s.fail(w, r, err, applog.OpExport)
		return
	}
	writeCSV(w, "transactions.csv", buf.Bytes())
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
