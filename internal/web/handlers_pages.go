package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/csvlens/internal/core"
	"github.com/JonMunkholm/csvlens/internal/logging"
	"github.com/JonMunkholm/csvlens/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// render writes an HTML component with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, templates.UploadPage(s.cfg.Upload.MaxFileSize, nil))
}

// handleUpload loads the posted file and redirects to its dataset page. A
// failed load re-renders the upload page with the error.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.loadUpload(w, r)
	if err != nil {
		status := statusFor(err)
		msg := logError(r, err, status)
		render(w, r, status, templates.UploadPage(s.cfg.Upload.MaxFileSize, &msg))
		return
	}
	http.Redirect(w, r, "/datasets/"+url.PathEscape(ds.ID), http.StatusSeeOther)
}

// handleDataset renders statistics and the current view of a dataset.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	req := parseViewRequest(r.URL.Query())

	res, err := s.service.Query(id, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, templates.DatasetPage(templates.DatasetView{
		ID:        id,
		FileName:  res.Dataset.FileName,
		Columns:   res.Dataset.Table.ColumnNames(),
		TotalRows: res.TotalRows,
		Stats:     res.Dataset.Stats,
		Request:   req,
		Result:    res.Table,
		MaxRows:   s.cfg.UI.MaxDisplayRows,
		ExportURL: exportURL("", id, req),
	}))
}

// handleRow renders every column of one source row.
func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	row, err := parseRowParam(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	ds, err := s.service.Dataset(id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	detail, err := s.service.RowDetail(id, row)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, templates.RowDetailPage(id, ds.FileName, detail))
}

// handleExport downloads the current view as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	req := parseViewRequest(r.URL.Query())

	res, err := s.service.Query(id, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFileName))
	if err := core.WriteCSV(w, res.Table); err != nil {
		// Headers are already sent.
		logging.FromContext(r.Context()).Error("export failed", "dataset_id", id, "error", err)
		return
	}
	slog.Debug("dataset exported", "dataset_id", id, "rows", res.Table.NumRows())
}

// handleDelete removes a dataset and returns to the upload page.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	if err := s.service.DeleteDataset(id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
