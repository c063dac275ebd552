package web

// Request parsing shared by the page and API handlers.

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvlens/internal/core"
	"github.com/go-chi/chi/v5"
)

const (
	// multipartMemory is how much of an upload is held in memory before
	// spilling to a temp file.
	multipartMemory = 32 << 20

	// multipartOverhead allows for form boundaries and headers on top of
	// the file itself.
	multipartOverhead = 1 << 20
)

// loadUpload reads the "file" field of a multipart form into a new dataset.
func (s *Server) loadUpload(w http.ResponseWriter, r *http.Request) (*core.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}
	defer file.Close()

	return s.service.LoadDataset(r.Context(), header.Filename, file, header.Size)
}

// parseViewRequest reads the view state from query parameters:
//
//	q        search terms
//	columns  columns to show, repeated or comma separated
//	sort     column to sort by
//	dir      "desc" for descending, anything else ascending
func parseViewRequest(q url.Values) core.ViewRequest {
	var columns []string
	for _, v := range q["columns"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				columns = append(columns, name)
			}
		}
	}
	return core.ViewRequest{
		Query:      q.Get("q"),
		Columns:    columns,
		SortColumn: strings.TrimSpace(q.Get("sort")),
		Descending: strings.EqualFold(q.Get("dir"), "desc"),
	}
}

// viewQuery encodes req so that parseViewRequest reads it back.
func viewQuery(req core.ViewRequest) url.Values {
	v := url.Values{}
	if req.Query != "" {
		v.Set("q", req.Query)
	}
	for _, c := range req.Columns {
		v.Add("columns", c)
	}
	if req.SortColumn != "" {
		v.Set("sort", req.SortColumn)
		if req.Descending {
			v.Set("dir", "desc")
		}
	}
	return v
}

// exportURL is the download link for a view of a dataset.
func exportURL(prefix, id string, req core.ViewRequest) string {
	u := prefix + "/datasets/" + url.PathEscape(id) + "/export"
	if q := viewQuery(req).Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// parseRowParam reads the 0-based source row from the URL.
func parseRowParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "row")
	row, err := strconv.Atoi(raw)
	if err != nil || row < 0 {
		return 0, fmt.Errorf("%w: %q", core.ErrRowNotFound, raw)
	}
	return row, nil
}

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
