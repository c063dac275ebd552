package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/csvlens/internal/core"
	"github.com/go-chi/chi/v5"
)

// defaultAPIRowLimit caps /rows responses when no limit is given.
const defaultAPIRowLimit = 100

// DatasetResponse describes a stored dataset.
type DatasetResponse struct {
	ID       string           `json:"id"`
	FileName string           `json:"file_name"`
	Rows     int              `json:"rows"`
	Columns  []ColumnResponse `json:"columns"`
	LoadedAt time.Time        `json:"loaded_at"`
}

// ColumnResponse names a column and its inferred type.
type ColumnResponse struct {
	Name string          `json:"name"`
	Type core.ColumnType `json:"type"`
}

// RowsResponse is one page of a dataset view. Values are numbers, strings,
// or null for missing cells.
type RowsResponse struct {
	TotalRows   int           `json:"total_rows"`
	MatchedRows int           `json:"matched_rows"`
	Offset      int           `json:"offset"`
	Columns     []string      `json:"columns"`
	Rows        []RowResponse `json:"rows"`
}

// RowResponse is a row of a view with its source row number.
type RowResponse struct {
	Row    int   `json:"row"`
	Values []any `json:"values"`
}

// StatusResponse reports server load.
type StatusResponse struct {
	Datasets int                `json:"datasets"`
	Loads    core.LimiterStatus `json:"loads"`
}

func toDatasetResponse(ds *core.Dataset) DatasetResponse {
	cols := ds.Table.Columns()
	resp := DatasetResponse{
		ID:       ds.ID,
		FileName: ds.FileName,
		Rows:     ds.Table.NumRows(),
		Columns:  make([]ColumnResponse, len(cols)),
		LoadedAt: ds.LoadedAt,
	}
	for i, c := range cols {
		resp.Columns[i] = ColumnResponse{Name: c.Name, Type: c.Type}
	}
	return resp
}

func cellValue(c core.Cell) any {
	switch c.Kind {
	case core.KindNumeric:
		return c.Num
	case core.KindText:
		return c.Str
	default:
		return nil
	}
}

// handleStatus reports stored datasets and load slot usage.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, StatusResponse{
		Datasets: s.service.DatasetCount(),
		Loads:    s.service.LoadLimiterStatus(),
	})
}

// handleAPIUpload loads a multipart upload and describes the new dataset.
func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.loadUpload(w, r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/datasets/"+ds.ID)
	writeJSON(w, r, http.StatusCreated, toDatasetResponse(ds))
}

func (s *Server) handleAPIDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Dataset(chi.URLParam(r, "datasetID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDatasetResponse(ds))
}

func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteDataset(chi.URLParam(r, "datasetID")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Statistics(chi.URLParam(r, "datasetID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// handleAPIRows returns a page of the view described by the query string.
// limit and offset page through the matching rows.
func (s *Server) handleAPIRows(w http.ResponseWriter, r *http.Request) {
	req := parseViewRequest(r.URL.Query())
	res, err := s.service.Query(chi.URLParam(r, "datasetID"), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	t := res.Table
	offset := min(parseIntParam(r, "offset", 0), t.NumRows())
	limit := min(parseIntParam(r, "limit", defaultAPIRowLimit), t.NumRows()-offset)
	end := offset + limit

	cols := t.Columns()
	rows := make([]RowResponse, 0, end-offset)
	for i := offset; i < end; i++ {
		values := make([]any, len(cols))
		for c, col := range cols {
			values[c] = cellValue(col.Cells[i])
		}
		rows = append(rows, RowResponse{Row: t.RowIndex(i), Values: values})
	}

	writeJSON(w, r, http.StatusOK, RowsResponse{
		TotalRows:   res.TotalRows,
		MatchedRows: t.NumRows(),
		Offset:      offset,
		Columns:     t.ColumnNames(),
		Rows:        rows,
	})
}

func (s *Server) handleAPIRow(w http.ResponseWriter, r *http.Request) {
	row, err := parseRowParam(r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	detail, err := s.service.RowDetail(chi.URLParam(r, "datasetID"), row)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}
