package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrNoFile       = errors.New("no file provided")
	ErrRowNotFound  = errors.New("row not found")
)

// LoadTimeout bounds a single LoadDataset call.
var LoadTimeout = 2 * time.Minute

// DefaultMaxFileSize is used when ServiceConfig.MaxFileSize is zero.
const DefaultMaxFileSize int64 = 100 << 20

// ServiceConfig holds the tunables for a Service.
type ServiceConfig struct {
	MaxFileSize    int64         // Largest accepted upload in bytes
	MaxConcurrent  int           // Simultaneous file loads
	MaxWait        time.Duration // How long a load waits for a slot
	MaxRows        int           // Data row limit per file (0 = unlimited)
	LenientNumbers bool          // Accept currency and accounting numbers
	Sheet          string        // Workbook sheet to read (default: first sheet)
	StoreTTL       time.Duration // Idle time before a dataset expires
	MaxDatasets    int           // Datasets held at once
	SweepInterval  time.Duration // How often expired datasets are removed
}

// Service is the entry point for loading and viewing datasets. Web handlers
// and the CLI both go through it.
type Service struct {
	cfg     ServiceConfig
	store   *Store
	limiter *LoadLimiter
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Service{
		cfg:     cfg,
		store:   NewStore(cfg.StoreTTL, cfg.MaxDatasets),
		limiter: NewLoadLimiter(cfg.MaxConcurrent, cfg.MaxWait),
	}
}

// LoadDataset parses an uploaded file and stores it under a new ID. size is
// the declared length of r, or -1 if unknown; r is never read past
// MaxFileSize either way. A failed load stores nothing.
func (s *Service) LoadDataset(ctx context.Context, fileName string, r io.Reader, size int64) (*Dataset, error) {
	if r == nil || fileName == "" {
		return nil, ErrNoFile
	}
	if size > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, s.cfg.MaxFileSize)
	}

	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()

	var ds *Dataset
	err := s.limiter.Do(ctx, func() error {
		start := time.Now()

		lr := &limitedReader{r: r, remaining: s.cfg.MaxFileSize}
		t, err := Load(fileName, lr, LoadOptions{
			Lenient: s.cfg.LenientNumbers,
			Sheet:   s.cfg.Sheet,
			MaxRows: s.cfg.MaxRows,
		})
		if lr.exceeded {
			return fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, s.cfg.MaxFileSize)
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		ds, err = s.store.Put(fileName, t)
		if err != nil {
			return err
		}

		slog.Info("dataset loaded",
			"dataset_id", ds.ID,
			"file", fileName,
			"rows", t.NumRows(),
			"columns", t.NumColumns(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Dataset returns a stored dataset.
func (s *Service) Dataset(id string) (*Dataset, error) {
	return s.store.Get(id)
}

// DeleteDataset drops a stored dataset.
func (s *Service) DeleteDataset(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	slog.Info("dataset deleted", "dataset_id", id)
	return nil
}

// Statistics returns the per-column summary computed when the dataset was loaded.
func (s *Service) Statistics(id string) ([]StatisticsRow, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return ds.Stats, nil
}

// QueryResult is a view of a dataset.
type QueryResult struct {
	Dataset   *Dataset
	Table     *Table
	TotalRows int // Rows in the full dataset
}

// Query applies a view request to a stored dataset.
func (s *Service) Query(id string, req ViewRequest) (*QueryResult, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	view, err := ApplyView(ds.Table, req)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Dataset: ds, Table: view, TotalRows: ds.Table.NumRows()}, nil
}

// RowField is one column's value in a row.
type RowField struct {
	Column string     `json:"column"`
	Type   ColumnType `json:"type"`
	Value  string     `json:"value"`
	Cell   Cell       `json:"-"`
}

// RowDetail is every column of one source row.
type RowDetail struct {
	Row    int        `json:"row"`
	Fields []RowField `json:"fields"`
}

// RowDetail returns the source row at position row (0-based, as carried by
// the table's row index).
func (s *Service) RowDetail(id string, row int) (RowDetail, error) {
	ds, err := s.store.Get(id)
	if err != nil {
		return RowDetail{}, err
	}
	i, ok := ds.Table.FindRow(row)
	if !ok {
		return RowDetail{}, fmt.Errorf("%w: %d", ErrRowNotFound, row)
	}

	cols := ds.Table.Columns()
	fields := make([]RowField, len(cols))
	for c, col := range cols {
		cell := col.Cells[i]
		fields[c] = RowField{Column: col.Name, Type: col.Type, Value: cell.String(), Cell: cell}
	}
	return RowDetail{Row: row, Fields: fields}, nil
}

// Export writes the view described by req as CSV.
func (s *Service) Export(id string, req ViewRequest, w io.Writer) error {
	res, err := s.Query(id, req)
	if err != nil {
		return err
	}
	if err := WriteCSV(w, res.Table); err != nil {
		return fmt.Errorf("export %s: %w", id, err)
	}
	return nil
}

// StartJanitor removes expired datasets until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context) {
	s.store.StartJanitor(ctx, s.cfg.SweepInterval)
}

// DatasetCount returns the number of datasets held.
func (s *Service) DatasetCount() int {
	return s.store.Len()
}

// LoadLimiterStatus reports load slot usage.
func (s *Service) LoadLimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForLoads blocks until in-flight loads finish or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// limitedReader fails reads once more than remaining bytes have been consumed.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		l.exceeded = true
		return 0, ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, ErrFileTooLarge
	}
	return n, err
}
