package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/csvlens/internal/core"
	"github.com/JonMunkholm/csvlens/internal/logging"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	lenient bool
	verbose bool
	maxRows int
	maxSize int64
	sheet   string
}

// viewOptions select, order and filter rows.
type viewOptions struct {
	query   string
	columns []string
	sort    string
	desc    bool
}

func (v viewOptions) request() core.ViewRequest {
	return core.ViewRequest{
		Query:      v.query,
		Columns:    v.columns,
		SortColumn: v.sort,
		Descending: v.desc,
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "csvlens",
		Short:         "Column statistics, search and export for tabular files",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logging.SetupWriter(cmd.ErrOrStderr(), level, "text")
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.lenient, "lenient", false, `Read "$1,200" and "(35)" as numbers`)
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.PersistentFlags().IntVar(&opts.maxRows, "max-rows", 0, "Refuse files with more data rows (0 = unlimited)")
	rootCmd.PersistentFlags().Int64Var(&opts.maxSize, "max-size", core.DefaultMaxFileSize, "Refuse files larger than this many bytes")
	rootCmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from Excel files (default: first sheet)")

	rootCmd.AddCommand(
		newStatsCmd(opts),
		newSearchCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Print per-column statistics",
		Long: `Print the inferred type, distinct and missing counts of every column,
plus mean, median, sample standard deviation, min and max for numeric columns.

Example: csvlens stats sales.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ds, err := loadFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			stats, err := svc.Statistics(ds.ID)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			return writeStats(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var view viewOptions
	var limit int

	cmd := &cobra.Command{
		Use:   "search FILE TERM...",
		Short: "Print rows containing every term",
		Long: `Print the rows where each term appears, case-insensitively, in at least
one of the selected columns. Row numbers refer to the source file.

Example: csvlens search people.csv oslo 30 --columns name,city --sort name`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view.query = strings.Join(args[1:], " ")
			svc, ds, err := loadFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			res, err := svc.Query(ds.ID, view.request())
			if err != nil {
				return err
			}
			if err := writeRows(cmd.OutOrStdout(), res.Table, limit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d rows match\n", res.Table.NumRows(), res.TotalRows)
			return nil
		},
	}

	addViewFlags(cmd, &view, false)
	cmd.Flags().IntVar(&limit, "limit", 20, "Rows to print (0 = all)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var view viewOptions
	var out string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the filtered rows as CSV",
		Long: `Write the selected columns of the matching rows as CSV, in sort order.

Example: csvlens export people.csv -q oslo --columns name --out ` + core.ExportFileName,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ds, err := loadFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return svc.Export(ds.ID, view.request(), w)
		},
	}

	addViewFlags(cmd, &view, true)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func addViewFlags(cmd *cobra.Command, v *viewOptions, withQuery bool) {
	if withQuery {
		cmd.Flags().StringVarP(&v.query, "query", "q", "", "Search terms; every term must match")
	}
	cmd.Flags().StringSliceVar(&v.columns, "columns", nil, "Columns to keep, in order (default all)")
	cmd.Flags().StringVar(&v.sort, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&v.desc, "desc", false, "Sort descending")
}

// loadFile reads path into a throwaway service.
func loadFile(ctx context.Context, opts *rootOptions, path string) (*core.Service, *core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}

	svc := core.NewService(core.ServiceConfig{
		MaxFileSize:    opts.maxSize,
		MaxConcurrent:  1,
		MaxRows:        opts.maxRows,
		LenientNumbers: opts.lenient,
		Sheet:          opts.sheet,
	})
	if ctx == nil {
		ctx = context.Background()
	}
	ds, err := svc.LoadDataset(ctx, filepath.Base(path), f, info.Size())
	if err != nil {
		return nil, nil, err
	}
	return svc, ds, nil
}

func writeStats(w io.Writer, stats []core.StatisticsRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tDISTINCT\tMISSING\tMEAN\tMEDIAN\tSTDDEV\tMIN\tMAX")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d", s.Column, s.Type, s.DistinctCount, s.MissingCount)
		if n := s.Numeric; n != nil {
			for _, v := range []float64{n.Mean, n.Median, n.StdDev, n.Min, n.Max} {
				fmt.Fprintf(tw, "\t%s", formatFloat(v))
			}
		} else {
			fmt.Fprint(tw, "\t\t\t\t\t")
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// writeRows prints up to limit rows with their 1-based source row number.
func writeRows(w io.Writer, t *core.Table, limit int) error {
	n := t.NumRows()
	if limit > 0 {
		n = min(n, limit)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\t"+strings.Join(t.ColumnNames(), "\t"))
	for i := 0; i < n; i++ {
		cells := t.Row(i)
		fields := make([]string, len(cells))
		for c, cell := range cells {
			fields[c] = cell.String()
		}
		fmt.Fprintf(tw, "%d\t%s\n", t.RowIndex(i)+1, strings.Join(fields, "\t"))
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
