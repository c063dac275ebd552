// Command csvlens inspects CSV, TSV and Excel files from the terminal: column
// statistics, multi-term search and filtered export.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/csvlens/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		fmt.Fprintln(os.Stderr, "detail:", err)
		os.Exit(1)
	}
}
