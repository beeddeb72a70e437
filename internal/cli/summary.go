package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"audiobatch/internal/batch"
)

// PrintSummary writes the end-of-run report for a batch.
func PrintSummary(w io.Writer, records []batch.Record) {
	s := batch.Summarize(records)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "============================================")
	fmt.Fprintln(w, " Batch summary")
	fmt.Fprintln(w, "============================================")
	fmt.Fprintf(w, " Total files:  %d\n", s.Total)
	fmt.Fprintf(w, " Succeeded:    %d\n", s.Succeeded)
	fmt.Fprintf(w, " Failed:       %d\n", len(s.Failed))
	if s.Total > 0 {
		fmt.Fprintf(w, " Success rate: %.0f%%\n", s.SuccessRate()*100)
	}

	if len(s.Failed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, " Failed files:")
		for _, r := range s.Failed {
			fmt.Fprintf(w, "   %s: %s\n", filepath.Base(r.File), r.Detail)
		}
	}
	fmt.Fprintln(w, "============================================")
}
