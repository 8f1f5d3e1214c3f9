package report

import (
	"fmt"
	"io"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the probe report as aligned plain text.
func (w *SimpleWriter) Write(report *model.ProbeReport) (int, error) {
	var total int

	n, err := fmt.Fprintf(w.output, "Archive probe of %s (%s)\n\n",
		report.BaseURL, report.DateProbed.Format("2006-01-02 15:04:05 MST"))
	total += n
	if err != nil {
		return total, err
	}

	n, err = fmt.Fprintf(w.output, "%-40s %-22s %15s %8s\n", "COMMUNITY", "ID", "EST. ITEMS", "PROBES")
	total += n
	if err != nil {
		return total, err
	}

	for _, e := range report.Estimates {
		n, err = fmt.Fprintf(w.output, "%-40s %-22s %15d %8d\n", e.Name, e.CommunityID, e.Items, e.Probes)
		total += n
		if err != nil {
			return total, err
		}
	}

	n, err = fmt.Fprintf(w.output, "\nTotal: %d items across %d communities, %d requests spent\n",
		report.TotalItems(), len(report.Estimates), report.TotalProbes())
	total += n
	return total, err
}
