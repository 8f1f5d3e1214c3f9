package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/juxtarchive/juxtarchive/internal/model"
)

// MarkdownWriter outputs probe reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the probe report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ProbeReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeEstimates(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ProbeReport) {
	md.H1("Archive Probe Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Platform", "`" + report.BaseURL + "`"},
			{"Probe Date", report.DateProbed.Format("2006-01-02 15:04:05 MST")},
			{"Communities", strconv.Itoa(len(report.Estimates))},
			{"Estimated Items", strconv.Itoa(report.TotalItems())},
			{"Requests Spent", strconv.Itoa(report.TotalProbes())},
		},
	})
	md.PlainText("")
}

// writeEstimates writes the per-community estimate table.
func (w *MarkdownWriter) writeEstimates(md *markdown.Markdown, report *model.ProbeReport) {
	md.H2("Communities")
	md.PlainText("")

	if len(report.Estimates) == 0 {
		md.PlainText("No communities probed.")
		return
	}

	rows := make([][]string, 0, len(report.Estimates))
	for _, e := range report.Estimates {
		rows = append(rows, []string{
			e.Name,
			"`" + e.CommunityID + "`",
			strconv.Itoa(e.Items),
			strconv.Itoa(e.Probes),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Community", "ID", "Estimated Items", "Probes"},
		Rows:   rows,
	})
	md.PlainText("")
}
