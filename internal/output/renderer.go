package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atikulmunna/tally/internal/aggregator"
	"github.com/atikulmunna/tally/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Renderer writes a Report to an output stream.
type Renderer interface {
	Render(report model.Report) error
}

// New returns the renderer for format ("text" or "json") writing to w.
// A nil w means stdout.
func New(format string, w io.Writer, withStats bool) (Renderer, error) {
	if w == nil {
		w = os.Stdout
	}
	switch strings.ToLower(format) {
	case "", "text":
		r := NewTextRenderer(w)
		r.Stats = withStats
		return r, nil
	case "json":
		return NewJSONRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}

// ---------------------------------------------------------------------------
// Text Renderer
// ---------------------------------------------------------------------------

const ruleWidth = 60

// TextRenderer prints the human-readable summary. Colour is applied only
// when w is a terminal.
type TextRenderer struct {
	w     io.Writer
	Stats bool

	styleRule   lipgloss.Style
	styleHeader lipgloss.Style
	styleFile   lipgloss.Style
	styleLabel  lipgloss.Style
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	lr := lipgloss.NewRenderer(w)
	return &TextRenderer{
		w:           w,
		styleRule:   lr.NewStyle().Foreground(lipgloss.Color("245")),
		styleHeader: lr.NewStyle().Bold(true),
		styleFile:   lr.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		styleLabel:  lr.NewStyle().Faint(true),
	}
}

func (r *TextRenderer) Render(report model.Report) error {
	results := report.Results
	if len(results) == 0 {
		_, err := fmt.Fprintln(r.w, "No results to summarize.")
		return err
	}

	var b strings.Builder
	rule := r.styleRule.Render(strings.Repeat("=", ruleWidth))

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "%s\n", r.styleHeader.Render(fmt.Sprintf("Analysis Summary: %d file(s) analyzed", len(results))))
	fmt.Fprintf(&b, "%s\n\n", rule)

	for _, s := range results {
		fmt.Fprintf(&b, "%s %s\n", r.styleLabel.Render("File:"), r.styleFile.Render(s.Filename))
		fmt.Fprintf(&b, "  %s %s\n", r.styleLabel.Render("Model:"), s.Model)
		fmt.Fprintf(&b, "  %s %s\n", r.styleLabel.Render("Task:"), s.Task)
		fmt.Fprintf(&b, "  %s %d characters\n", r.styleLabel.Render("Output Length:"), s.OutputLength)
		fmt.Fprintf(&b, "  %s %s\n", r.styleLabel.Render("Timestamp:"), s.Timestamp)
		b.WriteString("\n")
	}

	if r.Stats {
		r.writeStats(&b, aggregator.Compute(results))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *TextRenderer) writeStats(b *strings.Builder, st aggregator.Stats) {
	fmt.Fprintf(b, "%s\n", r.styleHeader.Render("Statistics"))
	fmt.Fprintf(b, "  %s %d characters\n", r.styleLabel.Render("Total Output:"), st.TotalChars)
	fmt.Fprintf(b, "  %s %d of %d\n", r.styleLabel.Render("With Metadata:"), st.WithMetadata, st.FilesAnalyzed)
	fmt.Fprintf(b, "  %s\n", r.styleLabel.Render("By Model:"))
	for _, k := range aggregator.SortedKeys(st.ModelCounts) {
		fmt.Fprintf(b, "    %s: %d\n", k, st.ModelCounts[k])
	}
	fmt.Fprintf(b, "  %s\n", r.styleLabel.Render("By Task:"))
	for _, k := range aggregator.SortedKeys(st.TaskCounts) {
		fmt.Fprintf(b, "    %s: %d\n", k, st.TaskCounts[k])
	}
	b.WriteString("\n")
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each summary as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(report model.Report) error {
	for _, s := range report.Results {
		if err := r.enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}
