package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bookshop-insights/models"
)

// Printer writes summaries to the console.
type Printer struct {
	out     io.Writer
	title   lipgloss.Style
	label   lipgloss.Style
	warning lipgloss.Style
	num     *message.Printer
}

// NewPrinter creates a Printer for w. Colours are only emitted when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out:     w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6")),
		label:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		num:     message.NewPrinter(language.English),
	}
}

// Print renders one summary.
func (p *Printer) Print(s *models.Summary) {
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(p.out, "\n%s\n", p.title.Render(s.Title))
	fmt.Fprintf(p.out, "%s\n", thin)

	switch {
	case s.ISBN != nil:
		p.printISBN(s.ISBN)
	case s.Grid != nil:
		p.printGrid(s.Grid)
	default:
		p.printCounts(s.KeyLabel, s.Counts)
	}
	fmt.Fprintln(p.out)
}

func (p *Printer) printCounts(keyLabel string, counts []models.KeyCount) {
	if len(counts) == 0 {
		fmt.Fprintln(p.out, p.warning.Render("No values to group"))
		return
	}

	width := lipgloss.Width(keyLabel)
	for _, c := range counts {
		if w := lipgloss.Width(c.Key); w > width {
			width = w
		}
	}

	fmt.Fprintln(p.out, p.label.Render(pad(keyLabel, width)))
	for _, c := range counts {
		fmt.Fprintf(p.out, "%s  %s\n", pad(c.Key, width), p.num.Sprintf("%d", c.Count))
	}
}

func (p *Printer) printISBN(st *models.ISBNStats) {
	if st.NoData {
		fmt.Fprintln(p.out, p.warning.Render("No data: the dataset has no rows"))
		return
	}
	fmt.Fprintf(p.out, "Missing ISBN: %s\n", p.num.Sprintf("%d", st.Missing))
	fmt.Fprintf(p.out, "Present ISBN: %s\n", p.num.Sprintf("%d", st.Present))
	fmt.Fprintf(p.out, "Percentage missing: %.2f%%\n", st.Percent)
}

// printGrid lays the pivot out with the column name heading the column keys
// and the row name on its own line beneath.
func (p *Printer) printGrid(g *models.Grid) {
	if len(g.RowKeys) == 0 {
		fmt.Fprintln(p.out, p.warning.Render("No values to group"))
		return
	}

	rowWidth := max(lipgloss.Width(g.RowLabel), lipgloss.Width(g.ColLabel))
	for _, k := range g.RowKeys {
		if w := lipgloss.Width(k); w > rowWidth {
			rowWidth = w
		}
	}

	cells := make([][]string, len(g.RowKeys))
	widths := make([]int, len(g.ColKeys))
	for j, k := range g.ColKeys {
		widths[j] = lipgloss.Width(k)
	}
	for i := range g.RowKeys {
		cells[i] = make([]string, len(g.ColKeys))
		for j := range g.ColKeys {
			cells[i][j] = p.num.Sprintf("%d", g.Cells[i][j])
			if w := lipgloss.Width(cells[i][j]); w > widths[j] {
				widths[j] = w
			}
		}
	}

	header := []string{pad(g.ColLabel, rowWidth)}
	for j, k := range g.ColKeys {
		header = append(header, padLeft(k, widths[j]))
	}
	fmt.Fprintln(p.out, p.label.Render(strings.Join(header, "  ")))
	fmt.Fprintln(p.out, p.label.Render(g.RowLabel))

	for i, rk := range g.RowKeys {
		line := []string{pad(rk, rowWidth)}
		for j := range g.ColKeys {
			line = append(line, padLeft(cells[i][j], widths[j]))
		}
		fmt.Fprintln(p.out, strings.Join(line, "  "))
	}
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}
