package models

// KeyCount is one grouping key with its aggregated count.
type KeyCount struct {
	Key   string
	Count int
}

// Grid is a two-key pivot. Cells[i][j] is the count for RowKeys[i] x ColKeys[j].
type Grid struct {
	RowLabel string
	ColLabel string
	RowKeys  []string
	ColKeys  []string
	Cells    [][]int
}

// RowTotal sums a grid row across all columns.
func (g *Grid) RowTotal(i int) int {
	total := 0
	for _, n := range g.Cells[i] {
		total += n
	}
	return total
}

// ISBNStats holds the missing/present split of the ISBN column.
// NoData is set when the table has no rows; Percent is then meaningless.
type ISBNStats struct {
	Missing int
	Present int
	Total   int
	Percent float64
	NoData  bool
}

// Summary is the derived result of one analysis. Exactly one of Counts, Grid or
// ISBN is populated.
type Summary struct {
	Recipe   string
	Title    string
	KeyLabel string
	Counts   []KeyCount
	Grid     *Grid
	ISBN     *ISBNStats
}

// ChartKind selects how a ChartSpec is drawn.
type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartBarH      ChartKind = "barh"
	ChartBar       ChartKind = "bar"
	ChartPie       ChartKind = "pie"
	ChartMultiLine ChartKind = "multiline"
)

// ChartPoint is a single labelled value.
type ChartPoint struct {
	Label string
	Value float64
}

// ChartSeries is a named run of points. Single-series charts use one entry.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// ChartSpec describes a chart independently of the library that draws it.
type ChartSpec struct {
	Kind         ChartKind
	Title        string
	XLabel       string
	YLabel       string
	RotateLabels bool
	Series       []ChartSeries
}
