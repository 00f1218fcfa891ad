package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookshop-insights/models"
	"bookshop-insights/render"
	"bookshop-insights/services"
	"bookshop-insights/utils"
)

// State is the position of the menu loop.
type State int

const (
	ShowingMenu State = iota
	AwaitingInput
	Dispatching
	Exited
)

func (s State) String() string {
	switch s {
	case ShowingMenu:
		return "showing menu"
	case AwaitingInput:
		return "awaiting input"
	case Dispatching:
		return "dispatching"
	case Exited:
		return "exited"
	}
	return "unknown"
}

// Snapshotter hands out fresh table snapshots.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*models.Table, error)
}

// Menu is the interactive analysis loop.
type Menu struct {
	books   Snapshotter
	fields  models.Fields
	recipes []services.Recipe
	printer *services.Printer
	display render.Display
	logger  *utils.Logger

	in    *bufio.Reader
	out   io.Writer
	state State
	last  *models.Summary
}

// NewMenu wires a menu reading selections from in and writing to out.
func NewMenu(books Snapshotter, fields models.Fields, display render.Display, in io.Reader, out io.Writer, logger *utils.Logger) *Menu {
	return &Menu{
		books:   books,
		fields:  fields,
		recipes: services.Recipes,
		printer: services.NewPrinter(out),
		display: display,
		logger:  logger,
		in:      bufio.NewReader(in),
		out:     out,
		state:   ShowingMenu,
	}
}

// State reports where the loop currently is.
func (m *Menu) State() State { return m.state }

// LastSummary returns the most recent successful summary, if any.
func (m *Menu) LastSummary() *models.Summary { return m.last }

// Run loops until the exit option is chosen, input ends or ctx is cancelled.
// Analysis failures are reported inline and never end the loop.
func (m *Menu) Run(ctx context.Context) error {
	for m.state != Exited {
		if err := ctx.Err(); err != nil {
			m.state = Exited
			return err
		}
		m.Step(ctx)
	}
	return nil
}

// Step shows the menu once, reads one selection and handles it.
func (m *Menu) Step(ctx context.Context) {
	m.state = ShowingMenu
	m.printMenu()

	m.state = AwaitingInput
	fmt.Fprint(m.out, "Choose: ")
	line, err := m.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if !errors.Is(err, io.EOF) {
			m.logger.Error("[menu] Reading input failed: %v", err)
		}
		fmt.Fprintln(m.out)
		m.exit()
		return
	}
	choice := strings.TrimSpace(line)

	exitOption := strconv.Itoa(len(m.recipes) + 1)
	if choice == exitOption {
		m.exit()
		return
	}

	recipe, ok := m.lookup(choice)
	if !ok {
		fmt.Fprintln(m.out, "Invalid choice")
		m.state = ShowingMenu
		return
	}

	m.state = Dispatching
	if err := m.dispatch(ctx, recipe); err != nil {
		m.report(recipe, err)
	}
	m.state = ShowingMenu
}

func (m *Menu) exit() {
	fmt.Fprintln(m.out, "Goodbye!")
	m.state = Exited
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out, "\n--- Dream Book Shop ---")
	for i, r := range m.recipes {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, r.Label)
	}
	fmt.Fprintf(m.out, "%d. Exit\n", len(m.recipes)+1)
}

func (m *Menu) lookup(choice string) (services.Recipe, bool) {
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(m.recipes) || strconv.Itoa(n) != choice {
		return services.Recipe{}, false
	}
	return m.recipes[n-1], true
}

// dispatch loads a fresh snapshot, then analyses, prints and displays it.
func (m *Menu) dispatch(ctx context.Context, r services.Recipe) error {
	table, err := m.books.Snapshot(ctx)
	if err != nil {
		return err
	}

	summary, chart, err := r.Analyze(table, m.fields)
	if err != nil {
		return err
	}
	m.last = summary
	m.printer.Print(summary)

	if chart == nil {
		return nil
	}
	if err := m.display.Show(ctx, r.ID, chart); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	return nil
}

func (m *Menu) report(r services.Recipe, err error) {
	var (
		dae *models.DataAccessError
		se  *models.SchemaError
		ee  *models.EmptyDatasetError
	)
	switch {
	case errors.As(err, &dae):
		fmt.Fprintf(m.out, "Could not read the book data (%s): %v\n", dae.Source, dae.Err)
	case errors.As(err, &se):
		fmt.Fprintf(m.out, "%s needs a %q column, which the dataset does not have\n", r.Label, se.Column)
	case errors.As(err, &ee):
		fmt.Fprintf(m.out, "%s: no data, the dataset has no rows\n", r.Label)
	default:
		fmt.Fprintf(m.out, "%s failed: %v\n", r.Label, err)
	}
	m.logger.Debug("[menu] %s: %v", r.ID, err)
}
