package grid_world

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
)

// ActionValues is the read-only view of learned action values needed for display.
type ActionValues interface {
	BestAction(Cell) Action
	BestValue(Cell) float64
}

// Display prints grids, policies and paths to the console, optionally in color.
type Display struct {
	w  io.Writer
	au aurora.Aurora
}

func NewDisplay(w io.Writer, colors bool) *Display {
	return &Display{
		w:  w,
		au: aurora.NewAurora(colors),
	}
}

func (d *Display) code(code CellCode) aurora.Value {
	switch code {
	case WALL:
		return d.au.Blue("#")
	case GOAL:
		return d.au.Yellow("G")
	}
	return d.au.White(".")
}

// ShowGrid prints the maze, for visual reference. The start cell is marked with S.
func (d *Display) ShowGrid(grid *Grid, start Cell) {
	for r := 0; r < grid.rows; r++ {
		for c := 0; c < grid.cols; c++ {
			cell := Cell{Row: r, Col: c}
			if cell == start {
				fmt.Fprintf(d.w, "%v ", d.au.Green("S"))
				continue
			}
			fmt.Fprintf(d.w, "%v ", d.code(grid.Code(cell)))
		}
		fmt.Fprintln(d.w)
	}
}

// Arrow is the console rune for the direction of an action.
func (a Action) Arrow() rune {
	switch a {
	case UP:
		return '^'
	case DOWN:
		return 'v'
	case LEFT:
		return '<'
	case RIGHT:
		return '>'
	}
	return '?'
}

// ShowPolicy prints the greedy action of every floor cell; terminal cells are printed as their code.
func (d *Display) ShowPolicy(grid *Grid, values ActionValues) {
	for r := 0; r < grid.rows; r++ {
		fmt.Fprint(d.w, " ")
		for c := 0; c < grid.cols; c++ {
			cell := Cell{Row: r, Col: c}
			if code := grid.Code(cell); code != PATH {
				fmt.Fprintf(d.w, "%v ", d.code(code))
				continue
			}
			fmt.Fprintf(d.w, "%c ", values.BestAction(cell).Arrow())
		}
		fmt.Fprintln(d.w)
	}
}

// ShowMaxValues prints the maximum action value of each cell.
func (d *Display) ShowMaxValues(grid *Grid, values ActionValues) {
	fmt.Fprintln(d.w, "Max vals:")
	total := 0.0
	for r := 0; r < grid.rows; r++ {
		fmt.Fprint(d.w, " ")
		for c := 0; c < grid.cols; c++ {
			val := values.BestValue(Cell{Row: r, Col: c})
			if val < 0 {
				fmt.Fprintf(d.w, "%v ", d.au.Red(fmt.Sprintf("%8.2f", val)))
			} else {
				fmt.Fprintf(d.w, "%v ", d.au.Cyan(fmt.Sprintf("%8.2f", val)))
			}
			total += val
		}
		fmt.Fprintln(d.w)
	}
	fmt.Fprintf(d.w, "Total: %.2f\n", total)
}

// ShowPath overlays the passed path onto the maze.
func (d *Display) ShowPath(grid *Grid, path []Cell) {
	onPath := make(map[Cell]bool, len(path))
	for _, cell := range path {
		onPath[cell] = true
	}

	for r := 0; r < grid.rows; r++ {
		for c := 0; c < grid.cols; c++ {
			cell := Cell{Row: r, Col: c}
			if onPath[cell] && grid.Code(cell) != GOAL {
				fmt.Fprintf(d.w, "%v ", d.au.Green("*"))
				continue
			}
			fmt.Fprintf(d.w, "%v ", d.code(grid.Code(cell)))
		}
		fmt.Fprintln(d.w)
	}
}
