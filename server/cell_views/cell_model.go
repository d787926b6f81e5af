// cell_views contains views derived from the Cell view-model.
package cell_views

import (
	"qmaze/grid_world"
)

// Snapshot is the training state handed to the views after an episode. Values
// must not be written once the snapshot is sent; the trainer sends a clone.
type Snapshot struct {
	Grid    *grid_world.Grid
	Start   grid_world.Cell
	Values  grid_world.ActionValues
	Episode int
	Steps   int
	Outcome string
}

// Board is the view-model for a Snapshot. Cells are indexed [row][col], which
// matches the svg coordinate system: [0][0] is the top left cell.
type Board struct {
	Episode int
	Steps   int
	Outcome string
	Cells   [][]Cell
}

// Cell fields should be immediately usable as view parameters.
type Cell struct {
	Row, Col            int
	Max                 float64
	PolicyArrowRotation int
	// Only floor cells have a meaningful policy.
	Floor bool
	Fill  string
}

// Convert transforms a training snapshot into a Board for consumption by the views.
func Convert(snap *Snapshot) *Board {
	rows, cols := snap.Grid.Dims()
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}

	snap.Grid.Visit(func(cell grid_world.Cell, code grid_world.CellCode) {
		cells[cell.Row][cell.Col] = Cell{
			Row:                 cell.Row,
			Col:                 cell.Col,
			Max:                 snap.Values.BestValue(cell),
			PolicyArrowRotation: getDegrees(snap.Values.BestAction(cell)),
			Floor:               code == grid_world.PATH,
			Fill:                getFill(code, cell == snap.Start),
		}
	})

	return &Board{
		Episode: snap.Episode,
		Steps:   snap.Steps,
		Outcome: snap.Outcome,
		Cells:   cells,
	}
}

// getDegrees returns the clockwise rotation of an upward arrow, as passed to svg's rotate().
func getDegrees(action grid_world.Action) int {
	switch action {
	case grid_world.RIGHT:
		return 90
	case grid_world.DOWN:
		return 180
	case grid_world.LEFT:
		return 270
	}
	return 0
}

func getFill(code grid_world.CellCode, isStart bool) (fill string) {
	if isStart {
		return "lightblue"
	}
	switch code {
	case grid_world.WALL:
		fill = "lightgreen"
	case grid_world.PATH:
		fill = "lightgray"
	case grid_world.GOAL:
		fill = "lightyellow"
	}
	return
}
