package reinforcement

import (
	. "qmaze/grid_world"
)

// Successor returns the cell reached by taking @action in @cell. Moves that would
// leave the grid are legal but have no effect: the agent stays put. Walls are not
// blocked here; stepping into one is what ends an episode.
func Successor(grid *Grid, cell Cell, action Action) Cell {
	dr, dc := action.Delta()
	next := Cell{Row: cell.Row + dr, Col: cell.Col + dc}
	if !grid.InBounds(next) {
		return cell
	}
	return next
}
