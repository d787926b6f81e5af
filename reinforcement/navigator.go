package reinforcement

import (
	"fmt"
	"io"

	. "qmaze/grid_world"
)

// Path is the sequence of cells visited by a greedy rollout, beginning with the start cell.
type Path []Cell

// Print writes one line per cell of the path. Moves are numbered from 1; coordinates are the
// grid's zero-based row and column.
func (p Path) Print(w io.Writer) {
	for i, cell := range p {
		fmt.Fprintf(w, "Move %d: ( %d %d )\n", i+1, cell.Row, cell.Col)
	}
}

// Navigate performs a greedy rollout over the frozen table @q from @start and returns the
// path to the goal. The table is only read.
//
// A terminal start (wall or goal) yields an empty path and no error. Otherwise the rollout
// always takes the best-valued action. Stepping into a wall ends the rollout, because walls
// are terminal: the wall is not added to the path and ErrWallCollision is returned along
// with the path walked so far. If @maxSteps is positive and exhausted before a terminal cell
// is reached, e.g. the greedy action at the grid edge is a no-op, ErrStepBudgetExceeded is
// returned; with @maxSteps of zero such a rollout never returns.
func Navigate(
	grid *Grid,
	rewards *RewardTable,
	q *QTable,
	start Cell,
	maxSteps int,
) (Path, error) {
	if !grid.InBounds(start) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStart, start)
	}
	if rewards.IsTerminal(start) {
		return Path{}, nil
	}

	path := Path{start}
	cell := start
	for steps := 0; !rewards.IsTerminal(cell); steps++ {
		if maxSteps > 0 && steps >= maxSteps {
			return path, fmt.Errorf("%w: rollout stuck after %d steps at %v", ErrStepBudgetExceeded, steps, cell)
		}

		next := Successor(grid, cell, q.BestAction(cell))
		if rewards.IsWall(next) {
			return path, fmt.Errorf("%w: %v -> %v", ErrWallCollision, cell, next)
		}

		path = append(path, next)
		cell = next
	}
	return path, nil
}
