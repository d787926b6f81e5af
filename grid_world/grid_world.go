package grid_world

import (
	"errors"
	"fmt"
)

// CellCode is the raw maze encoding of a grid cell.
type CellCode int

const (
	// Maze cell codes
	WALL CellCode = 0
	PATH CellCode = 1
	GOAL CellCode = 2
)

// Cell is a grid coordinate. The agent's state is just its cell; whether or
// not the cell is terminal is derived from the reward table, not stored.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Action is one of the four moves. The declaration order is significant: it is
// both the q-table column index and the tie-break order for greedy selection.
type Action int

const (
	UP Action = iota
	DOWN
	LEFT
	RIGHT
	NUM_ACTIONS = 4
)

// Actions lists every action in tie-break order.
var Actions = [NUM_ACTIONS]Action{UP, DOWN, LEFT, RIGHT}

func (a Action) String() string {
	switch a {
	case UP:
		return "up"
	case DOWN:
		return "down"
	case LEFT:
		return "left"
	case RIGHT:
		return "right"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Delta returns the row and column displacement of the action.
func (a Action) Delta() (dr, dc int) {
	switch a {
	case UP:
		return -1, 0
	case DOWN:
		return 1, 0
	case LEFT:
		return 0, -1
	case RIGHT:
		return 0, 1
	}
	return 0, 0
}

// Step is a single time step of an agent: do action a in
// cell s, observe reward r and successor s'.
type Step struct {
	State     Cell
	Successor Cell
	Action    Action
	Reward    float64
}

// Episode is a sequence of Steps.
type Episode []Step

// ErrInvalidGrid is returned for empty or ragged mazes, and for unknown cell codes.
var ErrInvalidGrid = errors.New("invalid grid")

// Grid is an immutable rectangular maze. Row 0 is the top row when printed.
type Grid struct {
	rows, cols int
	codes      [][]CellCode
}

// NewGrid copies the passed maze codes into a Grid. The maze must have at least one row
// and all rows must be equally long and non-empty. Codes themselves are checked when
// rewards are derived.
func NewGrid(maze [][]int) (*Grid, error) {
	if len(maze) == 0 || len(maze[0]) == 0 {
		return nil, fmt.Errorf("%w: maze has no cells", ErrInvalidGrid)
	}

	cols := len(maze[0])
	codes := make([][]CellCode, len(maze))
	for r, row := range maze {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidGrid, r, len(row), cols)
		}
		codes[r] = make([]CellCode, cols)
		for c, code := range row {
			codes[r][c] = CellCode(code)
		}
	}

	return &Grid{
		rows:  len(maze),
		cols:  cols,
		codes: codes,
	}, nil
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (rows, cols int) {
	return g.rows, g.cols
}

// Size is the number of cells in the grid.
func (g *Grid) Size() int {
	return g.rows * g.cols
}

func (g *Grid) InBounds(cell Cell) bool {
	return cell.Row >= 0 && cell.Row < g.rows && cell.Col >= 0 && cell.Col < g.cols
}

// Code returns the maze code at the passed cell, which must be in bounds.
func (g *Grid) Code(cell Cell) CellCode {
	return g.codes[cell.Row][cell.Col]
}

// Visit calls fn for every cell, row by row.
func (g *Grid) Visit(fn func(cell Cell, code CellCode)) {
	for r := range g.codes {
		for c := range g.codes[r] {
			fn(Cell{Row: r, Col: c}, g.codes[r][c])
		}
	}
}

// RewardTable holds the reward for stepping into each cell. It is derived once from a
// Grid and never mutated afterward.
type RewardTable struct {
	rewards [][]float64
	// The grid's codes tell walls from the goal, whatever their rewards.
	codes [][]CellCode
	floor float64
}

// DeriveRewards maps each maze code to its reward: walls and the goal are terminal,
// floor cells carry the per-step cost. Nothing is returned if any cell code is unknown.
func DeriveRewards(grid *Grid, wallReward, floorReward, goalReward float64) (*RewardTable, error) {
	rewards := make([][]float64, grid.rows)
	for r := range grid.codes {
		rewards[r] = make([]float64, grid.cols)
		for c, code := range grid.codes[r] {
			switch code {
			case WALL:
				rewards[r][c] = wallReward
			case PATH:
				rewards[r][c] = floorReward
			case GOAL:
				rewards[r][c] = goalReward
			default:
				return nil, fmt.Errorf("%w: cell (%d,%d) has code %d", ErrInvalidGrid, r, c, code)
			}
		}
	}

	return &RewardTable{
		rewards: rewards,
		codes:   grid.codes,
		floor:   floorReward,
	}, nil
}

func (rt *RewardTable) Dims() (rows, cols int) {
	return len(rt.rewards), len(rt.rewards[0])
}

// At returns the reward for entering the passed cell.
func (rt *RewardTable) At(cell Cell) float64 {
	return rt.rewards[cell.Row][cell.Col]
}

// IsTerminal reports whether an episode ends upon entering the cell: anything that is not
// floor, i.e. a wall or the goal.
func (rt *RewardTable) IsTerminal(cell Cell) bool {
	return rt.At(cell) != rt.floor
}

func (rt *RewardTable) IsWall(cell Cell) bool {
	return rt.codes[cell.Row][cell.Col] == WALL
}

func (rt *RewardTable) IsGoal(cell Cell) bool {
	return rt.codes[cell.Row][cell.Col] == GOAL
}

// Floor returns the per-step reward of a non-terminal cell.
func (rt *RewardTable) Floor() float64 {
	return rt.floor
}
