package reinforcement

import (
	. "qmaze/grid_world"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QTable holds the action-value estimates Q(s,a). Each grid cell is a row of
// a (rows*cols x NUM_ACTIONS) dense matrix whose columns are in Action order.
// It is not safe for concurrent use; the trainer owns it, and other readers
// should work from a Clone.
type QTable struct {
	rows, cols int
	values     *mat.Dense
}

// NewQTable returns a zero-initialized table for a rows x cols grid.
func NewQTable(rows, cols int) *QTable {
	return &QTable{
		rows:   rows,
		cols:   cols,
		values: mat.NewDense(rows*cols, NUM_ACTIONS, nil),
	}
}

func (q *QTable) index(cell Cell) int {
	return cell.Row*q.cols + cell.Col
}

func (q *QTable) Dims() (rows, cols int) {
	return q.rows, q.cols
}

func (q *QTable) Get(cell Cell, action Action) float64 {
	return q.values.At(q.index(cell), int(action))
}

// Set is the only mutator of the table.
func (q *QTable) Set(cell Cell, action Action, value float64) {
	q.values.Set(q.index(cell), int(action), value)
}

// BestValue returns max_a Q(cell, a).
func (q *QTable) BestValue(cell Cell) float64 {
	return floats.Max(q.values.RawRowView(q.index(cell)))
}

// BestAction returns argmax_a Q(cell, a). Ties go to the first action in
// UP, DOWN, LEFT, RIGHT order, which keeps greedy rollouts reproducible.
func (q *QTable) BestAction(cell Cell) Action {
	return Action(floats.MaxIdx(q.values.RawRowView(q.index(cell))))
}

// Values returns a copy of the action values of the passed cell, in Action order.
func (q *QTable) Values(cell Cell) []float64 {
	return mat.Row(nil, q.index(cell), q.values)
}

// Clone returns a deep copy, e.g. for publishing snapshots while training continues.
func (q *QTable) Clone() *QTable {
	return &QTable{
		rows:   q.rows,
		cols:   q.cols,
		values: mat.DenseCopyOf(q.values),
	}
}
