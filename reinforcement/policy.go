package reinforcement

import (
	"math/rand"

	. "qmaze/grid_world"
)

// EpsilonGreedy selects actions from a q-table.
//
// Note the branch direction: a uniform draw below Epsilon exploits, so Epsilon is
// the probability of taking the greedy action and 1-Epsilon the probability of a
// random one. An Epsilon of 0.95 is a mostly-greedy agent.
type EpsilonGreedy struct {
	Epsilon float64
	rng     *rand.Rand
}

// NewEpsilonGreedy returns a policy drawing all of its randomness from @rng.
func NewEpsilonGreedy(epsilon float64, rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{
		Epsilon: epsilon,
		rng:     rng,
	}
}

// SelectAction returns the next action for @cell and whether it was the greedy one.
func (p *EpsilonGreedy) SelectAction(q *QTable, cell Cell) (action Action, exploited bool) {
	if p.rng.Float64() < p.Epsilon {
		return q.BestAction(cell), true
	}
	return Actions[p.rng.Intn(NUM_ACTIONS)], false
}
