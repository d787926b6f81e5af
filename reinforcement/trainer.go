package reinforcement

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	. "qmaze/grid_world"
)

/*
Q-learning, tabular and single threaded. Each episode starts from the same cell and runs
until the agent steps into a terminal cell (a wall or the goal), applying the update

	Q(s,a) += eta * (r + gamma * max_a' Q(s',a') - Q(s,a))

after every step. The agent may also bump into the grid edge, which leaves it in place on
a floor cell; an agent that keeps doing that never terminates, hence the step budget.
*/

// Outcome describes how an episode ended.
type Outcome int

const (
	// The start cell itself is terminal, so no step was taken.
	OutcomeTerminalStart Outcome = iota
	OutcomeGoal
	OutcomeWall
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTerminalStart:
		return "terminal-start"
	case OutcomeGoal:
		return "goal"
	case OutcomeWall:
		return "wall"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// EpisodeReport summarizes one finished episode.
type EpisodeReport struct {
	// Index is zero-based.
	Index   int
	Steps   int
	Return  float64
	Final   Cell
	Outcome Outcome
	// Trajectory is discarded after the progress callback returns; retain a copy if needed.
	Trajectory Episode
}

// ProgressFunc is a callback by which the training method can lend progress details.
// It is called synchronously on the training goroutine after every episode, thus it should
// complete quickly, and may read the trainer's q-table but must not retain it.
type ProgressFunc func(context.Context, *EpisodeReport)

// EpisodeStartFunc is called on the training goroutine before each episode, with its index.
type EpisodeStartFunc func(context.Context, int)

// NewRand returns the random source threaded through training. A zero seed means a
// time-based seed, which is logged so the run can be replayed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
		log.Printf("using random seed %d", seed)
	}
	return rand.New(rand.NewSource(seed))
}

// Trainer owns the q-table while training.
type Trainer struct {
	grid       *Grid
	rewards    *RewardTable
	q          *QTable
	policy     *EpsilonGreedy
	start      Cell
	episodes   int
	maxSteps   int
	eta, gamma float64
	progressFn ProgressFunc
	startFn    EpisodeStartFunc
}

// NewTrainer returns a trainer with a zeroed q-table. All randomness is drawn from @rng.
func NewTrainer(
	grid *Grid,
	rewards *RewardTable,
	cfg *TrainingConfig,
	rng *rand.Rand,
) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := cfg.StartCell()
	if !grid.InBounds(start) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStart, start)
	}

	rows, cols := grid.Dims()
	return &Trainer{
		grid:     grid,
		rewards:  rewards,
		q:        NewQTable(rows, cols),
		policy:   NewEpsilonGreedy(cfg.Epsilon(), rng),
		start:    start,
		episodes: cfg.Episodes,
		maxSteps: cfg.MaxStepsPerEpisode,
		eta:      cfg.Eta(),
		gamma:    cfg.Gamma(),
	}, nil
}

// WithProgress sets the per-episode callback.
func (t *Trainer) WithProgress(fn ProgressFunc) *Trainer {
	t.progressFn = fn
	return t
}

// WithEpisodeStart sets the callback run before every episode.
func (t *Trainer) WithEpisodeStart(fn EpisodeStartFunc) *Trainer {
	t.startFn = fn
	return t
}

// QTable returns the trainer's table. Callers must treat it as read-only.
func (t *Trainer) QTable() *QTable {
	return t.q
}

// Train runs every episode and returns the learned table. There is no convergence check;
// the episode count is the only stopping criterion, unless the context is cancelled or an
// episode exhausts the step budget.
func (t *Trainer) Train(ctx context.Context) (*QTable, error) {
	for i := 0; i < t.episodes; i++ {
		if t.startFn != nil {
			t.startFn(ctx, i)
		}
		report, err := t.runEpisode(ctx, i)
		if err != nil {
			return t.q, fmt.Errorf("episode %d: %w", i, err)
		}

		if t.progressFn != nil {
			t.progressFn(ctx, report)
		}
	}
	return t.q, nil
}

func (t *Trainer) runEpisode(ctx context.Context, index int) (*EpisodeReport, error) {
	report := &EpisodeReport{
		Index:   index,
		Final:   t.start,
		Outcome: OutcomeTerminalStart,
	}

	cell := t.start
	for !t.rewards.IsTerminal(cell) {
		if t.maxSteps > 0 && report.Steps >= t.maxSteps {
			return nil, fmt.Errorf("%w: %d steps without reaching a terminal cell", ErrStepBudgetExceeded, report.Steps)
		}

		// done-guard
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		action, _ := t.policy.SelectAction(t.q, cell)
		successor := Successor(t.grid, cell, action)
		step := Step{
			State:     cell,
			Action:    action,
			Successor: successor,
			Reward:    t.rewards.At(successor),
		}
		tdUpdate(t.q, step, t.eta, t.gamma)

		report.Trajectory = append(report.Trajectory, step)
		report.Return += step.Reward
		report.Steps++
		cell = successor
	}

	report.Final = cell
	if report.Steps > 0 {
		report.Outcome = OutcomeWall
		if t.rewards.IsGoal(cell) {
			report.Outcome = OutcomeGoal
		}
	}
	return report, nil
}

// tdUpdate applies the q-learning update for a single step and returns the new value.
// Terminal successors are never updated themselves, so their values stay zero and the
// target reduces to the reward.
func tdUpdate(q *QTable, step Step, eta, gamma float64) float64 {
	old := q.Get(step.State, step.Action)
	td := step.Reward + gamma*q.BestValue(step.Successor) - old
	updated := old + eta*td
	q.Set(step.State, step.Action, updated)
	return updated
}
