package reinforcement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	. "qmaze/grid_world"

	. "github.com/smartystreets/goconvey/convey"
)

// debugConfig is the 3x3 scenario: start at (2,1), goal at (1,2), reachable by up then right.
func debugConfig() *TrainingConfig {
	cfg := DefaultConfig()
	cfg.Maze = DebugMaze
	cfg.Start.Row, cfg.Start.Col = DebugStart.Row, DebugStart.Col
	cfg.Episodes = 200
	cfg.MaxStepsPerEpisode = 1000
	return cfg
}

func newEnv(cfg *TrainingConfig) (*Grid, *RewardTable) {
	grid, err := NewGrid(cfg.Maze)
	So(err, ShouldBeNil)
	rewards, err := DeriveRewards(grid, cfg.Rewards.Wall, cfg.Rewards.Floor, cfg.Rewards.Goal)
	So(err, ShouldBeNil)
	return grid, rewards
}

func TestTDUpdate(t *testing.T) {
	Convey("When a td update is applied", t, func() {
		q := NewQTable(1, 2)
		state, next := Cell{Row: 0, Col: 0}, Cell{Row: 0, Col: 1}
		q.Set(next, DOWN, 4)
		gamma := 0.8

		Convey("The value contracts toward the target for any eta in (0,1)", func() {
			for _, eta := range []float64{0.01, 0.1, 0.5, 0.9, 0.99} {
				for _, old := range []float64{-100, -1, 0, 3.2, 50} {
					q.Set(state, RIGHT, old)
					step := Step{State: state, Action: RIGHT, Successor: next, Reward: -10}
					target := step.Reward + gamma*q.BestValue(next)

					updated := tdUpdate(q, step, eta, gamma)
					So(q.Get(state, RIGHT), ShouldEqual, updated)
					So(math.Abs(updated-target), ShouldBeLessThan, math.Abs(old-target))
				}
			}
		})

		Convey("The update matches the q-learning formula", func() {
			q.Set(state, UP, 2)
			step := Step{State: state, Action: UP, Successor: next, Reward: 500}
			updated := tdUpdate(q, step, 0.9, gamma)
			So(updated, ShouldAlmostEqual, 2+0.9*(500+0.8*4-2))
		})
	})
}

func TestTrain(t *testing.T) {
	Convey("When training on the 3x3 maze", t, func() {
		cfg := debugConfig()
		grid, rewards := newEnv(cfg)
		trainer, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(3)))
		So(err, ShouldBeNil)

		reports := []*EpisodeReport{}
		trainer.WithProgress(func(_ context.Context, report *EpisodeReport) {
			reports = append(reports, report)
		})

		q, err := trainer.Train(context.Background())
		So(err, ShouldBeNil)
		So(q, ShouldPointTo, trainer.QTable())
		So(len(reports), ShouldEqual, cfg.Episodes)

		Convey("The start's greedy action heads toward the goal", func() {
			// Right of the start is a wall, so up is the only way.
			So(q.BestAction(DebugStart), ShouldEqual, UP)
			So(q.BestAction(Cell{Row: 1, Col: 1}), ShouldEqual, RIGHT)
		})

		Convey("The greedy rollout reaches the goal", func() {
			path, err := Navigate(grid, rewards, q, DebugStart, cfg.MaxStepsPerEpisode)
			So(err, ShouldBeNil)
			So(len(path), ShouldBeLessThanOrEqualTo, grid.Size())
			So(path[0], ShouldResemble, DebugStart)
			So(path[len(path)-1], ShouldResemble, Cell{Row: 1, Col: 2})
			So(path, ShouldResemble, Path{{Row: 2, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 2}})
		})

		Convey("Reports describe each episode", func() {
			goals := 0
			for i, report := range reports {
				So(report.Index, ShouldEqual, i)
				So(report.Steps, ShouldEqual, len(report.Trajectory))
				So(report.Steps, ShouldBeGreaterThan, 0)
				So(rewards.IsTerminal(report.Final), ShouldBeTrue)
				last := report.Trajectory[len(report.Trajectory)-1]
				So(last.Successor, ShouldResemble, report.Final)
				if report.Outcome == OutcomeGoal {
					goals++
				}
			}
			So(goals, ShouldBeGreaterThan, 0)
		})
	})

	Convey("When training on the full maze", t, func() {
		cfg := DefaultConfig()
		cfg.Episodes = 1500
		grid, rewards := newEnv(cfg)
		trainer, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(11)))
		So(err, ShouldBeNil)

		q, err := trainer.Train(context.Background())
		So(err, ShouldBeNil)

		path, err := Navigate(grid, rewards, q, FullStart, cfg.MaxStepsPerEpisode)
		So(err, ShouldBeNil)
		So(rewards.IsGoal(path[len(path)-1]), ShouldBeTrue)
	})

	Convey("When the start is terminal", t, func() {
		cfg := debugConfig()
		cfg.Episodes = 5
		cfg.Start.Row, cfg.Start.Col = 0, 0
		grid, rewards := newEnv(cfg)
		trainer, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)

		reports := []*EpisodeReport{}
		trainer.WithProgress(func(_ context.Context, report *EpisodeReport) {
			reports = append(reports, report)
		})
		q, err := trainer.Train(context.Background())
		So(err, ShouldBeNil)

		Convey("No updates are made", func() {
			So(len(reports), ShouldEqual, 5)
			for _, report := range reports {
				So(report.Steps, ShouldEqual, 0)
				So(report.Outcome, ShouldEqual, OutcomeTerminalStart)
			}
			grid.Visit(func(cell Cell, _ CellCode) {
				So(q.Values(cell), ShouldResemble, []float64{0, 0, 0, 0})
			})
		})
	})

	Convey("When episode start and progress callbacks are set", t, func() {
		cfg := debugConfig()
		cfg.Episodes = 3
		grid, rewards := newEnv(cfg)
		trainer, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(2)))
		So(err, ShouldBeNil)

		events := []string{}
		trainer.
			WithEpisodeStart(func(_ context.Context, index int) {
				events = append(events, fmt.Sprintf("start %d", index))
			}).
			WithProgress(func(_ context.Context, report *EpisodeReport) {
				events = append(events, fmt.Sprintf("finish %d", report.Index))
			})
		_, err = trainer.Train(context.Background())
		So(err, ShouldBeNil)
		So(events, ShouldResemble, []string{
			"start 0", "finish 0",
			"start 1", "finish 1",
			"start 2", "finish 2",
		})
	})

	Convey("When the goal pays the same as a wall", t, func() {
		cfg := debugConfig()
		cfg.Episodes = 50
		grid, err := NewGrid(cfg.Maze)
		So(err, ShouldBeNil)
		rewards, err := DeriveRewards(grid, 100, cfg.Rewards.Floor, 100)
		So(err, ShouldBeNil)
		trainer, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)

		walls := 0
		trainer.WithProgress(func(_ context.Context, report *EpisodeReport) {
			switch grid.Code(report.Final) {
			case WALL:
				walls++
				So(report.Outcome, ShouldEqual, OutcomeWall)
			case GOAL:
				So(report.Outcome, ShouldEqual, OutcomeGoal)
			}
		})
		_, err = trainer.Train(context.Background())
		So(err, ShouldBeNil)
		So(walls, ShouldBeGreaterThan, 0)
	})

	Convey("When the start is out of bounds", t, func() {
		cfg := debugConfig()
		cfg.Start.Row = 3
		grid, rewards := newEnv(cfg)
		_, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(1)))
		So(errors.Is(err, ErrInvalidStart), ShouldBeTrue)
	})

	Convey("When no terminal cell can be reached", t, func() {
		cfg := debugConfig()
		// A lone floor cell: every action is a no-op.
		cfg.Maze = [][]int{{1}}
		cfg.Start.Row, cfg.Start.Col = 0, 0
		cfg.MaxStepsPerEpisode = 50
		grid, rewards := newEnv(cfg)
		trainer, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)

		_, err = trainer.Train(context.Background())
		So(errors.Is(err, ErrStepBudgetExceeded), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "episode 0")
	})

	Convey("When the context is cancelled", t, func() {
		cfg := debugConfig()
		grid, rewards := newEnv(cfg)
		trainer, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(1)))
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = trainer.Train(ctx)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("When the config is invalid", t, func() {
		cfg := debugConfig()
		cfg.Episodes = 0
		grid, rewards := newEnv(cfg)
		_, err := NewTrainer(grid, rewards, cfg, rand.New(rand.NewSource(1)))
		So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestStats(t *testing.T) {
	Convey("When episodes are recorded", t, func() {
		stats := NewStats()
		ctx := context.Background()
		stats.Record(ctx, &EpisodeReport{Steps: 2, Return: 490, Outcome: OutcomeGoal})
		stats.Record(ctx, &EpisodeReport{Steps: 1, Return: -500, Outcome: OutcomeWall})
		stats.Record(ctx, &EpisodeReport{Steps: 3, Return: -520, Outcome: OutcomeWall})

		snapshot := stats.Snapshot()
		So(snapshot.RunID, ShouldEqual, stats.RunID.String())
		So(snapshot.Episodes, ShouldEqual, 3)
		So(snapshot.Goals, ShouldEqual, 1)
		So(snapshot.Walls, ShouldEqual, 2)
		So(snapshot.TotalSteps, ShouldEqual, 6)
		So(snapshot.LastReturn, ShouldEqual, -520.0)
		So(snapshot.MeanReturn, ShouldAlmostEqual, (490.0-500-520)/3)
	})
}
