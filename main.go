/*
qmaze trains a tabular q-learning agent to walk a grid maze from a fixed start cell to the goal,
then prints the greedy path. Walls and the goal are terminal; every step onto floor costs a
little, so the agent learns the shortest safe route. Training is single threaded and seeded, so
a run can be replayed from its seed.

Optionally (-monitor), a single page is served that shows the action values and the greedy
policy as they change while training runs, plus the run statistics at /api/stats.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"qmaze/grid_world"
	"qmaze/reinforcement"
	"qmaze/server"
	"qmaze/server/cell_views"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = flag.String("config", "", "path to a yaml training config; the classic maze is used when empty")
	monitor    = flag.Bool("monitor", false, "serve the training monitor")
	host       = flag.String("host", "localhost", "the monitor host")
	port       = flag.String("port", "8080", "the monitor port")
	verbose    = flag.Bool("verbose", false, "print the start and finish of every episode")
	color      = flag.Bool("color", true, "color the console grids")
)

func main() {
	flag.Parse()
	if err := runApp(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*reinforcement.TrainingConfig, error) {
	if path == "" {
		return reinforcement.FromEnv()
	}
	return reinforcement.FromYaml(path)
}

func runApp() error {
	// A .env file is optional; it may set the QMAZE_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	grid, err := grid_world.NewGrid(cfg.Maze)
	if err != nil {
		return err
	}
	rewards, err := grid_world.DeriveRewards(grid, cfg.Rewards.Wall, cfg.Rewards.Floor, cfg.Rewards.Goal)
	if err != nil {
		return err
	}
	trainer, err := reinforcement.NewTrainer(grid, rewards, cfg, reinforcement.NewRand(cfg.Seed))
	if err != nil {
		return err
	}

	display := grid_world.NewDisplay(os.Stdout, *color)
	display.ShowGrid(grid, cfg.StartCell())

	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, groupCtx := errgroup.WithContext(appCtx)

	stats := reinforcement.NewStats()
	progress := []reinforcement.ProgressFunc{stats.Record}
	if *verbose {
		progress = append(progress, printEpisode)
	}

	var snapshots chan *cell_views.Snapshot
	if *monitor {
		snapshots = make(chan *cell_views.Snapshot, 1)
		srv, err := server.NewServer(
			groupCtx,
			net.JoinHostPort(*host, *port),
			snapshotOf(grid, cfg, trainer, nil),
			snapshots,
			stats)
		if err != nil {
			return err
		}
		group.Go(func() error {
			return srv.Serve(groupCtx)
		})
		progress = append(progress, exportSnapshots(grid, cfg, trainer, snapshots))
	}
	trainer.WithProgress(allOf(progress...))
	if *verbose {
		trainer.WithEpisodeStart(printEpisodeStart)
	}

	group.Go(func() error {
		trainingCtx, cancel, err := cfg.WithTrainingDeadline(groupCtx)
		if err != nil {
			return err
		}
		defer cancel()

		q, err := trainer.Train(trainingCtx)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.Printf("training deadline reached: %v", err)
		case err != nil:
			return fmt.Errorf("train: %w", err)
		}
		fmt.Println("-----Completed Training-----")

		summary := stats.Snapshot()
		log.Printf("run %s: %d episodes, %d reached the goal, mean return %.2f",
			summary.RunID, summary.Episodes, summary.Goals, summary.MeanReturn)

		if *verbose {
			display.ShowMaxValues(grid, q)
		}
		display.ShowPolicy(grid, q)
		path, err := reinforcement.Navigate(grid, rewards, q, cfg.StartCell(), cfg.MaxStepsPerEpisode)
		if err != nil {
			log.Printf("navigate: %v", err)
		}
		path.Print(os.Stdout)
		display.ShowPath(grid, path)

		if *monitor {
			// The final values are always published, unlike the per-episode ones.
			final := snapshotOf(grid, cfg, trainer, nil)
			final.Episode = int(summary.Episodes)
			final.Outcome = "finished"
			select {
			case snapshots <- final:
			case <-groupCtx.Done():
			}
			log.Println("training finished; the monitor keeps serving until interrupted")
		}
		return nil
	})

	return group.Wait()
}

// allOf calls each of the passed progress funcs in order.
func allOf(fns ...reinforcement.ProgressFunc) reinforcement.ProgressFunc {
	return func(ctx context.Context, report *reinforcement.EpisodeReport) {
		for _, fn := range fns {
			fn(ctx, report)
		}
	}
}

func printEpisodeStart(_ context.Context, index int) {
	fmt.Printf("-----Starting episode %d-----\n", index)
}

func printEpisode(_ context.Context, report *reinforcement.EpisodeReport) {
	fmt.Printf("-----Finished episode %d: %v after %d steps-----\n",
		report.Index, report.Outcome, report.Steps)
}

// snapshotOf copies the trainer's table, since the views read it while training continues.
func snapshotOf(
	grid *grid_world.Grid,
	cfg *reinforcement.TrainingConfig,
	trainer *reinforcement.Trainer,
	report *reinforcement.EpisodeReport,
) *cell_views.Snapshot {
	snap := &cell_views.Snapshot{
		Grid:   grid,
		Start:  cfg.StartCell(),
		Values: trainer.QTable().Clone(),
	}
	if report != nil {
		snap.Episode = report.Index
		snap.Steps = report.Steps
		snap.Outcome = report.Outcome.String()
	}
	return snap
}

// exportSnapshots publishes training progress to the monitor. It never blocks training:
// a snapshot is dropped when the previous one has not been consumed yet.
func exportSnapshots(
	grid *grid_world.Grid,
	cfg *reinforcement.TrainingConfig,
	trainer *reinforcement.Trainer,
	snapshots chan<- *cell_views.Snapshot,
) reinforcement.ProgressFunc {
	return func(ctx context.Context, report *reinforcement.EpisodeReport) {
		if len(snapshots) == cap(snapshots) {
			return
		}
		select {
		case snapshots <- snapshotOf(grid, cfg, trainer, report):
		case <-ctx.Done():
		default:
		}
	}
}
