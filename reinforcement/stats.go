package reinforcement

import (
	"context"
	"sync/atomic"

	"qmaze/atomic_float"

	"github.com/google/uuid"
)

// Stats accumulates run statistics from the training goroutine. It may be read
// concurrently, e.g. by an http handler, while training is in progress.
type Stats struct {
	RunID      uuid.UUID
	episodes   atomic.Int64
	goals      atomic.Int64
	walls      atomic.Int64
	totalSteps atomic.Int64
	lastReturn *atomic_float.AtomicFloat64
	sumReturn  *atomic_float.AtomicFloat64
}

func NewStats() *Stats {
	return &Stats{
		RunID:      uuid.New(),
		lastReturn: atomic_float.NewAtomicFloat64(0),
		sumReturn:  atomic_float.NewAtomicFloat64(0),
	}
}

// Record is a ProgressFunc.
func (st *Stats) Record(_ context.Context, report *EpisodeReport) {
	st.episodes.Add(1)
	st.totalSteps.Add(int64(report.Steps))
	switch report.Outcome {
	case OutcomeGoal:
		st.goals.Add(1)
	case OutcomeWall:
		st.walls.Add(1)
	}
	st.lastReturn.AtomicSet(report.Return)
	st.sumReturn.Add(report.Return)
}

// StatsSnapshot is a point-in-time copy of Stats, suitable for json.
type StatsSnapshot struct {
	RunID      string  `json:"runId"`
	Episodes   int64   `json:"episodes"`
	Goals      int64   `json:"goals"`
	Walls      int64   `json:"walls"`
	TotalSteps int64   `json:"totalSteps"`
	LastReturn float64 `json:"lastReturn"`
	MeanReturn float64 `json:"meanReturn"`
}

// Snapshot reads each statistic atomically. The fields are not read as a
// group, so a snapshot taken mid-episode may be off by one episode.
func (st *Stats) Snapshot() StatsSnapshot {
	snapshot := StatsSnapshot{
		RunID:      st.RunID.String(),
		Episodes:   st.episodes.Load(),
		Goals:      st.goals.Load(),
		Walls:      st.walls.Load(),
		TotalSteps: st.totalSteps.Load(),
		LastReturn: st.lastReturn.AtomicRead(),
	}
	if snapshot.Episodes > 0 {
		snapshot.MeanReturn = st.sumReturn.AtomicRead() / float64(snapshot.Episodes)
	}
	return snapshot
}
