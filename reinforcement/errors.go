package reinforcement

import "errors"

var (
	// ErrInvalidStart is returned when the start cell lies outside the grid.
	// A start on a wall or the goal is not an error: training performs no updates and
	// navigation returns an empty path.
	ErrInvalidStart = errors.New("start cell out of bounds")

	// ErrStepBudgetExceeded is returned when an episode or rollout takes more steps than
	// allowed without reaching a terminal cell, e.g. an agent bumping against the grid edge.
	ErrStepBudgetExceeded = errors.New("step budget exceeded")

	// ErrWallCollision is returned when a greedy rollout steps into a wall before the goal.
	ErrWallCollision = errors.New("rollout collided with a wall")

	ErrInvalidConfig = errors.New("invalid training config")
)
