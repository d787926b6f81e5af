package grid_world

// The full maze and a smaller debug maze for development.
// Codes: 0 is a wall, 1 is a path, 2 is the goal.
var (
	DebugMaze [][]int = [][]int{
		{0, 0, 0},
		{0, 1, 2},
		{0, 1, 0},
	}
	DebugStart = Cell{Row: 2, Col: 1}

	// The agent starts at the bottom opening and must reach the goal in the top wall.
	FullMaze [][]int = [][]int{
		{0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0},
		{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
		{0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0},
		{0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1, 0},
		{0, 0, 0, 0, 1, 1, 0, 1, 0, 1, 1, 0},
		{0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 0},
		{0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 0},
		{0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0},
		{0, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 0},
		{0, 1, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		{0, 1, 1, 1, 0, 1, 1, 1, 0, 1, 1, 0},
		{0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0},
	}
	FullStart = Cell{Row: 11, Col: 5}
)
