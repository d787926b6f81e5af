package grid_world

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewGrid(t *testing.T) {
	Convey("When a grid is built", t, func() {
		Convey("When the maze is rectangular", func() {
			maze := [][]int{{0, 1, 2}, {1, 1, 0}}
			grid, err := NewGrid(maze)
			So(err, ShouldBeNil)
			rows, cols := grid.Dims()
			So(rows, ShouldEqual, 2)
			So(cols, ShouldEqual, 3)
			So(grid.Size(), ShouldEqual, 6)
			So(grid.Code(Cell{Row: 0, Col: 2}), ShouldEqual, GOAL)

			Convey("The grid does not alias its input", func() {
				maze[0][2] = 0
				So(grid.Code(Cell{Row: 0, Col: 2}), ShouldEqual, GOAL)
			})
		})

		Convey("When the maze is empty", func() {
			_, err := NewGrid(nil)
			So(errors.Is(err, ErrInvalidGrid), ShouldBeTrue)
			_, err = NewGrid([][]int{{}})
			So(errors.Is(err, ErrInvalidGrid), ShouldBeTrue)
		})

		Convey("When the maze is ragged", func() {
			_, err := NewGrid([][]int{{0, 1}, {1}})
			So(errors.Is(err, ErrInvalidGrid), ShouldBeTrue)
		})
	})
}

func TestInBounds(t *testing.T) {
	Convey("Given a 3x3 grid", t, func() {
		grid, err := NewGrid(DebugMaze)
		So(err, ShouldBeNil)

		So(grid.InBounds(Cell{Row: 0, Col: 0}), ShouldBeTrue)
		So(grid.InBounds(Cell{Row: 2, Col: 2}), ShouldBeTrue)
		So(grid.InBounds(Cell{Row: -1, Col: 0}), ShouldBeFalse)
		So(grid.InBounds(Cell{Row: 0, Col: 3}), ShouldBeFalse)
		So(grid.InBounds(Cell{Row: 3, Col: 1}), ShouldBeFalse)
	})
}

func TestDeriveRewards(t *testing.T) {
	Convey("When rewards are derived", t, func() {
		Convey("When every code is known", func() {
			grid, err := NewGrid(FullMaze)
			So(err, ShouldBeNil)
			rewards, err := DeriveRewards(grid, -500, -10, 500)
			So(err, ShouldBeNil)

			rows, cols := rewards.Dims()
			gridRows, gridCols := grid.Dims()
			So(rows, ShouldEqual, gridRows)
			So(cols, ShouldEqual, gridCols)

			grid.Visit(func(cell Cell, code CellCode) {
				switch code {
				case WALL:
					So(rewards.At(cell), ShouldEqual, -500.0)
					So(rewards.IsWall(cell), ShouldBeTrue)
					So(rewards.IsTerminal(cell), ShouldBeTrue)
				case PATH:
					So(rewards.At(cell), ShouldEqual, -10.0)
					So(rewards.IsTerminal(cell), ShouldBeFalse)
				case GOAL:
					So(rewards.At(cell), ShouldEqual, 500.0)
					So(rewards.IsGoal(cell), ShouldBeTrue)
					So(rewards.IsTerminal(cell), ShouldBeTrue)
				}
			})
			So(rewards.Floor(), ShouldEqual, -10.0)
		})

		Convey("When the wall and goal rewards are equal", func() {
			grid, err := NewGrid(DebugMaze)
			So(err, ShouldBeNil)
			rewards, err := DeriveRewards(grid, 100, -10, 100)
			So(err, ShouldBeNil)

			goal, wall := Cell{Row: 1, Col: 2}, Cell{Row: 0, Col: 1}
			So(rewards.IsGoal(goal), ShouldBeTrue)
			So(rewards.IsWall(goal), ShouldBeFalse)
			So(rewards.IsWall(wall), ShouldBeTrue)
			So(rewards.IsGoal(wall), ShouldBeFalse)
			So(rewards.IsTerminal(goal), ShouldBeTrue)
			So(rewards.IsTerminal(wall), ShouldBeTrue)
		})

		Convey("When a cell code is unknown", func() {
			grid, err := NewGrid([][]int{{0, 1}, {3, 2}})
			So(err, ShouldBeNil)
			rewards, err := DeriveRewards(grid, -500, -10, 500)
			So(rewards, ShouldBeNil)
			So(errors.Is(err, ErrInvalidGrid), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "(1,0)")
		})
	})
}

func TestActions(t *testing.T) {
	Convey("Actions are ordered up, down, left, right", t, func() {
		So(Actions, ShouldResemble, [NUM_ACTIONS]Action{UP, DOWN, LEFT, RIGHT})
		So(int(UP), ShouldEqual, 0)
		So(RIGHT.String(), ShouldEqual, "right")

		dr, dc := UP.Delta()
		So([]int{dr, dc}, ShouldResemble, []int{-1, 0})
		dr, dc = RIGHT.Delta()
		So([]int{dr, dc}, ShouldResemble, []int{0, 1})
	})
}

type fixedValues struct {
	action Action
}

func (fv fixedValues) BestAction(Cell) Action  { return fv.action }
func (fv fixedValues) BestValue(Cell) float64 { return 1 }

func TestDisplay(t *testing.T) {
	Convey("When the display is uncolored", t, func() {
		grid, err := NewGrid(DebugMaze)
		So(err, ShouldBeNil)
		buf := &bytes.Buffer{}
		display := NewDisplay(buf, false)

		Convey("ShowGrid marks walls, the goal and the start", func() {
			display.ShowGrid(grid, DebugStart)
			So(buf.String(), ShouldEqual, "# # # \n# . G \n# S # \n")
		})

		Convey("ShowPolicy prints arrows on floor cells only", func() {
			display.ShowPolicy(grid, fixedValues{action: RIGHT})
			So(buf.String(), ShouldEqual, " # # # \n # > G \n # > # \n")
		})

		Convey("ShowPath overlays the path", func() {
			display.ShowPath(grid, []Cell{{Row: 2, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 2}})
			So(buf.String(), ShouldEqual, "# # # \n# * G \n# * # \n")
		})
	})
}
