// Package move defines a single placement on the Ultimate Tic-Tac-Toe board.
package move

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/hyggebot/uttt/board"
)

// Move is a placement at column X, row Y of the 9x9 board.
type Move struct {
	X int
	Y int
}

// NoMove is returned when there is nothing to play, i.e. the game is over.
var NoMove = Move{X: -1, Y: -1}

var reCoords *regexp.Regexp

func init() {
	reCoords = regexp.MustCompile(`^\(?\s*(?P<x>[0-8])\s*,\s*(?P<y>[0-8])\s*\)?$`)
}

// New returns the move at (x, y).
func New(x, y int) Move {
	return Move{X: x, Y: y}
}

// Valid is true when both coordinates lie on the board.
func (m Move) Valid() bool {
	return m.X >= 0 && m.X < board.Dim && m.Y >= 0 && m.Y < board.Dim
}

// IsNoMove reports whether m is the NoMove sentinel.
func (m Move) IsNoMove() bool {
	return m == NoMove
}

// SubBoard returns the coordinates of the sub-board the move is in.
func (m Move) SubBoard() (int, int) {
	return m.X / board.SubDim, m.Y / board.SubDim
}

// Local returns the move's position inside its sub-board. This is also the
// sub-board the opponent is sent to.
func (m Move) Local() (int, int) {
	return m.X % board.SubDim, m.Y % board.SubDim
}

func (m Move) String() string {
	if m == NoMove {
		return "(none)"
	}
	return fmt.Sprintf("(%d,%d)", m.X, m.Y)
}

// FromString parses coordinates written as "x,y" or "(x,y)".
func FromString(s string) (Move, error) {
	match := reCoords.FindStringSubmatch(s)
	if match == nil {
		return NoMove, fmt.Errorf("cannot parse move coordinates %q", s)
	}
	x, _ := strconv.Atoi(match[reCoords.SubexpIndex("x")])
	y, _ := strconv.Atoi(match[reCoords.SubexpIndex("y")])
	return New(x, y), nil
}
