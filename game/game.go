// Package game encapsulates the mechanics of an Ultimate Tic-Tac-Toe game:
// legal move enforcement, sub-board and meta-board resolution, and the
// macroboard activation rules. A GameState is a plain value, so a copy can
// be played forward without affecting the state it was copied from.
package game

import (
	"errors"
	"fmt"

	"github.com/hyggebot/uttt/board"
)

var (
	// ErrIllegalMove is returned (wrapped) by PlayMove. The state is never
	// modified when it is returned.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvariantViolation signals an Active state with no legal moves.
	// This is a programming error upstream; callers panic with it.
	ErrInvariantViolation = errors.New("active game has no legal moves")
)

// PlayState is the game-over status.
type PlayState uint8

const (
	Active PlayState = iota
	Win
	Tie
)

func (p PlayState) String() string {
	switch p {
	case Win:
		return "win"
	case Tie:
		return "tie"
	}
	return "active"
}

// GameState is everything needed to continue a game from a position.
type GameState struct {
	board       board.Board
	macro       board.Macroboard
	moveNumber  int
	roundNumber int
	playing     PlayState
	winner      board.Mark
}

// NewGameState returns the starting position. Every sub-board is open, so
// the first player may move anywhere.
func NewGameState() *GameState {
	g := &GameState{}
	for i := 0; i < board.SubDim; i++ {
		for j := 0; j < board.SubDim; j++ {
			g.macro[i][j] = board.MacroAvailable
		}
	}
	return g
}

// FromGrids builds a state from grids supplied by a host. The game-over
// status is derived from the macroboard: the player owning a macro line has
// won, otherwise a fully decided macroboard is a tie.
func FromGrids(b board.Board, mb board.Macroboard, moveNumber, roundNumber int) (*GameState, error) {
	if moveNumber < 0 || roundNumber < 0 {
		return nil, fmt.Errorf("negative move or round number: %d/%d", moveNumber, roundNumber)
	}
	aLine, bLine := mb.HasLine(board.PlayerA), mb.HasLine(board.PlayerB)
	if aLine && bLine {
		return nil, errors.New("both players own a macro line")
	}
	g := &GameState{
		board:       b,
		macro:       mb,
		moveNumber:  moveNumber,
		roundNumber: roundNumber,
	}
	switch {
	case aLine:
		g.playing, g.winner = Win, board.PlayerA
	case bLine:
		g.playing, g.winner = Win, board.PlayerB
	case mb.AllDecided():
		g.playing = Tie
	}
	return g, nil
}

// Copy returns an independent copy of the state.
func (g *GameState) Copy() *GameState {
	c := *g
	return &c
}

// CopyFrom overwrites g with the contents of other.
func (g *GameState) CopyFrom(other *GameState) {
	*g = *other
}

// Board returns a pointer to the board. Callers must not modify it.
func (g *GameState) Board() *board.Board {
	return &g.board
}

// Macroboard returns a pointer to the macroboard. Callers must not modify it.
func (g *GameState) Macroboard() *board.Macroboard {
	return &g.macro
}

func (g *GameState) MoveNumber() int {
	return g.moveNumber
}

func (g *GameState) RoundNumber() int {
	return g.roundNumber
}

func (g *GameState) Playing() PlayState {
	return g.playing
}

// Winner is the winning player, or board.Empty if there is none.
func (g *GameState) Winner() board.Mark {
	return g.winner
}

// PlayerOnTurn is PlayerA on even move numbers and PlayerB on odd ones.
func (g *GameState) PlayerOnTurn() board.Mark {
	if g.moveNumber%2 == 0 {
		return board.PlayerA
	}
	return board.PlayerB
}

// ToDisplayText renders the position for terminals and logs.
func (g *GameState) ToDisplayText() string {
	return board.ToDisplayText(&g.board, &g.macro) +
		fmt.Sprintf("\nmove %d, round %d, %v to move, %v\n",
			g.moveNumber, g.roundNumber, g.PlayerOnTurn(), g.statusString())
}

func (g *GameState) statusString() string {
	if g.playing == Win {
		return fmt.Sprintf("won by %v", g.winner)
	}
	return g.playing.String()
}
