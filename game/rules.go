package game

import (
	"fmt"

	"github.com/hyggebot/uttt/board"
	"github.com/hyggebot/uttt/move"
)

// openStatus is the macro status a sub-board must have for play inside it.
// Normally this is Available; if no sub-board is Available (a host handed
// us an all-Empty macroboard, for instance) every Empty sub-board is open.
func (g *GameState) openStatus() board.MacroStatus {
	if g.macro.Count(board.MacroAvailable) > 0 {
		return board.MacroAvailable
	}
	return board.MacroEmpty
}

// LegalMoves lists every legal move, ordered by x then y. It is empty once
// the game is over.
func (g *GameState) LegalMoves() []move.Move {
	if g.playing != Active {
		return nil
	}
	open := g.openStatus()
	moves := make([]move.Move, 0, board.Dim*board.SubDim)
	for x := 0; x < board.Dim; x++ {
		for y := 0; y < board.Dim; y++ {
			if g.board[x][y] == board.Empty &&
				g.macro[x/board.SubDim][y/board.SubDim] == open {
				moves = append(moves, move.New(x, y))
			}
		}
	}
	return moves
}

// ValidateMove returns a wrapped ErrIllegalMove if m cannot be played.
func (g *GameState) ValidateMove(m move.Move) error {
	if g.playing != Active {
		return fmt.Errorf("%w: cannot play a move on a game that is over", ErrIllegalMove)
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %v is off the board", ErrIllegalMove, m)
	}
	if g.board[m.X][m.Y] != board.Empty {
		return fmt.Errorf("%w: %v is already taken", ErrIllegalMove, m)
	}
	sx, sy := m.SubBoard()
	if g.macro[sx][sy] != g.openStatus() {
		return fmt.Errorf("%w: sub-board (%d,%d) is not playable", ErrIllegalMove, sx, sy)
	}
	return nil
}

// IsLegal reports whether m can be played.
func (g *GameState) IsLegal(m move.Move) bool {
	return g.ValidateMove(m) == nil
}

// PlayMove places the mark of the player on turn at m, resolves the
// sub-board and the game, and opens the sub-board(s) the opponent must play
// in next.
func (g *GameState) PlayMove(m move.Move) error {
	if err := g.ValidateMove(m); err != nil {
		return err
	}
	mover := g.PlayerOnTurn()
	g.board[m.X][m.Y] = mover
	g.moveNumber++
	if g.moveNumber%2 == 0 {
		g.roundNumber++
	}

	decided := g.resolveSubBoard(m, mover)
	g.activate(m)
	if decided {
		g.resolveGame(mover)
	}
	return nil
}

// resolveSubBoard decides the sub-board containing m if the mark just
// placed completed a line or filled it. It reports whether the sub-board's
// status changed.
func (g *GameState) resolveSubBoard(m move.Move, mover board.Mark) bool {
	sx, sy := m.SubBoard()
	if g.macro[sx][sy].Decided() {
		return false
	}
	switch {
	case g.board.WinsThrough(m.X, m.Y):
		g.macro[sx][sy] = board.WonBy(mover)
	case g.board.SubBoardFull(sx, sy):
		g.macro[sx][sy] = board.MacroTied
	default:
		return false
	}
	return true
}

// activate sends the opponent to the sub-board matching m's position inside
// its own sub-board. When that one is decided, every undecided sub-board is
// open instead.
func (g *GameState) activate(m move.Move) {
	for i := 0; i < board.SubDim; i++ {
		for j := 0; j < board.SubDim; j++ {
			if g.macro[i][j] == board.MacroAvailable {
				g.macro[i][j] = board.MacroEmpty
			}
		}
	}
	tx, ty := m.Local()
	if g.macro[tx][ty] == board.MacroEmpty {
		g.macro[tx][ty] = board.MacroAvailable
		return
	}
	for i := 0; i < board.SubDim; i++ {
		for j := 0; j < board.SubDim; j++ {
			if g.macro[i][j] == board.MacroEmpty {
				g.macro[i][j] = board.MacroAvailable
			}
		}
	}
}

func (g *GameState) resolveGame(mover board.Mark) {
	switch {
	case g.macro.HasLine(mover):
		g.playing = Win
		g.winner = mover
	case g.macro.AllDecided():
		g.playing = Tie
	}
}

// WouldWin reports whether playing m wins the game for the player on turn.
// g is not modified.
func (g *GameState) WouldWin(m move.Move) bool {
	c := g.Copy()
	if err := c.PlayMove(m); err != nil {
		return false
	}
	return c.playing == Win
}

// CompletesSubBoard reports whether playing m gives the player on turn
// three in a row inside m's sub-board. g is not modified.
func (g *GameState) CompletesSubBoard(m move.Move) bool {
	if !g.IsLegal(m) {
		return false
	}
	b := g.board
	b[m.X][m.Y] = g.PlayerOnTurn()
	return b.WinsThrough(m.X, m.Y)
}
