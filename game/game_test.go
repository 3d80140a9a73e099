package game

import (
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/hyggebot/uttt/board"
	"github.com/hyggebot/uttt/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func fromGrids(t *testing.T, b board.Board, mb board.Macroboard, moveNumber int) *GameState {
	t.Helper()
	g, err := FromGrids(b, mb, moveNumber, moveNumber/2)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewGameState(t *testing.T) {
	is := is.New(t)
	g := NewGameState()
	is.Equal(len(g.LegalMoves()), 81)
	is.Equal(g.PlayerOnTurn(), board.PlayerA)
	is.Equal(g.Playing(), Active)
	is.Equal(g.Macroboard().Count(board.MacroAvailable), 9)
	is.Equal(g.LegalMoves()[0], move.New(0, 0))
	is.Equal(g.LegalMoves()[1], move.New(0, 1))
}

func TestMoveAndRoundNumbers(t *testing.T) {
	is := is.New(t)
	g := NewGameState()
	is.NoErr(g.PlayMove(move.New(4, 4)))
	is.Equal(g.MoveNumber(), 1)
	is.Equal(g.RoundNumber(), 0)
	is.Equal(g.PlayerOnTurn(), board.PlayerB)
	is.Equal(g.Board()[4][4], board.PlayerA)
	is.NoErr(g.PlayMove(move.New(3, 3)))
	is.Equal(g.MoveNumber(), 2)
	is.Equal(g.RoundNumber(), 1)
	is.Equal(g.Board()[3][3], board.PlayerB)
}

func TestActivationSingleTarget(t *testing.T) {
	is := is.New(t)
	g := NewGameState()
	is.NoErr(g.PlayMove(move.New(4, 4)))
	is.Equal(g.Macroboard()[1][1], board.MacroAvailable)
	is.Equal(g.Macroboard().Count(board.MacroAvailable), 1)
	is.Equal(g.Macroboard().Count(board.MacroEmpty), 8)
	moves := g.LegalMoves()
	is.Equal(len(moves), 8)
	for _, m := range moves {
		sx, sy := m.SubBoard()
		is.Equal(sx, 1)
		is.Equal(sy, 1)
	}
	// (4,5) sends the next player to sub-board (1,2).
	is.NoErr(g.PlayMove(move.New(4, 5)))
	is.Equal(g.Macroboard()[1][2], board.MacroAvailable)
	is.Equal(g.Macroboard()[1][1], board.MacroEmpty)
}

func TestActivationFreeChoice(t *testing.T) {
	is := is.New(t)
	var b board.Board
	var mb board.Macroboard
	b[3][3], b[4][4], b[5][5] = board.PlayerA, board.PlayerA, board.PlayerA
	b[0][0] = board.PlayerB
	mb[1][1] = board.MacroWonByA
	mb[0][0] = board.MacroAvailable
	g := fromGrids(t, b, mb, 3)
	is.Equal(g.PlayerOnTurn(), board.PlayerB)

	is.NoErr(g.PlayMove(move.New(1, 1)))
	is.Equal(g.Macroboard()[1][1], board.MacroWonByA)
	is.Equal(g.Macroboard().Count(board.MacroAvailable), 8)
	is.Equal(g.Macroboard().Count(board.MacroEmpty), 0)
	// nothing inside the won sub-board is playable.
	for _, m := range g.LegalMoves() {
		sx, sy := m.SubBoard()
		is.True(!(sx == 1 && sy == 1))
	}
	is.Equal(len(g.LegalMoves()), 81-9-2)
}

func TestSubBoardTie(t *testing.T) {
	is := is.New(t)
	var b board.Board
	A, B := board.PlayerA, board.PlayerB
	b[0][0], b[0][1], b[0][2] = A, B, A
	b[1][0], b[1][1], b[1][2] = A, B, B
	b[2][0], b[2][1] = B, A
	var mb board.Macroboard
	mb[0][0] = board.MacroAvailable
	g := fromGrids(t, b, mb, 8)
	is.Equal(len(g.LegalMoves()), 1)

	is.NoErr(g.PlayMove(move.New(2, 2)))
	is.Equal(g.Macroboard()[0][0], board.MacroTied)
	is.Equal(g.Macroboard()[2][2], board.MacroAvailable)
	is.Equal(g.Macroboard().Count(board.MacroAvailable), 1)
	is.Equal(g.Playing(), Active)
}

func TestSubBoardWinBeatsFull(t *testing.T) {
	is := is.New(t)
	var b board.Board
	A, B := board.PlayerA, board.PlayerB
	// the last empty cell completes a diagonal for A.
	b[0][0], b[0][1], b[0][2] = A, B, B
	b[1][0], b[1][1], b[1][2] = B, A, A
	b[2][0], b[2][1] = A, B
	var mb board.Macroboard
	mb[0][0] = board.MacroAvailable
	g := fromGrids(t, b, mb, 8)
	is.NoErr(g.PlayMove(move.New(2, 2)))
	is.Equal(g.Macroboard()[0][0], board.MacroWonByA)
}

func TestGameWin(t *testing.T) {
	is := is.New(t)
	var b board.Board
	var mb board.Macroboard
	mb[0][0] = board.MacroWonByA
	mb[1][0] = board.MacroWonByA
	mb[2][0] = board.MacroAvailable
	b[6][0], b[7][0] = board.PlayerA, board.PlayerA
	g := fromGrids(t, b, mb, 10)

	is.True(g.WouldWin(move.New(8, 0)))
	is.True(!g.WouldWin(move.New(8, 1)))
	is.Equal(g.Playing(), Active)

	is.NoErr(g.PlayMove(move.New(8, 0)))
	is.Equal(g.Playing(), Win)
	is.Equal(g.Winner(), board.PlayerA)
	is.Equal(len(g.LegalMoves()), 0)
	err := g.PlayMove(move.New(8, 1))
	is.True(errors.Is(err, ErrIllegalMove))
}

func TestGameTie(t *testing.T) {
	is := is.New(t)
	var b board.Board
	var mb board.Macroboard
	A, B := board.MacroWonByA, board.MacroWonByB
	mb[0][0], mb[0][1], mb[0][2] = A, B, A
	mb[1][0], mb[1][1], mb[1][2] = A, B, B
	mb[2][0], mb[2][1] = B, A
	mb[2][2] = board.MacroAvailable
	b[6][6], b[7][7] = board.PlayerA, board.PlayerA
	g := fromGrids(t, b, mb, 20)

	is.NoErr(g.PlayMove(move.New(8, 8)))
	is.Equal(g.Macroboard()[2][2], board.MacroWonByA)
	is.Equal(g.Playing(), Tie)
	is.Equal(g.Winner(), board.Empty)
}

func TestIllegalMovesLeaveStateUntouched(t *testing.T) {
	is := is.New(t)
	g := NewGameState()
	is.NoErr(g.PlayMove(move.New(4, 4)))
	before := *g

	for _, m := range []move.Move{
		move.New(4, 4),  // occupied
		move.New(0, 0),  // wrong sub-board
		move.New(9, 0),  // off the board
		move.New(-1, 3), // off the board
		move.NoMove,
	} {
		err := g.PlayMove(m)
		is.True(errors.Is(err, ErrIllegalMove))
		is.Equal(*g, before)
	}
}

func TestDegenerateAllEmpty(t *testing.T) {
	is := is.New(t)
	var b board.Board
	var mb board.Macroboard
	g := fromGrids(t, b, mb, 0)
	is.Equal(len(g.LegalMoves()), 81)
	is.NoErr(g.PlayMove(move.New(0, 8)))
	is.Equal(g.Macroboard()[0][2], board.MacroAvailable)
}

func TestFromGrids(t *testing.T) {
	is := is.New(t)
	var b board.Board
	var mb board.Macroboard
	mb[0][0], mb[1][1], mb[2][2] = board.MacroWonByB, board.MacroWonByB, board.MacroWonByB
	g, err := FromGrids(b, mb, 30, 15)
	is.NoErr(err)
	is.Equal(g.Playing(), Win)
	is.Equal(g.Winner(), board.PlayerB)

	var both board.Macroboard
	both[0][0], both[1][0], both[2][0] = board.MacroWonByB, board.MacroWonByB, board.MacroWonByB
	both[0][2], both[1][2], both[2][2] = board.MacroWonByA, board.MacroWonByA, board.MacroWonByA
	_, err = FromGrids(b, both, 30, 15)
	is.True(err != nil)

	_, err = FromGrids(b, board.Macroboard{}, -1, 0)
	is.True(err != nil)
}

func TestCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	g := NewGameState()
	c := g.Copy()
	is.NoErr(c.PlayMove(move.New(2, 2)))
	is.Equal(g.Board()[2][2], board.Empty)
	is.Equal(g.MoveNumber(), 0)
	is.Equal(g.Macroboard().Count(board.MacroAvailable), 9)
}

// Play random games, checking that the move list and move validation agree
// in every position along the way.
func TestLegalMovesRoundTrip(t *testing.T) {
	is := is.New(t)
	rng := frand.NewCustom(make([]byte, 32), 1024, 12)
	for game := 0; game < 40; game++ {
		g := NewGameState()
		for g.Playing() == Active {
			moves := g.LegalMoves()
			is.True(len(moves) > 0)
			for x := 0; x < board.Dim; x++ {
				for y := 0; y < board.Dim; y++ {
					m := move.New(x, y)
					legal := lo.Contains(moves, m)
					c := g.Copy()
					err := c.PlayMove(m)
					if legal {
						is.NoErr(err)
					} else {
						is.True(errors.Is(err, ErrIllegalMove))
					}
				}
			}
			is.NoErr(g.PlayMove(moves[rng.Intn(len(moves))]))
			checkMacroConsistency(t, g)
		}
		is.True(g.MoveNumber() <= 81)
	}
}

func checkMacroConsistency(t *testing.T, g *GameState) {
	t.Helper()
	b := g.Board()
	for sx := 0; sx < board.SubDim; sx++ {
		for sy := 0; sy < board.SubDim; sy++ {
			st := g.Macroboard()[sx][sy]
			won := b.SubBoardWon(sx, sy, board.PlayerA) || b.SubBoardWon(sx, sy, board.PlayerB)
			if !st.Decided() && (won || b.SubBoardFull(sx, sy)) {
				t.Fatalf("sub-board (%d,%d) should be decided:\n%v", sx, sy, g.ToDisplayText())
			}
			if st.Owner() != board.Empty && !b.SubBoardWon(sx, sy, st.Owner()) {
				t.Fatalf("sub-board (%d,%d) has no winning line:\n%v", sx, sy, g.ToDisplayText())
			}
		}
	}
}

func TestCompletesSubBoard(t *testing.T) {
	is := is.New(t)
	var b board.Board
	var mb board.Macroboard
	b[0][0], b[1][0] = board.PlayerA, board.PlayerA
	b[4][4], b[7][2] = board.PlayerB, board.PlayerB
	mb[0][0] = board.MacroAvailable
	g := fromGrids(t, b, mb, 4)

	is.True(g.CompletesSubBoard(move.New(2, 0)))
	is.True(!g.CompletesSubBoard(move.New(2, 2)))
	// occupied, and outside the open sub-board.
	is.True(!g.CompletesSubBoard(move.New(1, 0)))
	is.True(!g.CompletesSubBoard(move.New(5, 0)))
	// it does not win the game, and g is untouched.
	is.True(!g.WouldWin(move.New(2, 0)))
	is.Equal(g.Board()[2][0], board.Empty)
}
