package board

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

type pattern [SubDim][SubDim]bool

func rotate(p pattern) pattern {
	var r pattern
	for i := 0; i < SubDim; i++ {
		for j := 0; j < SubDim; j++ {
			r[SubDim-1-j][i] = p[i][j]
		}
	}
	return r
}

func reflect(p pattern) pattern {
	var r pattern
	for i := 0; i < SubDim; i++ {
		for j := 0; j < SubDim; j++ {
			r[SubDim-1-i][j] = p[i][j]
		}
	}
	return r
}

// symmetries returns the images of p under the dihedral group of the square.
func symmetries(p pattern) []pattern {
	out := make([]pattern, 0, 8)
	cur := p
	for k := 0; k < 4; k++ {
		out = append(out, cur, reflect(cur))
		cur = rotate(cur)
	}
	return out
}

func place(b *Board, sx, sy int, p pattern, m Mark) {
	for i := 0; i < SubDim; i++ {
		for j := 0; j < SubDim; j++ {
			if p[i][j] {
				b[sx*SubDim+i][sy*SubDim+j] = m
			}
		}
	}
}

func TestSubBoardWinSymmetric(t *testing.T) {
	is := is.New(t)
	winning := []pattern{
		{{true, true, true}},                                // an edge line
		{{false, true}, {false, true}, {false, true}},       // middle line
		{{true}, {false, true}, {false, false, true}},       // diagonal
		{{true, true, true}, {true}, {false, true}},         // line plus noise
		{{true, false, true}, {false, true}, {true, false}}, // x shape
	}
	losing := []pattern{
		{{true, true}},
		{{true, false, true}, {false, false, false}, {false, true, false}},
		{{true, true}, {false, false, true}, {true, true}},
	}
	for _, w := range winning {
		for _, s := range symmetries(w) {
			for sx := 0; sx < SubDim; sx++ {
				for sy := 0; sy < SubDim; sy++ {
					var b Board
					place(&b, sx, sy, s, PlayerB)
					is.True(b.SubBoardWon(sx, sy, PlayerB))
					is.True(!b.SubBoardWon(sx, sy, PlayerA))
				}
			}
		}
	}
	for _, l := range losing {
		for _, s := range symmetries(l) {
			var b Board
			place(&b, 1, 2, s, PlayerA)
			is.True(!b.SubBoardWon(1, 2, PlayerA))
		}
	}
}

func TestWinsThrough(t *testing.T) {
	is := is.New(t)
	var b Board
	// top row of sub-board (0,0), x varying.
	b[0][0] = PlayerA
	b[1][0] = PlayerA
	is.True(!b.WinsThrough(1, 0))
	b[2][0] = PlayerA
	is.True(b.WinsThrough(2, 0))
	is.True(b.WinsThrough(0, 0))
	// a mark outside the line does not win through itself.
	b[1][1] = PlayerA
	is.True(!b.WinsThrough(1, 1))
	b[0][2] = PlayerB
	is.True(!b.WinsThrough(0, 2))
	// lines never span sub-boards.
	var c Board
	c[2][0] = PlayerA
	c[3][0] = PlayerA
	c[4][0] = PlayerA
	is.True(!c.WinsThrough(3, 0))
	is.True(!c.WinsThrough(2, 0))
}

func TestSubBoardFull(t *testing.T) {
	is := is.New(t)
	var b Board
	marks := []Mark{PlayerA, PlayerB, PlayerA, PlayerA, PlayerB, PlayerB, PlayerB, PlayerA, PlayerA}
	for k, m := range marks {
		b[6+k/3][3+k%3] = m
	}
	is.True(b.SubBoardFull(2, 1))
	is.True(!b.SubBoardFull(1, 1))
	is.True(!b.SubBoardWon(2, 1, PlayerA))
	is.True(!b.SubBoardWon(2, 1, PlayerB))
	is.Equal(b.Count(PlayerA), 5)
	is.True(!b.IsEmpty())
}

func TestMacroboardLines(t *testing.T) {
	is := is.New(t)
	var mb Macroboard
	mb[0][2] = MacroWonByB
	mb[1][1] = MacroWonByB
	is.True(!mb.HasLine(PlayerB))
	mb[2][0] = MacroWonByB
	is.True(mb.HasLine(PlayerB))
	is.True(mb.HasLineThrough(1, 1, PlayerB))
	is.True(!mb.HasLineThrough(0, 0, PlayerB))
	is.True(!mb.HasLine(PlayerA))
	is.True(!mb.HasLine(Empty))
	is.True(!mb.AllDecided())
	is.Equal(mb.Count(MacroWonByB), 3)
}

func TestMacroStatus(t *testing.T) {
	is := is.New(t)
	is.True(!MacroEmpty.Decided())
	is.True(!MacroAvailable.Decided())
	is.True(MacroTied.Decided())
	is.Equal(MacroTied.Owner(), Empty)
	is.Equal(WonBy(PlayerA), MacroWonByA)
	is.Equal(WonBy(PlayerB).Owner(), PlayerB)
	is.Equal(PlayerA.Opponent(), PlayerB)
	is.Equal(Empty.Opponent(), Empty)
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	var b Board
	var mb Macroboard
	b[4][4] = PlayerA
	mb[1][1] = MacroAvailable
	txt := ToDisplayText(&b, &mb)
	is.True(strings.Contains(txt, "4| . . . | . x . | . . . |"))
	is.True(strings.Contains(txt, "macro"))
}
