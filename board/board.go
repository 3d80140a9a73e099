// Package board holds the positional data of an Ultimate Tic-Tac-Toe game:
// the 9x9 grid of marks and the 3x3 macroboard of sub-board outcomes.
package board

import (
	"fmt"
	"strings"
)

const (
	// Dim is the width and height of the full board.
	Dim = 9
	// SubDim is the width and height of a sub-board, and of the macroboard.
	SubDim = 3
)

// A Mark is what can sit in a single cell of the board.
type Mark uint8

const (
	Empty Mark = iota
	PlayerA
	PlayerB
)

// Opponent returns the other player. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	}
	return Empty
}

func (m Mark) String() string {
	switch m {
	case PlayerA:
		return "x"
	case PlayerB:
		return "o"
	}
	return "."
}

// MacroStatus is the state of one sub-board as seen from the macroboard.
type MacroStatus uint8

const (
	MacroEmpty MacroStatus = iota
	MacroAvailable
	MacroWonByA
	MacroWonByB
	MacroTied
)

// Decided is true once a sub-board has been won or tied.
func (s MacroStatus) Decided() bool {
	return s == MacroWonByA || s == MacroWonByB || s == MacroTied
}

// Owner returns the player that won the sub-board, or Empty.
func (s MacroStatus) Owner() Mark {
	switch s {
	case MacroWonByA:
		return PlayerA
	case MacroWonByB:
		return PlayerB
	}
	return Empty
}

// WonBy returns the macro status of a sub-board won by m.
func WonBy(m Mark) MacroStatus {
	if m == PlayerB {
		return MacroWonByB
	}
	return MacroWonByA
}

func (s MacroStatus) String() string {
	switch s {
	case MacroAvailable:
		return "*"
	case MacroWonByA:
		return "x"
	case MacroWonByB:
		return "o"
	case MacroTied:
		return "-"
	}
	return "."
}

// Lines lists the eight three-in-a-row lines of a 3x3 grid as (i, j)
// pairs: three columns of constant i, three of constant j, and the two
// diagonals.
var Lines = [8][SubDim][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// HasLine reports whether any line of a 3x3 grid has want in all three
// cells. cell is called with coordinates in [0,3).
func HasLine[T comparable](cell func(i, j int) T, want T) bool {
	for _, l := range Lines {
		if cell(l[0][0], l[0][1]) == want &&
			cell(l[1][0], l[1][1]) == want &&
			cell(l[2][0], l[2][1]) == want {
			return true
		}
	}
	return false
}

// HasLineThrough is like HasLine but only considers lines that pass through
// (i, j).
func HasLineThrough[T comparable](cell func(i, j int) T, i, j int, want T) bool {
	for _, l := range Lines {
		through := false
		for _, c := range l {
			if c[0] == i && c[1] == j {
				through = true
				break
			}
		}
		if !through {
			continue
		}
		if cell(l[0][0], l[0][1]) == want &&
			cell(l[1][0], l[1][1]) == want &&
			cell(l[2][0], l[2][1]) == want {
			return true
		}
	}
	return false
}

// Board is the 9x9 grid, indexed [x][y] with (0,0) at the top left.
type Board [Dim][Dim]Mark

// Macroboard mirrors the sub-board positions, indexed [x][y] like Board.
type Macroboard [SubDim][SubDim]MacroStatus

// SubBoardCell returns a cell accessor for the sub-board at (sx, sy).
func (b *Board) SubBoardCell(sx, sy int) func(i, j int) Mark {
	ox, oy := sx*SubDim, sy*SubDim
	return func(i, j int) Mark {
		return b[ox+i][oy+j]
	}
}

// SubBoardWon reports whether m has three in a row in sub-board (sx, sy).
func (b *Board) SubBoardWon(sx, sy int, m Mark) bool {
	return HasLine(b.SubBoardCell(sx, sy), m)
}

// WinsThrough reports whether the mark at (x, y) completes a line inside
// its own sub-board.
func (b *Board) WinsThrough(x, y int) bool {
	m := b[x][y]
	if m == Empty {
		return false
	}
	return HasLineThrough(b.SubBoardCell(x/SubDim, y/SubDim), x%SubDim, y%SubDim, m)
}

// SubBoardFull is true when no cell of sub-board (sx, sy) is Empty.
func (b *Board) SubBoardFull(sx, sy int) bool {
	for i := 0; i < SubDim; i++ {
		for j := 0; j < SubDim; j++ {
			if b[sx*SubDim+i][sy*SubDim+j] == Empty {
				return false
			}
		}
	}
	return true
}

// IsEmpty is true when no mark has been placed.
func (b *Board) IsEmpty() bool {
	for x := 0; x < Dim; x++ {
		for y := 0; y < Dim; y++ {
			if b[x][y] != Empty {
				return false
			}
		}
	}
	return true
}

// Count returns the number of cells holding m.
func (b *Board) Count(m Mark) int {
	n := 0
	for x := 0; x < Dim; x++ {
		for y := 0; y < Dim; y++ {
			if b[x][y] == m {
				n++
			}
		}
	}
	return n
}

func (mb *Macroboard) cell(i, j int) Mark {
	return mb[i][j].Owner()
}

// HasLine reports whether m owns three macro-cells in a line.
func (mb *Macroboard) HasLine(m Mark) bool {
	if m == Empty {
		return false
	}
	return HasLine(mb.cell, m)
}

// HasLineThrough reports whether m owns a macro line through (i, j).
func (mb *Macroboard) HasLineThrough(i, j int, m Mark) bool {
	if m == Empty {
		return false
	}
	return HasLineThrough(mb.cell, i, j, m)
}

// AllDecided is true when every sub-board has been won or tied.
func (mb *Macroboard) AllDecided() bool {
	for i := 0; i < SubDim; i++ {
		for j := 0; j < SubDim; j++ {
			if !mb[i][j].Decided() {
				return false
			}
		}
	}
	return true
}

// Count returns the number of macro-cells in status s.
func (mb *Macroboard) Count(s MacroStatus) int {
	n := 0
	for i := 0; i < SubDim; i++ {
		for j := 0; j < SubDim; j++ {
			if mb[i][j] == s {
				n++
			}
		}
	}
	return n
}

// ToDisplayText renders the board with sub-board separators, followed by
// the macroboard.
func ToDisplayText(b *Board, mb *Macroboard) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for x := 0; x < Dim; x++ {
		if x > 0 && x%SubDim == 0 {
			sb.WriteString("  ")
		}
		fmt.Fprintf(&sb, "%d ", x)
	}
	sb.WriteString("\n")
	sep := "   " + strings.Repeat("-", Dim*2+4) + "\n"
	for y := 0; y < Dim; y++ {
		if y%SubDim == 0 {
			sb.WriteString(sep)
		}
		fmt.Fprintf(&sb, "%d| ", y)
		for x := 0; x < Dim; x++ {
			if x > 0 && x%SubDim == 0 {
				sb.WriteString("| ")
			}
			sb.WriteString(b[x][y].String())
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(sep)
	sb.WriteString("\n   macro\n")
	for j := 0; j < SubDim; j++ {
		sb.WriteString("   ")
		for i := 0; i < SubDim; i++ {
			sb.WriteString(mb[i][j].String())
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return "\n" + sb.String()
}
