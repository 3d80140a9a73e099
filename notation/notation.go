// Package notation reads and writes a one-line text form of a game state,
// in the spirit of FEN:
//
//	<board> <macroboard> <move number> <round number>
//
// The board is nine '/'-separated rows, top to bottom, each listing the
// nine cells left to right as '.', 'x' (first player) or 'o'. A digit
// stands for that many empty cells. The macroboard is three rows of '.'
// (empty), '*' (available), 'x', 'o' or '-' (tied), again with digits for
// runs of '.'.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyggebot/uttt/board"
	"github.com/hyggebot/uttt/game"
)

// StartPosition is the position before the first move.
const StartPosition = "9/9/9/9/9/9/9/9/9 ***/***/*** 0 0"

// Parse returns the game state described by s.
func Parse(s string) (*game.GameState, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return nil, errors.New("must have exactly 4 space-separated fields")
	}
	var b board.Board
	var mb board.Macroboard

	rows := strings.Split(fields[0], "/")
	if len(rows) != board.Dim {
		return nil, fmt.Errorf("board must have %d rows, got %d", board.Dim, len(rows))
	}
	for y, row := range rows {
		cells, err := expandRow(row, board.Dim)
		if err != nil {
			return nil, fmt.Errorf("board row %d: %w", y, err)
		}
		for x, c := range cells {
			m, err := markFromRune(c)
			if err != nil {
				return nil, fmt.Errorf("board row %d: %w", y, err)
			}
			b[x][y] = m
		}
	}

	mrows := strings.Split(fields[1], "/")
	if len(mrows) != board.SubDim {
		return nil, fmt.Errorf("macroboard must have %d rows, got %d", board.SubDim, len(mrows))
	}
	for j, row := range mrows {
		cells, err := expandRow(row, board.SubDim)
		if err != nil {
			return nil, fmt.Errorf("macroboard row %d: %w", j, err)
		}
		for i, c := range cells {
			st, err := statusFromRune(c)
			if err != nil {
				return nil, fmt.Errorf("macroboard row %d: %w", j, err)
			}
			mb[i][j] = st
		}
	}

	moveNumber, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("move number: %w", err)
	}
	roundNumber, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("round number: %w", err)
	}
	nA, nB := b.Count(board.PlayerA), b.Count(board.PlayerB)
	if nA+nB != moveNumber {
		log.Warn().Int("x", nA).Int("o", nB).Int("move-number", moveNumber).
			Msg("mark-count-does-not-match-move-number")
	}
	return game.FromGrids(b, mb, moveNumber, roundNumber)
}

// expandRow turns digits into runs of '.' and checks the row width.
func expandRow(row string, width int) ([]rune, error) {
	cells := make([]rune, 0, width)
	for _, rn := range row {
		if rn >= '1' && rn <= '9' {
			for k := 0; k < int(rn-'0'); k++ {
				cells = append(cells, '.')
			}
			continue
		}
		cells = append(cells, rn)
	}
	if len(cells) != width {
		return nil, fmt.Errorf("expected %d cells, got %d in %q", width, len(cells), row)
	}
	return cells, nil
}

func markFromRune(rn rune) (board.Mark, error) {
	switch rn {
	case '.':
		return board.Empty, nil
	case 'x', 'X':
		return board.PlayerA, nil
	case 'o', 'O':
		return board.PlayerB, nil
	}
	return board.Empty, fmt.Errorf("unknown mark %q", rn)
}

func statusFromRune(rn rune) (board.MacroStatus, error) {
	switch rn {
	case '.':
		return board.MacroEmpty, nil
	case '*':
		return board.MacroAvailable, nil
	case 'x', 'X':
		return board.MacroWonByA, nil
	case 'o', 'O':
		return board.MacroWonByB, nil
	case '-':
		return board.MacroTied, nil
	}
	return board.MacroEmpty, fmt.Errorf("unknown macro status %q", rn)
}

// String writes g in the form Parse reads, compressing runs of empty cells.
func String(g *game.GameState) string {
	var sb strings.Builder
	b := g.Board()
	for y := 0; y < board.Dim; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		row := make([]string, board.Dim)
		for x := 0; x < board.Dim; x++ {
			row[x] = b[x][y].String()
		}
		sb.WriteString(compress(row))
	}
	sb.WriteByte(' ')
	mb := g.Macroboard()
	for j := 0; j < board.SubDim; j++ {
		if j > 0 {
			sb.WriteByte('/')
		}
		row := make([]string, board.SubDim)
		for i := 0; i < board.SubDim; i++ {
			row[i] = mb[i][j].String()
		}
		sb.WriteString(compress(row))
	}
	fmt.Fprintf(&sb, " %d %d", g.MoveNumber(), g.RoundNumber())
	return sb.String()
}

func compress(cells []string) string {
	var sb strings.Builder
	run := 0
	for _, c := range cells {
		if c == "." {
			run++
			continue
		}
		if run > 0 {
			sb.WriteString(strconv.Itoa(run))
			run = 0
		}
		sb.WriteString(c)
	}
	if run > 0 {
		sb.WriteString(strconv.Itoa(run))
	}
	return sb.String()
}
