// Package evaluator scores a position from one player's point of view. The
// heuristic is coarse: it only needs to order positions well enough for a
// shallow alpha-beta search.
package evaluator

import (
	"github.com/samber/lo"

	"github.com/hyggebot/uttt/board"
	"github.com/hyggebot/uttt/config"
	"github.com/hyggebot/uttt/game"
)

// Weights are the heuristic's tunable constants.
type Weights struct {
	// MicroLine is awarded per three-in-a-row inside a sub-board.
	MicroLine int `yaml:"micro-line"`
	// AvailablePenalty is charged per sub-board the opponent may move in.
	AvailablePenalty int `yaml:"available-penalty"`
	// MacroCell is awarded per won sub-board.
	MacroCell int `yaml:"macro-cell"`
	// OpponentThreat is awarded per sub-board line holding two opponent
	// marks and one empty cell.
	OpponentThreat int `yaml:"opponent-threat"`
	// ControlBonus is a flat bonus for owning any sub-board at all.
	ControlBonus int `yaml:"control-bonus"`
	// MacroLineLoss is charged when the opponent owns a macro line.
	MacroLineLoss int `yaml:"macro-line-loss"`
}

// DefaultWeights keeps macroboard terms an order of magnitude above
// sub-board terms, and an opponent macro line above everything.
var DefaultWeights = Weights{
	MicroLine:        10,
	AvailablePenalty: 20,
	MacroCell:        100,
	OpponentThreat:   100,
	ControlBonus:     200,
	MacroLineLoss:    10000,
}

// WeightsFromConfig reads the eval-* settings.
func WeightsFromConfig(cfg *config.Config) Weights {
	return Weights{
		MicroLine:        cfg.GetInt(config.ConfigEvalMicroLine),
		AvailablePenalty: cfg.GetInt(config.ConfigEvalAvailablePenalty),
		MacroCell:        cfg.GetInt(config.ConfigEvalMacroCell),
		OpponentThreat:   cfg.GetInt(config.ConfigEvalOpponentThreat),
		ControlBonus:     cfg.GetInt(config.ConfigEvalControlBonus),
		MacroLineLoss:    cfg.GetInt(config.ConfigEvalMacroLineLoss),
	}
}

// Evaluator scores positions. The zero value scores everything as 0; use
// New or set W.
type Evaluator struct {
	W Weights
}

func New(w Weights) *Evaluator {
	return &Evaluator{W: w}
}

type subBoard struct{ sx, sy int }

var subBoards = func() []subBoard {
	s := make([]subBoard, 0, board.SubDim*board.SubDim)
	for sx := 0; sx < board.SubDim; sx++ {
		for sy := 0; sy < board.SubDim; sy++ {
			s = append(s, subBoard{sx, sy})
		}
	}
	return s
}()

// Evaluate returns a score for g. Higher is better for maximizer.
func (e *Evaluator) Evaluate(g *game.GameState, maximizer board.Mark) int {
	opp := maximizer.Opponent()
	b := g.Board()
	mb := g.Macroboard()

	score := lo.SumBy(subBoards, func(s subBoard) int {
		return e.subBoardScore(b, mb, s, maximizer, opp)
	})

	ours, theirs := mb.Count(board.WonBy(maximizer)), mb.Count(board.WonBy(opp))
	score += (ours - theirs) * e.W.MacroCell

	if ours > 0 {
		score += e.W.ControlBonus
	}
	if theirs > 0 {
		score -= e.W.ControlBonus
	}
	if mb.HasLine(opp) {
		score -= e.W.MacroLineLoss
	}
	return score
}

func (e *Evaluator) subBoardScore(b *board.Board, mb *board.Macroboard, s subBoard,
	maximizer, opp board.Mark) int {

	cell := b.SubBoardCell(s.sx, s.sy)
	score := 0
	for _, l := range board.Lines {
		var counts [3]int
		for _, c := range l {
			counts[cell(c[0], c[1])]++
		}
		switch {
		case counts[maximizer] == board.SubDim:
			score += e.W.MicroLine
		case counts[opp] == board.SubDim:
			score -= e.W.MicroLine
		case counts[opp] == 2 && counts[board.Empty] == 1:
			score += e.W.OpponentThreat
		}
	}
	if mb[s.sx][s.sy] == board.MacroAvailable {
		score -= e.W.AvailablePenalty
	}
	return score
}
