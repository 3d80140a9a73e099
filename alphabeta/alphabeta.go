// Package alphabeta implements a depth-limited minimax search with
// alpha-beta pruning over Ultimate Tic-Tac-Toe positions. The search is
// bounded by a context; when the context expires it degrades to the best
// score found so far instead of failing.
package alphabeta

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyggebot/uttt/board"
	"github.com/hyggebot/uttt/config"
	"github.com/hyggebot/uttt/evaluator"
	"github.com/hyggebot/uttt/game"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
**/

const (
	// Infinity is 10 million, well beyond any evaluation.
	Infinity = 10000000
	// DefaultMaxDepth is how many plies the search looks ahead.
	DefaultMaxDepth = 5
)

// Solver runs the search. A Solver is not safe for concurrent use; give
// each goroutine its own.
type Solver struct {
	eval     *evaluator.Evaluator
	maxDepth int
	ttable   *TranspositionTable

	maximizer board.Mark
	nodes     uint64
}

// NewSolver returns a solver searching DefaultMaxDepth plies with no
// transposition table.
func NewSolver(e *evaluator.Evaluator) *Solver {
	return &Solver{eval: e, maxDepth: DefaultMaxDepth}
}

// NewSolverFromConfig builds a solver from the eval-*, max-depth and tt
// settings. The transposition table, if enabled, is the global one.
func NewSolverFromConfig(cfg *config.Config) *Solver {
	s := NewSolver(evaluator.New(evaluator.WeightsFromConfig(cfg)))
	s.SetMaxDepth(cfg.GetInt(config.ConfigMaxDepth))
	if cfg.GetBool(config.ConfigTranspositionTable) {
		GlobalTranspositionTable.EnsureAllocated(cfg.GetFloat64(config.ConfigTTMemoryFraction))
		s.SetTranspositionTable(GlobalTranspositionTable)
	}
	return s
}

func (s *Solver) SetMaxDepth(d int) {
	if d < 0 {
		d = 0
	}
	if d > depthMask {
		d = depthMask
	}
	s.maxDepth = d
}

func (s *Solver) MaxDepth() int {
	return s.maxDepth
}

// SetTranspositionTable turns on result caching; nil turns it off.
func (s *Solver) SetTranspositionTable(t *TranspositionTable) {
	s.ttable = t
}

func (s *Solver) Evaluator() *evaluator.Evaluator {
	return s.eval
}

// Nodes is the number of nodes visited by the last search.
func (s *Solver) Nodes() uint64 {
	return s.nodes
}

// Search scores g for maximizer by searching MaxDepth plies below it.
// Whether g itself is a maximizing node depends on who is on turn. The
// second return value is false if ctx expired before the search finished,
// in which case the score is only the best seen so far.
func (s *Solver) Search(ctx context.Context, g *game.GameState, maximizer board.Mark) (int, bool) {
	return s.SearchToDepth(ctx, g, maximizer, s.maxDepth)
}

// SearchToDepth is Search with an explicit depth.
func (s *Solver) SearchToDepth(ctx context.Context, g *game.GameState, maximizer board.Mark,
	maxDepth int) (int, bool) {

	tstart := time.Now()
	s.maximizer = maximizer
	s.nodes = 0
	saved := s.maxDepth
	s.maxDepth = maxDepth
	defer func() { s.maxDepth = saved }()

	maximizing := g.PlayerOnTurn() == maximizer
	score, complete := s.alphabeta(ctx, g, 0, -Infinity, Infinity, maximizing)

	ev := log.Debug().
		Int("score", score).
		Bool("complete", complete).
		Int("depth", maxDepth).
		Uint64("nodes", s.nodes).
		Dur("elapsed", time.Since(tstart))
	if s.ttable != nil {
		lookups, hits, _, _ := s.ttable.Stats()
		ev = ev.Uint64("tt-lookups", lookups).Uint64("tt-hits", hits)
	}
	ev.Msg("search-returning")
	return score, complete
}

func (s *Solver) alphabeta(ctx context.Context, g *game.GameState, depth int,
	α, β int, maximizing bool) (int, bool) {

	s.nodes++
	if ctx.Err() != nil {
		return s.eval.Evaluate(g, s.maximizer), false
	}
	if depth >= s.maxDepth || g.Playing() != game.Active {
		return s.eval.Evaluate(g, s.maximizer), true
	}

	remaining := s.maxDepth - depth
	var key uint64
	αOrig, βOrig := α, β
	if s.ttable != nil {
		key = s.ttable.Key(g, s.maximizer)
		entry := s.ttable.lookup(key)
		if entry.valid() && entry.depth() == remaining {
			score := int(entry.score)
			switch entry.flag() {
			case TTExact:
				return score, true
			case TTLower:
				α = max(α, score)
			case TTUpper:
				β = min(β, score)
			}
			if α >= β {
				return score, true
			}
		}
	}

	moves := g.LegalMoves()
	if len(moves) == 0 {
		panic(fmt.Errorf("%w:%s", game.ErrInvariantViolation, g.ToDisplayText()))
	}

	best := Infinity
	if maximizing {
		best = -Infinity
	}
	searched := false
	child := &game.GameState{}
	for _, m := range moves {
		if ctx.Err() != nil {
			if !searched {
				return s.eval.Evaluate(g, s.maximizer), false
			}
			return best, false
		}
		child.CopyFrom(g)
		if err := child.PlayMove(m); err != nil {
			panic(fmt.Errorf("enumerated move %v was rejected: %w", m, err))
		}
		score, complete := s.alphabeta(ctx, child, depth+1, α, β, !maximizing)
		searched = true
		if maximizing {
			best = max(best, score)
			α = max(α, score)
		} else {
			best = min(best, score)
			β = min(β, score)
		}
		if !complete {
			return best, false
		}
		if β <= α {
			break
		}
	}

	if s.ttable != nil {
		flag := uint8(TTExact)
		if best <= αOrig {
			flag = TTUpper
		} else if best >= βOrig {
			flag = TTLower
		}
		s.ttable.store(key, newEntry(best, flag, remaining))
	}
	return best, true
}
