package player

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/hyggebot/uttt/alphabeta"
	"github.com/hyggebot/uttt/config"
	"github.com/hyggebot/uttt/game"
	"github.com/hyggebot/uttt/move"
)

// MinimaxPlayer picks moves in three steps:
//
//  1. If some moves win the game outright, play one of them at random.
//     Failing that, play a random move that wins a sub-board, if any.
//  2. Otherwise search every root move with alpha-beta until the time
//     budget runs out, and play the best completed one.
//  3. If nothing completed, play a random legal move.
//
// On an empty board it opens in the center unless told otherwise.
type MinimaxPlayer struct {
	solver *alphabeta.Solver
	rng    *frand.RNG

	timeBudget         time.Duration
	openCenter         bool
	iterativeDeepening bool

	logStream    io.Writer
	lastDecision *Decision
}

func NewMinimaxPlayer(solver *alphabeta.Solver) *MinimaxPlayer {
	return &MinimaxPlayer{
		solver:     solver,
		rng:        frand.New(),
		timeBudget: DefaultTimeBudget,
		openCenter: true,
	}
}

// NewMinimaxPlayerFromConfig reads the search, evaluation and selector
// settings from cfg.
func NewMinimaxPlayerFromConfig(cfg *config.Config) *MinimaxPlayer {
	p := NewMinimaxPlayer(alphabeta.NewSolverFromConfig(cfg))
	p.SetTimeBudget(cfg.GetDuration(config.ConfigTimeBudget))
	p.SetOpenCenter(cfg.GetBool(config.ConfigOpenCenter))
	p.SetIterativeDeepening(cfg.GetBool(config.ConfigIterativeDeepening))
	p.SetRNG(RNGFromSeed(cfg.GetString(config.ConfigSeed)))
	return p
}

func (p *MinimaxPlayer) Name() string {
	return "minimax"
}

// SetRNG replaces the source used for tie-breaks and fallbacks.
func (p *MinimaxPlayer) SetRNG(rng *frand.RNG) {
	p.rng = rng
}

func (p *MinimaxPlayer) SetTimeBudget(d time.Duration) {
	p.timeBudget = d
}

func (p *MinimaxPlayer) SetOpenCenter(b bool) {
	p.openCenter = b
}

func (p *MinimaxPlayer) SetIterativeDeepening(b bool) {
	p.iterativeDeepening = b
}

// SetLogStream makes the player write every decision as YAML to l. Pass
// nil to stop.
func (p *MinimaxPlayer) SetLogStream(l io.Writer) {
	p.logStream = l
}

func (p *MinimaxPlayer) Solver() *alphabeta.Solver {
	return p.solver
}

// LastDecision describes the most recent BestMove call.
func (p *MinimaxPlayer) LastDecision() *Decision {
	return p.lastDecision
}

// BestMove picks a move for the player on turn in g. g is not modified.
func (p *MinimaxPlayer) BestMove(ctx context.Context, g *game.GameState) move.Move {
	tstart := time.Now()
	d := newDecision(g)
	defer func() {
		d.ElapsedMs = time.Since(tstart).Milliseconds()
		d.Move = d.picked.String()
		p.lastDecision = d
		p.logDecision(d)
	}()
	if g.Playing() != game.Active {
		return move.NoMove
	}
	moves := legalMovesOrPanic(g)

	winners := lo.Filter(moves, func(m move.Move, _ int) bool {
		return g.WouldWin(m)
	})
	if len(winners) > 0 {
		d.Reason = "win"
		d.picked = winners[p.rng.Intn(len(winners))]
		return d.picked
	}
	completers := lo.Filter(moves, func(m move.Move, _ int) bool {
		return g.CompletesSubBoard(m)
	})
	if len(completers) > 0 {
		d.Reason = "sub-board"
		d.picked = completers[p.rng.Intn(len(completers))]
		return d.picked
	}

	if p.openCenter && g.Board().IsEmpty() && g.IsLegal(center) {
		d.Reason = "center"
		d.picked = center
		return d.picked
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeBudget)
	defer cancel()

	var best *searchPass
	if p.iterativeDeepening {
		for depth := 1; depth <= p.solver.MaxDepth(); depth++ {
			pass := p.searchRoot(ctx, g, moves, depth)
			if pass.complete || best == nil && pass.found {
				best = pass
			}
			if !pass.complete {
				break
			}
		}
	} else {
		best = p.searchRoot(ctx, g, moves, p.solver.MaxDepth())
	}

	if best != nil && best.found {
		d.Reason = "search"
		d.Score = best.score
		d.Depth = best.depth
		d.Candidates = best.candidates
		d.picked = best.move
		return d.picked
	}

	log.Debug().Dur("budget", p.timeBudget).Msg("no-search-result-playing-random")
	d.Reason = "random"
	d.picked = moves[p.rng.Intn(len(moves))]
	return d.picked
}

type searchPass struct {
	depth      int
	move       move.Move
	score      int
	found      bool
	complete   bool
	candidates []Candidate
}

// searchRoot scores each root move by searching the position after it.
// Only searches that finished count; the first of equal scores wins.
func (p *MinimaxPlayer) searchRoot(ctx context.Context, g *game.GameState,
	moves []move.Move, depth int) *searchPass {

	mover := g.PlayerOnTurn()
	pass := &searchPass{depth: depth, move: move.NoMove}
	child := &game.GameState{}
	for _, m := range moves {
		if ctx.Err() != nil {
			return pass
		}
		child.CopyFrom(g)
		if err := child.PlayMove(m); err != nil {
			panic(err)
		}
		score, complete := p.solver.SearchToDepth(ctx, child, mover, depth)
		if !complete {
			return pass
		}
		pass.candidates = append(pass.candidates, Candidate{Move: m.String(), Score: score})
		if !pass.found || score > pass.score {
			pass.found = true
			pass.score = score
			pass.move = m
		}
	}
	pass.complete = true
	log.Debug().Int("depth", depth).Int("score", pass.score).
		Stringer("move", pass.move).Msg("root-pass-complete")
	return pass
}

func (p *MinimaxPlayer) logDecision(d *Decision) {
	log.Debug().
		Int("move-number", d.MoveNumber).
		Stringer("move", d.picked).
		Str("reason", d.Reason).
		Int("score", d.Score).
		Int("depth", d.Depth).
		Int64("elapsed-ms", d.ElapsedMs).
		Msg("best-move")
	if p.logStream == nil {
		return
	}
	out, err := yaml.Marshal([]*Decision{d})
	if err != nil {
		log.Err(err).Msg("marshal-decision")
		return
	}
	if _, err := p.logStream.Write(out); err != nil {
		log.Err(err).Msg("write-decision-log")
	}
}
