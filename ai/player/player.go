// Package player contains the automatic players of Ultimate Tic-Tac-Toe.
package player

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash"
	"lukechampine.com/frand"

	"github.com/hyggebot/uttt/config"
	"github.com/hyggebot/uttt/game"
	"github.com/hyggebot/uttt/move"
)

// AIPlayer picks a move for whoever is on turn in a position. BestMove
// returns move.NoMove once the game is over and never returns an illegal
// move otherwise.
type AIPlayer interface {
	BestMove(ctx context.Context, g *game.GameState) move.Move
	Name() string
}

// RNGFromSeed derives a reproducible generator from a seed phrase. An empty
// phrase gives a generator seeded from system entropy.
func RNGFromSeed(seed string) *frand.RNG {
	if seed == "" {
		return frand.New()
	}
	key := make([]byte, 32)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(key[i*8:], xxhash.Sum64String(fmt.Sprintf("%s/%d", seed, i)))
	}
	return frand.NewCustom(key, 1024, 12)
}

// legalMovesOrPanic returns the legal moves of an active game.
func legalMovesOrPanic(g *game.GameState) []move.Move {
	moves := g.LegalMoves()
	if len(moves) == 0 {
		panic(fmt.Errorf("%w:%s", game.ErrInvariantViolation, g.ToDisplayText()))
	}
	return moves
}

// RandomPlayer plays a uniformly random legal move.
type RandomPlayer struct {
	rng *frand.RNG
}

func NewRandomPlayer(rng *frand.RNG) *RandomPlayer {
	if rng == nil {
		rng = frand.New()
	}
	return &RandomPlayer{rng: rng}
}

func (p *RandomPlayer) Name() string {
	return "random"
}

func (p *RandomPlayer) BestMove(ctx context.Context, g *game.GameState) move.Move {
	if g.Playing() != game.Active {
		return move.NoMove
	}
	moves := legalMovesOrPanic(g)
	return moves[p.rng.Intn(len(moves))]
}

// center is the opening move when the board is empty.
var center = move.New(4, 4)

// DefaultTimeBudget is how long a MinimaxPlayer may think about one move.
const DefaultTimeBudget = time.Second

// Decision explains how a move was picked. Reason is one of "win",
// "sub-board", "center", "search" or "random".
type Decision struct {
	MoveNumber int         `yaml:"move-number"`
	Player     string      `yaml:"player"`
	Move       string      `yaml:"move"`
	Reason     string      `yaml:"reason"`
	Score      int         `yaml:"score,omitempty"`
	Depth      int         `yaml:"depth,omitempty"`
	ElapsedMs  int64       `yaml:"elapsed-ms"`
	Candidates []Candidate `yaml:"candidates,omitempty,flow"`

	picked move.Move
}

// Candidate is one searched root move.
type Candidate struct {
	Move  string `yaml:"move"`
	Score int    `yaml:"score"`
}

// PickedMove is the move that was picked, or move.NoMove.
func (d *Decision) PickedMove() move.Move {
	return d.picked
}

func newDecision(g *game.GameState) *Decision {
	return &Decision{
		MoveNumber: g.MoveNumber(),
		Player:     g.PlayerOnTurn().String(),
		picked:     move.NoMove,
	}
}

var _ AIPlayer = (*RandomPlayer)(nil)
var _ AIPlayer = (*MinimaxPlayer)(nil)

// NewFromConfig builds the player named by kind: "random" or "minimax".
func NewFromConfig(kind string, cfg *config.Config, rng *frand.RNG) (AIPlayer, error) {
	switch kind {
	case "random":
		return NewRandomPlayer(rng), nil
	case "minimax":
		p := NewMinimaxPlayerFromConfig(cfg)
		if rng != nil {
			p.SetRNG(rng)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown player kind %q", kind)
}
