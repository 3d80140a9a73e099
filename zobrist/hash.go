package zobrist

import (
	"lukechampine.com/frand"

	"github.com/hyggebot/uttt/board"
	"github.com/hyggebot/uttt/game"
)

const bignum = 1<<63 - 2

const (
	numMarks    = 3
	numStatuses = 5
)

// Zobrist hashes an Ultimate Tic-Tac-Toe position: the marks on the board,
// the macroboard statuses and the side to move.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	playerBToMove uint64

	posTable   [board.Dim * board.Dim][numMarks]uint64
	macroTable [board.SubDim * board.SubDim][numStatuses]uint64
}

// Initialize fills the key tables from the global frand generator.
func (z *Zobrist) Initialize() {
	z.InitializeWithRNG(nil)
}

// InitializeWithRNG fills the key tables from rng, which makes the keys
// reproducible. A nil rng uses the global generator.
func (z *Zobrist) InitializeWithRNG(rng *frand.RNG) {
	next := frand.Uint64n
	if rng != nil {
		next = rng.Uint64n
	}
	for i := range z.posTable {
		// Empty cells contribute nothing.
		for m := 1; m < numMarks; m++ {
			z.posTable[i][m] = next(bignum) + 1
		}
	}
	for i := range z.macroTable {
		for s := 0; s < numStatuses; s++ {
			z.macroTable[i][s] = next(bignum) + 1
		}
	}
	z.playerBToMove = next(bignum) + 1
}

// Hash returns the key for g. Move and round numbers are not part of the
// key; two states with the same grids and side to move search identically.
func (z *Zobrist) Hash(g *game.GameState) uint64 {
	key := uint64(0)
	b := g.Board()
	for x := 0; x < board.Dim; x++ {
		for y := 0; y < board.Dim; y++ {
			if m := b[x][y]; m != board.Empty {
				key ^= z.posTable[x*board.Dim+y][m]
			}
		}
	}
	mb := g.Macroboard()
	for i := 0; i < board.SubDim; i++ {
		for j := 0; j < board.SubDim; j++ {
			key ^= z.macroTable[i*board.SubDim+j][mb[i][j]]
		}
	}
	if g.PlayerOnTurn() == board.PlayerB {
		key ^= z.playerBToMove
	}
	return key
}
