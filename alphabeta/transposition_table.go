package alphabeta

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/hyggebot/uttt/board"
	"github.com/hyggebot/uttt/game"
	"github.com/hyggebot/uttt/zobrist"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 16

const depthMask = (1 << 6) - 1

const (
	minSizePowerOf2 = 16
	maxSizePowerOf2 = 26
)

// 16 bytes (entrySize)
type TableEntry struct {
	key          uint64
	score        int32
	flagAndDepth uint8
}

func newEntry(score int, flag uint8, depth int) TableEntry {
	return TableEntry{
		score:        int32(score),
		flagAndDepth: flag<<6 | uint8(depth)&depthMask,
	}
}

func (t TableEntry) flag() uint8 {
	return t.flagAndDepth >> 6
}

func (t TableEntry) depth() int {
	return int(t.flagAndDepth & depthMask)
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag() != 0
}

type TableLock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type FakeLock struct{}

func (f FakeLock) Lock()    {}
func (f FakeLock) Unlock()  {}
func (f FakeLock) RLock()   {}
func (f FakeLock) RUnlock() {}

// TranspositionTable caches search results by position. Scores are always
// from the searching player's point of view, so the key also folds in who
// that player is. All solvers sharing a table must use the same evaluator
// weights.
type TranspositionTable struct {
	TableLock
	table        []TableEntry
	created      atomic.Uint64
	lookups      atomic.Uint64
	hits         atomic.Uint64
	sizePowerOf2 int
	sizeMask     uint64
	// Two positions landing in the same bucket. The newer one wins.
	collisions atomic.Uint64

	zobrist     *zobrist.Zobrist
	playerBSalt uint64
}

// GlobalTranspositionTable is shared by every solver created from config.
// It can take a sizeable amount of memory, so we only keep one.
var GlobalTranspositionTable = &TranspositionTable{TableLock: &sync.RWMutex{}}

// NewTranspositionTable returns a single-threaded table sized to the given
// fraction of system memory.
func NewTranspositionTable(fractionOfMemory float64) *TranspositionTable {
	t := &TranspositionTable{TableLock: &FakeLock{}}
	t.Reset(fractionOfMemory)
	return t
}

func (t *TranspositionTable) SetSingleThreadedMode() {
	t.TableLock = &FakeLock{}
}

func (t *TranspositionTable) SetMultiThreadedMode() {
	t.TableLock = &sync.RWMutex{}
}

// Key returns the table key for g searched on behalf of maximizer.
func (t *TranspositionTable) Key(g *game.GameState, maximizer board.Mark) uint64 {
	k := t.zobrist.Hash(g)
	if maximizer == board.PlayerB {
		k ^= t.playerBSalt
	}
	return k
}

func (t *TranspositionTable) lookup(key uint64) TableEntry {
	t.RLock()
	defer t.RUnlock()
	t.lookups.Add(1)
	idx := key & t.sizeMask
	entry := t.table[idx]
	if entry.key != key {
		if entry.valid() {
			// There is another unrelated node at this position.
			t.collisions.Add(1)
		}
		return TableEntry{}
	}
	t.hits.Add(1)
	return entry
}

func (t *TranspositionTable) store(key uint64, tentry TableEntry) {
	idx := key & t.sizeMask
	tentry.key = key
	t.Lock()
	defer t.Unlock()
	// just overwrite whatever is there for now.
	t.table[idx] = tentry
	t.created.Add(1)
}

// Reset sizes the table to the biggest power of two that fits in the given
// fraction of system memory, within fixed bounds, and clears it.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	if t.TableLock == nil {
		t.TableLock = &FakeLock{}
	}
	t.Lock()
	defer t.Unlock()
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	t.sizePowerOf2 = minSizePowerOf2
	if desiredNElems > 1 {
		t.sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	t.sizePowerOf2 = max(minSizePowerOf2, min(maxSizePowerOf2, t.sizePowerOf2))

	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	reset := false
	if t.table != nil && len(t.table) == numElems {
		reset = true
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}

	if t.zobrist == nil {
		log.Debug().Msg("creating-zobrist-hash")
		t.zobrist = &zobrist.Zobrist{}
		t.zobrist.Initialize()
		t.playerBSalt = frand.Uint64n(math.MaxUint64-1) + 1
	}

	log.Debug().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Bool("reset", reset).
		Msg("transposition-table-size")

	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.collisions.Store(0)
}

// EnsureAllocated resets the table only if it has never been sized.
func (t *TranspositionTable) EnsureAllocated(fractionOfMemory float64) {
	t.RLock()
	allocated := t.table != nil
	t.RUnlock()
	if !allocated {
		t.Reset(fractionOfMemory)
	}
}

func (t *TranspositionTable) Zobrist() *zobrist.Zobrist {
	return t.zobrist
}

// Stats returns lookups, hits, stores and bucket collisions since the last
// reset.
func (t *TranspositionTable) Stats() (lookups, hits, created, collisions uint64) {
	return t.lookups.Load(), t.hits.Load(), t.created.Load(), t.collisions.Load()
}
