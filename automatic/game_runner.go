// Package automatic plays computer-vs-computer games of Ultimate
// Tic-Tac-Toe, for comparing players and for shaking out bugs in the
// engine.
package automatic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/hyggebot/uttt/ai/player"
	"github.com/hyggebot/uttt/config"
	"github.com/hyggebot/uttt/game"
	"github.com/hyggebot/uttt/move"
)

const (
	MinimaxPlayer = "minimax"
	RandomPlayer  = "random"
)

// GameResult is the outcome of one game. Players are indexed as they were
// passed to Init, not by mark.
type GameResult struct {
	GameID int
	// Winner is 0 or 1, or -1 for a tie.
	Winner int
	// FirstPlayer is the index of the player that moved first.
	FirstPlayer int
	Moves       int
	// DecisionTimes holds the time each player spent per move.
	DecisionTimes [2][]time.Duration
}

// GameRunner is the master struct here for the automatic game logic.
type GameRunner struct {
	game      *game.GameState
	config    *config.Config
	logchan   chan string
	aiplayers [2]player.AIPlayer
	gameID    int
	first     int
}

// NewGameRunner returns a runner for minimax against the configured
// autoplay opponent.
func NewGameRunner(logchan chan string, cfg *config.Config) (*GameRunner, error) {
	r := &GameRunner{logchan: logchan, config: cfg}
	err := r.Init(MinimaxPlayer, cfg.GetString(config.ConfigAutoplayOpponent), cfg.GetString(config.ConfigSeed))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Init creates the two players. A non-empty seed makes both players'
// random choices reproducible.
func (r *GameRunner) Init(player1, player2 string, seed string) error {
	for idx, kind := range []string{player1, player2} {
		rng := player.RNGFromSeed("")
		if seed != "" {
			rng = player.RNGFromSeed(fmt.Sprintf("%s/player%d", seed, idx+1))
		}
		p, err := player.NewFromConfig(kind, r.config, rng)
		if err != nil {
			return err
		}
		r.aiplayers[idx] = p
	}
	return nil
}

// StartGame sets up a fresh board. Players alternate moving first from one
// game to the next.
func (r *GameRunner) StartGame(gameID int) {
	r.game = game.NewGameState()
	r.gameID = gameID
	r.first = gameID % 2
}

// playerOnTurn returns the index of the player to move.
func (r *GameRunner) playerOnTurn() int {
	if r.game.MoveNumber()%2 == 0 {
		return r.first
	}
	return 1 - r.first
}

// PlayBestTurn asks the player on turn for a move and plays it.
func (r *GameRunner) PlayBestTurn(ctx context.Context) (move.Move, time.Duration, error) {
	idx := r.playerOnTurn()
	moveNumber := r.game.MoveNumber()
	tstart := time.Now()
	m := r.aiplayers[idx].BestMove(ctx, r.game)
	elapsed := time.Since(tstart)
	if err := r.game.PlayMove(m); err != nil {
		return m, elapsed, fmt.Errorf("player %s (%d): %w", r.aiplayers[idx].Name(), idx+1, err)
	}
	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%v,%v\n",
			r.gameID,
			moveNumber,
			r.aiplayers[idx].Name()+"-"+strconv.Itoa(idx+1),
			m.X, m.Y,
			elapsed.Milliseconds())
	}
	return m, elapsed, nil
}

// PlayGame plays a whole game. It stops early, with ctx's error, if ctx is
// cancelled.
func (r *GameRunner) PlayGame(ctx context.Context, gameID int) (GameResult, error) {
	r.StartGame(gameID)
	res := GameResult{GameID: gameID, FirstPlayer: r.first, Winner: -1}
	for r.game.Playing() == game.Active {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		idx := r.playerOnTurn()
		_, elapsed, err := r.PlayBestTurn(ctx)
		if err != nil {
			log.Err(err).Int("game", gameID).Msg("illegal-move-in-autoplay")
			return res, err
		}
		res.DecisionTimes[idx] = append(res.DecisionTimes[idx], elapsed)
	}
	res.Moves = r.game.MoveNumber()
	if r.game.Playing() == game.Win {
		// the last mover won.
		res.Winner = 1 - r.playerOnTurn()
	}
	log.Debug().Int("game", gameID).Int("winner", res.Winner).Int("moves", res.Moves).
		Msg("game-over")
	return res, nil
}

// Game returns the current game state.
func (r *GameRunner) Game() *game.GameState {
	return r.game
}

// gameSeed derives the seed of one game from the run's seed phrase.
func gameSeed(seed string, gameID int) string {
	if seed == "" {
		return ""
	}
	return strconv.FormatUint(xxhash.Sum64String(fmt.Sprintf("%s/game/%d", seed, gameID)), 16)
}
