package automatic

// Data collection for automatic games.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyggebot/uttt/alphabeta"
	"github.com/hyggebot/uttt/config"
	"github.com/hyggebot/uttt/stats"
)

// Summary accumulates the results of many games.
type Summary struct {
	Names           [2]string
	Games           int
	Wins            [2]int
	Ties            int
	FirstPlayerWins int
	Lengths         []float64
	Length          stats.Statistic
	DecisionMs      [2]stats.Statistic
}

func (s *Summary) add(res GameResult) {
	s.Games++
	switch res.Winner {
	case -1:
		s.Ties++
	default:
		s.Wins[res.Winner]++
		if res.Winner == res.FirstPlayer {
			s.FirstPlayerWins++
		}
	}
	s.Lengths = append(s.Lengths, float64(res.Moves))
	s.Length.Push(float64(res.Moves))
	for idx := range res.DecisionTimes {
		for _, d := range res.DecisionTimes[idx] {
			s.DecisionMs[idx].Push(float64(d.Microseconds()) / 1000)
		}
	}
}

// WinRate is the first player's score rate, counting ties as half a win,
// with a 95% confidence interval.
func (s *Summary) WinRate() (float64, float64, float64) {
	if s.Games == 0 {
		return 0, 0, 1
	}
	points := float64(s.Wins[0]) + float64(s.Ties)/2
	lo, hi := stats.WilsonInterval(points, s.Games, 95)
	return points / float64(s.Games), lo, hi
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d games: %s-1 won %d, %s-2 won %d, %d tied\n",
		s.Games, s.Names[0], s.Wins[0], s.Names[1], s.Wins[1], s.Ties)
	rate, lo, hi := s.WinRate()
	fmt.Fprintf(&sb, "%s-1 score rate %.3f (95%% CI %.3f-%.3f)\n", s.Names[0], rate, lo, hi)
	fmt.Fprintf(&sb, "player moving first won %d\n", s.FirstPlayerWins)
	fmt.Fprintf(&sb, "game length: mean %.2f, stdev %.2f, min %.0f, max %.0f\n",
		s.Length.Mean(), s.Length.Stdev(), s.Length.Min(), s.Length.Max())
	for idx := range s.DecisionMs {
		d := &s.DecisionMs[idx]
		fmt.Fprintf(&sb, "%s-%d decision ms: mean %.2f ± %.2f, max %.2f\n",
			s.Names[idx], idx+1, d.Mean(), d.StandardError()*stats.ZVal(95), d.Max())
	}
	if len(s.Lengths) > 0 {
		sb.WriteString("\ngame lengths:\n")
		if err := histogram.Fprint(&sb, histogram.Hist(10, s.Lengths), histogram.Linear(30)); err != nil {
			log.Err(err).Msg("histogram")
		}
	}
	return sb.String()
}

// CompVsComp plays numGames games between player1 and player2, at most
// threads at a time. Every move is written to logWriter as CSV if it is
// not nil. If ctx is cancelled the games finished so far are summarized
// and ctx's error is returned alongside.
func CompVsComp(ctx context.Context, cfg *config.Config, player1, player2 string,
	numGames, threads int, logWriter io.Writer) (*Summary, error) {

	if threads < 1 {
		return nil, errors.New("need at least one thread")
	}
	if numGames < 0 {
		return nil, fmt.Errorf("number of games must not be negative, got %d", numGames)
	}
	if cfg.GetBool(config.ConfigTranspositionTable) {
		if threads > 1 {
			alphabeta.GlobalTranspositionTable.SetMultiThreadedMode()
		} else {
			alphabeta.GlobalTranspositionTable.SetSingleThreadedMode()
		}
		alphabeta.GlobalTranspositionTable.EnsureAllocated(cfg.GetFloat64(config.ConfigTTMemoryFraction))
	}
	log.Debug().Int("games", numGames).Int("threads", threads).
		Str("player1", player1).Str("player2", player2).Msg("starting-autoplay")

	var logChan chan string
	logDone := make(chan struct{})
	if logWriter != nil {
		logChan = make(chan string, 100)
		go func() {
			defer close(logDone)
			io.WriteString(logWriter, "gameID,moveNumber,player,x,y,elapsedMs\n")
			for msg := range logChan {
				io.WriteString(logWriter, msg)
			}
		}()
	} else {
		close(logDone)
	}

	results := make(chan GameResult, numGames)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	seed := cfg.GetString(config.ConfigSeed)

gameLoop:
	for i := 0; i < numGames; i++ {
		select {
		case <-gctx.Done():
			log.Info().Msg("got-stop-signal")
			break gameLoop
		default:
		}
		gameID := i
		g.Go(func() error {
			r := &GameRunner{logchan: logChan, config: cfg}
			if err := r.Init(player1, player2, gameSeed(seed, gameID)); err != nil {
				return err
			}
			res, err := r.PlayGame(gctx, gameID)
			if err != nil {
				return err
			}
			results <- res
			return nil
		})
	}
	err := g.Wait()
	close(results)
	if logChan != nil {
		close(logChan)
	}
	<-logDone

	summary := &Summary{Names: [2]string{player1, player2}}
	for res := range results {
		summary.add(res)
	}
	log.Info().Int("games", summary.Games).Msg("autoplay-finished")
	return summary, err
}
