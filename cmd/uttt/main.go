package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyggebot/uttt/ai/player"
	"github.com/hyggebot/uttt/automatic"
	"github.com/hyggebot/uttt/config"
	"github.com/hyggebot/uttt/notation"
)

var (
	GitVersion string
)

func usage(w io.Writer) {
	io.WriteString(w, "usage: uttt [flags] <command>\n")
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "bestmove <position> - pick a move for the player on turn\n")
	io.WriteString(w, "    position is \"<9 rows> <3 macro rows> <move> <round>\",\n")
	io.WriteString(w, "    e.g. \""+notation.StartPosition+"\"\n")
	io.WriteString(w, "autoplay - play minimax against autoplay-opponent and print a summary\n")
}

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func bestMove(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("bestmove needs a position")
	}
	g, err := notation.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}
	p := player.NewMinimaxPlayerFromConfig(cfg)
	if path := cfg.GetString(config.ConfigSearchLog); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating search log: %w", err)
		}
		defer f.Close()
		p.SetLogStream(f)
	}
	m := p.BestMove(ctx, g)
	fmt.Println(g.ToDisplayText())
	if m.IsNoMove() {
		fmt.Printf("game is over: %v\n", g.Playing())
		return nil
	}
	d := p.LastDecision()
	fmt.Printf("best move: %v (%s, score %d, depth %d)\n", m, d.Reason, d.Score, d.Depth)
	if err := g.PlayMove(m); err != nil {
		return err
	}
	fmt.Println("after:", notation.String(g))
	return nil
}

func autoplay(ctx context.Context, cfg *config.Config) error {
	var logWriter io.Writer
	if path := cfg.GetString(config.ConfigAutoplayLog); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating autoplay log: %w", err)
		}
		defer f.Close()
		logWriter = f
	}
	threads := cfg.GetInt(config.ConfigAutoplayThreads)
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	summary, err := automatic.CompVsComp(ctx, cfg, automatic.MinimaxPlayer,
		cfg.GetString(config.ConfigAutoplayOpponent), cfg.GetInt(config.ConfigAutoplayGames),
		threads, logWriter)
	if summary != nil {
		fmt.Println(summary)
	}
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("autoplay-interrupted")
		return nil
	}
	return err
}

func main() {
	cfg := &config.Config{}
	args, err := cfg.Load(os.Args[1:])
	setupLogging(cfg.GetBool(config.ConfigDebug))
	if err != nil {
		usage(os.Stderr)
		log.Fatal().Err(err).Msg("bad-arguments")
	}
	// log files land where the command was run, even under go run.
	if err := cfg.AdjustPathsToWorkingDir(); err != nil {
		log.Fatal().Err(err).Msg("no-working-directory")
	}
	log.Debug().Str("version", GitVersion).Interface("settings", cfg.SanitizedSettings()).
		Msg("loaded-config")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		cancel()
	}()

	if len(args) == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}
	switch args[0] {
	case "bestmove":
		err = bestMove(ctx, cfg, args[1:])
	case "autoplay":
		err = autoplay(ctx, cfg)
	case "help":
		usage(os.Stdout)
	default:
		usage(os.Stderr)
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		log.Err(err).Msg("command-failed")
		os.Exit(1)
	}
}
