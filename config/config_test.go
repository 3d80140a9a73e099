package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetDuration(ConfigTimeBudget), time.Second)
	is.Equal(cfg.GetInt(ConfigMaxDepth), 5)
	is.True(cfg.GetBool(ConfigOpenCenter))
	is.True(!cfg.GetBool(ConfigTranspositionTable))
	is.Equal(cfg.GetInt(ConfigEvalMacroLineLoss), 10000)
}

func TestLoadFlags(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	rest, err := cfg.Load([]string{"--time-budget", "250ms", "--max-depth=3", "bestmove", "pos"})
	is.NoErr(err)
	is.Equal(rest, []string{"bestmove", "pos"})
	is.Equal(cfg.GetDuration(ConfigTimeBudget), 250*time.Millisecond)
	is.Equal(cfg.GetInt(ConfigMaxDepth), 3)
	// untouched keys keep their defaults
	is.Equal(cfg.GetInt(ConfigEvalMacroCell), 100)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("UTTT_EVAL_MACRO_CELL", "150")
	cfg := &Config{}
	_, err := cfg.Load(nil)
	is.NoErr(err)
	is.Equal(cfg.GetInt(ConfigEvalMacroCell), 150)
}

func TestLoadConfigFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "uttt.yaml")
	err := os.WriteFile(path, []byte("max-depth: 4\nseed: abc\n"), 0644)
	is.NoErr(err)

	cfg := &Config{}
	_, err = cfg.Load([]string{"--config", path})
	is.NoErr(err)
	is.Equal(cfg.GetInt(ConfigMaxDepth), 4)
	is.Equal(cfg.GetString(ConfigSeed), "abc")
	is.Equal(cfg.ConfigPath(), path)
}

func TestLoadBadFlag(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	_, err := cfg.Load([]string{"--no-such-flag"})
	is.True(err != nil)
}

func TestAdjustRelativePaths(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.Set(ConfigSearchLog, "./search.yaml")
	cfg.Set(ConfigAutoplayLog, "/tmp/games.csv")
	cfg.AdjustRelativePaths("/opt/uttt")
	is.Equal(cfg.GetString(ConfigSearchLog), "/opt/uttt/search.yaml")
	is.Equal(cfg.GetString(ConfigAutoplayLog), "/tmp/games.csv")
}

func TestAdjustPathsToWorkingDir(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	is.NoErr(err)
	is.NoErr(os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
	wd, err := os.Getwd()
	is.NoErr(err)

	cfg := &Config{}
	_, err = cfg.Load([]string{"--search-log", "./search.yaml", "--autoplay-log", "./games.csv"})
	is.NoErr(err)
	is.NoErr(cfg.AdjustPathsToWorkingDir())
	is.Equal(cfg.GetString(ConfigSearchLog), filepath.Join(wd, "search.yaml"))
	is.Equal(cfg.GetString(ConfigAutoplayLog), filepath.Join(wd, "games.csv"))
}
