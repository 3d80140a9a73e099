package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug              = "debug"
	ConfigTimeBudget         = "time-budget"
	ConfigMaxDepth           = "max-depth"
	ConfigOpenCenter         = "open-center"
	ConfigIterativeDeepening = "iterative-deepening"
	ConfigTranspositionTable = "tt"
	ConfigTTMemoryFraction   = "tt-memory-fraction"
	ConfigSeed               = "seed"
	ConfigSearchLog          = "search-log"

	ConfigEvalMicroLine        = "eval-micro-line"
	ConfigEvalAvailablePenalty = "eval-available-penalty"
	ConfigEvalMacroCell        = "eval-macro-cell"
	ConfigEvalOpponentThreat   = "eval-opponent-threat"
	ConfigEvalControlBonus     = "eval-control-bonus"
	ConfigEvalMacroLineLoss    = "eval-macro-line-loss"

	ConfigAutoplayGames    = "autoplay-games"
	ConfigAutoplayThreads  = "autoplay-threads"
	ConfigAutoplayOpponent = "autoplay-opponent"
	ConfigAutoplayLog      = "autoplay-log"
)

const envPrefix = "uttt"

// Config wraps a viper instance. Every setting can come from (in order of
// precedence) a command-line flag, a UTTT_-prefixed environment variable,
// the config file, or the built-in default.
type Config struct {
	sync.Mutex
	viper.Viper

	configPath string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigTimeBudget, time.Second)
	v.SetDefault(ConfigMaxDepth, 5)
	v.SetDefault(ConfigOpenCenter, true)
	v.SetDefault(ConfigIterativeDeepening, false)
	v.SetDefault(ConfigTranspositionTable, false)
	v.SetDefault(ConfigTTMemoryFraction, 0.05)
	v.SetDefault(ConfigSeed, "")
	v.SetDefault(ConfigSearchLog, "")

	v.SetDefault(ConfigEvalMicroLine, 10)
	v.SetDefault(ConfigEvalAvailablePenalty, 20)
	v.SetDefault(ConfigEvalMacroCell, 100)
	v.SetDefault(ConfigEvalOpponentThreat, 100)
	v.SetDefault(ConfigEvalControlBonus, 200)
	v.SetDefault(ConfigEvalMacroLineLoss, 10000)

	v.SetDefault(ConfigAutoplayGames, 100)
	v.SetDefault(ConfigAutoplayThreads, 4)
	v.SetDefault(ConfigAutoplayOpponent, "random")
	v.SetDefault(ConfigAutoplayLog, "")
}

// DefaultConfig returns a config with only the built-in defaults. It does
// not look at flags, the environment, or config files, which makes it the
// right thing to use in tests.
func DefaultConfig() *Config {
	c := &Config{}
	c.Viper = *viper.New()
	setDefaults(&c.Viper)
	return c
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("uttt", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Duration(ConfigTimeBudget, time.Second, "wall-clock budget for a single move decision")
	fs.Int(ConfigMaxDepth, 5, "search depth below each root move, in plies")
	fs.Bool(ConfigOpenCenter, true, "play the center cell on an empty board")
	fs.Bool(ConfigIterativeDeepening, false, "deepen the search one ply at a time up to max-depth")
	fs.Bool(ConfigTranspositionTable, false, "use a transposition table during search")
	fs.Float64(ConfigTTMemoryFraction, 0.05, "fraction of system memory for the transposition table")
	fs.String(ConfigSeed, "", "seed phrase for reproducible random choices")
	fs.String(ConfigSearchLog, "", "file to write a YAML log of every decision to, relative to the working directory")
	fs.Int(ConfigAutoplayGames, 100, "number of games for autoplay")
	fs.Int(ConfigAutoplayThreads, 4, "number of games played in parallel during autoplay")
	fs.String(ConfigAutoplayOpponent, "random", "autoplay opponent: random or minimax")
	fs.String(ConfigAutoplayLog, "", "file to write a CSV log of every autoplay move to, relative to the working directory")
	return fs
}

// Load reads configuration from args, the environment, and the config file
// named by --config (if any). Positional arguments are returned.
func (c *Config) Load(args []string) ([]string, error) {
	c.Lock()
	defer c.Unlock()
	c.Viper = *viper.New()
	setDefaults(&c.Viper)

	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.BindPFlags(fs); err != nil {
		return nil, err
	}
	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	cfgFile, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	if cfgFile == "" {
		cfgFile = os.Getenv("UTTT_CONFIG")
	}
	if cfgFile != "" {
		c.configPath = cfgFile
		c.SetConfigFile(cfgFile)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				log.Warn().Str("path", cfgFile).Msg("config-file-not-found")
			} else {
				return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
			}
		}
	}
	return fs.Args(), nil
}

// AdjustRelativePaths rewrites path-valued settings that start with ./ so
// they are relative to basepath.
func (c *Config) AdjustRelativePaths(basepath string) {
	for _, key := range []string{ConfigSearchLog, ConfigAutoplayLog} {
		p := c.GetString(key)
		if strings.HasPrefix(p, "./") {
			c.Set(key, filepath.Join(basepath, p))
		}
	}
}

// AdjustPathsToWorkingDir is AdjustRelativePaths from the current
// working directory.
func (c *Config) AdjustPathsToWorkingDir() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	c.AdjustRelativePaths(wd)
	return nil
}

// ConfigPath returns the config file in use, if any.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SanitizedSettings returns the settings map suitable for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
