package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "MAZERACE"

// Config holds the settings of both binaries. Each command registers only the
// flags it uses.
type Config struct {
	URL          string // websocket endpoint the client dials
	Size         int    // maze side, 0 lets the first snapshot decide
	EnforceTurns bool
	Optimistic   bool

	Bind     string
	Port     int
	MazeFile string // text maze served instead of a generated one
	Seed     int64

	Verbose bool
}

func (c *Config) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("invalid size (must be 0 or more): %d", c.Size)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	return nil
}

func (c *Config) ValidateClient() error {
	if c.Size < 0 {
		return fmt.Errorf("invalid size (must be 0 or more): %d", c.Size)
	}
	if !strings.HasPrefix(c.URL, "ws://") && !strings.HasPrefix(c.URL, "wss://") {
		return errors.New("url must start with ws:// or wss://")
	}
	return nil
}

func (c *Config) ConfigureLogging() {
	if c.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// LoadDotEnv reads a .env file from the working directory when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debugf(".env file not loaded: %v", err)
	}
}

func AddGameFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Size, "size", "n", 0, "maze side length, 0 to take it from the server (env: MAZERACE_SIZE)")
	fs.BoolVar(&cfg.EnforceTurns, "enforce-turns", true, "only the color to move may move (env: MAZERACE_ENFORCE_TURNS)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: MAZERACE_VERBOSE)")
}

func AddClientFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.URL, "url", "u", "ws://localhost:8080/play", "game server websocket (env: MAZERACE_URL)")
	fs.BoolVar(&cfg.Optimistic, "optimistic", false, "show own moves before the server confirms them (env: MAZERACE_OPTIMISTIC)")
}

func AddServerFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: MAZERACE_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: MAZERACE_PORT or PORT)")
	fs.StringVar(&cfg.MazeFile, "maze-file", "", "serve this maze instead of generating one (env: MAZERACE_MAZE_FILE)")
	fs.Int64Var(&cfg.Seed, "seed", 0, "maze generator seed, 0 for random (env: MAZERACE_SEED)")
}

// BindEnv lets environment variables fill every flag not given on the
// command line.
func BindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Name == "port" {
			_ = v.BindEnv(f.Name, EnvPrefix+"_PORT", "PORT")
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
