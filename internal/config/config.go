// Package config loads runtime settings from defaults, an optional .env file,
// the process environment and command-line flags, each overriding the
// previous one.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	DBPath  string
	Addr    string
	LogPath string

	// RedisAddr enables the response cache when non-empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// AMQPURL enables event publishing when non-empty.
	AMQPURL        string
	EventsExchange string
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Config {
	return Config{
		DBPath:         "izposoja.sqlite3",
		Addr:           ":8080",
		CacheTTL:       30 * time.Second,
		EventsExchange: "izposoja.events",
	}
}

// Usage is printed for -h.
const Usage = `Usage: izposoja [flags]

Flags:
  -d, -db <path>          SQLite database path (default: izposoja.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -e, -env <path>         environment file (default: .env, optional)
  -h, -help               show this help and exit

Environment:
  IZPOSOJA_DB, IZPOSOJA_ADDR (or PORT), IZPOSOJA_LOG
  REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, CACHE_TTL
  AMQP_URL, EVENTS_EXCHANGE
`

// Load parses args (without the program name) and returns the merged
// configuration. flag.ErrHelp is returned as is.
func Load(args []string, output io.Writer) (Config, error) {
	fset := flag.NewFlagSet("izposoja", flag.ContinueOnError)
	fset.SetOutput(output)
	fset.Usage = func() { fmt.Fprint(output, Usage) }

	var dbPath, addr, logPath, envPath string
	fset.StringVar(&dbPath, "db", "", "")
	fset.StringVar(&dbPath, "d", "", "")
	fset.StringVar(&addr, "addr", "", "")
	fset.StringVar(&addr, "a", "", "")
	fset.StringVar(&logPath, "log", "", "")
	fset.StringVar(&logPath, "l", "", "")
	fset.StringVar(&envPath, "env", "", "")
	fset.StringVar(&envPath, "e", "", "")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}
	if fset.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	if err := loadEnvFile(envPath); err != nil {
		return Config{}, err
	}

	cfg := Defaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db", "d":
			cfg.DBPath = dbPath
		case "addr", "a":
			cfg.Addr = addr
		case "log", "l":
			cfg.LogPath = logPath
		}
	})

	return cfg, nil
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. An empty path means an optional ./.env.
func loadEnvFile(path string) error {
	optional := path == ""
	if optional {
		path = ".env"
	}

	err := godotenv.Load(path)
	if optional && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get("IZPOSOJA_DB"); ok {
		c.DBPath = v
	}
	if v, ok := get("PORT"); ok {
		c.Addr = ":" + v
	}
	if v, ok := get("IZPOSOJA_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := get("IZPOSOJA_LOG"); ok {
		c.LogPath = v
	}

	if v, ok := get("REDIS_ADDR"); ok {
		c.RedisAddr = v
	}
	if v, ok := get("REDIS_PASSWORD"); ok {
		c.RedisPassword = v
	}
	if v, ok := get("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.RedisDB = n
	}
	if v, ok := get("CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		c.CacheTTL = d
	}

	if v, ok := get("AMQP_URL"); ok {
		c.AMQPURL = v
	}
	if v, ok := get("EVENTS_EXCHANGE"); ok {
		c.EventsExchange = v
	}
	return nil
}
