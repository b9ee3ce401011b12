package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets the variables Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"IZPOSOJA_DB", "IZPOSOJA_ADDR", "PORT", "IZPOSOJA_LOG",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
		"AMQP_URL", "EVENTS_EXCHANGE",
	}
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	envFile := "IZPOSOJA_DB=from-file.sqlite3\nREDIS_ADDR=redis:6379\nCACHE_TTL=1m\nAMQP_URL=amqp://file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(envFile), 0644); err != nil {
		t.Fatal(err)
	}
	os.Setenv("AMQP_URL", "amqp://env")
	os.Setenv("PORT", "9000")

	cfg, err := Load([]string{"-d", "from-flag.sqlite3"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "from-flag.sqlite3" {
		t.Errorf("flag should win over .env, got %q", cfg.DBPath)
	}
	if cfg.AMQPURL != "amqp://env" {
		t.Errorf("environment should win over .env, got %q", cfg.AMQPURL)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("expected REDIS_ADDR from .env, got %q", cfg.RedisAddr)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("expected CACHE_TTL 1m, got %v", cfg.CacheTTL)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("expected addr from PORT, got %q", cfg.Addr)
	}
}

func TestLoadLongFlags(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load([]string{"-addr", "127.0.0.1:1234", "-log", "app.log"}, io.Discard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:1234" || cfg.LogPath != "app.log" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	if _, err := Load([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
	if _, err := Load([]string{"extra"}, io.Discard); err == nil {
		t.Error("expected error for positional argument")
	}
	if _, err := Load([]string{"-e", "missing.env"}, io.Discard); err == nil {
		t.Error("expected error for explicitly named missing env file")
	}

	os.Setenv("CACHE_TTL", "soon")
	if _, err := Load(nil, io.Discard); err == nil {
		t.Error("expected error for invalid CACHE_TTL")
	}
}
