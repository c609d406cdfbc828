// Package config provides application configuration loaded from environment
// variables, optionally seeded from a .env file.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        // e.g. "5000"
	Env             string        // "development" | "production"
	ReadTimeout     time.Duration // default 10s
	WriteTimeout    time.Duration // default 10s
	ShutdownTimeout time.Duration // default 30s
	AllowedOrigins  []string      // WS/CORS origins; empty = allow all
}

// GameConfig holds stake limits, wallet defaults and feed sizes.
type GameConfig struct {
	MinBet          decimal.Decimal // inclusive, default 0.01
	MaxBet          decimal.Decimal // inclusive, default 1.0
	RequestMinBet   decimal.Decimal // outer request limit, default 0.001
	RequestMaxBet   decimal.Decimal // outer request limit, default 10
	StartingBalance decimal.Decimal // default 1.5
	DefaultWallet   string          // used when a request names no wallet
	WinRetention    int             // recent wins kept, default 20
	WinPageSize     int             // recent wins returned, default 10
	CatalogFile     string          // optional YAML symbol table
}

// PoolConfig seeds the pool statistics.
type PoolConfig struct {
	TotalLiquidity decimal.Decimal // default 1250.45
	UserShare      decimal.Decimal // default 0.05
	Volume24h      decimal.Decimal // default 342.18
	APY            decimal.Decimal // default 12.5
}

// JournalConfig holds the optional PostgreSQL spin journal settings.
type JournalConfig struct {
	DSN             string        // empty = journal disabled
	MaxOpenConns    int           // default 10
	MaxIdleConns    int           // default 5
	ConnMaxLifetime time.Duration // default 5m
	MigrationsDir   string        // default "migrations"
	QueueSize       int           // pending records before drops, default 256
	WriteTimeout    time.Duration // per-record insert bound, default 5s
}

// Enabled returns true when a database DSN is configured.
func (j JournalConfig) Enabled() bool {
	return j.DSN != ""
}

// ScheduleConfig holds cron specs for periodic jobs.
type ScheduleConfig struct {
	PoolStatsSpec string // default "@every 30s"
	HeartbeatSpec string // default "@every 5m"
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server   ServerConfig
	Game     GameConfig
	Pool     PoolConfig
	Journal  JournalConfig
	Schedule ScheduleConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all configuration values are consistent.
// Every problem found is reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	g := c.Game

	// Stake bounds
	if !g.MinBet.IsPositive() {
		errs = append(errs, fmt.Errorf("GAME_MIN_BET must be > 0, got %s", g.MinBet))
	}
	if g.MaxBet.LessThan(g.MinBet) {
		errs = append(errs, fmt.Errorf("GAME_MAX_BET (%s) must be >= GAME_MIN_BET (%s)", g.MaxBet, g.MinBet))
	}
	if !g.RequestMinBet.IsPositive() || g.RequestMinBet.GreaterThan(g.MinBet) {
		errs = append(errs, fmt.Errorf(
			"GAME_REQUEST_MIN_BET must be in (0, GAME_MIN_BET], got %s", g.RequestMinBet))
	}
	if g.RequestMaxBet.LessThan(g.MaxBet) {
		errs = append(errs, fmt.Errorf(
			"GAME_REQUEST_MAX_BET (%s) must be >= GAME_MAX_BET (%s)", g.RequestMaxBet, g.MaxBet))
	}
	if g.StartingBalance.IsNegative() {
		errs = append(errs, fmt.Errorf("GAME_STARTING_BALANCE must be >= 0, got %s", g.StartingBalance))
	}
	if g.DefaultWallet == "" {
		errs = append(errs, errors.New("GAME_DEFAULT_WALLET must be set"))
	}

	// Recent-win feed
	if g.WinPageSize < 1 {
		errs = append(errs, fmt.Errorf("GAME_WIN_PAGE_SIZE must be >= 1, got %d", g.WinPageSize))
	}
	if g.WinRetention < g.WinPageSize {
		errs = append(errs, fmt.Errorf(
			"GAME_WIN_RETENTION (%d) must be >= GAME_WIN_PAGE_SIZE (%d)", g.WinRetention, g.WinPageSize))
	}

	// Pool seeds
	if c.Pool.TotalLiquidity.IsNegative() || c.Pool.Volume24h.IsNegative() {
		errs = append(errs, errors.New("POOL_TOTAL_LIQUIDITY and POOL_VOLUME_24H must be >= 0"))
	}

	// In production, keep an audit trail
	if c.IsProd() && !c.Journal.Enabled() {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}

	if c.Journal.Enabled() && (c.Journal.QueueSize < 1 || c.Journal.WriteTimeout <= 0) {
		errs = append(errs, fmt.Errorf(
			"JOURNAL_QUEUE_SIZE (%d) and JOURNAL_WRITE_TIMEOUT (%s) must be positive",
			c.Journal.QueueSize, c.Journal.WriteTimeout))
	}

	if c.Schedule.PoolStatsSpec == "" {
		errs = append(errs, errors.New("SCHEDULE_POOL_STATS must be set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from ".env" and the
// environment. Panics if loading fails; call this early in main() to catch
// misconfigurations at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = Load(".env")
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Loader
// ──────────────────────────────────────────────────────────────────────────────

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then builds a Config from the
// environment. Pass "" to skip the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	var err error

	// ── Server ────────────────────────────────────────────────────────────────
	srv := ServerConfig{
		Port:           getEnv("SERVER_PORT", "5000"),
		Env:            getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: getList("ALLOWED_ORIGINS"),
	}
	if srv.ReadTimeout, err = getDuration("SERVER_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("SERVER_READ_TIMEOUT: %w", err)
	}
	if srv.WriteTimeout, err = getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("SERVER_WRITE_TIMEOUT: %w", err)
	}
	if srv.ShutdownTimeout, err = getDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.Server = srv

	// ── Game ──────────────────────────────────────────────────────────────────
	g := GameConfig{
		DefaultWallet: getEnv("GAME_DEFAULT_WALLET", "0x1234567890abcdef"),
		CatalogFile:   getEnv("CATALOG_FILE", ""),
	}
	if g.MinBet, err = getDecimal("GAME_MIN_BET", "0.01"); err != nil {
		return nil, fmt.Errorf("GAME_MIN_BET: %w", err)
	}
	if g.MaxBet, err = getDecimal("GAME_MAX_BET", "1.0"); err != nil {
		return nil, fmt.Errorf("GAME_MAX_BET: %w", err)
	}
	if g.RequestMinBet, err = getDecimal("GAME_REQUEST_MIN_BET", "0.001"); err != nil {
		return nil, fmt.Errorf("GAME_REQUEST_MIN_BET: %w", err)
	}
	if g.RequestMaxBet, err = getDecimal("GAME_REQUEST_MAX_BET", "10"); err != nil {
		return nil, fmt.Errorf("GAME_REQUEST_MAX_BET: %w", err)
	}
	if g.StartingBalance, err = getDecimal("GAME_STARTING_BALANCE", "1.5"); err != nil {
		return nil, fmt.Errorf("GAME_STARTING_BALANCE: %w", err)
	}
	if g.WinRetention, err = getInt("GAME_WIN_RETENTION", 20); err != nil {
		return nil, fmt.Errorf("GAME_WIN_RETENTION: %w", err)
	}
	if g.WinPageSize, err = getInt("GAME_WIN_PAGE_SIZE", 10); err != nil {
		return nil, fmt.Errorf("GAME_WIN_PAGE_SIZE: %w", err)
	}
	cfg.Game = g

	// ── Pool ──────────────────────────────────────────────────────────────────
	p := PoolConfig{}
	if p.TotalLiquidity, err = getDecimal("POOL_TOTAL_LIQUIDITY", "1250.45"); err != nil {
		return nil, fmt.Errorf("POOL_TOTAL_LIQUIDITY: %w", err)
	}
	if p.UserShare, err = getDecimal("POOL_USER_SHARE", "0.05"); err != nil {
		return nil, fmt.Errorf("POOL_USER_SHARE: %w", err)
	}
	if p.Volume24h, err = getDecimal("POOL_VOLUME_24H", "342.18"); err != nil {
		return nil, fmt.Errorf("POOL_VOLUME_24H: %w", err)
	}
	if p.APY, err = getDecimal("POOL_APY", "12.5"); err != nil {
		return nil, fmt.Errorf("POOL_APY: %w", err)
	}
	cfg.Pool = p

	// ── Journal ───────────────────────────────────────────────────────────────
	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}
	j := JournalConfig{
		DSN:           getEnv("DATABASE_DSN", ""),
		MaxOpenConns:  maxOpen,
		MaxIdleConns:  maxIdle,
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
	}
	if j.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return nil, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
	}
	if j.QueueSize, err = getInt("JOURNAL_QUEUE_SIZE", 256); err != nil {
		return nil, fmt.Errorf("JOURNAL_QUEUE_SIZE: %w", err)
	}
	if j.WriteTimeout, err = getDuration("JOURNAL_WRITE_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("JOURNAL_WRITE_TIMEOUT: %w", err)
	}
	cfg.Journal = j

	// ── Schedule ──────────────────────────────────────────────────────────────
	cfg.Schedule = ScheduleConfig{
		PoolStatsSpec: getEnv("SCHEDULE_POOL_STATS", "@every 30s"),
		HeartbeatSpec: getEnv("SCHEDULE_HEARTBEAT", "@every 5m"),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

// getDecimal parses an env var as an exact decimal. defaultVal must parse.
func getDecimal(key, defaultVal string) (decimal.Decimal, error) {
	v := getEnv(key, defaultVal)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", v)
	}
	return d, nil
}

// getList splits a comma-separated env var, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Returns defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}
