package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	APIURL         string
	Addr           string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	DBPath         string
	HistoryKeep    int
	GRPCPort       int

	FeedPath     string
	Reconnect    bool
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	Dedupe       bool

	TimeZone     string
	IconBase     string
	PasswordHash string

	MockMode bool
	MockAddr string
	Debug    bool

	ConfigFile string
}

// fileConfig is the YAML layout. Pointers tell absent keys apart.
type fileConfig struct {
	APIURL         *string `yaml:"api_url"`
	Addr           *string `yaml:"addr"`
	PollInterval   *string `yaml:"poll_interval"`
	RequestTimeout *string `yaml:"request_timeout"`
	DBPath         *string `yaml:"db"`
	HistoryKeep    *int    `yaml:"history_keep"`
	GRPCPort       *int    `yaml:"grpc_port"`
	FeedPath       *string `yaml:"feed_path"`
	Reconnect      *bool   `yaml:"reconnect"`
	ReconnectMin   *string `yaml:"reconnect_min"`
	ReconnectMax   *string `yaml:"reconnect_max"`
	Dedupe         *bool   `yaml:"dedupe"`
	TimeZone       *string `yaml:"timezone"`
	IconBase       *string `yaml:"icon_base"`
	PasswordHash   *string `yaml:"password_hash"`
	MockMode       *bool   `yaml:"mock"`
	MockAddr       *string `yaml:"mock_addr"`
	Debug          *bool   `yaml:"debug"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		APIURL:         "http://localhost:8000",
		Addr:           ":8080",
		PollInterval:   30 * time.Second,
		RequestTimeout: 10 * time.Second,
		DBPath:         getDefaultDBPath(),
		HistoryKeep:    2880,
		GRPCPort:       9000,
		FeedPath:       "/ws",
		Reconnect:      true,
		ReconnectMin:   1 * time.Second,
		ReconnectMax:   30 * time.Second,
		TimeZone:       "Asia/Kolkata",
		MockAddr:       ":8000",
	}
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables, which take precedence
// over the optional YAML file.
func Load() *Config {
	cfg, err := LoadArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// LoadArgs is Load over an explicit argument list.
func LoadArgs(args []string) (*Config, error) {
	// A missing .env is fine; existing variables win over it.
	_ = godotenv.Load()

	cfg := Defaults()

	cfg.ConfigFile = findFlag(args, "config")
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = getEnv("HEATMAP_CONFIG", "")
	}
	if cfg.ConfigFile != "" {
		if err := cfg.loadFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	// Environment Variables
	cfg.APIURL = getEnv("HEATMAP_API_URL", cfg.APIURL)
	cfg.Addr = getEnv("HEATMAP_ADDR", cfg.Addr)
	cfg.PollInterval = getEnvDuration("HEATMAP_POLL_INTERVAL", cfg.PollInterval)
	cfg.RequestTimeout = getEnvDuration("HEATMAP_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.DBPath = getEnv("HEATMAP_DB", cfg.DBPath)
	cfg.HistoryKeep = getEnvInt("HEATMAP_HISTORY_KEEP", cfg.HistoryKeep)
	cfg.GRPCPort = getEnvInt("HEATMAP_GRPC", cfg.GRPCPort)
	cfg.FeedPath = getEnv("HEATMAP_FEED_PATH", cfg.FeedPath)
	cfg.Reconnect = getEnvBool("HEATMAP_RECONNECT", cfg.Reconnect)
	cfg.ReconnectMin = getEnvDuration("HEATMAP_RECONNECT_MIN", cfg.ReconnectMin)
	cfg.ReconnectMax = getEnvDuration("HEATMAP_RECONNECT_MAX", cfg.ReconnectMax)
	cfg.Dedupe = getEnvBool("HEATMAP_DEDUPE", cfg.Dedupe)
	cfg.TimeZone = getEnv("HEATMAP_TZ", cfg.TimeZone)
	cfg.IconBase = getEnv("HEATMAP_ICON_BASE", cfg.IconBase)
	cfg.PasswordHash = getEnv("HEATMAP_PASSWORD_HASH", cfg.PasswordHash)
	cfg.MockMode = getEnvBool("HEATMAP_MOCK", cfg.MockMode)
	cfg.MockAddr = getEnv("HEATMAP_MOCK_ADDR", cfg.MockAddr)
	cfg.Debug = getEnvBool("HEATMAP_DEBUG", cfg.Debug)

	// Command Line Flags (Override Env)
	fs := flag.NewFlagSet("heatmap", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Path to YAML config file")
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "Campaign API base URL")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.DurationVar(&cfg.PollInterval, "interval", cfg.PollInterval, "Snapshot poll interval")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Upstream request timeout")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database (empty to disable history)")
	fs.IntVar(&cfg.HistoryKeep, "history", cfg.HistoryKeep, "Snapshots kept in history (0 keeps all)")
	fs.IntVar(&cfg.GRPCPort, "grpc", cfg.GRPCPort, "gRPC health server port (0 to disable)")
	fs.StringVar(&cfg.FeedPath, "feed-path", cfg.FeedPath, "Push channel path on the API, e.g. /socket.io/?EIO=4&transport=websocket")
	fs.BoolVar(&cfg.Reconnect, "reconnect", cfg.Reconnect, "Reconnect the live feed when it drops")
	fs.DurationVar(&cfg.ReconnectMin, "reconnect-min", cfg.ReconnectMin, "Initial live feed reconnect delay")
	fs.DurationVar(&cfg.ReconnectMax, "reconnect-max", cfg.ReconnectMax, "Maximum live feed reconnect delay")
	fs.BoolVar(&cfg.Dedupe, "dedupe", cfg.Dedupe, "Skip live points already on the map")
	fs.StringVar(&cfg.TimeZone, "tz", cfg.TimeZone, "Time zone for displayed times")
	fs.StringVar(&cfg.IconBase, "icon-base", cfg.IconBase, "Base URL of the map marker images")
	fs.StringVar(&cfg.PasswordHash, "password-hash", cfg.PasswordHash, "bcrypt hash of the dashboard password (empty disables auth)")
	fs.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run an in-process mock campaign API")
	fs.StringVar(&cfg.MockAddr, "mock-addr", cfg.MockAddr, "Mock campaign API address")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api url %q must be http or https", c.APIURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ReconnectMin <= 0 || c.ReconnectMax < c.ReconnectMin {
		return fmt.Errorf("reconnect delays must satisfy 0 < min <= max, got %s..%s", c.ReconnectMin, c.ReconnectMax)
	}
	if c.HistoryKeep < 0 {
		return fmt.Errorf("history must not be negative, got %d", c.HistoryKeep)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.APIURL, fc.APIURL)
	setString(&c.Addr, fc.Addr)
	setString(&c.DBPath, fc.DBPath)
	setString(&c.TimeZone, fc.TimeZone)
	setString(&c.IconBase, fc.IconBase)
	setString(&c.FeedPath, fc.FeedPath)
	setString(&c.PasswordHash, fc.PasswordHash)
	setString(&c.MockAddr, fc.MockAddr)
	setInt(&c.HistoryKeep, fc.HistoryKeep)
	setInt(&c.GRPCPort, fc.GRPCPort)
	setBool(&c.Reconnect, fc.Reconnect)
	setBool(&c.Dedupe, fc.Dedupe)
	setBool(&c.MockMode, fc.MockMode)
	setBool(&c.Debug, fc.Debug)

	for _, d := range []struct {
		dst *time.Duration
		src *string
		key string
	}{
		{&c.PollInterval, fc.PollInterval, "poll_interval"},
		{&c.RequestTimeout, fc.RequestTimeout, "request_timeout"},
		{&c.ReconnectMin, fc.ReconnectMin, "reconnect_min"},
		{&c.ReconnectMax, fc.ReconnectMax, "reconnect_max"},
	} {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}
	return nil
}

// findFlag returns the value of -name or --name in args without parsing the rest.
func findFlag(args []string, name string) string {
	for i, a := range args {
		a = strings.TrimLeft(a, "-")
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, name+"="); ok {
			return v
		}
	}
	return ""
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "heatmap.db"
	}

	dir := filepath.Join(home, ".heatmap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .heatmap directory, using current dir: %v", err)
		return "heatmap.db"
	}

	return filepath.Join(dir, "heatmap.db")
}
