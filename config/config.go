// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
//
// Database settings follow the pool library naming: nested keys are joined with
// a double underscore, e.g. PG__HOST or PG__POOL__MAX_SIZE.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"net"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// Server
	ServerAddr string
	Debug      bool
	TLSDomains []string

	PG PGConfig
}

// PGConfig holds the PostgreSQL connection and pool settings.
type PGConfig struct {
	// URL, when set, is used verbatim instead of the individual fields.
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// MaxSize caps the number of open connections in the pool.
	MaxSize int
	// WaitTimeout bounds client acquisition. Zero waits indefinitely.
	// A bare number in PG__POOL__TIMEOUTS__WAIT is read as seconds.
	WaitTimeout time.Duration
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("debug", false)
	v.SetDefault("tls_domains", "")
	v.SetDefault("pg.host", "localhost")
	v.SetDefault("pg.port", "5432")
	v.SetDefault("pg.user", "postgres")
	v.SetDefault("pg.dbname", "postgres")
	v.SetDefault("pg.sslmode", "disable")
	v.SetDefault("pg.pool.max_size", runtime.NumCPU()*4)
	v.SetDefault("pg.pool.timeouts.wait", 0)

	wait, err := parseWait(v.GetString("pg.pool.timeouts.wait"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddr: strings.TrimSpace(v.GetString("server_addr")),
		Debug:      v.GetBool("debug"),
		TLSDomains: hostList(v.GetString("tls_domains")),
		PG: PGConfig{
			URL:         v.GetString("pg.url"),
			Host:        v.GetString("pg.host"),
			Port:        v.GetString("pg.port"),
			User:        v.GetString("pg.user"),
			Password:    v.GetString("pg.password"),
			DBName:      v.GetString("pg.dbname"),
			SSLMode:     v.GetString("pg.sslmode"),
			MaxSize:     v.GetInt("pg.pool.max_size"),
			WaitTimeout: wait,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN returns the full PostgreSQL connection string with credentials
// escaped. PG__URL takes precedence over individual fields.
func (c *PGConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c *Config) validate() error {
	if c.ServerAddr == "" {
		return errors.New("config: SERVER_ADDR must be set")
	}
	if c.PG.MaxSize <= 0 {
		return fmt.Errorf("config: PG__POOL__MAX_SIZE must be positive, got %d", c.PG.MaxSize)
	}
	if c.PG.WaitTimeout < 0 {
		return fmt.Errorf("config: PG__POOL__TIMEOUTS__WAIT must not be negative, got %s", c.PG.WaitTimeout)
	}
	return nil
}

// loadDotEnv merges a .env file into the environment without overriding
// variables that are already set. A missing file is normal in production.
func loadDotEnv() {
	err := godotenv.Load()
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		log.Println("config: no .env file found, using environment variables only")
	default:
		log.Printf("config: ignoring unreadable .env file: %v", err)
	}
}

// parseWait accepts a Go duration ("500ms", "2s") or a bare number of seconds.
func parseWait(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("config: PG__POOL__TIMEOUTS__WAIT: invalid value %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: PG__POOL__TIMEOUTS__WAIT: %w", err)
	}
	return d, nil
}

// hostList splits TLS_DOMAINS on commas and whitespace.
func hostList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
