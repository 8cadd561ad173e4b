package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/joinsql/dialect"
)

const envPrefix = "JOINSQL_"

// config holds the settings shared by all commands.
type config struct {
	Dialect       string
	Driver        string
	DSN           string
	Workers       int
	CacheTTL      time.Duration
	SlowThreshold time.Duration
	LogLevel      string
	Dev           bool
}

func defaultConfig() *config {
	return &config{
		Workers:       runtime.NumCPU(),
		CacheTTL:      10 * time.Minute,
		SlowThreshold: 100 * time.Millisecond,
		LogLevel:      "info",
	}
}

// loadConfig reads the env file, then JOINSQL_* variables, then the flags
// set on the command line. A missing env file is not an error unless it was
// named explicitly.
func loadConfig(cmd *cobra.Command) (*config, error) {
	flags := cmd.Flags()
	envFile, err := flags.GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	cfg := defaultConfig()
	if err := cfg.fromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.fromFlags(cmd); err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}

func (c *config) fromEnv() error {
	if v, ok := lookupEnv("DIALECT"); ok {
		c.Dialect = v
	}
	if v, ok := lookupEnv("DRIVER"); ok {
		c.Driver = v
	}
	if v, ok := lookupEnv("DSN"); ok {
		c.DSN = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookupEnv("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
		c.Workers = n
	}
	if v, ok := lookupEnv("DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDEV: %w", envPrefix, err)
		}
		c.Dev = b
	}
	for name, dst := range map[string]*time.Duration{
		"CACHE_TTL":      &c.CacheTTL,
		"SLOW_THRESHOLD": &c.SlowThreshold,
	} {
		if v, ok := lookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	return v, ok && v != ""
}

func (c *config) fromFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("dialect") {
		c.Dialect, err = flags.GetString("dialect")
	}
	if err == nil && flags.Changed("driver") {
		c.Driver, err = flags.GetString("driver")
	}
	if err == nil && flags.Changed("dsn") {
		c.DSN, err = flags.GetString("dsn")
	}
	if err == nil && flags.Changed("log-level") {
		c.LogLevel, err = flags.GetString("log-level")
	}
	if err == nil && flags.Changed("workers") {
		c.Workers, err = flags.GetInt("workers")
	}
	if err == nil && flags.Changed("dev") {
		c.Dev, err = flags.GetBool("dev")
	}
	return err
}

func (c *config) validate() error {
	if c.Dialect != "" && !slices.Contains(dialect.Dialects, c.Dialect) {
		return fmt.Errorf("unsupported dialect %q", c.Dialect)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// driverName returns the database/sql driver registered for the dialect.
func (c *config) driverName() string {
	if c.Driver != "" {
		return c.Driver
	}
	return c.Dialect
}

// newLogger returns a JSON production logger, or a console logger in
// development mode.
func newLogger(cfg *config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Dev {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg.Level = level
	return zcfg.Build()
}
