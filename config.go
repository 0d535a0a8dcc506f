package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrValidation = errors.New("validation failed")

const (
	ConfigFileName     = "ringlist.toml"
	DefaultHost        = "127.0.0.1"
	DefaultPort        = "1225"
	DefaultHistorySize = 64
	DefaultLogLevel    = "info"
)

// Flags are the command line options that feed into the config
type Flags struct {
	ConfigPath string
	Host       string
	Port       string
	Version    bool
}

func ParseFlags(args []string) (Flags, error) {
	var flags Flags

	set := flag.NewFlagSet("ringlist", flag.ContinueOnError)
	set.StringVar(&flags.ConfigPath, "config", "", "Path to the TOML config file")
	set.StringVar(&flags.Host, "host", "", "Host to listen on (overrides config and $HOST)")
	set.StringVar(&flags.Port, "port", "", "Port to listen on (overrides config and $PORT)")
	set.BoolVar(&flags.Version, "version", false, "Print version")

	if err := set.Parse(args); err != nil {
		return Flags{}, err
	}
	return flags, nil
}

type tomlConfig struct {
	Host        string   `toml:"host"`
	Port        string   `toml:"port"`
	Seed        []string `toml:"seed"`
	HistorySize int      `toml:"history_size"`
	LogLevel    string   `toml:"log_level"`
}

type Config struct {
	path     string
	toml     tomlConfig
	host     string
	port     string
	logLevel zerolog.Level
}

// NewConfig layers, from lowest to highest priority: defaults, the TOML
// file, environment variables, then flags.
func NewConfig(fsys RingFS, flags Flags, getenv func(string) string) (*Config, error) {
	c := &Config{}

	path, err := findConfigFile(fsys, flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := toml.Unmarshal(data, &c.toml); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
		c.path = path
	}

	c.host = firstNonEmpty(flags.Host, getenv("HOST"), c.toml.Host, DefaultHost)
	c.port = firstNonEmpty(flags.Port, getenv("PORT"), c.toml.Port, DefaultPort)

	if c.toml.HistorySize == 0 {
		c.toml.HistorySize = DefaultHistorySize
	}

	levelName := firstNonEmpty(getenv("LOG_LEVEL"), c.toml.LogLevel, DefaultLogLevel)
	c.logLevel, err = zerolog.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("%w: log level %q: %s", ErrValidation, levelName, err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", c.path).
		Str("host", c.host).
		Str("port", c.port).
		Int("seed_count", len(c.toml.Seed)).
		Msg("Config loaded")

	return c, nil
}

// findConfigFile returns the explicit path if one was given (it must
// exist), otherwise the first of ./ringlist.toml and
// ~/.config/ringlist/ringlist.toml that exists, otherwise "".
func findConfigFile(fsys RingFS, explicit string) (string, error) {
	if explicit != "" {
		path, err := fsys.Abs(explicit)
		if err != nil {
			return "", err
		}
		if _, err := fsys.Stat(path); err != nil {
			return "", fmt.Errorf("config file %q: %w", path, err)
		}
		return path, nil
	}

	var candidates []string
	if local, err := fsys.Abs(ConfigFileName); err == nil {
		candidates = append(candidates, local)
	}
	if home, err := fsys.HomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "ringlist", ConfigFileName))
	}

	for _, candidate := range candidates {
		_, err := fsys.Stat(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config file %q: %w", candidate, err)
		}
	}

	return "", nil
}

func (c *Config) validate() error {
	port, err := strconv.Atoi(c.port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: port %q is not a valid TCP port", ErrValidation, c.port)
	}
	if c.toml.HistorySize < 0 {
		return fmt.Errorf("%w: history_size must be positive, got %d", ErrValidation, c.toml.HistorySize)
	}
	return nil
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) Host() string {
	return c.host
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.host, c.port)
}

// Seed is the initial ring contents in iteration order
func (c *Config) Seed() []string {
	seed := make([]string, len(c.toml.Seed))
	copy(seed, c.toml.Seed)
	return seed
}

func (c *Config) HistorySize() int {
	return c.toml.HistorySize
}

func (c *Config) LogLevel() zerolog.Level {
	return c.logLevel
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
