package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the process-wide configuration. It is built once at startup and
// passed by reference; nothing mutates it after Load returns.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Limits  LimitsConfig  `koanf:"limits"`
	Storage StorageConfig `koanf:"storage"`
	Tools   ToolsConfig   `koanf:"tools"`
	Log     LogConfig     `koanf:"log"`
	Agent   AgentConfig   `koanf:"agent"`
}

// ServerConfig identifies the server during initialize and selects a transport.
type ServerConfig struct {
	Name            string `koanf:"name"`
	Version         string `koanf:"version"`
	ProtocolVersion string `koanf:"protocol_version"`
	Transport       string `koanf:"transport"` // line or mcp
}

// LimitsConfig bounds request concurrency, payload sizes and report shapes.
type LimitsConfig struct {
	MaxConcurrentRequests int           `koanf:"max_concurrent_requests"`
	MaxOpenWorkbooks      int           `koanf:"max_open_workbooks"`
	MaxPayloadBytes       int           `koanf:"max_payload_bytes"`
	MaxLineBytes          int           `koanf:"max_line_bytes"`
	MaxUnzippedBytes      int64         `koanf:"max_unzipped_bytes"`
	MaxListedHidden       int           `koanf:"max_listed_hidden"`
	OperationTimeout      time.Duration `koanf:"operation_timeout"`
	AcquireTimeout        time.Duration `koanf:"acquire_timeout"`
}

// StorageConfig lists directories a bare filename may be resolved against
// when a request carries no inline workbook bytes. Empty disables lookup.
type StorageConfig struct {
	AllowedDirs []string `koanf:"allowed_dirs"`
}

// ToolsConfig toggles optional tools that are hidden from discovery by default.
type ToolsConfig struct {
	EnableFormulas bool `koanf:"enable_formulas"`
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// AgentConfig describes the consuming model; its context window is used to
// flag reports that are unlikely to fit.
type AgentConfig struct {
	Model string `koanf:"model"`
}

// DefaultConfig returns the configuration used when no file or env overrides exist.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:            DefaultServerName,
			ProtocolVersion: DefaultProtocolVersion,
			Transport:       DefaultTransport,
		},
		Limits: LimitsConfig{
			MaxConcurrentRequests: DefaultMaxConcurrentRequests,
			MaxOpenWorkbooks:      DefaultMaxOpenWorkbooks,
			MaxPayloadBytes:       DefaultMaxPayloadBytes,
			MaxLineBytes:          DefaultMaxLineBytes,
			MaxUnzippedBytes:      DefaultMaxUnzippedBytes,
			MaxListedHidden:       DefaultMaxListedHidden,
			OperationTimeout:      DefaultOperationTimeout,
			AcquireTimeout:        DefaultAcquireRequestTimeout,
		},
		Log: LogConfig{
			Level: "info",
		},
		Agent: AgentConfig{
			Model: DefaultAgentModel,
		},
	}
}

// Load builds a Config from defaults, an optional file and SHEETAUDIT_* env vars.
// An empty path skips the file layer; env always applies last.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	// SHEETAUDIT_LIMITS__MAX_LISTED_HIDDEN -> limits.max_listed_hidden
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Storage.AllowedDirs = splitDirs(cfg.Storage.AllowedDirs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault searches the working directory for a config file and loads it,
// falling back to defaults plus env when none is present.
func LoadOrDefault() (*Config, error) {
	names := []string{
		"sheetaudit.yaml",
		"sheetaudit.yml",
		"sheetaudit.json",
		"sheetaudit.toml",
		".sheetaudit.yaml",
		".sheetaudit.yml",
		".sheetaudit.json",
		".sheetaudit.toml",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return Load(name)
		}
	}
	return Load("")
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "line", "mcp":
	default:
		return fmt.Errorf("config: server.transport must be line or mcp, got %q", c.Server.Transport)
	}
	if c.Limits.MaxListedHidden < 0 {
		return errors.New("config: limits.max_listed_hidden must be >= 0")
	}
	if c.Limits.MaxPayloadBytes < 0 || c.Limits.MaxLineBytes < 0 || c.Limits.MaxUnzippedBytes < 0 {
		return errors.New("config: payload limits must be >= 0")
	}
	return nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// splitDirs expands entries holding an os.PathListSeparator-joined list, which
// is how a single env var carries several directories.
func splitDirs(in []string) []string {
	var out []string
	for _, d := range in {
		for _, part := range filepath.SplitList(d) {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
