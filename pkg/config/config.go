// Package config loads pipecheck's configuration.
//
// Values are resolved in order, later sources winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (the --config flag, else $XDG_CONFIG_HOME/pipecheck/config.toml when present)
//  3. environment variables ([Config.ApplyEnv])
//  4. command-line flags, applied by the CLI
//
// A complete file looks like:
//
//	[server]
//	addr = ":8000"
//	allowed_origins = ["http://localhost:5173"]
//	frontend_url = "https://editor.example.com"
//	max_body_bytes = 8388608
//	shutdown_timeout = "10s"
//
//	[validation]
//	policy = "drop"
//	max_nodes = 50000
//	max_edges = 200000
//	max_id_length = 256
//
//	[cache]
//	backend = "file"       # none | file | redis
//	ttl = "10m"
//
//	[cache.redis]
//	addr = "localhost:6379"
//	prefix = "pipecheck:"
//
//	[client]
//	api_url = "http://localhost:8000"
//	timeout = "10s"
//	retries = 3
//	retry_delay = "250ms"
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pipecheck/pkg/cache"
	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvAddr        = "PIPECHECK_ADDR"
	EnvAPIURL      = "PIPECHECK_API_URL"
	EnvPolicy      = "PIPECHECK_POLICY"
	EnvRedisAddr   = "PIPECHECK_REDIS_ADDR"
	EnvCache       = "PIPECHECK_CACHE"
	EnvFrontendURL = "FRONTEND_URL"
)

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Validation ValidationConfig `toml:"validation"`
	Cache      CacheConfig      `toml:"cache"`
	Client     ClientConfig     `toml:"client"`
}

// ServerConfig configures `pipecheck serve`.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
	FrontendURL     string        `toml:"frontend_url"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// ValidationConfig selects the edge policy and payload limits.
type ValidationConfig struct {
	Policy      string `toml:"policy"`
	MaxNodes    int    `toml:"max_nodes"`
	MaxEdges    int    `toml:"max_edges"`
	MaxIDLength int    `toml:"max_id_length"`
}

// CacheConfig selects the report cache backend.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
	Redis   RedisConfig   `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ClientConfig configures remote validation.
type ClientConfig struct {
	APIURL     string        `toml:"api_url"`
	Timeout    time.Duration `toml:"timeout"`
	Retries    int           `toml:"retries"`
	RetryDelay time.Duration `toml:"retry_delay"`
}

// DefaultOrigins are the editor origins allowed by default.
var DefaultOrigins = []string{
	"http://localhost",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Default returns the built-in configuration.
func Default() *Config {
	limits := pipeline.DefaultLimits()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			AllowedOrigins:  slices.Clone(DefaultOrigins),
			MaxBodyBytes:    8 << 20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Validation: ValidationConfig{
			Policy:      dag.PolicyDrop.String(),
			MaxNodes:    limits.MaxNodes,
			MaxEdges:    limits.MaxEdges,
			MaxIDLength: limits.MaxIDLength,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     cache.TTLReport,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "pipecheck:",
			},
		},
		Client: ClientConfig{
			APIURL:     "http://localhost:8000",
			Timeout:    10 * time.Second,
			Retries:    3,
			RetryDelay: 250 * time.Millisecond,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pipecheck/config.toml, falling back
// to the OS user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "pipecheck", "config.toml")
}

// Load returns the defaults overlaid with the file at path and then the
// environment. An empty path selects [DefaultPath], which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			if explicit || !stderrors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// LoadFile overlays the TOML file at path onto c. Keys absent from the file
// keep their current values. Unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. getenv is usually
// os.Getenv; empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Addr, EnvAddr)
	set(&c.Server.FrontendURL, EnvFrontendURL)
	set(&c.Client.APIURL, EnvAPIURL)
	set(&c.Validation.Policy, EnvPolicy)
	set(&c.Cache.Backend, EnvCache)
	set(&c.Cache.Redis.Addr, EnvRedisAddr)
}

// Origins returns the CORS allow-list: the configured origins plus the
// frontend URL, with trailing slashes trimmed and without duplicates.
func (c *Config) Origins() []string {
	origins := make([]string, 0, len(c.Server.AllowedOrigins)+1)
	add := func(o string) {
		if o = NormalizeOrigin(o); o != "" && !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}
	for _, o := range c.Server.AllowedOrigins {
		add(o)
	}
	add(c.Server.FrontendURL)
	return origins
}

// NormalizeOrigin trims surrounding space and trailing slashes so o matches
// the Origin header browsers send.
func NormalizeOrigin(o string) string {
	o = strings.TrimSpace(o)
	if o == "*" {
		return o
	}
	return strings.TrimRight(o, "/")
}

// Policy returns the parsed edge policy. Call [Config.Validate] first.
func (c *Config) Policy() dag.EdgePolicy {
	p, _ := dag.ParseEdgePolicy(c.Validation.Policy)
	return p
}

// Limits returns the payload limits.
func (c *Config) Limits() pipeline.Limits {
	return pipeline.Limits{
		MaxNodes:    c.Validation.MaxNodes,
		MaxEdges:    c.Validation.MaxEdges,
		MaxIDLength: c.Validation.MaxIDLength,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := errors.ValidateListenAddr(c.Server.Addr); err != nil {
		return invalid("server.addr", err)
	}
	for _, o := range c.Origins() {
		if err := errors.ValidateOrigin(o); err != nil {
			return invalid("server.allowed_origins", err)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if _, err := dag.ParseEdgePolicy(c.Validation.Policy); err != nil {
		return invalid("validation.policy", err)
	}
	if c.Validation.MaxNodes < 0 || c.Validation.MaxEdges < 0 || c.Validation.MaxIDLength < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "validation limits cannot be negative")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: unknown backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if err := errors.ValidateURL(c.Client.APIURL); err != nil {
		return invalid("client.api_url", err)
	}
	if c.Client.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "client.timeout must be positive")
	}
	if c.Client.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "client.retries must be at least 1")
	}
	return nil
}

func invalid(key string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
}

// String renders c as TOML.
func (c *Config) String() string {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(data)
}
