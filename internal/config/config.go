package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the customer API of the event platform.
const DefaultBaseURL = "https://api.nyteflow.brynklabs.in/api/customer"

// Config represents the complete events-mcp configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Upstream UpstreamConfig `yaml:"upstream" toml:"upstream"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds the listener and MCP endpoint settings
type ServerConfig struct {
	Host         string `yaml:"host" toml:"host"`
	Port         int    `yaml:"port" toml:"port"`
	Token        string `yaml:"token" toml:"token"`
	ResponseMode string `yaml:"response_mode" toml:"response_mode"` // sse, json, auto
	TLSCertFile  string `yaml:"tls_cert_file" toml:"tls_cert_file"`
	TLSKeyFile   string `yaml:"tls_key_file" toml:"tls_key_file"`
}

// UpstreamConfig holds the event platform endpoint and tenant identity
type UpstreamConfig struct {
	BaseURL      string `yaml:"base_url" toml:"base_url"`
	TenantID     string `yaml:"tenant_id" toml:"tenant_id"`
	TenantSecret string `yaml:"tenant_secret" toml:"tenant_secret"`

	ConnectTimeout time.Duration `yaml:"-" toml:"-"`
	Timeout        time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	ConnectTimeoutRaw string `yaml:"connect_timeout" toml:"connect_timeout"`
	TimeoutRaw        string `yaml:"timeout" toml:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise. Tenant credentials have no default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ResponseMode: "sse",
		},
		Upstream: UpstreamConfig{
			BaseURL:           DefaultBaseURL,
			ConnectTimeoutRaw: "5s",
			TimeoutRaw:        "15s",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load builds the configuration: defaults, then the file at path (if any),
// then environment overrides. Environment variables in the format ${VAR_NAME}
// are expanded inside the file. Files ending in .toml are decoded as TOML,
// anything else as YAML.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data))

		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(expanded, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// ApplyEnv overlays the process environment, read through lookup, on top of
// the current values. Unset variables leave the value alone.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HOST", &c.Server.Host)
	str("MCP_TOKEN", &c.Server.Token)
	str("MCP_RESPONSE_MODE", &c.Server.ResponseMode)
	str("TLS_CERT_FILE", &c.Server.TLSCertFile)
	str("TLS_KEY_FILE", &c.Server.TLSKeyFile)
	str("EVENT_BASE_URL", &c.Upstream.BaseURL)
	str("TENANT_ID", &c.Upstream.TenantID)
	str("TENANT_SECRET", &c.Upstream.TenantSecret)
	str("UPSTREAM_CONNECT_TIMEOUT", &c.Upstream.ConnectTimeoutRaw)
	str("UPSTREAM_TIMEOUT", &c.Upstream.TimeoutRaw)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("METRICS_PATH", &c.Metrics.Path)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("METRICS_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METRICS_ENABLED %q: %w", v, err)
		}
		c.Metrics.Enabled = enabled
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// TLSEnabled reports whether the server should terminate TLS itself.
func (c *Config) TLSEnabled() bool {
	return c.Server.TLSCertFile != "" && c.Server.TLSKeyFile != ""
}

// reservedPaths are routes the metrics endpoint must not shadow.
var reservedPaths = map[string]bool{
	"/":                     true,
	"/health":               true,
	"/mcp":                  true,
	"/mcp/tools":            true,
	"/.well-known/mcp":      true,
	"/.well-known/mcp.json": true,
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Server.ResponseMode {
	case "sse", "json", "auto":
	default:
		return fmt.Errorf("server.response_mode must be sse, json or auto, got %q", c.Server.ResponseMode)
	}

	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		return fmt.Errorf("server.tls_cert_file and server.tls_key_file must be set together")
	}

	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil {
		return fmt.Errorf("upstream.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute http(s) URL, got %q", c.Upstream.BaseURL)
	}

	if c.Upstream.TenantID == "" {
		return fmt.Errorf("upstream.tenant_id is required (TENANT_ID)")
	}
	if c.Upstream.TenantSecret == "" {
		return fmt.Errorf("upstream.tenant_secret is required (TENANT_SECRET)")
	}

	if c.Upstream.ConnectTimeout <= 0 {
		return fmt.Errorf("upstream.connect_timeout must be positive")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
		if reservedPaths[c.Metrics.Path] {
			return fmt.Errorf("metrics.path %q collides with an MCP route", c.Metrics.Path)
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Upstream.ConnectTimeoutRaw != "" {
		cfg.Upstream.ConnectTimeout, err = time.ParseDuration(cfg.Upstream.ConnectTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing connect_timeout %q: %w", cfg.Upstream.ConnectTimeoutRaw, err)
		}
	}

	if cfg.Upstream.TimeoutRaw != "" {
		cfg.Upstream.Timeout, err = time.ParseDuration(cfg.Upstream.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Upstream.TimeoutRaw, err)
		}
	}

	return nil
}
