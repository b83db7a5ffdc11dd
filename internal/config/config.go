package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/aigc-client/internal/constants"
	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// Backend selects the transport backend: pooled, session or framework.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// BaseURL is prepended to relative paths given on the command line.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Timeout bounds a whole call on the session and framework backends (e.g. "300s").
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// StreamTimeout bounds a whole call on the pooled backend (e.g. "10m").
	StreamTimeout string `mapstructure:"stream_timeout" yaml:"stream_timeout"`
	// MaxConnsPerHost is the soft limit of connections per host.
	MaxConnsPerHost int `mapstructure:"max_conns_per_host" yaml:"max_conns_per_host"`
	// UserAgent is sent when a request has none. Empty selects the built-in value.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// Headers are added to every request that does not set them.
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// LogPayloads enables the one-line call record of every request.
	LogPayloads bool `mapstructure:"log_payloads" yaml:"log_payloads"`
	// MaxLogLength is the maximum number of characters of each logged payload.
	MaxLogLength int `mapstructure:"max_log_length" yaml:"max_log_length"`
	// RateLimit is the number of requests per second allowed per host. Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	// RateBurst is the number of requests allowed at once per host.
	RateBurst int `mapstructure:"rate_burst" yaml:"rate_burst"`
	// RateLimitHosts is how many per-host limiters are remembered.
	RateLimitHosts int `mapstructure:"rate_limit_hosts" yaml:"rate_limit_hosts"`
	// MaxUploadSize caps files sent by the upload commands (e.g. "512MB"). Empty or "0" disables it.
	MaxUploadSize string `mapstructure:"max_upload_size" yaml:"max_upload_size"`
	// RelayListen is the address of the relay server.
	RelayListen string `mapstructure:"relay_listen" yaml:"relay_listen"`
	// RelayUpstream is the event-stream endpoint the relay forwards to.
	RelayUpstream string `mapstructure:"relay_upstream" yaml:"relay_upstream"`
	// RelayAllowedOrigins lists the CORS origins accepted by the relay.
	RelayAllowedOrigins []string `mapstructure:"relay_allowed_origins" yaml:"relay_allowed_origins"`
	// MetricsListen is the address of the standalone Prometheus endpoint. Empty disables it.
	MetricsListen string `mapstructure:"metrics_listen" yaml:"metrics_listen"`
	// ParsedTimeout is the parsed Timeout.
	ParsedTimeout time.Duration `yaml:"-"`
	// ParsedStreamTimeout is the parsed StreamTimeout.
	ParsedStreamTimeout time.Duration `yaml:"-"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `yaml:"-"`
	// ParsedMaxUploadSize is the parsed upload size limit in bytes. Zero means unlimited.
	ParsedMaxUploadSize int64 `yaml:"-"`
}

// Backend names.
const (
	BackendPooled    = "pooled"
	BackendSession   = "session"
	BackendFramework = "framework"
)

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".aigc-client.yaml"

	// DefaultBackend is the backend used when none is configured.
	DefaultBackend = BackendPooled

	// DefaultTimeout is the default call timeout of the session and framework backends.
	DefaultTimeout = "300s"

	// DefaultStreamTimeout is the default call timeout of the pooled backend.
	DefaultStreamTimeout = "600s"

	// DefaultMaxConnsPerHost is the default soft limit of connections per host.
	DefaultMaxConnsPerHost = 1024

	// DefaultMaxLogLength is the default maximum number of characters of a logged payload.
	DefaultMaxLogLength = 200

	// DefaultRateLimitHosts is the default number of remembered per-host limiters.
	DefaultRateLimitHosts = 256

	// DefaultMaxUploadSize is the default upload size limit.
	DefaultMaxUploadSize = "512MB"

	// DefaultRelayListen is the default address of the relay server.
	DefaultRelayListen = "127.0.0.1:8080"
)

// Static error definitions for better error handling.
var (
	// ErrUnknownBackend indicates that the backend name is not recognized.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrInvalidBaseURL indicates that the base URL is not absolute.
	ErrInvalidBaseURL = errors.New("base_url must be an absolute URL")
	// ErrInvalidTimeout indicates that the timeout setting is invalid.
	ErrInvalidTimeout = errors.New("timeout must be positive")
	// ErrInvalidStreamTimeout indicates that the stream timeout setting is invalid.
	ErrInvalidStreamTimeout = errors.New("stream_timeout must be positive")
	// ErrInvalidMaxConnsPerHost indicates that the connection limit is invalid.
	ErrInvalidMaxConnsPerHost = errors.New("max_conns_per_host must be a positive integer")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidMaxLogLength indicates that the log length limit is invalid.
	ErrInvalidMaxLogLength = errors.New("max_log_length must be a positive integer")
	// ErrInvalidRateLimit indicates that the rate limit is negative.
	ErrInvalidRateLimit = errors.New("rate_limit cannot be negative")
	// ErrInvalidRateBurst indicates that the burst is not positive while limiting is enabled.
	ErrInvalidRateBurst = errors.New("rate_burst must be a positive integer")
	// ErrInvalidRateLimitHosts indicates that the limiter cache size is invalid.
	ErrInvalidRateLimitHosts = errors.New("rate_limit_hosts must be a positive integer")
	// ErrUnknownKey indicates a configuration key that does not exist.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrConfigExists indicates that a configuration file would be overwritten.
	ErrConfigExists = errors.New("configuration file already exists")
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendPooled, BackendSession, BackendFramework}
}

// LoadConfig loads configuration settings from a YAML file.
// A missing file is an error only when it was named explicitly; otherwise defaults apply.
func LoadConfig(configFilename string) (*Config, error) {
	explicit := configFilename != ""
	if !explicit {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		isMissing := errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
		if explicit || !isMissing {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present. It is not validated.
func Default() *Config {
	return &Config{
		Backend:             DefaultBackend,
		Timeout:             DefaultTimeout,
		StreamTimeout:       DefaultStreamTimeout,
		MaxConnsPerHost:     DefaultMaxConnsPerHost,
		LogLevel:            "info",
		LogPayloads:         true,
		MaxLogLength:        DefaultMaxLogLength,
		RateBurst:           1,
		RateLimitHosts:      DefaultRateLimitHosts,
		MaxUploadSize:       DefaultMaxUploadSize,
		RelayListen:         DefaultRelayListen,
		RelayAllowedOrigins: []string{"*"},
	}
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}

	if !slices.Contains(Backends(), cfg.Backend) {
		return fmt.Errorf("%w: '%s', expected one of %s",
			ErrUnknownBackend, cfg.Backend, strings.Join(Backends(), ", "))
	}

	if cfg.BaseURL != "" {
		parsed, parseErr := url.Parse(cfg.BaseURL)
		if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: '%s'", ErrInvalidBaseURL, cfg.BaseURL)
		}
	}

	cfg.ParsedTimeout, err = parsePositiveDuration(cfg.Timeout, DefaultTimeout, ErrInvalidTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse timeout: %w", err)
	}

	cfg.ParsedStreamTimeout, err = parsePositiveDuration(cfg.StreamTimeout, DefaultStreamTimeout, ErrInvalidStreamTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse stream timeout: %w", err)
	}

	if cfg.MaxConnsPerHost <= 0 {
		return ErrInvalidMaxConnsPerHost
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if cfg.MaxLogLength <= 0 {
		return ErrInvalidMaxLogLength
	}

	if cfg.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if cfg.RateLimit > 0 {
		if cfg.RateBurst <= 0 {
			return ErrInvalidRateBurst
		}

		if cfg.RateLimitHosts <= 0 {
			return ErrInvalidRateLimitHosts
		}
	}

	maxUploadSize := strings.TrimSpace(cfg.MaxUploadSize)
	cfg.ParsedMaxUploadSize = 0

	if maxUploadSize != "" && maxUploadSize != "0" {
		parsedMaxUploadSize, parseErr := humanize.ParseBytes(maxUploadSize)
		if parseErr != nil {
			return fmt.Errorf("failed to parse max upload size: %w", parseErr)
		}

		cfg.ParsedMaxUploadSize = utils.SafeUint64ToInt64(parsedMaxUploadSize)
	}

	return nil
}

// BackendTimeout returns the call timeout of the configured backend.
// The pooled backend serves streaming calls and gets the longer ceiling.
func (c *Config) BackendTimeout() time.Duration {
	if c.Backend == BackendPooled {
		return c.ParsedStreamTimeout
	}

	return c.ParsedTimeout
}

// ResolveURL joins a relative target onto BaseURL. Absolute targets are returned unchanged.
func (c *Config) ResolveURL(target string) string {
	parsed, err := url.Parse(target)
	if err != nil || parsed.IsAbs() || c.BaseURL == "" {
		return target
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return target
	}

	return base.JoinPath(parsed.Path).String() + querySuffix(parsed)
}

// Dump renders the effective configuration as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}

	return data, nil
}

// WriteDefaultConfig writes a commented starter configuration to path.
// An existing file is only replaced when overwrite is set.
func WriteDefaultConfig(path string, overwrite bool) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	exists, err := utils.IsFileExist(path)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if err = ensureConfigDir(path); err != nil {
		return err
	}

	if err = os.WriteFile(path, []byte(defaultConfigTemplate), constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveValue stores a single key in the configuration file while preserving the original format and order.
// An empty path selects the file loaded last, or the default file.
func SaveValue(path, key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w: '%s'", ErrUnknownKey, key)
	}

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, key, value, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Update the value in the node tree.
	updateValueInNode(&node, key, value)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write the file back with preserved order.
	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Keys lists the scalar configuration keys that SaveValue accepts.
func Keys() []string {
	return []string{
		"backend", "base_url", "timeout", "stream_timeout", "max_conns_per_host", "user_agent",
		"log_level", "log_payloads", "max_log_length", "rate_limit", "rate_burst", "rate_limit_hosts",
		"max_upload_size", "relay_listen", "relay_upstream", "metrics_listen",
	}
}

func setDefaults() {
	defaults := Default()

	viper.SetDefault("backend", defaults.Backend)
	viper.SetDefault("timeout", defaults.Timeout)
	viper.SetDefault("stream_timeout", defaults.StreamTimeout)
	viper.SetDefault("max_conns_per_host", defaults.MaxConnsPerHost)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("log_payloads", defaults.LogPayloads)
	viper.SetDefault("max_log_length", defaults.MaxLogLength)
	viper.SetDefault("rate_burst", defaults.RateBurst)
	viper.SetDefault("rate_limit_hosts", defaults.RateLimitHosts)
	viper.SetDefault("max_upload_size", defaults.MaxUploadSize)
	viper.SetDefault("relay_listen", defaults.RelayListen)
	viper.SetDefault("relay_allowed_origins", defaults.RelayAllowedOrigins)
}

func parsePositiveDuration(value, fallback string, invalid error) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", invalid, err)
	}

	if parsed <= 0 {
		return 0, invalid
	}

	return parsed, nil
}

func querySuffix(parsed *url.URL) string {
	if parsed.RawQuery == "" {
		return ""
	}

	return "?" + parsed.RawQuery
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, key, value string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// File doesn't exist, create it with viper.
	if err = ensureConfigDir(configFile); err != nil {
		return err
	}

	viper.Set(key, value)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// ensureConfigDir creates the directories leading to a configuration file.
func ensureConfigDir(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// updateValueInNode sets key in the YAML node tree, appending it when missing.
func updateValueInNode(node *yaml.Node, key, value string) {
	// An empty file parses into an empty document.
	if node.Kind == 0 {
		node.Kind = yaml.DocumentNode
	}

	if len(node.Content) == 0 {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}

	// The root node is a document node, content[0] is the actual map.
	if node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value == key {
			// Update the value while preserving style.
			valueNode.Kind = yaml.ScalarNode
			valueNode.Tag = ""
			valueNode.Value = value

			return
		}
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value},
	)
}
