package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/aigc-client/internal/constants"
)

func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

// TestDefault tests the values used without a configuration file.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, BackendPooled, cfg.Backend)
	assert.Equal(t, 300*time.Second, cfg.ParsedTimeout)
	assert.Equal(t, 600*time.Second, cfg.ParsedStreamTimeout)
	assert.Equal(t, 1024, cfg.MaxConnsPerHost)
	assert.Equal(t, 200, cfg.MaxLogLength)
	assert.Equal(t, zapcore.InfoLevel, cfg.ParsedLogLevel)
	assert.Equal(t, int64(512*1000*1000), cfg.ParsedMaxUploadSize)
	assert.True(t, cfg.LogPayloads)
}

// TestLoadConfig tests the LoadConfig function.
//
//nolint:paralleltest // LoadConfig works on the global viper instance.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name           string
		configFilename string
		configContent  string
		expectError    bool
		expectedError  string
	}{
		{
			name:           "valid config file",
			configFilename: "valid_config.yaml",
			configContent: `
backend: session
base_url: "https://api.example.com/v1"
timeout: 30s
max_conns_per_host: 16
headers:
  Authorization: "Bearer token"
rate_limit: 2.5
`,
		},
		{
			name:           "non-existent file",
			configFilename: "non_existent.yaml",
			expectError:    true,
			expectedError:  "failed to read config from file",
		},
		{
			name:           "invalid yaml",
			configFilename: "invalid.yaml",
			configContent: `
invalid: yaml: content: [unclosed
`,
			expectError:   true,
			expectedError: "failed to read config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			configPath := filepath.Join(t.TempDir(), tt.configFilename)

			if tt.configContent != "" {
				err := os.WriteFile(configPath, []byte(tt.configContent), constants.DefaultFilePermissions)
				require.NoError(t, err)
			}

			cfg, err := LoadConfig(configPath)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, BackendSession, cfg.Backend)
			assert.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
			assert.Equal(t, 16, cfg.MaxConnsPerHost)
			assert.InDelta(t, 2.5, cfg.RateLimit, 0)
			// Keys are lowercased by viper.
			assert.Equal(t, "Bearer token", cfg.Headers["authorization"])
			// Unset keys keep their defaults.
			assert.Equal(t, DefaultStreamTimeout, cfg.StreamTimeout)
			assert.Equal(t, DefaultMaxLogLength, cfg.MaxLogLength)
			assert.True(t, cfg.LogPayloads)
		})
	}
}

// TestLoadConfig_MissingDefaultFile tests that an absent default file yields the defaults.
//
//nolint:paralleltest // Changes the working directory.
func TestLoadConfig_MissingDefaultFile(t *testing.T) {
	resetViper(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, Default().Backend, cfg.Backend)
	assert.Equal(t, 600*time.Second, cfg.BackendTimeout())
}

// TestValidateConfig tests the ValidateConfig function.
func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		modify      func(cfg *Config)
		expectedErr error
		errorMsg    string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:        "unknown backend",
			modify:      func(cfg *Config) { cfg.Backend = "curl" },
			expectedErr: ErrUnknownBackend,
		},
		{
			name:        "relative base url",
			modify:      func(cfg *Config) { cfg.BaseURL = "/v1" },
			expectedErr: ErrInvalidBaseURL,
		},
		{
			name:     "malformed timeout",
			modify:   func(cfg *Config) { cfg.Timeout = "soon" },
			errorMsg: "failed to parse timeout",
		},
		{
			name:        "zero timeout",
			modify:      func(cfg *Config) { cfg.Timeout = "0s" },
			expectedErr: ErrInvalidTimeout,
		},
		{
			name:        "negative stream timeout",
			modify:      func(cfg *Config) { cfg.StreamTimeout = "-1s" },
			expectedErr: ErrInvalidStreamTimeout,
		},
		{
			name:        "zero connections per host",
			modify:      func(cfg *Config) { cfg.MaxConnsPerHost = 0 },
			expectedErr: ErrInvalidMaxConnsPerHost,
		},
		{
			name:        "unknown log level",
			modify:      func(cfg *Config) { cfg.LogLevel = "loud" },
			expectedErr: ErrUnknownLogLevel,
		},
		{
			name:        "zero log length",
			modify:      func(cfg *Config) { cfg.MaxLogLength = 0 },
			expectedErr: ErrInvalidMaxLogLength,
		},
		{
			name:        "negative rate limit",
			modify:      func(cfg *Config) { cfg.RateLimit = -1 },
			expectedErr: ErrInvalidRateLimit,
		},
		{
			name: "zero burst with limiting",
			modify: func(cfg *Config) {
				cfg.RateLimit = 1
				cfg.RateBurst = 0
			},
			expectedErr: ErrInvalidRateBurst,
		},
		{
			name:   "zero burst without limiting",
			modify: func(cfg *Config) { cfg.RateBurst = 0 },
		},
		{
			name: "zero limiter cache with limiting",
			modify: func(cfg *Config) {
				cfg.RateLimit = 1
				cfg.RateLimitHosts = 0
			},
			expectedErr: ErrInvalidRateLimitHosts,
		},
		{
			name:     "malformed upload size",
			modify:   func(cfg *Config) { cfg.MaxUploadSize = "lots" },
			errorMsg: "failed to parse max upload size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.modify(cfg)

			err := ValidateConfig(cfg)

			switch {
			case tt.expectedErr != nil:
				require.ErrorIs(t, err, tt.expectedErr)
			case tt.errorMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			default:
				require.NoError(t, err)
			}
		})
	}
}

// TestValidateConfig_Normalization tests the derived and normalized fields.
func TestValidateConfig_Normalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		backend         string
		maxUploadSize   string
		expectedBackend string
		expectedSize    int64
		expectedTimeout time.Duration
	}{
		{
			name:            "empty backend falls back to pooled",
			backend:         "",
			maxUploadSize:   "1KB",
			expectedBackend: BackendPooled,
			expectedSize:    1000,
			expectedTimeout: 600 * time.Second,
		},
		{
			name:            "backend name is case insensitive",
			backend:         " Framework ",
			maxUploadSize:   "1MiB",
			expectedBackend: BackendFramework,
			expectedSize:    1 << 20,
			expectedTimeout: 300 * time.Second,
		},
		{
			name:            "zero upload size disables the limit",
			backend:         BackendSession,
			maxUploadSize:   "0",
			expectedBackend: BackendSession,
			expectedSize:    0,
			expectedTimeout: 300 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			cfg.Backend = tt.backend
			cfg.MaxUploadSize = tt.maxUploadSize

			require.NoError(t, ValidateConfig(cfg))
			assert.Equal(t, tt.expectedBackend, cfg.Backend)
			assert.Equal(t, tt.expectedSize, cfg.ParsedMaxUploadSize)
			assert.Equal(t, tt.expectedTimeout, cfg.BackendTimeout())
		})
	}
}

// TestResolveURL tests joining relative targets onto the base URL.
func TestResolveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		target   string
		expected string
	}{
		{"absolute target", "https://api.example.com/v1", "http://other/x", "http://other/x"},
		{"no base url", "", "/chat", "/chat"},
		{"relative path", "https://api.example.com/v1", "chat/completions", "https://api.example.com/v1/chat/completions"},
		{"leading slash", "https://api.example.com/v1/", "/models", "https://api.example.com/v1/models"},
		{"query kept", "https://api.example.com", "search?q=a%20b", "https://api.example.com/search?q=a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{BaseURL: tt.baseURL}
			assert.Equal(t, tt.expected, cfg.ResolveURL(tt.target))
		})
	}
}

// TestDump tests that derived fields stay out of the rendered YAML.
func TestDump(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, ValidateConfig(cfg))

	data, err := Dump(cfg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, BackendPooled, decoded["backend"])
	assert.Equal(t, DefaultMaxConnsPerHost, decoded["max_conns_per_host"])
	assert.NotContains(t, decoded, "parsedtimeout")
	assert.NotContains(t, string(data), "Parsed")
}

// TestWriteDefaultConfig tests the starter configuration.
//
//nolint:paralleltest // LoadConfig works on the global viper instance.
func TestWriteDefaultConfig(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)

	require.NoError(t, WriteDefaultConfig(path, false))
	require.ErrorIs(t, WriteDefaultConfig(path, false), ErrConfigExists)
	require.NoError(t, WriteDefaultConfig(path, true))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	defaults := Default()
	require.NoError(t, ValidateConfig(defaults))

	// The template and Default must describe the same configuration.
	cfg.Headers = nil
	defaults.Headers = nil
	assert.Equal(t, defaults, cfg)

	// Missing parent directories are created.
	nested := filepath.Join(t.TempDir(), "etc", "aigc", DefaultConfigFilename)
	require.NoError(t, WriteDefaultConfig(nested, false))

	info, err := os.Stat(filepath.Dir(nested))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestSaveValue tests the order-preserving update of a single key.
//
//nolint:paralleltest // SaveValue works on the global viper instance.
func TestSaveValue(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "# comment\nbackend: pooled\nlog_level: info\n"
	require.NoError(t, os.WriteFile(path, []byte(content), constants.DefaultFilePermissions))

	_, err := LoadConfig(path)
	require.NoError(t, err)

	require.NoError(t, SaveValue("", "backend", "session"))
	require.NoError(t, SaveValue(path, "rate_limit", "5"))
	require.ErrorIs(t, SaveValue("", "auth_token", "x"), ErrUnknownKey)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "# comment\nbackend: session\nlog_level: info\nrate_limit: 5\n", string(data))
}

// TestSaveValue_MissingFile tests that a missing file is created.
//
//nolint:paralleltest // SaveValue works on the global viper instance.
func TestSaveValue_MissingFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "nested", "created.yaml")

	require.NoError(t, SaveValue(path, "backend", "framework"))

	resetViper(t)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFramework, cfg.Backend)
}

// TestUpdateValueInNode tests node updates on edge-case documents.
func TestUpdateValueInNode(t *testing.T) {
	t.Parallel()

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		var node yaml.Node

		updateValueInNode(&node, "backend", "framework")

		data, err := yaml.Marshal(&node)
		require.NoError(t, err)
		assert.Equal(t, "backend: framework\n", string(data))
	})

	t.Run("non-mapping document is left alone", func(t *testing.T) {
		t.Parallel()

		var node yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte("- a\n- b\n"), &node))

		updateValueInNode(&node, "backend", "framework")

		data, err := yaml.Marshal(&node)
		require.NoError(t, err)
		assert.Equal(t, "- a\n- b\n", string(data))
	})
}
