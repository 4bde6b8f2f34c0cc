package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectd/internal/app/errors"
)

func Test_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, LogLevel, cfg.Logging.Level)
	assert.Equal(t, LogFormat, cfg.Logging.Format)
	assert.Equal(t, 4228, cfg.TCP.Port)
	assert.Equal(t, 4229, cfg.WebSocket.Port)
	assert.Equal(t, "smartinspect", cfg.Pipe.Name)
	assert.Equal(t, 10, cfg.Pipe.Instances)
	assert.Equal(t, 10000, cfg.Relay.Buffer)
	assert.Equal(t, 5*time.Second, cfg.Relay.ReconnectDelay)
	assert.Equal(t, 30*time.Second, cfg.Relay.MaxReconnectDelay)
	assert.Equal(t, 0, cfg.Relay.MaxAttempts)
	assert.Equal(t, 32, cfg.Relay.Workers)
	assert.Equal(t, 1, cfg.Version)
	assert.NoError(t, cfg.Validate())
}

func Test_LoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		env     string
		error   error
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "no config file found - uses default",
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, TCPPort, cfg.TCP.Port)
			},
		},
		{
			name: "valid config file",
			config: `version: 1
logging:
  level: debug
  format: json
tcp:
  port: 5000
pipe:
  enabled: false
listener:
  shutdownGrace: 2s
relay:
  target: ws://example.com:4229
  reconnectDelay: 250ms
  maxAttempts: 4
`,
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, 5000, cfg.TCP.Port)
				assert.True(t, cfg.TCP.Enabled)
				assert.False(t, cfg.Pipe.Enabled)
				assert.Equal(t, 2*time.Second, cfg.Listener.ShutdownGrace)
				assert.Equal(t, "ws://example.com:4229", cfg.Relay.Target)
				assert.Equal(t, 250*time.Millisecond, cfg.Relay.ReconnectDelay)
				assert.Equal(t, 4, cfg.Relay.MaxAttempts)
				assert.Equal(t, WebSocketPort, cfg.WebSocket.Port)
			},
		},
		{
			name: "relay key from env file",
			env:  "INSPECTD_RELAY_KEY=s3cret\n",
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "s3cret", cfg.Relay.Key)
			},
		},
		{
			name:   "invalid yaml",
			config: "tcp: [unclosed\n",
			error:  errors.ErrFailedToParseConfig,
		},
		{
			name:   "invalid value type",
			config: "tcp: \"this should be a map not a string\"\n",
			error:  errors.ErrFailedToParseConfig,
		},
		{
			name:   "validation failure",
			config: "relay:\n  buffer: 0\n",
			error:  errors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, ConfigFile)
			envPath := filepath.Join(dir, EnvFile)

			if tt.config != "" {
				require.NoError(t, os.WriteFile(configPath, []byte(tt.config), 0600))
			}

			if tt.env != "" {
				require.NoError(t, os.WriteFile(envPath, []byte(tt.env), 0600))
				t.Cleanup(func() { os.Unsetenv("INSPECTD_RELAY_KEY") })
			}

			cfg, err := LoadFrom(configPath, envPath)

			if tt.error != nil {
				assert.ErrorIs(t, err, tt.error)
				assert.Nil(t, cfg)

				return
			}

			require.NoError(t, err)
			tt.checkFn(t, cfg)
		})
	}
}

func Test_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		error  error
	}{
		{name: "valid defaults", mutate: func(cfg *Config) {}},
		{name: "invalid tcp port", mutate: func(cfg *Config) { cfg.TCP.Port = 70000 }, error: errors.ErrInvalidPort},
		{name: "disabled tcp ignores port", mutate: func(cfg *Config) { cfg.TCP.Enabled = false; cfg.TCP.Port = -1 }},
		{name: "invalid websocket port", mutate: func(cfg *Config) { cfg.WebSocket.Port = -5 }, error: errors.ErrInvalidPort},
		{name: "empty pipe name", mutate: func(cfg *Config) { cfg.Pipe.Name = "" }, error: errors.ErrPipeNameRequired},
		{name: "zero pipe instances", mutate: func(cfg *Config) { cfg.Pipe.Instances = 0 }, error: errors.ErrInvalidPipeInstances},
		{name: "zero max payload", mutate: func(cfg *Config) { cfg.Listener.MaxPayload = 0 }, error: errors.ErrInvalidMaxPayload},
		{name: "zero listener buffer", mutate: func(cfg *Config) { cfg.Listener.Buffer = 0 }, error: errors.ErrInvalidListenerBuffer},
		{name: "negative grace", mutate: func(cfg *Config) { cfg.Listener.ShutdownGrace = -time.Second }, error: errors.ErrInvalidShutdownGrace},
		{name: "zero tap buffer", mutate: func(cfg *Config) { cfg.Tap.Buffer = 0 }, error: errors.ErrInvalidTapBuffer},
		{name: "zero relay buffer", mutate: func(cfg *Config) { cfg.Relay.Buffer = 0 }, error: errors.ErrInvalidRelayBuffer},
		{name: "negative relay delay", mutate: func(cfg *Config) { cfg.Relay.ReconnectDelay = -1 }, error: errors.ErrInvalidRelayDelay},
		{name: "zero relay delay", mutate: func(cfg *Config) { cfg.Relay.ReconnectDelay = 0 }, error: errors.ErrInvalidRelayDelay},
		{name: "max delay below delay", mutate: func(cfg *Config) { cfg.Relay.MaxReconnectDelay = cfg.Relay.ReconnectDelay / 2 }, error: errors.ErrInvalidRelayDelay},
		{name: "zero health interval", mutate: func(cfg *Config) { cfg.Relay.HealthInterval = 0 }, error: errors.ErrInvalidHealthInterval},
		{name: "negative health interval", mutate: func(cfg *Config) { cfg.Relay.HealthInterval = -time.Second }, error: errors.ErrInvalidHealthInterval},
		{name: "negative relay attempts", mutate: func(cfg *Config) { cfg.Relay.MaxAttempts = -1 }, error: errors.ErrInvalidRelayAttempts},
		{name: "zero relay workers", mutate: func(cfg *Config) { cfg.Relay.Workers = 0 }, error: errors.ErrInvalidRelayWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.error == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.error)
		})
	}
}
