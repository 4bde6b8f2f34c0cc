package config

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"inspectd/internal/app/errors"
)

// Config represents the application configuration
type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	TCP struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Banner  string `yaml:"banner"`
	} `yaml:"tcp"`
	Pipe struct {
		Enabled   bool   `yaml:"enabled"`
		Name      string `yaml:"name"`
		Dir       string `yaml:"dir"`
		Instances int    `yaml:"instances"`
	} `yaml:"pipe"`
	WebSocket struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"websocket"`
	Listener struct {
		ShutdownGrace time.Duration `yaml:"shutdownGrace"`
		MaxPayload    int           `yaml:"maxPayload"`
		Buffer        int           `yaml:"buffer"`
	} `yaml:"listener"`
	Tap struct {
		Enabled bool   `yaml:"enabled"`
		Name    string `yaml:"name"`
		Dir     string `yaml:"dir"`
		Buffer  int    `yaml:"buffer"`
	} `yaml:"tap"`
	Relay struct {
		Address           string        `yaml:"address"`
		Target            string        `yaml:"target"`
		Key               string        `yaml:"key"`
		Buffer            int           `yaml:"buffer"`
		ReconnectDelay    time.Duration `yaml:"reconnectDelay"`
		MaxReconnectDelay time.Duration `yaml:"maxReconnectDelay"`
		MaxAttempts       int           `yaml:"maxAttempts"`
		Workers           int           `yaml:"workers"`
		HealthInterval    time.Duration `yaml:"healthInterval"`
	} `yaml:"relay"`
	Metrics struct {
		Address string `yaml:"address"`
	} `yaml:"metrics"`
	Sentry struct {
		DSN         string `yaml:"dsn"`
		Environment string `yaml:"environment"`
	} `yaml:"sentry"`
	Version int `yaml:"version"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{Version: 1}

	cfg.Logging.Level = LogLevel
	cfg.Logging.Format = LogFormat

	cfg.TCP.Enabled = true
	cfg.TCP.Port = TCPPort
	cfg.TCP.Banner = Banner

	cfg.Pipe.Enabled = true
	cfg.Pipe.Name = PipeName
	cfg.Pipe.Dir = PipeDir
	cfg.Pipe.Instances = PipeInstances

	cfg.WebSocket.Enabled = true
	cfg.WebSocket.Port = WebSocketPort

	cfg.Listener.ShutdownGrace = ShutdownGrace
	cfg.Listener.MaxPayload = MaxPayloadSize
	cfg.Listener.Buffer = BusBuffer

	cfg.Tap.Enabled = true
	cfg.Tap.Name = TapName
	cfg.Tap.Dir = TapDir
	cfg.Tap.Buffer = TapBuffer

	cfg.Relay.Address = RelayAddress
	cfg.Relay.Target = RelayTarget
	cfg.Relay.Buffer = RelayBuffer
	cfg.Relay.Workers = RelayWorkers
	cfg.Relay.ReconnectDelay = ReconnectDelay
	cfg.Relay.MaxReconnectDelay = MaxReconnectDelay
	cfg.Relay.HealthInterval = HealthInterval

	return cfg
}

// Load loads the configuration from the working directory, layering .env, inspectd.yaml and
// INSPECTD_* environment variables over the defaults
func Load() (*Config, error) {
	return LoadFrom(ConfigFile, EnvFile)
}

// LoadFrom loads the configuration from the given config and env files
func LoadFrom(configPath, envPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(envPath); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToReadEnv, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"relay.key", "relay.target", "relay.address", "sentry.dsn", "logging.level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrFailedToReadConfig, err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !isNotExist(err) {
		return nil, errors.ErrFailedToReadConfig
	}

	if err == nil {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, errors.ErrFailedToParseConfig
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ErrFailedToParseConfig
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateListeners(); err != nil {
		return err
	}

	if err := c.validateRelay(); err != nil {
		return err
	}

	if c.Tap.Buffer <= 0 {
		return errors.ErrInvalidTapBuffer
	}

	return nil
}

// validateListeners validates transport listener settings
func (c *Config) validateListeners() error {
	if c.TCP.Enabled && !validPort(c.TCP.Port) {
		return fmt.Errorf("%w: tcp %d", errors.ErrInvalidPort, c.TCP.Port)
	}

	if c.WebSocket.Enabled && !validPort(c.WebSocket.Port) {
		return fmt.Errorf("%w: websocket %d", errors.ErrInvalidPort, c.WebSocket.Port)
	}

	if c.Pipe.Enabled {
		if c.Pipe.Name == "" {
			return errors.ErrPipeNameRequired
		}

		if c.Pipe.Instances <= 0 {
			return errors.ErrInvalidPipeInstances
		}
	}

	if c.Listener.MaxPayload <= 0 {
		return errors.ErrInvalidMaxPayload
	}

	if c.Listener.Buffer <= 0 {
		return errors.ErrInvalidListenerBuffer
	}

	if c.Listener.ShutdownGrace < 0 {
		return errors.ErrInvalidShutdownGrace
	}

	return nil
}

// validateRelay validates relay settings
func (c *Config) validateRelay() error {
	if c.Relay.Buffer <= 0 {
		return errors.ErrInvalidRelayBuffer
	}

	if c.Relay.ReconnectDelay <= 0 || c.Relay.MaxReconnectDelay < c.Relay.ReconnectDelay {
		return errors.ErrInvalidRelayDelay
	}

	if c.Relay.HealthInterval <= 0 {
		return errors.ErrInvalidHealthInterval
	}

	if c.Relay.MaxAttempts < 0 {
		return errors.ErrInvalidRelayAttempts
	}

	if c.Relay.Workers <= 0 {
		return errors.ErrInvalidRelayWorkers
	}

	return nil
}

// validPort reports whether port is a usable TCP port (0 lets the OS pick)
func validPort(port int) bool {
	return port >= 0 && port <= 65535
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
