package generator

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"inspectd/internal/app/errors"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

const header = `# inspectd configuration
# Every value below is a default. Remove the keys you do not need to change.
# The relay key is better kept in .env as INSPECTD_RELAY_KEY.

`

// Options contains the configuration for generating inspectd.yaml
type Options struct {
	Path   string
	Force  bool
	DryRun bool
}

// DefaultOptions returns sensible defaults for generation
func DefaultOptions() Options {
	return Options{
		Path: config.ConfigFile,
	}
}

// Generator defines the interface for generating inspectd.yaml
type Generator interface {
	Generate(opts Options) error
}

type generator struct {
	out io.Writer
	log logger.Logger
}

// NewGenerator creates a new generator instance
func NewGenerator(log logger.Logger) Generator {
	return &generator{
		out: os.Stdout,
		log: log,
	}
}

// Generate writes the default configuration to opts.Path, or to stdout on a dry run
func (g *generator) Generate(opts Options) error {
	if opts.Path == "" {
		opts.Path = config.ConfigFile
	}

	if !opts.DryRun && !opts.Force {
		if _, err := os.Stat(opts.Path); err == nil {
			return fmt.Errorf("%w: %s", errors.ErrFileExists, opts.Path)
		}
	}

	content, err := Render(config.DefaultConfig())
	if err != nil {
		return err
	}

	if opts.DryRun {
		_, err := g.out.Write(content)
		return err
	}

	if err := os.WriteFile(opts.Path, content, 0600); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToWrite, err)
	}

	g.log.Info().Msgf("Generated %s", opts.Path)

	return nil
}

// Render encodes cfg as commented YAML
func Render(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToRender, err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrFailedToRender, err)
	}

	return buf.Bytes(), nil
}
