package console

import (
	"fmt"

	"github.com/gobwas/glob"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
)

// Filter selects packets by app and session name globs
type Filter interface {
	Match(s packet.Summary) bool
}

type filter struct {
	apps     []glob.Glob
	sessions []glob.Glob
}

// NewFilter compiles the app and session patterns. An empty list matches
// everything.
func NewFilter(apps, sessions []string) (Filter, error) {
	f := &filter{}

	var err error

	if f.apps, err = CompileGlobs(apps); err != nil {
		return nil, err
	}

	if f.sessions, err = CompileGlobs(sessions); err != nil {
		return nil, err
	}

	return f, nil
}

// CompileGlobs compiles patterns, rejecting the first invalid one
func CompileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))

	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errors.ErrInvalidPattern, p, err)
		}

		globs = append(globs, g)
	}

	return globs, nil
}

// MatchAny reports whether value matches one of globs. Packets that carry no
// value cannot be attributed and always match.
func MatchAny(globs []glob.Glob, value string) bool {
	if len(globs) == 0 || value == "" {
		return true
	}

	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}

	return false
}

func (f *filter) Match(s packet.Summary) bool {
	return MatchAny(f.apps, s.App) && MatchAny(f.sessions, s.Session)
}
