// Package passes runs named rewrite passes over a source tree.
package passes

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/you-not-fish/cs2py/internal/hoist"
	"github.com/you-not-fish/cs2py/internal/logger"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

// Pass describes a single source-tree pass. Fn must not modify its input.
type Pass struct {
	Name string
	Fn   func(f *syntax.File) (*syntax.File, error)

	// Check, if set, is run on the output when Config.Verify is on.
	Check func(f *syntax.File) error
}

// Config controls pass execution behavior.
type Config struct {
	DumpBefore string    // dump the tree before this pass ("*" for all)
	DumpAfter  string    // dump the tree after this pass ("*" for all)
	Verify     bool      // verify the tree before/after each pass
	Output     io.Writer // dump destination, os.Stderr if nil
	Logger     *slog.Logger
}

// Default returns the passes run before translation.
func Default() []Pass {
	return []Pass{
		{Name: "hoist", Fn: hoist.Rewrite, Check: NoBlockLambdas},
	}
}

// Names returns the names of the given passes, in order.
func Names(passes []Pass) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name
	}
	return names
}

// Run executes the given passes on f in order and returns the final tree.
func Run(f *syntax.File, passes []Pass, cfg Config) (*syntax.File, error) {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	l := logger.OrDiscard(cfg.Logger)
	name := f.Pos().Filename()

	for _, p := range passes {
		if shouldDump(cfg.DumpBefore, p.Name) {
			fmt.Fprintf(w, "--- before %s (%s) ---\n", p.Name, name)
			syntax.Fprint(w, f)
			fmt.Fprintln(w)
		}

		if cfg.Verify {
			if err := Verify(f); err != nil {
				return nil, fmt.Errorf("verify before %s: %w", p.Name, err)
			}
		}

		start := time.Now()
		out, err := p.Fn(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		l.Debug("Pass complete", "pass", p.Name, "file", name,
			"changed", out != f, "duration", time.Since(start))
		f = out

		if cfg.Verify {
			if err := Verify(f); err != nil {
				return nil, fmt.Errorf("verify after %s: %w", p.Name, err)
			}
			if p.Check != nil {
				if err := p.Check(f); err != nil {
					return nil, fmt.Errorf("verify after %s: %w", p.Name, err)
				}
			}
		}

		if shouldDump(cfg.DumpAfter, p.Name) {
			fmt.Fprintf(w, "--- after %s (%s) ---\n", p.Name, name)
			syntax.Fprint(w, f)
			fmt.Fprintln(w)
		}
	}
	return f, nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}
