// Package host runs converted programs in a CPython subprocess.
//
// Each Run starts a fresh interpreter, installs the runtime prelude (the
// clr and System modules), executes the program and, if requested,
// evaluates one expression whose value is returned as a tagged JSON
// document over a dedicated pipe so that program output on stdout does not
// interfere with it.
package host

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/you-not-fish/cs2py/internal/logger"
)

//go:embed prelude.py
var prelude string

//go:embed runner.py
var runner string

// DefaultTimeout bounds a run whose context carries no deadline.
const DefaultTimeout = 10 * time.Second

// Config selects and bounds the interpreter.
type Config struct {
	Python  string        // interpreter command, "python3" if empty
	Timeout time.Duration // applies when the context has no deadline; <0 disables
	Env     []string      // extra KEY=VALUE entries appended to the environment
	Logger  *slog.Logger
}

// ConfigFromEnv returns a Config filled from CS2PY_PYTHON and
// CS2PY_TIMEOUT (a time.ParseDuration string).
func ConfigFromEnv() (Config, error) {
	cfg := Config{Python: os.Getenv("CS2PY_PYTHON")}
	if s := os.Getenv("CS2PY_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("CS2PY_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func (c Config) python() string {
	if c.Python == "" {
		return "python3"
	}
	return c.Python
}

func (c Config) timeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Program is the code to run.
type Program struct {
	Code     string // module source
	Eval     string // expression evaluated after Code; empty for none
	Filename string // shown in tracebacks, "<cs2py>" if empty
}

// Result is the outcome of a successful run.
type Result struct {
	Stdout   string
	Stderr   string
	Value    *Value // nil unless Program.Eval was set
	Duration time.Duration
}

// ExecError reports a program that raised or exited with a non-zero
// status. Stderr holds the Python traceback verbatim.
type ExecError struct {
	Stderr   string
	ExitCode int
}

func (e *ExecError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
		msg = msg[i+1:]
	}
	if msg == "" {
		return fmt.Sprintf("python exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("python exited with status %d: %s", e.ExitCode, msg)
}

type request struct {
	Prelude  string `json:"prelude"`
	Code     string `json:"code"`
	Eval     string `json:"eval,omitempty"`
	Filename string `json:"filename"`
}

// Run executes prog. Cancelling ctx kills the interpreter.
func Run(ctx context.Context, cfg Config, prog Program) (*Result, error) {
	if _, ok := ctx.Deadline(); !ok && cfg.timeout() > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout())
		defer cancel()
	}
	l := logger.OrDiscard(cfg.Logger)

	filename := prog.Filename
	if filename == "" {
		filename = "<cs2py>"
	}
	payload, err := json.Marshal(request{
		Prelude:  prelude,
		Code:     prog.Code,
		Eval:     prog.Eval,
		Filename: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	defer pr.Close()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cfg.python(), "-B", "-c", runner)
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.ExtraFiles = []*os.File{pw} // fd 3 in the child

	start := time.Now()
	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fmt.Errorf("host: start %s: %w", cfg.python(), err)
	}
	pw.Close()

	type readResult struct {
		data []byte
		err  error
	}
	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(pr)
		done <- readResult{data, err}
	}()

	waitErr := cmd.Wait()
	rr := <-done
	dur := time.Since(start)

	l.Debug("Python run complete",
		"interpreter", cfg.python(),
		"bytes", len(prog.Code),
		"duration", dur,
		"exit_code", cmd.ProcessState.ExitCode())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("host: %w", ctxErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return nil, &ExecError{Stderr: stderr.String(), ExitCode: exitErr.ExitCode()}
		}
		return nil, fmt.Errorf("host: %w", waitErr)
	}
	if rr.err != nil {
		return nil, fmt.Errorf("host: read result: %w", rr.err)
	}

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: dur,
	}
	if prog.Eval != "" {
		v, err := decodeValue(rr.data)
		if err != nil {
			return nil, fmt.Errorf("host: decode result: %w", err)
		}
		res.Value = v
	}
	return res, nil
}
