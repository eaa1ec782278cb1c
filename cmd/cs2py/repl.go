package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/you-not-fish/cs2py"
	"github.com/you-not-fish/cs2py/internal/host"
)

const (
	historyFile = ".cs2py_history"
	promptMain  = "cs> "
	promptCont  = "..> "
)

const replHelp = `Enter C# and see the Python it converts to.
An expression converts on its own; anything else converts as a compilation unit.
  :run <statements>   run statements as a function body and print the result
  :eval <expression>  run an expression and print its value
  :help               show this help
  :quit               exit`

// runREPL reads C# from the terminal until EOF or :quit.
func runREPL(w io.Writer) int {
	fmt.Fprintf(w, "cs2py %s (type :help)\n", Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	opts := []cs2py.Option{
		cs2py.WithFilename("<stdin>"),
		cs2py.WithLogger(newLogger()),
		cs2py.WithConvertBridge(*bridge),
	}

	for {
		src, ok := readBalanced(ln)
		if !ok {
			fmt.Fprintln(w)
			return 0
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		out, quit := evalLine(src, opts)
		if quit {
			return 0
		}
		fmt.Fprint(w, out)
	}
}

// evalLine handles one complete input and returns the text to show.
func evalLine(src string, opts []cs2py.Option) (out string, quit bool) {
	line := strings.TrimSpace(src)
	if strings.HasPrefix(line, ":") {
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case ":quit", ":q":
			return "", true
		case ":help":
			return replHelp + "\n", false
		case ":run":
			return runSnippet(cs2py.ConvertAndRun, arg, opts), false
		case ":eval":
			return runSnippet(cs2py.RunExpr, arg, opts), false
		default:
			return "unknown command. Type :help for help.\n", false
		}
	}

	if py, err := cs2py.ConvertExpr(src, opts...); err == nil {
		return py + "\n", false
	}
	py, err := cs2py.Convert(src, opts...)
	if err != nil {
		return "error: " + err.Error() + "\n", false
	}
	return py, false
}

type runFunc func(ctx context.Context, src string, imports []string, opts ...cs2py.Option) (*host.Value, error)

func runSnippet(run runFunc, src string, opts []cs2py.Option) string {
	var stdout strings.Builder
	opts = append(opts[:len(opts):len(opts)], cs2py.WithStdout(&stdout))
	v, err := run(context.Background(), src, imports, opts...)
	var ee *host.ExecError
	switch {
	case errors.As(err, &ee):
		return stdout.String() + ee.Stderr
	case err != nil:
		return "error: " + err.Error() + "\n"
	}
	return stdout.String() + v.String() + "\n"
}

// readBalanced reads lines until brackets balance. It reports false at EOF.
func readBalanced(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if depth(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// depth returns the bracket nesting left open at the end of src, ignoring
// brackets inside string and char literals and comments.
func depth(src string) int {
	n := 0
	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '{', '(', '[':
			n++
		case '}', ')', ']':
			n--
		case '"', '\'':
			verbatim := c == '"' && i > 0 && (src[i-1] == '@' || i > 1 && src[i-1] == '$' && src[i-2] == '@')
			i = skipQuoted(src, i, verbatim)
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			} else if i+1 < len(src) && src[i+1] == '*' {
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return n + 1 // unterminated comment
				}
				i += end + 3
			}
		}
	}
	return n
}

// skipQuoted returns the index of the quote closing the literal opened at
// src[i], or len(src) if it is unterminated.
func skipQuoted(src string, i int, verbatim bool) int {
	q := src[i]
	for i++; i < len(src); i++ {
		switch {
		case !verbatim && src[i] == '\\':
			i++
		case src[i] == q:
			if verbatim && i+1 < len(src) && src[i+1] == q {
				i++
				continue
			}
			return i
		}
	}
	return len(src)
}
