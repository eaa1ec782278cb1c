// Package main implements the cs2py command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/you-not-fish/cs2py"
	"github.com/you-not-fish/cs2py/internal/host"
	"github.com/you-not-fish/cs2py/internal/logger"
	"github.com/you-not-fish/cs2py/internal/passes"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
	"github.com/you-not-fish/cs2py/internal/translate"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Converter flags
var (
	emitTokens  = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST     = flag.Bool("emit-ast", false, "Output AST")
	astFormat   = flag.String("ast-format", "text", "AST output format (text or json)")
	emitHoisted = flag.Bool("emit-hoisted", false, "Output AST after lambda hoisting")
	emitPyAST   = flag.Bool("emit-pyast", false, "Output the Python syntax tree")
	dumpBefore  = flag.String("dump-before", "", "Dump AST before pass (name or \"*\")")
	dumpAfter   = flag.String("dump-after", "", "Dump AST after pass (name or \"*\")")
	verify      = flag.Bool("verify", false, "Verify the AST after each pass")
	bridge      = flag.String("convert-bridge", translate.DefaultConvertBridge, "Function used for non-builtin casts")
	run         = flag.Bool("run", false, "Run the converted program with python3")
	output      = flag.String("o", "", "Output file")
	trace       = flag.Bool("trace", false, "Log pipeline phases")
	logFormat   = flag.String("log-format", "text", "Log format (text or json)")
	interactive = flag.Bool("i", false, "Start an interactive session")
	version     = flag.Bool("version", false, "Print version")
	imports     stringList
)

func init() {
	flag.Var(&imports, "import", "Module imported before running (repeatable)")
}

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cs2py %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: cs2py [options] <file.cs>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("cs2py version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	if *astFormat != "text" && *astFormat != "json" {
		fmt.Fprintf(os.Stderr, "error: unknown -ast-format %q\n", *astFormat)
		os.Exit(2)
	}
	if *logFormat != "text" && *logFormat != "json" {
		fmt.Fprintf(os.Stderr, "error: unknown -log-format %q\n", *logFormat)
		os.Exit(2)
	}

	if *interactive {
		os.Exit(runREPL(os.Stdout))
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: expected exactly one input file")
		fmt.Fprintln(os.Stderr, "usage: cs2py [options] <file.cs>")
		os.Exit(2)
	}

	filename := args[0]

	// Handle -emit-tokens
	if *emitTokens {
		os.Exit(runEmitTokens(filename))
	}

	// Handle -emit-ast
	if *emitAST {
		os.Exit(runEmitAST(filename))
	}

	// Handle -emit-hoisted
	if *emitHoisted {
		os.Exit(runEmitHoisted(filename))
	}

	// Handle -emit-pyast
	if *emitPyAST {
		os.Exit(runEmitPyAST(filename))
	}

	os.Exit(runConvert(filename))
}

func newLogger() *slog.Logger {
	level := logger.LevelWarn
	if *trace {
		level = logger.LevelDebug
	}
	return logger.New(logger.Config{Level: level, Format: *logFormat, Output: os.Stderr})
}

func passConfig(l *slog.Logger) passes.Config {
	return passes.Config{
		DumpBefore: *dumpBefore,
		DumpAfter:  *dumpAfter,
		Verify:     *verify,
		Output:     os.Stderr,
		Logger:     l,
	}
}

// runConvert converts the input file and writes or runs the result.
func runConvert(filename string) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	l := newLogger()
	code, err := cs2py.Convert(string(src),
		cs2py.WithFilename(filename),
		cs2py.WithLogger(l),
		cs2py.WithConvertBridge(*bridge),
		cs2py.WithPasses(passConfig(l)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if *run {
		return runProgram(filename, code, l)
	}

	if *output == "" {
		fmt.Print(code)
		return 0
	}
	if err := os.WriteFile(*output, []byte(code), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runProgram executes converted code, copying its output through.
func runProgram(filename, code string, l *slog.Logger) int {
	cfg, err := host.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	cfg.Logger = l

	var b strings.Builder
	b.WriteString("import clr\n")
	for _, imp := range imports {
		fmt.Fprintf(&b, "import %s\n", imp)
	}
	b.WriteString(code)

	res, err := host.Run(context.Background(), cfg, host.Program{Code: b.String(), Filename: filename})
	var ee *host.ExecError
	switch {
	case errors.As(err, &ee):
		fmt.Fprint(os.Stderr, ee.Stderr)
		return 1
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Print(res.Stdout)
	fmt.Fprint(os.Stderr, res.Stderr)
	return 0
}

// parseFile parses filename, printing every syntax error to stderr.
func parseFile(filename string) (*syntax.File, bool) {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, false
	}
	defer f.Close()

	var errs []string
	errh := func(pos syntax.Pos, msg string) {
		errs = append(errs, fmt.Sprintf("%s: %s", pos, msg))
	}

	p := syntax.NewParser(filename, f, errh)
	file := p.Parse()

	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}
	return file, len(errs) == 0
}

// runEmitAST parses the input file and outputs the AST.
func runEmitAST(filename string) int {
	file, ok := parseFile(filename)
	if file == nil {
		return 1
	}
	if err := printAST(os.Stdout, file); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if !ok {
		return 1
	}
	return 0
}

func printAST(w io.Writer, file *syntax.File) error {
	switch *astFormat {
	case "json":
		return syntax.FprintJSON(w, file)
	default:
		syntax.Fprint(w, file)
		return nil
	}
}

// runEmitHoisted outputs the AST after the source-tree passes.
func runEmitHoisted(filename string) int {
	file, ok := parseFile(filename)
	if !ok {
		return 1
	}
	file, err := passes.Run(file, passes.Default(), passConfig(newLogger()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if err := printAST(os.Stdout, file); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runEmitPyAST outputs the structure of the translated Python tree.
func runEmitPyAST(filename string) int {
	file, ok := parseFile(filename)
	if !ok {
		return 1
	}
	file, err := passes.Run(file, passes.Default(), passConfig(newLogger()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	mod, err := translate.File(file, translate.Config{ConvertBridge: *bridge})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	pyast.Fdump(os.Stdout, mod)
	return 0
}

// runEmitTokens scans the input file and prints all tokens with positions.
func runEmitTokens(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	var errs []string
	errh := func(line, col uint32, msg string) {
		errs = append(errs, fmt.Sprintf("%s:%d:%d: %s", filename, line, col, msg))
	}

	s := syntax.NewScanner(filename, f, errh)

	fmt.Printf("%-20s %-12s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-20s %-12s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 20))

	for {
		s.Next()
		tok := s.Token()
		fmt.Printf("%-20s %-12s %s\n", s.Pos().String(), tok.String(), formatLiteral(s.Literal()))
		if tok.IsEOF() {
			break
		}
	}

	if len(errs) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range errs {
			fmt.Printf("  %s\n", e)
		}
		return 1
	}

	return 0
}

// formatLiteral formats a literal for display, escaping special characters.
func formatLiteral(lit string) string {
	if lit == "" {
		return "\"\""
	}

	var b strings.Builder
	b.WriteRune('"')
	for _, r := range lit {
		switch r {
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case 0:
			b.WriteString("\\0")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune('"')
	return b.String()
}
