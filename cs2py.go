// Package cs2py converts C# source to Python 3 source.
//
// Conversion runs four phases: parse, the source-tree passes (block-bodied
// lambda hoisting), translation to a Python tree, and printing. Each phase
// fails loudly: parse errors are *syntax.SyntaxError, translation errors
// are *diag.Error, and nothing is printed for input that cannot be
// converted faithfully.
package cs2py

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/you-not-fish/cs2py/internal/host"
	"github.com/you-not-fish/cs2py/internal/logger"
	"github.com/you-not-fish/cs2py/internal/passes"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
	"github.com/you-not-fish/cs2py/internal/translate"
)

// WrapperFunc is the name of the function ConvertAndRun wraps its source in.
const WrapperFunc = "WrapperFunc"

type options struct {
	filename  string
	logger    *slog.Logger
	translate translate.Config
	passes    passes.Config
	host      host.Config
	hostSet   bool
	stdout    io.Writer
	member    string
}

// Option configures a conversion.
type Option func(*options)

// WithFilename sets the file name used in positions. The default is "input.cs".
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithLogger sets the logger that receives phase records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConvertBridge sets the dotted name of the function used for casts
// to types without a Python builtin conversion.
func WithConvertBridge(name string) Option {
	return func(o *options) { o.translate.ConvertBridge = name }
}

// WithHost sets the interpreter configuration used to run programs.
// Without it host.ConfigFromEnv is used.
func WithHost(cfg host.Config) Option {
	return func(o *options) {
		o.host = cfg
		o.hostSet = true
	}
}

// WithStdout sets where a run copies the program's standard output. By default it is discarded.
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithMember appends a Python member access or call, such as ".GetInt()",
// to the expression ConvertAndRun, RunFile and RunExpr evaluate.
func WithMember(trailer string) Option {
	return func(o *options) { o.member = trailer }
}

// WithPasses sets the dump and verification settings of the pass pipeline.
func WithPasses(cfg passes.Config) Option {
	return func(o *options) { o.passes = cfg }
}

func newOptions(opts []Option) *options {
	o := &options{filename: "input.cs"}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.OrDiscard(o.logger)
	if o.passes.Logger == nil {
		o.passes.Logger = o.logger
	}
	return o
}

// Convert translates a C# compilation unit to Python source.
func Convert(src string, opts ...Option) (string, error) {
	o := newOptions(opts)
	return convert(context.Background(), src, o)
}

func convert(ctx context.Context, src string, o *options) (string, error) {
	mod, err := convertModule(ctx, src, o)
	if err != nil {
		return "", err
	}
	return printNode(ctx, mod, o)
}

func convertModule(ctx context.Context, src string, o *options) (*pyast.Module, error) {
	var (
		file *syntax.File
		mod  *pyast.Module
	)
	l := o.logger.With("file", o.filename)

	err := logger.Phase(ctx, l, "parse", func() error {
		p := syntax.NewParser(o.filename, strings.NewReader(src), nil)
		file = p.Parse()
		return p.FirstError()
	})
	if err != nil {
		return nil, err
	}
	err = logger.Phase(ctx, l, "passes", func() (err error) {
		file, err = passes.Run(file, passes.Default(), o.passes)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = logger.Phase(ctx, l, "translate", func() (err error) {
		mod, err = translate.File(file, o.translate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func printNode(ctx context.Context, n pyast.Node, o *options) (string, error) {
	var out string
	err := logger.Phase(ctx, o.logger.With("file", o.filename), "print", func() (err error) {
		out, err = pyast.Print(n)
		return err
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// ConvertExpr translates a single C# expression to a Python expression.
// Block-bodied lambdas are rejected since there is no statement to hoist
// them to.
func ConvertExpr(src string, opts ...Option) (string, error) {
	o := newOptions(opts)
	return convertExpr(context.Background(), src, o)
}

func convertExpr(ctx context.Context, src string, o *options) (string, error) {
	l := o.logger.With("file", o.filename)
	var (
		x syntax.Expr
		e pyast.Expr
	)
	err := logger.Phase(ctx, l, "parse", func() error {
		p := syntax.NewParser(o.filename, strings.NewReader(src), nil)
		x = p.ParseExpr()
		return p.FirstError()
	})
	if err != nil {
		return "", err
	}
	err = logger.Phase(ctx, l, "translate", func() (err error) {
		e, err = translate.Expr(x, o.translate)
		return err
	})
	if err != nil {
		return "", err
	}
	return printNode(ctx, e, o)
}

// Wrap returns the program ConvertAndRun executes for src: src as the body
// of WrapperFunc, converted, preceded by "import clr" and one import per
// entry of imports.
func Wrap(src string, imports []string, opts ...Option) (string, error) {
	o := newOptions(opts)
	return wrap(context.Background(), src, imports, o)
}

func wrap(ctx context.Context, src string, imports []string, o *options) (string, error) {
	wrapped := "object " + WrapperFunc + "() {\n" + src + "\n}"
	code, err := convert(ctx, wrapped, o)
	if err != nil {
		return "", err
	}
	return preamble(imports) + code, nil
}

// preamble returns "import clr" followed by one import per entry of imports.
func preamble(imports []string) string {
	var b strings.Builder
	b.WriteString("import clr\n")
	for _, imp := range imports {
		fmt.Fprintf(&b, "import %s\n", imp)
	}
	return b.String()
}

// ConvertAndRun converts src as the body of a function returning object,
// runs it in the scripting host and returns the function's result. A
// program that raises surfaces as *host.ExecError.
func ConvertAndRun(ctx context.Context, src string, imports []string, opts ...Option) (*host.Value, error) {
	o := newOptions(opts)
	code, err := wrap(ctx, src, imports, o)
	if err != nil {
		return nil, err
	}
	return run(ctx, code, WrapperFunc+"()", o)
}

// RunFile converts src as a whole compilation unit and runs it. If the
// unit is a single function, RunFile returns the result of calling it.
// If every top-level statement is a class, it returns a new instance of
// the last one. Otherwise the unit runs for its effects and the result is
// None.
func RunFile(ctx context.Context, src string, imports []string, opts ...Option) (*host.Value, error) {
	o := newOptions(opts)
	mod, err := convertModule(ctx, src, o)
	if err != nil {
		return nil, err
	}
	code, err := printNode(ctx, mod, o)
	if err != nil {
		return nil, err
	}
	entry := entryPoint(mod)
	if entry == "" {
		entry = "None"
	}
	return run(ctx, preamble(imports)+code, entry, o)
}

// RunExpr converts a single expression and returns its value.
func RunExpr(ctx context.Context, src string, imports []string, opts ...Option) (*host.Value, error) {
	o := newOptions(opts)
	x, err := convertExpr(ctx, src, o)
	if err != nil {
		return nil, err
	}
	return run(ctx, preamble(imports), "("+x+")", o)
}

// entryPoint returns the call that runs a converted unit, or "" if the
// unit has none.
func entryPoint(mod *pyast.Module) string {
	var stmts []pyast.Stmt
	var collect func(s pyast.Stmt)
	collect = func(s pyast.Stmt) {
		switch s := s.(type) {
		case nil, *pyast.Import, *pyast.FromImport, *pyast.Empty:
		case *pyast.Suite:
			for _, x := range s.Stmts {
				collect(x)
			}
		default:
			stmts = append(stmts, s)
		}
	}
	for _, s := range mod.Body {
		collect(s)
	}
	if len(stmts) == 0 {
		return ""
	}
	if f, ok := stmts[0].(*pyast.FunctionDef); ok && len(stmts) == 1 {
		return f.Name + "()"
	}
	for _, s := range stmts {
		if _, ok := s.(*pyast.ClassDef); !ok {
			return ""
		}
	}
	return stmts[len(stmts)-1].(*pyast.ClassDef).Name + "()"
}

// run executes code in the scripting host and evaluates eval, followed by
// the WithMember trailer, in its namespace.
func run(ctx context.Context, code, eval string, o *options) (*host.Value, error) {
	cfg := o.host
	if !o.hostSet {
		var err error
		if cfg, err = host.ConfigFromEnv(); err != nil {
			return nil, err
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = o.logger
	}

	var res *host.Result
	err := logger.Phase(ctx, o.logger.With("file", o.filename), "run", func() (err error) {
		res, err = host.Run(ctx, cfg, host.Program{
			Code:     code,
			Eval:     eval + o.member,
			Filename: o.filename,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if o.stdout != nil {
		if _, err := io.WriteString(o.stdout, res.Stdout); err != nil {
			return nil, err
		}
	}
	return res.Value, nil
}
