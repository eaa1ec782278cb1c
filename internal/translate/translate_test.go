package translate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/you-not-fish/cs2py/internal/diag"
	"github.com/you-not-fish/cs2py/internal/hoist"
	"github.com/you-not-fish/cs2py/internal/pyast"
	"github.com/you-not-fish/cs2py/internal/syntax"
)

// pipeline runs parse, hoist, translate and print over src.
func pipeline(src string, cfg Config) (string, error) {
	p := syntax.NewParser("test.cs", strings.NewReader(src), nil)
	file := p.Parse()
	if err := p.FirstError(); err != nil {
		return "", err
	}
	file, err := hoist.Rewrite(file)
	if err != nil {
		return "", err
	}
	m, err := File(file, cfg)
	if err != nil {
		return "", err
	}
	return pyast.Print(m)
}

// convert is pipeline for sources that must parse.
func convert(t *testing.T, src string, cfg Config) (string, error) {
	t.Helper()
	out, err := pipeline(src, cfg)
	var serr *syntax.SyntaxError
	if errors.As(err, &serr) {
		t.Fatalf("parse: %v", err)
	}
	return out, err
}

func mustConvert(t *testing.T, src string) string {
	t.Helper()
	out, err := convert(t, src, Config{})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	return out
}

// convertExpr translates and prints a single expression.
func convertExpr(t *testing.T, src string, cfg Config) (string, error) {
	t.Helper()
	p := syntax.NewParser("test.cs", strings.NewReader(src), nil)
	x := p.ParseExpr()
	if err := p.FirstError(); err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	e, err := Expr(x, cfg)
	if err != nil {
		return "", err
	}
	return pyast.Print(e)
}

// ----------------------------------------------------------------------------
// Golden tests

func TestGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.txtar")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no golden files")
	}

	for _, f := range files {
		t.Run(strings.TrimSuffix(filepath.Base(f), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(f)
			if err != nil {
				t.Fatal(err)
			}
			input := section(t, ar, "input.cs")
			got := mustConvert(t, string(input))

			if os.Getenv("UPDATE_GOLDEN") != "" {
				for i := range ar.Files {
					if ar.Files[i].Name == "output.py" {
						ar.Files[i].Data = []byte(got)
					}
				}
				if err := os.WriteFile(f, txtar.Format(ar), 0644); err != nil {
					t.Fatal(err)
				}
				return
			}

			if want := string(section(t, ar, "output.py")); got != want {
				t.Errorf("output mismatch for %s\ngot:\n%s\nwant:\n%s\nRun with UPDATE_GOLDEN=1 to update", f, got, want)
			}
		})
	}
}

func section(t *testing.T, ar *txtar.Archive, name string) []byte {
	t.Helper()
	for _, f := range ar.Files {
		if f.Name == name {
			return f.Data
		}
	}
	t.Fatalf("archive has no %s section", name)
	return nil
}

// ----------------------------------------------------------------------------
// Expressions

func TestBinaryOperators(t *testing.T) {
	ops := []struct{ cs, py string }{
		{"+", "+"}, {"-", "-"}, {"*", "*"}, {"/", "/"}, {"%", "%"},
		{"<<", "<<"}, {">>", ">>"}, {"&", "&"}, {"|", "|"}, {"^", "^"},
		{"==", "=="}, {"!=", "!="}, {"<", "<"}, {"<=", "<="}, {">", ">"}, {">=", ">="},
		{"&&", "and"}, {"||", "or"},
	}
	for _, op := range ops {
		t.Run(op.cs, func(t *testing.T) {
			got, err := convertExpr(t, "a "+op.cs+" b.c", Config{})
			if err != nil {
				t.Fatal(err)
			}
			if want := "(a " + op.py + " b.c)"; got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}
}

func TestExpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1", "1"},
		{"1.0", "1.0"},
		{"2.5f", "2.5"},
		{"1_000_000", "1000000"},
		{"0xFF", "255"},
		{"0b1010", "10"},
		{"010", "10"},
		{"18446744073709551615UL", "18446744073709551615"},
		{"1e3", "1000.0"},
		{`"a\tb"`, `"a\tb"`},
		{`@"C:\dir"`, `"C:\\dir"`},
		{"'x'", `"x"`},
		{"true", "True"},
		{"null", "None"},
		{"-x", "-x"},
		{"!x", "(not x)"},
		{"~x", "~x"},
		{"c ? a : b", "(a if c else b)"},
		{"(a + b) * c", "(((a + b)) * c)"},
		{"f(1, name: 2)", "f(1, name=2)"},
		{"a[i]", "a[i]"},
		{"N.G<T>.M", "N.G[T].M"},
		{"Dictionary<string, List<int>>", "Dictionary[(str, List[int])]"},
		{"(long)x", "int(x)"},
		{"(decimal)x", "float(x)"},
		{"(bool)x", "bool(x)"},
		{"(char)x", "chr(x)"},
		{"(string)x", "str(x)"},
		{"(object)x", "clr.Convert(x, object)"},
		{"(List<int>)x", "clr.Convert(x, List[int])"},
		{"x is int", "isinstance(x, int)"},
		{"x is not null", "(x is not None)"},
		{"x is 3", "(x == 3)"},
		{"x is not \"s\"", `(x != "s")`},
		{"typeof(string)", "str"},
		{"typeof(int?)", "System.Nullable[int]"},
		{"new int?(1)", "1"},
		{"new int?()", "None"},
		{"typeof(int[])", "list"},
		{"default(bool)", "False"},
		{"default(char)", `"\x00"`},
		{"default(double)", "0.0"},
		{"default(string)", "None"},
		{"default", "None"},
		{"new int[n]", "([0] * n)"},
		{"new string[3]", "([None] * 3)"},
		{"new[] { 1, 2 }", "[1, 2]"},
		{"new Exception(\"e\")", `System.Exception("e")`},
		{"new Point(1, 2)", "Point(1, 2)"},
		{"new { a = 1, b }", "AnonymousObject(a=1, b=b)"},
		{"x => x + 1", "lambda x: (x + 1)"},
		{"(a, b) => a", "lambda a, b: a"},
		{"() => 0", "lambda: 0"},
		{"nameof(Foo.Bar)", `"Bar"`},
		{`$"{x}"`, `"{}".format(x)`},
		{`$"{x,5}"`, `"{:>5}".format(x)`},
		{`$"{x:F}"`, `"{:.2f}".format(x)`},
		{`$"{x:E3}"`, `"{:.3E}".format(x)`},
		{`$"{x:e}"`, `"{:.6e}".format(x)`},
		{`$"{x:P0}"`, `"{:.0%}".format(x)`},
		{`$"{x:D4}"`, `"{:04d}".format(x)`},
		{`$"{x:X}"`, `"{:X}".format(x)`},
		{`$"{x:x8}"`, `"{:08x}".format(x)`},
		{`$"{x:G}"`, `"{}".format(x)`},
		{`$"{x:G5}"`, `"{:.5g}".format(x)`},
		{`$"{x,-6:N0}"`, `"{:<6,.0f}".format(x)`},
		{`$"{{{x}}}"`, `"{{{}}}".format(x)`},
		{`$"plain"`, `"plain".format()`},
		{"lambda", "lambda_"},
		{"a ?? b ?? c", "(lambda __arg__: (__arg__ if (__arg__ is not None) else (lambda __arg__: (__arg__ if (__arg__ is not None) else c))(b)))(a)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := convertExpr(t, tt.src, Config{})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConvertBridge(t *testing.T) {
	got, err := convertExpr(t, "(Shape)o", Config{ConvertBridge: "runtime.cast"})
	if err != nil {
		t.Fatal(err)
	}
	if want := "runtime.cast(o, Shape)"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

// ----------------------------------------------------------------------------
// Errors

func TestErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		kind      diag.Kind
		construct string
	}{
		{"two constructors", "class C { C() {} C(int x) {} }", diag.UnsupportedMultiplicity, "constructor"},
		{"two indexes", "var v = a[1, 2];", diag.UnsupportedMultiplicity, "element access"},
		{"duplicate label", "switch (x) { case 1: break; case 1: break; }", diag.UnsupportedMultiplicity, "case label"},
		{"nullable two args", "var v = new int?(1, 2);", diag.UnsupportedMultiplicity, "nullable creation"},
		{"rank two array", "var v = new int[2, 3];", diag.UnsupportedMultiplicity, "array creation"},
		{"field initializer lambda", "class C { Func<int> f = () => { return 1; }; }", diag.InvalidAnchor, "field initializer"},
		{"int too big", "var v = 99999999999999999999;", diag.UnsupportedLiteral, "integer literal"},
		{"using static", "using static System.Math;", diag.Unsupported, "using static"},
		{"object initializer", "var p = new Point { X = 1 };", diag.Unsupported, "object initializer"},
		{"static property", "class C { static int P { get; set; } }", diag.Unsupported, "static property"},
		{"static ctor", "class C { static C() {} }", diag.Unsupported, "static constructor"},
		{"this chaining", "class C { int x; C() : this(1) {} }", diag.Unsupported, "constructor chaining"},
		{"destructor", "class C { ~C() {} }", diag.Unsupported, "destructor"},
		{"indexer", "class C { int this[int i] => i; }", diag.Unsupported, "indexer"},
		{"operator", "class C { public static C operator +(C a, C b) => a; }", diag.Unsupported, "operator"},
		{"event", "class C { event Action E; }", diag.Unsupported, "event"},
		{"null conditional", "var v = a?.b;", diag.Unsupported, "null-conditional access"},
		{"null conditional index", "var v = a?[0];", diag.Unsupported, "null-conditional index"},
		{"ref argument", "f(ref x);", diag.Unsupported, "ref argument"},
		{"out parameter", "void f(out int x) { x = 1; }", diag.Unsupported, "out parameter"},
		{"assignment value", "f(x = 1);", diag.Unsupported, "assignment"},
		{"increment value", "f(x++);", diag.Unsupported, "++"},
		{"pattern designation", "if (o is string s) {}", diag.Unsupported, "pattern designation"},
		{"case guard", "switch (x) { case 1 when y: break; }", diag.Unsupported, "case guard"},
		{"catch filter", "try {} catch (Exception e) when (e != null) {}", diag.Unsupported, "exception filter"},
		{"inner break", "switch (x) { case 1: if (y) break; f(); break; }", diag.Unsupported, "break"},
		{"braced inner break", "switch (x) { case 1: { if (y) break; f(); } }", diag.Unsupported, "break"},
		{"lock", "lock (o) {}", diag.Unsupported, "lock"},
		{"using two", "using (A a = x, b = y) {}", diag.Unsupported, "using"},
		{"using var", "void f() { using var r = open(); }", diag.Unsupported, "using declaration"},
		{"throw expression", "var v = x ?? throw new Exception();", diag.Unsupported, "throw expression"},
		{"async method", "class C { async void M() {} }", diag.Unsupported, "async method"},
		{"async lambda", "var f = async x => x;", diag.Unsupported, "async lambda"},
		{"set only", "class C { int P { set { } } }", diag.Unsupported, "property"},
		{"mixed accessors", "class C { int P { get; set { } } }", diag.Unsupported, "property accessor"},
		{"top level return", "return;", diag.Unsupported, "return"},
		{"top level yield", "yield return 1;", diag.Unsupported, "yield"},
		{"partial type", "partial class C {} partial class C {}", diag.Unsupported, "partial type"},
		{"bad format", `var s = $"{d:yyyy}";`, diag.Unsupported, "format string"},
		{"aligned hex", `var s = $"{d,4:X}";`, diag.Unsupported, "format string"},
		{"this at top level", "var v = this;", diag.Unsupported, "this"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := convert(t, tt.src, Config{})
			if err == nil {
				t.Fatalf("expected an error, got:\n%s", out)
			}
			if out != "" {
				t.Errorf("partial output returned: %q", out)
			}
			if !diag.IsKind(err, tt.kind) {
				t.Fatalf("error %v, want kind %v", err, tt.kind)
			}
			var e *diag.Error
			if errors.As(err, &e) && e.Construct != tt.construct {
				t.Errorf("construct = %q, want %q", e.Construct, tt.construct)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := convert(t, "class C {\n    void M() {\n        lock (this) {}\n    }\n}\n", Config{})
	var e *diag.Error
	if !errors.As(err, &e) {
		t.Fatalf("error %v is not a *diag.Error", err)
	}
	if e.Pos.Line() != 3 {
		t.Errorf("error at line %d, want 3", e.Pos.Line())
	}
}

// ----------------------------------------------------------------------------
// Member resolution

func TestMemberResolution(t *testing.T) {
	src := `
class Counter
{
    static int instances;
    int count;

    void Add(int count)
    {
        this.count += count;
        Bump();
        instances++;
    }

    void Bump() { count++; }

    static void Reset() { instances = 0; }

    void Shadow()
    {
        foreach (var instances in Lists()) { Use(instances); }
    }
}
`
	got := mustConvert(t, src)
	for _, want := range []string{
		"self.count += count\n",
		"self.Bump()\n",
		"Counter.instances += 1\n",
		"self.count += 1\n",
		"Counter.instances = 0\n",
		"for instances in Lists():\n",
		"Use(instances)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestInheritedMembers(t *testing.T) {
	src := `
class A { protected int n = 1; protected static int s; }
class B : A { int Get() => n + s; }
`
	got := mustConvert(t, src)
	if want := "return (self.n + A.s)\n"; !strings.Contains(got, want) {
		t.Errorf("output lacks %q:\n%s", want, got)
	}
}

func TestBaseAccess(t *testing.T) {
	src := `
class A { public virtual int F() => 1; }
class B : A
{
    public override int F() => base.F() + 1;
    class Inner : A
    {
        public override int F() => base.F();
    }
}
`
	got := mustConvert(t, src)
	for _, want := range []string{
		"return (super(B, self).F() + 1)\n",
		"return super(B.Inner, self).F()\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

// ----------------------------------------------------------------------------
// Constructor synthesis

func TestConstructorOrdering(t *testing.T) {
	src := `
class P : Q
{
    int a = 1;
    int b = 2;
    int c;
    P(int x) : base(x)
    {
        if (x > 0) { a = 3; }
        b = x;
    }
}
`
	want := `class P(Q):
    def __init__(self, x):
        super(P, self).__init__(x)
        self.a = 1
        self.c = None
        if (x > 0):
            self.a = 3
        self.b = x
`
	if got := mustConvert(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFieldInitializerScope(t *testing.T) {
	// the initializer's x is the field, not the constructor parameter
	src := `
class C
{
    int x = 1;
    int y = x;
    C(int x) { }
}
`
	got := mustConvert(t, src)
	if want := "self.y = self.x\n"; !strings.Contains(got, want) {
		t.Errorf("output lacks %q:\n%s", want, got)
	}
}

func TestInterfaceOnly(t *testing.T) {
	got := mustConvert(t, "interface I { void M(); }\nclass C : I { }\n")
	if want := "class C(object):\n    pass\n"; got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestAutoPropertyInitializer(t *testing.T) {
	got := mustConvert(t, "class C { public int P { get; init; } = 7; }")
	want := `class C(object):
    def __init__(self):
        self._P = 7
    @property
    def P(self):
        return self._P
    @P.setter
    def P(self, value):
        self._P = value
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

// ----------------------------------------------------------------------------
// Reentrancy

func TestConcurrentTranslations(t *testing.T) {
	src := "class C { int F(int n) { switch (n + 1) { case 1: return 1; } return (x => { return x; })(n); } }"
	want := mustConvert(t, src)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := pipeline(src, Config{})
			if err != nil {
				errs <- err.Error()
				return
			}
			if got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent translation differs: %s", e)
	}
}
