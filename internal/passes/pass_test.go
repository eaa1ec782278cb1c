package passes

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/you-not-fish/cs2py/internal/syntax"
)

func parse(t *testing.T, src string) *syntax.File {
	t.Helper()
	p := syntax.NewParser("test.cs", strings.NewReader(src), nil)
	f := p.Parse()
	if err := p.FirstError(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func identity(f *syntax.File) (*syntax.File, error) { return f, nil }

func TestRunEmpty(t *testing.T) {
	f := parse(t, "x = 1;")
	out, err := Run(f, nil, Config{})
	if err != nil {
		t.Fatalf("Run with no passes: %v", err)
	}
	if out != f {
		t.Error("Run with no passes returned a different tree")
	}
}

func TestRunSinglePass(t *testing.T) {
	f := parse(t, "x = 1;")

	called := false
	passes := []Pass{
		{Name: "test", Fn: func(f *syntax.File) (*syntax.File, error) {
			called = true
			return f, nil
		}},
	}

	if _, err := Run(f, passes, Config{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !called {
		t.Error("pass was not called")
	}
}

func TestRunWithVerify(t *testing.T) {
	f := parse(t, "class C { void M() { int x = 1; } }")

	passes := []Pass{{Name: "noop", Fn: identity}}
	if _, err := Run(f, passes, Config{Verify: true}); err != nil {
		t.Fatalf("Run with verify: %v", err)
	}
}

func TestRunVerifyCatchesBadPass(t *testing.T) {
	f := parse(t, "x = 1;")

	passes := []Pass{
		{Name: "broken", Fn: func(f *syntax.File) (*syntax.File, error) {
			out := *f
			out.Decls = append([]syntax.Decl{nil}, f.Decls...)
			return &out, nil
		}},
	}
	_, err := Run(f, passes, Config{Verify: true})
	if err == nil || !strings.Contains(err.Error(), "verify after broken") {
		t.Fatalf("Run error = %v, want verify after broken", err)
	}
}

func TestRunMultiplePasses(t *testing.T) {
	f := parse(t, "x = 1;")

	var order []string
	passes := []Pass{
		{Name: "first", Fn: func(f *syntax.File) (*syntax.File, error) {
			order = append(order, "first")
			return f, nil
		}},
		{Name: "second", Fn: func(f *syntax.File) (*syntax.File, error) {
			order = append(order, "second")
			return f, nil
		}},
	}

	if _, err := Run(f, passes, Config{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("pass order = %v, want [first second]", order)
	}
}

func TestRunStopsOnError(t *testing.T) {
	f := parse(t, "x = 1;")
	boom := errors.New("boom")

	ran := false
	passes := []Pass{
		{Name: "fail", Fn: func(*syntax.File) (*syntax.File, error) { return nil, boom }},
		{Name: "after", Fn: func(f *syntax.File) (*syntax.File, error) {
			ran = true
			return f, nil
		}},
	}
	out, err := Run(f, passes, Config{})
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want boom", err)
	}
	if !strings.HasPrefix(err.Error(), "fail: ") {
		t.Errorf("error %q is not prefixed with the pass name", err)
	}
	if out != nil || ran {
		t.Errorf("Run continued after a failing pass (out = %v, ran = %v)", out, ran)
	}
}

func TestDump(t *testing.T) {
	f := parse(t, "var f = () => { return 1; };")

	tests := []struct {
		before, after string
		want          []string
		notWant       []string
	}{
		{before: "hoist", want: []string{"--- before hoist (test.cs) ---"}, notWant: []string{"--- after"}},
		{after: "hoist", want: []string{"--- after hoist (test.cs) ---", "lambda__0"}, notWant: []string{"--- before"}},
		{before: "*", after: "*", want: []string{"--- before hoist", "--- after hoist"}},
		{before: "other", notWant: []string{"---"}},
	}
	for _, tt := range tests {
		t.Run(tt.before+"/"+tt.after, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := Run(f, Default(), Config{DumpBefore: tt.before, DumpAfter: tt.after, Output: &buf})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("dump missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("dump unexpectedly contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestDefaultHoists(t *testing.T) {
	f := parse(t, "var f = (int a) => { return a; };")
	if err := NoBlockLambdas(f); err == nil {
		t.Fatal("NoBlockLambdas accepted a block-bodied lambda")
	}

	out, err := Run(f, Default(), Config{Verify: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := NoBlockLambdas(out); err != nil {
		t.Errorf("after Default: %v", err)
	}
	if got := Names(Default()); len(got) != 1 || got[0] != "hoist" {
		t.Errorf("Names(Default()) = %v, want [hoist]", got)
	}
}
