package e2e

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/you-not-fish/cs2py"
	"github.com/you-not-fish/cs2py/internal/host"
)

// TestE2E runs end-to-end tests for all .cs files in testdata/.
// Each test:
//  1. Runs the full pipeline: parse → hoist → translate → print
//  2. Writes the Python source to a temp .py file
//  3. Runs it with python3 and the runtime prelude, capturing stdout
//  4. Compares output against the .golden file
func TestE2E(t *testing.T) {
	testFiles, err := filepath.Glob("testdata/*.cs")
	if err != nil {
		t.Fatal(err)
	}
	if len(testFiles) == 0 {
		t.Fatal("no .cs test files found in testdata/")
	}

	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not found, skipping E2E tests")
	}

	for _, testFile := range testFiles {
		name := strings.TrimSuffix(filepath.Base(testFile), ".cs")
		t.Run(name, func(t *testing.T) {
			runE2ETest(t, testFile)
		})
	}
}

// runE2ETest runs a single end-to-end test.
func runE2ETest(t *testing.T, csFile string) {
	t.Helper()

	goldenFile := strings.TrimSuffix(csFile, ".cs") + ".golden"
	expected, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}

	// Step 1: Convert .cs → .py (in-process).
	pyFile := filepath.Join(t.TempDir(), "output.py")
	code := convertTo(t, csFile, pyFile)

	// Step 2: Run and capture stdout.
	res, err := host.Run(context.Background(), host.Config{Python: "python3"}, host.Program{
		Code:     "import clr\n" + code,
		Filename: pyFile,
	})
	if err != nil {
		if ee, ok := err.(*host.ExecError); ok {
			t.Fatalf("execution failed:\n%s\nprogram:\n%s", ee.Stderr, code)
		}
		t.Fatalf("execution failed: %v", err)
	}

	// Step 3: Compare output.
	got := res.Stdout
	want := string(expected)
	if got != want {
		t.Errorf("output mismatch:\ngot:  %q\nwant: %q\nprogram:\n%s", got, want, code)
	}
}

// convertTo converts csFile and writes the Python source to pyFile.
func convertTo(t *testing.T, csFile, pyFile string) string {
	t.Helper()

	src, err := os.ReadFile(csFile)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	code, err := cs2py.Convert(string(src), cs2py.WithFilename(csFile))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if err := os.WriteFile(pyFile, []byte(code), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return code
}
