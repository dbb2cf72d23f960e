// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// WritePlan writes TOML plan contents into a temp directory and returns the
// plan path.
func WritePlan(t testing.TB, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run-plan.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return path
}

// WriteFile creates path (and parent directories) with the given contents.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// RequireEqualText fails the test with a unified diff when got differs from
// want. Intended for multi-line rendered output.
func RequireEqualText(t testing.TB, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	t.Fatalf("rendered text mismatch:\n%s", diff)
}
