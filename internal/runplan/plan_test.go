package runplan_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"minerva/internal/runplan"
)

func writePlan(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run-plan.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return path
}

func TestParseFullDocument(t *testing.T) {
	raw := []byte(`
[global]
mode = "hourly"
actions = ["fetch", "Summarise"]

[global.env]
tz = "UTC"

[global.options]
max_todos = 25
verbose = true

[global.action.summarize]
args = ["--style", "brief"]

[[unit]]
name = "hourly"
schedule = "0 * * * *"

[[unit]]
name = "nightly"
schedule = "30 2 * * *"
mode = "daily"
enabled = false

[unit.options]
podcast_language = "en"
`)

	plan, err := runplan.Parse(raw, "plan.toml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if plan.Global.Mode != "hourly" {
		t.Fatalf("unexpected global mode: %q", plan.Global.Mode)
	}
	if got, want := plan.Global.Actions, []string{"fetch", "summarize"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected global actions: got %v want %v", got, want)
	}
	if plan.Global.Env["tz"] != "UTC" {
		t.Fatalf("unexpected env table: %v", plan.Global.Env)
	}
	if plan.Global.Options["max_todos"] != "25" {
		t.Fatalf("expected integer option coerced to text, got %q", plan.Global.Options["max_todos"])
	}
	if plan.Global.Options["verbose"] != "true" {
		t.Fatalf("expected boolean option coerced to text, got %q", plan.Global.Options["verbose"])
	}
	if got, want := plan.Global.Action["summarize"].Args, []string{"--style", "brief"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected action args: got %v want %v", got, want)
	}

	if len(plan.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(plan.Units))
	}
	hourly := plan.Unit("hourly")
	if hourly == nil || !hourly.Enabled || hourly.Schedule != "0 * * * *" {
		t.Fatalf("unexpected hourly unit: %+v", hourly)
	}
	nightly := plan.Unit("nightly")
	if nightly == nil {
		t.Fatal("nightly unit missing")
	}
	if nightly.Enabled {
		t.Fatal("expected nightly disabled")
	}
	if nightly.Mode != "daily" {
		t.Fatalf("unexpected nightly mode: %q", nightly.Mode)
	}
	if nightly.Options["podcast_language"] != "en" {
		t.Fatalf("unexpected nightly options: %v", nightly.Options)
	}
	if plan.Unit("missing") != nil {
		t.Fatal("expected nil for unknown unit")
	}
}

func TestParseAccumulatesDocumentIssues(t *testing.T) {
	raw := []byte(`
[global]
mode = "hourly"
enabled_units = 3

[[unit]]
name = "first"
schedule = "0 * * * *"
enabled = "yes"

[unit.env]
bad = [1, 2]
`)

	_, err := runplan.Parse(raw, "plan.toml")
	var docErr *runplan.DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocumentError, got %v", err)
	}
	if len(docErr.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(docErr.Issues), docErr.Issues)
	}
	message := docErr.Error()
	if !strings.Contains(message, "enabled must be a boolean") {
		t.Fatalf("missing enabled issue in %q", message)
	}
	if !strings.Contains(message, `unit="first"`) {
		t.Fatalf("issue not scoped to unit: %q", message)
	}
}

func TestParseRejectsMalformedTOML(t *testing.T) {
	_, err := runplan.Parse([]byte("[global\nmode = "), "plan.toml")
	var docErr *runplan.DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocumentError, got %v", err)
	}
	if len(docErr.Issues) == 0 || !strings.Contains(docErr.Issues[0].Message, "TOML parse error") {
		t.Fatalf("expected TOML parse issue, got %v", docErr.Issues)
	}
}

func TestLoadMissingFileFallsBackToDefaultPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	plan, err := runplan.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if plan.Path != path {
		t.Fatalf("expected requested path kept, got %q", plan.Path)
	}
	if len(plan.Units) != 2 {
		t.Fatalf("expected built-in units, got %d", len(plan.Units))
	}
	daily := plan.Unit("daily")
	if daily == nil || daily.Schedule != "0 6 * * *" {
		t.Fatalf("unexpected daily unit: %+v", daily)
	}
	if got, want := daily.Actions, []string{"fetch", "summarize", "publish", "podcast"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected daily actions: got %v want %v", got, want)
	}
}

func TestLoadValidatesPresentFile(t *testing.T) {
	path := writePlan(t, `
[[unit]]
name = "broken"
schedule = "not cron"
`)
	_, err := runplan.Load(path)
	var valErr *runplan.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestNormalizeAction(t *testing.T) {
	cases := map[string]string{
		"  Fetch ":  "fetch",
		"SUMMARISE": "summarize",
		"summarize": "summarize",
		"podcast":   "podcast",
		"":          "",
	}
	for input, want := range cases {
		if got := runplan.NormalizeAction(input); got != want {
			t.Fatalf("NormalizeAction(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDefaultActionsByMode(t *testing.T) {
	if got := runplan.DefaultActions("daily"); len(got) != 4 || got[3] != runplan.ActionPodcast {
		t.Fatalf("unexpected daily defaults: %v", got)
	}
	if got := runplan.DefaultActions("hourly"); len(got) != 3 {
		t.Fatalf("unexpected hourly defaults: %v", got)
	}
	if got := runplan.DefaultActions("anything-else"); len(got) != 3 {
		t.Fatalf("unexpected fallback defaults: %v", got)
	}
}

func TestSortedKeys(t *testing.T) {
	table := map[string]string{"zeta": "1", "alpha": "2", "mid": "3"}
	if got, want := runplan.SortedKeys(table), []string{"alpha", "mid", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
}
