package resolve_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"minerva/internal/resolve"
	"minerva/internal/runplan"
)

func testPlan() *runplan.Plan {
	return &runplan.Plan{
		Path: "plan.toml",
		Global: runplan.Settings{
			Mode: "hourly",
			Env:  map[string]string{"tz": "UTC", "LC_ALL": "C"},
			Options: map[string]string{
				"max_todos":   "25",
				"shared_args": "--quiet",
			},
			Providers: map[string]string{"summary": "openai"},
			Tokens:    map[string]string{"openai": "global-token"},
			Action: map[string]runplan.ActionOverride{
				"summarize": {Args: []string{"--style", "brief"}},
			},
		},
		Units: []runplan.Unit{
			{
				Name:     "hourly",
				Schedule: "0 * * * *",
				Enabled:  true,
			},
			{
				Name:     "nightly",
				Schedule: "30 2 * * *",
				Enabled:  true,
				Settings: runplan.Settings{
					Mode:    "daily",
					Options: map[string]string{"max_todos": "100"},
					Tokens:  map[string]string{"openai": "unit-token"},
					Action: map[string]runplan.ActionOverride{
						"summarize": {Args: []string{"--tone", "formal"}},
					},
				},
			},
		},
	}
}

func TestResolveUnknownUnit(t *testing.T) {
	_, err := resolve.Resolve(testPlan(), "ghost", resolve.Options{})
	var notFound *resolve.UnitNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected UnitNotFoundError, got %v", err)
	}
	if notFound.Unit != "ghost" {
		t.Fatalf("unexpected unit in error: %q", notFound.Unit)
	}
}

func TestResolveModePrecedence(t *testing.T) {
	plan := testPlan()

	resolved, err := resolve.Resolve(plan, "hourly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Mode != "hourly" {
		t.Fatalf("expected global mode, got %q", resolved.Mode)
	}

	resolved, err = resolve.Resolve(plan, "nightly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Mode != "daily" {
		t.Fatalf("expected unit mode to win, got %q", resolved.Mode)
	}

	resolved, err = resolve.Resolve(plan, "nightly", resolve.Options{
		Set: map[string]string{"mode": "hourly"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Mode != "hourly" {
		t.Fatalf("expected override mode to win, got %q", resolved.Mode)
	}

	plan.Global.Mode = ""
	plan.Units[0].Mode = ""
	resolved, err = resolve.Resolve(plan, "hourly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Mode != "hourly" {
		t.Fatalf("expected unit name as mode fallback, got %q", resolved.Mode)
	}
}

func TestResolveActionDefaultsFollowMode(t *testing.T) {
	plan := testPlan()

	resolved, err := resolve.Resolve(plan, "nightly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := []string{"fetch", "summarize", "publish", "podcast"}
	if !reflect.DeepEqual(resolved.Actions, want) {
		t.Fatalf("unexpected actions: got %v want %v", resolved.Actions, want)
	}
}

func TestResolveActionListsConcatenate(t *testing.T) {
	plan := testPlan()
	plan.Global.Actions = []string{"fetch"}
	plan.Units[1].Actions = []string{"summarise", "publish"}

	resolved, err := resolve.Resolve(plan, "nightly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := []string{"fetch", "summarize", "publish"}
	if !reflect.DeepEqual(resolved.Actions, want) {
		t.Fatalf("expected global then unit actions with alias folded, got %v", resolved.Actions)
	}
}

func TestResolveScalarTablesUnitWins(t *testing.T) {
	resolved, err := resolve.Resolve(testPlan(), "nightly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Options["max_todos"] != "100" {
		t.Fatalf("expected unit value for max_todos, got %q", resolved.Options["max_todos"])
	}
	if resolved.Options["shared_args"] != "--quiet" {
		t.Fatalf("expected inherited global shared_args, got %q", resolved.Options["shared_args"])
	}
	if resolved.Tokens["openai"] != "unit-token" {
		t.Fatalf("expected unit token, got %q", resolved.Tokens["openai"])
	}
}

func TestResolveActionArgsConcatenate(t *testing.T) {
	resolved, err := resolve.Resolve(testPlan(), "nightly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := []string{"--style", "brief", "--tone", "formal"}
	if !reflect.DeepEqual(resolved.ActionArgs["summarize"], want) {
		t.Fatalf("expected global then unit args, got %v", resolved.ActionArgs["summarize"])
	}
}

func TestResolveConfigPathAliasMovesToPaths(t *testing.T) {
	plan := testPlan()
	plan.Global.Options["config_path"] = "/etc/minerva/minerva.toml"

	resolved, err := resolve.Resolve(plan, "hourly", resolve.Options{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if _, ok := resolved.Options["config_path"]; ok {
		t.Fatal("config_path should be removed from options")
	}
	if resolved.Paths["config_path"] != "/etc/minerva/minerva.toml" {
		t.Fatalf("config_path not relocated: %v", resolved.Paths)
	}
}

func TestResolveEnvironmentPinsPlanValues(t *testing.T) {
	resolved, err := resolve.Resolve(testPlan(), "nightly", resolve.Options{
		Environ: []string{
			"MINERVA_MAX_TODOS=7",
			"MINERVA_TOKEN_OPENAI=env-token",
		},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Options["max_todos"] != "7" {
		t.Fatalf("expected environment to pin max_todos, got %q", resolved.Options["max_todos"])
	}
	if resolved.Tokens["openai"] != "env-token" {
		t.Fatalf("expected environment to pin token, got %q", resolved.Tokens["openai"])
	}
}

func TestResolveCLIOverridesBeatEnvironment(t *testing.T) {
	resolved, err := resolve.Resolve(testPlan(), "nightly", resolve.Options{
		Environ: []string{"MINERVA_MAX_TODOS=7"},
		Set:     map[string]string{"options.max_todos": "3"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Options["max_todos"] != "3" {
		t.Fatalf("expected CLI override to win, got %q", resolved.Options["max_todos"])
	}
}

func TestResolveRejectsUnknownOverrideTable(t *testing.T) {
	_, err := resolve.Resolve(testPlan(), "hourly", resolve.Options{
		Set: map[string]string{"secrets.key": "x"},
	})
	if err == nil {
		t.Fatal("expected error for unknown override table")
	}
}

func TestResolvePathDefaultsCascade(t *testing.T) {
	resolved, err := resolve.Resolve(testPlan(), "hourly", resolve.Options{
		Environ: []string{"HOME=/home/alex"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	data := filepath.Join("/home/alex", ".local", "share", "minerva")
	unitState := filepath.Join(data, "state", "hourly")
	checks := map[string]string{
		"data_dir":       data,
		"state_dir":      filepath.Join(data, "state"),
		"unit_state_dir": unitState,
		"todo_dump_file": filepath.Join(unitState, "todo_dump.json"),
		"summary_file":   filepath.Join(unitState, "todo_summary.txt"),
		"speech_file":    filepath.Join(unitState, "todo-summary.wav"),
		"run_cache_file": filepath.Join(unitState, "summary_run_marker.txt"),
	}
	for key, want := range checks {
		if got := resolved.Paths[key]; got != want {
			t.Fatalf("paths[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestResolveStateDirOverrideMovesDerivedFiles(t *testing.T) {
	resolved, err := resolve.Resolve(testPlan(), "hourly", resolve.Options{
		Environ: []string{
			"HOME=/home/alex",
			"MINERVA_STATE_DIR=/srv/minerva/state",
		},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	unitState := filepath.Join("/srv/minerva/state", "hourly")
	if resolved.Paths["unit_state_dir"] != unitState {
		t.Fatalf("unit_state_dir did not follow state_dir: %q", resolved.Paths["unit_state_dir"])
	}
	if resolved.Paths["todo_dump_file"] != filepath.Join(unitState, "todo_dump.json") {
		t.Fatalf("todo_dump_file did not follow state_dir: %q", resolved.Paths["todo_dump_file"])
	}
	if resolved.Paths["prompts_dir"] != filepath.Join("/home/alex", ".local", "share", "minerva", "prompts") {
		t.Fatalf("prompts_dir should still derive from data_dir: %q", resolved.Paths["prompts_dir"])
	}
}

func TestResolveExpandsTildePaths(t *testing.T) {
	plan := testPlan()
	plan.Global.Paths = map[string]string{"data_dir": "~/minerva-data"}

	resolved, err := resolve.Resolve(plan, "hourly", resolve.Options{
		Environ: []string{"HOME=/home/alex"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Paths["data_dir"] != "/home/alex/minerva-data" {
		t.Fatalf("tilde not expanded: %q", resolved.Paths["data_dir"])
	}
	if resolved.Paths["state_dir"] != "/home/alex/minerva-data/state" {
		t.Fatalf("derived path did not follow expansion: %q", resolved.Paths["state_dir"])
	}
}

func TestResolveExplicitPathWinsOverCascade(t *testing.T) {
	plan := testPlan()
	plan.Units[0].Paths = map[string]string{"todo_dump_file": "/tmp/dump.json"}

	resolved, err := resolve.Resolve(plan, "hourly", resolve.Options{
		Environ: []string{"HOME=/home/alex"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Paths["todo_dump_file"] != "/tmp/dump.json" {
		t.Fatalf("explicit plan path lost: %q", resolved.Paths["todo_dump_file"])
	}
}

func TestResolveExportsOrderedAndForced(t *testing.T) {
	resolved, err := resolve.Resolve(testPlan(), "nightly", resolve.Options{
		Environ: []string{"HOME=/home/alex"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	byName := make(map[string]resolve.Export, len(resolved.Exports))
	var order []string
	for _, export := range resolved.Exports {
		byName[export.Name] = export
		order = append(order, export.Name)
	}

	if export := byName["MINERVA_SELECTED_UNIT"]; export.Value != "nightly" || !export.Force {
		t.Fatalf("unexpected selected unit export: %+v", export)
	}
	if export := byName["MINERVA_SELECTED_MODE"]; export.Value != "daily" || !export.Force {
		t.Fatalf("unexpected selected mode export: %+v", export)
	}
	if export := byName["MINERVA_SELECTED_ACTIONS"]; export.Value != "fetch summarize publish podcast" {
		t.Fatalf("unexpected selected actions export: %+v", export)
	}
	if export := byName["MINERVA_ACTION_SUMMARIZE_ARGS"]; export.Value != "--style brief --tone formal" {
		t.Fatalf("unexpected action args export: %+v", export)
	}
	if export := byName["MINERVA_TOKEN_OPENAI"]; export.Value != "unit-token" || export.Force {
		t.Fatalf("unexpected token export: %+v", export)
	}
	if export := byName["LC_ALL"]; export.Value != "C" {
		t.Fatalf("all-uppercase env key should export verbatim: %+v", export)
	}

	if order[len(order)-1] != "MINERVA_SELECTED_UNIT" || order[len(order)-2] != "MINERVA_SELECTED_MODE" {
		t.Fatalf("selection exports must come last, got tail %v", order[len(order)-3:])
	}

	again, err := resolve.Resolve(testPlan(), "nightly", resolve.Options{
		Environ: []string{"HOME=/home/alex"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !reflect.DeepEqual(resolved.Exports, again.Exports) {
		t.Fatal("resolution is not deterministic across identical inputs")
	}
}
