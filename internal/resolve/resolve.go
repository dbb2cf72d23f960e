package resolve

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"minerva/internal/runplan"
)

// Export is one environment-variable assignment computed by resolution.
// Entries are ordered; when two entries share a name the first one wins
// unless a later entry is marked Force (the selection variables are).
type Export struct {
	Name  string
	Value string
	Force bool
}

// ResolvedUnit is the fully merged configuration for one unit. It is built
// fresh per invocation and discarded after the pipeline completes; nothing
// persists it.
type ResolvedUnit struct {
	Name    string
	Mode    string
	Actions []string

	Env       map[string]string
	Paths     map[string]string
	Options   map[string]string
	Providers map[string]string
	Tokens    map[string]string

	// ActionArgs holds per-action override arguments, global entries first.
	ActionArgs map[string][]string

	// Exports is the deterministic, ordered list of environment assignments
	// the executor applies before invoking any collaborator.
	Exports []Export
}

// Options carries the two override layers above the plan document plus the
// ambient defaults resolution needs.
type Options struct {
	// Environ is a snapshot of the process environment ("KEY=value" entries).
	// A variable already present there overrides the plan's value for the
	// matching export name.
	Environ []string

	// Set holds CLI overrides, the highest-precedence layer. Keys are either
	// "mode" or "<table>.<key>" where table is one of env, paths, options,
	// providers, tokens.
	Set map[string]string
}

// Resolve merges the plan's layers for the named unit. It fails with
// UnitNotFoundError when the plan defines no such unit.
func Resolve(plan *runplan.Plan, unitName string, opts Options) (*ResolvedUnit, error) {
	unit := plan.Unit(unitName)
	if unit == nil {
		return nil, &UnitNotFoundError{Unit: unitName, Plan: plan.Path}
	}

	environ := parseEnviron(opts.Environ)
	overrides, err := parseOverrides(opts.Set)
	if err != nil {
		return nil, err
	}

	mode := firstNonEmpty(overrides.mode, unit.Mode, plan.Global.Mode, unit.Name)

	actions := make([]string, 0, len(plan.Global.Actions)+len(unit.Actions))
	for _, action := range append(append([]string{}, plan.Global.Actions...), unit.Actions...) {
		if normalized := runplan.NormalizeAction(action); normalized != "" {
			actions = append(actions, normalized)
		}
	}
	if len(actions) == 0 {
		actions = runplan.DefaultActions(mode)
	}

	resolved := &ResolvedUnit{
		Name:       unit.Name,
		Mode:       mode,
		Actions:    actions,
		Env:        mergeTables(plan.Global.Env, unit.Env),
		Paths:      mergeTables(plan.Global.Paths, unit.Paths),
		Options:    mergeTables(plan.Global.Options, unit.Options),
		Providers:  mergeTables(plan.Global.Providers, unit.Providers),
		Tokens:     mergeTables(plan.Global.Tokens, unit.Tokens),
		ActionArgs: mergeActionArgs(plan.Global.Action, unit.Action),
	}

	// Legacy alias: config_path declared under [options] belongs to [paths].
	if value, ok := resolved.Options["config_path"]; ok {
		resolved.Paths["config_path"] = value
		delete(resolved.Options, "config_path")
	}

	layerTable(resolved.Env, EnvName, environ, overrides.tables["env"])
	layerTable(resolved.Options, OptionEnvName, environ, overrides.tables["options"])
	layerTable(resolved.Providers, ProviderEnvName, environ, overrides.tables["providers"])
	layerTable(resolved.Tokens, TokenEnvName, environ, overrides.tables["tokens"])
	resolvePaths(resolved, environ, overrides.tables["paths"])

	resolved.Exports = buildExports(resolved)
	return resolved, nil
}

func mergeTables(global, unit map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(unit))
	for key, value := range global {
		merged[key] = value
	}
	for key, value := range unit {
		merged[key] = value
	}
	return merged
}

func mergeActionArgs(global, unit map[string]runplan.ActionOverride) map[string][]string {
	merged := make(map[string][]string, len(global)+len(unit))
	for name, override := range global {
		merged[name] = append([]string{}, override.Args...)
	}
	for name, override := range unit {
		merged[name] = append(merged[name], override.Args...)
	}
	return merged
}

// layerTable applies the environment-override and CLI-override layers to a
// merged table in place. The environment pins a key when the variable that
// key exports to is already set; a CLI override beats both.
func layerTable(table map[string]string, exportName func(string) string, environ map[string]string, cli map[string]string) {
	for key := range table {
		if value, ok := environ[exportName(key)]; ok {
			table[key] = value
		}
	}
	for key, value := range cli {
		table[key] = value
	}
}

// resolvePaths layers the well-known path vocabulary so derived defaults
// cascade from whatever layer won the key they derive from: overriding
// state_dir via the environment moves every default file under it.
func resolvePaths(resolved *ResolvedUnit, environ, cli map[string]string) {
	paths := resolved.Paths
	pick := func(key, fallback string) string {
		if value, ok := cli[key]; ok {
			return value
		}
		if value, ok := environ[PathEnvName(key)]; ok {
			return value
		}
		if value, ok := paths[key]; ok {
			return value
		}
		return fallback
	}

	paths["data_dir"] = pick("data_dir", defaultDataDir(environ))
	paths["state_dir"] = pick("state_dir", filepath.Join(paths["data_dir"], "state"))
	paths["unit_state_dir"] = pick("unit_state_dir", filepath.Join(paths["state_dir"], resolved.Name))
	paths["prompts_dir"] = pick("prompts_dir", filepath.Join(paths["data_dir"], "prompts"))

	unitState := paths["unit_state_dir"]
	paths["run_cache_file"] = pick("run_cache_file", filepath.Join(unitState, "summary_run_marker.txt"))
	paths["todo_dump_file"] = pick("todo_dump_file", filepath.Join(unitState, "todo_dump.json"))
	paths["summary_file"] = pick("summary_file", filepath.Join(unitState, "todo_summary.txt"))
	paths["speech_file"] = pick("speech_file", filepath.Join(unitState, "todo-summary.wav"))
	paths["podcast_text_file"] = pick("podcast_text_file", filepath.Join(unitState, "random_podcast.txt"))
	paths["podcast_audio_file"] = pick("podcast_audio_file", filepath.Join(unitState, "random-podcast.wav"))
	paths["podcast_topic_file"] = pick("podcast_topic_file", filepath.Join(unitState, "random_podcast_topics.txt"))

	for key := range paths {
		if _, derived := derivedPathKeys[key]; derived {
			continue
		}
		if value, ok := environ[PathEnvName(key)]; ok {
			paths[key] = value
		}
	}
	for key, value := range cli {
		paths[key] = value
	}

	for key, value := range paths {
		paths[key] = expandPath(environ, value)
	}
}

// expandPath resolves a leading tilde against the caller's HOME so plan
// authors can write portable paths.
func expandPath(environ map[string]string, path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home := strings.TrimSpace(environ["HOME"])
	if home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// derivedPathKeys marks the vocabulary resolvePaths already layered; the
// trailing passes must not re-apply lower layers on top of them.
var derivedPathKeys = map[string]struct{}{
	"data_dir": {}, "state_dir": {}, "unit_state_dir": {}, "prompts_dir": {},
	"run_cache_file": {}, "todo_dump_file": {}, "summary_file": {},
	"speech_file": {}, "podcast_text_file": {}, "podcast_audio_file": {},
	"podcast_topic_file": {},
}

func defaultDataDir(environ map[string]string) string {
	if home := strings.TrimSpace(environ["HOME"]); home != "" {
		return filepath.Join(home, ".local", "share", "minerva")
	}
	return filepath.Join("/var", "lib", "minerva")
}

func buildExports(resolved *ResolvedUnit) []Export {
	var exports []Export
	appendTable := func(table map[string]string, exportName func(string) string) {
		for _, key := range runplan.SortedKeys(table) {
			exports = append(exports, Export{Name: exportName(key), Value: table[key]})
		}
	}

	appendTable(resolved.Env, EnvName)
	appendTable(resolved.Paths, PathEnvName)
	appendTable(resolved.Options, OptionEnvName)
	appendTable(resolved.Providers, ProviderEnvName)
	appendTable(resolved.Tokens, TokenEnvName)

	exports = append(exports, Export{
		Name:  EnvSelectedActions,
		Value: strings.Join(resolved.Actions, " "),
		Force: true,
	})

	actionNames := make([]string, 0, len(resolved.ActionArgs))
	for name := range resolved.ActionArgs {
		actionNames = append(actionNames, name)
	}
	sort.Strings(actionNames)
	for _, name := range actionNames {
		args := resolved.ActionArgs[name]
		if len(args) == 0 {
			continue
		}
		exports = append(exports, Export{
			Name:  ActionArgsEnvName(name),
			Value: strings.Join(args, " "),
		})
	}

	exports = append(exports,
		Export{Name: EnvSelectedMode, Value: resolved.Mode, Force: true},
		Export{Name: EnvSelectedUnit, Value: resolved.Name, Force: true},
	)
	return exports
}

type overrideSet struct {
	mode   string
	tables map[string]map[string]string
}

func parseOverrides(set map[string]string) (overrideSet, error) {
	overrides := overrideSet{tables: map[string]map[string]string{}}
	for key, value := range set {
		if key == "mode" {
			overrides.mode = strings.TrimSpace(value)
			continue
		}
		table, entry, ok := strings.Cut(key, ".")
		if !ok {
			return overrides, fmt.Errorf("invalid override %q: expected mode or <table>.<key>", key)
		}
		switch table {
		case "env", "paths", "options", "providers", "tokens":
		default:
			return overrides, fmt.Errorf("invalid override %q: unknown table %q", key, table)
		}
		entry = strings.TrimSpace(entry)
		if entry == "" {
			return overrides, fmt.Errorf("invalid override %q: empty key", key)
		}
		if overrides.tables[table] == nil {
			overrides.tables[table] = map[string]string{}
		}
		overrides.tables[table][entry] = value
	}
	return overrides, nil
}

func parseEnviron(environ []string) map[string]string {
	parsed := make(map[string]string, len(environ))
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		parsed[name] = value
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
