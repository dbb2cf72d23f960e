package runplan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var actionAliases = map[string]string{
	"summarise": "summarize",
}

// NormalizeAction lowercases, trims, and de-aliases an action token.
// "summarise" is accepted as a spelling alias for "summarize" at every layer.
func NormalizeAction(token string) string {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if canonical, ok := actionAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// ActionOverride carries extra arguments for one named action.
type ActionOverride struct {
	Args []string
}

// Settings is the configuration table shared by the [global] section and each
// [[unit]] definition. All maps may be nil when the section omits them.
type Settings struct {
	Mode      string
	Env       map[string]string
	Paths     map[string]string
	Options   map[string]string
	Providers map[string]string
	Tokens    map[string]string
	Actions   []string
	Action    map[string]ActionOverride
}

// Unit is one named, independently schedulable job definition.
type Unit struct {
	Name     string
	Schedule string
	Enabled  bool
	Settings
}

// Plan is a run-plan document: global defaults plus ordered unit definitions.
type Plan struct {
	Global Settings
	Units  []Unit
	// Path is the file the plan was loaded from, or the requested path when
	// the built-in default plan was substituted for a missing file.
	Path string
}

// Unit returns the definition with the given name, or nil.
func (p *Plan) Unit(name string) *Unit {
	for i := range p.Units {
		if p.Units[i].Name == name {
			return &p.Units[i]
		}
	}
	return nil
}

// Load reads and validates a run plan. A missing file is not an error: the
// built-in default plan is returned instead. A present but malformed file
// yields a DocumentError; a structurally sound plan that breaks invariants
// yields a ValidationError.
func Load(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			plan := DefaultPlan(path)
			if verr := plan.Validate(); verr != nil {
				return nil, verr
			}
			return plan, nil
		}
		return nil, fmt.Errorf("read run plan: %w", err)
	}

	plan, err := Parse(raw, path)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Parse builds a plan from TOML bytes, accumulating every structural problem
// found rather than stopping at the first.
func Parse(raw []byte, path string) (*Plan, error) {
	var document map[string]any
	if err := toml.Unmarshal(raw, &document); err != nil {
		return nil, &DocumentError{Path: path, Issues: []Issue{{
			Path:    path,
			Key:     "toml",
			Message: fmt.Sprintf("TOML parse error: %v", err),
		}}}
	}

	builder := &planBuilder{path: path}
	plan := builder.build(document)
	if len(builder.issues) > 0 {
		return nil, &DocumentError{Path: path, Issues: builder.issues}
	}
	return plan, nil
}

type planBuilder struct {
	path   string
	issues []Issue
}

func (b *planBuilder) problem(unit, key, message string) {
	b.issues = append(b.issues, Issue{Path: b.path, Unit: unit, Key: key, Message: message})
}

// build tolerates unknown top-level keys so older binaries keep working
// against newer plans.
func (b *planBuilder) build(document map[string]any) *Plan {
	plan := &Plan{Path: b.path}

	if raw, ok := document["global"]; ok {
		table, ok := raw.(map[string]any)
		if !ok {
			b.problem("", "global", "global section must be a table")
		} else {
			plan.Global = b.settings("<global>", table)
		}
	}

	raw, ok := document["unit"]
	if !ok {
		return plan
	}
	list, ok := raw.([]any)
	if !ok {
		// Catches both scalar values and a [unit] table where [[unit]]
		// array-of-tables syntax was intended.
		if tables, isTable := raw.([]map[string]any); isTable {
			for _, table := range tables {
				list = append(list, any(table))
			}
		} else {
			b.problem("", "unit", "unit must be an array of tables ([[unit]])")
			return plan
		}
	}
	for idx, item := range list {
		table, ok := item.(map[string]any)
		if !ok {
			b.problem(fmt.Sprintf("<unit[%d]>", idx), "unit", "unit entry must be a table")
			continue
		}
		plan.Units = append(plan.Units, b.unit(idx, table))
	}
	return plan
}

func (b *planBuilder) unit(idx int, table map[string]any) Unit {
	unit := Unit{Enabled: true}
	label := fmt.Sprintf("<unit[%d]>", idx)
	if name, ok := table["name"]; ok {
		unit.Name = strings.TrimSpace(b.scalar(label, "name", name))
	}
	if unit.Name != "" {
		label = unit.Name
	}
	if schedule, ok := table["schedule"]; ok {
		unit.Schedule = strings.TrimSpace(b.scalar(label, "schedule", schedule))
	}
	if enabled, ok := table["enabled"]; ok {
		value, isBool := enabled.(bool)
		if !isBool {
			b.problem(label, "enabled", "enabled must be a boolean")
		} else {
			unit.Enabled = value
		}
	}
	unit.Settings = b.settings(label, table)
	return unit
}

func (b *planBuilder) settings(label string, table map[string]any) Settings {
	settings := Settings{}
	if mode, ok := table["mode"]; ok {
		settings.Mode = strings.TrimSpace(b.scalar(label, "mode", mode))
	}
	settings.Env = b.stringTable(label, "env", table["env"])
	settings.Paths = b.stringTable(label, "paths", table["paths"])
	settings.Options = b.stringTable(label, "options", table["options"])
	settings.Providers = b.stringTable(label, "providers", table["providers"])
	settings.Tokens = b.stringTable(label, "tokens", table["tokens"])
	if raw, ok := table["actions"]; ok {
		for _, item := range b.stringList(label, "actions", raw) {
			if normalized := NormalizeAction(item); normalized != "" {
				settings.Actions = append(settings.Actions, normalized)
			}
		}
	}
	settings.Action = b.actionTable(label, table["action"])
	return settings
}

func (b *planBuilder) actionTable(label string, raw any) map[string]ActionOverride {
	if raw == nil {
		return nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		b.problem(label, "action", "action must be a table of per-action tables")
		return nil
	}
	result := make(map[string]ActionOverride, len(table))
	for key, value := range table {
		name := NormalizeAction(key)
		if name == "" {
			continue
		}
		entry, ok := value.(map[string]any)
		if !ok {
			b.problem(label, "action."+name, "per-action override must be a table")
			continue
		}
		override := ActionOverride{}
		if args, ok := entry["args"]; ok {
			override.Args = b.stringList(label, "action."+name+".args", args)
		}
		result[name] = override
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func (b *planBuilder) stringTable(label, key string, raw any) map[string]string {
	if raw == nil {
		return nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		b.problem(label, key, "must be a table of string values")
		return nil
	}
	result := make(map[string]string, len(table))
	for entryKey, value := range table {
		entryKey = strings.TrimSpace(entryKey)
		if entryKey == "" {
			continue
		}
		text, ok := scalarText(value)
		if !ok {
			b.problem(label, key+"."+entryKey, "value must be a scalar")
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		result[entryKey] = text
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func (b *planBuilder) stringList(label, key string, raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		b.problem(label, key, "must be an array of strings")
		return nil
	}
	result := make([]string, 0, len(list))
	for _, item := range list {
		text, ok := scalarText(item)
		if !ok {
			b.problem(label, key, "entries must be scalar values")
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		result = append(result, text)
	}
	return result
}

func (b *planBuilder) scalar(label, key string, raw any) string {
	text, ok := scalarText(raw)
	if !ok {
		b.problem(label, key, "must be a scalar value")
		return ""
	}
	return text
}

func scalarText(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case bool:
		if typed {
			return "true", true
		}
		return "false", true
	case int64, float64:
		return fmt.Sprint(typed), true
	default:
		return "", false
	}
}

// SortedKeys returns the keys of a string table in lexical order. Plans are
// maps after decoding, so deterministic output requires an explicit order.
func SortedKeys(table map[string]string) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
