package pipeline

import (
	"minerva/internal/resolve"
	"minerva/internal/runplan"
)

// Descriptor binds one action name to its external collaborator contract.
type Descriptor struct {
	Name    string
	Command string

	// RequiredInput is the paths key of the artifact that must exist before
	// the action runs; empty means no precondition.
	RequiredInput string
	// Output is the paths key of the artifact the action is expected to
	// produce. It is deleted before the run (a failed collaborator must not
	// leave a stale success behind) and verified after; empty means the
	// collaborator manages its own destination state.
	Output string

	// OptionKey names the options-table entry contributing extra arguments;
	// the mode-prefixed variant ("<mode>_<key>") is consulted as well.
	OptionKey string

	// BaseArgs produces the positional arguments derived from resolved paths.
	BaseArgs func(unit *resolve.ResolvedUnit) []string
	// ModeArgs produces built-in mode-specific arguments.
	ModeArgs func(mode string) []string

	// AcceptsPassthrough marks the action that receives extra arguments
	// supplied after "--" on the invocation command line.
	AcceptsPassthrough bool

	MissingInputDetail  string
	MissingOutputDetail string
}

// Registry is the fixed action vocabulary keyed by normalized action name.
type Registry map[string]Descriptor

// DefaultRegistry returns the built-in four-action registry.
func DefaultRegistry() Registry {
	return Registry{
		runplan.ActionFetch: {
			Name:      runplan.ActionFetch,
			Command:   "fetch-todos",
			Output:    "todo_dump_file",
			OptionKey: "fetch_args",
			BaseArgs: func(unit *resolve.ResolvedUnit) []string {
				args := []string{
					"--output", unit.Paths["todo_dump_file"],
					"--run-cache-file", unit.Paths["run_cache_file"],
				}
				if config := unit.Paths["config_path"]; config != "" {
					args = append(args, "--config", config)
				}
				return args
			},
			ModeArgs: func(mode string) []string {
				// Hourly runs bail out when the todo set has not changed
				// since the previous run; daily runs always regenerate.
				if mode == "hourly" {
					return []string{"--skip-if-run"}
				}
				return nil
			},
			MissingOutputDetail: "Todo dump not created; skipping downstream actions",
		},
		runplan.ActionSummarize: {
			Name:          runplan.ActionSummarize,
			Command:       "summarize-todos",
			RequiredInput: "todo_dump_file",
			Output:        "summary_file",
			OptionKey:     "summary_args",
			BaseArgs: func(unit *resolve.ResolvedUnit) []string {
				return []string{
					"--todos", unit.Paths["todo_dump_file"],
					"--output", unit.Paths["summary_file"],
				}
			},
			AcceptsPassthrough:  true,
			MissingInputDetail:  "Todo dump not found; skipping summarize and downstream actions",
			MissingOutputDetail: "Summary not created; skipping downstream actions",
		},
		runplan.ActionPublish: {
			Name:          runplan.ActionPublish,
			Command:       "publish-summary",
			RequiredInput: "summary_file",
			OptionKey:     "publish_args",
			BaseArgs: func(unit *resolve.ResolvedUnit) []string {
				return []string{
					"--summary", unit.Paths["summary_file"],
					"--speech-output", unit.Paths["speech_file"],
				}
			},
			MissingInputDetail: "Summary not found; skipping publish",
		},
		runplan.ActionPodcast: {
			Name:      runplan.ActionPodcast,
			Command:   "generate-podcast",
			OptionKey: "podcast_args",
			BaseArgs: func(unit *resolve.ResolvedUnit) []string {
				args := []string{
					"--output", unit.Paths["podcast_text_file"],
					"--speech-output", unit.Paths["podcast_audio_file"],
					"--topic-history-file", unit.Paths["podcast_topic_file"],
				}
				if language := unit.Options["podcast_language"]; language != "" {
					args = append(args, "--language", language)
				}
				return args
			},
		},
	}
}
