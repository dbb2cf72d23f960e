package runplan

// Canonical action vocabulary. The executor owns the binding of each name to
// an external command; the plan layer only knows the tokens.
const (
	ActionFetch     = "fetch"
	ActionSummarize = "summarize"
	ActionPublish   = "publish"
	ActionPodcast   = "podcast"
)

// DefaultActions returns the built-in action list derived from a mode when
// neither the unit nor the global section declares one.
func DefaultActions(mode string) []string {
	if mode == "daily" {
		return []string{ActionFetch, ActionSummarize, ActionPublish, ActionPodcast}
	}
	return []string{ActionFetch, ActionSummarize, ActionPublish}
}

// DefaultPlan returns the built-in run plan used when no plan file exists at
// the given path. This is a pure fallback, not an error condition.
func DefaultPlan(path string) *Plan {
	return &Plan{
		Path: path,
		Units: []Unit{
			{
				Name:     "hourly",
				Schedule: "0 * * * *",
				Enabled:  true,
				Settings: Settings{
					Mode:    "hourly",
					Actions: []string{ActionFetch, ActionSummarize, ActionPublish},
				},
			},
			{
				Name:     "daily",
				Schedule: "0 6 * * *",
				Enabled:  true,
				Settings: Settings{
					Mode:    "daily",
					Actions: []string{ActionFetch, ActionSummarize, ActionPublish, ActionPodcast},
				},
			},
		},
	}
}
