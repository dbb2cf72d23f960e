package resolve

import (
	"regexp"
	"strings"
	"unicode"
)

// Namespace prefixes for exported environment variables. Providers and tokens
// are namespaced separately so a provider named "summary" can never collide
// with a token of the same name.
const (
	envPrefix      = "MINERVA_"
	providerPrefix = "MINERVA_PROVIDER_"
	tokenPrefix    = "MINERVA_TOKEN_"
)

// TokenExportPrefix marks credential-bearing export names so callers can
// redact them in user-facing output.
const TokenExportPrefix = tokenPrefix

// Exported selection variables. These always overwrite whatever the process
// environment carries, unlike table exports which the environment may pin.
const (
	EnvSelectedActions = "MINERVA_SELECTED_ACTIONS"
	EnvSelectedMode    = "MINERVA_SELECTED_MODE"
	EnvSelectedUnit    = "MINERVA_SELECTED_UNIT"
)

// pathExportNames is the enumerated mapping from well-known paths keys to
// their environment-variable names. Keys outside this table fall back to
// namespaced transliteration via SanitizeKey.
var pathExportNames = map[string]string{
	"data_dir":                           "MINERVA_DATA_DIR",
	"state_dir":                          "MINERVA_STATE_DIR",
	"unit_state_dir":                     "MINERVA_UNIT_STATE_DIR",
	"prompts_dir":                        "MINERVA_PROMPTS_DIR",
	"run_cache_file":                     "MINERVA_RUN_CACHE_FILE",
	"todo_dump_file":                     "MINERVA_TODO_DUMP_FILE",
	"summary_file":                       "MINERVA_SUMMARY_FILE",
	"speech_file":                        "MINERVA_SPEECH_FILE",
	"podcast_text_file":                  "MINERVA_PODCAST_TEXT_FILE",
	"podcast_audio_file":                 "MINERVA_PODCAST_AUDIO_FILE",
	"podcast_topic_file":                 "MINERVA_PODCAST_TOPIC_FILE",
	"podcast_prompt_template_file":       "MINERVA_PODCAST_PROMPT_TEMPLATE_FILE",
	"daily_podcast_prompt_template_file": "MINERVA_DAILY_PODCAST_PROMPT_TEMPLATE_FILE",
	"config_path":                        "MINERVA_CONFIG_PATH",
}

// optionExportNames is the enumerated mapping for the fixed options
// vocabulary. Option keys already carrying the MINERVA_ prefix are exported
// verbatim; anything else falls back to namespaced transliteration.
var optionExportNames = map[string]string{
	"fetch_args":            "MINERVA_FETCH_ARGS",
	"summary_args":          "MINERVA_SUMMARY_ARGS",
	"publish_args":          "MINERVA_PUBLISH_ARGS",
	"shared_args":           "MINERVA_SHARED_ARGS",
	"hourly_fetch_args":     "MINERVA_HOURLY_FETCH_ARGS",
	"hourly_summary_args":   "MINERVA_HOURLY_SUMMARY_ARGS",
	"hourly_publish_args":   "MINERVA_HOURLY_PUBLISH_ARGS",
	"daily_fetch_args":      "MINERVA_DAILY_FETCH_ARGS",
	"daily_summary_args":    "MINERVA_DAILY_SUMMARY_ARGS",
	"daily_publish_args":    "MINERVA_DAILY_PUBLISH_ARGS",
	"podcast_args":          "MINERVA_PODCAST_ARGS",
	"daily_podcast_args":    "MINERVA_DAILY_PODCAST_ARGS",
	"podcast_telegram_args": "MINERVA_PODCAST_TELEGRAM_ARGS",
	"podcast_language":      "MINERVA_PODCAST_LANGUAGE",
}

var nonIdentifierRuns = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeKey transliterates an arbitrary config key into a safe
// environment-variable identifier: every run of non-alphanumeric characters
// collapses to a single underscore, trimmed at both ends, then uppercased.
func SanitizeKey(key string) string {
	collapsed := nonIdentifierRuns.ReplaceAllString(key, "_")
	return strings.ToUpper(strings.Trim(collapsed, "_"))
}

// EnvName maps an env-table key to its exported name. Keys already in
// all-uppercase form are kept verbatim; everything else is transliterated.
func EnvName(key string) string {
	if isAllUpper(key) {
		return key
	}
	return SanitizeKey(key)
}

// PathEnvName maps a paths-table key to its exported name.
func PathEnvName(key string) string {
	if name, ok := pathExportNames[key]; ok {
		return name
	}
	return envPrefix + SanitizeKey(key)
}

// OptionEnvName maps an options-table key to its exported name.
func OptionEnvName(key string) string {
	if name, ok := optionExportNames[key]; ok {
		return name
	}
	if strings.HasPrefix(key, envPrefix) {
		return key
	}
	return envPrefix + SanitizeKey(key)
}

// ProviderEnvName maps a providers-table key to its exported name.
func ProviderEnvName(key string) string {
	return providerPrefix + SanitizeKey(key)
}

// TokenEnvName maps a tokens-table key to its exported name.
func TokenEnvName(key string) string {
	return tokenPrefix + SanitizeKey(key)
}

// ActionArgsEnvName maps an action name to the variable carrying its
// per-action override arguments.
func ActionArgsEnvName(action string) string {
	return "MINERVA_ACTION_" + SanitizeKey(action) + "_ARGS"
}

// isAllUpper reports whether the key contains at least one letter and no
// lowercase letters, mirroring the "already uppercase, keep verbatim" rule.
func isAllUpper(key string) bool {
	hasLetter := false
	for _, r := range key {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
