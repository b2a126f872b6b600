package trace

import (
	"os"
	"strconv"
)

// Limits bounds how much of each node's before/post snapshots end up in a
// trace record, configurable via environment per spec.md §4.8 so a large
// workflow's trace file doesn't grow unbounded.
type Limits struct {
	PromptMax   int // max rune length kept for an LLM prompt string
	ResponseMax int // max rune length kept for an LLM response string
	StoreMax    int // max rune length kept for any other string value
	DictMax     int // max number of keys kept from a single map value
	LLMCallsMax int // read and carried, but not applied: a NodeTrace holds no LLM call records
}

// DefaultLimits mirrors spec.md §4.8's "configurable via environment" limits
// with generous defaults for a workflow run with no explicit configuration.
func DefaultLimits() Limits {
	return Limits{
		PromptMax:   4096,
		ResponseMax: 4096,
		StoreMax:    2048,
		DictMax:     50,
		LLMCallsMax: 20,
	}
}

// LimitsFromEnv reads PROMPT_MAX, RESPONSE_MAX, STORE_MAX, DICT_MAX, and
// LLM_CALLS_MAX, falling back to DefaultLimits for any unset or unparsable
// value.
func LimitsFromEnv() Limits {
	l := DefaultLimits()
	l.PromptMax = envInt("PROMPT_MAX", l.PromptMax)
	l.ResponseMax = envInt("RESPONSE_MAX", l.ResponseMax)
	l.StoreMax = envInt("STORE_MAX", l.StoreMax)
	l.DictMax = envInt("DICT_MAX", l.DictMax)
	l.LLMCallsMax = envInt("LLM_CALLS_MAX", l.LLMCallsMax)
	return l
}

func envInt(name string, fallback int) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
