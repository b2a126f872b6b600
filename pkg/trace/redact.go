package trace

import (
	"fmt"
	"sort"

	"github.com/loomrun/loom/pkg/binary"
)

// redactSnapshot truncates and redacts one store.Snapshot()-shaped value
// (namespace id -> field -> value) for inclusion in a trace record. Binary
// payloads (per the sibling _is_binary flag contract) are replaced with a
// byte-count marker rather than their base64 text, regardless of size.
func redactSnapshot(snapshot map[string]map[string]any, limits Limits) map[string]map[string]any {
	out := make(map[string]map[string]any, len(snapshot))
	for ns, fields := range snapshot {
		out[ns] = redactNamespace(fields, limits)
	}
	return out
}

func redactNamespace(fields map[string]any, limits Limits) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if isBinaryFlagKey(key) {
			out[key] = value
			continue
		}
		if flagVal, ok := fields[binary.FlagKey(key)]; ok {
			if raw, isBin, err := binary.Lookup(value, flagVal); isBin && err == nil {
				out[key] = fmt.Sprintf("<binary data: %d bytes>", len(raw))
				continue
			}
		}
		out[key] = truncateValue(value, stringLimitFor(key, limits), limits.DictMax)
	}
	return out
}

// stringLimitFor picks PromptMax for an output key named "prompt",
// ResponseMax for one named "response", and StoreMax for everything else.
// The built-in llm node writes its completion under "text", so StoreMax
// bounds it.
func stringLimitFor(key string, limits Limits) int {
	switch key {
	case "prompt":
		return limits.PromptMax
	case "response":
		return limits.ResponseMax
	default:
		return limits.StoreMax
	}
}

func isBinaryFlagKey(key string) bool {
	return len(key) > len(binary.FlagSuffix) && key[len(key)-len(binary.FlagSuffix):] == binary.FlagSuffix
}

// truncateValue bounds a value's rendered size: strings past maxLen get a
// "...(truncated, N more chars)" suffix, maps past maxKeys keep their first
// maxKeys keys (sorted, for determinism) plus a count of the rest.
func truncateValue(v any, maxLen, maxKeys int) any {
	switch val := v.(type) {
	case string:
		return truncateString(val, maxLen)
	case map[string]any:
		return truncateDict(val, maxLen, maxKeys)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = truncateValue(elem, maxLen, maxKeys)
		}
		return out
	default:
		return v
	}
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + fmt.Sprintf("...(truncated, %d more chars)", len(runes)-maxLen)
}

func truncateDict(m map[string]any, maxLen, maxKeys int) map[string]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(keys))
	kept := keys
	if len(keys) > maxKeys {
		kept = keys[:maxKeys]
	}
	for _, k := range kept {
		out[k] = truncateValue(m[k], maxLen, maxKeys)
	}
	if len(keys) > maxKeys {
		out["__truncated_keys__"] = len(keys) - maxKeys
	}
	return out
}
