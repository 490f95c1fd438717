package transform

import (
	"fmt"
	"sort"
)

// ApplyMapping implements the `mapping` transform (spec §4.3).
//
// In inline mode, every occurrence of each table key is replaced by its
// value; when keys share a prefix, the longest key wins at each position —
// resolving spec §9's open question on mapping tie-break order: ties are
// broken by preferring the longest matching key, and among keys of equal
// length, the lexicographically smallest, so the result is independent of
// map iteration order.
//
// Otherwise the whole value is treated as a lookup key: its mapping is
// returned, or def if no mapping exists and a default was configured, or an
// input error if neither applies. A mapping miss is scoped to the one
// entity/attribute whose value failed to look up, not a configuration
// problem — the caller (transform.Pipeline.Apply) wraps the returned error
// as a pprlerr.InputError, so this returns a plain error rather than a
// pprlerr.ConfigError.
func ApplyMapping(value string, table map[string]string, def *string, inline bool) (string, error) {
	if inline {
		return applyInlineMapping(value, table), nil
	}

	if mapped, ok := table[value]; ok {
		return mapped, nil
	}
	if def != nil {
		return *def, nil
	}
	return "", fmt.Errorf("mapping: no entry for %q and no default configured", value)
}

// applyInlineMapping scans value left to right; at each rune position it
// tries every table key, longest first, and substitutes the first match.
func applyInlineMapping(value string, table map[string]string) string {
	if len(table) == 0 {
		return value
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	runes := []rune(value)
	var out []rune
	for i := 0; i < len(runes); {
		matched := false
		for _, k := range keys {
			kr := []rune(k)
			if len(kr) == 0 || i+len(kr) > len(runes) {
				continue
			}
			if string(runes[i:i+len(kr)]) == k {
				out = append(out, []rune(table[k])...)
				i += len(kr)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, runes[i])
			i++
		}
	}
	return string(out)
}
