// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package style

// Merge merges b into a with b taking precedence; neither input is modified.
// Lists concatenate with b's items first, maps merge recursively, anything
// else is replaced by b. A nil b leaves a unchanged.
func Merge(a any, b any) any {
	if b == nil {
		return a
	}
	switch bv := b.(type) {
	case []any:
		if av, ok := a.([]any); ok {
			rtn := make([]any, 0, len(av)+len(bv))
			rtn = append(rtn, bv...)
			rtn = append(rtn, av...)
			return rtn
		}
	case map[string]any:
		if av, ok := a.(map[string]any); ok {
			return MergeMaps(av, bv)
		}
	}
	return b
}

func MergeMaps(a map[string]any, b map[string]any) map[string]any {
	rtn := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		rtn[k] = v
	}
	for k, v := range b {
		if cur, ok := rtn[k]; ok {
			rtn[k] = Merge(cur, v)
		} else {
			rtn[k] = v
		}
	}
	return rtn
}
