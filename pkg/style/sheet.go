// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package style

import (
	"fmt"
	"strings"
)

// Sheet maps selectors to property maps. Supported selectors: "tag",
// ".class", "tag.class" and "$id".
type Sheet map[string]map[string]any

// Target is what a selector is matched against.
type Target struct {
	Tag     string
	Classes []string
	Id      string
}

// FromAny converts decoded YAML (map[string]any of maps) into a Sheet.
func FromAny(data any) (Sheet, error) {
	if data == nil {
		return Sheet{}, nil
	}
	raw, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("style sheet must be a mapping, got %T", data)
	}
	rtn := make(Sheet, len(raw))
	for selector, props := range raw {
		if props == nil {
			rtn[selector] = map[string]any{}
			continue
		}
		pm, ok := props.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("style for selector %q must be a mapping, got %T", selector, props)
		}
		rtn[selector] = pm
	}
	return rtn, nil
}

// Collect merges the rules matching t in increasing precedence: tag,
// classes (earlier classes win over later ones), tag.class, then $id.
func (s Sheet) Collect(t Target) map[string]any {
	data := map[string]any{}
	if len(s) == 0 {
		return data
	}
	data = mergeRule(data, s[t.Tag])
	for i := len(t.Classes) - 1; i >= 0; i-- {
		data = mergeRule(data, s["."+t.Classes[i]])
	}
	for i := len(t.Classes) - 1; i >= 0; i-- {
		data = mergeRule(data, s[t.Tag+"."+t.Classes[i]])
	}
	if t.Id != "" {
		data = mergeRule(data, s["$"+t.Id])
	}
	return data
}

func mergeRule(data map[string]any, rule map[string]any) map[string]any {
	if rule == nil {
		return data
	}
	return MergeMaps(data, rule)
}

// Selectors returns the selectors of s that could ever match tag.
func (s Sheet) Selectors(tag string) []string {
	var rtn []string
	for sel := range s {
		if sel == tag || strings.HasPrefix(sel, ".") || strings.HasPrefix(sel, "$") || strings.HasPrefix(sel, tag+".") {
			rtn = append(rtn, sel)
		}
	}
	return rtn
}
