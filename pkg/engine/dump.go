// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the persisted tree, one slot per line.
func (e *Engine) Dump(w io.Writer) error {
	if e.root == nil {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}
	return dumpSlot(w, e.root, 0)
}

func dumpSlot(w io.Writer, slot *PersistedNode, indent int) error {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString("<" + slot.Tag + ">")
	if slot.Data != nil {
		b := slot.Data.Component.base()
		fmt.Fprintf(&sb, " %s pos=%s", slot.Id[:8], b.Position())
		if kind := slot.Data.LayoutKind; kind != "" {
			fmt.Fprintf(&sb, " layout=%s", kind)
		}
		if classes := b.Properties().Classes; len(classes) > 0 {
			fmt.Fprintf(&sb, " class=%q", strings.Join(classes, " "))
		}
	} else if slot.failed {
		sb.WriteString(" (failed)")
	}
	if _, err := fmt.Fprintln(w, sb.String()); err != nil {
		return err
	}
	for _, child := range slot.Children() {
		if err := dumpSlot(w, child, indent+1); err != nil {
			return err
		}
	}
	return nil
}
