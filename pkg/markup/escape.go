// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package markup

import "strings"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&apos;", "'",
	"&amp;", "&",
)

func Escape(s string) string {
	return escaper.Replace(s)
}

func Unescape(s string) string {
	return unescaper.Replace(s)
}
