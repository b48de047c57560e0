// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns presentation titles into URL and file name safe
// identifiers.
package slug

import (
	"regexp"
	"strings"
)

// MaxLength caps generated slugs so export file names stay portable.
const MaxLength = 80

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space, or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// separators collapses runs of whitespace and underscores.
	separators = regexp.MustCompile(`[\s_]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a lowercase hyphenated slug.
// Example: "Q3 Review: Sales & Ops" → "q3-review-sales-ops"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Filename returns the first candidate that produces a non-empty slug,
// or "presentation".
func Filename(candidates ...string) string {
	for _, c := range candidates {
		// Drop a trailing extension the caller may have typed.
		if i := strings.LastIndex(c, "."); i > 0 && len(c)-i <= 5 {
			c = c[:i]
		}
		if s := Generate(c); s != "" {
			return s
		}
	}
	return "presentation"
}
