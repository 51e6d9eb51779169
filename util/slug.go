package util

import (
	"regexp"
	"strings"
)

var (
	// UIDMatcher matches valid usernames.
	UIDMatcher = regexp.MustCompile("^[a-z0-9]([a-z0-9-]{1,30}[a-z0-9])$")

	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// NormalizeSlug turns a title into its URL-safe form: underscores and
// spaces become hyphens, everything is lowercased, characters outside
// [a-z0-9-] are stripped, dash runs collapse and edge dashes are trimmed.
//
//	"crimson_reset"   -> "crimson-reset"
//	"One Piece"       -> "one-piece"
//	"solo  leveling"  -> "solo-leveling"
func NormalizeSlug(value string) string {
	if value == "" {
		return value
	}

	slug := strings.ReplaceAll(value, "_", "-")
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ToLower(slug)
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = dashRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	return slug
}
