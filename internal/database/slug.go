// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// SlugMaxLength bounds generated campaign slugs.
const SlugMaxLength = 50

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9_\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugHyphenRuns = regexp.MustCompile(`-{2,}`)
)

// GenerateSlug derives a URL-safe slug from a campaign name: lower-case,
// strip everything outside word characters, spaces and hyphens, collapse
// whitespace runs to single hyphens, collapse repeated hyphens, truncate.
// Pure and idempotent: GenerateSlug(GenerateSlug(x)) == GenerateSlug(x).
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugDisallowed.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > SlugMaxLength {
		slug = slug[:SlugMaxLength]
		slug = strings.TrimRight(slug, "-")
	}

	return slug
}

// EnsureUniqueSlug resolves slug collisions by appending -1, -2, ... until a
// free slug is found. excludeID exempts the campaign being renamed from its
// own slug. The loop runs one query per collision, which is fine at campaign
// cardinality; the UNIQUE constraint on campaigns.slug backstops any
// concurrent create that slips between the check and the insert.
func (db *DB) EnsureUniqueSlug(ctx context.Context, base, excludeID string) (string, error) {
	if base == "" {
		base = "campaign"
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		var existingID string
		err := db.conn.QueryRowContext(ctx,
			`SELECT id FROM campaigns WHERE slug = ?`, candidate).Scan(&existingID)
		if err != nil {
			if isNoRows(err) {
				return candidate, nil
			}
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if existingID == excludeID && excludeID != "" {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
