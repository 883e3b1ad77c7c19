// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"strings"
	"testing"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Curse of Strahd", "curse-of-strahd"},
		{"punctuation stripped", "Lord Neverember!", "lord-neverember"},
		{"underscores kept", "my_campaign", "my_campaign"},
		{"hyphen runs collapsed", "a -- b", "a-b"},
		{"leading and trailing trimmed", "  --Heist--  ", "heist"},
		{"unicode dropped", "Dragón héist", "dragn-hist"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSlug(tt.input); got != tt.want {
				t.Errorf("GenerateSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateSlugIdempotent(t *testing.T) {
	inputs := []string{"Curse of Strahd", "waterdeep-1", "a_b c-d"}
	for _, input := range inputs {
		once := GenerateSlug(input)
		if twice := GenerateSlug(once); twice != once {
			t.Errorf("GenerateSlug not idempotent: %q -> %q -> %q", input, once, twice)
		}
	}
}

func TestGenerateSlugTruncates(t *testing.T) {
	long := strings.Repeat("campaign ", 20)
	slug := GenerateSlug(long)
	if len(slug) > SlugMaxLength {
		t.Errorf("slug length %d exceeds max %d", len(slug), SlugMaxLength)
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("truncated slug must not end with a hyphen: %q", slug)
	}
}

func TestEnsureUniqueSlug(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	// No collision: base comes back unchanged.
	slug, err := db.EnsureUniqueSlug(ctx, "fresh", "")
	if err != nil {
		t.Fatalf("EnsureUniqueSlug failed: %v", err)
	}
	if slug != "fresh" {
		t.Errorf("expected fresh, got %q", slug)
	}

	// Empty base falls back to a default.
	slug, err = db.EnsureUniqueSlug(ctx, "", "")
	if err != nil {
		t.Fatalf("EnsureUniqueSlug failed: %v", err)
	}
	if slug != "campaign" {
		t.Errorf("expected campaign, got %q", slug)
	}

	taken, err := db.CreateCampaign(ctx, CampaignCreate{Name: "Taken"})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}

	slug, err = db.EnsureUniqueSlug(ctx, "taken", "")
	if err != nil {
		t.Fatalf("EnsureUniqueSlug failed: %v", err)
	}
	if slug != "taken-1" {
		t.Errorf("expected taken-1, got %q", slug)
	}

	// The owning campaign is exempt from its own slug.
	slug, err = db.EnsureUniqueSlug(ctx, "taken", taken.ID)
	if err != nil {
		t.Fatalf("EnsureUniqueSlug failed: %v", err)
	}
	if slug != "taken" {
		t.Errorf("expected taken for owner, got %q", slug)
	}
}
