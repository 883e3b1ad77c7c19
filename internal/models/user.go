// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package models

import (
	"time"
)

// User is an account with a global role. Per-campaign edit rights come from
// either being a campaign's creator or appearing in its editor-assignment
// list.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	// PasswordHash is never serialized.
	PasswordHash string `json:"-"`
}

// UserSummary is the admin list-view row: account fields plus campaign
// ownership and assignment counts.
type UserSummary struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	Name                  string    `json:"name"`
	Role                  string    `json:"role"`
	CreatedAt             time.Time `json:"createdAt"`
	CreatedCampaignCount  int       `json:"createdCampaignCount"`
	EditableCampaignCount int       `json:"editableCampaignCount"`
}
