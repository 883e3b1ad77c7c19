// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package models

import (
	"time"
)

// Character status values.
const (
	StatusAlive   = "alive"
	StatusDead    = "dead"
	StatusUnknown = "unknown"
)

// ValidStatus reports whether s is a recognized character status.
func ValidStatus(s string) bool {
	switch s {
	case StatusAlive, StatusDead, StatusUnknown:
		return true
	}
	return false
}

// ImageCrop describes the crop rectangle applied to an entity image.
// Persisted as JSON-encoded text and parsed back on read.
type ImageCrop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Campaign is the top-level container owning characters, organisations and
// crews. Slug is unique and non-empty, generated from the name at creation
// and never changed implicitly afterward.
type Campaign struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ImageCrop   *ImageCrop `json:"imageCrop,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatorID   *string    `json:"creatorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CampaignSummary is a list-view row: the campaign plus the caller's edit
// permission and child counts. The editor-assignment list is deliberately
// absent from this type so it can never leak through the list endpoint.
type CampaignSummary struct {
	Campaign
	CanEdit           bool `json:"canEdit"`
	CharacterCount    int  `json:"characterCount"`
	OrganisationCount int  `json:"organisationCount"`
}

// CampaignDetail is the get-view: the campaign with its nested graph data.
type CampaignDetail struct {
	Campaign
	Characters    []Character    `json:"characters"`
	Organisations []Organisation `json:"organisations"`
	Crews         []Crew         `json:"crews"`
	Relationships []Relationship `json:"relationships"`
}

// Character is a campaign NPC (or a global character when CampaignID is nil).
type Character struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ImageCrop   *ImageCrop `json:"imageCrop,omitempty"`
	Faction     string     `json:"faction,omitempty"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status"`
	Tags        string     `json:"tags,omitempty"`
	PosX        float64    `json:"posX"`
	PosY        float64    `json:"posY"`
	CampaignID  *string    `json:"campaignId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// OrganisationIDs lists organisations the character belongs to.
	// Populated on read paths that return membership data.
	OrganisationIDs []string `json:"organisationIds,omitempty"`
}

// Organisation groups characters under a pin colour on the graph canvas.
// Colour uniqueness is advisory (enforced by the colour picker, not the
// schema).
type Organisation struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ImageCrop   *ImageCrop `json:"imageCrop,omitempty"`
	Color       string     `json:"color,omitempty"`
	PosX        float64    `json:"posX"`
	PosY        float64    `json:"posY"`
	CampaignID  *string    `json:"campaignId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// MemberIDs lists member characters when the read path includes them.
	MemberIDs []string `json:"memberIds,omitempty"`
}

// Crew is a party entity owning crew members.
type Crew struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	ImageCrop   *ImageCrop   `json:"imageCrop,omitempty"`
	PosX        float64      `json:"posX"`
	PosY        float64      `json:"posY"`
	CampaignID  *string      `json:"campaignId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Members     []CrewMember `json:"members,omitempty"`
}

// CrewMember belongs to exactly one crew.
type CrewMember struct {
	ID          string     `json:"id"`
	CrewID      string     `json:"crewId"`
	Name        string     `json:"name"`
	Role        string     `json:"role,omitempty"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ImageCrop   *ImageCrop `json:"imageCrop,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
