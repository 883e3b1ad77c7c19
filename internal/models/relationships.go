// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package models

import (
	"time"
)

// DefaultRelationshipStrength applies when a create request omits strength.
const DefaultRelationshipStrength = 5

// EntityType is the tagged discriminant used by universal relationships to
// name the table an endpoint lives in. It is a closed set; anything outside
// entityTypeTables is rejected at the API layer.
type EntityType string

const (
	EntityTypeCharacter    EntityType = "character"
	EntityTypeOrganisation EntityType = "organisation"
)

// entityTypeTables maps each entity type to its backing table.
var entityTypeTables = map[EntityType]string{
	EntityTypeCharacter:    "characters",
	EntityTypeOrganisation: "organisations",
}

// Valid reports whether the entity type is a known discriminant.
func (t EntityType) Valid() bool {
	_, ok := entityTypeTables[t]
	return ok
}

// Table returns the backing table for the entity type, or empty string for
// an unknown type.
func (t EntityType) Table() string {
	return entityTypeTables[t]
}

// EntityTypes returns the closed set of valid entity types.
func EntityTypes() []EntityType {
	return []EntityType{EntityTypeCharacter, EntityTypeOrganisation}
}

// Relationship is a typed, directional character-to-character edge.
// The (FromNpcID, ToNpcID, Type) triple is unique.
type Relationship struct {
	ID          string    `json:"id"`
	FromNpcID   string    `json:"fromNpcId"`
	ToNpcID     string    `json:"toNpcId"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Strength    int       `json:"strength"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CrewRelationship is a directional crew-to-character edge, kept in its own
// table parallel to the universal model.
type CrewRelationship struct {
	ID          string    `json:"id"`
	FromCrewID  string    `json:"fromCrewId"`
	ToNpcID     string    `json:"toNpcId"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Strength    int       `json:"strength"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CrewMemberRelationship is a directional crew-member-to-character edge.
type CrewMemberRelationship struct {
	ID               string    `json:"id"`
	FromCrewMemberID string    `json:"fromCrewMemberId"`
	ToNpcID          string    `json:"toNpcId"`
	Type             string    `json:"type"`
	Description      string    `json:"description,omitempty"`
	Strength         int       `json:"strength"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UniversalRelationship generalizes Relationship to any entity-type pair.
// Endpoints are identified by (id, type) pairs and are immutable after
// creation; updates may only rewrite Type, Description and Strength.
type UniversalRelationship struct {
	ID             string     `json:"id"`
	FromEntityID   string     `json:"fromEntityId"`
	FromEntityType EntityType `json:"fromEntityType"`
	ToEntityID     string     `json:"toEntityId"`
	ToEntityType   EntityType `json:"toEntityType"`
	Type           string     `json:"type"`
	Description    string     `json:"description,omitempty"`
	Strength       int        `json:"strength"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
