// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

// Request payloads. Create payloads use value fields with validator tags;
// update payloads use pointers so an absent field and an explicit falsy
// value stay distinguishable.

type campaignCreateRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description" validate:"max=5000"`
	ImageURL    string           `json:"imageUrl" validate:"omitempty,url"`
	ImageCrop   *models.ImageCrop `json:"imageCrop"`

	// OrganisationName optionally seeds the campaign with a first organisation.
	OrganisationName string `json:"organisationName" validate:"max=200"`
}

type campaignUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	ImageURL    *string         `json:"imageUrl"`
	IsActive    *bool           `json:"isActive"`
	ImageCrop   json.RawMessage `json:"imageCrop"`
}

type characterCreateRequest struct {
	Name            string            `json:"name" validate:"required,min=1,max=200"`
	Title           string            `json:"title" validate:"max=200"`
	Description     string            `json:"description" validate:"max=5000"`
	ImageURL        string            `json:"imageUrl" validate:"omitempty,url"`
	ImageCrop       *models.ImageCrop `json:"imageCrop"`
	Faction         string            `json:"faction" validate:"max=200"`
	Location        string            `json:"location" validate:"max=200"`
	Status          string            `json:"status" validate:"omitempty,oneof=alive dead unknown"`
	Tags            string            `json:"tags" validate:"max=1000"`
	PosX            float64           `json:"posX"`
	PosY            float64           `json:"posY"`
	CampaignID      *string           `json:"campaignId"`
	OrganisationIDs []string          `json:"organisationIds"`
}

type characterUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	Faction     *string         `json:"faction"`
	Location    *string         `json:"location"`
	Status      *string         `json:"status" validate:"omitempty,oneof=alive dead unknown"`
	Tags        *string         `json:"tags"`
	PosX        *float64        `json:"posX"`
	PosY        *float64        `json:"posY"`
	ImageCrop   json.RawMessage `json:"imageCrop"`
}

type organisationCreateRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=200"`
	Description string            `json:"description" validate:"max=5000"`
	ImageURL    string            `json:"imageUrl" validate:"omitempty,url"`
	ImageCrop   *models.ImageCrop `json:"imageCrop"`
	Color       string            `json:"color" validate:"omitempty,hexcolor"`
	PosX        float64           `json:"posX"`
	PosY        float64           `json:"posY"`
	CampaignID  *string           `json:"campaignId"`
	MemberIDs   []string          `json:"memberIds"`
}

type organisationUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	Color       *string         `json:"color" validate:"omitempty,hexcolor"`
	PosX        *float64        `json:"posX"`
	PosY        *float64        `json:"posY"`
	ImageCrop   json.RawMessage `json:"imageCrop"`
}

type crewCreateRequest struct {
	Name        string                    `json:"name" validate:"required,min=1,max=200"`
	Description string                    `json:"description" validate:"max=5000"`
	ImageURL    string                    `json:"imageUrl" validate:"omitempty,url"`
	ImageCrop   *models.ImageCrop         `json:"imageCrop"`
	PosX        float64                   `json:"posX"`
	PosY        float64                   `json:"posY"`
	CampaignID  *string                   `json:"campaignId"`
	Members     []crewMemberCreateRequest `json:"members" validate:"dive"`
}

type crewUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	PosX        *float64        `json:"posX"`
	PosY        *float64        `json:"posY"`
	ImageCrop   json.RawMessage `json:"imageCrop"`
}

type crewMemberCreateRequest struct {
	CrewID      string            `json:"crewId"`
	Name        string            `json:"name" validate:"required,min=1,max=200"`
	Title       string            `json:"title" validate:"max=200"`
	Description string            `json:"description" validate:"max=5000"`
	ImageURL    string            `json:"imageUrl" validate:"omitempty,url"`
	ImageCrop   *models.ImageCrop `json:"imageCrop"`
	Role        string            `json:"role" validate:"max=200"`
	Status      string            `json:"status" validate:"omitempty,oneof=alive dead unknown"`
}

type crewMemberUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	Role        *string         `json:"role"`
	Status      *string         `json:"status" validate:"omitempty,oneof=alive dead unknown"`
	ImageCrop   json.RawMessage `json:"imageCrop"`
}

type relationshipCreateRequest struct {
	FromNpcID   string `json:"fromNpcId" validate:"required"`
	ToNpcID     string `json:"toNpcId" validate:"required"`
	Type        string `json:"type" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=5000"`
	Strength    *int   `json:"strength" validate:"omitempty,min=1,max=10"`
}

type crewRelationshipCreateRequest struct {
	FromCrewID  string `json:"fromCrewId" validate:"required"`
	ToNpcID     string `json:"toNpcId" validate:"required"`
	Type        string `json:"type" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=5000"`
	Strength    *int   `json:"strength" validate:"omitempty,min=1,max=10"`
}

type crewMemberRelationshipCreateRequest struct {
	FromCrewMemberID string `json:"fromCrewMemberId" validate:"required"`
	ToNpcID          string `json:"toNpcId" validate:"required"`
	Type             string `json:"type" validate:"required,min=1,max=100"`
	Description      string `json:"description" validate:"max=5000"`
	Strength         *int   `json:"strength" validate:"omitempty,min=1,max=10"`
}

type universalRelationshipCreateRequest struct {
	FromEntityID   string `json:"fromEntityId" validate:"required"`
	FromEntityType string `json:"fromEntityType" validate:"required,oneof=character organisation"`
	ToEntityID     string `json:"toEntityId" validate:"required"`
	ToEntityType   string `json:"toEntityType" validate:"required,oneof=character organisation"`
	Type           string `json:"type" validate:"required,min=1,max=100"`
	Description    string `json:"description" validate:"max=5000"`
	Strength       *int   `json:"strength" validate:"omitempty,min=1,max=10"`
}

// relationshipUpdateRequest is shared by every relationship kind. Endpoint
// fields sent by clients are ignored.
type relationshipUpdateRequest struct {
	Type        *string `json:"type" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Strength    *int    `json:"strength" validate:"omitempty,min=1,max=10"`
}

// membershipRequest accepts either a single organisation id or a list.
type membershipRequest struct {
	OrganisationID  string   `json:"organisationId"`
	OrganisationIDs []string `json:"organisationIds"`
}

func (m membershipRequest) ids() []string {
	if len(m.OrganisationIDs) > 0 {
		return m.OrganisationIDs
	}
	if m.OrganisationID != "" {
		return []string{m.OrganisationID}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type userUpdateRequest struct {
	Role *string `json:"role" validate:"omitempty,oneof=viewer editor admin"`
}

type editorAssignRequest struct {
	UserID string `json:"userId" validate:"required"`
}

var jsonNull = []byte("null")

// parseCropField interprets an imageCrop update field: absent means leave
// alone, JSON null means clear, an object replaces the stored crop.
func parseCropField(raw json.RawMessage) (crop *models.ImageCrop, set bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, true, nil
	}
	var c models.ImageCrop
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}
