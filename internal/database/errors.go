// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"database/sql"
	"errors"
	"strings"
)

// Sentinel errors per resource. Handlers map these onto the HTTP taxonomy;
// anything else becomes a 500.
var (
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCharacterNotFound    = errors.New("character not found")
	ErrOrganisationNotFound = errors.New("organisation not found")
	ErrCrewNotFound         = errors.New("crew not found")
	ErrCrewMemberNotFound   = errors.New("crew member not found")
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrUserNotFound         = errors.New("user not found")

	// ErrRelationshipConflict marks a duplicate (from, to, type) triple.
	ErrRelationshipConflict = errors.New("relationship with this from, to and type already exists")

	// ErrSlugConflict marks a campaign slug collision lost to a concurrent
	// insert; CreateCampaign retries through it.
	ErrSlugConflict = errors.New("campaign slug already exists")

	// ErrEmailConflict marks a duplicate user email.
	ErrEmailConflict = errors.New("user with this email already exists")
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueConstraintError detects DuckDB uniqueness violations.
// DuckDB error messages contain "UNIQUE constraint" or "Duplicate key".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}
