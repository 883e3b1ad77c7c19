// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

const characterColumns = `id, name, title, description, image_url, image_crop,
	faction, location, status, tags, pos_x, pos_y, campaign_id, created_at, updated_at`

// CharacterCreate carries the fields accepted at character creation.
type CharacterCreate struct {
	Name        string
	Title       string
	Description string
	ImageURL    string
	ImageCrop   *models.ImageCrop
	Faction     string
	Location    string
	Status      string
	Tags        string
	PosX        float64
	PosY        float64
	CampaignID  *string

	// OrganisationIDs optionally connects the character to organisations
	// in the same create.
	OrganisationIDs []string
}

// CharacterUpdate carries a partial update; nil pointers leave fields alone.
type CharacterUpdate struct {
	Name         *string
	Title        *string
	Description  *string
	ImageURL     *string
	Faction      *string
	Location     *string
	Status       *string
	Tags         *string
	PosX         *float64
	PosY         *float64
	ImageCrop    *models.ImageCrop
	ImageCropSet bool
}

// CreateCharacter inserts a character. Status defaults to alive.
func (db *DB) CreateCharacter(ctx context.Context, c CharacterCreate) (*models.Character, error) {
	now := time.Now()
	if c.Status == "" {
		c.Status = models.StatusAlive
	}

	ch := &models.Character{
		ID:          uuid.New().String(),
		Name:        c.Name,
		Title:       c.Title,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		ImageCrop:   c.ImageCrop,
		Faction:     c.Faction,
		Location:    c.Location,
		Status:      c.Status,
		Tags:        c.Tags,
		PosX:        c.PosX,
		PosY:        c.PosY,
		CampaignID:  c.CampaignID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	crop, err := cropToNullString(c.ImageCrop)
	if err != nil {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO characters (id, name, title, description, image_url, image_crop,
			faction, location, status, tags, pos_x, pos_y, campaign_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Name, ch.Title, ch.Description, ch.ImageURL, crop,
		ch.Faction, ch.Location, ch.Status, ch.Tags, ch.PosX, ch.PosY,
		ch.CampaignID, ch.CreatedAt, ch.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}

	if len(c.OrganisationIDs) > 0 {
		if err := db.ConnectOrganisations(ctx, ch.ID, c.OrganisationIDs); err != nil {
			return nil, err
		}
		ch.OrganisationIDs = c.OrganisationIDs
	}

	return ch, nil
}

// GetCharacter retrieves a character with its organisation memberships.
func (db *DB) GetCharacter(ctx context.Context, id string) (*models.Character, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	ch, err := scanCharacter(row)
	if err != nil {
		return nil, err
	}

	if ch.OrganisationIDs, err = db.OrganisationIDsForCharacter(ctx, id); err != nil {
		return nil, err
	}
	return ch, nil
}

// ListCharacters returns characters, optionally filtered by campaign.
func (db *DB) ListCharacters(ctx context.Context, campaignID *string) ([]models.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters`
	args := []any{}
	if campaignID != nil {
		query += ` WHERE campaign_id = ?`
		args = append(args, *campaignID)
	}
	query += ` ORDER BY name`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	characters := make([]models.Character, 0)
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		characters = append(characters, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating characters: %w", err)
	}

	return characters, nil
}

// UpdateCharacter applies a partial update and returns the updated record.
func (db *DB) UpdateCharacter(ctx context.Context, id string, u CharacterUpdate) (*models.Character, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now()}

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *u.ImageURL)
	}
	if u.Faction != nil {
		sets = append(sets, "faction = ?")
		args = append(args, *u.Faction)
	}
	if u.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *u.Location)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *u.Tags)
	}
	if u.PosX != nil {
		sets = append(sets, "pos_x = ?")
		args = append(args, *u.PosX)
	}
	if u.PosY != nil {
		sets = append(sets, "pos_y = ?")
		args = append(args, *u.PosY)
	}
	if u.ImageCropSet {
		crop, err := cropToNullString(u.ImageCrop)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "image_crop = ?")
		args = append(args, crop)
	}

	args = append(args, id)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE characters SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrCharacterNotFound
	}

	return db.GetCharacter(ctx, id)
}

// DeleteCharacter removes a character, its organisation memberships, and
// every relationship row referencing it on either side.
func (db *DB) DeleteCharacter(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCharacterNotFound
	}

	cleanup := []struct {
		query string
		args  []any
	}{
		{`DELETE FROM organisation_members WHERE character_id = ?`, []any{id}},
		{`DELETE FROM relationships WHERE from_npc_id = ? OR to_npc_id = ?`, []any{id, id}},
		{`DELETE FROM crew_relationships WHERE to_npc_id = ?`, []any{id}},
		{`DELETE FROM crew_member_relationships WHERE to_npc_id = ?`, []any{id}},
		{`DELETE FROM universal_relationships
			WHERE (from_entity_type = 'character' AND from_entity_id = ?)
			OR (to_entity_type = 'character' AND to_entity_id = ?)`, []any{id, id}},
	}
	for _, c := range cleanup {
		if _, err := tx.ExecContext(ctx, c.query, c.args...); err != nil {
			return fmt.Errorf("failed to clean up character references: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit character delete: %w", err)
	}
	return nil
}

// ConnectOrganisations adds the character to each organisation. Existing
// memberships are left alone.
func (db *DB) ConnectOrganisations(ctx context.Context, characterID string, organisationIDs []string) error {
	for _, orgID := range organisationIDs {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO organisation_members (organisation_id, character_id) VALUES (?, ?)`,
			orgID, characterID)
		if err != nil {
			if isUniqueConstraintError(err) {
				continue
			}
			return fmt.Errorf("failed to connect organisation %s: %w", orgID, err)
		}
	}
	return nil
}

// DisconnectOrganisation removes a single membership.
func (db *DB) DisconnectOrganisation(ctx context.Context, characterID, organisationID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM organisation_members WHERE organisation_id = ? AND character_id = ?`,
		organisationID, characterID)
	if err != nil {
		return fmt.Errorf("failed to disconnect organisation: %w", err)
	}
	return nil
}

// OrganisationIDsForCharacter lists the organisations a character belongs to.
func (db *DB) OrganisationIDsForCharacter(ctx context.Context, characterID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT organisation_id FROM organisation_members WHERE character_id = ? ORDER BY organisation_id`,
		characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanCharacter(row rowScanner) (*models.Character, error) {
	var ch models.Character
	var crop, campaignID nullString
	err := row.Scan(&ch.ID, &ch.Name, &ch.Title, &ch.Description, &ch.ImageURL, &crop,
		&ch.Faction, &ch.Location, &ch.Status, &ch.Tags, &ch.PosX, &ch.PosY,
		&campaignID, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to scan character: %w", err)
	}
	ch.ImageCrop = cropFromNullString(crop.NullString)
	ch.CampaignID = campaignID.ptr()
	return &ch, nil
}
