// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

const organisationColumns = `id, name, description, image_url, image_crop,
	color, pos_x, pos_y, campaign_id, created_at, updated_at`

// DefaultColorPalette is the pin colour set offered by the organisation
// colour picker. Uniqueness of assigned colours is advisory, enforced by the
// picker rather than the schema.
var DefaultColorPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	"#008080", "#e6beff", "#9a6324", "#fffac8", "#800000",
	"#aaffc3", "#808000", "#ffd8b1", "#000075", "#808080",
}

// OrganisationCreate carries the fields accepted at organisation creation.
type OrganisationCreate struct {
	Name        string
	Description string
	ImageURL    string
	ImageCrop   *models.ImageCrop
	Color       string
	PosX        float64
	PosY        float64
	CampaignID  *string

	// MemberIDs optionally connects characters as members in the same create.
	MemberIDs []string
}

// OrganisationUpdate carries a partial update; nil pointers leave fields
// alone.
type OrganisationUpdate struct {
	Name         *string
	Description  *string
	ImageURL     *string
	Color        *string
	PosX         *float64
	PosY         *float64
	ImageCrop    *models.ImageCrop
	ImageCropSet bool
}

// CreateOrganisation inserts an organisation, optionally connecting members.
func (db *DB) CreateOrganisation(ctx context.Context, o OrganisationCreate) (*models.Organisation, error) {
	now := time.Now()
	org := &models.Organisation{
		ID:          uuid.New().String(),
		Name:        o.Name,
		Description: o.Description,
		ImageURL:    o.ImageURL,
		ImageCrop:   o.ImageCrop,
		Color:       o.Color,
		PosX:        o.PosX,
		PosY:        o.PosY,
		CampaignID:  o.CampaignID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	crop, err := cropToNullString(o.ImageCrop)
	if err != nil {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO organisations (id, name, description, image_url, image_crop,
			color, pos_x, pos_y, campaign_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		org.ID, org.Name, org.Description, org.ImageURL, crop,
		org.Color, org.PosX, org.PosY, org.CampaignID, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create organisation: %w", err)
	}

	for _, characterID := range o.MemberIDs {
		if err := db.ConnectOrganisations(ctx, characterID, []string{org.ID}); err != nil {
			return nil, err
		}
	}
	org.MemberIDs = o.MemberIDs

	return org, nil
}

// GetOrganisation retrieves an organisation with its member list.
func (db *DB) GetOrganisation(ctx context.Context, id string) (*models.Organisation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+organisationColumns+` FROM organisations WHERE id = ?`, id)
	org, err := scanOrganisation(row)
	if err != nil {
		return nil, err
	}

	if org.MemberIDs, err = db.memberIDsForOrganisation(ctx, id); err != nil {
		return nil, err
	}
	return org, nil
}

// ListOrganisations returns organisations, optionally filtered by campaign.
func (db *DB) ListOrganisations(ctx context.Context, campaignID *string) ([]models.Organisation, error) {
	query := `SELECT ` + organisationColumns + ` FROM organisations`
	args := []any{}
	if campaignID != nil {
		query += ` WHERE campaign_id = ?`
		args = append(args, *campaignID)
	}
	query += ` ORDER BY name`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organisations: %w", err)
	}
	defer rows.Close()

	organisations := make([]models.Organisation, 0)
	for rows.Next() {
		org, err := scanOrganisation(rows)
		if err != nil {
			return nil, err
		}
		organisations = append(organisations, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organisations: %w", err)
	}

	return organisations, nil
}

// UpdateOrganisation applies a partial update and returns the updated record.
func (db *DB) UpdateOrganisation(ctx context.Context, id string, u OrganisationUpdate) (*models.Organisation, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now()}

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *u.ImageURL)
	}
	if u.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *u.Color)
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
		`UPDATE organisations SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update organisation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrOrganisationNotFound
	}

	return db.GetOrganisation(ctx, id)
}

// DeleteOrganisation removes an organisation, its memberships and universal
// relationship rows referencing it.
func (db *DB) DeleteOrganisation(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM organisations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organisation: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOrganisationNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM organisation_members WHERE organisation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clean up organisation members: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM universal_relationships
			WHERE (from_entity_type = 'organisation' AND from_entity_id = ?)
			OR (to_entity_type = 'organisation' AND to_entity_id = ?)`, id, id); err != nil {
		return fmt.Errorf("failed to clean up organisation relationships: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit organisation delete: %w", err)
	}
	return nil
}

// AvailableColors returns the palette minus colours held by OTHER
// organisations. The excluded organisation's own colour stays available so
// an edit form can keep the current selection.
func (db *DB) AvailableColors(ctx context.Context, campaignID *string, excludeOrgID string) ([]string, error) {
	query := `SELECT color FROM organisations WHERE color != ''`
	args := []any{}
	if campaignID != nil {
		query += ` AND campaign_id = ?`
		args = append(args, *campaignID)
	}
	if excludeOrgID != "" {
		query += ` AND id != ?`
		args = append(args, excludeOrgID)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query used colors: %w", err)
	}
	defer rows.Close()

	used := make(map[string]bool)
	for rows.Next() {
		var color string
		if err := rows.Scan(&color); err != nil {
			return nil, fmt.Errorf("failed to scan color row: %w", err)
		}
		used[strings.ToLower(color)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating colors: %w", err)
	}

	available := make([]string, 0, len(DefaultColorPalette))
	for _, color := range DefaultColorPalette {
		if !used[strings.ToLower(color)] {
			available = append(available, color)
		}
	}
	return available, nil
}

func (db *DB) memberIDsForOrganisation(ctx context.Context, organisationID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT character_id FROM organisation_members WHERE organisation_id = ? ORDER BY character_id`,
		organisationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organisation members: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOrganisation(row rowScanner) (*models.Organisation, error) {
	var org models.Organisation
	var crop, campaignID nullString
	err := row.Scan(&org.ID, &org.Name, &org.Description, &org.ImageURL, &crop,
		&org.Color, &org.PosX, &org.PosY, &campaignID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrOrganisationNotFound
		}
		return nil, fmt.Errorf("failed to scan organisation: %w", err)
	}
	org.ImageCrop = cropFromNullString(crop.NullString)
	org.CampaignID = campaignID.ptr()
	return &org, nil
}
