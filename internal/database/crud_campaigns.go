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

const campaignColumns = `id, slug, name, description, image_url, image_crop,
	is_active, creator_id, created_at, updated_at`

// CampaignCreate carries the fields accepted at campaign creation.
type CampaignCreate struct {
	Name        string
	Description string
	ImageURL    string
	ImageCrop   *models.ImageCrop
	CreatorID   *string
}

// CampaignUpdate carries a partial update. Nil pointers mean "leave alone";
// a non-nil pointer applies the value even when it is falsy. ImageCropSet
// distinguishes "clear the crop" (true with nil ImageCrop) from "untouched".
type CampaignUpdate struct {
	Name         *string
	Description  *string
	ImageURL     *string
	IsActive     *bool
	ImageCrop    *models.ImageCrop
	ImageCropSet bool
}

// CampaignWithCounts is a campaign annotated with child entity counts for
// the list view.
type CampaignWithCounts struct {
	models.Campaign
	CharacterCount    int
	OrganisationCount int
}

// CreateCampaign inserts a campaign with a unique slug derived from its
// name. A concurrent create may win the slug between the uniqueness probe
// and the insert; the UNIQUE constraint reports that and the loop re-probes.
func (db *DB) CreateCampaign(ctx context.Context, c CampaignCreate) (*models.Campaign, error) {
	now := time.Now()
	campaign := &models.Campaign{
		ID:          uuid.New().String(),
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		ImageCrop:   c.ImageCrop,
		IsActive:    true,
		CreatorID:   c.CreatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	crop, err := cropToNullString(c.ImageCrop)
	if err != nil {
		return nil, err
	}

	base := GenerateSlug(c.Name)
	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		slug, err := db.EnsureUniqueSlug(ctx, base, "")
		if err != nil {
			return nil, err
		}
		campaign.Slug = slug

		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO campaigns (id, slug, name, description, image_url, image_crop,
				is_active, creator_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			campaign.ID, campaign.Slug, campaign.Name, campaign.Description,
			campaign.ImageURL, crop, campaign.IsActive, campaign.CreatorID,
			campaign.CreatedAt, campaign.UpdatedAt,
		)
		if err == nil {
			return campaign, nil
		}
		if !isUniqueConstraintError(err) {
			return nil, fmt.Errorf("failed to create campaign: %w", err)
		}
	}

	return nil, ErrSlugConflict
}

// GetCampaignByID retrieves a campaign by its ID.
func (db *DB) GetCampaignByID(ctx context.Context, id string) (*models.Campaign, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	return scanCampaign(row)
}

// GetCampaignBySlug retrieves a campaign by its slug.
func (db *DB) GetCampaignBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE slug = ?`, slug)
	return scanCampaign(row)
}

// ResolveCampaign looks a campaign up by ID first, falling back to slug.
func (db *DB) ResolveCampaign(ctx context.Context, idOrSlug string) (*models.Campaign, error) {
	campaign, err := db.GetCampaignByID(ctx, idOrSlug)
	if err == nil {
		return campaign, nil
	}
	if err != ErrCampaignNotFound {
		return nil, err
	}
	return db.GetCampaignBySlug(ctx, idOrSlug)
}

// ListCampaignsWithCounts returns all campaigns ordered by last update,
// newest first, each annotated with child entity counts.
func (db *DB) ListCampaignsWithCounts(ctx context.Context) ([]CampaignWithCounts, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.slug, c.name, c.description, c.image_url, c.image_crop,
			c.is_active, c.creator_id, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM characters ch WHERE ch.campaign_id = c.id),
			(SELECT COUNT(*) FROM organisations o WHERE o.campaign_id = c.id)
		FROM campaigns c
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]CampaignWithCounts, 0)
	for rows.Next() {
		var cw CampaignWithCounts
		var crop, creatorID nullString
		if err := rows.Scan(&cw.ID, &cw.Slug, &cw.Name, &cw.Description, &cw.ImageURL,
			&crop, &cw.IsActive, &creatorID, &cw.CreatedAt, &cw.UpdatedAt,
			&cw.CharacterCount, &cw.OrganisationCount); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		cw.ImageCrop = cropFromNullString(crop.NullString)
		cw.CreatorID = creatorID.ptr()
		campaigns = append(campaigns, cw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}

	return campaigns, nil
}

// UpdateCampaign applies a partial update. The slug is never changed
// implicitly; renaming a campaign keeps its slug.
func (db *DB) UpdateCampaign(ctx context.Context, id string, u CampaignUpdate) (*models.Campaign, error) {
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
	if u.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *u.IsActive)
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
		`UPDATE campaigns SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrCampaignNotFound
	}

	return db.GetCampaignByID(ctx, id)
}

// DeleteCampaign removes a campaign and everything it owns: characters,
// organisations, crews and their members, relationship rows referencing any
// removed entity, and editor assignments. DuckDB does not enforce cascade,
// so the whole teardown runs in one transaction.
func (db *DB) DeleteCampaign(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCampaignNotFound
	}

	cascade := []string{
		`DELETE FROM relationships WHERE from_npc_id IN (SELECT id FROM characters WHERE campaign_id = ?)
			OR to_npc_id IN (SELECT id FROM characters WHERE campaign_id = ?)`,
		`DELETE FROM crew_relationships WHERE from_crew_id IN (SELECT id FROM crews WHERE campaign_id = ?)
			OR to_npc_id IN (SELECT id FROM characters WHERE campaign_id = ?)`,
		`DELETE FROM crew_member_relationships
			WHERE from_crew_member_id IN (SELECT cm.id FROM crew_members cm JOIN crews cr ON cm.crew_id = cr.id WHERE cr.campaign_id = ?)
			OR to_npc_id IN (SELECT id FROM characters WHERE campaign_id = ?)`,
		`DELETE FROM universal_relationships
			WHERE (from_entity_type = 'character' AND from_entity_id IN (SELECT id FROM characters WHERE campaign_id = ?))
			OR (to_entity_type = 'character' AND to_entity_id IN (SELECT id FROM characters WHERE campaign_id = ?))`,
		`DELETE FROM universal_relationships
			WHERE (from_entity_type = 'organisation' AND from_entity_id IN (SELECT id FROM organisations WHERE campaign_id = ?))
			OR (to_entity_type = 'organisation' AND to_entity_id IN (SELECT id FROM organisations WHERE campaign_id = ?))`,
		`DELETE FROM organisation_members
			WHERE organisation_id IN (SELECT id FROM organisations WHERE campaign_id = ?)
			OR character_id IN (SELECT id FROM characters WHERE campaign_id = ?)`,
		`DELETE FROM crew_members WHERE crew_id IN (SELECT id FROM crews WHERE campaign_id = ?)`,
		`DELETE FROM characters WHERE campaign_id = ?`,
		`DELETE FROM organisations WHERE campaign_id = ?`,
		`DELETE FROM crews WHERE campaign_id = ?`,
		`DELETE FROM campaign_editors WHERE campaign_id = ?`,
	}
	for _, stmt := range cascade {
		args := make([]any, countPlaceholders(stmt))
		for i := range args {
			args[i] = id
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to cascade campaign delete: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit campaign delete: %w", err)
	}
	return nil
}

// ListCampaignEditorIDs returns the user IDs assigned as editors.
func (db *DB) ListCampaignEditorIDs(ctx context.Context, campaignID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id FROM campaign_editors WHERE campaign_id = ? ORDER BY user_id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign editors: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan editor row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddCampaignEditor assigns a user as an editor. Idempotent.
func (db *DB) AddCampaignEditor(ctx context.Context, campaignID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO campaign_editors (campaign_id, user_id) VALUES (?, ?)`,
		campaignID, userID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil
		}
		return fmt.Errorf("failed to add campaign editor: %w", err)
	}
	return nil
}

// RemoveCampaignEditor removes an editor assignment.
func (db *DB) RemoveCampaignEditor(ctx context.Context, campaignID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM campaign_editors WHERE campaign_id = ? AND user_id = ?`,
		campaignID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove campaign editor: %w", err)
	}
	return nil
}

// IsCampaignEditor reports whether the user appears in the campaign's
// editor-assignment list.
func (db *DB) IsCampaignEditor(ctx context.Context, campaignID, userID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM campaign_editors WHERE campaign_id = ? AND user_id = ?`,
		campaignID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check campaign editor: %w", err)
	}
	return count > 0, nil
}

// GetCampaignDetail resolves a campaign and loads the nested graph data the
// front end renders: characters with memberships, organisations, crews with
// members, and character relationships.
func (db *DB) GetCampaignDetail(ctx context.Context, idOrSlug string) (*models.CampaignDetail, error) {
	campaign, err := db.ResolveCampaign(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	detail := &models.CampaignDetail{Campaign: *campaign}

	if detail.Characters, err = db.ListCharacters(ctx, &campaign.ID); err != nil {
		return nil, err
	}
	if detail.Organisations, err = db.ListOrganisations(ctx, &campaign.ID); err != nil {
		return nil, err
	}
	if detail.Crews, err = db.ListCrews(ctx, &campaign.ID, true); err != nil {
		return nil, err
	}
	if detail.Relationships, err = db.ListRelationshipsForCampaign(ctx, campaign.ID); err != nil {
		return nil, err
	}

	return detail, nil
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	var crop, creatorID nullString
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.ImageURL,
		&crop, &c.IsActive, &creatorID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to scan campaign: %w", err)
	}
	c.ImageCrop = cropFromNullString(crop.NullString)
	c.CreatorID = creatorID.ptr()
	return &c, nil
}
