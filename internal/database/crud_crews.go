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

const crewColumns = `id, name, description, image_url, image_crop,
	pos_x, pos_y, campaign_id, created_at, updated_at`

const crewMemberColumns = `id, crew_id, name, role, description, image_url,
	image_crop, status, created_at, updated_at`

// CrewCreate carries the fields accepted at crew creation.
type CrewCreate struct {
	Name        string
	Description string
	ImageURL    string
	ImageCrop   *models.ImageCrop
	PosX        float64
	PosY        float64
	CampaignID  *string

	// Members optionally creates crew members in the same call.
	Members []CrewMemberCreate
}

// CrewUpdate carries a partial update; nil pointers leave fields alone.
type CrewUpdate struct {
	Name         *string
	Description  *string
	ImageURL     *string
	PosX         *float64
	PosY         *float64
	ImageCrop    *models.ImageCrop
	ImageCropSet bool
}

// CrewMemberCreate carries the fields accepted at crew member creation.
type CrewMemberCreate struct {
	CrewID      string
	Name        string
	Role        string
	Description string
	ImageURL    string
	ImageCrop   *models.ImageCrop
	Status      string
}

// CrewMemberUpdate carries a partial update for a crew member.
type CrewMemberUpdate struct {
	Name         *string
	Role         *string
	Description  *string
	ImageURL     *string
	Status       *string
	ImageCrop    *models.ImageCrop
	ImageCropSet bool
}

// CreateCrew inserts a crew and any nested members.
func (db *DB) CreateCrew(ctx context.Context, c CrewCreate) (*models.Crew, error) {
	now := time.Now()
	crew := &models.Crew{
		ID:          uuid.New().String(),
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		ImageCrop:   c.ImageCrop,
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
		`INSERT INTO crews (id, name, description, image_url, image_crop,
			pos_x, pos_y, campaign_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		crew.ID, crew.Name, crew.Description, crew.ImageURL, crop,
		crew.PosX, crew.PosY, crew.CampaignID, crew.CreatedAt, crew.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create crew: %w", err)
	}

	for _, m := range c.Members {
		m.CrewID = crew.ID
		member, err := db.CreateCrewMember(ctx, m)
		if err != nil {
			return nil, err
		}
		crew.Members = append(crew.Members, *member)
	}

	return crew, nil
}

// GetCrew retrieves a crew with its members.
func (db *DB) GetCrew(ctx context.Context, id string) (*models.Crew, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+crewColumns+` FROM crews WHERE id = ?`, id)
	crew, err := scanCrew(row)
	if err != nil {
		return nil, err
	}

	if crew.Members, err = db.ListCrewMembers(ctx, id); err != nil {
		return nil, err
	}
	return crew, nil
}

// ListCrews returns crews, optionally filtered by campaign. When
// includeMembers is set each crew carries its member list.
func (db *DB) ListCrews(ctx context.Context, campaignID *string, includeMembers bool) ([]models.Crew, error) {
	query := `SELECT ` + crewColumns + ` FROM crews`
	args := []any{}
	if campaignID != nil {
		query += ` WHERE campaign_id = ?`
		args = append(args, *campaignID)
	}
	query += ` ORDER BY name`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crews: %w", err)
	}
	defer rows.Close()

	crews := make([]models.Crew, 0)
	for rows.Next() {
		crew, err := scanCrew(rows)
		if err != nil {
			return nil, err
		}
		crews = append(crews, *crew)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crews: %w", err)
	}

	if includeMembers {
		for i := range crews {
			if crews[i].Members, err = db.ListCrewMembers(ctx, crews[i].ID); err != nil {
				return nil, err
			}
		}
	}

	return crews, nil
}

// UpdateCrew applies a partial update and returns the updated record.
func (db *DB) UpdateCrew(ctx context.Context, id string, u CrewUpdate) (*models.Crew, error) {
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
		`UPDATE crews SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update crew: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrCrewNotFound
	}

	return db.GetCrew(ctx, id)
}

// DeleteCrew removes a crew, its members, and relationship rows sourced
// from the crew or its members.
func (db *DB) DeleteCrew(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM crews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete crew: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCrewNotFound
	}

	cleanup := []string{
		`DELETE FROM crew_member_relationships
			WHERE from_crew_member_id IN (SELECT id FROM crew_members WHERE crew_id = ?)`,
		`DELETE FROM crew_members WHERE crew_id = ?`,
		`DELETE FROM crew_relationships WHERE from_crew_id = ?`,
	}
	for _, stmt := range cleanup {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to clean up crew references: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crew delete: %w", err)
	}
	return nil
}

// CreateCrewMember inserts a crew member. Status defaults to alive. The
// referenced crew must exist.
func (db *DB) CreateCrewMember(ctx context.Context, m CrewMemberCreate) (*models.CrewMember, error) {
	if _, err := db.GetCrew(ctx, m.CrewID); err != nil {
		return nil, err
	}

	now := time.Now()
	if m.Status == "" {
		m.Status = models.StatusAlive
	}

	member := &models.CrewMember{
		ID:          uuid.New().String(),
		CrewID:      m.CrewID,
		Name:        m.Name,
		Role:        m.Role,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		ImageCrop:   m.ImageCrop,
		Status:      m.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	crop, err := cropToNullString(m.ImageCrop)
	if err != nil {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO crew_members (id, crew_id, name, role, description, image_url,
			image_crop, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.CrewID, member.Name, member.Role, member.Description,
		member.ImageURL, crop, member.Status, member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create crew member: %w", err)
	}

	return member, nil
}

// GetCrewMember retrieves a crew member by ID.
func (db *DB) GetCrewMember(ctx context.Context, id string) (*models.CrewMember, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+crewMemberColumns+` FROM crew_members WHERE id = ?`, id)
	return scanCrewMember(row)
}

// ListCrewMembers returns the members of a crew.
func (db *DB) ListCrewMembers(ctx context.Context, crewID string) ([]models.CrewMember, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+crewMemberColumns+` FROM crew_members WHERE crew_id = ? ORDER BY name`, crewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew members: %w", err)
	}
	defer rows.Close()

	members := make([]models.CrewMember, 0)
	for rows.Next() {
		member, err := scanCrewMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

// UpdateCrewMember applies a partial update and returns the updated record.
func (db *DB) UpdateCrewMember(ctx context.Context, id string, u CrewMemberUpdate) (*models.CrewMember, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now()}

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *u.Role)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *u.ImageURL)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
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
		`UPDATE crew_members SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update crew member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrCrewMemberNotFound
	}

	return db.GetCrewMember(ctx, id)
}

// DeleteCrewMember removes a crew member and relationship rows sourced from
// it.
func (db *DB) DeleteCrewMember(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM crew_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete crew member: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCrewMemberNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM crew_member_relationships WHERE from_crew_member_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clean up crew member references: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crew member delete: %w", err)
	}
	return nil
}

func scanCrew(row rowScanner) (*models.Crew, error) {
	var crew models.Crew
	var crop, campaignID nullString
	err := row.Scan(&crew.ID, &crew.Name, &crew.Description, &crew.ImageURL, &crop,
		&crew.PosX, &crew.PosY, &campaignID, &crew.CreatedAt, &crew.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrCrewNotFound
		}
		return nil, fmt.Errorf("failed to scan crew: %w", err)
	}
	crew.ImageCrop = cropFromNullString(crop.NullString)
	crew.CampaignID = campaignID.ptr()
	return &crew, nil
}

func scanCrewMember(row rowScanner) (*models.CrewMember, error) {
	var m models.CrewMember
	var crop nullString
	err := row.Scan(&m.ID, &m.CrewID, &m.Name, &m.Role, &m.Description, &m.ImageURL,
		&crop, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrCrewMemberNotFound
		}
		return nil, fmt.Errorf("failed to scan crew member: %w", err)
	}
	m.ImageCrop = cropFromNullString(crop.NullString)
	return &m, nil
}
