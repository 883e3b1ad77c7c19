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

// RelationshipCreate carries the fields accepted when creating a typed
// character-to-character relationship.
type RelationshipCreate struct {
	FromNpcID   string
	ToNpcID     string
	Type        string
	Description string
	Strength    *int
}

// CrewRelationshipCreate carries the fields for a crew-to-character edge.
type CrewRelationshipCreate struct {
	FromCrewID  string
	ToNpcID     string
	Type        string
	Description string
	Strength    *int
}

// CrewMemberRelationshipCreate carries the fields for a
// crew-member-to-character edge.
type CrewMemberRelationshipCreate struct {
	FromCrewMemberID string
	ToNpcID          string
	Type             string
	Description      string
	Strength         *int
}

// UniversalRelationshipCreate carries the five identifying fields plus the
// optional description and strength.
type UniversalRelationshipCreate struct {
	FromEntityID   string
	FromEntityType models.EntityType
	ToEntityID     string
	ToEntityType   models.EntityType
	Type           string
	Description    string
	Strength       *int
}

// RelationshipEdgeUpdate is the partial update shared by all relationship
// kinds. Endpoints are immutable: an edge can be retyped or removed, never
// re-pointed.
type RelationshipEdgeUpdate struct {
	Type        *string
	Description *string
	Strength    *int
}

func strengthOrDefault(strength *int) int {
	if strength == nil {
		return models.DefaultRelationshipStrength
	}
	return *strength
}

// CreateRelationship inserts a typed relationship. An existing row with the
// identical (from, to, type) triple is a conflict; the UNIQUE constraint
// backstops the application-layer check under concurrency.
func (db *DB) CreateRelationship(ctx context.Context, r RelationshipCreate) (*models.Relationship, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM relationships WHERE from_npc_id = ? AND to_npc_id = ? AND type = ?`,
		r.FromNpcID, r.ToNpcID, r.Type).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate relationship: %w", err)
	}
	if count > 0 {
		return nil, ErrRelationshipConflict
	}

	now := time.Now()
	rel := &models.Relationship{
		ID:          uuid.New().String(),
		FromNpcID:   r.FromNpcID,
		ToNpcID:     r.ToNpcID,
		Type:        r.Type,
		Description: r.Description,
		Strength:    strengthOrDefault(r.Strength),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO relationships (id, from_npc_id, to_npc_id, type, description, strength, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.ID, rel.FromNpcID, rel.ToNpcID, rel.Type, rel.Description, rel.Strength,
		rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrRelationshipConflict
		}
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}

	return rel, nil
}

// GetRelationship retrieves a typed relationship by ID.
func (db *DB) GetRelationship(ctx context.Context, id string) (*models.Relationship, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, from_npc_id, to_npc_id, type, description, strength, created_at, updated_at
		FROM relationships WHERE id = ?`, id)
	return scanRelationship(row)
}

// ListRelationships returns all typed relationships.
func (db *DB) ListRelationships(ctx context.Context) ([]models.Relationship, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, from_npc_id, to_npc_id, type, description, strength, created_at, updated_at
		FROM relationships ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer rows.Close()
	return collectRelationships(rows)
}

// ListRelationshipsForCampaign returns typed relationships whose source
// character belongs to the campaign.
func (db *DB) ListRelationshipsForCampaign(ctx context.Context, campaignID string) ([]models.Relationship, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT r.id, r.from_npc_id, r.to_npc_id, r.type, r.description, r.strength, r.created_at, r.updated_at
		FROM relationships r
		JOIN characters c ON r.from_npc_id = c.id
		WHERE c.campaign_id = ?
		ORDER BY r.created_at`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign relationships: %w", err)
	}
	defer rows.Close()
	return collectRelationships(rows)
}

// UpdateRelationship rewrites type, description and strength only.
func (db *DB) UpdateRelationship(ctx context.Context, id string, u RelationshipEdgeUpdate) (*models.Relationship, error) {
	if err := db.updateEdge(ctx, "relationships", id, u); err != nil {
		return nil, err
	}
	return db.GetRelationship(ctx, id)
}

// DeleteRelationship removes a typed relationship.
func (db *DB) DeleteRelationship(ctx context.Context, id string) error {
	return db.deleteEdge(ctx, "relationships", id)
}

// CreateCrewRelationship inserts a crew-to-character edge.
func (db *DB) CreateCrewRelationship(ctx context.Context, r CrewRelationshipCreate) (*models.CrewRelationship, error) {
	now := time.Now()
	rel := &models.CrewRelationship{
		ID:          uuid.New().String(),
		FromCrewID:  r.FromCrewID,
		ToNpcID:     r.ToNpcID,
		Type:        r.Type,
		Description: r.Description,
		Strength:    strengthOrDefault(r.Strength),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO crew_relationships (id, from_crew_id, to_npc_id, type, description, strength, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.ID, rel.FromCrewID, rel.ToNpcID, rel.Type, rel.Description, rel.Strength,
		rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create crew relationship: %w", err)
	}
	return rel, nil
}

// GetCrewRelationship retrieves a crew relationship by ID.
func (db *DB) GetCrewRelationship(ctx context.Context, id string) (*models.CrewRelationship, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, from_crew_id, to_npc_id, type, description, strength, created_at, updated_at
		FROM crew_relationships WHERE id = ?`, id)

	var rel models.CrewRelationship
	err := row.Scan(&rel.ID, &rel.FromCrewID, &rel.ToNpcID, &rel.Type, &rel.Description,
		&rel.Strength, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrRelationshipNotFound
		}
		return nil, fmt.Errorf("failed to scan crew relationship: %w", err)
	}
	return &rel, nil
}

// ListCrewRelationships returns all crew-to-character edges.
func (db *DB) ListCrewRelationships(ctx context.Context) ([]models.CrewRelationship, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, from_crew_id, to_npc_id, type, description, strength, created_at, updated_at
		FROM crew_relationships ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]models.CrewRelationship, 0)
	for rows.Next() {
		var rel models.CrewRelationship
		if err := rows.Scan(&rel.ID, &rel.FromCrewID, &rel.ToNpcID, &rel.Type, &rel.Description,
			&rel.Strength, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan crew relationship: %w", err)
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// UpdateCrewRelationship rewrites type, description and strength only.
func (db *DB) UpdateCrewRelationship(ctx context.Context, id string, u RelationshipEdgeUpdate) (*models.CrewRelationship, error) {
	if err := db.updateEdge(ctx, "crew_relationships", id, u); err != nil {
		return nil, err
	}
	return db.GetCrewRelationship(ctx, id)
}

// DeleteCrewRelationship removes a crew relationship.
func (db *DB) DeleteCrewRelationship(ctx context.Context, id string) error {
	return db.deleteEdge(ctx, "crew_relationships", id)
}

// CreateCrewMemberRelationship inserts a crew-member-to-character edge.
func (db *DB) CreateCrewMemberRelationship(ctx context.Context, r CrewMemberRelationshipCreate) (*models.CrewMemberRelationship, error) {
	now := time.Now()
	rel := &models.CrewMemberRelationship{
		ID:               uuid.New().String(),
		FromCrewMemberID: r.FromCrewMemberID,
		ToNpcID:          r.ToNpcID,
		Type:             r.Type,
		Description:      r.Description,
		Strength:         strengthOrDefault(r.Strength),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO crew_member_relationships (id, from_crew_member_id, to_npc_id, type, description, strength, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.ID, rel.FromCrewMemberID, rel.ToNpcID, rel.Type, rel.Description, rel.Strength,
		rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create crew member relationship: %w", err)
	}
	return rel, nil
}

// GetCrewMemberRelationship retrieves a crew member relationship by ID.
func (db *DB) GetCrewMemberRelationship(ctx context.Context, id string) (*models.CrewMemberRelationship, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, from_crew_member_id, to_npc_id, type, description, strength, created_at, updated_at
		FROM crew_member_relationships WHERE id = ?`, id)

	var rel models.CrewMemberRelationship
	err := row.Scan(&rel.ID, &rel.FromCrewMemberID, &rel.ToNpcID, &rel.Type, &rel.Description,
		&rel.Strength, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrRelationshipNotFound
		}
		return nil, fmt.Errorf("failed to scan crew member relationship: %w", err)
	}
	return &rel, nil
}

// ListCrewMemberRelationships returns all crew-member-to-character edges.
func (db *DB) ListCrewMemberRelationships(ctx context.Context) ([]models.CrewMemberRelationship, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, from_crew_member_id, to_npc_id, type, description, strength, created_at, updated_at
		FROM crew_member_relationships ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list crew member relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]models.CrewMemberRelationship, 0)
	for rows.Next() {
		var rel models.CrewMemberRelationship
		if err := rows.Scan(&rel.ID, &rel.FromCrewMemberID, &rel.ToNpcID, &rel.Type, &rel.Description,
			&rel.Strength, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan crew member relationship: %w", err)
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// UpdateCrewMemberRelationship rewrites type, description and strength only.
func (db *DB) UpdateCrewMemberRelationship(ctx context.Context, id string, u RelationshipEdgeUpdate) (*models.CrewMemberRelationship, error) {
	if err := db.updateEdge(ctx, "crew_member_relationships", id, u); err != nil {
		return nil, err
	}
	return db.GetCrewMemberRelationship(ctx, id)
}

// DeleteCrewMemberRelationship removes a crew member relationship.
func (db *DB) DeleteCrewMemberRelationship(ctx context.Context, id string) error {
	return db.deleteEdge(ctx, "crew_member_relationships", id)
}

// EntityExists reports whether the (type, id) pair resolves to a stored
// entity, using the entity-type lookup table to pick the backing table.
func (db *DB) EntityExists(ctx context.Context, entityType models.EntityType, id string) (bool, error) {
	table := entityType.Table()
	if table == "" {
		return false, fmt.Errorf("unknown entity type %q", entityType)
	}

	// Table name comes from the closed EntityType lookup map, never from
	// request input.
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check entity existence: %w", err)
	}
	return count > 0, nil
}

// CreateUniversalRelationship inserts a generic edge. Unlike the typed
// relationship path there is deliberately no duplicate triple check here;
// the source system behaved the same way.
func (db *DB) CreateUniversalRelationship(ctx context.Context, r UniversalRelationshipCreate) (*models.UniversalRelationship, error) {
	now := time.Now()
	rel := &models.UniversalRelationship{
		ID:             uuid.New().String(),
		FromEntityID:   r.FromEntityID,
		FromEntityType: r.FromEntityType,
		ToEntityID:     r.ToEntityID,
		ToEntityType:   r.ToEntityType,
		Type:           r.Type,
		Description:    r.Description,
		Strength:       strengthOrDefault(r.Strength),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO universal_relationships (id, from_entity_id, from_entity_type,
			to_entity_id, to_entity_type, type, description, strength, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.ID, rel.FromEntityID, string(rel.FromEntityType),
		rel.ToEntityID, string(rel.ToEntityType), rel.Type, rel.Description, rel.Strength,
		rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create universal relationship: %w", err)
	}
	return rel, nil
}

// GetUniversalRelationship retrieves a universal relationship by ID.
func (db *DB) GetUniversalRelationship(ctx context.Context, id string) (*models.UniversalRelationship, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, from_entity_id, from_entity_type, to_entity_id, to_entity_type,
			type, description, strength, created_at, updated_at
		FROM universal_relationships WHERE id = ?`, id)
	return scanUniversalRelationship(row)
}

// ListUniversalRelationships returns universal edges. A non-empty entityID
// matches rows where the entity appears on either side.
func (db *DB) ListUniversalRelationships(ctx context.Context, entityID string) ([]models.UniversalRelationship, error) {
	query := `SELECT id, from_entity_id, from_entity_type, to_entity_id, to_entity_type,
		type, description, strength, created_at, updated_at
	FROM universal_relationships`
	args := []any{}
	if entityID != "" {
		query += ` WHERE from_entity_id = ? OR to_entity_id = ?`
		args = append(args, entityID, entityID)
	}
	query += ` ORDER BY created_at`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list universal relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]models.UniversalRelationship, 0)
	for rows.Next() {
		rel, err := scanUniversalRelationship(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, *rel)
	}
	return rels, rows.Err()
}

// UpdateUniversalRelationship rewrites type, description and strength only;
// the endpoint identifiers are never touched.
func (db *DB) UpdateUniversalRelationship(ctx context.Context, id string, u RelationshipEdgeUpdate) (*models.UniversalRelationship, error) {
	if err := db.updateEdge(ctx, "universal_relationships", id, u); err != nil {
		return nil, err
	}
	return db.GetUniversalRelationship(ctx, id)
}

// DeleteUniversalRelationship removes a universal relationship.
func (db *DB) DeleteUniversalRelationship(ctx context.Context, id string) error {
	return db.deleteEdge(ctx, "universal_relationships", id)
}

// updateEdge applies the shared partial update to one of the relationship
// tables. The table name is always a compile-time constant at call sites.
func (db *DB) updateEdge(ctx context.Context, table, id string, u RelationshipEdgeUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now()}

	if u.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *u.Type)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Strength != nil {
		sets = append(sets, "strength = ?")
		args = append(args, *u.Strength)
	}

	args = append(args, id)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE `+table+` SET `+joinSets(sets)+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrRelationshipConflict
		}
		return fmt.Errorf("failed to update relationship: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRelationshipNotFound
	}
	return nil
}

func (db *DB) deleteEdge(ctx context.Context, table, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRelationshipNotFound
	}
	return nil
}

func scanRelationship(row rowScanner) (*models.Relationship, error) {
	var rel models.Relationship
	err := row.Scan(&rel.ID, &rel.FromNpcID, &rel.ToNpcID, &rel.Type, &rel.Description,
		&rel.Strength, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrRelationshipNotFound
		}
		return nil, fmt.Errorf("failed to scan relationship: %w", err)
	}
	return &rel, nil
}

func collectRelationships(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]models.Relationship, error) {
	rels := make([]models.Relationship, 0)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, *rel)
	}
	return rels, rows.Err()
}

func scanUniversalRelationship(row rowScanner) (*models.UniversalRelationship, error) {
	var rel models.UniversalRelationship
	var fromType, toType string
	err := row.Scan(&rel.ID, &rel.FromEntityID, &fromType, &rel.ToEntityID, &toType,
		&rel.Type, &rel.Description, &rel.Strength, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrRelationshipNotFound
		}
		return nil, fmt.Errorf("failed to scan universal relationship: %w", err)
	}
	rel.FromEntityType = models.EntityType(fromType)
	rel.ToEntityType = models.EntityType(toType)
	return &rel, nil
}
