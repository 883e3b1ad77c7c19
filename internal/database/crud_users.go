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

// UserCreate carries the fields accepted at user creation. PasswordHash is
// the bcrypt hash, never the plaintext.
type UserCreate struct {
	Email        string
	Name         string
	Role         string
	PasswordHash string
}

// CreateUser inserts a user. Emails are unique; a clash maps to
// ErrEmailConflict.
func (db *DB) CreateUser(ctx context.Context, u UserCreate) (*models.User, error) {
	now := time.Now()
	if u.Role == "" {
		u.Role = models.RoleViewer
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(u.Email)),
		Name:         u.Name,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Role, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, role, password_hash, created_at, updated_at
		FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// ListUserSummaries returns every user together with campaign involvement
// counts for the admin user table.
func (db *DB) ListUserSummaries(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.role, u.created_at,
			(SELECT COUNT(*) FROM campaigns c WHERE c.creator_id = u.id) AS created_count,
			(SELECT COUNT(*) FROM campaign_editors e WHERE e.user_id = u.id) AS editable_count
		FROM users u
		ORDER BY u.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.UserSummary, 0)
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.Role, &s.CreatedAt,
			&s.CreatedCampaignCount, &s.EditableCampaignCount); err != nil {
			return nil, fmt.Errorf("failed to scan user summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return summaries, nil
}

// UpdateUserRole changes a user's global role.
func (db *DB) UpdateUserRole(ctx context.Context, id, role string) (*models.User, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return db.GetUserByID(ctx, id)
}

// DeleteUser removes a user and their campaign editor assignments. Campaigns
// they created survive with creator_id cleared.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM campaign_editors WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clean up editor assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE campaigns SET creator_id = NULL WHERE creator_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear campaign creators: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user delete: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
