// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/LizaMalinina/npc-graph-sub001/internal/database"
	"github.com/LizaMalinina/npc-graph-sub001/internal/logging"
	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

// handleListUsers is admin-only. Anonymous callers get the same 403 as
// authenticated non-admins.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, authErr := s.requireAdmin(ctx); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	users, err := s.db.ListUserSummaries(ctx)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, users)
}

// handleUpdateUser changes a user's global role. Admins cannot demote
// themselves; losing the last admin would lock the instance.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, authErr := s.requireAdmin(ctx)
	if authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req userUpdateRequest
	if !bind(w, r, &req) {
		return
	}
	if req.Role == nil {
		respondValidationError(w, r, "role is required")
		return
	}

	targetID := chi.URLParam(r, "id")
	if targetID == admin.ID && *req.Role != models.RoleAdmin {
		respondValidationError(w, r, "Admins cannot change their own role")
		return
	}

	user, err := s.db.UpdateUserRole(ctx, targetID, *req.Role)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondNotFound(w, r, "User not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Str("changed_by", admin.ID).
		Msg("user role updated")
	respondSuccess(w, r, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	admin, authErr := s.requireAdmin(ctx)
	if authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	targetID := chi.URLParam(r, "id")
	if targetID == admin.ID {
		respondValidationError(w, r, "Admins cannot delete their own account")
		return
	}

	if err := s.db.DeleteUser(ctx, targetID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondNotFound(w, r, "User not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("user_id", targetID).Str("deleted_by", admin.ID).Msg("user deleted")
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "User deleted"})
}
