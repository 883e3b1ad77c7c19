// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/LizaMalinina/npc-graph-sub001/internal/auth"
	"github.com/LizaMalinina/npc-graph-sub001/internal/database"
	"github.com/LizaMalinina/npc-graph-sub001/internal/logging"
	"github.com/LizaMalinina/npc-graph-sub001/internal/metrics"
	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
	"github.com/LizaMalinina/npc-graph-sub001/internal/validation"
)

// bind decodes and validates a request body, writing the 400 response
// itself on failure.
func bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		respondValidationError(w, r, "Invalid JSON body")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondJSON(w, r, http.StatusBadRequest, models.APIResponse{
			Status: "error",
			Error: &models.APIError{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			},
		})
		return false
	}
	return true
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !bind(w, r, &req) {
		return
	}

	user, err := s.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
			respondError(w, r, http.StatusUnauthorized, CodeAuthRequired, "Invalid email or password")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("bad_password").Inc()
		respondError(w, r, http.StatusUnauthorized, CodeAuthRequired, "Invalid email or password")
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to issue token")
		respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Internal server error")
		return
	}

	s.setSessionCookie(w, token, s.cfg.Auth.TokenTTL)
	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("user logged in")
	respondSuccess(w, r, http.StatusOK, loginResponse{Token: token, User: user})
}

// handleRegister creates a new account with the viewer role. Role upgrades
// are an admin action.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !bind(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondValidationError(w, r, "Invalid password")
		return
	}

	user, err := s.db.CreateUser(r.Context(), database.UserCreate{
		Email:        req.Email,
		Name:         req.Name,
		Role:         models.RoleViewer,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailConflict) {
			respondError(w, r, http.StatusConflict, CodeConflict, "An account with this email already exists")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("user registered")
	respondSuccess(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, "", -time.Hour)
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Logged out"})
}

// handleMe returns the authenticated user's own record.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, authErr := s.requireAuth(r.Context())
	if authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}
	respondSuccess(w, r, http.StatusOK, user)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Server.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
}
