// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

// Package api implements the HTTP surface: routing, request decoding,
// access control and the JSON response envelope.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/LizaMalinina/npc-graph-sub001/internal/auth"
	"github.com/LizaMalinina/npc-graph-sub001/internal/authz"
	"github.com/LizaMalinina/npc-graph-sub001/internal/config"
	"github.com/LizaMalinina/npc-graph-sub001/internal/database"
	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

// Server wires the store, token handling and policy engine behind the
// HTTP handlers.
type Server struct {
	db       *database.DB
	cfg      *config.Config
	jwt      *auth.JWTManager
	authMW   *auth.Middleware
	enforcer *authz.Enforcer

	startTime time.Time
}

// NewServer builds a Server from its dependencies.
func NewServer(db *database.DB, cfg *config.Config, jwtManager *auth.JWTManager, enforcer *authz.Enforcer) *Server {
	return &Server{
		db:        db,
		cfg:       cfg,
		jwt:       jwtManager,
		authMW:    auth.NewMiddleware(jwtManager),
		enforcer:  enforcer,
		startTime: time.Now(),
	}
}

// currentUser resolves the authenticated user from request claims, loading
// the stored record so role changes take effect without re-login. Anonymous
// requests return nil with no error.
func (s *Server) currentUser(ctx context.Context) (*models.User, error) {
	claims := auth.ClaimsFromContext(ctx)
	if claims == nil {
		return nil, nil
	}
	user, err := s.db.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// hasRole reports whether the user's role meets or exceeds the required
// role in the viewer < editor < admin ordering. A nil user is a viewer.
func hasRole(user *models.User, required string) bool {
	role := models.RoleViewer
	if user != nil {
		role = user.Role
	}
	return models.RoleAtLeast(role, required)
}

// canEditCampaign decides campaign-scoped write access: admins always may,
// viewers and anonymous users never may, and editors may when they created
// the campaign or hold an editor assignment on it. The campaign is resolved
// by id first, then slug.
func (s *Server) canEditCampaign(ctx context.Context, user *models.User, idOrSlug string) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.Role == models.RoleAdmin {
		return true, nil
	}
	if user.Role != models.RoleEditor {
		return false, nil
	}

	campaign, err := s.db.ResolveCampaign(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			return false, nil
		}
		return false, err
	}
	if campaign.CreatorID != nil && *campaign.CreatorID == user.ID {
		return true, nil
	}
	return s.db.IsCampaignEditor(ctx, campaign.ID, user.ID)
}

// requireAuth returns the current user or an AuthError for anonymous
// requests.
func (s *Server) requireAuth(ctx context.Context) (*models.User, *AuthError) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, &AuthError{Status: http.StatusInternalServerError, Code: CodeDatabaseError, Message: "Internal server error"}
	}
	if user == nil {
		return nil, errAuthRequired()
	}
	return user, nil
}

// requireAdmin returns the current user when the policy grants their role
// admin-level access. Anonymous and non-admin requests both get the
// admin-required 403, so the endpoint does not reveal whether credentials
// were presented.
func (s *Server) requireAdmin(ctx context.Context) (*models.User, *AuthError) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, &AuthError{Status: http.StatusInternalServerError, Code: CodeDatabaseError, Message: "Internal server error"}
	}
	role := models.RoleViewer
	if user != nil {
		role = user.Role
	}
	allowed, err := s.enforcer.EnforceRole(role, "/api/users", authz.ActionAdmin)
	if err != nil {
		return nil, &AuthError{Status: http.StatusInternalServerError, Code: CodeDatabaseError, Message: "Internal server error"}
	}
	if !allowed {
		return nil, errAdminRequired()
	}
	return user, nil
}

// requireEditor returns the current user when the policy grants their role
// write access to campaign content.
func (s *Server) requireEditor(ctx context.Context) (*models.User, *AuthError) {
	user, authErr := s.requireAuth(ctx)
	if authErr != nil {
		return nil, authErr
	}
	allowed, err := s.enforcer.EnforceRole(user.Role, "/api/campaigns", authz.ActionWrite)
	if err != nil {
		return nil, &AuthError{Status: http.StatusInternalServerError, Code: CodeDatabaseError, Message: "Internal server error"}
	}
	if !allowed {
		return nil, errForbidden("Editor access required")
	}
	return user, nil
}

// requireCampaignEdit returns the current user when they may modify the
// given campaign's content.
func (s *Server) requireCampaignEdit(ctx context.Context, idOrSlug string) (*models.User, *AuthError) {
	user, authErr := s.requireAuth(ctx)
	if authErr != nil {
		return nil, authErr
	}
	ok, err := s.canEditCampaign(ctx, user, idOrSlug)
	if err != nil {
		return nil, &AuthError{Status: http.StatusInternalServerError, Code: CodeDatabaseError, Message: "Internal server error"}
	}
	if !ok {
		return nil, errForbidden("You do not have permission to edit this campaign")
	}
	return user, nil
}

// requireEntityEdit authorises a write against an entity that may or may
// not belong to a campaign. Entities outside any campaign need only the
// editor role; campaign-scoped entities need edit access on that campaign.
func (s *Server) requireEntityEdit(ctx context.Context, campaignID *string) (*models.User, *AuthError) {
	if campaignID == nil || *campaignID == "" {
		return s.requireEditor(ctx)
	}
	return s.requireCampaignEdit(ctx, *campaignID)
}
