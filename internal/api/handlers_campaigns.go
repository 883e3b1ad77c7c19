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

// handleListCampaigns returns every campaign with child counts and the
// caller's edit capability. Editor assignment lists never leave the server;
// only the derived canEdit flag does.
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.currentUser(ctx)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	campaigns, err := s.db.ListCampaignsWithCounts(ctx)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	summaries := make([]models.CampaignSummary, 0, len(campaigns))
	for _, c := range campaigns {
		canEdit, err := s.canEditCampaign(ctx, user, c.ID)
		if err != nil {
			respondDatabaseError(w, r, err)
			return
		}
		summaries = append(summaries, models.CampaignSummary{
			Campaign:          c.Campaign,
			CanEdit:           canEdit,
			CharacterCount:    c.CharacterCount,
			OrganisationCount: c.OrganisationCount,
		})
	}

	respondSuccess(w, r, http.StatusOK, summaries)
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, authErr := s.requireEditor(ctx)
	if authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req campaignCreateRequest
	if !bind(w, r, &req) {
		return
	}

	campaign, err := s.db.CreateCampaign(ctx, database.CampaignCreate{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ImageCrop:   req.ImageCrop,
		CreatorID:   &user.ID,
	})
	if err != nil {
		if errors.Is(err, database.ErrSlugConflict) {
			respondError(w, r, http.StatusConflict, CodeConflict, "Could not allocate a unique campaign slug")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if req.OrganisationName != "" {
		if _, err := s.db.CreateOrganisation(ctx, database.OrganisationCreate{
			Name:       req.OrganisationName,
			CampaignID: &campaign.ID,
		}); err != nil {
			respondDatabaseError(w, r, err)
			return
		}
	}

	logging.Ctx(ctx).Info().Str("campaign_id", campaign.ID).Str("slug", campaign.Slug).Msg("campaign created")
	respondSuccess(w, r, http.StatusCreated, campaign)
}

// handleGetCampaign returns the campaign with its full nested graph,
// resolved by id or slug.
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	detail, err := s.db.GetCampaignDetail(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, detail)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idOrSlug := chi.URLParam(r, "idOrSlug")

	if _, authErr := s.requireCampaignEdit(ctx, idOrSlug); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	campaign, err := s.db.ResolveCampaign(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	var req campaignUpdateRequest
	if !bind(w, r, &req) {
		return
	}
	crop, cropSet, err := parseCropField(req.ImageCrop)
	if err != nil {
		respondValidationError(w, r, "imageCrop must be an object or null")
		return
	}

	updated, err := s.db.UpdateCampaign(ctx, campaign.ID, database.CampaignUpdate{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		IsActive:     req.IsActive,
		ImageCrop:    crop,
		ImageCropSet: cropSet,
	})
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idOrSlug := chi.URLParam(r, "idOrSlug")

	if _, authErr := s.requireCampaignEdit(ctx, idOrSlug); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	campaign, err := s.db.ResolveCampaign(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if err := s.db.DeleteCampaign(ctx, campaign.ID); err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("campaign_id", campaign.ID).Msg("campaign deleted")
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Campaign deleted"})
}

// handleCanEditCampaign reports the caller's edit capability for one
// campaign without revealing why.
func (s *Server) handleCanEditCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.currentUser(ctx)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	canEdit, err := s.canEditCampaign(ctx, user, chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]bool{"canEdit": canEdit})
}

// handleListCampaignEditors is admin-only; the assignment list is
// management data, not campaign content.
func (s *Server) handleListCampaignEditors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, authErr := s.requireAdmin(ctx); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	campaign, err := s.db.ResolveCampaign(ctx, chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	ids, err := s.db.ListCampaignEditorIDs(ctx, campaign.ID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string][]string{"editorIds": ids})
}

func (s *Server) handleAddCampaignEditor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, authErr := s.requireAdmin(ctx); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	campaign, err := s.db.ResolveCampaign(ctx, chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	var req editorAssignRequest
	if !bind(w, r, &req) {
		return
	}

	if _, err := s.db.GetUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondNotFound(w, r, "User not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if err := s.db.AddCampaignEditor(ctx, campaign.ID, req.UserID); err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().
		Str("campaign_id", campaign.ID).
		Str("user_id", req.UserID).
		Msg("campaign editor assigned")
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Editor assigned"})
}

func (s *Server) handleRemoveCampaignEditor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, authErr := s.requireAdmin(ctx); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	campaign, err := s.db.ResolveCampaign(ctx, chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, database.ErrCampaignNotFound) {
			respondNotFound(w, r, "Campaign not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if err := s.db.RemoveCampaignEditor(ctx, campaign.ID, chi.URLParam(r, "userId")); err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Editor removed"})
}
