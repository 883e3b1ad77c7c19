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
)

func (s *Server) handleListOrganisations(w http.ResponseWriter, r *http.Request) {
	organisations, err := s.db.ListOrganisations(r.Context(), campaignFilter(r))
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, organisations)
}

// handleAvailableColors returns the palette colours not yet assigned,
// optionally scoped to a campaign. ?excludeId keeps an organisation's own
// colour selectable in its edit form.
func (s *Server) handleAvailableColors(w http.ResponseWriter, r *http.Request) {
	colors, err := s.db.AvailableColors(r.Context(), campaignFilter(r), r.URL.Query().Get("excludeId"))
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string][]string{"colors": colors})
}

func (s *Server) handleCreateOrganisation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req organisationCreateRequest
	if !bind(w, r, &req) {
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, req.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	org, err := s.db.CreateOrganisation(ctx, database.OrganisationCreate{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ImageCrop:   req.ImageCrop,
		Color:       req.Color,
		PosX:        req.PosX,
		PosY:        req.PosY,
		CampaignID:  req.CampaignID,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("organisation_id", org.ID).Msg("organisation created")
	respondSuccess(w, r, http.StatusCreated, org)
}

func (s *Server) handleGetOrganisation(w http.ResponseWriter, r *http.Request) {
	org, err := s.db.GetOrganisation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrOrganisationNotFound) {
			respondNotFound(w, r, "Organisation not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, org)
}

func (s *Server) handleUpdateOrganisation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := s.db.GetOrganisation(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrOrganisationNotFound) {
			respondNotFound(w, r, "Organisation not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, org.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req organisationUpdateRequest
	if !bind(w, r, &req) {
		return
	}
	crop, cropSet, err := parseCropField(req.ImageCrop)
	if err != nil {
		respondValidationError(w, r, "imageCrop must be an object or null")
		return
	}

	updated, err := s.db.UpdateOrganisation(ctx, org.ID, database.OrganisationUpdate{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Color:        req.Color,
		PosX:         req.PosX,
		PosY:         req.PosY,
		ImageCrop:    crop,
		ImageCropSet: cropSet,
	})
	if err != nil {
		if errors.Is(err, database.ErrOrganisationNotFound) {
			respondNotFound(w, r, "Organisation not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteOrganisation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	org, err := s.db.GetOrganisation(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrOrganisationNotFound) {
			respondNotFound(w, r, "Organisation not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, org.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	if err := s.db.DeleteOrganisation(ctx, org.ID); err != nil {
		if errors.Is(err, database.ErrOrganisationNotFound) {
			respondNotFound(w, r, "Organisation not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("organisation_id", org.ID).Msg("organisation deleted")
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Organisation deleted"})
}
