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

// campaignFilter reads the optional ?campaignId query parameter.
func campaignFilter(r *http.Request) *string {
	if v := r.URL.Query().Get("campaignId"); v != "" {
		return &v
	}
	return nil
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.db.ListCharacters(r.Context(), campaignFilter(r))
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, characters)
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req characterCreateRequest
	if !bind(w, r, &req) {
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, req.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	ch, err := s.db.CreateCharacter(ctx, database.CharacterCreate{
		Name:            req.Name,
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		ImageCrop:       req.ImageCrop,
		Faction:         req.Faction,
		Location:        req.Location,
		Status:          req.Status,
		Tags:            req.Tags,
		PosX:            req.PosX,
		PosY:            req.PosY,
		CampaignID:      req.CampaignID,
		OrganisationIDs: req.OrganisationIDs,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("character_id", ch.ID).Msg("character created")
	respondSuccess(w, r, http.StatusCreated, ch)
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	ch, err := s.db.GetCharacter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, ch)
}

func (s *Server) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ch, err := s.db.GetCharacter(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, ch.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req characterUpdateRequest
	if !bind(w, r, &req) {
		return
	}
	crop, cropSet, err := parseCropField(req.ImageCrop)
	if err != nil {
		respondValidationError(w, r, "imageCrop must be an object or null")
		return
	}

	updated, err := s.db.UpdateCharacter(ctx, ch.ID, database.CharacterUpdate{
		Name:         req.Name,
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Faction:      req.Faction,
		Location:     req.Location,
		Status:       req.Status,
		Tags:         req.Tags,
		PosX:         req.PosX,
		PosY:         req.PosY,
		ImageCrop:    crop,
		ImageCropSet: cropSet,
	})
	if err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ch, err := s.db.GetCharacter(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, ch.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	if err := s.db.DeleteCharacter(ctx, ch.ID); err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("character_id", ch.ID).Msg("character deleted")
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Character deleted"})
}

// handleConnectOrganisations accepts a single organisationId or an
// organisationIds list and connects each; existing memberships are kept.
func (s *Server) handleConnectOrganisations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ch, err := s.db.GetCharacter(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, ch.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req membershipRequest
	if !bind(w, r, &req) {
		return
	}
	ids := req.ids()
	if len(ids) == 0 {
		respondValidationError(w, r, "organisationId or organisationIds is required")
		return
	}

	for _, orgID := range ids {
		if _, err := s.db.GetOrganisation(ctx, orgID); err != nil {
			if errors.Is(err, database.ErrOrganisationNotFound) {
				respondNotFound(w, r, "Organisation not found")
				return
			}
			respondDatabaseError(w, r, err)
			return
		}
	}

	if err := s.db.ConnectOrganisations(ctx, ch.ID, ids); err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	updated, err := s.db.GetCharacter(ctx, ch.ID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDisconnectOrganisation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ch, err := s.db.GetCharacter(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, ch.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	if err := s.db.DisconnectOrganisation(ctx, ch.ID, chi.URLParam(r, "orgId")); err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	updated, err := s.db.GetCharacter(ctx, ch.ID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, updated)
}
