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

func (s *Server) handleListCrews(w http.ResponseWriter, r *http.Request) {
	includeMembers := r.URL.Query().Get("includeMembers") == "true"
	crews, err := s.db.ListCrews(r.Context(), campaignFilter(r), includeMembers)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, crews)
}

func (s *Server) handleCreateCrew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req crewCreateRequest
	if !bind(w, r, &req) {
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, req.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	members := make([]database.CrewMemberCreate, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, database.CrewMemberCreate{
			Name:        m.Name,
			Role:        m.Role,
			Description: m.Description,
			ImageURL:    m.ImageURL,
			ImageCrop:   m.ImageCrop,
			Status:      m.Status,
		})
	}

	crew, err := s.db.CreateCrew(ctx, database.CrewCreate{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ImageCrop:   req.ImageCrop,
		PosX:        req.PosX,
		PosY:        req.PosY,
		CampaignID:  req.CampaignID,
		Members:     members,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("crew_id", crew.ID).Int("members", len(crew.Members)).Msg("crew created")
	respondSuccess(w, r, http.StatusCreated, crew)
}

func (s *Server) handleGetCrew(w http.ResponseWriter, r *http.Request) {
	crew, err := s.db.GetCrew(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCrewNotFound) {
			respondNotFound(w, r, "Crew not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, crew)
}

func (s *Server) handleUpdateCrew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	crew, err := s.db.GetCrew(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCrewNotFound) {
			respondNotFound(w, r, "Crew not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req crewUpdateRequest
	if !bind(w, r, &req) {
		return
	}
	crop, cropSet, err := parseCropField(req.ImageCrop)
	if err != nil {
		respondValidationError(w, r, "imageCrop must be an object or null")
		return
	}

	updated, err := s.db.UpdateCrew(ctx, crew.ID, database.CrewUpdate{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		PosX:         req.PosX,
		PosY:         req.PosY,
		ImageCrop:    crop,
		ImageCropSet: cropSet,
	})
	if err != nil {
		if errors.Is(err, database.ErrCrewNotFound) {
			respondNotFound(w, r, "Crew not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCrew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	crew, err := s.db.GetCrew(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCrewNotFound) {
			respondNotFound(w, r, "Crew not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	if err := s.db.DeleteCrew(ctx, crew.ID); err != nil {
		if errors.Is(err, database.ErrCrewNotFound) {
			respondNotFound(w, r, "Crew not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("crew_id", crew.ID).Msg("crew deleted")
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Crew deleted"})
}

func (s *Server) handleListCrewMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	crewID := chi.URLParam(r, "id")

	if _, err := s.db.GetCrew(ctx, crewID); err != nil {
		if errors.Is(err, database.ErrCrewNotFound) {
			respondNotFound(w, r, "Crew not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	members, err := s.db.ListCrewMembers(ctx, crewID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, members)
}

func (s *Server) handleCreateCrewMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	crewID := chi.URLParam(r, "id")

	crew, err := s.db.GetCrew(ctx, crewID)
	if err != nil {
		if errors.Is(err, database.ErrCrewNotFound) {
			respondNotFound(w, r, "Crew not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req crewMemberCreateRequest
	if !bind(w, r, &req) {
		return
	}

	member, err := s.db.CreateCrewMember(ctx, database.CrewMemberCreate{
		CrewID:      crewID,
		Name:        req.Name,
		Role:        req.Role,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ImageCrop:   req.ImageCrop,
		Status:      req.Status,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("crew_member_id", member.ID).Str("crew_id", crewID).Msg("crew member created")
	respondSuccess(w, r, http.StatusCreated, member)
}

func (s *Server) handleGetCrewMember(w http.ResponseWriter, r *http.Request) {
	member, err := s.db.GetCrewMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCrewMemberNotFound) {
			respondNotFound(w, r, "Crew member not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, member)
}

func (s *Server) handleUpdateCrewMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := s.db.GetCrewMember(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCrewMemberNotFound) {
			respondNotFound(w, r, "Crew member not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	crew, err := s.db.GetCrew(ctx, member.CrewID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req crewMemberUpdateRequest
	if !bind(w, r, &req) {
		return
	}
	crop, cropSet, err := parseCropField(req.ImageCrop)
	if err != nil {
		respondValidationError(w, r, "imageCrop must be an object or null")
		return
	}

	updated, err := s.db.UpdateCrewMember(ctx, member.ID, database.CrewMemberUpdate{
		Name:         req.Name,
		Role:         req.Role,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Status:       req.Status,
		ImageCrop:    crop,
		ImageCropSet: cropSet,
	})
	if err != nil {
		if errors.Is(err, database.ErrCrewMemberNotFound) {
			respondNotFound(w, r, "Crew member not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCrewMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := s.db.GetCrewMember(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrCrewMemberNotFound) {
			respondNotFound(w, r, "Crew member not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	crew, err := s.db.GetCrew(ctx, member.CrewID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	if err := s.db.DeleteCrewMember(ctx, member.ID); err != nil {
		if errors.Is(err, database.ErrCrewMemberNotFound) {
			respondNotFound(w, r, "Crew member not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("crew_member_id", member.ID).Msg("crew member deleted")
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Crew member deleted"})
}
