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

// characterEditGuard authorises a write through the campaign of the given
// character. Relationship edges inherit their permission scope from the
// characters they touch.
func (s *Server) characterEditGuard(w http.ResponseWriter, r *http.Request, characterID string) bool {
	ctx := r.Context()

	ch, err := s.db.GetCharacter(ctx, characterID)
	if err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return false
		}
		respondDatabaseError(w, r, err)
		return false
	}

	if _, authErr := s.requireEntityEdit(ctx, ch.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return false
	}
	return true
}

func (s *Server) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if campaignID := r.URL.Query().Get("campaignId"); campaignID != "" {
		campaign, err := s.db.ResolveCampaign(ctx, campaignID)
		if err != nil {
			if errors.Is(err, database.ErrCampaignNotFound) {
				respondNotFound(w, r, "Campaign not found")
				return
			}
			respondDatabaseError(w, r, err)
			return
		}
		rels, err := s.db.ListRelationshipsForCampaign(ctx, campaign.ID)
		if err != nil {
			respondDatabaseError(w, r, err)
			return
		}
		respondSuccess(w, r, http.StatusOK, rels)
		return
	}

	rels, err := s.db.ListRelationships(ctx)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rels)
}

func (s *Server) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req relationshipCreateRequest
	if !bind(w, r, &req) {
		return
	}

	if !s.characterEditGuard(w, r, req.FromNpcID) {
		return
	}
	if _, err := s.db.GetCharacter(ctx, req.ToNpcID); err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	rel, err := s.db.CreateRelationship(ctx, database.RelationshipCreate{
		FromNpcID:   req.FromNpcID,
		ToNpcID:     req.ToNpcID,
		Type:        req.Type,
		Description: req.Description,
		Strength:    req.Strength,
	})
	if err != nil {
		if errors.Is(err, database.ErrRelationshipConflict) {
			respondError(w, r, http.StatusBadRequest, CodeConflict,
				"A relationship of this type already exists between these characters")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("relationship_id", rel.ID).Msg("relationship created")
	respondSuccess(w, r, http.StatusCreated, rel)
}

func (s *Server) handleGetRelationship(w http.ResponseWriter, r *http.Request) {
	rel, err := s.db.GetRelationship(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rel)
}

func (s *Server) handleUpdateRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rel, err := s.db.GetRelationship(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if !s.characterEditGuard(w, r, rel.FromNpcID) {
		return
	}

	var req relationshipUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	updated, err := s.db.UpdateRelationship(ctx, rel.ID, database.RelationshipEdgeUpdate{
		Type:        req.Type,
		Description: req.Description,
		Strength:    req.Strength,
	})
	if err != nil {
		if errors.Is(err, database.ErrRelationshipConflict) {
			respondError(w, r, http.StatusBadRequest, CodeConflict,
				"A relationship of this type already exists between these characters")
			return
		}
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rel, err := s.db.GetRelationship(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if !s.characterEditGuard(w, r, rel.FromNpcID) {
		return
	}

	if err := s.db.DeleteRelationship(ctx, rel.ID); err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Relationship deleted"})
}

func (s *Server) handleListCrewRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.db.ListCrewRelationships(r.Context())
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rels)
}

func (s *Server) handleCreateCrewRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req crewRelationshipCreateRequest
	if !bind(w, r, &req) {
		return
	}

	crew, err := s.db.GetCrew(ctx, req.FromCrewID)
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
	if _, err := s.db.GetCharacter(ctx, req.ToNpcID); err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	rel, err := s.db.CreateCrewRelationship(ctx, database.CrewRelationshipCreate{
		FromCrewID:  req.FromCrewID,
		ToNpcID:     req.ToNpcID,
		Type:        req.Type,
		Description: req.Description,
		Strength:    req.Strength,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, rel)
}

func (s *Server) handleUpdateCrewRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rel, err := s.db.GetCrewRelationship(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	crew, err := s.db.GetCrew(ctx, rel.FromCrewID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req relationshipUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	updated, err := s.db.UpdateCrewRelationship(ctx, rel.ID, database.RelationshipEdgeUpdate{
		Type:        req.Type,
		Description: req.Description,
		Strength:    req.Strength,
	})
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCrewRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rel, err := s.db.GetCrewRelationship(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	crew, err := s.db.GetCrew(ctx, rel.FromCrewID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	if err := s.db.DeleteCrewRelationship(ctx, rel.ID); err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Relationship deleted"})
}

func (s *Server) handleListCrewMemberRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.db.ListCrewMemberRelationships(r.Context())
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rels)
}

func (s *Server) handleCreateCrewMemberRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req crewMemberRelationshipCreateRequest
	if !bind(w, r, &req) {
		return
	}

	member, err := s.db.GetCrewMember(ctx, req.FromCrewMemberID)
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
	if _, err := s.db.GetCharacter(ctx, req.ToNpcID); err != nil {
		if errors.Is(err, database.ErrCharacterNotFound) {
			respondNotFound(w, r, "Character not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	rel, err := s.db.CreateCrewMemberRelationship(ctx, database.CrewMemberRelationshipCreate{
		FromCrewMemberID: req.FromCrewMemberID,
		ToNpcID:          req.ToNpcID,
		Type:             req.Type,
		Description:      req.Description,
		Strength:         req.Strength,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, rel)
}

func (s *Server) handleUpdateCrewMemberRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rel, err := s.db.GetCrewMemberRelationship(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if !s.crewMemberEditGuard(w, r, rel.FromCrewMemberID) {
		return
	}

	var req relationshipUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	updated, err := s.db.UpdateCrewMemberRelationship(ctx, rel.ID, database.RelationshipEdgeUpdate{
		Type:        req.Type,
		Description: req.Description,
		Strength:    req.Strength,
	})
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCrewMemberRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rel, err := s.db.GetCrewMemberRelationship(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}

	if !s.crewMemberEditGuard(w, r, rel.FromCrewMemberID) {
		return
	}

	if err := s.db.DeleteCrewMemberRelationship(ctx, rel.ID); err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Relationship deleted"})
}

// crewMemberEditGuard authorises a write through the campaign of the crew
// that owns the member.
func (s *Server) crewMemberEditGuard(w http.ResponseWriter, r *http.Request, memberID string) bool {
	ctx := r.Context()

	member, err := s.db.GetCrewMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, database.ErrCrewMemberNotFound) {
			respondNotFound(w, r, "Crew member not found")
			return false
		}
		respondDatabaseError(w, r, err)
		return false
	}
	crew, err := s.db.GetCrew(ctx, member.CrewID)
	if err != nil {
		respondDatabaseError(w, r, err)
		return false
	}
	if _, authErr := s.requireEntityEdit(ctx, crew.CampaignID); authErr != nil {
		respondAuthError(w, r, authErr)
		return false
	}
	return true
}

func (s *Server) handleListUniversalRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.db.ListUniversalRelationships(r.Context(), r.URL.Query().Get("entityId"))
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rels)
}

func (s *Server) handleCreateUniversalRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, authErr := s.requireEditor(ctx); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req universalRelationshipCreateRequest
	if !bind(w, r, &req) {
		return
	}

	fromType := models.EntityType(req.FromEntityType)
	toType := models.EntityType(req.ToEntityType)

	for _, endpoint := range []struct {
		entityType models.EntityType
		id         string
	}{
		{fromType, req.FromEntityID},
		{toType, req.ToEntityID},
	} {
		exists, err := s.db.EntityExists(ctx, endpoint.entityType, endpoint.id)
		if err != nil {
			respondDatabaseError(w, r, err)
			return
		}
		if !exists {
			respondNotFound(w, r, "Entity not found")
			return
		}
	}

	rel, err := s.db.CreateUniversalRelationship(ctx, database.UniversalRelationshipCreate{
		FromEntityID:   req.FromEntityID,
		FromEntityType: fromType,
		ToEntityID:     req.ToEntityID,
		ToEntityType:   toType,
		Type:           req.Type,
		Description:    req.Description,
		Strength:       req.Strength,
	})
	if err != nil {
		respondDatabaseError(w, r, err)
		return
	}

	logging.Ctx(ctx).Info().Str("relationship_id", rel.ID).Msg("universal relationship created")
	respondSuccess(w, r, http.StatusCreated, rel)
}

func (s *Server) handleGetUniversalRelationship(w http.ResponseWriter, r *http.Request) {
	rel, err := s.db.GetUniversalRelationship(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, rel)
}

func (s *Server) handleUpdateUniversalRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, authErr := s.requireEditor(ctx); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	var req relationshipUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	updated, err := s.db.UpdateUniversalRelationship(ctx, chi.URLParam(r, "id"), database.RelationshipEdgeUpdate{
		Type:        req.Type,
		Description: req.Description,
		Strength:    req.Strength,
	})
	if err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteUniversalRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, authErr := s.requireEditor(ctx); authErr != nil {
		respondAuthError(w, r, authErr)
		return
	}

	if err := s.db.DeleteUniversalRelationship(ctx, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, database.ErrRelationshipNotFound) {
			respondNotFound(w, r, "Relationship not found")
			return
		}
		respondDatabaseError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]string{"message": "Relationship deleted"})
}
