// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/LizaMalinina/npc-graph-sub001/internal/logging"
	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

// queryStartKey marks when request processing began, for query_time_ms.
type contextKey string

const queryStartKey contextKey = "query_start"

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload models.APIResponse) {
	payload.Metadata = models.Metadata{
		Timestamp: time.Now().UTC(),
	}
	if start, ok := r.Context().Value(queryStartKey).(time.Time); ok {
		payload.Metadata.QueryTimeMS = time.Since(start).Milliseconds()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	respondJSON(w, r, status, models.APIResponse{
		Status: "success",
		Data:   data,
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, models.APIResponse{
		Status: "error",
		Error:  &models.APIError{Code: code, Message: message},
	})
}

func respondAuthError(w http.ResponseWriter, r *http.Request, authErr *AuthError) {
	respondError(w, r, authErr.Status, authErr.Code, authErr.Message)
}

func respondNotFound(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusNotFound, CodeNotFound, message)
}

func respondValidationError(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusBadRequest, CodeValidationError, message)
}

func respondDatabaseError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Msg("database operation failed")
	respondError(w, r, http.StatusInternalServerError, CodeDatabaseError, "Internal server error")
}

// decodeJSON parses the request body into dst. Unknown fields are ignored;
// update payloads may carry read-only fields the server never applies.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
