// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	SchemaVersion int     `json:"schemaVersion"`
	Database      string  `json:"database"`
}

// handleHealth reports liveness plus a database round trip. A failing store
// turns the whole check into a 503 so load balancers stop routing here.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		Database:      "ok",
	}

	status := http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	} else if version, err := s.db.GetCurrentSchemaVersion(ctx); err == nil {
		resp.SchemaVersion = version
	}

	respondSuccess(w, r, status, resp)
}
