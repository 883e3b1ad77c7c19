// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the full middleware stack and route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestContext)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(requestLogger)
	r.Use(metricsMiddleware)
	r.Use(s.corsMiddleware())
	r.Use(s.authenticate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondNotFound(w, r, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed")
	})

	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter(apiRateLimit))

		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimiter(authRateLimit)).Post("/login", s.handleLogin)
			r.With(s.rateLimiter(authRateLimit)).Post("/register", s.handleRegister)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", s.handleListCampaigns)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateCampaign)
			r.Route("/{idOrSlug}", func(r chi.Router) {
				r.Get("/", s.handleGetCampaign)
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateCampaign)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteCampaign)
				r.Get("/can-edit", s.handleCanEditCampaign)
				r.Get("/editors", s.handleListCampaignEditors)
				r.With(s.rateLimiter(writeRateLimit)).Post("/editors", s.handleAddCampaignEditor)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/editors/{userId}", s.handleRemoveCampaignEditor)
			})
		})

		r.Route("/characters", func(r chi.Router) {
			r.Get("/", s.handleListCharacters)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateCharacter)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCharacter)
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateCharacter)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteCharacter)
				r.With(s.rateLimiter(writeRateLimit)).Post("/organisations", s.handleConnectOrganisations)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/organisations/{orgId}", s.handleDisconnectOrganisation)
			})
		})

		r.Route("/organisations", func(r chi.Router) {
			r.Get("/", s.handleListOrganisations)
			r.Get("/colors", s.handleAvailableColors)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateOrganisation)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetOrganisation)
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateOrganisation)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteOrganisation)
			})
		})

		r.Route("/crews", func(r chi.Router) {
			r.Get("/", s.handleListCrews)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateCrew)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCrew)
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateCrew)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteCrew)
				r.Get("/members", s.handleListCrewMembers)
				r.With(s.rateLimiter(writeRateLimit)).Post("/members", s.handleCreateCrewMember)
			})
		})

		r.Route("/crew-members/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCrewMember)
			r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateCrewMember)
			r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteCrewMember)
		})

		r.Route("/relationships", func(r chi.Router) {
			r.Get("/", s.handleListRelationships)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateRelationship)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRelationship)
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateRelationship)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteRelationship)
			})
		})

		r.Route("/crew-relationships", func(r chi.Router) {
			r.Get("/", s.handleListCrewRelationships)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateCrewRelationship)
			r.Route("/{id}", func(r chi.Router) {
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateCrewRelationship)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteCrewRelationship)
			})
		})

		r.Route("/crew-member-relationships", func(r chi.Router) {
			r.Get("/", s.handleListCrewMemberRelationships)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateCrewMemberRelationship)
			r.Route("/{id}", func(r chi.Router) {
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateCrewMemberRelationship)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteCrewMemberRelationship)
			})
		})

		r.Route("/universal-relationships", func(r chi.Router) {
			r.Get("/", s.handleListUniversalRelationships)
			r.With(s.rateLimiter(writeRateLimit)).Post("/", s.handleCreateUniversalRelationship)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetUniversalRelationship)
				r.With(s.rateLimiter(writeRateLimit)).Put("/", s.handleUpdateUniversalRelationship)
				r.With(s.rateLimiter(writeRateLimit)).Delete("/", s.handleDeleteUniversalRelationship)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.With(s.rateLimiter(writeRateLimit)).Put("/{id}", s.handleUpdateUser)
			r.With(s.rateLimiter(writeRateLimit)).Delete("/{id}", s.handleDeleteUser)
		})
	})

	return r
}
