// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/LizaMalinina/npc-graph-sub001/internal/auth"
	"github.com/LizaMalinina/npc-graph-sub001/internal/authz"
	"github.com/LizaMalinina/npc-graph-sub001/internal/config"
	"github.com/LizaMalinina/npc-graph-sub001/internal/database"
	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

var testDBSemaphore = make(chan struct{}, 4)

type testEnv struct {
	srv    *Server
	router http.Handler
	db     *database.DB
	jwt    *auth.JWTManager
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	cfg := &config.Config{
		Server:   config.ServerConfig{Environment: "test", Timeout: 30 * time.Second},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Security: config.SecurityConfig{RateLimitEnabled: false},
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}

	srv := NewServer(db, cfg, jwtManager, enforcer)
	return &testEnv{srv: srv, router: srv.Router(), db: db, jwt: jwtManager}
}

// createUser stores an account with the given role and returns it with a
// valid session token.
func (e *testEnv) createUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user, err := e.db.CreateUser(context.Background(), database.UserCreate{
		Email:        email,
		Name:         "Test User",
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := e.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

// request performs an HTTP request against the router and decodes the
// envelope. An empty token leaves the request anonymous.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope (%d): %v: %s", rec.Code, err, rec.Body.String())
	}
	return rec, envelope
}

func decodeData(t *testing.T, envelope models.APIResponse, dst any) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("failed to re-marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func TestUsersEndpointAdminOnly(t *testing.T) {
	env := setupTestEnv(t)
	_, viewerToken := env.createUser(t, "viewer@example.com", models.RoleViewer)
	_, editorToken := env.createUser(t, "editor@example.com", models.RoleEditor)
	_, adminToken := env.createUser(t, "admin@example.com", models.RoleAdmin)

	for _, tc := range []struct {
		name  string
		token string
	}{
		{"anonymous", ""},
		{"viewer", viewerToken},
		{"editor", editorToken},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec, envelope := env.request(t, http.MethodGet, "/api/users", tc.token, nil)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
			if envelope.Error == nil || envelope.Error.Code != CodeAdminRequired {
				t.Fatalf("expected ADMIN_REQUIRED, got %+v", envelope.Error)
			}
			if envelope.Error.Message != "Admin access required" {
				t.Errorf("unexpected message %q", envelope.Error.Message)
			}
		})
	}

	rec, envelope := env.request(t, http.MethodGet, "/api/users", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
	var users []models.UserSummary
	decodeData(t, envelope, &users)
	if len(users) != 3 {
		t.Errorf("expected 3 users, got %d", len(users))
	}
}

func TestCampaignEditPermissions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	creator, _ := env.createUser(t, "creator@example.com", models.RoleEditor)
	assigned, _ := env.createUser(t, "assigned@example.com", models.RoleEditor)
	outsider, _ := env.createUser(t, "outsider@example.com", models.RoleEditor)
	viewer, _ := env.createUser(t, "viewer@example.com", models.RoleViewer)
	admin, _ := env.createUser(t, "admin@example.com", models.RoleAdmin)

	campaign, err := env.db.CreateCampaign(ctx, database.CampaignCreate{
		Name: "Permissions Test", CreatorID: &creator.ID,
	})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}
	if err := env.db.AddCampaignEditor(ctx, campaign.ID, assigned.ID); err != nil {
		t.Fatalf("failed to assign editor: %v", err)
	}

	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"anonymous", nil, false},
		{"viewer", viewer, false},
		{"admin", admin, true},
		{"editor creator", creator, true},
		{"editor assigned", assigned, true},
		{"editor outsider", outsider, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.srv.canEditCampaign(ctx, tt.user, campaign.ID)
			if err != nil {
				t.Fatalf("canEditCampaign failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			// Slug resolution must agree with id resolution.
			bySlug, err := env.srv.canEditCampaign(ctx, tt.user, campaign.Slug)
			if err != nil {
				t.Fatalf("canEditCampaign by slug failed: %v", err)
			}
			if bySlug != got {
				t.Errorf("id and slug lookups disagree: %v vs %v", got, bySlug)
			}
		})
	}
}

func TestAnonymousWriteRejected(t *testing.T) {
	env := setupTestEnv(t)

	rec, envelope := env.request(t, http.MethodPost, "/api/campaigns", "",
		map[string]string{"name": "Sneaky"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeAuthRequired {
		t.Fatalf("expected AUTH_REQUIRED, got %+v", envelope.Error)
	}
}

func TestViewerWriteForbidden(t *testing.T) {
	env := setupTestEnv(t)
	_, viewerToken := env.createUser(t, "viewer@example.com", models.RoleViewer)

	rec, envelope := env.request(t, http.MethodPost, "/api/campaigns", viewerToken,
		map[string]string{"name": "Nope"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %+v", envelope.Error)
	}
}

func TestCampaignListShowsCanEdit(t *testing.T) {
	env := setupTestEnv(t)
	creator, creatorToken := env.createUser(t, "creator@example.com", models.RoleEditor)
	_, outsiderToken := env.createUser(t, "outsider@example.com", models.RoleEditor)

	if _, err := env.db.CreateCampaign(context.Background(), database.CampaignCreate{
		Name: "Visible", CreatorID: &creator.ID,
	}); err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}

	rec, envelope := env.request(t, http.MethodGet, "/api/campaigns", creatorToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summaries []models.CampaignSummary
	decodeData(t, envelope, &summaries)
	if len(summaries) != 1 || !summaries[0].CanEdit {
		t.Errorf("creator should see canEdit=true: %+v", summaries)
	}

	_, envelope = env.request(t, http.MethodGet, "/api/campaigns", outsiderToken, nil)
	decodeData(t, envelope, &summaries)
	if len(summaries) != 1 || summaries[0].CanEdit {
		t.Errorf("outsider should see canEdit=false: %+v", summaries)
	}
}

func TestLoginFlow(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "gm@example.com", models.RoleEditor)

	rec, envelope := env.request(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "gm@example.com", "password": "correct horse battery staple"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var login loginResponse
	decodeData(t, envelope, &login)
	if login.Token == "" {
		t.Fatal("expected a session token")
	}

	rec, envelope = env.request(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", rec.Code)
	}
	var me models.User
	decodeData(t, envelope, &me)
	if me.Email != "gm@example.com" {
		t.Errorf("unexpected user %q", me.Email)
	}

	rec, _ = env.request(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "gm@example.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestRelationshipConflictOverAPI(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, editorToken := env.createUser(t, "editor@example.com", models.RoleEditor)

	a, _ := env.db.CreateCharacter(ctx, database.CharacterCreate{Name: "Strahd"})
	b, _ := env.db.CreateCharacter(ctx, database.CharacterCreate{Name: "Ireena"})

	body := map[string]any{"fromNpcId": a.ID, "toNpcId": b.ID, "type": "obsessed-with"}
	rec, _ := env.request(t, http.MethodPost, "/api/relationships", editorToken, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, envelope := env.request(t, http.MethodPost, "/api/relationships", editorToken, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeConflict {
		t.Fatalf("expected CONFLICT, got %+v", envelope.Error)
	}
}

func TestCharacterPartialUpdateOverAPI(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, editorToken := env.createUser(t, "editor@example.com", models.RoleEditor)

	ch, err := env.db.CreateCharacter(ctx, database.CharacterCreate{
		Name: "Jarlaxle", Title: "Captain", Faction: "Bregan D'aerthe",
	})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}

	rec, envelope := env.request(t, http.MethodPut, "/api/characters/"+ch.ID, editorToken,
		map[string]any{"title": ""})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Character
	decodeData(t, envelope, &updated)
	if updated.Title != "" {
		t.Errorf("explicit empty title should clear the field, got %q", updated.Title)
	}
	if updated.Faction != "Bregan D'aerthe" {
		t.Errorf("absent field must be preserved, got %q", updated.Faction)
	}
}

func TestImageCropNullClearsOverAPI(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, editorToken := env.createUser(t, "editor@example.com", models.RoleEditor)

	ch, err := env.db.CreateCharacter(ctx, database.CharacterCreate{
		Name:      "Laeral",
		ImageCrop: &models.ImageCrop{X: 1, Y: 2, Width: 3, Height: 4},
	})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}

	rec, envelope := env.request(t, http.MethodPut, "/api/characters/"+ch.ID, editorToken,
		map[string]any{"imageCrop": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.Character
	decodeData(t, envelope, &updated)
	if updated.ImageCrop != nil {
		t.Errorf("explicit null should clear the crop, got %+v", updated.ImageCrop)
	}
}

func TestUniversalRelationshipEndpointsImmutable(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, editorToken := env.createUser(t, "editor@example.com", models.RoleEditor)

	ch, _ := env.db.CreateCharacter(ctx, database.CharacterCreate{Name: "Manshoon"})
	org, _ := env.db.CreateOrganisation(ctx, database.OrganisationCreate{Name: "Zhentarim", Color: "#e6194b"})
	other, _ := env.db.CreateCharacter(ctx, database.CharacterCreate{Name: "Fzoul"})

	rec, envelope := env.request(t, http.MethodPost, "/api/universal-relationships", editorToken, map[string]any{
		"fromEntityId": ch.ID, "fromEntityType": "character",
		"toEntityId": org.ID, "toEntityType": "organisation",
		"type": "founded",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var rel models.UniversalRelationship
	decodeData(t, envelope, &rel)

	// The update payload tries to re-point the edge; only type sticks.
	rec, envelope = env.request(t, http.MethodPut, "/api/universal-relationships/"+rel.ID, editorToken, map[string]any{
		"fromEntityId": other.ID,
		"type":         "leads",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.UniversalRelationship
	decodeData(t, envelope, &updated)
	if updated.Type != "leads" {
		t.Errorf("type update not applied: %+v", updated)
	}
	if updated.FromEntityID != ch.ID {
		t.Errorf("endpoint must not be re-pointed: %+v", updated)
	}
}

func TestUniversalRelationshipUnknownEntity(t *testing.T) {
	env := setupTestEnv(t)
	_, editorToken := env.createUser(t, "editor@example.com", models.RoleEditor)

	rec, _ := env.request(t, http.MethodPost, "/api/universal-relationships", editorToken, map[string]any{
		"fromEntityId": "missing", "fromEntityType": "character",
		"toEntityId": "also-missing", "toEntityType": "organisation",
		"type": "haunts",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown entity, got %d", rec.Code)
	}
}

func TestValidationErrors(t *testing.T) {
	env := setupTestEnv(t)
	_, editorToken := env.createUser(t, "editor@example.com", models.RoleEditor)

	// Missing required name.
	rec, envelope := env.request(t, http.MethodPost, "/api/campaigns", editorToken,
		map[string]string{"description": "nameless"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeValidationError {
		t.Fatalf("expected VALIDATION_ERROR, got %+v", envelope.Error)
	}

	// Bad hex colour.
	rec, _ = env.request(t, http.MethodPost, "/api/organisations", editorToken,
		map[string]string{"name": "Badly Coloured", "color": "red"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad color, got %d", rec.Code)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	env := setupTestEnv(t)

	rec, envelope := env.request(t, http.MethodGet, "/api/campaigns/no-such-campaign", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if envelope.Status != "error" || envelope.Error == nil || envelope.Error.Code != CodeNotFound {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if envelope.Metadata.Timestamp.IsZero() {
		t.Error("error responses must carry metadata")
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	rec, envelope := env.request(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health healthResponse
	decodeData(t, envelope, &health)
	if health.Status != "ok" || health.Database != "ok" {
		t.Errorf("unexpected health payload: %+v", health)
	}
	if health.SchemaVersion < 1 {
		t.Errorf("expected schema version >= 1, got %d", health.SchemaVersion)
	}
}

func TestAdminCannotDemoteSelf(t *testing.T) {
	env := setupTestEnv(t)
	admin, adminToken := env.createUser(t, "admin@example.com", models.RoleAdmin)

	rec, _ := env.request(t, http.MethodPut, "/api/users/"+admin.ID, adminToken,
		map[string]string{"role": "viewer"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRoleChangeTakesEffectWithoutRelogin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user, token := env.createUser(t, "promoted@example.com", models.RoleViewer)

	rec, _ := env.request(t, http.MethodPost, "/api/campaigns", token,
		map[string]string{"name": "Before"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before promotion, got %d", rec.Code)
	}

	if _, err := env.db.UpdateUserRole(ctx, user.ID, models.RoleEditor); err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}

	// Same token, new role: permissions come from the stored record.
	rec, _ = env.request(t, http.MethodPost, "/api/campaigns", token,
		map[string]string{"name": "After"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after promotion, got %d: %s", rec.Code, rec.Body.String())
	}
}
