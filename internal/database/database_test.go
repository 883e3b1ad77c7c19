// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LizaMalinina/npc-graph-sub001/internal/config"
	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

// testDBSemaphore bounds concurrent in-memory DuckDB instances so parallel
// test packages do not exhaust memory on constrained runners.
var testDBSemaphore = make(chan struct{}, 4)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{
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

	return db
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestMigrationsApply(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	version, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version < 1 {
		t.Errorf("expected schema version >= 1, got %d", version)
	}

	if err := db.Ping(ctx); err != nil {
		t.Errorf("ping failed: %v", err)
	}
}

func TestCampaignLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	campaign, err := db.CreateCampaign(ctx, CampaignCreate{
		Name:        "Curse of Strahd",
		Description: "Gothic horror in Barovia",
	})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}
	if campaign.Slug != "curse-of-strahd" {
		t.Errorf("expected slug curse-of-strahd, got %q", campaign.Slug)
	}
	if !campaign.IsActive {
		t.Error("expected new campaign to be active")
	}

	bySlug, err := db.GetCampaignBySlug(ctx, campaign.Slug)
	if err != nil {
		t.Fatalf("failed to fetch by slug: %v", err)
	}
	if bySlug.ID != campaign.ID {
		t.Errorf("slug lookup returned wrong campaign: %s", bySlug.ID)
	}

	resolved, err := db.ResolveCampaign(ctx, campaign.Slug)
	if err != nil {
		t.Fatalf("failed to resolve by slug: %v", err)
	}
	if resolved.ID != campaign.ID {
		t.Errorf("resolve returned wrong campaign: %s", resolved.ID)
	}

	newName := "Curse of Strahd, Revised"
	updated, err := db.UpdateCampaign(ctx, campaign.ID, CampaignUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("failed to update campaign: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if updated.Slug != campaign.Slug {
		t.Errorf("slug must not change on rename, got %q", updated.Slug)
	}

	if err := db.DeleteCampaign(ctx, campaign.ID); err != nil {
		t.Fatalf("failed to delete campaign: %v", err)
	}
	if _, err := db.GetCampaignByID(ctx, campaign.ID); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("expected ErrCampaignNotFound after delete, got %v", err)
	}
}

func TestCampaignSlugCollision(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	first, err := db.CreateCampaign(ctx, CampaignCreate{Name: "Waterdeep"})
	if err != nil {
		t.Fatalf("failed to create first campaign: %v", err)
	}
	second, err := db.CreateCampaign(ctx, CampaignCreate{Name: "Waterdeep"})
	if err != nil {
		t.Fatalf("failed to create second campaign: %v", err)
	}

	if first.Slug != "waterdeep" {
		t.Errorf("expected waterdeep, got %q", first.Slug)
	}
	if second.Slug != "waterdeep-1" {
		t.Errorf("expected waterdeep-1, got %q", second.Slug)
	}
}

func TestCampaignDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	campaign, err := db.CreateCampaign(ctx, CampaignCreate{Name: "Doomed Realm"})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}

	ch, err := db.CreateCharacter(ctx, CharacterCreate{
		Name: "Volo", CampaignID: &campaign.ID,
	})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}
	org, err := db.CreateOrganisation(ctx, OrganisationCreate{
		Name: "Zhentarim", Color: "#e6194b", CampaignID: &campaign.ID,
		MemberIDs: []string{ch.ID},
	})
	if err != nil {
		t.Fatalf("failed to create organisation: %v", err)
	}
	crew, err := db.CreateCrew(ctx, CrewCreate{
		Name: "Harpers", CampaignID: &campaign.ID,
		Members: []CrewMemberCreate{{Name: "Remallia"}},
	})
	if err != nil {
		t.Fatalf("failed to create crew: %v", err)
	}

	if err := db.DeleteCampaign(ctx, campaign.ID); err != nil {
		t.Fatalf("failed to delete campaign: %v", err)
	}

	if _, err := db.GetCharacter(ctx, ch.ID); !errors.Is(err, ErrCharacterNotFound) {
		t.Errorf("expected character gone, got %v", err)
	}
	if _, err := db.GetOrganisation(ctx, org.ID); !errors.Is(err, ErrOrganisationNotFound) {
		t.Errorf("expected organisation gone, got %v", err)
	}
	if _, err := db.GetCrew(ctx, crew.ID); !errors.Is(err, ErrCrewNotFound) {
		t.Errorf("expected crew gone, got %v", err)
	}
}

func TestCharacterStatusDefaultsToAlive(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	ch, err := db.CreateCharacter(ctx, CharacterCreate{Name: "Xanathar"})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}
	if ch.Status != models.StatusAlive {
		t.Errorf("expected status alive, got %q", ch.Status)
	}
}

func TestCharacterPartialUpdatePreservesFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	ch, err := db.CreateCharacter(ctx, CharacterCreate{
		Name: "Jarlaxle", Title: "Captain", Faction: "Bregan D'aerthe",
	})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}

	empty := ""
	updated, err := db.UpdateCharacter(ctx, ch.ID, CharacterUpdate{Title: &empty})
	if err != nil {
		t.Fatalf("failed to update character: %v", err)
	}
	if updated.Title != "" {
		t.Errorf("explicit empty title should clear the field, got %q", updated.Title)
	}
	if updated.Faction != "Bregan D'aerthe" {
		t.Errorf("untouched field changed: %q", updated.Faction)
	}
	if updated.Name != "Jarlaxle" {
		t.Errorf("untouched name changed: %q", updated.Name)
	}
}

func TestImageCropRoundTripAndClear(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	crop := &models.ImageCrop{X: 10, Y: 20, Width: 100, Height: 80}
	ch, err := db.CreateCharacter(ctx, CharacterCreate{Name: "Laeral", ImageCrop: crop})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}

	got, err := db.GetCharacter(ctx, ch.ID)
	if err != nil {
		t.Fatalf("failed to fetch character: %v", err)
	}
	if got.ImageCrop == nil || got.ImageCrop.Width != 100 {
		t.Fatalf("expected stored crop, got %+v", got.ImageCrop)
	}

	cleared, err := db.UpdateCharacter(ctx, ch.ID, CharacterUpdate{ImageCropSet: true})
	if err != nil {
		t.Fatalf("failed to clear crop: %v", err)
	}
	if cleared.ImageCrop != nil {
		t.Errorf("expected crop cleared, got %+v", cleared.ImageCrop)
	}
}

func TestOrganisationMembership(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	ch, err := db.CreateCharacter(ctx, CharacterCreate{Name: "Davil"})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}
	org, err := db.CreateOrganisation(ctx, OrganisationCreate{Name: "Zhentarim", Color: "#3cb44b"})
	if err != nil {
		t.Fatalf("failed to create organisation: %v", err)
	}

	if err := db.ConnectOrganisations(ctx, ch.ID, []string{org.ID}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	// Reconnecting the same pair must be a no-op, not an error.
	if err := db.ConnectOrganisations(ctx, ch.ID, []string{org.ID}); err != nil {
		t.Fatalf("duplicate connect should be idempotent: %v", err)
	}

	got, err := db.GetOrganisation(ctx, org.ID)
	if err != nil {
		t.Fatalf("failed to fetch organisation: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != ch.ID {
		t.Errorf("expected single member %s, got %v", ch.ID, got.MemberIDs)
	}

	if err := db.DisconnectOrganisation(ctx, ch.ID, org.ID); err != nil {
		t.Fatalf("failed to disconnect: %v", err)
	}
	got, err = db.GetOrganisation(ctx, org.ID)
	if err != nil {
		t.Fatalf("failed to refetch organisation: %v", err)
	}
	if len(got.MemberIDs) != 0 {
		t.Errorf("expected no members, got %v", got.MemberIDs)
	}
}

func TestAvailableColors(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	org, err := db.CreateOrganisation(ctx, OrganisationCreate{
		Name: "Order of the Gauntlet", Color: DefaultColorPalette[0],
	})
	if err != nil {
		t.Fatalf("failed to create organisation: %v", err)
	}

	available, err := db.AvailableColors(ctx, nil, "")
	if err != nil {
		t.Fatalf("failed to list colors: %v", err)
	}
	for _, c := range available {
		if c == DefaultColorPalette[0] {
			t.Errorf("used color %s should be excluded", c)
		}
	}
	if len(available) != len(DefaultColorPalette)-1 {
		t.Errorf("expected %d colors, got %d", len(DefaultColorPalette)-1, len(available))
	}

	// Excluding the organisation itself readmits its own colour.
	available, err = db.AvailableColors(ctx, nil, org.ID)
	if err != nil {
		t.Fatalf("failed to list colors with exclusion: %v", err)
	}
	if len(available) != len(DefaultColorPalette) {
		t.Errorf("expected full palette with own org excluded, got %d", len(available))
	}
}

func TestRelationshipDuplicateConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	a, err := db.CreateCharacter(ctx, CharacterCreate{Name: "Strahd"})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}
	b, err := db.CreateCharacter(ctx, CharacterCreate{Name: "Ireena"})
	if err != nil {
		t.Fatalf("failed to create character: %v", err)
	}

	if _, err := db.CreateRelationship(ctx, RelationshipCreate{
		FromNpcID: a.ID, ToNpcID: b.ID, Type: "obsessed-with",
	}); err != nil {
		t.Fatalf("failed to create relationship: %v", err)
	}

	_, err = db.CreateRelationship(ctx, RelationshipCreate{
		FromNpcID: a.ID, ToNpcID: b.ID, Type: "obsessed-with",
	})
	if !errors.Is(err, ErrRelationshipConflict) {
		t.Fatalf("expected ErrRelationshipConflict, got %v", err)
	}

	rels, err := db.ListRelationships(ctx)
	if err != nil {
		t.Fatalf("failed to list relationships: %v", err)
	}
	if len(rels) != 1 {
		t.Errorf("duplicate attempt must not add a row, got %d rows", len(rels))
	}

	// Same pair under a different type is a distinct edge.
	if _, err := db.CreateRelationship(ctx, RelationshipCreate{
		FromNpcID: a.ID, ToNpcID: b.ID, Type: "protects",
	}); err != nil {
		t.Fatalf("different type should be allowed: %v", err)
	}
}

func TestRelationshipUpdateKeepsEndpoints(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	a, _ := db.CreateCharacter(ctx, CharacterCreate{Name: "Mirt"})
	b, _ := db.CreateCharacter(ctx, CharacterCreate{Name: "Durnan"})
	rel, err := db.CreateRelationship(ctx, RelationshipCreate{
		FromNpcID: a.ID, ToNpcID: b.ID, Type: "rival",
	})
	if err != nil {
		t.Fatalf("failed to create relationship: %v", err)
	}
	if rel.Strength != models.DefaultRelationshipStrength {
		t.Errorf("expected default strength %d, got %d", models.DefaultRelationshipStrength, rel.Strength)
	}

	newType := "ally"
	strength := 8
	updated, err := db.UpdateRelationship(ctx, rel.ID, RelationshipEdgeUpdate{
		Type: &newType, Strength: &strength,
	})
	if err != nil {
		t.Fatalf("failed to update relationship: %v", err)
	}
	if updated.Type != "ally" || updated.Strength != 8 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.FromNpcID != a.ID || updated.ToNpcID != b.ID {
		t.Errorf("endpoints must be immutable: %+v", updated)
	}
}

func TestUniversalRelationships(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	ch, _ := db.CreateCharacter(ctx, CharacterCreate{Name: "Manshoon"})
	org, _ := db.CreateOrganisation(ctx, OrganisationCreate{Name: "Zhentarim", Color: "#4363d8"})

	exists, err := db.EntityExists(ctx, models.EntityTypeCharacter, ch.ID)
	if err != nil || !exists {
		t.Fatalf("expected character to exist: exists=%v err=%v", exists, err)
	}
	exists, err = db.EntityExists(ctx, models.EntityTypeOrganisation, ch.ID)
	if err != nil {
		t.Fatalf("existence check failed: %v", err)
	}
	if exists {
		t.Error("character id must not resolve as organisation")
	}

	rel, err := db.CreateUniversalRelationship(ctx, UniversalRelationshipCreate{
		FromEntityID: ch.ID, FromEntityType: models.EntityTypeCharacter,
		ToEntityID: org.ID, ToEntityType: models.EntityTypeOrganisation,
		Type: "founded",
	})
	if err != nil {
		t.Fatalf("failed to create universal relationship: %v", err)
	}

	// Filter matches the entity on either side.
	for _, entityID := range []string{ch.ID, org.ID} {
		rels, err := db.ListUniversalRelationships(ctx, entityID)
		if err != nil {
			t.Fatalf("failed to list for %s: %v", entityID, err)
		}
		if len(rels) != 1 || rels[0].ID != rel.ID {
			t.Errorf("expected one edge for %s, got %v", entityID, rels)
		}
	}

	rels, err := db.ListUniversalRelationships(ctx, "no-such-entity")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("expected no edges for unknown entity, got %d", len(rels))
	}
}

func TestCrewWithMembersAndRelationships(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	crew, err := db.CreateCrew(ctx, CrewCreate{
		Name: "The Doom Raiders",
		Members: []CrewMemberCreate{
			{Name: "Tashlyn", Role: "leader"},
			{Name: "Ziraj", Role: "assassin"},
		},
	})
	if err != nil {
		t.Fatalf("failed to create crew: %v", err)
	}
	if len(crew.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(crew.Members))
	}
	for _, m := range crew.Members {
		if m.Status != models.StatusAlive {
			t.Errorf("member %s should default to alive, got %q", m.Name, m.Status)
		}
	}

	target, _ := db.CreateCharacter(ctx, CharacterCreate{Name: "Victoro"})
	if _, err := db.CreateCrewRelationship(ctx, CrewRelationshipCreate{
		FromCrewID: crew.ID, ToNpcID: target.ID, Type: "hunts",
	}); err != nil {
		t.Fatalf("failed to create crew relationship: %v", err)
	}
	if _, err := db.CreateCrewMemberRelationship(ctx, CrewMemberRelationshipCreate{
		FromCrewMemberID: crew.Members[0].ID, ToNpcID: target.ID, Type: "despises",
	}); err != nil {
		t.Fatalf("failed to create crew member relationship: %v", err)
	}

	if err := db.DeleteCrew(ctx, crew.ID); err != nil {
		t.Fatalf("failed to delete crew: %v", err)
	}
	crewRels, err := db.ListCrewRelationships(ctx)
	if err != nil {
		t.Fatalf("failed to list crew relationships: %v", err)
	}
	if len(crewRels) != 0 {
		t.Errorf("crew delete must remove its relationships, got %d", len(crewRels))
	}
	memberRels, err := db.ListCrewMemberRelationships(ctx)
	if err != nil {
		t.Fatalf("failed to list crew member relationships: %v", err)
	}
	if len(memberRels) != 0 {
		t.Errorf("crew delete must remove member relationships, got %d", len(memberRels))
	}
}

func TestCampaignEditors(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	user, err := db.CreateUser(ctx, UserCreate{
		Email: "editor@example.com", Name: "Editor", Role: models.RoleEditor,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	campaign, err := db.CreateCampaign(ctx, CampaignCreate{Name: "Storm King"})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}

	ok, err := db.IsCampaignEditor(ctx, campaign.ID, user.ID)
	if err != nil {
		t.Fatalf("editor check failed: %v", err)
	}
	if ok {
		t.Error("user should not be an editor yet")
	}

	if err := db.AddCampaignEditor(ctx, campaign.ID, user.ID); err != nil {
		t.Fatalf("failed to add editor: %v", err)
	}
	// Idempotent.
	if err := db.AddCampaignEditor(ctx, campaign.ID, user.ID); err != nil {
		t.Fatalf("re-adding editor should be a no-op: %v", err)
	}

	ids, err := db.ListCampaignEditorIDs(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("failed to list editors: %v", err)
	}
	if len(ids) != 1 || ids[0] != user.ID {
		t.Errorf("expected [%s], got %v", user.ID, ids)
	}

	if err := db.RemoveCampaignEditor(ctx, campaign.ID, user.ID); err != nil {
		t.Fatalf("failed to remove editor: %v", err)
	}
	ok, err = db.IsCampaignEditor(ctx, campaign.ID, user.ID)
	if err != nil {
		t.Fatalf("editor check failed: %v", err)
	}
	if ok {
		t.Error("editor assignment should be gone")
	}
}

func TestUserEmailConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	if _, err := db.CreateUser(ctx, UserCreate{
		Email: "gm@example.com", Name: "GM", PasswordHash: "x",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err := db.CreateUser(ctx, UserCreate{
		Email: "GM@Example.com", Name: "Other", PasswordHash: "y",
	})
	if !errors.Is(err, ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict for same email, got %v", err)
	}

	user, err := db.GetUserByEmail(ctx, "  GM@EXAMPLE.COM ")
	if err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	if user.Name != "GM" {
		t.Errorf("expected GM, got %q", user.Name)
	}
}

func TestListUserSummaries(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	creator, _ := db.CreateUser(ctx, UserCreate{
		Email: "creator@example.com", Name: "Creator", Role: models.RoleEditor, PasswordHash: "x",
	})
	helper, _ := db.CreateUser(ctx, UserCreate{
		Email: "helper@example.com", Name: "Helper", Role: models.RoleEditor, PasswordHash: "x",
	})

	campaign, err := db.CreateCampaign(ctx, CampaignCreate{
		Name: "Dragon Heist", CreatorID: &creator.ID,
	})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}
	if err := db.AddCampaignEditor(ctx, campaign.ID, helper.ID); err != nil {
		t.Fatalf("failed to assign editor: %v", err)
	}

	summaries, err := db.ListUserSummaries(ctx)
	if err != nil {
		t.Fatalf("failed to list user summaries: %v", err)
	}
	byEmail := make(map[string]models.UserSummary, len(summaries))
	for _, s := range summaries {
		byEmail[s.Email] = s
	}

	if got := byEmail["creator@example.com"].CreatedCampaignCount; got != 1 {
		t.Errorf("expected creator count 1, got %d", got)
	}
	if got := byEmail["helper@example.com"].EditableCampaignCount; got != 1 {
		t.Errorf("expected editable count 1, got %d", got)
	}
}

func TestListCampaignsWithCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	campaign, err := db.CreateCampaign(ctx, CampaignCreate{Name: "Avernus"})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}
	if _, err := db.CreateCharacter(ctx, CharacterCreate{Name: "Zariel", CampaignID: &campaign.ID}); err != nil {
		t.Fatalf("failed to create character: %v", err)
	}
	if _, err := db.CreateOrganisation(ctx, OrganisationCreate{Name: "Hellriders", Color: "#f58231", CampaignID: &campaign.ID}); err != nil {
		t.Fatalf("failed to create organisation: %v", err)
	}
	// Unassigned entities must not count toward the campaign.
	if _, err := db.CreateCharacter(ctx, CharacterCreate{Name: "Stray"}); err != nil {
		t.Fatalf("failed to create stray character: %v", err)
	}

	list, err := db.ListCampaignsWithCounts(ctx)
	if err != nil {
		t.Fatalf("failed to list campaigns: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 campaign, got %d", len(list))
	}
	if list[0].CharacterCount != 1 || list[0].OrganisationCount != 1 {
		t.Errorf("expected counts 1/1, got %d/%d", list[0].CharacterCount, list[0].OrganisationCount)
	}
}

func TestGetCampaignDetail(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	campaign, err := db.CreateCampaign(ctx, CampaignCreate{Name: "Icewind Dale"})
	if err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}
	a, _ := db.CreateCharacter(ctx, CharacterCreate{Name: "Auril", CampaignID: &campaign.ID})
	b, _ := db.CreateCharacter(ctx, CharacterCreate{Name: "Vellynne", CampaignID: &campaign.ID})
	if _, err := db.CreateRelationship(ctx, RelationshipCreate{
		FromNpcID: a.ID, ToNpcID: b.ID, Type: "curses",
	}); err != nil {
		t.Fatalf("failed to create relationship: %v", err)
	}

	detail, err := db.GetCampaignDetail(ctx, campaign.Slug)
	if err != nil {
		t.Fatalf("failed to fetch detail: %v", err)
	}
	if len(detail.Characters) != 2 {
		t.Errorf("expected 2 characters, got %d", len(detail.Characters))
	}
	if len(detail.Relationships) != 1 {
		t.Errorf("expected 1 relationship, got %d", len(detail.Relationships))
	}
}
