// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package authz

import (
	"testing"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	return e
}

func TestPolicyMatrix(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"viewer", "/api/campaigns", ActionRead, true},
		{"viewer", "/api/campaigns", ActionWrite, false},
		{"viewer", "/api/users", ActionAdmin, false},

		{"editor", "/api/campaigns", ActionRead, true},
		{"editor", "/api/campaigns", ActionWrite, true},
		{"editor", "/api/users", ActionAdmin, false},

		{"admin", "/api/campaigns", ActionRead, true},
		{"admin", "/api/campaigns", ActionWrite, true},
		{"admin", "/api/users", ActionAdmin, true},
		{"admin", "/api/users/abc", ActionAdmin, true},
	}

	for _, tt := range tests {
		got, err := e.Enforce(tt.role, tt.object, tt.action)
		if err != nil {
			t.Fatalf("Enforce(%s, %s, %s) failed: %v", tt.role, tt.object, tt.action, err)
		}
		if got != tt.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
		}
	}
}

func TestEnforceRoleDefaultsAnonymousToViewer(t *testing.T) {
	e := newTestEnforcer(t)

	allowed, err := e.EnforceRole("", "/api/campaigns", ActionRead)
	if err != nil {
		t.Fatalf("EnforceRole failed: %v", err)
	}
	if !allowed {
		t.Error("anonymous callers should read as viewers")
	}

	allowed, err = e.EnforceRole("", "/api/campaigns", ActionWrite)
	if err != nil {
		t.Fatalf("EnforceRole failed: %v", err)
	}
	if allowed {
		t.Error("anonymous callers must not write")
	}
}

func TestUnknownRoleDeniedWrites(t *testing.T) {
	e := newTestEnforcer(t)

	allowed, err := e.Enforce("superuser", "/api/campaigns", ActionWrite)
	if err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}
	if allowed {
		t.Error("unknown roles must not gain write access")
	}
}

func TestRoleHierarchy(t *testing.T) {
	e := newTestEnforcer(t)

	roles, err := e.RolesForRole("admin")
	if err != nil {
		t.Fatalf("RolesForRole failed: %v", err)
	}

	inherited := make(map[string]bool, len(roles))
	for _, r := range roles {
		inherited[r] = true
	}
	if !inherited["editor"] || !inherited["viewer"] {
		t.Errorf("admin should inherit editor and viewer, got %v", roles)
	}
}
