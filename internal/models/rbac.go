// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package models

// Role constants for the three-tier hierarchy. Ordering matters:
// viewer < editor < admin.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// roleRanks maps each role to its position in the hierarchy.
// Unknown roles rank below viewer.
var roleRanks = map[string]int{
	RoleViewer: 0,
	RoleEditor: 1,
	RoleAdmin:  2,
}

// RoleRank returns the numeric rank of a role. Unknown roles return -1.
func RoleRank(role string) int {
	if rank, ok := roleRanks[role]; ok {
		return rank
	}
	return -1
}

// ValidRole reports whether role is one of viewer, editor, admin.
func ValidRole(role string) bool {
	_, ok := roleRanks[role]
	return ok
}

// RoleAtLeast reports whether role meets or exceeds the required role's rank.
// An empty or unknown role never satisfies any requirement above viewer.
func RoleAtLeast(role, required string) bool {
	have := RoleRank(role)
	if have < 0 {
		have = RoleRank(RoleViewer)
	}
	return have >= RoleRank(required)
}
