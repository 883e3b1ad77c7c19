// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"database/sql"
	"strings"
)

// rowScanner abstracts *sql.Row and *sql.Rows so scan helpers serve both
// single-row and list queries.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullString wraps sql.NullString with a pointer conversion for nullable
// columns mapped to *string model fields.
type nullString struct {
	sql.NullString
}

func (ns nullString) ptr() *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

func countPlaceholders(query string) int {
	return strings.Count(query, "?")
}
