// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package api

import "net/http"

// Machine-readable error codes carried in the response envelope.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeAuthRequired     = "AUTH_REQUIRED"
	CodeForbidden        = "FORBIDDEN"
	CodeAdminRequired    = "ADMIN_REQUIRED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// AuthError is an authorisation failure carrying the HTTP status and
// envelope code to respond with. The Require* helpers return it so handlers
// can bail out with a single branch.
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func errAuthRequired() *AuthError {
	return &AuthError{Status: http.StatusUnauthorized, Code: CodeAuthRequired, Message: "Authentication required"}
}

func errAdminRequired() *AuthError {
	return &AuthError{Status: http.StatusForbidden, Code: CodeAdminRequired, Message: "Admin access required"}
}

func errForbidden(message string) *AuthError {
	return &AuthError{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}
