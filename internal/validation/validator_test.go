// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package validation

import "testing"

func TestIsHexColor(t *testing.T) {
	valid := []string{"#fff", "#FFFFFF", "#e6194b", "#ABC123"}
	for _, s := range valid {
		if !IsHexColor(s) {
			t.Errorf("%q should be a valid hex color", s)
		}
	}

	invalid := []string{"", "fff", "#ggg", "#12345", "red", "#e6194b "}
	for _, s := range invalid {
		if IsHexColor(s) {
			t.Errorf("%q should not be a valid hex color", s)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type createOrg struct {
		Name  string `validate:"required,min=1,max=200"`
		Color string `validate:"omitempty,hexcolor"`
	}

	if err := ValidateStruct(&createOrg{Name: "Zhentarim", Color: "#e6194b"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
	if err := ValidateStruct(&createOrg{Name: "Zhentarim"}); err != nil {
		t.Errorf("empty optional color rejected: %v", err)
	}

	err := ValidateStruct(&createOrg{Color: "#e6194b"})
	if err == nil {
		t.Fatal("missing name should fail")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("unexpected code %q", apiErr.Code)
	}
	if apiErr.Message != "Name is required" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Role  string `validate:"required,oneof=viewer editor admin"`
	}

	err := ValidateStruct(&req{Email: "nope", Role: "superuser"})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Details == nil {
		t.Error("multi-error responses should carry field details")
	}
}
