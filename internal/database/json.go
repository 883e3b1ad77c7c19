// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package database

import (
	"github.com/goccy/go-json"

	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

func marshalCrop(crop *models.ImageCrop) (string, error) {
	data, err := json.Marshal(crop)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalCrop(raw string) (*models.ImageCrop, error) {
	var crop models.ImageCrop
	if err := json.Unmarshal([]byte(raw), &crop); err != nil {
		return nil, err
	}
	return &crop, nil
}
