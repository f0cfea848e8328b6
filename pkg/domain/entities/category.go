package entities

import (
	"strings"
	"time"
)

// Category groups spare parts, e.g. Hydraulic or Tooling. Categories may
// nest one under another.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    string    `json:"parent_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCategory creates an active category
func NewCategory(name, description, parentID string, at time.Time) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", nil, "category name cannot be empty")
	}
	return &Category{
		ID:          NewID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		ParentID:    parentID,
		IsActive:    true,
		CreatedAt:   at,
	}, nil
}

// Unit is a unit of measure parts are stocked in
type Unit struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUnit creates an active unit of measure
func NewUnit(name, abbreviation string, at time.Time) (*Unit, error) {
	name = strings.TrimSpace(name)
	abbreviation = strings.TrimSpace(abbreviation)
	if name == "" {
		return nil, NewValidationError("name", nil, "unit name cannot be empty")
	}
	if abbreviation == "" {
		return nil, NewValidationError("abbreviation", nil, "unit abbreviation cannot be empty")
	}
	return &Unit{
		ID:           NewID(),
		Name:         name,
		Abbreviation: abbreviation,
		IsActive:     true,
		CreatedAt:    at,
	}, nil
}
