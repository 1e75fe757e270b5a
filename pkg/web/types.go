// Package web provides HTTP request and response types for the authoring API.
package web

import "github.com/dukex/formflow/pkg/models"

// CreateDefinitionRequest represents the request body for creating a new definition.
type CreateDefinitionRequest struct {
	Name   string          `json:"name"   validate:"required,min=3"`
	Owner  string          `json:"owner"`
	Stages []*models.Stage `json:"stages"`
}

// UpdateDefinitionRequest represents the request body for updating a definition.
// All fields are optional to support partial updates.
type UpdateDefinitionRequest struct {
	Name   *string         `json:"name,omitempty"   validate:"omitempty,min=3"`
	Owner  *string         `json:"owner,omitempty"`
	Stages []*models.Stage `json:"stages,omitempty"`
}

// OpenSessionRequest carries the form field catalog offered while authoring.
type OpenSessionRequest struct {
	Catalog []models.Option `json:"catalog" validate:"dive"`
}

type InsertPlaceholderRequest struct {
	After *int `json:"after" validate:"required"`
}

type ResolvePlaceholderRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// MoveRequest drops a palette item onto the stage at Target.
type MoveRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Target *int   `json:"target"  validate:"required"`
}

// ConditionValueRequest holds the new value of a condition. Its JSON shape depends on
// the condition editor: a list of strings, a string, a boolean or a schema list.
type ConditionValueRequest struct {
	Value any `json:"value"`
}

type ComparatorRequest struct {
	Comparator models.Comparator `json:"comparator" validate:"required"`
}

// EncodeRequest converts canonical template text to editable markup.
type EncodeRequest struct {
	Canonical string          `json:"canonical"`
	Catalog   []models.Option `json:"catalog"   validate:"dive"`
}

// DecodeRequest converts editable markup back to canonical text. Strict only accepts
// markers whose id is a known token id.
type DecodeRequest struct {
	Editable string `json:"editable"`
	Strict   bool   `json:"strict"`
}

// TemplateResponse is returned by both template conversions.
type TemplateResponse struct {
	Canonical  string   `json:"canonical"`
	Editable   string   `json:"editable,omitempty"`
	Tokens     []string `json:"tokens"`
	Unresolved []string `json:"unresolved,omitempty"`
}
