// Package persistence provides the storage abstraction for workflow definitions.
package persistence

import (
	"context"

	"github.com/dukex/formflow/pkg/models"
)

// Persistence stores workflow definitions. DefinitionByID returns nil and no error
// when the definition does not exist.
type Persistence interface {
	Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error)
	SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error
	DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	DeleteDefinition(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
