package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/persistence"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Definition manages stored workflow definitions.
type Definition struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

// NewDefinition creates a new definition service.
func NewDefinition(persistence persistence.Persistence) *Definition {
	return &Definition{
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (d *Definition) HealthCheck(ctx context.Context) (string, bool) {
	if d.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := d.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every stored definition.
func (d *Definition) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	definitions, err := d.persistence.Definitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}

	return definitions, nil
}

// FetchByID retrieves a definition by its ID.
func (d *Definition) FetchByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	definition, err := d.persistence.DefinitionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if definition == nil {
		return nil, ErrDefinitionNotFound
	}

	return definition, nil
}

// Create stores a new definition. A definition without stages is seeded with the
// default trigger stage.
func (d *Definition) Create(ctx context.Context, definition *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if definition == nil {
		return nil, ErrDefinitionNil
	}

	if len(definition.Stages) == 0 {
		definition.Stages = []*models.Stage{models.NewDefaultTriggerStage(uuid.New().String())}
	}

	if err := d.validateDefinition("Create", definition); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	definition.ID = uuid.New().String()
	definition.CreatedAt = now
	definition.UpdatedAt = now

	err := d.persistence.SaveDefinition(ctx, definition)
	if err != nil {
		return nil, fmt.Errorf("failed to create definition: %w", err)
	}

	return definition, nil
}

// Update replaces an existing definition by its ID.
func (d *Definition) Update(ctx context.Context, id string, definition *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if definition == nil {
		return nil, ErrDefinitionNil
	}

	existing, err := d.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.validateDefinition("Update", definition); err != nil {
		return nil, err
	}

	definition.ID = id
	definition.CreatedAt = existing.CreatedAt
	definition.UpdatedAt = time.Now().UTC()

	err = d.persistence.SaveDefinition(ctx, definition)
	if err != nil {
		return nil, fmt.Errorf("failed to update definition: %w", err)
	}

	return definition, nil
}

// Delete removes a definition by its ID.
func (d *Definition) Delete(ctx context.Context, id string) error {
	if _, err := d.FetchByID(ctx, id); err != nil {
		return err
	}

	err := d.persistence.DeleteDefinition(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete definition: %w", err)
	}

	return nil
}

func (d *Definition) validateDefinition(op string, definition *models.WorkflowDefinition) error {
	err := d.validate.Struct(definition)
	if err != nil {
		return NewValidationError(op, "INVALID_DEFINITION", err.Error(), ErrInvalidRequest)
	}

	return nil
}
