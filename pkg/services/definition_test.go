package services

import (
	"errors"
	"testing"

	"github.com/dukex/formflow/pkg/mocks"
	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDefinition_CreateSeedsTrigger(t *testing.T) {
	service := NewDefinition(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), &models.WorkflowDefinition{Name: "Dataset access"})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	require.Len(t, created.Stages, 1)
	assert.Equal(t, models.FlowTypeTrigger, created.Stages[0].FlowType)
	assert.True(t, created.Stages[0].Disabled)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dataset access", fetched.Name)
}

func TestDefinition_CreateValidation(t *testing.T) {
	service := NewDefinition(file.NewPersistence(t.TempDir()))

	tests := []struct {
		name       string
		definition *models.WorkflowDefinition
	}{
		{"nil definition", nil},
		{"missing name", &models.WorkflowDefinition{}},
		{"short name", &models.WorkflowDefinition{Name: "ab"}},
		{"stage without flow type", &models.WorkflowDefinition{
			Name:   "Broken",
			Stages: []*models.Stage{{ID: "s1"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(t.Context(), tt.definition)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestDefinition_FetchByID_NotFound(t *testing.T) {
	service := NewDefinition(file.NewPersistence(t.TempDir()))

	_, err := service.FetchByID(t.Context(), "missing")
	require.ErrorIs(t, err, ErrDefinitionNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestDefinition_UpdateKeepsCreation(t *testing.T) {
	service := NewDefinition(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), &models.WorkflowDefinition{Name: "Dataset access"})
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), created.ID, &models.WorkflowDefinition{
		Name:   "Dataset access v2",
		Stages: created.Stages,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = service.Update(t.Context(), "missing", &models.WorkflowDefinition{Name: "Other"})
	require.ErrorIs(t, err, ErrDefinitionNotFound)
}

func TestDefinition_ListAndDelete(t *testing.T) {
	service := NewDefinition(file.NewPersistence(t.TempDir()))

	first, err := service.Create(t.Context(), &models.WorkflowDefinition{Name: "First"})
	require.NoError(t, err)
	_, err = service.Create(t.Context(), &models.WorkflowDefinition{Name: "Second"})
	require.NoError(t, err)

	all, err := service.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, service.Delete(t.Context(), first.ID))
	require.ErrorIs(t, service.Delete(t.Context(), first.ID), ErrDefinitionNotFound)

	all, err = service.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDefinition_HealthCheck(t *testing.T) {
	service := NewDefinition(file.NewPersistence(t.TempDir()))

	message, ok := service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)

	message, ok = NewDefinition(nil).HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Equal(t, "Persistence layer not initialized", message)
}

func TestDefinition_PersistenceErrors(t *testing.T) {
	store := &mocks.MockPersistence{}
	store.On("Definitions", mock.Anything).Return(nil, errors.New("connection refused"))
	store.On("DefinitionByID", mock.Anything, "broken").Return(nil, errors.New("connection refused"))
	store.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	service := NewDefinition(store)

	_, err := service.List(t.Context())
	require.ErrorContains(t, err, "failed to list definitions")

	_, err = service.FetchByID(t.Context(), "broken")
	require.Error(t, err)
	assert.False(t, IsNotFoundError(err))

	message, ok := service.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Equal(t, "Persistence layer is unhealthy: connection refused", message)
}
