package file

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition(id string) *models.WorkflowDefinition {
	return &models.WorkflowDefinition{
		ID:    id,
		Name:  "Dataset access",
		Owner: "data-team",
		Stages: []*models.Stage{
			models.NewDefaultTriggerStage("trigger"),
			{
				ID:       "create-table",
				Group:    "GoogleCloud",
				Label:    "Create BigQuery table",
				FlowType: models.FlowTypeGoogleCloud,
				Condition: []*models.Condition{
					{ID: "schema", Style: models.Style4, Value: `[{"name":"id","type":"INTEGER","mode":"REQUIRED"}]`},
				},
			},
		},
	}
}

func TestPersistence_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	p := NewPersistence("file://" + root)

	definition := sampleDefinition("def-1")
	require.NoError(t, p.SaveDefinition(t.Context(), definition))

	assert.False(t, definition.CreatedAt.IsZero())
	assert.FileExists(t, path.Join(root, "definitions", "def-1.json"))

	loaded, err := p.DefinitionByID(t.Context(), "def-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "Dataset access", loaded.Name)
	require.Len(t, loaded.Stages, 2)
	assert.Equal(t, models.FlowTypeGoogleCloud, loaded.Stages[1].FlowType)
	assert.Equal(t, `[{"name":"id","type":"INTEGER","mode":"REQUIRED"}]`, loaded.Stages[1].Condition[0].Value)
}

func TestPersistence_DefinitionByID_NotFound(t *testing.T) {
	p := NewPersistence(t.TempDir())

	loaded, err := p.DefinitionByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestPersistence_Definitions(t *testing.T) {
	p := NewPersistence(t.TempDir())

	empty, err := p.Definitions(t.Context())
	require.NoError(t, err)
	assert.Empty(t, empty)

	older := sampleDefinition("older")
	older.CreatedAt = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, p.SaveDefinition(t.Context(), older))
	require.NoError(t, p.SaveDefinition(t.Context(), sampleDefinition("newer")))

	definitions, err := p.Definitions(t.Context())
	require.NoError(t, err)
	require.Len(t, definitions, 2)
	assert.Equal(t, "newer", definitions[0].ID)
	assert.Equal(t, "older", definitions[1].ID)
}

func TestPersistence_SaveInvalid(t *testing.T) {
	p := NewPersistence(t.TempDir())

	for _, definition := range []*models.WorkflowDefinition{nil, {}, {ID: "../escape"}} {
		err := p.SaveDefinition(t.Context(), definition)
		assert.ErrorIs(t, err, persistence.ErrInvalidDefinition)
	}
}

func TestPersistence_Delete(t *testing.T) {
	p := NewPersistence(t.TempDir())

	require.NoError(t, p.SaveDefinition(t.Context(), sampleDefinition("def-1")))
	require.NoError(t, p.DeleteDefinition(t.Context(), "def-1"))

	loaded, err := p.DefinitionByID(t.Context(), "def-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	err = p.DeleteDefinition(t.Context(), "def-1")
	assert.True(t, persistence.IsDefinitionNotFound(err))
}

func TestPersistence_HealthCheck(t *testing.T) {
	root := t.TempDir()
	p := NewPersistence(root)

	require.NoError(t, p.HealthCheck(t.Context()))
	require.NoError(t, os.RemoveAll(root))
	assert.ErrorIs(t, p.HealthCheck(t.Context()), os.ErrNotExist)
	assert.NoError(t, p.Close(t.Context()))
}
