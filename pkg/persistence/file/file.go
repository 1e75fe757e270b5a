// Package file provides file-based persistence for workflow definitions.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/persistence"
)

const definitionsDir = "definitions"

// Persistence implements the persistence.Persistence interface using the file system.
// Each definition is stored as root/definitions/<id>.json.
type Persistence struct {
	root string
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Definitions returns every stored definition, newest first.
func (fp *Persistence) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	root := os.DirFS(path.Join(fp.root, definitionsDir))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list definition files: %w", err)
	}

	definitions := make([]*models.WorkflowDefinition, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		definition, err := fp.DefinitionByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load definition %s: %w", id, err)
		}

		if definition != nil {
			definitions = append(definitions, definition)
		}
	}

	sort.SliceStable(definitions, func(i, j int) bool {
		return definitions[i].CreatedAt.After(definitions[j].CreatedAt)
	})

	return definitions, nil
}

// DefinitionByID retrieves a definition by its ID from the file system.
func (fp *Persistence) DefinitionByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	body, err := os.ReadFile(fp.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch definition %s: %w", id, err)
	}

	var definition models.WorkflowDefinition

	err = json.Unmarshal(body, &definition)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal definition %s: %w", id, err)
	}

	return &definition, nil
}

// SaveDefinition writes a definition to the file system.
func (fp *Persistence) SaveDefinition(_ context.Context, definition *models.WorkflowDefinition) error {
	if definition == nil || definition.ID == "" || strings.ContainsAny(definition.ID, `/\`) {
		return persistence.NewDefinitionError("SaveDefinition", idOf(definition), persistence.ErrInvalidDefinition)
	}

	err := os.MkdirAll(path.Join(fp.root, definitionsDir), 0750)
	if err != nil {
		return fmt.Errorf("failed to create definitions directory: %w", err)
	}

	now := time.Now().UTC()
	if definition.CreatedAt.IsZero() {
		definition.CreatedAt = now
	}

	definition.UpdatedAt = now

	data, err := json.MarshalIndent(definition, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definition %s: %w", definition.ID, err)
	}

	err = os.WriteFile(fp.path(definition.ID), data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write definition %s: %w", definition.ID, err)
	}

	return nil
}

// DeleteDefinition removes a definition file.
func (fp *Persistence) DeleteDefinition(_ context.Context, id string) error {
	err := os.Remove(fp.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewDefinitionError("DeleteDefinition", id, persistence.ErrDefinitionNotFound)
		}

		return fmt.Errorf("failed to delete definition %s: %w", id, err)
	}

	return nil
}

func (fp *Persistence) path(id string) string {
	return filepath.Clean(path.Join(fp.root, definitionsDir, id+".json"))
}

func idOf(definition *models.WorkflowDefinition) string {
	if definition == nil {
		return ""
	}

	return definition.ID
}
