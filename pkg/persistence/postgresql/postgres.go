// Package postgresql provides PostgreSQL persistence for workflow definitions.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db             *sql.DB
	logger         *slog.Logger
	definitionRepo *DefinitionRepository
}

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPersistenceWithDB(ctx, logger, database)
}

// NewPersistenceWithDB builds the persistence layer over an open database and runs
// the pending migrations.
func NewPersistenceWithDB(ctx context.Context, logger *slog.Logger, database *sql.DB) (*Persistence, error) {
	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err := migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:             database,
		logger:         logger,
		definitionRepo: NewDefinitionRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Definitions returns all definitions from the database.
func (p *Persistence) Definitions(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return p.definitionRepo.GetAll(ctx)
}

// DefinitionByID returns a definition by its ID.
func (p *Persistence) DefinitionByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return p.definitionRepo.GetByID(ctx, id)
}

// SaveDefinition saves a definition to the database.
func (p *Persistence) SaveDefinition(ctx context.Context, definition *models.WorkflowDefinition) error {
	return p.definitionRepo.Save(ctx, definition)
}

// DeleteDefinition soft deletes a definition by setting deleted_at timestamp.
func (p *Persistence) DeleteDefinition(ctx context.Context, id string) error {
	return p.definitionRepo.Delete(ctx, id)
}
