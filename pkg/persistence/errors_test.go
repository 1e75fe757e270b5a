package persistence_test

import (
	"errors"
	"testing"

	"github.com/dukex/formflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		err := persistence.NewDefinitionError("DefinitionByID", "def-123", persistence.ErrDefinitionNotFound)

		assert.True(t, persistence.IsDefinitionNotFound(err))
		assert.False(t, persistence.IsInvalidDefinition(err))
		assert.True(t, errors.Is(err, persistence.ErrDefinitionNotFound))
	})

	t.Run("definition error contains context", func(t *testing.T) {
		err := persistence.NewDefinitionError("SaveDefinition", "def-123", persistence.ErrInvalidDefinition)
		err.Message = "missing id"

		assert.Contains(t, err.Error(), "SaveDefinition")
		assert.Contains(t, err.Error(), "def-123")
		assert.Contains(t, err.Error(), "missing id")
		assert.Contains(t, err.Error(), "invalid workflow definition")
	})

	t.Run("unrelated errors are not classified", func(t *testing.T) {
		assert.False(t, persistence.IsDefinitionNotFound(errors.New("boom")))
	})
}
