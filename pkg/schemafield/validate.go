package schemafield

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/formflow/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidSchema is returned when a schema field list fails validation.
var ErrInvalidSchema = errors.New("invalid schema fields")

// ValidationError lists the problems found in a schema field list.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidSchema, strings.Join(e.Issues, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSchema
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Schema is the JSON Schema stored schema field lists are checked against.
func Schema() *models.JSONSchema {
	types := make([]any, 0, len(models.SchemaFieldTypes))
	for _, t := range models.SchemaFieldTypes {
		types = append(types, string(t))
	}

	modes := make([]any, 0, len(models.SchemaFieldModes))
	for _, m := range models.SchemaFieldModes {
		modes = append(modes, string(m))
	}

	return &models.JSONSchema{
		Type:  "array",
		Title: "Schema fields",
		Items: &models.JSONSchema{
			Type:     "object",
			Required: []string{"name", "type", "mode"},
			Properties: map[string]*models.Property{
				"name": {Type: "string", Description: "Column name"},
				"type": {Description: "Column type", Enum: types},
				"mode": {Description: "Column mode", Enum: modes},
			},
		},
	}
}

// Validate checks fields against the column grammar. It only reports; editors
// commit regardless.
func Validate(fields []models.SchemaField) error {
	var issues []string

	for i := range fields {
		err := validate.Struct(fields[i])
		if err == nil {
			continue
		}

		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("failed to validate schema field %d: %w", i, err)
		}

		for _, fe := range validationErrors {
			issues = append(issues, fmt.Sprintf("%d.%s failed on %s", i, fe.Field(), fe.Tag()))
		}
	}

	if fields == nil {
		fields = []models.SchemaField{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(Schema()), gojsonschema.NewGoLoader(fields))
	if err != nil {
		return fmt.Errorf("failed to validate schema fields: %w", err)
	}

	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}

	return nil
}
