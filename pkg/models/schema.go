package models

import (
	"encoding/json"
	"fmt"
)

// SchemaFieldType is the column type of a schema field.
type SchemaFieldType string

const (
	SchemaFieldTypeString     SchemaFieldType = "STRING"
	SchemaFieldTypeBytes      SchemaFieldType = "BYTES"
	SchemaFieldTypeInteger    SchemaFieldType = "INTEGER"
	SchemaFieldTypeFloat      SchemaFieldType = "FLOAT"
	SchemaFieldTypeNumeric    SchemaFieldType = "NUMERIC"
	SchemaFieldTypeBigNumeric SchemaFieldType = "BIGNUMERIC"
)

// SchemaFieldTypes lists the supported column types.
var SchemaFieldTypes = []SchemaFieldType{
	SchemaFieldTypeString,
	SchemaFieldTypeBytes,
	SchemaFieldTypeInteger,
	SchemaFieldTypeFloat,
	SchemaFieldTypeNumeric,
	SchemaFieldTypeBigNumeric,
}

// SchemaFieldMode is the column mode of a schema field. The empty mode is the
// unset value, stored as JSON false for compatibility with existing definitions.
type SchemaFieldMode string

const (
	SchemaFieldModeUnset    SchemaFieldMode = ""
	SchemaFieldModeNullable SchemaFieldMode = "NULLABLE"
	SchemaFieldModeRequired SchemaFieldMode = "REQUIRED"
	SchemaFieldModeRepeated SchemaFieldMode = "REPEATED"
)

// SchemaFieldModes lists the supported column modes.
var SchemaFieldModes = []SchemaFieldMode{
	SchemaFieldModeNullable,
	SchemaFieldModeRequired,
	SchemaFieldModeRepeated,
}

func (m SchemaFieldMode) MarshalJSON() ([]byte, error) {
	if m == SchemaFieldModeUnset {
		return []byte("false"), nil
	}

	return json.Marshal(string(m))
}

func (m *SchemaFieldMode) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*m = SchemaFieldModeUnset
	case bool:
		if v {
			return fmt.Errorf("invalid schema field mode: %s", data)
		}

		*m = SchemaFieldModeUnset
	case string:
		*m = SchemaFieldMode(v)
	default:
		return fmt.Errorf("invalid schema field mode: %s", data)
	}

	return nil
}

// SchemaField is one typed column descriptor edited through a schema condition.
type SchemaField struct {
	Name string          `json:"name" validate:"required"`
	Type SchemaFieldType `json:"type" validate:"required"`
	Mode SchemaFieldMode `json:"mode"`
}

// JSONSchema represents a JSON Schema used to check stored schema field lists.
type JSONSchema struct {
	Type        string               `json:"type"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
	Items       *JSONSchema          `json:"items,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
}

// Property represents a JSON Schema property.
type Property struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	MinLength   *int   `json:"minLength,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
}
