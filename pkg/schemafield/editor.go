// Package schemafield edits the typed column list a schema condition stores as JSON.
package schemafield

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukex/formflow/pkg/models"
)

var (
	// ErrRowOutOfRange is returned when a row index does not exist.
	ErrRowOutOfRange = errors.New("schema row out of range")

	// ErrEditorClosed is returned when an editor is used after Commit or Discard.
	ErrEditorClosed = errors.New("schema editor closed")
)

// DefaultRowType is the type given to freshly added rows.
const DefaultRowType models.SchemaFieldType = "Integer"

// Parse decodes a stored schema value. Empty, non-string or malformed values yield
// an empty list.
func Parse(value any) []models.SchemaField {
	var raw []byte

	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return []models.SchemaField{}
	}

	if len(raw) == 0 {
		return []models.SchemaField{}
	}

	var fields []models.SchemaField
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return []models.SchemaField{}
	}

	return fields
}

// Patch holds the row attributes to change; nil members are left untouched.
type Patch struct {
	Name *string
	Type *models.SchemaFieldType
	Mode *models.SchemaFieldMode
}

// Editor works on a copy of the stored rows and only writes back on Commit.
type Editor struct {
	original any
	rows     []models.SchemaField
	onChange func(value string)
	closed   bool
}

// Open starts editing the stored value; onChange receives the serialized list on Commit.
func Open(value any, onChange func(value string)) *Editor {
	return &Editor{
		original: value,
		rows:     Parse(value),
		onChange: onChange,
	}
}

// IsOpen reports whether the editor still accepts changes.
func (e *Editor) IsOpen() bool {
	return !e.closed
}

// Original returns the stored value the editor was opened with.
func (e *Editor) Original() any {
	return e.original
}

// Rows returns a copy of the working rows.
func (e *Editor) Rows() []models.SchemaField {
	out := make([]models.SchemaField, len(e.rows))
	copy(out, e.rows)

	return out
}

// AddRow appends a blank row.
func (e *Editor) AddRow() error {
	if e.closed {
		return ErrEditorClosed
	}

	e.rows = append(e.rows, models.SchemaField{Name: "", Type: DefaultRowType, Mode: models.SchemaFieldModeUnset})

	return nil
}

// UpdateRow applies patch to the row at index.
func (e *Editor) UpdateRow(index int, patch Patch) error {
	if e.closed {
		return ErrEditorClosed
	}

	if index < 0 || index >= len(e.rows) {
		return fmt.Errorf("update row %d: %w", index, ErrRowOutOfRange)
	}

	row := e.rows[index]

	if patch.Name != nil {
		row.Name = *patch.Name
	}

	if patch.Type != nil {
		row.Type = *patch.Type
	}

	if patch.Mode != nil {
		row.Mode = *patch.Mode
	}

	e.rows[index] = row

	return nil
}

// RemoveRow deletes the row at index.
func (e *Editor) RemoveRow(index int) error {
	if e.closed {
		return ErrEditorClosed
	}

	if index < 0 || index >= len(e.rows) {
		return fmt.Errorf("remove row %d: %w", index, ErrRowOutOfRange)
	}

	e.rows = append(e.rows[:index], e.rows[index+1:]...)

	return nil
}

// Commit serializes the rows, hands them to onChange and closes the editor.
func (e *Editor) Commit() (string, error) {
	if e.closed {
		return "", ErrEditorClosed
	}

	data, err := json.Marshal(e.rows)
	if err != nil {
		return "", fmt.Errorf("failed to serialize schema fields: %w", err)
	}

	e.closed = true

	if e.onChange != nil {
		e.onChange(string(data))
	}

	return string(data), nil
}

// Discard closes the editor without writing anything back.
func (e *Editor) Discard() {
	e.closed = true
}
