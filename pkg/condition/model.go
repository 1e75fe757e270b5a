// Package condition renders and mutates the conditions of the stage being edited.
package condition

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/schemafield"
	"github.com/dukex/formflow/pkg/template"
)

var (
	ErrUnsupportedStyle    = errors.New("unsupported condition style")
	ErrConditionOutOfRange = errors.New("condition index out of range")
	ErrKindMismatch        = errors.New("value kind does not match the condition editor")
	ErrReadOnly            = errors.New("condition is read-only")
	ErrUnknownOption       = errors.New("value is not one of the offered options")
	ErrInvalidComparator   = errors.New("invalid comparator")
	ErrNotTriggerStage     = errors.New("comparators only exist on trigger stages")
	ErrNotApprovalStage    = errors.New("conditions can only be added to or removed from approval stages")
	ErrDuplicateApprover   = errors.New("approver already present")
	ErrModalOpen           = errors.New("a schema editor is open")
	ErrNilStage            = errors.New("stage is nil")
)

// Field is the rendered view of one condition.
type Field struct {
	Index     int
	Condition *models.Condition
	Editor    Editor
	Value     Value
	Options   []models.Option
	Err       error
}

// Model owns the condition list of the open stage. Every change replaces the whole
// stage and is reported through onChange.
type Model struct {
	stage    *models.Stage
	catalog  []models.Option
	onChange func(stage *models.Stage)
	modal    *schemafield.Editor
}

// New creates a model over a copy of stage. catalog is the form field catalog used
// by template and field-select editors.
func New(stage *models.Stage, catalog []models.Option, onChange func(stage *models.Stage)) (*Model, error) {
	if stage == nil {
		return nil, ErrNilStage
	}

	return &Model{
		stage:    stage.Clone(),
		catalog:  catalog,
		onChange: onChange,
	}, nil
}

// Stage returns a copy of the current stage.
func (m *Model) Stage() *models.Stage {
	return m.stage.Clone()
}

// ModalOpen reports whether a schema editor is blocking other changes.
func (m *Model) ModalOpen() bool {
	return m.modal != nil && m.modal.IsOpen()
}

// Fields renders every condition with its resolved editor and typed value.
func (m *Model) Fields() []Field {
	fields := make([]Field, 0, len(m.stage.Condition))

	for i, cond := range m.stage.Condition {
		field := Field{Index: i, Condition: cond.Clone()}

		editor, err := EditorFor(m.stage.FlowType, cond.Style)
		if err != nil {
			field.Err = err
			fields = append(fields, field)

			continue
		}

		field.Editor = editor
		field.Value = valueOf(editor.Kind, cond)
		field.Options = m.optionsFor(editor, cond)

		fields = append(fields, field)
	}

	return fields
}

// Missing returns the indexes of required conditions that hold no value.
func (m *Model) Missing() []int {
	var missing []int

	for _, field := range m.Fields() {
		if field.Err != nil || field.Condition.Optional || field.Editor.ReadOnly {
			continue
		}

		if isEmpty(field.Value) {
			missing = append(missing, field.Index)
		}
	}

	return missing
}

// SetValue replaces the value of the condition at index.
func (m *Model) SetValue(index int, value Value) error {
	if m.ModalOpen() {
		return ErrModalOpen
	}

	cond, editor, err := m.resolve(index)
	if err != nil {
		return err
	}

	if editor.ReadOnly {
		return ErrReadOnly
	}

	if value == nil || value.Kind() != editor.Kind {
		return fmt.Errorf("%w: condition %d expects %s", ErrKindMismatch, index, editor.Kind)
	}

	if err := m.checkOptions(editor, cond, value); err != nil {
		return err
	}

	raw, err := value.raw()
	if err != nil {
		return err
	}

	m.apply(func(stage *models.Stage) {
		stage.Condition[index].Value = raw
	})

	return nil
}

// SetRawValue converts a decoded JSON value with ParseValue and applies it with SetValue.
func (m *Model) SetRawValue(index int, raw any) error {
	_, editor, err := m.resolve(index)
	if err != nil {
		return err
	}

	if editor.ReadOnly {
		return ErrReadOnly
	}

	value, err := ParseValue(editor.Kind, raw)
	if err != nil {
		return err
	}

	return m.SetValue(index, value)
}

// SetComparator changes the comparator of a trigger condition.
func (m *Model) SetComparator(index int, comparator models.Comparator) error {
	if m.ModalOpen() {
		return ErrModalOpen
	}

	if m.stage.FlowType != models.FlowTypeTrigger {
		return ErrNotTriggerStage
	}

	if _, _, err := m.resolve(index); err != nil {
		return err
	}

	if !comparator.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidComparator, comparator)
	}

	m.apply(func(stage *models.Stage) {
		stage.Condition[index].ConditionType = comparator
	})

	return nil
}

// AddApprover appends an approver condition dropped on an approval stage.
func (m *Model) AddApprover(approver *models.Condition) error {
	if m.ModalOpen() {
		return ErrModalOpen
	}

	if m.stage.FlowType != models.FlowTypeApproval {
		return ErrNotApprovalStage
	}

	if approver == nil {
		return fmt.Errorf("%w: nil approver", ErrKindMismatch)
	}

	if slices.ContainsFunc(m.stage.Condition, func(c *models.Condition) bool { return c.ID == approver.ID }) {
		return fmt.Errorf("%w: %s", ErrDuplicateApprover, approver.ID)
	}

	added := approver.Clone()

	m.apply(func(stage *models.Stage) {
		stage.Condition = append(stage.Condition, added)
	})

	return nil
}

// RemoveApprover removes the approver at index from an approval stage.
func (m *Model) RemoveApprover(index int) error {
	if m.ModalOpen() {
		return ErrModalOpen
	}

	if m.stage.FlowType != models.FlowTypeApproval {
		return ErrNotApprovalStage
	}

	if index < 0 || index >= len(m.stage.Condition) {
		return fmt.Errorf("%w: %d", ErrConditionOutOfRange, index)
	}

	m.apply(func(stage *models.Stage) {
		stage.Condition = slices.Delete(stage.Condition, index, index+1)
	})

	return nil
}

// OpenSchemaEditor opens the blocking schema editor for the condition at index.
// Committing the editor writes the value back; until it is committed or discarded
// every other change is refused.
func (m *Model) OpenSchemaEditor(index int) (*schemafield.Editor, error) {
	if m.ModalOpen() {
		return nil, ErrModalOpen
	}

	cond, editor, err := m.resolve(index)
	if err != nil {
		return nil, err
	}

	if editor.Kind != KindSchema {
		return nil, fmt.Errorf("%w: condition %d expects %s", ErrKindMismatch, index, editor.Kind)
	}

	m.modal = schemafield.Open(cond.Value, func(value string) {
		m.apply(func(stage *models.Stage) {
			stage.Condition[index].Value = value
		})
	})

	return m.modal, nil
}

// LoadTemplate binds editor to the template condition at index and loads its
// encoded content.
func (m *Model) LoadTemplate(index int, editor template.Editor) (*template.Codec, error) {
	cond, resolved, err := m.resolve(index)
	if err != nil {
		return nil, err
	}

	if resolved.Kind != KindTemplate {
		return nil, fmt.Errorf("%w: condition %d expects %s", ErrKindMismatch, index, resolved.Kind)
	}

	codec := template.NewCodec(editor, m.catalog)
	if err := codec.Load(stringOf(cond.Value)); err != nil {
		return nil, err
	}

	return codec, nil
}

// SaveTemplate decodes the codec content into the template condition at index.
func (m *Model) SaveTemplate(index int, codec *template.Codec) error {
	canonical, err := codec.Save()
	if err != nil {
		return err
	}

	return m.SetValue(index, Template{Canonical: canonical})
}

func (m *Model) resolve(index int) (*models.Condition, Editor, error) {
	if index < 0 || index >= len(m.stage.Condition) {
		return nil, Editor{}, fmt.Errorf("%w: %d", ErrConditionOutOfRange, index)
	}

	cond := m.stage.Condition[index]

	editor, err := EditorFor(m.stage.FlowType, cond.Style)
	if err != nil {
		return nil, Editor{}, err
	}

	return cond, editor, nil
}

func (m *Model) optionsFor(editor Editor, cond *models.Condition) []models.Option {
	switch editor.Source {
	case SourceConditionOptions:
		return slices.Clone(cond.Options)
	case SourceFieldCatalog:
		return slices.Clone(m.catalog)
	default:
		return nil
	}
}

func (m *Model) checkOptions(editor Editor, cond *models.Condition, value Value) error {
	options := m.optionsFor(editor, cond)
	if editor.Kind == KindTemplate || len(options) == 0 {
		return nil
	}

	offered := func(v string) bool {
		return v == "" || slices.ContainsFunc(options, func(o models.Option) bool { return o.Value == v })
	}

	switch v := value.(type) {
	case Select:
		if !offered(v.Selected) {
			return fmt.Errorf("%w: %q", ErrUnknownOption, v.Selected)
		}
	case CheckboxGroup:
		for _, selected := range v.Selected {
			if !offered(selected) {
				return fmt.Errorf("%w: %q", ErrUnknownOption, selected)
			}
		}
	}

	return nil
}

// apply clones the stage, lets mutate change the copy and publishes it.
func (m *Model) apply(mutate func(stage *models.Stage)) {
	next := m.stage.Clone()
	mutate(next)
	m.stage = next

	if m.onChange != nil {
		m.onChange(next.Clone())
	}
}
