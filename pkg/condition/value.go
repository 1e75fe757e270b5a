package condition

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/schemafield"
)

// Kind identifies a value editor.
type Kind int

const (
	KindCheckboxGroup Kind = iota + 1
	KindSelect
	KindText
	KindSwitch
	KindDate
	KindTemplate
	KindSchema
	KindApprover
)

func (k Kind) String() string {
	switch k {
	case KindCheckboxGroup:
		return "checkbox-group"
	case KindSelect:
		return "select"
	case KindText:
		return "text"
	case KindSwitch:
		return "switch"
	case KindDate:
		return "date"
	case KindTemplate:
		return "template"
	case KindSchema:
		return "schema"
	case KindApprover:
		return "approver"
	default:
		return "unknown"
	}
}

// DateLayout is the stored format of date values.
const DateLayout = "2006-01-02"

// Value is the typed value of one condition. Each implementation matches exactly
// one editor kind.
type Value interface {
	Kind() Kind
	raw() (any, error)
}

// CheckboxGroup holds the selected option values of a multi-choice condition.
type CheckboxGroup struct {
	Selected []string
}

// Select holds the single selected option value.
type Select struct {
	Selected string
}

// Text holds free text.
type Text struct {
	Text string
}

// Switch holds a boolean toggle.
type Switch struct {
	On bool
}

// Date holds a calendar date in DateLayout, or empty.
type Date struct {
	Date string
}

// Template holds canonical template text.
type Template struct {
	Canonical string
}

// Schema holds the column list of a schema condition.
type Schema struct {
	Fields []models.SchemaField
}

// Approver is the read-only display of an approval condition.
type Approver struct {
	Label string
}

func (CheckboxGroup) Kind() Kind { return KindCheckboxGroup }
func (Select) Kind() Kind        { return KindSelect }
func (Text) Kind() Kind          { return KindText }
func (Switch) Kind() Kind        { return KindSwitch }
func (Date) Kind() Kind          { return KindDate }
func (Template) Kind() Kind      { return KindTemplate }
func (Schema) Kind() Kind        { return KindSchema }
func (Approver) Kind() Kind      { return KindApprover }

func (v CheckboxGroup) raw() (any, error) {
	out := make([]string, len(v.Selected))
	copy(out, v.Selected)

	return out, nil
}

func (v Select) raw() (any, error)   { return v.Selected, nil }
func (v Text) raw() (any, error)     { return v.Text, nil }
func (v Switch) raw() (any, error)   { return v.On, nil }
func (v Template) raw() (any, error) { return v.Canonical, nil }

func (v Date) raw() (any, error) {
	if v.Date == "" {
		return "", nil
	}

	if _, err := time.Parse(DateLayout, v.Date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", v.Date, err)
	}

	return v.Date, nil
}

func (v Schema) raw() (any, error) {
	fields := v.Fields
	if fields == nil {
		fields = []models.SchemaField{}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schema fields: %w", err)
	}

	return string(data), nil
}

func (v Approver) raw() (any, error) {
	return nil, ErrReadOnly
}

// valueOf reads the stored value of cond as the variant for kind.
func valueOf(kind Kind, cond *models.Condition) Value {
	switch kind {
	case KindCheckboxGroup:
		return CheckboxGroup{Selected: stringsOf(cond.Value)}
	case KindSelect:
		return Select{Selected: stringOf(cond.Value)}
	case KindText:
		return Text{Text: stringOf(cond.Value)}
	case KindSwitch:
		return Switch{On: boolOf(cond.Value)}
	case KindDate:
		return Date{Date: stringOf(cond.Value)}
	case KindTemplate:
		return Template{Canonical: stringOf(cond.Value)}
	case KindSchema:
		return Schema{Fields: schemafield.Parse(cond.Value)}
	case KindApprover:
		return Approver{Label: cond.Label}
	default:
		return nil
	}
}

func stringOf(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

func stringsOf(v any) []string {
	switch value := v.(type) {
	case []string:
		out := make([]string, len(value))
		copy(out, value)

		return out
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			out = append(out, stringOf(item))
		}

		return out
	case string:
		if value == "" {
			return []string{}
		}

		return []string{value}
	default:
		return []string{}
	}
}

func boolOf(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		b, err := strconv.ParseBool(value)

		return err == nil && b
	case float64:
		return value != 0
	default:
		return false
	}
}

func isEmpty(v Value) bool {
	switch value := v.(type) {
	case CheckboxGroup:
		return len(value.Selected) == 0
	case Select:
		return value.Selected == ""
	case Text:
		return value.Text == ""
	case Date:
		return value.Date == ""
	case Template:
		return value.Canonical == ""
	case Schema:
		return len(value.Fields) == 0
	default:
		return false
	}
}

// ParseValue converts a decoded JSON value into the variant for kind. Schema values
// may be given as a list of objects or as their JSON text.
func ParseValue(kind Kind, raw any) (Value, error) {
	mismatch := fmt.Errorf("%w: %T is not a %s value", ErrKindMismatch, raw, kind)

	switch kind {
	case KindCheckboxGroup:
		switch v := raw.(type) {
		case nil:
			return CheckboxGroup{Selected: []string{}}, nil
		case []string:
			return CheckboxGroup{Selected: v}, nil
		case []any:
			selected := make([]string, 0, len(v))

			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, mismatch
				}

				selected = append(selected, s)
			}

			return CheckboxGroup{Selected: selected}, nil
		}
	case KindSelect, KindText, KindDate, KindTemplate:
		s, ok := raw.(string)
		if raw != nil && !ok {
			return nil, mismatch
		}

		switch kind {
		case KindSelect:
			return Select{Selected: s}, nil
		case KindText:
			return Text{Text: s}, nil
		case KindDate:
			return Date{Date: s}, nil
		default:
			return Template{Canonical: s}, nil
		}
	case KindSwitch:
		if b, ok := raw.(bool); ok {
			return Switch{On: b}, nil
		}
	case KindSchema:
		data, ok := raw.(string)
		if !ok {
			encoded, err := json.Marshal(raw)
			if err != nil {
				return nil, mismatch
			}

			data = string(encoded)
		}

		var fields []models.SchemaField
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKindMismatch, err)
		}

		return Schema{Fields: fields}, nil
	case KindApprover:
		return nil, ErrReadOnly
	}

	return nil, mismatch
}
