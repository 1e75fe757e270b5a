package models

// ConditionStyle is the numeric code selecting a condition's value editor.
type ConditionStyle int

const (
	Style1 ConditionStyle = 1
	Style2 ConditionStyle = 2
	Style3 ConditionStyle = 3
	Style4 ConditionStyle = 4
	Style5 ConditionStyle = 5
	Style6 ConditionStyle = 6
)

// Comparator is the operator of a Trigger condition.
type Comparator string

const (
	ComparatorEqual        Comparator = "="
	ComparatorNotEqual     Comparator = "!="
	ComparatorGreaterEqual Comparator = ">="
	ComparatorLessEqual    Comparator = "<="
)

// Valid reports whether c is a supported comparator.
func (c Comparator) Valid() bool {
	switch c {
	case ComparatorEqual, ComparatorNotEqual, ComparatorGreaterEqual, ComparatorLessEqual:
		return true
	default:
		return false
	}
}

// Option is a label/value pair. The form field catalog is a list of options whose
// Value is the field id referenced by template tokens.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value" validate:"required"`
}

// Condition is a single configurable value attached to a stage.
type Condition struct {
	ID            string         `json:"id"                      validate:"required"`
	Label         string         `json:"label"`
	Style         ConditionStyle `json:"style"`
	Value         any            `json:"value"`
	Options       []Option       `json:"options,omitempty"`
	ConditionType Comparator     `json:"conditionType,omitempty"`
	Optional      bool           `json:"optional"`
	Des           string         `json:"des,omitempty"`
}

// Clone returns a deep copy of the condition.
func (c *Condition) Clone() *Condition {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Value = CloneValue(c.Value)

	if c.Options != nil {
		clone.Options = make([]Option, len(c.Options))
		copy(clone.Options, c.Options)
	}

	return &clone
}

// CloneConditions deep-copies a condition slice.
func CloneConditions(conditions []*Condition) []*Condition {
	if conditions == nil {
		return nil
	}

	out := make([]*Condition, len(conditions))
	for i, condition := range conditions {
		out[i] = condition.Clone()
	}

	return out
}

// CloneValue deep-copies the JSON-shaped values conditions carry.
func CloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = CloneValue(item)
		}

		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = CloneValue(item)
		}

		return out
	case []string:
		out := make([]string, len(value))
		copy(out, value)

		return out
	case []SchemaField:
		out := make([]SchemaField, len(value))
		copy(out, value)

		return out
	default:
		return value
	}
}
