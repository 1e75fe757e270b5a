package condition

import (
	"fmt"

	"github.com/dukex/formflow/pkg/models"
)

// OptionSource tells a select editor where its choices come from.
type OptionSource int

const (
	SourceNone OptionSource = iota
	// SourceConditionOptions offers the condition's own options.
	SourceConditionOptions
	// SourceFieldCatalog offers the form's field catalog.
	SourceFieldCatalog
)

// Editor describes the value editor resolved for a condition.
type Editor struct {
	Kind       Kind
	Source     OptionSource
	Comparator bool
	ReadOnly   bool
}

var triggerEditors = map[models.ConditionStyle]Editor{
	models.Style1: {Kind: KindCheckboxGroup, Source: SourceConditionOptions, Comparator: true},
	models.Style2: {Kind: KindSelect, Source: SourceConditionOptions, Comparator: true},
	models.Style3: {Kind: KindText, Comparator: true},
	models.Style5: {Kind: KindSwitch, Comparator: true},
	models.Style6: {Kind: KindDate, Comparator: true},
}

var actionEditors = map[models.ConditionStyle]Editor{
	models.Style1: {Kind: KindText},
	models.Style2: {Kind: KindSelect, Source: SourceConditionOptions},
	models.Style3: {Kind: KindTemplate, Source: SourceFieldCatalog},
	models.Style4: {Kind: KindSchema},
	models.Style5: {Kind: KindSelect, Source: SourceFieldCatalog},
}

// EditorFor resolves the value editor of a condition with style in a stage of flowType.
func EditorFor(flowType models.FlowType, style models.ConditionStyle) (Editor, error) {
	var (
		editor Editor
		ok     bool
	)

	switch flowType {
	case models.FlowTypeTrigger:
		editor, ok = triggerEditors[style]
	case models.FlowTypeApproval:
		editor, ok = Editor{Kind: KindApprover, ReadOnly: true}, true
	case models.FlowTypeGoogleCloud, models.FlowTypeSystem:
		editor, ok = actionEditors[style]
	case models.FlowTypePlaceholder:
		ok = false
	}

	if !ok {
		return Editor{}, fmt.Errorf("%w: style %d in %s stage", ErrUnsupportedStyle, style, flowType)
	}

	return editor, nil
}
