package stagelist

// ElementKind is one piece of the rendered pipeline.
type ElementKind string

const (
	ElementStart     ElementKind = "start"
	ElementStage     ElementKind = "stage"
	ElementConnector ElementKind = "connector"
	ElementEnd       ElementKind = "end"
)

// Element is one entry of the rendered pipeline. Index is only meaningful for stages.
type Element struct {
	Kind        ElementKind `json:"kind"`
	Index       int         `json:"index"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Editing     bool        `json:"editing,omitempty"`
	AddStage    bool        `json:"add_stage,omitempty"`
}

// Layout renders the pipeline in display order: a start marker, the stages separated
// by connectors, then an end marker.
func (l *List) Layout() []Element {
	stages := l.definition.Stages
	elements := make([]Element, 0, 2*len(stages)+1)

	elements = append(elements, Element{Kind: ElementStart, Index: -1})

	for i, stage := range stages {
		if i > 0 {
			elements = append(elements, Element{Kind: ElementConnector, Index: -1})
		}

		elements = append(elements, Element{
			Kind:        ElementStage,
			Index:       i,
			Placeholder: stage.IsPlaceholder(),
			Editing:     l.isEditing(i),
			AddStage:    l.CanInsertAfter(i),
		})
	}

	return append(elements, Element{Kind: ElementEnd, Index: -1})
}
