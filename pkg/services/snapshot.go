package services

import (
	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/stagelist"
)

// Snapshot is the rendered state of an authoring session.
type Snapshot struct {
	Definition  *models.WorkflowDefinition `json:"definition"`
	Editing     *int                       `json:"editing"`
	Draft       *models.Stage              `json:"draft,omitempty"`
	Conditions  []ConditionView            `json:"conditions,omitempty"`
	Missing     []int                      `json:"missing,omitempty"`
	Layout      []stagelist.Element        `json:"layout"`
	Affordances []stagelist.Affordance     `json:"affordances"`
	Dirty       bool                       `json:"dirty"`
}

// ConditionView is one condition of the draft with its resolved editor.
type ConditionView struct {
	Index      int               `json:"index"`
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Kind       string            `json:"kind,omitempty"`
	Comparator models.Comparator `json:"comparator,omitempty"`
	ReadOnly   bool              `json:"read_only"`
	Optional   bool              `json:"optional"`
	Value      any               `json:"value"`
	Options    []models.Option   `json:"options,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func (s *session) snapshot() *Snapshot {
	snapshot := &Snapshot{
		Definition:  s.list.Definition(),
		Layout:      s.list.Layout(),
		Affordances: make([]stagelist.Affordance, s.list.Len()),
		Dirty:       s.dirty,
	}

	for i := range snapshot.Affordances {
		snapshot.Affordances[i], _ = s.list.Affordances(i)
	}

	editing, ok := s.list.Editing()
	if !ok {
		return snapshot
	}

	snapshot.Editing = &editing
	snapshot.Draft, _ = s.list.Draft()

	if s.model == nil {
		return snapshot
	}

	for _, field := range s.model.Fields() {
		view := ConditionView{
			Index:    field.Index,
			ID:       field.Condition.ID,
			Label:    field.Condition.Label,
			Optional: field.Condition.Optional,
			Value:    field.Condition.Value,
			Options:  field.Options,
		}

		if field.Err != nil {
			view.Error = field.Err.Error()
		} else {
			view.Kind = field.Editor.Kind.String()
			view.ReadOnly = field.Editor.ReadOnly

			if field.Editor.Comparator {
				view.Comparator = field.Condition.ConditionType
			}
		}

		snapshot.Conditions = append(snapshot.Conditions, view)
	}

	snapshot.Missing = s.model.Missing()

	return snapshot
}
