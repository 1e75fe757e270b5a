// Package models defines the core domain models for stage-based workflow authoring.
package models

import "time"

// WorkflowDefinition is the ordered stage pipeline an author composes for a form.
type WorkflowDefinition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"                 validate:"required,min=3"`
	Owner     string    `json:"owner"`
	Stages    []*Stage  `json:"stages"               validate:"dive"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the definition.
func (d *WorkflowDefinition) Clone() *WorkflowDefinition {
	if d == nil {
		return nil
	}

	clone := *d
	clone.Stages = CloneStages(d.Stages)

	return &clone
}

// PlaceholderIndex returns the index of the placeholder stage, or -1.
func (d *WorkflowDefinition) PlaceholderIndex() int {
	for i, stage := range d.Stages {
		if stage.IsPlaceholder() {
			return i
		}
	}

	return -1
}

// NewDefaultTriggerStage seeds a fresh definition.
func NewDefaultTriggerStage(id string) *Stage {
	return &Stage{
		ID:        id,
		Group:     GroupTrigger,
		Label:     "Trigger",
		FlowType:  FlowTypeTrigger,
		Condition: []*Condition{},
		Disabled:  true,
	}
}
