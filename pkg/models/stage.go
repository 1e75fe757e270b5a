package models

// FlowType selects how a stage behaves and which condition editors it exposes.
type FlowType string

const (
	FlowTypeTrigger     FlowType = "Trigger"
	FlowTypeApproval    FlowType = "Approval"
	FlowTypeGoogleCloud FlowType = "GoogleCloud"
	FlowTypeSystem      FlowType = "System"
	FlowTypePlaceholder FlowType = "Placeholder"
)

// Valid reports whether the flow type is one of the known values.
func (f FlowType) Valid() bool {
	switch f {
	case FlowTypeTrigger, FlowTypeApproval, FlowTypeGoogleCloud, FlowTypeSystem, FlowTypePlaceholder:
		return true
	default:
		return false
	}
}

// Fixed reports whether stages of this type can never be moved or deleted.
func (f FlowType) Fixed() bool {
	return f == FlowTypeTrigger || f == FlowTypeApproval
}

// Well-known stage groups.
const (
	GroupPlaceholder = "PLACEHOLDER"
	GroupTrigger     = "TRIGGER"
	GroupApproval    = "APPROVAL"
)

// Stage is one step of a workflow pipeline.
type Stage struct {
	ID        string       `json:"id"        validate:"required"`
	Group     string       `json:"group"`
	Label     string       `json:"label"`
	FlowType  FlowType     `json:"flowType"  validate:"required,oneof=Trigger Approval GoogleCloud System Placeholder"`
	Condition []*Condition `json:"condition" validate:"dive"`
	Disabled  bool         `json:"disabled"`
}

// IsPlaceholder reports whether the stage is an unresolved insertion point.
func (s *Stage) IsPlaceholder() bool {
	return s != nil && (s.Group == GroupPlaceholder || s.FlowType == FlowTypePlaceholder)
}

// Clone returns a deep copy of the stage, conditions included.
func (s *Stage) Clone() *Stage {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Condition = CloneConditions(s.Condition)

	return &clone
}

// CloneStages deep-copies a stage sequence.
func CloneStages(stages []*Stage) []*Stage {
	if stages == nil {
		return nil
	}

	out := make([]*Stage, len(stages))
	for i, stage := range stages {
		out[i] = stage.Clone()
	}

	return out
}

// NewPlaceholderStage creates the marker stage used for an unresolved insertion point.
func NewPlaceholderStage(id string) *Stage {
	return &Stage{
		ID:        id,
		Group:     GroupPlaceholder,
		FlowType:  FlowTypePlaceholder,
		Condition: []*Condition{},
	}
}
