package stagelist

import (
	"slices"

	"github.com/dukex/formflow/pkg/models"
)

// SourceKind tells what a move request carries.
type SourceKind int

const (
	// SourceStage carries a whole stage and can only land on a placeholder.
	SourceStage SourceKind = iota + 1
	// SourceApprover carries one approver condition. It lands on an approval stage drop
	// zone, or on a placeholder when Stage is also set.
	SourceApprover
)

// Source describes the dragged item.
type Source struct {
	Kind      SourceKind
	ItemID    string
	Stage     *models.Stage
	Condition *models.Condition
}

// MoveRequest is a completed drag: what was dragged and the stage it was dropped on.
type MoveRequest struct {
	Source Source
	Target int
}

// MoveInto applies a move request. A request that lands outside any valid target
// returns ErrNoTarget and changes nothing.
func (l *List) MoveInto(req MoveRequest) error {
	if l.editing != nil {
		return l.refuse("move", req.Target, ErrEditInProgress)
	}

	if !l.inRange(req.Target) {
		return l.refuse("move", req.Target, ErrNoTarget)
	}

	target := l.definition.Stages[req.Target]

	if target.IsPlaceholder() {
		if req.Source.Stage == nil {
			return l.refuse("move", req.Target, ErrNoTarget)
		}

		return l.ResolvePlaceholder(req.Target, req.Source.Stage)
	}

	if req.Source.Kind != SourceApprover || req.Source.Condition == nil || target.FlowType != models.FlowTypeApproval {
		return l.refuse("move", req.Target, ErrNoTarget)
	}

	approver := req.Source.Condition

	if slices.ContainsFunc(target.Condition, func(c *models.Condition) bool { return c.ID == approver.ID }) {
		return l.refuse("move", req.Target, ErrDuplicateApprover)
	}

	added := approver.Clone()

	l.mutate(func(stages []*models.Stage) []*models.Stage {
		stages[req.Target].Condition = append(stages[req.Target].Condition, added)

		return stages
	})

	return nil
}

// Affordance lists what a stage currently offers.
type Affordance struct {
	Move   bool `json:"move"`
	Delete bool `json:"delete"`
	Edit   bool `json:"edit"`
	Drop   bool `json:"drop"`
	Insert bool `json:"insert"`
}

// Affordances reports the actions offered by the stage at index. While any stage is
// edited every other stage offers nothing.
func (l *List) Affordances(index int) (Affordance, error) {
	if !l.inRange(index) {
		return Affordance{}, l.refuse("affordances", index, ErrInvalidIndex)
	}

	if l.editing != nil {
		return Affordance{}, nil
	}

	stage := l.definition.Stages[index]
	fixed := stage.FlowType.Fixed()

	return Affordance{
		Move:   !fixed && !stage.Disabled && !stage.IsPlaceholder(),
		Delete: !fixed,
		Edit:   !stage.IsPlaceholder(),
		Drop:   stage.IsPlaceholder() || stage.FlowType == models.FlowTypeApproval,
		Insert: l.CanInsertAfter(index),
	}, nil
}
