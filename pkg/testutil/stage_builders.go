// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"strconv"

	"github.com/dukex/formflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestStage creates a System stage with default values that can be overridden.
func CreateTestStage(overrides ...func(*models.Stage)) *models.Stage {
	stage := &models.Stage{
		ID:       uuid.New().String(),
		Group:    "System",
		Label:    "Test Stage",
		FlowType: models.FlowTypeSystem,
		Condition: []*models.Condition{
			{ID: "message", Label: "Message", Style: models.Style1, Value: ""},
		},
	}

	for _, override := range overrides {
		override(stage)
	}

	return stage
}

// WithFlowType sets the stage flow type. Trigger and approval stages are drag-disabled.
func WithFlowType(flowType models.FlowType) func(*models.Stage) {
	return func(s *models.Stage) {
		s.FlowType = flowType
		s.Group = string(flowType)
		s.Disabled = flowType.Fixed()

		switch flowType {
		case models.FlowTypeTrigger:
			s.Group = models.GroupTrigger
		case models.FlowTypeApproval:
			s.Group = models.GroupApproval
		case models.FlowTypePlaceholder:
			s.Group = models.GroupPlaceholder
			s.Condition = []*models.Condition{}
		}
	}
}

// WithConditions replaces the stage conditions.
func WithConditions(conditions ...*models.Condition) func(*models.Stage) {
	return func(s *models.Stage) {
		s.Condition = conditions
	}
}

// WithLabel sets the stage label.
func WithLabel(label string) func(*models.Stage) {
	return func(s *models.Stage) {
		s.Label = label
	}
}

// WithID sets the stage ID.
func WithID(id string) func(*models.Stage) {
	return func(s *models.Stage) {
		s.ID = id
	}
}

// CreateTestDefinition creates a definition holding stages, or only a trigger stage
// when none are given.
func CreateTestDefinition(stages ...*models.Stage) *models.WorkflowDefinition {
	if len(stages) == 0 {
		stages = []*models.Stage{models.NewDefaultTriggerStage("trigger-1")}
	}

	return &models.WorkflowDefinition{
		ID:     uuid.New().String(),
		Name:   "Test Definition",
		Owner:  "test-user",
		Stages: stages,
	}
}

// CreateTestPipeline creates [Trigger, flowTypes...] with predictable ids stage-1, stage-2...
func CreateTestPipeline(flowTypes ...models.FlowType) *models.WorkflowDefinition {
	stages := []*models.Stage{CreateTestStage(WithFlowType(models.FlowTypeTrigger), WithID("trigger-1"))}

	for i, flowType := range flowTypes {
		stages = append(stages, CreateTestStage(WithFlowType(flowType), WithID("stage-"+strconv.Itoa(i+1))))
	}

	return CreateTestDefinition(stages...)
}
