// Package events defines the notifications emitted while authoring workflow definitions.
package events

import (
	"time"

	"github.com/dukex/formflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

const Topic = "formflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DefinitionChangedEvent EventType = "definition.changed"
	DefinitionSavedEvent   EventType = "definition.saved"
	StageEditStartedEvent  EventType = "stage.edit.started"
	StageEditFinishedEvent EventType = "stage.edit.finished"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	DefinitionID string         `json:"definition_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a new event of eventType for definitionID.
func NewBaseEvent(eventType EventType, definitionID string) BaseEvent {
	return BaseEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		DefinitionID: definitionID,
	}
}

// DefinitionChanged carries the stage sequence after a structural change.
type DefinitionChanged struct {
	BaseEvent

	Stages []*models.Stage `json:"stages"`
}

func (e DefinitionChanged) GetType() EventType {
	return DefinitionChangedEvent
}

// DefinitionSaved is emitted once a session's definition has been persisted.
type DefinitionSaved struct {
	BaseEvent

	Name       string `json:"name"`
	StageCount int    `json:"stage_count"`
}

func (e DefinitionSaved) GetType() EventType {
	return DefinitionSavedEvent
}

type StageEditStarted struct {
	BaseEvent

	StageIndex int    `json:"stage_index"`
	StageID    string `json:"stage_id"`
}

func (e StageEditStarted) GetType() EventType {
	return StageEditStartedEvent
}

// StageEditFinished reports the end of an edit. Stage is nil when the edit was cancelled.
type StageEditFinished struct {
	BaseEvent

	StageIndex int           `json:"stage_index"`
	Committed  bool          `json:"committed"`
	Stage      *models.Stage `json:"stage,omitempty"`
}

func (e StageEditFinished) GetType() EventType {
	return StageEditFinishedEvent
}
