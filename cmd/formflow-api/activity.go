package main

import (
	"context"
	"log/slog"

	"github.com/dukex/formflow/pkg/eventbus"
	"github.com/dukex/formflow/pkg/events"
)

// registerActivityLog subscribes to authoring events and writes one log line per event.
func registerActivityLog(ctx context.Context, logger *slog.Logger, bus eventbus.EventSubscriber) error {
	logger = logger.With("component", "activity")

	handlers := map[events.EventType]eventbus.EventHandler{
		events.DefinitionChangedEvent: func(ctx context.Context, event any) error {
			e := event.(*events.DefinitionChanged)
			logger.DebugContext(ctx, "definition changed", "definition_id", e.DefinitionID, "stages", len(e.Stages))

			return nil
		},
		events.DefinitionSavedEvent: func(ctx context.Context, event any) error {
			e := event.(*events.DefinitionSaved)
			logger.InfoContext(ctx, "definition saved", "definition_id", e.DefinitionID, "name", e.Name, "stages", e.StageCount)

			return nil
		},
		events.StageEditStartedEvent: func(ctx context.Context, event any) error {
			e := event.(*events.StageEditStarted)
			logger.DebugContext(ctx, "stage edit started", "definition_id", e.DefinitionID, "index", e.StageIndex, "stage_id", e.StageID)

			return nil
		},
		events.StageEditFinishedEvent: func(ctx context.Context, event any) error {
			e := event.(*events.StageEditFinished)
			logger.DebugContext(ctx, "stage edit finished", "definition_id", e.DefinitionID, "index", e.StageIndex, "committed", e.Committed)

			return nil
		},
	}

	for eventType, handler := range handlers {
		if err := bus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
