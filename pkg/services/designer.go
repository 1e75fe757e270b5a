package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/formflow/pkg/condition"
	"github.com/dukex/formflow/pkg/eventbus"
	"github.com/dukex/formflow/pkg/events"
	"github.com/dukex/formflow/pkg/log"
	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/otelhelper"
	"github.com/dukex/formflow/pkg/palette"
	"github.com/dukex/formflow/pkg/persistence"
	"github.com/dukex/formflow/pkg/stagelist"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Designer hosts authoring sessions. A session holds the stage list of one
// definition and, while a stage is edited, the condition model of its draft.
type Designer struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	palette     *palette.Palette
	tracer      trace.Tracer
	logger      *slog.Logger
	listOptions []stagelist.Option

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu sync.Mutex

	id      string
	list    *stagelist.List
	model   *condition.Model
	catalog []models.Option

	editIndex int
	committed *models.Stage
	pending   []eventbus.Event
	dirty     bool
}

// NewDesigner creates the authoring service. eventBus may be nil, in which case
// nothing is published. listOptions are applied to every session's stage list.
func NewDesigner(
	persistence persistence.Persistence,
	eventBus eventbus.EventPublisher,
	palette *palette.Palette,
	tracer trace.Tracer,
	listOptions ...stagelist.Option,
) *Designer {
	return &Designer{
		persistence: persistence,
		eventBus:    eventBus,
		palette:     palette,
		tracer:      tracer,
		logger:      log.WithModule("designer"),
		listOptions: listOptions,
		sessions:    make(map[string]*session),
	}
}

// Palette returns the item palette sessions resolve drops against.
func (d *Designer) Palette() *palette.Palette {
	return d.palette
}

// Open loads the stored definition into a fresh session, replacing any session
// already open for it. catalog is the form field catalog offered to template and
// field-select conditions.
func (d *Designer) Open(ctx context.Context, id string, catalog []models.Option) (*Snapshot, error) {
	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "designer.open", attribute.String(otelhelper.DefinitionIDKey, id))
	defer span.End()

	definition, err := d.persistence.DefinitionByID(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if definition == nil {
		otelhelper.SetError(span, ErrDefinitionNotFound)

		return nil, ErrDefinitionNotFound
	}

	s := &session{id: id, catalog: catalog}

	opts := append([]stagelist.Option{stagelist.WithLogger(d.logger)}, d.listOptions...)
	opts = append(opts,
		stagelist.WithOnChange(s.changed),
		stagelist.WithOnEdit(s.edited),
		stagelist.WithCloseEdit(s.closed),
	)

	list, err := stagelist.New(definition, opts...)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	s.list = list

	d.mu.Lock()
	d.sessions[id] = s
	d.mu.Unlock()

	d.logger.Info("authoring session opened", "definition_id", id, "stages", list.Len())

	return s.snapshot(), nil
}

// Close discards the session of definition id without saving it.
func (d *Designer) Close(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(d.sessions, id)

	return nil
}

// Snapshot returns the current state of the session of definition id.
func (d *Designer) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	return d.run(ctx, "snapshot", id, nil, func(*session) error { return nil })
}

// InsertPlaceholder inserts an insertion point after the stage at after.
func (d *Designer) InsertPlaceholder(ctx context.Context, id string, after int) (*Snapshot, error) {
	return d.run(ctx, "insert_placeholder", id, []attribute.KeyValue{attribute.Int(otelhelper.StageIndexKey, after)},
		func(s *session) error {
			return s.list.InsertPlaceholder(after)
		})
}

// ResolvePlaceholder replaces the placeholder at index with the stage of palette item itemID.
func (d *Designer) ResolvePlaceholder(ctx context.Context, id string, index int, itemID string) (*Snapshot, error) {
	attrs := []attribute.KeyValue{
		attribute.Int(otelhelper.StageIndexKey, index),
		attribute.String(otelhelper.ItemIDKey, itemID),
	}

	return d.run(ctx, "resolve_placeholder", id, attrs, func(s *session) error {
		req, err := d.palette.MoveRequest(itemID, index)
		if err != nil {
			return err
		}

		if req.Source.Stage == nil {
			return fmt.Errorf("%w: %s", ErrItemNotStage, itemID)
		}

		return s.list.ResolvePlaceholder(index, req.Source.Stage)
	})
}

// DeleteStage removes the stage at index.
func (d *Designer) DeleteStage(ctx context.Context, id string, index int) (*Snapshot, error) {
	return d.run(ctx, "delete_stage", id, []attribute.KeyValue{attribute.Int(otelhelper.StageIndexKey, index)},
		func(s *session) error {
			return s.list.DeleteStage(index)
		})
}

// Move drops palette item itemID onto the stage at target. An approver dropped on
// the approval stage being edited joins its draft.
func (d *Designer) Move(ctx context.Context, id string, itemID string, target int) (*Snapshot, error) {
	attrs := []attribute.KeyValue{
		attribute.Int(otelhelper.StageIndexKey, target),
		attribute.String(otelhelper.ItemIDKey, itemID),
	}

	return d.run(ctx, "move", id, attrs, func(s *session) error {
		req, err := d.palette.MoveRequest(itemID, target)
		if err != nil {
			return err
		}

		if s.model != nil && target == s.editIndex && req.Source.Kind == stagelist.SourceApprover {
			return s.model.AddApprover(req.Source.Condition)
		}

		return s.list.MoveInto(req)
	})
}

// BeginEdit locks the stage at index for editing.
func (d *Designer) BeginEdit(ctx context.Context, id string, index int) (*Snapshot, error) {
	return d.run(ctx, "begin_edit", id, []attribute.KeyValue{attribute.Int(otelhelper.StageIndexKey, index)},
		func(s *session) error {
			draft, err := s.list.BeginEdit(index)
			if err != nil {
				return err
			}

			model, err := condition.New(draft, s.catalog, func(stage *models.Stage) {
				if err := s.list.UpdateDraft(index, stage); err != nil {
					d.logger.Error("failed to update draft", "definition_id", s.id, "index", index, "error", err)
				}
			})
			if err != nil {
				return err
			}

			s.model = model

			return nil
		})
}

// SetConditionValue sets condition cond of the stage being edited from a decoded JSON value.
func (d *Designer) SetConditionValue(ctx context.Context, id string, index, cond int, raw any) (*Snapshot, error) {
	attrs := []attribute.KeyValue{
		attribute.Int(otelhelper.StageIndexKey, index),
		attribute.Int(otelhelper.ConditionIndexKey, cond),
	}

	return d.run(ctx, "set_condition_value", id, attrs, func(s *session) error {
		model, err := s.editor(index)
		if err != nil {
			return err
		}

		return model.SetRawValue(cond, raw)
	})
}

// SetComparator changes the comparator of condition cond of the trigger stage being edited.
func (d *Designer) SetComparator(ctx context.Context, id string, index, cond int, comparator models.Comparator) (*Snapshot, error) {
	attrs := []attribute.KeyValue{
		attribute.Int(otelhelper.StageIndexKey, index),
		attribute.Int(otelhelper.ConditionIndexKey, cond),
	}

	return d.run(ctx, "set_comparator", id, attrs, func(s *session) error {
		model, err := s.editor(index)
		if err != nil {
			return err
		}

		return model.SetComparator(cond, comparator)
	})
}

// RemoveApprover removes approver cond from the approval stage being edited.
func (d *Designer) RemoveApprover(ctx context.Context, id string, index, cond int) (*Snapshot, error) {
	attrs := []attribute.KeyValue{
		attribute.Int(otelhelper.StageIndexKey, index),
		attribute.Int(otelhelper.ConditionIndexKey, cond),
	}

	return d.run(ctx, "remove_approver", id, attrs, func(s *session) error {
		model, err := s.editor(index)
		if err != nil {
			return err
		}

		return model.RemoveApprover(cond)
	})
}

// CommitEdit stores the draft of the stage at index and ends the edit.
func (d *Designer) CommitEdit(ctx context.Context, id string, index int) (*Snapshot, error) {
	return d.run(ctx, "commit_edit", id, []attribute.KeyValue{attribute.Int(otelhelper.StageIndexKey, index)},
		func(s *session) error {
			model, err := s.editor(index)
			if err != nil {
				return err
			}

			if model.ModalOpen() {
				return condition.ErrModalOpen
			}

			if err := s.list.CommitEdit(index, model.Stage()); err != nil {
				return err
			}

			s.model = nil

			return nil
		})
}

// CancelEdit drops the draft of the stage at index.
func (d *Designer) CancelEdit(ctx context.Context, id string, index int) (*Snapshot, error) {
	return d.run(ctx, "cancel_edit", id, []attribute.KeyValue{attribute.Int(otelhelper.StageIndexKey, index)},
		func(s *session) error {
			if err := s.list.CancelEdit(index); err != nil {
				return err
			}

			s.model = nil

			return nil
		})
}

// Save persists the committed state of the session. A stage still being edited is
// saved as it was before the edit began.
func (d *Designer) Save(ctx context.Context, id string) (*Snapshot, error) {
	return d.run(ctx, "save", id, nil, func(s *session) error {
		definition := s.list.Definition()
		definition.UpdatedAt = time.Now().UTC()

		if err := d.persistence.SaveDefinition(ctx, definition); err != nil {
			return fmt.Errorf("failed to save definition: %w", err)
		}

		s.dirty = false
		s.pending = append(s.pending, events.DefinitionSaved{
			BaseEvent:  events.NewBaseEvent(events.DefinitionSavedEvent, s.id),
			Name:       definition.Name,
			StageCount: len(definition.Stages),
		})

		d.logger.Info("definition saved", "definition_id", s.id, "stages", len(definition.Stages))

		return nil
	})
}

func (d *Designer) run(
	ctx context.Context,
	op string,
	id string,
	attrs []attribute.KeyValue,
	fn func(s *session) error,
) (*Snapshot, error) {
	attrs = append(attrs, attribute.String(otelhelper.DefinitionIDKey, id))

	ctx, span := otelhelper.StartSpan(ctx, d.tracer, "designer."+op, attrs...)
	defer span.End()

	d.mu.Lock()
	s, ok := d.sessions[id]
	d.mu.Unlock()

	if !ok {
		otelhelper.SetError(span, ErrSessionNotFound)

		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s)
	d.flush(ctx, s)

	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return s.snapshot(), nil
}

// flush publishes the events queued by the last operation. Publish failures are
// logged and never undo the operation.
func (d *Designer) flush(ctx context.Context, s *session) {
	pending := s.pending
	s.pending = nil

	if d.eventBus == nil {
		return
	}

	for _, event := range pending {
		if err := d.eventBus.Publish(ctx, s.id, event); err != nil {
			d.logger.Error("failed to publish event",
				"definition_id", s.id,
				"event_type", event.GetType(),
				"error", err,
			)
		}
	}
}

func (s *session) changed(definition *models.WorkflowDefinition) {
	s.dirty = true
	s.pending = append(s.pending, events.DefinitionChanged{
		BaseEvent: events.NewBaseEvent(events.DefinitionChangedEvent, s.id),
		Stages:    definition.Stages,
	})
}

func (s *session) edited(index *int) {
	if index != nil {
		s.editIndex = *index
		s.committed = nil

		var stageID string
		if stage, err := s.list.Stage(*index); err == nil {
			stageID = stage.ID
		}

		s.pending = append(s.pending, events.StageEditStarted{
			BaseEvent:  events.NewBaseEvent(events.StageEditStartedEvent, s.id),
			StageIndex: *index,
			StageID:    stageID,
		})

		return
	}

	s.pending = append(s.pending, events.StageEditFinished{
		BaseEvent:  events.NewBaseEvent(events.StageEditFinishedEvent, s.id),
		StageIndex: s.editIndex,
		Committed:  s.committed != nil,
		Stage:      s.committed,
	})
	s.committed = nil
}

func (s *session) closed(stage *models.Stage) {
	s.committed = stage
}

func (s *session) editor(index int) (*condition.Model, error) {
	editing, ok := s.list.Editing()
	if !ok || editing != index || s.model == nil {
		return nil, fmt.Errorf("stage %d: %w", index, ErrStageNotEditing)
	}

	return s.model, nil
}

