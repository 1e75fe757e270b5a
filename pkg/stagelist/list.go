// Package stagelist owns the ordered stage sequence of a workflow definition: placeholder
// insertion and resolution, guarded deletion, move-in requests and the single-stage
// edit lock.
package stagelist

import (
	"log/slog"
	"slices"

	"github.com/dukex/formflow/pkg/models"
	"github.com/google/uuid"
)

// List is not safe for concurrent use; hosts serialize access.
type List struct {
	logger *slog.Logger

	definition *models.WorkflowDefinition

	editing  *int
	snapshot *models.Stage
	draft    *models.Stage

	deleteTrailingFirst bool
	newID               func() string

	onChange  func(definition *models.WorkflowDefinition)
	onEdit    func(index *int)
	closeEdit func(stage *models.Stage)
}

// Option configures a List.
type Option func(*List)

// WithLogger sets the logger refusals are traced to.
func WithLogger(logger *slog.Logger) Option {
	return func(l *List) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDeleteTrailingStageFirst controls whether DeleteStage first drops the last stage
// of the sequence whenever a placeholder is present. Enabled by default.
func WithDeleteTrailingStageFirst(enabled bool) Option {
	return func(l *List) {
		l.deleteTrailingFirst = enabled
	}
}

// WithIDGenerator sets the function used to name new placeholder stages.
func WithIDGenerator(newID func() string) Option {
	return func(l *List) {
		if newID != nil {
			l.newID = newID
		}
	}
}

// WithOnChange registers the callback receiving every structural change.
func WithOnChange(fn func(definition *models.WorkflowDefinition)) Option {
	return func(l *List) {
		l.onChange = fn
	}
}

// WithOnEdit registers the callback receiving the editing index, nil when editing ends.
func WithOnEdit(fn func(index *int)) Option {
	return func(l *List) {
		l.onEdit = fn
	}
}

// WithCloseEdit registers the callback receiving the committed stage.
func WithCloseEdit(fn func(stage *models.Stage)) Option {
	return func(l *List) {
		l.closeEdit = fn
	}
}

// New creates a list over a copy of definition.
func New(definition *models.WorkflowDefinition, opts ...Option) (*List, error) {
	if definition == nil {
		return nil, ErrNilDefinition
	}

	if slices.Contains(definition.Stages, nil) {
		return nil, &OperationError{Op: "new", Kind: KindInvalid, Index: slices.Index(definition.Stages, nil), Err: ErrInvalidStage}
	}

	l := &List{
		logger:              slog.Default(),
		definition:          definition.Clone(),
		deleteTrailingFirst: true,
		newID:               func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(l)
	}

	for _, stage := range l.definition.Stages {
		pinFixed(stage)
	}

	return l, nil
}

// Definition returns a copy of the current definition.
func (l *List) Definition() *models.WorkflowDefinition {
	return l.definition.Clone()
}

// Len returns the number of stages.
func (l *List) Len() int {
	return len(l.definition.Stages)
}

// Stage returns a copy of the stage at index.
func (l *List) Stage(index int) (*models.Stage, error) {
	if !l.inRange(index) {
		return nil, l.refuse("stage", index, ErrInvalidIndex)
	}

	return l.definition.Stages[index].Clone(), nil
}

// Editing returns the index of the stage being edited.
func (l *List) Editing() (int, bool) {
	if l.editing == nil {
		return 0, false
	}

	return *l.editing, true
}

// Draft returns a copy of the working copy of the stage being edited.
func (l *List) Draft() (*models.Stage, bool) {
	if l.editing == nil {
		return nil, false
	}

	return l.draft.Clone(), true
}

// CanInsertAfter reports whether a placeholder may be inserted after afterIndex.
func (l *List) CanInsertAfter(afterIndex int) bool {
	return l.insertCheck(afterIndex) == nil
}

func (l *List) insertCheck(afterIndex int) error {
	if l.editing != nil {
		return ErrEditInProgress
	}

	if !l.inRange(afterIndex) {
		return ErrInvalidIndex
	}

	if afterIndex != len(l.definition.Stages)-1 || l.definition.Stages[afterIndex].IsPlaceholder() {
		return ErrInsertNotAllowed
	}

	if l.definition.PlaceholderIndex() >= 0 {
		return ErrInsertNotAllowed
	}

	return nil
}

// InsertPlaceholder inserts an unresolved insertion point right after afterIndex.
func (l *List) InsertPlaceholder(afterIndex int) error {
	if err := l.insertCheck(afterIndex); err != nil {
		return l.refuse("insert placeholder", afterIndex, err)
	}

	placeholder := models.NewPlaceholderStage(l.newID())

	l.mutate(func(stages []*models.Stage) []*models.Stage {
		return slices.Insert(stages, afterIndex+1, placeholder)
	})

	return nil
}

// ResolvePlaceholder replaces the placeholder at index with a copy of stage.
func (l *List) ResolvePlaceholder(index int, stage *models.Stage) error {
	if l.editing != nil {
		return l.refuse("resolve placeholder", index, ErrEditInProgress)
	}

	if !l.inRange(index) {
		return l.refuse("resolve placeholder", index, ErrInvalidIndex)
	}

	if !l.definition.Stages[index].IsPlaceholder() {
		return l.refuse("resolve placeholder", index, ErrNotPlaceholder)
	}

	if stage == nil || stage.IsPlaceholder() {
		return l.refuse("resolve placeholder", index, ErrInvalidStage)
	}

	resolved := stage.Clone()
	pinFixed(resolved)

	l.mutate(func(stages []*models.Stage) []*models.Stage {
		stages[index] = resolved

		return stages
	})

	return nil
}

// DeleteStage removes the stage at index. Trigger and approval stages are never
// removed. When a placeholder is present and trailing deletion is enabled, the last
// stage goes first and then the stage at index, if it still exists.
func (l *List) DeleteStage(index int) error {
	if l.editing != nil {
		return l.refuse("delete", index, ErrEditInProgress)
	}

	if !l.inRange(index) {
		return l.refuse("delete", index, ErrInvalidIndex)
	}

	if l.definition.Stages[index].FlowType.Fixed() {
		return l.refuse("delete", index, ErrGuardedOperation)
	}

	trailing := l.deleteTrailingFirst && l.definition.PlaceholderIndex() >= 0

	l.mutate(func(stages []*models.Stage) []*models.Stage {
		if trailing {
			last := len(stages) - 1
			if !stages[last].FlowType.Fixed() {
				stages = stages[:last]
			}
		}

		if index < len(stages) {
			stages = slices.Delete(stages, index, index+1)
		}

		return stages
	})

	return nil
}

// BeginEdit marks the stage at index as being edited and returns its working copy.
func (l *List) BeginEdit(index int) (*models.Stage, error) {
	if l.editing != nil {
		return nil, l.refuse("begin edit", index, ErrEditInProgress)
	}

	if !l.inRange(index) {
		return nil, l.refuse("begin edit", index, ErrInvalidIndex)
	}

	if l.definition.Stages[index].IsPlaceholder() {
		return nil, l.refuse("begin edit", index, ErrNotEditable)
	}

	l.startEdit(index)

	if l.onEdit != nil {
		editing := index
		l.onEdit(&editing)
	}

	return l.draft.Clone(), nil
}

// UpdateDraft replaces the working copy of the stage being edited.
func (l *List) UpdateDraft(index int, stage *models.Stage) error {
	if !l.isEditing(index) {
		return l.refuse("update draft", index, ErrNotEditing)
	}

	if stage == nil {
		return l.refuse("update draft", index, ErrInvalidStage)
	}

	if l.reshapes(stage) {
		return l.refuse("update draft", index, ErrStageReshaped)
	}

	l.draft = stage.Clone()

	return nil
}

// CommitEdit stores final (or the working copy when final is nil) at index and ends
// the edit. A final stage with another flow type, or a placeholder, is refused and
// the edit stays open.
func (l *List) CommitEdit(index int, final *models.Stage) error {
	if !l.isEditing(index) {
		return l.refuse("commit edit", index, ErrNotEditing)
	}

	if final == nil {
		final = l.draft
	}

	if l.reshapes(final) {
		return l.refuse("commit edit", index, ErrStageReshaped)
	}

	committed := final.Clone()
	pinFixed(committed)

	l.clearEdit()

	if l.closeEdit != nil {
		l.closeEdit(committed.Clone())
	}

	if l.onEdit != nil {
		l.onEdit(nil)
	}

	l.mutate(func(stages []*models.Stage) []*models.Stage {
		stages[index] = committed

		return stages
	})

	return nil
}

// CancelEdit drops the working copy, restores the stage as it was when the edit began
// and ends the edit.
func (l *List) CancelEdit(index int) error {
	if !l.isEditing(index) {
		return l.refuse("cancel edit", index, ErrNotEditing)
	}

	l.definition.Stages[index] = l.snapshot
	l.clearEdit()

	if l.onEdit != nil {
		l.onEdit(nil)
	}

	return nil
}

// SetEditingIndex follows an editing index controlled by the host. A nil index ends
// any edit without committing it. Callbacks are not invoked.
func (l *List) SetEditingIndex(index *int) error {
	if index == nil {
		if l.editing != nil {
			l.definition.Stages[*l.editing] = l.snapshot
			l.clearEdit()
		}

		return nil
	}

	if l.isEditing(*index) {
		return nil
	}

	if !l.inRange(*index) {
		return l.refuse("set editing index", *index, ErrInvalidIndex)
	}

	if l.definition.Stages[*index].IsPlaceholder() {
		return l.refuse("set editing index", *index, ErrNotEditable)
	}

	if l.editing != nil {
		l.definition.Stages[*l.editing] = l.snapshot
	}

	l.startEdit(*index)

	return nil
}

func (l *List) startEdit(index int) {
	editing := index
	l.editing = &editing
	l.snapshot = l.definition.Stages[index].Clone()
	l.draft = l.definition.Stages[index].Clone()
}

func (l *List) clearEdit() {
	l.editing = nil
	l.snapshot = nil
	l.draft = nil
}

// reshapes reports whether stage differs structurally from the stage under edit.
func (l *List) reshapes(stage *models.Stage) bool {
	return stage.IsPlaceholder() || stage.FlowType != l.snapshot.FlowType
}

func (l *List) isEditing(index int) bool {
	return l.editing != nil && *l.editing == index
}

func (l *List) inRange(index int) bool {
	return index >= 0 && index < len(l.definition.Stages)
}

// mutate applies change to a copy of the stage sequence and publishes the result.
func (l *List) mutate(change func(stages []*models.Stage) []*models.Stage) {
	next := l.definition.Clone()
	next.Stages = change(next.Stages)
	l.definition = next

	if l.onChange != nil {
		l.onChange(next.Clone())
	}
}

func (l *List) refuse(op string, index int, err error) error {
	opErr := &OperationError{Op: op, Kind: kindOf(err), Index: index, Err: err}

	l.logger.Debug("stage operation refused",
		"op", op,
		"index", index,
		"kind", opErr.Kind.String(),
		"reason", err.Error(),
	)

	return opErr
}

// pinFixed keeps trigger and approval stages drag-disabled.
func pinFixed(stage *models.Stage) {
	if stage != nil && stage.FlowType.Fixed() {
		stage.Disabled = true
	}
}
