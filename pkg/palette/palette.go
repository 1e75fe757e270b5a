// Package palette provides the browsable catalog of items an author can drag into a
// workflow definition.
package palette

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/stagelist"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrItemNotFound  = errors.New("palette item not found")
	ErrDuplicateItem = errors.New("palette item already registered")
	ErrInvalidItem   = errors.New("invalid palette item")
	ErrUnknownGroup  = errors.New("unknown palette group")
)

// Item is one insertable entry. Stage is the template copied into the definition when
// the item lands on a placeholder; its id is assigned per move. Condition is set for
// approvers.
type Item struct {
	ID          string               `json:"id"                  validate:"required"`
	Group       string               `json:"group"               validate:"required"`
	Label       string               `json:"label"               validate:"required"`
	Description string               `json:"description,omitempty"`
	Kind        stagelist.SourceKind `json:"kind"                validate:"required,oneof=1 2"`
	Stage       *models.Stage        `json:"stage,omitempty"     validate:"-"`
	Condition   *models.Condition    `json:"condition,omitempty"`
}

func (i Item) clone() Item {
	i.Stage = i.Stage.Clone()
	i.Condition = i.Condition.Clone()

	return i
}

// Group is a named, collapsible section of the palette.
type Group struct {
	Name      string `json:"name"`
	Collapsed bool   `json:"collapsed"`
	Items     []Item `json:"items"`
}

// Palette is safe for concurrent use.
type Palette struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	validate  *validator.Validate
	items     map[string]Item
	order     []string
	groups    []string
	collapsed map[string]bool
	newID     func() string
}

// New creates an empty palette.
func New(logger *slog.Logger) *Palette {
	if logger == nil {
		logger = slog.Default()
	}

	return &Palette{
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		items:     make(map[string]Item),
		collapsed: make(map[string]bool),
		newID:     func() string { return uuid.New().String() },
	}
}

// Register adds item to the palette. Groups appear in the order they are first used.
func (p *Palette) Register(item Item) error {
	if err := p.validate.Struct(item); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidItem, item.ID, err)
	}

	if item.Kind == stagelist.SourceStage && item.Stage == nil {
		return fmt.Errorf("%w %q: stage items need a stage template", ErrInvalidItem, item.ID)
	}

	if item.Kind == stagelist.SourceApprover && item.Condition == nil {
		return fmt.Errorf("%w %q: approver items need a condition", ErrInvalidItem, item.ID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.items[item.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}

	p.items[item.ID] = item.clone()
	p.order = append(p.order, item.ID)

	if !slices.Contains(p.groups, item.Group) {
		p.groups = append(p.groups, item.Group)
	}

	p.logger.Debug("registered palette item", "id", item.ID, "group", item.Group)

	return nil
}

// Groups returns every group with its items in registration order.
func (p *Palette) Groups() []Group {
	p.mu.RLock()
	defer p.mu.RUnlock()

	groups := make([]Group, 0, len(p.groups))

	for _, name := range p.groups {
		group := Group{Name: name, Collapsed: p.collapsed[name], Items: []Item{}}

		for _, id := range p.order {
			if item := p.items[id]; item.Group == name {
				group.Items = append(group.Items, item.clone())
			}
		}

		groups = append(groups, group)
	}

	return groups
}

// Toggle flips the collapsed state of group and returns the new state.
func (p *Palette) Toggle(group string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.Contains(p.groups, group) {
		return false, fmt.Errorf("%w: %s", ErrUnknownGroup, group)
	}

	p.collapsed[group] = !p.collapsed[group]

	return p.collapsed[group], nil
}

func (p *Palette) Collapsed(group string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.collapsed[group]
}

// Search returns items whose label, group or description contains query, ignoring
// case. An empty query returns everything.
func (p *Palette) Search(query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))

	p.mu.RLock()
	defer p.mu.RUnlock()

	var found []Item

	for _, id := range p.order {
		item := p.items[id]

		if query == "" ||
			strings.Contains(strings.ToLower(item.Label), query) ||
			strings.Contains(strings.ToLower(item.Group), query) ||
			strings.Contains(strings.ToLower(item.Description), query) {
			found = append(found, item.clone())
		}
	}

	return found
}

// Item returns a copy of the item registered under id.
func (p *Palette) Item(id string) (Item, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	item, ok := p.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	return item.clone(), nil
}

// MoveRequest builds the move request for dropping item id onto the stage at target.
// Stage templates get a fresh id so the same item can be inserted more than once.
func (p *Palette) MoveRequest(id string, target int) (stagelist.MoveRequest, error) {
	item, err := p.Item(id)
	if err != nil {
		return stagelist.MoveRequest{}, err
	}

	if item.Stage != nil {
		item.Stage.ID = p.newID()
	}

	return stagelist.MoveRequest{
		Source: stagelist.Source{
			Kind:      item.Kind,
			ItemID:    item.ID,
			Stage:     item.Stage,
			Condition: item.Condition,
		},
		Target: target,
	}, nil
}
