package palette

import (
	"testing"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/stagelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	p := New(nil)

	stage := &models.Stage{FlowType: models.FlowTypeSystem, Label: "Log"}

	require.NoError(t, p.Register(Item{ID: "log", Group: "System", Label: "Log", Kind: stagelist.SourceStage, Stage: stage}))

	err := p.Register(Item{ID: "log", Group: "System", Label: "Log", Kind: stagelist.SourceStage, Stage: stage})
	assert.ErrorIs(t, err, ErrDuplicateItem)

	tests := []struct {
		name string
		item Item
	}{
		{"missing id", Item{Group: "System", Label: "x", Kind: stagelist.SourceStage, Stage: stage}},
		{"missing group", Item{ID: "a", Label: "x", Kind: stagelist.SourceStage, Stage: stage}},
		{"missing kind", Item{ID: "a", Group: "System", Label: "x", Stage: stage}},
		{"stage item without stage", Item{ID: "a", Group: "System", Label: "x", Kind: stagelist.SourceStage}},
		{"approver without condition", Item{ID: "a", Group: "APPROVAL", Label: "x", Kind: stagelist.SourceApprover}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, p.Register(tt.item), ErrInvalidItem)
		})
	}

	stage.Label = "mutated"

	item, err := p.Item("log")
	require.NoError(t, err)
	assert.Equal(t, "Log", item.Stage.Label)
}

func TestDefault(t *testing.T) {
	p := Default()

	groups := p.Groups()
	require.Len(t, groups, 4)

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
		assert.NotEmpty(t, g.Items)
	}

	assert.Equal(t, []string{models.GroupTrigger, "GoogleCloud", "System", models.GroupApproval}, names)
	assert.Len(t, groups[1].Items, 2)
	assert.Len(t, groups[3].Items, 3)
}

func TestToggle(t *testing.T) {
	p := Default()

	assert.False(t, p.Collapsed("System"))

	collapsed, err := p.Toggle("System")
	require.NoError(t, err)
	assert.True(t, collapsed)
	assert.True(t, p.Collapsed("System"))
	assert.True(t, p.Groups()[2].Collapsed)

	collapsed, err = p.Toggle("System")
	require.NoError(t, err)
	assert.False(t, collapsed)

	_, err = p.Toggle("Nope")
	assert.ErrorIs(t, err, ErrUnknownGroup)
}

func TestSearch(t *testing.T) {
	p := Default()

	assert.Len(t, p.Search(""), 8)

	found := p.Search("  BIGQUERY ")
	require.Len(t, found, 1)
	assert.Equal(t, "bigquery.table.create", found[0].ID)

	assert.Len(t, p.Search("googlecloud"), 2)
	assert.Empty(t, p.Search("kubernetes"))
}

func TestItem(t *testing.T) {
	p := Default()

	_, err := p.Item("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)

	item, err := p.Item("notify.email")
	require.NoError(t, err)

	item.Stage.Condition[0].Label = "changed"

	again, err := p.Item("notify.email")
	require.NoError(t, err)
	assert.Equal(t, "Recipient field", again.Stage.Condition[0].Label)
}

func TestMoveRequest(t *testing.T) {
	p := Default()

	n := 0
	p.newID = func() string {
		n++

		return []string{"a", "b"}[n-1]
	}

	first, err := p.MoveRequest("notify.email", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Target)
	assert.Equal(t, stagelist.SourceStage, first.Source.Kind)
	assert.Equal(t, "notify.email", first.Source.ItemID)
	assert.Equal(t, "a", first.Source.Stage.ID)

	second, err := p.MoveRequest("notify.email", 2)
	require.NoError(t, err)
	assert.Equal(t, "b", second.Source.Stage.ID)

	_, err = p.MoveRequest("missing", 0)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMoveRequest_IntoStageList(t *testing.T) {
	p := Default()

	list, err := stagelist.New(&models.WorkflowDefinition{
		Name:   "Dataset access",
		Stages: []*models.Stage{models.NewDefaultTriggerStage("t")},
	})
	require.NoError(t, err)

	require.NoError(t, list.InsertPlaceholder(0))

	req, err := p.MoveRequest("approver.manager", 1)
	require.NoError(t, err)
	require.NoError(t, list.MoveInto(req))

	req, err = p.MoveRequest("approver.finance", 1)
	require.NoError(t, err)
	require.NoError(t, list.MoveInto(req))

	def := list.Definition()
	require.Len(t, def.Stages, 2)
	assert.Equal(t, models.FlowTypeApproval, def.Stages[1].FlowType)
	require.Len(t, def.Stages[1].Condition, 2)
	assert.Equal(t, "manager", def.Stages[1].Condition[0].ID)
	assert.Equal(t, "finance", def.Stages[1].Condition[1].ID)
}
