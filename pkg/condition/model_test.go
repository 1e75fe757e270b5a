package condition

import (
	"testing"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/schemafield"
	"github.com/dukex/formflow/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []models.Option{
	{Label: "Email", Value: "s1"},
	{Label: "Age", Value: "u2"},
}

func systemStage() *models.Stage {
	return &models.Stage{
		ID:       "stage-1",
		Group:    "Notify",
		Label:    "Send email",
		FlowType: models.FlowTypeSystem,
		Condition: []*models.Condition{
			{ID: "c0", Label: "Subject", Style: models.Style1, Value: "Hello"},
			{ID: "c1", Label: "Priority", Style: models.Style2, Value: "low", Options: []models.Option{
				{Label: "Low", Value: "low"},
				{Label: "High", Value: "high"},
			}},
			{ID: "c2", Label: "Body", Style: models.Style3, Value: ""},
			{ID: "c3", Label: "Columns", Style: models.Style4, Value: "[]", Optional: true},
			{ID: "c4", Label: "Recipient", Style: models.Style5, Value: ""},
		},
	}
}

func triggerStage() *models.Stage {
	return &models.Stage{
		ID:       "trigger",
		Group:    models.GroupTrigger,
		FlowType: models.FlowTypeTrigger,
		Disabled: true,
		Condition: []*models.Condition{
			{ID: "t0", Style: models.Style1, Value: []any{"a"}, Options: []models.Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}}, ConditionType: models.ComparatorEqual},
			{ID: "t1", Style: models.Style5, Value: false, ConditionType: models.ComparatorEqual},
			{ID: "t2", Style: models.Style6, Value: "", ConditionType: models.ComparatorEqual},
		},
	}
}

func approvalStage() *models.Stage {
	return &models.Stage{
		ID:       "approval",
		Group:    models.GroupApproval,
		FlowType: models.FlowTypeApproval,
		Disabled: true,
		Condition: []*models.Condition{
			{ID: "manager", Label: "Manager"},
		},
	}
}

func TestEditorFor(t *testing.T) {
	tests := []struct {
		name     string
		flowType models.FlowType
		style    models.ConditionStyle
		want     Kind
		source   OptionSource
		wantErr  bool
	}{
		{"trigger checkbox", models.FlowTypeTrigger, models.Style1, KindCheckboxGroup, SourceConditionOptions, false},
		{"trigger select", models.FlowTypeTrigger, models.Style2, KindSelect, SourceConditionOptions, false},
		{"trigger text", models.FlowTypeTrigger, models.Style3, KindText, SourceNone, false},
		{"trigger style 4 unsupported", models.FlowTypeTrigger, models.Style4, 0, SourceNone, true},
		{"trigger switch", models.FlowTypeTrigger, models.Style5, KindSwitch, SourceNone, false},
		{"trigger date", models.FlowTypeTrigger, models.Style6, KindDate, SourceNone, false},
		{"action text", models.FlowTypeSystem, models.Style1, KindText, SourceNone, false},
		{"action select", models.FlowTypeGoogleCloud, models.Style2, KindSelect, SourceConditionOptions, false},
		{"action template", models.FlowTypeSystem, models.Style3, KindTemplate, SourceFieldCatalog, false},
		{"action schema", models.FlowTypeGoogleCloud, models.Style4, KindSchema, SourceNone, false},
		{"action field select", models.FlowTypeSystem, models.Style5, KindSelect, SourceFieldCatalog, false},
		{"action style 6 unsupported", models.FlowTypeSystem, models.Style6, 0, SourceNone, true},
		{"approval", models.FlowTypeApproval, models.Style1, KindApprover, SourceNone, false},
		{"placeholder", models.FlowTypePlaceholder, models.Style1, 0, SourceNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor, err := EditorFor(tt.flowType, tt.style)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedStyle)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, editor.Kind)
			assert.Equal(t, tt.source, editor.Source)
			assert.Equal(t, tt.flowType == models.FlowTypeTrigger, editor.Comparator)
		})
	}
}

func TestNew_CopiesStage(t *testing.T) {
	stage := systemStage()

	model, err := New(stage, catalog, nil)
	require.NoError(t, err)

	stage.Condition[0].Value = "changed"
	assert.Equal(t, "Hello", model.Stage().Condition[0].Value)

	_, err = New(nil, catalog, nil)
	assert.ErrorIs(t, err, ErrNilStage)
}

func TestSetValue_DeepCopiesWholeStage(t *testing.T) {
	stage := &models.Stage{
		ID:       "s",
		FlowType: models.FlowTypeSystem,
		Condition: []*models.Condition{
			{ID: "a", Style: models.Style1, Value: "one"},
			{ID: "b", Style: models.Style1, Value: "two"},
			{ID: "c", Style: models.Style1, Value: "three"},
		},
	}

	var changes []*models.Stage

	model, err := New(stage, nil, func(s *models.Stage) { changes = append(changes, s) })
	require.NoError(t, err)

	before := model.Stage()

	require.NoError(t, model.SetValue(2, Text{Text: "updated"}))
	require.Len(t, changes, 1)

	changed := changes[0]
	require.Len(t, changed.Condition, 3)
	assert.Equal(t, "updated", changed.Condition[2].Value)
	assert.Equal(t, before.Condition[0], changed.Condition[0])
	assert.Equal(t, before.Condition[1], changed.Condition[1])
	assert.NotSame(t, stage.Condition[0], changed.Condition[0])
	assert.NotSame(t, stage.Condition[1], changed.Condition[1])
	assert.Equal(t, "three", stage.Condition[2].Value)
}

func TestSetValue(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		value   Value
		want    any
		wantErr error
	}{
		{name: "text", index: 0, value: Text{Text: "Hi"}, want: "Hi"},
		{name: "own option", index: 1, value: Select{Selected: "high"}, want: "high"},
		{name: "unknown option", index: 1, value: Select{Selected: "urgent"}, wantErr: ErrUnknownOption},
		{name: "template", index: 2, value: Template{Canonical: "Dear ${s1}"}, want: "Dear ${s1}"},
		{name: "schema", index: 3, value: Schema{Fields: []models.SchemaField{{Name: "id", Type: "Integer", Mode: models.SchemaFieldModeRequired}}}, want: `[{"name":"id","type":"Integer","mode":"REQUIRED"}]`},
		{name: "catalog option", index: 4, value: Select{Selected: "s1"}, want: "s1"},
		{name: "kind mismatch", index: 0, value: Switch{On: true}, wantErr: ErrKindMismatch},
		{name: "nil value", index: 0, value: nil, wantErr: ErrKindMismatch},
		{name: "out of range", index: 9, value: Text{}, wantErr: ErrConditionOutOfRange},
		{name: "negative index", index: -1, value: Text{}, wantErr: ErrConditionOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0

			model, err := New(systemStage(), catalog, func(*models.Stage) { calls++ })
			require.NoError(t, err)

			err = model.SetValue(tt.index, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, calls)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.want, model.Stage().Condition[tt.index].Value)
		})
	}
}

func TestSetValue_TriggerValues(t *testing.T) {
	model, err := New(triggerStage(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, model.SetValue(0, CheckboxGroup{Selected: []string{"a", "b"}}))
	assert.Equal(t, []string{"a", "b"}, model.Stage().Condition[0].Value)

	assert.ErrorIs(t, model.SetValue(0, CheckboxGroup{Selected: []string{"z"}}), ErrUnknownOption)

	require.NoError(t, model.SetValue(1, Switch{On: true}))
	assert.Equal(t, true, model.Stage().Condition[1].Value)

	require.NoError(t, model.SetValue(2, Date{Date: "2024-02-29"}))
	assert.Equal(t, "2024-02-29", model.Stage().Condition[2].Value)

	assert.Error(t, model.SetValue(2, Date{Date: "29/02/2024"}))
}

func TestSetComparator(t *testing.T) {
	model, err := New(triggerStage(), nil, nil)
	require.NoError(t, err)

	require.NoError(t, model.SetComparator(0, models.ComparatorNotEqual))
	assert.Equal(t, models.ComparatorNotEqual, model.Stage().Condition[0].ConditionType)

	assert.ErrorIs(t, model.SetComparator(0, "~"), ErrInvalidComparator)
	assert.ErrorIs(t, model.SetComparator(5, models.ComparatorEqual), ErrConditionOutOfRange)

	system, err := New(systemStage(), nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, system.SetComparator(0, models.ComparatorEqual), ErrNotTriggerStage)
}

func TestApprovers(t *testing.T) {
	var last *models.Stage

	model, err := New(approvalStage(), nil, func(s *models.Stage) { last = s })
	require.NoError(t, err)

	assert.ErrorIs(t, model.SetValue(0, Approver{Label: "x"}), ErrReadOnly)

	require.NoError(t, model.AddApprover(&models.Condition{ID: "director", Label: "Director"}))
	require.NotNil(t, last)
	assert.Len(t, last.Condition, 2)

	assert.ErrorIs(t, model.AddApprover(&models.Condition{ID: "director"}), ErrDuplicateApprover)

	require.NoError(t, model.RemoveApprover(0))
	require.Len(t, model.Stage().Condition, 1)
	assert.Equal(t, "director", model.Stage().Condition[0].ID)

	assert.ErrorIs(t, model.RemoveApprover(3), ErrConditionOutOfRange)

	system, err := New(systemStage(), nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, system.AddApprover(&models.Condition{ID: "x"}), ErrNotApprovalStage)
	assert.ErrorIs(t, system.RemoveApprover(0), ErrNotApprovalStage)
}

func TestFields(t *testing.T) {
	stage := systemStage()
	stage.Condition = append(stage.Condition, &models.Condition{ID: "bad", Style: models.Style6})

	model, err := New(stage, catalog, nil)
	require.NoError(t, err)

	fields := model.Fields()
	require.Len(t, fields, 6)

	assert.Equal(t, Text{Text: "Hello"}, fields[0].Value)
	assert.Equal(t, Select{Selected: "low"}, fields[1].Value)
	assert.Len(t, fields[1].Options, 2)
	assert.Equal(t, KindTemplate, fields[2].Editor.Kind)
	assert.Equal(t, catalog, fields[2].Options)
	assert.Equal(t, Schema{Fields: []models.SchemaField{}}, fields[3].Value)
	assert.Equal(t, catalog, fields[4].Options)
	assert.ErrorIs(t, fields[5].Err, ErrUnsupportedStyle)
}

func TestMissing(t *testing.T) {
	model, err := New(systemStage(), catalog, nil)
	require.NoError(t, err)

	// Body and Recipient are empty; Columns is optional.
	assert.Equal(t, []int{2, 4}, model.Missing())

	require.NoError(t, model.SetValue(2, Template{Canonical: "x"}))
	assert.Equal(t, []int{4}, model.Missing())
}

func TestSchemaEditorBlocksOtherChanges(t *testing.T) {
	calls := 0

	model, err := New(systemStage(), catalog, func(*models.Stage) { calls++ })
	require.NoError(t, err)

	_, err = model.OpenSchemaEditor(0)
	assert.ErrorIs(t, err, ErrKindMismatch)

	editor, err := model.OpenSchemaEditor(3)
	require.NoError(t, err)
	assert.True(t, model.ModalOpen())

	assert.ErrorIs(t, model.SetValue(0, Text{Text: "blocked"}), ErrModalOpen)
	_, err = model.OpenSchemaEditor(3)
	assert.ErrorIs(t, err, ErrModalOpen)

	require.NoError(t, editor.AddRow())

	name := "id"
	require.NoError(t, editor.UpdateRow(0, schemafield.Patch{Name: &name}))

	_, err = editor.Commit()
	require.NoError(t, err)

	assert.False(t, model.ModalOpen())
	assert.Equal(t, 1, calls)
	assert.Equal(t, `[{"name":"id","type":"Integer","mode":false}]`, model.Stage().Condition[3].Value)

	require.NoError(t, model.SetValue(0, Text{Text: "unblocked"}))
}

func TestSchemaEditorDiscard(t *testing.T) {
	calls := 0

	model, err := New(systemStage(), catalog, func(*models.Stage) { calls++ })
	require.NoError(t, err)

	editor, err := model.OpenSchemaEditor(3)
	require.NoError(t, err)
	require.NoError(t, editor.AddRow())

	editor.Discard()

	assert.False(t, model.ModalOpen())
	assert.Zero(t, calls)
	assert.Equal(t, "[]", model.Stage().Condition[3].Value)
}

func TestTemplateRoundTrip(t *testing.T) {
	stage := systemStage()
	stage.Condition[2].Value = "Dear ${s1}"

	model, err := New(stage, catalog, nil)
	require.NoError(t, err)

	editor := template.NewInMemoryEditor()

	codec, err := model.LoadTemplate(2, editor)
	require.NoError(t, err)
	assert.Contains(t, editor.Content(), `id="s1"`)

	require.NoError(t, codec.InsertToken("u2"))
	require.NoError(t, model.SaveTemplate(2, codec))
	assert.Equal(t, "Dear ${s1}${u2}", model.Stage().Condition[2].Value)

	_, err = model.LoadTemplate(0, editor)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		raw     any
		want    Value
		wantErr error
	}{
		{"checkbox from json", KindCheckboxGroup, []any{"a", "b"}, CheckboxGroup{Selected: []string{"a", "b"}}, nil},
		{"checkbox nil", KindCheckboxGroup, nil, CheckboxGroup{Selected: []string{}}, nil},
		{"checkbox wrong item", KindCheckboxGroup, []any{"a", 1.0}, nil, ErrKindMismatch},
		{"select", KindSelect, "high", Select{Selected: "high"}, nil},
		{"text nil", KindText, nil, Text{}, nil},
		{"text number", KindText, 3.0, nil, ErrKindMismatch},
		{"date", KindDate, "2024-01-31", Date{Date: "2024-01-31"}, nil},
		{"template", KindTemplate, "Hi ${u1}", Template{Canonical: "Hi ${u1}"}, nil},
		{"switch", KindSwitch, true, Switch{On: true}, nil},
		{"switch string", KindSwitch, "true", nil, ErrKindMismatch},
		{
			"schema objects", KindSchema,
			[]any{map[string]any{"name": "id", "type": "INTEGER", "mode": "REQUIRED"}},
			Schema{Fields: []models.SchemaField{{Name: "id", Type: "INTEGER", Mode: models.SchemaFieldModeRequired}}}, nil,
		},
		{"schema text", KindSchema, `[{"name":"a","type":"STRING","mode":false}]`, Schema{Fields: []models.SchemaField{{Name: "a", Type: "STRING"}}}, nil},
		{"schema garbage", KindSchema, "{not json", nil, ErrKindMismatch},
		{"approver", KindApprover, "x", nil, ErrReadOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.kind, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetRawValue(t *testing.T) {
	model, err := New(systemStage(), catalog, nil)
	require.NoError(t, err)

	require.NoError(t, model.SetRawValue(1, "high"))
	assert.Equal(t, "high", model.Stage().Condition[1].Value)

	assert.ErrorIs(t, model.SetRawValue(1, true), ErrKindMismatch)
	assert.ErrorIs(t, model.SetRawValue(7, "x"), ErrConditionOutOfRange)

	approvals, err := New(approvalStage(), nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, approvals.SetRawValue(0, "x"), ErrReadOnly)
}
