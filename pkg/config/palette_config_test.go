package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/stagelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paletteYAML = `
items:
  - id: bigquery.dataset.create
    group: GoogleCloud
    label: Create dataset
    description: Creates a BigQuery dataset
    kind: stage
    stage:
      label: Create BigQuery dataset
      flow_type: GoogleCloud
      conditions:
        - id: dataset
          label: Dataset
          style: 1
        - id: region
          label: Region
          style: 2
          value: US
          options:
            - label: US
              value: US
            - label: EU
              value: EU
  - id: approver.legal
    group: APPROVAL
    label: Legal
    kind: approver
    condition:
      id: legal
      label: Legal
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "palette.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestLoadPaletteConfig(t *testing.T) {
	config, err := LoadPaletteConfig(writeConfig(t, paletteYAML))
	require.NoError(t, err)

	require.Len(t, config.Items, 2)
	assert.False(t, config.ReplaceDefaults)
	require.NotNil(t, config.Items[0].Stage)
	assert.Equal(t, "GoogleCloud", config.Items[0].Stage.FlowType)
	require.Len(t, config.Items[0].Stage.Conditions, 2)
	assert.Equal(t, []models.Option{{Label: "US", Value: "US"}, {Label: "EU", Value: "EU"}}, config.Items[0].Stage.Conditions[1].Options)
}

func TestLoadPaletteConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"invalid yaml", "items: [", "failed to parse YAML config"},
		{"missing id", "items:\n  - kind: stage\n    stage: {flow_type: System}\n", "id is required"},
		{"unknown kind", "items:\n  - id: x\n    kind: widget\n", "unknown item kind"},
		{"stage without template", "items:\n  - id: x\n    kind: stage\n", "require a 'stage' template"},
		{"unknown flow type", "items:\n  - id: x\n    kind: stage\n    stage: {flow_type: Cron}\n", "unknown flow type"},
		{
			"unknown comparator",
			"items:\n  - id: x\n    kind: stage\n    stage:\n      flow_type: Trigger\n      conditions:\n        - {id: a, comparator: '~'}\n",
			"unknown comparator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPaletteConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	_, err := LoadPaletteConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBuildPalette(t *testing.T) {
	config, err := LoadPaletteConfig(writeConfig(t, paletteYAML))
	require.NoError(t, err)

	p, err := BuildPalette(config, slog.Default())
	require.NoError(t, err)

	item, err := p.Item("bigquery.dataset.create")
	require.NoError(t, err)
	assert.Equal(t, stagelist.SourceStage, item.Kind)
	require.NotNil(t, item.Stage)
	assert.Equal(t, "GoogleCloud", item.Stage.Group)
	assert.Empty(t, item.Stage.Condition[0].Value)
	assert.Equal(t, "US", item.Stage.Condition[1].Value)

	legal, err := p.Item("approver.legal")
	require.NoError(t, err)
	assert.Equal(t, stagelist.SourceApprover, legal.Kind)
	assert.Equal(t, "legal", legal.Condition.ID)

	_, err = p.Item("notify.email")
	require.NoError(t, err, "built-in items are kept")

	config.ReplaceDefaults = true

	p, err = BuildPalette(config, slog.Default())
	require.NoError(t, err)

	_, err = p.Item("notify.email")
	require.Error(t, err)
}

func TestBuildPalette_DuplicateItem(t *testing.T) {
	config := PaletteConfigFile{Items: []ItemConfigFile{{
		ID:        "approver.manager",
		Group:     models.GroupApproval,
		Label:     "Manager",
		Kind:      "approver",
		Condition: &ConditionConfigFile{ID: "manager", Label: "Manager"},
	}}}

	_, err := BuildPalette(config, slog.Default())
	require.Error(t, err)
}

func TestLoadPaletteOrDefault(t *testing.T) {
	p, err := LoadPaletteOrDefault("", slog.Default())
	require.NoError(t, err)
	assert.Len(t, p.Groups(), 4)
}
