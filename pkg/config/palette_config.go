// Package config provides configuration loading for the item palette
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dukex/formflow/pkg/models"
	"github.com/dukex/formflow/pkg/palette"
	"github.com/dukex/formflow/pkg/stagelist"
	"gopkg.in/yaml.v3"
)

// PaletteConfigFile represents the structure of the palette.yaml file
type PaletteConfigFile struct {
	ReplaceDefaults bool             `yaml:"replace_defaults"`
	Items           []ItemConfigFile `yaml:"items"`
}

// ItemConfigFile represents one palette item in the YAML file
type ItemConfigFile struct {
	ID          string               `yaml:"id"`
	Group       string               `yaml:"group"`
	Label       string               `yaml:"label"`
	Description string               `yaml:"description"`
	Kind        string               `yaml:"kind"`
	Stage       *StageConfigFile     `yaml:"stage"`
	Condition   *ConditionConfigFile `yaml:"condition"`
}

// StageConfigFile is the stage template an item drops onto a placeholder
type StageConfigFile struct {
	Group      string                `yaml:"group"`
	Label      string                `yaml:"label"`
	FlowType   string                `yaml:"flow_type"`
	Conditions []ConditionConfigFile `yaml:"conditions"`
}

type ConditionConfigFile struct {
	ID         string          `yaml:"id"`
	Label      string          `yaml:"label"`
	Style      int             `yaml:"style"`
	Value      any             `yaml:"value"`
	Options    []models.Option `yaml:"options"`
	Comparator string          `yaml:"comparator"`
	Optional   bool            `yaml:"optional"`
	Des        string          `yaml:"des"`
}

// LoadPaletteConfig loads palette configuration from a YAML file
func LoadPaletteConfig(filepath string) (PaletteConfigFile, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return PaletteConfigFile{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var configFile PaletteConfigFile
	if err := yaml.Unmarshal(data, &configFile); err != nil {
		return PaletteConfigFile{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := ValidatePaletteConfig(configFile); err != nil {
		return PaletteConfigFile{}, err
	}

	return configFile, nil
}

// ValidatePaletteConfig validates the palette configuration
func ValidatePaletteConfig(config PaletteConfigFile) error {
	for i, item := range config.Items {
		if item.ID == "" {
			return fmt.Errorf("items[%d]: id is required", i)
		}

		switch item.Kind {
		case "stage":
			if item.Stage == nil {
				return fmt.Errorf("items[%d]: stage items require a 'stage' template", i)
			}
		case "approver":
			if item.Condition == nil {
				return fmt.Errorf("items[%d]: approver items require a 'condition'", i)
			}
		default:
			return fmt.Errorf("items[%d]: unknown item kind '%s'", i, item.Kind)
		}

		if item.Stage != nil && !models.FlowType(item.Stage.FlowType).Valid() {
			return fmt.Errorf("items[%d]: unknown flow type '%s'", i, item.Stage.FlowType)
		}

		for j, cond := range conditionsOf(item) {
			if cond.ID == "" {
				return fmt.Errorf("items[%d].conditions[%d]: id is required", i, j)
			}

			if cond.Comparator != "" && !models.Comparator(cond.Comparator).Valid() {
				return fmt.Errorf("items[%d].conditions[%d]: unknown comparator '%s'", i, j, cond.Comparator)
			}
		}
	}

	return nil
}

// BuildPalette registers the configured items, after the built-in catalog unless
// ReplaceDefaults is set.
func BuildPalette(config PaletteConfigFile, logger *slog.Logger) (*palette.Palette, error) {
	p := palette.New(logger)
	if !config.ReplaceDefaults {
		p = palette.Default()
	}

	var errs []error

	for _, item := range config.Items {
		if err := p.Register(item.toItem()); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return p, nil
}

// LoadPaletteOrDefault builds the palette from filepath, or returns the built-in
// catalog when filepath is empty.
func LoadPaletteOrDefault(filepath string, logger *slog.Logger) (*palette.Palette, error) {
	if filepath == "" {
		return palette.Default(), nil
	}

	config, err := LoadPaletteConfig(filepath)
	if err != nil {
		return nil, err
	}

	return BuildPalette(config, logger)
}

func conditionsOf(item ItemConfigFile) []ConditionConfigFile {
	var conditions []ConditionConfigFile

	if item.Stage != nil {
		conditions = append(conditions, item.Stage.Conditions...)
	}

	if item.Condition != nil {
		conditions = append(conditions, *item.Condition)
	}

	return conditions
}

func (i ItemConfigFile) toItem() palette.Item {
	item := palette.Item{
		ID:          i.ID,
		Group:       i.Group,
		Label:       i.Label,
		Description: i.Description,
		Kind:        stagelist.SourceStage,
	}

	if i.Kind == "approver" {
		item.Kind = stagelist.SourceApprover
	}

	if i.Condition != nil {
		item.Condition = i.Condition.toCondition()
	}

	if i.Stage != nil {
		stage := &models.Stage{
			Group:     i.Stage.Group,
			Label:     i.Stage.Label,
			FlowType:  models.FlowType(i.Stage.FlowType),
			Condition: make([]*models.Condition, 0, len(i.Stage.Conditions)),
		}

		if stage.Group == "" {
			stage.Group = i.Group
		}

		for _, cond := range i.Stage.Conditions {
			stage.Condition = append(stage.Condition, cond.toCondition())
		}

		item.Stage = stage
	}

	return item
}

func (c ConditionConfigFile) toCondition() *models.Condition {
	value := c.Value
	if value == nil {
		value = ""
	}

	return &models.Condition{
		ID:            c.ID,
		Label:         c.Label,
		Style:         models.ConditionStyle(c.Style),
		Value:         value,
		Options:       c.Options,
		ConditionType: models.Comparator(c.Comparator),
		Optional:      c.Optional,
		Des:           c.Des,
	}
}
