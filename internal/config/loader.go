// Package config loads filter-engine settings: extra relationship entries
// and default-field overrides layered on top of the built-in tables.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/recruitflow/filterengine/internal/domain"
)

// Settings carries everything the engine needs beyond the raw filter input.
type Settings struct {
	Relationships []domain.RelationshipEntry
	DefaultFields map[domain.EntityType]string
}

// Default returns settings backed entirely by the built-in tables.
func Default() Settings {
	return Settings{
		Relationships: domain.BuiltinRelationships(),
		DefaultFields: domain.DefaultFieldTable(),
	}
}

// rawRelationship is the yaml shape of one relationship entry.
type rawRelationship struct {
	From      string `mapstructure:"from"`
	To        string `mapstructure:"to"`
	JoinField string `mapstructure:"join_field"`
}

// Load reads filter.yaml from configPath and overlays it on the defaults.
// A missing file is not an error; environment variables prefixed FILTER
// override file values. Entity names from the file are validated so a typo
// fails the load instead of silently defining an unreachable relationship.
func Load(configPath string) (Settings, error) {
	settings := Default()

	v := viper.New()
	v.SetConfigName("filter")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("FILTER")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Use built-in tables.
		fmt.Println("No filter.yaml found, using built-in tables")
		return settings, nil
	}
	fmt.Println("Loaded filter.yaml")

	if v.IsSet("relationships") {
		var raw []rawRelationship
		if err := v.UnmarshalKey("relationships", &raw); err != nil {
			return Settings{}, fmt.Errorf("decode relationships: %w", err)
		}
		for i, entry := range raw {
			from, err := domain.ParseEntityType(entry.From)
			if err != nil {
				return Settings{}, fmt.Errorf("relationships[%d].from: %w", i, err)
			}
			to, err := domain.ParseEntityType(entry.To)
			if err != nil {
				return Settings{}, fmt.Errorf("relationships[%d].to: %w", i, err)
			}
			if entry.JoinField == "" {
				return Settings{}, fmt.Errorf("relationships[%d]: join_field is required", i)
			}
			settings.Relationships = append(settings.Relationships, domain.RelationshipEntry{
				From:      from,
				To:        to,
				JoinField: entry.JoinField,
			})
		}
	}

	if v.IsSet("default_fields") {
		for name, field := range v.GetStringMapString("default_fields") {
			entity, err := domain.ParseEntityType(name)
			if err != nil {
				return Settings{}, fmt.Errorf("default_fields.%s: %w", name, err)
			}
			if field == "" {
				return Settings{}, fmt.Errorf("default_fields.%s: field is required", name)
			}
			settings.DefaultFields[entity] = field
		}
	}

	return settings, nil
}

// Registry materializes the relationship entries into an immutable registry.
// Entries loaded from configuration come after the built-ins, so they win
// for the same entity pair.
func (s Settings) Registry() domain.RelationshipRegistry {
	return domain.NewRelationshipRegistryFromEntries(s.Relationships)
}
