package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/alc6/dbschemagen/dialect"
	"github.com/alc6/dbschemagen/orchestrator"
)

// fileConfig mirrors the optional dbschemagen.toml shape: dialect/uuid/mode
// policy, output directory, descriptor source, and schema-provider tuning.
type fileConfig struct {
	Dialect        string               `toml:"dialect"`
	UUID           string               `toml:"uuid"`
	Mode           string               `toml:"mode"`
	OutDir         string               `toml:"out_dir"`
	DescriptorPath string               `toml:"descriptor_path"`
	SchemaProvider schemaProviderConfig `toml:"schema_provider"`
}

type schemaProviderConfig struct {
	SetupFolder string `toml:"setup_folder"`
}

// loadConfig reads a TOML config file and returns a fileConfig with defaults
// applied. Unknown keys are rejected, matching the reference tooling's
// validation discipline.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := fileConfig{
		Dialect: string(dialect.Postgres),
		UUID:    string(dialect.UUIDv4),
		Mode:    string(orchestrator.Smart),
		OutDir:  "migrations",
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	cfg.Dialect = strings.ToUpper(strings.TrimSpace(cfg.Dialect))
	cfg.UUID = strings.ToUpper(strings.TrimSpace(cfg.UUID))
	cfg.Mode = strings.ToUpper(strings.TrimSpace(cfg.Mode))

	if _, err := dialect.ParseDialect(cfg.Dialect); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := dialect.ParseUUIDPolicy(cfg.UUID); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch orchestrator.Mode(cfg.Mode) {
	case orchestrator.CreateOnly, orchestrator.AlterOnly, orchestrator.Smart:
	default:
		return nil, fmt.Errorf("config: mode must be one of CREATE_ONLY, ALTER_ONLY, SMART, got %q", cfg.Mode)
	}

	if strings.TrimSpace(cfg.OutDir) == "" {
		cfg.OutDir = "migrations"
	}

	return &cfg, nil
}

// configuredSchemaProvider adapts the file config's schema_provider section
// onto orchestrator.DefaultSchemaProvider.
type configuredSchemaProvider struct {
	orchestrator.DefaultSchemaProvider
	setupFolder string
}

func (p configuredSchemaProvider) SetupFolder() string { return p.setupFolder }
