// Package orchestrator drives the full pipeline: discover entities, choose
// a CREATE/ALTER/SMART path, and invoke the projector, extractor, differ,
// emitter and writer in the documented order.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alc6/dbschemagen/dialect"
	"github.com/alc6/dbschemagen/differ"
	"github.com/alc6/dbschemagen/entity"
	"github.com/alc6/dbschemagen/extractor"
	"github.com/alc6/dbschemagen/projector"
	"github.com/alc6/dbschemagen/sqlgen"
	"github.com/alc6/dbschemagen/writer"
)

// Mode selects which of the CREATE/ALTER/SMART paths Generate takes.
type Mode string

const (
	CreateOnly Mode = "CREATE_ONLY"
	AlterOnly  Mode = "ALTER_ONLY"
	Smart      Mode = "SMART"
)

// Reserved sort numbers, per the directory layout convention.
const (
	SortUUIDSetup    = 1
	SortCreateStart  = 1000
	SortCreateEnd    = 4999
	SortForeignKeys  = 5000
	SortIndexes      = 9000
)

// DuplicateTableNameError reports two entities projecting to the same
// physical table name. Fatal, raised before any file is written.
type DuplicateTableNameError struct {
	Table    string
	EntityA  string
	EntityB  string
}

func (e *DuplicateTableNameError) Error() string {
	return fmt.Sprintf("duplicate table name %q: entities %s and %s both project to it", e.Table, e.EntityA, e.EntityB)
}

// EntityDiscoveryError wraps a failure from the configured
// entity.DescriptorSource.
type EntityDiscoveryError struct {
	Err error
}

func (e *EntityDiscoveryError) Error() string { return fmt.Sprintf("entity discovery failed: %v", e.Err) }
func (e *EntityDiscoveryError) Unwrap() error  { return e.Err }

// Config carries the orchestrator's explicit, process-state-free
// configuration: no value here is read from globals.
type Config struct {
	Dialect        dialect.Dialect
	UUIDPolicy     dialect.UUIDPolicy
	Mode           Mode
	OutDir         string
	SchemaProvider SchemaProvider
}

// SchemaProvider is the injectable collaborator controlling partitioning
// and filename policy.
//
//go:generate mockgen -source=orchestrator.go -destination=../mocks/mock_schemaprovider.go -package=mocks
type SchemaProvider interface {
	FolderFor(d entity.Descriptor) string
	SetupFolder() string
	FileName(timestamp time.Time, sortNumber int, baseName string) string
	Regex(sortNumber int, baseName string) string
}

// DefaultSchemaProvider implements the spec's default partitioning:
// folderFor is the last segment of the entity's package path (or "default"
// if empty), setupFolder is the output root, and filenames follow the
// writer package's naming policy.
type DefaultSchemaProvider struct{}

func (DefaultSchemaProvider) FolderFor(d entity.Descriptor) string {
	p := projector.Partition(d)
	if p == "" {
		return "default"
	}
	return p
}

func (DefaultSchemaProvider) SetupFolder() string { return "" }

func (DefaultSchemaProvider) FileName(timestamp time.Time, sortNumber int, baseName string) string {
	return writer.FileName(timestamp, sortNumber, baseName)
}

func (DefaultSchemaProvider) Regex(sortNumber int, baseName string) string {
	return writer.Regex(sortNumber, baseName).String()
}

// Orchestrator drives one or more generate() runs against cfg.
type Orchestrator struct {
	cfg    Config
	source entity.DescriptorSource
}

// New constructs an Orchestrator. cfg.SchemaProvider defaults to
// DefaultSchemaProvider when nil.
func New(cfg Config, source entity.DescriptorSource) *Orchestrator {
	if cfg.SchemaProvider == nil {
		cfg.SchemaProvider = DefaultSchemaProvider{}
	}
	return &Orchestrator{cfg: cfg, source: source}
}

// Result summarizes one Generate call for callers (e.g. the MCP tool) that
// want a report rather than just side effects.
type Result struct {
	FilesWritten []string
	TablesSeen   int
}

// Generate runs one full generation pass: discover entities, validate
// table-name uniqueness, dispatch CREATE/ALTER/SMART, and invoke the
// pipeline components in the documented order.
func (o *Orchestrator) Generate(ctx context.Context) (Result, error) {
	executionTimestamp := time.Now()

	descriptors, err := o.source.Discover(ctx)
	if err != nil {
		return Result{}, &EntityDiscoveryError{Err: err}
	}

	byName := map[string]entity.Descriptor{}
	for _, d := range descriptors {
		byName[d.Name] = d
	}

	if err := validateUniqueTableNames(descriptors); err != nil {
		return Result{}, err
	}

	sort.SliceStable(descriptors, func(i, j int) bool {
		return strings.ToLower(projector.TableName(descriptors[i])) < strings.ToLower(projector.TableName(descriptors[j]))
	})

	proj := projector.New(o.cfg.Dialect, o.cfg.UUIDPolicy, byName)
	w := writer.NewWithNaming(executionTimestamp, o.cfg.SchemaProvider)

	var result Result
	result.TablesSeen = len(descriptors)

	switch o.cfg.Mode {
	case CreateOnly:
		if err := o.runCreate(ctx, descriptors, proj, w, &result); err != nil {
			return result, err
		}
	case AlterOnly:
		if err := o.runAlter(ctx, descriptors, proj, w, &result); err != nil {
			return result, err
		}
	case Smart:
		var fresh, existing []entity.Descriptor
		for _, d := range descriptors {
			dir := o.partitionDir(d)
			tables, err := extractor.GetExistingTables(dir)
			if err != nil {
				slog.Warn("failed to inspect existing tables", "partition", dir, "error", err)
				fresh = append(fresh, d)
				continue
			}
			if tables[projector.TableName(d)] {
				existing = append(existing, d)
			} else {
				fresh = append(fresh, d)
			}
		}
		if err := o.runCreate(ctx, fresh, proj, w, &result); err != nil {
			return result, err
		}
		if err := o.runAlter(ctx, existing, proj, w, &result); err != nil {
			return result, err
		}
	default:
		return result, fmt.Errorf("unknown orchestrator mode %q", o.cfg.Mode)
	}

	return result, nil
}

func validateUniqueTableNames(descriptors []entity.Descriptor) error {
	seen := map[string]string{}
	for _, d := range descriptors {
		table := strings.ToLower(projector.TableName(d))
		if other, ok := seen[table]; ok {
			return &DuplicateTableNameError{Table: table, EntityA: other, EntityB: d.Name}
		}
		seen[table] = d.Name
	}
	return nil
}

func (o *Orchestrator) partitionDir(d entity.Descriptor) string {
	return filepath.Join(o.cfg.OutDir, o.cfg.SchemaProvider.FolderFor(d))
}

func (o *Orchestrator) setupDir() string {
	folder := o.cfg.SchemaProvider.SetupFolder()
	if folder == "" {
		return o.cfg.OutDir
	}
	return filepath.Join(o.cfg.OutDir, folder)
}

func (o *Orchestrator) runCreate(ctx context.Context, descriptors []entity.Descriptor, proj *projector.EntityProjector, w *writer.Writer, result *Result) error {
	needsUUIDSetup := false

	fksByPartition := map[string][]sqlgen.ForeignKeyEmission{}
	idxByPartition := map[string][]sqlgen.IndexEmission{}
	var partitionOrder []string
	seenPartition := map[string]bool{}

	for i, d := range descriptors {
		table, collateral, err := proj.Project(d)
		if err != nil {
			return fmt.Errorf("failed to project entity %s: %w", d.Name, err)
		}
		if collateral.NeedsUUIDSetup {
			needsUUIDSetup = true
		}

		partition := o.cfg.SchemaProvider.FolderFor(d)
		if !seenPartition[partition] {
			seenPartition[partition] = true
			partitionOrder = append(partitionOrder, partition)
		}

		for _, fk := range table.ForeignKeys {
			fksByPartition[partition] = append(fksByPartition[partition], sqlgen.ForeignKeyEmission{Table: table.Name, FK: fk})
		}
		for _, idx := range table.Indexes {
			idxByPartition[partition] = append(idxByPartition[partition], sqlgen.IndexEmission{Table: table.Name, Index: idx})
		}

		body := sqlgen.EmitCreateTable(table, o.cfg.Dialect)
		baseName := fmt.Sprintf("create_%s_table", table.Name)
		path, err := w.WriteMigration(o.partitionDir(d), SortCreateStart+i, baseName, body)
		if err != nil {
			return fmt.Errorf("failed to write create-table migration for %s: %w", table.Name, err)
		}
		if path != "" {
			result.FilesWritten = append(result.FilesWritten, path)
		}
	}

	if needsUUIDSetup {
		body := sqlgen.EmitUUIDSetup(o.cfg.Dialect, o.cfg.UUIDPolicy)
		if body != "" {
			path, err := w.WriteMigration(o.setupDir(), SortUUIDSetup, "setup_uuid_extension", body)
			if err != nil {
				return fmt.Errorf("failed to write uuid setup migration: %w", err)
			}
			if path != "" {
				result.FilesWritten = append(result.FilesWritten, path)
			}
		}
	}

	for _, partition := range partitionOrder {
		if fks := fksByPartition[partition]; len(fks) > 0 {
			body := sqlgen.EmitForeignKeys(fks)
			dir := filepath.Join(o.cfg.OutDir, partition)
			path, err := w.WriteMigration(dir, SortForeignKeys, "add_foreign_keys", body)
			if err != nil {
				return fmt.Errorf("failed to write foreign keys migration for partition %s: %w", partition, err)
			}
			if path != "" {
				result.FilesWritten = append(result.FilesWritten, path)
			}
		}
		if idxs := idxByPartition[partition]; len(idxs) > 0 {
			body := sqlgen.EmitIndexes(idxs)
			dir := filepath.Join(o.cfg.OutDir, partition)
			path, err := w.WriteMigration(dir, SortIndexes, "add_indexes", body)
			if err != nil {
				return fmt.Errorf("failed to write indexes migration for partition %s: %w", partition, err)
			}
			if path != "" {
				result.FilesWritten = append(result.FilesWritten, path)
			}
		}
	}

	return nil
}

func (o *Orchestrator) runAlter(ctx context.Context, descriptors []entity.Descriptor, proj *projector.EntityProjector, w *writer.Writer, result *Result) error {
	for i, d := range descriptors {
		table, _, err := proj.Project(d)
		if err != nil {
			return fmt.Errorf("failed to project entity %s: %w", d.Name, err)
		}

		dir := o.partitionDir(d)
		prior, err := extractor.LoadTableSchema(dir, table.Name)
		if err != nil {
			return fmt.Errorf("failed to load prior schema for %s: %w", table.Name, err)
		}
		if prior == nil {
			slog.Warn("missing prior schema for table, skipping ALTER", "table", table.Name, "partition", dir)
			continue
		}

		body := differ.Diff(table.Name, *prior, table)
		if body == "" {
			continue
		}

		baseName := fmt.Sprintf("alter_%s_table", table.Name)
		path, err := w.WriteMigration(dir, SortCreateStart+i, baseName, body)
		if err != nil {
			return fmt.Errorf("failed to write alter migration for %s: %w", table.Name, err)
		}
		if path != "" {
			result.FilesWritten = append(result.FilesWritten, path)
		}
	}
	return nil
}
