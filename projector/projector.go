// Package projector implements the EntityProjector: turning one entity
// descriptor into a normalized schema.TableSchema, applying dialect-specific
// type mapping, embedded-value flattening, relationship column synthesis,
// and PK/UUID/identity generation policy.
package projector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alc6/dbschemagen/casing"
	"github.com/alc6/dbschemagen/dialect"
	"github.com/alc6/dbschemagen/entity"
	"github.com/alc6/dbschemagen/schema"
)

// heuristicIndexColumns are the plain-column names that earn an automatic
// single-column index when not already covered by an explicit or
// relation-derived one.
var heuristicIndexColumns = map[string]bool{
	"email":    true,
	"username": true,
	"subject":  true,
	"code":     true,
}

// timestampColumns are the plain-column names that get an implicit
// CURRENT_TIMESTAMP default when the descriptor didn't supply one.
var timestampColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// Collateral carries the side information the orchestrator needs beyond
// the TableSchema itself.
type Collateral struct {
	// NeedsUUIDSetup is true if this entity's primary key is a
	// UUID-strategy generated key on a dialect that requires an
	// extension/function setup file (Postgres; MariaDB never needs one).
	NeedsUUIDSetup bool
	// PrimaryKeyType is the SQL type of this entity's primary key column,
	// used by other entities' to-one relations. Empty if this entity has
	// no KindID field.
	PrimaryKeyType string
}

// EntityProjector projects entity descriptors into TableSchema values.
type EntityProjector struct {
	Dialect    dialect.Dialect
	UUIDPolicy dialect.UUIDPolicy
	mapper     *dialect.TypeMapper

	// byName resolves a to-one relation's ReferencedEntity to the
	// referenced Descriptor, so the projector can derive the foreign
	// column's type without building a full object graph (cycles between
	// two to-one relations are benign: each side only needs the other's
	// primary-key type, a pure function of its descriptor).
	byName map[string]entity.Descriptor
}

// New constructs a projector. byName must contain every descriptor that any
// to-one relation in the set being projected might reference, including
// entities not being projected in this call (e.g. when projecting a single
// changed entity during an ALTER run).
func New(d dialect.Dialect, uuid dialect.UUIDPolicy, byName map[string]entity.Descriptor) *EntityProjector {
	return &EntityProjector{
		Dialect:    d,
		UUIDPolicy: uuid,
		mapper:     dialect.NewTypeMapper(d),
		byName:     byName,
	}
}

// TableName resolves a descriptor's physical table name: the explicit
// override if set, else snake_case of its simple name.
func TableName(d entity.Descriptor) string {
	if strings.TrimSpace(d.Table) != "" {
		return d.Table
	}
	return casing.Snake(d.Name)
}

// Partition resolves a descriptor's schema/partition: the explicit
// lowercased override if set, else the last segment of its package path.
func Partition(d entity.Descriptor) string {
	if strings.TrimSpace(d.Schema) != "" {
		return strings.ToLower(d.Schema)
	}
	segs := strings.Split(strings.Trim(d.PackagePath, "."), ".")
	if len(segs) == 0 || segs[len(segs)-1] == "" {
		return ""
	}
	return strings.ToLower(segs[len(segs)-1])
}

// Project derives a TableSchema from one entity descriptor.
func (p *EntityProjector) Project(d entity.Descriptor) (schema.TableSchema, Collateral, error) {
	table := TableName(d)
	var columns []schema.ColumnSchema
	var foreignKeys []schema.ForeignKeySchema
	var collateral Collateral

	for _, f := range d.Fields {
		switch f.Kind {
		case entity.KindID:
			col, needsSetup, err := p.projectID(f)
			if err != nil {
				return schema.TableSchema{}, Collateral{}, fmt.Errorf("entity %s: field %s: %w", d.Name, f.Name, err)
			}
			columns = append(columns, col)
			collateral.PrimaryKeyType = col.Type
			collateral.NeedsUUIDSetup = collateral.NeedsUUIDSetup || needsSetup

		case entity.KindToOne:
			col, fk, err := p.projectToOne(f)
			if err != nil {
				return schema.TableSchema{}, Collateral{}, fmt.Errorf("entity %s: field %s: %w", d.Name, f.Name, err)
			}
			columns = append(columns, col)
			foreignKeys = append(foreignKeys, fk)

		case entity.KindToMany:
			continue

		case entity.KindEmbedded:
			cols, err := p.projectEmbedded(f)
			if err != nil {
				return schema.TableSchema{}, Collateral{}, fmt.Errorf("entity %s: field %s: %w", d.Name, f.Name, err)
			}
			columns = append(columns, cols...)

		case entity.KindPlain:
			columns = append(columns, p.projectPlain(f))

		default:
			return schema.TableSchema{}, Collateral{}, fmt.Errorf("entity %s: field %s: unknown field kind %q", d.Name, f.Name, f.Kind)
		}
	}

	indexes := p.buildIndexes(table, d, columns, foreignKeys)

	return schema.TableSchema{
		Name:        table,
		Columns:     columns,
		Indexes:     indexes,
		ForeignKeys: foreignKeys,
	}, collateral, nil
}

func (p *EntityProjector) projectID(f entity.Field) (schema.ColumnSchema, bool, error) {
	name := f.Column
	if name == "" {
		name = casing.Snake(f.Name)
	}

	col := schema.ColumnSchema{
		Name:         name,
		Nullable:     false,
		IsPrimaryKey: true,
	}

	switch f.Generated {
	case entity.GeneratedUUID:
		col.Type = p.mapper.UUIDPrimaryKeyType()
		col.DefaultValue = dialect.UUIDDefaultExpression(p.Dialect, p.UUIDPolicy)
		col.HasDefault = true
		needsSetup := p.Dialect == dialect.Postgres
		return col, needsSetup, nil
	case entity.GeneratedIdentity:
		col.Type = p.mapper.IdentityPrimaryKeyType()
		col.Identity = true
		return col, false, nil
	default:
		col.Type = p.mapper.MapType(f.LogicalType, f.Meta)
		return col, false, nil
	}
}

// pkType returns the SQL type of entity name's primary key, without
// building its full TableSchema. Used to type to-one join columns.
func (p *EntityProjector) pkType(entityName string) (string, error) {
	ref, ok := p.byName[entityName]
	if !ok {
		return "", fmt.Errorf("referenced entity %q not found", entityName)
	}
	for _, f := range ref.Fields {
		if f.Kind != entity.KindID {
			continue
		}
		col, _, err := p.projectID(f)
		if err != nil {
			return "", err
		}
		return col.Type, nil
	}
	return "", fmt.Errorf("referenced entity %q has no id field", entityName)
}

func (p *EntityProjector) projectToOne(f entity.Field) (schema.ColumnSchema, schema.ForeignKeySchema, error) {
	if f.Join == nil {
		return schema.ColumnSchema{}, schema.ForeignKeySchema{}, fmt.Errorf("toOne field missing join info")
	}

	name := f.Join.Name
	if name == "" {
		name = casing.Snake(f.Name) + "_id"
	}

	nullable := true
	if f.Join.HasNullable {
		nullable = f.Join.Nullable
	}

	refType, err := p.pkType(f.Join.ReferencedEntity)
	if err != nil {
		return schema.ColumnSchema{}, schema.ForeignKeySchema{}, err
	}

	ref, ok := p.byName[f.Join.ReferencedEntity]
	if !ok {
		return schema.ColumnSchema{}, schema.ForeignKeySchema{}, fmt.Errorf("referenced entity %q not found", f.Join.ReferencedEntity)
	}

	col := schema.ColumnSchema{
		Name:     name,
		Type:     refType,
		Nullable: nullable,
	}

	onDelete := schema.OnDeleteCascade
	if nullable {
		onDelete = schema.OnDeleteSetNull
	}

	fk := schema.ForeignKeySchema{
		Name:             f.Join.ForeignKeyName,
		ColumnName:       name,
		ReferencedTable:  TableName(ref),
		ReferencedColumn: "id",
		OnDelete:         onDelete,
	}

	return col, fk, nil
}

func (p *EntityProjector) projectEmbedded(f entity.Field) ([]schema.ColumnSchema, error) {
	if f.Embedded == nil {
		return nil, fmt.Errorf("embedded field missing embedded info")
	}

	outer := casing.Snake(f.Name)
	var cols []schema.ColumnSchema
	for _, inner := range f.Embedded.Fields {
		name, ok := f.Embedded.AttributeOverrides[inner.Name]
		if !ok || strings.TrimSpace(name) == "" {
			name = outer + "_" + casing.Snake(inner.Name)
		}

		col := schema.ColumnSchema{
			Name:     name,
			Type:     p.mapper.MapType(inner.LogicalType, inner.Meta),
			Nullable: inner.Nullable,
			Unique:   inner.Unique,
		}
		if inner.HasDefault {
			col.HasDefault, col.DefaultValue = true, inner.DefaultValue
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (p *EntityProjector) projectPlain(f entity.Field) schema.ColumnSchema {
	name := f.Column
	if name == "" {
		name = casing.Snake(f.Name)
	}

	col := schema.ColumnSchema{
		Name:     name,
		Type:     p.mapper.MapType(f.LogicalType, f.Meta),
		Nullable: f.Nullable,
		Unique:   f.Unique,
	}

	if f.HasDefault {
		col.HasDefault, col.DefaultValue = true, f.DefaultValue
	} else if timestampColumns[name] {
		col.HasDefault, col.DefaultValue = true, "CURRENT_TIMESTAMP"
	}

	return col
}

func (p *EntityProjector) buildIndexes(table string, d entity.Descriptor, columns []schema.ColumnSchema, fks []schema.ForeignKeySchema) []schema.IndexSchema {
	type key struct {
		name string
		cols string
	}
	seen := map[key]bool{}
	var indexes []schema.IndexSchema

	add := func(idx schema.IndexSchema) {
		k := key{idx.Name, strings.Join(idx.Columns, ",")}
		if seen[k] {
			return
		}
		seen[k] = true
		indexes = append(indexes, idx)
	}

	indexedColumns := map[string]bool{}
	for _, decl := range d.Indexes {
		add(schema.IndexSchema{Name: decl.Name, Columns: decl.Columns, Unique: decl.Unique})
		for _, c := range decl.Columns {
			indexedColumns[c] = true
		}
	}

	for _, fk := range fks {
		if indexedColumns[fk.ColumnName] {
			continue
		}
		add(schema.IndexSchema{
			Name:    fmt.Sprintf("idx_%s_%s", table, fk.ColumnName),
			Columns: []string{fk.ColumnName},
			Unique:  false,
		})
		indexedColumns[fk.ColumnName] = true
	}

	relationColumns := map[string]bool{}
	for _, fk := range fks {
		relationColumns[fk.ColumnName] = true
	}

	for _, col := range columns {
		if relationColumns[col.Name] || indexedColumns[col.Name] {
			continue
		}
		if heuristicIndexColumns[col.Name] {
			add(schema.IndexSchema{
				Name:    fmt.Sprintf("idx_%s_%s", table, col.Name),
				Columns: []string{col.Name},
				Unique:  false,
			})
			indexedColumns[col.Name] = true
		}
	}

	sort.SliceStable(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })
	return indexes
}
