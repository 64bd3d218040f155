// Package entity defines the abstract entity descriptor the EntityProjector
// consumes. It deliberately mirrors a reflection-over-annotations facade
// without requiring reflection: callers populate a Descriptor however they
// like (struct tags, a config file, a database catalog, ...) and hand it to
// the projector.
package entity

import "github.com/alc6/dbschemagen/dialect"

// FieldKind is the sum type discriminator for a field descriptor. Only one
// of the kind-specific struct fields on Field is meaningful for a given
// Kind; which one is documented next to the constant.
type FieldKind string

const (
	// KindID marks the primary-key field. Field.Generated is meaningful.
	KindID FieldKind = "id"
	// KindToOne marks a ManyToOne/OneToOne relation. Field.Join is meaningful.
	KindToOne FieldKind = "toOne"
	// KindToMany marks a OneToMany/ManyToMany relation. Skipped by the
	// projector entirely (join tables are out of scope).
	KindToMany FieldKind = "toMany"
	// KindEmbedded marks an embedded value object. Field.Embedded is meaningful.
	KindEmbedded FieldKind = "embedded"
	// KindPlain is an ordinary scalar column.
	KindPlain FieldKind = "plain"
)

// GeneratedStrategy selects how a primary key value is produced.
type GeneratedStrategy string

const (
	GeneratedNone     GeneratedStrategy = ""
	GeneratedUUID     GeneratedStrategy = "UUID"
	GeneratedIdentity GeneratedStrategy = "IDENTITY"
)

// JoinInfo carries the relation-specific metadata for a KindToOne field.
type JoinInfo struct {
	// Name is an explicit join-column name override. Empty means
	// snake(fieldName)+"_id".
	Name string
	// Nullable, when HasNullable is true, overrides the default (nullable).
	Nullable    bool
	HasNullable bool
	// ReferencedEntity is the Name of the Descriptor this field points at.
	ReferencedEntity string
	// ForeignKeyName is an explicit constraint-name override. Empty means
	// fk_<table>_<column>.
	ForeignKeyName string
}

// EmbeddedInfo carries the value-object metadata for a KindEmbedded field.
type EmbeddedInfo struct {
	// Fields are the embedded type's own persistent fields, in declaration order.
	Fields []Field
	// AttributeOverrides maps an inner field's Name to an explicit outer
	// column name, standing in for @AttributeOverride.
	AttributeOverrides map[string]string
}

// Field describes one persistent field on an entity.
type Field struct {
	Name string
	Kind FieldKind

	// Column is an explicit physical column name override (meaningful for
	// KindID and KindPlain). Empty means snake-case of Name.
	Column string

	// LogicalType and its metadata are meaningful for KindID (when
	// Generated is GeneratedNone) and KindPlain.
	LogicalType dialect.LogicalType
	Meta        dialect.ColumnMeta

	// Nullable, Unique are meaningful for KindPlain and the inner fields of
	// a KindEmbedded.
	Nullable bool
	Unique   bool

	// Generated is meaningful for KindID.
	Generated GeneratedStrategy

	// Join is meaningful for KindToOne.
	Join *JoinInfo

	// Embedded is meaningful for KindEmbedded.
	Embedded *EmbeddedInfo

	// DefaultValue is an explicit DEFAULT expression, meaningful for
	// KindPlain and the inner fields of KindEmbedded. Empty means "no
	// explicit default" (the projector may still inject one, e.g. for
	// created_at/updated_at).
	DefaultValue string
	HasDefault   bool
}

// IndexDecl mirrors an explicit @Table(indexes = ...) declaration.
type IndexDecl struct {
	Name    string
	Columns []string
	Unique  bool
}

// Descriptor describes one entity: its physical table name, its partition,
// and its fields.
type Descriptor struct {
	// Name is the entity's simple name, e.g. "User".
	Name string
	// Table is an explicit @Table(name=...) override. Empty means
	// snake-case of Name.
	Table string
	// Schema is an explicit @Table(schema=...) override, lowercased. Empty
	// means the last segment of PackagePath.
	Schema string
	// PackagePath is the entity's package/namespace path, used to derive
	// Schema when it is empty.
	PackagePath string
	// Indexes are explicit index declarations, applied before the
	// projector's heuristic indexes.
	Indexes []IndexDecl
	// Fields are the entity's persistent fields, in first-seen order
	// (inherited fields included, transient/static fields already
	// excluded by whatever populated this Descriptor).
	Fields []Field
}
