// Package schema holds the pure data model the rest of dbschemagen is built
// around: the normalized shape of a database table, independent of whether
// it came from projecting an entity descriptor or from parsing SQL already
// on disk.
package schema

// ColumnSchema describes one physical column.
type ColumnSchema struct {
	Name         string
	Type         string
	Nullable     bool
	Unique       bool
	IsPrimaryKey bool
	DefaultValue string // rendered as a DEFAULT clause only when HasDefault is set
	HasDefault   bool
	// Identity marks an IDENTITY-strategy primary key. On MariaDB the
	// emitter renders this as an explicit AUTO_INCREMENT constraint; on
	// Postgres the BIGSERIAL type already implies it, so the emitter
	// ignores the flag there.
	Identity bool
}

// IndexSchema describes one index. Columns is ordered and non-empty.
type IndexSchema struct {
	Name    string
	Columns []string
	Unique  bool
}

const (
	OnDeleteCascade  = "CASCADE"
	OnDeleteSetNull  = "SET NULL"
	OnDeleteRestrict = "RESTRICT"
	OnDeleteNoAction = "NO ACTION"
)

// ForeignKeySchema describes one foreign key constraint. Name is an
// implementation extension beyond the paper data model: an explicit
// constraint-name override captured at CREATE time (from the entity's join
// metadata). The extractor always leaves it empty, since the emitted
// constraint name isn't captured by the regexes in extractor — an empty
// Name means "use the default fk_<table>_<column> pattern", which is also
// what a round-tripped (extracted) foreign key implies.
type ForeignKeySchema struct {
	Name             string
	ColumnName       string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         string
}

// TableSchema is the normalized shape of a table. Columns are
// insertion-ordered when the schema is freshly projected or extracted;
// the differ package compares two TableSchema values only after its
// unexported normalize step, which re-sorts everything.
type TableSchema struct {
	Name        string
	Columns     []ColumnSchema
	Indexes     []IndexSchema
	ForeignKeys []ForeignKeySchema
}

// ColumnNames returns the physical names of every column, in schema order.
func (t *TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnByName returns the column with the given name, if present.
func (t *TableSchema) ColumnByName(name string) (ColumnSchema, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSchema{}, false
}

// HasColumn reports whether the table has a column with the given name.
func (t *TableSchema) HasColumn(name string) bool {
	_, ok := t.ColumnByName(name)
	return ok
}

// PrimaryKeyColumn returns the single primary-key column, if exactly one
// column is marked IsPrimaryKey. Composite-PK tables (zero or more than one
// marked column, per the extractor's compound-PK tolerance) return ok=false.
func (t *TableSchema) PrimaryKeyColumn() (ColumnSchema, bool) {
	var found ColumnSchema
	count := 0
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			found = c
			count++
		}
	}
	if count != 1 {
		return ColumnSchema{}, false
	}
	return found, true
}

// IndexByName returns the index with the given name, if present.
func (t *TableSchema) IndexByName(name string) (IndexSchema, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexSchema{}, false
}
