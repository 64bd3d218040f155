package differ

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alc6/dbschemagen/schema"
)

func TestDiffNoChangesReturnsEmpty(t *testing.T) {
	table := schema.TableSchema{
		Name:    "sample",
		Columns: []schema.ColumnSchema{{Name: "id", Type: "bigserial", IsPrimaryKey: true}},
	}
	assert.Equal(t, "", Diff("sample", table, table))
}

func TestDiffNormalizesTypeCaseAndWhitespace(t *testing.T) {
	old := schema.TableSchema{Columns: []schema.ColumnSchema{{Name: "id", Type: "bigint"}}}
	new_ := schema.TableSchema{Columns: []schema.ColumnSchema{{Name: "id", Type: "  BIGINT  "}}}
	assert.Equal(t, "", Diff("sample", old, new_))
}

func TestDiffAddedColumn(t *testing.T) {
	old := schema.TableSchema{Columns: []schema.ColumnSchema{{Name: "id", Type: "BIGINT", IsPrimaryKey: true}}}
	new_ := schema.TableSchema{Columns: []schema.ColumnSchema{
		{Name: "id", Type: "BIGINT", IsPrimaryKey: true},
		{Name: "name", Type: "VARCHAR(255)", Nullable: false},
	}}

	out := Diff("sample", old, new_)
	assert.Contains(t, out, "ALTER TABLE sample ADD COLUMN name VARCHAR(255) NOT NULL;")
}

func TestDiffModifiedColumnTypeNullabilityUnique(t *testing.T) {
	old := schema.TableSchema{Columns: []schema.ColumnSchema{
		{Name: "score", Type: "INTEGER", Nullable: true, Unique: false},
	}}
	new_ := schema.TableSchema{Columns: []schema.ColumnSchema{
		{Name: "score", Type: "BIGINT", Nullable: false, Unique: true},
	}}

	out := Diff("sample", old, new_)
	assert.Contains(t, out, "ALTER TABLE sample ALTER COLUMN score TYPE BIGINT;")
	assert.Contains(t, out, "ALTER TABLE sample ALTER COLUMN score SET NOT NULL;")
	assert.Contains(t, out, "ALTER TABLE sample ADD CONSTRAINT uq_sample_score UNIQUE (score);")
}

func TestDiffRemovedColumnWarnsNeverAutoDrops(t *testing.T) {
	old := schema.TableSchema{Columns: []schema.ColumnSchema{
		{Name: "id", Type: "BIGINT", IsPrimaryKey: true},
		{Name: "legacy_flag", Type: "BOOLEAN"},
	}}
	new_ := schema.TableSchema{Columns: []schema.ColumnSchema{
		{Name: "id", Type: "BIGINT", IsPrimaryKey: true},
	}}

	out := Diff("sample", old, new_)
	assert.Contains(t, out, "-- WARNING: Column 'legacy_flag' was removed from entity")
	assert.Contains(t, out, "-- Consider: ALTER TABLE sample DROP COLUMN legacy_flag;")
}

func TestDiffRemovedPrimaryKeyColumnNeverWarned(t *testing.T) {
	old := schema.TableSchema{Columns: []schema.ColumnSchema{
		{Name: "id", Type: "BIGINT", IsPrimaryKey: true},
	}}
	new_ := schema.TableSchema{Columns: []schema.ColumnSchema{}}

	out := Diff("sample", old, new_)
	assert.NotContains(t, out, "id")
}

func TestDiffIndexAddedAndRemoved(t *testing.T) {
	old := schema.TableSchema{
		Columns: []schema.ColumnSchema{{Name: "id", Type: "BIGINT"}},
		Indexes: []schema.IndexSchema{{Name: "idx_old", Columns: []string{"id"}}},
	}
	new_ := schema.TableSchema{
		Columns: []schema.ColumnSchema{{Name: "id", Type: "BIGINT"}, {Name: "email", Type: "VARCHAR(255)"}},
		Indexes: []schema.IndexSchema{{Name: "idx_email", Columns: []string{"email"}, Unique: true}},
	}

	out := Diff("sample", old, new_)
	assert.Contains(t, out, "CREATE UNIQUE INDEX idx_email ON sample (email);")
	assert.Contains(t, out, "DROP INDEX IF EXISTS idx_old;")
}

func TestDiffForeignKeyAddedModifiedRemoved(t *testing.T) {
	old := schema.TableSchema{
		Columns: []schema.ColumnSchema{{Name: "org_id", Type: "BIGINT"}, {Name: "dept_id", Type: "BIGINT"}},
		ForeignKeys: []schema.ForeignKeySchema{
			{ColumnName: "org_id", ReferencedTable: "org", ReferencedColumn: "id", OnDelete: schema.OnDeleteCascade},
			{ColumnName: "dept_id", ReferencedTable: "dept", ReferencedColumn: "id", OnDelete: schema.OnDeleteCascade},
		},
	}
	new_ := schema.TableSchema{
		Columns: []schema.ColumnSchema{{Name: "org_id", Type: "BIGINT"}, {Name: "team_id", Type: "BIGINT"}},
		ForeignKeys: []schema.ForeignKeySchema{
			{ColumnName: "org_id", ReferencedTable: "org", ReferencedColumn: "id", OnDelete: schema.OnDeleteSetNull},
			{ColumnName: "team_id", ReferencedTable: "team", ReferencedColumn: "id", OnDelete: schema.OnDeleteCascade},
		},
	}

	out := Diff("sample", old, new_)
	assert.Contains(t, out, "ALTER TABLE sample DROP CONSTRAINT fk_sample_org_id;")
	assert.Contains(t, out, "ALTER TABLE sample ADD CONSTRAINT fk_sample_org_id FOREIGN KEY (org_id) REFERENCES org(id) ON DELETE SET NULL;")
	assert.Contains(t, out, "ALTER TABLE sample ADD CONSTRAINT fk_sample_team_id FOREIGN KEY (team_id) REFERENCES team(id) ON DELETE CASCADE;")
	assert.Contains(t, out, "ALTER TABLE sample DROP CONSTRAINT fk_sample_dept_id;")
}

func TestDiffNowCaseFolding(t *testing.T) {
	old := schema.TableSchema{Columns: []schema.ColumnSchema{{Name: "created_at", Type: "TIMESTAMP", HasDefault: true, DefaultValue: "now()"}}}
	new_ := schema.TableSchema{Columns: []schema.ColumnSchema{{Name: "created_at", Type: "TIMESTAMP", HasDefault: true, DefaultValue: "NOW()"}}}
	assert.Equal(t, "", Diff("sample", old, new_))
}
