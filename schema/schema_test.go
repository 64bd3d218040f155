package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() TableSchema {
	return TableSchema{
		Name: "users",
		Columns: []ColumnSchema{
			{Name: "id", Type: "BIGSERIAL", IsPrimaryKey: true, Identity: true},
			{Name: "email", Type: "VARCHAR(255)", Unique: true},
		},
		Indexes: []IndexSchema{
			{Name: "idx_users_email", Columns: []string{"email"}, Unique: true},
		},
		ForeignKeys: []ForeignKeySchema{
			{ColumnName: "org_id", ReferencedTable: "orgs", ReferencedColumn: "id", OnDelete: OnDeleteCascade},
		},
	}
}

func TestColumnNames(t *testing.T) {
	table := sampleTable()
	assert.Equal(t, []string{"id", "email"}, table.ColumnNames())
}

func TestColumnByName(t *testing.T) {
	table := sampleTable()

	col, ok := table.ColumnByName("email")
	assert.True(t, ok)
	assert.Equal(t, "VARCHAR(255)", col.Type)

	_, ok = table.ColumnByName("missing")
	assert.False(t, ok)
}

func TestHasColumn(t *testing.T) {
	table := sampleTable()
	assert.True(t, table.HasColumn("id"))
	assert.False(t, table.HasColumn("nope"))
}

func TestPrimaryKeyColumnSingle(t *testing.T) {
	table := sampleTable()
	pk, ok := table.PrimaryKeyColumn()
	assert.True(t, ok)
	assert.Equal(t, "id", pk.Name)
}

func TestPrimaryKeyColumnComposite(t *testing.T) {
	table := TableSchema{
		Columns: []ColumnSchema{
			{Name: "a", IsPrimaryKey: false},
			{Name: "b", IsPrimaryKey: false},
		},
	}
	_, ok := table.PrimaryKeyColumn()
	assert.False(t, ok)
}

func TestPrimaryKeyColumnNone(t *testing.T) {
	table := TableSchema{Columns: []ColumnSchema{{Name: "a"}}}
	_, ok := table.PrimaryKeyColumn()
	assert.False(t, ok)
}

func TestIndexByName(t *testing.T) {
	table := sampleTable()

	idx, ok := table.IndexByName("idx_users_email")
	assert.True(t, ok)
	assert.True(t, idx.Unique)

	_, ok = table.IndexByName("missing")
	assert.False(t, ok)
}
