package projector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alc6/dbschemagen/dialect"
	"github.com/alc6/dbschemagen/entity"
	"github.com/alc6/dbschemagen/schema"
)

func sampleUserDescriptor() entity.Descriptor {
	return entity.Descriptor{
		Name:        "User",
		PackagePath: "com.example.accounts",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedUUID},
			{Name: "email", Kind: entity.KindPlain, LogicalType: dialect.TypeString, Nullable: false, Unique: true},
			{Name: "createdAt", Kind: entity.KindPlain, LogicalType: dialect.TypeDateTime, Nullable: true},
		},
	}
}

func TestTableNameDefaultsToSnakeCase(t *testing.T) {
	d := entity.Descriptor{Name: "UserAccount"}
	assert.Equal(t, "user_account", TableName(d))
}

func TestTableNameExplicitOverride(t *testing.T) {
	d := entity.Descriptor{Name: "UserAccount", Table: "accounts"}
	assert.Equal(t, "accounts", TableName(d))
}

func TestPartitionFromPackagePath(t *testing.T) {
	d := entity.Descriptor{PackagePath: "com.example.accounts"}
	assert.Equal(t, "accounts", Partition(d))
}

func TestPartitionExplicitOverride(t *testing.T) {
	d := entity.Descriptor{Schema: "Billing"}
	assert.Equal(t, "billing", Partition(d))
}

func TestProjectBasicEntity(t *testing.T) {
	d := sampleUserDescriptor()
	p := New(dialect.Postgres, dialect.UUIDv7, map[string]entity.Descriptor{d.Name: d})

	table, collateral, err := p.Project(d)
	require.NoError(t, err)

	assert.Equal(t, "user", table.Name)
	assert.True(t, collateral.NeedsUUIDSetup)
	assert.Equal(t, "UUID", collateral.PrimaryKeyType)

	idCol, ok := table.ColumnByName("id")
	require.True(t, ok)
	assert.True(t, idCol.IsPrimaryKey)
	assert.Equal(t, "public.uuid_generate_v7()", idCol.DefaultValue)

	emailCol, ok := table.ColumnByName("email")
	require.True(t, ok)
	assert.False(t, emailCol.Nullable)
	assert.True(t, emailCol.Unique)

	createdCol, ok := table.ColumnByName("created_at")
	require.True(t, ok)
	assert.True(t, createdCol.HasDefault)
	assert.Equal(t, "CURRENT_TIMESTAMP", createdCol.DefaultValue)
}

func TestProjectIdentityPrimaryKeyNoUUIDSetup(t *testing.T) {
	d := entity.Descriptor{
		Name: "Widget",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
		},
	}
	p := New(dialect.Postgres, dialect.UUIDv4, map[string]entity.Descriptor{d.Name: d})

	table, collateral, err := p.Project(d)
	require.NoError(t, err)
	assert.False(t, collateral.NeedsUUIDSetup)

	col, ok := table.ColumnByName("id")
	require.True(t, ok)
	assert.True(t, col.Identity)
	assert.Equal(t, "BIGSERIAL", col.Type)
}

func TestProjectToOneRelationDerivesFKType(t *testing.T) {
	org := entity.Descriptor{
		Name: "Org",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedUUID},
		},
	}
	user := entity.Descriptor{
		Name: "User",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
			{Name: "org", Kind: entity.KindToOne, Join: &entity.JoinInfo{ReferencedEntity: "Org"}},
		},
	}
	byName := map[string]entity.Descriptor{"Org": org, "User": user}
	p := New(dialect.Postgres, dialect.UUIDv4, byName)

	table, _, err := p.Project(user)
	require.NoError(t, err)

	col, ok := table.ColumnByName("org_id")
	require.True(t, ok)
	assert.Equal(t, "UUID", col.Type)
	assert.True(t, col.Nullable)

	require.Len(t, table.ForeignKeys, 1)
	fk := table.ForeignKeys[0]
	assert.Equal(t, "org_id", fk.ColumnName)
	assert.Equal(t, "org", fk.ReferencedTable)
	assert.Equal(t, schema.OnDeleteSetNull, fk.OnDelete)
}

func TestProjectToOneUsesReferencedEntityTableOverride(t *testing.T) {
	org := entity.Descriptor{
		Name:  "Org",
		Table: "organizations",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
		},
	}
	user := entity.Descriptor{
		Name: "User",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
			{Name: "org", Kind: entity.KindToOne, Join: &entity.JoinInfo{ReferencedEntity: "Org"}},
		},
	}
	byName := map[string]entity.Descriptor{"Org": org, "User": user}
	p := New(dialect.Postgres, dialect.UUIDv4, byName)

	table, _, err := p.Project(user)
	require.NoError(t, err)

	require.Len(t, table.ForeignKeys, 1)
	assert.Equal(t, "organizations", table.ForeignKeys[0].ReferencedTable)
}

func TestProjectToOneNonNullableUsesCascade(t *testing.T) {
	org := entity.Descriptor{
		Name:   "Org",
		Fields: []entity.Field{{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity}},
	}
	user := entity.Descriptor{
		Name: "User",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
			{Name: "org", Kind: entity.KindToOne, Join: &entity.JoinInfo{ReferencedEntity: "Org", HasNullable: true, Nullable: false}},
		},
	}
	byName := map[string]entity.Descriptor{"Org": org, "User": user}
	p := New(dialect.Postgres, dialect.UUIDv4, byName)

	table, _, err := p.Project(user)
	require.NoError(t, err)
	assert.Equal(t, schema.OnDeleteCascade, table.ForeignKeys[0].OnDelete)
}

func TestProjectCyclicToOneRelationsAreBenign(t *testing.T) {
	a := entity.Descriptor{
		Name: "A",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
			{Name: "b", Kind: entity.KindToOne, Join: &entity.JoinInfo{ReferencedEntity: "B"}},
		},
	}
	b := entity.Descriptor{
		Name: "B",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
			{Name: "a", Kind: entity.KindToOne, Join: &entity.JoinInfo{ReferencedEntity: "A"}},
		},
	}
	byName := map[string]entity.Descriptor{"A": a, "B": b}
	p := New(dialect.Postgres, dialect.UUIDv4, byName)

	_, _, err := p.Project(a)
	assert.NoError(t, err)
	_, _, err = p.Project(b)
	assert.NoError(t, err)
}

func TestProjectEmbeddedFieldsFlatten(t *testing.T) {
	d := entity.Descriptor{
		Name: "Order",
		Fields: []entity.Field{
			{
				Name: "address",
				Kind: entity.KindEmbedded,
				Embedded: &entity.EmbeddedInfo{
					Fields: []entity.Field{
						{Name: "street", Kind: entity.KindPlain, LogicalType: dialect.TypeString, Nullable: true},
						{Name: "city", Kind: entity.KindPlain, LogicalType: dialect.TypeString, Nullable: true},
					},
					AttributeOverrides: map[string]string{"city": "town"},
				},
			},
		},
	}
	p := New(dialect.Postgres, dialect.UUIDv4, map[string]entity.Descriptor{d.Name: d})

	table, _, err := p.Project(d)
	require.NoError(t, err)
	assert.True(t, table.HasColumn("address_street"))
	assert.True(t, table.HasColumn("town"))
}

func TestProjectToManyFieldsSkipped(t *testing.T) {
	d := entity.Descriptor{
		Name: "User",
		Fields: []entity.Field{
			{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity},
			{Name: "orders", Kind: entity.KindToMany},
		},
	}
	p := New(dialect.Postgres, dialect.UUIDv4, map[string]entity.Descriptor{d.Name: d})

	table, _, err := p.Project(d)
	require.NoError(t, err)
	assert.Len(t, table.Columns, 1)
}

func TestProjectHeuristicIndexOnEmailColumn(t *testing.T) {
	d := sampleUserDescriptor()
	p := New(dialect.Postgres, dialect.UUIDv7, map[string]entity.Descriptor{d.Name: d})

	table, _, err := p.Project(d)
	require.NoError(t, err)

	idx, ok := table.IndexByName("idx_user_email")
	require.True(t, ok)
	assert.Equal(t, []string{"email"}, idx.Columns)
}

func TestProjectExplicitIndexSuppressesHeuristic(t *testing.T) {
	d := sampleUserDescriptor()
	d.Indexes = []entity.IndexDecl{{Name: "ux_email", Columns: []string{"email"}, Unique: true}}
	p := New(dialect.Postgres, dialect.UUIDv7, map[string]entity.Descriptor{d.Name: d})

	table, _, err := p.Project(d)
	require.NoError(t, err)

	_, ok := table.IndexByName("idx_user_email")
	assert.False(t, ok)
	ux, ok := table.IndexByName("ux_email")
	assert.True(t, ok)
	assert.True(t, ux.Unique)
}

func TestProjectUnknownFieldKindErrors(t *testing.T) {
	d := entity.Descriptor{
		Name:   "Broken",
		Fields: []entity.Field{{Name: "x", Kind: entity.FieldKind("bogus")}},
	}
	p := New(dialect.Postgres, dialect.UUIDv4, map[string]entity.Descriptor{d.Name: d})

	_, _, err := p.Project(d)
	assert.Error(t, err)
}

func TestProjectMariaDBUUIDUsesCharType(t *testing.T) {
	d := sampleUserDescriptor()
	p := New(dialect.MariaDB, dialect.UUIDv4, map[string]entity.Descriptor{d.Name: d})

	table, collateral, err := p.Project(d)
	require.NoError(t, err)
	assert.False(t, collateral.NeedsUUIDSetup)

	col, ok := table.ColumnByName("id")
	require.True(t, ok)
	assert.Equal(t, "CHAR(36)", col.Type)
	assert.Equal(t, "(UUID())", col.DefaultValue)
}
