package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapTypeStringDefaultLength(t *testing.T) {
	m := NewTypeMapper(Postgres)
	assert.Equal(t, "VARCHAR(255)", m.MapType(TypeString, ColumnMeta{}))
}

func TestMapTypeStringExplicitLength(t *testing.T) {
	m := NewTypeMapper(Postgres)
	got := m.MapType(TypeString, ColumnMeta{HasLength: true, Length: 50})
	assert.Equal(t, "VARCHAR(50)", got)
}

func TestMapTypeColumnDefinitionOverrideWins(t *testing.T) {
	m := NewTypeMapper(Postgres)
	got := m.MapType(TypeString, ColumnMeta{ColumnDefinitionOverride: "CITEXT"})
	assert.Equal(t, "CITEXT", got)
}

func TestMapTypeEnumFallsBackBeforeLogicalSwitch(t *testing.T) {
	m := NewTypeMapper(Postgres)
	got := m.MapType(TypeLong, ColumnMeta{IsEnum: true})
	assert.Equal(t, "VARCHAR(50)", got)
}

func TestMapTypeDialectVariance(t *testing.T) {
	pg := NewTypeMapper(Postgres)
	maria := NewTypeMapper(MariaDB)

	assert.Equal(t, "INTEGER", pg.MapType(TypeInt, ColumnMeta{}))
	assert.Equal(t, "INT", maria.MapType(TypeInt, ColumnMeta{}))

	assert.Equal(t, "UUID", pg.MapType(TypeUUID, ColumnMeta{}))
	assert.Equal(t, "CHAR(36)", maria.MapType(TypeUUID, ColumnMeta{}))

	assert.Equal(t, "TIMESTAMP", pg.MapType(TypeDateTime, ColumnMeta{}))
	assert.Equal(t, "DATETIME", maria.MapType(TypeDateTime, ColumnMeta{}))

	assert.Equal(t, "JSONB", pg.MapType(TypeJSON, ColumnMeta{}))
	assert.Equal(t, "JSON", maria.MapType(TypeJSON, ColumnMeta{}))
}

func TestMapTypeDecimalPrecisionScale(t *testing.T) {
	m := NewTypeMapper(Postgres)
	assert.Equal(t, "DECIMAL(19,2)", m.MapType(TypeDecimal, ColumnMeta{}))

	got := m.MapType(TypeDecimal, ColumnMeta{HasPrecision: true, Precision: 10, HasScale: true, Scale: 4})
	assert.Equal(t, "DECIMAL(10,4)", got)
}

func TestMapTypeUnknownFallsBackToVarchar(t *testing.T) {
	m := NewTypeMapper(Postgres)
	assert.Equal(t, "VARCHAR(255)", m.MapType(LogicalType("SomethingExotic"), ColumnMeta{}))
}

func TestIdentityPrimaryKeyType(t *testing.T) {
	assert.Equal(t, "BIGSERIAL", NewTypeMapper(Postgres).IdentityPrimaryKeyType())
	assert.Equal(t, "BIGINT", NewTypeMapper(MariaDB).IdentityPrimaryKeyType())
}

func TestUUIDDefaultExpression(t *testing.T) {
	assert.Equal(t, "(UUID())", UUIDDefaultExpression(MariaDB, UUIDv4))
	assert.Equal(t, "(UUID())", UUIDDefaultExpression(MariaDB, UUIDv7))
	assert.Equal(t, "public.uuid_generate_v4()", UUIDDefaultExpression(Postgres, UUIDv4))
	assert.Equal(t, "public.uuid_generate_v7()", UUIDDefaultExpression(Postgres, UUIDv7))
}
