// Package sqlgen renders schema.TableSchema fragments as SQL text: CREATE
// TABLE, CREATE INDEX, ALTER TABLE ADD CONSTRAINT, and extension-setup SQL.
// All renderers are stateless pure functions over the schema model.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/alc6/dbschemagen/dialect"
	"github.com/alc6/dbschemagen/schema"
)

// EmitCreateTable renders table as a single CREATE TABLE statement, with
// header comments and column cells aligned to the widest name and widest
// type in the table.
func EmitCreateTable(table schema.TableSchema, d dialect.Dialect) string {
	var b strings.Builder

	fmt.Fprintf(&b, "-- create_%s_table\n", table.Name)
	fmt.Fprintf(&b, "-- Entity: %s\n", table.Name)
	fmt.Fprintf(&b, "-- Database: %s\n", d)
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", table.Name)

	nameWidth, typeWidth := 0, 0
	for _, c := range table.Columns {
		nameWidth = max(nameWidth, len(c.Name))
		typeWidth = max(typeWidth, len(c.Type))
	}

	lines := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		line := "    " + fmt.Sprintf("%-*s %-*s", nameWidth, c.Name, typeWidth, c.Type)
		tail := strings.TrimSpace(strings.Join(columnConstraints(c, d), " "))
		if tail != "" {
			line += " " + tail
		} else {
			line = strings.TrimRight(line, " ")
		}
		lines[i] = line
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n")
	return b.String()
}

func columnConstraints(c schema.ColumnSchema, d dialect.Dialect) []string {
	var cs []string
	switch {
	case c.IsPrimaryKey:
		cs = append(cs, "PRIMARY KEY")
	case !c.Nullable:
		cs = append(cs, "NOT NULL")
	}
	if c.Unique && !c.IsPrimaryKey {
		cs = append(cs, "UNIQUE")
	}
	if c.Identity && d == dialect.MariaDB {
		cs = append(cs, "AUTO_INCREMENT")
	}
	if c.HasDefault {
		cs = append(cs, "DEFAULT "+c.DefaultValue)
	}
	return cs
}

// ForeignKeyEmission pairs a foreign key with the table it belongs to, for
// EmitForeignKeys.
type ForeignKeyEmission struct {
	Table string
	FK    schema.ForeignKeySchema
}

// ConstraintName returns the FK's explicit Name override if set, else the
// default fk_<table>_<column> pattern.
func ConstraintName(table string, fk schema.ForeignKeySchema) string {
	if strings.TrimSpace(fk.Name) != "" {
		return fk.Name
	}
	return fmt.Sprintf("fk_%s_%s", table, fk.ColumnName)
}

// EmitForeignKeys renders one ALTER TABLE ... ADD CONSTRAINT ... statement
// per foreign key, in the order given.
func EmitForeignKeys(fks []ForeignKeyEmission) string {
	var b strings.Builder
	for _, e := range fks {
		fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s;\n",
			e.Table, ConstraintName(e.Table, e.FK), e.FK.ColumnName, e.FK.ReferencedTable, e.FK.ReferencedColumn, e.FK.OnDelete)
	}
	return b.String()
}

// IndexEmission pairs an index with the table it belongs to, for EmitIndexes.
type IndexEmission struct {
	Table string
	Index schema.IndexSchema
}

// EmitIndexes renders one CREATE [UNIQUE] INDEX statement per index, in the
// order given.
func EmitIndexes(indexes []IndexEmission) string {
	var b strings.Builder
	for _, e := range indexes {
		unique := ""
		if e.Index.Unique {
			unique = "UNIQUE "
		}
		fmt.Fprintf(&b, "CREATE %sINDEX %s ON %s (%s);\n", unique, e.Index.Name, e.Table, strings.Join(e.Index.Columns, ", "))
	}
	return b.String()
}

// EmitUUIDSetup renders the extension/function bootstrap SQL a UUID-strategy
// primary key needs under the given dialect and policy. MariaDB needs
// nothing — callers should skip writing a file when this returns "".
func EmitUUIDSetup(d dialect.Dialect, policy dialect.UUIDPolicy) string {
	if d == dialect.MariaDB {
		return ""
	}

	if policy == dialect.UUIDv7 {
		return pgUUIDv7Setup
	}
	return `CREATE EXTENSION IF NOT EXISTS "uuid-ossp" SCHEMA public;
`
}

const pgUUIDv7Setup = `CREATE EXTENSION IF NOT EXISTS pgcrypto SCHEMA public;

CREATE OR REPLACE FUNCTION public.uuid_generate_v7()
RETURNS uuid
AS $$
DECLARE
    unix_ts_ms bytea;
    buffer     bytea;
BEGIN
    unix_ts_ms = substring(int8send(floor(extract(epoch FROM clock_timestamp()) * 1000)::bigint) FROM 3);
    buffer = unix_ts_ms || public.gen_random_bytes(10);
    buffer = set_byte(buffer, 6, (get_byte(buffer, 6) & 15) | 112);
    buffer = set_byte(buffer, 8, (get_byte(buffer, 8) & 63) | 128);
    RETURN encode(buffer, 'hex')::uuid;
END
$$
LANGUAGE plpgsql
VOLATILE;
`

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
