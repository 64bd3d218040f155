// Package differ implements the MigrationDiffer: comparing two
// schema.TableSchema values and producing an ordered ALTER-script body.
package differ

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/alc6/dbschemagen/schema"
	"github.com/alc6/dbschemagen/sqlgen"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Diff compares oldSchema against newSchema and returns the ALTER-script
// body for tableName, or "" if normalization shows no differences (the
// caller must then skip writing a file).
func Diff(tableName string, oldSchema, newSchema schema.TableSchema) string {
	oldNorm := normalize(oldSchema)
	newNorm := normalize(newSchema)

	var sections []string
	if s := diffColumns(tableName, oldNorm.Columns, newNorm.Columns); s != "" {
		sections = append(sections, "-- Column changes\n"+s)
	}
	if s := diffIndexes(tableName, oldNorm.Indexes, newNorm.Indexes); s != "" {
		sections = append(sections, "-- Index changes\n"+s)
	}
	if s := diffForeignKeys(tableName, oldNorm.ForeignKeys, newNorm.ForeignKeys); s != "" {
		sections = append(sections, "-- Foreign key changes\n"+s)
	}

	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n")
}

// normalize produces a comparison-ready copy of table: trimmed and
// case-normalized fields, NOW() case-folded, and every slice sorted per the
// documented comparison keys.
func normalize(table schema.TableSchema) schema.TableSchema {
	cols := make([]schema.ColumnSchema, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = schema.ColumnSchema{
			Name:         strings.TrimSpace(c.Name),
			Type:         normalizeType(c.Type),
			Nullable:     c.Nullable,
			Unique:       c.Unique,
			IsPrimaryKey: c.IsPrimaryKey,
			HasDefault:   c.HasDefault,
			DefaultValue: normalizeDefault(c.DefaultValue),
			Identity:     c.Identity,
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })

	idxs := make([]schema.IndexSchema, len(table.Indexes))
	copy(idxs, table.Indexes)
	for i := range idxs {
		idxs[i].Name = strings.TrimSpace(idxs[i].Name)
	}
	sort.Slice(idxs, func(i, j int) bool {
		a, b := idxs[i], idxs[j]
		if len(a.Columns) != len(b.Columns) {
			return len(a.Columns) < len(b.Columns)
		}
		ja, jb := strings.Join(a.Columns, ","), strings.Join(b.Columns, ",")
		if ja != jb {
			return ja < jb
		}
		return a.Name < b.Name
	})

	fks := make([]schema.ForeignKeySchema, len(table.ForeignKeys))
	copy(fks, table.ForeignKeys)
	sort.Slice(fks, func(i, j int) bool { return fks[i].ColumnName < fks[j].ColumnName })

	return schema.TableSchema{Name: table.Name, Columns: cols, Indexes: idxs, ForeignKeys: fks}
}

func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.ToUpper(t)
}

func normalizeDefault(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "now()") {
		return "NOW()"
	}
	return v
}

func diffColumns(table string, oldCols, newCols []schema.ColumnSchema) string {
	oldByName := map[string]schema.ColumnSchema{}
	for _, c := range oldCols {
		oldByName[c.Name] = c
	}
	newByName := map[string]schema.ColumnSchema{}
	for _, c := range newCols {
		newByName[c.Name] = c
	}

	var added, modified, removed []string

	for _, c := range newCols {
		old, existed := oldByName[c.Name]
		if !existed {
			added = append(added, addColumnSQL(table, c))
			continue
		}
		if m := modifyColumnSQL(table, old, c); m != "" {
			modified = append(modified, m)
		}
	}

	for _, c := range oldCols {
		if _, stillPresent := newByName[c.Name]; stillPresent {
			continue
		}
		if c.IsPrimaryKey {
			continue
		}
		removed = append(removed,
			fmt.Sprintf("-- WARNING: Column '%s' was removed from entity\n-- Consider: ALTER TABLE %s DROP COLUMN %s;", c.Name, table, c.Name))
	}

	var b strings.Builder
	for _, s := range added {
		b.WriteString(s + "\n")
	}
	for _, s := range modified {
		b.WriteString(s + "\n")
	}
	for _, s := range removed {
		b.WriteString(s + "\n")
	}
	return b.String()
}

func addColumnSQL(table string, c schema.ColumnSchema) string {
	var tail []string
	if !c.Nullable {
		tail = append(tail, "NOT NULL")
	}
	if c.Unique {
		tail = append(tail, "UNIQUE")
	}
	if c.HasDefault {
		tail = append(tail, "DEFAULT "+c.DefaultValue)
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, c.Name, c.Type)
	if len(tail) > 0 {
		stmt += " " + strings.Join(tail, " ")
	}
	return stmt + ";"
}

func modifyColumnSQL(table string, old, new schema.ColumnSchema) string {
	if old == new {
		return ""
	}
	var b strings.Builder

	if old.Type != new.Type {
		fmt.Fprintf(&b, "ALTER TABLE %s ALTER COLUMN %s TYPE %s;\n", table, new.Name, new.Type)
	}
	if old.Nullable != new.Nullable {
		if new.Nullable {
			fmt.Fprintf(&b, "ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;\n", table, new.Name)
		} else {
			fmt.Fprintf(&b, "ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;\n", table, new.Name)
		}
	}
	if old.Unique != new.Unique {
		constraint := fmt.Sprintf("uq_%s_%s", table, new.Name)
		if new.Unique {
			fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);\n", table, constraint, new.Name)
		} else {
			fmt.Fprintf(&b, "ALTER TABLE %s DROP CONSTRAINT %s;\n", table, constraint)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func diffIndexes(table string, oldIdx, newIdx []schema.IndexSchema) string {
	key := func(i schema.IndexSchema) string { return strings.Join(i.Columns, ",") }

	oldByKey := map[string]schema.IndexSchema{}
	for _, i := range oldIdx {
		oldByKey[key(i)] = i
	}
	newByKey := map[string]schema.IndexSchema{}
	for _, i := range newIdx {
		newByKey[key(i)] = i
	}

	var added, removed []string
	for _, i := range newIdx {
		if _, ok := oldByKey[key(i)]; !ok {
			unique := ""
			if i.Unique {
				unique = "UNIQUE "
			}
			added = append(added, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);", unique, i.Name, table, strings.Join(i.Columns, ", ")))
		}
	}
	for _, i := range oldIdx {
		if _, ok := newByKey[key(i)]; !ok {
			removed = append(removed, fmt.Sprintf("DROP INDEX IF EXISTS %s;", i.Name))
		}
	}

	var b strings.Builder
	for _, s := range added {
		b.WriteString(s + "\n")
	}
	for _, s := range removed {
		b.WriteString(s + "\n")
	}
	return b.String()
}

func diffForeignKeys(table string, oldFks, newFks []schema.ForeignKeySchema) string {
	oldByCol := map[string]schema.ForeignKeySchema{}
	for _, fk := range oldFks {
		oldByCol[fk.ColumnName] = fk
	}
	newByCol := map[string]schema.ForeignKeySchema{}
	for _, fk := range newFks {
		newByCol[fk.ColumnName] = fk
	}

	var stmts []string
	for _, fk := range newFks {
		old, existed := oldByCol[fk.ColumnName]
		name := sqlgen.ConstraintName(table, fk)
		if !existed {
			stmts = append(stmts, addForeignKeySQL(table, name, fk))
			continue
		}
		if old.ReferencedTable != fk.ReferencedTable || old.ReferencedColumn != fk.ReferencedColumn || old.OnDelete != fk.OnDelete {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", table, name))
			stmts = append(stmts, addForeignKeySQL(table, name, fk))
		}
	}
	for _, fk := range oldFks {
		if _, stillPresent := newByCol[fk.ColumnName]; !stillPresent {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", table, sqlgen.ConstraintName(table, fk)))
		}
	}

	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s + "\n")
	}
	return b.String()
}

func addForeignKeySQL(table, name string, fk schema.ForeignKeySchema) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s;",
		table, name, fk.ColumnName, fk.ReferencedTable, fk.ReferencedColumn, fk.OnDelete)
}
