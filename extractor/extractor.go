// Package extractor implements the SqlExtractor: parsing SQL files already
// emitted to a partition directory back into a schema.TableSchema. Parsing
// is deliberately narrow and regex-based — it targets the exact dialect
// SqlEmitter produces, plus reasonable human edits (comments, whitespace),
// not arbitrary SQL.
package extractor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/alc6/dbschemagen/schema"
)

var (
	primaryKeyRe = regexp.MustCompile(`(?i)PRIMARY\s+KEY`)
	notNullRe    = regexp.MustCompile(`(?i)NOT\s+NULL`)
	uniqueRe     = regexp.MustCompile(`(?i)UNIQUE`)
	defaultRe    = regexp.MustCompile(`(?i)DEFAULT`)

	compositePKRe = regexp.MustCompile(`(?i)PRIMARY\s+KEY\s*\(([^)]*)\)`)

	indexRe = regexp.MustCompile(`(?is)CREATE\s+(UNIQUE\s+)?INDEX\s+(\w+)\s+ON\s+(\w+)\s*\(([^)]*)\)\s*;`)
	fkRe    = regexp.MustCompile(`(?is)ALTER\s+TABLE\s+(\w+)\s+ADD\s+CONSTRAINT\s+\w+\s+FOREIGN\s+KEY\s*\((\w+)\)\s+REFERENCES\s+(\w+)\s*\((\w+)\)\s+ON\s+DELETE\s+(CASCADE|SET\s+NULL|RESTRICT|NO\s+ACTION)`)

	createTableNameRe = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(\w+)`)
	alterTableNameRe  = regexp.MustCompile(`(?i)ALTER\s+TABLE\s+(\w+)`)
)

// LoadTableSchema parses schemaDir's SQL files to recover tableName's
// previously emitted TableSchema. Returns (nil, nil) when the table isn't
// found, or when parsing fails — per the spec, a parse failure is a
// recovered, logged condition, never fatal.
func LoadTableSchema(schemaDir, tableName string) (*schema.TableSchema, error) {
	files, err := sqlFiles(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sql files in %s: %w", schemaDir, err)
	}

	createRe, err := createTableRegex(tableName)
	if err != nil {
		return nil, err
	}

	var candidates []string
	contents := map[string]string{}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			slog.Warn("failed to read sql file", "file", f, "error", err)
			continue
		}
		content := string(raw)
		contents[f] = content
		if createRe.MatchString(content) {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Strings(candidates)
	chosen := candidates[len(candidates)-1]

	table, err := parseCreateTable(contents[chosen], tableName)
	if err != nil {
		slog.Warn("failed to parse create table", "file", chosen, "table", tableName, "error", err)
		return nil, nil
	}

	indexes, err := findIndexes(files, tableName)
	if err != nil {
		slog.Warn("failed to parse indexes", "table", tableName, "error", err)
	} else {
		table.Indexes = indexes
	}

	fks, err := findForeignKeys(files, tableName)
	if err != nil {
		slog.Warn("failed to parse foreign keys", "table", tableName, "error", err)
	} else {
		table.ForeignKeys = fks
	}

	return table, nil
}

// GetExistingTables returns the union of table names mentioned by any
// CREATE TABLE, ALTER TABLE, or CREATE [UNIQUE] INDEX ... ON ... statement
// in any *.sql file under schemaDir.
func GetExistingTables(schemaDir string) (map[string]bool, error) {
	files, err := sqlFiles(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sql files in %s: %w", schemaDir, err)
	}

	tables := map[string]bool{}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			slog.Warn("failed to read sql file", "file", f, "error", err)
			continue
		}
		content := string(raw)

		for _, m := range createTableNameRe.FindAllStringSubmatch(content, -1) {
			tables[m[1]] = true
		}
		for _, m := range alterTableNameRe.FindAllStringSubmatch(content, -1) {
			tables[m[1]] = true
		}
		for _, m := range indexRe.FindAllStringSubmatch(content, -1) {
			tables[m[3]] = true
		}
	}
	return tables, nil
}

func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func createTableRegex(tableName string) (*regexp.Regexp, error) {
	pattern := fmt.Sprintf(`(?is)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?%s\s*\(`, regexp.QuoteMeta(tableName))
	return regexp.Compile(pattern)
}

// parseCreateTable extracts the column/constraint body of tableName's
// CREATE TABLE statement from content and tokenizes it into a TableSchema.
func parseCreateTable(content, tableName string) (*schema.TableSchema, error) {
	createRe, err := createTableRegex(tableName)
	if err != nil {
		return nil, err
	}
	loc := createRe.FindStringIndex(content)
	if loc == nil {
		return nil, fmt.Errorf("no CREATE TABLE statement found for %s", tableName)
	}

	openIdx := loc[1] - 1 // index of the opening '('
	body, err := balancedParenBody(content, openIdx)
	if err != nil {
		return nil, err
	}

	columns, err := parseColumns(body)
	if err != nil {
		return nil, err
	}

	applyCompositePK(body, columns)

	return &schema.TableSchema{Name: tableName, Columns: columns}, nil
}

// balancedParenBody returns the text strictly between the '(' at openIdx
// and its matching ')'.
func balancedParenBody(content string, openIdx int) (string, error) {
	if openIdx < 0 || openIdx >= len(content) || content[openIdx] != '(' {
		return "", fmt.Errorf("expected '(' at offset %d", openIdx)
	}
	depth := 0
	for i := openIdx; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return content[openIdx+1 : i], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced parentheses starting at offset %d", openIdx)
}

// splitTopLevel splits s on commas that occur at paren-depth 0.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// parseColumns follows the spec's line-based algorithm: split into lines,
// discard empty lines and lines beginning with "--", skip lines beginning
// with PRIMARY KEY/FOREIGN KEY/CONSTRAINT, and parse each surviving line as
// one column. A comment line must never swallow the definition on the line
// after it, which is why this splits on newlines before anything else;
// splitTopLevel is still applied within a surviving line in case more than
// one column definition was packed onto it.
func parseColumns(body string) ([]schema.ColumnSchema, error) {
	var columns []schema.ColumnSchema
	for _, rawLine := range strings.Split(body, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "--") {
			continue
		}
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "PRIMARY KEY") || strings.HasPrefix(upper, "FOREIGN KEY") || strings.HasPrefix(upper, "CONSTRAINT") {
			continue
		}

		for _, raw := range splitTopLevel(strings.TrimSuffix(line, ",")) {
			def := strings.TrimSpace(raw)
			if def == "" {
				continue
			}

			fields := strings.Fields(def)
			if len(fields) < 2 {
				continue
			}
			name := fields[0]
			typ := fields[1]
			tail := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(def, name)), typ))

			col := schema.ColumnSchema{
				Name:         name,
				Type:         typ,
				IsPrimaryKey: primaryKeyRe.MatchString(tail),
				Unique:       uniqueRe.MatchString(tail),
			}
			col.Nullable = !notNullRe.MatchString(tail)
			if col.IsPrimaryKey {
				col.Nullable = false
			}
			if defaultVal, ok := extractDefault(tail); ok {
				col.HasDefault = true
				col.DefaultValue = defaultVal
			}
			columns = append(columns, col)
		}
	}
	return columns, nil
}

// extractDefault runs the DEFAULT-expression state machine described in
// the spec: starting at the first non-space after "DEFAULT", it recognizes
// a single-quoted literal, a number, an identifier optionally followed by a
// balanced parenthesized argument list, or a bare parenthesized expression.
func extractDefault(tail string) (string, bool) {
	loc := defaultRe.FindStringIndex(tail)
	if loc == nil {
		return "", false
	}
	rest := tail[loc[1]:]
	i := 0
	for i < len(rest) && rest[i] == ' ' {
		i++
	}
	rest = rest[i:]
	if rest == "" {
		return "", false
	}

	switch {
	case rest[0] == '\'':
		return scanQuotedLiteral(rest)
	case rest[0] == '-' || (rest[0] >= '0' && rest[0] <= '9'):
		return scanNumber(rest)
	case isIdentStart(rest[0]):
		return scanIdentifierExpr(rest)
	case rest[0] == '(':
		return scanParenExpr(rest)
	default:
		return "", false
	}
}

func scanQuotedLiteral(s string) (string, bool) {
	if len(s) == 0 || s[0] != '\'' {
		return "", false
	}
	i := 1
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			i += 2
			continue
		}
		if s[i] == '\'' {
			return s[:i+1], true
		}
		i++
	}
	return "", false
}

func scanNumber(s string) (string, bool) {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return "", false
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	return s[:i], true
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9') || b == '.'
}

func scanIdentifierExpr(s string) (string, bool) {
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == 0 {
		return "", false
	}
	if i < len(s) && s[i] == '(' {
		argEnd, ok := findMatchingParen(s, i)
		if !ok {
			return s[:i], true
		}
		return s[:argEnd+1], true
	}
	// Trim the remainder of the line (terminating ';' or next clause) off
	// a bare identifier like a keyword default.
	return strings.TrimRight(s[:i], ";"), true
}

func scanParenExpr(s string) (string, bool) {
	end, ok := findMatchingParen(s, 0)
	if !ok {
		return "", false
	}
	return s[:end+1], true
}

func findMatchingParen(s string, openIdx int) (int, bool) {
	if openIdx >= len(s) || s[openIdx] != '(' {
		return 0, false
	}
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// applyCompositePK implements the composite-PK extractor rule: a
// table-level PRIMARY KEY (a, b, ...) clause with exactly one column marks
// that column as the primary key; with more than one, no column is marked
// (compound-PK semantics).
func applyCompositePK(body string, columns []schema.ColumnSchema) {
	m := compositePKRe.FindStringSubmatch(body)
	if m == nil {
		return
	}
	var cols []string
	for _, c := range strings.Split(m[1], ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) != 1 {
		for i := range columns {
			columns[i].IsPrimaryKey = false
		}
		return
	}
	for i := range columns {
		if columns[i].Name == cols[0] {
			columns[i].IsPrimaryKey = true
			columns[i].Nullable = false
		}
	}
}

func findIndexes(files []string, tableName string) ([]schema.IndexSchema, error) {
	seen := map[string]bool{}
	var indexes []schema.IndexSchema
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range indexRe.FindAllStringSubmatch(string(raw), -1) {
			unique, name, table, colList := m[1] != "", m[2], m[3], m[4]
			if !strings.EqualFold(table, tableName) {
				continue
			}
			if seen[name] {
				continue
			}
			seen[name] = true

			var cols []string
			for _, c := range strings.Split(colList, ",") {
				c = strings.TrimSpace(c)
				if c != "" {
					cols = append(cols, c)
				}
			}
			indexes = append(indexes, schema.IndexSchema{Name: name, Columns: cols, Unique: unique})
		}
	}
	return indexes, nil
}

func findForeignKeys(files []string, tableName string) ([]schema.ForeignKeySchema, error) {
	var fks []schema.ForeignKeySchema
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for _, m := range fkRe.FindAllStringSubmatch(string(raw), -1) {
			table, col, refTable, refCol, onDelete := m[1], m[2], m[3], m[4], m[5]
			if !strings.EqualFold(table, tableName) {
				continue
			}
			onDelete = strings.ToUpper(strings.Join(strings.Fields(onDelete), " "))
			fks = append(fks, schema.ForeignKeySchema{
				ColumnName:       col,
				ReferencedTable:  refTable,
				ReferencedColumn: refCol,
				OnDelete:         onDelete,
			})
		}
	}
	return fks, nil
}
