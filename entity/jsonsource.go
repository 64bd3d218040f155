package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alc6/dbschemagen/dialect"
)

// JSONDescriptorSource reads entity descriptors from one JSON file, or from
// every *.json file under a directory (each file holding one partition's
// worth of entities). It is the concrete facade this repository ships for
// the "read-only reflection-like" annotation source the design notes
// describe as an external collaborator — callers embedding this module
// with real struct-tag reflection supply their own DescriptorSource
// instead.
type JSONDescriptorSource struct {
	// Path is a file or a directory.
	Path string
}

// NewJSONDescriptorSource constructs a source rooted at path.
func NewJSONDescriptorSource(path string) *JSONDescriptorSource {
	return &JSONDescriptorSource{Path: path}
}

// Discover implements DescriptorSource.
func (s *JSONDescriptorSource) Discover(ctx context.Context) ([]Descriptor, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("entity discovery failed: %w", err)
	}

	var files []string
	if info.IsDir() {
		err := filepath.WalkDir(s.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(d.Name(), ".json") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("entity discovery failed: %w", err)
		}
	} else {
		files = []string{s.Path}
	}

	var descriptors []Descriptor
	for _, f := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Debug("reading entity descriptor file", "file", f)
		docs, err := loadDescriptorFile(f)
		if err != nil {
			return nil, fmt.Errorf("entity discovery failed: %w", err)
		}
		descriptors = append(descriptors, docs...)
	}

	slog.Info("discovered entities", "count", len(descriptors))
	return descriptors, nil
}

// jsonDescriptor mirrors the wire format described in SPEC_FULL.md §9.
type jsonDescriptor struct {
	Name    string          `json:"name"`
	Table   string          `json:"table,omitempty"`
	Schema  string          `json:"schema,omitempty"`
	Package string          `json:"package,omitempty"`
	Indexes []jsonIndex     `json:"indexes,omitempty"`
	Fields  []jsonField     `json:"fields"`
}

type jsonIndex struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

type jsonField struct {
	Name         string        `json:"name"`
	Kind         string        `json:"kind"`
	ColumnType   string        `json:"columnType,omitempty"`
	Column       string        `json:"column,omitempty"`
	Length       *int          `json:"length,omitempty"`
	Precision    *int          `json:"precision,omitempty"`
	Scale        *int          `json:"scale,omitempty"`
	Nullable     *bool         `json:"nullable,omitempty"`
	Unique       bool          `json:"unique,omitempty"`
	IsEnum       bool          `json:"isEnum,omitempty"`
	Generated    string        `json:"generated,omitempty"`
	Default      *string       `json:"default,omitempty"`
	Override     string        `json:"columnDefinitionOverride,omitempty"`
	Join         *jsonJoin     `json:"join,omitempty"`
	Embedded     *jsonEmbedded `json:"embedded,omitempty"`
}

type jsonJoin struct {
	Name             string `json:"name,omitempty"`
	Nullable         *bool  `json:"nullable,omitempty"`
	ReferencedEntity string `json:"referencedEntity"`
	ForeignKeyName   string `json:"foreignKeyName,omitempty"`
}

type jsonEmbedded struct {
	Fields             []jsonField       `json:"fields"`
	AttributeOverrides map[string]string `json:"attributeOverrides,omitempty"`
}

func loadDescriptorFile(path string) ([]Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var docs []jsonDescriptor
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result := make([]Descriptor, 0, len(docs))
	for _, doc := range docs {
		d, err := convertDescriptor(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: entity %q: %w", path, doc.Name, err)
		}
		result = append(result, d)
	}
	return result, nil
}

func convertDescriptor(doc jsonDescriptor) (Descriptor, error) {
	fields := make([]Field, 0, len(doc.Fields))
	for _, jf := range doc.Fields {
		f, err := convertField(jf)
		if err != nil {
			return Descriptor{}, err
		}
		fields = append(fields, f)
	}

	indexes := make([]IndexDecl, 0, len(doc.Indexes))
	for _, ji := range doc.Indexes {
		indexes = append(indexes, IndexDecl{Name: ji.Name, Columns: ji.Columns, Unique: ji.Unique})
	}

	return Descriptor{
		Name:        doc.Name,
		Table:       doc.Table,
		Schema:      strings.ToLower(doc.Schema),
		PackagePath: doc.Package,
		Indexes:     indexes,
		Fields:      fields,
	}, nil
}

func convertField(jf jsonField) (Field, error) {
	kind := FieldKind(jf.Kind)
	switch kind {
	case KindID, KindToOne, KindToMany, KindEmbedded, KindPlain:
	default:
		return Field{}, fmt.Errorf("field %q: unknown kind %q", jf.Name, jf.Kind)
	}

	f := Field{
		Name:        jf.Name,
		Kind:        kind,
		Column:      jf.Column,
		LogicalType: dialect.LogicalType(jf.ColumnType),
		Unique:      jf.Unique,
	}
	f.Meta.IsEnum = jf.IsEnum
	f.Meta.ColumnDefinitionOverride = jf.Override
	if jf.Length != nil {
		f.Meta.HasLength, f.Meta.Length = true, *jf.Length
	}
	if jf.Precision != nil {
		f.Meta.HasPrecision, f.Meta.Precision = true, *jf.Precision
	}
	if jf.Scale != nil {
		f.Meta.HasScale, f.Meta.Scale = true, *jf.Scale
	}
	if jf.Nullable != nil {
		f.Nullable = *jf.Nullable
	} else {
		f.Nullable = true
	}
	if jf.Default != nil {
		f.HasDefault, f.DefaultValue = true, *jf.Default
	}
	if jf.Generated != "" {
		f.Generated = GeneratedStrategy(jf.Generated)
	}

	if jf.Join != nil {
		join := &JoinInfo{
			Name:             jf.Join.Name,
			ReferencedEntity: jf.Join.ReferencedEntity,
			ForeignKeyName:   jf.Join.ForeignKeyName,
		}
		if jf.Join.Nullable != nil {
			join.HasNullable, join.Nullable = true, *jf.Join.Nullable
		}
		f.Join = join
	}

	if jf.Embedded != nil {
		innerFields := make([]Field, 0, len(jf.Embedded.Fields))
		for _, inner := range jf.Embedded.Fields {
			cf, err := convertField(inner)
			if err != nil {
				return Field{}, err
			}
			innerFields = append(innerFields, cf)
		}
		f.Embedded = &EmbeddedInfo{
			Fields:             innerFields,
			AttributeOverrides: jf.Embedded.AttributeOverrides,
		}
	}

	return f, nil
}
