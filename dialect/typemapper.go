package dialect

import (
	"fmt"
	"strings"
)

// LogicalType is the abstract, language-agnostic field type the projector
// feeds into the TypeMapper. These mirror the type vocabulary a reflection
// facade over annotated fields would hand back (String, Long, UUID, ...);
// the core never needs to know the original field's concrete type, only
// which bucket it falls into.
type LogicalType string

const (
	TypeString        LogicalType = "String"
	TypeByte          LogicalType = "Byte"
	TypeShort         LogicalType = "Short"
	TypeInt           LogicalType = "Integer"
	TypeLong          LogicalType = "Long"
	TypeFloat         LogicalType = "Float"
	TypeDouble        LogicalType = "Double"
	TypeDecimal       LogicalType = "BigDecimal"
	TypeBoolean       LogicalType = "Boolean"
	TypeDateTime      LogicalType = "LocalDateTime"
	TypeInstant       LogicalType = "Instant"
	TypeDate          LogicalType = "LocalDate"
	TypeTime          LogicalType = "LocalTime"
	TypeZonedDateTime LogicalType = "ZonedDateTime"
	TypeOffsetTime    LogicalType = "OffsetDateTime"
	TypeDuration      LogicalType = "Duration"
	TypePeriod        LogicalType = "Period"
	TypeUUID          LogicalType = "UUID"
	TypeJSON          LogicalType = "JsonNode"
	TypeURL           LogicalType = "URL"
	TypeURI           LogicalType = "URI"
	TypeByteArray     LogicalType = "ByteArray"
)

// ColumnMeta carries the optional sizing/override metadata a column
// declaration may supply alongside its logical type.
type ColumnMeta struct {
	Length                    int  // read only when HasLength is set
	Precision                 int  // read only when HasPrecision is set
	Scale                     int  // read only when HasScale is set
	HasLength                 bool
	HasPrecision              bool
	HasScale                  bool
	ColumnDefinitionOverride  string
	IsEnum                    bool
}

// TypeMapper maps a logical field type plus column metadata to a
// dialect-specific SQL type string. Every logical type MUST resolve to
// something; unknown types fall back to VARCHAR.
type TypeMapper struct {
	Dialect Dialect
}

// NewTypeMapper constructs a TypeMapper bound to one dialect.
func NewTypeMapper(d Dialect) *TypeMapper {
	return &TypeMapper{Dialect: d}
}

// MapType resolves a logical type + metadata pair to a SQL type literal.
func (m *TypeMapper) MapType(logical LogicalType, meta ColumnMeta) string {
	if strings.TrimSpace(meta.ColumnDefinitionOverride) != "" {
		return meta.ColumnDefinitionOverride
	}

	if meta.IsEnum {
		return "VARCHAR(50)"
	}

	switch logical {
	case TypeString:
		return m.varchar(meta, 255)
	case TypeByte:
		if m.Dialect == MariaDB {
			return "TINYINT"
		}
		return "SMALLINT"
	case TypeShort:
		return "SMALLINT"
	case TypeInt:
		if m.Dialect == MariaDB {
			return "INT"
		}
		return "INTEGER"
	case TypeLong:
		return "BIGINT"
	case TypeFloat:
		if m.Dialect == MariaDB {
			return "FLOAT"
		}
		return "REAL"
	case TypeDouble:
		if m.Dialect == MariaDB {
			return "DOUBLE"
		}
		return "DOUBLE PRECISION"
	case TypeDecimal:
		precision := 19
		if meta.HasPrecision {
			precision = meta.Precision
		}
		scale := 2
		if meta.HasScale {
			scale = meta.Scale
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDateTime, TypeInstant:
		if m.Dialect == MariaDB {
			return "DATETIME"
		}
		return "TIMESTAMP"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeZonedDateTime, TypeOffsetTime:
		if m.Dialect == MariaDB {
			return "DATETIME"
		}
		return "TIMESTAMP WITH TIME ZONE"
	case TypeDuration:
		return "BIGINT"
	case TypePeriod:
		return "VARCHAR(50)"
	case TypeUUID:
		if m.Dialect == MariaDB {
			return "CHAR(36)"
		}
		return "UUID"
	case TypeJSON:
		if m.Dialect == MariaDB {
			return "JSON"
		}
		return "JSONB"
	case TypeURL, TypeURI:
		return "VARCHAR(2048)"
	case TypeByteArray:
		if m.Dialect == MariaDB {
			return "BLOB"
		}
		return "BYTEA"
	default:
		return m.varchar(meta, 255)
	}
}

func (m *TypeMapper) varchar(meta ColumnMeta, defaultLength int) string {
	length := defaultLength
	if meta.HasLength {
		length = meta.Length
	}
	return fmt.Sprintf("VARCHAR(%d)", length)
}

// UUIDPrimaryKeyType returns the SQL type used for a UUID-strategy primary
// key column, which is the same as MapType(TypeUUID, ...) but kept as a
// named helper for the projector's primary-key path.
func (m *TypeMapper) UUIDPrimaryKeyType() string {
	return m.MapType(TypeUUID, ColumnMeta{})
}

// IdentityPrimaryKeyType returns the SQL type used for an IDENTITY-strategy
// primary key column (BIGSERIAL on Postgres, BIGINT+AUTO_INCREMENT on
// MariaDB — the AUTO_INCREMENT keyword itself is a column constraint, not
// part of the type, and is added by the emitter).
func (m *TypeMapper) IdentityPrimaryKeyType() string {
	if m.Dialect == MariaDB {
		return "BIGINT"
	}
	return "BIGSERIAL"
}

// UUIDDefaultExpression returns the DEFAULT expression for a UUID primary
// key under the given UUID policy. V7 silently falls back to the V4
// behavior on MariaDB, since MariaDB has no native v7 generator idiom.
func UUIDDefaultExpression(d Dialect, policy UUIDPolicy) string {
	if d == MariaDB {
		return "(UUID())"
	}
	if policy == UUIDv7 {
		return "public.uuid_generate_v7()"
	}
	return "public.uuid_generate_v4()"
}
