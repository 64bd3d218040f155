// Package casing converts identifiers between the camelCase the entity
// descriptors arrive in and the snake_case SQL expects for physical names.
package casing

import "github.com/iancoleman/strcase"

// Snake converts a camelCase or PascalCase identifier to snake_case, e.g.
// "UserID" -> "user_id", "createdAt" -> "created_at".
func Snake(s string) string {
	return strcase.ToSnake(s)
}
