package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{"POSTGRES", Postgres, false},
		{"postgres", Postgres, false},
		{"MariaDB", MariaDB, false},
		{"mariadb", MariaDB, false},
		{"oracle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDialect(tt.input)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseUUIDPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    UUIDPolicy
		wantErr bool
	}{
		{"V4", UUIDv4, false},
		{"v7", UUIDv7, false},
		{"V9", "", true},
	}

	for _, tt := range tests {
		got, err := ParseUUIDPolicy(tt.input)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDialectValid(t *testing.T) {
	assert.True(t, Postgres.Valid())
	assert.True(t, MariaDB.Valid())
	assert.False(t, Dialect("SQLITE").Valid())
}

func TestUUIDPolicyValid(t *testing.T) {
	assert.True(t, UUIDv4.Valid())
	assert.True(t, UUIDv7.Valid())
	assert.False(t, UUIDPolicy("V9").Valid())
}
