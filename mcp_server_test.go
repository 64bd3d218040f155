package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alc6/dbschemagen/entity"
	"github.com/alc6/dbschemagen/mocks"
	"github.com/alc6/dbschemagen/orchestrator"
)

func TestGenerateSchemaCoreWithDepsWritesFilesAndReportsJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockDescriptorSource(ctrl)
	source.EXPECT().Discover(gomock.Any()).Return([]entity.Descriptor{
		{Name: "Widget", Fields: []entity.Field{{Name: "id", Kind: entity.KindID, Generated: entity.GeneratedIdentity}}},
	}, nil)

	outDir := t.TempDir()
	output, err := generateSchemaCoreWithDeps(context.Background(), source, outDir, "POSTGRES", "V4", "CREATE_ONLY")
	require.NoError(t, err)

	var summary struct {
		TablesSeen   int      `json:"tables_seen"`
		FilesWritten []string `json:"files_written"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.Equal(t, 1, summary.TablesSeen)
	require.Len(t, summary.FilesWritten, 1)
}

func TestGenerateSchemaCoreWithDepsInvalidDialectErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := mocks.NewMockDescriptorSource(ctrl)

	_, err := generateSchemaCoreWithDeps(context.Background(), source, t.TempDir(), "ORACLE", "V4", "CREATE_ONLY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dialect")
}

func TestGenerateSchemaCoreWithDepsInvalidUUIDPolicyErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := mocks.NewMockDescriptorSource(ctrl)

	_, err := generateSchemaCoreWithDeps(context.Background(), source, t.TempDir(), "POSTGRES", "V9", "CREATE_ONLY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid uuid policy")
}

func TestGenerateSchemaCoreWithDepsPropagatesDiscoveryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockDescriptorSource(ctrl)
	source.EXPECT().Discover(gomock.Any()).Return(nil, assertErrorMCP("discovery exploded"))

	_, err := generateSchemaCoreWithDeps(context.Background(), source, t.TempDir(), "POSTGRES", "V4", string(orchestrator.Smart))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate schema")
}

func TestInspectSchemaCoreReturnsRecoveredSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "V202401010001__create_widget_table.sql"), []byte(`
CREATE TABLE widget (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL
);
`), 0o644))

	output, err := inspectSchemaCore(dir, "widget")
	require.NoError(t, err)
	assert.Contains(t, output, `"Name": "widget"`)
	assert.Contains(t, output, `"Name": "name"`)
}

func TestInspectSchemaCoreMissingTableErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := inspectSchemaCore(dir, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

type assertErrorMCP string

func (e assertErrorMCP) Error() string { return string(e) }
