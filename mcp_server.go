package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alc6/dbschemagen/dialect"
	"github.com/alc6/dbschemagen/entity"
	"github.com/alc6/dbschemagen/extractor"
	"github.com/alc6/dbschemagen/orchestrator"
)

// StartMCPServer starts the MCP server exposing generate_schema and
// inspect_schema tools over stdio.
func StartMCPServer() error {
	s := server.NewMCPServer(
		"dbschemagen",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	generateSchemaTool := mcp.NewTool("generate_schema",
		mcp.WithDescription("Run the orchestrator against a descriptor file or directory and an output directory"),
		mcp.WithString("descriptor_path",
			mcp.Required(),
			mcp.Description("Path to an entity descriptor JSON file or directory"),
		),
		mcp.WithString("out_dir",
			mcp.Required(),
			mcp.Description("Output directory for generated SQL migration files"),
		),
		mcp.WithString("dialect",
			mcp.Description("POSTGRES or MARIADB (default: POSTGRES)"),
			mcp.Enum("POSTGRES", "MARIADB"),
		),
		mcp.WithString("uuid",
			mcp.Description("V4 or V7 (default: V4)"),
			mcp.Enum("V4", "V7"),
		),
		mcp.WithString("mode",
			mcp.Description("CREATE_ONLY, ALTER_ONLY, or SMART (default: SMART)"),
			mcp.Enum("CREATE_ONLY", "ALTER_ONLY", "SMART"),
		),
	)

	s.AddTool(generateSchemaTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGenerateSchema(ctx, request)
	})

	inspectSchemaTool := mcp.NewTool("inspect_schema",
		mcp.WithDescription("Parse existing SQL files in a partition directory and return the recovered schema as JSON"),
		mcp.WithString("partition_dir",
			mcp.Required(),
			mcp.Description("Path to the directory containing previously emitted SQL files"),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name to recover"),
		),
	)

	s.AddTool(inspectSchemaTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleInspectSchema(ctx, request)
	})

	slog.Info("starting dbschemagen mcp server")
	return server.ServeStdio(s)
}

// handleGenerateSchema processes the generate_schema tool request.
func handleGenerateSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	descriptorPath, err := request.RequireString("descriptor_path")
	if err != nil {
		return mcp.NewToolResultError("descriptor_path parameter is required"), nil
	}
	outDir, err := request.RequireString("out_dir")
	if err != nil {
		return mcp.NewToolResultError("out_dir parameter is required"), nil
	}
	dialectName := request.GetString("dialect", string(dialect.Postgres))
	uuidName := request.GetString("uuid", string(dialect.UUIDv4))
	modeName := request.GetString("mode", string(orchestrator.Smart))

	output, err := generateSchemaCore(ctx, descriptorPath, outDir, dialectName, uuidName, modeName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("generation completed successfully:\n\n%s", output)), nil
}

// generateSchemaCore contains the core logic for schema generation,
// separated for testing.
func generateSchemaCore(ctx context.Context, descriptorPath, outDir, dialectName, uuidName, modeName string) (string, error) {
	source := entity.NewJSONDescriptorSource(descriptorPath)
	return generateSchemaCoreWithDeps(ctx, source, outDir, dialectName, uuidName, modeName)
}

// generateSchemaCoreWithDeps is the testable version with dependency
// injection for the descriptor source.
func generateSchemaCoreWithDeps(ctx context.Context, source entity.DescriptorSource, outDir, dialectName, uuidName, modeName string) (string, error) {
	d, err := dialect.ParseDialect(dialectName)
	if err != nil {
		return "", fmt.Errorf("invalid dialect: %w", err)
	}
	u, err := dialect.ParseUUIDPolicy(uuidName)
	if err != nil {
		return "", fmt.Errorf("invalid uuid policy: %w", err)
	}

	o := orchestrator.New(orchestrator.Config{
		Dialect:    d,
		UUIDPolicy: u,
		Mode:       orchestrator.Mode(modeName),
		OutDir:     outDir,
	}, source)

	result, err := o.Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate schema: %w", err)
	}

	summary := map[string]any{
		"tables_seen":   result.TablesSeen,
		"files_written": result.FilesWritten,
	}
	jsonOutput, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return string(jsonOutput), nil
}

// handleInspectSchema processes the inspect_schema tool request.
func handleInspectSchema(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	partitionDir, err := request.RequireString("partition_dir")
	if err != nil {
		return mcp.NewToolResultError("partition_dir parameter is required"), nil
	}
	table, err := request.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError("table parameter is required"), nil
	}

	output, err := inspectSchemaCore(partitionDir, table)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(output), nil
}

// inspectSchemaCore contains the core logic for schema inspection,
// separated for testing.
func inspectSchemaCore(partitionDir, table string) (string, error) {
	recovered, err := extractor.LoadTableSchema(partitionDir, table)
	if err != nil {
		return "", fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	if recovered == nil {
		return "", fmt.Errorf("table %q not found under %s", table, partitionDir)
	}

	jsonOutput, err := json.MarshalIndent(recovered, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return string(jsonOutput), nil
}
