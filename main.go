package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alc6/dbschemagen/dialect"
	"github.com/alc6/dbschemagen/entity"
	"github.com/alc6/dbschemagen/extractor"
	"github.com/alc6/dbschemagen/orchestrator"
	"github.com/alc6/dbschemagen/sqlgen"
)

var (
	mcpMode     bool
	configPath  string
	dialectFlag string
	uuidFlag    string
	modeFlag    string
	outDirFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "dbschemagen",
	Short: "Generate and evolve relational-database migration scripts from entity descriptors",
	Long: `dbschemagen derives SQL migration scripts from a set of declaratively
annotated entity descriptors. It projects entities into a normalized schema
model, diffs it against whatever was previously emitted to the output
directory, and writes content-addressed, idempotent SQL files.

Modes:
  generate    run one generation pass against a descriptor file or directory
  inspect     parse existing SQL files in a partition directory and print the
              recovered schema, without writing anything
  --mcp       run as a Model Context Protocol server instead of a CLI`,
}

var generateCmd = &cobra.Command{
	Use:   "generate <descriptor-file-or-dir>",
	Short: "Run one generation pass",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(args[0])
		if err != nil {
			return err
		}
		result, err := runGenerate(context.Background(), cfg)
		if err != nil {
			return err
		}
		slog.Info("generation complete", "files_written", len(result.FilesWritten), "tables_seen", result.TablesSeen)
		for _, f := range result.FilesWritten {
			fmt.Println(f)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <partition-dir> <table>",
	Short: "Parse existing SQL files and print the recovered schema",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := extractor.LoadTableSchema(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", args[1], err)
		}
		if table == nil {
			return fmt.Errorf("table %q not found under %s", args[1], args[0])
		}
		fmt.Print(sqlgen.EmitCreateTable(*table, dialect.Postgres))
		return nil
	},
}

func main() {
	if err := run(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	rootCmd.PersistentFlags().BoolVar(&mcpMode, "mcp", false, "Run as Model Context Protocol server")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to dbschemagen.toml")
	rootCmd.PersistentFlags().StringVar(&dialectFlag, "dialect", "", "POSTGRES or MARIADB")
	rootCmd.PersistentFlags().StringVar(&uuidFlag, "uuid", "", "V4 or V7")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "CREATE_ONLY, ALTER_ONLY, or SMART")
	rootCmd.PersistentFlags().StringVar(&outDirFlag, "out-dir", "", "Output directory for generated SQL")

	rootCmd.AddCommand(generateCmd, inspectCmd)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if mcpMode {
			slog.Info("starting mcp server")
			return StartMCPServer()
		}
		return cmd.Help()
	}

	return rootCmd.Execute()
}

// resolveConfig merges an optional dbschemagen.toml with the CLI flags
// (flags win) into an orchestrator.Config plus the descriptor path to use.
func resolveConfig(descriptorArg string) (generateConfig, error) {
	fc := fileConfig{
		Dialect:        string(dialect.Postgres),
		UUID:           string(dialect.UUIDv4),
		Mode:           string(orchestrator.Smart),
		OutDir:         "migrations",
		DescriptorPath: descriptorArg,
	}
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return generateConfig{}, err
		}
		fc = *loaded
		if descriptorArg != "" {
			fc.DescriptorPath = descriptorArg
		}
	}

	if dialectFlag != "" {
		fc.Dialect = dialectFlag
	}
	if uuidFlag != "" {
		fc.UUID = uuidFlag
	}
	if modeFlag != "" {
		fc.Mode = modeFlag
	}
	if outDirFlag != "" {
		fc.OutDir = outDirFlag
	}

	d, err := dialect.ParseDialect(fc.Dialect)
	if err != nil {
		return generateConfig{}, fmt.Errorf("config: %w", err)
	}
	u, err := dialect.ParseUUIDPolicy(fc.UUID)
	if err != nil {
		return generateConfig{}, fmt.Errorf("config: %w", err)
	}

	provider := configuredSchemaProvider{setupFolder: fc.SchemaProvider.SetupFolder}

	return generateConfig{
		orchestrator: orchestrator.Config{
			Dialect:        d,
			UUIDPolicy:     u,
			Mode:           orchestrator.Mode(fc.Mode),
			OutDir:         fc.OutDir,
			SchemaProvider: provider,
		},
		descriptorPath: fc.DescriptorPath,
	}, nil
}

type generateConfig struct {
	orchestrator   orchestrator.Config
	descriptorPath string
}

func runGenerate(ctx context.Context, cfg generateConfig) (orchestrator.Result, error) {
	source := entity.NewJSONDescriptorSource(cfg.descriptorPath)
	o := orchestrator.New(cfg.orchestrator, source)
	return o.Generate(ctx)
}
