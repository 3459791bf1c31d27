package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hylla/tavla/internal/adapters/server"
	"github.com/hylla/tavla/internal/adapters/storage/sqlite"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/platform"
	"github.com/hylla/tavla/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("tavla", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		appName    string
		devMode    bool
		sampleData bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TAVLA_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TAVLA_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = "tavla"
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to sqlite database")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&sampleData, "sample", false, "serve the built-in demo records instead of the database")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "tavla %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command := firstArg(fs.Args())
	switch command {
	case "paths":
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
		return nil
	case "", "serve", "export", "import", "changes":
		// Continue.
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	dbOverridden := strings.TrimSpace(dbPath) != ""
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TAVLA_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	if sampleData {
		cfg.Data.UseSampleData = true
	}

	logger, err := newRuntimeLogger(stderr, appName, cfg.Logging, command == "")
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)

	defs, err := boardDefinitions(cfg.Board.Columns)
	if err != nil {
		return fmt.Errorf("build column definitions: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logger.Info("opening sqlite store", "db_path", cfg.Database.Path)
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
	}()
	if n, countErr := store.CountRecords(ctx); countErr != nil {
		logger.Warn("count records failed", "err", countErr)
	} else {
		logger.Info("sqlite store ready", "records", n)
	}

	eng, err := app.NewEngine(app.EngineConfig{
		Definitions:     defs,
		Source:          store,
		Fallback:        app.SampleSource(),
		UseFallbackData: cfg.Data.UseSampleData,
		OnChange: func(evt domain.ChangeEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.ApplyChange(ctx, evt, time.Now().UTC()); err != nil {
				logger.Warn("persist change failed", "task", evt.TaskRef, "err", err)
				return
			}
			logger.Info("task moved", "task", evt.TaskRef, "title", evt.Title, "from", evt.PreviousStatus, "to", evt.NewStatus)
		},
		IDGen:  uuid.NewString,
		Clock:  time.Now,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build board engine: %w", err)
	}
	board := app.NewSyncedEngine(eng)

	switch command {
	case "serve":
		logger.Info("command flow start", "command", "serve")
		if err := board.Refresh(ctx); err != nil {
			logger.Warn("initial refresh failed, serving previous board", "err", err)
		}
		serveCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Info("serving board", "bind", cfg.Server.Bind, "api", cfg.Server.APIEndpoint, "mcp", cfg.Server.MCPEndpoint)
		if err := server.Run(serveCtx, server.Config{
			HTTPBind:      cfg.Server.Bind,
			APIEndpoint:   cfg.Server.APIEndpoint,
			MCPEndpoint:   cfg.Server.MCPEndpoint,
			ServerName:    appName,
			ServerVersion: version,
		}, server.Dependencies{Board: board}); err != nil {
			logger.Error("command flow failed", "command", "serve", "err", err)
			return fmt.Errorf("run serve command: %w", err)
		}
		logger.Info("command flow complete", "command", "serve")
		return nil
	case "export":
		logger.Info("command flow start", "command", "export")
		if err := runExport(ctx, board, fs.Args()[1:], stdout); err != nil {
			logger.Error("command flow failed", "command", "export", "err", err)
			return fmt.Errorf("run export command: %w", err)
		}
		logger.Info("command flow complete", "command", "export")
		return nil
	case "import":
		logger.Info("command flow start", "command", "import")
		if err := runImport(ctx, board, store, fs.Args()[1:], stdout); err != nil {
			logger.Error("command flow failed", "command", "import", "err", err)
			return fmt.Errorf("run import command: %w", err)
		}
		logger.Info("command flow complete", "command", "import")
		return nil
	case "changes":
		logger.Info("command flow start", "command", "changes")
		if err := runChanges(ctx, store, fs.Args()[1:], stdout); err != nil {
			logger.Error("command flow failed", "command", "changes", "err", err)
			return fmt.Errorf("run changes command: %w", err)
		}
		logger.Info("command flow complete", "command", "changes")
		return nil
	}

	logger.Info("command flow start", "command", "tui")
	m := tui.NewModel(
		board,
		tui.WithTaskFieldConfig(tui.DefaultTaskFieldConfig()),
		tui.WithRefreshInterval(30*time.Second),
	)
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// runExport writes the reconciled board as indented JSON.
func runExport(ctx context.Context, board *app.SyncedEngine, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tavla export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var outPath string
	fs.StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse export flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected export arguments: %v", fs.Args())
	}

	if err := board.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh board: %w", err)
	}
	encoded, err := json.MarshalIndent(board.Board(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode board json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write board to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport ingests a legacy bundle file and seeds the database from the
// resulting board.
func runImport(ctx context.Context, board *app.SyncedEngine, store *sqlite.Store, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tavla import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var inPath string
	fs.StringVar(&inPath, "in", "", "input bundle JSON file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse import flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected import arguments: %v", fs.Args())
	}
	if inPath == "" {
		return fmt.Errorf("--in is required")
	}

	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read bundle file: %w", err)
	}
	if err := board.LoadBundle(content); err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}

	snapshot := board.Board()
	now := time.Now().UTC()
	count := 0
	for _, column := range snapshot.ColumnsInOrder() {
		for _, taskID := range column.TaskIDs {
			task, ok := snapshot.Tasks[taskID]
			if !ok {
				continue
			}
			if err := store.UpsertRecord(ctx, recordFromTask(task), now); err != nil {
				return fmt.Errorf("seed record %q: %w", task.ID, err)
			}
			count++
		}
	}
	_, _ = fmt.Fprintf(stdout, "imported %d tasks\n", count)
	return nil
}

// runChanges prints the most recent move history as indented JSON,
// newest first.
func runChanges(ctx context.Context, store *sqlite.Store, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tavla changes", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var limit int
	fs.IntVar(&limit, "limit", 50, "maximum number of changes to print")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse changes flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected changes arguments: %v", fs.Args())
	}

	events, err := store.ListChanges(ctx, limit)
	if err != nil {
		return fmt.Errorf("list changes: %w", err)
	}
	encoded, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode changes json: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := stdout.Write(encoded); err != nil {
		return fmt.Errorf("write changes to stdout: %w", err)
	}
	return nil
}

// recordFromTask flattens one board task back into a storable record.
func recordFromTask(task domain.Task) app.Record {
	return app.Record{
		ID:           task.ID,
		ExternalID:   task.ExternalID,
		Title:        task.Title,
		Status:       task.Status,
		Priority:     task.Priority,
		Assignee:     task.Assignee,
		DueLabel:     task.DueLabel,
		Description:  task.Description,
		AuthorName:   task.Author.Name,
		AuthorAvatar: task.Author.AvatarURL,
	}
}

// boardDefinitions maps configured columns into domain definitions.
func boardDefinitions(columns []config.ColumnConfig) ([]domain.ColumnDefinition, error) {
	defs := make([]domain.ColumnDefinition, 0, len(columns))
	for _, column := range columns {
		def, err := domain.NewColumnDefinition(column.ID, column.Title, column.Statuses, column.Color)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", column.ID, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// newRuntimeLogger configures the runtime logger from config state. The
// console sink stays quiet while the TUI owns the terminal.
func newRuntimeLogger(stderr io.Writer, appName string, cfg config.LoggingConfig, muteConsole bool) (*charmLog.Logger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	sink := stderr
	if muteConsole {
		sink = io.Discard
	}
	return charmLog.NewWithOptions(sink, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	}), nil
}

// firstArg handles first arg.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
