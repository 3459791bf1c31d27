package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Board    BoardConfig    `toml:"board"`
	Data     DataConfig     `toml:"data"`
	Logging  LoggingConfig  `toml:"logging"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type BoardConfig struct {
	Columns []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	ID       string   `toml:"id"`
	Title    string   `toml:"title"`
	Statuses []string `toml:"statuses"`
	Color    string   `toml:"color"`
}

type DataConfig struct {
	// UseSampleData forces the demo record source instead of the database,
	// regardless of what the database holds.
	UseSampleData bool `toml:"use_sample_data"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type ServerConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "todo", Title: "To Do", Statuses: []string{"To Do", "Todo", "Not Started"}, Color: "12"},
		{ID: "progress", Title: "In Progress", Statuses: []string{"In Progress", "Doing", "Started"}, Color: "11"},
		{ID: "done", Title: "Done", Statuses: []string{"Done", "Completed", "Closed"}, Color: "10"},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Board: BoardConfig{
			Columns: defaultColumns(),
		},
		Data: DataConfig{
			UseSampleData: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Bind:        "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seenID := map[string]struct{}{}
	for idx := range c.Board.Columns {
		column := c.Board.Columns[idx]
		column.ID = strings.TrimSpace(strings.ToLower(column.ID))
		column.Title = strings.TrimSpace(column.Title)
		if column.ID == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if column.Title == "" {
			return fmt.Errorf("board.columns[%d].title is required", idx)
		}
		if _, ok := seenID[column.ID]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, column.ID)
		}
		seenID[column.ID] = struct{}{}
		c.Board.Columns[idx] = column
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
