package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nibzard/todos-go/internal/todo"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	ProjectConfigFile = "todos.toml"
	DefaultTodoFile   = "todos.json"
	DefaultLogDir     = "~/.todos/logs"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultFilter     = "all"
)

// Config holds the full configuration for todos.
type Config struct {
	// Paths
	TodoFile   string `toml:"todo_file"`
	SchemaFile string `toml:"schema_file"`
	LogDir     string `toml:"log_dir"`

	// InMemory disables the snapshot file entirely.
	InMemory bool `toml:"in_memory"`

	// UI
	DefaultFilter string `toml:"default_filter"`
	AltScreen     bool   `toml:"alt_screen"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"todo_file",
		"schema_file",
		"log_dir",
		"in_memory",
		"default_filter",
		"alt_screen",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

func setDefaults(cfg *Config) {
	cfg.TodoFile = DefaultTodoFile
	cfg.SchemaFile = ""
	cfg.LogDir = DefaultLogDir
	cfg.InMemory = false
	cfg.DefaultFilter = DefaultFilter
	cfg.AltScreen = true
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = true
	cfg.LogCaller = false
}

// TodoPath returns the snapshot path, or "" when running in memory.
func (c *Config) TodoPath() string {
	if c.InMemory {
		return ""
	}
	return c.TodoFile
}

// Filter returns the parsed default filter.
func (c *Config) Filter() todo.Filter {
	f, err := todo.ParseFilter(c.DefaultFilter)
	if err != nil {
		return todo.FilterAll
	}
	return f
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q, must be one of: text, json, logfmt", c.LogFormat)
	}
	if _, err := todo.ParseFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("default_filter: %w", err)
	}
	return nil
}

// Value returns the string form of a field, keyed by its TOML name.
func (c *Config) Value(field string) string {
	switch field {
	case "todo_file":
		return c.TodoFile
	case "schema_file":
		return c.SchemaFile
	case "log_dir":
		return c.LogDir
	case "in_memory":
		return fmt.Sprint(c.InMemory)
	case "default_filter":
		return c.DefaultFilter
	case "alt_screen":
		return fmt.Sprint(c.AltScreen)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	default:
		return ""
	}
}

// Fields returns the configurable field names in sorted order.
func Fields() []string {
	fields := configFields()
	sort.Strings(fields)
	return fields
}
