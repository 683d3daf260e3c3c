package config

import (
	"flag"
)

// flagFields maps flag names to the config field they set.
var flagFields = map[string]string{
	"todo":           "todo_file",
	"memory":         "in_memory",
	"schema":         "schema_file",
	"log-dir":        "log_dir",
	"filter":         "default_filter",
	"alt-screen":     "alt_screen",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// RegisterFlags binds the global flags to cfg. Current cfg values become the
// flag defaults.
func RegisterFlags(cfg *Config, fs *flag.FlagSet) {
	// Paths
	fs.StringVar(&cfg.TodoFile, "todo", cfg.TodoFile, "Path to the snapshot file (empty keeps tasks in memory)")
	fs.BoolVar(&cfg.InMemory, "memory", cfg.InMemory, "Do not read or write the snapshot file")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "JSON Schema used instead of the built-in one")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")

	// UI
	fs.StringVar(&cfg.DefaultFilter, "filter", cfg.DefaultFilter, "Initial filter (all|active|completed)")
	fs.BoolVar(&cfg.AltScreen, "alt-screen", cfg.AltScreen, "Run the TUI in the alternate screen")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in log output")
}

// parseFlags defines and parses CLI flags, marking explicitly set ones in
// sources.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todos", flag.ContinueOnError)
	}
	RegisterFlags(cfg, fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
