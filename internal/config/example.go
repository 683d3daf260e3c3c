package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todos configuration file
# Values can be overridden by TODOS_* environment variables or CLI flags

# Snapshot file (relative to the working directory)
todo_file = "todos.json"

# Keep tasks in memory only; the snapshot file is never read or written
in_memory = false

# JSON Schema used to validate the snapshot (empty uses the built-in schema)
# schema_file = "todos.schema.json"

# Log directory (supports ~ expansion)
log_dir = "~/.todos/logs"

# Filter shown when the TUI starts: all, active, completed
default_filter = "all"

# Run the TUI in the terminal's alternate screen
alt_screen = true

# Logging: debug, info, warn, error
log_level = "info"
# text, json, logfmt
log_format = "text"
log_timestamps = true
log_caller = false
`
}
