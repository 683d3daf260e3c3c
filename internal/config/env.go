package config

import (
	"fmt"
	"os"

	"github.com/nibzard/todos-go/internal/utils"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TODOS_"

// loadFromEnv overrides config from environment variables and records the
// source of every value it sets.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setString := func(env, field string, target *string) {
		if v, ok := os.LookupEnv(EnvPrefix + env); ok {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(env, field string, target *bool) error {
		v := os.Getenv(EnvPrefix + env)
		if v == "" {
			return nil
		}
		b, ok := utils.ParseBool(v)
		if !ok {
			return fmt.Errorf("%s%s: invalid boolean %q", EnvPrefix, env, v)
		}
		*target = b
		sources[field] = SourceEnv
		return nil
	}

	setString("TODO", "todo_file", &cfg.TodoFile)
	setString("SCHEMA", "schema_file", &cfg.SchemaFile)
	setString("LOG_DIR", "log_dir", &cfg.LogDir)
	setString("FILTER", "default_filter", &cfg.DefaultFilter)
	setString("LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("LOG_FORMAT", "log_format", &cfg.LogFormat)

	bools := []struct {
		env    string
		field  string
		target *bool
	}{
		{"IN_MEMORY", "in_memory", &cfg.InMemory},
		{"ALT_SCREEN", "alt_screen", &cfg.AltScreen},
		{"LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps},
		{"LOG_CALLER", "log_caller", &cfg.LogCaller},
	}
	for _, b := range bools {
		if err := setBool(b.env, b.field, b.target); err != nil {
			return err
		}
	}

	return nil
}
