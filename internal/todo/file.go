package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todos-go/internal/utils"
)

// SchemaVersion is the only snapshot version this package reads and writes.
const SchemaVersion = 1

//go:embed todos.schema.json
var embeddedSchema []byte

const embeddedSchemaURL = "https://github.com/nibzard/todos-go/todos.schema.json"

// File represents the snapshot file structure.
type File struct {
	SchemaVersion int    `json:"schema_version"`
	Filter        Filter `json:"filter,omitempty"`
	Tasks         []Task `json:"tasks"`
}

// NewFile returns an empty snapshot.
func NewFile() *File {
	return &File{
		SchemaVersion: SchemaVersion,
		Filter:        FilterAll,
		Tasks:         []Task{},
	}
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dot path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the embedded schema. If the file is missing or
	// does not compile, validation uses only minimal fallback checks.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Err joins all validation errors, or returns nil when the file is valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Load reads and parses a snapshot file. A missing file yields an empty
// snapshot.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewFile(), nil
		}
		return nil, fmt.Errorf("read todo file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return NewFile(), nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse todo file: %w", err)
	}
	if f.Tasks == nil {
		f.Tasks = []Task{}
	}

	return &f, nil
}

// Save writes the snapshot to path with 2-space indentation. The file is
// replaced atomically.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal todo file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create todo dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write todo file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close todo file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod todo file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace todo file: %w", err)
	}

	return nil
}

// Snapshot captures the store's tasks and filter.
func (s *Store) Snapshot() *File {
	f := NewFile()
	f.Filter = s.filter
	f.Tasks = s.Tasks()
	return f
}

// NewStoreFromFile builds a store seeded from a snapshot. Extra options are
// applied after the snapshot, so a WithFilter option overrides the stored
// filter.
func NewStoreFromFile(f *File, opts ...Option) *Store {
	base := []Option{WithTasks(f.Tasks)}
	if filter, err := ParseFilter(string(f.Filter)); err == nil {
		base = append(base, WithFilter(filter))
	}
	return NewStore(append(base, opts...)...)
}

// Validate validates the snapshot.
func (f *File) Validate(opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schemaResult := validateWithSchema(f, opts.SchemaPath)
	result.UsedSchema = schemaResult.UsedSchema
	result.Warnings = append(result.Warnings, schemaResult.Warnings...)
	if schemaResult.UsedSchema {
		if !schemaResult.Valid {
			result.Valid = false
			result.Errors = append(result.Errors, schemaResult.Errors...)
			return result
		}
		// JSON Schema cannot express unique object keys inside an array.
		f.checkDuplicateIDs(result)
		return result
	}
	result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")

	f.validateMinimal(result)

	return result
}

// validateMinimal performs minimal validation without JSON Schema.
func (f *File) validateMinimal(result *ValidationResult) {
	if f.SchemaVersion != SchemaVersion {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected %d, got %d", SchemaVersion, f.SchemaVersion),
		})
	}

	if f.Filter != "" {
		if _, err := ParseFilter(string(f.Filter)); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{Path: "filter", Err: err})
		}
	}

	if f.Tasks == nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "tasks",
			Err:  fmt.Errorf("missing required field"),
		})
		return
	}

	for i, task := range f.Tasks {
		if err := validateTaskMinimal(&task, fmt.Sprintf("tasks[%d]", i)); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
	f.checkDuplicateIDs(result)
}

// checkDuplicateIDs rejects task IDs that appear more than once.
func (f *File) checkDuplicateIDs(result *ValidationResult) {
	seen := make(map[ID]bool, len(f.Tasks))
	for i, task := range f.Tasks {
		if task.IsZero() {
			continue
		}
		if seen[task.ID] {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: fmt.Sprintf("tasks[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q", task.ID),
			})
		}
		seen[task.ID] = true
	}
}

func validateTaskMinimal(task *Task, path string) *ValidationError {
	if task.IsZero() {
		return &ValidationError{
			Path: path + ".id",
			Err:  fmt.Errorf("missing required field"),
		}
	}
	if strings.TrimSpace(task.Text) == "" {
		return &ValidationError{
			Path: path + ".text",
			Err:  fmt.Errorf("must not be empty"),
		}
	}
	return nil
}

// validateWithSchema attempts JSON Schema validation. An empty schemaPath
// selects the embedded schema.
func validateWithSchema(f *File, schemaPath string) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	url := embeddedSchemaURL
	if schemaPath == "" {
		if err := compiler.AddResource(url, bytes.NewReader(embeddedSchema)); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("embedded schema: %v", err))
			return result
		}
	} else {
		absPath, err := filepath.Abs(schemaPath)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("invalid schema path: %v", err))
			return result
		}
		if _, err := os.Stat(absPath); err != nil {
			if os.IsNotExist(err) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("schema file not found: %s", absPath))
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to read schema file: %v", err))
			}
			return result
		}
		url = absPath
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("invalid schema file: %v", err))
		return result
	}

	result.UsedSchema = true

	fileData, err := json.Marshal(f)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to marshal file for validation: %w", err),
		})
		return result
	}

	var fileObj interface{}
	if err := json.Unmarshal(fileData, &fileObj); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to unmarshal file for validation: %w", err),
		})
		return result
	}

	if err := schema.Validate(fileObj); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}

	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
