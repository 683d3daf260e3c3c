// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todos-go/internal/logging"
	"github.com/nibzard/todos-go/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	save      func(*todo.File) error
	logger    *log.Logger
	altScreen bool
}

// WithSaver sets the function used to persist the list after each change.
// Without one the TUI works purely in memory.
func WithSaver(save func(*todo.File) error) TUIOption {
	return func(c *tuiConfig) {
		c.save = save
	}
}

// WithLogger sets the logger. The terminal belongs to the TUI, so this
// should write to a file.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		c.logger = logger
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

func buildConfig(opts []TUIOption) *tuiConfig {
	c := &tuiConfig{altScreen: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// RunTUI runs the interactive list over store until the user quits or ctx is
// cancelled.
func RunTUI(ctx context.Context, store *todo.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	c := buildConfig(opts)
	return runProgram(ctx, newModel(store, c), c)
}

func runProgram(ctx context.Context, m *model, c *tuiConfig) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	c.logger.Info("tui started", "tasks", m.store.Len(), "filter", m.store.Filter())
	program := tea.NewProgram(m, programOpts...)
	_, runErr := program.Run()

	// An edit still open when the program is killed counts as focus loss.
	if m.store.Editing() != nil {
		m.store.CommitDraft()
	}
	m.flush()
	c.logger.Info("tui stopped", "tasks", m.store.Len(), "remaining", m.store.Remaining())

	if runErr != nil {
		if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return runErr
	}
	return m.saveErr
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
