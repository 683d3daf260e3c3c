// Package cmd implements the CLI command structure for todos.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todos-go/internal/config"
	"github.com/nibzard/todos-go/internal/logging"
	"github.com/nibzard/todos-go/internal/todo"
	"github.com/nibzard/todos-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// cli carries the loaded configuration and output streams into commands.
type cli struct {
	cfg     *config.Config
	sources map[string]config.ConfigSource
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
}

// Run executes the todos CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todos", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	loaded, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c := &cli{
		cfg:     loaded.Config,
		sources: loaded.Sources,
		stdout:  stdout,
		stderr:  stderr,
	}
	c.logger = logging.New(stderr, c.logOptions(true))

	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return c.versionCommand()
	}

	// No args or a leading flag means the TUI
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return c.tuiCommand(ctx, remainingArgs)
	case "add":
		return c.addCommand(remainingArgs)
	case "ls", "list":
		return c.lsCommand(remainingArgs)
	case "toggle":
		return c.toggleCommand(remainingArgs)
	case "rm", "delete":
		return c.rmCommand(remainingArgs)
	case "edit":
		return c.editCommand(remainingArgs)
	case "clear":
		return c.clearCommand(remainingArgs)
	case "toggle-all":
		return c.toggleAllCommand(remainingArgs)
	case "init":
		return c.initCommand(remainingArgs)
	case "config":
		return c.configCommand(remainingArgs)
	case "tail":
		return c.tailCommand(ctx, remainingArgs)
	case "version":
		return c.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// logOptions builds logger options from the config. Plain CLI commands stay
// quiet unless a log level was asked for explicitly.
func (c *cli) logOptions(cliMode bool) logging.Options {
	opts := logging.Options{
		Level:      c.cfg.LogLevel,
		Format:     c.cfg.LogFormat,
		Timestamps: c.cfg.LogTimestamps,
		Caller:     c.cfg.LogCaller,
		Prefix:     "todos",
	}
	if cliMode && c.sources["log_level"] == config.SourceDefault {
		opts.Level = "warn"
	}
	return opts
}

// openStore loads the snapshot (or starts empty in memory mode) and
// validates it before building the store.
func (c *cli) openStore() (*todo.Store, error) {
	var opts []todo.Option
	if c.sources["default_filter"] != config.SourceDefault {
		opts = append(opts, todo.WithFilter(c.cfg.Filter()))
	}

	path := c.cfg.TodoPath()
	if path == "" {
		c.logger.Debug("running in memory")
		return todo.NewStore(todo.WithFilter(c.cfg.Filter())), nil
	}

	f, err := todo.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading todo file: %w", err)
	}
	result := f.Validate(todo.ValidationOptions{SchemaPath: c.cfg.SchemaFile})
	for _, w := range result.Warnings {
		c.logger.Warn(w, "file", path)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid todo file %s: %w", path, result.Err())
	}

	c.logger.Debug("loaded todo file", "file", path, "tasks", len(f.Tasks))
	return todo.NewStoreFromFile(f, opts...), nil
}

// saveStore writes the store back unless running in memory.
func (c *cli) saveStore(store *todo.Store) error {
	path := c.cfg.TodoPath()
	if path == "" {
		return nil
	}
	if err := store.Snapshot().Save(path); err != nil {
		return fmt.Errorf("saving todo file: %w", err)
	}
	c.logger.Debug("saved todo file", "file", path, "tasks", store.Len())
	return nil
}

// resolve turns a user-supplied ID prefix into a task.
func resolve(store *todo.Store, ref string) (todo.Task, error) {
	task, err := store.Resolve(ref)
	if errors.Is(err, todo.ErrAmbiguous) {
		return todo.Task{}, fmt.Errorf("%w (use more characters of the ID)", err)
	}
	return task, err
}

// tuiCommand launches the interactive list.
func (c *cli) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos tui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}

	opts := []ui.TUIOption{ui.WithAltScreen(c.cfg.AltScreen)}
	rl, err := logging.NewRunLogger(c.cfg.LogDir, c.cfg.ProjectRoot, c.logOptions(false))
	if err != nil {
		c.logger.Warn("run log disabled", "err", err)
	} else {
		defer rl.Close()
		opts = append(opts, ui.WithLogger(rl.Logger))
	}

	if path := c.cfg.TodoPath(); path != "" {
		opts = append(opts, ui.WithSaver(func(f *todo.File) error {
			return f.Save(path)
		}))
	}

	return ui.RunTUI(ctx, store, opts...)
}

// addCommand appends a task built from the remaining arguments.
func (c *cli) addCommand(args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("usage: todos add <text>")
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	task, ok := store.Add(text)
	if !ok {
		return fmt.Errorf("task text is empty")
	}
	if err := c.saveStore(store); err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, task.ID)
	return nil
}

// lsCommand lists the tasks visible under a filter.
func (c *cli) lsCommand(args []string) error {
	fs := flag.NewFlagSet("todos ls", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	filterArg := fs.String("filter", "", "Filter (all|active|completed), defaults to the saved filter")
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 && *filterArg == "" {
		*filterArg = remaining[0]
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	if *filterArg != "" {
		f, err := todo.ParseFilter(*filterArg)
		if err != nil {
			return err
		}
		store.SetFilter(f)
	}

	visible := store.Visible()
	if *asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(visible)
	}

	if len(visible) == 0 {
		fmt.Fprintln(c.stdout, "No tasks found.")
	}
	for _, t := range visible {
		printTask(c.stdout, t)
	}
	fmt.Fprintln(c.stdout, ui.ItemsLeft(store.Remaining()))
	return nil
}

// toggleCommand flips one task's completed flag.
func (c *cli) toggleCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: todos toggle <id>")
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	task, err := resolve(store, args[0])
	if err != nil {
		return err
	}

	store.Toggle(task.ID)
	if err := c.saveStore(store); err != nil {
		return err
	}
	updated, _ := store.Get(task.ID)
	printTask(c.stdout, updated)
	return nil
}

// rmCommand deletes one task.
func (c *cli) rmCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: todos rm <id>")
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	task, err := resolve(store, args[0])
	if err != nil {
		return err
	}

	store.Delete(task.ID)
	if err := c.saveStore(store); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "deleted %s\n", task.ID.Short())
	return nil
}

// editCommand replaces a task's text. Empty text deletes the task, as it
// does in the TUI.
func (c *cli) editCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: todos edit <id> <text>")
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}
	task, err := resolve(store, args[0])
	if err != nil {
		return err
	}

	store.CommitEdit(task.ID, strings.Join(args[1:], " "))
	if err := c.saveStore(store); err != nil {
		return err
	}

	updated, ok := store.Get(task.ID)
	if !ok {
		fmt.Fprintf(c.stdout, "deleted %s\n", task.ID.Short())
		return nil
	}
	printTask(c.stdout, updated)
	return nil
}

// clearCommand removes completed tasks.
func (c *cli) clearCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}

	before := store.Len()
	store.ClearCompleted()
	removed := before - store.Len()
	if removed > 0 {
		if err := c.saveStore(store); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.stdout, "cleared %d completed\n", removed)
	return nil
}

// toggleAllCommand completes every task, or reopens them all when every
// task is already complete.
func (c *cli) toggleAllCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	store, err := c.openStore()
	if err != nil {
		return err
	}

	store.ToggleAll()
	if store.Len() > 0 {
		if err := c.saveStore(store); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.stdout, ui.ItemsLeft(store.Remaining()))
	return nil
}

// initCommand writes a commented project config and an empty snapshot.
// Existing files are left alone unless --force is given.
func (c *cli) initCommand(args []string) error {
	fs := flag.NewFlagSet("todos init", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	force := fs.Bool("force", false, "Overwrite existing files")
	skipConfig := fs.Bool("skip-config", false, "Do not write "+config.ProjectConfigFile)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if !*skipConfig {
		path := filepath.Join(c.cfg.ProjectRoot, config.ProjectConfigFile)
		if err := c.initFile(path, *force, func() error {
			return os.WriteFile(path, []byte(config.ExampleConfig()), 0644)
		}); err != nil {
			return err
		}
	}

	if path := c.cfg.TodoPath(); path != "" {
		if err := c.initFile(path, *force, func() error {
			return todo.NewFile().Save(path)
		}); err != nil {
			return err
		}
	}
	return nil
}

// initFile runs write unless path exists and force is false.
func (c *cli) initFile(path string, force bool, write func() error) error {
	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(c.stdout, "exists  %s (use --force to overwrite)\n", path)
		return nil
	} else if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := write(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	c.logger.Debug("initialized", "file", path)
	fmt.Fprintf(c.stdout, "created %s\n", path)
	return nil
}

// configCommand prints the effective configuration and where each value came from.
func (c *cli) configCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	for _, field := range config.Fields() {
		fmt.Fprintf(c.stdout, "%-15s = %-40s (%s)\n", field, c.cfg.Value(field), c.sources[field])
	}
	if path := config.UserConfigPath(); path != "" {
		fmt.Fprintf(c.stdout, "\nuser config: %s\n", path)
	}
	return nil
}

// tailCommand tails the latest TUI run log.
func (c *cli) tailCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos tail", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(c.cfg.LogDir, c.cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(c.stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(c.stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(c.stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(c.stdout)

	return logging.TailLog(ctx, c.stdout, logPath, *n, *follow)
}

// versionCommand prints version information.
func (c *cli) versionCommand() error {
	fmt.Fprintf(c.stdout, "todos version %s\n", Version)
	return nil
}

// printTask prints a single task as `[x] text  (id)`.
func printTask(w io.Writer, t todo.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "[%s] %s  (%s)\n", mark, t.Text, t.ID.Short())
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todos - a keyboard-driven todo list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todos [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  add <text>          Add a task and print its ID")
	fmt.Fprintln(w, "  ls [filter]         List tasks (-filter, -json)")
	fmt.Fprintln(w, "  toggle <id>         Toggle a task's completed flag")
	fmt.Fprintln(w, "  rm <id>             Delete a task")
	fmt.Fprintln(w, "  edit <id> <text>    Replace a task's text (empty text deletes it)")
	fmt.Fprintln(w, "  clear               Remove completed tasks")
	fmt.Fprintln(w, "  toggle-all          Complete every task, or reopen them all")
	fmt.Fprintln(w, "  init                Write todos.toml and an empty snapshot (-force, -skip-config)")
	fmt.Fprintln(w, "  config              Show the effective configuration")
	fmt.Fprintln(w, "  tail                Tail the latest TUI log (-n, -f)")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task IDs may be shortened to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
