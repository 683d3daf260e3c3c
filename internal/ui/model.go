package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todos-go/internal/todo"
)

const placeholder = "What needs to be done?"

type focus int

const (
	focusInput focus = iota
	focusList
)

// model drives a todo.Store from keyboard events. The store is only ever
// touched from Update, so it needs no locking.
type model struct {
	store  *todo.Store
	input  textinput.Model
	editor textinput.Model
	keys   keyMap
	help   help.Model

	cursor int
	focus  focus

	save    func(*todo.File) error
	logger  *log.Logger
	dirty   bool
	saveErr error

	status    string
	statusErr bool
	showHelp  bool
	width     int
}

func newModel(store *todo.Store, c *tuiConfig) *model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "❯ "
	input.Focus()

	editor := textinput.New()
	editor.Prompt = ""

	m := &model{
		store:  store,
		input:  input,
		editor: editor,
		keys:   defaultKeyMap(),
		help:   help.New(),
		focus:  focusInput,
		save:   c.save,
		logger: c.logger,
	}
	store.OnChange(m.observe)
	return m
}

func (m *model) observe(e todo.Event) {
	m.logger.Debug("store changed", "op", e.Op, "id", e.ID.Short(), "count", e.Count)
	if e.Persistent() {
		m.dirty = true
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case m.store.Editing() != nil:
			cmd = m.updateEdit(msg)
		case m.focus == focusInput:
			cmd = m.updateInput(msg)
		default:
			cmd = m.updateList(msg)
		}
		m.clampCursor()
		m.flush()
		return m, cmd
	}

	if m.store.Editing() != nil {
		m.editor, cmd = m.editor.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return tea.Quit
	case key.Matches(msg, m.keys.Submit):
		if task, ok := m.store.Add(m.input.Value()); ok {
			m.input.Reset()
			m.selectTask(task.ID)
		}
		return nil
	case key.Matches(msg, m.keys.Leave), key.Matches(msg, m.keys.Blur):
		m.focusList()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// updateEdit handles keys while a task is being edited. Any key that moves
// focus away from the row commits the draft first.
func (m *model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.commitEdit()
		return nil
	case key.Matches(msg, m.keys.Leave):
		m.store.CancelEdit()
		m.editor.Blur()
		return nil
	case key.Matches(msg, m.keys.ForceQuit):
		m.commitEdit()
		return tea.Quit
	case key.Matches(msg, m.keys.Blur):
		m.commitEdit()
		m.clampCursor()
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.store.SetDraft(m.editor.Value())
	return cmd
}

func (m *model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.store.Visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NewTask):
		m.focus = focusInput
		return m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		if task, ok := m.selected(); ok {
			m.store.Toggle(task.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selected(); ok {
			m.store.Delete(task.ID)
		}
	case key.Matches(msg, m.keys.Edit):
		if task, ok := m.selected(); ok {
			m.store.BeginEdit(task.ID)
			m.editor.SetValue(task.Text)
			m.editor.CursorEnd()
			return m.editor.Focus()
		}
	case key.Matches(msg, m.keys.ToggleAll):
		m.store.ToggleAll()
	case key.Matches(msg, m.keys.ClearCompleted):
		before := m.store.Len()
		m.store.ClearCompleted()
		if removed := before - m.store.Len(); removed > 0 {
			m.setStatus(fmt.Sprintf("Cleared %d completed", removed))
		}
	case key.Matches(msg, m.keys.FilterAll):
		m.store.SetFilter(todo.FilterAll)
	case key.Matches(msg, m.keys.FilterActive):
		m.store.SetFilter(todo.FilterActive)
	case key.Matches(msg, m.keys.FilterDone):
		m.store.SetFilter(todo.FilterCompleted)
	case key.Matches(msg, m.keys.NextFilter):
		m.store.SetFilter(m.store.Filter().Next())
	}
	return nil
}

func (m *model) commitEdit() {
	m.store.CommitDraft()
	m.editor.Blur()
}

func (m *model) focusList() {
	m.focus = focusList
	m.input.Blur()
}

func (m *model) selected() (todo.Task, bool) {
	visible := m.store.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return todo.Task{}, false
	}
	return visible[m.cursor], true
}

// selectTask moves the cursor to id when it is visible.
func (m *model) selectTask(id todo.ID) {
	for i, t := range m.store.Visible() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *model) clampCursor() {
	n := len(m.store.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// flush saves the store after a mutation. A failed save leaves the model
// dirty so the next mutation retries it.
func (m *model) flush() {
	if !m.dirty || m.save == nil {
		m.dirty = false
		return
	}
	if err := m.save(m.store.Snapshot()); err != nil {
		m.saveErr = err
		m.logger.Error("save failed", "err", err)
		m.status = "save failed: " + err.Error()
		m.statusErr = true
		return
	}
	m.dirty = false
	if m.saveErr != nil {
		m.saveErr = nil
		m.setStatus("saved")
	}
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("todos"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.store.Len() > 0 {
		m.writeTasks(&b)
		b.WriteString("\n")
		m.writeFooter(&b)
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(mutedStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return frameStyle.Render(b.String())
}

func (m *model) writeTasks(b *strings.Builder) {
	visible := m.store.Visible()
	if len(visible) == 0 {
		b.WriteString(mutedStyle.Render("  Nothing to show."))
		b.WriteString("\n")
		return
	}

	editing := m.store.Editing()
	for i, t := range visible {
		pointer := "  "
		if m.focus == focusList && i == m.cursor {
			pointer = cursorStyle.Render("▸ ")
		}
		b.WriteString(pointer)

		if editing != nil && editing.ID == t.ID {
			b.WriteString("    ")
			b.WriteString(m.editor.View())
			b.WriteString("\n")
			continue
		}
		b.WriteString(formatTask(t))
		b.WriteString("\n")
	}
}

func formatTask(t todo.Task) string {
	if t.Completed {
		return "[x] " + completedStyle.Render(t.Text)
	}
	return "[ ] " + t.Text
}

func (m *model) writeFooter(b *strings.Builder) {
	b.WriteString(ItemsLeft(m.store.Remaining()))
	b.WriteString("   ")

	labels := make([]string, 0, len(todo.Filters()))
	for _, f := range todo.Filters() {
		if f == m.store.Filter() {
			labels = append(labels, selectedStyle.Render(f.Label()))
			continue
		}
		labels = append(labels, mutedStyle.Render(f.Label()))
	}
	b.WriteString(strings.Join(labels, "  "))

	if m.store.HasCompleted() {
		b.WriteString("   ")
		b.WriteString(mutedStyle.Render("Clear completed"))
	}
	b.WriteString("\n")
}

// ItemsLeft formats the remaining-count label.
func ItemsLeft(n int) string {
	if n == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", n)
}
