package todo

import (
	"strings"
	"time"
)

// Op names a store mutation reported to observers.
type Op string

const (
	OpAdd            Op = "add"
	OpToggle         Op = "toggle"
	OpDelete         Op = "delete"
	OpBeginEdit      Op = "begin_edit"
	OpCommitEdit     Op = "commit_edit"
	OpCancelEdit     Op = "cancel_edit"
	OpClearCompleted Op = "clear_completed"
	OpToggleAll      Op = "toggle_all"
	OpSetFilter      Op = "set_filter"
)

// Event describes a mutation that changed the store.
type Event struct {
	Op Op
	// ID is empty for operations that touch the whole list.
	ID ID
	// Count is the number of tasks affected.
	Count int
}

// Persistent reports whether the event changed the task list itself, as
// opposed to edit-session bookkeeping.
func (e Event) Persistent() bool {
	switch e.Op {
	case OpBeginEdit, OpCancelEdit:
		return false
	default:
		return true
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver registers a function called after every effective mutation.
func WithObserver(fn func(Event)) Option {
	return func(s *Store) {
		s.observers = append(s.observers, fn)
	}
}

// WithFilter sets the initial filter.
func WithFilter(f Filter) Option {
	return func(s *Store) {
		s.filter = f
	}
}

// WithTasks seeds the store with an existing list. Tasks without an ID, or
// repeating an earlier task's ID, get a fresh one; tasks whose text is empty
// after trimming are dropped.
func WithTasks(tasks []Task) Option {
	return func(s *Store) {
		seeded := make([]Task, 0, len(tasks))
		seen := make(map[ID]bool, len(tasks))
		for _, task := range tasks {
			task.Text = strings.TrimSpace(task.Text)
			if task.Text == "" {
				continue
			}
			if task.IsZero() || seen[task.ID] {
				task.ID = newID()
			}
			seen[task.ID] = true
			seeded = append(seeded, task.clone())
		}
		s.tasks = seeded
	}
}

// Store is the task list state machine. It is not safe for concurrent use;
// callers serialize access (the UI event loop does this naturally).
type Store struct {
	tasks     []Task
	filter    Filter
	editing   *EditSession
	observers []func(Event)
	now       func() time.Time
}

// NewStore creates an empty store showing all tasks.
func NewStore(opts ...Option) *Store {
	s := &Store{
		filter: FilterAll,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers an observer after construction.
func (s *Store) OnChange(fn func(Event)) {
	s.observers = append(s.observers, fn)
}

func (s *Store) emit(e Event) {
	for _, fn := range s.observers {
		fn(e)
	}
}

func (s *Store) index(id ID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a task with the trimmed text. Whitespace-only text is ignored
// and ok is false.
func (s *Store) Add(text string) (task Task, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false
	}
	now := s.now()
	task = Task{
		ID:        newID(),
		Text:      text,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	next := make([]Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	s.tasks = append(next, task)

	s.emit(Event{Op: OpAdd, ID: task.ID, Count: 1})
	return task.clone(), true
}

// Toggle flips the completed flag of the task with the given ID.
func (s *Store) Toggle(id ID) {
	i := s.index(id)
	if i < 0 {
		return
	}
	now := s.now()
	s.tasks = s.mapTasks(func(j int, t Task) Task {
		if j == i {
			t.Completed = !t.Completed
			t.UpdatedAt = &now
		}
		return t
	})
	s.emit(Event{Op: OpToggle, ID: id, Count: 1})
}

// Delete removes the task with the given ID. Deleting the task under edit
// closes the edit session.
func (s *Store) Delete(id ID) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.tasks = s.filterTasks(func(j int, _ Task) bool { return j != i })
	if s.editing != nil && s.editing.ID == id {
		s.editing = nil
	}
	s.emit(Event{Op: OpDelete, ID: id, Count: 1})
}

// BeginEdit opens an edit session for the task, seeded with its current text.
// An open session for another task is abandoned without saving.
func (s *Store) BeginEdit(id ID) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.editing = &EditSession{ID: id, Draft: s.tasks[i].Text}
	s.emit(Event{Op: OpBeginEdit, ID: id})
}

// SetDraft replaces the draft text of the open session.
func (s *Store) SetDraft(text string) {
	if s.editing == nil {
		return
	}
	s.editing.Draft = text
}

// CommitEdit replaces the task's text with the trimmed value, or deletes the
// task when that value is empty. The edit session is closed either way.
func (s *Store) CommitEdit(id ID, text string) {
	defer func() { s.editing = nil }()

	text = strings.TrimSpace(text)
	if text == "" {
		s.Delete(id)
		return
	}

	i := s.index(id)
	if i < 0 {
		return
	}
	now := s.now()
	s.tasks = s.mapTasks(func(j int, t Task) Task {
		if j == i {
			t.Text = text
			t.UpdatedAt = &now
		}
		return t
	})
	s.emit(Event{Op: OpCommitEdit, ID: id, Count: 1})
}

// CommitDraft commits the open session using its own draft text.
func (s *Store) CommitDraft() {
	if s.editing == nil {
		return
	}
	s.CommitEdit(s.editing.ID, s.editing.Draft)
}

// CancelEdit closes the session without changing the list.
func (s *Store) CancelEdit() {
	if s.editing == nil {
		return
	}
	id := s.editing.ID
	s.editing = nil
	s.emit(Event{Op: OpCancelEdit, ID: id})
}

// ClearCompleted removes every completed task, keeping the order of the rest.
func (s *Store) ClearCompleted() {
	before := len(s.tasks)
	kept := s.filterTasks(func(_ int, t Task) bool { return !t.Completed })
	removed := before - len(kept)
	if removed == 0 {
		return
	}
	s.tasks = kept
	if s.editing != nil && s.index(s.editing.ID) < 0 {
		s.editing = nil
	}
	s.emit(Event{Op: OpClearCompleted, Count: removed})
}

// ToggleAll marks every task completed unless all already are, in which case
// every task is marked active.
func (s *Store) ToggleAll() {
	if len(s.tasks) == 0 {
		return
	}
	allCompleted := true
	for _, t := range s.tasks {
		if !t.Completed {
			allCompleted = false
			break
		}
	}
	now := s.now()
	s.tasks = s.mapTasks(func(_ int, t Task) Task {
		if t.Completed != !allCompleted {
			t.Completed = !allCompleted
			t.UpdatedAt = &now
		}
		return t
	})
	s.emit(Event{Op: OpToggleAll, Count: len(s.tasks)})
}

// SetFilter changes the active filter. The task list is untouched.
func (s *Store) SetFilter(f Filter) {
	if s.filter == f {
		return
	}
	s.filter = f
	s.emit(Event{Op: OpSetFilter})
}

// Filter returns the active filter.
func (s *Store) Filter() Filter {
	return s.filter
}

// Visible returns the tasks matching the active filter, in list order. The
// result is computed on every call and owned by the caller.
func (s *Store) Visible() []Task {
	visible := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filter.Match(t) {
			visible = append(visible, t.clone())
		}
	}
	return visible
}

// Remaining returns the number of tasks not yet completed.
func (s *Store) Remaining() int {
	n := 0
	for _, t := range s.tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// HasCompleted reports whether any task is completed.
func (s *Store) HasCompleted() bool {
	for _, t := range s.tasks {
		if t.Completed {
			return true
		}
	}
	return false
}

// Len returns the number of tasks regardless of filter.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the full list.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

// Get returns the task with the given ID.
func (s *Store) Get(id ID) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].clone(), true
}

// Editing returns the open edit session, or nil.
func (s *Store) Editing() *EditSession {
	if s.editing == nil {
		return nil
	}
	session := *s.editing
	return &session
}

func (s *Store) mapTasks(fn func(int, Task) Task) []Task {
	next := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		next[i] = fn(i, t)
	}
	return next
}

func (s *Store) filterTasks(keep func(int, Task) bool) []Task {
	next := make([]Task, 0, len(s.tasks))
	for i, t := range s.tasks {
		if keep(i, t) {
			next = append(next, t)
		}
	}
	return next
}
