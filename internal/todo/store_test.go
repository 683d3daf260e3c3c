package todo

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

// sequentialIDs makes newID return task-1, task-2, ... for the test.
func sequentialIDs(t *testing.T) {
	t.Helper()
	orig := newID
	n := 0
	newID = func() ID {
		n++
		return ID(fmt.Sprintf("task-%d", n))
	}
	t.Cleanup(func() { newID = orig })
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func texts(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func completedFlags(tasks []Task) []bool {
	out := make([]bool, len(tasks))
	for i, t := range tasks {
		out[i] = t.Completed
	}
	return out
}

// seed builds a store from text/completed pairs.
func seed(t *testing.T, items ...Task) *Store {
	t.Helper()
	s := NewStore(WithClock(fixedClock()))
	for _, item := range items {
		task, ok := s.Add(item.Text)
		if !ok {
			t.Fatalf("Add(%q) rejected", item.Text)
		}
		if item.Completed {
			s.Toggle(task.ID)
		}
	}
	return s
}

func TestAdd(t *testing.T) {
	sequentialIDs(t)
	s := NewStore(WithClock(fixedClock()))

	task, ok := s.Add("  Buy milk  ")
	if !ok {
		t.Fatal("Add returned ok=false")
	}
	if task.Text != "Buy milk" {
		t.Errorf("Text: got %q, want %q", task.Text, "Buy milk")
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
	if task.ID != "task-1" {
		t.Errorf("ID: got %q, want task-1", task.ID)
	}
	if task.CreatedAt == nil || task.UpdatedAt == nil {
		t.Error("timestamps should be set")
	}

	s.Add("Walk dog")
	if got := texts(s.Tasks()); !reflect.DeepEqual(got, []string{"Buy milk", "Walk dog"}) {
		t.Errorf("order: got %v", got)
	}
}

func TestAddIgnoresBlankText(t *testing.T) {
	for _, text := range []string{"", " ", "\t\n", "   \r\n  "} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			s := seed(t, Task{Text: "a"})
			before := s.Tasks()

			if _, ok := s.Add(text); ok {
				t.Error("Add returned ok=true for blank text")
			}
			if got := s.Tasks(); !reflect.DeepEqual(got, before) {
				t.Errorf("list changed: got %v, want %v", got, before)
			}
		})
	}
}

func TestAddIncrementsRemaining(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b", Completed: true})
	before := s.Remaining()
	s.Add("Buy milk")
	if got := s.Remaining(); got != before+1 {
		t.Errorf("Remaining: got %d, want %d", got, before+1)
	}
}

func TestToggle(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b"})
	id := s.Tasks()[1].ID

	s.Toggle(id)
	if got := completedFlags(s.Tasks()); !reflect.DeepEqual(got, []bool{false, true}) {
		t.Errorf("after toggle: got %v", got)
	}
	s.Toggle(id)
	if got := completedFlags(s.Tasks()); !reflect.DeepEqual(got, []bool{false, false}) {
		t.Errorf("after second toggle: got %v", got)
	}
}

func TestUnknownIDIsNoOp(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b", Completed: true})
	before := s.Tasks()

	var events []Event
	s.OnChange(func(e Event) { events = append(events, e) })

	s.Toggle("missing")
	s.Delete("missing")
	s.BeginEdit("missing")
	s.CommitEdit("missing", "new text")

	if got := s.Tasks(); !reflect.DeepEqual(got, before) {
		t.Errorf("list changed: got %v, want %v", got, before)
	}
	if s.Editing() != nil {
		t.Error("edit session should not be open")
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
}

func TestDelete(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b"}, Task{Text: "c"})
	s.Delete(s.Tasks()[1].ID)

	if got := texts(s.Tasks()); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("got %v, want [a c]", got)
	}
}

func TestDeleteClosesEditSession(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b"})
	id := s.Tasks()[0].ID
	s.BeginEdit(id)
	s.Delete(id)

	if s.Editing() != nil {
		t.Error("edit session should close when its task is deleted")
	}
}

func TestBeginEdit(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b"})
	first, second := s.Tasks()[0].ID, s.Tasks()[1].ID

	s.BeginEdit(first)
	got := s.Editing()
	if got == nil || got.ID != first || got.Draft != "a" {
		t.Fatalf("Editing: got %+v", got)
	}

	s.SetDraft("a changed")
	s.BeginEdit(second)
	got = s.Editing()
	if got == nil || got.ID != second || got.Draft != "b" {
		t.Fatalf("Editing after switch: got %+v", got)
	}
	if task, _ := s.Get(first); task.Text != "a" {
		t.Errorf("abandoned draft was saved: %q", task.Text)
	}
}

func TestEditingReturnsCopy(t *testing.T) {
	s := seed(t, Task{Text: "a"})
	s.BeginEdit(s.Tasks()[0].ID)

	session := s.Editing()
	session.Draft = "mutated"
	if s.Editing().Draft != "a" {
		t.Error("Editing should return a copy")
	}
}

func TestCommitEdit(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTexts []string
	}{
		{"replace", "renamed", []string{"a", "renamed", "c"}},
		{"trims", "  padded  ", []string{"a", "padded", "c"}},
		{"empty deletes", "", []string{"a", "c"}},
		{"whitespace deletes", "   ", []string{"a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seed(t, Task{Text: "a"}, Task{Text: "b"}, Task{Text: "c"})
			id := s.Tasks()[1].ID
			s.BeginEdit(id)
			s.CommitEdit(id, tt.text)

			if got := texts(s.Tasks()); !reflect.DeepEqual(got, tt.wantTexts) {
				t.Errorf("got %v, want %v", got, tt.wantTexts)
			}
			if s.Editing() != nil {
				t.Error("edit session should be closed")
			}
		})
	}
}

func TestCommitEmptyEqualsDelete(t *testing.T) {
	for i := 0; i < 3; i++ {
		t.Run(fmt.Sprintf("index %d", i), func(t *testing.T) {
			items := []Task{{Text: "a"}, {Text: "b", Completed: true}, {Text: "c"}}
			committed := seed(t, items...)
			deleted := seed(t, items...)

			committed.CommitEdit(committed.Tasks()[i].ID, "")
			deleted.Delete(deleted.Tasks()[i].ID)

			if !reflect.DeepEqual(texts(committed.Tasks()), texts(deleted.Tasks())) {
				t.Errorf("commit %v != delete %v", texts(committed.Tasks()), texts(deleted.Tasks()))
			}
			if !reflect.DeepEqual(completedFlags(committed.Tasks()), completedFlags(deleted.Tasks())) {
				t.Error("completed flags differ")
			}
		})
	}
}

func TestCommitDraftAndCancel(t *testing.T) {
	s := seed(t, Task{Text: "a"})
	id := s.Tasks()[0].ID

	s.BeginEdit(id)
	s.SetDraft("draft")
	s.CancelEdit()
	if task, _ := s.Get(id); task.Text != "a" {
		t.Errorf("cancel saved the draft: %q", task.Text)
	}

	s.BeginEdit(id)
	s.SetDraft("draft")
	s.CommitDraft()
	if task, _ := s.Get(id); task.Text != "draft" {
		t.Errorf("CommitDraft: got %q, want draft", task.Text)
	}
	if s.Editing() != nil {
		t.Error("session should be closed")
	}
}

func TestSetDraftWithoutSession(t *testing.T) {
	s := seed(t, Task{Text: "a"})
	s.SetDraft("ignored")
	s.CommitDraft()
	if got := texts(s.Tasks()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("got %v", got)
	}
}

func TestClearCompletedPreservesOrder(t *testing.T) {
	s := seed(t,
		Task{Text: "a"},
		Task{Text: "b", Completed: true},
		Task{Text: "c"},
		Task{Text: "d", Completed: true},
		Task{Text: "e"},
	)
	s.ClearCompleted()

	if got := texts(s.Tasks()); !reflect.DeepEqual(got, []string{"a", "c", "e"}) {
		t.Errorf("got %v, want [a c e]", got)
	}
	if s.HasCompleted() {
		t.Error("HasCompleted should be false")
	}
}

func TestClearCompletedNothingToClear(t *testing.T) {
	s := seed(t, Task{Text: "a"})
	var events []Event
	s.OnChange(func(e Event) { events = append(events, e) })

	s.ClearCompleted()
	if len(events) != 0 {
		t.Errorf("expected no events, got %v", events)
	}
}

func TestToggleAll(t *testing.T) {
	tests := []struct {
		name  string
		items []Task
		want  []bool
	}{
		{
			name:  "none complete",
			items: []Task{{Text: "a"}, {Text: "b"}},
			want:  []bool{true, true},
		},
		{
			name:  "some complete",
			items: []Task{{Text: "a", Completed: true}, {Text: "b"}},
			want:  []bool{true, true},
		},
		{
			name:  "all complete",
			items: []Task{{Text: "a", Completed: true}, {Text: "b", Completed: true}},
			want:  []bool{false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seed(t, tt.items...)
			s.ToggleAll()
			if got := completedFlags(s.Tasks()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToggleAllTwiceFromUniformState(t *testing.T) {
	for _, done := range []bool{false, true} {
		s := seed(t, Task{Text: "a", Completed: done}, Task{Text: "b", Completed: done})
		before := completedFlags(s.Tasks())

		s.ToggleAll()
		s.ToggleAll()

		if got := completedFlags(s.Tasks()); !reflect.DeepEqual(got, before) {
			t.Errorf("completed=%v: got %v, want %v", done, got, before)
		}
	}
}

func TestToggleAllTwiceFromMixedState(t *testing.T) {
	s := seed(t, Task{Text: "a", Completed: true}, Task{Text: "b"})

	s.ToggleAll()
	s.ToggleAll()

	if got, want := completedFlags(s.Tasks()), []bool{false, false}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestToggleAllEmpty(t *testing.T) {
	s := NewStore()
	var events []Event
	s.OnChange(func(e Event) { events = append(events, e) })
	s.ToggleAll()
	if len(events) != 0 {
		t.Errorf("expected no events on empty list, got %v", events)
	}
}

func TestVisible(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b", Completed: true})

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterActive, []string{"a"}},
		{FilterCompleted, []string{"b"}},
		{FilterAll, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			s.SetFilter(tt.filter)
			if got := texts(s.Visible()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if s.Len() != 2 {
				t.Errorf("SetFilter changed the list: len %d", s.Len())
			}
		})
	}
}

func TestVisibleIsRecomputed(t *testing.T) {
	s := seed(t, Task{Text: "a"})
	s.SetFilter(FilterActive)
	first := s.Visible()

	s.Toggle(first[0].ID)
	if got := s.Visible(); len(got) != 0 {
		t.Errorf("Visible should reflect the toggle, got %v", texts(got))
	}
	if first[0].Completed {
		t.Error("earlier Visible result was mutated")
	}
}

func TestToggleThroughFilteredView(t *testing.T) {
	s := seed(t,
		Task{Text: "done-1", Completed: true},
		Task{Text: "open-1"},
		Task{Text: "open-2"},
	)
	s.SetFilter(FilterActive)

	// Row 0 of the filtered view is open-1, which is position 1 in the list.
	target := s.Visible()[0]
	s.Toggle(target.ID)

	got, _ := s.Get(target.ID)
	if got.Text != "open-1" || !got.Completed {
		t.Errorf("toggled wrong task: %+v", got)
	}
	if first, _ := s.Get(s.Tasks()[0].ID); !first.Completed {
		t.Error("done-1 should still be completed")
	}
}

func TestRemainingAndHasCompleted(t *testing.T) {
	s := seed(t, Task{Text: "a"}, Task{Text: "b", Completed: true}, Task{Text: "c"})
	if got := s.Remaining(); got != 2 {
		t.Errorf("Remaining: got %d, want 2", got)
	}
	if !s.HasCompleted() {
		t.Error("HasCompleted should be true")
	}
}

func TestObserverEvents(t *testing.T) {
	sequentialIDs(t)
	var events []Event
	s := NewStore(WithObserver(func(e Event) { events = append(events, e) }))

	task, _ := s.Add("a")
	s.Toggle(task.ID)
	s.BeginEdit(task.ID)
	s.CommitEdit(task.ID, "b")
	s.SetFilter(FilterCompleted)
	s.SetFilter(FilterCompleted)
	s.ClearCompleted()

	want := []Op{OpAdd, OpToggle, OpBeginEdit, OpCommitEdit, OpSetFilter, OpClearCompleted}
	if len(events) != len(want) {
		t.Fatalf("got %d events (%v), want %d", len(events), events, len(want))
	}
	for i, op := range want {
		if events[i].Op != op {
			t.Errorf("event %d: got %s, want %s", i, events[i].Op, op)
		}
	}
	if events[0].ID != task.ID {
		t.Errorf("add event ID: got %q, want %q", events[0].ID, task.ID)
	}
	if events[2].Persistent() {
		t.Error("begin_edit should not be persistent")
	}
	if !events[1].Persistent() {
		t.Error("toggle should be persistent")
	}
}

func TestWithTasksDropsBlankAndAssignsIDs(t *testing.T) {
	sequentialIDs(t)
	s := NewStore(WithTasks([]Task{
		{ID: "keep", Text: "a"},
		{Text: "   "},
		{Text: " b ", Completed: true},
	}))

	tasks := s.Tasks()
	if got := texts(tasks); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %v", got)
	}
	if tasks[0].ID != "keep" {
		t.Errorf("existing ID replaced: %q", tasks[0].ID)
	}
	if tasks[1].ID == "" {
		t.Error("missing ID not assigned")
	}
}

func TestWithTasksReassignsDuplicateIDs(t *testing.T) {
	sequentialIDs(t)
	s := NewStore(WithTasks([]Task{
		{ID: "aaaa", Text: "first"},
		{ID: "aaaa", Text: "second"},
	}))

	tasks := s.Tasks()
	if tasks[0].ID != "aaaa" || tasks[1].ID == "aaaa" {
		t.Fatalf("IDs: got %q, %q", tasks[0].ID, tasks[1].ID)
	}

	s.Toggle(s.Visible()[1].ID)
	if got := completedFlags(s.Tasks()); !reflect.DeepEqual(got, []bool{false, true}) {
		t.Errorf("toggling the second task: got %v", got)
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	s := seed(t, Task{Text: "a"})
	tasks := s.Tasks()
	tasks[0].Text = "mutated"
	if s.Tasks()[0].Text != "a" {
		t.Error("Tasks should return a copy")
	}
}

func TestReadsDoNotShareTimestamps(t *testing.T) {
	s := seed(t, Task{Text: "a"})
	id := s.Tasks()[0].ID
	want := *s.Tasks()[0].UpdatedAt
	later := want.Add(time.Hour)

	reads := map[string]func() Task{
		"Tasks":   func() Task { return s.Tasks()[0] },
		"Visible": func() Task { return s.Visible()[0] },
		"Get":     func() Task { task, _ := s.Get(id); return task },
		"Resolve": func() Task { task, _ := s.Resolve(string(id)); return task },
	}
	for name, read := range reads {
		t.Run(name, func(t *testing.T) {
			task := read()
			*task.UpdatedAt = later
			*task.CreatedAt = later
			if got := *s.Tasks()[0].UpdatedAt; !got.Equal(want) {
				t.Errorf("UpdatedAt changed to %v", got)
			}
			if got := *s.Tasks()[0].CreatedAt; !got.Equal(want) {
				t.Errorf("CreatedAt changed to %v", got)
			}
		})
	}
}

func TestWithTasksCopiesTimestamps(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []Task{{ID: "a", Text: "x", UpdatedAt: &ts}}
	s := NewStore(WithTasks(in))

	*in[0].UpdatedAt = ts.Add(time.Hour)
	if got := *s.Tasks()[0].UpdatedAt; !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("store timestamp follows caller's pointer: %v", got)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"all", FilterAll, false},
		{"Active", FilterActive, false},
		{" COMPLETED ", FilterCompleted, false},
		{"pending", "", true},
		{"", "", true},
		{"done", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterNext(t *testing.T) {
	if FilterAll.Next() != FilterActive || FilterActive.Next() != FilterCompleted || FilterCompleted.Next() != FilterAll {
		t.Error("Next should cycle all -> active -> completed -> all")
	}
	if Filter("bogus").Next() != FilterAll {
		t.Error("unknown filter should reset to all")
	}
}

func TestIDShort(t *testing.T) {
	if got := ID("0123456789abcdef").Short(); got != "01234567" {
		t.Errorf("Short: got %q", got)
	}
	if got := ID("abc").Short(); got != "abc" {
		t.Errorf("Short: got %q", got)
	}
}
