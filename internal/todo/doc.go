// Package todo holds the task list state machine and its snapshot file.
//
// A Store owns an ordered list of tasks, the active filter, and at most one
// edit session. Every operation is synchronous and never reports an error:
// empty text is ignored on add, unknown IDs are no-ops, and committing an edit
// with empty text deletes the task.
//
// # Task Identity
//
// Each task gets a UUID when it is created. Toggle, edit, and delete take that
// ID, never a position, so a cursor over a filtered view always reaches the
// task it points at.
//
// # Filters
//
//   - "all": every task, insertion order
//   - "active": tasks with completed == false
//   - "completed": tasks with completed == true
//
// # Snapshot File
//
// The optional snapshot (todos.json) mirrors the store between runs:
//
//	{
//	  "schema_version": 1,
//	  "filter": "active",
//	  "tasks": [
//	    {
//	      "id": "0b6f3c1e-6c1d-4d0e-9a55-6f0b3b0d2f7a",
//	      "text": "Buy milk",
//	      "completed": false,
//	      "created_at": "2024-01-01T00:00:00Z",
//	      "updated_at": "2024-01-01T00:00:00Z"
//	    }
//	  ]
//	}
//
// Files are written with 2-space indentation and a trailing newline, through a
// temporary file that is renamed into place. Validation runs against the
// embedded JSON Schema (draft 2020-12) or a schema file supplied by the caller,
// and falls back to minimal structural checks when that file is unusable.
package todo
