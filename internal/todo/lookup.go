package todo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoMatch   = errors.New("no task matches")
	ErrAmbiguous = errors.New("task reference is ambiguous")
)

// Resolve finds the single task whose ID starts with prefix. A full ID always
// wins over other tasks sharing the prefix.
func (s *Store) Resolve(prefix string) (Task, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return Task{}, fmt.Errorf("empty reference: %w", ErrNoMatch)
	}

	var matches []Task
	for _, t := range s.tasks {
		id := strings.ToLower(string(t.ID))
		if id == prefix {
			return t.clone(), nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return Task{}, fmt.Errorf("%q: %w", prefix, ErrNoMatch)
	case 1:
		return matches[0].clone(), nil
	default:
		return Task{}, fmt.Errorf("%q matches %d tasks: %w", prefix, len(matches), ErrAmbiguous)
	}
}
