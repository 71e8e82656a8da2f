package services

import (
	"fmt"

	"github.com/nextask/core/internal/domain/entities"
)

// Filter selects which tasks appear in the list view
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterCompleted Filter = "completed"
)

// IsValid reports whether the filter is a known selection
func (f Filter) IsValid() bool {
	switch f {
	case FilterAll, FilterToday, FilterCompleted:
		return true
	default:
		return false
	}
}

// ParseFilter maps a query value to a filter; empty means all
func ParseFilter(value string) (Filter, error) {
	if value == "" {
		return FilterAll, nil
	}
	f := Filter(value)
	if !f.IsValid() {
		return "", fmt.Errorf("unknown filter %q", value)
	}
	return f, nil
}

// View derives the display-ready list from a task collection: tasks are
// filtered by the selection, then partitioned so every incomplete task
// precedes every completed one, preserving the relative order within each
// group. today is the evaluation date in YYYY-MM-DD form. The function is
// deterministic and never mutates its inputs.
func View(tasks []*entities.Task, filter Filter, today string) []*entities.Task {
	filtered := make([]*entities.Task, 0, len(tasks))
	for _, t := range tasks {
		switch filter {
		case FilterToday:
			if t.DueToday(today) {
				filtered = append(filtered, t)
			}
		case FilterCompleted:
			if t.Completed {
				filtered = append(filtered, t)
			}
		default:
			filtered = append(filtered, t)
		}
	}

	out := make([]*entities.Task, 0, len(filtered))
	for _, t := range filtered {
		if !t.Completed {
			out = append(out, t)
		}
	}
	for _, t := range filtered {
		if t.Completed {
			out = append(out, t)
		}
	}

	return out
}
