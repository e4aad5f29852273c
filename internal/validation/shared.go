package validation

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Error reports request validation failures keyed by JSON field name.
// Handlers return Fields as the details of a 400 response.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	fields := slices.Sorted(maps.Keys(e.Fields))
	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
