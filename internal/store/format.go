package store

import (
	"fmt"
	"strings"
)

// RenderList renders tasks by display position, with each task's subtasks
// indented beneath it. A task whose id differs from its position carries the
// id after its text.
func RenderList(tasks []Task) string {
	var b strings.Builder
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d: %s%s\n", i+1, t, idSuffix(i+1, t.ID))
		for j, st := range t.Subtasks {
			fmt.Fprintf(&b, "  %d: %s%s\n", j+1, st, idSuffix(j+1, st.ID))
		}
	}
	return b.String()
}

func idSuffix(position, id int) string {
	if position == id {
		return ""
	}
	return fmt.Sprintf(" (id %d)", id)
}
