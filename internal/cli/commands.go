package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/tdr/internal/store"
)

// operation is a command that works the same on top-level tasks and on the
// subtasks of one task.
type operation struct {
	name    string
	args    string
	short   string
	minArgs int
	maxArgs int // -1 for no limit
	run     func(a *app, g store.Group, args []string) (bool, error)
}

var operations = []operation{
	{name: "add", args: "<text>", short: "Add a task", minArgs: 1, maxArgs: -1, run: runAdd},
	{name: "edit", args: "<id> <text>", short: "Replace the text of a task", minArgs: 2, maxArgs: -1, run: runEdit},
	{name: "complete", args: "<id>", short: "Complete a task and its subtasks", minArgs: 1, maxArgs: 1, run: runComplete},
	{name: "uncomplete", args: "<id>", short: "Uncomplete a task and its subtasks", minArgs: 1, maxArgs: 1, run: runUncomplete},
	{name: "get", args: "<id>", short: "Show a task", minArgs: 1, maxArgs: 1, run: runGet},
	{name: "remove", args: "<id>", short: "Remove a task", minArgs: 1, maxArgs: 1, run: runRemove},
	{name: "list", short: "List all tasks", run: runList},
	{name: "clear", short: "Remove all tasks", run: runClear},
}

func findOperation(name string) (operation, bool) {
	for _, op := range operations {
		if op.name == name {
			return op, true
		}
	}
	return operation{}, false
}

func (op operation) use() string {
	if op.args == "" {
		return op.name
	}
	return op.name + " " + op.args
}

func (a *app) operationCmd(op operation) *cobra.Command {
	return &cobra.Command{
		Use:   op.use(),
		Short: op.short,
		Args:  argRange(op.minArgs, op.maxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withList(func(list *store.TaskList) (bool, error) {
				return op.run(a, list.Root(), args)
			})
		},
	}
}

func (a *app) subtaskCmd() *cobra.Command {
	names := make([]string, 0, len(operations))
	for _, op := range operations {
		names = append(names, op.name)
	}
	return &cobra.Command{
		Use:   fmt.Sprintf("subtask <id> <%s> [args]", strings.Join(names, "|")),
		Short: "Work with the subtasks of a task",
		Args:  argRange(2, -1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := parseID(args[0])
			if err != nil {
				return err
			}
			op, ok := findOperation(args[1])
			if !ok {
				return usageErrorf("unknown subtask command %q", args[1])
			}
			rest := args[2:]
			if len(rest) < op.minArgs || (op.maxArgs >= 0 && len(rest) > op.maxArgs) {
				return usageErrorf("usage: tdr subtask <id> %s", op.use())
			}
			return a.withList(func(list *store.TaskList) (bool, error) {
				g, err := list.Subtasks(parentID)
				if err != nil {
					return false, err
				}
				return op.run(a, g, rest)
			})
		},
	}
}

func runAdd(a *app, g store.Group, args []string) (bool, error) {
	text := strings.Join(args, " ")
	t, err := g.Add(text)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "Added %s with text %s\n", g.Label(t.ID), t.Text)
	return true, nil
}

func runEdit(a *app, g store.Group, args []string) (bool, error) {
	id, err := parseID(args[0])
	if err != nil {
		return false, err
	}
	if err := g.Edit(id, strings.Join(args[1:], " ")); err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "Edited %s\n", g.Label(id))
	return true, nil
}

func runComplete(a *app, g store.Group, args []string) (bool, error) {
	id, err := parseID(args[0])
	if err != nil {
		return false, err
	}
	if err := g.Complete(id); err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "Completed %s\n", g.Label(id))
	return true, nil
}

func runUncomplete(a *app, g store.Group, args []string) (bool, error) {
	id, err := parseID(args[0])
	if err != nil {
		return false, err
	}
	if err := g.Uncomplete(id); err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "Uncompleted %s\n", g.Label(id))
	return true, nil
}

func runGet(a *app, g store.Group, args []string) (bool, error) {
	id, err := parseID(args[0])
	if err != nil {
		return false, err
	}
	t, err := g.Get(id)
	if err != nil {
		return false, err
	}
	fmt.Fprintln(a.out, t)
	return false, nil
}

func runRemove(a *app, g store.Group, args []string) (bool, error) {
	id, err := parseID(args[0])
	if err != nil {
		return false, err
	}
	if err := g.Remove(id); err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "Removed %s\n", g.Label(id))
	return true, nil
}

func runList(a *app, g store.Group, args []string) (bool, error) {
	fmt.Fprint(a.out, store.RenderList(g.List()))
	return false, nil
}

func runClear(a *app, g store.Group, args []string) (bool, error) {
	g.Clear()
	if g.IsSubtasks() {
		fmt.Fprintf(a.out, "Cleared all subtasks of task %d\n", g.Parent)
	} else {
		fmt.Fprintln(a.out, "Cleared all tasks")
	}
	return true, nil
}
