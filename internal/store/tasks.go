package store

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

// Task is a to-do item. Only top-level tasks carry subtasks.
type Task struct {
	ID            int    `json:"id"`
	Text          string `json:"text"`
	Completed     bool   `json:"completed"`
	Subtasks      []Task `json:"subtasks"`
	NextSubtaskID int    `json:"next_subtask_id,omitempty"`
}

// TaskList is the root of the persisted document.
type TaskList struct {
	NextID int    `json:"next_id,omitempty"`
	Tasks  []Task `json:"tasks"`
}

// exhaustedID is the counter value once no larger id can be handed out.
const exhaustedID = math.MaxInt

type groupKind int

const (
	topLevel groupKind = iota
	subtaskOf
)

// Group is an ordered task collection together with the counter that hands
// out its ids. Ids are never reused within a group.
type Group struct {
	Parent int
	kind   groupKind
	items  *[]Task
	nextID *int
}

func (t *Task) Complete() {
	t.Completed = true
	for i := range t.Subtasks {
		t.Subtasks[i].Complete()
	}
}

func (t *Task) Uncomplete() {
	t.Completed = false
	for i := range t.Subtasks {
		t.Subtasks[i].Uncomplete()
	}
}

func (t Task) String() string {
	if t.Completed {
		return "[x] " + t.Text
	}
	return "[ ] " + t.Text
}

// Root returns the group of top-level tasks.
func (l *TaskList) Root() Group {
	return Group{kind: topLevel, items: &l.Tasks, nextID: &l.NextID}
}

// Subtasks returns the subtask group of the task with the given id.
func (l *TaskList) Subtasks(parentID int) (Group, error) {
	root := l.Root()
	idx := root.index(parentID)
	if idx < 0 {
		return Group{}, root.notFound(parentID)
	}
	parent := &l.Tasks[idx]
	return Group{kind: subtaskOf, Parent: parent.ID, items: &parent.Subtasks, nextID: &parent.NextSubtaskID}, nil
}

// normalize repairs documents written before id counters were persisted:
// counters move past every id in use and duplicate ids get fresh ones. Null
// subtask arrays become empty.
func (l *TaskList) normalize() {
	if l.Tasks == nil {
		l.Tasks = []Task{}
	}
	l.NextID = renumberDuplicates(l.Tasks, nextFree(l.Tasks, l.NextID))
	for i := range l.Tasks {
		t := &l.Tasks[i]
		if t.Subtasks == nil {
			t.Subtasks = []Task{}
		}
		t.NextSubtaskID = renumberDuplicates(t.Subtasks, nextFree(t.Subtasks, t.NextSubtaskID))
		for j := range t.Subtasks {
			if t.Subtasks[j].Subtasks == nil {
				t.Subtasks[j].Subtasks = []Task{}
			}
		}
	}
}

func nextFree(tasks []Task, next int) int {
	if next < 1 {
		next = 1
	}
	for _, t := range tasks {
		if t.ID >= next {
			if t.ID == exhaustedID {
				return exhaustedID
			}
			next = t.ID + 1
		}
	}
	return next
}

// renumberDuplicates keeps the first task holding an id and moves later ones
// onto fresh ids taken from next. It returns the advanced counter.
func renumberDuplicates(tasks []Task, next int) int {
	seen := make(map[int]bool, len(tasks))
	for i := range tasks {
		if seen[tasks[i].ID] && next != exhaustedID {
			tasks[i].ID = next
			next++
		}
		seen[tasks[i].ID] = true
	}
	return next
}

func (g Group) Add(text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, fmt.Errorf("%w: text is required", ErrInvalid)
	}
	if *g.nextID < 1 {
		*g.nextID = nextFree(*g.items, 1)
	}
	if *g.nextID == exhaustedID {
		return Task{}, fmt.Errorf("%w: no %s ids left", ErrInvalid, g.noun())
	}
	t := Task{ID: *g.nextID, Text: text, Subtasks: []Task{}}
	*g.nextID++
	*g.items = append(*g.items, t)
	return t, nil
}

func (g Group) Edit(id int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalid)
	}
	t, err := g.lookup(id)
	if err != nil {
		return err
	}
	t.Text = text
	return nil
}

// Complete marks the task and all of its subtasks completed.
func (g Group) Complete(id int) error {
	t, err := g.lookup(id)
	if err != nil {
		return err
	}
	t.Complete()
	return nil
}

func (g Group) Uncomplete(id int) error {
	t, err := g.lookup(id)
	if err != nil {
		return err
	}
	t.Uncomplete()
	return nil
}

// Remove deletes the task. Ids of the remaining tasks do not change.
func (g Group) Remove(id int) error {
	idx := g.index(id)
	if idx < 0 {
		return g.notFound(id)
	}
	items := *g.items
	*g.items = append(items[:idx], items[idx+1:]...)
	return nil
}

func (g Group) Get(id int) (Task, error) {
	t, err := g.lookup(id)
	if err != nil {
		return Task{}, err
	}
	return *t, nil
}

// List returns the tasks in display order.
func (g Group) List() []Task {
	return *g.items
}

// Clear drops every task in the group but keeps the id sequence.
func (g Group) Clear() {
	*g.items = []Task{}
}

// IsSubtasks reports whether g holds the subtasks of a task.
func (g Group) IsSubtasks() bool {
	return g.kind == subtaskOf
}

func (g Group) noun() string {
	if g.IsSubtasks() {
		return "subtask"
	}
	return "task"
}

// Label names a task of this group in messages, e.g. "subtask 2 of task 1".
func (g Group) Label(id int) string {
	if g.IsSubtasks() {
		return fmt.Sprintf("subtask %d of task %d", id, g.Parent)
	}
	return fmt.Sprintf("task %d", id)
}

func (g Group) lookup(id int) (*Task, error) {
	idx := g.index(id)
	if idx < 0 {
		return nil, g.notFound(id)
	}
	return &(*g.items)[idx], nil
}

func (g Group) index(id int) int {
	for i, t := range *g.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (g Group) notFound(id int) error {
	return fmt.Errorf("%s %w", g.Label(id), ErrNotFound)
}
