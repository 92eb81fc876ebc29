package store

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const FileName = "tasks.json"

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var timeNow = func() time.Time { return time.Now().UTC() }

const taskListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "next_id": {"type": "integer", "minimum": 0},
    "tasks": {"type": "array", "items": {"$ref": "#/definitions/task"}}
  },
  "definitions": {
    "task": {
      "type": "object",
      "required": ["id", "text", "completed"],
      "properties": {
        "id": {"type": "integer", "minimum": 1},
        "text": {"type": "string"},
        "completed": {"type": "boolean"},
        "next_subtask_id": {"type": "integer", "minimum": 0},
        "subtasks": {
          "oneOf": [
            {"type": "null"},
            {"type": "array", "items": {"$ref": "#/definitions/task"}}
          ]
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("tasks.schema.json", taskListSchema)

// Store is the task document inside a data directory.
type Store struct {
	Dir    string
	Path   string
	Indent bool
	log    *log.Logger
}

// Open ensures dir exists and holds a tasks file, creating an empty one on
// first use.
func Open(dir string, logger *log.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: data directory is required", ErrInvalid)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	logger.Debug("opened task file", "path", path)
	return &Store{Dir: dir, Path: path, log: logger}, nil
}

// Load reads the task list. A file that is empty, is not JSON, or does not
// have the task list shape yields an empty list.
func (s *Store) Load() (*TaskList, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptyList(), nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return emptyList(), nil
	}
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		s.log.Debug("discarding unreadable task file", "path", s.Path, "err", err)
		return emptyList(), nil
	}
	if err := schema.Validate(doc); err != nil {
		s.log.Debug("discarding task file with unexpected shape", "path", s.Path, "err", err)
		return emptyList(), nil
	}
	var list TaskList
	if err := json.Unmarshal(b, &list); err != nil {
		s.log.Debug("discarding unreadable task file", "path", s.Path, "err", err)
		return emptyList(), nil
	}
	list.normalize()
	s.log.Debug("loaded tasks", "path", s.Path, "count", len(list.Tasks))
	return &list, nil
}

// Save replaces the task file with the full serialization of list.
func (s *Store) Save(list *TaskList) error {
	if list == nil {
		return fmt.Errorf("%w: nil task list", ErrInvalid)
	}
	list.normalize()
	var (
		b   []byte
		err error
	)
	if s.Indent {
		b, err = json.MarshalIndent(list, "", "  ")
	} else {
		b, err = json.Marshal(list)
	}
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	b = append(b, '\n')
	if err := atomicWriteFile(s.Path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	s.log.Debug("saved tasks", "path", s.Path, "count", len(list.Tasks))
	return nil
}

func emptyList() *TaskList {
	l := &TaskList{}
	l.normalize()
	return l
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, ".tmp-"+newULID())
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
