package syncer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// StorageKey names the local mirror.
const StorageKey = "task-manager-tasks"

// Mirror is the durable local copy of the entry list. Save always replaces
// the whole list.
type Mirror interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// FileMirror stores entries as a JSON array in a single file.
type FileMirror struct {
	Path string
}

func NewFileMirror(path string) *FileMirror {
	return &FileMirror{Path: path}
}

// DefaultMirrorPath is $HOME/.taskmind/task-manager-tasks.json.
func DefaultMirrorPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "home dir")
	}
	return filepath.Join(home, ".taskmind", StorageKey+".json"), nil
}

func (m *FileMirror) Load(_ context.Context) ([]Entry, error) {
	raw, err := os.ReadFile(m.Path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read mirror %s", m.Path)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrapf(err, "parse mirror %s", m.Path)
	}
	if entries == nil {
		entries = []Entry{}
	}
	// mirrors written before client ids existed
	for i := range entries {
		if entries[i].ClientID == "" {
			entries[i].ClientID = uuid.NewString()
		}
	}
	return entries, nil
}

// Save writes to a temp file in the same directory and renames it over the
// mirror so a crash never leaves a truncated file.
func (m *FileMirror) Save(_ context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode mirror")
	}

	dir := filepath.Dir(m.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+StorageKey+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp mirror")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write temp mirror")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp mirror")
	}
	if err := os.Rename(tmpName, m.Path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace mirror")
	}
	return nil
}
