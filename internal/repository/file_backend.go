package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

const (
	journalFile = "commit.journal"
	lockFile    = ".lock"
	tmpSuffix   = ".tmp"
)

// ErrDirLocked is returned when another process already has the data dir open.
var ErrDirLocked = errors.New("data dir is locked by another process")

// FileBackend keeps one <collection>.json file per collection in a directory.
// A batch is written to temp files, recorded in a journal, then renamed into
// place; a journal left behind by a crash is replayed by NewFileBackend.
//
// Only one process may open a directory at a time: NewFileBackend takes an
// exclusive lock on <dir>/.lock and holds it until Close.
type FileBackend struct {
	dir  string
	lock *flock.Flock
	mu   sync.Mutex
}

type journal struct {
	Collections []Collection `json:"collections"`
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrUnavailable, err)
	}
	lock := flock.New(filepath.Join(dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: lock data dir: %v", ErrUnavailable, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %w: %s", ErrUnavailable, ErrDirLocked, dir)
	}

	b := &FileBackend{dir: dir, lock: lock}
	if err := b.recover(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return b, nil
}

// Close releases the directory lock.
func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lock.Unlock()
}

func (b *FileBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path(c))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (b *FileBackend) Write(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	j := journal{}
	for _, w := range writes {
		if err := writeFileSync(b.path(w.Collection)+tmpSuffix, w.Data); err != nil {
			b.discardTemps(writes)
			return fmt.Errorf("%w: stage %s: %v", ErrUnavailable, w.Collection, err)
		}
		j.Collections = append(j.Collections, w.Collection)
	}

	payload, err := json.Marshal(j)
	if err != nil {
		b.discardTemps(writes)
		return err
	}
	journalPath := filepath.Join(b.dir, journalFile)
	if err := writeFileSync(journalPath+tmpSuffix, payload); err != nil {
		b.discardTemps(writes)
		return fmt.Errorf("%w: journal: %v", ErrUnavailable, err)
	}
	if err := os.Rename(journalPath+tmpSuffix, journalPath); err != nil {
		b.discardTemps(writes)
		return fmt.Errorf("%w: journal: %v", ErrUnavailable, err)
	}

	// From here on the batch is committed; a failure is finished by recover.
	if err := b.apply(j, false); err != nil {
		return fmt.Errorf("%w: apply: %v", ErrUnavailable, err)
	}
	return nil
}

func (b *FileBackend) recover() error {
	journalPath := filepath.Join(b.dir, journalFile)
	payload, err := os.ReadFile(journalPath)
	switch {
	case err == nil:
		var j journal
		if err := json.Unmarshal(payload, &j); err != nil {
			return fmt.Errorf("%w: corrupt journal: %v", ErrUnavailable, err)
		}
		if err := b.apply(j, true); err != nil {
			return fmt.Errorf("%w: replay journal: %v", ErrUnavailable, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Temps without a journal belong to a batch that never committed.
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), tmpSuffix) {
			_ = os.Remove(filepath.Join(b.dir, e.Name()))
		}
	}
	return nil
}

// apply renames the journaled temps into place. On replay a missing temp was
// already renamed before the crash; on a live write it means the batch is lost
// and the journal is left for the next open.
func (b *FileBackend) apply(j journal, replay bool) error {
	for _, c := range j.Collections {
		tmp := b.path(c) + tmpSuffix
		if _, err := os.Stat(tmp); errors.Is(err, os.ErrNotExist) {
			if replay {
				continue
			}
			return fmt.Errorf("staged %s is missing", c)
		}
		if err := os.Rename(tmp, b.path(c)); err != nil {
			return err
		}
	}
	return os.Remove(filepath.Join(b.dir, journalFile))
}

func (b *FileBackend) discardTemps(writes []Write) {
	for _, w := range writes {
		_ = os.Remove(b.path(w.Collection) + tmpSuffix)
	}
}

func (b *FileBackend) path(c Collection) string {
	return filepath.Join(b.dir, string(c)+".json")
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var _ Backend = (*FileBackend)(nil)
