package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_WriteIsVisibleAndClean(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	err = backend.Write(ctx, []Write{
		{Collection: CollectionTables, Data: []byte(`[]`)},
		{Collection: CollectionBookings, Data: []byte(`[{"bookingId":1}]`)},
	})
	require.NoError(t, err)

	data, err := backend.Read(ctx, CollectionBookings)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"bookingId":1}]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{".lock", "tables.json", "bookings.json"}, names)
}

func TestFileBackend_ReplaysJournalOnOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.json"), []byte(`[{"tableId":1}]`), 0o644))

	// Simulate a crash after the journal was written but before the renames.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.json.tmp"), []byte(`[{"tableId":2}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bookings.json.tmp"), []byte(`[{"bookingId":5}]`), 0o644))
	payload, err := json.Marshal(journal{Collections: []Collection{CollectionTables, CollectionBookings}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, journalFile), payload, 0o644))

	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	tables, err := backend.Read(context.Background(), CollectionTables)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"tableId":2}]`, string(tables))

	bookings, err := backend.Read(context.Background(), CollectionBookings)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"bookingId":5}]`, string(bookings))

	_, err = os.Stat(filepath.Join(dir, journalFile))
	assert.True(t, os.IsNotExist(err))
}

func TestFileBackend_DropsUncommittedTemps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "customers.json.tmp"), []byte(`[{"customerId":1}]`), 0o644))

	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	data, err := backend.Read(context.Background(), CollectionCustomers)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	_, err = os.Stat(filepath.Join(dir, "customers.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileBackend_MissingFile(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	data, err := backend.Read(context.Background(), CollectionOrders)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileBackend_SecondOpenerIsRejected(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileBackend(dir)
	require.NoError(t, err)

	// A second opener must not sweep the first one's staged temps.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.json.tmp"), []byte(`[]`), 0o644))

	_, err = NewFileBackend(dir)
	require.ErrorIs(t, err, ErrDirLocked)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = os.Stat(filepath.Join(dir, "tables.json.tmp"))
	assert.NoError(t, err)

	require.NoError(t, first.Close())
	second, err := NewFileBackend(dir)
	require.NoError(t, err)
	defer second.Close()
}

func TestFileBackend_ApplyFailsOnMissingStagedFile(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.json"), []byte(`[{"tableId":1}]`), 0o644))
	payload, err := json.Marshal(journal{Collections: []Collection{CollectionTables}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, journalFile), payload, 0o644))

	err = backend.apply(journal{Collections: []Collection{CollectionTables}}, false)
	require.Error(t, err)

	data, err := backend.Read(context.Background(), CollectionTables)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"tableId":1}]`, string(data))
	_, err = os.Stat(filepath.Join(dir, journalFile))
	assert.False(t, errors.Is(err, os.ErrNotExist), "journal is kept for the next open")

	// Replay treats the same gap as an already renamed file.
	require.NoError(t, backend.apply(journal{Collections: []Collection{CollectionTables}}, true))
}
