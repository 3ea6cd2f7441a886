package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		op       fsnotify.Op
		path     string
		want     ChangeType
		relevant bool
	}{
		{
			name:     "create file",
			op:       fsnotify.Create,
			path:     "/docs/handbook.md",
			want:     ChangeCreated,
			relevant: true,
		},
		{
			name:     "write file",
			op:       fsnotify.Write,
			path:     "/docs/handbook.md",
			want:     ChangeUpdated,
			relevant: true,
		},
		{
			name:     "remove file",
			op:       fsnotify.Remove,
			path:     "/docs/handbook.md",
			want:     ChangeDeleted,
			relevant: true,
		},
		{
			name:     "rename away is a delete",
			op:       fsnotify.Rename,
			path:     "/docs/handbook.md",
			want:     ChangeDeleted,
			relevant: true,
		},
		{
			name:     "chmod is ignored",
			op:       fsnotify.Chmod,
			path:     "/docs/handbook.md",
			relevant: false,
		},
		{
			name:     "hidden file is ignored",
			op:       fsnotify.Create,
			path:     "/docs/.handbook.md.swp",
			relevant: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, relevant := Classify(tt.op, tt.path)

			assert.Equal(t, tt.relevant, relevant)
			if tt.relevant {
				assert.Equal(t, tt.want, event.Type)
				assert.Equal(t, tt.path, event.Path)
			}
		})
	}
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "created", ChangeCreated.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "deleted", ChangeDeleted.String())
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New("/no/such/directory")

	assert.Error(t, err)
}

func TestWatcher_ReportsCreate(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // cancelled at test end

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0600))

	select {
	case event := <-w.Events():
		assert.Equal(t, path, event.Path)
		assert.Contains(t, []ChangeType{ChangeCreated, ChangeUpdated}, event.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
