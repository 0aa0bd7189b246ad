package kvstore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nucleus-console/pkg/kvstore"
)

func TestFileStore_RoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()

	s1 := kvstore.NewFileStore(path)
	_, err := s1.Get(ctx, "nucleus_user")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s1.Set(ctx, "nucleus_user", "admin"))
	require.NoError(t, s1.Set(ctx, "nucleus_hosts", `[{"id":"a"}]`))

	s2 := kvstore.NewFileStore(path)
	v, err := s2.Get(ctx, "nucleus_hosts")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, v)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap struct {
		Version int               `json:"version"`
		Values  map[string]string `json:"values"`
	}
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, 1, snap.Version)
	assert.Len(t, snap.Values, 2)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	ctx := context.Background()

	s := kvstore.NewFileStore(path)
	_, err := s.Get(ctx, "nucleus_user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "nucleus_user", "stephenc"))
	v, err := kvstore.NewFileStore(path).Get(ctx, "nucleus_user")
	require.NoError(t, err)
	assert.Equal(t, "stephenc", v)
}

func TestDefaultPath_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	p, err := kvstore.DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nucleus-console", "state.json"), p)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    kvstore.OpenOptions
		wantErr bool
		check   func(t *testing.T, s kvstore.Store)
	}{
		{
			name: "memory",
			opts: kvstore.OpenOptions{Backend: "memory"},
			check: func(t *testing.T, s kvstore.Store) {
				assert.IsType(t, &kvstore.MemoryStore{}, s)
			},
		},
		{
			name: "file with path",
			opts: kvstore.OpenOptions{Backend: "FILE", Path: "/tmp/nucleus-test/state.json"},
			check: func(t *testing.T, s kvstore.Store) {
				fs, ok := s.(*kvstore.FileStore)
				require.True(t, ok)
				assert.Equal(t, "/tmp/nucleus-test/state.json", fs.Path())
			},
		},
		{name: "redis without addr", opts: kvstore.OpenOptions{Backend: "redis"}, wantErr: true},
		{name: "unknown", opts: kvstore.OpenOptions{Backend: "etcd"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := kvstore.Open(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			tt.check(t, s)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := kvstore.NewMemoryStore()
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	require.NoError(t, s.Set(ctx, "k", "v"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
