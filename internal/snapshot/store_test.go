package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/quantd/internal/quant/scoring"
)

// memBackend is an in-memory Backend for tests.
type memBackend struct {
	files map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{files: make(map[string][]byte)}
}

func (m *memBackend) Put(_ context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[name] = data
	return nil
}

func (m *memBackend) Get(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBackend) List(_ context.Context, _ string) ([]string, error) {
	out := make([]string, 0, len(m.files))
	for name := range m.files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memBackend) Delete(_ context.Context, path string) error {
	delete(m.files, path)
	return nil
}

func snapAt(ts time.Time) *Snapshot {
	return &Snapshot{
		CreatedAt: ts,
		Sector:    "tech",
		Weights:   scoring.DefaultWeights(),
		Candidates: []scoring.Candidate{
			{Rank: 1, Analysis: scoring.Analysis{Ticker: "ACME"}},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)

	ts := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	name, err := store.Save(ctx, snapAt(ts))
	require.NoError(t, err)
	assert.Equal(t, "scan-20260110T120000Z.json", name)

	got, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "tech", got.Sector)
	assert.NotEmpty(t, got.ID)
	require.Len(t, got.Candidates, 1)
	assert.Equal(t, "ACME", got.Candidates[0].Ticker)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.Save(ctx, snapAt(base.AddDate(0, 0, i)))
		require.NoError(t, err)
	}
	// non-snapshot files in the repository are ignored
	backend.files["README.txt"] = []byte("hi")

	names, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, names, 3)
	assert.Equal(t, "scan-20260112T000000Z.json", names[0])
	assert.Equal(t, "scan-20260110T000000Z.json", names[2])
}

func TestLatest(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemBackend())

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 5)
	_, err = store.Save(ctx, snapAt(older))
	require.NoError(t, err)
	_, err = store.Save(ctx, snapAt(newer))
	require.NoError(t, err)

	got, err = store.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer, got.CreatedAt)
}

func TestRetain(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	store := NewStore(backend)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.Save(ctx, snapAt(base.AddDate(0, 0, i)))
		require.NoError(t, err)
	}

	require.NoError(t, store.Retain(ctx, 2))

	names, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "scan-20260105T000000Z.json", names[0])
	assert.Equal(t, "scan-20260104T000000Z.json", names[1])

	// fewer snapshots than the keep count is a no-op
	require.NoError(t, store.Retain(ctx, 10))
	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 2)

	assert.Error(t, store.Retain(ctx, 0))
}
