// Package snapshot persists scan results in the configured repository
// (localfs, s3 or sftp, optionally compressed and encrypted).
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hashmap-kz/quantd/internal/quant/scoring"
)

// Backend is the slice of the repository storage API the store needs;
// *storage.VariadicStorage built by SetupStorage satisfies it.
type Backend interface {
	Put(ctx context.Context, name string, r io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, path string) ([]string, error)
	Delete(ctx context.Context, path string) error
}

// SubPath is the repository subdirectory snapshots live under.
const SubPath = "snapshots"

const fileTimeLayout = "20060102T150405Z"

// Snapshot is one completed universe scan.
type Snapshot struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	Sector     string              `json:"sector"`
	Weights    scoring.Weights     `json:"weights"`
	Candidates []scoring.Candidate `json:"candidates"`
	TopPicks   []scoring.Candidate `json:"top_picks"`
}

type Store struct {
	l    *slog.Logger
	stor Backend
}

func NewStore(stor Backend) *Store {
	return &Store{
		l:    slog.With(slog.String("component", "snapshot-store")),
		stor: stor,
	}
}

func (s *Store) log() *slog.Logger {
	if s.l != nil {
		return s.l
	}
	return slog.With(slog.String("component", "snapshot-store"))
}

// Save writes a snapshot under a timestamped name and returns that name.
func (s *Store) Save(ctx context.Context, snap *Snapshot) (string, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("scan-%s.json", snap.CreatedAt.UTC().Format(fileTimeLayout))
	if err := s.stor.Put(ctx, name, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("store snapshot %s: %w", name, err)
	}

	s.log().Info("snapshot saved",
		slog.String("name", name),
		slog.String("sector", snap.Sector),
		slog.Int("candidates", len(snap.Candidates)),
	)
	return name, nil
}

// List returns snapshot names, newest first. The timestamped naming
// scheme makes lexicographic order chronological.
func (s *Store) List(ctx context.Context) ([]string, error) {
	paths, err := s.stor.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range paths {
		if strings.HasPrefix(baseName(p), "scan-") {
			names = append(names, p)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Get reads and decodes one snapshot by name.
func (s *Store) Get(ctx context.Context, name string) (*Snapshot, error) {
	rc, err := s.stor.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", name, err)
	}
	defer rc.Close()

	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &snap, nil
}

// Latest returns the most recent snapshot, or (nil, nil) when the
// repository is empty.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	return s.Get(ctx, names[0])
}

// Retain deletes all but the newest keepLast snapshots.
func (s *Store) Retain(ctx context.Context, keepLast int) error {
	if keepLast <= 0 {
		return fmt.Errorf("keep_last must be positive, got %d", keepLast)
	}
	names, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(names) <= keepLast {
		return nil
	}

	stale := names[keepLast:]
	s.log().Debug("begin to retain snapshots", slog.Int("cnt", len(stale)))
	for _, name := range stale {
		s.log().Debug("delete snapshot", slog.String("path", name))
		if err := s.stor.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func baseName(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
