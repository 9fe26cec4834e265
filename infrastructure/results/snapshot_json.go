package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var _ ports.SnapshotStore = (*JSONStore)(nil)

// JSONStore persists snapshots as one JSON file per session under a
// directory. Go's JSON encoding of float64 uses the shortest
// representation that parses back to the same bits, so the
// volume/uncertainty round trip is exact.
type JSONStore struct {
	dir string
}

// NewJSONStore creates a store rooted at dir, creating it if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

// Save persists the snapshot atomically: it writes to a temporary file
// in the same directory and renames it over the destination, so a
// crashed save never leaves a torn snapshot behind.
func (s *JSONStore) Save(_ context.Context, snap domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, snap.SessionID+".*.tmp")
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(snap.SessionID)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by session id.
func (s *JSONStore) Load(_ context.Context, sessionID string) (domain.Snapshot, error) {
	f, err := os.Open(s.path(sessionID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, sessionID)
		}
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	defer f.Close()

	var snap domain.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Close implements ports.SnapshotStore; the JSON store holds no
// persistent resources.
func (s *JSONStore) Close() error { return nil }
