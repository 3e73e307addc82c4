// Package store persists title economic state as a single versioned JSON
// file. The in-memory map stays authoritative; a debounced background writer
// flushes dirty state so a failed save never loses or corrupts what the
// engine already computed.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/1836047093/YCJY-sub002/internal/config"
	"github.com/1836047093/YCJY-sub002/internal/telemetry"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

// SchemaVersion is the current on-disk format.
const SchemaVersion = 2

// ErrNotSaved marks a failed flush. In-memory state is still authoritative
// and the store stays dirty, so a later flush retries the write.
var ErrNotSaved = errors.New("state not saved")

const stateFile = "titles.json"

type fileState struct {
	SchemaVersion int                        `json:"schema_version"`
	Titles        map[string]json.RawMessage `json:"titles"`
}

// FileStore is a title.Repository backed by one JSON file.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	cfg    *config.Config
	log    *slog.Logger
	events telemetry.Repository
	state  map[title.ID]title.State
	dirty  bool
}

func NewFileStore(dataDir string, cfg *config.Config, events telemetry.Repository, logger *slog.Logger) (*FileStore, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &FileStore{
		path:   filepath.Join(dataDir, stateFile),
		cfg:    cfg,
		log:    logger,
		events: events,
		state:  map[title.ID]title.State{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	// Files written before the version field behave as version 1.
	if loaded.SchemaVersion == 0 {
		loaded.SchemaVersion = 1
	}

	for id, raw := range loaded.Titles {
		st, err := decodeTitle(raw, loaded.SchemaVersion, s.cfg)
		if err != nil {
			s.log.Warn("skipping unparseable title record", "title", id, "err", err)
			continue
		}
		st.Normalize()
		s.state[title.ID(id)] = st
	}

	if loaded.SchemaVersion < SchemaVersion {
		s.log.Info("store migrated",
			"from", loaded.SchemaVersion, "to", SchemaVersion, "titles", len(s.state))
		s.dirty = true
		if s.events != nil {
			if err := s.events.RecordEvent(telemetry.EventStateMigrated, telemetry.EventMetadata{
				"from": loaded.SchemaVersion, "to": SchemaVersion, "titles": len(s.state),
			}); err != nil {
				s.log.Warn("telemetry event dropped", "err", err)
			}
		}
	}
	return nil
}

// saveLocked writes the current map. Only the retained history tail is
// persisted; Statistics carry the lifetime totals.
func (s *FileStore) saveLocked() error {
	out := fileState{
		SchemaVersion: SchemaVersion,
		Titles:        make(map[string]json.RawMessage, len(s.state)),
	}
	for id, st := range s.state {
		st.TrimHistory(s.cfg.Store.HistoryRetentionDays)
		b, err := json.Marshal(st)
		if err != nil {
			return err
		}
		out.Titles[string(id)] = b
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

// Flush writes dirty state now. On failure the store stays dirty and the
// error wraps ErrNotSaved; callers treat it as non-fatal.
func (s *FileStore) Flush(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := s.saveLocked(); err != nil {
		return errors.Join(ErrNotSaved, err)
	}
	s.dirty = false
	return nil
}

// Run flushes on the configured interval until ctx is done, then makes a
// final flush attempt.
func (s *FileStore) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.Store.FlushIntervalSeconds * float64(time.Second))
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := s.Flush(context.Background()); err != nil {
				s.log.Warn("final flush failed", "err", err)
			}
			return
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.log.Warn("periodic flush failed", "err", err)
			}
		}
	}
}

func (s *FileStore) Get(ctx context.Context, id title.ID) (title.State, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.state[id]
	return st, ok, nil
}

func (s *FileStore) Put(ctx context.Context, st title.State) (title.State, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Normalize()
	s.state[st.ID] = st
	s.dirty = true
	return st, nil
}

func (s *FileStore) List(ctx context.Context) ([]title.State, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]title.State, 0, len(s.state))
	for _, st := range s.state {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id title.ID) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state[id]; !ok {
		return false, nil
	}
	delete(s.state, id)
	s.dirty = true
	return true, nil
}
