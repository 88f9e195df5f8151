package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/finsight-ai/finsight/internal/models"
)

// FileStore keeps every session in memory and mirrors the whole map to one
// JSON file: load-all at open, write-all after each mutation. Durability is
// best effort; a failed flush is logged and the in-memory state stays
// authoritative for the life of the process.
type FileStore struct {
	path string
	log  *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewFileStore(path string, log *zap.Logger) (*FileStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}

	s := &FileStore{
		path:     path,
		log:      log,
		sessions: make(map[string]*models.Session),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read sessions file: %w", err)
	}

	var blob map[string]*models.Session
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("parse sessions file %s: %w", s.path, err)
	}
	s.sessions = blob
	if s.sessions == nil {
		s.sessions = make(map[string]*models.Session)
	}
	s.log.Info("sessions loaded", zap.Int("count", len(s.sessions)), zap.String("path", s.path))
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *FileStore) Put(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess.Clone()
	s.flushLocked()
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	s.flushLocked()
	return nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
	return nil
}

// flushLocked rewrites the whole blob atomically (temp file + rename).
// Failures are logged, not returned: the turn still completes on memory.
func (s *FileStore) flushLocked() {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		s.log.Error("marshal sessions failed", zap.Error(err))
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "sessions-*.tmp")
	if err != nil {
		s.log.Error("create temp sessions file failed", zap.Error(err))
		return
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		s.log.Error("write sessions failed", zap.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Error("close temp sessions file failed", zap.Error(err))
		return
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Error("replace sessions file failed", zap.Error(err))
	}
}
