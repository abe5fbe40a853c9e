package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps all state in one JSON document on disk, written through
// on every Set. A missing or corrupt file starts empty instead of failing:
// losing alert-dedup state is recoverable, refusing to start is not.
type FileStore struct {
	path string
	log  *zap.Logger

	mu    sync.Mutex
	state map[string]map[string]string
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	s := &FileStore{
		path:  path,
		log:   log,
		state: make(map[string]map[string]string),
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to read state file", zap.String("path", s.path), zap.Error(err))
		}
		return
	}

	var state map[string]map[string]string
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn("state file is not valid JSON, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return
	}
	if state != nil {
		s.state = state
	}
}

func (s *FileStore) Get(key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.state[key]))
	for k, v := range s.state[key] {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) Set(key string, value map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]string, len(value))
	for k, v := range value {
		cp[k] = v
	}
	s.state[key] = cp
	return s.save()
}

func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}
