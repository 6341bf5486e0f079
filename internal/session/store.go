package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"commentarchive/internal/logger"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

var initialState = State{ArticlePage: 1, ResultPage: 1}

// Store persists a reader's preferences and cursor.
type Store interface {
	LoadPreferences() (Preferences, error)
	SavePreferences(p Preferences) error
	LoadState() (State, error)
	SaveState(s State) error
}

type document struct {
	Preferences json.RawMessage `json:"preferences,omitempty"`
	Session     *State          `json:"session,omitempty"`
}

// FileStore keeps preferences and cursor in one JSON file.
type FileStore struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first save.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	if log == nil {
		log = logger.Discard()
	}

	return &FileStore{path: path, log: log.With("store", path)}
}

func (f *FileStore) read() (document, error) {
	var doc document

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse session file: %w", err)
	}

	return doc, nil
}

func (f *FileStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// LoadPreferences returns the stored preferences. Missing or stale fields
// fall back to their defaults and are logged.
func (f *FileStore) LoadPreferences() (Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return DefaultPreferences(), err
	}
	if len(doc.Preferences) == 0 {
		return DefaultPreferences(), nil
	}

	p, reset, err := DecodePreferences(doc.Preferences)
	if err != nil {
		f.log.Warn("Discarding unreadable preferences", "error", err)
		return DefaultPreferences(), nil
	}
	if len(reset) > 0 {
		f.log.Warn("Reset stale preference fields", "fields", reset)
	}

	return p, nil
}

// SavePreferences stores p, leaving the cursor untouched.
func (f *FileStore) SavePreferences(p Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		doc = document{}
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	doc.Preferences = raw

	return f.write(doc)
}

// LoadState returns the stored cursor, or the zero State when none was saved.
func (f *FileStore) LoadState() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return State{}, err
	}
	if doc.Session == nil {
		return State{}, nil
	}

	return *doc.Session, nil
}

// SaveState stores s, leaving preferences untouched.
func (f *FileStore) SaveState(s State) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		doc = document{}
	}
	doc.Session = &s

	return f.write(doc)
}

// Registry creates and looks up reader sessions by id.
type Registry interface {
	Create(ctx context.Context) (string, error)
	Session(ctx context.Context, id string) (Store, error)
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
}

// MemoryStore keeps many reader sessions in memory, keyed by a random id.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memorySession)}
}

// Create starts a session with default preferences and returns its id.
func (m *MemoryStore) Create(context.Context) (string, error) {
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = &memorySession{prefs: DefaultPreferences(), state: initialState}
	m.mu.Unlock()

	return id, nil
}

// Session returns the store for id.
func (m *MemoryStore) Session(_ context.Context, id string) (Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return s, nil
}

// Delete forgets the session id.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)

	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions), nil
}

type memorySession struct {
	mu    sync.Mutex
	prefs Preferences
	state State
}

func (s *memorySession) LoadPreferences() (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.prefs, nil
}

func (s *memorySession) SavePreferences(p Preferences) error {
	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()

	return nil
}

func (s *memorySession) LoadState() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state, nil
}

func (s *memorySession) SaveState(st State) error {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	return nil
}
