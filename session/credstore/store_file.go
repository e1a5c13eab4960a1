package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/planforge/go-session-client/users"
)

const fileMode = 0o600

// FileStore is a file-backed Store. Every mutation rewrites the whole
// record through a temp-file rename, so a crash mid-write leaves either
// the old record or the new one, never a torn mix.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a Store backed by the JSON file at path. The parent
// directory is created if missing; the file itself is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] create data directory")
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) SaveCredentials(token string, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(r *record) {
		r.Token = token
		r.User = user
	})
}

func (s *FileStore) Credentials() (string, *users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.load()
	if err != nil {
		return "", nil, err
	}
	if r.Token == "" {
		return "", nil, NoCredentialsErr
	}
	return r.Token, r.User, nil
}

func (s *FileStore) DeleteCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(r *record) {
		r.Token = ""
		r.User = nil
	})
}

func (s *FileStore) SaveRemember(expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(r *record) {
		r.RememberMe = true
		r.SessionExpiry = &expiry
	})
}

func (s *FileStore) Remember() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.load()
	if err != nil {
		return time.Time{}, err
	}
	if !r.RememberMe || r.SessionExpiry == nil {
		return time.Time{}, NoRememberErr
	}
	return *r.SessionExpiry, nil
}

func (s *FileStore) SaveDeductionMarker(day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(r *record) {
		r.LastDailyDeduction = day
	})
}

func (s *FileStore) DeductionMarker() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.load()
	if err != nil {
		return "", err
	}
	if r.LastDailyDeduction == "" {
		return "", NoMarkerErr
	}
	return r.LastDailyDeduction, nil
}

func (s *FileStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Wipe] remove record")
	}
	return nil
}

// load reads the current record. A missing file is an empty record.
func (s *FileStore) load() (*record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &record{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.load] read record")
	}

	r := &record{}
	if err := json.Unmarshal(data, r); err != nil {
		// A corrupt record is unrecoverable local state, not an error the
		// session layer can act on. Treat it as empty.
		return &record{}, nil
	}
	return r, nil
}

func (s *FileStore) update(mutate func(*record)) error {
	r, err := s.load()
	if err != nil {
		return err
	}
	mutate(r)

	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "[FileStore.update] marshal record")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return errors.Wrap(err, "[FileStore.update] write temp record")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "[FileStore.update] replace record")
	}
	return nil
}
