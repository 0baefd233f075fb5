// Package storage keeps uploaded statements on disk, optionally encrypted
// with an age passphrase.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"filippo.io/age"

	"finlens/internal/models"
)

const (
	// ageHeader is the prefix of age-encrypted files
	ageHeader = "age-encryption.org"

	markerFile = ".encrypted"
	verifyFile = ".encryption-verify"

	verifyMagic = `{"magic":"finlens-statements","version":1}`

	minPassphraseLen = 8
)

var (
	ErrLocked            = errors.New("statement store is locked")
	ErrWrongPassphrase   = errors.New("incorrect passphrase")
	ErrShortPassphrase   = fmt.Errorf("passphrase must be at least %d characters", minPassphraseLen)
	ErrAlreadyEncrypted  = errors.New("encryption is already enabled")
	ErrNotEncrypted      = errors.New("encryption is not enabled")
	ErrInvalidName       = errors.New("invalid statement name")
	ErrStatementNotFound = errors.New("statement not found")
)

// Store holds statement files in a single directory
type Store struct {
	dir       string
	encrypted bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
}

// New opens the store rooted at dir, creating the directory when needed.
// An encrypted store starts locked.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create statement directory: %w", err)
	}
	s := &Store{dir: dir}
	if _, err := os.Stat(filepath.Join(dir, markerFile)); err == nil {
		s.encrypted = true
	}
	return s, nil
}

// Dir returns the directory statements live in
func (s *Store) Dir() string {
	return s.dir
}

// IsEncrypted reports whether statements are encrypted at rest
func (s *Store) IsEncrypted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encrypted
}

// IsUnlocked reports whether statements can be read and written
func (s *Store) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.encrypted || s.identity != nil
}

// Unlock checks passphrase against the verification file and keeps the key in memory
func (s *Store) Unlock(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return nil
	}
	identity, recipient, err := s.verify(passphrase)
	if err != nil {
		return err
	}
	s.identity = identity
	s.recipient = recipient
	return nil
}

// Lock forgets the key
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.recipient = nil
}

// verify derives the key for passphrase and proves it opens the verification file
func (s *Store) verify(passphrase string) (*age.ScryptIdentity, *age.ScryptRecipient, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("create identity: %w", err)
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, nil, fmt.Errorf("create recipient: %w", err)
	}

	sealed, err := os.ReadFile(filepath.Join(s.dir, verifyFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read verification file: %w", err)
	}
	plain, err := decrypt(sealed, identity)
	if err != nil || string(plain) != verifyMagic {
		return nil, nil, ErrWrongPassphrase
	}
	return identity, recipient, nil
}

// Save writes data under a new name derived from id and the original file
// name, encrypting it when encryption is on.
func (s *Store) Save(id, originalName string, data []byte) (*models.StatementFile, error) {
	base := filepath.Base(strings.TrimSpace(originalName))
	if id == "" || base == "." || base == string(filepath.Separator) || base == "" {
		return nil, ErrInvalidName
	}
	name := id + "_" + base

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.encrypted {
		if s.recipient == nil {
			return nil, ErrLocked
		}
		sealed, err := encrypt(data, s.recipient)
		if err != nil {
			return nil, fmt.Errorf("encrypt %s: %w", base, err)
		}
		data = sealed
	}

	path := filepath.Join(s.dir, name)
	if err := atomicWrite(path, data); err != nil {
		return nil, fmt.Errorf("save %s: %w", base, err)
	}

	return &models.StatementFile{
		ID:       id,
		Name:     base,
		Path:     path,
		Size:     int64(len(data)),
		Uploaded: time.Now(),
	}, nil
}

// Read returns the plaintext of a stored statement
func (s *Store) Read(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrStatementNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	if !isAgeEncrypted(data) {
		return data, nil
	}
	if s.identity == nil {
		return nil, ErrLocked
	}
	return decrypt(data, s.identity)
}

// Open returns a reader over a stored statement's plaintext
func (s *Store) Open(name string) (io.ReadCloser, error) {
	data, err := s.Read(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a stored statement
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the stored statements, newest first
func (s *Store) List() ([]models.StatementFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var files []models.StatementFile
	for _, e := range entries {
		if e.IsDir() || isControlFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		id, name, _ := strings.Cut(e.Name(), "_")
		files = append(files, models.StatementFile{
			ID:       id,
			Name:     name,
			Path:     filepath.Join(s.dir, e.Name()),
			Size:     info.Size(),
			Uploaded: info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Uploaded.After(files[j].Uploaded)
	})
	return files, nil
}

// path resolves a stored name, refusing anything outside the store directory
func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || isControlFile(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

func isControlFile(name string) bool {
	return name == markerFile || name == verifyFile || strings.HasSuffix(name, ".tmp")
}

// atomicWrite writes through a temp file and renames it into place
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
