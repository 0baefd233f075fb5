package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

func encrypt(data []byte, recipient age.Recipient) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decrypt(data []byte, identity age.Identity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func isAgeEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ageHeader))
}

// EnableEncryption encrypts every stored statement with passphrase and
// leaves the store unlocked.
func (s *Store) EnableEncryption(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return ErrAlreadyEncrypted
	}
	if len(passphrase) < minPassphraseLen {
		return ErrShortPassphrase
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("create recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}

	verifyPath := filepath.Join(s.dir, verifyFile)
	sealed, err := encrypt([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("encrypt verification file: %w", err)
	}
	if err := os.WriteFile(verifyPath, sealed, 0o600); err != nil {
		return fmt.Errorf("write verification file: %w", err)
	}

	names, err := s.statementNames()
	if err != nil {
		os.Remove(verifyPath)
		return err
	}

	var done []string
	for _, name := range names {
		if err := rewrite(filepath.Join(s.dir, name), func(data []byte) ([]byte, error) {
			if isAgeEncrypted(data) {
				return data, nil
			}
			return encrypt(data, recipient)
		}); err != nil {
			s.rollback(done, identity)
			os.Remove(verifyPath)
			return fmt.Errorf("encrypt %s: %w", name, err)
		}
		done = append(done, name)
	}

	if err := os.WriteFile(filepath.Join(s.dir, markerFile), []byte("encrypted\n"), 0o644); err != nil {
		return fmt.Errorf("write marker file: %w", err)
	}

	s.encrypted = true
	s.identity = identity
	s.recipient = recipient
	return nil
}

// DisableEncryption decrypts every stored statement. passphrase must be the current one.
func (s *Store) DisableEncryption(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return ErrNotEncrypted
	}
	identity, _, err := s.verify(passphrase)
	if err != nil {
		return err
	}

	names, err := s.statementNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := rewrite(filepath.Join(s.dir, name), func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return data, nil
			}
			return decrypt(data, identity)
		}); err != nil {
			return fmt.Errorf("decrypt %s: %w", name, err)
		}
	}

	os.Remove(filepath.Join(s.dir, markerFile))
	os.Remove(filepath.Join(s.dir, verifyFile))

	s.encrypted = false
	s.identity = nil
	s.recipient = nil
	return nil
}

func (s *Store) statementNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan statements: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && !isControlFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// rewrite replaces a file's content with transform's output
func rewrite(path string, transform func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := transform(data)
	if err != nil {
		return err
	}
	return atomicWrite(path, out)
}

// rollback decrypts files encrypted by a failed EnableEncryption, best effort
func (s *Store) rollback(names []string, identity age.Identity) {
	for _, name := range names {
		_ = rewrite(filepath.Join(s.dir, name), func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return data, nil
			}
			return decrypt(data, identity)
		})
	}
}
