// Package archive keeps exported statements in a directory that can be
// locked with a passphrase. Locked archives hold age scrypt-encrypted
// files; the passphrase is checked against an encrypted verification file.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"filippo.io/age"
)

const (
	// markerFile indicates encryption is enabled
	markerFile = ".encrypted"
	// verifyFile holds verifyMagic encrypted with the passphrase
	verifyFile  = ".encryption-verify"
	verifyMagic = `{"magic":"myfinance-archive-verify","version":1}`

	// MinPassphraseLength is the shortest accepted passphrase.
	MinPassphraseLength = 8

	filePerm = 0o600
)

var (
	ErrLocked            = errors.New("archive is encrypted and locked")
	ErrWrongPassphrase   = errors.New("incorrect passphrase")
	ErrShortPassphrase   = fmt.Errorf("passphrase must be at least %d characters", MinPassphraseLength)
	ErrAlreadyEncrypted  = errors.New("archive is already encrypted")
	ErrNotEncrypted      = errors.New("archive is not encrypted")
	ErrInvalidName       = errors.New("invalid export file name")
	ErrUnsupportedFormat = errors.New("only .csv and .pdf exports can be archived")
)

// Entry describes one archived export.
type Entry struct {
	Name      string
	Size      int64
	ModTime   time.Time
	Encrypted bool
}

// Archive is a directory of export files.
type Archive struct {
	dir       string
	encrypted bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
}

// Open opens (creating if needed) the archive directory.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	a := &Archive{dir: dir}
	if _, err := os.Stat(filepath.Join(dir, markerFile)); err == nil {
		a.encrypted = true
	}
	return a, nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

// IsEncrypted reports whether the archive is passphrase protected.
func (a *Archive) IsEncrypted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.encrypted
}

// IsUnlocked reports whether exports can be read and written.
func (a *Archive) IsUnlocked() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return !a.encrypted || a.identity != nil
}

// Unlock checks the passphrase and keeps the key in memory.
func (a *Archive) Unlock(passphrase string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.encrypted {
		return nil
	}
	identity, err := a.verify(passphrase)
	if err != nil {
		return err
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("create recipient: %w", err)
	}
	a.identity, a.recipient = identity, recipient
	return nil
}

// Lock forgets the key.
func (a *Archive) Lock() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identity = nil
	a.recipient = nil
}

// Write stores an export under name, encrypted when the archive is.
func (a *Archive) Write(name string, data []byte) (string, error) {
	path, err := a.path(name)
	if err != nil {
		return "", err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.encrypted {
		if a.recipient == nil {
			return "", ErrLocked
		}
		if data, err = encrypt(data, a.recipient); err != nil {
			return "", fmt.Errorf("encrypt %s: %w", name, err)
		}
	}
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Read returns the plain contents of an archived export.
func (a *Archive) Read(name string) ([]byte, error) {
	path, err := a.path(name)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isEncrypted(data) {
		return data, nil
	}
	if a.identity == nil {
		return nil, ErrLocked
	}
	return decrypt(data, a.identity)
}

// List returns the archived exports, newest first.
func (a *Archive) List() ([]Entry, error) {
	files, err := a.exportFiles()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		head := make([]byte, len(ageHeader))
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		n, _ := f.Read(head)
		f.Close()

		entries = append(entries, Entry{
			Name:      filepath.Base(path),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Encrypted: isEncrypted(head[:n]),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ModTime.After(entries[j].ModTime) })
	return entries, nil
}

// Remove deletes an archived export.
func (a *Archive) Remove(name string) error {
	path, err := a.path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// path resolves an export name inside the archive. Only bare .csv and
// .pdf file names are accepted.
func (a *Archive) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	if !isExport(name) {
		return "", ErrUnsupportedFormat
	}
	return filepath.Join(a.dir, name), nil
}

func isExport(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv" || ext == ".pdf"
}

func (a *Archive) exportFiles() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isExport(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(a.dir, e.Name()))
	}
	return files, nil
}

// atomicWrite writes through a temp file in the same directory so a crash
// never leaves a half-written export.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
