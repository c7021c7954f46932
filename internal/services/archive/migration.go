package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// EnableEncryption encrypts every archived export with the passphrase and
// leaves the archive unlocked.
func (a *Archive) EnableEncryption(passphrase string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.encrypted {
		return ErrAlreadyEncrypted
	}
	if len(passphrase) < MinPassphraseLength {
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

	verifyPath := filepath.Join(a.dir, verifyFile)
	sealed, err := encrypt([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("encrypt verification file: %w", err)
	}
	if err := atomicWrite(verifyPath, sealed); err != nil {
		return fmt.Errorf("write verification file: %w", err)
	}

	files, err := a.exportFiles()
	if err != nil {
		os.Remove(verifyPath)
		return fmt.Errorf("scan archive: %w", err)
	}

	for i, path := range files {
		if err := transformFile(path, func(data []byte) ([]byte, error) {
			if isEncrypted(data) {
				return nil, nil
			}
			return encrypt(data, recipient)
		}); err != nil {
			rollback(files[:i], identity)
			os.Remove(verifyPath)
			return fmt.Errorf("encrypt %s: %w", filepath.Base(path), err)
		}
	}

	if err := atomicWrite(filepath.Join(a.dir, markerFile), []byte("encrypted")); err != nil {
		return fmt.Errorf("create marker file: %w", err)
	}

	a.encrypted = true
	a.identity = identity
	a.recipient = recipient
	return nil
}

// DisableEncryption decrypts every archived export. It needs the current
// passphrase even when the archive is unlocked.
func (a *Archive) DisableEncryption(passphrase string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.encrypted {
		return ErrNotEncrypted
	}
	identity, err := a.verify(passphrase)
	if err != nil {
		return err
	}

	files, err := a.exportFiles()
	if err != nil {
		return fmt.Errorf("scan archive: %w", err)
	}
	for _, path := range files {
		if err := transformFile(path, func(data []byte) ([]byte, error) {
			if !isEncrypted(data) {
				return nil, nil
			}
			return decrypt(data, identity)
		}); err != nil {
			return fmt.Errorf("decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(a.dir, markerFile))
	os.Remove(filepath.Join(a.dir, verifyFile))

	a.encrypted = false
	a.identity = nil
	a.recipient = nil
	return nil
}

// verify checks passphrase against the verification file. Callers hold mu.
func (a *Archive) verify(passphrase string) (*age.ScryptIdentity, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	sealed, err := os.ReadFile(filepath.Join(a.dir, verifyFile))
	if err != nil {
		return nil, fmt.Errorf("read verification file: %w", err)
	}
	plain, err := decrypt(sealed, identity)
	if err != nil || string(plain) != verifyMagic {
		return nil, ErrWrongPassphrase
	}
	return identity, nil
}

// transformFile rewrites a file in place with fn's output. A nil result
// leaves the file untouched.
func transformFile(path string, fn func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := fn(data)
	if err != nil || out == nil {
		return err
	}
	return atomicWrite(path, out)
}

// rollback decrypts files encrypted by a failed EnableEncryption
func rollback(files []string, identity age.Identity) {
	for _, path := range files {
		transformFile(path, func(data []byte) ([]byte, error) {
			if !isEncrypted(data) {
				return nil, nil
			}
			return decrypt(data, identity)
		})
	}
}
