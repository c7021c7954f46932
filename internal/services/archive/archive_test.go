package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testPassphrase = "rahasia-sekali"

func TestWriteReadPlain(t *testing.T) {
	a, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}

	original := []byte("Tanggal,Wallet\r\n1/3/2025,BCA\r\n")
	path, err := a.Write("MyFinance_Export_2025-03-01.csv", original)
	if err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}
	if filepath.Dir(path) != a.Dir() {
		t.Errorf("Export written outside archive: %s", path)
	}

	read, err := a.Read("MyFinance_Export_2025-03-01.csv")
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch: got %q, want %q", read, original)
	}
}

func TestEncryptionLifecycle(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}

	original := []byte("%PDF-1.3 statement")
	if _, err := a.Write("statement.pdf", original); err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}

	if err := a.EnableEncryption(testPassphrase); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if !a.IsEncrypted() || !a.IsUnlocked() {
		t.Fatal("Expected an encrypted, unlocked archive")
	}

	raw, _ := os.ReadFile(filepath.Join(dir, "statement.pdf"))
	if !isEncrypted(raw) {
		t.Error("Export should be encrypted on disk")
	}

	read, err := a.Read("statement.pdf")
	if err != nil {
		t.Fatalf("Failed to read encrypted export: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after encryption: got %q", read)
	}

	// A fresh handle starts locked.
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to reopen archive: %v", err)
	}
	if reopened.IsUnlocked() {
		t.Error("Reopened archive should be locked")
	}
	if _, err := reopened.Read("statement.pdf"); !errors.Is(err, ErrLocked) {
		t.Errorf("Read while locked: got %v, want ErrLocked", err)
	}
	if _, err := reopened.Write("new.csv", []byte("x")); !errors.Is(err, ErrLocked) {
		t.Errorf("Write while locked: got %v, want ErrLocked", err)
	}
	if err := reopened.Unlock("salah-sandi"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("Unlock with wrong passphrase: got %v", err)
	}
	if err := reopened.Unlock(testPassphrase); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}

	if _, err := reopened.Write("new.csv", []byte("baru")); err != nil {
		t.Fatalf("Failed to write while unlocked: %v", err)
	}
	raw, _ = os.ReadFile(filepath.Join(dir, "new.csv"))
	if !isEncrypted(raw) {
		t.Error("New export should be encrypted on disk")
	}

	reopened.Lock()
	if reopened.IsUnlocked() {
		t.Error("Lock should forget the key")
	}

	if err := reopened.DisableEncryption("salah-sandi"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("Disable with wrong passphrase: got %v", err)
	}
	if err := reopened.DisableEncryption(testPassphrase); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}
	raw, _ = os.ReadFile(filepath.Join(dir, "statement.pdf"))
	if string(raw) != string(original) {
		t.Errorf("Export should be plain after disabling: got %q", raw)
	}
	if _, err := os.Stat(filepath.Join(dir, markerFile)); !os.IsNotExist(err) {
		t.Error("Marker file should be removed")
	}
}

func TestEnableEncryptionErrors(t *testing.T) {
	a, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}

	if err := a.EnableEncryption("pendek"); !errors.Is(err, ErrShortPassphrase) {
		t.Errorf("Short passphrase: got %v", err)
	}
	if err := a.DisableEncryption(testPassphrase); !errors.Is(err, ErrNotEncrypted) {
		t.Errorf("Disable on plain archive: got %v", err)
	}
	if err := a.EnableEncryption(testPassphrase); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if err := a.EnableEncryption(testPassphrase); !errors.Is(err, ErrAlreadyEncrypted) {
		t.Errorf("Second enable: got %v", err)
	}
}

func TestNames(t *testing.T) {
	a, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}

	tests := []struct {
		name string
		want error
	}{
		{"../escape.csv", ErrInvalidName},
		{"sub/dir.csv", ErrInvalidName},
		{".encryption-verify", ErrInvalidName},
		{"", ErrInvalidName},
		{"notes.txt", ErrUnsupportedFormat},
		{"Export.CSV", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Write(tt.name, []byte("data"))
			if !errors.Is(err, tt.want) {
				t.Errorf("Write(%q) = %v, want %v", tt.name, err, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	for _, name := range []string{"a.csv", "b.pdf"} {
		if _, err := a.Write(name, []byte(name)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := a.EnableEncryption(testPassphrase); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	entries, err := a.List()
	if err != nil {
		t.Fatalf("Failed to list archive: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if !e.Encrypted {
			t.Errorf("%s should be listed as encrypted", e.Name)
		}
	}

	if err := a.Remove("a.csv"); err != nil {
		t.Fatalf("Failed to remove export: %v", err)
	}
	entries, _ = a.List()
	if len(entries) != 1 || entries[0].Name != "b.pdf" {
		t.Errorf("Unexpected entries after remove: %+v", entries)
	}
}
