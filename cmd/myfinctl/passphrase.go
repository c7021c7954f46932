package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// passphraseEnv supplies the archive passphrase when stdin is not a terminal.
const passphraseEnv = "MYFIN_ARCHIVE_PASSPHRASE"

// readPassphrase prompts on stderr without echo. With confirm set the
// passphrase must be typed twice.
func readPassphrase(prompt string, confirm bool) (string, error) {
	if p := os.Getenv(passphraseEnv); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", passphraseEnv)
	}

	first, err := prompted(fd, prompt)
	if err != nil {
		return "", err
	}
	if !confirm {
		return first, nil
	}
	second, err := prompted(fd, "Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passphrases do not match")
	}
	return first, nil
}

func prompted(fd int, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no passphrase entered")
		}
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
