package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"newsdesk/internal/admin"
)

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "newsdesk", "session.json")
}

func saveSession(path string, s admin.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// loadSession returns the zero Session when nothing has been saved.
func loadSession(path string) (admin.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return admin.Session{}, nil
	}
	if err != nil {
		return admin.Session{}, err
	}
	var s admin.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return admin.Session{}, err
	}
	return s, nil
}

func clearSession(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
