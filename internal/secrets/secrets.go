// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: engine-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/scripture-links/internal/logging"
)

// EngineAPIKey is the file holding the bearer token for the HTTP engine.
const EngineAPIKey = "engine-api-key"

// DefaultDir is the secrets directory used when none is configured.
const DefaultDir = ".secrets"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logging.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns configured when it is non-empty, otherwise the named
// secret from dir. A missing secret yields "".
func Resolve(dir, name, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	all, err := Load(dir)
	if err != nil {
		return "", err
	}
	return all[name], nil
}
