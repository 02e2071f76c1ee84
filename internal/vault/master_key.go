package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// LoadOrCreateMasterKey reads the age X25519 identity at path, generating and
// persisting a new one (mode 0600) when the file does not exist yet.
func LoadOrCreateMasterKey(path string) (*age.X25519Identity, error) {
	if path == "" {
		return nil, &Error{Op: OpLoadKey, Cause: errors.New("master key path is empty")}
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		identity, err := age.ParseX25519Identity(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, wrap(OpLoadKey, "parse %s: %w", path, err)
		}
		slog.Info("Loaded vault master key", "path", path)
		return identity, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, wrap(OpLoadKey, "read %s: %w", path, err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, wrap(OpLoadKey, "generate identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, wrap(OpLoadKey, "create key directory: %w", err)
	}

	// O_EXCL so two processes racing on first start cannot overwrite each other.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return LoadOrCreateMasterKey(path)
		}
		return nil, wrap(OpLoadKey, "create %s: %w", path, err)
	}
	if _, err := fmt.Fprintln(f, identity.String()); err != nil {
		f.Close()
		return nil, wrap(OpLoadKey, "write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, wrap(OpLoadKey, "close %s: %w", path, err)
	}

	slog.Info("Generated new vault master key", "path", path)
	return identity, nil
}
