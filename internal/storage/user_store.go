package storage

import (
	"errors"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/structures"
	"os"
	"path/filepath"
	"sort"
)

const dirMode = 0755

// UserStore maps a user id to its storage area, one directory per user
// under the storage root.
type UserStore struct {
	root   string
	logger providers.Logger
}

func NewUserStore(conf *structures.Config, logger providers.Logger) *UserStore {
	return &UserStore{
		root:   conf.Storage.Root,
		logger: logger,
	}
}

func (us *UserStore) Root() string {
	return us.root
}

// EnsureRoot creates the storage root if it does not exist yet.
func (us *UserStore) EnsureRoot() error {
	if err := os.MkdirAll(us.root, dirMode); err != nil {
		return models.IOError("create storage root", err)
	}
	return nil
}

// Dir returns the user's storage directory without creating it.
func (us *UserStore) Dir(userID string) (string, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return "", err
	}
	return filepath.Join(us.root, userID), nil
}

// Ensure creates the user's storage area. Repeated calls are no-ops.
func (us *UserStore) Ensure(userID string) (string, error) {
	dir, err := us.Dir(userID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", models.IOError("create user directory", err)
	}
	return dir, nil
}

// Exists reports whether the user's storage area has been created.
func (us *UserStore) Exists(userID string) bool {
	dir, err := us.Dir(userID)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// PathFor returns the location of a named asset in the user's storage area.
func (us *UserStore) PathFor(userID, filename string) (string, error) {
	dir, err := us.Dir(userID)
	if err != nil {
		return "", err
	}
	if err := models.ValidateFilename(filename); err != nil {
		return "", err
	}
	return filepath.Join(dir, filename), nil
}

// ListUsers returns the ids of all existing storage areas, sorted.
func (us *UserStore) ListUsers() ([]string, error) {
	entries, err := os.ReadDir(us.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, models.IOError("list users", err)
	}

	users := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := models.ValidateUserID(e.Name()); err != nil {
			us.logger.Debugf(providers.TypeApp, "Skipping storage entry %q: %s", e.Name(), err)
			continue
		}
		users = append(users, e.Name())
	}
	sort.Strings(users)
	return users, nil
}
