package storage

import (
	"bytes"
	"errors"
	"fmt"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/structures"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

const fileMode = 0644

// Split history files written by older versions of the inference apps.
var legacyHistoryFiles = []string{
	"prediction_history.json",
	"classification_history.json",
}

// FileManager reads and atomically replaces a user's record collection.
type FileManager struct {
	users       *UserStore
	historyFile string
	metrics     providers.MetricsProviderInterface
	logger      providers.Logger
}

func NewFileManager(conf *structures.Config, users *UserStore, metrics providers.MetricsProviderInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		users:       users,
		historyFile: conf.Storage.HistoryFile,
		metrics:     metrics,
		logger:      logger,
	}
}

// Load returns the user's collection, newest first. A user without a
// storage area has an empty collection. Load takes no lock: commits only
// ever rename a complete file into place.
func (f *FileManager) Load(userID string) (models.Collection, error) {
	dir, err := f.users.Dir(userID)
	if err != nil {
		return nil, err
	}
	unified := filepath.Join(dir, f.historyFile)

	for attempt := 0; attempt < 3; attempt++ {
		c, err := f.readCollection(unified)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		c, found, err := f.loadLegacy(dir)
		if err != nil {
			return nil, err
		}
		if !found {
			return models.Collection{}, nil
		}
		// A commit may have replaced the legacy files while they were read.
		if _, err := os.Stat(unified); err == nil {
			continue
		}
		return c, nil
	}
	return nil, fmt.Errorf("load history of %s: %w", userID, models.ErrBusy)
}

// Commit replaces the user's collection with c. The new content is written
// to a temporary file in the same directory, synced, and renamed over the
// previous version, so readers see either the old or the new collection.
func (f *FileManager) Commit(userID string, c models.Collection) error {
	start := time.Now()
	defer func() {
		f.metrics.ObserveCommitDuration(time.Since(start))
	}()

	dir, err := f.users.Ensure(userID)
	if err != nil {
		return err
	}
	if c == nil {
		c = models.Collection{}
	}

	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return models.IOError("encode history", err)
	}

	if err := writeFileAtomic(dir, f.historyFile, jsonData); err != nil {
		return models.IOError("commit history", err)
	}

	for _, name := range legacyHistoryFiles {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Warnf(providers.TypeApp, "Failed to remove legacy history file %s for %s: %s", name, userID, err)
		}
	}
	return nil
}

func (f *FileManager) readCollection(path string) (models.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, models.IOError("read history", err)
	}
	return f.decode(path, data)
}

func (f *FileManager) decode(path string, data []byte) (models.Collection, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Collection{}, nil
	}

	var raw models.Collection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, models.IOError("decode history "+filepath.Base(path), err)
	}

	c := make(models.Collection, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		if r.Type == "" {
			switch {
			case r.PregnancyRisk != nil:
				r.Type = models.TypePregnancyRisk
			case r.FetalClassification != nil:
				r.Type = models.TypeFetalClassification
			default:
				f.logger.Warnf(providers.TypeApp, "Dropping untyped record %q in %s", r.ID, path)
				continue
			}
		}
		c = append(c, r)
	}
	return c, nil
}

func (f *FileManager) loadLegacy(dir string) (models.Collection, bool, error) {
	var merged models.Collection
	found := false
	for _, name := range legacyHistoryFiles {
		path := filepath.Join(dir, name)
		c, err := f.readCollection(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, false, err
		}
		if !found {
			f.logger.Warnf(providers.TypeApp, "Legacy history layout found in %s, migrating on next write", dir)
		}
		found = true
		merged = append(merged, c...)
	}
	merged.SortNewestFirst()
	return merged, found, nil
}

// writeFileAtomic writes data to dir/name through a synced temporary file
// and a rename.
func writeFileAtomic(dir, name string, data []byte) error {
	file, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpFile := file.Name()

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Chmod(tmpFile, fileMode); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}
