package storage

import (
	"errors"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/storage/interfaces"
	"medhistory/internal/structures"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

const archiveFileName = "evicted_history.json.zst"

// ArchiveFile is the on-disk format of a user's eviction archive.
type ArchiveFile struct {
	Entries []*models.ArchivedRecord `json:"entries"`
}

// Archive keeps records evicted by the collection size cap in a
// zstd-compressed file next to the user's collection. Entries older than
// the archive TTL are dropped on every write. Callers hold the user lock
// for writes.
type Archive struct {
	users      *UserStore
	enabled    bool
	ttl        time.Duration
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewArchive(conf *structures.Config, users *UserStore, compressor interfaces.CompressorInterface, logger providers.Logger) *Archive {
	return &Archive{
		users:      users,
		enabled:    conf.Archive.Enabled,
		ttl:        conf.Archive.TTL,
		compressor: compressor,
		logger:     logger,
	}
}

func (a *Archive) Enabled() bool {
	return a.enabled
}

// Append stores evicted records, newest evictions first.
func (a *Archive) Append(userID string, evicted models.Collection, now time.Time) error {
	if !a.enabled || len(evicted) == 0 {
		return nil
	}

	af, err := a.load(userID)
	if err != nil {
		return err
	}

	entries := make([]*models.ArchivedRecord, 0, len(af.Entries)+len(evicted))
	at := models.NewTimestamp(now)
	for _, r := range evicted {
		entries = append(entries, &models.ArchivedRecord{Record: r, EvictedAt: at})
	}
	for _, e := range af.Entries {
		if a.ttl > 0 && now.Sub(e.EvictedAt.Time) > a.ttl {
			continue
		}
		entries = append(entries, e)
	}
	af.Entries = entries

	return a.write(userID, af)
}

// Read returns the user's archived records. A missing archive is empty.
func (a *Archive) Read(userID string) ([]*models.ArchivedRecord, error) {
	af, err := a.load(userID)
	if err != nil {
		return nil, err
	}
	return af.Entries, nil
}

// Close releases resources held by the compressor.
func (a *Archive) Close() {
	a.compressor.Close()
}

func (a *Archive) path(userID string) (string, error) {
	dir, err := a.users.Dir(userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, archiveFileName), nil
}

func (a *Archive) load(userID string) (*ArchiveFile, error) {
	path, err := a.path(userID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ArchiveFile{Entries: []*models.ArchivedRecord{}}, nil
		}
		return nil, models.IOError("read archive", err)
	}

	decompressed, err := a.compressor.Decompress(data)
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "Failed to decompress archive %s: %s", path, err)
		return nil, models.IOError("decompress archive", err)
	}

	var af ArchiveFile
	if err := json.Unmarshal(decompressed, &af); err != nil {
		a.logger.Errorf(providers.TypeApp, "Failed to parse archive %s: %s", path, err)
		return nil, models.IOError("decode archive", err)
	}
	if af.Entries == nil {
		af.Entries = []*models.ArchivedRecord{}
	}
	return &af, nil
}

func (a *Archive) write(userID string, af *ArchiveFile) error {
	jsonData, err := json.Marshal(af)
	if err != nil {
		return models.IOError("encode archive", err)
	}

	compressed, err := a.compressor.Compress(jsonData)
	if err != nil {
		return models.IOError("compress archive", err)
	}

	dir, err := a.users.Ensure(userID)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(dir, archiveFileName, compressed); err != nil {
		return models.IOError("write archive", err)
	}
	return nil
}
