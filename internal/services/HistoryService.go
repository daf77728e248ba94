package services

import (
	"context"
	"errors"
	"fmt"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/storage"
	"medhistory/internal/structures"
	"sort"
	"time"

	"github.com/google/uuid"
)

const userFolderNotFound = "User folder not found"

type HistoryServiceInterface interface {
	Append(ctx context.Context, userID string, record *models.Record) (*models.Record, error)
	ReadAll(ctx context.Context, userID string) (*models.HistoryView, error)
	ListUsers(ctx context.Context) ([]string, error)
	Deduplicate(ctx context.Context, userID string) (*models.CleanupSummary, error)
	EvictExpired(ctx context.Context, userID string, window time.Duration) (*models.CleanupSummary, error)
	Delete(ctx context.Context, userID, recordID string) error
	Cleanup(ctx context.Context, userID string) (*models.CleanupSummary, error)
	SaveImage(ctx context.Context, userID, originalName string, content []byte) (*models.StoredImage, error)
	ImagePath(userID, filename string) (string, error)
	ReadArchive(ctx context.Context, userID string) ([]*models.ArchivedRecord, error)
}

// HistoryService is the only component that reads or writes record
// collections. Every mutation of a user's collection runs under that
// user's lock and ends with one atomic commit.
type HistoryService struct {
	users      *storage.UserStore
	files      *storage.FileManager
	images     *storage.ImageStore
	archive    *storage.Archive
	locks      *storage.LockTable
	cache      providers.CacheProviderInterface
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger
	maxRecords int
	retention  time.Duration
	now        func() time.Time
	newID      func() string
}

func NewHistoryService(
	conf *structures.Config,
	users *storage.UserStore,
	files *storage.FileManager,
	images *storage.ImageStore,
	archive *storage.Archive,
	locks *storage.LockTable,
	cache providers.CacheProviderInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) HistoryServiceInterface {
	return &HistoryService{
		users:      users,
		files:      files,
		images:     images,
		archive:    archive,
		locks:      locks,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		maxRecords: conf.Storage.MaxRecords,
		retention:  conf.Storage.Retention,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (hs *HistoryService) Append(ctx context.Context, userID string, record *models.Record) (*models.Record, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, models.NewValidationError("", "record is empty")
	}

	if record.ID == "" {
		record.ID = hs.newID()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = models.NewTimestamp(hs.now())
	} else {
		record.Timestamp = models.NewTimestamp(record.Timestamp.Time)
	}
	if record.UserID == "" {
		record.UserID = userID
	}
	if record.FetalClassification != nil && record.ImagePath == "" {
		record.ImagePath = models.ImagePathFor(userID, record.ImageFilename)
	}
	if err := record.Validate(userID); err != nil {
		return nil, err
	}

	unlock, err := hs.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := hs.files.Load(userID)
	if err != nil {
		return nil, err
	}
	if c.IndexOf(record.ID) >= 0 {
		return nil, fmt.Errorf("record %s already exists: %w", record.ID, models.ErrConflict)
	}

	c = append(c, record)
	c.SortNewestFirst()
	kept, evicted := c.Trim(hs.maxRecords)

	if err := hs.files.Commit(userID, kept); err != nil {
		return nil, err
	}
	hs.invalidate(userID)
	hs.metrics.AddRecordsAppended(1)

	if len(evicted) > 0 {
		hs.metrics.AddRecordsRemoved(providers.ReasonCap, len(evicted))
		hs.logger.Infof(providers.TypePost, "Evicted %d records of %s over the cap of %d", len(evicted), userID, hs.maxRecords)
		if err := hs.archive.Append(userID, evicted, hs.now()); err != nil {
			hs.logger.Errorf(providers.TypePost, "Failed to archive evicted records of %s: %s", userID, err)
		}
	}
	return record, nil
}

func (hs *HistoryService) ReadAll(_ context.Context, userID string) (*models.HistoryView, error) {
	c, err := hs.files.Load(userID)
	if err != nil {
		return nil, err
	}
	return models.NewHistoryView(c), nil
}

func (hs *HistoryService) ListUsers(_ context.Context) ([]string, error) {
	all, err := hs.users.ListUsers()
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(all))
	for _, u := range all {
		c, err := hs.files.Load(u)
		if err != nil {
			hs.logger.Warnf(providers.TypeGet, "Skipping user %s: %s", u, err)
			continue
		}
		if len(c) > 0 {
			users = append(users, u)
		}
	}
	hs.metrics.SetUsersTotal(len(users))
	return users, nil
}

// Deduplicate keeps, for every group of image-backed records whose files
// have identical content, only the earliest record and deletes the others
// together with their files.
func (hs *HistoryService) Deduplicate(ctx context.Context, userID string) (*models.CleanupSummary, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, err
	}
	unlock, err := hs.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return hs.deduplicateLocked(userID)
}

func (hs *HistoryService) deduplicateLocked(userID string) (*models.CleanupSummary, error) {
	summary := &models.CleanupSummary{}
	c, err := hs.files.Load(userID)
	if err != nil {
		return nil, err
	}

	backed := make(models.Collection, 0, len(c))
	for _, r := range c {
		if r.IsImageBacked() {
			backed = append(backed, r)
		}
	}
	sort.SliceStable(backed, func(i, j int) bool {
		return backed[i].Timestamp.Before(backed[j].Timestamp.Time)
	})

	hashes := make(map[string]string) // filename -> content hash
	kept := make(map[string]struct{}) // content hashes of surviving records
	drop := make(map[string]struct{})
	for _, r := range backed {
		hash, ok := hashes[r.ImageFilename]
		if !ok {
			hash, err = hs.images.Hash(userID, r.ImageFilename)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					continue
				}
				return nil, err
			}
			hashes[r.ImageFilename] = hash
		}
		if _, seen := kept[hash]; !seen {
			kept[hash] = struct{}{}
			continue
		}
		drop[r.ID] = struct{}{}
	}
	if len(drop) == 0 {
		return summary, nil
	}

	remaining := c.Without(drop)
	if err := hs.files.Commit(userID, remaining); err != nil {
		return nil, err
	}
	hs.invalidate(userID)
	summary.RemovedRecords = len(drop)

	// files of kept records stay, and each dropped file is removed once
	skip := remaining.ReferencedFiles()
	for _, r := range c {
		if _, dropped := drop[r.ID]; !dropped {
			continue
		}
		if _, ok := skip[r.ImageFilename]; ok {
			continue
		}
		skip[r.ImageFilename] = 0
		removed, err := hs.images.Remove(userID, r.ImageFilename)
		if err != nil {
			hs.logger.Errorf(providers.TypeApp, "Failed to remove duplicate image %s of %s: %s", r.ImageFilename, userID, err)
			continue
		}
		if removed {
			summary.RemovedFiles++
		}
	}

	hs.metrics.AddRecordsRemoved(providers.ReasonDuplicate, summary.RemovedRecords)
	hs.metrics.AddFilesRemoved(providers.ReasonDuplicate, summary.RemovedFiles)
	hs.logger.Infof(providers.TypeApp, "Deduplicated %s: removed %d records and %d files", userID, summary.RemovedRecords, summary.RemovedFiles)
	return summary, nil
}

// EvictExpired deletes image files last modified before now-window and the
// records that reference them.
func (hs *HistoryService) EvictExpired(ctx context.Context, userID string, window time.Duration) (*models.CleanupSummary, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, err
	}
	unlock, err := hs.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return hs.evictExpiredLocked(userID, window)
}

func (hs *HistoryService) evictExpiredLocked(userID string, window time.Duration) (*models.CleanupSummary, error) {
	summary := &models.CleanupSummary{}
	images, err := hs.images.List(userID)
	if err != nil {
		return nil, err
	}

	cutoff := hs.now().Add(-window)
	expired := make(map[string]struct{})
	for _, img := range images {
		if img.ModTime.Before(cutoff) {
			expired[img.Name] = struct{}{}
		}
	}
	if len(expired) == 0 {
		return summary, nil
	}

	c, err := hs.files.Load(userID)
	if err != nil {
		return nil, err
	}
	drop := make(map[string]struct{})
	for _, r := range c {
		if !r.IsImageBacked() {
			continue
		}
		if _, ok := expired[r.ImageFilename]; ok {
			drop[r.ID] = struct{}{}
		}
	}
	if len(drop) > 0 {
		if err := hs.files.Commit(userID, c.Without(drop)); err != nil {
			return nil, err
		}
		hs.invalidate(userID)
		summary.RemovedRecords = len(drop)
	}

	for name := range expired {
		removed, err := hs.images.Remove(userID, name)
		if err != nil {
			hs.logger.Errorf(providers.TypeApp, "Failed to remove expired image %s of %s: %s", name, userID, err)
			continue
		}
		if removed {
			summary.RemovedFiles++
		}
	}

	hs.metrics.AddRecordsRemoved(providers.ReasonRetention, summary.RemovedRecords)
	hs.metrics.AddFilesRemoved(providers.ReasonRetention, summary.RemovedFiles)
	hs.logger.Infof(providers.TypeApp, "Retention for %s: removed %d records and %d files older than %s", userID, summary.RemovedRecords, summary.RemovedFiles, window)
	return summary, nil
}

func (hs *HistoryService) Delete(ctx context.Context, userID, recordID string) error {
	if err := models.ValidateUserID(userID); err != nil {
		return err
	}
	if !hs.users.Exists(userID) {
		return nil
	}
	unlock, err := hs.locks.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	c, err := hs.files.Load(userID)
	if err != nil {
		return err
	}
	if c.IndexOf(recordID) < 0 {
		return nil
	}
	if err := hs.files.Commit(userID, c.Without(map[string]struct{}{recordID: {}})); err != nil {
		return err
	}
	hs.invalidate(userID)
	hs.metrics.AddRecordsRemoved(providers.ReasonDelete, 1)
	return nil
}

// Cleanup runs deduplication and then retention eviction with the
// configured window, both under one lock acquisition.
func (hs *HistoryService) Cleanup(ctx context.Context, userID string) (*models.CleanupSummary, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if !hs.users.Exists(userID) {
		return &models.CleanupSummary{Message: userFolderNotFound}, nil
	}
	unlock, err := hs.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	summary := &models.CleanupSummary{}
	dedup, err := hs.deduplicateLocked(userID)
	if err != nil {
		return nil, err
	}
	summary.Add(dedup)

	expired, err := hs.evictExpiredLocked(userID, hs.retention)
	if err != nil {
		return nil, err
	}
	summary.Add(expired)
	return summary.Complete(), nil
}

func (hs *HistoryService) SaveImage(ctx context.Context, userID, originalName string, content []byte) (*models.StoredImage, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, err
	}
	unlock, err := hs.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return hs.images.Save(userID, originalName, content, hs.now())
}

func (hs *HistoryService) ImagePath(userID, filename string) (string, error) {
	return hs.images.Stat(userID, filename)
}

func (hs *HistoryService) ReadArchive(_ context.Context, userID string) ([]*models.ArchivedRecord, error) {
	return hs.archive.Read(userID)
}

func (hs *HistoryService) invalidate(userID string) {
	hs.cache.Del(providers.HistoryCacheKey(userID))
	hs.cache.Del(providers.UsersCacheKey)
}
