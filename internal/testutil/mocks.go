package testutil

import (
	"context"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns the number of entries logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	m.Deleted = append(m.Deleted, key)
}

// MockMetrics implements providers.MetricsProviderInterface and keeps
// counters for assertions.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       map[string]int
	CacheHits      int
	CacheMisses    int
	Commits        int
	Appended       int
	RecordsRemoved map[string]int
	FilesRemoved   map[string]int
	LockTimeouts   int
	UsersTotal     int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:       make(map[string]int),
		RecordsRemoved: make(map[string]int),
		FilesRemoved:   make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObserveCommitDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commits++
}

func (m *MockMetrics) AddRecordsAppended(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appended += count
}

func (m *MockMetrics) AddRecordsRemoved(reason string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsRemoved[reason] += count
}

func (m *MockMetrics) AddFilesRemoved(reason string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilesRemoved[reason] += count
}

func (m *MockMetrics) IncLockTimeouts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockTimeouts++
}

func (m *MockMetrics) SetUsersTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsersTotal = count
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}

// MockHistoryService implements services.HistoryServiceInterface. Each
// method delegates to its Fn field when set and otherwise returns zero
// values.
type MockHistoryService struct {
	mu sync.Mutex

	AppendFn       func(userID string, record *models.Record) (*models.Record, error)
	ReadAllFn      func(userID string) (*models.HistoryView, error)
	ListUsersFn    func() ([]string, error)
	CleanupFn      func(userID string) (*models.CleanupSummary, error)
	DeleteFn       func(userID, recordID string) error
	SaveImageFn    func(userID, originalName string, content []byte) (*models.StoredImage, error)
	ImagePathFn    func(userID, filename string) (string, error)
	ReadArchiveFn  func(userID string) ([]*models.ArchivedRecord, error)
	Calls          map[string]int
	CleanedUsers   []string
	AppendedRecord []*models.Record
}

func (m *MockHistoryService) call(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[name]++
}

// CallCount returns how many times the named method was called.
func (m *MockHistoryService) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockHistoryService) Append(_ context.Context, userID string, record *models.Record) (*models.Record, error) {
	m.call("Append")
	m.mu.Lock()
	m.AppendedRecord = append(m.AppendedRecord, record)
	m.mu.Unlock()
	if m.AppendFn != nil {
		return m.AppendFn(userID, record)
	}
	return record, nil
}

func (m *MockHistoryService) ReadAll(_ context.Context, userID string) (*models.HistoryView, error) {
	m.call("ReadAll")
	if m.ReadAllFn != nil {
		return m.ReadAllFn(userID)
	}
	return models.NewHistoryView(nil), nil
}

func (m *MockHistoryService) ListUsers(_ context.Context) ([]string, error) {
	m.call("ListUsers")
	if m.ListUsersFn != nil {
		return m.ListUsersFn()
	}
	return nil, nil
}

func (m *MockHistoryService) Deduplicate(_ context.Context, _ string) (*models.CleanupSummary, error) {
	m.call("Deduplicate")
	return &models.CleanupSummary{}, nil
}

func (m *MockHistoryService) EvictExpired(_ context.Context, _ string, _ time.Duration) (*models.CleanupSummary, error) {
	m.call("EvictExpired")
	return &models.CleanupSummary{}, nil
}

func (m *MockHistoryService) Delete(_ context.Context, userID, recordID string) error {
	m.call("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(userID, recordID)
	}
	return nil
}

func (m *MockHistoryService) Cleanup(_ context.Context, userID string) (*models.CleanupSummary, error) {
	m.call("Cleanup")
	m.mu.Lock()
	m.CleanedUsers = append(m.CleanedUsers, userID)
	m.mu.Unlock()
	if m.CleanupFn != nil {
		return m.CleanupFn(userID)
	}
	return (&models.CleanupSummary{}).Complete(), nil
}

func (m *MockHistoryService) SaveImage(_ context.Context, userID, originalName string, content []byte) (*models.StoredImage, error) {
	m.call("SaveImage")
	if m.SaveImageFn != nil {
		return m.SaveImageFn(userID, originalName, content)
	}
	return &models.StoredImage{ImageFilename: originalName, ImagePath: models.ImagePathFor(userID, originalName)}, nil
}

func (m *MockHistoryService) ImagePath(userID, filename string) (string, error) {
	m.call("ImagePath")
	if m.ImagePathFn != nil {
		return m.ImagePathFn(userID, filename)
	}
	return "", models.ErrNotFound
}

func (m *MockHistoryService) ReadArchive(_ context.Context, userID string) ([]*models.ArchivedRecord, error) {
	m.call("ReadArchive")
	if m.ReadArchiveFn != nil {
		return m.ReadArchiveFn(userID)
	}
	return nil, nil
}
