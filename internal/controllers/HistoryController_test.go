package controllers

import (
	"encoding/json"
	"fmt"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/testutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve routes req through a mux so path values are populated.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func newTestHistoryController(svc *testutil.MockHistoryService) (*HistoryController, *testutil.MockCache) {
	cache := testutil.NewMockCache()
	return NewHistoryController(&testutil.MockLogger{}, svc, cache), cache
}

const validRiskBody = `{
	"type": "pregnancy_risk",
	"confidence": 0.8,
	"input_data": {"Age": 29, "BMI": 23.4, "Systolic BP": 120, "Diastolic": 80, "BS": 6.1, "Body Temp": 98.2,
		"Heart Rate": 76, "Previous Complications": 0, "Preexisting Diabetes": 0, "Gestational Diabetes": 1, "Mental Health": 0},
	"prediction": "Low",
	"probabilities": {"high_risk": 0.2, "low_risk": 0.8}
}`

func TestGetHistory_ComputesAndCaches(t *testing.T) {
	svc := &testutil.MockHistoryService{
		ReadAllFn: func(userID string) (*models.HistoryView, error) {
			return models.NewHistoryView(models.Collection{testutil.RiskRecord(userID, "r1", testutil.BaseTime)}), nil
		},
	}
	hc, cache := newTestHistoryController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history/alice", nil)
	rr := serve("GET /api/history/{user_id}", hc.GetHistory, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["total"])
	assert.Len(t, resp["pregnancyRisk"], 1)
	assert.Len(t, resp["fetalClassification"], 0)

	_, cached := cache.Data[providers.HistoryCacheKey("alice")]
	assert.True(t, cached)

	rr = serve("GET /api/history/{user_id}", hc.GetHistory, httptest.NewRequest(http.MethodGet, "/api/history/alice", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, svc.CallCount("ReadAll"))
}

func TestGetHistory_InvalidUser(t *testing.T) {
	svc := &testutil.MockHistoryService{}
	hc, _ := newTestHistoryController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history/.hidden", nil)
	rr := serve("GET /api/history/{user_id}", hc.GetHistory, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, svc.CallCount("ReadAll"))
}

func TestGetHistory_StorageErrorHidesDetails(t *testing.T) {
	svc := &testutil.MockHistoryService{
		ReadAllFn: func(string) (*models.HistoryView, error) {
			return nil, models.IOError("read history", fmt.Errorf("open /srv/uploads/alice: permission denied"))
		},
	}
	hc, cache := newTestHistoryController(svc)

	rr := serve("GET /api/history/{user_id}", hc.GetHistory, httptest.NewRequest(http.MethodGet, "/api/history/alice", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "/srv/uploads")
	assert.Empty(t, cache.Data)
}

func TestAppendRecord_Created(t *testing.T) {
	svc := &testutil.MockHistoryService{}
	hc, _ := newTestHistoryController(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/history/alice", strings.NewReader(validRiskBody))
	rr := serve("POST /api/history/{user_id}", hc.AppendRecord, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, svc.AppendedRecord, 1)
	record := svc.AppendedRecord[0]
	assert.Equal(t, models.TypePregnancyRisk, record.Type)
	require.NotNil(t, record.PregnancyRisk)
	assert.Equal(t, 120.0, record.InputData[models.FieldSystolicBP])
}

func TestAppendRecord_MalformedJSON(t *testing.T) {
	svc := &testutil.MockHistoryService{}
	hc, _ := newTestHistoryController(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/history/alice", strings.NewReader("{not json"))
	rr := serve("POST /api/history/{user_id}", hc.AppendRecord, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, svc.CallCount("Append"))
}

func TestAppendRecord_OversizedBody(t *testing.T) {
	svc := &testutil.MockHistoryService{}
	hc, _ := newTestHistoryController(svc)

	big := `{"type":"` + strings.Repeat("x", maxRequestBodySize+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/history/alice", strings.NewReader(big))
	rr := serve("POST /api/history/{user_id}", hc.AppendRecord, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAppendRecord_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", models.NewValidationError("probabilities", "bad"), http.StatusBadRequest},
		{"invalid user", models.ErrInvalidUserId, http.StatusBadRequest},
		{"conflict", fmt.Errorf("record r1 already exists: %w", models.ErrConflict), http.StatusConflict},
		{"busy", fmt.Errorf("lock alice: %w", models.ErrBusy), http.StatusServiceUnavailable},
		{"io", models.IOError("commit history", fmt.Errorf("disk full")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &testutil.MockHistoryService{
				AppendFn: func(string, *models.Record) (*models.Record, error) { return nil, tt.err },
			}
			hc, _ := newTestHistoryController(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/history/alice", strings.NewReader(validRiskBody))
			rr := serve("POST /api/history/{user_id}", hc.AppendRecord, req)

			assert.Equal(t, tt.status, rr.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestDeleteRecord_NoContent(t *testing.T) {
	var gotUser, gotRecord string
	svc := &testutil.MockHistoryService{
		DeleteFn: func(userID, recordID string) error {
			gotUser, gotRecord = userID, recordID
			return nil
		},
	}
	hc, _ := newTestHistoryController(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/history/alice/r1", nil)
	rr := serve("DELETE /api/history/{user_id}/{record_id}", hc.DeleteRecord, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "r1", gotRecord)
}

func TestGetArchive(t *testing.T) {
	svc := &testutil.MockHistoryService{
		ReadArchiveFn: func(userID string) ([]*models.ArchivedRecord, error) {
			return []*models.ArchivedRecord{{
				Record:    testutil.RiskRecord(userID, "r0", testutil.BaseTime),
				EvictedAt: models.NewTimestamp(testutil.BaseTime),
			}}, nil
		},
	}
	hc, _ := newTestHistoryController(svc)

	rr := serve("GET /api/history/{user_id}/archive", hc.GetArchive, httptest.NewRequest(http.MethodGet, "/api/history/alice/archive", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "2026-03-01T10:00:00Z", resp[0]["evicted_at"])
}

func TestGetArchive_EmptyIsArray(t *testing.T) {
	hc, _ := newTestHistoryController(&testutil.MockHistoryService{})

	rr := serve("GET /api/history/{user_id}/archive", hc.GetArchive, httptest.NewRequest(http.MethodGet, "/api/history/alice/archive", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetUsers(t *testing.T) {
	svc := &testutil.MockHistoryService{
		ListUsersFn: func() ([]string, error) { return []string{"alice", "bob"}, nil },
	}
	hc, cache := newTestHistoryController(svc)

	rr := serve("GET /api/users", hc.GetUsers, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["alice","bob"]`, rr.Body.String())
	assert.Contains(t, cache.Data, providers.UsersCacheKey)
}

func TestGetUsers_EmptyIsArray(t *testing.T) {
	hc, _ := newTestHistoryController(&testutil.MockHistoryService{})

	rr := serve("GET /api/users", hc.GetUsers, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCleanup_ReturnsSummary(t *testing.T) {
	svc := &testutil.MockHistoryService{
		CleanupFn: func(string) (*models.CleanupSummary, error) {
			return (&models.CleanupSummary{RemovedRecords: 2, RemovedFiles: 1}).Complete(), nil
		},
	}
	hc, _ := newTestHistoryController(svc)

	rr := serve("GET /api/cleanup/{user_id}", hc.Cleanup, httptest.NewRequest(http.MethodGet, "/api/cleanup/alice", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Cleanup completed. Removed 2 records and 1 files.","removed_records":2,"removed_files":1}`, rr.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("image x: %w", models.ErrNotFound)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(models.ErrBusy))
	assert.Equal(t, http.StatusInternalServerError, statusFor(models.ErrIO))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("unexpected")))
}
