package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathGuardMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"plain", "/uploads/alice/scan.png", http.StatusOK},
		{"dot dot", "/uploads/alice/../../etc/passwd", http.StatusBadRequest},
		{"encoded dot dot", "/uploads/alice/..%2F..%2Fetc%2Fpasswd", http.StatusBadRequest},
		{"encoded dots", "/uploads/%2e%2e/secret.png", http.StatusBadRequest},
		{"backslash", "/uploads/alice/..%5Csecret.png", http.StatusBadRequest},
		{"dots inside name", "/uploads/alice/scan..png", http.StatusOK},
	}

	mw := PathGuardMiddleware(dummyHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()
			mw.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusBadRequest {
				assert.JSONEq(t, `{"error":"invalid path"}`, rr.Body.String())
			}
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, http.StatusServiceUnavailable, "busy")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"busy"}`, rr.Body.String())
}
