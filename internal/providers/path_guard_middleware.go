package providers

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSONError writes {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	body, err := json.Marshal(errorResponse{Error: message})
	if err != nil {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// PathGuardMiddleware rejects paths with dot-dot segments before the mux
// gets a chance to clean and redirect them.
func PathGuardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasDotDotSegment(r.URL.Path) || hasDotDotSegment(r.URL.RawPath) {
			WriteJSONError(w, http.StatusBadRequest, "invalid path")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasDotDotSegment(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
