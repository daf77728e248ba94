package controllers

import (
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/services"
	"net/http"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type HistoryController struct {
	logger  providers.Logger
	service services.HistoryServiceInterface
	cache   providers.CacheProviderInterface
}

func NewHistoryController(logger providers.Logger, service services.HistoryServiceInterface, cache providers.CacheProviderInterface) *HistoryController {
	return &HistoryController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (hc *HistoryController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := hc.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, r, hc.logger, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		writeError(w, r, hc.logger, models.IOError("encode response", err))
		return
	}

	hc.cache.Set(cacheKey, gson)
	writeJSON(w, http.StatusOK, gson)
}

func (hc *HistoryController) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if err := models.ValidateUserID(userID); err != nil {
		writeError(w, r, hc.logger, err)
		return
	}
	hc.serveFromCacheOrCompute(w, r, providers.HistoryCacheKey(userID), func() (any, error) {
		return hc.service.ReadAll(r.Context(), userID)
	})
}

func (hc *HistoryController) AppendRecord(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if err := models.ValidateUserID(userID); err != nil {
		writeError(w, r, hc.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, r, hc.logger, models.NewValidationError("", "malformed record: %s", err))
		return
	}

	stored, err := hc.service.Append(r.Context(), userID, &record)
	if err != nil {
		writeError(w, r, hc.logger, err)
		return
	}

	gson, err := json.Marshal(stored)
	if err != nil {
		writeError(w, r, hc.logger, models.IOError("encode response", err))
		return
	}
	writeJSON(w, http.StatusCreated, gson)
}

func (hc *HistoryController) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := hc.service.Delete(r.Context(), r.PathValue("user_id"), r.PathValue("record_id")); err != nil {
		writeError(w, r, hc.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (hc *HistoryController) GetArchive(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if err := models.ValidateUserID(userID); err != nil {
		writeError(w, r, hc.logger, err)
		return
	}
	entries, err := hc.service.ReadArchive(r.Context(), userID)
	if err != nil {
		writeError(w, r, hc.logger, err)
		return
	}
	if entries == nil {
		entries = []*models.ArchivedRecord{}
	}
	gson, err := json.Marshal(entries)
	if err != nil {
		writeError(w, r, hc.logger, models.IOError("encode response", err))
		return
	}
	writeJSON(w, http.StatusOK, gson)
}

func (hc *HistoryController) GetUsers(w http.ResponseWriter, r *http.Request) {
	hc.serveFromCacheOrCompute(w, r, providers.UsersCacheKey, func() (any, error) {
		users, err := hc.service.ListUsers(r.Context())
		if err != nil {
			return nil, err
		}
		if users == nil {
			users = []string{}
		}
		return users, nil
	})
}

func (hc *HistoryController) Cleanup(w http.ResponseWriter, r *http.Request) {
	summary, err := hc.service.Cleanup(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeError(w, r, hc.logger, err)
		return
	}
	gson, err := json.Marshal(summary)
	if err != nil {
		writeError(w, r, hc.logger, models.IOError("encode response", err))
		return
	}
	writeJSON(w, http.StatusOK, gson)
}
