package controllers

import (
	"io"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"medhistory/internal/services"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	json "github.com/goccy/go-json"
)

const (
	maxUploadSize   = 10 << 20 // 10 MB
	uploadFormField = "file"
)

type UploadsController struct {
	logger  providers.Logger
	service services.HistoryServiceInterface
}

func NewUploadsController(logger providers.Logger, service services.HistoryServiceInterface) *UploadsController {
	return &UploadsController{
		logger:  logger,
		service: service,
	}
}

type uploadResponse struct {
	ImageFilename string `json:"image_filename"`
	ImagePath     string `json:"image_path"`
	Reused        bool   `json:"reused"`
}

func (uc *UploadsController) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if err := models.ValidateUserID(userID); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, uc.logger, models.NewValidationError(uploadFormField, "malformed upload: %s", err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		writeError(w, r, uc.logger, models.NewValidationError(uploadFormField, "is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		writeError(w, r, uc.logger, models.NewValidationError(uploadFormField, "unreadable: %s", err))
		return
	}
	if len(content) > maxUploadSize {
		writeError(w, r, uc.logger, models.NewValidationError(uploadFormField, "exceeds %d bytes", maxUploadSize))
		return
	}

	stored, err := uc.service.SaveImage(r.Context(), userID, header.Filename, content)
	if err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	gson, err := json.Marshal(uploadResponse{
		ImageFilename: stored.ImageFilename,
		ImagePath:     stored.ImagePath,
		Reused:        stored.Reused,
	})
	if err != nil {
		writeError(w, r, uc.logger, models.IOError("encode response", err))
		return
	}
	writeJSON(w, http.StatusCreated, gson)
}

func (uc *UploadsController) ServeImage(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	filename := r.PathValue("filename")
	if err := models.ValidateUserID(userID); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}
	if err := models.ValidateFilename(filename); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	path, err := uc.service.ImagePath(userID, filename)
	if err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	// on error ServeFile reports the missing file itself
	if mime, err := mimetype.DetectFile(path); err == nil {
		w.Header().Set("Content-Type", mime.String())
	}
	http.ServeFile(w, r, path)
}
