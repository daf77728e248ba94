package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"medhistory/internal/models"
	"medhistory/internal/providers"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	maxBaseNameLen  = 64
	defaultBaseName = "ultrasound"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

type ImageFile struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// ImageStore manages the uploaded images of a user. Image files are written
// once and never modified, only deleted.
type ImageStore struct {
	users  *UserStore
	logger providers.Logger
}

func NewImageStore(users *UserStore, logger providers.Logger) *ImageStore {
	return &ImageStore{
		users:  users,
		logger: logger,
	}
}

// List returns the user's image files. A user without a storage area has none.
func (is *ImageStore) List(userID string) ([]ImageFile, error) {
	dir, err := is.users.Dir(userID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, models.IOError("list images", err)
	}

	images := make([]ImageFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		images = append(images, ImageFile{
			Name:    name,
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return images, nil
}

// Stat returns the path of a stored image, or models.ErrNotFound.
func (is *ImageStore) Stat(userID, filename string) (string, error) {
	path, err := is.users.PathFor(userID, filename)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("image %s: %w", filename, models.ErrNotFound)
		}
		return "", models.IOError("stat image", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("image %s: %w", filename, models.ErrNotFound)
	}
	return path, nil
}

// Hash returns the hex SHA-256 of a stored image's content.
func (is *ImageStore) Hash(userID, filename string) (string, error) {
	path, err := is.users.PathFor(userID, filename)
	if err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("image %s: %w", filename, models.ErrNotFound)
		}
		return "", models.IOError("open image", err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", models.IOError("hash image", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Remove deletes a stored image and reports whether a file was removed.
func (is *ImageStore) Remove(userID, filename string) (bool, error) {
	path, err := is.users.PathFor(userID, filename)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, models.IOError("remove image", err)
	}
	return true, nil
}

// Save stores an uploaded PNG or JPEG image as "<YYYYMMDD_HHMMSS>_<name><ext>".
// When the user already has a file with identical content, that file is
// returned instead. Callers hold the user lock.
func (is *ImageStore) Save(userID, originalName string, content []byte, now time.Time) (*models.StoredImage, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("file", "is empty")
	}
	mime := mimetype.Detect(content)
	ext, ok := allowedImageTypes[mime.String()]
	if !ok {
		return nil, models.NewValidationError("file", "unsupported content type %s", mime.String())
	}

	dir, err := is.users.Ensure(userID)
	if err != nil {
		return nil, err
	}

	existing, err := is.List(userID)
	if err != nil {
		return nil, err
	}
	for _, img := range existing {
		if img.Size != int64(len(content)) {
			continue
		}
		data, err := os.ReadFile(img.Path)
		if err != nil {
			continue
		}
		if bytes.Equal(data, content) {
			is.logger.Debugf(providers.TypePost, "Reusing stored image %s for %s", img.Name, userID)
			return &models.StoredImage{
				ImageFilename: img.Name,
				ImagePath:     models.ImagePathFor(userID, img.Name),
				Reused:        true,
			}, nil
		}
	}

	origExt := strings.ToLower(filepath.Ext(originalName))
	if ext == ".jpg" && origExt == ".jpeg" {
		ext = origExt
	}
	base := now.UTC().Format("20060102_150405") + "_" + sanitizeBaseName(originalName)

	name := base + ext
	for i := 1; fileExists(filepath.Join(dir, name)); i++ {
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}

	if err := writeFileAtomic(dir, name, content); err != nil {
		return nil, models.IOError("write image", err)
	}
	return &models.StoredImage{
		ImageFilename: name,
		ImagePath:     models.ImagePathFor(userID, name),
	}, nil
}

func sanitizeBaseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxBaseNameLen {
			break
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return defaultBaseName
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
