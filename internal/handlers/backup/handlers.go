// Package backup serves archive export and restore of stored statements
// and the storage encryption endpoints.
package backup

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apphttp "finlens/internal/http"
	"finlens/internal/logging"
	"finlens/internal/parsers"
	"finlens/internal/services/storage"
)

// maxRestoreBytes caps the size of an uploaded backup archive
const maxRestoreBytes = 50 << 20

var store *storage.Store

// Initialize sets up the backup package with required dependencies
func Initialize(s *storage.Store) {
	store = s
}

// RegisterRoutes registers backup and storage routes under /api
func RegisterRoutes(r chi.Router) {
	r.Route("/api/storage", func(r chi.Router) {
		r.Get("/", handleStatus)
		r.Post("/unlock", handleUnlock)
		r.Get("/backup", handleBackup)
		r.Post("/restore", handleRestore)
		r.Post("/delete-all", handleDeleteAll)
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, http.StatusOK, map[string]interface{}{
		"encrypted": store.IsEncrypted(),
		"unlocked":  store.IsUnlocked(),
	})
}

func handleUnlock(w http.ResponseWriter, r *http.Request) {
	err := store.Unlock(r.FormValue("passphrase"))
	switch {
	case errors.Is(err, storage.ErrWrongPassphrase):
		apphttp.JSONError(w, http.StatusForbidden, "Wrong passphrase")
	case err != nil:
		apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
	default:
		handleStatus(w, r)
	}
}

// handleBackup streams every stored statement as plaintext in a zip archive
func handleBackup(w http.ResponseWriter, r *http.Request) {
	files, err := store.List()
	if err != nil {
		apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Build in memory so a locked store or read error can still produce a clean error response
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		name := filepath.Base(f.Path)
		data, err := store.Read(name)
		if errors.Is(err, storage.ErrLocked) {
			apphttp.JSONError(w, http.StatusLocked, "Storage is locked")
			return
		}
		if err != nil {
			apphttp.JSONError(w, http.StatusInternalServerError, fmt.Sprintf("read %s: %v", name, err))
			return
		}
		entry, err := zw.Create(name)
		if err == nil {
			_, err = entry.Write(data)
		}
		if err != nil {
			apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := zw.Close(); err != nil {
		apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("finlens_backup_%s.zip", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())

	logging.Component("backup").Info("backup created", "files", len(files), "bytes", buf.Len())
}

// handleRestore saves every supported statement found in an uploaded zip archive
func handleRestore(w http.ResponseWriter, r *http.Request) {
	logger := logging.Component("backup")

	r.Body = http.MaxBytesReader(w, r.Body, maxRestoreBytes+(1<<20))
	if err := r.ParseMultipartForm(maxRestoreBytes); err != nil {
		apphttp.JSONError(w, http.StatusBadRequest, "File too large")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.JSONError(w, http.StatusBadRequest, "Error reading file")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		apphttp.JSONError(w, http.StatusBadRequest, "Only ZIP backup files are allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		apphttp.JSONError(w, http.StatusInternalServerError, "Error reading file")
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		apphttp.JSONError(w, http.StatusBadRequest, "Invalid ZIP file")
		return
	}

	restored := 0
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !parsers.IsSupported(zf.Name) {
			continue
		}

		data, err := readEntry(zf)
		if err != nil {
			logger.Warn("skipping backup entry", "entry", zf.Name, "err", err)
			continue
		}

		id, name := splitStoredName(filepath.Base(zf.Name))
		if _, err := store.Save(id, name, data); err != nil {
			if errors.Is(err, storage.ErrLocked) {
				apphttp.JSONError(w, http.StatusLocked, "Storage is locked")
				return
			}
			logger.Warn("could not restore statement", "entry", zf.Name, "err", err)
			continue
		}
		restored++
	}

	if restored == 0 {
		apphttp.JSONError(w, http.StatusBadRequest, "No statements found in backup")
		return
	}

	logger.Info("restore complete", "files", restored)
	apphttp.JSON(w, http.StatusOK, map[string]int{"restored": restored})
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// splitStoredName keeps the id of a previously stored "<uuid>_<name>" entry
// and assigns a fresh one to anything else.
func splitStoredName(base string) (id, name string) {
	if prefix, rest, ok := strings.Cut(base, "_"); ok && rest != "" {
		if _, err := uuid.Parse(prefix); err == nil {
			return prefix, rest
		}
	}
	return uuid.NewString(), base
}

func handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	logger := logging.Component("backup")

	files, err := store.List()
	if err != nil {
		apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	deleted := 0
	for _, f := range files {
		if err := store.Delete(filepath.Base(f.Path)); err != nil {
			logger.Error("could not delete statement", "file", f.Path, "err", err)
			continue
		}
		deleted++
	}

	logger.Info("deleted stored statements", "files", deleted)
	apphttp.JSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
