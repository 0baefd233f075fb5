package upload

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"finlens/internal/config"
	apphttp "finlens/internal/http"
	"finlens/internal/logging"
	"finlens/internal/parsers"
	"finlens/internal/services/statements"
	"finlens/internal/templates"
)

var (
	cfg      *config.Config
	service  *statements.Service
	renderer *templates.Renderer
)

// Initialize sets up the upload package with required dependencies
func Initialize(c *config.Config, s *statements.Service, r *templates.Renderer) {
	cfg = c
	service = s
	renderer = r
}

// RegisterRoutes registers the upload page and the routes that start an analysis
func RegisterRoutes(r chi.Router) {
	r.Get("/", handleIndex)
	r.Post("/upload", handleUpload)
	r.Get("/sample", handleSample)
}

func indexData(errMsg string) map[string]interface{} {
	data := apphttp.PageData("Upload")
	data["MaxUploadMB"] = cfg.MaxUploadBytes >> 20
	data["Accept"] = strings.Join(parsers.SupportedExtensions, ",")
	if errMsg != "" {
		data["Error"] = errMsg
	}
	return data
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	apphttp.RenderTemplate(w, renderer, "index", indexData(""))
}

func renderUploadError(w http.ResponseWriter, msg string, status int) {
	logging.Component("upload").Warn("upload rejected", "status", status, "reason", msg)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	apphttp.RenderTemplate(w, renderer, "index", indexData(msg))
}

func handleUpload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			renderUploadError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		renderUploadError(w, "Could not read upload", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		renderUploadError(w, "No file selected", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		renderUploadError(w, "No file selected", http.StatusBadRequest)
		return
	}
	if !parsers.IsSupported(header.Filename) {
		renderUploadError(w, "File type not allowed. Upload a .csv or .xlsx statement.", http.StatusBadRequest)
		return
	}

	result, err := service.Upload(header.Filename, file)
	switch {
	case errors.Is(err, statements.ErrTooLarge):
		renderUploadError(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, statements.ErrNoTransactions):
		renderUploadError(w, "No transactions found in the statement", http.StatusUnprocessableEntity)
		return
	case err != nil:
		renderUploadError(w, "Error processing file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	http.Redirect(w, r, "/analyze/"+result.ID, http.StatusSeeOther)
}

func handleSample(w http.ResponseWriter, r *http.Request) {
	result, err := service.AnalyzeFile(cfg.SampleStatement)
	if err != nil {
		logging.Component("upload").Error("sample statement failed", "path", cfg.SampleStatement, "err", err)
		apphttp.ErrorPage(w, renderer, "Sample statement unavailable", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/analyze/"+result.ID, http.StatusSeeOther)
}
