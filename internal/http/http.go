// Package http holds response helpers shared by the handler packages.
package http

import (
	"encoding/json"
	"net/http"

	"finlens/internal/logging"
	"finlens/internal/templates"
	"finlens/internal/version"
)

// PageData starts the data map every page template receives
func PageData(title string) map[string]interface{} {
	return map[string]interface{}{
		"Title":   title,
		"Version": version.Get().Short(),
	}
}

// RenderTemplate renders a full page template with data
func RenderTemplate(w http.ResponseWriter, renderer *templates.Renderer, name string, data map[string]interface{}) {
	if renderer == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><h1>" + name + "</h1><p>Templates not loaded. Check configuration.</p></body></html>"))
		return
	}
	renderer.Render(w, name, data)
}

// ErrorPage renders the error page with status code, falling back to plain text
func ErrorPage(w http.ResponseWriter, renderer *templates.Renderer, message string, status int) {
	logging.Component("http").Warn("request failed", "status", status, "msg", message)
	if renderer == nil || !renderer.Has("error-page") {
		http.Error(w, message, status)
		return
	}
	data := PageData("Error")
	data["Heading"] = message
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := renderer.ExecuteTemplate(w, "error-page", data); err != nil {
		logging.Component("http").Error("error rendering error page", "err", err)
	}
}

// ErrorResponse sends a plain error response
func ErrorResponse(w http.ResponseWriter, message string, status int) {
	logging.Component("http").Warn("request failed", "status", status, "msg", message)
	http.Error(w, message, status)
}

// JSON writes v as a JSON response
func JSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Component("http").Error("error encoding response", "err", err)
		JSONError(w, http.StatusInternalServerError, "could not encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// JSONError writes {"error": message}
func JSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
