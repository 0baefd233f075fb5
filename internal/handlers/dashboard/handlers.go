package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finlens/internal/analysis"
	apphttp "finlens/internal/http"
	"finlens/internal/models"
	"finlens/internal/services/statements"
	"finlens/internal/templates"
)

var (
	service  *statements.Service
	renderer *templates.Renderer
)

// Initialize sets up the dashboard package with required dependencies
func Initialize(s *statements.Service, r *templates.Renderer) {
	service = s
	renderer = r
}

// RegisterRoutes registers the dashboard pages
func RegisterRoutes(r chi.Router) {
	r.Get("/analyze/{id}", handleDashboard)
	r.Get("/recommendations/{id}", handleRecommendations)
	r.Get("/clear/{id}", handleClear)
}

// lookup fetches the analysis named in the URL, rendering a 404 when it is gone
func lookup(w http.ResponseWriter, r *http.Request) (*models.SpendingAnalysis, bool) {
	a, ok := service.Get(chi.URLParam(r, "id"))
	if !ok {
		apphttp.ErrorPage(w, renderer, "Analysis not found. It may have expired; upload the statement again.", http.StatusNotFound)
		return nil, false
	}
	return a, true
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	a, ok := lookup(w, r)
	if !ok {
		return
	}

	pageData := apphttp.PageData("Dashboard")
	pageData["Analysis"] = a
	apphttp.RenderTemplate(w, renderer, "dashboard", pageData)
}

func handleRecommendations(w http.ResponseWriter, r *http.Request) {
	a, ok := lookup(w, r)
	if !ok {
		return
	}

	pageData := apphttp.PageData("Savings recommendations")
	pageData["Analysis"] = a
	pageData["Plan"] = analysis.RecommendSavings(a)
	apphttp.RenderTemplate(w, renderer, "recommendations", pageData)
}

func handleClear(w http.ResponseWriter, r *http.Request) {
	service.Clear(chi.URLParam(r, "id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
