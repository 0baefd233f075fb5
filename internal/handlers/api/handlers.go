package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"finlens/internal/analysis"
	"finlens/internal/charts"
	apphttp "finlens/internal/http"
	"finlens/internal/models"
	"finlens/internal/services/statements"
	"finlens/internal/version"
)

var (
	service *statements.Service
	started = time.Now()
)

// Initialize sets up the api package with required dependencies
func Initialize(s *statements.Service) {
	service = s
}

// RegisterRoutes registers the JSON API under /api
func RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth)
		r.Get("/statements", handleStatements)
		r.Get("/chart-data/{id}", handleChartData)
		r.Get("/charts/{id}/{kind}", handleChart)
		r.Get("/transactions/{id}", handleTransactions)
		r.Get("/recommendations/{id}", handleRecommendations)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Get().Short(),
		"uptime":  time.Since(started).Round(time.Second).String(),
	})
}

func handleStatements(w http.ResponseWriter, r *http.Request) {
	files, err := service.Statements()
	if err != nil {
		apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []models.StatementFile{}
	}
	apphttp.JSON(w, http.StatusOK, files)
}

func analysisFor(w http.ResponseWriter, r *http.Request) (*models.SpendingAnalysis, bool) {
	a, ok := service.Get(chi.URLParam(r, "id"))
	if !ok {
		apphttp.JSONError(w, http.StatusNotFound, "No analysis data available")
		return nil, false
	}
	return a, true
}

// handleChartData serves the same payload the dashboard embeds
func handleChartData(w http.ResponseWriter, r *http.Request) {
	a, ok := analysisFor(w, r)
	if !ok {
		return
	}
	body, err := charts.EncodePayload(charts.PayloadFromAnalysis(a))
	if err != nil {
		apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// handleChart serves a projected Chart.js config
func handleChart(w http.ResponseWriter, r *http.Request) {
	a, ok := analysisFor(w, r)
	if !ok {
		return
	}
	cfg, err := charts.Build(chi.URLParam(r, "kind"), charts.PayloadFromAnalysis(a))
	if errors.Is(err, charts.ErrUnknownKind) {
		apphttp.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		apphttp.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	apphttp.JSON(w, http.StatusOK, cfg)
}

func handleTransactions(w http.ResponseWriter, r *http.Request) {
	a, ok := analysisFor(w, r)
	if !ok {
		return
	}
	txns := a.Transactions
	if category := r.URL.Query().Get("category"); category != "" {
		txns = models.NewTransactionSet(txns).FilterByCategory(category).Transactions
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	apphttp.JSON(w, http.StatusOK, map[string]interface{}{
		"id":           a.ID,
		"source":       a.SourceName,
		"count":        len(txns),
		"transactions": txns,
	})
}

func handleRecommendations(w http.ResponseWriter, r *http.Request) {
	a, ok := analysisFor(w, r)
	if !ok {
		return
	}
	apphttp.JSON(w, http.StatusOK, analysis.RecommendSavings(a))
}
