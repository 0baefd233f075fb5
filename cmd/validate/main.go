// Package main smoke-tests a running finlens server.
//
// It checks the static pages, analyzes the built-in sample statement via
// /sample, then walks every page and API route for the resulting analysis.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	path        string
	status      int
	contentType string
	contains    []string
}

// {id} is replaced with the analysis created from the sample statement
var endpoints = []endpoint{
	// Pages
	{path: "/", contentType: "text/html", contains: []string{`id="uploadForm"`, `id="fileInput"`}},
	{path: "/analyze/{id}", contentType: "text/html", contains: []string{`id="chart-data"`, `id="spending-by-category-chart"`, "collapsible-header"}},
	{path: "/transactions/{id}", contentType: "text/html", contains: []string{"transactions from"}},
	{path: "/category/{id}/housing", contentType: "text/html", contains: []string{"Category: housing"}},
	{path: "/recommendations/{id}", contentType: "text/html", contains: []string{"Savings recommendations"}},
	{path: "/analyze/does-not-exist", status: http.StatusNotFound, contentType: "text/html"},

	// API
	{path: "/api/health", contentType: "application/json", contains: []string{`"status":"ok"`}},
	{path: "/api/statements", contentType: "application/json"},
	{path: "/api/chart-data/{id}", contentType: "application/json", contains: []string{"spending_by_category", "monthly_spending"}},
	{path: "/api/charts/{id}/category", contentType: "application/json", contains: []string{`"type":"pie"`}},
	{path: "/api/charts/{id}/monthly", contentType: "application/json", contains: []string{`"type":"bar"`}},
	{path: "/api/charts/{id}/radar", status: http.StatusBadRequest, contentType: "application/json"},
	{path: "/api/transactions/{id}", contentType: "application/json", contains: []string{`"transactions"`}},
	{path: "/api/recommendations/{id}", contentType: "application/json", contains: []string{`"total_potential_savings"`}},
	{path: "/api/chart-data/does-not-exist", status: http.StatusNotFound, contentType: "application/json", contains: []string{"No analysis data available"}},

	// Assets
	{path: "/static/js/loader.js", contentType: "javascript"},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	fmt.Printf("Validating server at %s\n", *url)

	id, err := analyzeSample(client, *url)
	if err != nil {
		fmt.Printf("FAIL GET /sample\n     Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sample analysis %s\n", id)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed int
	for _, ep := range endpoints {
		ep.path = strings.ReplaceAll(ep.path, "{id}", id)
		r := validateEndpoint(client, *url, ep)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL GET %s\n", ep.path)
			fmt.Printf("     Error: %v\n", r.err)
			continue
		}
		passed++
		if *verbose {
			fmt.Printf("PASS GET %s %d (%v)\n", ep.path, r.status, r.duration)
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// analyzeSample asks the server to analyze its sample statement and returns the analysis id
func analyzeSample(client *http.Client, baseURL string) (string, error) {
	resp, err := client.Get(baseURL + "/sample")
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		return "", fmt.Errorf("status %d (expected %d)", resp.StatusCode, http.StatusSeeOther)
	}
	location := resp.Header.Get("Location")
	id, ok := strings.CutPrefix(location, "/analyze/")
	if !ok || id == "" {
		return "", fmt.Errorf("unexpected redirect %q", location)
	}
	return id, nil
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint) result {
	start := time.Now()

	want := ep.status
	if want == 0 {
		want = http.StatusOK
	}

	resp, err := client.Get(baseURL + ep.path)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: time.Since(start),
	}

	if resp.StatusCode != want {
		r.err = fmt.Errorf("status %d (expected %d)", resp.StatusCode, want)
		return r
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	if ep.contentType == "application/json" {
		var js interface{}
		if err := json.Unmarshal(body, &js); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
	}

	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
