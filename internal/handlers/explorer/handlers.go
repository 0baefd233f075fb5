// Package explorer serves searchable, sortable and paginated transaction lists for an analysis.
package explorer

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"finlens/internal/format"
	apphttp "finlens/internal/http"
	"finlens/internal/models"
	"finlens/internal/services/statements"
	"finlens/internal/templates"
)

const defaultPerPage = 50

var (
	service  *statements.Service
	renderer *templates.Renderer
)

// Initialize sets up the explorer package with required dependencies
func Initialize(s *statements.Service, r *templates.Renderer) {
	service = s
	renderer = r
}

// RegisterRoutes registers the transaction list pages
func RegisterRoutes(r chi.Router) {
	r.Get("/transactions/{id}", handleTransactions)
	r.Get("/category/{id}/{category}", handleCategory)
}

// query holds the list controls read from the URL
type query struct {
	Search  string
	Sort    string
	Order   string
	Page    int
	PerPage int
}

func parseQuery(r *http.Request) query {
	q := query{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Sort:   r.URL.Query().Get("sort"),
		Order:  r.URL.Query().Get("order"),
	}
	if q.Sort == "" {
		q.Sort = "date"
	}
	if q.Order != "asc" {
		q.Order = "desc"
	}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if q.Page < 1 {
		q.Page = 1
	}
	q.PerPage, _ = strconv.Atoi(r.URL.Query().Get("perPage"))
	if q.PerPage < 1 || q.PerPage > 500 {
		q.PerPage = defaultPerPage
	}
	return q
}

// url encodes q with overrides applied, omitting defaults
func (q query) url(path string, sortField, order string, page int) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if sortField != "date" || order != "desc" {
		v.Set("sort", sortField)
		v.Set("order", order)
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if q.PerPage != defaultPerPage {
		v.Set("perPage", strconv.Itoa(q.PerPage))
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// link is a navigation entry rendered by the transactions page
type link struct {
	Label  string
	URL    string
	Active bool
}

func lookup(w http.ResponseWriter, r *http.Request) (*models.SpendingAnalysis, bool) {
	a, ok := service.Get(chi.URLParam(r, "id"))
	if !ok {
		apphttp.ErrorPage(w, renderer, "Analysis not found. It may have expired; upload the statement again.", http.StatusNotFound)
		return nil, false
	}
	return a, true
}

func handleTransactions(w http.ResponseWriter, r *http.Request) {
	a, ok := lookup(w, r)
	if !ok {
		return
	}

	q := parseQuery(r)
	filtered := models.NewTransactionSet(a.Transactions).FilterBySearch(q.Search)

	pageData := listPage(r.URL.Path, q, filtered)
	pageData["Title"] = "Transactions"
	pageData["Analysis"] = a
	pageData["Heading"] = "Transactions"
	pageData["Summary"] = fmt.Sprintf("%d transactions from %s", filtered.Len(), a.SourceName)
	apphttp.RenderTemplate(w, renderer, "transactions", pageData)
}

func handleCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := lookup(w, r)
	if !ok {
		return
	}

	category := chi.URLParam(r, "category")
	q := parseQuery(r)
	filtered := models.NewTransactionSet(a.Transactions).FilterByCategory(category).FilterBySearch(q.Search)
	spent := filtered.Expenses().SumAbsAmount()

	pageData := listPage(r.URL.Path, q, filtered)
	pageData["Title"] = category
	pageData["Analysis"] = a
	pageData["Heading"] = "Category: " + category
	pageData["Summary"] = fmt.Sprintf("%d transactions, %s spent", filtered.Len(), format.FormatCurrency(spent))
	apphttp.RenderTemplate(w, renderer, "transactions", pageData)
}

// listPage sorts and paginates filtered and builds the shared page data
func listPage(path string, q query, filtered *models.TransactionSet) map[string]interface{} {
	sorted := sortTransactions(filtered, q.Sort, q.Order)

	totalPages := sorted.TotalPages(q.PerPage)
	if q.Page > totalPages && totalPages > 0 {
		q.Page = totalPages
	}
	paginated := sorted.Paginate(q.Page, q.PerPage)

	var sortLinks []link
	for _, field := range []string{"date", "amount", "description", "category"} {
		order := "desc"
		if field == q.Sort && q.Order == "desc" {
			order = "asc"
		}
		sortLinks = append(sortLinks, link{
			Label:  strings.ToUpper(field[:1]) + field[1:],
			URL:    q.url(path, field, order, 1),
			Active: field == q.Sort,
		})
	}

	var pageLinks []link
	if totalPages > 1 {
		for _, p := range calculatePageRange(q.Page, totalPages) {
			pageLinks = append(pageLinks, link{
				Label:  strconv.Itoa(p),
				URL:    q.url(path, q.Sort, q.Order, p),
				Active: p == q.Page,
			})
		}
	}

	pageData := apphttp.PageData("")
	pageData["Transactions"] = paginated.Transactions
	pageData["Search"] = q.Search
	pageData["Sort"] = q.Sort
	pageData["Order"] = q.Order
	pageData["Page"] = q.Page
	pageData["TotalPages"] = totalPages
	pageData["SortLinks"] = sortLinks
	pageData["PageLinks"] = pageLinks
	return pageData
}

// sortTransactions returns a copy sorted by field. Unknown fields sort by date.
func sortTransactions(ts *models.TransactionSet, field, order string) *models.TransactionSet {
	sorted := ts.Copy()
	txns := sorted.Transactions

	var less func(i, j int) bool
	switch field {
	case "amount":
		less = func(i, j int) bool { return txns[i].Amount < txns[j].Amount }
	case "description":
		less = func(i, j int) bool {
			return strings.ToLower(txns[i].Description) < strings.ToLower(txns[j].Description)
		}
	case "category":
		less = func(i, j int) bool {
			return strings.ToLower(txns[i].Category) < strings.ToLower(txns[j].Category)
		}
	default:
		less = func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) }
	}

	if order == "asc" {
		sort.SliceStable(txns, less)
	} else {
		sort.SliceStable(txns, func(i, j int) bool { return less(j, i) })
	}
	return sorted
}

// calculatePageRange returns the page numbers to show around currentPage
func calculatePageRange(currentPage, totalPages int) []int {
	if totalPages <= 7 {
		result := make([]int, totalPages)
		for i := range result {
			result[i] = i + 1
		}
		return result
	}

	start := currentPage - 2
	end := currentPage + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > totalPages {
		end = totalPages
		start = max(totalPages-4, 1)
	}

	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
