// Package templates loads and renders the HTML pages.
package templates

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finlens/internal/charts"
	"finlens/internal/format"
	"finlens/internal/logging"
	"finlens/internal/models"
)

// Renderer parses templates from layouts, pages and partials and executes them by name
type Renderer struct {
	fsys      fs.FS
	debug     bool
	logger    *log.Logger
	mu        sync.RWMutex
	templates *template.Template
}

// New loads templates from a directory on disk
func New(templateDir string, debug bool) (*Renderer, error) {
	return NewFS(os.DirFS(templateDir), debug)
}

// NewFS loads templates from fsys. In debug mode they are re-parsed on every render.
func NewFS(fsys fs.FS, debug bool) (*Renderer, error) {
	r := &Renderer{
		fsys:   fsys,
		debug:  debug,
		logger: logging.Component("templates"),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// FuncMap returns the functions available to every template
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatCurrency":   format.FormatCurrency,
		"formatPercentage": format.FormatPercentage,
		"formatNumber":     format.FormatNumber,
		"formatDate":       formatDate,
		"ratioPercent":     func(v float64) float64 { return v * 100 },
		"percentOf":        percentOf,
		"add":              func(a, b int) int { return a + b },
		"title":            func(s string) string { return cases.Title(language.AmericanEnglish).String(strings.ReplaceAll(s, "_", " ")) },
		"lower":            strings.ToLower,
		"isNegative":       func(v float64) bool { return v < 0 },
		"amountClass":      amountClass,
		"json":             jsonMarshal,
		"chartData":        chartData,
	}
}

var sections = []string{"layouts", "pages", "partials"}

// Reload parses all templates again
func (r *Renderer) Reload() error {
	tmpl := template.New("").Funcs(FuncMap())

	var files []string
	for _, dir := range sections {
		matches, err := fs.Glob(r.fsys, path.Join(dir, "*.html"))
		if err != nil {
			return fmt.Errorf("glob %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files found")
	}

	sources := make(map[string]string, len(files))
	var parseErrors []string
	for _, file := range files {
		content, err := fs.ReadFile(r.fsys, file)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("  %s: failed to read: %v", file, err))
			continue
		}
		sources[file] = string(content)
		if _, err := tmpl.New(path.Base(file)).Parse(string(content)); err != nil {
			parseErrors = append(parseErrors, formatTemplateError(file, string(content), err))
		}
	}
	if len(parseErrors) > 0 {
		for _, e := range parseErrors {
			r.logger.Error("template parse error", "detail", e)
		}
		return fmt.Errorf("template parsing failed with %d error(s)", len(parseErrors))
	}

	if err := r.validateReferences(tmpl, files, sources); err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	r.logger.Debug("templates loaded", "files", len(files))
	return nil
}

var lineNumberRe = regexp.MustCompile(`:(\d+):`)

// formatTemplateError adds the offending lines to a parse error
func formatTemplateError(file, content string, err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n  File: %s\n", file)

	errStr := err.Error()
	lineNum := 0
	if m := lineNumberRe.FindStringSubmatch(errStr); len(m) == 2 {
		fmt.Sscanf(m[1], "%d", &lineNum)
	}
	if lineNum == 0 {
		fmt.Fprintf(&sb, "  Error: %s\n", errStr)
		return sb.String()
	}

	fmt.Fprintf(&sb, "  Line: %d\n  Error: %s\n  Context:\n", lineNum, errStr)
	lines := strings.Split(content, "\n")
	start := max(lineNum-3, 0)
	end := min(lineNum+2, len(lines))
	for i := start; i < end; i++ {
		marker := "   "
		if i+1 == lineNum {
			marker = ">>>"
		}
		fmt.Fprintf(&sb, "    %s %4d | %s\n", marker, i+1, lines[i])
	}
	return sb.String()
}

var templateCallRe = regexp.MustCompile(`\{\{-?\s*template\s+"([^"]+)"`)

// validateReferences fails when a {{template "name"}} call names nothing defined
func (r *Renderer) validateReferences(tmpl *template.Template, files []string, sources map[string]string) error {
	defined := make(map[string]bool)
	for _, t := range tmpl.Templates() {
		defined[t.Name()] = true
	}

	var refErrors []string
	for _, file := range files {
		scanner := bufio.NewScanner(strings.NewReader(sources[file]))
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			for _, m := range templateCallRe.FindAllStringSubmatch(scanner.Text(), -1) {
				if !defined[m[1]] {
					refErrors = append(refErrors, fmt.Sprintf("%s:%d: undefined template %q", file, lineNum, m[1]))
				}
			}
		}
	}

	if len(refErrors) > 0 {
		for _, e := range refErrors {
			r.logger.Error("undefined template reference", "ref", e)
		}
		return fmt.Errorf("found %d undefined template reference(s)", len(refErrors))
	}
	return nil
}

func (r *Renderer) current() *template.Template {
	if r.debug {
		if err := r.Reload(); err != nil {
			r.logger.Error("error reloading templates", "err", err)
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates
}

// Render executes a page template into w. Output is buffered so a failing
// template produces a clean 500 instead of half a page.
func (r *Renderer) Render(w http.ResponseWriter, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.current().ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("error rendering template", "name", name, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// RenderPartial renders a fragment; it behaves like Render
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data interface{}) error {
	return r.Render(w, name, data)
}

// ExecuteTemplate executes a template to a writer
func (r *Renderer) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	return r.current().ExecuteTemplate(w, name, data)
}

// Has reports whether a template with name is defined
func (r *Renderer) Has(name string) bool {
	return r.current().Lookup(name) != nil
}

// Template functions

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func amountClass(v float64) string {
	switch {
	case v > 0:
		return "amount-positive"
	case v < 0:
		return "amount-negative"
	}
	return "amount-zero"
}

// jsonMarshal embeds a value in a script element
func jsonMarshal(v interface{}) (template.JS, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(data), nil
}

// chartData embeds the chart payload of an analysis for the page script
func chartData(a *models.SpendingAnalysis) (template.JS, error) {
	data, err := charts.EncodePayload(charts.PayloadFromAnalysis(a))
	if err != nil {
		return "", err
	}
	return template.JS(data), nil
}
