// Package dom wires dashboard behavior onto a page: it renders the spending
// charts from the embedded payload and attaches the upload, collapsible
// section and view-switching handlers.
//
// The page is reached through the Document and Element interfaces so the same
// wiring runs in the browser (see package jsdom) and in tests (see package memdom).
package dom

import "finlens/internal/charts"

// Element ids and class names the page is expected to use.
const (
	CategoryChartID    = "spending-by-category-chart"
	MonthlyChartID     = "monthly-spending-chart"
	ChartDataID        = "chart-data"
	FileInputID        = "fileInput"
	SelectedFileID     = "selectedFileName"
	UploadFormID       = "uploadForm"
	CollapsibleClass   = "collapsible-header"
	ViewContainerClass = "view-container"
	ActiveClass        = "active"
)

// Messages shown to the user.
const (
	NoFileSelected    = "No file selected"
	SelectFileMessage = "Please select a file to upload."
)

// File is a file picked in a file input.
type File struct {
	Name string
	Size int64
}

// Event is a dispatched DOM event.
type Event interface {
	PreventDefault()
}

// Element is the subset of a DOM element the page wiring uses.
// Methods returning an Element return a nil interface when there is none.
type Element interface {
	ID() string
	TextContent() string
	SetTextContent(text string)
	ToggleClass(name string) bool
	Style(property string) string
	// SetStyle sets a CSS property; an empty value removes it.
	SetStyle(property, value string)
	ScrollHeight() int
	NextElementSibling() Element
	Files() []File
	AddEventListener(event string, handler func(Event))
}

// Document looks elements up and talks to the user.
// GetElementByID returns a nil interface when the id is absent.
type Document interface {
	GetElementByID(id string) Element
	GetElementsByClassName(name string) []Element
	Alert(message string)
}

// ChartRenderer draws a chart specification onto a canvas element.
type ChartRenderer interface {
	RenderChart(canvas Element, cfg charts.Config) error
}
