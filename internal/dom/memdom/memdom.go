// Package memdom is an in-memory document used to drive page wiring without a browser.
package memdom

import (
	"sort"
	"strings"

	"finlens/internal/charts"
	"finlens/internal/dom"
)

// Document is a flat list of elements in document order.
type Document struct {
	elements []*Element
	byID     map[string]*Element
	Alerts   []string
}

// New returns an empty document.
func New() *Document {
	return &Document{byID: make(map[string]*Element)}
}

// Append adds el after the last element, making it that element's next sibling.
func (d *Document) Append(el *Element) *Element {
	if n := len(d.elements); n > 0 {
		d.elements[n-1].next = el
	}
	d.elements = append(d.elements, el)
	if el.id != "" {
		if _, exists := d.byID[el.id]; !exists {
			d.byID[el.id] = el
		}
	}
	return el
}

// GetElementByID implements dom.Document.
func (d *Document) GetElementByID(id string) dom.Element {
	if el, ok := d.byID[id]; ok {
		return el
	}
	return nil
}

// GetElementsByClassName implements dom.Document.
func (d *Document) GetElementsByClassName(name string) []dom.Element {
	var result []dom.Element
	for _, el := range d.elements {
		if el.HasClass(name) {
			result = append(result, el)
		}
	}
	return result
}

// Alert records the message.
func (d *Document) Alert(message string) {
	d.Alerts = append(d.Alerts, message)
}

// Element is an in-memory element.
type Element struct {
	id           string
	text         string
	classes      map[string]bool
	style        map[string]string
	scrollHeight int
	files        []dom.File
	listeners    map[string][]func(dom.Event)
	next         *Element
}

// NewElement creates an element with an id (may be empty) and classes.
func NewElement(id string, classes ...string) *Element {
	el := &Element{
		id:        id,
		classes:   make(map[string]bool),
		style:     make(map[string]string),
		listeners: make(map[string][]func(dom.Event)),
	}
	for _, c := range classes {
		el.classes[c] = true
	}
	return el
}

// WithText sets the text content and returns the element.
func (e *Element) WithText(text string) *Element {
	e.text = text
	return e
}

// WithScrollHeight sets the natural content height and returns the element.
func (e *Element) WithScrollHeight(h int) *Element {
	e.scrollHeight = h
	return e
}

// SetFiles replaces the selected files of a file input.
func (e *Element) SetFiles(files ...dom.File) {
	e.files = files
}

// HasClass reports whether the element carries class name.
func (e *Element) HasClass(name string) bool {
	return e.classes[name]
}

// ClassName returns the classes space separated in sorted order.
func (e *Element) ClassName() string {
	names := make([]string, 0, len(e.classes))
	for c := range e.classes {
		names = append(names, c)
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// ListenerCount returns the number of handlers registered for event.
func (e *Element) ListenerCount(event string) int {
	return len(e.listeners[event])
}

// Dispatch runs the handlers for event and returns the event they saw.
func (e *Element) Dispatch(event string) *Event {
	ev := &Event{Type: event}
	for _, h := range e.listeners[event] {
		h(ev)
	}
	return ev
}

// ID implements dom.Element.
func (e *Element) ID() string { return e.id }

// TextContent implements dom.Element.
func (e *Element) TextContent() string { return e.text }

// SetTextContent implements dom.Element.
func (e *Element) SetTextContent(text string) { e.text = text }

// ToggleClass implements dom.Element.
func (e *Element) ToggleClass(name string) bool {
	if e.classes[name] {
		delete(e.classes, name)
		return false
	}
	e.classes[name] = true
	return true
}

// Style implements dom.Element.
func (e *Element) Style(property string) string { return e.style[property] }

// SetStyle implements dom.Element.
func (e *Element) SetStyle(property, value string) {
	if value == "" {
		delete(e.style, property)
		return
	}
	e.style[property] = value
}

// ScrollHeight implements dom.Element.
func (e *Element) ScrollHeight() int { return e.scrollHeight }

// NextElementSibling implements dom.Element.
func (e *Element) NextElementSibling() dom.Element {
	if e.next == nil {
		return nil
	}
	return e.next
}

// Files implements dom.Element.
func (e *Element) Files() []dom.File { return e.files }

// AddEventListener implements dom.Element.
func (e *Element) AddEventListener(event string, handler func(dom.Event)) {
	e.listeners[event] = append(e.listeners[event], handler)
}

// Event records whether a handler cancelled it.
type Event struct {
	Type      string
	Prevented bool
}

// PreventDefault implements dom.Event.
func (e *Event) PreventDefault() { e.Prevented = true }

// RenderCall is one chart handed to a Recorder.
type RenderCall struct {
	CanvasID string
	Config   charts.Config
}

// Recorder is a ChartRenderer that keeps every call.
type Recorder struct {
	Calls []RenderCall
	Err   error
}

// RenderChart implements dom.ChartRenderer.
func (r *Recorder) RenderChart(canvas dom.Element, cfg charts.Config) error {
	r.Calls = append(r.Calls, RenderCall{CanvasID: canvas.ID(), Config: cfg})
	return r.Err
}
