//go:build js && wasm

// Package jsdom adapts the browser DOM and Chart.js to the dom interfaces.
package jsdom

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"syscall/js"

	"finlens/internal/charts"
	"finlens/internal/dom"
)

// Document wraps the browser document object.
type Document struct {
	v js.Value
}

// Global returns the page's document.
func Global() *Document {
	return &Document{v: js.Global().Get("document")}
}

// GetElementByID implements dom.Document.
func (d *Document) GetElementByID(id string) dom.Element {
	return wrap(d.v.Call("getElementById", id))
}

// GetElementsByClassName implements dom.Document.
func (d *Document) GetElementsByClassName(name string) []dom.Element {
	list := d.v.Call("getElementsByClassName", name)
	n := list.Get("length").Int()
	elements := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		if el := wrap(list.Index(i)); el != nil {
			elements = append(elements, el)
		}
	}
	return elements
}

// Alert shows a blocking browser alert.
func (d *Document) Alert(message string) {
	js.Global().Call("alert", message)
}

// Element wraps a browser element.
type Element struct {
	v     js.Value
	funcs []js.Func
}

// wrap returns nil for null and undefined so callers can test absence.
func wrap(v js.Value) dom.Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &Element{v: v}
}

// Value returns the underlying JS object.
func (e *Element) Value() js.Value { return e.v }

func (e *Element) ID() string { return e.v.Get("id").String() }

func (e *Element) TextContent() string {
	text := e.v.Get("textContent")
	if text.IsNull() || text.IsUndefined() {
		return ""
	}
	return text.String()
}

func (e *Element) SetTextContent(text string) { e.v.Set("textContent", text) }

func (e *Element) ToggleClass(name string) bool {
	return e.v.Get("classList").Call("toggle", name).Bool()
}

func (e *Element) Style(property string) string {
	return e.v.Get("style").Call("getPropertyValue", property).String()
}

func (e *Element) SetStyle(property, value string) {
	style := e.v.Get("style")
	if value == "" {
		style.Call("removeProperty", property)
		return
	}
	style.Call("setProperty", property, value)
}

func (e *Element) ScrollHeight() int { return e.v.Get("scrollHeight").Int() }

func (e *Element) NextElementSibling() dom.Element {
	return wrap(e.v.Get("nextElementSibling"))
}

func (e *Element) Files() []dom.File {
	list := e.v.Get("files")
	if list.IsNull() || list.IsUndefined() {
		return nil
	}
	n := list.Get("length").Int()
	files := make([]dom.File, 0, n)
	for i := 0; i < n; i++ {
		f := list.Index(i)
		files = append(files, dom.File{
			Name: f.Get("name").String(),
			Size: int64(f.Get("size").Float()),
		})
	}
	return files
}

// AddEventListener registers handler. The callback lives as long as the page.
func (e *Element) AddEventListener(event string, handler func(dom.Event)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var ev Event
		if len(args) > 0 {
			ev.v = args[0]
		}
		handler(ev)
		return nil
	})
	e.funcs = append(e.funcs, fn)
	e.v.Call("addEventListener", event, fn)
}

// Event wraps a browser event.
type Event struct {
	v js.Value
}

func (e Event) PreventDefault() {
	if e.v.Truthy() {
		e.v.Call("preventDefault")
	}
}

// ChartJS renders chart configs with the global Chart constructor.
type ChartJS struct{}

var errNoChartJS = errors.New("Chart.js is not loaded")

// RenderChart implements dom.ChartRenderer.
func (ChartJS) RenderChart(canvas dom.Element, cfg charts.Config) (err error) {
	el, ok := canvas.(*Element)
	if !ok {
		return fmt.Errorf("canvas %q is not a browser element", canvas.ID())
	}
	chart := js.Global().Get("Chart")
	if chart.IsUndefined() {
		return errNoChartJS
	}

	spec, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode chart config: %w", err)
	}

	// Chart.js failures surface as JS exceptions, which syscall/js raises as panics.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chart.js: %v", r)
		}
	}()

	ctx := el.v.Call("getContext", "2d")
	chart.New(ctx, js.Global().Get("JSON").Call("parse", string(spec)))
	return nil
}

// OnReady runs fn once the document has finished parsing.
func OnReady(fn func()) {
	doc := js.Global().Get("document")
	if !strings.EqualFold(doc.Get("readyState").String(), "loading") {
		fn()
		return
	}
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) interface{} {
		cb.Release()
		fn()
		return nil
	})
	doc.Call("addEventListener", "DOMContentLoaded", cb)
}
