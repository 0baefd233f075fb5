//go:build js && wasm

// Command wasm is the dashboard's browser entry point. It initializes the
// page once the document is ready and exposes the formatting helpers and
// view switching to inline scripts.
package main

import (
	"syscall/js"

	"finlens/internal/dom"
	"finlens/internal/dom/jsdom"
	"finlens/internal/format"
	"finlens/internal/logging"
)

func main() {
	logger := logging.Setup(logging.Options{Level: "info", Format: "text"})

	jsdom.OnReady(func() {
		page := dom.Init(jsdom.Global(), jsdom.ChartJS{}, dom.WithLogger(logger.WithPrefix("dashboard")))

		js.Global().Set("toggleView", js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
			if len(args) > 0 {
				page.ToggleView(args[0].String())
			}
			return nil
		}))
	})

	js.Global().Set("formatCurrency", js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			return format.FormatCurrency(0)
		}
		return format.FormatCurrency(args[0].Float())
	}))
	js.Global().Set("formatPercentage", js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			return format.FormatPercentage(0)
		}
		return format.FormatPercentage(args[0].Float())
	}))

	select {}
}
