package dom

import (
	"fmt"

	"github.com/charmbracelet/log"

	"finlens/internal/charts"
)

// Page is an initialized dashboard page.
type Page struct {
	doc      Document
	renderer ChartRenderer
	logger   *log.Logger
	rendered int
}

// Option configures Init.
type Option func(*Page)

// WithLogger sets the logger used for reporting chart problems.
func WithLogger(logger *log.Logger) Option {
	return func(p *Page) {
		p.logger = logger
	}
}

// Init renders the charts and attaches event handlers. The hosting page calls
// it once after the document has loaded. Missing elements are skipped silently
// and no error escapes.
func Init(doc Document, renderer ChartRenderer, opts ...Option) *Page {
	p := &Page{
		doc:      doc,
		renderer: renderer,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.initCharts()
	p.setupEventListeners()
	return p
}

// ChartsRendered returns how many charts were handed to the renderer.
func (p *Page) ChartsRendered() int {
	return p.rendered
}

// initCharts renders both charts from the embedded payload when the page has them.
func (p *Page) initCharts() {
	categoryCanvas := p.doc.GetElementByID(CategoryChartID)
	if categoryCanvas == nil {
		return
	}
	dataElement := p.doc.GetElementByID(ChartDataID)
	if dataElement == nil {
		return
	}

	payload, err := charts.DecodePayload([]byte(dataElement.TextContent()))
	if err != nil {
		p.logger.Error("error parsing chart data", "err", err)
		return
	}

	p.render(categoryCanvas, charts.CategoryPieConfig(charts.ProjectCategoryTotals(payload.SpendingByCategory)))

	if monthlyCanvas := p.doc.GetElementByID(MonthlyChartID); monthlyCanvas != nil {
		p.render(monthlyCanvas, charts.MonthlyBarConfig(charts.ProjectMonthlySeries(payload.MonthlySpending)))
	}
}

func (p *Page) render(canvas Element, cfg charts.Config) {
	p.rendered++
	if err := p.renderer.RenderChart(canvas, cfg); err != nil {
		p.logger.Error("error rendering chart", "canvas", canvas.ID(), "type", cfg.Type, "err", err)
	}
}

func (p *Page) setupEventListeners() {
	// Show the picked file name next to the upload button
	if fileInput := p.doc.GetElementByID(FileInputID); fileInput != nil {
		fileInput.AddEventListener("change", func(Event) {
			display := p.doc.GetElementByID(SelectedFileID)
			if display == nil {
				return
			}
			if files := fileInput.Files(); len(files) > 0 {
				display.SetTextContent(files[0].Name)
			} else {
				display.SetTextContent(NoFileSelected)
			}
		})
	}

	for _, header := range p.doc.GetElementsByClassName(CollapsibleClass) {
		header.AddEventListener("click", func(Event) {
			toggleCollapsible(header)
		})
	}

	if uploadForm := p.doc.GetElementByID(UploadFormID); uploadForm != nil {
		uploadForm.AddEventListener("submit", func(e Event) {
			fileInput := p.doc.GetElementByID(FileInputID)
			if fileInput != nil && len(fileInput.Files()) == 0 {
				e.PreventDefault()
				p.doc.Alert(SelectFileMessage)
			}
		})
	}
}

// toggleCollapsible flips the header's active state and opens or closes the
// section that follows it.
func toggleCollapsible(header Element) {
	header.ToggleClass(ActiveClass)

	content := header.NextElementSibling()
	if content == nil {
		return
	}
	if content.Style("max-height") != "" {
		content.SetStyle("max-height", "")
	} else {
		content.SetStyle("max-height", fmt.Sprintf("%dpx", content.ScrollHeight()))
	}
}

// ToggleView hides every view container and shows the one with the given id.
func (p *Page) ToggleView(id string) {
	for _, view := range p.doc.GetElementsByClassName(ViewContainerClass) {
		view.SetStyle("display", "none")
	}
	if target := p.doc.GetElementByID(id); target != nil {
		target.SetStyle("display", "block")
	}
}
