package dom_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/dom"
	"finlens/internal/dom/memdom"
)

const validPayload = `{
	"spending_by_category": {"Food": 50, "Rent": 50},
	"monthly_spending": {"Jan": {"Food": 10}, "Feb": {"Rent": 20}}
}`

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf), &buf
}

func dashboardDoc(payload string) *memdom.Document {
	doc := memdom.New()
	doc.Append(memdom.NewElement(dom.CategoryChartID))
	doc.Append(memdom.NewElement(dom.MonthlyChartID))
	doc.Append(memdom.NewElement(dom.ChartDataID).WithText(payload))
	return doc
}

func TestInitRendersBothCharts(t *testing.T) {
	doc := dashboardDoc(validPayload)
	rec := &memdom.Recorder{}
	logger, _ := quietLogger()

	page := dom.Init(doc, rec, dom.WithLogger(logger))

	require.Len(t, rec.Calls, 2)
	assert.Equal(t, 2, page.ChartsRendered())

	pie := rec.Calls[0]
	assert.Equal(t, dom.CategoryChartID, pie.CanvasID)
	assert.Equal(t, "pie", pie.Config.Type)
	assert.Equal(t, []string{"Food", "Rent"}, pie.Config.Data.Labels)

	bar := rec.Calls[1]
	assert.Equal(t, dom.MonthlyChartID, bar.CanvasID)
	assert.Equal(t, "bar", bar.Config.Type)
	assert.Equal(t, []string{"Jan", "Feb"}, bar.Config.Data.Labels)
	require.Len(t, bar.Config.Data.Datasets, 2)
	assert.Equal(t, []float64{10, 0}, bar.Config.Data.Datasets[0].Data)
	assert.Equal(t, []float64{0, 20}, bar.Config.Data.Datasets[1].Data)
}

func TestInitSkipsMonthlyChartWithoutCanvas(t *testing.T) {
	doc := memdom.New()
	doc.Append(memdom.NewElement(dom.CategoryChartID))
	doc.Append(memdom.NewElement(dom.ChartDataID).WithText(validPayload))
	rec := &memdom.Recorder{}

	dom.Init(doc, rec)

	require.Len(t, rec.Calls, 1)
	assert.Equal(t, dom.CategoryChartID, rec.Calls[0].CanvasID)
}

func TestInitWithoutCategoryCanvasRendersNothing(t *testing.T) {
	doc := memdom.New()
	doc.Append(memdom.NewElement(dom.MonthlyChartID))
	doc.Append(memdom.NewElement(dom.ChartDataID).WithText(validPayload))
	rec := &memdom.Recorder{}

	dom.Init(doc, rec)
	assert.Empty(t, rec.Calls)
}

func TestInitWithoutChartDataRendersNothing(t *testing.T) {
	doc := memdom.New()
	doc.Append(memdom.NewElement(dom.CategoryChartID))
	rec := &memdom.Recorder{}

	dom.Init(doc, rec)
	assert.Empty(t, rec.Calls)
}

func TestInitMalformedPayloadLogsAndSkips(t *testing.T) {
	for _, payload := range []string{
		`{"spending_by_category": {"Food": 5`,
		`{"spending_by_category": {"Food": "5"}, "monthly_spending": {}}`,
		`not json`,
	} {
		doc := dashboardDoc(payload)
		rec := &memdom.Recorder{}
		logger, buf := quietLogger()

		page := dom.Init(doc, rec, dom.WithLogger(logger))

		assert.Empty(t, rec.Calls, payload)
		assert.Equal(t, 0, page.ChartsRendered())
		assert.Contains(t, buf.String(), "error parsing chart data")
	}
}

func TestInitRendererErrorIsLogged(t *testing.T) {
	doc := dashboardDoc(validPayload)
	rec := &memdom.Recorder{Err: errors.New("no canvas context")}
	logger, buf := quietLogger()

	page := dom.Init(doc, rec, dom.WithLogger(logger))

	assert.Len(t, rec.Calls, 2)
	assert.Equal(t, 2, page.ChartsRendered())
	assert.Contains(t, buf.String(), "no canvas context")
}

func TestFileInputShowsSelectedName(t *testing.T) {
	doc := memdom.New()
	input := doc.Append(memdom.NewElement(dom.FileInputID))
	display := doc.Append(memdom.NewElement(dom.SelectedFileID))

	dom.Init(doc, &memdom.Recorder{})

	input.SetFiles(dom.File{Name: "march.csv"}, dom.File{Name: "april.csv"})
	input.Dispatch("change")
	assert.Equal(t, "march.csv", display.TextContent())

	input.SetFiles()
	input.Dispatch("change")
	assert.Equal(t, dom.NoFileSelected, display.TextContent())
}

func TestFileInputWithoutDisplayIsNoop(t *testing.T) {
	doc := memdom.New()
	input := doc.Append(memdom.NewElement(dom.FileInputID))

	dom.Init(doc, &memdom.Recorder{})

	input.SetFiles(dom.File{Name: "x.csv"})
	assert.NotPanics(t, func() { input.Dispatch("change") })
}

func TestCollapsibleHeaderToggles(t *testing.T) {
	doc := memdom.New()
	header := doc.Append(memdom.NewElement("", dom.CollapsibleClass))
	content := doc.Append(memdom.NewElement("details").WithScrollHeight(240))

	dom.Init(doc, &memdom.Recorder{})

	header.Dispatch("click")
	assert.True(t, header.HasClass(dom.ActiveClass))
	assert.Equal(t, "240px", content.Style("max-height"))

	header.Dispatch("click")
	assert.False(t, header.HasClass(dom.ActiveClass))
	assert.Equal(t, "", content.Style("max-height"))
}

func TestCollapsibleHeaderWithoutContent(t *testing.T) {
	doc := memdom.New()
	header := doc.Append(memdom.NewElement("", dom.CollapsibleClass))

	dom.Init(doc, &memdom.Recorder{})

	assert.NotPanics(t, func() { header.Dispatch("click") })
	assert.True(t, header.HasClass(dom.ActiveClass))
}

func TestEveryCollapsibleHeaderIsWired(t *testing.T) {
	doc := memdom.New()
	first := doc.Append(memdom.NewElement("", dom.CollapsibleClass))
	doc.Append(memdom.NewElement("a"))
	second := doc.Append(memdom.NewElement("", dom.CollapsibleClass, "section"))
	doc.Append(memdom.NewElement("b"))

	dom.Init(doc, &memdom.Recorder{})

	assert.Equal(t, 1, first.ListenerCount("click"))
	assert.Equal(t, 1, second.ListenerCount("click"))
}

func TestUploadFormBlocksEmptySubmission(t *testing.T) {
	doc := memdom.New()
	form := doc.Append(memdom.NewElement(dom.UploadFormID))
	input := doc.Append(memdom.NewElement(dom.FileInputID))

	dom.Init(doc, &memdom.Recorder{})

	ev := form.Dispatch("submit")
	assert.True(t, ev.Prevented)
	assert.Equal(t, []string{dom.SelectFileMessage}, doc.Alerts)

	input.SetFiles(dom.File{Name: "statement.csv", Size: 120})
	ev = form.Dispatch("submit")
	assert.False(t, ev.Prevented)
	assert.Len(t, doc.Alerts, 1)
}

func TestUploadFormWithoutFileInputSubmits(t *testing.T) {
	doc := memdom.New()
	form := doc.Append(memdom.NewElement(dom.UploadFormID))

	dom.Init(doc, &memdom.Recorder{})

	ev := form.Dispatch("submit")
	assert.False(t, ev.Prevented)
	assert.Empty(t, doc.Alerts)
}

func TestToggleView(t *testing.T) {
	doc := memdom.New()
	summary := doc.Append(memdom.NewElement("summary-view", dom.ViewContainerClass))
	detail := doc.Append(memdom.NewElement("detail-view", dom.ViewContainerClass))
	other := doc.Append(memdom.NewElement("sidebar"))

	page := dom.Init(doc, &memdom.Recorder{})

	page.ToggleView("detail-view")
	assert.Equal(t, "none", summary.Style("display"))
	assert.Equal(t, "block", detail.Style("display"))
	assert.Equal(t, "", other.Style("display"))

	page.ToggleView("summary-view")
	assert.Equal(t, "block", summary.Style("display"))
	assert.Equal(t, "none", detail.Style("display"))

	page.ToggleView("missing")
	assert.Equal(t, "none", summary.Style("display"))
	assert.Equal(t, "none", detail.Style("display"))
}

func TestInitOnEmptyDocument(t *testing.T) {
	rec := &memdom.Recorder{}
	assert.NotPanics(t, func() { dom.Init(memdom.New(), rec) })
	assert.Empty(t, rec.Calls)
}
