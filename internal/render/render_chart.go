package render

import (
	"fmt"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/route"
)

var chartPalette = []string{"1F3864", "BF8F00", "548235", "833C0C", "7030A0", "203864"}

// chartTypeFromString maps a synthesis-supplied chart type string onto the
// package's closed ChartType enum, defaulting to a clustered bar chart.
func chartTypeFromString(s string) gopresentation.ChartType {
	switch s {
	case "line", "timeSeries":
		return gopresentation.ChartTypeLine
	case "pie", "composition":
		return gopresentation.ChartTypePie
	case "stackedBar", "stacked":
		return gopresentation.ChartTypeBarStacked
	default:
		return gopresentation.ChartTypeBar
	}
}

// buildChart populates a ChartShape from one chart-data object, expected
// to carry "categories" ([]string) and "series" ([]{name, values}).
func buildChart(chart *gopresentation.ChartShape, data map[string]any) {
	plot := chart.PlotArea()
	plot.SetChartType(chartTypeFromString(stringField(data, "chartType", "type")))

	cats := make([]string, 0)
	for _, c := range dataSlice(data["categories"]) {
		cats = append(cats, asString(c))
	}
	plot.SetCategories(cats)

	for i, s := range dataSlice(data["series"]) {
		sm := dataMap(s)
		if sm == nil {
			continue
		}
		values := make([]float64, 0)
		for _, v := range dataSlice(sm["values"]) {
			values = append(values, toFloat(v))
		}
		color := gopresentation.NewColor(chartPalette[i%len(chartPalette)])
		plot.AddSeries(gopresentation.ChartSeries{
			Name:   stringField(sm, "name", "label"),
			Values: values,
			Color:  &color,
		})
	}

	if title := stringField(data, "title"); title != "" {
		chart.SetTitle(title)
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return 0
	}
}

// renderMarketChart renders tpes/finalDemand/electricity/gasLng/pricing/
// escoMarket: a narrative/insight panel across the left ~60% of the slide
// and one chart (or two, for the dual-chart variant) across the right
// ~40%, per the primary chart rectangle(s) the router resolved (spec.md
// §4.8).
func renderMarketChart(slide *gopresentation.Slide, block classify.Block, res route.Resolution) error {
	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeRect(title, res.Layout.Title)
	title.AddParagraph().AddRun(titleText(block), titleFonts)

	data := dataMap(block.Data)
	if data == nil {
		return fmt.Errorf("market chart %q: no chart data", block.Key)
	}

	narrative := slide.AddTextBox()
	placeRect(narrative, res.Layout.Content)
	for _, insight := range dataSlice(data["insights"]) {
		p := narrative.AddParagraph()
		p.Bullet = gopresentation.NewBullet().SetCharBullet(gopresentation.GlyphDot)
		p.AddRun(asString(insight), bodyFont)
	}
	if summary := stringField(data, "summary", "narrative"); summary != "" {
		p := narrative.AddParagraph()
		p.AddRun(summary, bodyFont)
	}

	if !res.Layout.HasChart() {
		return fmt.Errorf("market chart %q: routed layout %d has no chart rectangle", block.Key, res.Slide)
	}

	primary := slide.CreateChartShape()
	placeRect(primary, &res.Layout.Charts[0])
	buildChart(primary, data)

	if secondary := dataMap(data["secondary"]); secondary != nil && len(res.Layout.Charts) > 1 {
		dual := slide.CreateChartShape()
		placeRect(dual, &res.Layout.Charts[1])
		buildChart(dual, secondary)
	}

	return nil
}
