package render

import (
	"testing"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/route"
	"github.com/escortdeck/marketdeck/internal/runctx"
	"github.com/escortdeck/marketdeck/internal/templates"
)

func testLayout() *templates.TemplateLayout {
	return &templates.TemplateLayout{
		SlideNumber: 5,
		Title:       &templates.Rect{X: 0.5, Y: 0.3, W: 9, H: 0.8},
		Content:     &templates.Rect{X: 0.5, Y: 1.3, W: 9, H: 5},
		Source:      &templates.Rect{X: 0.5, Y: 6.5, W: 9, H: 0.6},
		Table:       &templates.Rect{X: 0.5, Y: 1.3, W: 9, H: 5},
		Charts:      []templates.Rect{{X: 5.5, Y: 1.3, W: 4, H: 5}},
	}
}

func testResolution() route.Resolution {
	return route.Resolution{Pattern: "default", Slide: 5, Layout: testLayout(), Source: "primary"}
}

func TestKindOfClassifiesKnownKeys(t *testing.T) {
	tests := []struct {
		key  string
		want BlockKind
	}{
		{"foundationalActs", KindRegulationList},
		{"japanesePlayers", KindCompanyComparison},
		{"tpes", KindMarketChart},
		{"caseStudy", KindCaseStudy},
		{"opportunitiesObstacles", KindSummary},
		{"totallyUnknownKey", KindUnknown},
	}
	for _, tc := range tests {
		if got := KindOf(tc.key); got != tc.want {
			t.Errorf("KindOf(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestRenderBlockRegulationListRendersTable(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	rc := runctx.New(nil)

	block := classify.Block{
		Key:   "foundationalActs",
		Title: "Foundational Acts",
		Data: []any{
			map[string]any{"act": "Energy Act", "requirement": "Efficiency targets", "penalty": "Fines up to 10M"},
			map[string]any{"act": "Building Code", "requirement": "Insulation standards"},
		},
	}
	if err := RenderBlock(pres, block, testResolution(), cfg, rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	if pres.SlideCount() != 1 {
		t.Fatalf("expected exactly one slide, got %d", pres.SlideCount())
	}
	slide := pres.GetSlides()[0]
	var sawTable bool
	for _, s := range slide.GetShapes() {
		if table, ok := s.(*gopresentation.TableShape); ok {
			sawTable = true
			if table.NumRows() != 3 {
				t.Errorf("expected header + 2 rows, got %d", table.NumRows())
			}
		}
	}
	if !sawTable {
		t.Error("expected a table shape for a populated regulation list")
	}
	if rc.BlocksRendered != 1 {
		t.Errorf("expected BlocksRendered incremented, got %d", rc.BlocksRendered)
	}
}

func TestRenderBlockCompanyComparisonDedupesAndFlagsUndocumented(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	rc := runctx.New(nil)

	block := classify.Block{
		Key: "japanesePlayers",
		Data: []any{
			map[string]any{"name": "Acme Energy", "strategy": "Retrofits"},
			map[string]any{"name": "acme energy", "notes": "Also active in solar"},
			map[string]any{"name": "Ghost Co"},
		},
	}
	if err := RenderBlock(pres, block, testResolution(), cfg, rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	slide := pres.GetSlides()[0]
	var table *gopresentation.TableShape
	for _, s := range slide.GetShapes() {
		if tb, ok := s.(*gopresentation.TableShape); ok {
			table = tb
		}
	}
	if table == nil {
		t.Fatal("expected a table shape")
	}
	if table.NumRows() != 2 {
		t.Errorf("expected header + 1 merged company row (Ghost Co has no data), got %d", table.NumRows())
	}
}

func TestRenderBlockMarketChartRequiresChartData(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	rc := runctx.New(nil)
	cfg.StrictTemplateFidelity = false

	block := classify.Block{Key: "tpes", Data: nil}
	if err := RenderBlock(pres, block, testResolution(), cfg, rc); err != nil {
		t.Fatalf("RenderBlock (lenient mode should swallow the render error): %v", err)
	}
	if len(rc.SlideRenderFailures) != 1 {
		t.Errorf("expected the missing chart data to be recorded as a render failure, got %d", len(rc.SlideRenderFailures))
	}
}

func TestRenderBlockMarketChartBuildsSeries(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	rc := runctx.New(nil)

	block := classify.Block{
		Key: "tpes",
		Data: map[string]any{
			"insights":   []any{"Demand grew steadily"},
			"categories": []any{"2021", "2022", "2023"},
			"series": []any{
				map[string]any{"name": "Coal", "values": []any{10.0, 9.0, 8.0}},
			},
		},
	}
	if err := RenderBlock(pres, block, testResolution(), cfg, rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	slide := pres.GetSlides()[0]
	var chart *gopresentation.ChartShape
	for _, s := range slide.GetShapes() {
		if c, ok := s.(*gopresentation.ChartShape); ok {
			chart = c
		}
	}
	if chart == nil {
		t.Fatal("expected a chart shape")
	}
	if len(chart.PlotArea().Categories()) != 3 {
		t.Errorf("expected 3 categories, got %d", len(chart.PlotArea().Categories()))
	}
	if len(chart.PlotArea().Series()) != 1 {
		t.Errorf("expected 1 series, got %d", len(chart.PlotArea().Series()))
	}
}

func TestRenderBlockCaseStudyEmitsKeyValuePanel(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	rc := runctx.New(nil)

	block := classify.Block{
		Key: "caseStudy",
		Data: map[string]any{
			"company": "Acme Energy", "situation": "Rising costs",
			"action": "Deployed an ESCO contract", "result": "15% savings",
			"applicability": "Directly transferable to similar utilities",
		},
	}
	if err := RenderBlock(pres, block, testResolution(), cfg, rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	slide := pres.GetSlides()[0]
	var sawPanel, sawCallout bool
	for _, s := range slide.GetShapes() {
		switch s.(type) {
		case *gopresentation.RichTextShape:
			sawPanel = true
		case *gopresentation.AutoShape:
			sawCallout = true
		}
	}
	if !sawPanel {
		t.Error("expected a text panel for the case study fields")
	}
	if !sawCallout {
		t.Error("expected an applicability callout")
	}
}

func TestRenderBlockCaseStudyIncludesYearAndMode(t *testing.T) {
	pres := gopresentation.NewPresentation()
	rc := runctx.New(nil)

	block := classify.Block{
		Key: "caseStudy",
		Data: map[string]any{
			"company": "Acme Energy", "year": "2022", "mode": "ESCO retrofit",
			"situation": "Rising costs", "action": "Deployed an ESCO contract", "result": "15% savings",
		},
	}
	if err := RenderBlock(pres, block, testResolution(), config.Default(), rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	slide := pres.GetSlides()[0]
	var panel *gopresentation.RichTextShape
	for _, s := range slide.GetShapes() {
		if rt, ok := s.(*gopresentation.RichTextShape); ok {
			panel = rt
		}
	}
	if panel == nil {
		t.Fatal("expected a text panel for the case study fields")
	}
	var sawYear, sawMode bool
	for _, p := range panel.GetParagraphs() {
		for _, r := range p.Runs {
			if r.Text == "Year" {
				sawYear = true
			}
			if r.Text == "Mode" {
				sawMode = true
			}
		}
	}
	if !sawYear {
		t.Error("expected a Year label in the case study panel")
	}
	if !sawMode {
		t.Error("expected a Mode label in the case study panel")
	}
}

func TestRenderBlockLessonsLearnedNarrowsContentWidth(t *testing.T) {
	pres := gopresentation.NewPresentation()
	rc := runctx.New(nil)

	block := classify.Block{
		Key: "lessonsLearned",
		Data: map[string]any{
			"lesson": "Plan for permitting delays", "year": "2021",
			"context": "Cross-border rollout", "takeaway": "Budget six extra months",
		},
	}
	res := testResolution()
	fullWidth := res.Layout.Content.W
	if err := RenderBlock(pres, block, res, config.Default(), rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	slide := pres.GetSlides()[0]
	var panel *gopresentation.RichTextShape
	for _, s := range slide.GetShapes() {
		if rt, ok := s.(*gopresentation.RichTextShape); ok {
			panel = rt
		}
	}
	if panel == nil {
		t.Fatal("expected a text panel for the lessons-learned fields")
	}
	if w := panel.GetWidth(); w >= gopresentation.Inch(fullWidth) {
		t.Errorf("expected the lessons-learned panel narrower than the full content width %d EMU, got %d", gopresentation.Inch(fullWidth), w)
	}
}

func TestRenderBlockSummaryOpportunitiesObstaclesSplitsPanels(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	rc := runctx.New(nil)

	block := classify.Block{
		Key: "opportunitiesObstacles",
		Data: map[string]any{
			"opportunities": []any{"Growing ESCO demand"},
			"obstacles":     []any{"Long permitting timelines"},
		},
	}
	if err := RenderBlock(pres, block, testResolution(), cfg, rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	slide := pres.GetSlides()[0]
	var textBoxes int
	for _, s := range slide.GetShapes() {
		if _, ok := s.(*gopresentation.RichTextShape); ok {
			textBoxes++
		}
	}
	if textBoxes != 2 { // title is a PlaceholderShape, not a RichTextShape, so only the two panels count
		t.Errorf("expected 2 panel text boxes, got %d rich text shapes", textBoxes)
	}
}

func TestRenderBlockGoNoGoRendersVerdictGlyphsAndColors(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	rc := runctx.New(nil)

	block := classify.Block{
		Key: "goNoGo",
		Data: []any{
			map[string]any{"criterion": "Market size", "met": true, "rationale": "Large addressable market"},
			map[string]any{"criterion": "Regulatory clarity", "met": false, "rationale": "Pending legislation"},
			map[string]any{"criterion": "Talent availability", "met": nil, "verdict": "conditional", "rationale": "Depends on training pipeline"},
		},
	}
	if err := RenderBlock(pres, block, testResolution(), cfg, rc); err != nil {
		t.Fatalf("RenderBlock: %v", err)
	}
	slide := pres.GetSlides()[0]
	var table *gopresentation.TableShape
	for _, s := range slide.GetShapes() {
		if tb, ok := s.(*gopresentation.TableShape); ok {
			table = tb
		}
	}
	if table == nil {
		t.Fatal("expected a criteria table")
	}
	if got := table.Cell(1, 1).Paragraphs()[0].Runs[0].Text; got != "✓ Go" {
		t.Errorf("expected met=true to render a synthesized Go label, got %q", got)
	}
	if got := table.Cell(1, 1).Fill(); got == nil || got.Color != gopresentation.ColorVerdictPositive {
		t.Errorf("expected the met=true verdict cell filled green, got %+v", got)
	}
	if got := table.Cell(2, 1).Paragraphs()[0].Runs[0].Text; got != "✗ No-Go" {
		t.Errorf("expected met=false to render a synthesized No-Go label, got %q", got)
	}
	if got := table.Cell(2, 1).Fill(); got == nil || got.Color != gopresentation.ColorVerdictNegative {
		t.Errorf("expected the met=false verdict cell filled red, got %+v", got)
	}
	if got := table.Cell(3, 1).Paragraphs()[0].Runs[0].Text; got != "? conditional" {
		t.Errorf("expected a null met to fall back to the free-text verdict, got %q", got)
	}
	if got := table.Cell(3, 1).Fill(); got == nil || got.Color != gopresentation.ColorVerdictCaution {
		t.Errorf("expected the conditional verdict cell filled orange, got %+v", got)
	}
}

func TestRenderBlockStrictModeSurfacesRenderError(t *testing.T) {
	pres := gopresentation.NewPresentation()
	cfg := config.Default()
	cfg.StrictTemplateFidelity = true
	rc := runctx.New(nil)

	block := classify.Block{Key: "tpes", Data: nil}
	err := RenderBlock(pres, block, testResolution(), cfg, rc)
	if err == nil {
		t.Fatal("expected strict mode to surface the render error instead of swallowing it")
	}
	if pres.SlideCount() != 1 {
		t.Errorf("expected a placeholder slide still added despite the error, got %d slides", pres.SlideCount())
	}
}
