// Package render implements the slide renderers (spec.md §4.8): one
// renderer per block key, grouped into five structural families. Blocks
// are modeled as a closed BlockKind sum type (spec.md §9) dispatched by
// RenderBlock's switch; a key outside kindByKey maps to KindUnknown and
// fails rendering.
package render

import (
	"fmt"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/route"
	"github.com/escortdeck/marketdeck/internal/runctx"
	"github.com/escortdeck/marketdeck/internal/sanitize"
	"github.com/escortdeck/marketdeck/internal/tableflex"
	"github.com/escortdeck/marketdeck/internal/templates"
)

// BlockKind closes the block-key space into a sum type (spec.md §9).
type BlockKind int

const (
	KindRegulationList BlockKind = iota
	KindCompanyComparison
	KindMarketChart
	KindCaseStudy
	KindSummary
	KindUnknown
)

var kindByKey = map[string]BlockKind{
	"foundationalActs":       KindRegulationList,
	"keyIncentives":          KindRegulationList,
	"investmentRestrictions": KindRegulationList,

	"japanesePlayers":   KindCompanyComparison,
	"localMajor":        KindCompanyComparison,
	"foreignPlayers":    KindCompanyComparison,
	"partnerAssessment": KindCompanyComparison,

	"tpes":        KindMarketChart,
	"finalDemand": KindMarketChart,
	"electricity": KindMarketChart,
	"gasLng":      KindMarketChart,
	"pricing":     KindMarketChart,
	"escoMarket":  KindMarketChart,

	"caseStudy":      KindCaseStudy,
	"lessonsLearned": KindCaseStudy,

	"goNoGo":                 KindSummary,
	"opportunitiesObstacles": KindSummary,
	"keyInsights":            KindSummary,
	"timingIntelligence":     KindSummary,
}

// KindOf classifies a block key into its structural family.
func KindOf(key string) BlockKind {
	if k, ok := kindByKey[key]; ok {
		return k
	}
	return KindUnknown
}

var titleFonts = gopresentation.NewFont().SetSize(28).SetBold(true)
var bodyFont = gopresentation.NewFont().SetSize(14)

// RenderBlock renders one block onto a fresh slide of pres, anchored to
// the resolution's template layout. Any rendering error is replaced by a
// "content rendering failed" placeholder slide and recorded on rc,
// keeping the deck's slide count deterministic (spec.md §4.8, §7); under
// cfg.StrictTemplateFidelity the error is also returned.
func RenderBlock(pres *gopresentation.Presentation, block classify.Block, res route.Resolution, cfg *config.Config, rc *runctx.RunContext) error {
	slide := pres.AddSlide()
	slideNumber := pres.SlideCount()
	rc.RecordSlide(slideNumber, block.Key)
	rc.BlocksResolved++

	err := func() error {
		switch KindOf(block.Key) {
		case KindRegulationList:
			return renderRegulationList(slide, block, res, cfg, rc)
		case KindCompanyComparison:
			return renderCompanyComparison(slide, block, res, cfg, rc)
		case KindMarketChart:
			return renderMarketChart(slide, block, res)
		case KindCaseStudy:
			return renderCaseStudy(slide, block, res)
		case KindSummary:
			return renderSummary(slide, block, res, cfg, rc)
		default:
			return fmt.Errorf("no renderer registered for block key %q", block.Key)
		}
	}()

	if err != nil {
		rc.RecordSlideRenderFailure(slideNumber, block.Key, err)
		renderFailurePlaceholder(slide, block, res)
		if cfg.StrictTemplateFidelity {
			return fmt.Errorf("render block %q on slide %d: %w", block.Key, slideNumber, err)
		}
		return nil
	}
	rc.BlocksRendered++
	return nil
}

func renderFailurePlaceholder(slide *gopresentation.Slide, block classify.Block, res route.Resolution) {
	ph := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeRect(ph, res.Layout.Title)
	p := ph.AddParagraph()
	p.AddRun(titleText(block), titleFonts)

	body := slide.CreatePlaceholderShape(gopresentation.PlaceholderBody)
	placeRect(body, res.Layout.Content)
	bp := body.AddParagraph()
	bp.AddRun("Content rendering failed for this block.", bodyFont)
}

func titleText(block classify.Block) string {
	if block.Title != "" {
		return sanitize.SafeCell(block.Title, 320)
	}
	return sanitize.SafeCell(block.Key, 320)
}

// placeRect converts a template inches rect into EMU and applies it to any
// Shape. A nil rect is a no-op, leaving the shape at its default geometry.
func placeRect(s gopresentation.Shape, r *templates.Rect) {
	if r == nil || s == nil {
		return
	}
	s.SetPosition(gopresentation.Inch(r.X), gopresentation.Inch(r.Y))
	s.SetSize(gopresentation.Inch(r.W), gopresentation.Inch(r.H))
}

// dataMap best-effort type-asserts block.Data into a string-keyed map;
// renderers degrade to an empty table/panel rather than panicking when the
// synthesis document omitted or malformed this block's section.
func dataMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func dataSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	return sanitize.EnsureString(v)
}
