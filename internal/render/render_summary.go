package render

import (
	"strings"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/route"
	"github.com/escortdeck/marketdeck/internal/runctx"
)

// verdictKind classifies a goNoGo criterion into the three traffic-light
// buckets the reference deck renders color-coded green/red/orange (spec.md
// §4.8 "summary" family).
type verdictKind int

const (
	verdictUnknown verdictKind = iota
	verdictPositive
	verdictNegative
	verdictCaution
)

// classifyVerdict prefers the criterion's met field (true/false/null, the
// shape spec.md §8 scenario 1's example data actually uses) over the
// free-text verdict/assessment field, falling back to the text only when
// met is absent.
func classifyVerdict(met *bool, text string) verdictKind {
	if met != nil {
		if *met {
			return verdictPositive
		}
		return verdictNegative
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "go", "yes", "true", "favorable":
		return verdictPositive
	case "no-go", "no", "false", "unfavorable":
		return verdictNegative
	case "conditional", "caution", "mixed":
		return verdictCaution
	default:
		return verdictUnknown
	}
}

// glyph returns the tick/cross/question-mark text prefix paired with the
// cell's fill color, kept for readers scanning a black-and-white printout.
func (k verdictKind) glyph() string {
	switch k {
	case verdictPositive:
		return "✓ "
	case verdictNegative:
		return "✗ "
	case verdictCaution:
		return "? "
	default:
		return ""
	}
}

// label is the text shown when the criterion carried met but no free-text
// verdict, so a met=true/false entry never renders a blank verdict cell.
func (k verdictKind) label() string {
	switch k {
	case verdictPositive:
		return "Go"
	case verdictNegative:
		return "No-Go"
	case verdictCaution:
		return "Conditional"
	default:
		return ""
	}
}

// fill is the traffic-light cell color; verdictUnknown leaves the table's
// default zebra striping in place.
func (k verdictKind) fill() *gopresentation.Fill {
	switch k {
	case verdictPositive:
		return gopresentation.NewFill().SetSolid(gopresentation.ColorVerdictPositive)
	case verdictNegative:
		return gopresentation.NewFill().SetSolid(gopresentation.ColorVerdictNegative)
	case verdictCaution:
		return gopresentation.NewFill().SetSolid(gopresentation.ColorVerdictCaution)
	default:
		return nil
	}
}

// boolField reads a tri-state boolean out of a loosely-typed map: a present
// bool value, or nil when the key is absent, JSON null, or a non-bool type.
func boolField(m map[string]any, key string) *bool {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

func renderSummary(slide *gopresentation.Slide, block classify.Block, res route.Resolution, cfg *config.Config, rc *runctx.RunContext) error {
	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeRect(title, res.Layout.Title)
	title.AddParagraph().AddRun(titleText(block), titleFonts)

	switch block.Key {
	case "opportunitiesObstacles":
		return renderPairedSummary(slide, block, res)
	case "goNoGo":
		return renderCriteriaTable(slide, block, res, cfg, rc)
	default:
		return renderInsightList(slide, block, res)
	}
}

// renderPairedSummary splits the content rectangle into two side-by-side
// panels: opportunities on the left, obstacles on the right (spec.md §4.8
// "paired-summary layout").
func renderPairedSummary(slide *gopresentation.Slide, block classify.Block, res route.Resolution) error {
	data := dataMap(block.Data)
	content := res.Layout.Content
	if content == nil {
		return nil
	}
	half := content.W/2 - 0.1

	left := slide.AddTextBox()
	leftRect := *content
	leftRect.W = half
	placeRect(left, &leftRect)
	addBulletHeader(left, "Opportunities", dataSlice(data["opportunities"]))

	right := slide.AddTextBox()
	rightRect := *content
	rightRect.X = content.X + half + 0.2
	rightRect.W = half
	placeRect(right, &rightRect)
	addBulletHeader(right, "Obstacles", dataSlice(data["obstacles"]))

	return nil
}

func addBulletHeader(box *gopresentation.RichTextShape, heading string, items []any) {
	h := box.AddParagraph()
	h.AddRun(heading, gopresentation.NewFont().SetSize(14).SetBold(true))
	for _, it := range items {
		p := box.AddParagraph()
		p.Bullet = gopresentation.NewBullet().SetCharBullet(gopresentation.GlyphDot)
		p.AddRun(asString(it), bodyFont)
	}
}

// renderCriteriaTable renders goNoGo as a criterion/verdict/rationale
// table, prefixing each verdict with its tick/cross/question-mark glyph and
// color-coding the verdict cell green/red/orange by the criterion's met
// field (or, absent that, its free-text verdict/assessment).
func renderCriteriaTable(slide *gopresentation.Slide, block classify.Block, res route.Resolution, cfg *config.Config, rc *runctx.RunContext) error {
	rows := [][]string{{"Criterion", "Verdict", "Rationale"}}
	var kinds []verdictKind
	for _, raw := range items(block.Data) {
		c := dataMap(raw)
		if c == nil {
			continue
		}
		criterion := stringField(c, "criterion", "factor")
		if criterion == "" {
			continue
		}
		verdict := stringField(c, "verdict", "assessment")
		rationale := stringField(c, "rationale", "notes")
		kind := classifyVerdict(boolField(c, "met"), verdict)
		label := verdict
		if label == "" {
			label = kind.label()
		}
		rows = append(rows, []string{criterion, kind.glyph() + label, rationale})
		kinds = append(kinds, kind)
	}
	if len(rows) == 1 {
		return renderInsightList(slide, block, res)
	}

	verdictFill := func(r, c int) *gopresentation.Fill {
		if c != 1 || r < 1 || r > len(kinds) {
			return nil
		}
		return kinds[r-1].fill()
	}
	_, err := emitTable(slide, block.Key, rows, res, res.Layout.Table, verdictFill, cfg, rc)
	return err
}

// renderInsightList renders keyInsights/timingIntelligence as a bulleted
// list across the content rectangle.
func renderInsightList(slide *gopresentation.Slide, block classify.Block, res route.Resolution) error {
	box := slide.AddTextBox()
	placeRect(box, res.Layout.Content)
	for _, it := range items(block.Data) {
		p := box.AddParagraph()
		p.Bullet = gopresentation.NewBullet().SetCharBullet(gopresentation.GlyphDot)
		p.AddRun(asString(it), bodyFont)
	}
	return nil
}
