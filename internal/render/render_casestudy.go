package render

import (
	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/route"
)

var caseLabelFont = gopresentation.NewFont().SetSize(12).SetBold(true).SetColor(gopresentation.NewColor("1F3864"))

// caseFields is the fixed vertical order of a case study's key-value
// block: company/year/mode/outcome (spec.md §4.8 "case study" family),
// plus the situation/action narrative the synthesis document carries
// alongside them. lessonsLearned reuses the same shape with its own
// field set.
var caseFields = []struct {
	label string
	keys  []string
}{
	{"Company", []string{"company", "name"}},
	{"Year", []string{"year", "period"}},
	{"Mode", []string{"mode", "model", "format"}},
	{"Situation", []string{"situation", "context"}},
	{"Action", []string{"action", "approach"}},
	{"Outcome", []string{"result", "outcome"}},
}

var lessonFields = []struct {
	label string
	keys  []string
}{
	{"Lesson", []string{"lesson", "title"}},
	{"Year", []string{"year", "period"}},
	{"Context", []string{"context", "situation"}},
	{"Takeaway", []string{"takeaway", "implication"}},
}

// lessonPanelWidthFraction narrows the key-value panel's content width
// when rendering lessonsLearned, per spec.md §4.8's "narrower content
// width when lesson panels are present".
const lessonPanelWidthFraction = 0.7

// renderCaseStudy renders caseStudy/lessonsLearned: a vertical key-value
// panel followed by an applicability callout, anchored to the content
// rectangle (spec.md §4.8).
func renderCaseStudy(slide *gopresentation.Slide, block classify.Block, res route.Resolution) error {
	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeRect(title, res.Layout.Title)
	title.AddParagraph().AddRun(titleText(block), titleFonts)

	data := dataMap(block.Data)
	fields := caseFields
	contentRect := res.Layout.Content
	if block.Key == "lessonsLearned" {
		fields = lessonFields
		if contentRect != nil {
			narrowed := *contentRect
			narrowed.W *= lessonPanelWidthFraction
			contentRect = &narrowed
		}
	}

	panel := slide.AddTextBox()
	placeRect(panel, contentRect)
	for _, f := range fields {
		value := stringField(data, f.keys...)
		if value == "" {
			continue
		}
		label := panel.AddParagraph()
		label.AddRun(f.label, caseLabelFont)
		body := panel.AddParagraph()
		body.AddRun(value, bodyFont)
	}

	applicability := stringField(data, "applicability", "relevance")
	if applicability != "" {
		addCallout(slide, applicability, res.Layout.Source, gopresentation.NewFill().SetSolid(gopresentation.NewColor("E2EFDA")))
	}

	return nil
}
