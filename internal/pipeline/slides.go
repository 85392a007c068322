package pipeline

import (
	"fmt"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
)

// The structural slides below (cover, TOC, executive summary, section
// dividers, closing summary) sit outside the template router's per-block
// contract: spec.md §6 scenario 1 names them as fixed bookends around the
// N routed content slides, so they are placed with their own fixed
// geometry rather than a template-patterns.json rectangle.

var coverTitleFont = gopresentation.NewFont().SetSize(36).SetBold(true).SetColor(gopresentation.ColorWhite)
var coverSubtitleFont = gopresentation.NewFont().SetSize(18).SetColor(gopresentation.ColorWhite)
var dividerTitleFont = gopresentation.NewFont().SetSize(32).SetBold(true).SetColor(gopresentation.ColorWhite)
var tocEntryFont = gopresentation.NewFont().SetSize(16)
var summaryTitleFont = gopresentation.NewFont().SetSize(26).SetBold(true)
var summaryBodyFont = gopresentation.NewFont().SetSize(14)

var coverFill = gopresentation.NewFill().SetSolid(gopresentation.NewColor("1F3864"))

func placeEMU(s gopresentation.Shape, x, y, w, h float64) {
	s.SetPosition(gopresentation.Inch(x), gopresentation.Inch(y))
	s.SetSize(gopresentation.Inch(w), gopresentation.Inch(h))
}

func addCoverSlide(pres *gopresentation.Presentation, synthesis Synthesis, analysis CountryAnalysis, scope Scope) {
	slide := pres.AddSlide()
	slide.SetBackground(coverFill)

	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderCenteredTitle)
	placeEMU(title, 1.0, 2.6, 11.33, 1.2)
	titleText := scope.ProjectName
	if titleText == "" {
		titleText = synthesis.ProjectName
	}
	title.AddParagraph().AddRun(fmt.Sprintf("%s — %s", titleText, analysis.Country), coverTitleFont)

	subtitle := slide.CreatePlaceholderShape(gopresentation.PlaceholderSubTitle)
	placeEMU(subtitle, 1.0, 3.9, 11.33, 0.8)
	client := scope.ClientName
	if client == "" {
		client = synthesis.ClientName
	}
	subtitle.AddParagraph().AddRun(fmt.Sprintf("%s | %s", client, scope.Industry), coverSubtitleFont)
}

func addTOCSlide(pres *gopresentation.Presentation, blocks []classify.Block) {
	slide := pres.AddSlide()

	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeEMU(title, 0.6, 0.4, 12.1, 0.9)
	title.AddParagraph().AddRun("Table of Contents", dividerTitleFontNoWhite())

	seen := map[classify.SectionKey]bool{}
	box := slide.AddTextBox()
	placeEMU(box, 1.0, 1.6, 11.0, 5.0)
	for _, b := range blocks {
		if seen[b.SectionKey] {
			continue
		}
		seen[b.SectionKey] = true
		p := box.AddParagraph()
		p.Bullet = gopresentation.NewBullet().SetCharBullet(gopresentation.GlyphDot)
		p.AddRun(sectionTitles[b.SectionKey], tocEntryFont)
	}
}

// dividerTitleFontNoWhite mirrors dividerTitleFont without the white fill
// color, for slides that keep the default light background (the TOC and
// closing summary, unlike the colored cover/divider slides).
func dividerTitleFontNoWhite() *gopresentation.Font {
	return gopresentation.NewFont().SetSize(28).SetBold(true)
}

func addExecSummarySlide(pres *gopresentation.Presentation, synthesis Synthesis) {
	slide := pres.AddSlide()

	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeEMU(title, 0.6, 0.4, 12.1, 0.9)
	title.AddParagraph().AddRun("Executive Summary", dividerTitleFontNoWhite())

	body := slide.CreatePlaceholderShape(gopresentation.PlaceholderBody)
	placeEMU(body, 0.8, 1.6, 11.5, 5.0)
	p := body.AddParagraph()
	p.AddRun(synthesis.ExecutiveSummary, summaryBodyFont)
	if synthesis.MarketOpportunityAssessment != "" {
		mp := body.AddParagraph()
		mp.AddRun(synthesis.MarketOpportunityAssessment, summaryBodyFont)
	}
}

func addDividerSlide(pres *gopresentation.Presentation, sectionName string) {
	slide := pres.AddSlide()
	slide.SetBackground(coverFill)

	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderCenteredTitle)
	placeEMU(title, 1.0, 3.2, 11.33, 1.2)
	title.AddParagraph().AddRun(sectionName, dividerTitleFont)
}

func addClosingSummarySlide(pres *gopresentation.Presentation, synthesis Synthesis) {
	slide := pres.AddSlide()

	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeEMU(title, 0.6, 0.4, 12.1, 0.9)
	title.AddParagraph().AddRun("Key Insights & Next Steps", summaryTitleFont)

	box := slide.AddTextBox()
	placeEMU(box, 0.8, 1.6, 11.5, 5.0)
	for _, insight := range synthesis.KeyInsights {
		p := box.AddParagraph()
		p.Bullet = gopresentation.NewBullet().SetCharBullet(gopresentation.GlyphDot)
		p.AddRun(insight, summaryBodyFont)
	}
	for _, step := range synthesis.NextSteps {
		p := box.AddParagraph()
		p.Bullet = gopresentation.NewBullet().SetCharBullet(gopresentation.GlyphArrow)
		p.AddRun(step, summaryBodyFont)
	}
}
