package render

import (
	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/route"
	"github.com/escortdeck/marketdeck/internal/runctx"
)

// renderRegulationList renders foundationalActs/keyIncentives/
// investmentRestrictions: a header row plus one row per act, with its
// requirement and penalty merged into a single cell, an optional
// key-message caption, and an optional external-knowledge callout when the
// synthesis supplied a regulatoryPathway narrative (spec.md §4.8).
func renderRegulationList(slide *gopresentation.Slide, block classify.Block, res route.Resolution, cfg *config.Config, rc *runctx.RunContext) error {
	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeRect(title, res.Layout.Title)
	title.AddParagraph().AddRun(titleText(block), titleFonts)

	wrapper := dataMap(block.Data)
	keyMessage := stringField(wrapper, "keyMessage", "summary")
	pathway := stringField(wrapper, "regulatoryPathway", "externalKnowledge")

	rows := [][]string{{"Act", "Requirement / Penalty"}}
	for _, raw := range items(block.Data) {
		act := dataMap(raw)
		if act == nil {
			continue
		}
		name := stringField(act, "act", "title", "name", "law")
		if name == "" {
			continue
		}
		requirement := stringField(act, "requirement", "obligation", "description")
		penalty := stringField(act, "penalty", "consequence", "enforcement")
		merged := requirement
		if penalty != "" {
			if merged != "" {
				merged += "\n\n"
			}
			merged += "Penalty: " + penalty
		}
		rows = append(rows, []string{name, merged})
	}

	contentRect := res.Layout.Content
	if keyMessage != "" {
		caption := slide.AddTextBox()
		placeRect(caption, contentRect)
		p := caption.AddParagraph()
		p.AddRun(keyMessage, gopresentation.NewFont().SetSize(13).SetBold(true))
	}

	if len(rows) > 1 {
		if _, err := emitTable(slide, block.Key, rows, res, res.Layout.Table, nil, cfg, rc); err != nil {
			return err
		}
	}

	if pathway != "" {
		addCallout(slide, pathway, res.Layout.Source, gopresentation.NewFill().SetSolid(gopresentation.NewColor("F2F2F2")))
	}

	return nil
}
