// Package classify implements the block classifier (spec.md §4.5): it
// converts normalized section data into an ordered list of typed Blocks
// with canonical keys. Dynamic block discovery is intentionally not
// implemented — ENABLE_DYNAMIC_BLOCK_DISCOVERY is permanently false per
// spec.md, since deterministic slide count is part of the fidelity
// contract.
package classify

// DataQuality is the block's data-quality tag (spec.md §3).
type DataQuality string

const (
	QualityHigh      DataQuality = "high"
	QualityMedium    DataQuality = "medium"
	QualityLow       DataQuality = "low"
	QualityEstimated DataQuality = "estimated"
	QualityUnknown   DataQuality = "unknown"
)

// SectionKey identifies which of the four synthesis sections a block
// originated from; internal/pipeline groups blocks by it for the section
// divider slides and the table of contents.
type SectionKey string

const (
	SectionPolicy      SectionKey = "policy"
	SectionMarket      SectionKey = "market"
	SectionCompetitors SectionKey = "competitors"
	SectionDepth       SectionKey = "depth"
)

// Block is the unit of layout decision (spec.md §3). Router and renderer
// fields are populated in later pipeline stages; Block itself never
// mutates data handed to it by the normalizer — callers construct a new
// Block value per classification step (spec.md §9 "mutation of incoming
// data").
type Block struct {
	Key         string
	DataType    string
	Data        any
	Title       string
	Subtitle    string
	Citations   []string
	DataQuality DataQuality
	SectionKey  SectionKey
	Order       int

	// Populated by internal/route.
	TemplatePattern string
	TemplateSlide   int
	TemplateSource  string
}

// WithRoute returns a copy of b with the router's resolution fields set,
// leaving b itself untouched.
func (b Block) WithRoute(pattern string, slide int, source string) Block {
	b.TemplatePattern = pattern
	b.TemplateSlide = slide
	b.TemplateSource = source
	return b
}

// blockSpec is one entry in a section's fixed emission sequence: the
// canonical key plus its default dataType.
type blockSpec struct {
	key      string
	dataType string
}

var sectionBlockSpecs = map[SectionKey][]blockSpec{
	SectionPolicy: {
		{"foundationalActs", "regulation_list"},
		{"keyIncentives", "regulation_list"},
		{"investmentRestrictions", "regulation_list"},
	},
	SectionMarket: {
		{"tpes", "time_series_multi_insight"},
		{"finalDemand", "time_series_multi_insight"},
		{"electricity", "time_series_multi_insight"},
		{"gasLng", "time_series_multi_insight"},
		{"pricing", "time_series_multi_insight"},
		{"escoMarket", "composition_breakdown"},
	},
	SectionCompetitors: {
		{"japanesePlayers", "company_comparison"},
		{"localMajor", "company_comparison"},
		{"foreignPlayers", "company_comparison"},
		{"partnerAssessment", "company_comparison"},
	},
	SectionDepth: {
		{"caseStudy", "case_study"},
		{"lessonsLearned", "case_study"},
		{"goNoGo", "opportunities_vs_barriers"},
		{"opportunitiesObstacles", "opportunities_vs_barriers"},
		{"keyInsights", "section_summary"},
		{"timingIntelligence", "section_summary"},
	},
}

// sectionOrder fixes the order sections are classified in, which in turn
// fixes slide order for the whole run.
var sectionOrder = []SectionKey{SectionPolicy, SectionMarket, SectionCompetitors, SectionDepth}

// NormalizedSection is what internal/normalize hands the classifier for
// one of the four sections: the cleaned data map keyed by canonical field
// name, plus the section-wide citations/quality metadata.
type NormalizedSection struct {
	Data        map[string]any
	Citations   []string
	DataQuality DataQuality
}

// Classify converts a full normalized synthesis (one NormalizedSection per
// section key) into an ordered Block list. Per spec.md §4.5 a block is
// always emitted for every key in sectionBlockSpecs regardless of whether
// the section supplied data for it — renderers are responsible for
// degrading gracefully on empty/semantically-empty data (spec.md §4.3).
func Classify(sections map[SectionKey]NormalizedSection) []Block {
	var blocks []Block
	order := 0
	for _, sk := range sectionOrder {
		section, ok := sections[sk]
		specs := sectionBlockSpecs[sk]
		for _, spec := range specs {
			var data any
			if ok {
				data = section.Data[spec.key]
			}
			quality := QualityUnknown
			citations := []string(nil)
			if ok {
				quality = section.DataQuality
				citations = section.Citations
			}
			blocks = append(blocks, Block{
				Key:         spec.key,
				DataType:    spec.dataType,
				Data:        data,
				Citations:   citations,
				DataQuality: quality,
				SectionKey:  sk,
				Order:       order,
			})
			order++
		}
	}
	return blocks
}
