// Package templates owns the template contract (spec.md §3, §6): the
// offline-extracted record of the reference deck's per-slide rectangles,
// chart/table context key sets, the section-divider slide map, and the
// style palette — loaded once at pipeline start from an embedded JSON
// asset, since the reference template is a build-time asset, not a
// runtime fetch (SPEC_FULL.md §4.6 expansion).
package templates

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/escortdeck/marketdeck/gopresentation"
)

//go:embed template-patterns.json
var patternsFS embed.FS

// Rect is an inches-based (x, y, w, h) rectangle, as extracted offline from
// the reference deck (spec.md §3).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// TemplateLayout is the per-slide rectangle record (spec.md §3).
type TemplateLayout struct {
	SlideNumber int     `json:"slideNumber"`
	Title       *Rect   `json:"title,omitempty"`
	Content     *Rect   `json:"content,omitempty"`
	Source      *Rect   `json:"source,omitempty"`
	Table       *Rect   `json:"table,omitempty"`
	Charts      []Rect  `json:"charts,omitempty"`
}

// HasTable reports whether this layout has a table rectangle.
func (l *TemplateLayout) HasTable() bool { return l != nil && l.Table != nil }

// HasChart reports whether this layout has at least one chart rectangle.
func (l *TemplateLayout) HasChart() bool { return l != nil && len(l.Charts) > 0 }

// BorderSpec describes a template inner/outer table border.
type BorderSpec struct {
	WidthEMU int64  `json:"widthEmu"`
	Dash     string `json:"dash"`
	ColorHex string `json:"colorHex"`
}

// TableStyleProfile is the derived per-slide table style (spec.md §3):
// margins normalized to inches, vertical alignment, inner/outer borders,
// and the baseline row/col counts the table-flex engine measures pressure
// against.
type TableStyleProfile struct {
	MarginLeftIn, MarginTopIn, MarginRightIn, MarginBottomIn float64
	VAlign                                                   string
	InnerBorder, OuterBorder                                 BorderSpec
	BaselineRows, BaselineCols                                int
}

// Pattern names a primary/candidate routing for one or more block keys
// (spec.md §4.6): a primary (patternKey, selectedSlide) plus the ranked
// fallback slide list used during geometry recovery.
type Pattern struct {
	Key            string `json:"key"`
	SelectedSlide  int    `json:"selectedSlide"`
	TemplateSlides []int  `json:"templateSlides"`
}

// Contract is the full parsed template-patterns.json document.
type Contract struct {
	Layouts          map[int]*TemplateLayout  `json:"layouts"`
	Patterns         map[string]Pattern       `json:"patterns"`
	BlockPattern     map[string]string        `json:"blockPattern"`
	DefaultPattern   string                    `json:"defaultPattern"`
	TableContexts    map[string]bool           `json:"tableContexts"`
	ChartContexts    map[string]bool           `json:"chartContexts"`
	SectionDividers  map[string]int            `json:"sectionDividers"`
	PaletteHex       []string                  `json:"paletteHex"`
	BodyFont         string                    `json:"bodyFont"`
	ExpectedLineEMUs []int64                   `json:"expectedLineWidthsEmu"`
}

type jsonLayout struct {
	SlideNumber int    `json:"slideNumber"`
	Title       *Rect  `json:"title,omitempty"`
	Content     *Rect  `json:"content,omitempty"`
	Source      *Rect  `json:"source,omitempty"`
	Table       *Rect  `json:"table,omitempty"`
	Charts      []Rect `json:"charts,omitempty"`
}

type jsonContract struct {
	Layouts          []jsonLayout       `json:"layouts"`
	Patterns         map[string]Pattern `json:"patterns"`
	BlockPattern     map[string]string  `json:"blockPattern"`
	DefaultPattern   string             `json:"defaultPattern"`
	TableContexts    []string           `json:"tableContexts"`
	ChartContexts    []string           `json:"chartContexts"`
	SectionDividers  map[string]int     `json:"sectionDividers"`
	PaletteHex       []string           `json:"paletteHex"`
	BodyFont         string             `json:"bodyFont"`
	ExpectedLineEMUs []int64            `json:"expectedLineWidthsEmu"`
}

// Load parses the embedded template-patterns.json asset into a Contract.
func Load() (*Contract, error) {
	data, err := patternsFS.ReadFile("template-patterns.json")
	if err != nil {
		return nil, fmt.Errorf("read template-patterns.json: %w", err)
	}
	var jc jsonContract
	if err := json.Unmarshal(data, &jc); err != nil {
		return nil, fmt.Errorf("parse template-patterns.json: %w", err)
	}

	c := &Contract{
		Layouts:         make(map[int]*TemplateLayout, len(jc.Layouts)),
		Patterns:        jc.Patterns,
		BlockPattern:    jc.BlockPattern,
		DefaultPattern:  jc.DefaultPattern,
		TableContexts:   make(map[string]bool, len(jc.TableContexts)),
		ChartContexts:   make(map[string]bool, len(jc.ChartContexts)),
		SectionDividers: jc.SectionDividers,
		PaletteHex:      jc.PaletteHex,
		BodyFont:        jc.BodyFont,
		ExpectedLineEMUs: jc.ExpectedLineEMUs,
	}
	for _, l := range jc.Layouts {
		l := l
		c.Layouts[l.SlideNumber] = &TemplateLayout{
			SlideNumber: l.SlideNumber, Title: l.Title, Content: l.Content,
			Source: l.Source, Table: l.Table, Charts: l.Charts,
		}
	}
	for _, k := range jc.TableContexts {
		c.TableContexts[k] = true
	}
	for _, k := range jc.ChartContexts {
		c.ChartContexts[k] = true
	}
	return c, nil
}

// RequiredGeometry returns "table", "chart", or "" for the given block key
// (spec.md §4.6 step 1).
func (c *Contract) RequiredGeometry(blockKey string) string {
	if c.TableContexts[blockKey] {
		return "table"
	}
	if c.ChartContexts[blockKey] {
		return "chart"
	}
	return ""
}

// Satisfies reports whether layout has the rectangle requiredGeometry
// names ("table", "chart", or "" for no requirement).
func Satisfies(layout *TemplateLayout, requiredGeometry string) bool {
	switch requiredGeometry {
	case "table":
		return layout.HasTable()
	case "chart":
		return layout.HasChart()
	default:
		return true
	}
}

// DeriveTableStyleProfile builds a TableStyleProfile for a template slide,
// normalizing any margin value > 2 (almost certainly points, not inches)
// by dividing by 72 (spec.md §4.7.5).
func DeriveTableStyleProfile(marginLeft, marginTop, marginRight, marginBottom float64, vAlign string, inner, outer BorderSpec, baselineRows, baselineCols int) TableStyleProfile {
	norm := gopresentation.NormalizeMarginInches
	return TableStyleProfile{
		MarginLeftIn: norm(marginLeft), MarginTopIn: norm(marginTop),
		MarginRightIn: norm(marginRight), MarginBottomIn: norm(marginBottom),
		VAlign: vAlign, InnerBorder: inner, OuterBorder: outer,
		BaselineRows: baselineRows, BaselineCols: baselineCols,
	}
}
