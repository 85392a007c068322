// Package audit implements the formatting auditor (spec.md §4.10): a
// closed table of per-slide invariant checks run against the reconciled
// package, grounded in the same "parse the written XML back and assert on
// it" idiom the reference writer tests use.
package audit

import (
	"fmt"
	"strings"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/templates"
)

// Severity classifies an Issue for the accept/throw decision in
// internal/pipeline (spec.md §7).
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Issue is one invariant violation found on a slide.
type Issue struct {
	SlideNumber int
	Check       string
	Severity    Severity
	Detail      string
}

// expectedSlideWidthEMU / expectedSlideHeightEMU are the 16:9 on-screen
// show dimensions every slide in the deck must share (spec.md §3, §4.10
// row 1).
const (
	expectedSlideWidthEMU  = 12192000
	expectedSlideHeightEMU = 6858000

	// headerFooterDriftToleranceEMU is the "closest-y per role within
	// 2500 EMU" budget (spec.md §4.10 row 2) for how far a rule line may
	// sit from every header/footer position the template contract itself
	// produces before it counts as drift rather than template variation.
	headerFooterDriftToleranceEMU = 2500
	headerFooterToleranceEMU      = 45720 // 0.05in, slide-bounds fallback
	longTextRunChars              = 600
	longTableCellChars            = 420
)

// Audit runs the nine fixed invariant checks against pres (already
// round-tripped through the writer and reader, so geometry reflects what
// actually shipped) and returns every violation found, in slide order.
// contract is the same per-run template contract internal/route resolved
// slides against, so the line-width and header/footer checks validate the
// actual run's template, not a guessed stand-in.
func Audit(pres *gopresentation.Presentation, contract *templates.Contract) []Issue {
	var issues []Issue

	issues = append(issues, checkSlideSize(pres)...)
	issues = append(issues, checkDocumentCreator(pres)...)

	expectedLineWidths := lineWidthSetEMU(contract)
	expectedLineYs := headerFooterYsEMU(contract)

	for i, slide := range pres.GetSlides() {
		n := i + 1
		issues = append(issues, checkHeaderFooterLine(n, slide, expectedLineYs)...)
		issues = append(issues, checkLineWidthSignature(n, slide, expectedLineWidths)...)
		issues = append(issues, checkCellMargins(n, slide)...)
		issues = append(issues, checkAnchorDistribution(n, slide)...)
		issues = append(issues, checkOuterBorderPresence(n, slide)...)
		issues = append(issues, checkLongTextRun(n, slide)...)
		issues = append(issues, checkLongTableCell(n, slide)...)
	}

	return issues
}

// fallbackLineWidthsEMU backs checkLineWidthSignature when a caller audits
// a package with no contract in hand (e.g. `escortdeck lint` on a file
// produced by an older contract revision).
var fallbackLineWidthsEMU = []int64{12700, 19050, 28575}

func lineWidthSetEMU(contract *templates.Contract) map[int64]bool {
	widths := fallbackLineWidthsEMU
	if contract != nil && len(contract.ExpectedLineEMUs) > 0 {
		widths = contract.ExpectedLineEMUs
	}
	set := make(map[int64]bool, len(widths))
	for _, w := range widths {
		set[w] = true
	}
	return set
}

// headerFooterYsEMU collects every title-bottom and source-top Y position
// the template contract's own per-slide layouts produce, in EMU. These are
// the reference deck's own header/footer rule positions; a rule line that
// drifted more than headerFooterDriftToleranceEMU from all of them has
// drifted from the template, not just varied slide-to-slide.
func headerFooterYsEMU(contract *templates.Contract) []int64 {
	if contract == nil {
		return nil
	}
	seen := make(map[int64]bool)
	var ys []int64
	add := func(y float64) {
		emu := gopresentation.Inch(y)
		if !seen[emu] {
			seen[emu] = true
			ys = append(ys, emu)
		}
	}
	for _, layout := range contract.Layouts {
		if layout.Title != nil {
			add(layout.Title.Y + layout.Title.H)
		}
		if layout.Source != nil {
			add(layout.Source.Y)
		}
	}
	return ys
}

func checkSlideSize(pres *gopresentation.Presentation) []Issue {
	layout := pres.GetLayout()
	if layout != nil && layout.CX == expectedSlideWidthEMU && layout.CY == expectedSlideHeightEMU {
		return nil
	}
	cx, cy := int64(0), int64(0)
	if layout != nil {
		cx, cy = layout.CX, layout.CY
	}
	return []Issue{{
		Check: "slideSize", Severity: SeverityFatal,
		Detail: fmt.Sprintf("presentation slide size is %dx%d EMU, expected %dx%d (16:9 on-screen show)",
			cx, cy, expectedSlideWidthEMU, expectedSlideHeightEMU),
	}}
}

// checkDocumentCreator flags a package whose docProps/core.xml creator
// metadata is not this module's own writer stamp. The writer always sets
// Creator to "EscortDeck" (gopresentation.newDocumentProperties); a
// different value surviving the write/reconcile round trip means some
// stage clobbered it.
func checkDocumentCreator(pres *gopresentation.Presentation) []Issue {
	props := pres.GetProperties()
	if props == nil || props.Creator == "EscortDeck" {
		return nil
	}
	return []Issue{{
		Check: "documentCreator", Severity: SeverityWarning,
		Detail: fmt.Sprintf("docProps/core.xml creator is %q, expected \"EscortDeck\"", props.Creator),
	}}
}

// checkHeaderFooterLine flags a LineShape whose Y position drifted more
// than headerFooterDriftToleranceEMU from every header/footer position the
// template contract itself produces (spec.md §4.10 row 2: "closest-y per
// role within 2500 EMU … critical"). With no contract-derived positions to
// compare against, it falls back to the old slide-bounds sanity check.
func checkHeaderFooterLine(n int, slide *gopresentation.Slide, expectedYs []int64) []Issue {
	var issues []Issue
	for _, shape := range slide.GetShapes() {
		line, ok := shape.(*gopresentation.LineShape)
		if !ok {
			continue
		}
		y := line.GetY()
		if len(expectedYs) == 0 {
			if y < 0 || y > expectedSlideHeightEMU+headerFooterToleranceEMU {
				issues = append(issues, Issue{
					SlideNumber: n, Check: "headerFooterLine", Severity: SeverityWarning,
					Detail: fmt.Sprintf("rule line at y=%d EMU falls outside the slide bounds", y),
				})
			}
			continue
		}
		closest := closestAbsDelta(y, expectedYs)
		if closest > headerFooterDriftToleranceEMU {
			issues = append(issues, Issue{
				SlideNumber: n, Check: "headerFooterLine", Severity: SeverityFatal,
				Detail: fmt.Sprintf("rule line at y=%d EMU is %d EMU from the closest template header/footer position, over the %d EMU budget", y, closest, headerFooterDriftToleranceEMU),
			})
		}
	}
	return issues
}

func closestAbsDelta(y int64, candidates []int64) int64 {
	best := int64(-1)
	for _, c := range candidates {
		d := y - c
		if d < 0 {
			d = -d
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// checkLineWidthSignature flags any border whose stroke width does not
// match one of the template contract's expected line weights (spec.md §3
// "expectedLineWidthsEmu", §4.10 row 3).
func checkLineWidthSignature(n int, slide *gopresentation.Slide, expectedWidths map[int64]bool) []Issue {
	var issues []Issue
	for _, shape := range slide.GetShapes() {
		line, ok := shape.(*gopresentation.LineShape)
		if !ok {
			continue
		}
		border := line.LineBorder()
		if border == nil {
			continue
		}
		if !expectedWidths[int64(border.Width)] {
			issues = append(issues, Issue{
				SlideNumber: n, Check: "lineWidthSignature", Severity: SeverityWarning,
				Detail: fmt.Sprintf("rule line stroke is %d EMU, not one of the template contract's line weights", border.Width),
			})
		}
	}
	return issues
}

// checkCellMargins flags a table cell whose margins were not normalized
// to inches (a value > 2 almost certainly leaked through in points —
// spec.md §4.7.5, §4.10 row 4). internal/tableflex.NormalizeMargin is the
// fix; this check exists to catch any cell that bypassed it.
func checkCellMargins(n int, slide *gopresentation.Slide) []Issue {
	var issues []Issue
	for _, shape := range slide.GetShapes() {
		table, ok := shape.(*gopresentation.TableShape)
		if !ok {
			continue
		}
		for r := 0; r < table.NumRows(); r++ {
			for c := 0; c < table.NumCols(); c++ {
				left, top, right, bottom := table.Cell(r, c).Margins()
				for _, m := range []int64{left, top, right, bottom} {
					if m > int64(2*914400) {
						issues = append(issues, Issue{
							SlideNumber: n, Check: "cellMargins", Severity: SeverityWarning,
							Detail: fmt.Sprintf("table cell (%d,%d) margin %d EMU looks unnormalized (>2in)", r, c, m),
						})
					}
				}
			}
		}
	}
	return issues
}

// checkAnchorDistribution flags a table where more than 85% of the cells
// are top-anchored — a sign a renderer hardcoded an anchor instead of
// inheriting the template's (spec.md §4.10 row 5). Tables with fewer than
// three rows are exempt.
func checkAnchorDistribution(n int, slide *gopresentation.Slide) []Issue {
	var issues []Issue
	for _, shape := range slide.GetShapes() {
		table, ok := shape.(*gopresentation.TableShape)
		if !ok || table.NumRows() < 3 {
			continue
		}
		total, top := 0, 0
		for r := 0; r < table.NumRows(); r++ {
			for c := 0; c < table.NumCols(); c++ {
				total++
				if table.Cell(r, c).VAlign() == gopresentation.VerticalTop {
					top++
				}
			}
		}
		if total > 0 && float64(top)/float64(total) > 0.85 {
			issues = append(issues, Issue{
				SlideNumber: n, Check: "anchorDistribution", Severity: SeverityWarning,
				Detail: fmt.Sprintf("%d of %d table cells are top-anchored, over the 85%% limit", top, total),
			})
		}
	}
	return issues
}

// checkOuterBorderPresence flags a table shape that has no rows or no
// columns (spec.md §4.10 row 6). It does not inspect border widths or the
// table style id, so a table that has cells but no outer border is not
// flagged.
func checkOuterBorderPresence(n int, slide *gopresentation.Slide) []Issue {
	var issues []Issue
	for _, shape := range slide.GetShapes() {
		table, ok := shape.(*gopresentation.TableShape)
		if !ok {
			continue
		}
		if table.NumRows() == 0 || table.NumCols() == 0 {
			issues = append(issues, Issue{
				SlideNumber: n, Check: "outerBorderPresence", Severity: SeverityWarning,
				Detail: "table shape has no rows/cols, cannot carry the reference banded style",
			})
		}
	}
	return issues
}

// checkLongTextRun flags a single run whose text is long enough that it
// is very likely to overflow its shape regardless of autofit (spec.md
// §4.10 row 7).
func checkLongTextRun(n int, slide *gopresentation.Slide) []Issue {
	var issues []Issue
	for _, shape := range slide.GetShapes() {
		rt, ok := shape.(*gopresentation.RichTextShape)
		if !ok {
			continue
		}
		for _, p := range rt.GetParagraphs() {
			for _, run := range p.Runs {
				if len(run.Text) > longTextRunChars {
					issues = append(issues, Issue{
						SlideNumber: n, Check: "longTextRun", Severity: SeverityWarning,
						Detail: fmt.Sprintf("text run is %d chars, over the %d-char soft limit", len(run.Text), longTextRunChars),
					})
				}
			}
		}
	}
	return issues
}

// checkLongTableCell flags a table cell whose combined text exceeds the
// length table-flex's rethink pass is supposed to have already compressed
// it under (spec.md §4.7.6, §4.10 row 8) — a survivor means the rethink
// pass's hard-truncate fallback did not run, or ran and was bypassed.
func checkLongTableCell(n int, slide *gopresentation.Slide) []Issue {
	var issues []Issue
	for _, shape := range slide.GetShapes() {
		table, ok := shape.(*gopresentation.TableShape)
		if !ok {
			continue
		}
		for r := 0; r < table.NumRows(); r++ {
			for c := 0; c < table.NumCols(); c++ {
				var text strings.Builder
				for _, p := range table.Cell(r, c).Paragraphs() {
					for _, run := range p.Runs {
						text.WriteString(run.Text)
					}
				}
				if text.Len() > longTableCellChars {
					issues = append(issues, Issue{
						SlideNumber: n, Check: "longTableCell", Severity: SeverityWarning,
						Detail: fmt.Sprintf("table cell (%d,%d) is %d chars, over the %d-char post-rethink limit", r, c, text.Len(), longTableCellChars),
					})
				}
			}
		}
	}
	return issues
}

// Fatal reports whether any issue in issues is fatal (spec.md §7: a fatal
// audit finding is a PackageError; a warning does not fail the run, and
// internal/pipeline records neither the warnings nor their count in the
// returned metrics).
func Fatal(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityFatal {
			return true
		}
	}
	return false
}
