// Package tableflex implements the table flex engine (spec.md §4.7), the
// hardest pipeline subsystem: fitting arbitrary row/column content into a
// template-anchored rectangle through bounded scaling, column compaction,
// narrative "rethink" compression, and last-resort hard truncation.
package tableflex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/runctx"
	"github.com/escortdeck/marketdeck/internal/templates"
)

// Rect is a local alias of the template rectangle type, re-exported so
// callers outside internal/templates don't need both imports for a single
// value.
type Rect = templates.Rect

// Result is the engine's output: the (possibly trimmed/rewritten) rows,
// the adjusted rectangle, and the per-column/row sizing the renderer
// should emit.
type Result struct {
	Rows       [][]string
	Rect       Rect
	ColWidths  []float64
	RowHeights []float64
	FitScore   float64
}

// ViolationError reports a capacity violation in strict-geometry mode
// (spec.md §4.7.2).
type ViolationError struct {
	BlockKey   string
	Violations []string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("table flex violation for block %q: %s", e.BlockKey, strings.Join(e.Violations, "; "))
}

// variant names the 25-cell pressure-band matrix entries (spec.md §4.7.1).
type variant string

const (
	variantStd  variant = "std"
	variantMini variant = "mini"
	variantSoft variant = "soft"
	variantPlus variant = "plus"
	variantMax  variant = "max"
)

// nudge is the additive (width, height) delta a variant contributes.
type nudge struct{ w, h float64 }

var variantNudges = map[variant]nudge{
	variantStd:  {0.00, 0.00},
	variantMini: {-0.04, -0.03},
	variantSoft: {0.02, 0.02},
	variantPlus: {0.06, 0.07},
	variantMax:  {0.10, 0.12},
}

// band buckets a pressure ratio (count/baseline) into one of five bands.
func band(pressure float64) variant {
	switch {
	case pressure <= 0.6:
		return variantMini
	case pressure <= 0.9:
		return variantStd
	case pressure <= 1.15:
		return variantSoft
	case pressure <= 1.4:
		return variantPlus
	default:
		return variantMax
	}
}

// matrixVariant combines the row-pressure and col-pressure bands into a
// single cell of the 25-cell matrix (5 row bands x 5 col bands). The more
// aggressive of the two bands dominates, since either dimension running
// out of room should drive the more generous nudge.
var variantRank = map[variant]int{variantMini: 0, variantStd: 1, variantSoft: 2, variantPlus: 3, variantMax: 4}

func matrixVariant(rowPressure, colPressure float64) variant {
	rb, cb := band(rowPressure), band(colPressure)
	if variantRank[cb] > variantRank[rb] {
		return cb
	}
	return rb
}

// Fit is the engine's entry point: given raw string rows, the template's
// content/table rectangle, its derived style profile, and the active
// config, produce a fitted Result. cfg.TableFlexMode selects between the
// "off" throw path and the bounded-mode recovery path
// (spec.md §4.7.2, §4.7.3).
func Fit(blockKey string, rows [][]string, rect Rect, style templates.TableStyleProfile, cfg *config.Config, rc *runctx.RunContext) (Result, error) {
	rowCount := len(rows)
	colCount := 0
	if rowCount > 0 {
		colCount = len(rows[0])
	}
	baselineRows := style.BaselineRows
	if baselineRows == 0 {
		baselineRows = 8
	}
	baselineCols := style.BaselineCols
	if baselineCols == 0 {
		baselineCols = 3
	}

	rowPressure := float64(rowCount) / float64(baselineRows)
	colPressure := float64(colCount) / float64(baselineCols)
	v := matrixVariant(rowPressure, colPressure)
	nd := variantNudges[v]

	widthNudge := clampAbs(nd.w, cfg.TableVariantMaxWidthDelta)
	heightNudge := clampAbs(nd.h, cfg.TableVariantMaxHeightDelta)

	widthScale := minF(cfg.TableFlexMaxWidthScale, rowColScale(colPressure)+widthNudge)
	heightScale := minF(cfg.TableFlexMaxHeightScale, rowColScale(rowPressure)+heightNudge)
	if widthScale < 1.0 {
		widthScale = 1.0
	}
	if heightScale < 1.0 {
		heightScale = 1.0
	}

	adjusted := Rect{
		X: rect.X,
		Y: rect.Y,
		W: rect.W * widthScale,
		H: rect.H * heightScale,
	}
	// Clamp the scaled rect's top-right corner and bottom edge so growth
	// never bleeds past the content area or the footer rule line
	// (spec.md §4.7.1 "clamp the top-right corner... and the bottom to
	// sourceY - 0.02").
	if adjusted.X+adjusted.W > rect.X+rect.W*cfg.TableFlexMaxWidthScale {
		adjusted.W = rect.X + rect.W*cfg.TableFlexMaxWidthScale - adjusted.X
	}
	maxBottom := rect.Y + rect.H*cfg.TableFlexMaxHeightScale - 0.02
	if adjusted.Y+adjusted.H > maxBottom {
		adjusted.H = maxBottom - adjusted.Y
	}

	rowHeight := adjusted.H / maxF(1, float64(rowCount))
	colWidth := adjusted.W / maxF(1, float64(colCount))

	violations := checkViolations(rowCount, colCount, rowHeight, colWidth, widthNudge, heightNudge, cfg)
	if len(violations) > 0 {
		if cfg.TableFlexMode == config.TableFlexOff {
			return Result{}, &ViolationError{BlockKey: blockKey, Violations: violations}
		}
		rows, rowCount, colCount = recoverCapacity(rows, cfg)
		rc.TableFallbacks++
		rc.RecordTableRecovery(blockKey, "bounded-flex", strings.Join(violations, "; "))
		rowHeight = adjusted.H / maxF(1, float64(rowCount))
		colWidth = adjusted.W / maxF(1, float64(colCount))
	}

	score := fitScore(rowCount, colCount, rowHeight, colWidth, rows, cfg)
	rec := recommendation(score)
	if (rec == "truncate" || rec == "fallback") && cfg.TableFlexMode == config.TableFlexOff {
		return Result{}, &ViolationError{BlockKey: blockKey, Violations: []string{
			fmt.Sprintf("fit score %.1f below acceptable threshold (%s)", score, rec),
		}}
	}

	rows = densityCompact(blockKey, rows, rowHeight, cfg, rc)

	colWidths := make([]float64, colCount)
	for i := range colWidths {
		colWidths[i] = colWidth
	}
	rowHeights := make([]float64, rowCount)
	for i := range rowHeights {
		rowHeights[i] = rowHeight
	}

	return Result{Rows: rows, Rect: adjusted, ColWidths: colWidths, RowHeights: rowHeights, FitScore: score}, nil
}

func clampAbs(v, maxAbs float64) float64 {
	if v > maxAbs {
		return maxAbs
	}
	if v < -maxAbs {
		return -maxAbs
	}
	return v
}

// rowColScale converts a pressure ratio into the base multiplicative
// scale factor before the variant nudge is applied.
func rowColScale(pressure float64) float64 {
	if pressure <= 1.0 {
		return 1.0
	}
	return pressure
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// checkViolations implements spec.md §4.7.2's post-scale checks.
func checkViolations(rowCount, colCount int, rowHeight, colWidth, widthNudge, heightNudge float64, cfg *config.Config) []string {
	var out []string
	if rowCount > cfg.TableFlexMaxRows {
		out = append(out, fmt.Sprintf("rowCount %d exceeds MAX_ROWS %d", rowCount, cfg.TableFlexMaxRows))
	}
	if colCount > cfg.TableFlexMaxCols {
		out = append(out, fmt.Sprintf("colCount %d exceeds MAX_COLS %d", colCount, cfg.TableFlexMaxCols))
	}
	if rowHeight < cfg.TableFlexMinRowHeight-0.005 {
		out = append(out, fmt.Sprintf("rowHeight %.3f below MIN_ROW_HEIGHT %.3f", rowHeight, cfg.TableFlexMinRowHeight))
	}
	if colWidth < cfg.TableFlexMinColWidth-0.01 {
		out = append(out, fmt.Sprintf("colWidth %.3f below MIN_COL_WIDTH %.3f", colWidth, cfg.TableFlexMinColWidth))
	}
	if widthNudge > cfg.TableVariantMaxWidthDelta || widthNudge < -cfg.TableVariantMaxWidthDelta {
		out = append(out, "width variant delta out of budget")
	}
	if heightNudge > cfg.TableVariantMaxHeightDelta || heightNudge < -cfg.TableVariantMaxHeightDelta {
		out = append(out, "height variant delta out of budget")
	}
	return out
}

// recoverCapacity is the only automatic shape-mutation permitted
// (spec.md §4.7.2 bounded mode): truncate rows to MAX_ROWS-1 plus a
// capacity summary row, and slice columns past MAX_COLS.
func recoverCapacity(rows [][]string, cfg *config.Config) ([][]string, int, int) {
	colCount := 0
	if len(rows) > 0 {
		colCount = len(rows[0])
	}
	if colCount > cfg.TableFlexMaxCols {
		colCount = cfg.TableFlexMaxCols
		for i := range rows {
			rows[i] = rows[i][:colCount]
		}
	}
	if len(rows) > cfg.TableFlexMaxRows {
		keep := cfg.TableFlexMaxRows - 1
		dropped := len(rows) - keep
		summary := make([]string, colCount)
		summary[0] = fmt.Sprintf("+%d more items (table capacity exceeded)", dropped)
		rows = append(rows[:keep], summary)
	}
	return rows, len(rows), colCount
}

// fitScore computes the 0-100 composite score (spec.md §4.7.3).
func fitScore(rowCount, colCount int, rowHeight, colWidth float64, rows [][]string, cfg *config.Config) float64 {
	rowScore := 100.0
	if rowCount > cfg.TableFlexMaxRows {
		rowScore = 100 - 12*float64(rowCount-cfg.TableFlexMaxRows)
	} else if float64(rowCount) > 0.8*float64(cfg.TableFlexMaxRows) {
		rowScore = 80
	}
	colScore := 100.0
	if colCount > cfg.TableFlexMaxCols {
		colScore = 100 - 15*float64(colCount-cfg.TableFlexMaxCols)
	} else if float64(colCount) > 0.8*float64(cfg.TableFlexMaxCols) {
		colScore = 80
	}
	geometryScore := minF(rowHeight/cfg.TableFlexMinRowHeight, colWidth/cfg.TableFlexMinColWidth) * 100
	if geometryScore > 100 {
		geometryScore = 100
	}

	avgLen := avgCellLength(rows)
	densityScore := 100.0
	switch {
	case avgLen <= 220:
		densityScore = 100
	case avgLen <= 360:
		densityScore = 80
	default:
		densityScore = 80 - (avgLen-360)/10
	}
	if densityScore < 0 {
		densityScore = 0
	}

	return (rowScore + colScore + geometryScore + densityScore) / 4
}

func avgCellLength(rows [][]string) float64 {
	total, count := 0, 0
	for _, r := range rows {
		for _, c := range r {
			total += len([]rune(c))
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func recommendation(score float64) string {
	switch {
	case score >= 90:
		return "standard"
	case score >= 70:
		return "compact"
	case score >= 40:
		return "truncate"
	default:
		return "fallback"
	}
}

// --- Density compaction & narrative rethink (spec.md §4.7.4) ---

// fillerPhrases is the closed set of narrative filler stripped during
// rethink compression.
var fillerPhrases = []string{
	"it is important to note that",
	"in order to",
	"due to the fact that",
	"it should be noted that",
	"as a matter of fact",
}

var keywordBoosts = []string{"cagr", "target", "deadline", "risk", "cost", "investment", "revenue"}

func charBudget(rowHeightIn float64) int {
	// Taller rows afford proportionally more characters; floor at a
	// sane minimum so the budget never collapses to zero.
	budget := int(rowHeightIn * 900)
	if budget < 80 {
		budget = 80
	}
	return budget
}

// densityCompact applies the bounded-iteration rethink pass to every
// overflowing cell, per spec.md §4.7.4.
func densityCompact(blockKey string, rows [][]string, rowHeight float64, cfg *config.Config, rc *runctx.RunContext) [][]string {
	cap := charBudget(rowHeight)
	out := make([][]string, len(rows))
	for ri, row := range rows {
		newRow := make([]string, len(row))
		for ci, cell := range row {
			newRow[ci] = rethinkCell(blockKey, cell, cap, cfg.TableRethinkMaxPasses, rc)
		}
		out[ri] = newRow
	}
	return out
}

func rethinkCell(blockKey, cell string, cap, maxPasses int, rc *runctx.RunContext) string {
	if len([]rune(cell)) <= cap {
		return cell
	}
	if len([]rune(cell)) <= int(2.2*float64(cap)) {
		// Overflow but not severe: strip filler and re-measure without a
		// full sentence-scoring pass.
		stripped := stripFiller(cell)
		if len([]rune(stripped)) <= cap {
			return stripped
		}
		cell = stripped
	}

	passes := 0
	for len([]rune(cell)) > cap && passes < maxPasses && passes < 6 {
		cell = compressNarrative(cell, cap)
		passes++
	}

	if len([]rune(cell)) > cap {
		rc.RecordTableRecovery(blockKey, "density-truncate", fmt.Sprintf("hard-truncated at %d chars", cap))
		r := []rune(cell)
		cell = string(r[:maxI(0, cap-3)]) + "..."
	}
	return cell
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func stripFiller(s string) string {
	lower := s
	for _, f := range fillerPhrases {
		lower = replaceCaseInsensitive(lower, f, "")
	}
	return collapseSpaces(lower)
}

func replaceCaseInsensitive(s, old, new string) string {
	lowerS := strings.ToLower(s)
	lowerOld := strings.ToLower(old)
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(lowerS[i:], lowerOld)
		if idx < 0 {
			b.WriteString(s[i:])
			break
		}
		b.WriteString(s[i : i+idx])
		b.WriteString(new)
		i += idx + len(old)
	}
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compressNarrative implements rethink step 2-3: sentence scoring,
// greedy selection up to 0.9*cap, then word-dropping if still over.
func compressNarrative(s string, cap int) string {
	sentences := splitSentences(s)
	if len(sentences) <= 1 {
		return dropWordsToFit(s, cap)
	}

	type scored struct {
		text  string
		order int
		score int
	}
	var list []scored
	for i, sent := range sentences {
		list = append(list, scored{text: sent, order: i, score: scoreSentence(sent)})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })

	target := int(0.9 * float64(cap))
	var b strings.Builder
	for _, sc := range list {
		candidate := sc.text
		if b.Len() > 0 {
			candidate = " " + candidate
		}
		if b.Len()+len([]rune(candidate)) > target {
			continue
		}
		b.WriteString(candidate)
	}
	result := strings.TrimSpace(b.String())
	if result == "" {
		result = sentences[0]
	}
	if len([]rune(result)) > cap {
		result = dropWordsToFit(result, cap)
	}
	return result
}

func scoreSentence(s string) int {
	score := 0
	if strings.ContainsAny(s, "0123456789") {
		score += 3
	}
	if strings.ContainsAny(s, "%$€¥") {
		score += 2
	}
	if hasAllCapsToken(s) {
		score += 1
	}
	lower := strings.ToLower(s)
	for _, kw := range keywordBoosts {
		if strings.Contains(lower, kw) {
			score += 2
			break
		}
	}
	if len([]rune(s)) > 220 {
		score -= 1
	}
	return score
}

func hasAllCapsToken(s string) bool {
	for _, tok := range strings.Fields(s) {
		clean := strings.TrimFunc(tok, func(r rune) bool { return !isLetter(r) })
		if len(clean) >= 2 && clean == strings.ToUpper(clean) && strings.ToLower(clean) != clean {
			return true
		}
	}
	return false
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func splitSentences(s string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range s {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		sentences = append(sentences, strings.TrimSpace(cur.String()))
	}
	return sentences
}

func dropWordsToFit(s string, cap int) string {
	words := strings.Fields(s)
	for len(words) > 0 && len([]rune(strings.Join(words, " "))) > cap {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// --- Margin hygiene (spec.md §4.7.5) ---

// NormalizeMargin treats any margin value > 2 as points, not inches, and
// converts it. Fit does not call it; templates.DeriveTableStyleProfile
// applies the same conversion to style margins.
func NormalizeMargin(v float64) float64 {
	return gopresentation.NormalizeMarginInches(v)
}
