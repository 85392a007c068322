package render

import (
	"fmt"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/route"
	"github.com/escortdeck/marketdeck/internal/runctx"
	"github.com/escortdeck/marketdeck/internal/tableflex"
	"github.com/escortdeck/marketdeck/internal/templates"
)

var headerFont = gopresentation.NewFont().SetSize(12).SetBold(true).SetColor(gopresentation.ColorWhite)
var cellFont = gopresentation.NewFont().SetSize(11)
var headerFill = gopresentation.NewFill().SetSolid(gopresentation.NewColor("1F3864"))
var zebraFill = gopresentation.NewFill().SetSolid(gopresentation.NewColor("EDEDED"))

// defaultTableStyle stands in for a per-slide style extracted from the
// reference deck (spec.md §3 "Template table style cache") when the
// template contract carries no border/margin record for this slide.
var defaultTableStyle = templates.DeriveTableStyleProfile(
	0.05, 0.04, 0.05, 0.04, "ctr",
	templates.BorderSpec{WidthEMU: 6350, Dash: "solid", ColorHex: "BFBFBF"},
	templates.BorderSpec{WidthEMU: 12700, Dash: "solid", ColorHex: "1F3864"},
	8, 3,
)

// cellFillFunc overrides the default header/zebra fill for one body cell,
// keyed by its position in the post-fit grid. A nil return leaves the
// default fill in place.
type cellFillFunc func(row, col int) *gopresentation.Fill

// emitTable runs rows through the table flex engine against the block's
// routed layout and materializes the fitted grid as a TableShape on slide.
// The first row is always treated as a header row (spec.md §4.8 regulation
// list / company comparison / summary families all lead with one).
// cellFill may be nil; when set, it takes priority over the zebra default
// for whichever body cells it returns a non-nil Fill for (used by the
// goNoGo criteria table's verdict color-coding).
func emitTable(slide *gopresentation.Slide, blockKey string, rows [][]string, res route.Resolution, rect *templates.Rect, cellFill cellFillFunc, cfg *config.Config, rc *runctx.RunContext) (*gopresentation.TableShape, error) {
	if rect == nil {
		return nil, fmt.Errorf("table %q: routed layout %d has no table rectangle", blockKey, res.Slide)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %q: no rows to render", blockKey)
	}

	fit, err := tableflex.Fit(blockKey, rows, *rect, defaultTableStyle, cfg, rc)
	if err != nil {
		return nil, err
	}

	numRows := len(fit.Rows)
	if numRows == 0 {
		return nil, fmt.Errorf("table %q: fit produced zero rows", blockKey)
	}
	numCols := len(fit.Rows[0])

	ts := slide.CreateTableShape(numRows, numCols)
	placeRect(ts, &fit.Rect)

	if len(fit.ColWidths) == numCols {
		widths := make([]int64, numCols)
		for i, w := range fit.ColWidths {
			widths[i] = gopresentation.Inch(w)
		}
		ts.SetColWidths(widths)
	}
	if len(fit.RowHeights) == numRows {
		heights := make([]int64, numRows)
		for i, h := range fit.RowHeights {
			heights[i] = gopresentation.Inch(h)
		}
		ts.SetRowHeights(heights)
	}

	for r, row := range fit.Rows {
		for c, text := range row {
			cell := ts.Cell(r, c)
			if r == 0 {
				cell.SetText(text, headerFont).SetFill(headerFill)
				continue
			}
			cell.SetText(text, cellFont)
			if cellFill != nil {
				if fill := cellFill(r, c); fill != nil {
					cell.SetFill(fill)
					continue
				}
			}
			if r%2 == 0 {
				cell.SetFill(zebraFill)
			}
		}
	}

	return ts, nil
}

// addCallout drops a short auto-shape text panel into rect, used for
// key-message captions and external-knowledge/applicability notes that
// accompany a table or case study (spec.md §4.8).
func addCallout(slide *gopresentation.Slide, text string, rect *templates.Rect, fill *gopresentation.Fill) {
	if rect == nil || text == "" {
		return
	}
	shape := slide.AddAutoShape()
	placeRect(shape, rect)
	shape.SetShapeType("roundRect")
	if fill != nil {
		shape.SetFill(fill)
	}
	shape.SetText(text, gopresentation.NewFont().SetSize(11).SetItalic(true))
	shape.SetAlignment(gopresentation.NewAlignment().SetVertical(gopresentation.VerticalMiddle))
}

// stringField reads a string-ish value out of a loosely-typed map under any
// of the given keys, returning the first non-empty hit.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := asString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// items normalizes a block's Data into a slice of row-shaped entries: a
// direct array, or an "items" array nested under a wrapper object.
func items(data any) []any {
	if s := dataSlice(data); s != nil {
		return s
	}
	if m := dataMap(data); m != nil {
		if s, ok := m["items"].([]any); ok {
			return s
		}
	}
	return nil
}
