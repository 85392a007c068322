package gopresentation

import (
	"bytes"
	"fmt"
)

// tableGraphicFrameXML renders a TableShape as a p:graphicFrame wrapping an
// a:tbl. Column widths / row heights come from the shape's EMU slices,
// defaulting to an even split of the shape's overall geometry when unset —
// the table flex engine (internal/tableflex) is expected to always set
// them explicitly before the shape reaches the writer.
func tableGraphicFrameXML(t *TableShape) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `      <p:graphicFrame>
        <p:nvGraphicFramePr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr>
          <p:nvPr/>
        </p:nvGraphicFramePr>
`, t.id, xmlEscape(t.name))
	fmt.Fprintf(&b, `        <p:xfrm>
          <a:off x="%d" y="%d"/>
          <a:ext cx="%d" cy="%d"/>
        </p:xfrm>
`, t.x, t.y, t.cx, t.cy)
	b.WriteString(`        <a:graphic>
          <a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">
            <a:tbl>
              <a:tblPr firstRow="1" bandRow="1">
                <a:tableStyleId>{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}</a:tableStyleId>
              </a:tblPr>
              <a:tblGrid>
`)
	colWidths := t.colWidths
	if len(colWidths) != t.numCols {
		colWidths = evenSplit(t.cx, t.numCols)
	}
	for _, w := range colWidths {
		fmt.Fprintf(&b, `                <a:gridCol w="%d"/>
`, w)
	}
	b.WriteString("              </a:tblGrid>\n")

	rowHeights := t.rowHeights
	if len(rowHeights) != t.numRows {
		rowHeights = evenSplit(t.cy, t.numRows)
	}
	for r := 0; r < t.numRows; r++ {
		fmt.Fprintf(&b, `              <a:tr h="%d">
`, rowHeights[r])
		for c := 0; c < t.numCols; c++ {
			b.WriteString(tableCellXML(t.rows[r][c]))
		}
		b.WriteString("              </a:tr>\n")
	}
	b.WriteString(`            </a:tbl>
          </a:graphicData>
        </a:graphic>
      </p:graphicFrame>
`)
	return b.String()
}

func tableCellXML(cell *TableCell) string {
	var b bytes.Buffer
	left, top, right, bottom := cell.Margins()
	fmt.Fprintf(&b, `                <a:tc>
                  <a:txBody>
                    <a:bodyPr/>
                    <a:lstStyle/>
`)
	for _, p := range cell.paragraphs {
		b.WriteString("                    <a:p>")
		if p.Alignment != nil {
			b.WriteString(pPrXML(p.Alignment, p.Bullet))
		}
		for _, r := range p.Runs {
			b.WriteString(runXML(r))
		}
		b.WriteString("</a:p>\n")
	}
	fmt.Fprintf(&b, `                  </a:txBody>
                  <a:tcPr marL="%d" marT="%d" marR="%d" marB="%d" anchor="%s"`,
		left, top, right, bottom, cell.vAlign)
	if cell.gridSpan > 1 {
		fmt.Fprintf(&b, ` gridSpan="%d"`, cell.gridSpan)
	}
	b.WriteString(">\n")
	if cell.fill != nil {
		b.WriteString(fillXML(cell.fill))
	}
	b.WriteString("                  </a:tcPr>\n                </a:tc>\n")
	return b.String()
}

func evenSplit(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	out := make([]int64, n)
	each := total / int64(n)
	for i := range out {
		out[i] = each
	}
	out[n-1] += total - each*int64(n)
	return out
}
