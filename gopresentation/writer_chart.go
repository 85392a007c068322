package gopresentation

import (
	"archive/zip"
	"bytes"
	"fmt"
)

func chartGraphicFrameXML(s *ChartShape, rid string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `      <p:graphicFrame>
        <p:nvGraphicFramePr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvGraphicFramePr/>
          <p:nvPr/>
        </p:nvGraphicFramePr>
        <p:xfrm>
          <a:off x="%d" y="%d"/>
          <a:ext cx="%d" cy="%d"/>
        </p:xfrm>
        <a:graphic>
          <a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart">
            <c:chart xmlns:c="%s" r:id="%s"/>
          </a:graphicData>
        </a:graphic>
      </p:graphicFrame>
`, s.id, xmlEscape(s.name), s.x, s.y, s.cx, s.cy, nsChart, rid)
	return b.String()
}

func (w *PPTXWriter) writeChartPart(zw *zip.Writer, s *ChartShape, chartNum int) error {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&b, `<c:chartSpace xmlns:c="%s" xmlns:a="%s" xmlns:r="%s">
  <c:chart>
`, nsChart, nsDrawingML, nsOfficeDocRels)
	if s.title != "" {
		fmt.Fprintf(&b, `    <c:title>
      <c:tx><c:rich><a:bodyPr/><a:lstStyle/><a:p><a:r><a:t>%s</a:t></a:r></a:p></c:rich></c:tx>
      <c:overlay val="0"/>
    </c:title>
    <c:autoTitleDeleted val="0"/>
`, xmlEscape(s.title))
	} else {
		b.WriteString("    <c:autoTitleDeleted val=\"1\"/>\n")
	}
	b.WriteString("    <c:plotArea>\n      <c:layout/>\n")

	chartType := ChartTypeBar
	if s.plotArea.chartType != nil {
		chartType = *s.plotArea.chartType
	}
	b.WriteString(plotAreaBodyXML(chartType, &s.plotArea))

	b.WriteString("    </c:plotArea>\n")
	if s.legend {
		b.WriteString(`    <c:legend><c:legendPos val="b"/><c:overlay val="0"/></c:legend>
`)
	}
	b.WriteString("    <c:plotVisOnly val=\"1\"/>\n")
	b.WriteString("  </c:chart>\n</c:chartSpace>")

	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/charts/chart%d.xml", chartNum), b.String())
}

func plotAreaBodyXML(t ChartType, p *ChartPlotArea) string {
	var b bytes.Buffer
	switch t {
	case ChartTypePie:
		b.WriteString("      <c:pieChart>\n        <c:varyColors val=\"1\"/>\n")
		if len(p.series) > 0 {
			b.WriteString(seriesXML(0, p.series[0], p.categories, false))
		}
		b.WriteString("      </c:pieChart>\n")
	case ChartTypeLine:
		b.WriteString("      <c:lineChart>\n        <c:grouping val=\"standard\"/>\n        <c:varyColors val=\"0\"/>\n")
		for i, ser := range p.series {
			b.WriteString(seriesXML(i, ser, p.categories, false))
		}
		b.WriteString("        <c:marker val=\"1\"/>\n      </c:lineChart>\n")
		b.WriteString(axesXML())
	case ChartTypeBarStacked:
		b.WriteString("      <c:barChart>\n        <c:barDir val=\"col\"/>\n        <c:grouping val=\"stacked\"/>\n        <c:varyColors val=\"0\"/>\n")
		for i, ser := range p.series {
			b.WriteString(seriesXML(i, ser, p.categories, false))
		}
		b.WriteString("        <c:overlap val=\"100\"/>\n      </c:barChart>\n")
		b.WriteString(axesXML())
	default: // ChartTypeBar
		b.WriteString("      <c:barChart>\n        <c:barDir val=\"col\"/>\n        <c:grouping val=\"clustered\"/>\n        <c:varyColors val=\"0\"/>\n")
		for i, ser := range p.series {
			b.WriteString(seriesXML(i, ser, p.categories, false))
		}
		b.WriteString("        <c:overlap val=\"-20\"/>\n      </c:barChart>\n")
		b.WriteString(axesXML())
	}
	return b.String()
}

func axesXML() string {
	return `        <c:catAx>
          <c:axId val="111111111"/>
          <c:scaling><c:orientation val="minMax"/></c:scaling>
          <c:delete val="0"/>
          <c:axPos val="b"/>
          <c:crossAx val="222222222"/>
        </c:catAx>
        <c:valAx>
          <c:axId val="222222222"/>
          <c:scaling><c:orientation val="minMax"/></c:scaling>
          <c:delete val="0"/>
          <c:axPos val="l"/>
          <c:crossAx val="111111111"/>
        </c:valAx>
`
}

func seriesXML(idx int, ser ChartSeries, categories []string, _ bool) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `        <c:ser>
          <c:idx val="%d"/>
          <c:order val="%d"/>
          <c:tx><c:strRef><c:f></c:f><c:strCache><c:ptCount val="1"/><c:pt idx="0"><c:v>%s</c:v></c:pt></c:strCache></c:strRef></c:tx>
`, idx, idx, xmlEscape(ser.Name))
	if ser.Color != nil {
		fmt.Fprintf(&b, `          <c:spPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill></c:spPr>
`, argbToRGB(ser.Color.ARGB))
	}
	if len(categories) > 0 {
		b.WriteString("          <c:cat><c:strRef><c:f></c:f><c:strCache>\n")
		fmt.Fprintf(&b, "            <c:ptCount val=\"%d\"/>\n", len(categories))
		for i, cat := range categories {
			fmt.Fprintf(&b, "            <c:pt idx=\"%d\"><c:v>%s</c:v></c:pt>\n", i, xmlEscape(cat))
		}
		b.WriteString("          </c:strCache></c:strRef></c:cat>\n")
	}
	b.WriteString("          <c:val><c:numRef><c:f></c:f><c:numCache>\n")
	fmt.Fprintf(&b, "            <c:formatCode>General</c:formatCode>\n            <c:ptCount val=\"%d\"/>\n", len(ser.Values))
	for i, v := range ser.Values {
		fmt.Fprintf(&b, "            <c:pt idx=\"%d\"><c:v>%g</c:v></c:pt>\n", i, v)
	}
	b.WriteString("          </c:numCache></c:numRef></c:val>\n")
	b.WriteString("        </c:ser>\n")
	return b.String()
}
