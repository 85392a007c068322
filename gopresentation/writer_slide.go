package gopresentation

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

func (w *PPTXWriter) writeSlide(zw *zip.Writer, slide *Slide, slideNum int) error {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`+"\n", nsDrawingML, nsOfficeDocRels, nsPresentationML)
	b.WriteString("  <p:cSld>\n")
	if slide.background != nil {
		b.WriteString(bgXML(slide.background))
	}
	b.WriteString("    <p:spTree>\n")
	b.WriteString(`      <p:nvGrpSpPr>
        <p:cNvPr id="1" name=""/>
        <p:cNvGrpSpPr/>
        <p:nvPr/>
      </p:nvGrpSpPr>
      <p:grpSpPr>
        <a:xfrm>
          <a:off x="0" y="0"/>
          <a:ext cx="0" cy="0"/>
          <a:chOff x="0" y="0"/>
          <a:chExt cx="0" cy="0"/>
        </a:xfrm>
      </p:grpSpPr>
`)

	relIdx := 1
	for _, shape := range slide.shapes {
		switch sh := shape.(type) {
		case *RichTextShape:
			b.WriteString(richTextXML(sh))
		case *PlaceholderShape:
			b.WriteString(placeholderXML(sh))
		case *AutoShape:
			b.WriteString(autoShapeXML(sh))
		case *LineShape:
			b.WriteString(lineShapeXML(sh))
		case *TableShape:
			b.WriteString(tableGraphicFrameXML(sh))
		case *ChartShape:
			rid := fmt.Sprintf("rId%d", relIdx)
			relIdx++
			w.chartCount++
			chartNum := w.chartCount
			b.WriteString(chartGraphicFrameXML(sh, rid))
			w.slideMediaRels[slideNum-1] = append(w.slideMediaRels[slideNum-1], writerRel{
				id: rid, typ: relTypeChart, target: fmt.Sprintf("../charts/chart%d.xml", chartNum),
			})
			if err := w.writeChartPart(zw, sh, chartNum); err != nil {
				return err
			}
		case *DrawingShape:
			rid := fmt.Sprintf("rId%d", relIdx)
			relIdx++
			mediaPath := w.storeMedia(sh.data, sh.mimeType)
			b.WriteString(pictureXML(sh, rid))
			w.slideMediaRels[slideNum-1] = append(w.slideMediaRels[slideNum-1], writerRel{
				id: rid, typ: relTypeImage, target: "../media/" + mediaPath,
			})
		case *GroupShape:
			for _, child := range sh.shapes {
				switch csh := child.(type) {
				case *RichTextShape:
					b.WriteString(richTextXML(csh))
				case *AutoShape:
					b.WriteString(autoShapeXML(csh))
				case *LineShape:
					b.WriteString(lineShapeXML(csh))
				}
			}
		}
	}

	b.WriteString("    </p:spTree>\n")
	b.WriteString("  </p:cSld>\n")
	b.WriteString("  <p:clrMapOvr><a:overrideClrMapping bg1=\"lt1\" tx1=\"dk1\" bg2=\"lt2\" tx2=\"dk2\" accent1=\"accent1\" accent2=\"accent2\" accent3=\"accent3\" accent4=\"accent4\" accent5=\"accent5\" accent6=\"accent6\" hlink=\"hlink\" folHlink=\"folHlink\"/></p:clrMapOvr>\n")
	b.WriteString("</p:sld>")

	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/slides/slide%d.xml", slideNum), b.String())
}

func (w *PPTXWriter) writeSlideRels(zw *zip.Writer, slideNum int) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rIdLayout" Type="%s" Target="../slideLayouts/slideLayout1.xml"/>
`, nsRelationships, relTypeSlideLayout)
	for _, rel := range w.slideMediaRels[slideNum-1] {
		fmt.Fprintf(&b, `  <Relationship Id="%s" Type="%s" Target="%s"/>
`, rel.id, rel.typ, rel.target)
	}
	b.WriteString(`</Relationships>`)
	return writeRawXMLToZip(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slideNum), b.String())
}

// storeMedia dedupes identical image bytes by content hash and returns the
// media part's file name (e.g. "image3a9c0f12d4e7.png").
func (w *PPTXWriter) storeMedia(data []byte, mimeType string) string {
	sum := sha1.Sum(data)
	hash := hex.EncodeToString(sum[:6])
	ext := "png"
	switch mimeType {
	case "image/jpeg":
		ext = "jpeg"
	case "image/gif":
		ext = "gif"
	}
	name := fmt.Sprintf("image%s.%s", hash, ext)
	path := "ppt/media/" + name
	if _, ok := w.mediaFiles[path]; !ok {
		w.mediaFiles[path] = data
	}
	return name
}

func bgXML(f *Fill) string {
	return "    <p:bg>\n      <p:bgPr>\n" + fillXML(f) + "        <a:effectLst/>\n      </p:bgPr>\n    </p:bg>\n"
}

func fillXML(f *Fill) string {
	if f == nil || f.Type == FillNone {
		return "        <a:noFill/>\n"
	}
	switch f.Type {
	case FillSolid:
		return fmt.Sprintf("        <a:solidFill><a:srgbClr val=\"%s\"/></a:solidFill>\n", argbToRGB(f.Color.ARGB))
	case FillGradientLinear:
		return fmt.Sprintf(`        <a:gradFill rotWithShape="1">
          <a:gsLst>
            <a:gs pos="0"><a:srgbClr val="%s"/></a:gs>
            <a:gs pos="100000"><a:srgbClr val="%s"/></a:gs>
          </a:gsLst>
          <a:lin ang="%d" scaled="0"/>
        </a:gradFill>
`, argbToRGB(f.Color.ARGB), argbToRGB(f.EndColor.ARGB), f.Rotation*60000)
	default:
		return "        <a:noFill/>\n"
	}
}

func argbToRGB(argb string) string {
	if len(argb) == 8 {
		return argb[2:]
	}
	return argb
}

func xfrmXML(x, y, cx, cy int64) string {
	return fmt.Sprintf(`        <a:xfrm>
          <a:off x="%d" y="%d"/>
          <a:ext cx="%d" cy="%d"/>
        </a:xfrm>
`, x, y, cx, cy)
}

func paragraphsXML(paragraphs []Paragraph) string {
	var b bytes.Buffer
	b.WriteString("        <p:txBody>\n          <a:bodyPr wrap=\"square\"/>\n          <a:lstStyle/>\n")
	if len(paragraphs) == 0 {
		b.WriteString("          <a:p/>\n")
	}
	for _, p := range paragraphs {
		b.WriteString("          <a:p>\n")
		if p.Alignment != nil || p.Bullet != nil {
			b.WriteString("            " + pPrXML(p.Alignment, p.Bullet) + "\n")
		}
		for _, r := range p.Runs {
			b.WriteString("            " + runXML(r) + "\n")
		}
		b.WriteString("          </a:p>\n")
	}
	b.WriteString("        </p:txBody>\n")
	return b.String()
}

func pPrXML(a *Alignment, bullet *Bullet) string {
	attrs := ""
	if a != nil {
		attrs += fmt.Sprintf(` algn="%s"`, a.Horizontal)
		if a.MarginLeft > 0 {
			attrs += fmt.Sprintf(` marL="%d"`, a.MarginLeft)
		}
		if a.Indent != 0 {
			attrs += fmt.Sprintf(` indent="%d"`, a.Indent)
		}
		if a.Level > 0 {
			attrs += fmt.Sprintf(` lvl="%d"`, a.Level)
		}
	}
	inner := ""
	if bullet != nil {
		inner = bulletXML(bullet)
	}
	if inner == "" {
		return fmt.Sprintf("<a:pPr%s/>", attrs)
	}
	return fmt.Sprintf("<a:pPr%s>%s</a:pPr>", attrs, inner)
}

func bulletXML(b *Bullet) string {
	switch b.Type {
	case BulletTypeChar:
		font := b.Font
		if font == "" {
			font = "Arial"
		}
		return fmt.Sprintf(`<a:buFont typeface="%s"/><a:buChar char="%s"/>`, xmlEscape(font), xmlEscape(b.Style))
	case BulletTypeNumeric, BulletTypeAutoNum:
		return fmt.Sprintf(`<a:buAutoNum type="%s" startAt="%d"/>`, b.NumFormat, b.StartAt)
	default:
		return `<a:buNone/>`
	}
}

func runXML(r Run) string {
	rPr := ""
	if r.Font != nil {
		rPr = fontRPrXML(r.Font)
	}
	if rPr == "" {
		return fmt.Sprintf(`<a:r><a:t>%s</a:t></a:r>`, xmlEscape(r.Text))
	}
	return fmt.Sprintf(`<a:r>%s<a:t>%s</a:t></a:r>`, rPr, xmlEscape(r.Text))
}

func fontRPrXML(f *Font) string {
	bold := 0
	if f.Bold {
		bold = 1
	}
	italic := 0
	if f.Italic {
		italic = 1
	}
	strike := "noStrike"
	if f.Strikethrough {
		strike = "sngStrike"
	}
	return fmt.Sprintf(`<a:rPr lang="en-US" sz="%d" b="%d" i="%d" strike="%s" u="%s"><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr>`,
		f.Size*100, bold, italic, strike, f.Underline, argbToRGB(f.Color.ARGB), xmlEscape(f.Name))
}

func richTextXML(s *RichTextShape) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvSpPr txBox="1"/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
`, s.id, xmlEscape(s.name))
	b.WriteString(xfrmXML(s.x, s.y, s.cx, s.cy))
	b.WriteString(`          <a:prstGeom prst="rect"><a:avLst/></a:prstGeom>
`)
	if s.fill != nil {
		b.WriteString(fillXML(s.fill))
	}
	b.WriteString("        </p:spPr>\n")
	b.WriteString(paragraphsXML(s.paragraphs))
	b.WriteString("      </p:sp>\n")
	return b.String()
}

func placeholderXML(s *PlaceholderShape) string {
	var b bytes.Buffer
	phType := placeholderTypeAttr(s.phType)
	fmt.Fprintf(&b, `      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>
          <p:nvPr><p:ph type="%s" idx="%d"/></p:nvPr>
        </p:nvSpPr>
        <p:spPr>
`, s.id, xmlEscape(s.name), phType, s.phIdx)
	b.WriteString(xfrmXML(s.x, s.y, s.cx, s.cy))
	b.WriteString("        </p:spPr>\n")
	b.WriteString(paragraphsXML(s.paragraphs))
	b.WriteString("      </p:sp>\n")
	return b.String()
}

func placeholderTypeAttr(t PlaceholderType) string {
	switch t {
	case PlaceholderTitle:
		return "title"
	case PlaceholderCenteredTitle:
		return "ctrTitle"
	case PlaceholderSubTitle:
		return "subTitle"
	case PlaceholderFooter:
		return "ftr"
	case PlaceholderSource:
		return "body"
	default:
		return "body"
	}
}

func autoShapeXML(s *AutoShape) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvSpPr/>
          <p:nvPr/>
        </p:nvSpPr>
        <p:spPr>
`, s.id, xmlEscape(s.name))
	b.WriteString(xfrmXML(s.x, s.y, s.cx, s.cy))
	fmt.Fprintf(&b, `          <a:prstGeom prst="%s"><a:avLst/></a:prstGeom>
`, shapeTypeOrDefault(s.shapeType))
	if s.fill != nil {
		b.WriteString(fillXML(s.fill))
	}
	if s.border != nil && s.border.Style != BorderNone {
		fmt.Fprintf(&b, `          <a:ln w="%d"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:ln>
`, s.border.Width, argbToRGB(s.border.Color.ARGB))
	}
	b.WriteString("        </p:spPr>\n")
	if s.text != "" {
		p := Paragraph{Alignment: s.alignment, Runs: []Run{{Text: s.text, Font: s.font}}}
		b.WriteString(paragraphsXML([]Paragraph{p}))
	} else {
		b.WriteString("        <p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody>\n")
	}
	b.WriteString("      </p:sp>\n")
	return b.String()
}

func shapeTypeOrDefault(t string) string {
	if t == "" {
		return "rect"
	}
	return t
}

func lineShapeXML(s *LineShape) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `      <p:cxnSp>
        <p:nvCxnSpPr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvCxnSpPr/>
          <p:nvPr/>
        </p:nvCxnSpPr>
        <p:spPr>
`, s.id, xmlEscape(s.name))
	b.WriteString(xfrmXML(s.x, s.y, s.cx, s.cy))
	b.WriteString(`          <a:prstGeom prst="line"><a:avLst/></a:prstGeom>
`)
	if s.border != nil {
		fmt.Fprintf(&b, `          <a:ln w="%d"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:ln>
`, s.border.Width, argbToRGB(s.border.Color.ARGB))
	}
	b.WriteString("        </p:spPr>\n      </p:cxnSp>\n")
	return b.String()
}

func pictureXML(s *DrawingShape, rid string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `      <p:pic>
        <p:nvPicPr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvPicPr/>
          <p:nvPr/>
        </p:nvPicPr>
        <p:blipFill>
          <a:blip r:embed="%s"/>
          <a:stretch><a:fillRect/></a:stretch>
        </p:blipFill>
        <p:spPr>
`, s.id, xmlEscape(s.name), rid)
	b.WriteString(xfrmXML(s.x, s.y, s.cx, s.cy))
	b.WriteString(`          <a:prstGeom prst="rect"><a:avLst/></a:prstGeom>
        </p:spPr>
      </p:pic>
`)
	return b.String()
}
