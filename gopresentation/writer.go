package gopresentation

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// PPTXWriter serializes a Presentation into an OOXML ZIP buffer.
type PPTXWriter struct {
	presentation *Presentation

	// slideMediaRels[n] holds the relationship entries for slide n+1's
	// images/charts, populated while writing each slide's shapes.
	slideMediaRels [][]writerRel
	mediaFiles     map[string][]byte // package path -> bytes, deduped by content hash
	chartCount     int
}

type writerRel struct {
	id     string
	typ    string
	target string
}

// NewWriter creates a writer bound to the given presentation.
func NewWriter(p *Presentation) *PPTXWriter {
	return &PPTXWriter{
		presentation: p,
		mediaFiles:   make(map[string][]byte),
	}
}

// Write serializes the presentation to a ZIP buffer.
func (w *PPTXWriter) Write() ([]byte, error) {
	if err := w.presentation.Validate(); err != nil {
		return nil, fmt.Errorf("presentation invalid: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	n := len(w.presentation.slides)
	w.slideMediaRels = make([][]writerRel, n)

	steps := []func(*zip.Writer) error{
		w.writeContentTypes,
		w.writeRootRels,
		w.writeAppProps,
		w.writeCoreProps,
		w.writePresentation,
		w.writePresentationRels,
		w.writePresProps,
		w.writeViewProps,
		w.writeTableStyles,
		w.writeSlideMaster,
		w.writeSlideLayout,
		w.writeTheme,
		w.writeAllSlides,
		w.writeAllMedia,
	}
	for _, step := range steps {
		if err := step(zw); err != nil {
			_ = zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *PPTXWriter) writeAllSlides(zw *zip.Writer) error {
	for i, slide := range w.presentation.slides {
		if err := w.writeSlide(zw, slide, i+1); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
		if err := w.writeSlideRels(zw, i+1); err != nil {
			return fmt.Errorf("slide %d rels: %w", i+1, err)
		}
	}
	return nil
}

func (w *PPTXWriter) writeAllMedia(zw *zip.Writer) error {
	for name, data := range w.mediaFiles {
		if err := writeBytesToZip(zw, name, data); err != nil {
			return err
		}
	}
	return nil
}

// --- Content Types ---

func (w *PPTXWriter) writeContentTypes(zw *zip.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="%s">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="%s"/>
  <Default Extension="jpeg" ContentType="%s"/>
  <Default Extension="jpg" ContentType="%s"/>
  <Override PartName="/ppt/presentation.xml" ContentType="%s"/>
  <Override PartName="/ppt/presProps.xml" ContentType="%s"/>
  <Override PartName="/ppt/viewProps.xml" ContentType="%s"/>
  <Override PartName="/ppt/tableStyles.xml" ContentType="%s"/>
  <Override PartName="/ppt/theme/theme1.xml" ContentType="%s"/>
  <Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="%s"/>
  <Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="%s"/>
  <Override PartName="/docProps/core.xml" ContentType="%s"/>
  <Override PartName="/docProps/app.xml" ContentType="%s"/>
`, nsContentTypes, ctPNG, ctJPEG, ctJPEG,
		ctPresentation, ctPresProps, ctViewProps, ctTableStyles, ctTheme,
		ctSlideMaster, ctSlideLayout, ctCoreProps, ctExtProps)

	for i := range w.presentation.slides {
		fmt.Fprintf(&b, `  <Override PartName="/ppt/slides/slide%d.xml" ContentType="%s"/>
`, i+1, ctSlide)
	}
	for i := 0; i < w.chartCount; i++ {
		fmt.Fprintf(&b, `  <Override PartName="/ppt/charts/chart%d.xml" ContentType="%s"/>
`, i+1, ctChart)
	}
	b.WriteString(`</Types>`)
	return writeRawXMLToZip(zw, "[Content_Types].xml", b.String())
}

// --- Root relationships ---

func (w *PPTXWriter) writeRootRels(zw *zip.Writer) error {
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="ppt/presentation.xml"/>
  <Relationship Id="rId2" Type="%s" Target="docProps/core.xml"/>
  <Relationship Id="rId3" Type="%s" Target="docProps/app.xml"/>
</Relationships>`, nsRelationships, relTypePackage, relTypeCoreProps, relTypeExtProps)
	return writeRawXMLToZip(zw, "_rels/.rels", content)
}

// --- docProps ---

func (w *PPTXWriter) writeCoreProps(zw *zip.Writer) error {
	p := w.presentation.properties
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title>%s</dc:title>
  <dc:subject>%s</dc:subject>
  <dc:creator>%s</dc:creator>
  <cp:lastModifiedBy>%s</cp:lastModifiedBy>
  <cp:revision>%s</cp:revision>
  <dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>
  <dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>
</cp:coreProperties>`,
		xmlEscape(p.Title), xmlEscape(p.Subject), xmlEscape(p.Creator), xmlEscape(p.LastModifiedBy),
		xmlEscape(p.Revision), p.Created.Format("2006-01-02T15:04:05Z"), p.Modified.Format("2006-01-02T15:04:05Z"))
	return writeRawXMLToZip(zw, "docProps/core.xml", content)
}

func (w *PPTXWriter) writeAppProps(zw *zip.Writer) error {
	n := len(w.presentation.slides)
	content := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">
  <Application>EscortDeck</Application>
  <Slides>%d</Slides>
  <PresentationFormat>On-screen Show (16:9)</PresentationFormat>
</Properties>`, n)
	return writeRawXMLToZip(zw, "docProps/app.xml", content)
}

// --- presentation.xml relationships ---

func (w *PPTXWriter) writePresentationRels(zw *zip.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="slideMasters/slideMaster1.xml"/>
`, nsRelationships, relTypeSlideMaster)
	relIdx := 2
	for i := range w.presentation.slides {
		fmt.Fprintf(&b, `  <Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>
`, relIdx, relTypeSlide, i+1)
		relIdx++
	}
	fmt.Fprintf(&b, `  <Relationship Id="rId%d" Type="%s" Target="presProps.xml"/>
  <Relationship Id="rId%d" Type="%s" Target="viewProps.xml"/>
  <Relationship Id="rId%d" Type="%s" Target="tableStyles.xml"/>
</Relationships>`,
		relIdx, relTypePresProps, relIdx+1, relTypeViewProps, relIdx+2, relTypeTableStyles)
	return writeRawXMLToZip(zw, "ppt/_rels/presentation.xml.rels", b.String())
}
