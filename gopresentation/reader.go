package gopresentation

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// ReaderKind selects the package format a PPTXReader understands. There is
// only one today; the type exists so the constructor signature does not need
// to change if a second format (e.g. .potx templates) is added later.
type ReaderKind int

// ReaderPowerPoint2007 is the OOXML .pptx format introduced in Office 2007.
const ReaderPowerPoint2007 ReaderKind = iota

// PPTXReader reconstructs a Presentation from an existing .pptx package. It
// is the inverse of PPTXWriter: used to reload a written deck so
// internal/audit can check it against the template contract's invariants.
type PPTXReader struct {
	kind ReaderKind
}

// NewReader constructs a PPTXReader for the given package kind.
func NewReader(kind ReaderKind) *PPTXReader {
	return &PPTXReader{kind: kind}
}

// xmlRelForRead is one entry from a _rels/*.rels part.
type xmlRelForRead struct {
	ID     string
	Type   string
	Target string
}

type xmlRelationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []xmlRelEntry `xml:"Relationship"`
}

type xmlRelEntry struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// readRelationships parses the .rels part at relsPath, returning an empty
// slice (not an error) when the part does not exist — most parts have no
// relationships at all.
func (r *PPTXReader) readRelationships(zr *zip.Reader, relsPath string) ([]xmlRelForRead, error) {
	data, err := readFileFromZip(zr, relsPath)
	if err != nil {
		return nil, nil
	}

	var parsed xmlRelationships
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", relsPath, err)
	}

	rels := make([]xmlRelForRead, 0, len(parsed.Relationships))
	for _, rel := range parsed.Relationships {
		rels = append(rels, xmlRelForRead{ID: rel.ID, Type: rel.Type, Target: rel.Target})
	}
	return rels, nil
}

// Read opens a .pptx file and reconstructs a Presentation from it.
func (r *PPTXReader) Read(path string) (*Presentation, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	return r.read(&zr.Reader)
}

// ReadBytes reconstructs a Presentation from an in-memory .pptx package,
// used by internal/audit when re-reading a deck produced in the same
// pipeline run without round-tripping through disk.
func (r *PPTXReader) ReadBytes(data []byte) (*Presentation, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	return r.read(zr)
}

func (r *PPTXReader) read(zr *zip.Reader) (*Presentation, error) {
	pres := NewPresentation()

	if err := r.readCoreProperties(zr, pres); err != nil {
		return nil, fmt.Errorf("read core properties: %w", err)
	}

	slideRelIDs, err := r.readPresentation(zr, pres)
	if err != nil {
		return nil, fmt.Errorf("read presentation.xml: %w", err)
	}

	presRels, err := r.readRelationships(zr, "ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil, fmt.Errorf("read presentation.xml.rels: %w", err)
	}
	targetByID := make(map[string]string, len(presRels))
	for _, rel := range presRels {
		targetByID[rel.ID] = rel.Target
	}

	slidePaths := make([]string, 0, len(slideRelIDs))
	if len(slideRelIDs) > 0 {
		for _, rid := range slideRelIDs {
			target, ok := targetByID[rid]
			if !ok {
				continue
			}
			slidePaths = append(slidePaths, resolveRelativePath("ppt", target))
		}
	} else {
		for _, rel := range presRels {
			if rel.Type == relTypeSlide {
				slidePaths = append(slidePaths, resolveRelativePath("ppt", rel.Target))
			}
		}
	}

	for _, sp := range slidePaths {
		slide, err := r.readSlide(zr, sp, pres)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sp, err)
		}
		pres.slides = append(pres.slides, slide)
	}

	return pres, nil
}

// readAllText concatenates every <a:t> text run under the given XML part.
// Nothing in this module calls it.
func readAllText(data []byte) string {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	var inText bool
	var texts []string
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				texts = append(texts, string(t))
			}
		}
	}
	return strings.Join(texts, "")
}
