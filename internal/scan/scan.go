// Package scan implements the relationship & consistency scanner (spec.md
// §4.11): a second, independent ZIP pass over the reconciled package that
// looks for the structural defects a reader program chokes on — missing
// critical parts, duplicate ids, dangling relationship targets, and
// content-type mismatches — plus the sparse-slide text audit. Unlike the
// dangling-relationship idiom in the wider ecosystem (preserve a dangling
// rel so the file still opens), this scanner's contract is the opposite:
// any of these is a hard failure, since a byte-faithful deck that doesn't
// open cleanly in PowerPoint has already failed its one job.
package scan

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Violation is one structural defect found in the package.
type Violation struct {
	Kind   string
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
}

var criticalParts = []string{
	"[Content_Types].xml",
	"_rels/.rels",
	"ppt/presentation.xml",
	"ppt/_rels/presentation.xml.rels",
}

type relationshipsXML struct {
	XMLName       xml.Name   `xml:"Relationships"`
	Relationships []relEntry `xml:"Relationship"`
}

type relEntry struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// Scan parses pptx as a ZIP archive and checks it for every defect class
// spec.md §4.11 names. It does not use gopresentation's reader, since the
// point of this pass is to catch mistakes the reader's own assumptions
// might silently paper over.
func Scan(pptx []byte) ([]Violation, error) {
	zr, err := zip.NewReader(bytes.NewReader(pptx), int64(len(pptx)))
	if err != nil {
		return nil, fmt.Errorf("scan: open package: %w", err)
	}

	members := make(map[string][]byte, len(zr.File))
	seenNames := map[string]int{}
	for _, f := range zr.File {
		seenNames[f.Name]++
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("scan: open %s: %w", f.Name, err)
		}
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			rc.Close()
			return nil, fmt.Errorf("scan: read %s: %w", f.Name, err)
		}
		rc.Close()
		members[f.Name] = buf.Bytes()
	}

	var violations []Violation

	for name, count := range seenNames {
		if count > 1 {
			violations = append(violations, Violation{Kind: "duplicateZipEntry", Detail: name})
		}
	}

	for _, p := range criticalParts {
		if _, ok := members[p]; !ok {
			violations = append(violations, Violation{Kind: "missingCriticalPart", Detail: p})
		}
	}

	violations = append(violations, checkDanglingRelationships(members)...)
	violations = append(violations, checkDuplicateIDs(members)...)
	violations = append(violations, checkContentTypeCoverage(members)...)
	violations = append(violations, checkSparseSlides(members)...)

	return violations, nil
}

// checkDanglingRelationships parses every .rels part and confirms each
// relationship's Target resolves to a member that actually exists in the
// package (spec.md §4.11 "dangling refs", "dangling/missing overrides").
func checkDanglingRelationships(members map[string][]byte) []Violation {
	var violations []Violation
	for name, data := range members {
		if !strings.HasSuffix(name, ".rels") {
			continue
		}
		var parsed relationshipsXML
		if err := xml.Unmarshal(data, &parsed); err != nil {
			violations = append(violations, Violation{Kind: "malformedRelationshipsPart", Detail: name})
			continue
		}
		baseDir := relsOwnerDir(name)
		seenIDs := map[string]int{}
		for _, rel := range parsed.Relationships {
			seenIDs[rel.ID]++
			if strings.HasPrefix(rel.Target, "http://") || strings.HasPrefix(rel.Target, "https://") {
				continue // external targets (hyperlinks) are not package members
			}
			resolved := path.Clean(path.Join(baseDir, rel.Target))
			resolved = strings.TrimPrefix(resolved, "/")
			if _, ok := members[resolved]; !ok {
				violations = append(violations, Violation{
					Kind:   "danglingRelationship",
					Detail: fmt.Sprintf("%s: rel %s -> %s (resolved %s) has no matching package part", name, rel.ID, rel.Target, resolved),
				})
			}
		}
		for id, count := range seenIDs {
			if count > 1 {
				violations = append(violations, Violation{
					Kind:   "duplicateRelationshipID",
					Detail: fmt.Sprintf("%s: relationship id %s appears %d times", name, id, count),
				})
			}
		}
	}
	return violations
}

// relsOwnerDir returns the directory a .rels part's relative targets are
// resolved against: "ppt/_rels/presentation.xml.rels" resolves relative
// to "ppt/", "ppt/slides/_rels/slide1.xml.rels" resolves relative to
// "ppt/slides/".
func relsOwnerDir(relsPath string) string {
	dir := path.Dir(relsPath) // ".../_rels"
	return path.Dir(dir)
}

var cNvPrIDPattern = regexp.MustCompile(`<p:cNvPr[^>]*\bid="(\d+)"`)

// checkDuplicateIDs confirms every non-visual shape id is unique within
// its owning slide part (PowerPoint itself requires this per-slide, not
// just per-package — spec.md §4.11 "duplicate ... shape ids").
func checkDuplicateIDs(members map[string][]byte) []Violation {
	var violations []Violation
	for name, data := range members {
		if !strings.HasPrefix(name, "ppt/slides/slide") || strings.HasSuffix(name, ".rels") {
			continue
		}
		seen := map[string]int{}
		for _, m := range cNvPrIDPattern.FindAllSubmatch(data, -1) {
			seen[string(m[1])]++
		}
		for id, count := range seen {
			if count > 1 {
				violations = append(violations, Violation{
					Kind:   "duplicateShapeID",
					Detail: fmt.Sprintf("%s: shape id %s appears %d times", name, id, count),
				})
			}
		}
	}
	return violations
}

var extensionPattern = regexp.MustCompile(`Extension="([^"]+)"`)
var overridePattern = regexp.MustCompile(`PartName="([^"]+)"`)

// checkContentTypeCoverage confirms every XML/media part in the package
// either matches a Default extension entry or has its own Override in
// [Content_Types].xml (spec.md §4.11 "content-type mismatches").
func checkContentTypeCoverage(members map[string][]byte) []Violation {
	ct, ok := members["[Content_Types].xml"]
	if !ok {
		return nil
	}
	declaredExt := map[string]bool{}
	for _, m := range extensionPattern.FindAllSubmatch(ct, -1) {
		declaredExt[strings.ToLower(string(m[1]))] = true
	}
	declaredOverride := map[string]bool{}
	for _, m := range overridePattern.FindAllSubmatch(ct, -1) {
		declaredOverride[string(m[1])] = true
	}

	var violations []Violation
	for name := range members {
		if name == "[Content_Types].xml" {
			continue
		}
		ext := strings.ToLower(extOf(name))
		if declaredExt[ext] {
			continue
		}
		if declaredOverride["/"+name] {
			continue
		}
		violations = append(violations, Violation{
			Kind:   "contentTypeMismatch",
			Detail: fmt.Sprintf("%s has neither a Default extension nor an Override entry", name),
		})
	}
	return violations
}

func extOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}

// sparseSlideAllowList matches the fixed set of short, intentionally
// sparse labels the reference deck uses for section dividers and table of
// contents entries (spec.md §4.11 "sparse-slide audit"): these must not
// trip the minimum-content-length check.
var sparseSlideAllowList = regexp.MustCompile(`(?i)^(policy|market|competitors|depth|table of contents|contents|agenda)\b`)

const sparseSlideCharThreshold = 60

var textRunPattern = regexp.MustCompile(`<a:t>([^<]*)</a:t>`)

// checkSparseSlides flags any slide whose total visible text falls below
// the sparse-slide threshold and is not on the section-divider/TOC allow
// list — almost always a sign a renderer silently produced an empty
// placeholder slide (spec.md §4.11).
func checkSparseSlides(members map[string][]byte) []Violation {
	var violations []Violation
	for name, data := range members {
		if !strings.HasPrefix(name, "ppt/slides/slide") || strings.HasSuffix(name, ".rels") {
			continue
		}
		var total strings.Builder
		for _, m := range textRunPattern.FindAllSubmatch(data, -1) {
			total.Write(m[1])
		}
		text := strings.TrimSpace(total.String())
		if len(text) >= sparseSlideCharThreshold {
			continue
		}
		if sparseSlideAllowList.MatchString(text) {
			continue
		}
		violations = append(violations, Violation{
			Kind:   "sparseSlide",
			Detail: fmt.Sprintf("%s has only %d chars of visible text and is not an allowed divider/TOC label", name, len(text)),
		})
	}
	return violations
}
