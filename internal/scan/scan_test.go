package scan

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func cleanPackage() map[string]string {
	return map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="x">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<Relationships>` +
			`<Relationship Id="rId1" Type="t" Target="ppt/presentation.xml"/></Relationships>`,
		"ppt/presentation.xml": `<p:presentation/>`,
		"ppt/_rels/presentation.xml.rels": `<Relationships>` +
			`<Relationship Id="rId1" Type="t" Target="slides/slide1.xml"/></Relationships>`,
		"ppt/slides/slide1.xml": `<p:sld><p:cNvPr id="1" name="Title"/><a:t>` +
			strings.Repeat("enough visible text to clear the sparse threshold ", 2) + `</a:t></p:sld>`,
	}
}

func TestScanCleanPackageHasNoViolations(t *testing.T) {
	raw := buildZip(t, cleanPackage())
	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("expected a clean package to scan clean, got %+v", violations)
	}
}

func TestScanFlagsMissingCriticalPart(t *testing.T) {
	files := cleanPackage()
	delete(files, "ppt/_rels/presentation.xml.rels")
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !hasKind(violations, "missingCriticalPart") {
		t.Errorf("expected a missingCriticalPart violation, got %+v", violations)
	}
}

func TestScanFlagsDanglingRelationship(t *testing.T) {
	files := cleanPackage()
	files["ppt/_rels/presentation.xml.rels"] = `<Relationships>` +
		`<Relationship Id="rId1" Type="t" Target="slides/slide99.xml"/></Relationships>`
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !hasKind(violations, "danglingRelationship") {
		t.Errorf("expected a danglingRelationship violation, got %+v", violations)
	}
}

func TestScanIgnoresExternalHyperlinkTargets(t *testing.T) {
	files := cleanPackage()
	files["ppt/_rels/presentation.xml.rels"] = `<Relationships>` +
		`<Relationship Id="rId1" Type="t" Target="https://example.com/"/></Relationships>`
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if hasKind(violations, "danglingRelationship") {
		t.Errorf("expected an external https target not to be treated as dangling, got %+v", violations)
	}
}

func TestScanFlagsDuplicateRelationshipID(t *testing.T) {
	files := cleanPackage()
	files["ppt/_rels/presentation.xml.rels"] = `<Relationships>` +
		`<Relationship Id="rId1" Type="t" Target="slides/slide1.xml"/>` +
		`<Relationship Id="rId1" Type="t" Target="slides/slide1.xml"/></Relationships>`
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !hasKind(violations, "duplicateRelationshipID") {
		t.Errorf("expected a duplicateRelationshipID violation, got %+v", violations)
	}
}

func TestScanFlagsDuplicateShapeID(t *testing.T) {
	files := cleanPackage()
	files["ppt/slides/slide1.xml"] = `<p:sld><p:cNvPr id="1" name="a"/><p:cNvPr id="1" name="b"/>` +
		`<a:t>` + strings.Repeat("plenty of on-slide text to pass the sparse check here ", 2) + `</a:t></p:sld>`
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !hasKind(violations, "duplicateShapeID") {
		t.Errorf("expected a duplicateShapeID violation, got %+v", violations)
	}
}

func TestScanFlagsContentTypeMismatch(t *testing.T) {
	files := cleanPackage()
	files["ppt/media/image1.png"] = "fakepngbytes"
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !hasKind(violations, "contentTypeMismatch") {
		t.Errorf("expected a contentTypeMismatch violation for an undeclared png, got %+v", violations)
	}
}

func TestScanFlagsSparseSlideOutsideAllowList(t *testing.T) {
	files := cleanPackage()
	files["ppt/slides/slide1.xml"] = `<p:sld><a:t>too short</a:t></p:sld>`
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !hasKind(violations, "sparseSlide") {
		t.Errorf("expected a sparseSlide violation, got %+v", violations)
	}
}

func TestScanAllowsSparseDividerSlide(t *testing.T) {
	files := cleanPackage()
	files["ppt/slides/slide1.xml"] = `<p:sld><a:t>Market</a:t></p:sld>`
	raw := buildZip(t, files)

	violations, err := Scan(raw)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if hasKind(violations, "sparseSlide") {
		t.Errorf("expected an allow-listed divider label not to trip the sparse check, got %+v", violations)
	}
}

func hasKind(violations []Violation, kind string) bool {
	for _, v := range violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}
