package postprocess

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
	// deterministic order matters for the dedupe-id test
	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/media/image1.png",
	} {
		content, ok := files[name]
		if !ok {
			continue
		}
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

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		buf := new(bytes.Buffer)
		buf.ReadFrom(rc)
		rc.Close()
		out[f.Name] = buf.String()
	}
	return out
}

func TestReconcileRewritesAbsoluteRelTargets(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"[Content_Types].xml":             `<?xml version="1.0"?><Types xmlns="x"></Types>`,
		"_rels/.rels":                     `<?xml version="1.0"?><Relationships></Relationships>`,
		"ppt/presentation.xml":            `<p:presentation/>`,
		"ppt/_rels/presentation.xml.rels": `<Relationships><Relationship Id="rId1" Target="/ppt/media/image1.png"/></Relationships>`,
		"ppt/slides/slide1.xml":           `<p:sld/>`,
		"ppt/media/image1.png":            "fakepngbytes",
	})

	out, err := Reconcile(raw)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	parts := readZip(t, out)
	rels := parts["ppt/_rels/presentation.xml.rels"]
	if strings.Contains(rels, `Target="/`) {
		t.Errorf("expected absolute target rewritten, got %q", rels)
	}
	if !strings.Contains(rels, `Target="../ppt/media/image1.png"`) {
		t.Errorf("expected a package-relative target, got %q", rels)
	}
}

func TestReconcileDedupesNonVisualShapeIDs(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"[Content_Types].xml":  `<?xml version="1.0"?><Types xmlns="x"></Types>`,
		"_rels/.rels":          `<?xml version="1.0"?><Relationships></Relationships>`,
		"ppt/presentation.xml": `<p:presentation/>`,
		"ppt/slides/slide1.xml": `<p:sld><p:cNvPr id="1" name="a"/><p:cNvPr id="1" name="b"/></p:sld>`,
		"ppt/slides/slide2.xml": `<p:sld><p:cNvPr id="1" name="c"/></p:sld>`,
	})

	out, err := Reconcile(raw)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	parts := readZip(t, out)
	ids := cNvPrIDPattern.FindAllStringSubmatch(parts["ppt/slides/slide1.xml"]+parts["ppt/slides/slide2.xml"], -1)
	seen := map[string]bool{}
	for _, m := range ids {
		if seen[m[2]] {
			t.Fatalf("expected unique ids across slides, found duplicate %q", m[2])
		}
		seen[m[2]] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct renumbered ids, got %d", len(seen))
	}
}

func TestReconcileAddsMissingContentTypeOverride(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"[Content_Types].xml":  `<?xml version="1.0"?><Types xmlns="x"></Types>`,
		"_rels/.rels":          `<?xml version="1.0"?><Relationships></Relationships>`,
		"ppt/presentation.xml": `<p:presentation/>`,
		"ppt/media/image1.png": "fakepngbytes",
	})

	out, err := Reconcile(raw)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	parts := readZip(t, out)
	ct := parts["[Content_Types].xml"]
	if !strings.Contains(ct, `PartName="/ppt/media/image1.png"`) {
		t.Errorf("expected a content-type entry added for the unreferenced png, got %q", ct)
	}
}

func TestReconcileIsStableWhenNothingNeedsFixing(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="x">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/ppt/presentation.xml" ContentType="application/xml"/></Types>`,
		"_rels/.rels":          `<?xml version="1.0"?><Relationships></Relationships>`,
		"ppt/presentation.xml": `<p:presentation/>`,
	})

	out1, err := Reconcile(raw)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	out2, err := Reconcile(out1)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	p1 := readZip(t, out1)
	p2 := readZip(t, out2)
	if p1["[Content_Types].xml"] != p2["[Content_Types].xml"] {
		t.Error("expected Reconcile to be idempotent on an already-clean package")
	}
}
