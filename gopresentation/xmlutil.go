package gopresentation

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// writeRawXMLToZip writes a pre-rendered XML string as a ZIP entry.
func writeRawXMLToZip(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}
	_, err = io.WriteString(w, content)
	return err
}

// writeBytesToZip writes raw bytes (images, binary parts) as a ZIP entry.
func writeBytesToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

// readFileFromZip returns the full contents of a named ZIP entry.
func readFileFromZip(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open %q: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry not found: %s", name)
}

// xmlEscape escapes the five predefined XML entities in text content.
func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// lastPathComponent returns the final "/"-delimited segment of p.
func lastPathComponent(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// resolveRelativePath resolves a relationship Target that is relative to
// dir (the owning part's directory) into a package-root path.
func resolveRelativePath(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	joined := path.Join(dir, target)
	return path.Clean(joined)
}
