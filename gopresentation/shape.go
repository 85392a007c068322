package gopresentation

import (
	"fmt"
	"os"
)

// Shape is the common interface implemented by every object that can be
// placed on a slide. All geometry is in EMU (see measurement.go).
type Shape interface {
	GetID() int
	GetName() string
	GetX() int64
	GetY() int64
	GetWidth() int64
	GetHeight() int64
	SetPosition(x, y int64)
	SetSize(cx, cy int64)
}

var shapeIDSeq int

func nextShapeID() int {
	shapeIDSeq++
	return shapeIDSeq
}

// baseShape carries the non-visual properties and geometry shared by every
// shape kind: id, name, position, size, fill/border/shadow/hyperlink.
type baseShape struct {
	id          int
	name        string
	description string
	x, y        int64
	cx, cy      int64
	fill        *Fill
	border      *Border
	shadow      *Shadow
	hyperlink   *Hyperlink
}

func newBaseShape(name string) baseShape {
	return baseShape{id: nextShapeID(), name: name}
}

func (b *baseShape) GetID() int         { return b.id }
func (b *baseShape) GetName() string    { return b.name }
func (b *baseShape) GetX() int64        { return b.x }
func (b *baseShape) GetY() int64        { return b.y }
func (b *baseShape) GetWidth() int64    { return b.cx }
func (b *baseShape) GetHeight() int64   { return b.cy }
func (b *baseShape) SetPosition(x, y int64) {
	b.x, b.y = x, y
}
func (b *baseShape) SetSize(cx, cy int64) {
	b.cx, b.cy = cx, cy
}
func (b *baseShape) SetFill(f *Fill) { b.fill = f }
func (b *baseShape) SetBorder(bd *Border) { b.border = bd }
func (b *baseShape) SetShadow(s *Shadow) { b.shadow = s }
func (b *baseShape) SetHyperlink(h *Hyperlink) { b.hyperlink = h }

// --- Paragraphs / Runs (shared by RichTextShape, TableCell, AutoShape) ---

// Run is a single formatted text run inside a paragraph.
type Run struct {
	Text      string
	Font      *Font
	Hyperlink *Hyperlink
}

// Paragraph is a line of one or more runs plus paragraph-level formatting.
type Paragraph struct {
	Runs      []Run
	Alignment *Alignment
	Bullet    *Bullet
}

// AddRun appends a text run to the paragraph and returns it for chaining.
func (p *Paragraph) AddRun(text string, font *Font) *Paragraph {
	p.Runs = append(p.Runs, Run{Text: text, Font: font})
	return p
}

// NewParagraph creates an empty paragraph, used by the reader while
// reconstructing a Presentation from an existing .pptx package.
func NewParagraph() *Paragraph {
	return &Paragraph{}
}

// CreateTextRun appends a run and returns it for immediate field assignment.
// Callers must finish mutating the returned run before appending another —
// the pointer is only valid until the next CreateTextRun/CreateBreak call.
func (p *Paragraph) CreateTextRun(text string) *Run {
	p.Runs = append(p.Runs, Run{Text: text})
	return &p.Runs[len(p.Runs)-1]
}

// CreateBreak appends a hard line break run.
func (p *Paragraph) CreateBreak() *Run {
	return p.CreateTextRun("\v")
}

func extractParagraphsText(paragraphs []Paragraph) []string {
	var out []string
	for _, p := range paragraphs {
		var line string
		for _, r := range p.Runs {
			line += r.Text
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
		_ = i
	}
	return out
}

// --- RichTextShape ---

// RichTextShape is a free-standing text box (title, callout, insight panel).
type RichTextShape struct {
	baseShape
	paragraphs []Paragraph
	wrap       bool
	autoFit    bool
}

// NewRichTextShape creates an empty text box.
func NewRichTextShape() *RichTextShape {
	return &RichTextShape{baseShape: newBaseShape("TextBox"), wrap: true}
}

// AddParagraph appends a paragraph and returns it for chaining.
func (s *RichTextShape) AddParagraph() *Paragraph {
	s.paragraphs = append(s.paragraphs, Paragraph{})
	return &s.paragraphs[len(s.paragraphs)-1]
}

// GetParagraphs returns all paragraphs.
func (s *RichTextShape) GetParagraphs() []Paragraph { return s.paragraphs }

// SetWrap toggles word-wrap.
func (s *RichTextShape) SetWrap(w bool) *RichTextShape { s.wrap = w; return s }

// --- DrawingShape (images) ---

// DrawingShape places a raster image on the slide.
type DrawingShape struct {
	baseShape
	data     []byte
	mimeType string
	path     string
}

// NewDrawingShape creates an empty drawing shape.
func NewDrawingShape() *DrawingShape {
	return &DrawingShape{baseShape: newBaseShape("Picture")}
}

// SetImageData attaches raw image bytes and their MIME type.
func (s *DrawingShape) SetImageData(data []byte, mimeType string) *DrawingShape {
	s.data = data
	s.mimeType = mimeType
	return s
}

// SetImageFromFile loads image bytes from disk, inferring the MIME type
// from the file extension.
func (s *DrawingShape) SetImageFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image %q: %w", path, err)
	}
	s.data = data
	s.path = path
	s.mimeType = mimeTypeForPath(path)
	return nil
}

func mimeTypeForPath(path string) string {
	ext := ""
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			ext = path[i+1:]
			break
		}
	}
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

// --- AutoShape ---

// AutoShape is a simple rectangle/roundrect/oval shape with optional text,
// used for callouts, key-message captions, and tick/cross rating badges.
type AutoShape struct {
	baseShape
	shapeType string
	text      string
	font      *Font
	alignment *Alignment
}

// NewAutoShape creates a rectangle auto shape.
func NewAutoShape() *AutoShape {
	return &AutoShape{baseShape: newBaseShape("Shape"), shapeType: "rect"}
}

// SetShapeType sets the preset geometry (rect, roundRect, ellipse, ...).
func (s *AutoShape) SetShapeType(t string) *AutoShape { s.shapeType = t; return s }

// SetText sets the shape's single-run text.
func (s *AutoShape) SetText(text string, font *Font) *AutoShape {
	s.text = text
	s.font = font
	return s
}

// SetAlignment sets the text alignment.
func (s *AutoShape) SetAlignment(a *Alignment) *AutoShape { s.alignment = a; return s }

// --- LineShape ---

// LineShape is a straight connector, used for header/footer rule lines.
type LineShape struct {
	baseShape
	border *Border
}

// NewLineShape creates a line with no border set.
func NewLineShape() *LineShape {
	return &LineShape{baseShape: newBaseShape("Line")}
}

// SetLineBorder sets the line's stroke.
func (s *LineShape) SetLineBorder(b *Border) *LineShape { s.border = b; return s }

// LineBorder returns the line's stroke, or nil if unset.
func (s *LineShape) LineBorder() *Border { return s.border }

// --- GroupShape ---

// GroupShape nests shapes under a single transform, used by the insight
// panel and paired-summary layouts.
type GroupShape struct {
	baseShape
	shapes []Shape
}

// NewGroupShape creates an empty group.
func NewGroupShape() *GroupShape {
	return &GroupShape{baseShape: newBaseShape("Group")}
}

// AddShape adds a child shape to the group.
func (s *GroupShape) AddShape(child Shape) { s.shapes = append(s.shapes, child) }

// GetShapes returns the group's children.
func (s *GroupShape) GetShapes() []Shape { return s.shapes }

// --- PlaceholderShape ---

// PlaceholderType identifies the semantic role of a placeholder shape,
// mirroring the template contract's title/content/source rectangles.
type PlaceholderType int

const (
	PlaceholderTitle PlaceholderType = iota
	PlaceholderBody
	PlaceholderCenteredTitle
	PlaceholderSubTitle
	PlaceholderFooter
	PlaceholderSource
)

// PlaceholderShape anchors rendered content to a named template rectangle.
type PlaceholderShape struct {
	baseShape
	phType     PlaceholderType
	phIdx      int
	paragraphs []Paragraph
}

// NewPlaceholderShape creates an empty placeholder of the given type.
func NewPlaceholderShape(t PlaceholderType) *PlaceholderShape {
	return &PlaceholderShape{baseShape: newBaseShape("Placeholder"), phType: t}
}

// AddParagraph appends a paragraph and returns it for chaining.
func (s *PlaceholderShape) AddParagraph() *Paragraph {
	s.paragraphs = append(s.paragraphs, Paragraph{})
	return &s.paragraphs[len(s.paragraphs)-1]
}

// GetParagraphs returns all paragraphs.
func (s *PlaceholderShape) GetParagraphs() []Paragraph { return s.paragraphs }

// --- TableShape ---

// TableCell is one cell of a TableShape.
type TableCell struct {
	paragraphs  []Paragraph
	fill        *Fill
	border      *Border
	vAlign      VerticalAlignment
	marginLeft  int64
	marginRight int64
	marginTop   int64
	marginBottom int64
	gridSpan    int
}

// NewTableCell creates an empty cell with a single paragraph.
func NewTableCell() *TableCell {
	return &TableCell{paragraphs: []Paragraph{{}}, vAlign: VerticalMiddle, gridSpan: 1}
}

// SetText replaces the cell's content with a single run.
func (c *TableCell) SetText(text string, font *Font) *TableCell {
	c.paragraphs = []Paragraph{{Runs: []Run{{Text: text, Font: font}}}}
	return c
}

// Paragraphs returns the cell's paragraphs for direct mutation.
func (c *TableCell) Paragraphs() []Paragraph { return c.paragraphs }

// SetParagraphs replaces all paragraphs in the cell.
func (c *TableCell) SetParagraphs(p []Paragraph) *TableCell { c.paragraphs = p; return c }

// SetFill sets the cell background fill.
func (c *TableCell) SetFill(f *Fill) *TableCell { c.fill = f; return c }

// Fill returns the cell's background fill, or nil if unset.
func (c *TableCell) Fill() *Fill { return c.fill }

// SetMargins sets all four cell margins in EMU.
func (c *TableCell) SetMargins(left, top, right, bottom int64) *TableCell {
	c.marginLeft, c.marginTop, c.marginRight, c.marginBottom = left, top, right, bottom
	return c
}

// Margins returns the cell's EMU margins (left, top, right, bottom).
func (c *TableCell) Margins() (int64, int64, int64, int64) {
	return c.marginLeft, c.marginTop, c.marginRight, c.marginBottom
}

// SetVAlign sets the vertical text alignment.
func (c *TableCell) SetVAlign(v VerticalAlignment) *TableCell { c.vAlign = v; return c }

// VAlign returns the cell's vertical text alignment.
func (c *TableCell) VAlign() VerticalAlignment { return c.vAlign }

// TableShape is a grid of cells anchored to a rectangle.
type TableShape struct {
	baseShape
	numRows    int
	numCols    int
	rows       [][]*TableCell
	colWidths  []int64
	rowHeights []int64
	styleID    string
}

// NewTableShape creates a rows x cols table with empty cells.
func NewTableShape(rows, cols int) *TableShape {
	t := &TableShape{
		baseShape: newBaseShape("Table"),
		numRows:   rows,
		numCols:   cols,
	}
	t.rows = make([][]*TableCell, rows)
	for r := 0; r < rows; r++ {
		t.rows[r] = make([]*TableCell, cols)
		for c := 0; c < cols; c++ {
			t.rows[r][c] = NewTableCell()
		}
	}
	t.colWidths = make([]int64, cols)
	t.rowHeights = make([]int64, rows)
	return t
}

// Cell returns the cell at (row, col).
func (t *TableShape) Cell(row, col int) *TableCell { return t.rows[row][col] }

// NumRows returns the row count.
func (t *TableShape) NumRows() int { return t.numRows }

// NumCols returns the column count.
func (t *TableShape) NumCols() int { return t.numCols }

// SetColWidths sets explicit EMU column widths.
func (t *TableShape) SetColWidths(w []int64) *TableShape { t.colWidths = w; return t }

// SetRowHeights sets explicit EMU row heights.
func (t *TableShape) SetRowHeights(h []int64) *TableShape { t.rowHeights = h; return t }

// ColWidths returns the EMU column widths.
func (t *TableShape) ColWidths() []int64 { return t.colWidths }

// RowHeights returns the EMU row heights.
func (t *TableShape) RowHeights() []int64 { return t.rowHeights }
