package gopresentation

import "time"

// Layout describes the slide size in EMU. Name is the OOXML sldSz "type"
// attribute (e.g. "screen16x9", "custom").
type Layout struct {
	CX   int64
	CY   int64
	Name string
}

// StandardLayout16x9 is the reference template's slide size: 13.333in x
// 7.5in, i.e. 12192000 x 6858000 EMU.
func StandardLayout16x9() *Layout {
	return &Layout{CX: 12192000, CY: 6858000, Name: "screen16x9"}
}

// DocumentProperties holds docProps/core.xml metadata.
type DocumentProperties struct {
	Creator        string
	LastModifiedBy string
	Title          string
	Description    string
	Subject        string
	Keywords       string
	Category       string
	Revision       string
	Created        time.Time
	Modified       time.Time
}

func newDocumentProperties() *DocumentProperties {
	now := time.Now().UTC()
	return &DocumentProperties{
		Creator:  "EscortDeck",
		Revision: "1",
		Created:  now,
		Modified: now,
	}
}

// SlideshowType selects the presentation's show behavior.
type SlideshowType int

const (
	SlideshowTypePresent SlideshowType = iota
	SlideshowTypeBrowse
	SlideshowTypeKiosk
)

// ViewType selects which editor view PowerPoint opens to.
type ViewType int

const (
	ViewSlide ViewType = iota
	ViewNotes
	ViewHandout
	ViewOutline
	ViewSlideMaster
	ViewSlideSorter
)

// PresentationProperties holds presProps.xml / viewProps.xml settings.
type PresentationProperties struct {
	slideshowType SlideshowType
	lastView      ViewType
	zoom          float64
}

func newPresentationProperties() *PresentationProperties {
	return &PresentationProperties{slideshowType: SlideshowTypePresent, lastView: ViewSlide, zoom: 1.0}
}

// defaultThemeAccents are the stock Office theme accent colors, used for
// any accent slot a caller's palette leaves unset.
var defaultThemeAccents = []string{"4472C4", "ED7D31", "A5A5A5", "FFC000", "5B9BD5", "70AD47"}

// Presentation is the in-memory object model for one .pptx package: a
// fixed slide size, document/presentation properties, and an ordered list
// of slides. This is the engine's "PPTX writer library" contract: renderers
// build a Presentation, and PPTXWriter.Write serializes it to a ZIP buffer.
type Presentation struct {
	slides                 []*Slide
	layout                 *Layout
	properties             *DocumentProperties
	presentationProperties *PresentationProperties

	themeAccentHex    []string
	themeBodyFontName string
}

// NewPresentation creates an empty presentation using the reference
// template's 16:9 slide size.
func NewPresentation() *Presentation {
	return &Presentation{
		slides:                 make([]*Slide, 0),
		layout:                 StandardLayout16x9(),
		properties:             newDocumentProperties(),
		presentationProperties: newPresentationProperties(),
	}
}

// GetLayout returns the presentation's slide size.
func (p *Presentation) GetLayout() *Layout { return p.layout }

// SetLayout overrides the slide size.
func (p *Presentation) SetLayout(l *Layout) { p.layout = l }

// GetProperties returns the document properties for mutation.
func (p *Presentation) GetProperties() *DocumentProperties { return p.properties }

// GetPresentationProperties returns the show/view properties for mutation.
func (p *Presentation) GetPresentationProperties() *PresentationProperties {
	return p.presentationProperties
}

// AddSlide appends a new empty slide and returns it. The slide map used by
// the template-clone overlay (internal/postprocess) relies on this being
// called exactly once per rendered block, in rendering order, so that
// len(p.slides) after the call identifies the just-added slide (1-based
// slide number == len(p.slides)).
func (p *Presentation) AddSlide() *Slide {
	s := newSlide()
	p.slides = append(p.slides, s)
	return s
}

// GetSlides returns all slides in presentation order.
func (p *Presentation) GetSlides() []*Slide { return p.slides }

// SlideCount returns the number of slides.
func (p *Presentation) SlideCount() int { return len(p.slides) }

// SetThemeAccents overrides the theme's six accent colors with a caller-
// supplied hex palette (a template contract's own brand colors, typically).
// Any slot past len(hex), or any empty entry, falls back to the stock
// Office accent for that slot.
func (p *Presentation) SetThemeAccents(hex []string) { p.themeAccentHex = hex }

// themeAccents returns exactly six accent hex strings for theme1.xml,
// filling in stock Office defaults for whatever SetThemeAccents left unset.
func (p *Presentation) themeAccents() []string {
	out := make([]string, 6)
	copy(out, defaultThemeAccents)
	for i := 0; i < len(p.themeAccentHex) && i < 6; i++ {
		if p.themeAccentHex[i] != "" {
			out[i] = p.themeAccentHex[i]
		}
	}
	return out
}

// SetThemeBodyFont overrides the theme's major/minor Latin font with name;
// an empty name leaves the stock Calibri family in place.
func (p *Presentation) SetThemeBodyFont(name string) { p.themeBodyFontName = name }

// themeFonts returns the major (heading) and minor (body) Latin font names
// for theme1.xml.
func (p *Presentation) themeFonts() (major, minor string) {
	if p.themeBodyFontName == "" {
		return "Calibri Light", "Calibri"
	}
	return p.themeBodyFontName + " Light", p.themeBodyFontName
}
