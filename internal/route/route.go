// Package route implements the template router (spec.md §4.6): choosing a
// template slide for each block, recovering via a ranked candidate queue
// when the primary slide lacks required geometry, and enforcing the
// strict-geometry policy that forbids silent recovery in production.
package route

import (
	"fmt"

	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/templates"
)

// Resolution is the router's per-block decision (spec.md §4.6 contract).
type Resolution struct {
	Pattern   string
	Slide     int
	Layout    *templates.TemplateLayout
	Recovered bool
	Source    string // "primary" | "geometryRecovery"
}

// StrictGeometryError is thrown when recovery would be required but
// strict-geometry mode forbids it (spec.md §4.6 "Strict-geometry policy").
type StrictGeometryError struct {
	BlockKey string
	Primary  int
}

func (e *StrictGeometryError) Error() string {
	return fmt.Sprintf("[STRICT GEOMETRY] Hard fail: geometry recovery not allowed for block %q (primary slide %d lacks required geometry)", e.BlockKey, e.Primary)
}

// candidateKey dedupes the recovery queue by (patternKey, slide).
type candidateKey struct {
	pattern string
	slide   int
}

// Router resolves blocks against a loaded template Contract.
type Router struct {
	contract *templates.Contract
	strict   bool
}

// New creates a Router bound to contract. strict mirrors
// config.Config.StrictTemplateFidelity.
func New(contract *templates.Contract, strict bool) *Router {
	return &Router{contract: contract, strict: strict}
}

// Route resolves one block, optionally honoring a caller-supplied template
// slide override (scope.templateSlideSelections, spec.md §6).
func (r *Router) Route(block classify.Block, override *int) (Resolution, error) {
	required := r.contract.RequiredGeometry(block.Key)

	patternKey := r.contract.BlockPattern[block.Key]
	if patternKey == "" {
		patternKey = r.contract.DefaultPattern
	}
	pattern, ok := r.contract.Patterns[patternKey]
	if !ok {
		return Resolution{}, fmt.Errorf("route %q: no pattern %q in template contract", block.Key, patternKey)
	}

	primarySlide := pattern.SelectedSlide
	if override != nil {
		primarySlide = *override
	}
	primaryLayout := r.contract.Layouts[primarySlide]

	if primaryLayout != nil && templates.Satisfies(primaryLayout, required) {
		return Resolution{Pattern: patternKey, Slide: primarySlide, Layout: primaryLayout, Source: "primary"}, nil
	}

	// Build the ranked, deduplicated recovery candidate queue (spec.md
	// §4.6 step 4): primary (for diagnostics, already tried above), the
	// default route if an override was supplied, every slide in the
	// primary pattern, every slide in the default pattern.
	seen := map[candidateKey]bool{{patternKey, primarySlide}: true}
	var queue []candidateKey

	if override != nil {
		queue = append(queue, candidateKey{patternKey, pattern.SelectedSlide})
	}
	for _, s := range pattern.TemplateSlides {
		queue = append(queue, candidateKey{patternKey, s})
	}
	defaultPattern, hasDefault := r.contract.Patterns[r.contract.DefaultPattern]
	if hasDefault {
		for _, s := range defaultPattern.TemplateSlides {
			queue = append(queue, candidateKey{r.contract.DefaultPattern, s})
		}
	}

	var dedupedQueue []candidateKey
	for _, c := range queue {
		if seen[c] {
			continue
		}
		seen[c] = true
		dedupedQueue = append(dedupedQueue, c)
	}

	for _, c := range dedupedQueue {
		layout := r.contract.Layouts[c.slide]
		if layout == nil || !templates.Satisfies(layout, required) {
			continue
		}
		if r.strict {
			return Resolution{}, &StrictGeometryError{BlockKey: block.Key, Primary: primarySlide}
		}
		return Resolution{
			Pattern: c.pattern, Slide: c.slide, Layout: layout,
			Recovered: true, Source: "geometryRecovery",
		}, nil
	}

	// Nothing satisfies — return the primary unresolved; the renderer
	// fails loudly downstream since strict mode forbids recovery anyway
	// (spec.md §4.6 step 6).
	return Resolution{Pattern: patternKey, Slide: primarySlide, Layout: primaryLayout, Source: "primary"}, nil
}
