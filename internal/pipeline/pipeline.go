package pipeline

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/audit"
	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/normalize"
	"github.com/escortdeck/marketdeck/internal/postprocess"
	"github.com/escortdeck/marketdeck/internal/render"
	"github.com/escortdeck/marketdeck/internal/route"
	"github.com/escortdeck/marketdeck/internal/runctx"
	"github.com/escortdeck/marketdeck/internal/sanitize"
	"github.com/escortdeck/marketdeck/internal/scan"
	"github.com/escortdeck/marketdeck/internal/templates"
)

// Result is the output of a successful Generate call: the PPTX buffer plus
// its pptMetrics side channel (spec.md §6).
type Result struct {
	PPTX    []byte
	Metrics runctx.Metrics
}

var sectionKeysInOrder = []classify.SectionKey{
	classify.SectionPolicy, classify.SectionMarket,
	classify.SectionCompetitors, classify.SectionDepth,
}

var sectionTitles = map[classify.SectionKey]string{
	classify.SectionPolicy:      "Policy & Regulatory Landscape",
	classify.SectionMarket:      "Market Fundamentals",
	classify.SectionCompetitors: "Competitive Landscape",
	classify.SectionDepth:       "Strategic Depth & Recommendation",
}

// Generate runs the full pipeline over one country's synthesis/analysis,
// producing a byte-faithful deck (spec.md §6 "generate(synthesis,
// countryAnalysis, scope) -> bytes"). ctx is accepted but not consulted:
// the template contract is embedded, and no mid-pipeline cancellation
// point exists (spec.md §5).
func Generate(ctx context.Context, synthesis Synthesis, analysis CountryAnalysis, scope Scope, cfg *config.Config, logger *zap.Logger) (Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if scope.TemplateStrictMode != nil {
		strict := *scope.TemplateStrictMode
		cfg = cloneWithStrict(cfg, strict)
	}

	rc := runctx.New(logger)
	rc.Logger.Info("generate started", zap.String("country", analysis.Country), zap.Bool("strict", cfg.StrictTemplateFidelity))

	contract, err := templates.Load()
	if err != nil {
		return Result{}, &InputError{Reason: fmt.Sprintf("load template contract: %v", err)}
	}

	sections, inputErr := sanitizeAndNormalizeSections(analysis, cfg)
	if inputErr != nil {
		return Result{}, inputErr
	}

	blocks := classify.Classify(sections)
	if err := validateHasRenderableCore(blocks); err != nil {
		return Result{}, err
	}

	router := route.New(contract, cfg.StrictTemplateFidelity)

	pres := gopresentation.NewPresentation()
	pres.SetThemeAccents(contract.PaletteHex)
	pres.SetThemeBodyFont(contract.BodyFont)

	addCoverSlide(pres, synthesis, analysis, scope)
	addTOCSlide(pres, blocks)
	addExecSummarySlide(pres, synthesis)

	var unresolvable []string
	lastSection := classify.SectionKey("")
	for _, block := range blocks {
		if block.SectionKey != lastSection {
			addDividerSlide(pres, sectionTitles[block.SectionKey])
			lastSection = block.SectionKey
		}

		var override *int
		if scope.TemplateSlideSelections != nil {
			if slide, ok := scope.TemplateSlideSelections[block.Key]; ok {
				override = &slide
			}
		}

		res, err := router.Route(block, override)
		if err != nil {
			if _, ok := err.(*route.StrictGeometryError); ok {
				return Result{}, &InputError{Reason: err.Error(), Keys: []string{block.Key}}
			}
			unresolvable = append(unresolvable, fmt.Sprintf("%s: %v", block.Key, err))
			continue
		}
		block = block.WithRoute(res.Pattern, res.Slide, res.Source)

		if res.Recovered {
			rc.RecordFallbackMapping(block.Key, res.Slide, res.Slide, res.Source)
			rc.GeometryIssueCount++
		}

		if err := render.RenderBlock(pres, block, res, cfg, rc); err != nil {
			return Result{}, &RenderError{
				FailureRatio: rc.FailureRatio(),
				BlockKeys:    failureKeys(rc),
			}
		}
	}
	if len(unresolvable) > 0 {
		return Result{}, &InputError{Reason: "blocks with no resolvable template pattern", Keys: unresolvable}
	}

	if rc.FailureRatio() > 0.5 {
		return Result{}, &RenderError{FailureRatio: rc.FailureRatio(), BlockKeys: failureKeys(rc)}
	}
	if cfg.StrictTemplateFidelity && len(rc.SlideRenderFailures) > 0 {
		return Result{}, &RenderError{FailureRatio: rc.FailureRatio(), BlockKeys: failureKeys(rc)}
	}

	addClosingSummarySlide(pres, synthesis)

	rc.TemplateCoveragePct = coveragePct(rc)

	writer := gopresentation.NewWriter(pres)
	raw, err := writer.Write()
	if err != nil {
		return Result{}, &PackageError{Violations: []string{fmt.Sprintf("write package: %v", err)}}
	}

	reconciled, err := postprocess.Reconcile(raw)
	if err != nil {
		return Result{}, &PackageError{Violations: []string{fmt.Sprintf("reconcile package: %v", err)}}
	}

	reader := gopresentation.NewReader(gopresentation.ReaderPowerPoint2007)
	reloaded, err := reader.ReadBytes(reconciled)
	if err != nil {
		return Result{}, &PackageError{Violations: []string{fmt.Sprintf("reload package for audit: %v", err)}}
	}

	issues := audit.Audit(reloaded, contract)
	if audit.Fatal(issues) {
		return Result{}, &PackageError{Violations: auditViolationStrings(issues)}
	}

	violations, err := scan.Scan(reconciled)
	if err != nil {
		return Result{}, &PackageError{Violations: []string{fmt.Sprintf("scan package: %v", err)}}
	}
	if len(violations) > 0 {
		return Result{}, &PackageError{Violations: scanViolationStrings(violations)}
	}

	if cfg.StrictTemplateFidelity && len(rc.FallbackMappings) > 0 {
		return Result{}, &PackageError{Violations: []string{"fallback template mapping present under strict template fidelity"}}
	}

	metrics := rc.BuildMetrics(cfg.StrictTemplateFidelity)
	metrics.GeometryIssueCount = rc.GeometryIssueCount
	rc.Logger.Info("generate finished", zap.Int("slides", reloaded.SlideCount()), zap.Float64("coverage", metrics.TemplateCoveragePct))

	return Result{PPTX: reconciled, Metrics: metrics}, nil
}

func cloneWithStrict(cfg *config.Config, strict bool) *config.Config {
	c := *cfg
	c.StrictTemplateFidelity = strict
	return &c
}

// sanitizeAndNormalizeSections runs the sanitize->normalize stages over
// every section in analysis, returning the classifier-ready map.
func sanitizeAndNormalizeSections(analysis CountryAnalysis, cfg *config.Config) (map[classify.SectionKey]classify.NormalizedSection, *InputError) {
	out := make(map[classify.SectionKey]classify.NormalizedSection, len(sectionKeysInOrder))
	var dropped []string

	for _, sk := range sectionKeysInOrder {
		payload, ok := analysis.Sections[string(sk)]
		if !ok {
			continue
		}
		cleaned, _ := sanitize.Sanitize(payload.Data).(map[string]any)
		res, err := normalize.NormalizeStrict(sk, cleaned, cfg.StrictTemplateFidelity)
		if err != nil {
			dropped = append(dropped, fmt.Sprintf("%s: %v", sk, err))
			continue
		}
		out[sk] = classify.NormalizedSection{
			Data:        res.Data,
			Citations:   payload.Citations,
			DataQuality: classify.DataQuality(payload.DataQuality),
		}
	}

	if len(dropped) > 0 {
		return nil, &InputError{Reason: "strict normalization rejected non-template/transient keys", Keys: dropped}
	}
	return out, nil
}

// validateHasRenderableCore enforces the quality-gate rejection named in
// spec.md §7 taxonomy 1: a run with no renderable data in any section
// never produces a sparse, near-empty deck.
func validateHasRenderableCore(blocks []classify.Block) error {
	for _, b := range blocks {
		if b.Data != nil {
			return nil
		}
	}
	return &InputError{Reason: "no section supplied renderable data for any block"}
}

func failureKeys(rc *runctx.RunContext) []string {
	keys := make([]string, 0, len(rc.SlideRenderFailures))
	for _, f := range rc.SlideRenderFailures {
		keys = append(keys, f.BlockKey)
	}
	return keys
}

func coveragePct(rc *runctx.RunContext) float64 {
	if rc.BlocksResolved == 0 {
		return 100
	}
	return 100 * float64(rc.BlocksRendered) / float64(rc.BlocksResolved)
}

func auditViolationStrings(issues []audit.Issue) []string {
	var out []string
	for _, i := range issues {
		if i.Severity != audit.SeverityFatal {
			continue
		}
		out = append(out, fmt.Sprintf("slide %d %s: %s", i.SlideNumber, i.Check, i.Detail))
	}
	sort.Strings(out)
	return out
}

func scanViolationStrings(violations []scan.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.String())
	}
	sort.Strings(out)
	return out
}
