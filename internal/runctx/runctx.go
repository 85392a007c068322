// Package runctx carries the per-run mutable state that the source pipeline
// kept as module-level globals: cost/usage stats, the template-style cache,
// and layout-fidelity counters. One RunContext is created per call to
// pipeline.Generate and threaded explicitly through every stage — nothing
// here is safe to share across concurrent runs.
package runctx

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TableRecovery records one table-flex recovery event for the pptMetrics
// side channel (spec.md §6, §4.7).
type TableRecovery struct {
	BlockKey     string
	RecoveryType string // "bounded-flex" | "density-truncate"
	Detail       string
}

// SlideRenderFailure records one renderer error that was swallowed into a
// placeholder slide instead of aborting the run (spec.md §4.8, §7).
type SlideRenderFailure struct {
	SlideNumber int
	BlockKey    string
	Err         string
}

// FallbackMapping records a template route that did not resolve to its
// primary candidate (spec.md §4.6 geometryRecovery).
type FallbackMapping struct {
	BlockKey      string
	PrimarySlide  int
	ResolvedSlide int
	Source        string
}

// RunContext is the single mutable accumulator for one Generate call. It
// replaces the source's module-level cost tracker, template-style cache,
// and layout-fidelity stats (spec.md §9 "Global state → per-run context").
type RunContext struct {
	Logger *zap.Logger

	// RunID correlates every log line and metrics snapshot for one Generate
	// call, since the same country/scope can legitimately be rendered
	// concurrently by separate callers.
	RunID string

	// SlideKeyBySlideNumber maps 1-based output slide number to the block
	// key rendered onto it, used by the auditor/scanner to name blocking
	// slide keys in error messages (spec.md §7).
	SlideKeyBySlideNumber map[int]string

	// TemplateStyleCache caches TemplateTableStyleProfile by template slide
	// number for the duration of one run (spec.md §3 "Template table style
	// cache: process-wide for one run; reset per run").
	TemplateStyleCache map[int]any

	TableRecoveries      []TableRecovery
	TableFallbacks       int
	SlideRenderFailures  []SlideRenderFailure
	FallbackMappings     []FallbackMapping
	GeometryIssueCount   int
	TemplateCoveragePct  float64
	BlocksResolved       int
	BlocksRendered       int

	// SeenCompanyKeys tracks normalized company names already claimed by an
	// earlier-rendered company-comparison block, so japanesePlayers/
	// localMajor/foreignPlayers/partnerAssessment dedupe against each other
	// for this run, not just within their own array (spec.md §4.8 "global
	// cross-array dedupe").
	SeenCompanyKeys map[string]bool
}

// New creates an empty RunContext bound to logger.
func New(logger *zap.Logger) *RunContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	return &RunContext{
		Logger:                logger.With(zap.String("runID", runID)),
		RunID:                 runID,
		SlideKeyBySlideNumber: make(map[int]string),
		TemplateStyleCache:    make(map[int]any),
		SeenCompanyKeys:       make(map[string]bool),
	}
}

// ClaimCompanyKey registers a normalized company name as rendered for this
// run and reports whether this is the first claim. A false return means an
// earlier company-comparison block already rendered this company, so the
// caller should fold it in as a cross-reference instead of repeating the
// row.
func (rc *RunContext) ClaimCompanyKey(key string) bool {
	if rc.SeenCompanyKeys[key] {
		return false
	}
	rc.SeenCompanyKeys[key] = true
	return true
}

// RecordSlide associates a rendered slide number with the block key that
// produced it, for later audit/scan error messages.
func (rc *RunContext) RecordSlide(slideNumber int, blockKey string) {
	rc.SlideKeyBySlideNumber[slideNumber] = blockKey
}

// RecordTableRecovery appends a table-flex recovery event.
func (rc *RunContext) RecordTableRecovery(blockKey, recoveryType, detail string) {
	rc.TableRecoveries = append(rc.TableRecoveries, TableRecovery{
		BlockKey: blockKey, RecoveryType: recoveryType, Detail: detail,
	})
}

// RecordSlideRenderFailure appends a swallowed renderer error.
func (rc *RunContext) RecordSlideRenderFailure(slideNumber int, blockKey string, err error) {
	rc.SlideRenderFailures = append(rc.SlideRenderFailures, SlideRenderFailure{
		SlideNumber: slideNumber, BlockKey: blockKey, Err: err.Error(),
	})
}

// RecordFallbackMapping appends a geometry-recovery routing event.
func (rc *RunContext) RecordFallbackMapping(blockKey string, primary, resolved int, source string) {
	rc.FallbackMappings = append(rc.FallbackMappings, FallbackMapping{
		BlockKey: blockKey, PrimarySlide: primary, ResolvedSlide: resolved, Source: source,
	})
}

// FailureRatio returns the fraction of resolved blocks whose rendering
// failed, used by the §7 "abort if > 50%" rule.
func (rc *RunContext) FailureRatio() float64 {
	if rc.BlocksResolved == 0 {
		return 0
	}
	return float64(len(rc.SlideRenderFailures)) / float64(rc.BlocksResolved)
}

// Metrics is the pptMetrics side channel attached to a successful run
// (spec.md §6).
type Metrics struct {
	StrictGeometryMode    bool           `json:"strictGeometryMode"`
	TemplateCoveragePct   float64        `json:"templateCoverage"`
	TableRecoveries       int            `json:"tableRecoveries"`
	TableFallbacks        int            `json:"tableFallbacks"`
	SlideRenderFailures   int            `json:"slideRenderFailures"`
	GeometryIssueCount    int            `json:"geometryIssueCount"`
	FallbackMappingCount  int            `json:"fallbackTemplateMappingCount"`
	FallbackMappingKeys   []string       `json:"fallbackTemplateMappingKeys"`
}

// BuildMetrics snapshots the accumulated run state into the side channel
// shape callers receive alongside the output buffer.
func (rc *RunContext) BuildMetrics(strict bool) Metrics {
	keys := make([]string, 0, len(rc.FallbackMappings))
	for _, fm := range rc.FallbackMappings {
		keys = append(keys, fm.BlockKey)
	}
	return Metrics{
		StrictGeometryMode:   strict,
		TemplateCoveragePct:  rc.TemplateCoveragePct,
		TableRecoveries:      len(rc.TableRecoveries),
		TableFallbacks:       rc.TableFallbacks,
		SlideRenderFailures:  len(rc.SlideRenderFailures),
		GeometryIssueCount:   rc.GeometryIssueCount,
		FallbackMappingCount: len(rc.FallbackMappings),
		FallbackMappingKeys:  keys,
	}
}
