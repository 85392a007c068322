package runctx

import (
	"errors"
	"testing"
)

func TestNewAssignsStableRunID(t *testing.T) {
	rc := New(nil)
	if rc.RunID == "" {
		t.Fatal("expected a non-empty RunID")
	}
	if rc.Logger == nil {
		t.Fatal("expected New to substitute a no-op logger when nil is passed")
	}
	if rc.SlideKeyBySlideNumber == nil || rc.TemplateStyleCache == nil {
		t.Fatal("expected New to initialize both run-scoped maps")
	}
}

func TestRecordSlideTracksBlockKeyByNumber(t *testing.T) {
	rc := New(nil)
	rc.RecordSlide(4, "foundationalActs")
	if rc.SlideKeyBySlideNumber[4] != "foundationalActs" {
		t.Errorf("expected slide 4 mapped to foundationalActs, got %q", rc.SlideKeyBySlideNumber[4])
	}
}

func TestRecordTableRecoveryAppends(t *testing.T) {
	rc := New(nil)
	rc.RecordTableRecovery("tpes", "bounded-flex", "rowCount exceeds MAX_ROWS")
	if len(rc.TableRecoveries) != 1 {
		t.Fatalf("expected one recovery, got %d", len(rc.TableRecoveries))
	}
	got := rc.TableRecoveries[0]
	if got.BlockKey != "tpes" || got.RecoveryType != "bounded-flex" {
		t.Errorf("unexpected recovery recorded: %+v", got)
	}
}

func TestRecordSlideRenderFailureAppends(t *testing.T) {
	rc := New(nil)
	rc.RecordSlideRenderFailure(7, "caseStudy", errors.New("boom"))
	if len(rc.SlideRenderFailures) != 1 {
		t.Fatalf("expected one failure, got %d", len(rc.SlideRenderFailures))
	}
	if rc.SlideRenderFailures[0].Err != "boom" {
		t.Errorf("expected failure error text preserved, got %q", rc.SlideRenderFailures[0].Err)
	}
}

func TestRecordFallbackMappingAppends(t *testing.T) {
	rc := New(nil)
	rc.RecordFallbackMapping("foundationalActs", 5, 6, "geometryRecovery")
	if len(rc.FallbackMappings) != 1 {
		t.Fatalf("expected one mapping, got %d", len(rc.FallbackMappings))
	}
	fm := rc.FallbackMappings[0]
	if fm.PrimarySlide != 5 || fm.ResolvedSlide != 6 || fm.Source != "geometryRecovery" {
		t.Errorf("unexpected fallback mapping: %+v", fm)
	}
}

func TestFailureRatioZeroWhenNoBlocksResolved(t *testing.T) {
	rc := New(nil)
	if rc.FailureRatio() != 0 {
		t.Errorf("expected 0 ratio with no resolved blocks, got %v", rc.FailureRatio())
	}
}

func TestFailureRatioComputesFraction(t *testing.T) {
	rc := New(nil)
	rc.BlocksResolved = 4
	rc.RecordSlideRenderFailure(1, "a", errors.New("x"))
	if got := rc.FailureRatio(); got != 0.25 {
		t.Errorf("expected ratio 0.25, got %v", got)
	}
}

func TestBuildMetricsSnapshotsCounters(t *testing.T) {
	rc := New(nil)
	rc.TemplateCoveragePct = 87.5
	rc.TableFallbacks = 2
	rc.GeometryIssueCount = 1
	rc.RecordTableRecovery("tpes", "bounded-flex", "detail")
	rc.RecordSlideRenderFailure(2, "caseStudy", errors.New("fail"))
	rc.RecordFallbackMapping("foundationalActs", 5, 6, "geometryRecovery")

	m := rc.BuildMetrics(true)
	if !m.StrictGeometryMode {
		t.Error("expected strict flag carried through")
	}
	if m.TemplateCoveragePct != 87.5 {
		t.Errorf("expected coverage carried through, got %v", m.TemplateCoveragePct)
	}
	if m.TableRecoveries != 1 || m.TableFallbacks != 2 {
		t.Errorf("unexpected table counters: %+v", m)
	}
	if m.SlideRenderFailures != 1 || m.GeometryIssueCount != 1 {
		t.Errorf("unexpected failure/geometry counters: %+v", m)
	}
	if m.FallbackMappingCount != 1 || len(m.FallbackMappingKeys) != 1 || m.FallbackMappingKeys[0] != "foundationalActs" {
		t.Errorf("unexpected fallback mapping summary: %+v", m)
	}
}
