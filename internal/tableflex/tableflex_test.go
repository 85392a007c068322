package tableflex

import (
	"strings"
	"testing"

	"github.com/escortdeck/marketdeck/internal/config"
	"github.com/escortdeck/marketdeck/internal/runctx"
	"github.com/escortdeck/marketdeck/internal/templates"
)

func testStyle() templates.TableStyleProfile {
	return templates.TableStyleProfile{BaselineRows: 8, BaselineCols: 3}
}

func TestFitWithinBaselineSucceedsUnrecovered(t *testing.T) {
	cfg := config.Default()
	rc := runctx.New(nil)
	rows := [][]string{
		{"Act", "Year", "Summary"},
		{"Energy Act", "2019", "Sets efficiency targets"},
		{"Building Code", "2021", "Mandates insulation standards"},
	}
	rect := Rect{X: 1, Y: 1, W: 6, H: 3}

	res, err := Fit("foundationalActs", rows, rect, testStyle(), cfg, rc)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(res.Rows) != len(rows) {
		t.Errorf("expected no row loss, got %d rows", len(res.Rows))
	}
	if rc.TableFallbacks != 0 {
		t.Errorf("expected no fallback recorded, got %d", rc.TableFallbacks)
	}
	if res.FitScore < 70 {
		t.Errorf("expected a healthy fit score for a small table, got %.1f", res.FitScore)
	}
}

func TestFitRecoversWhenRowsExceedMaxInBoundedMode(t *testing.T) {
	cfg := config.Default()
	rc := runctx.New(nil)

	var rows [][]string
	for i := 0; i < cfg.TableFlexMaxRows+5; i++ {
		rows = append(rows, []string{"a", "b"})
	}
	rect := Rect{X: 1, Y: 1, W: 6, H: 3}

	res, err := Fit("foundationalActs", rows, rect, testStyle(), cfg, rc)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(res.Rows) != cfg.TableFlexMaxRows {
		t.Errorf("expected recovery to truncate to MaxRows %d, got %d", cfg.TableFlexMaxRows, len(res.Rows))
	}
	if rc.TableFallbacks != 1 {
		t.Errorf("expected one fallback recorded, got %d", rc.TableFallbacks)
	}
	if len(rc.TableRecoveries) != 1 || rc.TableRecoveries[0].RecoveryType != "bounded-flex" {
		t.Errorf("expected a bounded-flex recovery recorded, got %+v", rc.TableRecoveries)
	}
}

func TestFitStrictModeHardFailsOnCapacityViolation(t *testing.T) {
	cfg := config.Default()
	cfg.TableFlexMode = config.TableFlexOff
	rc := runctx.New(nil)

	var rows [][]string
	for i := 0; i < cfg.TableFlexMaxRows+5; i++ {
		rows = append(rows, []string{"a", "b"})
	}
	rect := Rect{X: 1, Y: 1, W: 6, H: 3}

	_, err := Fit("foundationalActs", rows, rect, testStyle(), cfg, rc)
	if err == nil {
		t.Fatal("expected strict mode to hard-fail instead of recovering")
	}
	if _, ok := err.(*ViolationError); !ok {
		t.Errorf("expected *ViolationError, got %T", err)
	}
}

func TestNormalizeMarginTreatsValuesOverTwoAsPoints(t *testing.T) {
	if got := NormalizeMargin(3.6); got != 0.05 {
		t.Errorf("NormalizeMargin(3.6) = %v, want 0.05", got)
	}
	if got := NormalizeMargin(0.05); got != 0.05 {
		t.Errorf("NormalizeMargin(0.05) = %v, want 0.05 (already inches)", got)
	}
}

func TestRethinkCellHardTruncatesWhenPassesExhausted(t *testing.T) {
	rc := runctx.New(nil)
	long := strings.Repeat("z", 50)

	out := rethinkCell("tpes", long, 10, 0, rc)
	if len([]rune(out)) != 10 {
		t.Fatalf("expected hard-truncated cell of length 10, got %d (%q)", len([]rune(out)), out)
	}
	if !strings.HasSuffix(out, "...") {
		t.Errorf("expected ellipsis suffix, got %q", out)
	}
	if len(rc.TableRecoveries) != 1 || rc.TableRecoveries[0].RecoveryType != "density-truncate" {
		t.Errorf("expected a density-truncate recovery recorded, got %+v", rc.TableRecoveries)
	}
}

func TestRethinkCellLeavesShortCellsUntouched(t *testing.T) {
	rc := runctx.New(nil)
	out := rethinkCell("tpes", "short", 10, 2, rc)
	if out != "short" {
		t.Errorf("expected untouched short cell, got %q", out)
	}
	if len(rc.TableRecoveries) != 0 {
		t.Errorf("expected no recovery for a cell within budget, got %+v", rc.TableRecoveries)
	}
}

func TestStripFillerRemovesKnownPhrasesCaseInsensitively(t *testing.T) {
	got := stripFiller("It is important to note that costs are high")
	if got != "costs are high" {
		t.Errorf("stripFiller: got %q", got)
	}
}

func TestCompressNarrativeKeepsHighestScoringSentence(t *testing.T) {
	s := "The project is important. Revenue grew 12% in 2024."
	got := compressNarrative(s, 30)
	if got != "Revenue grew 12% in 2024." {
		t.Errorf("compressNarrative: got %q, want the higher-scoring revenue sentence", got)
	}
}

func TestDropWordsToFitShrinksUntilWithinBudget(t *testing.T) {
	s := "alpha beta gamma delta epsilon"
	got := dropWordsToFit(s, 15)
	if len([]rune(got)) > 15 {
		t.Errorf("dropWordsToFit left %q over budget (%d runes)", got, len([]rune(got)))
	}
	if !strings.HasPrefix(s, got) {
		t.Errorf("dropWordsToFit must only drop trailing words, got %q", got)
	}
}
