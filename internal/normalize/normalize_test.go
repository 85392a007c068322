package normalize

import (
	"testing"

	"github.com/escortdeck/marketdeck/internal/classify"
)

func TestNormalizeCanonicalPayloadIsFixedPoint(t *testing.T) {
	raw := map[string]any{
		"foundationalActs":       "acts",
		"keyIncentives":          "incentives",
		"investmentRestrictions": "restrictions",
		"regulatoryPathway":      "pathway",
	}
	res := Normalize(classify.SectionPolicy, raw)
	if len(res.DroppedKeys) != 0 {
		t.Errorf("canonical payload should drop nothing, dropped %v", res.DroppedKeys)
	}
	for k, v := range raw {
		if res.Data[k] != v {
			t.Errorf("expected %s=%v unchanged, got %v", k, v, res.Data[k])
		}
	}
}

func TestNormalizeResolvesAliases(t *testing.T) {
	raw := map[string]any{
		"foundational_acts": "acts",
		"key_incentives":    "incentives",
	}
	res := Normalize(classify.SectionPolicy, raw)
	if res.Data["foundationalActs"] != "acts" {
		t.Errorf("expected snake_case alias resolved, got %v", res.Data["foundationalActs"])
	}
	if res.Data["keyIncentives"] != "incentives" {
		t.Errorf("expected snake_case alias resolved, got %v", res.Data["keyIncentives"])
	}
}

func TestNormalizeDropsUnmatchedKeys(t *testing.T) {
	raw := map[string]any{
		"_synthesisError": "fail",
		"confidenceScore": 0.3,
	}
	res := Normalize(classify.SectionMarket, raw)
	if len(res.DroppedKeys) != 2 {
		t.Fatalf("expected both keys dropped, got %v", res.DroppedKeys)
	}
}

func TestNormalizeMarketLegacyFallback(t *testing.T) {
	raw := map[string]any{"energySupplyMix": "legacy tpes payload"}
	res := Normalize(classify.SectionMarket, raw)
	if !res.UsedLegacy {
		t.Error("expected UsedLegacy true when only the legacy alias is present")
	}
	if res.Data["tpes"] != "legacy tpes payload" {
		t.Errorf("expected legacy fallback mapped to tpes, got %v", res.Data["tpes"])
	}
	if len(res.DroppedKeys) != 0 {
		t.Errorf("legacy-consumed key should not be reported dropped, got %v", res.DroppedKeys)
	}
}

func TestNormalizeStrictRejectsDroppedKeys(t *testing.T) {
	raw := map[string]any{"_synthesisError": "fail"}
	_, err := NormalizeStrict(classify.SectionMarket, raw, true)
	if err == nil {
		t.Fatal("expected strict mode to reject a dropped key")
	}
	if _, ok := err.(*StrictError); !ok {
		t.Errorf("expected *StrictError, got %T", err)
	}
}

func TestNormalizeStrictLenientContinues(t *testing.T) {
	raw := map[string]any{"_synthesisError": "fail"}
	res, err := NormalizeStrict(classify.SectionMarket, raw, false)
	if err != nil {
		t.Fatalf("lenient mode should not error, got %v", err)
	}
	if len(res.DroppedKeys) != 1 {
		t.Errorf("expected the transient key recorded as dropped, got %v", res.DroppedKeys)
	}
}

func TestIsSemanticallyEmpty(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"TBD", true},
		{"n/a", true},
		{"Data unavailable", true},
		{"unterminated string at line 4 column 12", true},
		{"Japan's ESCO market grew 8% YoY", false},
	}
	for _, tc := range tests {
		if got := IsSemanticallyEmpty(tc.in); got != tc.want {
			t.Errorf("IsSemanticallyEmpty(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCompactStringLimits(t *testing.T) {
	long := ""
	for i := 0; i < 400; i++ {
		long += "x"
	}
	out := Compact(long, "block.slideTitle", ModeBounded)
	s, ok := out.(string)
	if !ok {
		t.Fatalf("expected string result, got %T", out)
	}
	if len([]rune(s)) > 320 {
		t.Errorf("expected slideTitle capped at 320 chars, got %d", len([]rune(s)))
	}
}

func TestCompactOffModeIsNoOp(t *testing.T) {
	node := map[string]any{"narrative": "unchanged no matter how long this gets since mode is off"}
	out := Compact(node, "root", ModeOff)
	m, ok := out.(map[string]any)
	if !ok || m["narrative"] != node["narrative"] {
		t.Errorf("ModeOff must return node unchanged, got %#v", out)
	}
}

func TestCompactArrayCapsButExemptsChartData(t *testing.T) {
	items := make([]any, 20)
	for i := range items {
		items[i] = i
	}
	out := Compact(map[string]any{"items": items, "values": items}, "block", ModeBounded)
	m := out.(map[string]any)

	capped := m["items"].([]any)
	if len(capped) != 12 {
		t.Errorf("expected items capped at 12, got %d", len(capped))
	}
	exempt := m["values"].([]any)
	if len(exempt) != 20 {
		t.Errorf("expected chart-data values array left uncapped, got %d", len(exempt))
	}
}
