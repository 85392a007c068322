package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/escortdeck/marketdeck/internal/config"
)

func regulationRows() []any {
	return []any{
		map[string]any{"act": "Energy Efficiency Act", "requirement": "Annual audits for large consumers", "penalty": "Fines up to 10M"},
		map[string]any{"act": "Building Code Amendment", "requirement": "Insulation standards for new builds"},
	}
}

func chartBlock() map[string]any {
	return map[string]any{
		"insights":   []any{"Demand grew steadily across the period"},
		"categories": []any{"2021", "2022", "2023"},
		"series": []any{
			map[string]any{"name": "Coal", "values": []any{10.0, 9.0, 8.0}},
			map[string]any{"name": "Gas", "values": []any{5.0, 5.5, 6.0}},
		},
	}
}

func companyRows() []any {
	return []any{
		map[string]any{"name": "Acme Energy", "marketPosition": "Leader", "strategy": "Retrofits", "notes": "Active nationwide"},
		map[string]any{"name": "Beta Power", "marketPosition": "Challenger", "strategy": "ESCO financing"},
	}
}

func fullAnalysis() CountryAnalysis {
	return CountryAnalysis{
		Country: "Testland",
		Sections: map[string]SectionPayload{
			"policy": {
				DataQuality: "high",
				Citations:   []string{"Ministry of Energy 2025"},
				Data: map[string]any{
					"foundationalActs":       regulationRows(),
					"keyIncentives":          regulationRows(),
					"investmentRestrictions": regulationRows(),
				},
			},
			"market": {
				DataQuality: "medium",
				Citations:   []string{"National Energy Agency"},
				Data: map[string]any{
					"tpes":        chartBlock(),
					"finalDemand": chartBlock(),
					"electricity": chartBlock(),
					"gasLng":      chartBlock(),
					"pricing":     chartBlock(),
					"escoMarket":  chartBlock(),
				},
			},
			"competitors": {
				DataQuality: "high",
				Data: map[string]any{
					"japanesePlayers":   companyRows(),
					"localMajor":        companyRows(),
					"foreignPlayers":    companyRows(),
					"partnerAssessment": companyRows(),
				},
			},
			"depth": {
				DataQuality: "medium",
				Data: map[string]any{
					"caseStudy": map[string]any{
						"company": "Acme Energy", "situation": "Rising costs",
						"action": "Deployed an ESCO contract", "result": "15% savings",
						"applicability": "Directly transferable to similar utilities",
					},
					"lessonsLearned": map[string]any{
						"company": "Beta Power", "situation": "Slow permitting",
						"action": "Engaged regulator early", "result": "Cut timeline by half",
					},
					"goNoGo": []any{
						map[string]any{"criterion": "Market size", "verdict": "go", "rationale": "Large addressable market"},
						map[string]any{"criterion": "Regulatory risk", "verdict": "caution", "rationale": "Pending legislation"},
					},
					"opportunitiesObstacles": map[string]any{
						"opportunities": []any{"Growing ESCO demand", "Supportive incentive regime"},
						"obstacles":     []any{"Long permitting timelines"},
					},
					"keyInsights":        []any{"The market is consolidating around three large players"},
					"timingIntelligence": []any{"Incentive window closes in 18 months"},
				},
			},
		},
	}
}

func fullSynthesis() Synthesis {
	return Synthesis{
		ProjectName:      "Project Horizon",
		ClientName:       "Acme Capital",
		ExecutiveSummary: "Testland presents a compelling ESCO market entry opportunity.",
		KeyInsights:      []string{"Incentives favor first movers"},
		NextSteps:        []string{"Commission a site-level feasibility study"},
	}
}

func fullScope() Scope {
	return Scope{
		Industry:    "Energy Services",
		ProjectType: "Market Entry",
		ClientName:  "Acme Capital",
		ProjectName: "Project Horizon",
	}
}

func TestGenerateProducesAWellFormedPackage(t *testing.T) {
	result, err := Generate(context.Background(), fullSynthesis(), fullAnalysis(), fullScope(), config.Default(), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.PPTX) == 0 {
		t.Fatal("expected a non-empty PPTX buffer")
	}

	zr, err := zip.NewReader(bytes.NewReader(result.PPTX), int64(len(result.PPTX)))
	if err != nil {
		t.Fatalf("expected a valid zip package, got: %v", err)
	}
	var sawContentTypes, sawPresentation bool
	slideCount := 0
	for _, f := range zr.File {
		switch f.Name {
		case "[Content_Types].xml":
			sawContentTypes = true
		case "ppt/presentation.xml":
			sawPresentation = true
		}
		if len(f.Name) > len("ppt/slides/slide") && f.Name[:len("ppt/slides/slide")] == "ppt/slides/slide" {
			slideCount++
		}
	}
	if !sawContentTypes || !sawPresentation {
		t.Error("expected the package to contain [Content_Types].xml and ppt/presentation.xml")
	}
	if slideCount == 0 {
		t.Error("expected at least one slide part in the package")
	}

	if result.Metrics.TemplateCoveragePct != 100 {
		t.Errorf("expected full coverage with no render failures, got %v", result.Metrics.TemplateCoveragePct)
	}
	if result.Metrics.SlideRenderFailures != 0 {
		t.Errorf("expected no slide render failures, got %d", result.Metrics.SlideRenderFailures)
	}
	if !result.Metrics.StrictGeometryMode {
		t.Error("expected strict geometry mode to be reported since no config override was supplied")
	}
}

func TestGenerateRejectsUnresolvableStrictKeys(t *testing.T) {
	analysis := fullAnalysis()
	policy := analysis.Sections["policy"]
	policy.Data = map[string]any{
		"foundationalActs": regulationRows(),
		"notACanonicalKey": "leftover legacy field",
	}
	analysis.Sections["policy"] = policy

	_, err := Generate(context.Background(), fullSynthesis(), analysis, fullScope(), config.Default(), nil)
	if err == nil {
		t.Fatal("expected strict normalization to reject a non-canonical key")
	}
	inputErr, ok := err.(*InputError)
	if !ok {
		t.Fatalf("expected *InputError, got %T: %v", err, err)
	}
	if len(inputErr.Keys) == 0 {
		t.Error("expected the InputError to enumerate the rejected section")
	}
}

func TestGenerateRejectsEmptyAnalysis(t *testing.T) {
	analysis := CountryAnalysis{Country: "Emptyland"}
	_, err := Generate(context.Background(), fullSynthesis(), analysis, fullScope(), config.Default(), nil)
	if err == nil {
		t.Fatal("expected an InputError when no section supplies renderable data")
	}
	if _, ok := err.(*InputError); !ok {
		t.Fatalf("expected *InputError, got %T: %v", err, err)
	}
}

func TestGenerateHonorsScopeStrictModeOverride(t *testing.T) {
	lenient := false
	scope := fullScope()
	scope.TemplateStrictMode = &lenient

	result, err := Generate(context.Background(), fullSynthesis(), fullAnalysis(), scope, config.Default(), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Metrics.StrictGeometryMode {
		t.Error("expected the scope override to switch the run out of strict mode")
	}
}
