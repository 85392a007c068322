package classify

import "testing"

func TestClassifyEmitsFixedBlockCountRegardlessOfData(t *testing.T) {
	blocks := Classify(nil)
	want := 0
	for _, specs := range sectionBlockSpecs {
		want += len(specs)
	}
	if len(blocks) != want {
		t.Fatalf("expected %d blocks emitted for a nil section map, got %d", want, len(blocks))
	}
	for _, b := range blocks {
		if b.Data != nil {
			t.Errorf("block %q should have nil data when its section is absent", b.Key)
		}
		if b.DataQuality != QualityUnknown {
			t.Errorf("block %q should default to QualityUnknown, got %q", b.Key, b.DataQuality)
		}
	}
}

func TestClassifyOrderIsStableAcrossSections(t *testing.T) {
	blocks := Classify(nil)
	for i, b := range blocks {
		if b.Order != i {
			t.Errorf("block %d (%s) has Order %d, want %d", i, b.Key, b.Order, i)
		}
	}
	if blocks[0].SectionKey != SectionPolicy {
		t.Errorf("expected first block from policy section, got %s", blocks[0].SectionKey)
	}
	if blocks[len(blocks)-1].SectionKey != SectionDepth {
		t.Errorf("expected last block from depth section, got %s", blocks[len(blocks)-1].SectionKey)
	}
}

func TestClassifyPopulatesDataFromSection(t *testing.T) {
	sections := map[SectionKey]NormalizedSection{
		SectionPolicy: {
			Data:        map[string]any{"foundationalActs": []any{"Act A"}},
			Citations:   []string{"src1"},
			DataQuality: QualityHigh,
		},
	}
	blocks := Classify(sections)
	var found bool
	for _, b := range blocks {
		if b.Key != "foundationalActs" {
			continue
		}
		found = true
		if b.DataQuality != QualityHigh {
			t.Errorf("expected QualityHigh, got %q", b.DataQuality)
		}
		if len(b.Citations) != 1 || b.Citations[0] != "src1" {
			t.Errorf("expected citations carried from section, got %v", b.Citations)
		}
	}
	if !found {
		t.Fatal("expected a foundationalActs block to be emitted")
	}
}

func TestWithRouteLeavesOriginalUntouched(t *testing.T) {
	b := Block{Key: "foundationalActs"}
	routed := b.WithRoute("patternA", 4, "primary")

	if b.TemplateSlide != 0 || b.TemplatePattern != "" {
		t.Error("WithRoute must not mutate the receiver")
	}
	if routed.TemplateSlide != 4 || routed.TemplatePattern != "patternA" || routed.TemplateSource != "primary" {
		t.Errorf("WithRoute did not set routing fields correctly: %+v", routed)
	}
}
