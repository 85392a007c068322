package templates

import "testing"

func TestLoadParsesEmbeddedContract(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultPattern == "" {
		t.Error("expected a default pattern name")
	}
	if len(c.Layouts) == 0 {
		t.Fatal("expected at least one layout")
	}
	if len(c.Patterns) == 0 {
		t.Fatal("expected at least one pattern")
	}
	if !c.TableContexts["foundationalActs"] {
		t.Error("expected foundationalActs in tableContexts")
	}
	if !c.ChartContexts["tpes"] {
		t.Error("expected tpes in chartContexts")
	}
}

func TestRequiredGeometry(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		key  string
		want string
	}{
		{"foundationalActs", "table"},
		{"tpes", "chart"},
		{"caseStudy", ""},
	}
	for _, tc := range tests {
		if got := c.RequiredGeometry(tc.key); got != tc.want {
			t.Errorf("RequiredGeometry(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestSatisfies(t *testing.T) {
	withTable := &TemplateLayout{Table: &Rect{W: 1, H: 1}}
	withChart := &TemplateLayout{Charts: []Rect{{W: 1, H: 1}}}
	bare := &TemplateLayout{}

	if !Satisfies(withTable, "table") {
		t.Error("expected layout with a table rect to satisfy \"table\"")
	}
	if Satisfies(bare, "table") {
		t.Error("expected a bare layout to fail \"table\"")
	}
	if !Satisfies(withChart, "chart") {
		t.Error("expected layout with a chart rect to satisfy \"chart\"")
	}
	if !Satisfies(bare, "") {
		t.Error("expected no requirement to always be satisfied")
	}
}

func TestDeriveTableStyleProfileNormalizesPointMargins(t *testing.T) {
	p := DeriveTableStyleProfile(3.6, 0.05, 3.6, 0.05, "ctr", BorderSpec{}, BorderSpec{}, 8, 3)
	if p.MarginLeftIn != 0.05 {
		t.Errorf("expected 3.6pt normalized to 0.05in, got %v", p.MarginLeftIn)
	}
	if p.MarginTopIn != 0.05 {
		t.Errorf("expected an already-inches margin left unchanged, got %v", p.MarginTopIn)
	}
}
