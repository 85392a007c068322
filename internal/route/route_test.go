package route

import (
	"testing"

	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/templates"
)

func testContract() *templates.Contract {
	return &templates.Contract{
		Layouts: map[int]*templates.TemplateLayout{
			5: {SlideNumber: 5}, // no table rect
			6: {SlideNumber: 6, Table: &templates.Rect{W: 1, H: 1}},
		},
		Patterns: map[string]templates.Pattern{
			"regulation_table": {Key: "regulation_table", SelectedSlide: 5, TemplateSlides: []int{5, 6}},
		},
		BlockPattern:   map[string]string{"foundationalActs": "regulation_table"},
		DefaultPattern: "regulation_table",
		TableContexts:  map[string]bool{"foundationalActs": true},
	}
}

func TestRoutePrimarySatisfiesGeometry(t *testing.T) {
	c := testContract()
	c.Layouts[5].Table = &templates.Rect{W: 1, H: 1}
	r := New(c, false)

	res, err := r.Route(classify.Block{Key: "foundationalActs"}, nil)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Slide != 5 || res.Source != "primary" || res.Recovered {
		t.Errorf("expected primary slide 5 unrecovered, got %+v", res)
	}
}

func TestRouteRecoversWhenLenient(t *testing.T) {
	c := testContract() // slide 5 has no table rect
	r := New(c, false)

	res, err := r.Route(classify.Block{Key: "foundationalActs"}, nil)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !res.Recovered || res.Slide != 6 || res.Source != "geometryRecovery" {
		t.Errorf("expected recovery onto slide 6, got %+v", res)
	}
}

func TestRouteStrictGeometryHardFails(t *testing.T) {
	c := testContract() // slide 5 has no table rect
	r := New(c, true)

	_, err := r.Route(classify.Block{Key: "foundationalActs"}, nil)
	if err == nil {
		t.Fatal("expected strict mode to hard-fail instead of recovering")
	}
	if _, ok := err.(*StrictGeometryError); !ok {
		t.Errorf("expected *StrictGeometryError, got %T", err)
	}
}

func TestRouteOverrideWins(t *testing.T) {
	c := testContract()
	c.Layouts[6].Table = &templates.Rect{W: 1, H: 1}
	r := New(c, false)

	override := 6
	res, err := r.Route(classify.Block{Key: "foundationalActs"}, &override)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Slide != 6 || res.Source != "primary" {
		t.Errorf("expected override slide 6 treated as primary, got %+v", res)
	}
}
