package audit

import (
	"strings"
	"testing"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/templates"
)

func TestAuditCleanPresentationHasNoIssues(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	slide.CreateLineShape().SetLineBorder(&gopresentation.Border{Width: 12700})

	issues := Audit(pres, nil)
	if len(issues) != 0 {
		t.Errorf("expected no issues on a clean deck, got %+v", issues)
	}
}

func TestAuditFlagsWrongSlideSize(t *testing.T) {
	pres := gopresentation.NewPresentation()
	pres.SetLayout(&gopresentation.Layout{CX: 9144000, CY: 6858000})

	issues := Audit(pres, nil)
	var found bool
	for _, iss := range issues {
		if iss.Check == "slideSize" {
			found = true
			if iss.Severity != SeverityFatal {
				t.Errorf("expected slideSize to be fatal, got %q", iss.Severity)
			}
		}
	}
	if !found {
		t.Fatal("expected a slideSize issue for a non-16:9 layout")
	}
	if !Fatal(issues) {
		t.Error("expected Fatal(issues) true when a fatal issue is present")
	}
}

func TestAuditFlagsUnexpectedLineWidth(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	slide.CreateLineShape().SetLineBorder(&gopresentation.Border{Width: 5000})

	issues := Audit(pres, nil)
	var found bool
	for _, iss := range issues {
		if iss.Check == "lineWidthSignature" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a lineWidthSignature warning for an off-signature stroke width")
	}
	if Fatal(issues) {
		t.Error("a lineWidthSignature warning alone should not be fatal")
	}
}

func TestAuditFlagsUnnormalizedCellMargins(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	table := slide.CreateTableShape(1, 1)
	table.Cell(0, 0).SetMargins(2*914400+1, 0, 0, 0)

	issues := Audit(pres, nil)
	var found bool
	for _, iss := range issues {
		if iss.Check == "cellMargins" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a cellMargins warning for a >2in margin")
	}
}

func TestAuditFlagsTopHeavyAnchorDistribution(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	table := slide.CreateTableShape(3, 2)
	for r := 0; r < 3; r++ {
		for c := 0; c < 2; c++ {
			table.Cell(r, c).SetVAlign(gopresentation.VerticalTop)
		}
	}

	issues := Audit(pres, nil)
	var found bool
	for _, iss := range issues {
		if iss.Check == "anchorDistribution" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an anchorDistribution warning when more than 85% of cells are top-anchored")
	}
}

func TestAuditFlagsLongTextRun(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	tb := slide.AddTextBox()
	para := tb.AddParagraph()
	para.AddRun(strings.Repeat("x", longTextRunChars+1), nil)

	issues := Audit(pres, nil)
	var found bool
	for _, iss := range issues {
		if iss.Check == "longTextRun" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a longTextRun warning for an oversized run")
	}
}

func testContract() *templates.Contract {
	return &templates.Contract{
		ExpectedLineEMUs: []int64{6350, 9525},
		Layouts: map[int]*templates.TemplateLayout{
			5: {
				SlideNumber: 5,
				Title:       &templates.Rect{X: 0.5, Y: 0.3, W: 9, H: 0.8},
				Source:      &templates.Rect{X: 0.5, Y: 6.5, W: 9, H: 0.6},
			},
		},
	}
}

func TestAuditUsesContractLineWidthSignature(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	slide.CreateLineShape().SetLineBorder(&gopresentation.Border{Width: 12700})

	issues := Audit(pres, testContract())
	var found bool
	for _, iss := range issues {
		if iss.Check == "lineWidthSignature" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a 12700 EMU stroke, absent from the contract's ExpectedLineEMUs, to be flagged")
	}
}

func TestAuditUsesContractHeaderFooterPosition(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	line := slide.CreateLineShape().SetLineBorder(&gopresentation.Border{Width: 6350})
	line.SetPosition(0, gopresentation.Inch(3.0))

	issues := Audit(pres, testContract())
	var found bool
	for _, iss := range issues {
		if iss.Check == "headerFooterLine" {
			found = true
			if iss.Severity != SeverityFatal {
				t.Errorf("expected headerFooterLine to be fatal once a contract is supplied, got %q", iss.Severity)
			}
		}
	}
	if !found {
		t.Fatal("expected a rule line far from every contract header/footer position to be flagged")
	}
}

func TestAuditFlagsLongTableCell(t *testing.T) {
	pres := gopresentation.NewPresentation()
	slide := pres.AddSlide()
	table := slide.CreateTableShape(1, 1)
	table.Cell(0, 0).SetText(strings.Repeat("y", longTableCellChars+1), nil)

	issues := Audit(pres, nil)
	var found bool
	for _, iss := range issues {
		if iss.Check == "longTableCell" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a longTableCell warning for an oversized cell")
	}
}
