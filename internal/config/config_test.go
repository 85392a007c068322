package config

import "testing"

func emptyEnv(string) string { return "" }

func TestDefaultIsStrictByDefault(t *testing.T) {
	c := Default()
	if !c.StrictTemplateFidelity {
		t.Error("expected strict template fidelity to default on")
	}
	if c.TableFlexMode != TableFlexBounded {
		t.Errorf("expected bounded table flex mode by default, got %q", c.TableFlexMode)
	}
}

func TestParseWithEmptyEnvMatchesDefault(t *testing.T) {
	c, err := Parse(emptyEnv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d := Default()
	if *c != *d {
		t.Errorf("Parse with no env set should equal Default(), got %+v want %+v", c, d)
	}
}

func TestParseRejectsInvalidBool(t *testing.T) {
	env := map[string]string{"STRICT_TEMPLATE_FIDELITY": "not-a-bool"}
	_, err := Parse(func(k string) string { return env[k] })
	if err == nil {
		t.Fatal("expected an error for a malformed bool")
	}
}

func TestParseRejectsUnknownEnumValue(t *testing.T) {
	env := map[string]string{"TABLE_FLEX_MODE": "turbo"}
	_, err := Parse(func(k string) string { return env[k] })
	if err == nil {
		t.Fatal("expected an error for an unrecognized TABLE_FLEX_MODE")
	}
}

func TestParseClampsOutOfRangeFloat(t *testing.T) {
	env := map[string]string{"TABLE_FLEX_MAX_WIDTH_SCALE": "99"}
	c, err := Parse(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.TableFlexMaxWidthScale != 1.6 {
		t.Errorf("expected clamp to the documented ceiling 1.6, got %v", c.TableFlexMaxWidthScale)
	}
}

func TestParseClampsOutOfRangeInt(t *testing.T) {
	env := map[string]string{"TABLE_FLEX_MAX_ROWS": "0"}
	c, err := Parse(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.TableFlexMaxRows != 4 {
		t.Errorf("expected clamp to the documented floor 4, got %v", c.TableFlexMaxRows)
	}
}

func TestParseIgnoresMalformedNumberKeepingDefault(t *testing.T) {
	d := Default()
	env := map[string]string{"TABLE_RETHINK_MAX_PASSES": "abc"}
	c, err := Parse(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.TableRethinkMaxPasses != d.TableRethinkMaxPasses {
		t.Errorf("expected malformed int to fall back to default %d, got %d", d.TableRethinkMaxPasses, c.TableRethinkMaxPasses)
	}
}
