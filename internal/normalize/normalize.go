// Package normalize implements the section normalizer and render
// compactor (spec.md §4.3–§4.4): alias resolution into a closed schema per
// section, semantic-empty detection, and path-keyed length/array limits.
package normalize

import (
	"fmt"
	"strings"

	"github.com/escortdeck/marketdeck/internal/classify"
	"github.com/escortdeck/marketdeck/internal/sanitize"
)

// aliasMap maps a canonical field name to the ordered list of aliases that
// resolve to it; the first alias present in the cleaned input wins
// (spec.md §4.3).
type aliasMap map[string][]string

var policyAliases = aliasMap{
	"foundationalActs":        {"foundationalActs", "foundational_acts", "keyLaws"},
	"keyIncentives":           {"keyIncentives", "key_incentives", "incentives"},
	"investmentRestrictions":  {"investmentRestrictions", "investment_restrictions", "restrictions"},
	"regulatoryPathway":       {"regulatoryPathway", "regulatory_pathway"},
}

var marketAliases = aliasMap{
	"tpes":        {"tpes", "totalPrimaryEnergySupply"},
	"finalDemand": {"finalDemand", "final_demand", "demand"},
	"electricity": {"electricity", "electricityMarket"},
	"gasLng":      {"gasLng", "gas_lng", "gas"},
	"pricing":     {"pricing", "energyPricing"},
	"escoMarket":  {"escoMarket", "esco_market"},
}

var competitorsAliases = aliasMap{
	"japanesePlayers":   {"japanesePlayers", "japanese_players"},
	"localMajor":        {"localMajor", "local_major", "localPlayers"},
	"foreignPlayers":    {"foreignPlayers", "foreign_players"},
	"partnerAssessment": {"partnerAssessment", "partner_assessment"},
}

var depthAliases = aliasMap{
	"caseStudy":              {"caseStudy", "case_study"},
	"lessonsLearned":         {"lessonsLearned", "lessons_learned"},
	"goNoGo":                 {"goNoGo", "go_no_go"},
	"opportunitiesObstacles": {"opportunitiesObstacles", "opportunities_obstacles"},
	"keyInsights":            {"keyInsights", "key_insights"},
	"timingIntelligence":     {"timingIntelligence", "timing_intelligence"},
}

func aliasesFor(sk classify.SectionKey) aliasMap {
	switch sk {
	case classify.SectionPolicy:
		return policyAliases
	case classify.SectionMarket:
		return marketAliases
	case classify.SectionCompetitors:
		return competitorsAliases
	case classify.SectionDepth:
		return depthAliases
	default:
		return nil
	}
}

// marketLegacyFallback is the fixed legacy schema attempted for Market
// when no canonical key resolves (spec.md §4.3 "Market has a legacy
// fallback").
var marketLegacyFallback = map[string][]string{
	"tpes":        {"energySupplyMix", "supplyMix"},
	"finalDemand": {"demandBySector"},
}

// Result is the normalizer's output for one section: the cleaned data,
// the list of keys dropped for not matching any alias, and whether the
// Market legacy fallback was used for any field.
type Result struct {
	Data         map[string]any
	DroppedKeys  []string
	UsedLegacy   bool
}

// selectFirstAliasValue returns the first alias present (and non-nil) in
// raw, or nil if none resolve.
func selectFirstAliasValue(raw map[string]any, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := raw[a]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Normalize applies the section's alias map to raw (already
// transient-key-sanitized, spec.md §4.2), returning the canonical data map
// and the keys that matched nothing.
func Normalize(sk classify.SectionKey, raw map[string]any) Result {
	aliases := aliasesFor(sk)
	consumed := make(map[string]bool, len(raw))
	data := make(map[string]any, len(aliases))
	usedLegacy := false

	for canonical, aliasList := range aliases {
		v, ok := selectFirstAliasValue(raw, aliasList)
		if ok {
			data[canonical] = v
			for _, a := range aliasList {
				if _, present := raw[a]; present {
					consumed[a] = true
				}
			}
			continue
		}
		if sk == classify.SectionMarket {
			if legacyKeys, hasLegacy := marketLegacyFallback[canonical]; hasLegacy {
				if lv, lok := selectFirstAliasValue(raw, legacyKeys); lok {
					data[canonical] = lv
					usedLegacy = true
					for _, a := range legacyKeys {
						if _, present := raw[a]; present {
							consumed[a] = true
						}
					}
				}
			}
		}
	}

	var dropped []string
	for k := range raw {
		if !consumed[k] {
			dropped = append(dropped, k)
		}
	}

	return Result{Data: data, DroppedKeys: dropped, UsedLegacy: usedLegacy}
}

// StrictError reports non-template/transient keys rejected by strict-mode
// normalization (spec.md §4.3, §7).
type StrictError struct {
	Section     classify.SectionKey
	DroppedKeys []string
}

func (e *StrictError) Error() string {
	return fmt.Sprintf("Render normalization rejected non-template/transient keys: section=%s keys=%s",
		e.Section, strings.Join(e.DroppedKeys, ", "))
}

// NormalizeStrict is Normalize plus the strict-mode rejection rule: any
// dropped key is a hard InputError (spec.md §4.3 "In strict mode,
// droppedKeys.length > 0 is an error").
func NormalizeStrict(sk classify.SectionKey, raw map[string]any, strict bool) (Result, error) {
	res := Normalize(sk, raw)
	if strict && len(res.DroppedKeys) > 0 {
		return res, &StrictError{Section: sk, DroppedKeys: res.DroppedKeys}
	}
	return res, nil
}

// semanticEmptyPhrases is the closed set of phrases that mark a string as
// meaningless placeholder content rather than real synthesis data
// (spec.md §4.3).
var semanticEmptyPhrases = []string{
	"insufficient research data",
	"data unavailable",
	"tbd",
	"n/a",
	"not available",
	"no data",
	"unknown",
}

// jsonParserArtifacts flags strings that are JSON-parser error messages
// that leaked into a data field instead of being caught upstream.
var jsonParserArtifacts = []string{
	"unterminated string",
	"expected ',' or '}'",
	"parse error",
}

// IsSemanticallyEmpty reports whether s should be treated as "no content"
// even though it is a non-empty string (spec.md §4.3).
func IsSemanticallyEmpty(s string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return true
	}
	for _, p := range semanticEmptyPhrases {
		if trimmed == p {
			return true
		}
	}
	for _, p := range jsonParserArtifacts {
		if strings.Contains(trimmed, p) {
			return true
		}
	}
	if lineColumnPattern(trimmed) {
		return true
	}
	return false
}

// lineColumnPattern matches parser-error-shaped "line N column N" text
// without importing regexp for a single fixed shape.
func lineColumnPattern(s string) bool {
	idx := strings.Index(s, "line ")
	if idx < 0 {
		return false
	}
	rest := s[idx+len("line "):]
	return strings.Contains(rest, " column ")
}

// --- Render compactor (spec.md §4.4) ---

// Mode selects the compactor's limit table.
type Mode string

const (
	ModeOff     Mode = "off"
	ModeBounded Mode = "bounded"
	ModeLegacy  Mode = "legacy"
)

// pathLimits maps a semantic path suffix to its max string length.
// Chart-data arrays are exempt entirely — see chartDataPaths.
var pathLimits = map[string]int{
	"url":             2048,
	"slideTitle":      320,
	"subtitle":        700,
	"description":     900,
	"narrative":       1500,
	"summary":         1200,
}

var arrayCaps = map[string]int{
	"players":   14,
	"criteria":  10,
	"citations": 8,
	"items":     12,
}

const defaultArrayCap = 5

// chartDataPaths identifies array fields that must never be length-capped
// because trimming series distorts chart geometry (spec.md §4.4).
var chartDataPaths = map[string]bool{
	"values": true,
	"series": true,
	"categories": true,
}

func lastSegment(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// Compact applies path-keyed string/array limits to node recursively.
// mode == ModeOff returns node unchanged.
func Compact(node any, path string, mode Mode) any {
	if mode == ModeOff {
		return node
	}
	switch t := node.(type) {
	case string:
		seg := lastSegment(path)
		if limit, ok := pathLimits[seg]; ok {
			return sanitize.SafeCell(t, limit)
		}
		return t
	case []any:
		seg := lastSegment(path)
		if chartDataPaths[seg] {
			out := make([]any, len(t))
			for i, e := range t {
				out[i] = Compact(e, fmt.Sprintf("%s[%d]", path, i), mode)
			}
			return out
		}
		cap := arrayCaps[seg]
		if cap == 0 {
			cap = defaultArrayCap
		}
		limited := t
		if len(limited) > cap {
			limited = limited[:cap]
		}
		out := make([]any, len(limited))
		for i, e := range limited {
			out[i] = Compact(e, fmt.Sprintf("%s[%d]", path, i), mode)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = Compact(v, path+"."+k, mode)
		}
		return out
	default:
		return t
	}
}
