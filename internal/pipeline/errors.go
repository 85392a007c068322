package pipeline

import (
	"fmt"
	"strings"
)

const maxBlockingItems = 10

func truncateItems(items []string) ([]string, int) {
	if len(items) <= maxBlockingItems {
		return items, 0
	}
	return items[:maxBlockingItems], len(items) - maxBlockingItems
}

// InputError is raised synchronously before rendering (spec.md §7 taxonomy
// 1): non-template keys in strict normalization, an unresolvable template
// pattern, missing required geometry, or a quality-gate rejection.
type InputError struct {
	Reason string
	Keys   []string
}

func (e *InputError) Error() string {
	shown, extra := truncateItems(e.Keys)
	msg := fmt.Sprintf("input rejected: %s", e.Reason)
	if len(shown) > 0 {
		msg += fmt.Sprintf(" [%s]", strings.Join(shown, ", "))
		if extra > 0 {
			msg += fmt.Sprintf(" (+%d more)", extra)
		}
	}
	return msg
}

// BlockingKeys returns the (possibly truncated) list of blocking item
// names, per spec.md §7's "enumerates up to the first 10 blocking items".
func (e *InputError) BlockingKeys() []string {
	shown, _ := truncateItems(e.Keys)
	return shown
}

// RenderError aggregates per-slide rendering failures (spec.md §7 taxonomy
// 2): raised when the failure ratio exceeds 50% of resolved blocks, or
// when strict-geometry mode treats any single failure as fatal.
type RenderError struct {
	FailureRatio float64
	BlockKeys    []string
}

func (e *RenderError) Error() string {
	shown, extra := truncateItems(e.BlockKeys)
	msg := fmt.Sprintf("rendering failed for %d%% of resolved blocks [%s]",
		int(e.FailureRatio*100), strings.Join(shown, ", "))
	if extra > 0 {
		msg += fmt.Sprintf(" (+%d more)", extra)
	}
	return msg
}

// BlockingKeys returns the block keys whose rendering failed.
func (e *RenderError) BlockingKeys() []string {
	shown, _ := truncateItems(e.BlockKeys)
	return shown
}

// PackageError aggregates every post-write defect class (spec.md §7
// taxonomy 3): relationship-integrity violations, package-consistency
// violations, fatal formatting-audit issues, disallowed sparse slides, and
// any fallback template mapping. Unrecoverable — the caller must discard
// the buffer.
type PackageError struct {
	Violations []string
}

func (e *PackageError) Error() string {
	shown, extra := truncateItems(e.Violations)
	msg := fmt.Sprintf("package rejected: %s", strings.Join(shown, "; "))
	if extra > 0 {
		msg += fmt.Sprintf(" (+%d more)", extra)
	}
	return msg
}

// BlockingKeys returns the (possibly truncated) list of violation
// descriptions.
func (e *PackageError) BlockingKeys() []string {
	shown, _ := truncateItems(e.Violations)
	return shown
}
