// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit renders the human-readable trace that explains a
// governance decision.
package audit

import (
	"fmt"
	"strings"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// CollisionRule labels collision lines in a trace.
const CollisionRule = "identifier_collision"

// Build returns the trace lines for res: one per non-pass outcome in
// evaluator order, one per identifier collision, then a summary line
// naming the channel and its driver. Rebuilding from the same result
// yields identical lines.
func Build(res types.GovernanceResult) []string {
	var lines []string
	for _, o := range res.Outcomes {
		if o.Verdict == types.VerdictPass {
			continue
		}
		lines = append(lines, outcomeLine(o))
	}
	for _, c := range res.Collisions {
		lines = append(lines, collisionLine(res.Identifier, c))
	}
	return append(lines, summaryLine(res))
}

// Render joins trace lines into a single field using sep, or "; " when
// sep is empty.
func Render(trace []string, sep string) string {
	if sep == "" {
		sep = types.DefaultTraceSeparator
	}
	return strings.Join(trace, sep)
}

// Warnings returns the trace lines other than the summary.
func Warnings(trace []string) []string {
	if len(trace) == 0 {
		return nil
	}
	return trace[:len(trace)-1]
}

func outcomeLine(o types.RuleOutcome) string {
	level := "WARN"
	if o.Verdict == types.VerdictFail {
		level = "FAIL"
	}
	line := fmt.Sprintf("%s %s: %s", level, o.Rule, o.Evidence)
	if o.Delta > 0 {
		line += fmt.Sprintf(" (penalty %.2f)", o.Delta)
	}
	if o.Disqualifying {
		line += " [disqualifying]"
	}
	return line
}

func collisionLine(id string, c types.CollisionRef) string {
	where := fmt.Sprintf("row %d", c.Row)
	if c.RunID != "" {
		where = fmt.Sprintf("run %s row %d", c.RunID, c.Row)
	}
	return fmt.Sprintf("WARN %s: %s also derived for %s (Khasra %s, %s)", CollisionRule, id, where, c.Khasra, c.Owner)
}

func summaryLine(res types.GovernanceResult) string {
	return fmt.Sprintf("CHANNEL %s via %s: %s", res.Channel, res.Driver, res.Driver.Reason)
}
