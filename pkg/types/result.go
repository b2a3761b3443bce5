// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Verdict is a rule's contribution to the final decision.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictWarn Verdict = "warn"
	VerdictFail Verdict = "fail"
)

// RuleName identifies a rule evaluator.
type RuleName string

const (
	RuleIdentity   RuleName = "identity_consistency"
	RuleCategory   RuleName = "land_category"
	RulePossession RuleName = "possession_status"
	RuleGIS        RuleName = "gis_plot_integrity"
)

// RuleOutcome is the result of one evaluator on one record.
type RuleOutcome struct {
	Rule RuleName `json:"rule" yaml:"rule"`

	// Delta is the penalty magnitude subtracted from the trust score.
	Delta float64 `json:"delta" yaml:"delta"`

	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Disqualifying marks a hard-fail that forces the RED channel
	// regardless of score.
	Disqualifying bool `json:"disqualifying,omitempty" yaml:"disqualifying,omitempty"`

	Evidence string `json:"evidence" yaml:"evidence"`
}

// Validate checks that warn and fail outcomes carry evidence and that a
// disqualifying outcome is a fail.
func (o RuleOutcome) Validate() error {
	switch o.Verdict {
	case VerdictPass:
	case VerdictWarn, VerdictFail:
		if o.Evidence == "" {
			return fmt.Errorf("rule %s: %s verdict without evidence", o.Rule, o.Verdict)
		}
	default:
		return fmt.Errorf("rule %s: unknown verdict %q", o.Rule, o.Verdict)
	}
	if o.Disqualifying && o.Verdict != VerdictFail {
		return fmt.Errorf("rule %s: disqualifying outcome must fail", o.Rule)
	}
	return nil
}

// Channel is the governance routing outcome for a record.
type Channel string

const (
	ChannelGreen Channel = "GREEN"
	ChannelGrey  Channel = "GREY"
	ChannelAmber Channel = "AMBER"
	ChannelRed   Channel = "RED"
)

// Channels lists the channels in reporting order.
var Channels = []Channel{ChannelGreen, ChannelGrey, ChannelAmber, ChannelRed}

// Driver names the channel override that decided a record's channel and,
// where one exists, the rule that triggered it.
type Driver struct {
	Override string   `json:"override" yaml:"override"`
	Rule     RuleName `json:"rule,omitempty" yaml:"rule,omitempty"`
	Reason   string   `json:"reason" yaml:"reason"`
}

func (d Driver) String() string {
	if d.Rule == "" {
		return d.Override
	}
	return fmt.Sprintf("%s (%s)", d.Override, d.Rule)
}

// CollisionRef points at another record that produced the same identifier
// from materially different inputs.
type CollisionRef struct {
	RunID  string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Row    int    `json:"row" yaml:"row"`
	Khasra string `json:"khasra" yaml:"khasra"`
	Owner  string `json:"owner" yaml:"owner"`
}

// GovernanceResult is the decision for one record. A fresh result is
// produced on every evaluation pass.
type GovernanceResult struct {
	Record     LandRecord     `json:"record" yaml:"record"`
	Score      float64        `json:"score" yaml:"score"`
	Channel    Channel        `json:"channel" yaml:"channel"`
	Driver     Driver         `json:"driver" yaml:"driver"`
	Action     string         `json:"action" yaml:"action"`
	Outcomes   []RuleOutcome  `json:"outcomes" yaml:"outcomes"`
	Identifier string         `json:"identifier" yaml:"identifier"`
	Collisions []CollisionRef `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Trace      []string       `json:"trace" yaml:"trace"`
}

// Rejection reports a record that could not be normalized and was
// excluded from scoring.
type Rejection struct {
	Row    int    `json:"row" yaml:"row"`
	Field  string `json:"field" yaml:"field"`
	Value  string `json:"value" yaml:"value"`
	Reason string `json:"reason" yaml:"reason"`
}

// ChannelCounts tallies results per channel.
type ChannelCounts map[Channel]int

// Total returns the number of scored records.
func (c ChannelCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
