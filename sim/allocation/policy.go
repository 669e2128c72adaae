// Package allocation decides, for a single period, how much of the available
// supply each district receives and which districts are inspected.
//
// The package has no dependency on the period simulator; it operates on plain
// per-district vectors so that it can be exercised in isolation.
package allocation

import (
	"fmt"
	"strings"
)

// Policy selects the allocation strategy. It is a closed set: every value has
// exactly one implementation, resolved once when an Optimizer is built.
type Policy int

const (
	// Proportional allocates supply in proportion to the demand forecast.
	Proportional Policy = iota
	// Optimized solves a cost-weighted linear program.
	Optimized
	// EquityFirst equalizes coverage ratios across districts.
	EquityFirst
	// RiskAverse solves the linear program against a buffered demand target.
	RiskAverse
)

var policyNames = [...]string{
	Proportional: "proportional",
	Optimized:    "optimized",
	EquityFirst:  "equity_first",
	RiskAverse:   "risk_averse",
}

// AllPolicies returns every policy in canonical comparison order.
func AllPolicies() []Policy {
	return []Policy{Proportional, Optimized, EquityFirst, RiskAverse}
}

func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("policy(%d)", int(p))
	}
	return policyNames[p]
}

// Valid reports whether p is one of the four known policies.
func (p Policy) Valid() bool {
	return p >= 0 && int(p) < len(policyNames)
}

// ParsePolicy resolves a policy name. Hyphenated spellings ("equity-first")
// are accepted for CLI convenience.
func ParsePolicy(name string) (Policy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, n := range policyNames {
		if n == normalized {
			return Policy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown policy %q; valid: %s", name, strings.Join(policyNames[:], ", "))
}

// IsValidPolicy reports whether name parses to a known policy.
func IsValidPolicy(name string) bool {
	_, err := ParsePolicy(name)
	return err == nil
}

// MarshalText implements encoding.TextMarshaler (used by YAML and JSON codecs).
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
