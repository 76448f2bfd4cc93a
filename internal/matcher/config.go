// Package matcher resolves free-text warehouse names against the canonical
// ingredient catalog.
//
// Resolution follows a strict precedence order:
//  1. Ignore filtering: empty keys, placeholder tokens and configured
//     prefixes are discarded before any lookup.
//  2. Exact lookup against the catalog's normalized-name index.
//  3. Alias lookup against the alias index.
//  4. Fuzzy lookup: the best weighted-ratio similarity score across every
//     catalog key; accepted at or above the configured threshold, otherwise
//     reported as a suggestion only.
//
// The indexes are snapshotted from the store once per run and owned by the
// caller; there is no package-level state, so concurrent runs and tests never
// interfere.
package matcher

import "fmt"

// MatchType represents the outcome class of a name resolution.
type MatchType string

const (
	// MatchExact means the normalized name is itself a catalog key.
	MatchExact MatchType = "EXACT"
	// MatchAlias means a recorded alias resolved the name.
	MatchAlias MatchType = "ALIAS"
	// MatchFuzzy means approximate similarity at or above the threshold.
	MatchFuzzy MatchType = "FUZZY"
	// MatchCreated means the orchestrator created a new item for the name.
	MatchCreated MatchType = "CREATED"
	// MatchIgnored means the name is noise and must not be reported at all.
	MatchIgnored MatchType = "IGNORED"
	// MatchNone means no resolution; the best candidate is a suggestion only.
	MatchNone MatchType = "NO_MATCH"
	// MatchNoCatalog means the catalog holds zero items to match against.
	MatchNoCatalog MatchType = "NO_CATALOG"
)

// String returns the string representation of the MatchType
func (t MatchType) String() string {
	return string(t)
}

// Resolved reports whether the outcome carries an authoritative item.
func (t MatchType) Resolved() bool {
	switch t {
	case MatchExact, MatchAlias, MatchFuzzy, MatchCreated:
		return true
	default:
		return false
	}
}

// Config holds the matcher's tuning knobs.
type Config struct {
	// FuzzyThreshold is the minimum weighted-ratio score (0-100) for a
	// fuzzy candidate to count as a match. A score exactly equal to the
	// threshold is accepted.
	FuzzyThreshold int

	// IgnoreTokens are normalized keys dropped outright: placeholder cells
	// and section labels that appear in the exports but are not items.
	IgnoreTokens []string

	// IgnorePrefixes drop any normalized key starting with one of these,
	// covering the location labels the warehouse sheets interleave with
	// item rows.
	IgnorePrefixes []string
}

// DefaultConfig returns the matcher configuration used for movement imports.
// The threshold is deliberately strict: a wrong match silently corrupts the
// ledger, an unmatched row only lands on the pending report.
func DefaultConfig() *Config {
	return &Config{
		FuzzyThreshold: 90,
		IgnoreTokens: []string{
			"-", "--", ".", "n/a", "na", "s/n", "x",
			"varios", "total", "subtotal", "pendiente",
		},
		IgnorePrefixes: []string{
			"zona ", "pasillo ", "estante ", "ubicacion ", "seccion ",
		},
	}
}

// AuditConfig returns a looser configuration for ad-hoc catalog audits,
// where a human reviews every result anyway.
func AuditConfig() *Config {
	cfg := DefaultConfig()
	cfg.FuzzyThreshold = 80
	return cfg
}

// Validate validates the matcher configuration
func (c *Config) Validate() error {
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy threshold must be within [0,100], got %d", c.FuzzyThreshold)
	}
	return nil
}
