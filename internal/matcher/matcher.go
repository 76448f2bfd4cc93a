package matcher

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"dolce-almacen/internal/models"
	"dolce-almacen/internal/normalize"
)

// MatchResult is the outcome of resolving one raw name. It is a value, never
// persisted.
type MatchResult struct {
	Type MatchType

	// Item is the resolved catalog item; nil unless Type.Resolved().
	Item *models.CanonicalItem

	// Score is the confidence in [0,100]. Exact and alias hits score 100.
	Score int

	// NormalizedName is the comparison key derived from the input.
	NormalizedName string

	// Suggestion is the best catalog candidate for operator review when no
	// match was accepted. Not authoritative.
	Suggestion string
}

// Engine resolves raw names against a request-scoped catalog index.
type Engine struct {
	config *Config
	index  *Index

	// score computes the weighted-ratio similarity of two normalized
	// names. Swappable in tests.
	score func(a, b string) int
}

// NewEngine creates a matching engine over the given index.
func NewEngine(config *Config, index *Index) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config: config,
		index:  index,
		score:  fuzzy.WRatio,
	}
}

// Index exposes the engine's index so the orchestrator can register items
// and aliases it creates mid-run.
func (e *Engine) Index() *Index {
	return e.index
}

// Resolve resolves a raw name to a catalog item following the strict
// precedence order: ignore filtering, exact, alias, fuzzy.
func (e *Engine) Resolve(rawName string) MatchResult {
	key := normalize.Key(rawName)

	if e.isIgnored(key) {
		return MatchResult{Type: MatchIgnored, NormalizedName: key}
	}

	if item, ok := e.index.ItemFor(key); ok {
		return MatchResult{Type: MatchExact, Item: item, Score: 100, NormalizedName: key}
	}

	if item, ok := e.index.AliasFor(key); ok {
		return MatchResult{Type: MatchAlias, Item: item, Score: 100, NormalizedName: key}
	}

	if e.index.Size() == 0 {
		return MatchResult{Type: MatchNoCatalog, NormalizedName: key}
	}

	bestScore := -1
	bestKey := ""
	for _, candidate := range e.index.Keys() {
		if score := e.score(key, candidate); score > bestScore {
			bestScore = score
			bestKey = candidate
		}
	}

	if bestScore >= e.config.FuzzyThreshold {
		item, _ := e.index.ItemFor(bestKey)
		return MatchResult{Type: MatchFuzzy, Item: item, Score: bestScore, NormalizedName: key}
	}

	return MatchResult{
		Type:           MatchNone,
		Score:          bestScore,
		NormalizedName: key,
		Suggestion:     bestKey,
	}
}

// isIgnored reports whether a normalized key is noise that must never reach
// the pending report or the unmatched counter.
func (e *Engine) isIgnored(key string) bool {
	if key == "" {
		return true
	}
	for _, token := range e.config.IgnoreTokens {
		if key == token {
			return true
		}
	}
	for _, prefix := range e.config.IgnorePrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
