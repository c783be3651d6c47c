// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fuzzy implements SymSpell-style bounded edit-distance matching
// against large term dictionaries.
//
// The algorithm is Wolf Garbe's Symmetric Delete (2012): the deletion
// neighborhood of every dictionary term is precomputed into a hash index,
// so a query needs only its own deletions to gather candidates, independent
// of dictionary size. Candidates are then verified with the true
// Damerau-Levenshtein distance. A Soundex bucket serves as a phonetic
// fallback when no candidate is within the edit-distance budget.
//
// Reference: https://github.com/wolfgarbe/SymSpell
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Config controls index construction and lookup behavior.
type Config struct {
	// MaxEditDistance bounds the deletion neighborhood and candidate
	// verification. Terms further away than this are not matched (the
	// phonetic fallback tolerates one extra edit).
	MaxEditDistance int

	// EnablePhonetic builds the Soundex index used as a last-resort bucket.
	EnablePhonetic bool

	// MinTermLength excludes short dictionary terms entirely: terms below
	// this length are not indexed and can never be matched.
	MinTermLength int

	// CacheSize bounds the LRU query-result cache. Values below 100 are
	// raised to 100.
	CacheSize int
}

// DefaultConfig returns the settings used for general dictionaries.
func DefaultConfig() Config {
	return Config{
		MaxEditDistance: 2,
		EnablePhonetic:  true,
		MinTermLength:   3,
		CacheSize:       10000,
	}
}

// Match type labels reported in Result.MatchType.
const (
	MatchExact    = "EXACT"
	MatchDelete1  = "DELETE_1"
	MatchDelete2  = "DELETE_2"
	MatchPhonetic = "PHONETIC"
	MatchNone     = "NONE"
)

// Result is the outcome of one lookup. A non-match is a normal result:
// Matched false, Confidence 0, MatchType NONE, Distance -1.
type Result struct {
	Matched    bool
	Term       string
	Distance   int
	Confidence float64
	MatchType  string
}

type deletionEntry struct {
	term     string
	distance int
}

type deletionText struct {
	text     string
	distance int
}

// Matcher is the reference fuzzy-matching backend. The index is built once
// at construction and read-only afterward; the only mutable state is the
// query cache, which is safe for concurrent use.
type Matcher struct {
	config        Config
	exactTerms    map[string]struct{}
	deletionIndex map[string][]deletionEntry
	phoneticIndex map[string][]string
	cache         *lruCache
}

// New builds a matcher from a dictionary. Terms are lowercased and trimmed;
// terms shorter than MinTermLength are excluded from every index.
func New(terms []string, config Config) *Matcher {
	cacheSize := config.CacheSize
	if cacheSize < 100 {
		cacheSize = 100
	}

	m := &Matcher{
		config:        config,
		exactTerms:    make(map[string]struct{}, len(terms)),
		deletionIndex: make(map[string][]deletionEntry),
		phoneticIndex: make(map[string][]string),
		cache:         newLRUCache(cacheSize),
	}
	m.buildIndex(terms)
	return m
}

// NewFirstNameMatcher builds a matcher tuned for given-name dictionaries.
func NewFirstNameMatcher(names []string) *Matcher {
	return New(names, Config{
		MaxEditDistance: 2,
		EnablePhonetic:  true,
		MinTermLength:   2,
		CacheSize:       5000,
	})
}

// NewSurnameMatcher builds a matcher tuned for surname dictionaries.
func NewSurnameMatcher(names []string) *Matcher {
	return New(names, Config{
		MaxEditDistance: 2,
		EnablePhonetic:  true,
		MinTermLength:   2,
		CacheSize:       5000,
	})
}

// NewLocationMatcher builds a matcher tuned for place-name dictionaries.
// Phonetic fallback is disabled: location spellings vary too much for
// Soundex buckets to stay precise.
func NewLocationMatcher(locations []string) *Matcher {
	return New(locations, Config{
		MaxEditDistance: 2,
		EnablePhonetic:  false,
		MinTermLength:   3,
		CacheSize:       2000,
	})
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

func (m *Matcher) buildIndex(terms []string) {
	for _, raw := range terms {
		term := normalizeTerm(raw)
		if utf8.RuneCountInString(term) < m.config.MinTermLength {
			continue
		}

		m.exactTerms[term] = struct{}{}

		for _, del := range m.generateDeletions(term, m.config.MaxEditDistance) {
			m.deletionIndex[del.text] = append(m.deletionIndex[del.text], deletionEntry{
				term:     term,
				distance: del.distance,
			})
		}

		if m.config.EnablePhonetic {
			code := Soundex(term)
			m.phoneticIndex[code] = append(m.phoneticIndex[code], term)
		}
	}
}

// generateDeletions returns every string reachable from term by deleting up
// to maxDistance characters, deduplicated. Deletions shorter than what the
// minimum term length could still reach are pruned.
func (m *Matcher) generateDeletions(term string, maxDistance int) []deletionText {
	var result []deletionText
	seen := make(map[string]struct{})
	queue := []deletionText{{text: term, distance: 0}}

	minLen := m.config.MinTermLength - maxDistance
	if minLen < 1 {
		minLen = 1
	}

	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if current.distance > 0 {
			result = append(result, current)
		}
		if current.distance >= maxDistance {
			continue
		}

		chars := []rune(current.text)
		for i := range chars {
			deletion := string(chars[:i]) + string(chars[i+1:])
			if len([]rune(deletion)) < minLen {
				continue
			}
			if _, ok := seen[deletion]; ok {
				continue
			}
			seen[deletion] = struct{}{}
			queue = append(queue, deletionText{text: deletion, distance: current.distance + 1})
		}
	}

	return result
}

// Lookup resolves a query against the dictionary. Check order: exact set,
// deletion-index candidates verified by Damerau-Levenshtein, Soundex bucket,
// then no-match. Results are cached by normalized query.
func (m *Matcher) Lookup(query string) Result {
	normalized := normalizeTerm(query)

	if cached, ok := m.cache.get(normalized); ok {
		return cached
	}

	result := m.lookupUncached(normalized)
	m.cache.put(normalized, result)
	return result
}

func (m *Matcher) lookupUncached(query string) Result {
	// 1. Exact match, O(1).
	if _, ok := m.exactTerms[query]; ok {
		return Result{
			Matched:    true,
			Term:       query,
			Distance:   0,
			Confidence: 1.0,
			MatchType:  MatchExact,
		}
	}

	queryLen := utf8.RuneCountInString(query)

	// 2. Deletion-based candidate retrieval and verification.
	if queryLen >= m.config.MinTermLength {
		bestTerm, bestDistance := "", -1
		for _, candidate := range m.getCandidates(query) {
			distance := DamerauLevenshtein(query, candidate.term, m.config.MaxEditDistance)
			if distance > m.config.MaxEditDistance {
				continue
			}
			// Strict < keeps the first-found term on ties.
			if bestDistance < 0 || distance < bestDistance {
				bestTerm, bestDistance = candidate.term, distance
			}
		}

		if bestDistance >= 0 {
			matchType := MatchDelete2
			if bestDistance == 1 {
				matchType = MatchDelete1
			}
			return Result{
				Matched:    true,
				Term:       bestTerm,
				Distance:   bestDistance,
				Confidence: calculateConfidence(query, bestTerm, bestDistance),
				MatchType:  matchType,
			}
		}
	}

	// 3. Phonetic fallback: closest term in the query's Soundex bucket,
	// tolerating one edit beyond the normal budget, discounted 10%.
	if m.config.EnablePhonetic && queryLen >= m.config.MinTermLength {
		if bucket, ok := m.phoneticIndex[Soundex(query)]; ok {
			bestTerm, bestDistance := "", -1
			for _, term := range bucket {
				distance := DamerauLevenshtein(query, term, m.config.MaxEditDistance+1)
				if bestDistance < 0 || distance < bestDistance {
					bestTerm, bestDistance = term, distance
				}
			}
			if bestDistance >= 0 && bestDistance <= m.config.MaxEditDistance+1 {
				return Result{
					Matched:    true,
					Term:       bestTerm,
					Distance:   bestDistance,
					Confidence: calculateConfidence(query, bestTerm, bestDistance) * 0.9,
					MatchType:  MatchPhonetic,
				}
			}
		}
	}

	return Result{Distance: -1, MatchType: MatchNone}
}

// getCandidates unions direct index hits on the query with index hits on
// every deletion of the query, deduplicated by term.
func (m *Matcher) getCandidates(query string) []deletionEntry {
	var candidates []deletionEntry
	seen := make(map[string]struct{})

	add := func(entry deletionEntry) {
		if _, ok := seen[entry.term]; ok {
			return
		}
		seen[entry.term] = struct{}{}
		candidates = append(candidates, entry)
	}

	// The query itself may be a recorded deletion of a dictionary term.
	for _, entry := range m.deletionIndex[query] {
		add(entry)
	}

	for _, deletion := range m.generateDeletions(query, m.config.MaxEditDistance) {
		// A deletion of the query may itself be a dictionary term.
		if _, ok := m.exactTerms[deletion.text]; ok {
			add(deletionEntry{term: deletion.text, distance: deletion.distance})
		}
		for _, entry := range m.deletionIndex[deletion.text] {
			add(entry)
		}
	}

	return candidates
}

// Has reports whether the query resolves to any dictionary term within the
// matcher's tolerance.
func (m *Matcher) Has(query string) bool {
	return m.Lookup(query).Matched
}

// GetConfidence returns the confidence of the best match, 0 when none.
func (m *Matcher) GetConfidence(query string) float64 {
	return m.Lookup(query).Confidence
}

// Size returns the number of indexed dictionary terms.
func (m *Matcher) Size() int {
	return len(m.exactTerms)
}

// IndexSize returns the number of deletion-index keys.
func (m *Matcher) IndexSize() int {
	return len(m.deletionIndex)
}

// ClearCache drops all cached lookup results.
func (m *Matcher) ClearCache() {
	m.cache.clear()
}

// calculateConfidence scores a non-exact match: length-normalized similarity
// plus a Jaro-Winkler style common-prefix bonus, capped at 0.99, then decayed
// 8% per edit.
func calculateConfidence(query, matched string, distance int) float64 {
	if distance == 0 {
		return 1.0
	}

	queryChars := []rune(query)
	matchedChars := []rune(matched)

	maxLen := len(queryChars)
	if len(matchedChars) > maxLen {
		maxLen = len(matchedChars)
	}
	similarity := 1.0 - float64(distance)/float64(maxLen)

	maxPrefix := 4
	if len(queryChars) < maxPrefix {
		maxPrefix = len(queryChars)
	}
	if len(matchedChars) < maxPrefix {
		maxPrefix = len(matchedChars)
	}
	prefixLen := 0
	for i := 0; i < maxPrefix; i++ {
		if queryChars[i] != matchedChars[i] {
			break
		}
		prefixLen++
	}

	prefixBonus := float64(prefixLen) * 0.1 * (1.0 - similarity)
	confidence := similarity + prefixBonus
	if confidence > 0.99 {
		confidence = 0.99
	}

	for i := 0; i < distance; i++ {
		confidence *= 0.92
	}
	return confidence
}
