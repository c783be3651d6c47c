// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import (
	"fmt"
	"hash/fnv"
)

// Backend is the fuzzy-matching strategy surface. The reference Matcher and
// the Accelerated variant implement identical lookup semantics; callers hold
// a Backend and never branch on which one they got.
type Backend interface {
	Lookup(query string) Result
	Has(query string) bool
	GetConfidence(query string) float64
	Size() int
	IndexSize() int
	ClearCache()
}

// NewBackend builds the configured backend. Selection happens once here:
// if the accelerated variant cannot be constructed, the reference matcher is
// substituted silently.
func NewBackend(terms []string, config Config, accelerated bool) Backend {
	if accelerated {
		if b, err := NewAccelerated(terms, config); err == nil {
			return b
		}
	}
	return New(terms, config)
}

const cacheShards = 16

// Accelerated shares the reference matcher's index but spreads the query
// cache across shards so concurrent lookups do not serialize on one mutex.
// Lookup results are identical to the reference backend by construction.
type Accelerated struct {
	ref    *Matcher
	shards [cacheShards]*lruCache
}

// NewAccelerated builds the sharded-cache backend. The edit-distance budget
// is bounded because the deletion neighborhood grows combinatorially.
func NewAccelerated(terms []string, config Config) (*Accelerated, error) {
	if config.MaxEditDistance < 0 || config.MaxEditDistance > 3 {
		return nil, fmt.Errorf("accelerated matcher: unsupported max edit distance %d", config.MaxEditDistance)
	}
	if config.CacheSize < 0 {
		return nil, fmt.Errorf("accelerated matcher: negative cache size %d", config.CacheSize)
	}

	a := &Accelerated{ref: New(terms, config)}
	shardSize := config.CacheSize / cacheShards
	if shardSize < 100 {
		shardSize = 100
	}
	for i := range a.shards {
		a.shards[i] = newLRUCache(shardSize)
	}
	return a, nil
}

func (a *Accelerated) shard(key string) *lruCache {
	h := fnv.New32a()
	h.Write([]byte(key))
	return a.shards[h.Sum32()%cacheShards]
}

// Lookup resolves a query with the same semantics as the reference matcher.
func (a *Accelerated) Lookup(query string) Result {
	normalized := normalizeTerm(query)

	shard := a.shard(normalized)
	if cached, ok := shard.get(normalized); ok {
		return cached
	}

	result := a.ref.lookupUncached(normalized)
	shard.put(normalized, result)
	return result
}

func (a *Accelerated) Has(query string) bool {
	return a.Lookup(query).Matched
}

func (a *Accelerated) GetConfidence(query string) float64 {
	return a.Lookup(query).Confidence
}

func (a *Accelerated) Size() int {
	return a.ref.Size()
}

func (a *Accelerated) IndexSize() int {
	return a.ref.IndexSize()
}

func (a *Accelerated) ClearCache() {
	for _, shard := range a.shards {
		shard.clear()
	}
}
