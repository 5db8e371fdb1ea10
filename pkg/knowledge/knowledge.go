// Package knowledge wraps the requirement catalogs with embedding
// memoization, nearest-requirement retrieval, and mandatory-gap
// detection.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/praxia-labs/clausecheck/pkg/catalog"
	"github.com/praxia-labs/clausecheck/pkg/compliance"
	"github.com/praxia-labs/clausecheck/pkg/embedding"
)

// DefaultSimilarityThreshold is the minimum cosine similarity for a
// requirement to count as a candidate match.
const DefaultSimilarityThreshold = 0.75

// coverageTopK widens the match window for gap detection so marginal
// matches still count as coverage.
const coverageTopK = 5

// Match pairs a matched requirement with its similarity score.
type Match struct {
	Requirement compliance.Requirement
	Similarity  float64
}

// Base is the regulatory knowledge base. The requirement catalogs are
// read-only; the embedding cache is the only mutable state and is
// guarded to avoid duplicate provider calls under concurrency.
type Base struct {
	store    *catalog.Store
	provider embedding.Provider
	cache    embedding.Cache
	logger   *slog.Logger

	mu        sync.RWMutex // guards threshold and first-time cache fills
	threshold float64
}

// Option configures a Base.
type Option func(*Base)

// WithCache swaps the embedding cache backend (memory, SQLite, Redis).
func WithCache(c embedding.Cache) Option {
	return func(b *Base) { b.cache = c }
}

// WithSimilarityThreshold sets the initial matching threshold.
func WithSimilarityThreshold(v float64) Option {
	return func(b *Base) { b.threshold = v }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Base) { b.logger = l }
}

// New creates a knowledge base over the given catalogs and provider.
func New(store *catalog.Store, provider embedding.Provider, opts ...Option) *Base {
	b := &Base{
		store:     store,
		provider:  provider,
		cache:     embedding.NewMemoryCache(),
		logger:    slog.Default().With("component", "knowledge"),
		threshold: DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store exposes the underlying requirement catalogs.
func (b *Base) Store() *catalog.Store {
	return b.store
}

// SimilarityThreshold returns the current matching threshold.
func (b *Base) SimilarityThreshold() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// SetSimilarityThreshold updates the matching threshold.
func (b *Base) SetSimilarityThreshold(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("similarity threshold must be between 0.0 and 1.0, got %v", v)
	}
	b.mu.Lock()
	b.threshold = v
	b.mu.Unlock()
	b.logger.Info("similarity threshold updated", "threshold", v)
	return nil
}

// embeddingText is the canonical text embedded for a requirement.
func embeddingText(req compliance.Requirement) string {
	return req.Description + " " + strings.Join(req.Keywords, " ")
}

// RequirementEmbedding returns the cached embedding for a requirement,
// generating and memoizing it on first use. Repeated calls are pure from
// the caller's perspective.
func (b *Base) RequirementEmbedding(ctx context.Context, req compliance.Requirement) ([]float32, error) {
	if vec, ok, err := b.cache.Get(ctx, req.ID); err == nil && ok {
		return vec, nil
	} else if err != nil {
		b.logger.Warn("embedding cache read failed", "requirement", req.ID, "error", err)
	}

	// Single-flight the provider call; a concurrent duplicate fill would
	// be harmless (idempotent) but wastes a provider round trip.
	b.mu.Lock()
	defer b.mu.Unlock()

	if vec, ok, err := b.cache.Get(ctx, req.ID); err == nil && ok {
		return vec, nil
	}

	vec, err := b.provider.Embed(ctx, embeddingText(req))
	if err != nil {
		return nil, fmt.Errorf("embed requirement %s: %w", req.ID, err)
	}

	if err := b.cache.Put(ctx, req.ID, vec); err != nil {
		b.logger.Warn("embedding cache write failed", "requirement", req.ID, "error", err)
	}
	return vec, nil
}

// PrecomputeEmbeddings batch-warms the cache for the given frameworks
// (all frameworks when none are named). Individual failures are logged
// and skipped; the warm-up is best effort.
func (b *Base) PrecomputeEmbeddings(ctx context.Context, frameworks ...compliance.Framework) {
	var reqs []compliance.Requirement
	if len(frameworks) == 0 {
		reqs = b.store.AllRequirements()
	} else {
		for _, fw := range frameworks {
			reqs = append(reqs, b.store.Requirements(fw)...)
		}
	}

	// Skip requirements that are already warm.
	var cold []compliance.Requirement
	for _, req := range reqs {
		if _, ok, err := b.cache.Get(ctx, req.ID); err == nil && ok {
			continue
		}
		cold = append(cold, req)
	}
	if len(cold) == 0 {
		return
	}

	texts := make([]string, len(cold))
	for i, req := range cold {
		texts[i] = embeddingText(req)
	}

	vecs, err := b.provider.EmbedBatch(ctx, texts)
	if err == nil && len(vecs) == len(cold) {
		for i, req := range cold {
			if err := b.cache.Put(ctx, req.ID, vecs[i]); err != nil {
				b.logger.Warn("embedding cache write failed", "requirement", req.ID, "error", err)
			}
		}
		b.logger.Info("precomputed requirement embeddings", "count", len(cold))
		return
	}
	if err != nil {
		b.logger.Warn("batch embedding failed, falling back to per-item", "error", err)
	}

	warmed := 0
	for _, req := range cold {
		if _, err := b.RequirementEmbedding(ctx, req); err != nil {
			b.logger.Warn("could not precompute embedding", "requirement", req.ID, "error", err)
			continue
		}
		warmed++
	}
	b.logger.Info("precomputed requirement embeddings", "count", warmed, "skipped", len(cold)-warmed)
}

// MatchClauseToRequirements finds up to topK requirements matching the
// clause by semantic similarity. Candidates are restricted to the
// clause's predicted type within the framework and must meet the
// similarity threshold. Results are ordered by similarity descending;
// ties keep catalog order. A clause without an embedding, or with no
// candidates above threshold, yields an empty result.
func (b *Base) MatchClauseToRequirements(ctx context.Context, clause compliance.Clause, fw compliance.Framework, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := b.store.ByClauseType(fw, clause.Type)
	if len(candidates) == 0 {
		b.logger.Warn("no requirements for clause type",
			"framework", string(fw), "clause_type", clause.Type)
		return nil, nil
	}

	if len(clause.Embedding) == 0 {
		b.logger.Warn("clause has no embedding", "clause", clause.ID)
		return nil, nil
	}

	threshold := b.SimilarityThreshold()

	var matches []Match
	for _, req := range candidates {
		vec, err := b.RequirementEmbedding(ctx, req)
		if err != nil {
			// Degrade to "no match" for this requirement rather than
			// failing the clause.
			b.logger.Warn("requirement embedding unavailable",
				"requirement", req.ID, "error", err)
			vec = embedding.ZeroVector(len(clause.Embedding))
		}

		sim := embedding.Cosine(clause.Embedding, vec)
		if sim >= threshold {
			matches = append(matches, Match{Requirement: req, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// FindMissingRequirements returns the framework's mandatory requirements
// not covered by any clause, in catalog order. A requirement is covered
// when it appears in at least one clause's widened match set.
func (b *Base) FindMissingRequirements(ctx context.Context, clauses []compliance.Clause, fw compliance.Framework) []compliance.Requirement {
	covered := make(map[string]struct{})
	for _, clause := range clauses {
		matches, err := b.MatchClauseToRequirements(ctx, clause, fw, coverageTopK)
		if err != nil {
			b.logger.Warn("coverage matching failed", "clause", clause.ID, "error", err)
			continue
		}
		for _, m := range matches {
			covered[m.Requirement.ID] = struct{}{}
		}
	}

	var missing []compliance.Requirement
	for _, req := range b.store.Requirements(fw) {
		if !req.Mandatory {
			continue
		}
		if _, ok := covered[req.ID]; !ok {
			missing = append(missing, req)
		}
	}

	b.logger.Info("missing mandatory requirements identified",
		"framework", string(fw), "count", len(missing))
	return missing
}

// CachedEmbeddings reports the number of memoized requirement embeddings.
func (b *Base) CachedEmbeddings(ctx context.Context) int {
	n, err := b.cache.Len(ctx)
	if err != nil {
		return 0
	}
	return n
}

// ClearCache drops all memoized embeddings.
func (b *Base) ClearCache(ctx context.Context) error {
	return b.cache.Clear(ctx)
}
