// Package checker orchestrates compliance checking across regulatory
// frameworks and produces document-level reports.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/praxia-labs/clausecheck/pkg/assess"
	"github.com/praxia-labs/clausecheck/pkg/catalog"
	"github.com/praxia-labs/clausecheck/pkg/compliance"
	"github.com/praxia-labs/clausecheck/pkg/config"
	"github.com/praxia-labs/clausecheck/pkg/embedding"
	"github.com/praxia-labs/clausecheck/pkg/knowledge"
	"github.com/praxia-labs/clausecheck/pkg/rules"
	"github.com/praxia-labs/clausecheck/pkg/score"
)

// ErrNoFrameworks is returned when a check is requested without naming
// any framework at all.
var ErrNoFrameworks = errors.New("at least one framework must be specified")

// Checker is the main orchestrator. It wires the knowledge base, rule
// engine, assessor, and scorer behind a single entry point.
type Checker struct {
	kb       *knowledge.Base
	engine   *rules.Engine
	assessor *assess.Assessor
	logger   *slog.Logger
	tracer   trace.Tracer
}

type options struct {
	cache      embedding.Cache
	threshold  float64
	logger     *slog.Logger
	precompute bool
}

// Option configures a Checker.
type Option func(*options)

// WithCache selects the embedding cache backend.
func WithCache(c embedding.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithSimilarityThreshold sets the initial matching threshold.
func WithSimilarityThreshold(v float64) Option {
	return func(o *options) { o.threshold = v }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithoutPrecompute skips the catalog embedding warm-up at construction.
func WithoutPrecompute() Option {
	return func(o *options) { o.precompute = false }
}

// New creates a checker over the embedded catalogs. The requirement
// embeddings are warmed best-effort; a failing provider delays matching
// but does not fail construction.
func New(provider embedding.Provider, opts ...Option) (*Checker, error) {
	o := options{
		cache:      embedding.NewMemoryCache(),
		threshold:  knowledge.DefaultSimilarityThreshold,
		logger:     slog.Default().With("component", "checker"),
		precompute: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := catalog.NewStore()
	if err != nil {
		return nil, fmt.Errorf("load requirement catalogs: %w", err)
	}

	kb := knowledge.New(store, provider,
		knowledge.WithCache(o.cache),
		knowledge.WithSimilarityThreshold(o.threshold))
	engine := rules.NewEngine()

	c := &Checker{
		kb:       kb,
		engine:   engine,
		assessor: assess.New(kb, assess.WithRuleEngine(engine)),
		logger:   o.logger,
		tracer:   otel.Tracer("clausecheck/checker"),
	}

	if o.precompute {
		c.kb.PrecomputeEmbeddings(context.Background())
	}

	c.logger.Info("compliance checker initialized",
		"requirements", store.Stats().TotalRequirements,
		"threshold", o.threshold)
	return c, nil
}

// NewFromConfig builds a checker with an HTTP embedding provider and
// cache backend selected by configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Checker, error) {
	provider := embedding.NewHTTPProvider(cfg.EmbeddingEndpoint, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)

	cache, err := cacheFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{
		WithCache(cache),
		WithSimilarityThreshold(cfg.SimilarityThreshold),
	}, opts...)
	return New(provider, opts...)
}

func cacheFromConfig(cfg *config.Config) (embedding.Cache, error) {
	switch cfg.CacheBackend {
	case "", "memory":
		return embedding.NewMemoryCache(), nil
	case "sqlite":
		cache, err := embedding.OpenSQLiteCache(cfg.CacheDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return cache, nil
	case "redis":
		return embedding.DialRedisCache(cfg.CacheDSN, "", 0), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// CheckCompliance assesses the clauses against the named frameworks and
// assembles a full report. Framework tokens are normalized; unknown
// tokens are logged and skipped. An entirely empty framework list is an
// error. No clauses, or no valid frameworks, yields a well-formed zero
// report rather than a failure.
func (c *Checker) CheckCompliance(ctx context.Context, clauses []compliance.Clause, frameworks []string, documentID string) (compliance.Report, error) {
	ctx, span := c.tracer.Start(ctx, "checker.CheckCompliance",
		trace.WithAttributes(
			attribute.String("document_id", documentID),
			attribute.Int("clauses", len(clauses)),
		))
	defer span.End()

	start := time.Now()

	if len(frameworks) == 0 {
		return compliance.Report{}, ErrNoFrameworks
	}

	valid := c.normalizeFrameworks(frameworks)
	if len(valid) == 0 {
		c.logger.Error("no valid frameworks", "requested", frameworks)
		return score.BuildReport(documentID, nil, nil, nil), nil
	}

	if len(clauses) == 0 {
		c.logger.Warn("no clauses provided", "document_id", documentID)
		return score.BuildReport(documentID, valid, nil, nil), nil
	}

	c.logger.Info("starting compliance check",
		"document_id", documentID,
		"clauses", len(clauses),
		"frameworks", len(valid))

	var results []compliance.Result
	for _, fw := range valid {
		results = append(results, c.assessor.AssessClauses(ctx, clauses, fw)...)
	}

	var missing []compliance.Requirement
	for _, fw := range valid {
		missing = append(missing, c.kb.FindMissingRequirements(ctx, clauses, fw)...)
	}

	report := score.BuildReport(documentID, valid, results, missing)

	span.SetAttributes(attribute.Float64("overall_score", report.OverallScore))
	c.logger.Info("compliance check completed",
		"document_id", documentID,
		"score", report.OverallScore,
		"elapsed", time.Since(start))
	return report, nil
}

// CheckSingleFramework checks the clauses against one framework.
func (c *Checker) CheckSingleFramework(ctx context.Context, clauses []compliance.Clause, framework string, documentID string) (compliance.Report, error) {
	return c.CheckCompliance(ctx, clauses, []string{framework}, documentID)
}

// QuickCheck returns per-framework scores without assembling a report.
// Invalid framework tokens are skipped.
func (c *Checker) QuickCheck(ctx context.Context, clauses []compliance.Clause, frameworks []string) map[compliance.Framework]float64 {
	ctx, span := c.tracer.Start(ctx, "checker.QuickCheck")
	defer span.End()

	scores := make(map[compliance.Framework]float64)
	for _, fw := range c.normalizeFrameworks(frameworks) {
		results := c.assessor.AssessClauses(ctx, clauses, fw)
		missing := c.kb.FindMissingRequirements(ctx, clauses, fw)
		scores[fw] = score.Overall(results, missing)
	}

	c.logger.Info("quick check completed", "frameworks", len(scores))
	return scores
}

// CheckWithProfile runs a check using an assessment profile's framework
// list and, when set, its similarity threshold.
func (c *Checker) CheckWithProfile(ctx context.Context, clauses []compliance.Clause, profile *config.AssessmentProfile, documentID string) (compliance.Report, error) {
	if profile.SimilarityThreshold > 0 {
		if err := c.kb.SetSimilarityThreshold(profile.SimilarityThreshold); err != nil {
			return compliance.Report{}, err
		}
	}
	return c.CheckCompliance(ctx, clauses, profile.Frameworks, documentID)
}

// ValidateClauseAgainstRequirement checks one clause against one
// specific requirement, bypassing clause-type matching.
func (c *Checker) ValidateClauseAgainstRequirement(ctx context.Context, clause compliance.Clause, requirementID string) (compliance.Result, error) {
	req, ok := c.kb.Store().ByID(requirementID)
	if !ok {
		return compliance.Result{}, fmt.Errorf("requirement not found: %s", requirementID)
	}

	reqVec, err := c.kb.RequirementEmbedding(ctx, req)
	if err != nil {
		return compliance.Result{}, fmt.Errorf("validate clause %s: %w", clause.ID, err)
	}

	similarity := embedding.Cosine(clause.Embedding, reqVec)
	ev := c.engine.Evaluate(clause, req, similarity)

	return compliance.Result{
		ClauseID:   clause.ID,
		ClauseText: clause.Text,
		ClauseType: clause.Type,
		Framework:  req.Framework,
		Status:     ev.Status,
		Risk:       ev.Risk,
		Matched:    []compliance.Requirement{req},
		Confidence: similarity,
		Issues:     ev.Issues,
	}, nil
}

// MissingRequirementsForFramework reports the framework's mandatory
// requirements not covered by the clauses. An unknown framework token
// yields nothing.
func (c *Checker) MissingRequirementsForFramework(ctx context.Context, clauses []compliance.Clause, framework string) []compliance.Requirement {
	fw, ok := compliance.ParseFramework(framework)
	if !ok {
		c.logger.Warn("invalid framework ignored", "framework", framework)
		return nil
	}
	return c.kb.FindMissingRequirements(ctx, clauses, fw)
}

// SetSimilarityThreshold updates the matching threshold for subsequent
// checks.
func (c *Checker) SetSimilarityThreshold(v float64) error {
	return c.kb.SetSimilarityThreshold(v)
}

// SupportedFrameworks lists the frameworks with embedded catalogs.
func (c *Checker) SupportedFrameworks() []compliance.Framework {
	return compliance.SupportedFrameworks()
}

// Statistics describes the loaded catalogs and cache state.
type Statistics struct {
	Catalog             catalog.Stats `json:"catalog"`
	CachedEmbeddings    int           `json:"cached_embeddings"`
	SimilarityThreshold float64       `json:"similarity_threshold"`
}

// Statistics reports catalog sizes, cache population, and the active
// threshold.
func (c *Checker) Statistics(ctx context.Context) Statistics {
	return Statistics{
		Catalog:             c.kb.Store().Stats(),
		CachedEmbeddings:    c.kb.CachedEmbeddings(ctx),
		SimilarityThreshold: c.kb.SimilarityThreshold(),
	}
}

// ClearCache drops the memoized requirement embeddings.
func (c *Checker) ClearCache(ctx context.Context) error {
	return c.kb.ClearCache(ctx)
}

func (c *Checker) normalizeFrameworks(frameworks []string) []compliance.Framework {
	var valid []compliance.Framework
	for _, raw := range frameworks {
		fw, ok := compliance.ParseFramework(raw)
		if !ok {
			c.logger.Warn("invalid framework ignored", "framework", raw)
			continue
		}
		valid = append(valid, fw)
	}
	return valid
}
