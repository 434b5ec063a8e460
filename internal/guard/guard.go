// Package guard wraps function execution with a data quality gate. A
// guarded call resolves a standard, assesses the dataset against it, and
// either allows, warns, or blocks the call depending on the outcome and
// failure mode.
package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"adri/domain/assessment"
	"adri/domain/core"
	"adri/domain/dataset"
	"adri/domain/standard"
	"adri/internal/audit"
	"adri/internal/bundled"
	"adri/internal/config"
	"adri/internal/engine"
	"adri/internal/generation"
	"adri/internal/inference"
)

// Failure modes
const (
	ModeRaise    = "raise"
	ModeWarn     = "warn"
	ModeContinue = "continue"
)

// Options configures one guarded call. Zero values defer to the loaded
// configuration's protection defaults.
type Options struct {
	FunctionName string
	DataParam    string

	// Standard selection, highest precedence first
	StandardDoc  *standard.Standard
	StandardFile string
	StandardName string

	MinScore          *float64
	DimensionMinimums map[string]float64
	FailureMode       string
	AutoGenerate      *bool
	Verbose           *bool
}

// Decision is the full outcome of the quality gate for one call
type Decision struct {
	Result           *assessment.AssessmentResult
	Standard         *standard.Standard
	StandardPath     string
	Bundled          bool
	RequiredScore    float64
	Allowed          bool
	FailedDimensions []string
	CacheHit         bool
	Duration         time.Duration
}

// Guard gates function execution on data quality
type Guard struct {
	cfg      *config.Config
	resolver *config.Resolver
	engine   *engine.Engine
	bundled  *bundled.Loader
	auditor  *audit.Logger
	cache    *resultCache
}

// New builds a guard from a loaded configuration. The audit logger may
// be nil to disable audit trails.
func New(cfg *config.Config, auditor *audit.Logger) *Guard {
	if cfg == nil {
		cfg = config.Default()
	}
	ttl := time.Duration(cfg.Protection.CacheDurationHours * float64(time.Hour))
	return &Guard{
		cfg:      cfg,
		resolver: config.NewResolver(cfg),
		engine: engine.NewWithLimits(engine.Limits{
			MaxRows:        cfg.Assessment.MaxRows,
			SampleFailures: cfg.Assessment.SampleFailures,
		}),
		bundled: bundled.NewLoader(),
		auditor: auditor,
		cache:   newResultCache(ttl),
	}
}

// PurgeCache drops all memoized assessment results
func (g *Guard) PurgeCache() { g.cache.purge() }

// Run assesses ds and, when the gate allows it, invokes fn. On a block
// in raise mode the returned error satisfies core.IsProtectionError.
func (g *Guard) Run(ctx context.Context, ds *dataset.Dataset, opts Options, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	decision, err := g.Check(ctx, ds, opts)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		switch g.failureMode(opts) {
		case ModeWarn:
			// the warning carries the full refusal diagnostic even though
			// the call proceeds
			log.Warn().
				Str("function", opts.FunctionName).
				Float64("score", decision.Result.OverallScore).
				Float64("required", decision.RequiredScore).
				Msg(g.blockMessage(decision))
		case ModeContinue:
			// silent by contract
		case ModeRaise:
			return nil, core.NewProtectionError(g.blockMessage(decision))
		default:
			log.Error().Str("failure_mode", g.failureMode(opts)).Msg("unknown failure mode, blocking")
			return nil, core.NewProtectionError(g.blockMessage(decision))
		}
	}
	return fn(ctx)
}

// Protect wraps a dataset-consuming function so every call passes
// through the quality gate first.
func Protect(g *Guard, opts Options, fn func(context.Context, *dataset.Dataset) (interface{}, error)) func(context.Context, *dataset.Dataset) (interface{}, error) {
	return func(ctx context.Context, ds *dataset.Dataset) (interface{}, error) {
		return g.Run(ctx, ds, opts, func(ctx context.Context) (interface{}, error) {
			return fn(ctx, ds)
		})
	}
}

// Check resolves the standard, assesses the dataset and records the
// audit trail without dispatching any wrapped function.
func (g *Guard) Check(ctx context.Context, ds *dataset.Dataset, opts Options) (*Decision, error) {
	if ds == nil {
		return nil, core.NewProtectionError("no dataset supplied to guarded call")
	}
	started := time.Now()

	std, path, isBundled, err := g.resolveStandard(ds, opts)
	if err != nil {
		return nil, err
	}
	effective := g.applyOverrides(std, opts)

	fingerprint := ds.Fingerprint()
	key := cacheKey(fingerprint, effective, opts)
	result, hit, err := g.cache.do(key, func() (*assessment.AssessmentResult, error) {
		return g.engine.Assess(ds, effective)
	})
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		Result:        result,
		Standard:      effective,
		StandardPath:  path,
		Bundled:       isBundled,
		RequiredScore: effective.Requirements.OverallMinimum,
		CacheHit:      hit,
		Duration:      time.Since(started),
	}
	decision.FailedDimensions = failedDimensions(result, effective)
	decision.Allowed = result.Passed && len(decision.FailedDimensions) == 0

	g.recordAudit(ds, opts, decision, fingerprint)

	if g.verbose(opts) {
		log.Info().
			Str("function", opts.FunctionName).
			Str("standard", effective.Standards.ID).
			Float64("score", result.OverallScore).
			Float64("required", decision.RequiredScore).
			Bool("allowed", decision.Allowed).
			Bool("cache_hit", hit).
			Dur("elapsed", decision.Duration).
			Msg("quality gate evaluated")
	}
	return decision, nil
}

// resolveStandard applies the precedence: inline document, then explicit
// contract path, then named standard (bundled before file), then the
// naming convention derived from the guarded function.
func (g *Guard) resolveStandard(ds *dataset.Dataset, opts Options) (*standard.Standard, string, bool, error) {
	if opts.StandardDoc != nil {
		if err := opts.StandardDoc.Validate(); err != nil {
			return nil, "", false, err
		}
		return opts.StandardDoc, "<inline>", false, nil
	}

	if opts.StandardFile != "" {
		std, err := standard.LoadFile(opts.StandardFile)
		if err != nil {
			return nil, "", false, err
		}
		return std, opts.StandardFile, false, nil
	}

	name := opts.StandardName
	if name == "" {
		if opts.FunctionName == "" || opts.DataParam == "" {
			return nil, "", false, core.NewProtectionError("no standard specified and no function/parameter names to derive one from")
		}
		name = fmt.Sprintf("%s_%s", opts.FunctionName, opts.DataParam)
	}

	if g.bundled.Exists(name) {
		std, err := g.bundled.Load(name)
		if err != nil {
			return nil, "", false, err
		}
		return std, name, true, nil
	}

	resolution := g.resolver.Resolve(name, "")
	if resolution.Exists {
		log.Debug().Str("standard", name).Str("path", resolution.Path).
			Msg("no bundled standard of this name, using contract file")
		std, err := standard.LoadFile(resolution.Path)
		if err != nil {
			return nil, "", false, err
		}
		return std, resolution.Path, false, nil
	}

	if g.autoGenerate(opts) {
		std, err := g.generateStandard(ds, name, resolution.Path)
		if err != nil {
			return nil, "", false, err
		}
		return std, resolution.Path, false, nil
	}

	return nil, "", false, core.NewProtectionError(fmt.Sprintf("Standard file not found: %s", resolution.Path))
}

// generateStandard trains a standard from a head sample of the live data
// and persists it at the resolved contract path.
func (g *Guard) generateStandard(ds *dataset.Dataset, name, path string) (*standard.Standard, error) {
	limit := g.cfg.Generation.SampleLimit
	if limit <= 0 {
		limit = 1000
	}
	sample := ds.Head(limit)

	genOpts := generation.DefaultOptions(name)
	if g.cfg.Generation.OverallMinimum > 0 {
		genOpts.OverallMinimum = g.cfg.Generation.OverallMinimum
	}
	if s := g.cfg.Generation.RangeStrategy; s != "" {
		genOpts.Inference.RangeStrategy = inference.RangeStrategy(s)
	}
	if s := g.cfg.Generation.EnumStrategy; s != "" {
		genOpts.Inference.EnumStrategy = inference.EnumStrategy(s)
	}
	std, err := generation.NewGenerator(genOpts).Generate(sample)
	if err != nil {
		return nil, core.NewProtectionError(fmt.Sprintf("auto-generation failed for %s: %v", name, err))
	}
	if err := generation.WriteStandard(path, std); err != nil {
		return nil, core.NewProtectionError(fmt.Sprintf("could not persist generated standard %s: %v", name, err))
	}
	log.Info().Str("standard", name).Str("path", path).Int("sample_rows", sample.RowCount()).
		Msg("auto-generated standard from training data")
	return std, nil
}

// minScore resolves the effective overall threshold: call-site option,
// then the protection block's default, then the standard's own minimum.
func (g *Guard) minScore(opts Options) *float64 {
	if opts.MinScore != nil {
		return opts.MinScore
	}
	if g.cfg.Protection.DefaultMinScore > 0 {
		v := g.cfg.Protection.DefaultMinScore
		return &v
	}
	return nil
}

// applyOverrides clones the standard when call-site or configured
// thresholds replace the document's own.
func (g *Guard) applyOverrides(std *standard.Standard, opts Options) *standard.Standard {
	minScore := g.minScore(opts)
	if minScore == nil && len(opts.DimensionMinimums) == 0 {
		return std
	}
	clone := std.Clone()
	if minScore != nil {
		clone.Requirements.OverallMinimum = *minScore
	}
	for dim, minimum := range opts.DimensionMinimums {
		if clone.Requirements.DimensionRequirements == nil {
			clone.Requirements.DimensionRequirements = make(map[string]standard.DimensionConfig)
		}
		dc := clone.Requirements.DimensionRequirements[dim]
		dc.MinimumScore = minimum
		clone.Requirements.DimensionRequirements[dim] = dc
	}
	return clone
}

func failedDimensions(result *assessment.AssessmentResult, std *standard.Standard) []string {
	var failed []string
	for _, dim := range standard.Dimensions {
		dc, ok := std.Requirements.DimensionRequirements[dim]
		if !ok || dc.MinimumScore <= 0 {
			continue
		}
		if score, scored := result.DimensionScoreValue(dim); scored && score < dc.MinimumScore {
			failed = append(failed, dim)
		}
	}
	return failed
}

func cacheKey(fp core.Fingerprint, std *standard.Standard, opts Options) string {
	var b strings.Builder
	b.WriteString(fp.String())
	b.WriteByte('|')
	b.WriteString(std.Standards.ID)
	b.WriteByte('|')
	b.WriteString(std.Standards.Version)
	fmt.Fprintf(&b, "|%g", std.Requirements.OverallMinimum)
	for _, dim := range standard.Dimensions {
		if dc, ok := std.Requirements.DimensionRequirements[dim]; ok && dc.MinimumScore > 0 {
			fmt.Fprintf(&b, "|%s=%g", dim, dc.MinimumScore)
		}
	}
	return b.String()
}

func (g *Guard) failureMode(opts Options) string {
	if opts.FailureMode != "" {
		return opts.FailureMode
	}
	if g.cfg.Protection.DefaultFailureMode != "" {
		return g.cfg.Protection.DefaultFailureMode
	}
	return ModeRaise
}

func (g *Guard) autoGenerate(opts Options) bool {
	if opts.AutoGenerate != nil {
		return *opts.AutoGenerate
	}
	return g.cfg.Protection.AutoGenerate
}

func (g *Guard) verbose(opts Options) bool {
	if opts.Verbose != nil {
		return *opts.Verbose
	}
	return g.cfg.Protection.Verbose
}

// recordAudit writes the audit trail. Audit failures never block the
// guarded call.
func (g *Guard) recordAudit(ds *dataset.Dataset, opts Options, d *Decision, fp core.Fingerprint) {
	if g.auditor == nil {
		return
	}
	err := g.auditor.Record(audit.Entry{
		Result:       d.Result,
		Standard:     d.Standard,
		StandardPath: d.StandardPath,
		FunctionName: opts.FunctionName,
		Decision:     g.decisionLabel(opts, d),
		FailureMode:  g.failureMode(opts),
		CacheHit:     d.CacheHit,
		Fingerprint:  fp.String(),
		RowCount:     ds.RowCount(),
		ColumnCount:  ds.ColumnCount(),
		Duration:     d.Duration,
	})
	if err != nil {
		log.Warn().Err(err).Msg("audit record failed")
	}
}

func (g *Guard) decisionLabel(opts Options, d *Decision) string {
	if d.Allowed {
		return audit.DecisionAllowed
	}
	switch g.failureMode(opts) {
	case ModeWarn:
		return audit.DecisionWarnContinue
	case ModeContinue:
		return audit.DecisionContinueSilent
	default:
		return audit.DecisionBlocked
	}
}

// blockMessage renders the user-facing refusal: what score the data got,
// what it needed, which standard judged it, and the two issues that cost
// the most.
func (g *Guard) blockMessage(d *Decision) string {
	var b strings.Builder
	label := d.Standard.Standards.ID
	if d.Bundled {
		label += " (bundled)"
	}
	if d.Result.OverallScore < d.RequiredScore {
		fmt.Fprintf(&b, "BLOCKED: data quality score %.1f/100 is below the required %.1f (standard: %s)",
			d.Result.OverallScore, d.RequiredScore, label)
	} else {
		fmt.Fprintf(&b, "BLOCKED: data quality score %.1f/100 (standard: %s)",
			d.Result.OverallScore, label)
	}
	if len(d.FailedDimensions) > 0 {
		fmt.Fprintf(&b, "\nDimension minimums not met: %s", strings.Join(d.FailedDimensions, ", "))
	}
	if top := d.Result.TopFailures(2); len(top) > 0 {
		b.WriteString("\nTop issues:")
		for _, f := range top {
			fmt.Fprintf(&b, "\n  - %s: %.1f%% of rows fail the %s check", f.FieldName, f.AffectedPercentage, f.IssueType)
		}
	}
	fmt.Fprintf(&b, "\nInspect the requirements with: adri show-standard %s", d.Standard.Standards.ID)
	return b.String()
}
