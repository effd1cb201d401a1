package gotdop

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sandrolain/gotdop/pkg/arith"
	"github.com/sandrolain/gotdop/pkg/cache"
	"github.com/sandrolain/gotdop/pkg/format"
)

// Compiler parses, evaluates and prints expressions according to a Config.
// It is safe for concurrent use.
type Compiler struct {
	cfg       Config
	logger    log.Logger
	cache     *cache.Cache[arith.Expr] // nil when caching is disabled
	evaluator *arith.Evaluator
	metrics   *compilerMetrics
}

type compilerMetrics struct {
	cacheRequests prometheus.Counter
	cacheHits     prometheus.Counter
	parseFailures prometheus.Counter
	evaluations   *prometheus.CounterVec
	evalDuration  prometheus.Histogram
}

func newCompilerMetrics(reg prometheus.Registerer) *compilerMetrics {
	return &compilerMetrics{
		cacheRequests: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "gotdop_expression_cache_requests_total",
			Help: "Total number of expressions looked up in the expression cache.",
		}),
		cacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "gotdop_expression_cache_hits_total",
			Help: "Total number of expressions fetched from the expression cache.",
		}),
		parseFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "gotdop_parse_failures_total",
			Help: "Total number of expressions that failed to parse.",
		}),
		evaluations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gotdop_evaluations_total",
			Help: "Total number of evaluations, by outcome.",
		}, []string{"outcome"}),
		evalDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "gotdop_evaluation_duration_seconds",
			Help:    "Time spent evaluating parsed expressions.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}
}

// New creates a Compiler. Metrics are registered with reg, which may be nil.
// Extra evaluator options, such as custom functions, are applied after the
// ones derived from cfg.
func New(cfg Config, logger log.Logger, reg prometheus.Registerer, opts ...arith.EvalOption) (*Compiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid compiler config")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	c := &Compiler{cfg: cfg, logger: logger, metrics: newCompilerMetrics(reg)}
	if cfg.CacheSize > 0 {
		c.cache = cache.New[arith.Expr](cfg.CacheSize)
	}

	evalOpts := append([]arith.EvalOption{
		arith.WithMaxDepth(cfg.MaxDepth),
		arith.WithTimeout(cfg.EvalTimeout),
		arith.WithLogger(log.With(logger, "component", "evaluator")),
	}, opts...)
	c.evaluator = arith.NewEvaluator(evalOpts...)

	level.Debug(logger).Log("msg", "compiler created", "cache_size", cfg.CacheSize, "color", cfg.Color)
	return c, nil
}

// Compile parses src, reusing a cached tree when one exists.
func (c *Compiler) Compile(src string) (arith.Expr, error) {
	if c.cache == nil {
		return c.parse(src)
	}

	c.metrics.cacheRequests.Inc()
	missed := false
	expr, err := c.cache.GetOrParse(src, func() (arith.Expr, error) {
		missed = true
		level.Debug(c.logger).Log("msg", "expression cache miss", "src", src)
		return c.parse(src)
	})
	if err == nil && !missed {
		c.metrics.cacheHits.Inc()
	}
	return expr, err
}

func (c *Compiler) parse(src string) (arith.Expr, error) {
	expr, err := arith.Parse(src)
	if err != nil {
		c.metrics.parseFailures.Inc()
		level.Debug(c.logger).Log("msg", "parse failed", "src", src, "err", err)
		return nil, err
	}
	return expr, nil
}

// Eval parses src and evaluates it in env.
func (c *Compiler) Eval(ctx context.Context, src string, env *arith.Env) (int, error) {
	expr, err := c.Compile(src)
	if err != nil {
		return 0, err
	}
	return c.EvalExpr(ctx, expr, env)
}

// EvalExpr evaluates an already compiled expression in env.
func (c *Compiler) EvalExpr(ctx context.Context, expr arith.Expr, env *arith.Env) (int, error) {
	start := time.Now()
	v, err := c.evaluator.Eval(ctx, expr, env)
	c.metrics.evalDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.evaluations.WithLabelValues("error").Inc()
		return 0, err
	}
	c.metrics.evaluations.WithLabelValues("success").Inc()
	return v, nil
}

// Format prints the full tree of expr to w, wrapped at the configured width
// and colored according to the configured mode.
func (c *Compiler) Format(w io.Writer, expr arith.Expr) error {
	tree, err := arith.PrettyTree(expr)
	if err != nil {
		return err
	}

	out := c.output(w)
	out.FileHeader()
	if err := format.PrintTree(out, tree, c.cfg.MaxColumns); err != nil {
		return errors.Wrap(err, "printing tree")
	}
	out.Write("\n")
	out.FileFooter()
	return errors.Wrap(out.Err(), "printing tree")
}

func (c *Compiler) output(w io.Writer) format.Output {
	switch c.cfg.Color {
	case ColorAlways:
		return format.NewAnsiOutput(w)
	case ColorHTML:
		return format.NewHTMLOutput(w)
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			return format.DetectConsoleOutput(f)
		}
	}
	return format.NewTextOutput(w)
}

// Cache returns the expression cache, or nil if caching is disabled.
func (c *Compiler) Cache() *cache.Cache[arith.Expr] {
	return c.cache
}
