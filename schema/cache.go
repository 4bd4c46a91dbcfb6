package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stanford-oval/thingtalk-go/ast"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "thingtalk_schema_cache_hits_total",
		Help: "Schema cache lookups served without a retriever call.",
	}, []string{"kind"})
	cacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "thingtalk_schema_cache_misses_total",
		Help: "Schema cache lookups that fell through to the retriever.",
	}, []string{"kind"})
	fetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "thingtalk_schema_fetch_errors_total",
		Help: "Retriever calls that returned an error, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, fetchErrors)
}

type classEntry struct {
	class *ast.ClassDef
	err   error // non-nil for a cached negative result
}

// CachingRetriever wraps a Retriever with an LRU class-schema cache
// (including negative-result caching for missing classes),
// singleflight coalescing of concurrent fetches for the same key, and
// a per-fetch deadline, so that at most one fetch is ever in flight
// for a given (kind, name) pair.
type CachingRetriever struct {
	inner   Retriever
	classes *lru.Cache[string, classEntry]
	group   singleflight.Group
	timeout time.Duration
	log     *zap.Logger
}

// SchemaFetchTimeout is a distinguished error kind returned when an
// individual fetch exceeds its deadline.
var SchemaFetchTimeout = errors.New("schema: fetch timeout")

func NewCachingRetriever(inner Retriever, cacheSize int, timeout time.Duration, log *zap.Logger) (*CachingRetriever, error) {
	c, err := lru.New[string, classEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("schema: allocate cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachingRetriever{inner: inner, classes: c, timeout: timeout, log: log}, nil
}

func (c *CachingRetriever) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// GetClass caches both positive and negative results, keyed by class
// kind; concurrent callers for the same kind coalesce onto a single
// in-flight fetch.
func (c *CachingRetriever) GetClass(ctx context.Context, classKind string, flags ClassFlags) (*ast.ClassDef, error) {
	if e, ok := c.classes.Get(classKind); ok {
		cacheHits.WithLabelValues("class").Inc()
		return e.class, e.err
	}
	cacheMisses.WithLabelValues("class").Inc()
	v, err, _ := c.group.Do(classKind, func() (any, error) {
		fctx, cancel := c.withDeadline(ctx)
		defer cancel()
		cls, ferr := c.inner.GetClass(fctx, classKind, flags)
		if ferr == context.DeadlineExceeded {
			ferr = fmt.Errorf("%w: class %s", SchemaFetchTimeout, classKind)
		}
		var nfe *NotFoundError
		if errors.As(ferr, &nfe) || ferr == nil {
			c.classes.Add(classKind, classEntry{class: cls, err: ferr})
		}
		if ferr != nil {
			fetchErrors.WithLabelValues("class").Inc()
			c.log.Warn("schema fetch failed", zap.String("class", classKind), zap.Error(ferr))
		}
		return cls, ferr
	})
	if err != nil {
		return nil, err
	}
	return v.(*ast.ClassDef), nil
}

// GetFunction resolves through GetClass so a single cache entry per
// class backs every function lookup on it.
func (c *CachingRetriever) GetFunction(ctx context.Context, classKind, name, kindOf string) (*ast.FunctionDef, error) {
	cls, err := c.GetClass(ctx, classKind, ClassFlags{})
	if err != nil {
		return nil, err
	}
	fd, ok := cls.Function(kindOf, name)
	if !ok {
		return nil, &NotFoundError{ClassKind: classKind, Name: name, KindOf: kindOf}
	}
	return fd, nil
}

func (c *CachingRetriever) GetExamplesByKinds(ctx context.Context, kinds []string) (*ast.Dataset, error) {
	fctx, cancel := c.withDeadline(ctx)
	defer cancel()
	return c.inner.GetExamplesByKinds(fctx, kinds)
}

func (c *CachingRetriever) InjectNaturalLanguageAnnotations(ctx context.Context, node ast.Node) (ast.Node, error) {
	fctx, cancel := c.withDeadline(ctx)
	defer cancel()
	return c.inner.InjectNaturalLanguageAnnotations(fctx, node)
}
