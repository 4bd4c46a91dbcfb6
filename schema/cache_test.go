package schema

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stanford-oval/thingtalk-go/ast"
)

type countingRetriever struct {
	MemoryRetriever
	calls int32
	delay time.Duration
}

func (c *countingRetriever) GetClass(ctx context.Context, classKind string, flags ClassFlags) (*ast.ClassDef, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.MemoryRetriever.GetClass(ctx, classKind, flags)
}

func TestCachingRetrieverHitsCache(t *testing.T) {
	inner := &countingRetriever{MemoryRetriever: *NewMemoryRetriever()}
	inner.Classes["com.xkcd"] = &ast.ClassDef{Kind: "Class", Name: "com.xkcd", Queries: map[string]*ast.FunctionDef{
		"get_comic": {Kind: "query", Class: "com.xkcd", Name: "get_comic"},
	}}
	c, err := NewCachingRetriever(inner, 16, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := c.GetClass(context.Background(), "com.xkcd", ClassFlags{}); err != nil {
			t.Fatal(err)
		}
	}
	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("want 1 underlying call, got %d", got)
	}
}

func TestCachingRetrieverNegativeResult(t *testing.T) {
	inner := &countingRetriever{MemoryRetriever: *NewMemoryRetriever()}
	c, err := NewCachingRetriever(inner, 16, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		_, err := c.GetClass(context.Background(), "com.nonexistent", ClassFlags{})
		var nfe *NotFoundError
		if !errors.As(err, &nfe) {
			t.Fatalf("want NotFoundError, got %v", err)
		}
	}
	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("want negative result cached after 1 call, got %d calls", got)
	}
}

func TestCachingRetrieverCoalescesConcurrentFetches(t *testing.T) {
	inner := &countingRetriever{MemoryRetriever: *NewMemoryRetriever(), delay: 50 * time.Millisecond}
	inner.Classes["com.slow"] = &ast.ClassDef{Kind: "Class", Name: "com.slow", Queries: map[string]*ast.FunctionDef{}}
	c, err := NewCachingRetriever(inner, 16, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetClass(context.Background(), "com.slow", ClassFlags{}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("want coalesced to 1 underlying call, got %d", got)
	}
}

func TestCachingRetrieverTimeout(t *testing.T) {
	inner := &countingRetriever{MemoryRetriever: *NewMemoryRetriever(), delay: 100 * time.Millisecond}
	inner.Classes["com.slow"] = &ast.ClassDef{Kind: "Class", Name: "com.slow"}
	c, err := NewCachingRetriever(inner, 16, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.GetClass(context.Background(), "com.slow", ClassFlags{})
	if !errors.Is(err, SchemaFetchTimeout) {
		t.Fatalf("want SchemaFetchTimeout, got %v", err)
	}
}
