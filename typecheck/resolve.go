package typecheck

import (
	"context"
	"sync"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/schema"
)

// resolveSchemas is pass one: enqueue and fetch a FunctionDef for
// every Invocation and ExternalExpr reachable from root, independent
// fetches issued concurrently and joined before checking proceeds.
func resolveSchemas(ctx context.Context, r schema.Retriever, root ast.Node) ErrorList {
	var (
		mu   sync.Mutex
		errs ErrorList
		wg   sync.WaitGroup
	)
	if pr, ok := root.(*ast.PermissionRule); ok {
		wg.Add(2)
		go resolvePermFunc(ctx, r, &pr.Query, &wg, &mu, &errs)
		go resolvePermFunc(ctx, r, &pr.Action, &wg, &mu, &errs)
	}
	for prim := range ast.IteratePrimitives(root) {
		wg.Add(1)
		go func(prim ast.Primitive) {
			defer wg.Done()
			switch prim.PrimitiveKind {
			case ast.PrimitiveInvocation:
				inv := prim.Node.(*ast.Invocation)
				kindOf := "query"
				fd, err := r.GetFunction(ctx, inv.Selector.ClassKind, inv.Channel, kindOf)
				if err != nil {
					fd, err = r.GetFunction(ctx, inv.Selector.ClassKind, inv.Channel, "action")
					kindOf = "action"
				}
				if err != nil {
					mu.Lock()
					errs = append(errs, &TypeError{KindOf: UnresolvedSchema, Pos: inv.Pos(), Message: err.Error()})
					mu.Unlock()
					return
				}
				_ = kindOf
				inv.Schema = fd
			case ast.PrimitiveExternal:
				ext := prim.Node.(*ast.ExternalExpr)
				fd, err := r.GetFunction(ctx, ext.Selector.ClassKind, ext.Channel, "query")
				if err != nil {
					fd, err = r.GetFunction(ctx, ext.Selector.ClassKind, ext.Channel, "action")
				}
				if err != nil {
					mu.Lock()
					errs = append(errs, &TypeError{KindOf: UnresolvedSchema, Pos: ext.Pos(), Message: err.Error()})
					mu.Unlock()
					return
				}
				ext.Schema = fd
			}
		}(prim)
	}
	wg.Wait()
	return errs
}

// resolvePermFunc resolves the schema of one PermissionFunction arm of
// a PermissionRule; * and now/notify carry no schema to resolve.
func resolvePermFunc(ctx context.Context, r schema.Retriever, f *ast.PermissionFunction, wg *sync.WaitGroup, mu *sync.Mutex, errs *ErrorList) {
	defer wg.Done()
	if f.Star || f.Builtin {
		return
	}
	fd, err := r.GetFunction(ctx, f.Selector.ClassKind, f.Channel, "query")
	if err != nil {
		fd, err = r.GetFunction(ctx, f.Selector.ClassKind, f.Channel, "action")
	}
	if err != nil {
		mu.Lock()
		*errs = append(*errs, &TypeError{KindOf: UnresolvedSchema, Pos: f.Selector.Pos(), Message: err.Error()})
		mu.Unlock()
		return
	}
	f.Schema = fd
}
