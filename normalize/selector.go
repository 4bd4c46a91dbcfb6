package normalize

import (
	"sort"

	"github.com/stanford-oval/thingtalk-go/ast"
)

// sortInputParams sorts params by name in place, used to canonicalize
// selector attributes.
func sortInputParams(params []*ast.InputParam) {
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
}
