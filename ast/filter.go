package ast

// BooleanExpression is implemented by every filter-expression AST
// node.
type BooleanExpression interface {
	Node
	boolExprNode()
}

type (
	TrueExpr struct {
		Kind string `json:"kind" unpack:""`
		Loc  `json:"loc"`
	}
	FalseExpr struct {
		Kind string `json:"kind" unpack:""`
		Loc  `json:"loc"`
	}
	AndExpr struct {
		Kind      string              `json:"kind" unpack:""`
		Operands  []BooleanExpression `json:"operands"`
		Loc       `json:"loc"`
	}
	OrExpr struct {
		Kind     string              `json:"kind" unpack:""`
		Operands []BooleanExpression `json:"operands"`
		Loc      `json:"loc"`
	}
	NotExpr struct {
		Kind string            `json:"kind" unpack:""`
		Expr BooleanExpression `json:"expr"`
		Loc  `json:"loc"`
	}
	// AtomExpr is `param op value`, e.g. `food_type =~ "chinese"`.
	AtomExpr struct {
		Kind  string `json:"kind" unpack:""`
		Param string `json:"name"`
		Op    string `json:"operator"`
		Value Value  `json:"value"`
		Loc   `json:"loc"`
	}
	// ComputeExpr is `compute(lhs) op compute(rhs)`, filtering on a
	// derived scalar expression rather than a bare parameter.
	ComputeExpr struct {
		Kind string `json:"kind" unpack:""`
		LHS  Value  `json:"lhs"`
		Op   string `json:"operator"`
		RHS  Value  `json:"rhs"`
		Loc  `json:"loc"`
	}
	DontCareExpr struct {
		Kind  string `json:"kind" unpack:""`
		Param string `json:"name"`
		Loc   `json:"loc"`
	}
	// ExternalExpr is a permission-rule filter that recurses into
	// another selector's function, e.g.
	// `@com.twitter.get_tweets() { author == __pi }`.
	ExternalExpr struct {
		Kind      string            `json:"kind" unpack:""`
		Selector  *Selector         `json:"selector"`
		Channel   string            `json:"channel"`
		InParams  []*InputParam     `json:"in_params"`
		Filter    BooleanExpression `json:"filter"`
		Schema    *FunctionDef      `json:"-"`
		Loc       `json:"loc"`
	}
)

func (*TrueExpr) boolExprNode()     {}
func (*FalseExpr) boolExprNode()    {}
func (*AndExpr) boolExprNode()      {}
func (*OrExpr) boolExprNode()       {}
func (*NotExpr) boolExprNode()      {}
func (*AtomExpr) boolExprNode()     {}
func (*ComputeExpr) boolExprNode()  {}
func (*DontCareExpr) boolExprNode() {}
func (*ExternalExpr) boolExprNode()     {}
func (*ExternalExpr) exprPrimitiveNode() {}

// NewAnd flattens nested And nodes and drops True operands, but never
// simplifies to a bare False without at least one False operand
// present; full CNF canonicalisation is the normalizer's job, not the
// constructor's.
func NewAnd(loc Loc, operands ...BooleanExpression) BooleanExpression {
	var flat []BooleanExpression
	for _, o := range operands {
		if and, ok := o.(*AndExpr); ok {
			flat = append(flat, and.Operands...)
			continue
		}
		if _, ok := o.(*TrueExpr); ok {
			continue
		}
		if _, ok := o.(*FalseExpr); ok {
			return &FalseExpr{Kind: "False", Loc: loc}
		}
		flat = append(flat, o)
	}
	if len(flat) == 0 {
		return &TrueExpr{Kind: "True", Loc: loc}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &AndExpr{Kind: "AndExpr", Operands: flat, Loc: loc}
}

func NewOr(loc Loc, operands ...BooleanExpression) BooleanExpression {
	var flat []BooleanExpression
	for _, o := range operands {
		if or, ok := o.(*OrExpr); ok {
			flat = append(flat, or.Operands...)
			continue
		}
		if _, ok := o.(*FalseExpr); ok {
			continue
		}
		if _, ok := o.(*TrueExpr); ok {
			return &TrueExpr{Kind: "True", Loc: loc}
		}
		flat = append(flat, o)
	}
	if len(flat) == 0 {
		return &FalseExpr{Kind: "False", Loc: loc}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &OrExpr{Kind: "OrExpr", Operands: flat, Loc: loc}
}
