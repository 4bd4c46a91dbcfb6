package ast

import "github.com/segmentio/ksuid"

// Input is implemented by every AST root node.
type Input interface {
	Node
	inputNode()
}

// Program is a sequence of statements, the most common AST root.
// ID is a k-sortable, globally unique ksuid, minted lazily the first
// time a program needs a stable
// program_id (e.g. for $event.program_id or ExecEnvironment.
// enter_procedure); zero value means "not yet assigned".
type Program struct {
	Kind       string       `json:"kind" unpack:""`
	ID         ksuid.KSUID  `json:"id,omitempty"`
	Classes    []*ClassDef  `json:"classes,omitempty"`
	Declarations []*DeclarationStatement `json:"declarations,omitempty"`
	Statements []Statement  `json:"statements"`
	Loc        `json:"loc"`
}

func (p *Program) inputNode() {}

func (p *Program) EnsureID() ksuid.KSUID {
	if p.ID == (ksuid.KSUID{}) {
		p.ID = ksuid.New()
	}
	return p.ID
}

// PermissionRule grants execution of query/action functions to a
// principal, gated by filters.
type PermissionRule struct {
	Kind      string            `json:"kind" unpack:""`
	Principal BooleanExpression `json:"principal"`
	Query     PermissionFunction `json:"query"`
	Action    PermissionFunction `json:"action"`
	Loc       `json:"loc"`
}

func (p *PermissionRule) inputNode() {}

// PermissionFunction is one of: the wildcard `*` (Star=true), the
// builtin `notify`/`now` (Builtin=true), or a specific function with
// a filter.
type PermissionFunction struct {
	Star     bool
	Builtin  bool
	Selector *Selector
	Channel  string
	Filter   BooleanExpression
	InParams []*InputParam
	Schema   *FunctionDef
}

// Library is a collection of class definitions and datasets meant to
// be imported by other programs.
type Library struct {
	Kind    string       `json:"kind" unpack:""`
	Classes []*ClassDef  `json:"classes"`
	Datasets []*Dataset  `json:"datasets,omitempty"`
	Loc     `json:"loc"`
}

func (l *Library) inputNode() {}

// Dataset is a named collection of example programs paired with
// natural-language annotations, used to train/evaluate a semantic
// parser.
type Dataset struct {
	Kind     string      `json:"kind" unpack:""`
	Name     string      `json:"name"`
	Language string      `json:"language,omitempty"`
	Examples []*Example  `json:"examples"`
	Loc      `json:"loc"`
}

func (d *Dataset) inputNode() {}

type Example struct {
	ID          int
	Utterances  []string
	Preprocessed []string
	Program     *Program
	Annotations map[string]string
}

// Bookkeeping is a non-executable dialogue-act input, e.g. a
// clarification answer or a special command that never reaches the
// compiler.
type Bookkeeping struct {
	Kind    string        `json:"kind" unpack:""`
	Intent  string        `json:"intent"` // "yes" | "no" | "choice" | "answer" | ...
	Args    []*InputParam `json:"args,omitempty"`
	Loc     `json:"loc"`
}

func (b *Bookkeeping) inputNode() {}

// ControlCommand is a special non-program directive such as "special
// nevermind" or "special makerule".
type ControlCommand struct {
	Kind string `json:"kind" unpack:""`
	Name string `json:"name"`
	Loc  `json:"loc"`
}

func (c *ControlCommand) inputNode() {}
