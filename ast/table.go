package ast

// Table is implemented by every materialised-multiset node.
type Table interface {
	Node
	tableNode()
}

type (
	InvocationTable struct {
		Kind       string `json:"kind" unpack:""`
		Invocation *Invocation `json:"invocation"`
		Loc        `json:"loc"`
	}
	FilterTable struct {
		Kind   string            `json:"kind" unpack:""`
		Table  Table             `json:"table"`
		Filter BooleanExpression `json:"filter"`
		Loc    `json:"loc"`
	}
	ProjectionTable struct {
		Kind  string   `json:"kind" unpack:""`
		Table Table    `json:"table"`
		Names []string `json:"args"`
		Loc   `json:"loc"`
	}
	ComputeTable struct {
		Kind  string `json:"kind" unpack:""`
		Table Table  `json:"table"`
		Expr  Value  `json:"expr"`
		Alias string `json:"alias,omitempty"`
		Loc   `json:"loc"`
	}
	AggregationTable struct {
		Kind  string `json:"kind" unpack:""`
		Table Table  `json:"table"`
		Op    string `json:"operator"` // count, avg, sum, min, max, argmin, argmax
		Field string `json:"field,omitempty"`
		Alias string `json:"alias,omitempty"`
		Loc   `json:"loc"`
	}
	SortTable struct {
		Kind      string `json:"kind" unpack:""`
		Table     Table  `json:"table"`
		Field     string `json:"field"`
		Direction string `json:"direction"` // "asc" | "desc"
		Loc       `json:"loc"`
	}
	IndexTable struct {
		Kind    string  `json:"kind" unpack:""`
		Table   Table   `json:"table"`
		Indices []Value `json:"indices"`
		Loc     `json:"loc"`
	}
	SliceTable struct {
		Kind  string `json:"kind" unpack:""`
		Table Table  `json:"table"`
		Base  Value  `json:"base"`
		Limit Value  `json:"limit"`
		Loc   `json:"loc"`
	}
	JoinTable struct {
		Kind     string        `json:"kind" unpack:""`
		LHS      Table         `json:"lhs"`
		RHS      Table         `json:"rhs"`
		InParams []*InputParam `json:"in_params"`
		Loc      `json:"loc"`
	}
	AliasTable struct {
		Kind  string `json:"kind" unpack:""`
		Table Table  `json:"table"`
		Alias string `json:"alias"`
		Loc   `json:"loc"`
	}
	HistoryTable struct {
		Kind string `json:"kind" unpack:""`
		Loc  `json:"loc"`
	}
)

func (*InvocationTable) tableNode()  {}
func (*FilterTable) tableNode()      {}
func (*ProjectionTable) tableNode()  {}
func (*ComputeTable) tableNode()     {}
func (*AggregationTable) tableNode() {}
func (*SortTable) tableNode()        {}
func (*IndexTable) tableNode()       {}
func (*SliceTable) tableNode()       {}
func (*JoinTable) tableNode()        {}
func (*AliasTable) tableNode()       {}
func (*HistoryTable) tableNode()     {}
