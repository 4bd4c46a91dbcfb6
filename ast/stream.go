package ast

// Stream is implemented by every temporally ordered stream node.
type Stream interface {
	Node
	streamNode()
}

type (
	TimerStream struct {
		Kind       string `json:"kind" unpack:""`
		Base       Value  `json:"base"`
		Interval   Value  `json:"interval"`
		Frequency  Value  `json:"frequency,omitempty"`
		Loc        `json:"loc"`
	}
	AtTimerStream struct {
		Kind       string  `json:"kind" unpack:""`
		Times      []Value `json:"times"`
		Expiration Value   `json:"expiration,omitempty"`
		Loc        `json:"loc"`
	}
	MonitorStream struct {
		Kind   string `json:"kind" unpack:""`
		Table  Table  `json:"table"`
		OnNew  []string `json:"on_new,omitempty"`
		Loc    `json:"loc"`
	}
	EdgeFilterStream struct {
		Kind   string            `json:"kind" unpack:""`
		Stream Stream            `json:"stream"`
		Filter BooleanExpression `json:"filter"`
		Loc    `json:"loc"`
	}
	EdgeNewStream struct {
		Kind   string `json:"kind" unpack:""`
		Stream Stream `json:"stream"`
		Loc    `json:"loc"`
	}
	ProjectionStream struct {
		Kind   string   `json:"kind" unpack:""`
		Stream Stream   `json:"stream"`
		Names  []string `json:"args"`
		Loc    `json:"loc"`
	}
	ComputeStream struct {
		Kind   string `json:"kind" unpack:""`
		Stream Stream `json:"stream"`
		Expr   Value  `json:"expr"`
		Alias  string `json:"alias,omitempty"`
		Loc    `json:"loc"`
	}
	JoinStream struct {
		Kind     string        `json:"kind" unpack:""`
		Stream   Stream        `json:"stream"`
		Table    Table         `json:"table"`
		InParams []*InputParam `json:"in_params"`
		Loc      `json:"loc"`
	}
	FilteredStream struct {
		Kind   string            `json:"kind" unpack:""`
		Stream Stream            `json:"stream"`
		Filter BooleanExpression `json:"filter"`
		Loc    `json:"loc"`
	}
	AliasStream struct {
		Kind   string `json:"kind" unpack:""`
		Stream Stream `json:"stream"`
		Alias  string `json:"alias"`
		Loc    `json:"loc"`
	}
)

func (*TimerStream) streamNode()      {}
func (*AtTimerStream) streamNode()    {}
func (*MonitorStream) streamNode()    {}
func (*EdgeFilterStream) streamNode() {}
func (*EdgeNewStream) streamNode()    {}
func (*ProjectionStream) streamNode() {}
func (*ComputeStream) streamNode()    {}
func (*JoinStream) streamNode()       {}
func (*FilteredStream) streamNode()   {}
func (*AliasStream) streamNode()      {}
