package ast

// ConfirmState is the DialogueHistoryItem.confirm state machine:
// proposed -> accepted -> confirmed -> confirmed_and_executed,
// strictly monotonic left to right, proposed initial,
// confirmed_and_executed terminal.
type ConfirmState int

const (
	Proposed ConfirmState = iota
	Accepted
	Confirmed
	ConfirmedAndExecuted
)

func (c ConfirmState) String() string {
	return [...]string{"proposed", "accepted", "confirmed", "confirmed_and_executed"}[c]
}

// CanTransition reports whether moving from c to next is a legal,
// strictly-monotonic transition.
func (c ConfirmState) CanTransition(next ConfirmState) bool {
	return next > c
}

// DialogueHistoryItem is one turn of executed or proposed program
// history inside a DialogueState.
type DialogueHistoryItem struct {
	Kind    string                     `json:"kind" unpack:""`
	Stmt    Statement                  `json:"stmt"`
	Results *DialogueHistoryResultList `json:"results,omitempty"`
	Confirm ConfirmState               `json:"confirm"`
	Loc     `json:"loc"`
}

// DialogueHistoryResultList is the outcome of executing a history
// item: either a bounded list of result records, a count with a
// "more" flag, or an error.
type DialogueHistoryResultList struct {
	Results []Value `json:"results,omitempty"`
	Count   int     `json:"count"`
	More    bool    `json:"more"`
	Error   *string `json:"error,omitempty"`
}

// DialogueState is a sequence of history items describing what has
// been said and done in a conversation, plus the current dialogue act
// being formed.
type DialogueState struct {
	Kind    string                 `json:"kind" unpack:""`
	Policy  string                 `json:"policy"`
	Act     string                 `json:"dialogueAct"`
	ActParam string                `json:"dialogueActParam,omitempty"`
	History []*DialogueHistoryItem `json:"history"`
	Loc     `json:"loc"`
}

func (d *DialogueState) inputNode() {}
