package decision

import "fmt"

// Action is the validated trading instruction kind.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}

// Directive is the structured instruction parsed from the reasoning
// service. A Directive value only exists after schema validation: invalid
// replies never leave the parser.
type Directive struct {
	Action     Action
	Percentage float64 // of available balance, [0,100]
	Rationale  string
}

func (d Directive) String() string {
	return fmt.Sprintf("%s %.0f%%", d.Action, d.Percentage)
}
