package holdem

import "fmt"

// Action is a voluntary action a player can take on their turn
type Action string

// constants for Action
const (
	ActionFold  Action = "fold"
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
)

// ActionFromString parses a client-supplied action name
func ActionFromString(s string) (Action, error) {
	switch Action(s) {
	case ActionFold, ActionCheck, ActionCall, ActionRaise:
		return Action(s), nil
	}

	return "", fmt.Errorf("%s is not a valid action", s)
}

// ActionResult reports the outcome of a successfully applied action
type ActionResult struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
	AllIn   bool   `json:"all_in,omitempty"`
}
