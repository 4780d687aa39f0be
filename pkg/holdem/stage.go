package holdem

import "encoding/json"

// Stage represents where the hand is in its lifecycle
type Stage int

// constants for Stage
const (
	StageWaiting Stage = iota
	StagePreFlop
	StageFlop
	StageTurn
	StageRiver
	StageShowdown
	StageEnded
)

func (s Stage) String() string {
	switch s {
	case StageWaiting:
		return "waiting"
	case StagePreFlop:
		return "preflop"
	case StageFlop:
		return "flop"
	case StageTurn:
		return "turn"
	case StageRiver:
		return "river"
	case StageShowdown:
		return "showdown"
	case StageEnded:
		return "ended"
	}

	return ""
}

// MarshalJSON encodes JSON
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
