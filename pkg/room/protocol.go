package room

import "github.com/superxuu/depu/pkg/holdem"

// client message types
const (
	MessageAuth     = "auth"
	MessageReady    = "player_ready"
	MessageAction   = "game_action"
	MessageReveal   = "manual_show_cards"
	MessageDecision = "single_player_decision"
	MessageLeave    = "player_leave"
	MessagePing     = "ping"
)

// ClientMessage is a message sent from a web client to the server
type ClientMessage struct {
	Type         string `json:"type"`
	SessionToken string `json:"session_token,omitempty"`
	IsReady      *bool  `json:"is_ready,omitempty"`
	Action       string `json:"action,omitempty"`
	Amount       int    `json:"amount,omitempty"`
	Decision     string `json:"decision,omitempty"`
}

// event types sent to web clients
const (
	EventAuthSuccess        = "auth_success"
	EventAuthError          = "auth_error"
	EventGameStarted        = "game_started"
	EventGameEnded          = "game_ended"
	EventGameStateUpdate    = "game_state_update"
	EventActionConfirmation = "action_confirmation"
	EventActionError        = "action_error"
	EventReadyStateUpdate   = "ready_state_update"
	EventReadyCountUpdate   = "ready_count_update"
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventPlayerDisconnected = "player_disconnected"
	EventPlayerReconnected  = "player_reconnected"
	EventCountdown          = "countdown"
	EventPong               = "pong"
)

// Event is a message sent from the server to one or more web clients
type Event struct {
	Type         string               `json:"type"`
	Message      string               `json:"message,omitempty"`
	UserID       string               `json:"user_id,omitempty"`
	Nickname     string               `json:"nickname,omitempty"`
	IsReady      *bool                `json:"is_ready,omitempty"`
	ReadyCount   int                  `json:"ready_count,omitempty"`
	TotalPlayers int                  `json:"total_players,omitempty"`
	Countdown    int                  `json:"countdown_seconds,omitempty"`
	Result       *holdem.ActionResult `json:"result,omitempty"`
	State        *holdem.State        `json:"state,omitempty"`
	Players      []*OccupantState     `json:"players,omitempty"`
}

func newErrorEvent(eventType string, err error) *Event {
	return &Event{
		Type:    eventType,
		Message: err.Error(),
	}
}
