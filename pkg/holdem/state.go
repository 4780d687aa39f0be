package holdem

import "github.com/superxuu/depu/pkg/deck"

// PlayerState is one player's public view within a hand snapshot. Hole cards
// are only populated for the viewer's own seat, or once they are face up.
type PlayerState struct {
	UserID     string       `json:"user_id"`
	Nickname   string       `json:"nickname"`
	Position   int          `json:"position"`
	Chips      int          `json:"chips"`
	CurrentBet int          `json:"current_bet"`
	TotalBet   int          `json:"total_bet"`
	IsFolded   bool         `json:"is_folded"`
	IsAllIn    bool         `json:"is_all_in"`
	LastAction string       `json:"last_action"`
	HandDelta  int          `json:"hand_delta"`
	Win        bool         `json:"win"`
	HoleCards  []*deck.Card `json:"hole_cards"`
	HandName   string       `json:"hand_name,omitempty"`
}

// State is the canonical, viewer-specific snapshot of a hand
type State struct {
	Stage                 Stage          `json:"stage"`
	CommunityCards        []*deck.Card   `json:"community_cards"`
	Pot                   int            `json:"pot"`
	SidePots              []SidePot      `json:"side_pots,omitempty"`
	CurrentBet            int            `json:"current_bet"`
	LastRaiseIncrement    int            `json:"last_raise_increment"`
	SmallBlind            int            `json:"small_blind"`
	BigBlind              int            `json:"big_blind"`
	DealerPosition        int            `json:"dealer_position"`
	SmallBlindPosition    int            `json:"small_blind_position"`
	BigBlindPosition      int            `json:"big_blind_position"`
	CurrentPlayerPosition *int           `json:"current_player_position"`
	CurrentPlayerID       string         `json:"current_player_id,omitempty"`
	LastAggressorID       string         `json:"last_aggressor_id,omitempty"`
	Players               []*PlayerState `json:"players"`
	Winner                *PlayerState   `json:"winner,omitempty"`
}

// StateFor builds the hand snapshot as seen by the given viewer
func (g *Game) StateFor(viewerID string) *State {
	state := &State{
		Stage:              g.stage,
		CommunityCards:     g.community,
		Pot:                g.pot,
		SidePots:           g.SidePots(),
		CurrentBet:         g.currentBet,
		LastRaiseIncrement: g.lastRaiseIncrement,
		SmallBlind:         g.options.SmallBlind,
		BigBlind:           g.options.BigBlind,
		DealerPosition:     g.dealerSeat,
		SmallBlindPosition: g.smallBlindSeat,
		BigBlindPosition:   g.bigBlindSeat,
		LastAggressorID:    g.lastAggressor,
		Players:            make([]*PlayerState, 0, len(g.players)),
	}

	if g.actingSeat >= 0 {
		seat := g.actingSeat
		state.CurrentPlayerPosition = &seat
		state.CurrentPlayerID = g.playerAtSeat(seat).UserID
	}

	for _, p := range g.players {
		state.Players = append(state.Players, g.playerStateFor(p, viewerID))
	}

	if len(g.winners) > 0 {
		state.Winner = g.playerStateFor(g.winners[0], viewerID)
	}

	return state
}

func (g *Game) playerStateFor(p *Player, viewerID string) *PlayerState {
	ps := &PlayerState{
		UserID:     p.UserID,
		Nickname:   p.Nickname,
		Position:   p.Seat,
		Chips:      p.stack,
		CurrentBet: p.streetBet,
		TotalBet:   p.totalBet,
		IsFolded:   p.folded,
		IsAllIn:    p.IsAllIn(),
		LastAction: p.lastAction,
		HandDelta:  p.HandDelta(),
		Win:        p.won,
	}

	if p.reveal || p.UserID == viewerID {
		ps.HoleCards = p.cards

		if p.reveal && len(g.community) >= 3 {
			ps.HandName = p.hand(g.community).GetHand().String()
		}
	}

	return ps
}
