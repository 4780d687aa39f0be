package holdem

import (
	"github.com/superxuu/depu/pkg/deck"
	"github.com/superxuu/depu/pkg/poker"
)

// last_action labels for forced bets and involuntary states
const (
	lastActionSmallBlind = "sb"
	lastActionBigBlind   = "bb"
	lastActionAllIn      = "all_in"
)

// Seat describes a player entering a hand
type Seat struct {
	UserID   string
	Nickname string
	Seat     int
	Chips    int
}

// Player represents an individual player in a hand
type Player struct {
	UserID   string
	Nickname string
	Seat     int

	stack         int
	startingStack int
	cards         deck.Hand

	streetBet  int
	totalBet   int
	folded     bool
	lastAction string
	reveal     bool
	won        bool

	handAnalyzer         *poker.HandAnalyzer
	handAnalyzerCacheKey string
}

func newPlayer(seat Seat) *Player {
	return &Player{
		UserID:        seat.UserID,
		Nickname:      seat.Nickname,
		Seat:          seat.Seat,
		stack:         seat.Chips,
		startingStack: seat.Chips,
		cards:         make(deck.Hand, 0, 2),
	}
}

// bet puts up to amount chips into the pot and returns how many chips were
// actually committed. Posting more than the stack is a call-for-less.
func (p *Player) bet(amount int) int {
	if amount > p.stack {
		amount = p.stack
	}

	p.stack -= amount
	p.streetBet += amount
	p.totalBet += amount
	return amount
}

// IsAllIn returns true if the player is still in the hand with an empty stack
func (p *Player) IsAllIn() bool {
	return !p.folded && p.stack == 0 && p.totalBet > 0
}

// canAct returns true if the player can still make betting decisions
func (p *Player) canAct() bool {
	return !p.folded && p.stack > 0
}

// Stack returns the player's current chip stack
func (p *Player) Stack() int {
	return p.stack
}

// StreetBet returns the chips the player committed this street
func (p *Player) StreetBet() int {
	return p.streetBet
}

// TotalBet returns the chips the player committed this hand
func (p *Player) TotalBet() int {
	return p.totalBet
}

// Folded returns true if the player folded
func (p *Player) Folded() bool {
	return p.folded
}

// LastAction returns the label of the player's most recent action
func (p *Player) LastAction() string {
	return p.lastAction
}

// Cards returns the player's hole cards
func (p *Player) Cards() deck.Hand {
	return p.cards
}

// Revealed returns true if the player's hole cards are face up
func (p *Player) Revealed() bool {
	return p.reveal
}

// Won returns true if the player won at least one pot
func (p *Player) Won() bool {
	return p.won
}

// HandDelta returns the player's net chip change for the hand so far
func (p *Player) HandDelta() int {
	return p.stack - p.startingStack
}

// hand returns the player's best hand against the community cards, caching
// the analyzer until the board changes
func (p *Player) hand(community deck.Hand) *poker.HandAnalyzer {
	key := community.String()
	if p.handAnalyzer == nil || p.handAnalyzerCacheKey != key {
		cards := append(p.cards.Clone(), community...)
		p.handAnalyzer = poker.NewHandAnalyzer(5, cards)
		p.handAnalyzerCacheKey = key
	}

	return p.handAnalyzer
}
