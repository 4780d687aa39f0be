package holdem

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/superxuu/depu/pkg/deck"
)

// Game is a single hand of No Limit Texas Hold'em
type Game struct {
	options Options
	log     logrus.FieldLogger
	deck    *deck.Deck

	players []*Player // ascending seat order
	byID    map[string]*Player

	stage          Stage
	dealerSeat     int
	smallBlindSeat int
	bigBlindSeat   int

	community          deck.Hand
	pot                int
	currentBet         int
	lastRaiseIncrement int

	actingSeat    int          // -1 when no seat is to act
	acted         map[int]bool // seats that acted since the last full raise
	lastAggressor string

	winners      []*Player
	lastActionAt time.Time
	chipTotal    int
}

// NewGame returns a new unstarted hand for the given seats. Call Deal() to
// post blinds and deal hole cards.
func NewGame(logger logrus.FieldLogger, seats []Seat, dealerSeat int, opts Options) (*Game, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	if len(seats) < 2 {
		return nil, errors.New("there must be at least two players")
	}

	players := make([]*Player, 0, len(seats))
	byID := make(map[string]*Player)
	dealerOK := false
	for _, seat := range seats {
		if seat.Chips < opts.BigBlind {
			return nil, fmt.Errorf("player %s cannot post the big blind", seat.UserID)
		}

		if _, ok := byID[seat.UserID]; ok {
			return nil, fmt.Errorf("player %s is seated twice", seat.UserID)
		}

		p := newPlayer(seat)
		players = append(players, p)
		byID[seat.UserID] = p

		if seat.Seat == dealerSeat {
			dealerOK = true
		}
	}

	if !dealerOK {
		return nil, errors.New("the dealer seat is not occupied")
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].Seat < players[j].Seat
	})

	return &Game{
		options:    opts,
		log:        logger,
		deck:       deck.New(),
		players:    players,
		byID:       byID,
		stage:      StageWaiting,
		dealerSeat: dealerSeat,
		community:  make(deck.Hand, 0, 5),
		actingSeat: -1,
		acted:      make(map[int]bool),
	}, nil
}

// Deal shuffles the deck, posts the blinds, and deals two hole cards to each
// player. The hand enters the preflop betting round.
func (g *Game) Deal() error {
	if g.stage != StageWaiting {
		return fmt.Errorf("cannot deal cards from stage %s", g.stage)
	}

	g.deck.Shuffle(g.options.Seed)

	for _, p := range g.players {
		g.chipTotal += p.stack
	}

	g.smallBlindSeat, g.bigBlindSeat = g.blindSeats()

	sb := g.playerAtSeat(g.smallBlindSeat)
	g.pot += sb.bet(g.options.SmallBlind)
	sb.lastAction = lastActionSmallBlind

	bb := g.playerAtSeat(g.bigBlindSeat)
	g.pot += bb.bet(g.options.BigBlind)
	bb.lastAction = lastActionBigBlind

	g.currentBet = sb.streetBet
	if bb.streetBet > g.currentBet {
		g.currentBet = bb.streetBet
	}

	g.lastRaiseIncrement = g.options.BigBlind

	for i := 0; i < 2; i++ {
		for _, p := range g.playersFromSeat(g.dealerSeat) {
			card, err := g.deck.Draw()
			if err != nil {
				return err
			}

			p.cards.AddCard(card)
		}
	}

	g.stage = StagePreFlop
	g.actingSeat = g.nextActingSeat(g.bigBlindSeat)
	g.lastActionAt = time.Now()

	g.log.WithFields(logrus.Fields{
		"dealer":     g.dealerSeat,
		"smallBlind": g.smallBlindSeat,
		"bigBlind":   g.bigBlindSeat,
		"players":    len(g.players),
	}).Info("hand dealt")

	// blinds can put players all-in before anyone acts
	if g.actingSeat < 0 || g.roundClosed() {
		g.advance()
	}

	return nil
}

// blindSeats determines the small and big blind seats from the dealer seat.
// Heads-up, the dealer posts the small blind.
func (g *Game) blindSeats() (int, int) {
	if len(g.players) == 2 {
		return g.dealerSeat, g.nextSeat(g.dealerSeat)
	}

	sb := g.nextSeat(g.dealerSeat)
	return sb, g.nextSeat(sb)
}

// InBettingRound returns true if the hand is in a betting round
func (g *Game) InBettingRound() bool {
	switch g.stage {
	case StagePreFlop, StageFlop, StageTurn, StageRiver:
		return true
	}

	return false
}

// Act validates and applies an action for the given player
func (g *Game) Act(userID string, action Action, amount int) (*ActionResult, error) {
	if !g.InBettingRound() {
		return nil, ErrNotInBettingRound
	}

	p, ok := g.byID[userID]
	if !ok {
		return nil, ErrNotInHand
	}

	if p.Seat != g.actingSeat {
		return nil, ErrNotYourTurn
	}

	res, err := g.processAction(p, action, amount)
	if err != nil {
		return nil, err
	}

	if err := g.checkChipConservation(); err != nil {
		g.abortHand(err)
		return nil, err
	}

	g.lastActionAt = time.Now()
	g.progress()
	return res, nil
}

func (g *Game) processAction(p *Player, action Action, amount int) (*ActionResult, error) {
	switch action {
	case ActionFold:
		p.folded = true
		p.lastAction = string(ActionFold)
		delete(g.acted, p.Seat)
		return &ActionResult{Action: ActionFold, Message: "folded"}, nil

	case ActionCheck:
		if p.streetBet < g.currentBet {
			return nil, ErrMustCallOrRaise
		}

		p.lastAction = string(ActionCheck)
		g.acted[p.Seat] = true
		return &ActionResult{Action: ActionCheck, Message: "checked"}, nil

	case ActionCall:
		callAmount := g.currentBet - p.streetBet
		if callAmount <= 0 {
			return nil, ErrNothingToCall
		}

		g.pot += p.bet(callAmount)
		if p.stack == 0 {
			p.lastAction = lastActionAllIn
			return &ActionResult{Action: ActionCall, Message: "went all in", AllIn: true}, nil
		}

		p.lastAction = string(ActionCall)
		g.acted[p.Seat] = true
		return &ActionResult{Action: ActionCall, Message: "called"}, nil

	case ActionRaise:
		return g.processRaise(p, amount)
	}

	return nil, newValidationError("%s is not a valid action", action)
}

// processRaise applies a raise to a target total street bet. A raise below
// the table minimum is only accepted as an all-in, and such a short all-in
// does not reopen the action for players who already acted.
func (g *Game) processRaise(p *Player, amount int) (*ActionResult, error) {
	if amount <= g.currentBet {
		return nil, newValidationError("a raise must exceed the current bet of %d", g.currentBet)
	}

	if g.acted[p.Seat] {
		return nil, ErrActionNotReopened
	}

	callAmount := g.currentBet - p.streetBet
	raiseAmount := amount - p.streetBet

	if raiseAmount > p.stack {
		return nil, ErrInsufficientChips
	}

	isAllIn := raiseAmount == p.stack
	if minTarget := p.streetBet + callAmount + g.lastRaiseIncrement; !isAllIn && amount < minTarget {
		return nil, &RaiseTooSmallError{Minimum: minTarget}
	}

	increment := raiseAmount - callAmount
	g.pot += p.bet(raiseAmount)
	g.currentBet = amount
	g.lastAggressor = p.UserID

	// a full raise reopens the action for everyone
	if increment >= g.lastRaiseIncrement {
		g.lastRaiseIncrement = increment
		g.acted = make(map[int]bool)
	}

	if isAllIn {
		p.lastAction = lastActionAllIn
		return &ActionResult{Action: ActionRaise, Message: "went all in", AllIn: true}, nil
	}

	p.lastAction = string(ActionRaise)
	g.acted[p.Seat] = true
	return &ActionResult{Action: ActionRaise, Message: fmt.Sprintf("raised to %d", amount)}, nil
}

// progress moves the hand forward after a successful action
func (g *Game) progress() {
	if g.unfoldedCount() <= 1 || g.roundClosed() {
		g.advance()
		return
	}

	g.actingSeat = g.nextActingSeat(g.actingSeat)
	g.lastActionAt = time.Now()
}

// roundClosed returns true once every player who can still act has matched
// the current bet and acted since the last full raise
func (g *Game) roundClosed() bool {
	for _, p := range g.players {
		if !p.canAct() {
			continue
		}

		if p.streetBet != g.currentBet || !g.acted[p.Seat] {
			return false
		}
	}

	return true
}

// advance deals the next street, or runs the board out to showdown when no
// further betting is possible
func (g *Game) advance() {
	for {
		switch g.stage {
		case StagePreFlop:
			g.dealCommunity(3)
			g.stage = StageFlop
		case StageFlop:
			g.dealCommunity(1)
			g.stage = StageTurn
		case StageTurn:
			g.dealCommunity(1)
			g.stage = StageRiver
		case StageRiver:
			g.finishShowdown()
			return
		default:
			return
		}

		if g.unfoldedCount() > 1 && g.canActCount() > 1 {
			g.startStreet()
			return
		}
	}
}

func (g *Game) startStreet() {
	for _, p := range g.players {
		p.streetBet = 0
		if p.canAct() {
			p.lastAction = ""
		}
	}

	g.currentBet = 0
	g.lastRaiseIncrement = g.options.BigBlind
	g.acted = make(map[int]bool)
	g.actingSeat = g.nextActingSeat(g.dealerSeat)
	g.lastActionAt = time.Now()
}

func (g *Game) dealCommunity(count int) {
	for i := 0; i < count; i++ {
		card, err := g.deck.Draw()
		if err != nil {
			panic(err)
		}

		g.community.AddCard(card)
	}
}

// finishShowdown reveals the remaining hands, settles every pot, and ends
// the hand
func (g *Game) finishShowdown() {
	g.stage = StageShowdown
	g.actingSeat = -1

	for _, p := range g.players {
		if !p.folded {
			p.reveal = true
		}
	}

	g.settlePots()
	g.stage = StageEnded

	if err := g.checkChipConservation(); err != nil {
		g.abortHand(err)
		return
	}

	if g.pot != 0 {
		g.abortHand(fmt.Errorf("%w: %d chips left undistributed", ErrChipConservation, g.pot))
	}
}

// Forfeit folds a player immediately, regardless of turn. Used when a player
// leaves the table mid-hand.
func (g *Game) Forfeit(userID string) error {
	p, ok := g.byID[userID]
	if !ok {
		return ErrNotInHand
	}

	if !g.InBettingRound() || p.folded {
		return nil
	}

	wasActing := p.Seat == g.actingSeat
	p.folded = true
	p.lastAction = string(ActionFold)
	delete(g.acted, p.Seat)

	if g.unfoldedCount() <= 1 || g.roundClosed() {
		g.advance()
	} else if wasActing {
		g.actingSeat = g.nextActingSeat(p.Seat)
		g.lastActionAt = time.Now()
	}

	return nil
}

// TimeoutAction applies the default action for the seat on the clock: check
// when nothing is owed, otherwise fold
func (g *Game) TimeoutAction() (Action, error) {
	if !g.InBettingRound() || g.actingSeat < 0 {
		return "", ErrNotInBettingRound
	}

	p := g.playerAtSeat(g.actingSeat)

	action := ActionFold
	if p.streetBet >= g.currentBet {
		action = ActionCheck
	}

	if _, err := g.Act(p.UserID, action, 0); err != nil {
		return "", err
	}

	return action, nil
}

// ForceWin ends the hand immediately and awards the entire pot to the given
// player. Used when everyone else has walked away mid-hand.
func (g *Game) ForceWin(userID string) error {
	p, ok := g.byID[userID]
	if !ok {
		return ErrNotInHand
	}

	if g.stage == StageEnded || p.folded {
		return newValidationError("the hand cannot be awarded to %s", p.Nickname)
	}

	p.stack += g.pot
	g.pot = 0
	p.won = true
	g.winners = []*Player{p}
	g.stage = StageEnded
	g.actingSeat = -1

	g.log.WithField("winner", p.UserID).Info("hand ended early")
	return nil
}

// Reveal turns a player's hole cards face up. Only allowed once the hand has
// reached showdown.
func (g *Game) Reveal(userID string) error {
	p, ok := g.byID[userID]
	if !ok {
		return ErrNotInHand
	}

	if g.stage != StageShowdown && g.stage != StageEnded {
		return ErrCannotRevealYet
	}

	p.reveal = true
	return nil
}

func (g *Game) checkChipConservation() error {
	total := g.pot
	for _, p := range g.players {
		total += p.stack
	}

	if total != g.chipTotal {
		return fmt.Errorf("%w: have %d, want %d", ErrChipConservation, total, g.chipTotal)
	}

	return nil
}

// abortHand rolls every stack back to its pre-deal state and voids the hand
func (g *Game) abortHand(reason error) {
	g.log.WithError(reason).Error("aborting hand")

	for _, p := range g.players {
		p.stack = p.startingStack
		p.won = false
	}

	g.pot = 0
	g.winners = nil
	g.stage = StageEnded
	g.actingSeat = -1
}

// playerAtSeat returns the player in the given seat, or panics if vacant
func (g *Game) playerAtSeat(seat int) *Player {
	for _, p := range g.players {
		if p.Seat == seat {
			return p
		}
	}

	panic(fmt.Sprintf("no player at seat %d", seat))
}

// nextSeat returns the next occupied seat clockwise after the given seat
func (g *Game) nextSeat(seat int) int {
	for _, p := range g.playersFromSeat(seat) {
		return p.Seat
	}

	panic("no occupied seats")
}

// nextActingSeat returns the next seat clockwise after the given seat whose
// player can still act, or -1 if there is none
func (g *Game) nextActingSeat(seat int) int {
	for _, p := range g.playersFromSeat(seat) {
		if p.canAct() {
			return p.Seat
		}
	}

	return -1
}

// playersFromSeat returns all players ordered clockwise starting with the
// first seat after the given seat
func (g *Game) playersFromSeat(seat int) []*Player {
	start := 0
	for i, p := range g.players {
		if p.Seat > seat {
			start = i
			break
		}
	}

	ordered := make([]*Player, 0, len(g.players))
	for i := 0; i < len(g.players); i++ {
		ordered = append(ordered, g.players[(start+i)%len(g.players)])
	}

	return ordered
}

func (g *Game) unfoldedCount() int {
	count := 0
	for _, p := range g.players {
		if !p.folded {
			count++
		}
	}

	return count
}

func (g *Game) canActCount() int {
	count := 0
	for _, p := range g.players {
		if p.canAct() {
			count++
		}
	}

	return count
}

// accessors

// Stage returns the current stage of the hand
func (g *Game) Stage() Stage {
	return g.stage
}

// Players returns the players in ascending seat order
func (g *Game) Players() []*Player {
	return g.players
}

// Player returns the player with the given user id
func (g *Game) Player(userID string) (*Player, bool) {
	p, ok := g.byID[userID]
	return p, ok
}

// ActingPlayer returns the player whose turn it is
func (g *Game) ActingPlayer() (*Player, bool) {
	if g.actingSeat < 0 {
		return nil, false
	}

	return g.playerAtSeat(g.actingSeat), true
}

// Community returns the community cards dealt so far
func (g *Game) Community() deck.Hand {
	return g.community
}

// Pot returns the total chips in the pot
func (g *Game) Pot() int {
	return g.pot
}

// CurrentBet returns the table's current street bet
func (g *Game) CurrentBet() int {
	return g.currentBet
}

// LastRaiseIncrement returns the size of the most recent full raise
func (g *Game) LastRaiseIncrement() int {
	return g.lastRaiseIncrement
}

// DealerSeat returns the dealer's seat
func (g *Game) DealerSeat() int {
	return g.dealerSeat
}

// SmallBlindSeat returns the small blind's seat
func (g *Game) SmallBlindSeat() int {
	return g.smallBlindSeat
}

// BigBlindSeat returns the big blind's seat
func (g *Game) BigBlindSeat() int {
	return g.bigBlindSeat
}

// Winners returns the winners of the main pot once the hand has ended
func (g *Game) Winners() []*Player {
	return g.winners
}

// LastActionAt returns when the hand state last moved forward
func (g *Game) LastActionAt() time.Time {
	return g.lastActionAt
}
