package room

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/superxuu/depu/pkg/holdem"
)

// Options configures the table
type Options struct {
	MaxSeats   int
	SmallBlind int
	BigBlind   int
}

// room errors
var (
	ErrRoomFull     = errors.New("the table is full")
	ErrNotInRoom    = errors.New("you are not at the table")
	ErrHandInFlight = errors.New("a hand is already being played")
)

// Occupant is a player with a seat at the table
type Occupant struct {
	UserID   string
	Nickname string
	Seat     int
	Chips    int
	Ready    bool
	Online   bool
}

// OccupantState is the public view of an occupant
type OccupantState struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Position int    `json:"position"`
	Chips    int    `json:"chips"`
	IsReady  bool   `json:"is_ready"`
	IsOnline bool   `json:"is_online"`
}

// Room is a single poker table. It tracks who is seated, who is ready, and
// the hand currently being played. Room is not safe for concurrent use; the
// Host serializes all access through its run loop.
type Room struct {
	log        logrus.FieldLogger
	opts       Options
	seats      []*Occupant // nil when vacant
	dealerSeat int         // -1 until the first hand
	game       *holdem.Game
}

// NewRoom returns an empty table
func NewRoom(logger logrus.FieldLogger, opts Options) *Room {
	return &Room{
		log:        logger,
		opts:       opts,
		seats:      make([]*Occupant, opts.MaxSeats),
		dealerSeat: -1,
	}
}

// Join seats a user at the first open seat. If the user already holds a seat
// they are marked online again and keep it.
func (r *Room) Join(userID, nickname string, chips int) (*Occupant, bool, error) {
	if o, ok := r.Occupant(userID); ok {
		o.Online = true
		return o, true, nil
	}

	for i, seat := range r.seats {
		if seat != nil {
			continue
		}

		o := &Occupant{
			UserID:   userID,
			Nickname: nickname,
			Seat:     i,
			Chips:    chips,
			Online:   true,
		}

		r.seats[i] = o
		return o, false, nil
	}

	return nil, false, ErrRoomFull
}

// Leave removes a user from the table. If they are in the current hand they
// forfeit it; if they were the last opponent standing, the hand is awarded to
// the one player still seated.
func (r *Room) Leave(userID string) (*Occupant, error) {
	o, ok := r.Occupant(userID)
	if !ok {
		return nil, ErrNotInRoom
	}

	r.seats[o.Seat] = nil

	if r.game != nil {
		if p, ok := r.game.Player(userID); ok {
			if remaining := r.seatedInHand(); len(remaining) == 1 && r.game.Stage() != holdem.StageEnded {
				if err := r.game.ForceWin(remaining[0].UserID); err != nil {
					r.log.WithError(err).Error("could not award hand")
				}
			} else if err := r.game.Forfeit(userID); err != nil {
				r.log.WithError(err).Error("could not forfeit hand")
			}

			o.Chips = p.Stack()
		}
	}

	return o, nil
}

// seatedInHand returns the occupants who are players in the current hand
func (r *Room) seatedInHand() []*Occupant {
	seated := make([]*Occupant, 0, len(r.seats))
	for _, o := range r.seats {
		if o == nil {
			continue
		}

		if _, ok := r.game.Player(o.UserID); ok {
			seated = append(seated, o)
		}
	}

	return seated
}

// SetReady records whether a user wants to be dealt into the next hand
func (r *Room) SetReady(userID string, ready bool) error {
	o, ok := r.Occupant(userID)
	if !ok {
		return ErrNotInRoom
	}

	o.Ready = ready
	return nil
}

// MarkOffline flags a user as disconnected without freeing their seat
func (r *Room) MarkOffline(userID string) {
	if o, ok := r.Occupant(userID); ok {
		o.Online = false
	}
}

// Occupant returns the occupant with the given user id
func (r *Room) Occupant(userID string) (*Occupant, bool) {
	for _, o := range r.seats {
		if o != nil && o.UserID == userID {
			return o, true
		}
	}

	return nil, false
}

// Occupants returns the seated players in seat order
func (r *Room) Occupants() []*Occupant {
	occupants := make([]*Occupant, 0, len(r.seats))
	for _, o := range r.seats {
		if o != nil {
			occupants = append(occupants, o)
		}
	}

	return occupants
}

// ReadyCount returns how many occupants are ready for the next hand
func (r *Room) ReadyCount() int {
	count := 0
	for _, o := range r.Occupants() {
		if o.Ready {
			count++
		}
	}

	return count
}

// eligible returns true if the occupant can be dealt into a hand
func (r *Room) eligible(o *Occupant) bool {
	return o.Online && o.Chips >= r.opts.BigBlind
}

// CanStart returns true when a new hand can begin: no hand in flight, at
// least two ready eligible players, and nobody eligible still deciding
func (r *Room) CanStart() bool {
	if r.game != nil {
		return false
	}

	readyEligible := 0
	for _, o := range r.Occupants() {
		if !r.eligible(o) {
			continue
		}

		if !o.Ready {
			return false
		}

		readyEligible++
	}

	return readyEligible >= 2
}

// StartHand deals a new hand to the ready players, rotating the dealer
// button to the next eligible seat
func (r *Room) StartHand(opts holdem.Options) error {
	if r.game != nil {
		return ErrHandInFlight
	}

	seats := make([]holdem.Seat, 0, len(r.seats))
	for _, o := range r.Occupants() {
		if !r.eligible(o) || !o.Ready {
			continue
		}

		seats = append(seats, holdem.Seat{
			UserID:   o.UserID,
			Nickname: o.Nickname,
			Seat:     o.Seat,
			Chips:    o.Chips,
		})
	}

	dealerSeat := nextDealerSeat(seats, r.dealerSeat)

	game, err := holdem.NewGame(r.log, seats, dealerSeat, opts)
	if err != nil {
		return err
	}

	if err := game.Deal(); err != nil {
		return err
	}

	r.game = game
	r.dealerSeat = dealerSeat
	return nil
}

// nextDealerSeat returns the first seat in the hand after the previous
// dealer's seat
func nextDealerSeat(seats []holdem.Seat, prevDealer int) int {
	if len(seats) == 0 {
		return 0
	}

	dealer := seats[0].Seat
	for _, seat := range seats {
		if seat.Seat > prevDealer {
			dealer = seat.Seat
			break
		}
	}

	return dealer
}

// FinishHand writes the final stacks back to the seated players and clears
// the table for the next hand. The returned occupants carry the updated chip
// counts so they can be persisted.
func (r *Room) FinishHand() []*Occupant {
	if r.game == nil {
		return nil
	}

	settled := make([]*Occupant, 0, len(r.seats))
	for _, o := range r.Occupants() {
		if p, ok := r.game.Player(o.UserID); ok {
			o.Chips = p.Stack()
			settled = append(settled, o)
		}

		o.Ready = false
	}

	r.game = nil
	return settled
}

// Game returns the hand in flight, or nil
func (r *Room) Game() *holdem.Game {
	return r.game
}

// DealerSeat returns the seat of the current dealer button
func (r *Room) DealerSeat() int {
	return r.dealerSeat
}

// States returns the public view of every occupant in seat order
func (r *Room) States() []*OccupantState {
	occupants := r.Occupants()
	states := make([]*OccupantState, len(occupants))
	for i, o := range occupants {
		states[i] = &OccupantState{
			UserID:   o.UserID,
			Nickname: o.Nickname,
			Position: o.Seat,
			Chips:    o.Chips,
			IsReady:  o.Ready,
			IsOnline: o.Online,
		}
	}

	return states
}
