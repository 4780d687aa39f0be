package room

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/superxuu/depu/pkg/account"
	"github.com/superxuu/depu/pkg/holdem"
)

// HostOptions configures the host and its table
type HostOptions struct {
	MaxSeats   int
	SmallBlind int
	BigBlind   int

	ActionTimeout         time.Duration
	OfflineFoldGrace      time.Duration
	HeartbeatGrace        time.Duration
	SinglePlayerCountdown time.Duration
}

// DefaultHostOptions returns the default table configuration
func DefaultHostOptions() HostOptions {
	return HostOptions{
		MaxSeats:              6,
		SmallBlind:            5,
		BigBlind:              10,
		ActionTimeout:         30 * time.Second,
		OfflineFoldGrace:      5 * time.Second,
		HeartbeatGrace:        30 * time.Second,
		SinglePlayerCountdown: 20 * time.Second,
	}
}

// closeWait bounds how long a close frame request waits for the write loop
const closeWait = 10 * time.Second

type inboundMessage struct {
	client *Client
	msg    *ClientMessage
}

// Snapshot is a point-in-time view of the table for the HTTP API
type Snapshot struct {
	Players    []*OccupantState `json:"players"`
	ReadyCount int              `json:"ready_count"`
	DealerSeat int              `json:"dealer_seat"`
	Game       *holdem.State    `json:"game,omitempty"`
}

// Host runs the table. All room and game state is owned by its run loop, so
// every mutation flows through a channel.
type Host struct {
	log      logrus.FieldLogger
	opts     HostOptions
	accounts *account.Registry
	room     *Room

	clients map[*Client]bool
	byUser  map[string]*Client

	// offlineSince tracks seated users whose connection dropped
	offlineSince map[string]time.Time

	// decision window for the last connected player in a hand
	singlePlayerID    string
	singlePlayerSince time.Time

	register      chan *Client
	disconnect    chan *Client
	inbound       chan inboundMessage
	execInRunLoop chan func()
	close         chan bool
}

// NewHost creates a new host for a single table
// This is called from a blocking state, so it needs to return quickly
func NewHost(logger logrus.FieldLogger, accounts *account.Registry, opts HostOptions) *Host {
	return &Host{
		log:      logger,
		opts:     opts,
		accounts: accounts,
		room: NewRoom(logger, Options{
			MaxSeats:   opts.MaxSeats,
			SmallBlind: opts.SmallBlind,
			BigBlind:   opts.BigBlind,
		}),
		clients:       make(map[*Client]bool),
		byUser:        make(map[string]*Client),
		offlineSince:  make(map[string]time.Time),
		register:      make(chan *Client, 256),
		disconnect:    make(chan *Client, 256),
		inbound:       make(chan inboundMessage, 256),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}
}

// StartShift starts the run loop
func (h *Host) StartShift() {
	go h.runLoop()
}

// EndShift is called when the host is no longer needed
func (h *Host) EndShift() {
	close(h.close)
}

func (h *Host) runLoop() {
	h.log.Debug("creating host run loop")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.disconnect:
			h.handleDisconnect(client)
		case in := <-h.inbound:
			h.handleMessage(in.client, in.msg)
		case fn := <-h.execInRunLoop:
			fn()
		case <-ticker.C:
			h.tick()
		case <-h.close:
			h.log.Debug("terminating host run loop")
			return
		}
	}
}

// ClientConnected is called when a client connects to the server
// This method must return quickly
func (h *Host) ClientConnected(client *Client) {
	client.host = h
	h.register <- client
}

// ClientDisconnected is called when a client disconnects from the server
// This method must return quickly
func (h *Host) ClientDisconnected(client *Client) {
	h.disconnect <- client
}

// ReceivedMessage is called when a client sends a message to the server
// This method must return quickly
func (h *Host) ReceivedMessage(c *Client, msg *ClientMessage) {
	h.inbound <- inboundMessage{client: c, msg: msg}
}

// SnapshotFor returns a point-in-time view of the table as seen by the given
// user
func (h *Host) SnapshotFor(userID string) *Snapshot {
	reply := make(chan *Snapshot, 1)
	h.execInRunLoop <- func() {
		snapshot := &Snapshot{
			Players:    h.room.States(),
			ReadyCount: h.room.ReadyCount(),
			DealerSeat: h.room.DealerSeat(),
		}

		if game := h.room.Game(); game != nil {
			snapshot.Game = game.StateFor(userID)
		}

		reply <- snapshot
	}

	return <-reply
}

// NOTE: must only be called from the run loop
func (h *Host) handleMessage(c *Client, msg *ClientMessage) {
	if msg.Type == MessagePing {
		c.lastPong = time.Now()
		c.Send(&Event{Type: EventPong})
		return
	}

	if msg.Type == MessageAuth {
		h.handleAuth(c, msg)
		return
	}

	if c.user == nil {
		c.Send(&Event{Type: EventAuthError, Message: "you must authenticate first"})
		return
	}

	switch msg.Type {
	case MessageReady:
		h.handleReady(c, msg)
	case MessageAction:
		h.handleAction(c, msg)
	case MessageReveal:
		h.handleReveal(c)
	case MessageDecision:
		h.handleDecision(c, msg)
	case MessageLeave:
		h.handleLeave(c)
	default:
		h.log.WithField("msg", msg).Warn("unknown message")
	}
}

// NOTE: must only be called from the run loop
func (h *Host) handleAuth(c *Client, msg *ClientMessage) {
	user, ok := h.accounts.BySession(msg.SessionToken)
	if !ok {
		c.Send(&Event{Type: EventAuthError, Message: "invalid session token"})
		h.closeClient(c, "invalid session token")
		return
	}

	// a newer connection for the same user supersedes the old one
	if old, found := h.byUser[user.ID]; found && old != c {
		delete(h.clients, old)
		h.closeClient(old, "signed in from another connection")
	}

	occupant, rejoined, err := h.room.Join(user.ID, user.Nickname, user.Chips)
	if err != nil {
		c.Send(newErrorEvent(EventAuthError, err))
		h.closeClient(c, err.Error())
		return
	}

	c.user = &user
	c.setIdentity(&user)
	c.lastPong = time.Now()
	h.byUser[user.ID] = c
	delete(h.offlineSince, user.ID)

	event := &Event{
		Type:     EventAuthSuccess,
		UserID:   user.ID,
		Nickname: user.Nickname,
		Players:  h.room.States(),
	}

	if game := h.room.Game(); game != nil {
		event.State = game.StateFor(user.ID)
	}

	c.Send(event)

	joinEvent := EventPlayerJoined
	if rejoined {
		joinEvent = EventPlayerReconnected
	}

	h.broadcastExcept(c, &Event{Type: joinEvent, UserID: user.ID, Nickname: user.Nickname})
	h.broadcastLobby()

	h.log.WithFields(logrus.Fields{
		"user":     user.ID,
		"nickname": user.Nickname,
		"seat":     occupant.Seat,
		"rejoined": rejoined,
	}).Info("client authenticated")

	// a returning ready player may unblock the next hand
	h.maybeStartHand()
}

// NOTE: must only be called from the run loop
func (h *Host) handleReady(c *Client, msg *ClientMessage) {
	if msg.IsReady == nil {
		c.Send(&Event{Type: EventActionError, Message: "is_ready is required"})
		return
	}

	if err := h.room.SetReady(c.user.ID, *msg.IsReady); err != nil {
		c.Send(newErrorEvent(EventActionError, err))
		return
	}

	h.broadcast(&Event{Type: EventReadyStateUpdate, UserID: c.user.ID, IsReady: msg.IsReady, Players: h.room.States()})
	h.broadcastLobby()
	h.maybeStartHand()
}

// NOTE: must only be called from the run loop
func (h *Host) handleAction(c *Client, msg *ClientMessage) {
	game := h.room.Game()
	if game == nil {
		c.Send(&Event{Type: EventActionError, Message: "no hand is being played"})
		return
	}

	action, err := holdem.ActionFromString(msg.Action)
	if err != nil {
		c.Send(newErrorEvent(EventActionError, err))
		return
	}

	result, err := game.Act(c.user.ID, action, msg.Amount)
	if err != nil {
		c.Send(newErrorEvent(EventActionError, err))
		return
	}

	c.Send(&Event{Type: EventActionConfirmation, Result: result})
	h.broadcastExcept(c, &Event{Type: EventActionConfirmation, UserID: c.user.ID, Result: result})
	h.afterGameStep()
}

// NOTE: must only be called from the run loop
func (h *Host) handleReveal(c *Client) {
	game := h.room.Game()
	if game == nil {
		c.Send(&Event{Type: EventActionError, Message: "no hand is being played"})
		return
	}

	if err := game.Reveal(c.user.ID); err != nil {
		c.Send(newErrorEvent(EventActionError, err))
		return
	}

	h.broadcastState()
}

// handleDecision resolves the choice offered to the last connected player in
// a hand: end it now in their favor, or keep waiting for the others
// NOTE: must only be called from the run loop
func (h *Host) handleDecision(c *Client, msg *ClientMessage) {
	game := h.room.Game()
	if game == nil {
		c.Send(&Event{Type: EventActionError, Message: "no hand is being played"})
		return
	}

	if h.singlePlayerSince.IsZero() || h.singlePlayerID != c.user.ID {
		c.Send(&Event{Type: EventActionError, Message: "you do not have a pending decision"})
		return
	}

	switch msg.Decision {
	case "continue":
		h.singlePlayerSince = time.Now()
		h.broadcast(&Event{
			Type:      EventCountdown,
			UserID:    c.user.ID,
			Countdown: int(h.opts.SinglePlayerCountdown / time.Second),
		})
	case "end":
		h.clearSinglePlayerWindow()
		if err := game.ForceWin(c.user.ID); err != nil {
			c.Send(newErrorEvent(EventActionError, err))
			return
		}

		h.afterGameStep()
	default:
		c.Send(&Event{Type: EventActionError, Message: "decision must be end or continue"})
	}
}

// NOTE: must only be called from the run loop
func (h *Host) handleLeave(c *Client) {
	occupant, err := h.room.Leave(c.user.ID)
	if err != nil {
		c.Send(newErrorEvent(EventActionError, err))
		return
	}

	h.accounts.SetChips(c.user.ID, occupant.Chips)
	delete(h.byUser, c.user.ID)
	delete(h.offlineSince, c.user.ID)

	h.broadcastExcept(c, &Event{Type: EventPlayerLeft, UserID: c.user.ID, Nickname: c.user.Nickname})
	h.afterGameStep()
	h.broadcastLobby()
	h.closeClient(c, "left the table")
}

// NOTE: must only be called from the run loop
func (h *Host) handleDisconnect(client *Client) {
	delete(h.clients, client)

	if client.user == nil {
		return
	}

	if h.byUser[client.user.ID] != client {
		// already superseded by a newer connection
		return
	}

	delete(h.byUser, client.user.ID)

	if _, ok := h.room.Occupant(client.user.ID); ok {
		h.room.MarkOffline(client.user.ID)
		h.offlineSince[client.user.ID] = time.Now()
		h.broadcast(&Event{Type: EventPlayerDisconnected, UserID: client.user.ID, Nickname: client.user.Nickname})
		h.broadcastLobby()
	}
}

// afterGameStep broadcasts the new hand state and settles up if the hand is
// over
// NOTE: must only be called from the run loop
func (h *Host) afterGameStep() {
	game := h.room.Game()
	if game == nil {
		return
	}

	h.broadcastState()

	if game.Stage() != holdem.StageEnded {
		return
	}

	ended := &Event{Type: EventGameEnded}
	if winners := game.Winners(); len(winners) > 0 {
		ended.UserID = winners[0].UserID
		ended.Nickname = winners[0].Nickname
	}

	for _, occupant := range h.room.FinishHand() {
		h.accounts.SetChips(occupant.UserID, occupant.Chips)
	}

	h.broadcast(ended)
	h.broadcastLobby()
}

// NOTE: must only be called from the run loop
func (h *Host) maybeStartHand() {
	if h.room.CanStart() {
		h.startHand()
	}
}

// NOTE: must only be called from the run loop
func (h *Host) startHand() {
	err := h.room.StartHand(holdem.Options{
		SmallBlind: h.opts.SmallBlind,
		BigBlind:   h.opts.BigBlind,
	})

	if err != nil {
		h.log.WithError(err).Error("could not start hand")
		return
	}

	h.broadcast(&Event{Type: EventGameStarted})
	h.broadcastState()

	// blinds may have ended the hand before anyone acted
	h.afterGameStep()
}

// NOTE: must only be called from the run loop
func (h *Host) tick() {
	h.checkActingPlayer()
	h.checkHeartbeats()
	h.checkSinglePlayer()
}

// checkActingPlayer folds or checks for the player on the clock when their
// turn has expired, or sooner when they have dropped offline
// NOTE: must only be called from the run loop
func (h *Host) checkActingPlayer() {
	game := h.room.Game()
	if game == nil || !game.InBettingRound() {
		return
	}

	acting, ok := game.ActingPlayer()
	if !ok {
		return
	}

	timedOut := time.Since(game.LastActionAt()) > h.opts.ActionTimeout
	if since, offline := h.offlineSince[acting.UserID]; offline && time.Since(since) > h.opts.OfflineFoldGrace {
		timedOut = true
	}

	if !timedOut {
		return
	}

	action, err := game.TimeoutAction()
	if err != nil {
		h.log.WithError(err).Error("could not apply timeout action")
		return
	}

	h.log.WithFields(logrus.Fields{
		"user":   acting.UserID,
		"action": action,
	}).Info("acting player timed out")

	h.broadcast(&Event{
		Type:   EventActionConfirmation,
		UserID: acting.UserID,
		Result: &holdem.ActionResult{Action: action, Message: "timed out"},
	})

	h.afterGameStep()
}

// NOTE: must only be called from the run loop
func (h *Host) checkHeartbeats() {
	for client := range h.clients {
		if client.user == nil {
			continue
		}

		if time.Since(client.lastPong) > h.opts.HeartbeatGrace {
			h.log.WithField("client", client.String()).Info("closing stale connection")
			delete(h.clients, client)
			h.closeClient(client, "heartbeat timeout")
			h.handleDisconnect(client)
		}
	}
}

// checkSinglePlayer opens a decision window when only one connected player is
// left in a live hand, and ends the hand in their favor when it expires
// NOTE: must only be called from the run loop
func (h *Host) checkSinglePlayer() {
	game := h.room.Game()
	if game == nil || game.Stage() == holdem.StageEnded {
		h.clearSinglePlayerWindow()
		return
	}

	lone := h.loneConnectedPlayer(game)
	if lone == nil {
		h.clearSinglePlayerWindow()
		return
	}

	if h.singlePlayerSince.IsZero() || h.singlePlayerID != lone.UserID {
		h.singlePlayerID = lone.UserID
		h.singlePlayerSince = time.Now()
		h.broadcast(&Event{
			Type:      EventCountdown,
			UserID:    lone.UserID,
			Countdown: int(h.opts.SinglePlayerCountdown / time.Second),
		})
		return
	}

	if time.Since(h.singlePlayerSince) < h.opts.SinglePlayerCountdown {
		return
	}

	h.clearSinglePlayerWindow()

	h.log.WithField("user", lone.UserID).Info("single player decision expired, ending hand")
	if err := game.ForceWin(lone.UserID); err != nil {
		h.log.WithError(err).Error("could not end hand for last connected player")
		return
	}

	h.afterGameStep()
}

// loneConnectedPlayer returns the only connected player still in the hand, or
// nil when the hand still has two or more connected players
// NOTE: must only be called from the run loop
func (h *Host) loneConnectedPlayer(game *holdem.Game) *holdem.Player {
	var lone *holdem.Player
	unfolded := 0
	connected := 0
	for _, p := range game.Players() {
		if p.Folded() {
			continue
		}

		unfolded++
		if _, online := h.byUser[p.UserID]; online {
			connected++
			lone = p
		}
	}

	if unfolded < 2 || connected != 1 {
		return nil
	}

	return lone
}

// NOTE: must only be called from the run loop
func (h *Host) clearSinglePlayerWindow() {
	h.singlePlayerID = ""
	h.singlePlayerSince = time.Time{}
}

// closeClient asks the write loop to send a close frame. The write loop may
// already be gone, so never block on it.
func (h *Host) closeClient(c *Client, reason string) {
	select {
	case c.Close <- reason:
	default:
		go func() {
			select {
			case c.Close <- reason:
			case <-time.After(closeWait):
			}
		}()
	}
}

// NOTE: must only be called from the run loop
func (h *Host) broadcast(event *Event) {
	for client := range h.clients {
		if client.user == nil {
			continue
		}

		if !client.Send(event) {
			h.log.WithField("client", client.String()).Warn("client send buffer full")
		}
	}
}

// NOTE: must only be called from the run loop
func (h *Host) broadcastExcept(skip *Client, event *Event) {
	for client := range h.clients {
		if client.user == nil || client == skip {
			continue
		}

		client.Send(event)
	}
}

// broadcastState sends each authenticated client their own view of the hand
// NOTE: must only be called from the run loop
func (h *Host) broadcastState() {
	game := h.room.Game()
	if game == nil {
		return
	}

	for client := range h.clients {
		if client.user == nil {
			continue
		}

		client.Send(&Event{Type: EventGameStateUpdate, State: game.StateFor(client.user.ID)})
	}
}

// broadcastLobby sends the seat, chip, and ready overview to everyone
// NOTE: must only be called from the run loop
func (h *Host) broadcastLobby() {
	h.broadcast(&Event{
		Type:         EventReadyCountUpdate,
		ReadyCount:   h.room.ReadyCount(),
		TotalPlayers: len(h.room.Occupants()),
		Players:      h.room.States(),
	})
}
