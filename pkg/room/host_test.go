package room

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/superxuu/depu/pkg/account"
	"github.com/superxuu/depu/pkg/holdem"
)

// testHost wires a host without starting its run loop so handlers can be
// exercised synchronously
func testHost(t *testing.T) (*Host, *account.Registry) {
	t.Helper()

	registry := account.NewRegistry(1000)
	h := NewHost(logrus.StandardLogger(), registry, DefaultHostOptions())
	return h, registry
}

func connect(t *testing.T, h *Host, registry *account.Registry, nickname string) (*Client, account.User) {
	t.Helper()

	user, sessionToken, err := registry.Login(nickname)
	assert.NoError(t, err)

	c := NewClient(nil)
	c.host = h
	h.clients[c] = true

	h.handleMessage(c, &ClientMessage{Type: MessageAuth, SessionToken: sessionToken})
	return c, user
}

func drainEvents(c *Client) []*Event {
	var events []*Event
	for {
		select {
		case msg := <-c.SendChan():
			events = append(events, msg.(*Event))
		default:
			return events
		}
	}
}

func eventOfType(events []*Event, eventType string) *Event {
	for _, event := range events {
		if event.Type == eventType {
			return event
		}
	}

	return nil
}

func TestHost_auth(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := connect(t, h, registry, "Alice")
	events := drainEvents(c1)

	success := eventOfType(events, EventAuthSuccess)
	a.NotNil(success)
	a.Equal(u1.ID, success.UserID)
	a.Len(success.Players, 1)

	// the write pump logs the client identity without touching run loop state
	a.Equal(u1.Nickname+" ("+u1.ID+")", c1.String())

	// bad session token
	c2 := NewClient(nil)
	c2.host = h
	h.clients[c2] = true
	h.handleMessage(c2, &ClientMessage{Type: MessageAuth, SessionToken: "bogus"})

	a.NotNil(eventOfType(drainEvents(c2), EventAuthError))

	// messages before auth are rejected
	c3 := NewClient(nil)
	c3.host = h
	h.clients[c3] = true
	h.handleMessage(c3, &ClientMessage{Type: MessageReady})
	a.NotNil(eventOfType(drainEvents(c3), EventAuthError))
}

func TestHost_supersededConnection(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := connect(t, h, registry, "Alice")
	drainEvents(c1)

	// the same session authenticates from a second connection
	_, sessionToken, err := registry.Login("Alice")
	a.NoError(err)

	c2 := NewClient(nil)
	c2.host = h
	h.clients[c2] = true
	h.handleMessage(c2, &ClientMessage{Type: MessageAuth, SessionToken: sessionToken})

	a.NotNil(eventOfType(drainEvents(c2), EventAuthSuccess))
	a.Equal(c2, h.byUser[u1.ID])
	a.False(h.clients[c1])

	// the old connection's eventual disconnect does not knock the user offline
	h.handleDisconnect(c1)
	o, ok := h.room.Occupant(u1.ID)
	a.True(ok)
	a.True(o.Online)
}

func TestHost_readyStartsHand(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := connect(t, h, registry, "Alice")
	c2, u2 := connect(t, h, registry, "Bob")
	drainEvents(c1)
	drainEvents(c2)

	ready := true
	h.handleMessage(c1, &ClientMessage{Type: MessageReady, IsReady: &ready})

	// a lone ready player does not start a hand
	a.Nil(h.room.Game())
	a.NotNil(eventOfType(drainEvents(c1), EventReadyCountUpdate))

	h.handleMessage(c2, &ClientMessage{Type: MessageReady, IsReady: &ready})

	a.NotNil(h.room.Game())

	events := drainEvents(c1)
	a.NotNil(eventOfType(events, EventGameStarted))

	state := eventOfType(events, EventGameStateUpdate)
	a.NotNil(state)
	a.Equal(holdem.StagePreFlop, state.State.Stage)

	// each player only sees their own hole cards
	for _, ps := range state.State.Players {
		if ps.UserID == u1.ID {
			a.Len(ps.HoleCards, 2)
		} else {
			a.Nil(ps.HoleCards)
		}
	}

	_ = u2
}

func TestHost_actionFlow(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := connect(t, h, registry, "Alice")
	c2, u2 := connect(t, h, registry, "Bob")

	ready := true
	h.handleMessage(c1, &ClientMessage{Type: MessageReady, IsReady: &ready})
	h.handleMessage(c2, &ClientMessage{Type: MessageReady, IsReady: &ready})
	drainEvents(c1)
	drainEvents(c2)

	game := h.room.Game()
	a.NotNil(game)

	acting, ok := game.ActingPlayer()
	a.True(ok)

	actingClient, otherClient := c1, c2
	if acting.UserID == u2.ID {
		actingClient, otherClient = c2, c1
	}

	// out of turn
	h.handleMessage(otherClient, &ClientMessage{Type: MessageAction, Action: "call"})
	errEvent := eventOfType(drainEvents(otherClient), EventActionError)
	a.NotNil(errEvent)
	a.Equal("it is not your turn", errEvent.Message)

	h.handleMessage(actingClient, &ClientMessage{Type: MessageAction, Action: "fold"})

	events := drainEvents(actingClient)
	confirmation := eventOfType(events, EventActionConfirmation)
	a.NotNil(confirmation)
	a.Equal(holdem.ActionFold, confirmation.Result.Action)

	// heads-up, a fold ends the hand and the table resets
	a.Nil(h.room.Game())
	a.NotNil(eventOfType(events, EventGameEnded))

	// chip movement reaches the registry
	alice, _ := registry.ByID(u1.ID)
	bob, _ := registry.ByID(u2.ID)
	a.Equal(2000, alice.Chips+bob.Chips)
	a.NotEqual(1000, alice.Chips)
}

func TestHost_leaveMidHand(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := connect(t, h, registry, "Alice")
	c2, u2 := connect(t, h, registry, "Bob")

	ready := true
	h.handleMessage(c1, &ClientMessage{Type: MessageReady, IsReady: &ready})
	h.handleMessage(c2, &ClientMessage{Type: MessageReady, IsReady: &ready})
	drainEvents(c1)
	drainEvents(c2)

	a.NotNil(h.room.Game())
	h.handleMessage(c1, &ClientMessage{Type: MessageLeave})

	// the hand is over and the remaining player was paid
	a.Nil(h.room.Game())
	a.Len(h.room.Occupants(), 1)

	remaining, _ := registry.ByID(u2.ID)
	leaver, _ := registry.ByID(u1.ID)
	a.Equal(2000, remaining.Chips+leaver.Chips)
	a.Greater(remaining.Chips, 1000)

	a.NotNil(eventOfType(drainEvents(c2), EventPlayerLeft))
}

func TestHost_timeoutFoldsActingPlayer(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)
	h.opts.ActionTimeout = -time.Second

	c1, _ := connect(t, h, registry, "Alice")
	c2, _ := connect(t, h, registry, "Bob")

	ready := true
	h.handleMessage(c1, &ClientMessage{Type: MessageReady, IsReady: &ready})
	h.handleMessage(c2, &ClientMessage{Type: MessageReady, IsReady: &ready})
	drainEvents(c1)
	drainEvents(c2)

	a.NotNil(h.room.Game())
	h.checkActingPlayer()

	// heads-up, folding the acting player ends the hand
	a.Nil(h.room.Game())
	a.NotNil(eventOfType(drainEvents(c1), EventGameEnded))
}

// lastConnectedHand deals a heads-up hand and then disconnects the second
// player, leaving the first as the only connected player in a live hand
func lastConnectedHand(t *testing.T, h *Host, registry *account.Registry) (*Client, account.User) {
	t.Helper()

	c1, u1 := connect(t, h, registry, "Alice")
	c2, _ := connect(t, h, registry, "Bob")

	ready := true
	h.handleMessage(c1, &ClientMessage{Type: MessageReady, IsReady: &ready})
	h.handleMessage(c2, &ClientMessage{Type: MessageReady, IsReady: &ready})

	assert.NotNil(t, h.room.Game())
	h.handleDisconnect(c2)
	drainEvents(c1)

	return c1, u1
}

func TestHost_singlePlayerDecisionEnd(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := lastConnectedHand(t, h, registry)

	// a decision before the window opens is rejected
	h.handleMessage(c1, &ClientMessage{Type: MessageDecision, Decision: "end"})
	a.NotNil(eventOfType(drainEvents(c1), EventActionError))

	h.checkSinglePlayer()
	a.Equal(u1.ID, h.singlePlayerID)

	countdown := eventOfType(drainEvents(c1), EventCountdown)
	a.NotNil(countdown)
	a.Equal(u1.ID, countdown.UserID)

	h.handleMessage(c1, &ClientMessage{Type: MessageDecision, Decision: "end"})

	// the hand ended in the remaining player's favor
	a.Nil(h.room.Game())
	a.NotNil(eventOfType(drainEvents(c1), EventGameEnded))

	alice, _ := registry.ByID(u1.ID)
	a.Greater(alice.Chips, 1000)
}

func TestHost_singlePlayerDecisionContinue(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := lastConnectedHand(t, h, registry)

	h.checkSinglePlayer()
	drainEvents(c1)

	h.singlePlayerSince = time.Now().Add(-time.Minute)
	h.handleMessage(c1, &ClientMessage{Type: MessageDecision, Decision: "continue"})

	// waiting restarts the countdown and keeps the hand alive
	a.NotNil(h.room.Game())
	a.Equal(u1.ID, h.singlePlayerID)
	a.WithinDuration(time.Now(), h.singlePlayerSince, time.Second)
	a.NotNil(eventOfType(drainEvents(c1), EventCountdown))

	h.handleMessage(c1, &ClientMessage{Type: MessageDecision, Decision: "maybe"})
	a.NotNil(eventOfType(drainEvents(c1), EventActionError))
}

func TestHost_singlePlayerDecisionTimeout(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := lastConnectedHand(t, h, registry)

	h.checkSinglePlayer()
	drainEvents(c1)

	h.singlePlayerSince = time.Now().Add(-time.Minute)
	h.checkSinglePlayer()

	// on expiry the hand ends in the remaining player's favor
	a.Nil(h.room.Game())
	a.NotNil(eventOfType(drainEvents(c1), EventGameEnded))

	alice, _ := registry.ByID(u1.ID)
	a.Greater(alice.Chips, 1000)
}

func TestHost_singlePlayerWindowClearsOnReconnect(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, _ := lastConnectedHand(t, h, registry)

	h.checkSinglePlayer()
	a.NotEmpty(h.singlePlayerID)
	drainEvents(c1)

	_, sessionToken, err := registry.Login("Bob")
	a.NoError(err)

	c3 := NewClient(nil)
	c3.host = h
	h.clients[c3] = true
	h.handleMessage(c3, &ClientMessage{Type: MessageAuth, SessionToken: sessionToken})
	a.NotNil(eventOfType(drainEvents(c3), EventAuthSuccess))

	h.checkSinglePlayer()
	a.Empty(h.singlePlayerID)
	a.NotNil(h.room.Game())
}

func TestHost_ping(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, _ := connect(t, h, registry, "Alice")
	drainEvents(c1)

	c1.lastPong = time.Now().Add(-time.Minute)
	h.handleMessage(c1, &ClientMessage{Type: MessagePing})

	a.NotNil(eventOfType(drainEvents(c1), EventPong))
	a.WithinDuration(time.Now(), c1.lastPong, time.Second)
}

func TestHost_disconnectMarksOffline(t *testing.T) {
	a := assert.New(t)
	h, registry := testHost(t)

	c1, u1 := connect(t, h, registry, "Alice")
	c2, _ := connect(t, h, registry, "Bob")
	drainEvents(c1)
	drainEvents(c2)

	h.handleDisconnect(c1)

	o, ok := h.room.Occupant(u1.ID)
	a.True(ok)
	a.False(o.Online)
	a.NotNil(eventOfType(drainEvents(c2), EventPlayerDisconnected))

	// reconnecting brings them back online
	_, sessionToken, err := registry.Login("Alice")
	a.NoError(err)

	c3 := NewClient(nil)
	c3.host = h
	h.clients[c3] = true
	h.handleMessage(c3, &ClientMessage{Type: MessageAuth, SessionToken: sessionToken})

	a.NotNil(eventOfType(drainEvents(c3), EventAuthSuccess))
	a.True(o.Online)
	a.NotNil(eventOfType(drainEvents(c2), EventPlayerReconnected))
}
