package room

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/superxuu/depu/pkg/account"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	host *Host

	// user is set once the client has authenticated. Only the host run loop
	// may touch it.
	user     *account.User
	lastPong time.Time

	// identity is a copy of the authenticated user's display identity, safe
	// to read from the read and write pumps
	identity atomic.Value
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		send:     make(chan interface{}, 256),
		Close:    make(chan string),
		Conn:     conn,
		lastPong: time.Now(),
	}
}

// Send queues a message for the web client. It reports false if the client's
// buffer is full.
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel of outbound messages
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

func (c *Client) setIdentity(user *account.User) {
	c.identity.Store(fmt.Sprintf("%s (%s)", user.Nickname, user.ID))
}

// String returns a traceable identifier for the client
func (c *Client) String() string {
	if id, ok := c.identity.Load().(string); ok {
		return id
	}

	return fmt.Sprintf("unauthenticated %s", c.Conn.RemoteAddr())
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *ClientMessage) {
	if c.host == nil {
		logrus.WithField("msg", msg).Warn("received message, but host not found")
		return
	}

	c.host.ReceivedMessage(c, msg)
}
