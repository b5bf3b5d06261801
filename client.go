package main

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // inputs arrive at tick rate plus margin
)

// Client represents one WebSocket connection. Binary frames are either
// marked input payloads or marked msgpack envelopes; outgoing snapshots go
// out as raw binary.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   uint32 // 0 until joined
	name       string
	remoteAddr string
	sessionID  string

	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		sessionID:  GenerateID(8),
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		if msgType != websocket.BinaryMessage || len(message) < 1 {
			continue
		}
		switch message[0] {
		case frameInput:
			c.handleInput(message[1:])
		case frameEnvelope:
			c.handleEnvelope(message[1:])
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendBinary queues a raw snapshot frame; a slow client drops it
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = frameSnapshot
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// SendEnvelope queues a control-plane message
func (c *Client) SendEnvelope(t string, payload interface{}) {
	data, err := EncodeEnvelope(t, payload)
	if err != nil {
		log.Printf("encode envelope: %v", err)
		return
	}
	msg := make([]byte, len(data)+1)
	msg[0] = frameEnvelope
	copy(msg[1:], data)
	defer func() { recover() }()
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendEnvelope(MsgError, ErrorMsg{Msg: msg})
}

// handleInput decodes one control sample and hands it to the hub funnel.
// Frames arriving before a join are ignored.
func (c *Client) handleInput(payload []byte) {
	if c.playerID == 0 {
		return
	}
	pkt, ok := DecodeInputFrame(c.playerID, payload)
	if !ok {
		return
	}
	c.hub.QueueInput(pkt)
}

// handleEnvelope routes control-plane messages
func (c *Client) handleEnvelope(raw []byte) {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		log.Printf("decode envelope: %v", err)
		return
	}
	switch env.T {
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	}
}

func (c *Client) handleJoin(raw []byte) {
	if c.playerID != 0 {
		c.sendError("already joined")
		return
	}
	var msg JoinMsg
	if err := decodePayload(raw, &msg); err != nil {
		c.sendError("bad join message")
		return
	}

	var playerID uint32
	if msg.Token != "" {
		if pid, ok := c.hub.auth.VerifyToken(msg.Token); ok {
			playerID = pid
		}
	}
	if playerID == 0 {
		playerID = c.hub.NextGuestID()
	}

	token, err := c.hub.auth.IssueToken(playerID, "")
	if err != nil {
		c.sendError("token issue failed")
		return
	}

	c.playerID = playerID
	c.name = msg.Name
	if c.hub.analytics != nil {
		c.hub.analytics.Track(EvtSessionOpen, playerID, 0, c.hub.engine.Tick())
	}
	c.SendEnvelope(MsgWelcome, WelcomeMsg{PlayerID: playerID, Token: token})
}

func (c *Client) handleRegister(raw []byte) {
	var msg RegisterMsg
	if err := decodePayload(raw, &msg); err != nil {
		c.sendError("bad register message")
		return
	}
	if _, err := c.hub.auth.Register(msg.Username, msg.Password); err != nil {
		c.sendError(err.Error())
		return
	}
	token, err := c.hub.auth.IssueToken(c.playerID, msg.Username)
	if err != nil {
		c.sendError("token issue failed")
		return
	}
	c.SendEnvelope(MsgAuthOK, AuthOKMsg{Username: msg.Username, Token: token})
}

func (c *Client) handleLogin(raw []byte) {
	var msg LoginMsg
	if err := decodePayload(raw, &msg); err != nil {
		c.sendError("bad login message")
		return
	}
	account, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	token, err := c.hub.auth.IssueToken(c.playerID, account.Username)
	if err != nil {
		c.sendError("token issue failed")
		return
	}
	c.SendEnvelope(MsgAuthOK, AuthOKMsg{Username: account.Username, Token: token})
}
