package main

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// InputPacket is one decoded control sample. Produced by the network
// boundary or the bot controller, consumed and discarded within the tick
// that processes it.
type InputPacket struct {
	PlayerID uint32
	Seq      uint32
	MoveX    float32 // strafe intent, [-1,1]
	MoveZ    float32 // forward intent, [-1,1]
	Yaw      float32
	Pitch    float32
	Fire     bool
	Weapon   uint8
	Jump     bool
}

// Wire layout of an input frame after the player id is resolved from the
// connection: seq u32, moveX f32, moveZ f32, yaw f32, pitch f32, fire u8,
// weapon u8, trailing jump u8 (absent = false). Little-endian, minimum 23
// payload bytes.
const inputFrameMin = 23

// DecodeInputFrame parses an input payload for the given player. Frames
// shorter than the minimum are rejected before reaching the simulation.
func DecodeInputFrame(playerID uint32, data []byte) (InputPacket, bool) {
	if len(data) < inputFrameMin {
		return InputPacket{}, false
	}
	pkt := InputPacket{
		PlayerID: playerID,
		Seq:      binary.LittleEndian.Uint32(data),
		MoveX:    float32FromBytes(data[4:]),
		MoveZ:    float32FromBytes(data[8:]),
		Yaw:      float32FromBytes(data[12:]),
		Pitch:    float32FromBytes(data[16:]),
		Fire:     data[20] != 0,
		Weapon:   data[21],
	}
	if len(data) > 22 {
		pkt.Jump = data[22] != 0
	}
	if math.IsNaN(float64(pkt.MoveX)) || math.IsNaN(float64(pkt.MoveZ)) ||
		math.IsNaN(float64(pkt.Yaw)) || math.IsNaN(float64(pkt.Pitch)) {
		return InputPacket{}, false
	}
	return pkt, true
}

// Binary frame markers on the websocket. Input frames carry the payload
// above; everything else is a msgpack envelope.
const (
	frameInput    = 0x01
	frameEnvelope = 0x02
	frameSnapshot = 0xFF
)

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgRegister = "register"
	MsgLogin    = "login"
)

// Server -> Client message types
const (
	MsgWelcome = "welcome"
	MsgAuthOK  = "auth_ok"
	MsgError   = "error"
)

// Envelope wraps control-plane messages; payloads are nested msgpack
type Envelope struct {
	T string             `msgpack:"t"`
	D msgpack.RawMessage `msgpack:"d,omitempty"`
}

// JoinMsg attaches a connection to a player slot. Token is optional; a
// valid one reclaims the same player id across reconnects.
type JoinMsg struct {
	Name  string `msgpack:"name"`
	Token string `msgpack:"token,omitempty"`
}

// WelcomeMsg confirms a join
type WelcomeMsg struct {
	PlayerID uint32 `msgpack:"id"`
	Token    string `msgpack:"token"`
}

// RegisterMsg creates a named account
type RegisterMsg struct {
	Username string `msgpack:"user"`
	Password string `msgpack:"pass"`
}

// LoginMsg authenticates a named account
type LoginMsg struct {
	Username string `msgpack:"user"`
	Password string `msgpack:"pass"`
}

// AuthOKMsg confirms register/login
type AuthOKMsg struct {
	Username string `msgpack:"user"`
	Token    string `msgpack:"token"`
}

// ErrorMsg reports a boundary failure to the client
type ErrorMsg struct {
	Msg string `msgpack:"msg"`
}

// EncodeEnvelope marshals a typed control message
func EncodeEnvelope(t string, payload interface{}) ([]byte, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(Envelope{T: t, D: raw})
}

// DecodeEnvelope unmarshals the outer envelope; the payload stays raw for
// a second, type-directed decode.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	err := msgpack.Unmarshal(data, &env)
	return env, err
}

// decodePayload unmarshals an envelope payload into a typed message
func decodePayload(raw []byte, out interface{}) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return msgpack.Unmarshal(raw, out)
}
