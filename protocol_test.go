package main

import (
	"encoding/binary"
	"math"
	"testing"
)

func buildInputPayload(seq uint32, moveX, moveZ, yaw, pitch float32, fire, weapon, jump byte) []byte {
	buf := make([]byte, 0, 23)
	buf = binary.LittleEndian.AppendUint32(buf, seq)
	buf = appendFloat32(buf, moveX)
	buf = appendFloat32(buf, moveZ)
	buf = appendFloat32(buf, yaw)
	buf = appendFloat32(buf, pitch)
	buf = append(buf, fire, weapon, jump)
	return buf
}

func TestDecodeInputFrameFields(t *testing.T) {
	data := buildInputPayload(42, 0.5, -1, 3.14, -0.7, 1, 2, 1)
	pkt, ok := DecodeInputFrame(9, data)
	if !ok {
		t.Fatal("expected valid frame to decode")
	}
	if pkt.PlayerID != 9 || pkt.Seq != 42 {
		t.Errorf("identity fields wrong: %+v", pkt)
	}
	if pkt.MoveX != 0.5 || pkt.MoveZ != -1 {
		t.Errorf("movement fields wrong: %+v", pkt)
	}
	if pkt.Yaw != 3.14 || pkt.Pitch != -0.7 {
		t.Errorf("orientation fields wrong: %+v", pkt)
	}
	if !pkt.Fire || pkt.Weapon != 2 || !pkt.Jump {
		t.Errorf("flag fields wrong: %+v", pkt)
	}
}

func TestDecodeInputFrameRejectsShort(t *testing.T) {
	data := buildInputPayload(1, 0, 0, 0, 0, 0, 0, 0)
	for size := 0; size < inputFrameMin; size++ {
		if _, ok := DecodeInputFrame(1, data[:size]); ok {
			t.Errorf("expected %d-byte frame rejected", size)
		}
	}
	if _, ok := DecodeInputFrame(1, data); !ok {
		t.Error("expected minimum-size frame accepted")
	}
}

func TestDecodeInputFrameRejectsNaN(t *testing.T) {
	nan := float32(math.NaN())
	cases := [][]byte{
		buildInputPayload(1, nan, 0, 0, 0, 0, 0, 0),
		buildInputPayload(1, 0, nan, 0, 0, 0, 0, 0),
		buildInputPayload(1, 0, 0, nan, 0, 0, 0, 0),
		buildInputPayload(1, 0, 0, 0, nan, 0, 0, 0),
	}
	for i, data := range cases {
		if _, ok := DecodeInputFrame(1, data); ok {
			t.Errorf("case %d: NaN field must reject the frame", i)
		}
	}
}

func TestDecodeInputFrameTrailingBytesTolerated(t *testing.T) {
	data := append(buildInputPayload(7, 0, 1, 0, 0, 0, 0, 1), 0xAA, 0xBB)
	pkt, ok := DecodeInputFrame(1, data)
	if !ok {
		t.Fatal("expected oversized frame accepted")
	}
	if pkt.Seq != 7 || !pkt.Jump {
		t.Errorf("known fields must still decode: %+v", pkt)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	data, err := EncodeEnvelope(MsgJoin, JoinMsg{Name: "ada", Token: "tok123"})
	if err != nil {
		t.Fatal(err)
	}
	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatal(err)
	}
	if env.T != MsgJoin {
		t.Errorf("expected type %q, got %q", MsgJoin, env.T)
	}
	var join JoinMsg
	if err := decodePayload(env.D, &join); err != nil {
		t.Fatal(err)
	}
	if join.Name != "ada" || join.Token != "tok123" {
		t.Errorf("payload mismatch: %+v", join)
	}
}

func TestEnvelopeWelcomeRoundTrip(t *testing.T) {
	data, err := EncodeEnvelope(MsgWelcome, WelcomeMsg{PlayerID: 31337, Token: "t"})
	if err != nil {
		t.Fatal(err)
	}
	env, _ := DecodeEnvelope(data)
	var w WelcomeMsg
	if err := decodePayload(env.D, &w); err != nil {
		t.Fatal(err)
	}
	if w.PlayerID != 31337 || w.Token != "t" {
		t.Errorf("payload mismatch: %+v", w)
	}
}

func TestDecodeEnvelopeGarbage(t *testing.T) {
	if _, err := DecodeEnvelope([]byte{0xc1, 0xff, 0x00}); err == nil {
		t.Error("expected error decoding garbage envelope")
	}
	var join JoinMsg
	if err := decodePayload(nil, &join); err == nil {
		t.Error("expected error for an empty payload")
	}
}
