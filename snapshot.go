package main

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	snapshotHeaderSize = 6 // tick u32 + player count u16

	playerRecordSize = 45
	spiderRecordSize = 23
)

// publishSnapshot rebuilds the flat binary snapshot from scratch and swaps
// it into the published slot under the lock. Layout, little-endian, no
// padding: tick u32, player count u16, then one fixed-width record per
// player. When hostile publication is enabled a spider count u16 and
// fixed-width spider records follow.
func (e *Engine) publishSnapshot() {
	size := snapshotHeaderSize + len(e.players)*playerRecordSize
	if e.cfg.PublishSpiders {
		size += 2 + len(e.spiders)*spiderRecordSize
	}
	buf := make([]byte, 0, size)

	buf = binary.LittleEndian.AppendUint32(buf, e.tick.Load())
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.players)))
	for i := range e.players {
		p := &e.players[i]
		buf = binary.LittleEndian.AppendUint32(buf, p.ID)
		buf = appendFloat32(buf, p.X)
		buf = appendFloat32(buf, p.Y)
		buf = appendFloat32(buf, p.Z)
		buf = appendFloat32(buf, p.VX)
		buf = appendFloat32(buf, p.VY)
		buf = appendFloat32(buf, p.VZ)
		buf = appendFloat32(buf, p.Yaw)
		buf = appendFloat32(buf, p.Pitch)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(p.Health)))
		buf = append(buf, boolByte(p.Active), boolByte(p.IsBot), p.Weapon)
		buf = binary.LittleEndian.AppendUint32(buf, p.LastSeq)
	}

	if e.cfg.PublishSpiders {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.spiders)))
		for i := range e.spiders {
			s := &e.spiders[i]
			buf = binary.LittleEndian.AppendUint32(buf, s.ID)
			buf = appendFloat32(buf, s.X)
			buf = appendFloat32(buf, s.Y)
			buf = appendFloat32(buf, s.Z)
			buf = appendFloat32(buf, s.Yaw)
			buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(s.Health)))
			buf = append(buf, boolByte(s.Active))
		}
	}

	e.snapMu.Lock()
	e.snapshot = buf
	e.snapMu.Unlock()
}

// SnapshotPlayer is one decoded player record
type SnapshotPlayer struct {
	ID         uint32
	X, Y, Z    float32
	VX, VY, VZ float32
	Yaw, Pitch float32
	Health     int16
	Active     bool
	IsBot      bool
	Weapon     uint8
	LastSeq    uint32
}

// SnapshotSpider is one decoded hostile record
type SnapshotSpider struct {
	ID      uint32
	X, Y, Z float32
	Yaw     float32
	Health  int16
	Active  bool
}

// DecodedSnapshot is a parsed world snapshot
type DecodedSnapshot struct {
	Tick    uint32
	Players []SnapshotPlayer
	Spiders []SnapshotSpider
}

// DecodeSnapshot parses a published snapshot buffer. The spider section is
// optional on the wire; a buffer ending after the player records decodes
// with no spiders.
func DecodeSnapshot(data []byte) (DecodedSnapshot, error) {
	var snap DecodedSnapshot
	if len(data) < snapshotHeaderSize {
		return snap, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}
	snap.Tick = binary.LittleEndian.Uint32(data)
	count := int(binary.LittleEndian.Uint16(data[4:]))
	off := snapshotHeaderSize
	if len(data) < off+count*playerRecordSize {
		return snap, fmt.Errorf("snapshot truncated: %d players, %d bytes", count, len(data))
	}
	snap.Players = make([]SnapshotPlayer, count)
	for i := 0; i < count; i++ {
		r := data[off:]
		snap.Players[i] = SnapshotPlayer{
			ID:      binary.LittleEndian.Uint32(r),
			X:       float32FromBytes(r[4:]),
			Y:       float32FromBytes(r[8:]),
			Z:       float32FromBytes(r[12:]),
			VX:      float32FromBytes(r[16:]),
			VY:      float32FromBytes(r[20:]),
			VZ:      float32FromBytes(r[24:]),
			Yaw:     float32FromBytes(r[28:]),
			Pitch:   float32FromBytes(r[32:]),
			Health:  int16(binary.LittleEndian.Uint16(r[36:])),
			Active:  r[38] != 0,
			IsBot:   r[39] != 0,
			Weapon:  r[40],
			LastSeq: binary.LittleEndian.Uint32(r[41:]),
		}
		off += playerRecordSize
	}
	if off == len(data) {
		return snap, nil
	}
	if len(data) < off+2 {
		return snap, fmt.Errorf("snapshot trailing bytes: %d", len(data)-off)
	}
	spiderCount := int(binary.LittleEndian.Uint16(data[off:]))
	off += 2
	if len(data) < off+spiderCount*spiderRecordSize {
		return snap, fmt.Errorf("snapshot truncated: %d spiders, %d bytes", spiderCount, len(data))
	}
	snap.Spiders = make([]SnapshotSpider, spiderCount)
	for i := 0; i < spiderCount; i++ {
		r := data[off:]
		snap.Spiders[i] = SnapshotSpider{
			ID:     binary.LittleEndian.Uint32(r),
			X:      float32FromBytes(r[4:]),
			Y:      float32FromBytes(r[8:]),
			Z:      float32FromBytes(r[12:]),
			Yaw:    float32FromBytes(r[16:]),
			Health: int16(binary.LittleEndian.Uint16(r[20:])),
			Active: r[22] != 0,
		}
		off += spiderRecordSize
	}
	return snap, nil
}

func appendFloat32(buf []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
}

func float32FromBytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
