package protocol

import (
	"encoding/binary"
	"errors"
)

// Decode errors. Malformed datagrams are dropped by callers; neither error
// carries per-packet detail because the protocol is one-directional and no
// response is ever sent.
var (
	ErrInvalidMagic = errors.New("protocol: invalid packet magic")
	ErrTruncated    = errors.New("protocol: truncated packet")
)

// Encode serializes a packet into the fixed 212-byte little-endian wire
// layout:
//
//	 0-1: magic (u16)
//	 2-3: advisory slot count (u16)
//	 4..: 8 x subrecord {type:u16 buttons:u64 lx:i32 ly:i32 rx:i32 ry:i32}
//
// Both ends commit to little-endian regardless of host byte order.
func Encode(p *Packet) []byte {
	b := make([]byte, PacketSize)
	binary.LittleEndian.PutUint16(b[0:2], Magic)
	binary.LittleEndian.PutUint16(b[2:4], p.Count)
	o := 4
	for i := range p.Subrecords {
		s := &p.Subrecords[i]
		binary.LittleEndian.PutUint16(b[o:o+2], uint16(s.Type))
		binary.LittleEndian.PutUint64(b[o+2:o+10], s.Buttons)
		binary.LittleEndian.PutUint32(b[o+10:o+14], uint32(s.LeftX))
		binary.LittleEndian.PutUint32(b[o+14:o+18], uint32(s.LeftY))
		binary.LittleEndian.PutUint32(b[o+18:o+22], uint32(s.RightX))
		binary.LittleEndian.PutUint32(b[o+22:o+26], uint32(s.RightY))
		o += SubrecordSize
	}
	return b
}

// Decode is the inverse of Encode. It fails with ErrTruncated when fewer
// than PacketSize bytes are supplied and ErrInvalidMagic when the sentinel
// does not match. All eight subrecords are always read; the advisory count
// is surfaced as-is and never bounds the parse.
func Decode(b []byte) (*Packet, error) {
	if len(b) < PacketSize {
		return nil, ErrTruncated
	}
	if binary.LittleEndian.Uint16(b[0:2]) != Magic {
		return nil, ErrInvalidMagic
	}
	p := &Packet{Count: binary.LittleEndian.Uint16(b[2:4])}
	o := 4
	for i := range p.Subrecords {
		s := &p.Subrecords[i]
		s.Type = ControllerType(binary.LittleEndian.Uint16(b[o : o+2]))
		s.Buttons = binary.LittleEndian.Uint64(b[o+2 : o+10])
		s.LeftX = int32(binary.LittleEndian.Uint32(b[o+10 : o+14]))
		s.LeftY = int32(binary.LittleEndian.Uint32(b[o+14 : o+18]))
		s.RightX = int32(binary.LittleEndian.Uint32(b[o+18 : o+22]))
		s.RightY = int32(binary.LittleEndian.Uint32(b[o+22 : o+26]))
		o += SubrecordSize
	}
	return p, nil
}
