// Package protocol defines the fixed-layout datagram exchanged between the
// padlink client and the bridge. One datagram carries a complete state
// snapshot for all eight controller slots; packets are self-describing and
// stateless, so any lost datagram is superseded by the next tick's.
package protocol

// Magic is the sentinel leading every packet. Datagrams with any other value
// are dropped without further inspection.
const Magic uint16 = 0x3276

// SlotCount is the number of controller slots carried by every packet.
const SlotCount = 8

// Wire sizes in bytes. A subrecord is type(2) + buttons(8) + four stick
// axes(4 each); a packet is magic(2) + count(2) + eight subrecords.
const (
	SubrecordSize = 26
	PacketSize    = 4 + SlotCount*SubrecordSize
)

// ControllerType identifies the kind of virtual controller a slot carries.
// TypeNone means the slot has no virtual device.
type ControllerType uint16

const (
	TypeNone          ControllerType = 0
	TypeProController ControllerType = 1
	TypeJoyConLeft    ControllerType = 2
	TypeJoyConRight   ControllerType = 3

	// 4-6 are reserved for paired and non-sideways single Joy-Cons.
)

// Valid reports whether t names a controller kind a slot can attach as.
func (t ControllerType) Valid() bool {
	return t >= TypeProController && t <= TypeJoyConRight
}

func (t ControllerType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeProController:
		return "pro-controller"
	case TypeJoyConLeft:
		return "joycon-left"
	case TypeJoyConRight:
		return "joycon-right"
	default:
		return "unknown"
	}
}

// Subrecord is the fixed-size portion of a packet describing one slot.
// Stick axes are centered at 0 in the console's signed range; the codec
// performs no scaling or clamping.
type Subrecord struct {
	Type    ControllerType
	Buttons uint64
	LeftX   int32
	LeftY   int32
	RightX  int32
	RightY  int32
}

// Packet is one decoded datagram. Count is the sender's advisory populated
// slot count; all eight subrecords are always physically present and are
// applied independently of it.
type Packet struct {
	Count      uint16
	Subrecords [SlotCount]Subrecord
}
