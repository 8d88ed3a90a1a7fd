package records

const (
	// HeaderSize is the size of the slot occupied by the header on the device. Only the first two bytes carry
	// information, the rest is padding required by the word alignment of the program primitive.
	HeaderSize = 4

	// Alignment is the granularity of writes accepted by the device.
	Alignment = 4

	// NoLength is the length value reserved for the erased sentinel. No real record may carry it.
	NoLength = 0xFF

	// MaxLength is the maximum aligned payload length a record may declare.
	MaxLength = NoLength / Alignment * Alignment

	typeMask  = 0b00111111
	stateMask = 0b11000000
)

// Address is the physical address on the device.
type Address uint32

// Type is the enum representing the logical kind of the record.
type Type byte

// Record types. The values of the erased type is fixed by the bit pattern of erased memory.
const (
	PageInfoType Type = iota + 1
	ColorHSVType
	ColorRGBNamedType

	NoneType Type = typeMask
)

// State is the enum representing the lifecycle state of the record.
// Transitions only clear bits so a state may be programmed over the previous one without erasing.
type State byte

// Record states.
const (
	DeletedState State = 0b00000000
	ActiveState  State = 0b10000000
	NoneState    State = stateMask
)

// Header is the metadata stored in front of each record payload.
type Header struct {
	Type   Type
	State  State
	Length byte
}

var (
	// NoneHeader is decoded from memory never programmed after an erase. It terminates any scan.
	NoneHeader = Header{
		Type:   NoneType,
		State:  NoneState,
		Length: NoLength,
	}

	// PageHeader is the marker written at the start of every formatted page.
	PageHeader = Header{
		Type:   PageInfoType,
		State:  ActiveState,
		Length: 0,
	}
)
