package records

import (
	"github.com/pkg/errors"
)

// Encode returns the on-device representation of the header. Padding bytes are left in the erased state.
func (h Header) Encode() [HeaderSize]byte {
	return [HeaderSize]byte{
		byte(h.Type)&typeMask | byte(h.State)&stateMask,
		h.Length,
		0xFF,
		0xFF,
	}
}

// Decode decodes the header from its on-device representation. Any bit pattern decodes to some header.
func Decode(b []byte) (Header, error) {
	if len(b) < 2 {
		return Header{}, errors.Errorf("header requires 2 bytes, provided: %d", len(b))
	}
	return Header{
		Type:   Type(b[0] & typeMask),
		State:  State(b[0] & stateMask),
		Length: b[1],
	}, nil
}

// Equal returns true if all the fields are the same.
func (h Header) Equal(h2 Header) bool {
	return h == h2
}

// SameKind returns true if both headers are of the same type, regardless of state and length.
func (h Header) SameKind(h2 Header) bool {
	return h.Type == h2.Type
}

// Size returns the number of bytes the record occupies on the device.
func (h Header) Size() uint32 {
	return HeaderSize + uint32(h.Length)
}

// AlignLength rounds payload length up to the multiple of Alignment.
func AlignLength(length int) int {
	return (length + Alignment - 1) / Alignment * Alignment
}

// Active returns active header of the type for the payload of the length.
func Active(t Type, payloadLength int) (Header, error) {
	aligned := AlignLength(payloadLength)
	if payloadLength < 0 || aligned > MaxLength {
		return Header{}, errors.Errorf("payload length must be in range [0, %d], provided: %d", MaxLength, payloadLength)
	}
	return Header{
		Type:   t,
		State:  ActiveState,
		Length: byte(aligned),
	}, nil
}
