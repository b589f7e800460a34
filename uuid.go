package rfcomm

// This file implements 16-bit, 32-bit and 128-bit UUIDs as used by the Service
// Discovery Protocol.

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
)

// UUID is a single UUID as used in the Bluetooth stack. It is represented as a
// [4]uint32 instead of a [16]byte for efficiency, with the most significant
// word last.
type UUID [4]uint32

// Service classes and protocols referenced during channel discovery.
var (
	ServiceClassSerialPort = New16BitUUID(0x1101)

	ProtocolSDP    = New16BitUUID(0x0001)
	ProtocolRFCOMM = New16BitUUID(0x0003)
	ProtocolL2CAP  = New16BitUUID(0x0100)
)

var errInvalidUUID = errors.New("rfcomm: failed to parse UUID")

// New16BitUUID returns a new 128-bit UUID based on a 16-bit UUID.
//
// Note: only use registered UUIDs. See
// https://www.bluetooth.com/specifications/assigned-numbers/ for a list.
func New16BitUUID(shortUUID uint16) UUID {
	return New32BitUUID(uint32(shortUUID))
}

// New32BitUUID returns a new 128-bit UUID based on a 32-bit UUID.
func New32BitUUID(shortUUID uint32) UUID {
	var u UUID
	u[0] = 0x5F9B34FB
	u[1] = 0x80000080
	u[2] = 0x00001000
	u[3] = shortUUID
	return u
}

// NewUUID returns a UUID from its 16 byte big endian representation.
func NewUUID(b [16]byte) UUID {
	var u UUID
	u[3] = binary.BigEndian.Uint32(b[0:])
	u[2] = binary.BigEndian.Uint32(b[4:])
	u[1] = binary.BigEndian.Uint32(b[8:])
	u[0] = binary.BigEndian.Uint32(b[12:])
	return u
}

// ParseUUID parses a UUID in the canonical
// 00001101-0000-1000-8000-00805f9b34fb form.
func ParseUUID(s string) (UUID, error) {
	if len(s) != 36 {
		return UUID{}, errInvalidUUID
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errInvalidUUID
	}
	return NewUUID(parsed), nil
}

// Is16Bit returns whether this UUID is a 16-bit Bluetooth UUID.
func (u UUID) Is16Bit() bool {
	return u.Is32Bit() && u[3] == uint32(uint16(u[3]))
}

// Is32Bit returns whether this UUID is a 32-bit Bluetooth UUID.
func (u UUID) Is32Bit() bool {
	return u[0] == 0x5F9B34FB && u[1] == 0x80000080 && u[2] == 0x00001000
}

// Get16Bit returns the 16-bit short form. It is only meaningful if Is16Bit
// returns true.
func (u UUID) Get16Bit() uint16 {
	return uint16(u[3])
}

// Bytes returns the 16 byte big endian representation of this UUID.
func (u UUID) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint32(b[0:], u[3])
	binary.BigEndian.PutUint32(b[4:], u[2])
	binary.BigEndian.PutUint32(b[8:], u[1])
	binary.BigEndian.PutUint32(b[12:], u[0])
	return b
}

// String returns a human-readable version of this UUID, such as
// 00001101-0000-1000-8000-00805f9b34fb.
func (u UUID) String() string {
	return uuid.UUID(u.Bytes()).String()
}
