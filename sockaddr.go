package rfcomm

import (
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
)

// afBluetooth is AF_BLUETOOTH on Linux.
const afBluetooth = 31

// SizeofSockaddrRFCOMM is the size of struct sockaddr_rc. The structure is
// packed: no padding between its fields.
const SizeofSockaddrRFCOMM = 9

// SockaddrRFCOMM is the address of an RFCOMM endpoint as understood by the
// kernel (struct sockaddr_rc). Addr is in host order.
type SockaddrRFCOMM struct {
	Family  uint16
	Addr    MAC
	Channel uint8
}

// NewSockaddrRFCOMM returns the kernel address of channel on the device at
// addr. This is where the wire order address is converted to host order.
func NewSockaddrRFCOMM(addr Address, channel uint8) *SockaddrRFCOMM {
	return &SockaddrRFCOMM{
		Family:  afBluetooth,
		Addr:    addr.MAC(),
		Channel: channel,
	}
}

// MarshalBinary returns the packed sockaddr_rc layout. The family is in
// native byte order like every sa_family_t.
func (sa *SockaddrRFCOMM) MarshalBinary() ([]byte, error) {
	b := make([]byte, SizeofSockaddrRFCOMM)
	binary.NativeEndian.PutUint16(b[0:], sa.Family)
	copy(b[2:8], sa.Addr[:])
	b[8] = sa.Channel
	return b, nil
}

// UnmarshalBinary decodes a packed sockaddr_rc.
func (sa *SockaddrRFCOMM) UnmarshalBinary(b []byte) error {
	if len(b) != SizeofSockaddrRFCOMM {
		return errors.Errorf("rfcomm: sockaddr_rc of %d bytes, expected %d", len(b), SizeofSockaddrRFCOMM)
	}
	sa.Family = binary.NativeEndian.Uint16(b[0:])
	copy(sa.Addr[:], b[2:8])
	sa.Channel = b[8]
	return nil
}

// String returns the endpoint as address/channel, e.g. 11:22:33:AA:BB:CC/3.
func (sa *SockaddrRFCOMM) String() string {
	return sa.Addr.String() + "/" + strconv.Itoa(int(sa.Channel))
}
