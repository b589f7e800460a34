package rfcomm

import (
	"bytes"
	"errors"
)

// Address is a Bluetooth device address in wire order: the most significant
// byte comes first, exactly as it is written in 11:22:33:AA:BB:CC form.
type Address [6]byte

// MAC is a Bluetooth device address in host order (little endian), which is
// the layout of bdaddr_t expected by the Linux kernel in RFCOMM socket
// addresses.
type MAC [6]byte

// AddressAny is the wildcard address. As the local side of a session it
// selects the default local adapter.
var AddressAny = Address{}

var errInvalidAddress = errors.New("rfcomm: failed to parse Bluetooth address")

// ParseAddress parses an address in 11:22:33:AA:BB:CC form. Hex digits may be
// upper or lower case.
func ParseAddress(s string) (addr Address, err error) {
	if len(s) != 17 {
		return addr, errInvalidAddress
	}
	for i := 0; i < 6; i++ {
		if i != 0 && s[i*3-1] != ':' {
			return Address{}, errInvalidAddress
		}
		high, ok := fromHex(s[i*3])
		if !ok {
			return Address{}, errInvalidAddress
		}
		low, ok := fromHex(s[i*3+1])
		if !ok {
			return Address{}, errInvalidAddress
		}
		addr[i] = high<<4 | low
	}
	return addr, nil
}

func fromHex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 0xA, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 0xA, true
	}
	return 0, false
}

const hexDigits = "0123456789ABCDEF"

// String returns the address in 11:22:33:AA:BB:CC form.
func (a Address) String() string {
	var buf [17]byte
	for i, c := range a {
		if i != 0 {
			buf[i*3-1] = ':'
		}
		buf[i*3] = hexDigits[c>>4]
		buf[i*3+1] = hexDigits[c&0x0f]
	}
	return string(buf[:])
}

// Compare orders addresses byte-wise. It returns -1, 0 or +1.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// IsAny reports whether a is the wildcard address.
func (a Address) IsAny() bool {
	return a == AddressAny
}

// MAC converts the address to host order. Every address handed to a kernel
// structure that stores bdaddr_t verbatim must be converted exactly once.
func (a Address) MAC() MAC {
	var m MAC
	for i := range a {
		m[i] = a[len(a)-1-i]
	}
	return m
}

// Address converts a host order address reported by the kernel back to wire
// order. It is the inverse of Address.MAC.
func (m MAC) Address() Address {
	var a Address
	for i := range m {
		a[i] = m[len(m)-1-i]
	}
	return a
}

// String returns the address in 11:22:33:AA:BB:CC form, most significant byte
// first.
func (m MAC) String() string {
	return m.Address().String()
}
