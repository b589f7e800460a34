package rfcomm

import (
	"testing"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("00:00:00:00:00:00")
	if err != nil {
		t.Fatalf("expected nil but got %v", err)
	}
	if addr != AddressAny {
		t.Errorf("expected the wildcard address but got %s", addr)
	}

	addr, err = ParseAddress("00:ff:ee:ee:dd:12")
	if err != nil {
		t.Fatalf("expected nil but got %v", err)
	}
	if addr != (Address{0x00, 0xff, 0xee, 0xee, 0xdd, 0x12}) {
		t.Errorf("unexpected address % x", addr[:])
	}
	if addr.String() != "00:FF:EE:EE:DD:12" {
		t.Errorf("expected 00:FF:EE:EE:DD:12 but got %s", addr)
	}
}

func TestParseAddressInvalid(t *testing.T) {
	for _, s := range []string{
		"addr : String",
		"00:00:00:00:00",
		"00:00:00:00:00:00:00",
		"-00:00:00:00:00:00",
		"0G:00:00:00:00:00",
		"00-00-00-00-00-00",
	} {
		if _, err := ParseAddress(s); err != errInvalidAddress {
			t.Errorf("%q: expected errInvalidAddress but got %v", s, err)
		}
	}
}

func TestAddressNormalizeRoundTrip(t *testing.T) {
	for _, addr := range []Address{
		AddressAny,
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
		{0x00, 0x16, 0x04, 0x01, 0x21, 0xc0},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	} {
		mac := addr.MAC()
		if back := mac.Address(); back != addr {
			t.Errorf("%s: round trip returned %s", addr, back)
		}
		if mac.String() != addr.String() {
			t.Errorf("%s: host order string is %s", addr, mac.String())
		}
	}

	mac := Address{0x11, 0x22, 0x33, 0xaa, 0xbb, 0xcc}.MAC()
	if mac != (MAC{0xcc, 0xbb, 0xaa, 0x33, 0x22, 0x11}) {
		t.Errorf("unexpected host order % x", mac[:])
	}
}

func TestAddressCompare(t *testing.T) {
	a := Address{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	b := Address{0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("addresses must compare byte-wise from the first byte")
	}
	if !AddressAny.IsAny() || a.IsAny() {
		t.Errorf("IsAny mismatch")
	}
}
