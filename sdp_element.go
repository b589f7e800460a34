package rfcomm

// This file implements decoding and encoding of SDP data elements, the
// self-describing values SDP PDUs and service records are built from. Every
// element starts with a header byte: the upper five bits are the type, the
// lower three bits the size index.

import (
	"encoding/binary"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ElementType is the full header byte of a data element (type and size
// index), as listed in the Bluetooth Core specification, Vol 3, Part B.
type ElementType uint8

// Data element types.
const (
	ElementNil ElementType = 0x00

	ElementUint8   ElementType = 0x08
	ElementUint16  ElementType = 0x09
	ElementUint32  ElementType = 0x0A
	ElementUint64  ElementType = 0x0B
	ElementUint128 ElementType = 0x0C

	ElementInt8   ElementType = 0x10
	ElementInt16  ElementType = 0x11
	ElementInt32  ElementType = 0x12
	ElementInt64  ElementType = 0x13
	ElementInt128 ElementType = 0x14

	ElementUUID16  ElementType = 0x19
	ElementUUID32  ElementType = 0x1A
	ElementUUID128 ElementType = 0x1C

	ElementText8  ElementType = 0x25
	ElementText16 ElementType = 0x26
	ElementText32 ElementType = 0x27

	ElementBool ElementType = 0x28

	ElementSeq8  ElementType = 0x35
	ElementSeq16 ElementType = 0x36
	ElementSeq32 ElementType = 0x37

	ElementAlt8  ElementType = 0x3D
	ElementAlt16 ElementType = 0x3E
	ElementAlt32 ElementType = 0x3F

	ElementURL8  ElementType = 0x45
	ElementURL16 ElementType = 0x46
	ElementURL32 ElementType = 0x47
)

// Type descriptors (upper five bits of the header).
const (
	descNil  = 0
	descUint = 1
	descInt  = 2
	descUUID = 3
	descText = 4
	descBool = 5
	descSeq  = 6
	descAlt  = 7
	descURL  = 8
)

// maxElementDepth bounds nesting of sequences and alternatives.
const maxElementDepth = 16

func (t ElementType) descriptor() uint8 { return uint8(t) >> 3 }
func (t ElementType) sizeIndex() uint8  { return uint8(t) & 0x07 }

// String returns the name of the element type, for debugging.
func (t ElementType) String() string {
	switch t.descriptor() {
	case descNil:
		return "nil"
	case descUint:
		return "uint" + strconv.Itoa(8<<t.sizeIndex())
	case descInt:
		return "int" + strconv.Itoa(8<<t.sizeIndex())
	case descUUID:
		return "uuid" + strconv.Itoa(8<<t.sizeIndex())
	case descText:
		return "text"
	case descBool:
		return "bool"
	case descSeq:
		return "seq"
	case descAlt:
		return "alt"
	case descURL:
		return "url"
	}
	return "unknown(0x" + strconv.FormatUint(uint64(t), 16) + ")"
}

// Element is a decoded data element. Scalar, string and UUID elements keep
// their value bytes in Value; sequences and alternatives keep their children
// in Items.
type Element struct {
	Type  ElementType
	Value []byte
	Items []Element
}

// IsSequence reports whether the element is a data element sequence.
func (e *Element) IsSequence() bool { return e.Type.descriptor() == descSeq }

// IsAlternative reports whether the element is a data element alternative.
func (e *Element) IsAlternative() bool { return e.Type.descriptor() == descAlt }

// IsUUID reports whether the element holds a UUID of any size.
func (e *Element) IsUUID() bool { return e.Type.descriptor() == descUUID }

// UUID returns the value of a UUID element, expanded to 128 bits.
func (e *Element) UUID() (UUID, bool) {
	switch e.Type {
	case ElementUUID16:
		return New16BitUUID(binary.BigEndian.Uint16(e.Value)), true
	case ElementUUID32:
		return New32BitUUID(binary.BigEndian.Uint32(e.Value)), true
	case ElementUUID128:
		var b [16]byte
		copy(b[:], e.Value)
		return NewUUID(b), true
	}
	return UUID{}, false
}

// Uint8 returns the value of an 8-bit unsigned integer element.
func (e *Element) Uint8() (uint8, bool) {
	if e.Type != ElementUint8 {
		return 0, false
	}
	return e.Value[0], true
}

// Uint16 returns the value of a 16-bit unsigned integer element.
func (e *Element) Uint16() (uint16, bool) {
	if e.Type != ElementUint16 {
		return 0, false
	}
	return binary.BigEndian.Uint16(e.Value), true
}

// elementDecoder is a cursor over an SDP buffer. Every read is checked
// against the end of the buffer.
type elementDecoder struct {
	buf []byte
	off int
}

func (d *elementDecoder) remaining() int { return len(d.buf) - d.off }

func (d *elementDecoder) malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, "offset %d: "+format, append([]interface{}{d.off}, args...)...)
}

func (d *elementDecoder) take(n int) ([]byte, error) {
	if n < 0 || n > d.remaining() {
		return nil, d.malformed("need %d bytes, have %d", n, d.remaining())
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// header reads an element header and returns its type and the length of its
// value.
func (d *elementDecoder) header() (ElementType, int, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, 0, err
	}
	typ := ElementType(b[0])
	idx := typ.sizeIndex()

	switch typ.descriptor() {
	case descNil:
		if idx != 0 {
			return 0, 0, d.malformed("nil element with size index %d", idx)
		}
		return typ, 0, nil
	case descBool:
		if idx != 0 {
			return 0, 0, d.malformed("bool element with size index %d", idx)
		}
		return typ, 1, nil
	case descUint, descInt:
		if idx > 4 {
			return 0, 0, d.malformed("integer element with size index %d", idx)
		}
		return typ, 1 << idx, nil
	case descUUID:
		if idx != 1 && idx != 2 && idx != 4 {
			return 0, 0, d.malformed("UUID element with size index %d", idx)
		}
		return typ, 1 << idx, nil
	case descText, descSeq, descAlt, descURL:
		var n int
		switch idx {
		case 5:
			b, err := d.take(1)
			if err != nil {
				return 0, 0, err
			}
			n = int(b[0])
		case 6:
			b, err := d.take(2)
			if err != nil {
				return 0, 0, err
			}
			n = int(binary.BigEndian.Uint16(b))
		case 7:
			b, err := d.take(4)
			if err != nil {
				return 0, 0, err
			}
			size := binary.BigEndian.Uint32(b)
			if uint64(size) > uint64(d.remaining()) {
				return 0, 0, d.malformed("length %d exceeds buffer", size)
			}
			n = int(size)
		default:
			return 0, 0, d.malformed("%s element with size index %d", typ, idx)
		}
		return typ, n, nil
	}
	return 0, 0, d.malformed("unknown element type 0x%02x", uint8(typ))
}

// element decodes one complete data element, including all of its children.
func (d *elementDecoder) element(depth int) (Element, error) {
	typ, n, err := d.header()
	if err != nil {
		return Element{}, err
	}
	value, err := d.take(n)
	if err != nil {
		return Element{}, err
	}
	e := Element{Type: typ}
	switch typ.descriptor() {
	case descSeq, descAlt:
		if depth >= maxElementDepth {
			return Element{}, d.malformed("nesting deeper than %d", maxElementDepth)
		}
		inner := elementDecoder{buf: value}
		for inner.remaining() > 0 {
			child, err := inner.element(depth + 1)
			if err != nil {
				return Element{}, errors.Wrapf(err, "in %s at offset %d", typ, d.off-n)
			}
			e.Items = append(e.Items, child)
		}
	default:
		e.Value = value
	}
	return e, nil
}

// DecodeElement decodes the data element at the start of buf. It returns the
// element and the number of bytes it occupies.
func DecodeElement(buf []byte) (Element, int, error) {
	d := elementDecoder{buf: buf}
	e, err := d.element(0)
	if err != nil {
		return Element{}, 0, err
	}
	return e, d.off, nil
}

// unwrapSequence returns the body of the data element sequence at the start
// of buf. A declared length beyond the end of buf is not an error: the body is
// cut short and the record parser decides what the available bytes are
// worth. Bytes after the sequence are ignored.
func unwrapSequence(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, errors.Wrap(ErrMalformed, "empty attribute lists")
	}
	typ := ElementType(buf[0])
	if typ.descriptor() != descSeq {
		return nil, errors.Wrapf(ErrMalformed, "expected a sequence, got %s", typ)
	}
	var lenSize int
	switch typ.sizeIndex() {
	case 5:
		lenSize = 1
	case 6:
		lenSize = 2
	case 7:
		lenSize = 4
	default:
		return nil, errors.Wrapf(ErrMalformed, "%s element with size index %d", typ, typ.sizeIndex())
	}
	if len(buf) < 1+lenSize {
		return nil, errors.Wrapf(ErrMalformed, "sequence header of %d bytes", len(buf))
	}
	var n uint64
	for _, b := range buf[1 : 1+lenSize] {
		n = n<<8 | uint64(b)
	}
	body := buf[1+lenSize:]
	switch {
	case n < uint64(len(body)):
		body = body[:n]
	case n > uint64(len(body)):
		log.WithFields(logrus.Fields{
			"declared":  n,
			"available": len(body),
		}).Debug("rfcomm: attribute lists shorter than declared")
	}
	return body, nil
}

// appendSeqHeader appends the header of a sequence with n bytes of content.
func appendSeqHeader(b []byte, n int) []byte {
	switch {
	case n <= 0xff:
		return append(b, byte(ElementSeq8), byte(n))
	case n <= 0xffff:
		return append(b, byte(ElementSeq16), byte(n>>8), byte(n))
	default:
		return append(b, byte(ElementSeq32), byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}

// appendUUID appends u in its shortest form.
func appendUUID(b []byte, u UUID) []byte {
	switch {
	case u.Is16Bit():
		return append(b, byte(ElementUUID16), byte(u[3]>>8), byte(u[3]))
	case u.Is32Bit():
		b = append(b, byte(ElementUUID32))
		return binary.BigEndian.AppendUint32(b, u[3])
	default:
		raw := u.Bytes()
		b = append(b, byte(ElementUUID128))
		return append(b, raw[:]...)
	}
}

// appendUint32 appends a 32-bit unsigned integer element.
func appendUint32(b []byte, v uint32) []byte {
	b = append(b, byte(ElementUint32))
	return binary.BigEndian.AppendUint32(b, v)
}
