package rfcomm

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// SDP PDU IDs.
const (
	pduErrorResponse                  = 0x01
	pduServiceSearchAttributeRequest  = 0x06
	pduServiceSearchAttributeResponse = 0x07
)

const (
	pduHeaderLen                 = 5
	maxContinuationLen           = 16
	defaultMaxAttributeByteCount = 0xffff
)

// attributeRangeAll requests attributes 0x0000 through 0xffff.
const attributeRangeAll uint32 = 0x0000ffff

// pdu is a single SDP protocol data unit.
type pdu struct {
	id     uint8
	tid    uint16
	params []byte
}

// parsePDU splits a received packet into header and parameters.
func parsePDU(buf []byte) (pdu, error) {
	if len(buf) < pduHeaderLen {
		return pdu{}, errors.Wrapf(ErrMalformed, "PDU of %d bytes is shorter than its header", len(buf))
	}
	plen := int(binary.BigEndian.Uint16(buf[3:]))
	if plen != len(buf)-pduHeaderLen {
		return pdu{}, errors.Wrapf(ErrMalformed, "PDU parameter length %d, got %d bytes", plen, len(buf)-pduHeaderLen)
	}
	return pdu{
		id:     buf[0],
		tid:    binary.BigEndian.Uint16(buf[1:]),
		params: buf[pduHeaderLen:],
	}, nil
}

// appendSearchAttributeRequest appends a ServiceSearchAttributeRequest that
// asks for all attributes of the records matching class.
func appendSearchAttributeRequest(b []byte, tid uint16, class UUID, cont []byte) []byte {
	var pattern []byte
	pattern = appendUUID(pattern, class)

	var attrs []byte
	attrs = appendUint32(attrs, attributeRangeAll)

	var params []byte
	params = appendSeqHeader(params, len(pattern))
	params = append(params, pattern...)
	params = binary.BigEndian.AppendUint16(params, defaultMaxAttributeByteCount)
	params = appendSeqHeader(params, len(attrs))
	params = append(params, attrs...)
	params = append(params, byte(len(cont)))
	params = append(params, cont...)

	b = append(b, pduServiceSearchAttributeRequest)
	b = binary.BigEndian.AppendUint16(b, tid)
	b = binary.BigEndian.AppendUint16(b, uint16(len(params)))
	return append(b, params...)
}

// parseSearchAttributeResponse returns the (partial) AttributeLists bytes and
// the continuation state of a ServiceSearchAttributeResponse.
func parseSearchAttributeResponse(params []byte) (lists, cont []byte, err error) {
	if len(params) < 2 {
		return nil, nil, errors.Wrap(ErrMalformed, "truncated ServiceSearchAttributeResponse")
	}
	n := int(binary.BigEndian.Uint16(params))
	params = params[2:]
	if n > len(params)-1 {
		return nil, nil, errors.Wrapf(ErrMalformed, "AttributeListsByteCount %d exceeds PDU", n)
	}
	lists, params = params[:n], params[n:]
	clen := int(params[0])
	if clen > maxContinuationLen || clen != len(params)-1 {
		return nil, nil, errors.Wrapf(ErrMalformed, "invalid continuation state length %d", clen)
	}
	return lists, params[1:], nil
}

// parseErrorResponse returns the error carried by an ErrorResponse.
func parseErrorResponse(params []byte) error {
	if len(params) < 2 {
		return errors.Wrap(ErrMalformed, "truncated ErrorResponse")
	}
	return ProtocolError(binary.BigEndian.Uint16(params))
}
