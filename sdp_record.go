package rfcomm

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Universal attribute IDs.
const (
	AttrServiceRecordHandle    = 0x0000
	AttrServiceClassIDList     = 0x0001
	AttrProtocolDescriptorList = 0x0004
	AttrServiceName            = 0x0100
)

// ServiceRecord is a decoded service record: the attribute values by
// attribute ID, in the order they appeared.
type ServiceRecord struct {
	IDs    []uint16
	Values []Element
}

// Attribute returns the value of the given attribute, if present.
func (r *ServiceRecord) Attribute(id uint16) (*Element, bool) {
	for i, attrID := range r.IDs {
		if attrID == id {
			return &r.Values[i], true
		}
	}
	return nil, false
}

// decodeServiceRecord decodes the service record at the start of buf and
// returns the number of bytes it occupies.
func decodeServiceRecord(buf []byte) (*ServiceRecord, int, error) {
	e, n, err := DecodeElement(buf)
	if err != nil {
		return nil, 0, err
	}
	if !e.IsSequence() {
		return nil, 0, errors.Wrapf(ErrMalformed, "service record is a %s, not a sequence", e.Type)
	}
	if len(e.Items)%2 != 0 {
		return nil, 0, errors.Wrap(ErrMalformed, "service record has an attribute ID without value")
	}
	rec := &ServiceRecord{}
	for i := 0; i < len(e.Items); i += 2 {
		id, ok := e.Items[i].Uint16()
		if !ok {
			return nil, 0, errors.Wrapf(ErrMalformed, "attribute ID is a %s", e.Items[i].Type)
		}
		rec.IDs = append(rec.IDs, id)
		rec.Values = append(rec.Values, e.Items[i+1])
	}
	return rec, n, nil
}

// ProtocolDescriptors returns the alternatives of the protocol descriptor
// list. Each alternative is a stack of protocol descriptors, lowest layer
// first, and each descriptor is a list of elements: the protocol UUID followed
// by its parameters.
func (r *ServiceRecord) ProtocolDescriptors() [][][]Element {
	list, ok := r.Attribute(AttrProtocolDescriptorList)
	if !ok {
		return nil
	}
	var stacks []*Element
	switch {
	case list.IsSequence():
		stacks = []*Element{list}
	case list.IsAlternative():
		for i := range list.Items {
			stacks = append(stacks, &list.Items[i])
		}
	default:
		return nil
	}

	var alternatives [][][]Element
	for _, stack := range stacks {
		if !stack.IsSequence() {
			continue
		}
		var descriptors [][]Element
		for _, pd := range stack.Items {
			if pd.IsSequence() {
				descriptors = append(descriptors, pd.Items)
			}
		}
		alternatives = append(alternatives, descriptors)
	}
	return alternatives
}

// RFCOMMChannel returns the first RFCOMM channel in the protocol descriptor
// list of the record.
func (r *ServiceRecord) RFCOMMChannel() (uint8, bool) {
	for _, descriptors := range r.ProtocolDescriptors() {
		for _, pd := range descriptors {
			var proto UUID
			var hasProto bool
			for i := range pd {
				if u, ok := pd[i].UUID(); ok {
					proto, hasProto = u, true
					continue
				}
				if ch, ok := pd[i].Uint8(); ok && hasProto && proto == ProtocolRFCOMM {
					return ch, true
				}
			}
		}
	}
	return 0, false
}

// ParseChannel returns the RFCOMM channel announced in a list of service
// records, which is the body of the AttributeLists sequence of a
// ServiceSearchAttributeResponse.
//
// The whole buffer is walked. The first channel in buffer order wins. A
// record that cannot be decoded is an error only if it is the first one;
// otherwise decoding stops there and the records before it are used.
func ParseChannel(records []byte) (uint8, error) {
	var (
		channel uint8
		found   bool
	)
	for off, i := 0, 0; off < len(records); i++ {
		rec, n, err := decodeServiceRecord(records[off:])
		if err != nil || n <= 0 {
			if err == nil {
				err = errors.Wrap(ErrMalformed, "empty service record")
			}
			if i == 0 {
				return 0, errors.Wrap(err, "first service record")
			}
			log.WithFields(logrus.Fields{
				"record": i,
				"offset": off,
			}).Debugf("rfcomm: ignoring truncated service record: %v", err)
			break
		}
		off += n
		if ch, ok := rec.RFCOMMChannel(); ok {
			log.WithFields(logrus.Fields{
				"record":  i,
				"channel": ch,
			}).Debug("rfcomm: RFCOMM channel in service record")
			if !found {
				channel, found = ch, true
			}
		}
	}
	if !found {
		return 0, ErrNoRFCOMMService
	}
	return channel, nil
}
