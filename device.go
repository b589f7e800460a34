package rfcomm

// Device is a remote device known to BlueZ, typically because it was paired
// or seen in an earlier inquiry.
type Device struct {
	Path      string
	Address   Address
	Name      string
	Alias     string
	Paired    bool
	Connected bool
	UUIDs     []UUID
}

// HasServiceClass reports whether the device announced the given service
// class.
func (d *Device) HasServiceClass(class UUID) bool {
	for _, u := range d.UUIDs {
		if u == class {
			return true
		}
	}
	return false
}
