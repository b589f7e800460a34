//go:build linux

// Some documentation for the BlueZ D-Bus interface:
// https://git.kernel.org/pub/scm/bluetooth/bluez.git/tree/doc

package rfcomm

import (
	"strings"

	dbus "github.com/godbus/dbus/v5"
	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/bluez/profile/device"
	"github.com/pkg/errors"
)

const (
	bluezService    = "org.bluez"
	deviceIface     = "org.bluez.Device1"
	objManagerIface = "org.freedesktop.DBus.ObjectManager"
)

// DefaultAdapterAddress returns the address of the default local adapter.
func DefaultAdapterAddress() (Address, error) {
	a, err := api.GetDefaultAdapter()
	if err != nil {
		return Address{}, errors.Wrap(err, "rfcomm: default adapter")
	}
	addr, err := ParseAddress(a.Properties.Address)
	if err != nil {
		return Address{}, errors.Wrapf(err, "rfcomm: adapter address %q", a.Properties.Address)
	}
	return addr, nil
}

// KnownDevices returns the devices known to the default adapter that
// announced the given service class, for example ServiceClassSerialPort.
// No inquiry is started.
func KnownDevices(class UUID) ([]Device, error) {
	a, err := api.GetDefaultAdapter()
	if err != nil {
		return nil, errors.Wrap(err, "rfcomm: default adapter")
	}
	devices, err := a.GetDevices()
	if err != nil {
		return nil, errors.Wrap(err, "rfcomm: list devices")
	}
	var out []Device
	for _, dev := range devices {
		if dev == nil || dev.Properties == nil {
			continue
		}
		d, ok := deviceFromDevice1(dev)
		if ok && d.HasServiceClass(class) {
			out = append(out, d)
		}
	}
	return out, nil
}

func deviceFromDevice1(dev *device.Device1) (Device, bool) {
	addr, err := ParseAddress(dev.Properties.Address)
	if err != nil {
		return Device{}, false
	}
	return Device{
		Path:      string(dev.Path()),
		Address:   addr,
		Name:      dev.Properties.Name,
		Alias:     dev.Properties.Alias,
		Paired:    dev.Properties.Paired,
		Connected: dev.Properties.Connected,
		UUIDs:     parseUUIDs(dev.Properties.UUIDs),
	}, true
}

// LookupDevice returns what BlueZ knows about the device at addr.
func LookupDevice(addr Address) (Device, error) {
	bus, err := dbus.SystemBus()
	if err != nil {
		return Device{}, errors.Wrap(err, "rfcomm: connect system bus")
	}
	var objs map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	call := bus.Object(bluezService, dbus.ObjectPath("/")).Call(objManagerIface+".GetManagedObjects", 0)
	if call.Err != nil {
		return Device{}, errors.Wrap(call.Err, "rfcomm: GetManagedObjects")
	}
	if err := call.Store(&objs); err != nil {
		return Device{}, errors.Wrap(err, "rfcomm: decode GetManagedObjects")
	}
	for path, ifaces := range objs {
		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		d, ok := deviceFromProps(path, props)
		if ok && d.Address == addr {
			return d, nil
		}
	}
	return Device{}, errors.Errorf("rfcomm: device %s unknown to BlueZ", addr)
}

func deviceFromProps(path dbus.ObjectPath, props map[string]dbus.Variant) (Device, bool) {
	var s string
	if v, ok := props["Address"]; ok {
		s, _ = v.Value().(string)
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return Device{}, false
	}
	d := Device{Path: string(path), Address: addr}
	if v, ok := props["Name"]; ok {
		d.Name, _ = v.Value().(string)
	}
	if v, ok := props["Alias"]; ok {
		d.Alias, _ = v.Value().(string)
	}
	if v, ok := props["Paired"]; ok {
		d.Paired, _ = v.Value().(bool)
	}
	if v, ok := props["Connected"]; ok {
		d.Connected, _ = v.Value().(bool)
	}
	if v, ok := props["UUIDs"]; ok {
		uuids, _ := v.Value().([]string)
		d.UUIDs = parseUUIDs(uuids)
	}
	return d, true
}

// parseUUIDs skips malformed entries.
func parseUUIDs(list []string) []UUID {
	var out []UUID
	for _, s := range list {
		u, err := ParseUUID(strings.TrimSpace(s))
		if err == nil {
			out = append(out, u)
		}
	}
	return out
}
