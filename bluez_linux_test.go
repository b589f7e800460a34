package rfcomm

import (
	"testing"

	dbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceFromProps(t *testing.T) {
	props := map[string]dbus.Variant{
		"Address":   dbus.MakeVariant("00:1A:7D:DA:71:13"),
		"Name":      dbus.MakeVariant("HC-05"),
		"Alias":     dbus.MakeVariant("robot"),
		"Paired":    dbus.MakeVariant(true),
		"Connected": dbus.MakeVariant(false),
		"UUIDs": dbus.MakeVariant([]string{
			"00001101-0000-1000-8000-00805f9b34fb",
			"not-a-uuid",
		}),
	}
	d, ok := deviceFromProps("/org/bluez/hci0/dev_00_1A_7D_DA_71_13", props)
	require.True(t, ok)
	assert.Equal(t, "/org/bluez/hci0/dev_00_1A_7D_DA_71_13", d.Path)
	assert.Equal(t, testAddress, d.Address)
	assert.Equal(t, "HC-05", d.Name)
	assert.Equal(t, "robot", d.Alias)
	assert.True(t, d.Paired)
	assert.False(t, d.Connected)
	assert.Equal(t, []UUID{ServiceClassSerialPort}, d.UUIDs)
	assert.True(t, d.HasServiceClass(ServiceClassSerialPort))
	assert.False(t, d.HasServiceClass(New16BitUUID(0x110a)))
}

func TestDeviceFromPropsWithoutAddress(t *testing.T) {
	_, ok := deviceFromProps("/org/bluez/hci0/dev_x", map[string]dbus.Variant{
		"Name": dbus.MakeVariant("nameless"),
	})
	assert.False(t, ok)

	_, ok = deviceFromProps("/org/bluez/hci0/dev_x", map[string]dbus.Variant{
		"Address": dbus.MakeVariant(42),
	})
	assert.False(t, ok)
}
