// Package wol sends Wake-on-LAN magic packets.
package wol

import (
	"fmt"
	"net"
	"time"
)

// DefaultBroadcastAddr is where magic packets go unless the caller says
// otherwise. Port 9 (discard) is the conventional WoL port.
const DefaultBroadcastAddr = "255.255.255.255:9"

const writeTimeout = 3 * time.Second

// wakeRepeats is how many copies of the packet go out. WoL is fire and
// forget over UDP; a sleeping NIC only needs to catch one.
const wakeRepeats = 3

const repeatSpacing = 50 * time.Millisecond

// MagicPacket builds the 102-byte wake frame for a MAC address: six 0xFF
// bytes followed by the address repeated sixteen times.
func MagicPacket(hw net.HardwareAddr) []byte {
	packet := make([]byte, 0, 6+16*len(hw))
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, hw...)
	}
	return packet
}

// ParseMAC parses a MAC address and rejects anything that is not a 6-byte
// EUI-48, which is all Wake-on-LAN understands.
func ParseMAC(mac string) (net.HardwareAddr, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %q: %w", mac, err)
	}
	if len(hw) != 6 {
		return nil, fmt.Errorf("MAC address %q is %d bytes, want 6", mac, len(hw))
	}
	return hw, nil
}

// Wake broadcasts a magic packet for the given MAC address
func Wake(mac string) error {
	return WakeAddr(mac, DefaultBroadcastAddr)
}

// WakeAddr sends a magic packet for mac to a specific UDP address, for
// subnet-directed broadcasts like 192.168.1.255:9.
func WakeAddr(mac, addr string) error {
	hw, err := ParseMAC(mac)
	if err != nil {
		return err
	}

	if addr == "" {
		addr = DefaultBroadcastAddr
	}

	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("opening UDP socket: %w", err)
	}
	defer conn.Close()

	packet := MagicPacket(hw)
	for i := 0; i < wakeRepeats; i++ {
		if i > 0 {
			time.Sleep(repeatSpacing)
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		n, err := conn.Write(packet)
		if err != nil {
			return fmt.Errorf("sending magic packet: %w", err)
		}
		if n != len(packet) {
			return fmt.Errorf("short write: sent %d of %d bytes", n, len(packet))
		}
	}

	return nil
}
