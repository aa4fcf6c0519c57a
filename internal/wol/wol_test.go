package wol

import (
	"bytes"
	"net"
	"testing"
)

func TestMagicPacket(t *testing.T) {
	hw, err := ParseMAC("aa:bb:cc:dd:ee:ff")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}

	packet := MagicPacket(hw)
	if len(packet) != 102 {
		t.Fatalf("packet length = %d, want 102", len(packet))
	}

	for i := 0; i < 6; i++ {
		if packet[i] != 0xFF {
			t.Fatalf("packet[%d] = %#x, want 0xFF", i, packet[i])
		}
	}

	for rep := 0; rep < 16; rep++ {
		start := 6 + rep*6
		if !bytes.Equal(packet[start:start+6], hw) {
			t.Errorf("repetition %d = % x, want % x", rep, packet[start:start+6], hw)
		}
	}
}

func TestParseMACFormats(t *testing.T) {
	tests := []struct {
		name    string
		mac     string
		wantErr bool
	}{
		{"colons", "aa:bb:cc:dd:ee:ff", false},
		{"dashes", "aa-bb-cc-dd-ee-ff", false},
		{"uppercase", "AA:BB:CC:DD:EE:FF", false},
		{"empty", "", true},
		{"garbage", "not-a-mac", true},
		{"too short", "aa:bb:cc", true},
		{"eui-64", "aa:bb:cc:dd:ee:ff:00:11", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMAC(tt.mac)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseMAC(%q) error = %v, wantErr %v", tt.mac, err, tt.wantErr)
			}
		})
	}
}

func TestWakeAddrDeliversPacket(t *testing.T) {
	// Listen on loopback and aim the wake packet at ourselves
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	if err := WakeAddr("aa:bb:cc:dd:ee:ff", conn.LocalAddr().String()); err != nil {
		t.Fatalf("WakeAddr: %v", err)
	}

	buf := make([]byte, 256)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 102 {
		t.Errorf("received %d bytes, want 102", n)
	}

	hw, _ := ParseMAC("aa:bb:cc:dd:ee:ff")
	if !bytes.Equal(buf[:n], MagicPacket(hw)) {
		t.Error("received packet does not match magic packet")
	}
}

func TestWakeAddrBadMAC(t *testing.T) {
	if err := WakeAddr("nope", "127.0.0.1:9"); err == nil {
		t.Error("WakeAddr with bad MAC returned nil error")
	}
}
