package rdp

import (
	"reflect"
	"testing"
)

func TestBuildArgsFreeRDP(t *testing.T) {
	opts := Options{
		Host:     "win-host",
		Port:     3390,
		Username: "admin",
		Password: "s3cret",
		Width:    1280,
		Height:   720,
	}

	args, err := BuildArgs(clientFreeRDP, opts)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}

	want := []string{"/v:win-host:3390", "/u:admin", "/p:s3cret", "/w:1280", "/h:720"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildArgsFullscreenBeatsGeometry(t *testing.T) {
	opts := Options{Host: "host", Fullscreen: true, Width: 800, Height: 600}

	args, err := BuildArgs(clientFreeRDP, opts)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}

	want := []string{"/v:host:3389", "/f"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildArgsExtraArgsShlex(t *testing.T) {
	opts := Options{
		Host:      "host",
		ExtraArgs: `/cert:ignore /drive:share,"/home/user/my files"`,
	}

	args, err := BuildArgs(clientFreeRDP, opts)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}

	want := []string{"/v:host:3389", "/cert:ignore", "/drive:share,/home/user/my files"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildArgsExtraArgsUnbalancedQuote(t *testing.T) {
	opts := Options{Host: "host", ExtraArgs: `/cert:"broken`}
	if _, err := BuildArgs(clientFreeRDP, opts); err == nil {
		t.Error("expected error for unbalanced quote in extra args")
	}
}

func TestBuildArgsMstsc(t *testing.T) {
	opts := Options{Host: "host", Port: 3389, Username: "admin", Fullscreen: true}

	args, err := BuildArgs(clientMstsc, opts)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}

	want := []string{"/v:host:3389", "/f"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildArgsMacOpenURL(t *testing.T) {
	opts := Options{Host: "host", Username: "admin"}

	args, err := BuildArgs(clientMacOpen, opts)
	if err != nil {
		t.Fatalf("BuildArgs: %v", err)
	}

	want := []string{"rdp://admin@host:3389"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildArgsUnknownFlavor(t *testing.T) {
	if _, err := BuildArgs("vnc", Options{Host: "host"}); err == nil {
		t.Error("expected error for unknown flavor")
	}
}

func TestFlavorOf(t *testing.T) {
	tests := []struct {
		binary string
		want   string
	}{
		{"mstsc.exe", clientMstsc},
		{"mstsc", clientMstsc},
		{"open", clientMacOpen},
		{"xfreerdp", clientFreeRDP},
		{"/usr/local/bin/custom-rdp", clientFreeRDP},
	}
	for _, tt := range tests {
		if got := flavorOf(tt.binary); got != tt.want {
			t.Errorf("flavorOf(%q) = %q, want %q", tt.binary, got, tt.want)
		}
	}
}
