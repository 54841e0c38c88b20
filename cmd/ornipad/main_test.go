package main

import (
	"testing"

	"github.com/cjeanneret/OrniPad/internal/config"
	"github.com/cjeanneret/OrniPad/internal/hw/display"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Buttons:  config.ButtonsConfig{APin: 17, BPin: 27, CPin: 22},
		Display:  config.DisplayConfig{Type: config.DisplayConsole},
		Network:  config.NetworkConfig{DestHost: "192.168.30.150", DestPort: 4210},
		Defaults: config.DefaultsConfig{MockHW: true},
	}
}

// ---------- webPortFlag ----------

func TestWebPortFlag_EmptyString(t *testing.T) {
	w := &webPortFlag{defaultPort: 8080}
	if err := w.Set(""); err != nil {
		t.Fatalf("Set(\"\") error: %v", err)
	}
	if w.port() != 8080 {
		t.Errorf("expected default port 8080, got %d", w.port())
	}
}

func TestWebPortFlag_Set(t *testing.T) {
	cases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"8080", 8080, false},
		{"1", 1, false},
		{"65535", 65535, false},
		{"8980", 8980, false},
		{"0", 0, true},
		{"65536", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"8080.5", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			w := &webPortFlag{defaultPort: 8080}
			err := w.Set(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Set(%q) should fail, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%q) error: %v", tc.input, err)
			}
			if w.port() != tc.want {
				t.Errorf("port() = %d, want %d", w.port(), tc.want)
			}
		})
	}
}

func TestWebPortFlag_String(t *testing.T) {
	w := &webPortFlag{val: 0}
	if s := w.String(); s != "0" {
		t.Errorf("String() = %q, want \"0\"", s)
	}
	w.val = 9090
	if s := w.String(); s != "9090" {
		t.Errorf("String() = %q, want \"9090\"", s)
	}
}

// ---------- applyDest ----------

func TestApplyDest(t *testing.T) {
	cases := []struct {
		dest     string
		wantHost string
		wantPort int
	}{
		{"", "192.168.30.150", 4210},
		{"10.0.0.7:5000", "10.0.0.7", 5000},
		{"robot.local:4210", "robot.local", 4210},
		{"[fe80::1]:4210", "fe80::1", 4210},
	}
	for _, tc := range cases {
		t.Run(tc.dest, func(t *testing.T) {
			cfg := newTestConfig()
			if err := applyDest(cfg, tc.dest); err != nil {
				t.Fatalf("applyDest(%q): %v", tc.dest, err)
			}
			if cfg.Network.DestHost != tc.wantHost || cfg.Network.DestPort != tc.wantPort {
				t.Errorf("dest = %s:%d, want %s:%d", cfg.Network.DestHost, cfg.Network.DestPort, tc.wantHost, tc.wantPort)
			}
		})
	}
}

func TestApplyDest_Invalid(t *testing.T) {
	for _, dest := range []string{"10.0.0.7", ":4210", "host:abc", "host:0", "host:70000"} {
		t.Run(dest, func(t *testing.T) {
			cfg := newTestConfig()
			if err := applyDest(cfg, dest); err == nil {
				t.Errorf("applyDest(%q) should fail", dest)
			}
			if cfg.Network.DestHost != "192.168.30.150" || cfg.Network.DestPort != 4210 {
				t.Errorf("config changed on error: %+v", cfg.Network)
			}
		})
	}
}

// ---------- newSurface ----------

func TestNewSurface(t *testing.T) {
	cfg := newTestConfig()
	s, layout, release, err := newSurface(cfg)
	if err != nil {
		t.Fatalf("console: %v", err)
	}
	defer release()
	if _, ok := s.(*display.Console); !ok {
		t.Errorf("console surface is %T", s)
	}
	if layout.Title == nil {
		t.Error("console layout should draw a title")
	}

	cfg.Display.Type = config.DisplayNone
	s, _, release, err = newSurface(cfg)
	if err != nil {
		t.Fatalf("none: %v", err)
	}
	defer release()
	if _, ok := s.(display.Discard); !ok {
		t.Errorf("none surface is %T", s)
	}

	cfg.Display.Type = "oled"
	if _, _, _, err := newSurface(cfg); err == nil {
		t.Error("unknown display type should fail")
	}
}

// ---------- newSenders ----------

func TestNewSenders_UDPOnly(t *testing.T) {
	cfg := newTestConfig()
	cfg.Network = config.NetworkConfig{DestHost: "127.0.0.1", DestPort: 4210}

	senders, err := newSenders(cfg)
	if err != nil {
		t.Fatalf("newSenders: %v", err)
	}
	defer func() {
		for _, s := range senders {
			s.Close()
		}
	}()
	if len(senders) != 1 {
		t.Errorf("got %d senders, want 1", len(senders))
	}
}

func TestNewSenders_UnreachableBrokerKeepsUDP(t *testing.T) {
	cfg := newTestConfig()
	cfg.Network = config.NetworkConfig{DestHost: "127.0.0.1", DestPort: 4210}
	cfg.MQTT = config.MQTTConfig{Broker: "tcp://127.0.0.1:1", Topic: "t", ClientID: "test"}

	senders, err := newSenders(cfg)
	if err != nil {
		t.Fatalf("newSenders: %v", err)
	}
	defer func() {
		for _, s := range senders {
			s.Close()
		}
	}()
	if len(senders) != 1 {
		t.Errorf("got %d senders, want only the UDP link", len(senders))
	}
}
